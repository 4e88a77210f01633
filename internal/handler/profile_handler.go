package handler

import (
	"net/http"
	"strconv"

	"campuslink/backend/internal/models"
	"campuslink/backend/internal/service"

	"github.com/gin-gonic/gin"
)

// ProfileHandler serves profile reads, updates and search.
type ProfileHandler struct {
	users *service.UserService
}

func NewProfileHandler(users *service.UserService) *ProfileHandler {
	return &ProfileHandler{users: users}
}

// ProfileUpdateInput defines a partial profile update. Absent fields are left
// unchanged.
type ProfileUpdateInput struct {
	FullName         *string                  `json:"full_name"`
	AvatarURL        *string                  `json:"avatar_url"`
	SchoolEmail      *string                  `json:"school_email"`
	University       *string                  `json:"university"`
	Campus           *string                  `json:"campus"`
	Major            *string                  `json:"major"`
	EnrollmentStatus *models.EnrollmentStatus `json:"enrollment_status"`
	CurrentClass     *models.CurrentClass     `json:"current_class"`
	CurrentRole      *models.CurrentRole      `json:"current_role"`
	GraduationYear   *int                     `json:"graduation_year"`
	OneLineBio       *string                  `json:"one_line_bio"`
	FullBio          *string                  `json:"full_bio"`
	Interests        *[]string                `json:"interests"`
	Hobbies          *[]string                `json:"hobbies"`
	Links            *[]string                `json:"links"`
}

// GetMe godoc
// @Summary      Get own profile
// @Description  Retrieves the private profile for the authenticated user.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ProfilePrivate
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /profile/me [get]
func (h *ProfileHandler) GetMe(c *gin.Context) {
	user, err := h.users.GetActive(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildProfilePrivate(*user))
}

// UpdateMe godoc
// @Summary      Update own profile
// @Description  Applies a partial update to the authenticated user's profile.
// @Tags         profile
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        input body ProfileUpdateInput true "Profile fields"
// @Success      200  {object}  ProfilePrivate
// @Failure      400  {object}  ErrorResponse
// @Failure      401  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "Invalid enum value or link"
// @Router       /profile/me [patch]
func (h *ProfileHandler) UpdateMe(c *gin.Context) {
	var input ProfileUpdateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), currentUserID(c), service.ProfileUpdate{
		FullName:         input.FullName,
		AvatarURL:        input.AvatarURL,
		SchoolEmail:      input.SchoolEmail,
		University:       input.University,
		Campus:           input.Campus,
		Major:            input.Major,
		EnrollmentStatus: input.EnrollmentStatus,
		CurrentClass:     input.CurrentClass,
		CurrentRole:      input.CurrentRole,
		GraduationYear:   input.GraduationYear,
		OneLineBio:       input.OneLineBio,
		FullBio:          input.FullBio,
		Interests:        input.Interests,
		Hobbies:          input.Hobbies,
		Links:            input.Links,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildProfilePrivate(*user))
}

// VerifySchoolEmail godoc
// @Summary      Verify school email
// @Description  Marks the authenticated user's school email as verified. Fails if no school email is set.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  ProfilePrivate
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse "No school email on the profile"
// @Router       /profile/me/verify-school-email [post]
func (h *ProfileHandler) VerifySchoolEmail(c *gin.Context) {
	user, err := h.users.VerifySchoolEmail(c.Request.Context(), currentUserID(c))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildProfilePrivate(*user))
}

// DeleteMe godoc
// @Summary      Deactivate own account
// @Description  Soft-disables the account; it disappears from all graph operations.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  map[string]string
// @Failure      401  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /profile/me [delete]
func (h *ProfileHandler) DeleteMe(c *gin.Context) {
	if err := h.users.Deactivate(c.Request.Context(), currentUserID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Account deactivated"})
}

// GetProfile godoc
// @Summary      Get a public profile
// @Description  Retrieves the public profile of an active user.
// @Tags         profile
// @Produce      json
// @Param        id   path      int  true  "User ID"
// @Success      200  {object}  ProfilePublic
// @Failure      400  {object}  ErrorResponse
// @Failure      404  {object}  ErrorResponse
// @Router       /profile/{id} [get]
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	user, err := h.users.GetActive(c.Request.Context(), userID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, buildProfilePublic(*user))
}

// Search godoc
// @Summary      Search profiles
// @Description  Lists active users matching the filters. Enum filters accept only their closed value sets.
// @Tags         profile
// @Produce      json
// @Security     BearerAuth
// @Param        q                 query  string  false  "Free-text match on username, name, university, major"
// @Param        university        query  string  false  "Exact university (case-insensitive)"
// @Param        major             query  string  false  "Exact major (case-insensitive)"
// @Param        graduation_year   query  int     false  "Graduation year"
// @Param        enrollment_status query  string  false  "enrolled, graduated, dropped_out, on_leave"
// @Param        current_class     query  string  false  "freshman, sophomore, junior, senior, graduate"
// @Param        current_role      query  string  false  "student, alumni, faculty, staff"
// @Param        limit             query  int     false  "Page size" default(20)
// @Param        offset            query  int     false  "Items to skip" default(0)
// @Success      200  {object}  ListResponse[ProfilePublic]
// @Failure      401  {object}  ErrorResponse
// @Failure      422  {object}  ErrorResponse
// @Router       /profile/search [get]
func (h *ProfileHandler) Search(c *gin.Context) {
	limit, offset := limitOffset(c)

	filters := service.SearchFilters{
		Query:            c.Query("q"),
		University:       c.Query("university"),
		Major:            c.Query("major"),
		EnrollmentStatus: models.EnrollmentStatus(c.Query("enrollment_status")),
		CurrentClass:     models.CurrentClass(c.Query("current_class")),
		CurrentRole:      models.CurrentRole(c.Query("current_role")),
	}
	if raw := c.Query("graduation_year"); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid graduation_year"})
			return
		}
		filters.GraduationYear = &year
	}

	users, total, err := h.users.Search(c.Request.Context(), filters, limit, offset)
	if err != nil {
		respondError(c, err)
		return
	}

	profiles := make([]ProfilePublic, len(users))
	for i, u := range users {
		profiles[i] = buildProfilePublic(u)
	}
	c.JSON(http.StatusOK, ListResponse[ProfilePublic]{
		Data: profiles, Total: total, Limit: limit, Offset: offset,
	})
}
