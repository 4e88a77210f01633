package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"campuslink/backend/internal/apperrors"
	"campuslink/backend/internal/models"

	"github.com/gin-gonic/gin"
)

// ErrorResponse represents a generic error response.
type ErrorResponse struct {
	Error string `json:"error" example:"An error message"`
}

// ListResponse defines the structure for a paginated list of any type.
type ListResponse[T any] struct {
	Data   []T   `json:"data"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

// limitOffset parses the limit/offset query parameters. Limit is clamped to
// [1,100] and offset to >= 0 here, at the caller-facing layer; the services
// assume validated inputs.
func limitOffset(c *gin.Context) (int, int) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if err != nil || limit < 1 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}

	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		offset = 0
	}
	return limit, offset
}

// currentUserID returns the authenticated user set by the auth middleware.
func currentUserID(c *gin.Context) uint {
	v, _ := c.Get("userID")
	id, _ := v.(uint)
	return id
}

// pathID parses a numeric path parameter.
func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + name})
		return 0, false
	}
	return uint(id), true
}

// respondError translates a service error into an HTTP status.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperrors.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrSelfReference):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, apperrors.ErrValidation):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}

// region --- Shared DTOs ---

// ProfilePublic is the profile shape exposed to other users.
type ProfilePublic struct {
	ID               uint                    `json:"id" example:"1"`
	Username         string                  `json:"username" example:"jdoe"`
	FullName         string                  `json:"full_name,omitempty"`
	AvatarURL        string                  `json:"avatar_url,omitempty"`
	University       string                  `json:"university,omitempty"`
	Campus           string                  `json:"campus,omitempty"`
	Major            string                  `json:"major,omitempty"`
	EnrollmentStatus models.EnrollmentStatus `json:"enrollment_status,omitempty"`
	CurrentClass     models.CurrentClass     `json:"current_class,omitempty"`
	CurrentRole      models.CurrentRole      `json:"current_role,omitempty"`
	GraduationYear   *int                    `json:"graduation_year,omitempty"`
	OneLineBio       string                  `json:"one_line_bio,omitempty"`
	Interests        []string                `json:"interests,omitempty"`
	Hobbies          []string                `json:"hobbies,omitempty"`
}

// ProfilePrivate is the authenticated user's own profile.
type ProfilePrivate struct {
	ProfilePublic
	Email                 string    `json:"email"`
	SchoolEmail           string    `json:"school_email,omitempty"`
	IsSchoolEmailVerified bool      `json:"is_school_email_verified"`
	FullBio               string    `json:"full_bio,omitempty"`
	Links                 []string  `json:"links,omitempty"`
	CreatedAt             time.Time `json:"created_at"`
}

func buildProfilePublic(user models.User) ProfilePublic {
	return ProfilePublic{
		ID:               user.ID,
		Username:         user.Username,
		FullName:         user.FullName,
		AvatarURL:        user.AvatarURL,
		University:       user.University,
		Campus:           user.Campus,
		Major:            user.Major,
		EnrollmentStatus: user.EnrollmentStatus,
		CurrentClass:     user.CurrentClass,
		CurrentRole:      user.CurrentRole,
		GraduationYear:   user.GraduationYear,
		OneLineBio:       user.OneLineBio,
		Interests:        user.Interests,
		Hobbies:          user.Hobbies,
	}
}

func buildProfilePrivate(user models.User) ProfilePrivate {
	return ProfilePrivate{
		ProfilePublic:         buildProfilePublic(user),
		Email:                 user.Email,
		SchoolEmail:           user.SchoolEmail,
		IsSchoolEmailVerified: user.IsSchoolEmailVerified,
		FullBio:               user.FullBio,
		Links:                 user.Links,
		CreatedAt:             user.CreatedAt,
	}
}

// endregion
