package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"campuslink/backend/internal/apperrors"
	"campuslink/backend/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserService is the user directory: identity lookup, profile management and
// search. Inactive users are invisible to every read path here.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// resetTokenTTL bounds how long a password reset token stays redeemable.
const resetTokenTTL = time.Hour

// GetActive returns an active user by id, or ErrNotFound.
func (s *UserService) GetActive(ctx context.Context, userID uint) (*models.User, error) {
	return activeUser(s.db.WithContext(ctx), userID)
}

// FindByLogin looks a user up by username or email for authentication.
func (s *UserService) FindByLogin(ctx context.Context, login string) (*models.User, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("(username = ? OR email = ?) AND is_active = ?", login, login, true).
		First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("user %q", login)
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// Create inserts a new user. A username or email collision is ErrConflict.
func (s *UserService) Create(ctx context.Context, user *models.User) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing models.User
		err := tx.Where("username = ? OR email = ?", user.Username, user.Email).First(&existing).Error
		if err == nil {
			return apperrors.Conflictf("username or email already exists")
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		user.IsActive = true
		if err := tx.Create(user).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return apperrors.Conflictf("username or email already exists")
			}
			return err
		}
		return nil
	})
}

// ProfileUpdate carries a partial profile update; nil fields are unchanged.
type ProfileUpdate struct {
	FullName         *string
	AvatarURL        *string
	SchoolEmail      *string
	University       *string
	Campus           *string
	Major            *string
	EnrollmentStatus *models.EnrollmentStatus
	CurrentClass     *models.CurrentClass
	CurrentRole      *models.CurrentRole
	GraduationYear   *int
	OneLineBio       *string
	FullBio          *string
	Interests        *[]string
	Hobbies          *[]string
	Links            *[]string
}

func (u *ProfileUpdate) validate() error {
	if u.EnrollmentStatus != nil && !models.ValidEnrollmentStatus(*u.EnrollmentStatus) {
		return apperrors.Validationf("invalid enrollment status %q", *u.EnrollmentStatus)
	}
	if u.CurrentClass != nil && !models.ValidCurrentClass(*u.CurrentClass) {
		return apperrors.Validationf("invalid current class %q", *u.CurrentClass)
	}
	if u.CurrentRole != nil && !models.ValidCurrentRole(*u.CurrentRole) {
		return apperrors.Validationf("invalid current role %q", *u.CurrentRole)
	}
	if u.Links != nil {
		for _, link := range *u.Links {
			if !strings.HasPrefix(link, "http://") && !strings.HasPrefix(link, "https://") {
				return apperrors.Validationf("link %q must be an http(s) URL", link)
			}
		}
	}
	return nil
}

// UpdateProfile applies a partial update to the user's own profile.
// Structural validation happens before any mutation.
func (s *UserService) UpdateProfile(ctx context.Context, userID uint, upd ProfileUpdate) (*models.User, error) {
	if err := upd.validate(); err != nil {
		return nil, err
	}

	user, err := activeUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}

	if upd.FullName != nil {
		user.FullName = *upd.FullName
	}
	if upd.AvatarURL != nil {
		user.AvatarURL = *upd.AvatarURL
	}
	if upd.SchoolEmail != nil {
		user.SchoolEmail = *upd.SchoolEmail
	}
	if upd.University != nil {
		user.University = *upd.University
	}
	if upd.Campus != nil {
		user.Campus = *upd.Campus
	}
	if upd.Major != nil {
		user.Major = *upd.Major
	}
	if upd.EnrollmentStatus != nil {
		user.EnrollmentStatus = *upd.EnrollmentStatus
	}
	if upd.CurrentClass != nil {
		user.CurrentClass = *upd.CurrentClass
	}
	if upd.CurrentRole != nil {
		user.CurrentRole = *upd.CurrentRole
	}
	if upd.GraduationYear != nil {
		user.GraduationYear = upd.GraduationYear
	}
	if upd.OneLineBio != nil {
		user.OneLineBio = *upd.OneLineBio
	}
	if upd.FullBio != nil {
		user.FullBio = *upd.FullBio
	}
	if upd.Interests != nil {
		user.Interests = *upd.Interests
	}
	if upd.Hobbies != nil {
		user.Hobbies = *upd.Hobbies
	}
	if upd.Links != nil {
		user.Links = *upd.Links
	}

	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// VerifySchoolEmail marks the user's school email as verified. The user must
// have set a school email first.
func (s *UserService) VerifySchoolEmail(ctx context.Context, userID uint) (*models.User, error) {
	user, err := activeUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return nil, err
	}
	if user.SchoolEmail == "" {
		return nil, apperrors.Validationf("no school email set")
	}
	user.IsSchoolEmailVerified = true
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// Deactivate soft-disables the account; the user drops out of every graph
// operation from this point on.
func (s *UserService) Deactivate(ctx context.Context, userID uint) error {
	user, err := activeUser(s.db.WithContext(ctx), userID)
	if err != nil {
		return err
	}
	user.IsActive = false
	return s.db.WithContext(ctx).Save(user).Error
}

// SearchFilters narrows a profile search. The enum fields are validated
// against their closed value sets; Query matches free-text fields.
type SearchFilters struct {
	Query            string
	University       string
	Major            string
	GraduationYear   *int
	EnrollmentStatus models.EnrollmentStatus
	CurrentClass     models.CurrentClass
	CurrentRole      models.CurrentRole
}

// Search lists active users matching the filters, ordered by id for stable
// pagination.
func (s *UserService) Search(ctx context.Context, filters SearchFilters, limit, offset int) ([]models.User, int64, error) {
	if !models.ValidEnrollmentStatus(filters.EnrollmentStatus) {
		return nil, 0, apperrors.Validationf("invalid enrollment status %q", filters.EnrollmentStatus)
	}
	if !models.ValidCurrentClass(filters.CurrentClass) {
		return nil, 0, apperrors.Validationf("invalid current class %q", filters.CurrentClass)
	}
	if !models.ValidCurrentRole(filters.CurrentRole) {
		return nil, 0, apperrors.Validationf("invalid current role %q", filters.CurrentRole)
	}

	query := s.db.WithContext(ctx).Model(&models.User{}).Where("is_active = ?", true)

	if filters.University != "" {
		query = query.Where("LOWER(university) = LOWER(?)", filters.University)
	}
	if filters.Major != "" {
		query = query.Where("LOWER(major) = LOWER(?)", filters.Major)
	}
	if filters.GraduationYear != nil {
		query = query.Where("graduation_year = ?", *filters.GraduationYear)
	}
	if filters.EnrollmentStatus != "" {
		query = query.Where("enrollment_status = ?", filters.EnrollmentStatus)
	}
	if filters.CurrentClass != "" {
		query = query.Where("current_class = ?", filters.CurrentClass)
	}
	if filters.CurrentRole != "" {
		// CURRENT_ROLE is a reserved word in postgres; the map form makes
		// gorm quote the column so the predicate hits users.current_role
		// instead of the session-role function.
		query = query.Where(map[string]interface{}{"current_role": string(filters.CurrentRole)})
	}
	if filters.Query != "" {
		like := "%" + strings.ToLower(filters.Query) + "%"
		query = query.Where(
			"LOWER(username) LIKE ? OR LOWER(full_name) LIKE ? OR LOWER(university) LIKE ? OR LOWER(major) LIKE ?",
			like, like, like, like)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	var users []models.User
	err := query.Order("id ASC").Limit(limit).Offset(offset).Find(&users).Error
	return users, total, err
}

// MintResetToken creates a single-use password reset token for the account
// behind email. The token value is an opaque UUID.
func (s *UserService) MintResetToken(ctx context.Context, email string) (*models.PasswordResetToken, error) {
	var user models.User
	err := s.db.WithContext(ctx).
		Where("email = ? AND is_active = ?", email, true).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NotFoundf("no account for %q", email)
	}
	if err != nil {
		return nil, err
	}

	token := models.PasswordResetToken{
		UserID:    user.ID,
		Token:     uuid.NewString(),
		ExpiresAt: time.Now().Add(resetTokenTTL),
	}
	if err := s.db.WithContext(ctx).Create(&token).Error; err != nil {
		return nil, err
	}
	return &token, nil
}

// ResetPassword redeems a reset token and installs the new password hash.
// Marking the token used and updating the user happen in one transaction.
func (s *UserService) ResetPassword(ctx context.Context, tokenValue, newPasswordHash string) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var token models.PasswordResetToken
		err := tx.Where("token = ?", tokenValue).First(&token).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return apperrors.NotFoundf("reset token")
		}
		if err != nil {
			return err
		}
		if !token.Usable(time.Now()) {
			return apperrors.Forbiddenf("reset token expired or already used")
		}

		token.Used = true
		if err := tx.Save(&token).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", token.UserID).
			Update("password_hash", newPasswordHash).Error
	})
}
