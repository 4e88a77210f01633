package service

import (
	"context"
	"testing"
	"time"

	"campuslink/backend/internal/apperrors"
	"campuslink/backend/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateUserConflicts(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	first := models.User{Username: "jdoe", Email: "jdoe@example.edu", PasswordHash: "x"}
	require.NoError(t, svc.Create(context.Background(), &first))
	assert.True(t, first.IsActive)

	sameUsername := models.User{Username: "jdoe", Email: "other@example.edu", PasswordHash: "x"}
	assert.ErrorIs(t, svc.Create(context.Background(), &sameUsername), apperrors.ErrConflict)

	sameEmail := models.User{Username: "other", Email: "jdoe@example.edu", PasswordHash: "x"}
	assert.ErrorIs(t, svc.Create(context.Background(), &sameEmail), apperrors.ErrConflict)
}

func TestFindByLogin(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "jdoe")

	byUsername, err := svc.FindByLogin(context.Background(), "jdoe")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byUsername.ID)

	byEmail, err := svc.FindByLogin(context.Background(), "jdoe@example.edu")
	require.NoError(t, err)
	assert.Equal(t, user.ID, byEmail.ID)

	_, err = svc.FindByLogin(context.Background(), "nobody")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	require.NoError(t, svc.Deactivate(context.Background(), user.ID))
	_, err = svc.FindByLogin(context.Background(), "jdoe")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateProfilePartial(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "jdoe")

	university := "State University"
	class := models.ClassJunior
	year := 2027
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{
		University:     &university,
		CurrentClass:   &class,
		GraduationYear: &year,
	})
	require.NoError(t, err)
	assert.Equal(t, "State University", updated.University)
	assert.Equal(t, models.ClassJunior, updated.CurrentClass)
	require.NotNil(t, updated.GraduationYear)
	assert.Equal(t, 2027, *updated.GraduationYear)

	// Untouched fields survive the next partial update.
	major := "Computer Science"
	updated, err = svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Major: &major})
	require.NoError(t, err)
	assert.Equal(t, "State University", updated.University)
	assert.Equal(t, "Computer Science", updated.Major)
}

func TestUpdateProfileValidation(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "jdoe")

	bad := models.EnrollmentStatus("expelled")
	_, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{EnrollmentStatus: &bad})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	links := []string{"ftp://example.com/cv"}
	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Links: &links})
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	good := []string{"https://example.com/cv"}
	_, err = svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{Links: &good})
	assert.NoError(t, err)
}

func TestVerifySchoolEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "jdoe")

	// Verification without a school email on file is refused.
	_, err := svc.VerifySchoolEmail(context.Background(), user.ID)
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	schoolEmail := "jdoe@campus.edu"
	updated, err := svc.UpdateProfile(context.Background(), user.ID, ProfileUpdate{SchoolEmail: &schoolEmail})
	require.NoError(t, err)
	assert.Equal(t, "jdoe@campus.edu", updated.SchoolEmail)
	assert.False(t, updated.IsSchoolEmailVerified)

	verified, err := svc.VerifySchoolEmail(context.Background(), user.ID)
	require.NoError(t, err)
	assert.True(t, verified.IsSchoolEmailVerified)

	var persisted models.User
	require.NoError(t, db.First(&persisted, user.ID).Error)
	assert.True(t, persisted.IsSchoolEmailVerified)
}

func TestDeactivateHidesUser(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "jdoe")

	require.NoError(t, svc.Deactivate(context.Background(), user.ID))

	_, err := svc.GetActive(context.Background(), user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Deactivating twice finds nothing to deactivate.
	err = svc.Deactivate(context.Background(), user.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSearchFilters(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	alice := createUser(t, db, "alice")
	alice.University = "State University"
	alice.Major = "Computer Science"
	alice.CurrentRole = models.RoleStudent
	require.NoError(t, db.Save(&alice).Error)

	bob := createUser(t, db, "bob")
	bob.University = "state university"
	bob.Major = "Biology"
	bob.CurrentRole = models.RoleAlumni
	require.NoError(t, db.Save(&bob).Error)

	carol := createUser(t, db, "carol")
	carol.University = "Tech Institute"
	require.NoError(t, db.Save(&carol).Error)

	// Exact university filter is case-insensitive.
	users, total, err := svc.Search(context.Background(), SearchFilters{University: "STATE UNIVERSITY"}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 2, total)
	require.Len(t, users, 2)
	assert.Equal(t, alice.ID, users[0].ID)
	assert.Equal(t, bob.ID, users[1].ID)

	users, total, err = svc.Search(context.Background(), SearchFilters{
		University:  "State University",
		CurrentRole: models.RoleAlumni,
	}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	assert.Equal(t, bob.ID, users[0].ID)

	// Free text spans username, name, university and major.
	users, _, err = svc.Search(context.Background(), SearchFilters{Query: "comput"}, 10, 0)
	require.NoError(t, err)
	require.Len(t, users, 1)
	assert.Equal(t, alice.ID, users[0].ID)

	_, _, err = svc.Search(context.Background(), SearchFilters{CurrentRole: "janitor"}, 10, 0)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestSearchCurrentRoleFilterAlone(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	student := createUser(t, db, "student1")
	student.CurrentRole = models.RoleStudent
	require.NoError(t, db.Save(&student).Error)

	faculty := createUser(t, db, "prof1")
	faculty.CurrentRole = models.RoleFaculty
	require.NoError(t, db.Save(&faculty).Error)

	// The role predicate must select on the users column; a match against
	// anything else returns the wrong population.
	users, total, err := svc.Search(context.Background(), SearchFilters{CurrentRole: models.RoleFaculty}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, faculty.ID, users[0].ID)

	users, total, err = svc.Search(context.Background(), SearchFilters{CurrentRole: models.RoleStudent}, 10, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, student.ID, users[0].ID)
}

func TestSearchExcludesInactive(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	user := createUser(t, db, "gone")
	require.NoError(t, svc.Deactivate(context.Background(), user.ID))

	users, total, err := svc.Search(context.Background(), SearchFilters{Query: "gone"}, 10, 0)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, users)
}

func TestPasswordResetFlow(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "jdoe")

	token, err := svc.MintResetToken(context.Background(), user.Email)
	require.NoError(t, err)
	assert.NotEmpty(t, token.Token)
	assert.False(t, token.Used)

	require.NoError(t, svc.ResetPassword(context.Background(), token.Token, "newhash"))

	var updated models.User
	require.NoError(t, db.First(&updated, user.ID).Error)
	assert.Equal(t, "newhash", updated.PasswordHash)

	// Single use: redeeming again is refused.
	err = svc.ResetPassword(context.Background(), token.Token, "another")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestPasswordResetExpiredToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)
	user := createUser(t, db, "jdoe")

	token, err := svc.MintResetToken(context.Background(), user.Email)
	require.NoError(t, err)
	require.NoError(t, db.Model(token).Update("expires_at", time.Now().Add(-time.Minute)).Error)

	err = svc.ResetPassword(context.Background(), token.Token, "newhash")
	assert.ErrorIs(t, err, apperrors.ErrForbidden)
}

func TestPasswordResetUnknownToken(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	err := svc.ResetPassword(context.Background(), "does-not-exist", "newhash")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestMintResetTokenUnknownEmail(t *testing.T) {
	db := newTestDB(t)
	svc := NewUserService(db)

	_, err := svc.MintResetToken(context.Background(), "nobody@example.edu")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
