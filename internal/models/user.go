package models

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// EnrollmentStatus defines the closed set of enrollment states a user can declare.
type EnrollmentStatus string

const (
	EnrollmentEnrolled   EnrollmentStatus = "enrolled"
	EnrollmentGraduated  EnrollmentStatus = "graduated"
	EnrollmentDroppedOut EnrollmentStatus = "dropped_out"
	EnrollmentOnLeave    EnrollmentStatus = "on_leave"
)

// CurrentClass defines the closed set of class standings.
type CurrentClass string

const (
	ClassFreshman  CurrentClass = "freshman"
	ClassSophomore CurrentClass = "sophomore"
	ClassJunior    CurrentClass = "junior"
	ClassSenior    CurrentClass = "senior"
	ClassGraduate  CurrentClass = "graduate"
)

// CurrentRole defines the closed set of campus roles.
type CurrentRole string

const (
	RoleStudent CurrentRole = "student"
	RoleAlumni  CurrentRole = "alumni"
	RoleFaculty CurrentRole = "faculty"
	RoleStaff   CurrentRole = "staff"
)

// User represents a user in the system. Inactive users are excluded from all
// graph operations (connections, suggestions, feed).
type User struct {
	gorm.Model
	Username     string `gorm:"size:255;unique;not null"`
	Email        string `gorm:"size:255;unique;not null"`
	PasswordHash string `gorm:"size:255;not null"`
	IsActive     bool   `gorm:"not null;default:true;index"`

	SchoolEmail           string `gorm:"size:255"`
	IsSchoolEmailVerified bool   `gorm:"not null;default:false"`

	// Profile fields
	FullName         string                      `gorm:"size:255"`
	AvatarURL        string                      `gorm:"size:512"`
	University       string                      `gorm:"size:255;index"`
	Campus           string                      `gorm:"size:255"`
	Major            string                      `gorm:"size:255;index"`
	EnrollmentStatus EnrollmentStatus            `gorm:"size:50"`
	CurrentClass     CurrentClass                `gorm:"size:50"`
	CurrentRole      CurrentRole                 `gorm:"size:50"`
	GraduationYear   *int
	OneLineBio       string                      `gorm:"size:255"`
	FullBio          string                      `gorm:"type:text"`
	Interests        datatypes.JSONSlice[string]
	Hobbies          datatypes.JSONSlice[string]
	Links            datatypes.JSONSlice[string]
}

// ValidEnrollmentStatus reports whether s is one of the permitted values.
func ValidEnrollmentStatus(s EnrollmentStatus) bool {
	switch s {
	case EnrollmentEnrolled, EnrollmentGraduated, EnrollmentDroppedOut, EnrollmentOnLeave, "":
		return true
	}
	return false
}

// ValidCurrentClass reports whether c is one of the permitted values.
func ValidCurrentClass(c CurrentClass) bool {
	switch c {
	case ClassFreshman, ClassSophomore, ClassJunior, ClassSenior, ClassGraduate, "":
		return true
	}
	return false
}

// ValidCurrentRole reports whether r is one of the permitted values.
func ValidCurrentRole(r CurrentRole) bool {
	switch r {
	case RoleStudent, RoleAlumni, RoleFaculty, RoleStaff, "":
		return true
	}
	return false
}
