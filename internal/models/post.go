package models

import (
	"time"

	"gorm.io/datatypes"
)

// PostPrivacy defines the visibility tier of a post.
type PostPrivacy string

const (
	PrivacyPublic      PostPrivacy = "public"
	PrivacyConnections PostPrivacy = "connections"
	PrivacyPrivate     PostPrivacy = "private"
)

// ValidPrivacy reports whether p is one of the permitted privacy tiers.
func ValidPrivacy(p PostPrivacy) bool {
	switch p {
	case PrivacyPublic, PrivacyConnections, PrivacyPrivate:
		return true
	}
	return false
}

// Post content limits, enforced before any mutation is attempted.
const (
	PostContentMaxLen    = 5000
	CommentContentMaxLen = 1000
	PostMediaMaxItems    = 10
)

// Post is a user's post. Soft deleted via IsActive; the counters are a
// denormalized projection of the active like/comment rows and are mutated in
// the same transaction as those rows.
type Post struct {
	ID            uint                        `gorm:"primaryKey"`
	UserID        uint                        `gorm:"not null;index"`
	Content       string                      `gorm:"type:text;not null"`
	MediaURLs     datatypes.JSONSlice[string]
	Privacy       PostPrivacy                 `gorm:"type:varchar(20);not null;default:'public'"`
	IsActive      bool                        `gorm:"not null;default:true;index"`
	LikesCount    int                         `gorm:"not null;default:0"`
	CommentsCount int                         `gorm:"not null;default:0"`
	CreatedAt     time.Time                   `gorm:"index"`
	UpdatedAt     time.Time

	Author User `gorm:"foreignKey:UserID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// PostLike is a (post, user) pair; a user may like a post at most once.
// Unlike is a hard delete.
type PostLike struct {
	ID        uint `gorm:"primaryKey"`
	PostID    uint `gorm:"not null;uniqueIndex:idx_post_like,priority:1"`
	UserID    uint `gorm:"not null;uniqueIndex:idx_post_like,priority:2"`
	CreatedAt time.Time

	Post Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE;"`
	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
}

// PostComment is a comment on a post. Replies reference their parent by id
// (flat arena, no embedded child lists). Soft deleting a parent does not
// cascade; replies stay visible.
type PostComment struct {
	ID              uint   `gorm:"primaryKey"`
	PostID          uint   `gorm:"not null;index"`
	UserID          uint   `gorm:"not null;index"`
	Content         string `gorm:"type:text;not null"`
	ParentCommentID *uint  `gorm:"index"`
	IsActive        bool   `gorm:"not null;default:true"`
	CreatedAt       time.Time
	UpdatedAt       time.Time

	Post   Post `gorm:"foreignKey:PostID;references:ID;constraint:OnDelete:CASCADE;"`
	Author User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
}
