package models

import "time"

// PasswordResetToken is a single-use, time-limited token minted for the
// forgot-password flow.
type PasswordResetToken struct {
	ID        uint      `gorm:"primaryKey"`
	UserID    uint      `gorm:"not null;index"`
	Token     string    `gorm:"size:64;not null;uniqueIndex"`
	ExpiresAt time.Time `gorm:"not null"`
	Used      bool      `gorm:"not null;default:false"`
	CreatedAt time.Time

	User User `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE;"`
}

// Usable reports whether the token can still redeem a reset at time now.
func (t *PasswordResetToken) Usable(now time.Time) bool {
	return !t.Used && now.Before(t.ExpiresAt)
}
