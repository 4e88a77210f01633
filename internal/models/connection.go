package models

import (
	"fmt"
	"time"

	"gorm.io/gorm"
)

// ConnectionStatus defines the state of a connection between two users.
type ConnectionStatus string

const (
	// StatusPending means a connection request has been sent but not yet answered.
	StatusPending ConnectionStatus = "pending"

	// StatusAccepted means the request was accepted, and the users are now connected.
	StatusAccepted ConnectionStatus = "accepted"

	// StatusRejected means the addressee declined the request. A rejected row
	// still occupies the pair, so a repeat request conflicts.
	StatusRejected ConnectionStatus = "rejected"

	// StatusBlocked means one party blocked the other. The requester side of
	// the row records who placed the block.
	StatusBlocked ConnectionStatus = "blocked"
)

// Connection represents the relationship between two users. At most one row
// may exist per unordered pair; PairKey carries the unique index that backs
// that invariant at the storage layer regardless of request direction.
type Connection struct {
	ID          uint             `gorm:"primaryKey"`
	RequesterID uint             `gorm:"not null;index"`
	AddresseeID uint             `gorm:"not null;index"`
	PairKey     string           `gorm:"size:64;not null;uniqueIndex"`
	Status      ConnectionStatus `gorm:"type:varchar(20);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RespondedAt *time.Time

	Requester User `gorm:"foreignKey:RequesterID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
	Addressee User `gorm:"foreignKey:AddresseeID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE;"`
}

// PairKeyFor returns the direction-independent key for a user pair.
func PairKeyFor(a, b uint) string {
	if a > b {
		a, b = b, a
	}
	return fmt.Sprintf("%d:%d", a, b)
}

// BeforeCreate derives the pair key and rejects self-pairs before the row
// ever reaches the database.
func (c *Connection) BeforeCreate(tx *gorm.DB) error {
	if c.RequesterID == c.AddresseeID {
		return fmt.Errorf("connection requester and addressee must differ")
	}
	c.PairKey = PairKeyFor(c.RequesterID, c.AddresseeID)
	return nil
}

// OtherUserID returns the pair member that is not userID.
func (c *Connection) OtherUserID(userID uint) uint {
	if c.RequesterID == userID {
		return c.AddresseeID
	}
	return c.RequesterID
}

// Involves reports whether userID is either party of the connection.
func (c *Connection) Involves(userID uint) bool {
	return c.RequesterID == userID || c.AddresseeID == userID
}
