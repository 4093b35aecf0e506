package models

import (
	"time"
)

// Like is one user's membership in a creation's like-set.
// The (CreationID, UserID) pair is unique; this table is the canonical
// like encoding that replaced the legacy text column on creations.
type Like struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	CreationID uint      `gorm:"not null;uniqueIndex:idx_creation_user" json:"creation_id"`
	UserID     string    `gorm:"not null;uniqueIndex:idx_creation_user" json:"user_id"`
	CreatedAt  time.Time `json:"created_at"`
}

// TableName keeps the table distinct from any future user-level likes.
func (Like) TableName() string { return "creation_likes" }
