package models

import (
	"time"
)

// Comment is one entry in a creation's append-only comment log.
// Author identity fields are denormalized at append time and never
// refreshed afterwards; a later profile change does not rewrite history.
// There is no update or delete path for a single comment; comments
// only disappear when their creation is deleted.
type Comment struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	CreationID   uint      `gorm:"not null;index" json:"creation_id"`
	AuthorUserID string    `gorm:"not null" json:"user_id"`
	AuthorName   string    `gorm:"column:username" json:"username"`
	AuthorImage  string    `gorm:"column:user_img" json:"user_img"`
	Text         string    `gorm:"type:text;not null" json:"text"`
	CreatedAt    time.Time `json:"created_at"`
}
