// Package models contains data structures for the application's domain models.
package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"
)

// Creation types. A creation is either system-authored (article, blogTitle,
// image, resume; content written once by the generator) or user-authored
// (prompt, editable by its owner).
const (
	CreationTypeArticle   = "article"
	CreationTypeBlogTitle = "blogTitle"
	CreationTypeImage     = "image"
	CreationTypeResume    = "resume"
	CreationTypePrompt    = "prompt"
)

// ValidCreationType reports whether t is a known creation type.
func ValidCreationType(t string) bool {
	switch t {
	case CreationTypeArticle, CreationTypeBlogTitle, CreationTypeImage,
		CreationTypeResume, CreationTypePrompt:
		return true
	}
	return false
}

// StringList is a []string stored as a JSON text column so the same model
// works against both PostgreSQL and the SQLite test driver.
type StringList []string

// Value implements driver.Valuer.
func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(l))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner.
func (l *StringList) Scan(src any) error {
	if src == nil {
		*l = nil
		return nil
	}
	var raw []byte
	switch v := src.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("StringList: cannot scan %T", src)
	}
	if len(raw) == 0 {
		*l = nil
		return nil
	}
	return json.Unmarshal(raw, (*[]string)(l))
}

// Creation is the persisted aggregate for one generated or user-authored
// artifact. UserID is the external identity-provider id (never a local
// account); Username/UserImage are a denormalized snapshot of that identity,
// refreshed on create and on user.updated webhooks.
type Creation struct {
	ID         uint       `gorm:"primaryKey" json:"id"`
	UserID     string     `gorm:"not null;index" json:"user_id"`
	Type       string     `gorm:"not null;index" json:"type"`
	Title      string     `json:"title"`
	PromptText string     `gorm:"column:prompt;type:text" json:"prompt"`
	Content    string     `gorm:"type:text" json:"content"`
	Tags       StringList `gorm:"type:text" json:"tags"`
	IsPublic   bool       `json:"is_public"`
	Publish    bool       `json:"publish"`
	Username   string     `json:"username"`
	UserImage  string     `gorm:"column:user_img" json:"user_img"`

	// LegacyLikes carries the historical like encodings (JSON array text,
	// brace-delimited string, or NULL) that predate the creation_likes
	// table. New writes never touch it; see ParseLegacyLikes.
	LegacyLikes *string `gorm:"column:likes" json:"-"`

	// Computed at query time, not persisted.
	LikesCount    int64 `gorm:"->" json:"likes_count"`
	CommentsCount int64 `gorm:"->" json:"comments_count"`
	Liked         bool  `gorm:"->" json:"liked"`

	// LikedBy is the canonical like-set assembled by the feed composer.
	LikedBy []string `gorm:"-" json:"likes"`

	// Comments is populated by the feed composer; empty rather than
	// null when the creation has none.
	Comments []Comment `gorm:"-" json:"comments"`

	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// Editable reports whether the creation type supports the edit operation.
// Only user-authored prompts are editable; generated content is immutable.
func (c *Creation) Editable() bool {
	return c.Type == CreationTypePrompt
}
