package repository

import (
	"context"

	"gorm.io/gorm"

	"quickforge/internal/models"
)

// CommentRepository defines data access operations for comments.
// Comments are append-only: there are no update or delete operations
// except the cascade that runs when the parent creation is removed.
type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	ListByCreation(ctx context.Context, creationID uint) ([]models.Comment, error)
	CountByCreation(ctx context.Context, creationID uint) (int64, error)
}

type commentRepository struct {
	db *gorm.DB
}

// NewCommentRepository creates a new comment repository instance.
func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

// ListByCreation returns comments oldest first.
func (r *commentRepository) ListByCreation(ctx context.Context, creationID uint) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("creation_id = ?", creationID).
		Order("created_at ASC").
		Find(&comments).Error
	return comments, err
}

func (r *commentRepository) CountByCreation(ctx context.Context, creationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Comment{}).
		Where("creation_id = ?", creationID).
		Count(&count).Error
	return count, err
}
