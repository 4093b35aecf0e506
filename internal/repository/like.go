package repository

import (
	"context"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quickforge/internal/models"
)

// LikeRepository defines data access operations for creation likes.
type LikeRepository interface {
	// Toggle likes the creation if the user has not liked it, and
	// unlikes it otherwise. Returns the resulting liked state.
	Toggle(ctx context.Context, creationID uint, userID string) (bool, error)
	Count(ctx context.Context, creationID uint) (int64, error)
	LikedUserIDs(ctx context.Context, creationID uint) ([]string, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository creates a new like repository instance.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Toggle relies on the unique (creation_id, user_id) index: the insert
// is attempted first and a conflict means the like already existed, so
// it is removed instead. Concurrent same-user toggles resolve to
// last-write-wins without corrupting other users' rows.
func (r *likeRepository) Toggle(ctx context.Context, creationID uint, userID string) (bool, error) {
	like := models.Like{CreationID: creationID, UserID: userID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "creation_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if result.Error != nil {
		return false, result.Error
	}

	liked := result.RowsAffected > 0
	if !liked {
		err := r.db.WithContext(ctx).
			Where("creation_id = ? AND user_id = ?", creationID, userID).
			Delete(&models.Like{}).Error
		if err != nil {
			return false, err
		}
	}

	err := r.db.WithContext(ctx).Model(&models.Creation{}).
		Where("id = ?", creationID).
		Update("updated_at", time.Now()).Error
	return liked, err
}

func (r *likeRepository) Count(ctx context.Context, creationID uint) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("creation_id = ?", creationID).
		Count(&count).Error
	return count, err
}

func (r *likeRepository) LikedUserIDs(ctx context.Context, creationID uint) ([]string, error) {
	var userIDs []string
	err := r.db.WithContext(ctx).Model(&models.Like{}).
		Where("creation_id = ?", creationID).
		Order("created_at ASC").
		Pluck("user_id", &userIDs).Error
	return userIDs, err
}
