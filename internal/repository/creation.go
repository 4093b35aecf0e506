// Package repository implements data access on top of GORM.
package repository

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quickforge/internal/models"
)

// Public feed sort filters.
const (
	FilterNewest   = "newest"
	FilterTop      = "top"
	FilterTrending = "trending"
)

// ValidFilter reports whether s is a recognized feed filter.
func ValidFilter(s string) bool {
	switch s {
	case FilterNewest, FilterTop, FilterTrending:
		return true
	}
	return false
}

// CreationRepository defines data access operations for creations.
type CreationRepository interface {
	Create(ctx context.Context, creation *models.Creation) error
	GetByID(ctx context.Context, id uint, viewerID string) (*models.Creation, error)
	ListByUser(ctx context.Context, userID, creationType string, limit, offset int) ([]models.Creation, error)
	ListPublic(ctx context.Context, filter, viewerID string, limit, offset int) ([]models.Creation, error)
	Update(ctx context.Context, creation *models.Creation) error
	Delete(ctx context.Context, id uint) error
	UpdateIdentitySnapshot(ctx context.Context, userID, username, userImage string) (int64, error)
}

type creationRepository struct {
	db *gorm.DB
}

// NewCreationRepository creates a new creation repository instance.
func NewCreationRepository(db *gorm.DB) CreationRepository {
	return &creationRepository{db: db}
}

// withDetails attaches the computed like count, comment count and the
// viewer's liked flag to the selected rows.
func (r *creationRepository) withDetails(db *gorm.DB, viewerID string) *gorm.DB {
	return db.Model(&models.Creation{}).Select(`creations.*,
		(SELECT COUNT(*) FROM creation_likes WHERE creation_likes.creation_id = creations.id) AS likes_count,
		(SELECT COUNT(*) FROM comments WHERE comments.creation_id = creations.id) AS comments_count,
		EXISTS(SELECT 1 FROM creation_likes WHERE creation_likes.creation_id = creations.id AND creation_likes.user_id = ?) AS liked`,
		viewerID)
}

func applyFilter(db *gorm.DB, filter string) *gorm.DB {
	switch filter {
	case FilterTop:
		return db.Order("likes_count DESC, creations.created_at DESC")
	case FilterTrending:
		// Likes gathered in the last week outrank raw totals.
		since := time.Now().AddDate(0, 0, -7)
		return db.Order(clause.OrderBy{Expression: clause.Expr{
			SQL: `(SELECT COUNT(*) FROM creation_likes
				WHERE creation_likes.creation_id = creations.id
				AND creation_likes.created_at > ?) DESC,
				creations.created_at DESC`,
			Vars: []interface{}{since},
		}})
	default:
		return db.Order("creations.created_at DESC")
	}
}

func (r *creationRepository) Create(ctx context.Context, creation *models.Creation) error {
	return r.db.WithContext(ctx).Create(creation).Error
}

func (r *creationRepository) GetByID(ctx context.Context, id uint, viewerID string) (*models.Creation, error) {
	var creation models.Creation
	err := r.withDetails(r.db.WithContext(ctx), viewerID).
		Where("creations.id = ?", id).
		First(&creation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, models.NewNotFoundError("creation")
	}
	if err != nil {
		return nil, err
	}
	return &creation, nil
}

func (r *creationRepository) ListByUser(ctx context.Context, userID, creationType string, limit, offset int) ([]models.Creation, error) {
	query := r.withDetails(r.db.WithContext(ctx), userID).
		Where("creations.user_id = ?", userID)
	if creationType != "" {
		query = query.Where("creations.type = ?", creationType)
	}

	var creations []models.Creation
	err := query.Order("creations.created_at DESC").
		Limit(limit).Offset(offset).
		Find(&creations).Error
	return creations, err
}

func (r *creationRepository) ListPublic(ctx context.Context, filter, viewerID string, limit, offset int) ([]models.Creation, error) {
	query := r.withDetails(r.db.WithContext(ctx), viewerID).
		Where("creations.publish = ? OR creations.is_public = ?", true, true)
	query = applyFilter(query, filter)

	var creations []models.Creation
	err := query.Limit(limit).Offset(offset).Find(&creations).Error
	return creations, err
}

func (r *creationRepository) Update(ctx context.Context, creation *models.Creation) error {
	result := r.db.WithContext(ctx).Model(creation).
		Select("Title", "PromptText", "Content", "Tags", "IsPublic", "Publish").
		Updates(creation)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("creation")
	}
	return nil
}

// Delete removes the creation and its likes and comments in one
// transaction.
func (r *creationRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("creation_id = ?", id).Delete(&models.Like{}).Error; err != nil {
			return err
		}
		if err := tx.Where("creation_id = ?", id).Delete(&models.Comment{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Creation{}, id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return models.NewNotFoundError("creation")
		}
		return nil
	})
}

// UpdateIdentitySnapshot rewrites the denormalized author name and
// image on every creation owned by the user. Returns the number of
// rows touched.
func (r *creationRepository) UpdateIdentitySnapshot(ctx context.Context, userID, username, userImage string) (int64, error) {
	result := r.db.WithContext(ctx).Model(&models.Creation{}).
		Where("user_id = ?", userID).
		Updates(map[string]interface{}{"username": username, "user_img": userImage})
	return result.RowsAffected, result.Error
}
