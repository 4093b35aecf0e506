package database

import (
	"context"
	"log/slog"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quickforge/internal/models"
)

// BackfillLegacyLikes converts rows whose likes column still carries
// the old serialized forms into creation_likes rows. It is idempotent:
// already-converted pairs are skipped by the unique index, and the
// legacy column is left in place so the merge path keeps working for
// rows written by old clients during rollout.
func BackfillLegacyLikes(ctx context.Context, db *gorm.DB) (int64, error) {
	var converted int64

	var legacyRows []struct {
		ID    uint
		Likes string
	}
	err := db.WithContext(ctx).Model(&models.Creation{}).
		Where("likes IS NOT NULL AND likes <> ''").
		Select("id", "likes").
		Find(&legacyRows).Error
	if err != nil {
		return 0, err
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, row := range legacyRows {
			userIDs := models.ParseLegacyLikes(&row.Likes)
			if len(userIDs) == 0 {
				continue
			}

			likes := make([]models.Like, 0, len(userIDs))
			for _, uid := range userIDs {
				likes = append(likes, models.Like{CreationID: row.ID, UserID: uid})
			}
			res := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&likes)
			if res.Error != nil {
				return res.Error
			}
			converted += res.RowsAffected
		}
		return nil
	})
	if err != nil {
		return converted, err
	}

	slog.InfoContext(ctx, "legacy likes backfill complete", "rows_converted", converted)
	return converted, nil
}
