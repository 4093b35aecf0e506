// Command seed fills a development database with fake creations,
// likes and comments.
package main

import (
	"flag"
	"log/slog"
	"os"

	"github.com/brianvoe/gofakeit/v6"
	"gorm.io/gorm/clause"

	"quickforge/internal/config"
	"quickforge/internal/database"
	"quickforge/internal/middleware"
	"quickforge/internal/models"
	"quickforge/internal/seed"
)

func main() {
	users := flag.Int("users", 10, "number of fake users")
	perUser := flag.Int("creations", 8, "creations per user")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	middleware.InitLogger(cfg.Env)

	if cfg.Env == "production" || cfg.Env == "prod" {
		slog.Error("refusing to seed a production database")
		os.Exit(1)
	}

	db, err := database.Connect(cfg)
	if err != nil {
		slog.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	types := []string{
		models.CreationTypeArticle, models.CreationTypeBlogTitle,
		models.CreationTypeImage, models.CreationTypeResume,
		models.CreationTypePrompt,
	}

	userIDs := make([]string, *users)
	for i := range userIDs {
		userIDs[i] = seed.FakeUserID()
	}

	var created int
	for _, userID := range userIDs {
		for i := 0; i < *perUser; i++ {
			creation := seed.FakeCreation(userID, types[gofakeit.Number(0, len(types)-1)])
			if err := db.Create(&creation).Error; err != nil {
				slog.Error("seed creation failed", "error", err)
				os.Exit(1)
			}
			created++

			if !creation.Publish {
				continue
			}
			for _, likerID := range pick(userIDs, gofakeit.Number(0, 5)) {
				like := seed.FakeLike(creation.ID, likerID)
				db.Clauses(clause.OnConflict{DoNothing: true}).Create(&like)
			}
			for _, authorID := range pick(userIDs, gofakeit.Number(0, 3)) {
				comment := seed.FakeComment(creation.ID, authorID)
				db.Create(&comment)
			}
		}
	}

	slog.Info("seed complete", "users", *users, "creations", created)
}

// pick returns up to n distinct entries from ids.
func pick(ids []string, n int) []string {
	if n > len(ids) {
		n = len(ids)
	}
	shuffled := make([]string, len(ids))
	copy(shuffled, ids)
	gofakeit.ShuffleStrings(shuffled)
	return shuffled[:n]
}
