// Command migrate applies the database schema and optionally runs the
// one-time conversion of legacy likes into creation_likes rows.
package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"quickforge/internal/config"
	"quickforge/internal/database"
	"quickforge/internal/middleware"
)

func main() {
	backfill := flag.Bool("backfill-likes", false, "convert legacy likes column into creation_likes rows")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}
	middleware.InitLogger(cfg.Env)

	dsn := fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		cfg.DBUser, cfg.DBPassword, cfg.DBHost, cfg.DBPort, cfg.DBName, cfg.DBSSLMode)

	sqlDB, err := sql.Open("pgx", dsn)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer sqlDB.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	if err := sqlDB.PingContext(ctx); err != nil {
		slog.Error("database unreachable", "error", err)
		os.Exit(1)
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		slog.Error("failed to attach orm", "error", err)
		os.Exit(1)
	}

	if err := database.Migrate(db); err != nil {
		slog.Error("migration failed", "error", err)
		os.Exit(1)
	}
	slog.Info("schema migration complete")

	if *backfill {
		converted, err := database.BackfillLegacyLikes(ctx, db)
		if err != nil {
			slog.Error("legacy likes backfill failed", "error", err, "rows_converted", converted)
			os.Exit(1)
		}
	}
}
