// Command migrate creates or updates the game history tables.
package main

import (
	"context"
	"database/sql"
	"flag"
	"time"

	_ "github.com/lib/pq"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/stuagano/wolf-goat-pig/internal/config"
	wgpDB "github.com/stuagano/wolf-goat-pig/internal/modules/wgp/repository/db"
	"github.com/stuagano/wolf-goat-pig/pkg/logger"
)

func main() {
	wait := flag.Duration("wait", 30*time.Second, "How long to wait for the database to accept connections")
	check := flag.Bool("check", false, "Only check connectivity, do not migrate")
	flag.Parse()

	cfg := config.LoadGameConfig()
	logger.Init(logger.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})
	defer logger.Close()

	sqlDB, err := sql.Open("postgres", cfg.Database.URL())
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to open database")
	}
	defer sqlDB.Close()

	if err := waitForDB(sqlDB, *wait); err != nil {
		logger.FatalGlobal().Err(err).Str("host", cfg.Database.Host).Msg("Database not reachable")
	}
	logger.InfoGlobal().Str("host", cfg.Database.Host).Str("db", cfg.Database.Name).Msg("✅ Database reachable")
	if *check {
		return
	}

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		Logger: logger.NewGormLogger(),
	})
	if err != nil {
		logger.FatalGlobal().Err(err).Msg("Failed to wrap database connection")
	}
	if err := wgpDB.AutoMigrate(db); err != nil {
		logger.FatalGlobal().Err(err).Msg("Migration failed")
	}
	logger.InfoGlobal().Msg("✅ History tables migrated")
}

func waitForDB(db *sql.DB, wait time.Duration) error {
	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		err := db.PingContext(ctx)
		if err == nil {
			return nil
		}
		logger.WarnGlobal().Err(err).Msg("Waiting for database...")
		select {
		case <-ctx.Done():
			return err
		case <-ticker.C:
		}
	}
}
