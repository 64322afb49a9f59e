package main

import (
	"log/slog"
	"os"

	"fintrack/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

var db *gorm.DB

func initDB() {
	var err error
	db, err = gorm.Open(postgres.Open(cfg.DatabaseDSN), &gorm.Config{})
	if err != nil {
		slog.Error("failed to connect postgres database", "err", err)
		os.Exit(1)
	}
	// Schema migrations are controlled with DB_AUTO_MIGRATE (default true).
	if cfg.AutoMigrate {
		migrateDB(db)
	}
}

// migrateDB migrates models individually so a failure on one doesn't block others.
func migrateDB(g *gorm.DB) {
	if err := g.AutoMigrate(&models.User{}); err != nil {
		slog.Warn("migration warning (users)", "err", err)
	}
	if err := g.AutoMigrate(&models.Expense{}); err != nil {
		slog.Warn("migration warning (expenses)", "err", err)
	}
	if err := g.AutoMigrate(&models.Income{}); err != nil {
		slog.Warn("migration warning (incomes)", "err", err)
	}
	if err := g.AutoMigrate(&models.RefreshToken{}); err != nil {
		slog.Warn("migration warning (refresh_tokens)", "err", err)
	}
}
