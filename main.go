package main

import (
	"log/slog"
	"os"

	"fintrack/pkg/openai"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

var (
	cfg       *Config
	jwtSecret []byte // loaded from env JWT_SECRET (fallback to dev default)
	aiClient  *openai.Client
)

func main() {
	// Auto-load ./.env if present before reading vars; already-set variables win.
	_ = godotenv.Load()

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, nil)))

	cfg = LoadConfig()
	if cfg.JWTSecret == "" {
		cfg.JWTSecret = "dev-insecure-secret-change" // development fallback
		slog.Warn("JWT_SECRET not set, using insecure development secret")
	}
	jwtSecret = []byte(cfg.JWTSecret)
	if err := cfg.Validate(); err != nil {
		slog.Error("invalid configuration", "err", err)
		os.Exit(1)
	}

	aiClient = openai.New(cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIBaseURL, cfg.OpenAITimeout)

	// Support a lightweight migrate command: `./fintrack migrate`
	// It runs AutoMigrate then exits. Useful for CI or manual DB setup.
	if len(os.Args) > 1 && os.Args[1] == "migrate" {
		initDB()
		slog.Info("migration completed")
		return
	}

	initDB()

	r := gin.Default()

	setupRoutes(r)

	r.Run(":" + cfg.Port)
}
