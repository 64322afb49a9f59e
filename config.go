package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds the process-wide settings read from the environment. It is
// loaded once in main and treated as immutable afterwards.
type Config struct {
	Port        string
	DatabaseDSN string
	AutoMigrate bool

	JWTSecret       string
	AccessTokenTTL  time.Duration
	RefreshTokenTTL time.Duration

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string
	OpenAITimeout time.Duration
}

func LoadConfig() *Config {
	return &Config{
		Port:        getEnv("PORT", "8081"),
		DatabaseDSN: getEnv("DB_DSN", ""),
		AutoMigrate: getEnvBool("DB_AUTO_MIGRATE", true),

		JWTSecret:       getEnv("JWT_SECRET", ""),
		AccessTokenTTL:  getEnvDuration("ACCESS_TOKEN_TTL", 24*time.Hour),
		RefreshTokenTTL: getEnvDuration("REFRESH_TOKEN_TTL", 30*24*time.Hour),

		OpenAIAPIKey:  getEnv("OPENAI_API_KEY", ""),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-3.5-turbo"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", ""),
		OpenAITimeout: getEnvDuration("OPENAI_TIMEOUT", 60*time.Second),
	}
}

// Validate checks the settings the server cannot run without.
func (c *Config) Validate() error {
	if port, err := strconv.Atoi(c.Port); err != nil {
		return fmt.Errorf("invalid port %q: must be a number", c.Port)
	} else if port < 1 || port > 65535 {
		return fmt.Errorf("invalid port %d: must be between 1 and 65535", port)
	}
	if strings.TrimSpace(c.DatabaseDSN) == "" {
		return fmt.Errorf("DB_DSN is not set; a Postgres DSN is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	v := strings.ToLower(os.Getenv(key))
	if v == "" {
		return fallback
	}
	return v != "false" && v != "0" && v != "no"
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
