package config

import (
	"os"

	"github.com/joho/godotenv"
)

// LoadTestConfig loads configuration for integration tests. The backend address is left to the
// test, which usually points the portal at an httptest server
func LoadTestConfig() (*Config, error) {
	// .env is optional for tests
	_ = godotenv.Load()

	cfg := defaults()
	cfg.Session.JWTSecret = os.Getenv("TEST_JWT_SECRET")
	if level := os.Getenv("TEST_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}

	return cfg, nil
}
