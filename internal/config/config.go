// Package config provides configuration for the portal
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the portal
type Config struct {
	Server  ServerConfig
	Logging LoggingConfig
	CORS    CORSConfig
	Backend BackendConfig
	Session SessionConfig
	Upload  UploadConfig
	CSRF    CSRFConfig
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// BackendConfig holds the LMS REST backend settings
type BackendConfig struct {
	BaseURL string
	// Timeout of zero leaves the transport default in place
	Timeout time.Duration
}

// SessionConfig holds the token cookie and JWT settings
type SessionConfig struct {
	CookieName   string
	CookieSecure bool
	// JWTSecret is optional. When empty, token claims are read without signature verification
	JWTSecret string
}

// UploadConfig holds lesson file upload limits
type UploadConfig struct {
	MaxSizeBytes int64
}

// CSRFConfig holds CSRF protection settings for form posts
type CSRFConfig struct {
	Key string
}

// Enabled reports whether CSRF protection is configured
func (c CSRFConfig) Enabled() bool {
	return c.Key != ""
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	_ = godotenv.Load()

	cfg := defaults()

	// Backend configuration
	baseURL := os.Getenv("BACKEND_BASE_URL")
	if baseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL is required")
	}
	cfg.Backend.BaseURL = strings.TrimRight(baseURL, "/")

	if timeoutStr := os.Getenv("BACKEND_TIMEOUT"); timeoutStr != "" {
		timeout, err := time.ParseDuration(timeoutStr)
		if err != nil {
			return nil, fmt.Errorf("invalid BACKEND_TIMEOUT: %w", err)
		}
		cfg.Backend.Timeout = timeout
	}

	// Server configuration
	if serverPortStr := os.Getenv("SERVER_PORT"); serverPortStr != "" {
		serverPort, err := strconv.Atoi(serverPortStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
		}
		cfg.Server.Port = serverPort
	}

	// Logging configuration
	if logLevel := os.Getenv("LOG_LEVEL"); logLevel != "" {
		cfg.Logging.Level = logLevel
	}

	// CORS configuration
	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Session configuration
	if cookieName := os.Getenv("SESSION_COOKIE"); cookieName != "" {
		cfg.Session.CookieName = cookieName
	}
	if secureStr := os.Getenv("SESSION_COOKIE_SECURE"); secureStr != "" {
		secure, err := strconv.ParseBool(secureStr)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_COOKIE_SECURE: %w", err)
		}
		cfg.Session.CookieSecure = secure
	}
	cfg.Session.JWTSecret = os.Getenv("JWT_SECRET") // optional

	// Upload configuration
	if maxSizeStr := os.Getenv("UPLOAD_MAX_SIZE_MB"); maxSizeStr != "" {
		maxSize, err := strconv.Atoi(maxSizeStr)
		if err != nil || maxSize <= 0 {
			return nil, fmt.Errorf("invalid UPLOAD_MAX_SIZE_MB: %q", maxSizeStr)
		}
		cfg.Upload.MaxSizeBytes = int64(maxSize) << 20
	}

	// CSRF configuration
	csrfKey := os.Getenv("CSRF_KEY")
	if csrfKey != "" && len(csrfKey) != 32 {
		return nil, fmt.Errorf("CSRF_KEY must be 32 bytes, got %d", len(csrfKey))
	}
	cfg.CSRF.Key = csrfKey

	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Server:  ServerConfig{Port: 8080},
		Logging: LoggingConfig{Level: "info"},
		CORS:    CORSConfig{AllowedOrigins: []string{"*"}},
		Backend: BackendConfig{Timeout: 30 * time.Second},
		Session: SessionConfig{CookieName: "access_token"},
		Upload:  UploadConfig{MaxSizeBytes: 50 << 20}, // 50MB
	}
}

// parseOrigins parses a comma-separated origin list, defaulting to allow all
func parseOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}
	origins := strings.Split(raw, ",")
	result := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			result = append(result, origin)
		}
	}
	if len(result) == 0 {
		return []string{"*"}
	}
	return result
}
