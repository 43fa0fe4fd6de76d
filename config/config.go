package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all configuration parameters of the application.
type Config struct {
	DatabaseURL        string
	ServerPort         int
	Environment        string
	TeamSessionSecret  string
	AuthProviderURL    string
	AuthProviderAPIKey string
	LineNotifyToken    string

	R2AccountID       string
	R2AccessKeyID     string
	R2SecretAccessKey string
	R2BucketName      string
	R2PublicBaseURL   string
}

// Load reads the configuration from environment variables.
// A .env file is loaded when present (local development); its absence is not fatal.
func Load() (*Config, error) {
	_ = godotenv.Load()

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		return nil, fmt.Errorf("DATABASE_URL environment variable is not set")
	}

	sessionSecret := os.Getenv("TEAM_SESSION_SECRET")
	if sessionSecret == "" {
		return nil, fmt.Errorf("TEAM_SESSION_SECRET environment variable is not set")
	}

	providerURL := os.Getenv("AUTH_PROVIDER_URL")
	if providerURL == "" {
		return nil, fmt.Errorf("AUTH_PROVIDER_URL environment variable is not set")
	}

	portStr := os.Getenv("SERVER_PORT")
	if portStr == "" {
		portStr = "8080"
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT environment variable: %w", err)
	}
	if port <= 0 || port > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", port)
	}

	env := os.Getenv("ENVIRONMENT")
	if env == "" {
		env = "development"
	}

	cfg := &Config{
		DatabaseURL:        dbURL,
		ServerPort:         port,
		Environment:        env,
		TeamSessionSecret:  sessionSecret,
		AuthProviderURL:    providerURL,
		AuthProviderAPIKey: os.Getenv("AUTH_PROVIDER_API_KEY"),
		LineNotifyToken:    os.Getenv("LINE_NOTIFY_TOKEN"),
		R2AccountID:        os.Getenv("R2_ACCOUNT_ID"),
		R2AccessKeyID:      os.Getenv("R2_ACCESS_KEY_ID"),
		R2SecretAccessKey:  os.Getenv("R2_SECRET_ACCESS_KEY"),
		R2BucketName:       os.Getenv("R2_BUCKET_NAME"),
		R2PublicBaseURL:    os.Getenv("R2_PUBLIC_BASE_URL"),
	}

	return cfg, nil
}

// IsProduction reports whether the app runs with production settings
// (secure cookies, among other things).
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// R2Configured reports whether the avatar storage block is fully configured.
// Avatar uploads are disabled when it is not.
func (c *Config) R2Configured() bool {
	return c.R2AccountID != "" &&
		c.R2AccessKeyID != "" &&
		c.R2SecretAccessKey != "" &&
		c.R2BucketName != "" &&
		c.R2PublicBaseURL != ""
}
