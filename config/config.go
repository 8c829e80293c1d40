package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	JWT        JWTConfig
	Cloudinary CloudinaryConfig
	Issues     IssueConfig
	Log        LogConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AllowedOrigins []string
	// RequestsPerMinute is the default per-client rate limit.
	RequestsPerMinute int
	ShutdownTimeout   time.Duration
}

type DatabaseConfig struct {
	URL          string
	MaxOpenConns int
	MaxIdleConns int
}

type JWTConfig struct {
	Secret            string
	ExpiryHours       int
	RefreshExpiryDays int
	Issuer            string
}

type CloudinaryConfig struct {
	URL    string
	Folder string
}

type IssueConfig struct {
	// CatalogFile overrides the built-in category catalog when set.
	CatalogFile string
	// AutoCloseAfter is how long a resolved issue stays resolved before
	// the background job closes it.
	AutoCloseAfter    time.Duration
	AutoCloseInterval time.Duration
}

type LogConfig struct {
	Level       string
	Development bool
}

var AppConfig *Config

// Load reads the configuration from the environment. Call godotenv.Load
// first if a .env file should be honoured.
func Load() *Config {
	AppConfig = &Config{
		Server: ServerConfig{
			Port:              getEnv("PORT", "8080"),
			GinMode:           getEnv("GIN_MODE", "debug"),
			AllowedOrigins:    getEnvAsList("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:8081"}),
			RequestsPerMinute: getEnvAsInt("RATE_LIMIT_PER_MINUTE", 60),
			ShutdownTimeout:   getEnvAsDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DB_URL"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 100),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 10),
		},
		JWT: JWTConfig{
			Secret:            getEnv("JWT_SECRET", "your-super-secret-jwt-key-change-this-in-production"),
			ExpiryHours:       getEnvAsInt("JWT_EXPIRY_HOURS", 24),
			RefreshExpiryDays: getEnvAsInt("JWT_REFRESH_EXPIRY_DAYS", 30),
			Issuer:            getEnv("JWT_ISSUER", "campus-gms"),
		},
		Cloudinary: CloudinaryConfig{
			URL:    os.Getenv("CLOUDINARY_URL"),
			Folder: getEnv("CLOUDINARY_FOLDER", "gms"),
		},
		Issues: IssueConfig{
			CatalogFile:       os.Getenv("GMS_CATALOG_FILE"),
			AutoCloseAfter:    getEnvAsDuration("ISSUE_AUTO_CLOSE_AFTER", 7*24*time.Hour),
			AutoCloseInterval: getEnvAsDuration("ISSUE_AUTO_CLOSE_INTERVAL", time.Hour),
		},
		Log: LogConfig{
			Level:       getEnv("LOG_LEVEL", "info"),
			Development: getEnv("GIN_MODE", "debug") != "release",
		},
	}
	return AppConfig
}

// Validate reports settings the server cannot start without.
func (c *Config) Validate() error {
	if c.Database.URL == "" {
		return fmt.Errorf("DB_URL is required. Set DB_URL to a valid Postgres URL")
	}
	if c.Server.GinMode == "release" && strings.HasPrefix(c.JWT.Secret, "your-super-secret") {
		return fmt.Errorf("JWT_SECRET must be set in release mode")
	}
	if c.JWT.ExpiryHours <= 0 {
		return fmt.Errorf("JWT_EXPIRY_HOURS must be positive, got %d", c.JWT.ExpiryHours)
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getEnvAsList(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
