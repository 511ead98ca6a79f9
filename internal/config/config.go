// Package config handles configuration loading for the octavia command.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/octavia-db/octavia-go/octavia"
)

// Config holds all configuration for the command.
type Config struct {
	Octavia OctaviaConfig
	Cache   CacheConfig
	Log     LogConfig
}

// OctaviaConfig holds the connection settings for the Octavia service.
type OctaviaConfig struct {
	URI      string
	Path     string
	Token    string
	Database string
	Password string
	Headers  map[string]string
	Timeout  time.Duration
	Compress bool
}

// Options converts the settings into client options.
func (c OctaviaConfig) Options() octavia.Options {
	return octavia.Options{
		URI:      c.URI,
		Path:     c.Path,
		Token:    c.Token,
		Database: c.Database,
		Password: c.Password,
		Headers:  c.Headers,
	}
}

// CacheConfig holds result cache configuration.
type CacheConfig struct {
	Enabled  bool
	Host     string
	Port     string
	Password string
	DB       int
	TTL      time.Duration
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string
	Format string
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		Octavia: OctaviaConfig{
			URI:      getEnv("OCTAVIA_URI", ""),
			Path:     getEnv("OCTAVIA_PATH", octavia.DefaultPath),
			Token:    getEnv("OCTAVIA_TOKEN", ""),
			Database: getEnv("OCTAVIA_DATABASE", ""),
			Password: getEnv("OCTAVIA_PASSWORD", ""),
			Headers:  parseHeaders(getEnv("OCTAVIA_HEADERS", "")),
			Timeout:  time.Duration(getEnvAsInt("OCTAVIA_TIMEOUT_SECONDS", 30)) * time.Second,
			Compress: getEnvAsBool("OCTAVIA_COMPRESS", false),
		},
		Cache: CacheConfig{
			Enabled:  getEnvAsBool("CACHE_ENABLED", false),
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			TTL:      time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 180)) * time.Second,
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "console"),
		},
	}

	return cfg, nil
}

// parseHeaders parses "Key=Value,Other=Value" into a map. Malformed
// entries are skipped.
func parseHeaders(raw string) map[string]string {
	headers := make(map[string]string)
	for _, pair := range strings.Split(raw, ",") {
		key, value, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			continue
		}
		headers[key] = strings.TrimSpace(value)
	}
	return headers
}

// getEnv gets an environment variable with a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvAsInt gets an environment variable as an integer with a default value.
func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// getEnvAsBool gets an environment variable as a boolean with a default value.
func getEnvAsBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
