// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the API server binds to.
	ServerHost string
	// ServerPort is the port the API server listens on.
	ServerPort int
	// ShutdownTimeout bounds graceful shutdown of the API and metrics servers.
	ShutdownTimeout time.Duration

	// LogLevel is the logging level ("debug", "info", "warn", "error").
	LogLevel string

	// RateLimitEnabled enables per-IP rate limiting of the /v1 endpoints.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the sustained request rate allowed per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size allowed per client IP.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace prefixes every exported metric name.
	MetricsNamespace string
	// MetricsPort is the port of the separate metrics server.
	MetricsPort int

	// KMSKeyURI selects the keeper used to seal wrapping key descriptors
	// (gcpkms://, awskms://, azurekeyvault://, hashivault://, base64key://).
	// Empty disables sealing.
	KMSKeyURI string

	// RewrapConcurrency bounds the number of values re-encrypted in parallel per batch.
	RewrapConcurrency int
	// MaxPlaintextBytes rejects larger plaintexts on encrypt and reencrypt. Zero disables the limit.
	MaxPlaintextBytes int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 8080),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT_SECONDS", 10, time.Second),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Rate Limiting
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 50.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 100),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "keywrapper"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// KMS configuration
		KMSKeyURI: env.GetString("KMS_KEY_URI", ""),

		// Codec
		RewrapConcurrency: env.GetInt("REWRAP_CONCURRENCY", 4),
		MaxPlaintextBytes: env.GetInt("MAX_PLAINTEXT_BYTES", 65536),
	}
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// loadDotEnv searches for a .env file from the current directory up to the root
// and loads the first one found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
