// Package config provides application configuration through environment variables.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/allisson/go-env"
	"github.com/joho/godotenv"
)

// Supported storage drivers.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
	StorageDriverMySQL    = "mysql"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int
	// ShutdownTimeout bounds graceful shutdown of the HTTP servers.
	ShutdownTimeout time.Duration

	// VaultBaseURI prefixes every entity identifier (e.g. https://localhost:8443).
	// When empty the identifiers are built from the listen address.
	VaultBaseURI string
	// RecoverableDays is reported in the attributes of every entity.
	RecoverableDays int

	// StorageDriver selects the entity repository: "memory", "postgres" or "mysql".
	StorageDriver string
	// DBConnectionString is the connection string for the database.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// AuthEnabled requires a bearer token on every vault endpoint.
	AuthEnabled bool
	// AuthSigningKey is the HS256 key used to sign bearer tokens. A random key is
	// generated at startup when empty, so tokens do not survive restarts.
	AuthSigningKey string
	// AuthTokenExpiration is the duration after which an authentication token expires.
	AuthTokenExpiration time.Duration

	// RateLimitEnabled indicates whether rate limiting for authenticated endpoints is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of requests allowed per second for authenticated endpoints.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for authenticated endpoints rate limiting.
	RateLimitBurst int

	// RateLimitTokenEnabled indicates whether rate limiting for the token endpoint is enabled.
	RateLimitTokenEnabled bool
	// RateLimitTokenRequestsPerSec is the number of requests allowed per second for the token endpoint.
	RateLimitTokenRequestsPerSec float64
	// RateLimitTokenBurst is the burst size for the token endpoint rate limiting.
	RateLimitTokenBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int

	// TLSEnabled serves the vault API over HTTPS.
	TLSEnabled bool
	// TLSCertFile is the PEM certificate chain used when TLS is enabled.
	TLSCertFile string
	// TLSKeyFile is the PEM private key used when TLS is enabled.
	TLSKeyFile string
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost:      env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort:      env.GetInt("SERVER_PORT", 8443),
		ShutdownTimeout: env.GetDuration("SHUTDOWN_TIMEOUT", 10, time.Second),

		// Vault
		VaultBaseURI:    strings.TrimSuffix(env.GetString("VAULT_BASE_URI", ""), "/"),
		RecoverableDays: env.GetInt("RECOVERABLE_DAYS", 90),

		// Storage configuration
		StorageDriver:        env.GetString("STORAGE_DRIVER", StorageDriverMemory),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Auth
		AuthEnabled:         env.GetBool("AUTH_ENABLED", false),
		AuthSigningKey:      env.GetString("AUTH_SIGNING_KEY", ""),
		AuthTokenExpiration: env.GetDuration("AUTH_TOKEN_EXPIRATION_SECONDS", 3600, time.Second),

		// Rate Limiting (authenticated endpoints)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", false),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 50.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 100),

		// Rate Limiting for Token Endpoint (IP-based, unauthenticated)
		RateLimitTokenEnabled:        env.GetBool("RATE_LIMIT_TOKEN_ENABLED", false),
		RateLimitTokenRequestsPerSec: env.GetFloat64("RATE_LIMIT_TOKEN_REQUESTS_PER_SEC", 5.0),
		RateLimitTokenBurst:          env.GetInt("RATE_LIMIT_TOKEN_BURST", 10),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "keyvault"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),

		// TLS
		TLSEnabled:  env.GetBool("TLS_ENABLED", false),
		TLSCertFile: env.GetString("TLS_CERT_FILE", ""),
		TLSKeyFile:  env.GetString("TLS_KEY_FILE", ""),
	}
}

// Validate checks combinations of settings that cannot work together.
func (c *Config) Validate() error {
	switch c.StorageDriver {
	case StorageDriverMemory:
	case StorageDriverPostgres, StorageDriverMySQL:
		if c.DBConnectionString == "" {
			return fmt.Errorf("DB_CONNECTION_STRING is required for storage driver %q", c.StorageDriver)
		}
	default:
		return fmt.Errorf("unsupported storage driver %q", c.StorageDriver)
	}

	if c.TLSEnabled && (c.TLSCertFile == "" || c.TLSKeyFile == "") {
		return fmt.Errorf("TLS_CERT_FILE and TLS_KEY_FILE are required when TLS is enabled")
	}

	if c.RecoverableDays < 0 {
		return fmt.Errorf("RECOVERABLE_DAYS must not be negative")
	}

	if c.AuthTokenExpiration <= 0 {
		return fmt.Errorf("AUTH_TOKEN_EXPIRATION_SECONDS must be positive")
	}

	return nil
}

// BaseURI returns the vault base URI, derived from the listen address when not configured.
func (c *Config) BaseURI() string {
	if c.VaultBaseURI != "" {
		return c.VaultBaseURI
	}

	scheme := "http"
	if c.TLSEnabled {
		scheme = "https"
	}

	host := c.ServerHost
	if host == "" || host == "0.0.0.0" {
		host = "localhost"
	}

	return fmt.Sprintf("%s://%s:%d", scheme, host, c.ServerPort)
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	switch c.LogLevel {
	case "debug":
		return "debug"
	case "info", "warn", "error":
		return "release"
	default:
		return "release"
	}
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	// Get current working directory
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	// Search for .env file recursively up the directory tree
	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			// .env file found, load it
			_ = godotenv.Load(envPath)
			return
		}

		// Move to parent directory
		parent := filepath.Dir(dir)
		if parent == dir {
			// Reached root directory
			break
		}
		dir = parent
	}
}
