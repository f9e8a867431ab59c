// Package config provides centralized configuration management for the application.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Engine   EngineConfig
	Ingest   IngestConfig
	Upload   UploadConfig
	Rate     RateLimitConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on; PORT is accepted for platform compatibility (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading the request, body included (default: 2m)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"2m"`

	// WriteTimeout is the maximum duration for writing the response (default: 2m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"2m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout bounds a single validate or convert call (default: 90s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"90s"`
}

// EngineConfig holds settings for the embedded analytical engine.
type EngineConfig struct {
	// MemoryLimit caps engine memory, in engine syntax (default: 512MB)
	MemoryLimit string `env:"ENGINE_MEMORY_LIMIT" default:"512MB"`

	// Threads is the number of engine worker threads (default: 2)
	Threads int `env:"ENGINE_THREADS" default:"2"`

	// ExtensionDir is where engine extensions are installed (default: engine's own)
	ExtensionDir string `env:"ENGINE_EXTENSION_DIR"`

	// OfflineExtensions forbids downloading extensions at runtime (default: true)
	OfflineExtensions bool `env:"ENGINE_OFFLINE_EXTENSIONS" default:"true"`

	// TempDir is the spill directory (default: system temp dir)
	TempDir string `env:"ENGINE_TEMP_DIR"`
}

// IngestConfig holds validation and conversion limits.
type IngestConfig struct {
	// SizeGateBytes is the size at which local validation is skipped (default: 1000000000)
	SizeGateBytes int64 `env:"INGEST_SIZE_GATE_BYTES" default:"1000000000"`

	// PreviewRows is the number of rows returned in a preview (default: 10)
	PreviewRows int `env:"INGEST_PREVIEW_ROWS" default:"10"`

	// MaxDecompressedBytes caps .gz/.xz uploads once unpacked (default: 2000000000)
	MaxDecompressedBytes int64 `env:"INGEST_MAX_DECOMPRESSED_BYTES" default:"2000000000"`
}

// UploadConfig holds limits for files received over HTTP.
type UploadConfig struct {
	// MaxFileSize is the maximum accepted request body in bytes (default: 256MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"268435456"`

	// MaxConcurrent is the maximum number of parallel engine sessions (default: 4)
	MaxConcurrent int `env:"UPLOAD_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long to wait for a session slot (default: 30s)
	MaxWaitTime time.Duration `env:"UPLOAD_MAX_WAIT_TIME" default:"30s"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the rate limit per IP (default: 60)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"60"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
