// Package config provides configuration management for CoreMem.
package config

import (
	"fmt"
	"time"
)

// Config is the global configuration for CoreMem.
type Config struct {
	// App is the application configuration.
	App AppConfig `mapstructure:"app" validate:"required"`

	// Server is the HTTP API configuration.
	Server ServerConfig `mapstructure:"server" validate:"required"`

	// Log is the logging configuration.
	Log LogConfig `mapstructure:"log" validate:"required"`

	// Storage selects and tunes the key-value backend for the record store.
	Storage StorageConfig `mapstructure:"storage"`

	// Model configures the language model used for enrichment, ranking and synthesis.
	Model ModelConfig `mapstructure:"model"`

	// Metrics is the Prometheus configuration.
	Metrics MetricsConfig `mapstructure:"metrics"`

	// Tracing is the OpenTelemetry configuration.
	Tracing TracingConfig `mapstructure:"tracing"`
}

// AppConfig holds application metadata and settings.
type AppConfig struct {
	// Name is the application name.
	Name string `mapstructure:"name" validate:"required"`

	// Version is the application version.
	Version string `mapstructure:"version"`

	// Environment is the runtime environment (development, staging, production).
	Environment string `mapstructure:"environment" validate:"env"`

	// Debug enables debug mode with verbose logging.
	Debug bool `mapstructure:"debug"`
}

// ServerConfig holds the HTTP server configuration.
type ServerConfig struct {
	// Host is the bind address.
	Host string `mapstructure:"host"`

	// Port is the HTTP API port.
	Port int `mapstructure:"port" validate:"required,min=1,max=65535"`

	// HTTP holds timeouts and limits.
	HTTP HTTPConfig `mapstructure:"http"`

	// CORS is the CORS configuration.
	CORS CORSConfig `mapstructure:"cors"`

	// WebSocket configures the live event stream.
	WebSocket WebSocketConfig `mapstructure:"websocket"`
}

// HTTPConfig holds HTTP-specific settings.
type HTTPConfig struct {
	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout time.Duration `mapstructure:"read_timeout"`

	// WriteTimeout is the maximum duration before timing out writes.
	// Searches make up to two model calls, so keep this above twice model.timeout.
	WriteTimeout time.Duration `mapstructure:"write_timeout"`

	// IdleTimeout is the maximum amount of time to wait for the next request.
	IdleTimeout time.Duration `mapstructure:"idle_timeout"`

	// RequestTimeout bounds the handler context of each API request.
	RequestTimeout time.Duration `mapstructure:"request_timeout"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown.
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`

	// MaxHeaderBytes limits the size of request headers.
	MaxHeaderBytes int `mapstructure:"max_header_bytes"`

	// MaxBodyBytes limits the size of request bodies.
	MaxBodyBytes int64 `mapstructure:"max_body_bytes" validate:"min=0"`
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	Enabled          bool     `mapstructure:"enabled"`
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	ExposedHeaders   []string `mapstructure:"exposed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
	// MaxAge is the preflight cache lifetime in seconds.
	MaxAge int `mapstructure:"max_age"`
}

// WebSocketConfig holds the event stream settings.
type WebSocketConfig struct {
	// Enabled mounts the /ws/events endpoint.
	Enabled bool `mapstructure:"enabled"`

	// MaxConnections caps concurrent subscribers. Zero uses the default of 100.
	MaxConnections int `mapstructure:"max_connections" validate:"min=0"`

	// PingInterval is how often idle connections are pinged.
	PingInterval time.Duration `mapstructure:"ping_interval"`
}

// LogConfig holds logging settings.
type LogConfig struct {
	// Level is the log level (debug, info, warn, error).
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`

	// Format is the output format (json, text).
	Format string `mapstructure:"format" validate:"oneof=json text"`

	// Output is the output destination (stdout, stderr, or file path).
	Output string `mapstructure:"output"`
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	// Type is the storage backend (memory, badger, redis).
	Type string `mapstructure:"type" validate:"oneof=memory badger redis"`

	// Namespace prefixes the collection keys, allowing several users per backend.
	Namespace string `mapstructure:"namespace"`

	// Badger is the BadgerDB configuration.
	Badger BadgerConfig `mapstructure:"badger"`

	// Redis is the Redis configuration.
	Redis RedisConfig `mapstructure:"redis"`

	// Cache is the read-through cache placed in front of the backend.
	Cache CacheConfig `mapstructure:"cache"`
}

// BadgerConfig holds BadgerDB-specific settings.
type BadgerConfig struct {
	// Path is the database directory path.
	Path string `mapstructure:"path"`

	// SyncWrites enables synchronous writes for durability.
	SyncWrites bool `mapstructure:"sync_writes"`

	// ValueLogFileSize is the maximum size of value log files in bytes.
	ValueLogFileSize int64 `mapstructure:"value_log_file_size" validate:"min=0"`

	// NumVersionsToKeep is the number of versions to keep per key.
	NumVersionsToKeep int `mapstructure:"num_versions_to_keep" validate:"min=0"`
}

// RedisConfig holds Redis-specific settings.
type RedisConfig struct {
	Address      string        `mapstructure:"address"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db" validate:"min=0"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// CacheConfig holds ristretto settings.
type CacheConfig struct {
	Enabled     bool  `mapstructure:"enabled"`
	NumCounters int64 `mapstructure:"num_counters" validate:"min=0"`
	MaxCost     int64 `mapstructure:"max_cost" validate:"min=0"`
	BufferItems int64 `mapstructure:"buffer_items" validate:"min=0"`
}

// ModelConfig holds language model settings.
type ModelConfig struct {
	// Provider is the model backend (anthropic, openai, fake).
	Provider string `mapstructure:"provider" validate:"oneof=anthropic openai fake"`

	// Model is the provider-specific model identifier.
	Model string `mapstructure:"model"`

	// APIKey authenticates with the provider. When empty the provider's
	// standard environment variable is used.
	APIKey string `mapstructure:"api_key"`

	// BaseURL overrides the provider endpoint, e.g. for OpenAI-compatible gateways.
	BaseURL string `mapstructure:"base_url"`

	// MaxTokens caps each reply.
	MaxTokens int `mapstructure:"max_tokens" validate:"min=1"`

	// Timeout bounds a single model call.
	Timeout time.Duration `mapstructure:"timeout"`

	// RateLimit throttles outgoing calls.
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`

	// Breaker stops calling a failing provider for a while.
	Breaker BreakerConfig `mapstructure:"breaker"`
}

// RateLimitConfig holds token bucket settings.
type RateLimitConfig struct {
	Enabled bool    `mapstructure:"enabled"`
	RPS     float64 `mapstructure:"rps" validate:"min=0"`
	Burst   int     `mapstructure:"burst" validate:"min=1"`
}

// BreakerConfig holds circuit breaker settings.
type BreakerConfig struct {
	Enabled bool `mapstructure:"enabled"`

	// MaxRequests is the number of probe calls allowed while half-open.
	MaxRequests uint32 `mapstructure:"max_requests"`

	// Interval clears the failure counts while closed. Zero never clears.
	Interval time.Duration `mapstructure:"interval"`

	// Timeout is how long the breaker stays open.
	Timeout time.Duration `mapstructure:"timeout"`

	// FailureThreshold is the number of consecutive failures that opens the breaker.
	FailureThreshold uint32 `mapstructure:"failure_threshold" validate:"min=1"`
}

// MetricsConfig holds Prometheus settings.
type MetricsConfig struct {
	// Enabled enables metrics collection.
	Enabled bool `mapstructure:"enabled"`

	// Path is the metrics endpoint path.
	Path string `mapstructure:"path"`

	// Port is the metrics server port.
	Port int `mapstructure:"port" validate:"min=1,max=65535"`
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	// Enabled enables distributed tracing.
	Enabled bool `mapstructure:"enabled"`

	// Exporter is the span exporter (otlp).
	Exporter string `mapstructure:"exporter" validate:"oneof=otlp"`

	// Endpoint is the OTLP gRPC collector endpoint.
	Endpoint string `mapstructure:"endpoint"`

	// Timeout bounds each export.
	Timeout time.Duration `mapstructure:"timeout"`

	// Headers are sent with every export request.
	Headers map[string]string `mapstructure:"headers"`

	// Sampler is always_on, always_off or ratio.
	Sampler string `mapstructure:"sampler" validate:"oneof=always_on always_off ratio"`

	// SampleRate is the fraction of traces to sample when Sampler is ratio.
	SampleRate float64 `mapstructure:"sample_rate" validate:"min=0,max=1"`
}

// Validate performs validation on the configuration.
func (c *Config) Validate() error {
	if err := ValidateWithDetails(c); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}

// String returns a string representation of the configuration (without sensitive data).
func (c *Config) String() string {
	return fmt.Sprintf("Config{App: %s, Server: :%d, Env: %s, Storage: %s, Model: %s/%s}",
		c.App.Name, c.Server.Port, c.App.Environment, c.Storage.Type, c.Model.Provider, c.Model.Model)
}
