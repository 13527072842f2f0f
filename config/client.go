package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kbukum/gopocket/logger"
	"github.com/kbukum/gopocket/security"
	"github.com/kbukum/gopocket/store"
	"github.com/kbukum/gopocket/validation"
)

// Storage drivers for the auth state.
const (
	StorageMemory = "memory"
	StorageFile   = "file"
	StorageRedis  = "redis"
	StorageSQL    = "sql"
)

// Client is the full configuration of a PocketBase client.
type Client struct {
	BaseURL   string               `yaml:"base_url" mapstructure:"base_url" validate:"required,url"`
	Locale    string               `yaml:"locale" mapstructure:"locale" validate:"required"`
	Timeout   time.Duration        `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	UserAgent string               `yaml:"user_agent" mapstructure:"user_agent"`
	Proxy     string               `yaml:"proxy" mapstructure:"proxy" validate:"omitempty,url"`
	TLS       security.TLSConfig   `yaml:"tls" mapstructure:"tls"`
	Auth      AuthConfig           `yaml:"auth" mapstructure:"auth"`
	RateLimit RateLimitConfig      `yaml:"rate_limit" mapstructure:"rate_limit"`
	Breaker   CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`
	Retry     RetryConfig          `yaml:"retry" mapstructure:"retry"`

	// MaxInFlight caps concurrent requests. 0 disables the cap.
	MaxInFlight int `yaml:"max_in_flight" mapstructure:"max_in_flight" validate:"gte=0"`

	Logging logger.Config `yaml:"logging" mapstructure:"logging"`
	Tracing TracingConfig `yaml:"tracing" mapstructure:"tracing"`
	Metrics MetricsConfig `yaml:"metrics" mapstructure:"metrics"`
}

// AuthConfig selects where the token and identity are persisted.
type AuthConfig struct {
	Storage     string `yaml:"storage" mapstructure:"storage" validate:"omitempty,oneof=memory file redis sql"`
	TokenKey    string `yaml:"token_key" mapstructure:"token_key"`
	IdentityKey string `yaml:"identity_key" mapstructure:"identity_key"`

	// FilePath and EncryptionKey configure the file driver. An empty
	// EncryptionKey stores plaintext.
	FilePath      string `yaml:"file_path" mapstructure:"file_path"`
	EncryptionKey string `yaml:"encryption_key" mapstructure:"encryption_key"`

	Redis store.RedisConfig `yaml:"redis" mapstructure:"redis"`
	SQL   store.SQLConfig   `yaml:"sql" mapstructure:"sql"`
}

// RateLimitConfig enables the client-side token bucket.
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" mapstructure:"enabled"`
	Rate    float64 `yaml:"rate" mapstructure:"rate" validate:"gte=0"`
	Burst   int     `yaml:"burst" mapstructure:"burst" validate:"gte=0"`
}

// CircuitBreakerConfig enables the circuit breaker layer.
type CircuitBreakerConfig struct {
	Enabled          bool          `yaml:"enabled" mapstructure:"enabled"`
	MaxFailures      int           `yaml:"max_failures" mapstructure:"max_failures" validate:"gte=0"`
	Timeout          time.Duration `yaml:"timeout" mapstructure:"timeout"`
	HalfOpenMaxCalls int           `yaml:"half_open_max_calls" mapstructure:"half_open_max_calls"`
}

// RetryConfig enables the opt-in retry layer. MaxAttempts <= 1 disables it.
type RetryConfig struct {
	MaxAttempts    int           `yaml:"max_attempts" mapstructure:"max_attempts" validate:"gte=0"`
	InitialBackoff time.Duration `yaml:"initial_backoff" mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `yaml:"max_backoff" mapstructure:"max_backoff"`
}

// TracingConfig enables OTLP trace export.
type TracingConfig struct {
	Enabled     bool    `yaml:"enabled" mapstructure:"enabled"`
	ServiceName string  `yaml:"service_name" mapstructure:"service_name"`
	Endpoint    string  `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure    bool    `yaml:"insecure" mapstructure:"insecure"`
	SampleRate  float64 `yaml:"sample_rate" mapstructure:"sample_rate" validate:"gte=0,lte=1"`
}

// MetricsConfig enables OTLP metric export.
type MetricsConfig struct {
	Enabled     bool          `yaml:"enabled" mapstructure:"enabled"`
	ServiceName string        `yaml:"service_name" mapstructure:"service_name"`
	Endpoint    string        `yaml:"endpoint" mapstructure:"endpoint"`
	Insecure    bool          `yaml:"insecure" mapstructure:"insecure"`
	Interval    time.Duration `yaml:"interval" mapstructure:"interval"`
}

// ApplyDefaults fills in zero values.
func (c *Client) ApplyDefaults() {
	if c.Locale == "" {
		c.Locale = "en-US"
	}
	if c.Timeout == 0 {
		c.Timeout = 30 * time.Second
	}

	if c.Auth.Storage == "" {
		c.Auth.Storage = StorageMemory
	}
	if c.Auth.TokenKey == "" {
		c.Auth.TokenKey = "pb_auth"
	}
	if c.Auth.IdentityKey == "" {
		c.Auth.IdentityKey = "pb_user_or_admin"
	}
	if c.Auth.Storage == StorageFile && c.Auth.FilePath == "" {
		c.Auth.FilePath = "pb_auth.json"
	}
	if c.Auth.Redis.Addr == "" {
		c.Auth.Redis.Addr = "localhost:6379"
	}
	if c.Auth.Redis.KeyPrefix == "" {
		c.Auth.Redis.KeyPrefix = "pocketbase:"
	}
	if c.Auth.SQL.Table == "" {
		c.Auth.SQL.Table = "pb_auth_state"
	}

	if c.RateLimit.Enabled {
		if c.RateLimit.Rate == 0 {
			c.RateLimit.Rate = 10
		}
		if c.RateLimit.Burst == 0 {
			c.RateLimit.Burst = 20
		}
	}
	if c.Breaker.Enabled {
		if c.Breaker.MaxFailures == 0 {
			c.Breaker.MaxFailures = 5
		}
		if c.Breaker.Timeout == 0 {
			c.Breaker.Timeout = 30 * time.Second
		}
		if c.Breaker.HalfOpenMaxCalls == 0 {
			c.Breaker.HalfOpenMaxCalls = 1
		}
	}
	if c.Retry.MaxAttempts > 1 {
		if c.Retry.InitialBackoff == 0 {
			c.Retry.InitialBackoff = 100 * time.Millisecond
		}
		if c.Retry.MaxBackoff == 0 {
			c.Retry.MaxBackoff = 5 * time.Second
		}
	}

	c.Logging.ApplyDefaults()

	if c.Tracing.ServiceName == "" {
		c.Tracing.ServiceName = "gopocket"
	}
	if c.Tracing.Endpoint == "" {
		c.Tracing.Endpoint = "localhost:4318"
	}
	if c.Tracing.SampleRate == 0 {
		c.Tracing.SampleRate = 1.0
	}
	if c.Metrics.ServiceName == "" {
		c.Metrics.ServiceName = "gopocket"
	}
	if c.Metrics.Endpoint == "" {
		c.Metrics.Endpoint = "localhost:4318"
	}
	if c.Metrics.Interval == 0 {
		c.Metrics.Interval = 15 * time.Second
	}
}

// Validate checks the configuration. Call ApplyDefaults first.
func (c *Client) Validate() error {
	if err := validation.Validate(c); err != nil {
		return err
	}
	if _, err := url.Parse(c.BaseURL); err != nil {
		return fmt.Errorf("base_url: %w", err)
	}
	if err := c.TLS.Validate(); err != nil {
		return fmt.Errorf("tls: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return err
	}

	switch c.Auth.Storage {
	case StorageRedis:
		if c.Auth.Redis.Addr == "" {
			return fmt.Errorf("auth.redis.addr is required for the redis storage")
		}
	case StorageSQL:
		if c.Auth.SQL.Driver == "" || c.Auth.SQL.DSN == "" {
			return fmt.Errorf("auth.sql.driver and auth.sql.dsn are required for the sql storage")
		}
	case StorageFile:
		if c.Auth.FilePath == "" {
			return fmt.Errorf("auth.file_path is required for the file storage")
		}
	}
	return nil
}
