package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the survey service
type Config struct {
	// Server configuration
	HTTPPort int    `env:"SURVEY_HTTP_PORT" envDefault:"8080"`
	GRPCPort int    `env:"SURVEY_GRPC_PORT" envDefault:"9090"`
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`

	// Survey configuration
	Survey SurveyConfig

	// Session configuration
	Session SessionConfig

	// Redis configuration
	Redis RedisConfig

	// Timeouts
	Timeouts TimeoutConfig
}

// SurveyConfig selects which surveys are served and how
type SurveyConfig struct {
	Mode          string `env:"SURVEY_MODE" envDefault:"multi"`
	DefaultSurvey string `env:"SURVEY_DEFAULT" envDefault:"satisfaction"`
	CatalogPath   string `env:"SURVEY_CATALOG_PATH"`

	// How long a finished survey refuses a retake
	CompletionCookieTTL time.Duration `env:"COMPLETION_COOKIE_TTL" envDefault:"60s"`
}

// SessionConfig holds session storage configuration
type SessionConfig struct {
	Backend       string        `env:"SESSION_BACKEND" envDefault:"memory"`
	TTL           time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1m"`
	CookieSecure  bool          `env:"SESSION_COOKIE_SECURE" envDefault:"false"`
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR" envDefault:"localhost:6379"`
	Password string `env:"REDIS_PASS"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`

	// Connection pool settings
	PoolSize     int           `env:"REDIS_POOL_SIZE" envDefault:"10"`
	MinIdleConns int           `env:"REDIS_MIN_IDLE_CONNS" envDefault:"2"`
	MaxRetries   int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	DialTimeout  time.Duration `env:"REDIS_DIAL_TIMEOUT" envDefault:"5s"`
	ReadTimeout  time.Duration `env:"REDIS_READ_TIMEOUT" envDefault:"3s"`
	WriteTimeout time.Duration `env:"REDIS_WRITE_TIMEOUT" envDefault:"3s"`

	// Approximate length kept per event stream
	StreamMaxLen int64 `env:"REDIS_STREAM_MAXLEN" envDefault:"10000"`
}

// TimeoutConfig holds various timeout configurations
type TimeoutConfig struct {
	ReadHeaderTimeout time.Duration `env:"TIMEOUT_READ_HEADER" envDefault:"10s"`
	ShutdownTimeout   time.Duration `env:"TIMEOUT_SHUTDOWN" envDefault:"30s"`
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate server ports
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid HTTP port: %d", c.HTTPPort)
	}
	if c.GRPCPort < 1 || c.GRPCPort > 65535 {
		return fmt.Errorf("invalid gRPC port: %d", c.GRPCPort)
	}
	if c.HTTPPort == c.GRPCPort {
		return fmt.Errorf("HTTP and gRPC ports must differ: %d", c.HTTPPort)
	}

	// Validate survey config
	switch c.Survey.Mode {
	case "single":
		if c.Survey.DefaultSurvey == "" {
			return fmt.Errorf("default survey is required in single mode")
		}
	case "multi":
	default:
		return fmt.Errorf("invalid survey mode: %s (must be single or multi)", c.Survey.Mode)
	}
	if c.Survey.CompletionCookieTTL < time.Second {
		return fmt.Errorf("completion cookie TTL must be at least 1s")
	}

	// Validate session config
	switch c.Session.Backend {
	case "memory":
		if c.Session.SweepInterval <= 0 {
			return fmt.Errorf("session sweep interval must be positive")
		}
	case "redis":
		if c.Redis.Addr == "" {
			return fmt.Errorf("redis address is required")
		}
	default:
		return fmt.Errorf("invalid session backend: %s (must be memory or redis)", c.Session.Backend)
	}
	if c.Session.TTL <= 0 {
		return fmt.Errorf("session TTL must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", c.LogLevel)
	}

	return nil
}

// GetHTTPAddr returns the HTTP server address
func (c *Config) GetHTTPAddr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// GetGRPCAddr returns the gRPC server address
func (c *Config) GetGRPCAddr() string {
	return fmt.Sprintf(":%d", c.GRPCPort)
}
