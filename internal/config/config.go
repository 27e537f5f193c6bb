package config

import (
	"fmt"
	"time"
)

// Config holds the application's configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Redis     RedisConfig     `mapstructure:"redis"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
	Risk      RiskConfig      `mapstructure:"risk"`
	Kafka     KafkaConfig     `mapstructure:"kafka"`
	Log       LogConfig       `mapstructure:"log"`
}

// ServerConfig configures the admin/metrics HTTP listener.
type ServerConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Environment     string `mapstructure:"environment"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // in seconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // in seconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // in seconds
}

// RedisConfig configures the shared counter store connection.
type RedisConfig struct {
	Addr         string        `mapstructure:"addr"`
	Password     string        `mapstructure:"password"`
	DB           int           `mapstructure:"db"`
	PoolSize     int           `mapstructure:"pool_size"`
	MinIdleConns int           `mapstructure:"min_idle_conns"`
	DialTimeout  time.Duration `mapstructure:"dial_timeout"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

// RateLimitConfig configures the adaptive rate limiter.
type RateLimitConfig struct {
	// KeyPrefix namespaces all limiter keys in the shared store.
	KeyPrefix string `mapstructure:"key_prefix"`
	// MaintenanceInterval drives the health re-probe and the local sweep.
	MaintenanceInterval time.Duration `mapstructure:"maintenance_interval"`
	// LocalRetention bounds how long the local backend keeps timestamps.
	LocalRetention time.Duration `mapstructure:"local_retention"`
	// BackendTimeout bounds a single shared-backend round trip.
	BackendTimeout time.Duration `mapstructure:"backend_timeout"`
}

// RiskConfig configures the risk scorer.
type RiskConfig struct {
	// ProfileTTL is how long an idle risk profile is retained.
	ProfileTTL time.Duration `mapstructure:"profile_ttl"`
	// UserAgentDenylist lists automation tokens matched case-insensitively
	// as substrings of the User-Agent header.
	UserAgentDenylist []string `mapstructure:"user_agent_denylist"`
}

// KafkaConfig configures the security-event publisher.
type KafkaConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	Brokers       []string      `mapstructure:"brokers"`
	Topic         string        `mapstructure:"topic"`
	BatchSize     int           `mapstructure:"batch_size"`
	BatchTimeout  time.Duration `mapstructure:"batch_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
	RequiredAcks  int           `mapstructure:"required_acks"`
}

// LogConfig configures logging output.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Validate checks for essential configuration values.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be in (0, 65535], got %d", c.Server.Port)
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("redis.addr is required")
	}
	if c.RateLimit.MaintenanceInterval <= 0 {
		return fmt.Errorf("rate_limit.maintenance_interval must be positive")
	}
	if c.RateLimit.LocalRetention <= 0 {
		return fmt.Errorf("rate_limit.local_retention must be positive")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers is required when kafka is enabled")
	}
	return nil
}
