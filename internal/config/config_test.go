package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func validConfig() Config {
	return Config{
		Server: ServerConfig{Host: "0.0.0.0", Port: 8080},
		Redis:  RedisConfig{Addr: "localhost:6379"},
		RateLimit: RateLimitConfig{
			MaintenanceInterval: 5 * time.Minute,
			LocalRetention:      time.Hour,
		},
	}
}

func TestConfigValidate(t *testing.T) {
	cfg := validConfig()
	assert.NoError(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.Port = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Server.Port = 70000
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Redis.Addr = ""
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RateLimit.MaintenanceInterval = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.RateLimit.LocalRetention = 0
	assert.Error(t, cfg.Validate())

	cfg = validConfig()
	cfg.Kafka.Enabled = true
	assert.Error(t, cfg.Validate(), "enabled kafka needs brokers")

	cfg.Kafka.Brokers = []string{"localhost:9092"}
	assert.NoError(t, cfg.Validate())
}
