package config

import (
	"strings"

	"github.com/spf13/viper"

	"github.com/passlock/passlock/pkg/constants"
)

// LoadConfig loads the configuration from file and environment variables.
// File values override defaults; PASSLOCK_* environment variables override
// both (e.g. PASSLOCK_REDIS_ADDR overrides redis.addr).
func LoadConfig() (*Config, error) {
	v := viper.New()

	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/passlock/")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
	}

	v.SetEnvPrefix("PASSLOCK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("server.shutdown_timeout", 15)

	v.SetDefault("redis.addr", "localhost:6379")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.pool_size", 10)
	v.SetDefault("redis.min_idle_conns", 2)
	v.SetDefault("redis.dial_timeout", "5s")
	v.SetDefault("redis.read_timeout", "3s")
	v.SetDefault("redis.write_timeout", "3s")

	v.SetDefault("rate_limit.key_prefix", constants.RateLimitKeyPrefix)
	v.SetDefault("rate_limit.maintenance_interval", constants.DefaultMaintenanceInterval)
	v.SetDefault("rate_limit.local_retention", constants.DefaultLocalRetention)
	v.SetDefault("rate_limit.backend_timeout", constants.DefaultBackendTimeout)

	v.SetDefault("risk.profile_ttl", constants.DefaultRiskProfileTTL)
	v.SetDefault("risk.user_agent_denylist", []string{"bot", "crawler", "python"})

	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.topic", "passlock.security.events")
	v.SetDefault("kafka.batch_size", 100)
	v.SetDefault("kafka.batch_timeout", "1s")
	v.SetDefault("kafka.write_timeout", "10s")
	v.SetDefault("kafka.required_acks", 1)

	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
}
