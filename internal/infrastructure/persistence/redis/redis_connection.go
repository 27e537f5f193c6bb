// Package redis provides Redis connection management for the shared counter
// store, with connection pooling and health checks.
package redis

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/passlock/passlock/internal/config"
	"github.com/passlock/passlock/pkg/logger"
)

// Connection manages the Redis client lifecycle.
type Connection struct {
	Client redis.UniversalClient
	logger logger.Logger
}

// NewConnection creates a pooled Redis client from configuration. It does not
// dial eagerly: the limiter's startup probe decides whether the shared store
// is usable, and a dead store at boot simply means starting degraded.
func NewConnection(cfg *config.RedisConfig, log logger.Logger) *Connection {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
		DialTimeout:  cfg.DialTimeout,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	})

	return &Connection{
		Client: client,
		logger: log.WithComponent("RedisConnection"),
	}
}

// HealthCheck pings the store within the given timeout.
func (c *Connection) HealthCheck(ctx context.Context, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	return c.Client.Ping(ctx).Err()
}

// Close releases the client's connection pool.
func (c *Connection) Close() error {
	c.logger.Info(context.Background(), "closing redis connection")
	return c.Client.Close()
}
