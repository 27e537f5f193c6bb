package main

import (
	"context"
	"fmt"
	"log"

	appservice "github.com/passlock/passlock/internal/application/service"
	"github.com/passlock/passlock/internal/config"
	"github.com/passlock/passlock/internal/domain/service"
	"github.com/passlock/passlock/internal/infrastructure/audit"
	"github.com/passlock/passlock/internal/infrastructure/monitoring"
	"github.com/passlock/passlock/internal/infrastructure/persistence/redis"
	"github.com/passlock/passlock/internal/infrastructure/ratelimit"
	"github.com/passlock/passlock/internal/infrastructure/risk"
	httpiface "github.com/passlock/passlock/internal/interfaces/http"
	"github.com/passlock/passlock/internal/interfaces/http/handlers"
)

func main() {
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	appLogger, err := monitoring.NewZapLogger(&cfg.Log)
	if err != nil {
		log.Fatalf("failed to create logger: %v", err)
	}

	ctx := context.Background()

	// Shared counter store. A dead store at boot is tolerated: the limiter
	// starts degraded and recovers on its next successful probe.
	redisConn := redis.NewConnection(&cfg.Redis, appLogger)
	defer redisConn.Close()

	metrics := monitoring.NewMetrics()

	// Security-event pipeline.
	var publisher service.SecurityEventPublisher
	if cfg.Kafka.Enabled {
		publisher = audit.NewKafkaPublisher(cfg.Kafka, appLogger)
	} else {
		publisher = audit.NewNoopPublisher()
	}
	defer publisher.Close()

	// Core components.
	scorer := risk.NewScorer(cfg.Risk.ProfileTTL, cfg.Risk.UserAgentDenylist)
	limiter := ratelimit.NewAdaptiveLimiter(redisConn.Client, scorer, metrics, appLogger, ratelimit.Config{
		KeyPrefix:           cfg.RateLimit.KeyPrefix,
		MaintenanceInterval: cfg.RateLimit.MaintenanceInterval,
		LocalRetention:      cfg.RateLimit.LocalRetention,
		BackendTimeout:      cfg.RateLimit.BackendTimeout,
	})
	limiter.Start()
	defer limiter.Stop()

	guard := appservice.NewAuthGuardService(limiter, scorer, publisher, metrics, appLogger)

	router := httpiface.NewRouter(
		&cfg.Server,
		appLogger,
		handlers.NewHealthHandler(redisConn, appLogger),
		handlers.NewAdminHandler(guard, appLogger),
	)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	if err := router.Run(addr); err != nil {
		appLogger.Fatal(ctx, "admin server failed", err)
	}
}
