// Package http wires the admin/metrics listener. This is ambient
// infrastructure: the vault's user-facing authentication endpoints are served
// by the outer application, not by this process.
package http

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/passlock/passlock/internal/config"
	"github.com/passlock/passlock/internal/interfaces/http/handlers"
	"github.com/passlock/passlock/pkg/logger"
)

// Router holds the gin engine and the HTTP server lifecycle.
type Router struct {
	engine *gin.Engine
	config *config.ServerConfig
	logger logger.Logger
	server *http.Server
}

// NewRouter builds the admin router.
func NewRouter(
	cfg *config.ServerConfig,
	log logger.Logger,
	healthHandler *handlers.HealthHandler,
	adminHandler *handlers.AdminHandler,
) *Router {
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery())

	engine.GET("/healthz", healthHandler.Live)
	engine.GET("/readyz", healthHandler.Ready)
	engine.GET("/metrics", gin.WrapH(promhttp.Handler()))

	admin := engine.Group("/admin/v1")
	{
		admin.GET("/ratelimit/stats", adminHandler.Stats)
		admin.DELETE("/ratelimit/:identity", adminHandler.ResetLimits)
	}

	return &Router{
		engine: engine,
		config: cfg,
		logger: log.WithComponent("Router"),
	}
}

// Run starts the server and blocks until SIGINT/SIGTERM, then shuts down
// gracefully within the configured timeout.
func (r *Router) Run(addr string) error {
	r.server = &http.Server{
		Addr:         addr,
		Handler:      r.engine,
		ReadTimeout:  time.Duration(r.config.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(r.config.WriteTimeout) * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info(context.Background(), "admin server listening", logger.String("addr", addr))
		if err := r.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case sig := <-quit:
		r.logger.Info(context.Background(), "shutting down", logger.String("signal", sig.String()))
	}

	ctx, cancel := context.WithTimeout(context.Background(),
		time.Duration(r.config.ShutdownTimeout)*time.Second)
	defer cancel()
	return r.server.Shutdown(ctx)
}
