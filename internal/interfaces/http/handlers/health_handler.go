// Package handlers implements the admin/health HTTP handlers. The
// authentication endpoints themselves live outside this service.
package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/passlock/passlock/internal/infrastructure/persistence/redis"
	"github.com/passlock/passlock/pkg/logger"
)

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	redis  *redis.Connection
	logger logger.Logger
}

// NewHealthHandler creates the health handler.
func NewHealthHandler(conn *redis.Connection, log logger.Logger) *HealthHandler {
	return &HealthHandler{
		redis:  conn,
		logger: log.WithComponent("HealthHandler"),
	}
}

// Live reports process liveness.
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Ready reports readiness. The shared store being down does not fail
// readiness: the limiter keeps serving decisions from the local backend.
func (h *HealthHandler) Ready(c *gin.Context) {
	sharedOK := true
	if err := h.redis.HealthCheck(c.Request.Context(), 2*time.Second); err != nil {
		sharedOK = false
	}

	c.JSON(http.StatusOK, gin.H{
		"status":       "ok",
		"shared_store": sharedOK,
	})
}
