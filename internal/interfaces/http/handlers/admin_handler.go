package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	appservice "github.com/passlock/passlock/internal/application/service"
	"github.com/passlock/passlock/pkg/logger"
)

// AdminHandler serves the administrative rate-limit operations: stats,
// per-identity counters, and resets.
type AdminHandler struct {
	guard  *appservice.AuthGuardService
	logger logger.Logger
}

// NewAdminHandler creates the admin handler.
func NewAdminHandler(guard *appservice.AuthGuardService, log logger.Logger) *AdminHandler {
	return &AdminHandler{
		guard:  guard,
		logger: log.WithComponent("AdminHandler"),
	}
}

// Stats returns limiter backend health and counter sizes.
func (h *AdminHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.guard.Stats(c.Request.Context()))
}

// ResetLimits clears all counters and the risk profile for one identity.
func (h *AdminHandler) ResetLimits(c *gin.Context) {
	identity := c.Param("identity")
	if identity == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "identity is required"})
		return
	}

	h.guard.ResetLimits(c.Request.Context(), identity)
	c.JSON(http.StatusOK, gin.H{"status": "reset", "identity": identity})
}
