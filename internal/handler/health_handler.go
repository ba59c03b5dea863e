// internal/handler/health_handler.go
package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"printer-bridge/internal/config"
	"printer-bridge/internal/session"
	"printer-bridge/internal/utils"
)

// Pinger is satisfied by the journal database
type Pinger interface {
	HealthCheck(ctx context.Context) error
}

// StateSource reports the printer session state
type StateSource interface {
	State() session.State
}

// HealthHandler handles health check requests
type HealthHandler struct {
	db        Pinger
	session   StateSource
	config    *config.Config
	startedAt time.Time
	logger    *utils.ServiceLogger
}

// NewHealthHandler creates a new health handler. db is nil when the journal is disabled.
func NewHealthHandler(db Pinger, session StateSource, config *config.Config, logger *zap.Logger) *HealthHandler {
	return &HealthHandler{
		db:        db,
		session:   session,
		config:    config,
		startedAt: time.Now(),
		logger:    utils.NewServiceLogger(logger, "health-handler"),
	}
}

// HealthCheck reports the journal and printer session. A disconnected
// printer is not unhealthy: the service still accepts connect calls.
func (h *HealthHandler) HealthCheck(c *gin.Context) {
	health := &HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now(),
		Service:   h.config.App.Name,
		Version:   h.config.App.Version,
		Uptime:    time.Since(h.startedAt).Round(time.Second).String(),
		Checks:    make(map[string]CheckResult),
	}

	health.Checks["printer"] = CheckResult{
		Status: "healthy",
		Data: map[string]interface{}{
			"session_state": h.session.State().String(),
		},
	}

	if h.db == nil {
		health.Checks["journal"] = CheckResult{Status: "disabled"}
	} else if err := h.db.HealthCheck(c.Request.Context()); err != nil {
		h.logger.Error("Journal health check failed", zap.Error(err))
		health.Status = "unhealthy"
		health.Checks["journal"] = CheckResult{
			Status:  "unhealthy",
			Message: err.Error(),
		}
	} else {
		health.Checks["journal"] = CheckResult{
			Status:  "healthy",
			Message: "Database connection OK",
		}
	}

	statusCode := http.StatusOK
	if health.Status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, health)
}

// ReadinessCheck for Kubernetes readiness probe
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	if h.db != nil {
		if err := h.db.HealthCheck(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status": "not ready",
				"reason": "journal database not available",
			})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"status":    "ready",
		"timestamp": time.Now(),
	})
}

// LivenessCheck for Kubernetes liveness probe
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "alive",
		"timestamp": time.Now(),
	})
}

// HealthResponse represents health check response
type HealthResponse struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Service   string                 `json:"service"`
	Version   string                 `json:"version"`
	Uptime    string                 `json:"uptime"`
	Checks    map[string]CheckResult `json:"checks"`
}

// CheckResult represents individual check result
type CheckResult struct {
	Status  string                 `json:"status"`
	Message string                 `json:"message,omitempty"`
	Data    map[string]interface{} `json:"data,omitempty"`
}
