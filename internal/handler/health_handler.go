package handler

import (
	"context"
	"net/http"
	"time"

	"cipher-chat/internal/transport/httpdto"

	"github.com/gin-gonic/gin"
)

// Pinger is satisfied by the database pool and the redis client wrapper.
type Pinger interface {
	Ping(ctx context.Context) error
}

type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

type HealthHandler struct {
	checks map[string]Pinger
}

func NewHealthHandler(checks map[string]Pinger) *HealthHandler {
	return &HealthHandler{checks: checks}
}

func (h *HealthHandler) Ping(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "pong"})
}

// Health pings every dependency and reports 503 if any is down.
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := make(map[string]string, len(h.checks))
	healthy := true
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			status[name] = err.Error()
			healthy = false
			continue
		}
		status[name] = "ok"
	}

	if !healthy {
		c.JSON(http.StatusServiceUnavailable, httpdto.Response[map[string]string]{
			Success: false,
			Data:    status,
			Error:   "dependency unavailable",
			Code:    "SERVICE_UNAVAILABLE",
		})
		return
	}
	c.JSON(http.StatusOK, httpdto.NewSuccessResponse(status))
}
