package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// ReadinessCheck is one dependency probed by /readyz.
type ReadinessCheck struct {
	Name string
	Ping func(ctx context.Context) error
}

type HealthHandler struct {
	checks         []ReadinessCheck
	isShuttingDown func() bool
	timeout        time.Duration
}

// NewHealthHandler builds the probes. isShuttingDown may be nil.
func NewHealthHandler(isShuttingDown func() bool, checks ...ReadinessCheck) *HealthHandler {
	if isShuttingDown == nil {
		isShuttingDown = func() bool { return false }
	}

	return &HealthHandler{checks: checks, isShuttingDown: isShuttingDown, timeout: time.Second}
}

func (h *HealthHandler) Healthz(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// Readyz fails while draining so the load balancer stops routing before shutdown.
func (h *HealthHandler) Readyz(ctx *gin.Context) {
	if h.isShuttingDown() {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "shutting_down"})
		return
	}

	results := make(map[string]string, len(h.checks))
	ready := true

	for _, check := range h.checks {
		cctx, cancel := context.WithTimeout(ctx.Request.Context(), h.timeout)
		err := check.Ping(cctx)
		cancel()

		if err != nil {
			ready = false
			results[check.Name] = "down"
			continue
		}
		results[check.Name] = "up"
	}

	if !ready {
		ctx.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "checks": results})
		return
	}

	ctx.JSON(http.StatusOK, gin.H{"status": "ready", "checks": results})
}
