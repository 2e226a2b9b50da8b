package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"tourguard/utils"
)

// HealthCheck pings one dependency. A nil check reports the dependency as
// disabled.
type HealthCheck func(ctx context.Context) error

type HealthController struct {
	checks    map[string]HealthCheck
	version   string
	startedAt time.Time
}

func NewHealthController(checks map[string]HealthCheck, version string) *HealthController {
	return &HealthController{
		checks:    checks,
		version:   version,
		startedAt: time.Now(),
	}
}

func (hc *HealthController) HealthCheck(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 3*time.Second)
	defer cancel()

	statuses := make(map[string]string, len(hc.checks))
	for name, check := range hc.checks {
		switch {
		case check == nil:
			statuses[name] = "disabled"
		case check(ctx) != nil:
			statuses[name] = "unhealthy"
		default:
			statuses[name] = "healthy"
		}
	}

	response := utils.HealthCheckResponse(statuses, hc.version, utils.FormatDuration(time.Since(hc.startedAt)))
	status := http.StatusOK
	if response.Status != "healthy" {
		status = http.StatusServiceUnavailable
	}
	c.JSON(status, response)
}
