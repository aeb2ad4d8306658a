package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthHandler struct {
	version     string
	checks      map[string]Pinger
	connections func() int
}

// NewHealthHandler reports the named dependencies. connections may be nil.
func NewHealthHandler(version string, checks map[string]Pinger, connections func() int) *HealthHandler {
	return &HealthHandler{
		version:     version,
		checks:      checks,
		connections: connections,
	}
}

func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	status := "healthy"
	code := http.StatusOK
	dependencies := make(map[string]string, len(h.checks))
	for name, check := range h.checks {
		if err := check.Ping(ctx); err != nil {
			dependencies[name] = err.Error()
			status = "unhealthy"
			code = http.StatusServiceUnavailable
			continue
		}
		dependencies[name] = "ok"
	}

	body := gin.H{
		"status":       status,
		"version":      h.version,
		"dependencies": dependencies,
	}
	if h.connections != nil {
		body["connections"] = h.connections()
	}
	c.JSON(code, body)
}
