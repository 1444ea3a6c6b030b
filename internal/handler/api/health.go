package api

import (
	"net/http"

	xhttp "FinCast/pkg/http"

	"github.com/labstack/echo/v4"
)

// ReadinessFunc reports whether the service can take traffic.
type ReadinessFunc func() bool

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	ready ReadinessFunc
	model string
}

func NewHealthHandler(ready ReadinessFunc, model string) *HealthHandler {
	return &HealthHandler{ready: ready, model: model}
}

func (h *HealthHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/health", h.Health)
	e.GET("/health/ready", h.Ready)
}

func (h *HealthHandler) Health(c echo.Context) error {
	return xhttp.SuccessResponse(c, map[string]string{"status": "ok"})
}

func (h *HealthHandler) Ready(c echo.Context) error {
	if h.ready == nil || !h.ready() {
		return c.JSON(http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"error":  "Model is not ready",
		})
	}
	return xhttp.SuccessResponse(c, map[string]string{"status": "ready", "model": h.model})
}

var _ xhttp.Handler = (*HealthHandler)(nil)
