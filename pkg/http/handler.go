package http

import "github.com/labstack/echo/v4"

// Handler mounts a group of routes on the server, e.g. the forecast API
// under /api or the /health probes. NewServer calls RegisterRoutes once per
// handler before the listener starts.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}
