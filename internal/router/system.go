package router

import (
	"github.com/deppfellow/go-productivity/internal/handler"
	"github.com/labstack/echo/v4"
)

// registerSystemRoutes mounts the routes outside the API: health, docs UI
// and the static assets the docs load.
func registerSystemRoutes(r *echo.Echo, h *handler.Handlers) {
	r.GET("/status", h.Health.CheckHealth)
	r.StaticFS("/static", h.OpenAPI.Assets())
	r.GET("/docs", h.OpenAPI.ServeOpenAPIUI)
}
