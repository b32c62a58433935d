package handler

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"

	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/labstack/echo/v4"
)

//go:embed static
var staticFS embed.FS

// OpenAPIHandler serves the API reference UI and the document it renders.
type OpenAPIHandler struct {
	Handler
}

func NewOpenAPIHandler(s *server.Server) *OpenAPIHandler {
	return &OpenAPIHandler{
		Handler: NewHandler(s),
	}
}

// Assets exposes the embedded static directory for /static/*.
func (h *OpenAPIHandler) Assets() fs.FS {
	return echo.MustSubFS(staticFS, "static")
}

// ServeOpenAPIUI serves static/openapi.html uncached so doc edits show up
// on the next load.
func (h *OpenAPIHandler) ServeOpenAPIUI(c echo.Context) error {
	page, err := staticFS.ReadFile("static/openapi.html")
	if err != nil {
		return fmt.Errorf("failed to read OpenAPI UI template: %w", err)
	}

	c.Response().Header().Set("Cache-Control", "no-cache")

	if err := c.HTMLBlob(http.StatusOK, page); err != nil {
		return fmt.Errorf("failed to write HTML response: %w", err)
	}
	return nil
}
