package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deppfellow/go-productivity/internal/config"
	"github.com/deppfellow/go-productivity/internal/handler"
	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/service"
	"github.com/deppfellow/go-productivity/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testRouter(t *testing.T) *echo.Echo {
	t.Helper()
	log := zerolog.Nop()
	s := &server.Server{
		Config: &config.Config{
			Primary: config.Primary{Env: "test"},
			Server:  config.ServerConfig{CORSAllowedOrigins: []string{"*"}, ProxyRateLimit: 50},
		},
		Logger:   &log,
		Pipeline: validation.NewPipeline(&log),
	}
	return NewRouter(s, handler.NewHandlers(s, &service.Services{}), middleware.NewMiddlewares(s, nil))
}

func TestNewRouter_RegistersRoutes(t *testing.T) {
	r := testRouter(t)

	registered := map[string]bool{}
	for _, route := range r.Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	for _, want := range []string{
		"GET /status",
		"GET /docs",
		"POST /api/v1/notes",
		"GET /api/v1/notes",
		"GET /api/v1/notes/:id",
		"DELETE /api/v1/notes/:id",
		"GET /api/v1/flows",
		"GET /api/v1/flows/all",
		"POST /api/v1/flows",
		"GET /api/v1/flows/:id",
		"PUT /api/v1/flows/:id",
		"DELETE /api/v1/flows/:id",
		"POST /api/v1/tasks",
		"PUT /api/v1/tasks/:id",
		"DELETE /api/v1/tasks/:id",
		"GET /api/v1/notifications",
		"GET /api/v1/notifications/unread-count",
		"PATCH /api/v1/notifications/read-all",
		"PATCH /api/v1/notifications/:id/read",
		"GET /api/v1/request/random",
		"GET /api/v1/request/weather",
		"GET /api/v1/request/cityInfo",
		"GET /api/v1/request/picture",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestNewRouter_PrivateRoutesNeedToken(t *testing.T) {
	r := testRouter(t)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/flows", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(middleware.RequestIDHeader))
}

func TestNewRouter_ProxyValidatesLocation(t *testing.T) {
	r := testRouter(t)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/request/weather", nil))

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Validation failed: location is required")
}

func TestNewRouter_UnknownRoute(t *testing.T) {
	r := testRouter(t)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/nope", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "Route not found")
}

func TestNewRouter_ServesDocsAssets(t *testing.T) {
	r := testRouter(t)
	rec := httptest.NewRecorder()

	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/static/openapi.json", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"openapi"`)
}
