package middleware

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/deppfellow/go-productivity/internal/config"
	"github.com/deppfellow/go-productivity/internal/errs"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testServer(t *testing.T) *server.Server {
	t.Helper()
	log := zerolog.Nop()
	return &server.Server{
		Config: &config.Config{Server: config.ServerConfig{ProxyRateLimit: 1}},
		Logger: &log,
	}
}

func TestRequestID_GeneratesAndReuses(t *testing.T) {
	e := echo.New()
	var seen string
	e.GET("/", func(c echo.Context) error {
		seen = GetRequestID(c)
		return c.NoContent(http.StatusOK)
	}, RequestID())

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
	assert.Equal(t, "abc-123", rec.Header().Get(RequestIDHeader))
}

func TestRequestID_ReplacesUnsafeHeader(t *testing.T) {
	e := echo.New()
	var seen, forwarded string
	e.GET("/", func(c echo.Context) error {
		seen = GetRequestID(c)
		forwarded = c.Request().Header.Get(RequestIDHeader)
		return c.NoContent(http.StatusOK)
	}, RequestID())

	for _, bad := range []string{"id with spaces", "line\nbreak", strings.Repeat("a", 65)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(RequestIDHeader, bad)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		assert.NotEqual(t, bad, seen)
		assert.Len(t, seen, 36, "replaced by a UUID")
		assert.Equal(t, seen, forwarded)
		assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))
	}
}

func TestNoticeable(t *testing.T) {
	assert.False(t, noticeable(http.StatusBadRequest))
	assert.False(t, noticeable(http.StatusTooManyRequests))
	assert.True(t, noticeable(http.StatusInternalServerError))
	assert.True(t, noticeable(http.StatusBadGateway))
}

func TestToHTTPError_MatchesResponse(t *testing.T) {
	assert.Equal(t, http.StatusNotFound, toHTTPError(sqlerr.WithTable("flows", pgx.ErrNoRows)).Status)
	assert.Equal(t, "FLOW_NOT_FOUND", toHTTPError(sqlerr.WithTable("flows", pgx.ErrNoRows)).Code)
	assert.Equal(t, http.StatusTooManyRequests, toHTTPError(errs.NewTooManyRequestsError("slow down")).Status)
	assert.Equal(t, http.StatusInternalServerError, toHTTPError(errors.New("boom")).Status)
}

func TestGetLogger_DefaultsToNop(t *testing.T) {
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), httptest.NewRecorder())
	assert.NotNil(t, GetLogger(c))
	assert.Equal(t, "", GetUserID(c))
}

func TestEnhanceContext_AttachesLoggerToRequest(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	s := testServer(t)
	s.Logger = &log

	e := echo.New()
	e.GET("/notes", func(c echo.Context) error {
		zerolog.Ctx(c.Request().Context()).Info().Msg("from request context")
		return c.NoContent(http.StatusOK)
	}, RequestID(), NewContextEnhancer(s).EnhanceContext())

	req := httptest.NewRequest(http.MethodGet, "/notes", nil)
	req.Header.Set(RequestIDHeader, "req-1")
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, buf.String(), `"request_id":"req-1"`)
	assert.Contains(t, buf.String(), `"path":"/notes"`)
	assert.Contains(t, buf.String(), "from request context")
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errs.HTTPError {
	t.Helper()
	var body errs.HTTPError
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestGlobalErrorHandler(t *testing.T) {
	global := NewGlobalMiddlewares(testServer(t))

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{"validation", errs.NewValidationError("title must not be empty"), http.StatusBadRequest, "BAD_REQUEST", "Validation failed: title must not be empty"},
		{"route miss", echo.ErrNotFound, http.StatusNotFound, "NOT_FOUND", "Route not found"},
		{"echo error", echo.NewHTTPError(http.StatusMethodNotAllowed, "nope"), http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "nope"},
		{"missing row", sqlerr.WithTable("notes", pgx.ErrNoRows), http.StatusNotFound, "NOTE_NOT_FOUND", "Note not found"},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal Server Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)

			global.GlobalErrorHandler(tt.err, c)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tt.wantCode, body.Code)
			assert.Equal(t, tt.wantMsg, body.Message)
			assert.Equal(t, tt.wantStatus, body.Status)
		})
	}
}

func TestRateLimit_DeniesBurst(t *testing.T) {
	s := testServer(t)
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.GET("/request/random", func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	}, NewRateLimitMiddleware(s).Limit())

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, "/request/random", nil)
		req.RemoteAddr = "192.0.2.10:4000"
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusOK, send().Code)

	rec := send()
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "TOO_MANY_REQUESTS", decodeError(t, rec).Code)
}

func TestRequireAuth_RejectsMissingToken(t *testing.T) {
	s := testServer(t)
	e := echo.New()
	e.HTTPErrorHandler = NewGlobalMiddlewares(s).GlobalErrorHandler
	e.GET("/api/v1/notes", func(c echo.Context) error {
		t.Fatal("handler must not run")
		return nil
	}, NewAuthMiddleware(s, nil).RequireAuth)

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/notes", nil))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "UNAUTHORIZED", decodeError(t, rec).Code)
}
