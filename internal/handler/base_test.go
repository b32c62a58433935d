package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/deppfellow/go-productivity/internal/errs"
	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/model"
	"github.com/deppfellow/go-productivity/internal/model/note"
	"github.com/deppfellow/go-productivity/internal/model/notification"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/deppfellow/go-productivity/internal/validation"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testHandler(t *testing.T) Handler {
	t.Helper()
	log := zerolog.Nop()
	return NewHandler(&server.Server{Logger: &log, Pipeline: validation.NewPipeline(&log)})
}

func newEcho(h Handler) *echo.Echo {
	e := echo.New()
	e.HTTPErrorHandler = middleware.NewGlobalMiddlewares(h.server).GlobalErrorHandler
	return e
}

func TestHandle_WrapsResultInEnvelope(t *testing.T) {
	h := testHandler(t)
	e := newEcho(h)
	e.POST("/notes", Handle(h, func(c echo.Context, p *note.CreateNotePayload) (*note.Note, error) {
		return &note.Note{Title: p.Title, Content: p.Content}, nil
	}, http.StatusCreated))

	req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"Groceries","content":"milk"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	var body struct {
		Data    note.Note `json:"data"`
		Message string    `json:"message"`
		Code    int       `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "Groceries", body.Data.Title)
	assert.Equal(t, SuccessMessage, body.Message)
	assert.Equal(t, SuccessCode, body.Code)
}

func TestHandle_RejectsBeforeHandlerRuns(t *testing.T) {
	h := testHandler(t)
	e := newEcho(h)
	e.POST("/notes", Handle(h, func(c echo.Context, p *note.CreateNotePayload) (*note.Note, error) {
		t.Fatal("handler must not run")
		return nil, nil
	}, http.StatusCreated))

	for _, tt := range []struct{ body, message string }{
		{`{"title":"","content":"hello"}`, "Validation failed: title must not be empty"},
		{`{"title":"t"`, "Validation failed: request body must be valid JSON"},
	} {
		req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(tt.body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)

		require.Equal(t, http.StatusBadRequest, rec.Code)
		var body errs.HTTPError
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		assert.Equal(t, tt.message, body.Message)
	}
}

func TestHandle_PathAndQueryParams(t *testing.T) {
	h := testHandler(t)
	e := newEcho(h)

	var got notification.ListNotificationsQuery
	e.GET("/notifications", Handle(h, func(c echo.Context, q *notification.ListNotificationsQuery) (any, error) {
		got = *q
		return nil, nil
	}, http.StatusOK))

	var gotID int64
	e.DELETE("/notes/:id", Handle(h, func(c echo.Context, p *note.DeleteNoteParams) (*model.AffectedResult, error) {
		gotID = p.ID
		return &model.AffectedResult{Affected: 1}, nil
	}, http.StatusOK))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/notifications?read=false&page=2", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, got.Read)
	assert.False(t, *got.Read)
	assert.Equal(t, 2, got.Page)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notes/42", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(42), gotID)

	rec = httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/notes/abc", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "note id must be a positive number")
}

func TestHandle_ServiceErrorReachesErrorHandler(t *testing.T) {
	h := testHandler(t)
	e := newEcho(h)
	e.GET("/flows/all", Handle(h, func(c echo.Context, _ *model.Empty) (any, error) {
		return nil, errs.NewConflictError("Flow still has tasks", true, errs.Code("FLOW_NOT_EMPTY"))
	}, http.StatusOK))

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/flows/all", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "FLOW_NOT_EMPTY")
}

func TestHandle_FreshPayloadPerRequest(t *testing.T) {
	h := testHandler(t)
	e := newEcho(h)

	var mu sync.Mutex
	seen := map[*note.CreateNotePayload]bool{}
	e.POST("/notes", Handle(h, func(c echo.Context, p *note.CreateNotePayload) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if seen[p] {
			return "", errors.New("payload reused")
		}
		seen[p] = true
		return p.Title, nil
	}, http.StatusOK))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			req := httptest.NewRequest(http.MethodPost, "/notes", strings.NewReader(`{"title":"t","content":"c"}`))
			req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
			rec := httptest.NewRecorder()
			e.ServeHTTP(rec, req)
			assert.Equal(t, http.StatusOK, rec.Code)
		}()
	}
	wg.Wait()
}

func TestOpenAPIAssetsEmbedded(t *testing.T) {
	h := NewOpenAPIHandler(&server.Server{})
	rec := httptest.NewRecorder()
	c := echo.New().NewContext(httptest.NewRequest(http.MethodGet, "/docs", nil), rec)

	require.NoError(t, h.ServeOpenAPIUI(c))
	assert.Equal(t, "no-cache", rec.Header().Get("Cache-Control"))
	assert.Contains(t, rec.Body.String(), "/static/openapi.json")

	data, err := staticFS.ReadFile("static/openapi.json")
	require.NoError(t, err)
	assert.True(t, json.Valid(data))
}
