package handler

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/deppfellow/go-productivity/internal/config"
	"github.com/deppfellow/go-productivity/internal/middleware"
	"github.com/deppfellow/go-productivity/internal/server"
	"github.com/labstack/echo/v4"
	"golang.org/x/sync/errgroup"
)

// HealthHandler reports whether the service and its dependencies respond.
type HealthHandler struct {
	Handler
	pingers map[string]pinger
}

type pinger func(ctx context.Context) error

// requiredChecks turn the whole service unhealthy when they fail.
var requiredChecks = map[string]bool{config.CheckDatabase: true}

func NewHealthHandler(s *server.Server) *HealthHandler {
	pingers := map[string]pinger{}
	if s.DB != nil {
		pingers[config.CheckDatabase] = s.DB.Ping
	}
	if s.Redis != nil {
		pingers[config.CheckRedis] = func(ctx context.Context) error {
			return s.Redis.Ping(ctx).Err()
		}
	}

	return &HealthHandler{
		Handler: NewHandler(s),
		pingers: pingers,
	}
}

// Check is the result of one dependency probe.
type Check struct {
	Status       string `json:"status"`
	ResponseTime string `json:"response_time"`
	Error        string `json:"error,omitempty"`
}

type HealthResponse struct {
	Status      string           `json:"status"`
	Timestamp   time.Time        `json:"timestamp"`
	Environment string           `json:"environment"`
	Checks      map[string]Check `json:"checks"`
}

// probe names a dependency check. Required probes turn the whole service
// unhealthy when they fail.
type probe struct {
	name     string
	required bool
	ping     pinger
}

func (h *HealthHandler) observability() *config.ObservabilityConfig {
	if h.server.Config != nil && h.server.Config.Observability != nil {
		return h.server.Config.Observability
	}
	return config.DefaultObservabilityConfig()
}

// probes returns the configured checks in configuration order. A configured
// check without a client, such as redis when no Redis is connected, is
// skipped.
func (h *HealthHandler) probes(obs *config.ObservabilityConfig) []probe {
	var probes []probe
	for _, name := range obs.HealthChecks.Checks {
		ping, ok := h.pingers[name]
		if !ok || !obs.HasCheck(name) {
			continue
		}
		probes = append(probes, probe{name: name, required: requiredChecks[name], ping: ping})
	}
	return probes
}

// CheckHealth runs the configured dependency checks concurrently, each
// bounded by the configured timeout. It answers 503 when the database is
// down; a Redis failure is reported but tolerated. With health checks
// disabled it only reports that the process is up.
func (h *HealthHandler) CheckHealth(c echo.Context) error {
	start := time.Now()
	logger := middleware.GetLogger(c).With().
		Str("operation", "health_check").
		Logger()

	obs := h.observability()
	timeout := obs.CheckTimeout()

	response := HealthResponse{
		Status:      "healthy",
		Timestamp:   time.Now().UTC(),
		Environment: obs.Environment,
		Checks:      map[string]Check{},
	}

	var mu sync.Mutex
	healthy := true

	g, ctx := errgroup.WithContext(c.Request().Context())
	for _, p := range h.probes(obs) {
		p := p
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			probeStart := time.Now()
			err := p.ping(pctx)
			elapsed := time.Since(probeStart)

			check := Check{Status: "healthy", ResponseTime: elapsed.String()}
			if err != nil {
				check.Status = "unhealthy"
				check.Error = err.Error()
				logger.Error().Err(err).Str("check", p.name).Dur("response_time", elapsed).Msg("health check failed")
				h.recordFailure(p.name, elapsed, err)
			}

			mu.Lock()
			defer mu.Unlock()
			response.Checks[p.name] = check
			if err != nil && p.required {
				healthy = false
			}
			// Probe failures are reported in the body, never aborting the others.
			return nil
		})
	}
	_ = g.Wait()

	if !healthy {
		response.Status = "unhealthy"
		logger.Warn().Dur("total_duration", time.Since(start)).Msg("health check failed")
		return c.JSON(http.StatusServiceUnavailable, response)
	}

	logger.Debug().Dur("total_duration", time.Since(start)).Msg("health check passed")
	return c.JSON(http.StatusOK, response)
}

func (h *HealthHandler) recordFailure(check string, elapsed time.Duration, err error) {
	app := h.server.LoggerService.GetApplication()
	if app == nil {
		return
	}
	app.RecordCustomEvent("HealthCheckError", map[string]interface{}{
		"check_type":       check,
		"operation":        "health_check",
		"error_type":       check + "_unhealthy",
		"response_time_ms": elapsed.Milliseconds(),
		"error_message":    err.Error(),
	})
}
