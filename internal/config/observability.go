package config

import (
	"fmt"
	"time"
)

// ObservabilityConfig groups all configuration related to telemetry and runtime visibility.
//
// This includes:
//   - logging settings (format, level, thresholds, optional log directory)
//   - APM/tracing provider settings (New Relic)
//   - health check settings used by the /status endpoint
//
// It is embedded under Config.Observability and is optional at the root level
// (pointer in Config). If omitted, defaults are injected.
type ObservabilityConfig struct {
	// ServiceName identifies this service in logs/traces/APM dashboards.
	ServiceName string `koanf:"service_name" validate:"required"`

	// Environment splits telemetry by environment (production, development, local).
	Environment string `koanf:"environment" validate:"required"`

	Logging      LoggingConfig      `koanf:"logging" validate:"required"`
	NewRelic     NewRelicConfig     `koanf:"new_relic" validate:"required"`
	HealthChecks HealthChecksConfig `koanf:"health_checks" validate:"required"`
}

// LoggingConfig holds application logging configuration.
type LoggingConfig struct {
	// Level is the verbosity threshold (debug/info/warn/error).
	Level string `koanf:"level" validate:"required"`

	// Format selects the output format for logs ("json" or "console").
	Format string `koanf:"format" validate:"required"`

	// Dir, when set, additionally writes app.log (every entry) and
	// error.log (error level and above) into this directory.
	Dir string `koanf:"dir"`

	// SlowQueryThreshold is a duration beyond which queries are considered slow.
	// Supply parseable duration strings like "100ms" or "1s".
	SlowQueryThreshold time.Duration `koanf:"slow_query_threshold"`
}

// NewRelicConfig holds configuration for New Relic APM and tracing.
//
// An empty LicenseKey disables New Relic entirely.
type NewRelicConfig struct {
	LicenseKey                string `koanf:"license_key"`
	AppLogForwardingEnabled   bool   `koanf:"app_log_forwarding_enabled"`
	DistributedTracingEnabled bool   `koanf:"distributed_tracing_enabled"`

	// DebugLogging enables debug output for the agent.
	// Usually off in production to avoid noisy logs and format pollution.
	DebugLogging bool `koanf:"debug_logging"`
}

// Names of the dependency checks the /status endpoint knows how to run.
const (
	CheckDatabase = "database"
	CheckRedis    = "redis"
)

// knownChecks is the set HealthChecksConfig.Checks may draw from.
var knownChecks = map[string]bool{
	CheckDatabase: true,
	CheckRedis:    true,
}

// defaultCheckTimeout applies when HealthChecks.Timeout is unset.
const defaultCheckTimeout = 5 * time.Second

// HealthChecksConfig controls the dependency checks run by the /status
// endpoint.
//
// With Enabled false the endpoint only reports that the process is up. The
// database check is the only one that turns the service unhealthy; a Redis
// failure is reported but tolerated, because Redis backs the proxy cache and
// the job queue rather than request handling.
type HealthChecksConfig struct {
	// Enabled toggles the dependency checks entirely.
	Enabled bool `koanf:"enabled"`

	// Interval is how frequently external monitors are expected to poll.
	// It is informational; the service itself never schedules checks.
	Interval time.Duration `koanf:"interval" validate:"min=1s"`

	// Timeout bounds every single dependency check. Checks run concurrently,
	// so it also bounds the whole request.
	Timeout time.Duration `koanf:"timeout" validate:"min=1s"`

	// Checks lists the dependencies to probe, in report order. Allowed names
	// are CheckDatabase and CheckRedis.
	Checks []string `koanf:"checks"`
}

// DefaultObservabilityConfig provides a safe set of defaults.
//
// Used when Config.Observability is nil (not provided via env).
func DefaultObservabilityConfig() *ObservabilityConfig {
	return &ObservabilityConfig{
		// Overwritten in LoadConfig.
		ServiceName: ServiceName,
		Environment: "development",

		Logging: LoggingConfig{
			Level:              "info",
			Format:             "json",
			SlowQueryThreshold: 100 * time.Millisecond,
		},

		NewRelic: NewRelicConfig{
			LicenseKey:                "",
			AppLogForwardingEnabled:   true,
			DistributedTracingEnabled: true,
			DebugLogging:              false, // Disabled by default to avoid mixed log formats
		},

		HealthChecks: HealthChecksConfig{
			Enabled:  true,
			Interval: 30 * time.Second,
			Timeout:  5 * time.Second,
			Checks:   []string{CheckDatabase, CheckRedis},
		},
	}
}

// Validate applies custom validation rules that go beyond struct tags:
// the log level and format enums, the slow query threshold and the health
// check names.
//
// Returns nil if configuration is valid, otherwise an error describing
// the first validation failure.
func (c *ObservabilityConfig) Validate() error {
	if c.ServiceName == "" {
		return fmt.Errorf("service_name is required")
	}

	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid logging level: %s (must be one of: debug, info, warn, error)", c.Logging.Level)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid logging format: %s (must be json or console)", c.Logging.Format)
	}

	if c.Logging.SlowQueryThreshold < 0 {
		return fmt.Errorf("logging slow_query_threshold must be non-negative")
	}

	// Unknown names would silently never run, so they are rejected up front.
	for _, check := range c.HealthChecks.Checks {
		if !knownChecks[check] {
			return fmt.Errorf("unknown health check: %s (must be one of: database, redis)", check)
		}
	}

	return nil
}

// GetLogLevel returns the effective log level to use at runtime.
//
// It supports "defaulting by environment":
//   - In production: default to "info" if no level is set.
//   - In development: default to "debug" if no level is set.
//
// Otherwise it returns whatever c.Logging.Level is set to.
func (c *ObservabilityConfig) GetLogLevel() string {
	switch c.Environment {
	case "production":
		if c.Logging.Level == "" {
			return "info"
		}
	case "development":
		if c.Logging.Level == "" {
			return "debug"
		}
	}

	return c.Logging.Level
}

// IsProduction reports whether the application is running in production mode.
func (c *ObservabilityConfig) IsProduction() bool {
	return c.Environment == "production"
}

// HasCheck reports whether the named dependency check should run on /status:
// health checks are enabled and name is listed in HealthChecks.Checks.
func (c *ObservabilityConfig) HasCheck(name string) bool {
	if !c.HealthChecks.Enabled {
		return false
	}
	for _, check := range c.HealthChecks.Checks {
		if check == name {
			return true
		}
	}
	return false
}

// CheckTimeout returns the bound for a single dependency check, falling
// back to five seconds when none is configured.
func (c *ObservabilityConfig) CheckTimeout() time.Duration {
	if c.HealthChecks.Timeout <= 0 {
		return defaultCheckTimeout
	}
	return c.HealthChecks.Timeout
}
