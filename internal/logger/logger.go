// Package logger configure the application's logging,
// monitoring, and observability.
//
// It uses *ZeroLog* for logging and integrates with
// *New Relic* to instrument the codebase, forwarding logs,
// metrics, and traces for debugging
package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/deppfellow/go-productivity/internal/config"
	"github.com/newrelic/go-agent/v3/integrations/logcontext-v2/zerologWriter"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/pkgerrors"
)

// TimeFormat is used for both the zerolog timestamp field and console output.
const TimeFormat = "2006-01-02 15:04:05"

// LoggerService manages the New Relic integration and owns its lifecycle.
//
// A LoggerService without a license key is valid: GetApplication returns nil
// and every New Relic code path in the app degrades into a no-op.
type LoggerService struct {
	nrApp *newrelic.Application

	// files are the optional log files opened by NewLoggerWithService.
	files []*os.File
}

// NewLoggerService creates a logger service and connects New Relic when configured.
func NewLoggerService(cfg *config.ObservabilityConfig) *LoggerService {
	service := &LoggerService{}

	if cfg.NewRelic.LicenseKey == "" {
		fmt.Println("New Relic license key not provided, skipping initialization")
		return service
	}

	configOptions := []newrelic.ConfigOption{
		newrelic.ConfigAppName(cfg.ServiceName),
		newrelic.ConfigLicense(cfg.NewRelic.LicenseKey),
		newrelic.ConfigAppLogForwardingEnabled(cfg.NewRelic.AppLogForwardingEnabled),
		newrelic.ConfigDistributedTracerEnabled(cfg.NewRelic.DistributedTracingEnabled),
	}

	// Add debug logging only if explicitly enabled
	if cfg.NewRelic.DebugLogging {
		configOptions = append(configOptions, newrelic.ConfigDebugLogger(os.Stdout))
	}

	app, err := newrelic.NewApplication(configOptions...)
	if err != nil {
		fmt.Printf("Failed to initialize New Relic: %v\n", err)
		return service
	}

	service.nrApp = app
	fmt.Printf("New Relic initialized for app: %s\n", cfg.ServiceName)
	return service
}

// Shutdown flushes New Relic data and closes log files.
func (ls *LoggerService) Shutdown() {
	if ls.nrApp != nil {
		ls.nrApp.Shutdown(10 * time.Second)
	}
	for _, f := range ls.files {
		_ = f.Close()
	}
	ls.files = nil
}

// GetApplication returns the New Relic application instance, or nil.
func (ls *LoggerService) GetApplication() *newrelic.Application {
	if ls == nil {
		return nil
	}
	return ls.nrApp
}

// NewLogger creates a logger with default settings.
func NewLogger(level string, isProd bool) zerolog.Logger {
	env := "development"
	if isProd {
		env = "production"
	}
	return NewLoggerWithService(&config.ObservabilityConfig{
		ServiceName: config.ServiceName,
		Environment: env,
		Logging: config.LoggingConfig{
			Level:  level,
			Format: "console",
		},
	}, nil)
}

// NewLoggerWithService creates a logger from the observability config.
//
// Output selection:
//   - production + json: stdout, wrapped by New Relic zerologWriter when available
//   - otherwise: the console formatter (see NewConsoleWriter)
//   - Logging.Dir set: app.log gets every entry, error.log only error and above
func NewLoggerWithService(cfg *config.ObservabilityConfig, loggerService *LoggerService) zerolog.Logger {
	logLevel := ParseLevel(cfg.GetLogLevel())

	zerolog.TimeFieldFormat = TimeFormat
	zerolog.ErrorStackMarshaler = pkgerrors.MarshalStack

	var writer io.Writer
	if cfg.IsProduction() && cfg.Logging.Format == "json" {
		writer = os.Stdout
		if app := loggerService.GetApplication(); app != nil {
			writer = zerologWriter.New(os.Stdout, app)
		}
	} else {
		writer = NewConsoleWriter(os.Stdout)
	}

	if cfg.Logging.Dir != "" {
		if fileWriter, err := openLogFiles(cfg.Logging.Dir, loggerService); err != nil {
			fmt.Printf("Failed to open log files in %s: %v\n", cfg.Logging.Dir, err)
		} else {
			writer = zerolog.MultiLevelWriter(writer, fileWriter)
		}
	}

	logger := zerolog.New(writer).
		Level(logLevel).
		With().
		Timestamp().
		Str("service", cfg.ServiceName).
		Str("environment", cfg.Environment).
		Logger()

	// Include stack traces for errors outside production.
	if !cfg.IsProduction() {
		logger = logger.With().Stack().Logger()
	}

	return logger
}

// openLogFiles opens app.log and error.log under dir and returns a level writer
// that routes every event to app.log and error-or-worse events to error.log too.
func openLogFiles(dir string, loggerService *LoggerService) (zerolog.LevelWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}

	appFile, err := os.OpenFile(filepath.Join(dir, "app.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	errorFile, err := os.OpenFile(filepath.Join(dir, "error.log"), os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		_ = appFile.Close()
		return nil, err
	}

	if loggerService != nil {
		loggerService.files = append(loggerService.files, appFile, errorFile)
	}

	return NewFileLevelWriter(appFile, errorFile), nil
}

// NewFileLevelWriter writes every event to all and events at error level or
// above to errors as well.
func NewFileLevelWriter(all, errors io.Writer) zerolog.LevelWriter {
	return zerolog.MultiLevelWriter(
		all,
		&zerolog.FilteredLevelWriter{
			Writer: zerolog.LevelWriterAdapter{Writer: errors},
			Level:  zerolog.ErrorLevel,
		},
	)
}

// ParseLevel maps a configured level name to a zerolog level, defaulting to info.
func ParseLevel(level string) zerolog.Level {
	switch level {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

// WithTraceContext adds New Relic transaction context to logger
func WithTraceContext(logger zerolog.Logger, txn *newrelic.Transaction) zerolog.Logger {
	if txn == nil {
		return logger
	}

	metadata := txn.GetTraceMetadata()

	return logger.With().
		Str("trace.id", metadata.TraceID).
		Str("span.id", metadata.SpanID).
		Logger()
}
