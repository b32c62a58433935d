// Package config manages environment variables.
//
// It reads variables from the `.env` file and the process environment,
// loads them into structured Go types (struct), and
// validates that required values are present so they
// can be reused across the application runtime.
//
// Responsibilities:
//   - Load environment variables (optionally from a `.env` file).
//   - Map env vars into a structured Go config (structs).
//   - Validate required values so the app fails fast on bad/missing config.
//   - Provide sane defaults for optional config blocks (e.g. observability).
package config

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	// Side-effect import: if a `.env` file exists, it gets loaded into the
	// process env before any of the code below reads env vars.
	_ "github.com/joho/godotenv/autoload"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"
)

/*
	`koanf` reads config sources and unmarshals them into the structs below.

	Key idea in this file:
	- Env vars are read using a prefix: PRODUCTIVITY_
	- Keys are normalized (prefix removed, lowercased)
	- A double underscore marks nesting, mapped to koanf's "." delimiter
	  e.g. PRODUCTIVITY_SERVER__PORT -> server.port -> Config.Server.Port
	  e.g. PRODUCTIVITY_INTEGRATION__WEATHER_API_KEY -> integration.weather_api_key
*/

// EnvPrefix is the prefix every configuration variable must carry.
const EnvPrefix = "PRODUCTIVITY_"

// ServiceName tags logs, traces and New Relic data for this service.
const ServiceName = "productivity"

// Config is the root configuration object for the application.
//
// The `koanf:"..."` tags specify where koanf should map values from.
// The `validate:"required"` tags are used by go-playground/validator
// to enforce that the config is present and populated.
//
// Observability is a pointer because it is optional. If not provided,
// defaults are injected at runtime.
type Config struct {
	Primary       Primary              `koanf:"primary" validate:"required"`
	Server        ServerConfig         `koanf:"server" validate:"required"`
	Database      DatabaseConfig       `koanf:"database" validate:"required"`
	Redis         RedisConfig          `koanf:"redis" validate:"required"`
	Auth          AuthConfig           `koanf:"auth" validate:"required"`
	Integration   IntegrationConfig    `koanf:"integration" validate:"required"`
	Observability *ObservabilityConfig `koanf:"observability"`
}

// Primary holds top-level information about the runtime environment.
// Used to tag logs/traces and switch behavior based on env.
type Primary struct {
	Env string `koanf:"env" validate:"required"`
}

// ServerConfig groups settings for the HTTP server runtime.
//
// Timeouts are expressed in seconds.
type ServerConfig struct {
	Port               string   `koanf:"port" validate:"required"`
	ReadTimeout        int      `koanf:"read_timeout" validate:"required"`
	WriteTimeout       int      `koanf:"write_timeout" validate:"required"`
	IdleTimeout        int      `koanf:"idle_timeout" validate:"required"`
	CORSAllowedOrigins []string `koanf:"cors_allowed_origins" validate:"required"`

	// ProxyRateLimit is the number of requests per second each client may send
	// to the public request-proxy routes.
	ProxyRateLimit float64 `koanf:"proxy_rate_limit"`
}

// DatabaseConfig contains PostgreSQL connection parameters and pool tuning.
type DatabaseConfig struct {
	Host            string `koanf:"host" validate:"required"`
	Port            int    `koanf:"port" validate:"required"`
	User            string `koanf:"user" validate:"required"`
	Password        string `koanf:"password" validate:"required"`
	Name            string `koanf:"name" validate:"required"`
	SSLMode         string `koanf:"ssl_mode" validate:"required"`
	MaxOpenConns    int    `koanf:"max_open_conns" validate:"required"`
	MaxIdleConns    int    `koanf:"max_idle_conns" validate:"required"`
	ConnMaxLifetime int    `koanf:"conn_max_lifetime" validate:"required"`
	ConnMaxIdleTime int    `koanf:"conn_max_idle_time" validate:"required"`
}

// RedisConfig contains Redis connection details.
// Address is typically "host:port".
type RedisConfig struct {
	Address string `koanf:"address" validate:"required"`
}

// AuthConfig stores authentication-related secrets.
type AuthConfig struct {
	SecretKey string `koanf:"secret_key" validate:"required"`
}

// IntegrationConfig holds credentials and endpoints of third-party providers:
// Resend for email and the upstream APIs behind the request proxy.
type IntegrationConfig struct {
	ResendAPIKey string `koanf:"resend_api_key" validate:"required"`
	EmailFrom    string `koanf:"email_from"`

	// WeatherAPIKey authenticates weather and city lookups.
	WeatherAPIKey  string `koanf:"weather_api_key" validate:"required"`
	WeatherBaseURL string `koanf:"weather_base_url" validate:"omitempty,url"`
	GeoBaseURL     string `koanf:"geo_base_url" validate:"omitempty,url"`
	QuoteURL       string `koanf:"quote_url" validate:"omitempty,url"`
	PictureURL     string `koanf:"picture_url" validate:"omitempty,url"`

	// ProxyTimeout bounds each upstream call, in seconds.
	ProxyTimeout int `koanf:"proxy_timeout"`
}

// Upstream defaults used when the integration block leaves endpoints empty.
const (
	DefaultWeatherBaseURL = "https://devapi.qweather.com"
	DefaultGeoBaseURL     = "https://geoapi.qweather.com"
	DefaultQuoteURL       = "https://v1.hitokoto.cn"
	DefaultPictureURL     = "https://cn.bing.com/HPImageArchive.aspx?format=js&idx=0&n=1"
	DefaultEmailFrom      = "Productivity <onboarding@resend.dev>"
	DefaultProxyTimeout   = 10
	DefaultProxyRateLimit = 20
)

// envKey converts a raw env var name into a koanf key path.
//
// Example:
//
//	PRODUCTIVITY_DATABASE__SSL_MODE -> "database.ssl_mode"
func envKey(s string) string {
	key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	return strings.ReplaceAll(key, "__", ".")
}

// LoadConfig loads configuration from environment variables, unmarshals it into
// Config structs, validates it, applies defaults, and returns the resulting config.
//
// Behavior summary:
//   - Loads env vars with prefix PRODUCTIVITY_
//   - Converts env keys into koanf keys using "." nesting
//   - Unmarshals into Config
//   - Validates required config blocks/fields
//   - Sets default observability and integration endpoints if missing
//   - Overrides observability service name + environment
//   - Validates observability config as well
//
// Unlike a fatal log, errors are returned so the caller owns process exit.
func LoadConfig() (*Config, error) {
	// The "." is the key-path delimiter koanf uses to represent nesting.
	k := koanf.New(".")

	// env.Provider parameters:
	//   1) prefix: only env vars with this prefix are read
	//   2) delimiter: "." tells koanf how to interpret nested keys
	//   3) key-mapping func: transforms raw env var names into koanf keys
	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("could not load initial env variables: %w", err)
	}

	mainConfig := &Config{}

	// "" means "unmarshal everything from the root".
	if err := k.Unmarshal("", mainConfig); err != nil {
		return nil, fmt.Errorf("could not unmarshal main config: %w", err)
	}

	// Validate the entire config struct recursively.
	validate := validator.New()
	if err := validate.Struct(mainConfig); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	// Observability is a pointer field, so nil means "missing".
	if mainConfig.Observability == nil {
		mainConfig.Observability = DefaultObservabilityConfig()
	}

	// Force service name and environment regardless of what the user set,
	// so tracing/logging sees consistent naming.
	mainConfig.Observability.ServiceName = ServiceName
	mainConfig.Observability.Environment = mainConfig.Primary.Env

	if err := mainConfig.Observability.Validate(); err != nil {
		return nil, fmt.Errorf("invalid observability config: %w", err)
	}

	mainConfig.applyDefaults()

	return mainConfig, nil
}

// applyDefaults fills optional values that have a sensible fallback.
func (c *Config) applyDefaults() {
	if c.Integration.WeatherBaseURL == "" {
		c.Integration.WeatherBaseURL = DefaultWeatherBaseURL
	}
	if c.Integration.GeoBaseURL == "" {
		c.Integration.GeoBaseURL = DefaultGeoBaseURL
	}
	if c.Integration.QuoteURL == "" {
		c.Integration.QuoteURL = DefaultQuoteURL
	}
	if c.Integration.PictureURL == "" {
		c.Integration.PictureURL = DefaultPictureURL
	}
	if c.Integration.EmailFrom == "" {
		c.Integration.EmailFrom = DefaultEmailFrom
	}
	if c.Integration.ProxyTimeout <= 0 {
		c.Integration.ProxyTimeout = DefaultProxyTimeout
	}
	if c.Server.ProxyRateLimit <= 0 {
		c.Server.ProxyRateLimit = DefaultProxyRateLimit
	}
}
