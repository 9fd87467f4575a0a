// Package config defines the process-wide configuration for the RainWatch
// bot. Configuration is loaded once at startup and is immutable thereafter;
// it follows 12-Factor principles by strictly separating code from
// configuration. Any missing required value or invalid format causes the
// process to exit immediately (fail fast).
package config

import (
	"time"

	"rainwatch/internal/types"
)

// SecretString is an alias for types.SecretString, the redacted secret type
// used throughout configuration to prevent accidental logging of sensitive
// values.
type SecretString = types.SecretString

// Config is the top-level configuration struct. Sub-components receive only
// the specific subsets they require.
type Config struct {
	Environment string `envconfig:"APP_ENV" default:"local" validate:"oneof=local dev prod"`
	LogLevel    string `envconfig:"LOG_LEVEL" default:"info" validate:"oneof=debug info warn error"`

	Telegram TelegramConfig
	Server   ServerConfig
	Database DatabaseConfig
	Weather  WeatherConfig
	Alerts   AlertsConfig
	Report   ReportConfig
}

// TelegramConfig holds bot credentials and admin routing.
type TelegramConfig struct {
	BotToken SecretString `envconfig:"BOT_TOKEN" validate:"required"`
	// AdminUserID receives best-effort scan summaries. Zero disables them.
	AdminUserID int64 `envconfig:"ADMIN_USER_ID"`
}

// ServerConfig holds the HTTP server settings for the cron, health, and
// metrics endpoints.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080"`
	// CronSecret guards the /cron/* endpoints. Required because hosting
	// platforms expose the service URL publicly.
	CronSecret SecretString `envconfig:"CRON_SECRET" validate:"required"`
}

// DatabaseConfig holds database connection and pool tuning parameters.
type DatabaseConfig struct {
	URL SecretString `envconfig:"DATABASE_URL" validate:"required"`

	MaxConns        int           `envconfig:"DB_MAX_CONNS" default:"5"`
	MaxConnLifetime time.Duration `envconfig:"DB_MAX_CONN_LIFETIME" default:"30m"`
}

// WeatherConfig holds the upstream Open-Meteo endpoints and timeouts.
// The base URLs are overridable for tests and regional mirrors.
type WeatherConfig struct {
	GeocodingBaseURL string        `envconfig:"GEOCODING_BASE_URL" default:"https://geocoding-api.open-meteo.com/v1/search" validate:"url"`
	ForecastBaseURL  string        `envconfig:"FORECAST_BASE_URL" default:"https://api.open-meteo.com/v1/forecast" validate:"url"`
	RequestTimeout   time.Duration `envconfig:"WEATHER_TIMEOUT" default:"10s"`
	ForecastDays     int           `envconfig:"FORECAST_DAYS" default:"5" validate:"min=1,max=16"`
}

// AlertsConfig tunes the rain-alert scan: significance thresholds, the
// actionable lead-time window, dedup cooldown, and batch behavior.
//
// The significance thresholds drifted between 0.1mm/20% and 0.5mm/40%
// across historical iterations of the alert logic; the stricter pair is
// the documented default and both are explicit configuration, not policy
// buried in code.
type AlertsConfig struct {
	ScanInterval time.Duration `envconfig:"RAIN_SCAN_INTERVAL" default:"30m"`
	HorizonHours int           `envconfig:"RAIN_HORIZON_HOURS" default:"24" validate:"min=1,max=48"`

	MinPrecipitationMM float64 `envconfig:"RAIN_MIN_PRECIPITATION_MM" default:"0.5"`
	MinProbabilityPct  float64 `envconfig:"RAIN_MIN_PROBABILITY_PCT" default:"40"`

	// The alert window: don't warn for rain starting sooner than the lower
	// bound (it's basically already happening) or later than the upper
	// bound (not actionable yet). Lower bound inclusive, upper exclusive.
	WindowLowerMinutes int `envconfig:"RAIN_WINDOW_LOWER_MIN" default:"15" validate:"min=0"`
	WindowUpperMinutes int `envconfig:"RAIN_WINDOW_UPPER_MIN" default:"90" validate:"min=1"`

	CooldownHours  int `envconfig:"RAIN_COOLDOWN_HOURS" default:"6" validate:"min=1"`
	RetentionHours int `envconfig:"RAIN_RETENTION_HOURS" default:"24" validate:"min=1"`

	// Alerts are only sent between these local hours to avoid waking users.
	ActiveHourStart int `envconfig:"RAIN_ACTIVE_HOUR_START" default:"7" validate:"min=0,max=23"`
	ActiveHourEnd   int `envconfig:"RAIN_ACTIVE_HOUR_END" default:"22" validate:"min=0,max=23"`

	// Concurrency bounds the parallel per-user fan-out within one scan.
	Concurrency int `envconfig:"RAIN_SCAN_CONCURRENCY" default:"4" validate:"min=1"`
	// UserTimeout bounds the network work done for a single user.
	UserTimeout time.Duration `envconfig:"RAIN_SCAN_USER_TIMEOUT" default:"30s"`
}

// ReportConfig tunes the daily morning-report broadcast.
type ReportConfig struct {
	Hour     int    `envconfig:"MORNING_REPORT_HOUR" default:"8" validate:"min=0,max=23"`
	Timezone string `envconfig:"REPORT_TIMEZONE" default:"Europe/Rome"`
}
