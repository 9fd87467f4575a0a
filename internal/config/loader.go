// loader.go implements the configuration loading lifecycle.
//
// The loading sequence is:
//  1. Enforce UTC process timezone to prevent drift bugs.
//  2. Load a .env file via godotenv (non-fatal if absent).
//  3. Process envconfig struct tags to populate the Config struct.
//  4. Validate the struct using go-playground/validator.
package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Load reads, populates, and validates the RainWatch configuration from the
// environment. It is called exactly once per process, before any component
// is constructed.
func Load() (*Config, error) {
	// All internal time handling is UTC; only message formatting localizes.
	time.Local = time.UTC

	// A missing .env file is the normal case in production.
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("config: processing environment: %w", err)
	}

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validate runs struct-tag validation plus the cross-field rules that tags
// cannot express.
func validate(cfg *Config) error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config: validation failed: %w", err)
	}

	if cfg.Alerts.WindowLowerMinutes >= cfg.Alerts.WindowUpperMinutes {
		return fmt.Errorf("config: RAIN_WINDOW_LOWER_MIN (%d) must be below RAIN_WINDOW_UPPER_MIN (%d)",
			cfg.Alerts.WindowLowerMinutes, cfg.Alerts.WindowUpperMinutes)
	}
	if cfg.Alerts.ActiveHourStart >= cfg.Alerts.ActiveHourEnd {
		return fmt.Errorf("config: RAIN_ACTIVE_HOUR_START (%d) must be below RAIN_ACTIVE_HOUR_END (%d)",
			cfg.Alerts.ActiveHourStart, cfg.Alerts.ActiveHourEnd)
	}
	if _, err := time.LoadLocation(cfg.Report.Timezone); err != nil {
		return fmt.Errorf("config: invalid REPORT_TIMEZONE %q: %w", cfg.Report.Timezone, err)
	}

	return nil
}
