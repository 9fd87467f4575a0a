// Package types defines the domain model shared across the RainWatch bot:
// forecast points, rain events, alert keys, user records, and the error and
// logging primitives the rest of the codebase builds on.
package types

import (
	"time"
)

// Language is a supported bot locale.
type Language string

// Supported locales. Unknown values fall back to English.
const (
	LangEnglish Language = "en"
	LangItalian Language = "it"
)

// Normalize maps an arbitrary language string to a supported Language.
func (l Language) Normalize() Language {
	if l == LangItalian {
		return LangItalian
	}
	return LangEnglish
}

// Intensity classifies a rain event by its hourly precipitation amount.
type Intensity string

// Intensity tiers. Boundaries are defined by the classifier
// (<=2.5mm light, <=7.5mm moderate, above heavy).
const (
	IntensityLight    Intensity = "light"
	IntensityModerate Intensity = "moderate"
	IntensityHeavy    Intensity = "heavy"
)

// HourlyForecastPoint is one entry of an hourly forecast series as returned
// by the weather provider. A missing precipitation probability is reported
// as zero, which makes the point fail the classifier's probability gate.
type HourlyForecastPoint struct {
	Time            time.Time `json:"time"`
	PrecipitationMM float64   `json:"precipitation_mm"`
	ProbabilityPct  float64   `json:"probability_percent"`
	WeatherCode     int       `json:"weather_code"`
}

// RainEvent is a forecast point that passed the significance gate and was
// assigned an intensity tier. Rain events are recomputed on every scan and
// never persisted.
type RainEvent struct {
	Time            time.Time `json:"time"`
	PrecipitationMM float64   `json:"precipitation_mm"`
	ProbabilityPct  float64   `json:"probability_percent"`
	Intensity       Intensity `json:"intensity"`
}

// ImminentAlert is the single rain event selected for notification during
// one scan of one user. MinutesUntil always falls inside the configured
// alert window.
type ImminentAlert struct {
	UserID          int64     `json:"user_id"`
	City            string    `json:"city"`
	EventTime       time.Time `json:"event_time"`
	MinutesUntil    int       `json:"minutes_until"`
	Intensity       Intensity `json:"intensity"`
	PrecipitationMM float64   `json:"precipitation_mm"`
	ProbabilityPct  float64   `json:"probability_percent"`
}

// AlertKey identifies "the same rain event" for one user across repeated
// scans. The EventBucket is the event's wall-clock time truncated to minute
// granularity (e.g. "14:30"): coarse enough that a re-detected event with a
// slightly shifted forecast still maps to the same key. A composite struct
// is used instead of a concatenated string so city names containing
// delimiter characters cannot corrupt the key.
type AlertKey struct {
	UserID      int64
	City        string
	EventBucket string
}

// NewAlertKey builds the dedup key for a user/city/event-time triple.
// The event time must already be localized to the forecast's timezone so
// the bucket matches what the user was told.
func NewAlertKey(userID int64, city string, eventTime time.Time) AlertKey {
	return AlertKey{
		UserID:      userID,
		City:        city,
		EventBucket: eventTime.Format("15:04"),
	}
}

// User is a Telegram user's stored preference record.
type User struct {
	ID         int64     `json:"id"`
	Language   Language  `json:"language"`
	City       string    `json:"city"`
	RainAlerts bool      `json:"rain_alerts"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Enrolled reports whether the user participates in background rain alerts.
func (u User) Enrolled() bool {
	return u.RainAlerts && u.City != ""
}

// ScanSummary aggregates the outcome of one rain-alert scan across all
// enrolled users. It is returned by the orchestrator, logged, and exported
// as metrics.
type ScanSummary struct {
	RunID    string        `json:"run_id"`
	Started  time.Time     `json:"started"`
	Duration time.Duration `json:"duration"`
	Sent     int           `json:"sent"`
	Skipped  int           `json:"skipped"`
	Errors   int           `json:"errors"`
}

// UserStats holds aggregate counts used for the admin summary message.
type UserStats struct {
	TotalUsers     int `json:"total_users"`
	UsersWithCity  int `json:"users_with_city"`
	UsersWithAlert int `json:"users_with_alerts"`
	AlertsSent24h  int `json:"alerts_sent_24h"`
}
