package types

import "log/slog"

const redacted = "***REDACTED***"

// SecretString holds a sensitive value (bot token, cron secret, database
// URL) and redacts itself in fmt, JSON, and slog output. Call Unmask() at
// the single point where the raw value is genuinely needed.
type SecretString string

// String returns a redacted placeholder; invoked by the fmt package.
func (s SecretString) String() string { return redacted }

// MarshalJSON prevents the raw value from leaking into serialized config
// dumps or structured log entries.
func (s SecretString) MarshalJSON() ([]byte, error) {
	return []byte(`"` + redacted + `"`), nil
}

// LogValue implements slog.LogValuer so secrets passed as log attributes
// are redacted too.
func (s SecretString) LogValue() slog.Value {
	return slog.StringValue(redacted)
}

// Unmask returns the raw plaintext value.
func (s SecretString) Unmask() string { return string(s) }
