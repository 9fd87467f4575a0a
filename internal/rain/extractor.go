// Package rain implements the rain-detection core: windowing an hourly
// precipitation forecast against a moving "now", classifying event
// intensity, and selecting the single event worth alerting on.
//
// Everything in this package is a pure function of its inputs; persistence
// and delivery live in the alerts package.
package rain

import (
	"time"

	"rainwatch/internal/types"
)

// ExtractCandidates returns the forecast points that fall strictly inside
// (now, now+horizon], preserving chronological order.
//
// The current or past hour is never a candidate: rain at or before "now"
// has already started and is a "raining now" condition, not an upcoming
// event. The series is assumed sorted ascending, so scanning stops at the
// first point beyond the horizon.
//
// A nil or empty series yields an empty result; this function never fails.
func ExtractCandidates(series []types.HourlyForecastPoint, now time.Time, horizon time.Duration) []types.HourlyForecastPoint {
	if len(series) == 0 || horizon <= 0 {
		return nil
	}

	limit := now.Add(horizon)
	candidates := make([]types.HourlyForecastPoint, 0, len(series))
	for _, p := range series {
		if !p.Time.After(now) {
			continue
		}
		if p.Time.After(limit) {
			break
		}
		candidates = append(candidates, p)
	}
	return candidates
}
