package rain

import (
	"rainwatch/internal/types"
)

// Intensity tier boundaries in mm/h, per the WMO-style buckets the forecast
// provider documents. The classification is a non-decreasing step function
// of the precipitation amount.
const (
	lightMaxMM    = 2.5
	moderateMaxMM = 7.5
)

// Classifier applies the significance gate and assigns intensity tiers.
// The zero value rejects everything; construct via NewClassifier.
type Classifier struct {
	minPrecipitationMM float64
	minProbabilityPct  float64
}

// NewClassifier creates a Classifier with the given significance
// thresholds. A point counts as a rain event only when BOTH its
// precipitation amount and its probability reach the thresholds; a missing
// probability is treated as zero and therefore fails the gate.
func NewClassifier(minPrecipitationMM, minProbabilityPct float64) Classifier {
	return Classifier{
		minPrecipitationMM: minPrecipitationMM,
		minProbabilityPct:  minProbabilityPct,
	}
}

// Classify returns the rain event for a forecast point, or ok=false when
// the point fails the significance gate.
func (c Classifier) Classify(p types.HourlyForecastPoint) (types.RainEvent, bool) {
	if p.PrecipitationMM < c.minPrecipitationMM || p.ProbabilityPct < c.minProbabilityPct {
		return types.RainEvent{}, false
	}
	return types.RainEvent{
		Time:            p.Time,
		PrecipitationMM: p.PrecipitationMM,
		ProbabilityPct:  p.ProbabilityPct,
		Intensity:       intensityFor(p.PrecipitationMM),
	}, true
}

// ClassifyAll filters a candidate sequence down to qualifying rain events,
// preserving order.
func (c Classifier) ClassifyAll(points []types.HourlyForecastPoint) []types.RainEvent {
	events := make([]types.RainEvent, 0, len(points))
	for _, p := range points {
		if ev, ok := c.Classify(p); ok {
			events = append(events, ev)
		}
	}
	return events
}

// intensityFor maps an hourly precipitation amount to its tier.
func intensityFor(mm float64) types.Intensity {
	switch {
	case mm <= lightMaxMM:
		return types.IntensityLight
	case mm <= moderateMaxMM:
		return types.IntensityModerate
	default:
		return types.IntensityHeavy
	}
}
