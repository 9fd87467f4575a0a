package rain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainwatch/internal/types"
)

func TestClassify_SignificanceGate(t *testing.T) {
	c := NewClassifier(0.5, 40)

	tests := []struct {
		name string
		mm   float64
		pct  float64
		ok   bool
	}{
		{"both below", 0.2, 30, false},
		{"precipitation below", 0.2, 80, false},
		{"probability below", 3.0, 30, false},
		{"both at threshold", 0.5, 40, true},
		{"both above", 3.0, 60, true},
		{"missing probability", 3.0, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, ok := c.Classify(types.HourlyForecastPoint{
				Time:            time.Now(),
				PrecipitationMM: tt.mm,
				ProbabilityPct:  tt.pct,
			})
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestClassify_IntensityTiers(t *testing.T) {
	c := NewClassifier(0.5, 40)

	tests := []struct {
		mm   float64
		want types.Intensity
	}{
		{0.5, types.IntensityLight},
		{2.5, types.IntensityLight},
		{2.6, types.IntensityModerate},
		{7.5, types.IntensityModerate},
		{7.6, types.IntensityHeavy},
		{25.0, types.IntensityHeavy},
	}
	for _, tt := range tests {
		ev, ok := c.Classify(types.HourlyForecastPoint{
			Time:            time.Now(),
			PrecipitationMM: tt.mm,
			ProbabilityPct:  90,
		})
		require.True(t, ok)
		assert.Equal(t, tt.want, ev.Intensity, "%.1f mm", tt.mm)
	}
}

// Intensity must never decrease as the precipitation amount grows.
func TestClassify_IntensityMonotonic(t *testing.T) {
	c := NewClassifier(0, 0)
	rank := map[types.Intensity]int{
		types.IntensityLight:    0,
		types.IntensityModerate: 1,
		types.IntensityHeavy:    2,
	}

	prev := -1
	for mm := 0.0; mm <= 20.0; mm += 0.1 {
		ev, ok := c.Classify(types.HourlyForecastPoint{Time: time.Now(), PrecipitationMM: mm})
		require.True(t, ok)
		cur := rank[ev.Intensity]
		assert.GreaterOrEqual(t, cur, prev, "intensity regressed at %.1f mm", mm)
		prev = cur
	}
}

func TestClassifyAll_FiltersAndPreservesOrder(t *testing.T) {
	c := NewClassifier(0.5, 40)
	base := time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC)

	points := []types.HourlyForecastPoint{
		{Time: base, PrecipitationMM: 0.1, ProbabilityPct: 90},               // filtered
		{Time: base.Add(time.Hour), PrecipitationMM: 1.0, ProbabilityPct: 60},
		{Time: base.Add(2 * time.Hour), PrecipitationMM: 9.0, ProbabilityPct: 20}, // filtered
		{Time: base.Add(3 * time.Hour), PrecipitationMM: 9.0, ProbabilityPct: 85},
	}

	events := c.ClassifyAll(points)

	require.Len(t, events, 2)
	assert.Equal(t, base.Add(time.Hour), events[0].Time)
	assert.Equal(t, types.IntensityLight, events[0].Intensity)
	assert.Equal(t, base.Add(3*time.Hour), events[1].Time)
	assert.Equal(t, types.IntensityHeavy, events[1].Intensity)
}

func TestClassify_CarriesSourceValues(t *testing.T) {
	c := NewClassifier(0.5, 40)
	at := time.Date(2026, 3, 10, 16, 0, 0, 0, time.UTC)

	ev, ok := c.Classify(types.HourlyForecastPoint{Time: at, PrecipitationMM: 3.2, ProbabilityPct: 75})

	require.True(t, ok)
	assert.Equal(t, at, ev.Time)
	assert.Equal(t, 3.2, ev.PrecipitationMM)
	assert.Equal(t, 75.0, ev.ProbabilityPct)
}
