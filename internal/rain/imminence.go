package rain

import (
	"time"

	"rainwatch/internal/types"
)

// Window is the actionable lead-time window for alerts. An event qualifies
// when lower <= minutes-until < upper: the lower bound is inclusive (an
// event exactly at the minimum lead time is still worth a warning), the
// upper bound exclusive (an event a full window away is not yet
// actionable).
//
// The lower bound exists because rain starting in a couple of minutes is
// effectively already happening and may even be ending by the time the user
// reads the message; the upper bound keeps warnings close enough to act on.
type Window struct {
	Lower time.Duration
	Upper time.Duration
}

// DefaultWindow is the production alert window.
var DefaultWindow = Window{Lower: 15 * time.Minute, Upper: 90 * time.Minute}

// SelectImminent picks the single event the user should be warned about
// right now: the earliest event whose lead time falls inside the window.
// Later events are ignored even when more intense; users get exactly one
// actionable warning per scan, not a flood of every qualifying hour.
//
// Returns nil when no event is in window, which is the normal "nothing to
// alert on" outcome, not an error.
func SelectImminent(events []types.RainEvent, now time.Time, w Window) *types.ImminentAlert {
	for _, ev := range events {
		until := ev.Time.Sub(now)
		if until < w.Lower || until >= w.Upper {
			continue
		}
		return &types.ImminentAlert{
			EventTime:       ev.Time,
			MinutesUntil:    int(until.Minutes()),
			Intensity:       ev.Intensity,
			PrecipitationMM: ev.PrecipitationMM,
			ProbabilityPct:  ev.ProbabilityPct,
		}
	}
	return nil
}
