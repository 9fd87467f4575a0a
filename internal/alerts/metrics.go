package alerts

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Skip reasons used as metric labels and log fields.
const (
	SkipNoRain      = "no_rain"
	SkipNotInWindow = "not_in_window"
	SkipQuietHours  = "quiet_hours"
	SkipCooldown    = "cooldown"
)

// Metrics holds the Prometheus instruments for the rain-alert scan.
type Metrics struct {
	ScansTotal    prometheus.Counter
	ScanDuration  prometheus.Histogram
	AlertsSent    prometheus.Counter
	AlertsSkipped *prometheus.CounterVec
	UserErrors    prometheus.Counter
}

// NewMetrics registers the scan metrics with the given registerer.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		ScansTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "rainwatch_scans_total",
			Help: "Number of rain-alert scans executed.",
		}),
		ScanDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "rainwatch_scan_duration_seconds",
			Help:    "Wall-clock duration of a full rain-alert scan.",
			Buckets: prometheus.DefBuckets,
		}),
		AlertsSent: f.NewCounter(prometheus.CounterOpts{
			Name: "rainwatch_alerts_sent_total",
			Help: "Number of rain alert notifications delivered.",
		}),
		AlertsSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rainwatch_alerts_skipped_total",
			Help: "Number of per-user scans that ended without a notification.",
		}, []string{"reason"}),
		UserErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "rainwatch_scan_user_errors_total",
			Help: "Number of per-user scan failures.",
		}),
	}
}
