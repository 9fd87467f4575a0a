package alerts

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"rainwatch/internal/rain"
	"rainwatch/internal/types"
	"rainwatch/internal/weather"
)

// UserSource lists the users a scan iterates over.
type UserSource interface {
	ListEnrolled(ctx context.Context) ([]types.User, error)
	Stats(ctx context.Context, since time.Time) (types.UserStats, error)
}

// ForecastSource resolves cities and fetches forecasts.
type ForecastSource interface {
	ResolveCity(ctx context.Context, name string) (weather.Location, error)
	FetchForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error)
}

// AlertSender delivers notifications. The bot package implements it on top
// of the Telegram API.
type AlertSender interface {
	SendRainAlert(ctx context.Context, user types.User, alert *types.ImminentAlert) error
	SendScanSummary(ctx context.Context, adminID int64, summary types.ScanSummary, stats types.UserStats) error
}

// ScanConfig tunes one orchestrator instance.
type ScanConfig struct {
	// Horizon bounds how far ahead of now forecast points are considered.
	Horizon time.Duration
	// Window is the actionable lead-time window for notifications.
	Window rain.Window
	// ActiveHourStart/End gate sends to local daytime hours. A qualifying
	// event outside active hours is skipped, not queued.
	ActiveHourStart int
	ActiveHourEnd   int
	// Concurrency bounds the per-user fan-out; UserTimeout bounds the
	// network work done for a single user.
	Concurrency int
	UserTimeout time.Duration
	// AdminUserID receives a best-effort summary after each scan. Zero
	// disables summaries.
	AdminUserID int64
}

// Orchestrator runs the full rain-alert scan: list enrolled users, evaluate
// each one's forecast through the rain core, gate through the dedup ledger,
// and send. Users are independent; one user's failure never aborts the scan.
type Orchestrator struct {
	users      UserSource
	weather    ForecastSource
	classifier rain.Classifier
	ledger     *Ledger
	sender     AlertSender
	metrics    *Metrics
	clock      types.Clock
	log        types.Logger
	cfg        ScanConfig
}

// NewOrchestrator wires a scan orchestrator. metrics may be nil.
func NewOrchestrator(
	users UserSource,
	forecasts ForecastSource,
	classifier rain.Classifier,
	ledger *Ledger,
	sender AlertSender,
	metrics *Metrics,
	clock types.Clock,
	log types.Logger,
	cfg ScanConfig,
) *Orchestrator {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	if cfg.UserTimeout <= 0 {
		cfg.UserTimeout = 30 * time.Second
	}
	return &Orchestrator{
		users:      users,
		weather:    forecasts,
		classifier: classifier,
		ledger:     ledger,
		sender:     sender,
		metrics:    metrics,
		clock:      clock,
		log:        log,
		cfg:        cfg,
	}
}

// scanOutcome is the terminal state of one user's evaluation.
type scanOutcome struct {
	sent bool
	skip string // one of the Skip* reasons when not sent
	err  error
}

// RunScan executes one full scan and returns its summary. The returned
// error reflects only scan-level failures (listing users); per-user errors
// are counted in the summary.
func (o *Orchestrator) RunScan(ctx context.Context) (types.ScanSummary, error) {
	started := o.clock.Now()
	runID := uuid.NewString()
	log := o.log.With("run_id", runID)

	if o.metrics != nil {
		o.metrics.ScansTotal.Inc()
	}

	// Opportunistic retention cleanup; failures do not block the scan.
	o.ledger.PruneExpired(ctx)

	users, err := o.users.ListEnrolled(ctx)
	if err != nil {
		log.Error("failed to list enrolled users", "error", err)
		return types.ScanSummary{RunID: runID, Started: started, Errors: 1}, err
	}
	log.Info("rain scan started", "users", len(users))

	var sent, skipped, errored atomic.Int64

	g := new(errgroup.Group)
	g.SetLimit(o.cfg.Concurrency)
	for _, u := range users {
		u := u
		g.Go(func() error {
			defer func() {
				if r := recover(); r != nil {
					log.Error("panic during user scan", "user_id", u.ID, "panic", r)
					errored.Add(1)
				}
			}()

			uctx, cancel := context.WithTimeout(ctx, o.cfg.UserTimeout)
			defer cancel()

			out := o.scanUser(uctx, log, u)
			switch {
			case out.err != nil:
				log.Error("user scan failed", "user_id", u.ID, "city", u.City, "error", out.err)
				errored.Add(1)
				if o.metrics != nil {
					o.metrics.UserErrors.Inc()
				}
			case out.sent:
				sent.Add(1)
				if o.metrics != nil {
					o.metrics.AlertsSent.Inc()
				}
			default:
				skipped.Add(1)
				if o.metrics != nil {
					o.metrics.AlertsSkipped.WithLabelValues(out.skip).Inc()
				}
			}
			return nil
		})
	}
	_ = g.Wait()

	summary := types.ScanSummary{
		RunID:    runID,
		Started:  started,
		Duration: o.clock.Now().Sub(started),
		Sent:     int(sent.Load()),
		Skipped:  int(skipped.Load()),
		Errors:   int(errored.Load()),
	}
	if o.metrics != nil {
		o.metrics.ScanDuration.Observe(summary.Duration.Seconds())
	}
	log.Info("rain scan complete",
		"sent", summary.Sent, "skipped", summary.Skipped, "errors", summary.Errors,
		"duration_ms", summary.Duration.Milliseconds())

	o.notifyAdmin(log, summary)

	return summary, nil
}

// scanUser evaluates one user: forecast, rain core, quiet hours, ledger,
// send. A denied claim after a successful send attempt is final; failed
// sends do not release the claim.
func (o *Orchestrator) scanUser(ctx context.Context, log types.Logger, u types.User) scanOutcome {
	loc, err := o.weather.ResolveCity(ctx, u.City)
	if err != nil {
		return scanOutcome{err: err}
	}
	forecast, err := o.weather.FetchForecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return scanOutcome{err: err}
	}

	now := o.clock.Now().In(forecast.Timezone)
	candidates := rain.ExtractCandidates(forecast.Hourly, now, o.cfg.Horizon)
	events := o.classifier.ClassifyAll(candidates)
	if len(events) == 0 {
		return scanOutcome{skip: SkipNoRain}
	}

	alert := rain.SelectImminent(events, now, o.cfg.Window)
	if alert == nil {
		return scanOutcome{skip: SkipNotInWindow}
	}
	alert.UserID = u.ID
	alert.City = u.City

	if h := now.Hour(); h < o.cfg.ActiveHourStart || h >= o.cfg.ActiveHourEnd {
		return scanOutcome{skip: SkipQuietHours}
	}

	key := types.NewAlertKey(u.ID, u.City, alert.EventTime)
	if !o.ledger.ClaimSend(ctx, key) {
		return scanOutcome{skip: SkipCooldown}
	}

	if err := o.sender.SendRainAlert(ctx, u, alert); err != nil {
		return scanOutcome{err: err}
	}
	log.Info("rain alert sent",
		"user_id", u.ID, "city", u.City,
		"event_time", alert.EventTime, "minutes_until", alert.MinutesUntil,
		"intensity", alert.Intensity)
	return scanOutcome{sent: true}
}

// notifyAdmin sends the post-scan summary to the admin user, fire and
// forget. The summary is diagnostics, never worth failing or delaying a
// scan over.
func (o *Orchestrator) notifyAdmin(log types.Logger, summary types.ScanSummary) {
	if o.cfg.AdminUserID == 0 {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()

		stats, err := o.users.Stats(ctx, o.clock.Now().Add(-24*time.Hour))
		if err != nil {
			log.Warn("failed to load user stats for admin summary", "error", err)
		}
		if err := o.sender.SendScanSummary(ctx, o.cfg.AdminUserID, summary, stats); err != nil {
			log.Warn("failed to send admin scan summary", "error", err)
		}
	}()
}
