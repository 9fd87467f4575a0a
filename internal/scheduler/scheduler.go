// Package scheduler drives the periodic jobs when the bot runs as a
// long-lived process: the rain-alert scan every scan interval and the
// morning broadcast once a day. Deployments that rely on external cron
// hitting the /cron endpoints simply never start it.
package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/go-co-op/gocron"

	"rainwatch/internal/report"
	"rainwatch/internal/types"
)

// jobTimeout bounds a single scheduled job run.
const jobTimeout = 5 * time.Minute

// ScanRunner triggers one rain-alert scan.
type ScanRunner interface {
	RunScan(ctx context.Context) (types.ScanSummary, error)
}

// BroadcastRunner triggers one morning-report broadcast.
type BroadcastRunner interface {
	Run(ctx context.Context) (report.BroadcastSummary, error)
}

// Config tunes the schedule.
type Config struct {
	// ScanInterval is the spacing between rain-alert scans.
	ScanInterval time.Duration
	// ReportHour is the local hour (0-23) of the daily morning broadcast.
	ReportHour int
	// Timezone anchors ReportHour.
	Timezone *time.Location
}

// Scheduler owns the gocron instance and the two recurring jobs.
type Scheduler struct {
	scheduler *gocron.Scheduler
	scanner   ScanRunner
	broadcast BroadcastRunner
	cfg       Config
	log       types.Logger
}

// New creates a Scheduler. The gocron instance runs in the configured
// timezone so the daily report fires at the right local hour.
func New(scanner ScanRunner, broadcast BroadcastRunner, cfg Config, log types.Logger) *Scheduler {
	tz := cfg.Timezone
	if tz == nil {
		tz = time.UTC
	}
	return &Scheduler{
		scheduler: gocron.NewScheduler(tz),
		scanner:   scanner,
		broadcast: broadcast,
		cfg:       cfg,
		log:       log,
	}
}

// Start registers the jobs and starts the scheduler asynchronously.
func (s *Scheduler) Start() error {
	interval := s.cfg.ScanInterval
	if interval <= 0 {
		interval = 30 * time.Minute
	}

	if _, err := s.scheduler.Every(interval).Do(s.runScan); err != nil {
		return fmt.Errorf("scheduling rain scan: %w", err)
	}

	reportAt := fmt.Sprintf("%02d:00", s.cfg.ReportHour)
	if _, err := s.scheduler.Every(1).Day().At(reportAt).Do(s.runBroadcast); err != nil {
		return fmt.Errorf("scheduling morning report: %w", err)
	}

	s.scheduler.StartAsync()
	s.log.Info("scheduler started", "scan_interval", interval.String(), "report_at", reportAt)
	return nil
}

// Stop stops the scheduler and waits for running jobs to finish.
func (s *Scheduler) Stop() {
	s.scheduler.Stop()
}

func (s *Scheduler) runScan() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.scanner.RunScan(ctx); err != nil {
		s.log.Error("scheduled rain scan failed", "error", err)
	}
}

func (s *Scheduler) runBroadcast() {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()

	if _, err := s.broadcast.Run(ctx); err != nil {
		s.log.Error("scheduled morning broadcast failed", "error", err)
	}
}
