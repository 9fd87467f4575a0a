// Package main is the entry point for the RainWatch bot service.
//
// It wires the full service: configuration, structured logging, the
// PostgreSQL pool and schema bootstrap, the Open-Meteo client behind the
// resilient HTTP base client, the Telegram bot (long polling), the HTTP
// server for health/metrics/cron endpoints, and the in-process scheduler
// for the periodic rain scan and the daily morning broadcast.
//
// Graceful shutdown is handled via OS signal interception (SIGINT, SIGTERM).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"rainwatch/internal/alerts"
	"rainwatch/internal/bot"
	"rainwatch/internal/config"
	"rainwatch/internal/db"
	"rainwatch/internal/external"
	"rainwatch/internal/rain"
	"rainwatch/internal/report"
	"rainwatch/internal/scheduler"
	"rainwatch/internal/server"
	"rainwatch/internal/types"
	"rainwatch/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so main() can cleanly exit on error.
func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	log := types.NewLogger(logger)
	log.Info("rainwatch starting", "environment", cfg.Environment, "port", cfg.Server.Port)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Database.
	pool, err := db.NewPool(ctx, cfg.Database.URL.Unmask(), cfg.Database.MaxConns, cfg.Database.MaxConnLifetime)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.Bootstrap(ctx, pool); err != nil {
		return err
	}
	userRepo := db.NewUserRepository(pool)
	alertRepo := db.NewAlertLogRepository(pool)

	// Weather upstream.
	httpClient := &http.Client{Timeout: cfg.Weather.RequestTimeout}
	baseClient := external.NewBaseClient(httpClient, "open-meteo", external.DefaultRetryPolicy(), "rainwatch/1.0")
	weatherClient := weather.NewClient(baseClient, weather.Config{
		GeocodingBaseURL: cfg.Weather.GeocodingBaseURL,
		ForecastBaseURL:  cfg.Weather.ForecastBaseURL,
		ForecastDays:     cfg.Weather.ForecastDays,
	})

	// Telegram.
	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken.Unmask())
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}
	sender := bot.NewTelegramSender(api)

	// Rain-alert pipeline.
	clock := types.RealClock{}
	classifier := rain.NewClassifier(cfg.Alerts.MinPrecipitationMM, cfg.Alerts.MinProbabilityPct)
	ledger := alerts.NewLedger(alertRepo,
		time.Duration(cfg.Alerts.CooldownHours)*time.Hour,
		time.Duration(cfg.Alerts.RetentionHours)*time.Hour,
		clock, log)
	orchestrator := alerts.NewOrchestrator(
		userRepo, weatherClient, classifier, ledger,
		bot.NewNotifier(sender),
		alerts.NewMetrics(prometheus.DefaultRegisterer),
		clock, log,
		alerts.ScanConfig{
			Horizon: time.Duration(cfg.Alerts.HorizonHours) * time.Hour,
			Window: rain.Window{
				Lower: time.Duration(cfg.Alerts.WindowLowerMinutes) * time.Minute,
				Upper: time.Duration(cfg.Alerts.WindowUpperMinutes) * time.Minute,
			},
			ActiveHourStart: cfg.Alerts.ActiveHourStart,
			ActiveHourEnd:   cfg.Alerts.ActiveHourEnd,
			Concurrency:     cfg.Alerts.Concurrency,
			UserTimeout:     cfg.Alerts.UserTimeout,
			AdminUserID:     cfg.Telegram.AdminUserID,
		},
	)

	// Reports and bot surface.
	reportService := report.NewService(weatherClient, classifier, clock)
	broadcaster := report.NewBroadcaster(reportService, userRepo, sender, log)
	tgBot := bot.New(sender, userRepo, reportService, log)
	poller := bot.NewPoller(api, tgBot, log)

	// HTTP server.
	srv := server.New(orchestrator, broadcaster, cfg.Server.CronSecret, log)
	httpServer := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Scheduler. The report timezone is validated at config load.
	reportTZ, _ := time.LoadLocation(cfg.Report.Timezone)
	sched := scheduler.New(orchestrator, broadcaster, scheduler.Config{
		ScanInterval: cfg.Alerts.ScanInterval,
		ReportHour:   cfg.Report.Hour,
		Timezone:     reportTZ,
	}, log)
	if err := sched.Start(); err != nil {
		return err
	}
	defer sched.Stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := poller.Run(gctx); err != nil && !errors.Is(err, context.Canceled) {
			return fmt.Errorf("telegram poller: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("http server listening", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	err = g.Wait()
	log.Info("rainwatch stopped")
	return err
}

// newLogger builds the process-wide slog JSON logger.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
