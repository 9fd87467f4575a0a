// Package main runs a single rain-alert scan and exits. Intended for
// external cron systems and one-off operational runs; the long-lived bot
// service schedules the same scan internally.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rainwatch/internal/alerts"
	"rainwatch/internal/bot"
	"rainwatch/internal/config"
	"rainwatch/internal/db"
	"rainwatch/internal/external"
	"rainwatch/internal/rain"
	"rainwatch/internal/types"
	"rainwatch/internal/weather"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	log := types.NewLogger(logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := db.NewPool(ctx, cfg.Database.URL.Unmask(), cfg.Database.MaxConns, cfg.Database.MaxConnLifetime)
	if err != nil {
		return err
	}
	defer pool.Close()
	if err := db.Bootstrap(ctx, pool); err != nil {
		return err
	}

	httpClient := &http.Client{Timeout: cfg.Weather.RequestTimeout}
	baseClient := external.NewBaseClient(httpClient, "open-meteo", external.DefaultRetryPolicy(), "rainwatch/1.0")
	weatherClient := weather.NewClient(baseClient, weather.Config{
		GeocodingBaseURL: cfg.Weather.GeocodingBaseURL,
		ForecastBaseURL:  cfg.Weather.ForecastBaseURL,
		ForecastDays:     cfg.Weather.ForecastDays,
	})

	api, err := tgbotapi.NewBotAPI(cfg.Telegram.BotToken.Unmask())
	if err != nil {
		return fmt.Errorf("connecting to telegram: %w", err)
	}

	clock := types.RealClock{}
	ledger := alerts.NewLedger(db.NewAlertLogRepository(pool),
		time.Duration(cfg.Alerts.CooldownHours)*time.Hour,
		time.Duration(cfg.Alerts.RetentionHours)*time.Hour,
		clock, log)
	orchestrator := alerts.NewOrchestrator(
		db.NewUserRepository(pool),
		weatherClient,
		rain.NewClassifier(cfg.Alerts.MinPrecipitationMM, cfg.Alerts.MinProbabilityPct),
		ledger,
		bot.NewNotifier(bot.NewTelegramSender(api)),
		nil,
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

	summary, err := orchestrator.RunScan(ctx)
	if err != nil {
		return fmt.Errorf("rain scan: %w", err)
	}
	log.Info("scan finished", "sent", summary.Sent, "skipped", summary.Skipped, "errors", summary.Errors)
	return nil
}
