package report

import (
	"context"
	"time"

	"rainwatch/internal/i18n"
	"rainwatch/internal/types"
)

// userLister is the slice of the user repository the broadcast needs.
type userLister interface {
	ListWithCity(ctx context.Context) ([]types.User, error)
}

// messageSender delivers Markdown messages to a chat.
type messageSender interface {
	SendMarkdown(ctx context.Context, chatID int64, text string) error
}

// BroadcastSummary aggregates the outcome of one morning broadcast.
type BroadcastSummary struct {
	Users     int
	Delivered int
	Failed    int
}

// Broadcaster sends the morning weather report to every user with a saved
// city. Runs once per day via the scheduler or the cron endpoint.
type Broadcaster struct {
	service *Service
	users   userLister
	sender  messageSender
	log     types.Logger
	// pause between sends, to stay under Telegram's per-bot rate limits
	sendDelay time.Duration
}

// NewBroadcaster creates a morning-report Broadcaster.
func NewBroadcaster(service *Service, users userLister, sender messageSender, log types.Logger) *Broadcaster {
	return &Broadcaster{
		service:   service,
		users:     users,
		sender:    sender,
		log:       log,
		sendDelay: 500 * time.Millisecond,
	}
}

// Run delivers the morning report to all users with a saved city. Users are
// independent: a failed forecast or send for one user never stops the
// broadcast. A user whose forecast cannot be produced gets a localized
// failure notice instead of silence.
func (b *Broadcaster) Run(ctx context.Context) (BroadcastSummary, error) {
	users, err := b.users.ListWithCity(ctx)
	if err != nil {
		b.log.Error("failed to list users for morning report", "error", err)
		return BroadcastSummary{}, err
	}
	summary := BroadcastSummary{Users: len(users)}
	b.log.Info("morning broadcast started", "users", len(users))

	for i, u := range users {
		if err := ctx.Err(); err != nil {
			b.log.Warn("morning broadcast interrupted", "delivered", summary.Delivered, "error", err)
			return summary, err
		}
		if i > 0 && b.sendDelay > 0 {
			time.Sleep(b.sendDelay)
		}

		msg, err := b.service.WeatherMessage(ctx, u.Language, u.City)
		if err != nil {
			b.log.Warn("failed to build morning report", "user_id", u.ID, "city", u.City, "error", err)
			summary.Failed++
			if sendErr := b.sender.SendMarkdown(ctx, u.ID, i18n.MorningFailure(u.Language, u.City)); sendErr != nil {
				b.log.Warn("failed to send morning failure notice", "user_id", u.ID, "error", sendErr)
			}
			continue
		}

		full := i18n.MorningGreeting(u.Language, u.City) + msg
		if err := b.sender.SendMarkdown(ctx, u.ID, full); err != nil {
			b.log.Warn("failed to send morning report", "user_id", u.ID, "error", err)
			summary.Failed++
			continue
		}
		summary.Delivered++
	}

	b.log.Info("morning broadcast complete",
		"users", summary.Users, "delivered", summary.Delivered, "failed", summary.Failed)
	return summary, nil
}
