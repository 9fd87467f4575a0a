package bot

import (
	"context"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rainwatch/internal/types"
)

// updateTimeout bounds the handling of a single Telegram update.
const updateTimeout = 30 * time.Second

// Poller consumes updates via long polling and dispatches them to the Bot.
type Poller struct {
	api *tgbotapi.BotAPI
	bot *Bot
	log types.Logger
}

// NewPoller creates a Poller.
func NewPoller(api *tgbotapi.BotAPI, bot *Bot, log types.Logger) *Poller {
	return &Poller{api: api, bot: bot, log: log}
}

// Run polls Telegram for updates until ctx is cancelled. Updates are
// handled sequentially; Telegram delivers per-chat updates in order and
// the handlers are fast, so one worker is enough.
func (p *Poller) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := p.api.GetUpdatesChan(cfg)

	p.log.Info("telegram polling started", "bot", p.api.Self.UserName)
	for {
		select {
		case <-ctx.Done():
			p.api.StopReceivingUpdates()
			return ctx.Err()
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			uctx, cancel := context.WithTimeout(ctx, updateTimeout)
			p.bot.ProcessUpdate(uctx, update)
			cancel()
		}
	}
}
