package bot

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rainwatch/internal/i18n"
	"rainwatch/internal/types"
)

// Language keyboard labels; also matched verbatim in the text handler.
const (
	buttonEnglish  = "🇬🇧 English"
	buttonItalian  = "🇮🇹 Italiano"
	buttonLanguage = "🌐 Language / Lingua"
)

// UserStore is the slice of the user repository the handlers need.
type UserStore interface {
	Get(ctx context.Context, userID int64) (*types.User, error)
	SetLanguage(ctx context.Context, userID int64, lang types.Language) error
	SetCity(ctx context.Context, userID int64, city string) error
	SetRainAlerts(ctx context.Context, userID int64, enabled bool) error
}

// Reporter builds the localized forecast messages.
type Reporter interface {
	WeatherMessage(ctx context.Context, lang types.Language, city string) (string, error)
	RainMessage(ctx context.Context, lang types.Language, city string) (string, error)
}

// Bot dispatches Telegram updates to command handlers.
type Bot struct {
	sender  Sender
	users   UserStore
	reports Reporter
	log     types.Logger
}

// New creates a Bot.
func New(sender Sender, users UserStore, reports Reporter, log types.Logger) *Bot {
	return &Bot{sender: sender, users: users, reports: reports, log: log}
}

// ProcessUpdate handles one Telegram update. Only private messages are
// acted on; everything else is ignored.
func (b *Bot) ProcessUpdate(ctx context.Context, update tgbotapi.Update) {
	msg := update.Message
	if msg == nil || msg.From == nil || msg.Chat == nil {
		return
	}
	user := b.userFor(ctx, msg.From.ID)

	if msg.IsCommand() {
		b.handleCommand(ctx, user, msg)
		return
	}
	b.handleText(ctx, user, msg)
}

// userFor loads the stored user record, falling back to defaults for users
// the bot has never seen or when the database is unavailable.
func (b *Bot) userFor(ctx context.Context, userID int64) types.User {
	u, err := b.users.Get(ctx, userID)
	if err != nil {
		if !types.IsCode(err, types.ErrCodeNotFoundUser) {
			b.log.Warn("failed to load user, using defaults", "user_id", userID, "error", err)
		}
		return types.User{ID: userID, Language: types.LangEnglish}
	}
	return *u
}

func (b *Bot) handleCommand(ctx context.Context, user types.User, msg *tgbotapi.Message) {
	args := strings.TrimSpace(msg.CommandArguments())

	switch msg.Command() {
	case "start", "help", "aiuto":
		_ = b.sender.SendKeyboard(ctx, msg.Chat.ID, i18n.Welcome(user.Language), [][]string{{buttonLanguage}})
	case "weather", "meteo":
		b.handleWeather(ctx, user, msg.Chat.ID, args)
	case "rain", "pioggia":
		b.handleRain(ctx, user, msg.Chat.ID, args)
	case "setcity", "salvacitta":
		b.handleSetCity(ctx, user, msg.Chat.ID, args)
	case "alerts", "avvisi":
		b.handleAlerts(ctx, user, msg.Chat.ID)
	case "language", "lingua":
		b.sendLanguagePrompt(ctx, msg.Chat.ID)
	default:
		_ = b.sender.SendMarkdown(ctx, msg.Chat.ID, i18n.Welcome(user.Language))
	}
}

// handleText treats free text as a language-keyboard reply or a city name.
func (b *Bot) handleText(ctx context.Context, user types.User, msg *tgbotapi.Message) {
	text := strings.TrimSpace(msg.Text)
	if text == "" {
		return
	}

	switch text {
	case buttonEnglish:
		b.setLanguage(ctx, user, msg.Chat.ID, types.LangEnglish)
		return
	case buttonItalian:
		b.setLanguage(ctx, user, msg.Chat.ID, types.LangItalian)
		return
	case buttonLanguage:
		b.sendLanguagePrompt(ctx, msg.Chat.ID)
		return
	}

	b.handleWeather(ctx, user, msg.Chat.ID, text)
}

func (b *Bot) handleWeather(ctx context.Context, user types.User, chatID int64, city string) {
	if city == "" {
		city = user.City
	}
	if city == "" {
		_ = b.sender.SendText(ctx, chatID, i18n.AskCity(user.Language))
		return
	}

	b.sender.SendTyping(ctx, chatID)
	msg, err := b.reports.WeatherMessage(ctx, user.Language, city)
	if err != nil {
		b.replyForecastError(ctx, user, chatID, city, err)
		return
	}
	_ = b.sender.SendMarkdown(ctx, chatID, msg)
}

func (b *Bot) handleRain(ctx context.Context, user types.User, chatID int64, city string) {
	if city == "" {
		city = user.City
	}
	if city == "" {
		_ = b.sender.SendText(ctx, chatID, i18n.AskCity(user.Language))
		return
	}

	b.sender.SendTyping(ctx, chatID)
	msg, err := b.reports.RainMessage(ctx, user.Language, city)
	if err != nil {
		b.replyForecastError(ctx, user, chatID, city, err)
		return
	}
	_ = b.sender.SendMarkdown(ctx, chatID, msg)
}

func (b *Bot) handleSetCity(ctx context.Context, user types.User, chatID int64, city string) {
	if city == "" {
		_ = b.sender.SendText(ctx, chatID, i18n.AskCity(user.Language))
		return
	}
	if err := b.users.SetCity(ctx, user.ID, city); err != nil {
		b.log.Error("failed to save city", "user_id", user.ID, "error", err)
		_ = b.sender.SendText(ctx, chatID, i18n.ServiceUnavailable(user.Language))
		return
	}
	_ = b.sender.SendText(ctx, chatID, i18n.CitySaved(user.Language, city))
}

func (b *Bot) handleAlerts(ctx context.Context, user types.User, chatID int64) {
	if user.City == "" {
		_ = b.sender.SendText(ctx, chatID, i18n.NoSavedCity(user.Language))
		return
	}
	enabled := !user.RainAlerts
	if err := b.users.SetRainAlerts(ctx, user.ID, enabled); err != nil {
		b.log.Error("failed to toggle rain alerts", "user_id", user.ID, "error", err)
		_ = b.sender.SendText(ctx, chatID, i18n.ServiceUnavailable(user.Language))
		return
	}
	_ = b.sender.SendText(ctx, chatID, i18n.AlertsToggled(user.Language, enabled))
}

func (b *Bot) sendLanguagePrompt(ctx context.Context, chatID int64) {
	_ = b.sender.SendKeyboard(ctx, chatID, i18n.LanguagePrompt(), [][]string{{buttonEnglish, buttonItalian}})
}

func (b *Bot) setLanguage(ctx context.Context, user types.User, chatID int64, lang types.Language) {
	if err := b.users.SetLanguage(ctx, user.ID, lang); err != nil {
		b.log.Error("failed to set language", "user_id", user.ID, "error", err)
		_ = b.sender.SendText(ctx, chatID, i18n.ServiceUnavailable(user.Language))
		return
	}
	_ = b.sender.SendText(ctx, chatID, i18n.LanguageSet(lang))
}

func (b *Bot) replyForecastError(ctx context.Context, user types.User, chatID int64, city string, err error) {
	if types.IsCode(err, types.ErrCodeNotFoundCity) {
		_ = b.sender.SendText(ctx, chatID, i18n.CityNotFound(user.Language, city))
		return
	}
	b.log.Warn("forecast request failed", "user_id", user.ID, "city", city, "error", err)
	_ = b.sender.SendText(ctx, chatID, i18n.ServiceUnavailable(user.Language))
}
