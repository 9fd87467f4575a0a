// Package bot implements the Telegram surface: message delivery, command
// handling, and the long-polling update loop.
package bot

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"rainwatch/internal/types"
)

// Sender delivers messages to Telegram chats. Handlers depend on this
// interface so tests can capture outgoing traffic.
type Sender interface {
	SendText(ctx context.Context, chatID int64, text string) error
	SendMarkdown(ctx context.Context, chatID int64, text string) error
	SendKeyboard(ctx context.Context, chatID int64, text string, buttons [][]string) error
	SendTyping(ctx context.Context, chatID int64)
}

// TelegramSender implements Sender on the Bot API.
type TelegramSender struct {
	api *tgbotapi.BotAPI
}

// NewTelegramSender creates a TelegramSender.
func NewTelegramSender(api *tgbotapi.BotAPI) *TelegramSender {
	return &TelegramSender{api: api}
}

// SendText sends a plain text message.
func (s *TelegramSender) SendText(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	return s.send(msg)
}

// SendMarkdown sends a Markdown-formatted message.
func (s *TelegramSender) SendMarkdown(_ context.Context, chatID int64, text string) error {
	msg := tgbotapi.NewMessage(chatID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	return s.send(msg)
}

// SendKeyboard sends a message with a one-time reply keyboard.
func (s *TelegramSender) SendKeyboard(_ context.Context, chatID int64, text string, buttons [][]string) error {
	rows := make([][]tgbotapi.KeyboardButton, 0, len(buttons))
	for _, row := range buttons {
		kb := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, label := range row {
			kb = append(kb, tgbotapi.NewKeyboardButton(label))
		}
		rows = append(rows, kb)
	}
	keyboard := tgbotapi.NewOneTimeReplyKeyboard(rows...)
	keyboard.ResizeKeyboard = true

	msg := tgbotapi.NewMessage(chatID, text)
	msg.ReplyMarkup = keyboard
	return s.send(msg)
}

// SendTyping shows the "typing..." chat action. Best effort.
func (s *TelegramSender) SendTyping(_ context.Context, chatID int64) {
	action := tgbotapi.NewChatAction(chatID, tgbotapi.ChatTyping)
	_, _ = s.api.Request(action)
}

func (s *TelegramSender) send(msg tgbotapi.MessageConfig) error {
	if _, err := s.api.Send(msg); err != nil {
		return types.NewAppError(types.ErrCodeUpstreamTelegram, "failed to send telegram message", err)
	}
	return nil
}
