package bot

import (
	"context"
	"testing"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainwatch/internal/types"
)

type capturedMessage struct {
	chatID int64
	text   string
	kind   string // "text", "markdown", "keyboard"
}

type captureSender struct {
	messages []capturedMessage
	typing   int
}

func (s *captureSender) SendText(_ context.Context, chatID int64, text string) error {
	s.messages = append(s.messages, capturedMessage{chatID, text, "text"})
	return nil
}

func (s *captureSender) SendMarkdown(_ context.Context, chatID int64, text string) error {
	s.messages = append(s.messages, capturedMessage{chatID, text, "markdown"})
	return nil
}

func (s *captureSender) SendKeyboard(_ context.Context, chatID int64, text string, _ [][]string) error {
	s.messages = append(s.messages, capturedMessage{chatID, text, "keyboard"})
	return nil
}

func (s *captureSender) SendTyping(context.Context, int64) { s.typing++ }

func (s *captureSender) last(t *testing.T) capturedMessage {
	t.Helper()
	require.NotEmpty(t, s.messages)
	return s.messages[len(s.messages)-1]
}

type memUserStore struct {
	users map[int64]*types.User
}

func newMemUserStore(users ...types.User) *memUserStore {
	m := &memUserStore{users: map[int64]*types.User{}}
	for i := range users {
		m.users[users[i].ID] = &users[i]
	}
	return m
}

func (m *memUserStore) Get(_ context.Context, userID int64) (*types.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, types.NewAppError(types.ErrCodeNotFoundUser, "user not found", nil)
	}
	copied := *u
	return &copied, nil
}

func (m *memUserStore) SetLanguage(_ context.Context, userID int64, lang types.Language) error {
	m.upsert(userID).Language = lang
	return nil
}

func (m *memUserStore) SetCity(_ context.Context, userID int64, city string) error {
	m.upsert(userID).City = city
	return nil
}

func (m *memUserStore) SetRainAlerts(_ context.Context, userID int64, enabled bool) error {
	m.upsert(userID).RainAlerts = enabled
	return nil
}

func (m *memUserStore) upsert(userID int64) *types.User {
	if u, ok := m.users[userID]; ok {
		return u
	}
	u := &types.User{ID: userID, Language: types.LangEnglish}
	m.users[userID] = u
	return u
}

type stubReporter struct {
	weatherMsg string
	rainMsg    string
	err        error
	lastLang   types.Language
	lastCity   string
}

func (r *stubReporter) WeatherMessage(_ context.Context, lang types.Language, city string) (string, error) {
	r.lastLang, r.lastCity = lang, city
	return r.weatherMsg, r.err
}

func (r *stubReporter) RainMessage(_ context.Context, lang types.Language, city string) (string, error) {
	r.lastLang, r.lastCity = lang, city
	return r.rainMsg, r.err
}

func newTestBot(store *memUserStore, reporter *stubReporter) (*Bot, *captureSender) {
	sender := &captureSender{}
	return New(sender, store, reporter, types.NewLogger(nil)), sender
}

func commandUpdate(userID int64, text string) tgbotapi.Update {
	cmdLen := len(text)
	for i, r := range text {
		if r == ' ' {
			cmdLen = i
			break
		}
	}
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
		Entities: []tgbotapi.MessageEntity{{
			Type: "bot_command", Offset: 0, Length: cmdLen,
		}},
	}}
}

func textUpdate(userID int64, text string) tgbotapi.Update {
	return tgbotapi.Update{Message: &tgbotapi.Message{
		From: &tgbotapi.User{ID: userID},
		Chat: &tgbotapi.Chat{ID: userID},
		Text: text,
	}}
}

func TestStart_SendsWelcomeInUserLanguage(t *testing.T) {
	store := newMemUserStore(types.User{ID: 7, Language: types.LangItalian})
	b, sender := newTestBot(store, &stubReporter{})

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/start"))

	msg := sender.last(t)
	assert.Equal(t, "keyboard", msg.kind)
	assert.Contains(t, msg.text, "Assistente Meteo")
}

func TestStart_UnknownUserDefaultsToEnglish(t *testing.T) {
	b, sender := newTestBot(newMemUserStore(), &stubReporter{})

	b.ProcessUpdate(context.Background(), commandUpdate(42, "/start"))

	assert.Contains(t, sender.last(t).text, "Weather Assistant")
}

func TestWeatherCommand_WithArgument(t *testing.T) {
	reporter := &stubReporter{weatherMsg: "forecast for Milano"}
	store := newMemUserStore(types.User{ID: 7, Language: types.LangItalian})
	b, sender := newTestBot(store, reporter)

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/weather Milano"))

	assert.Equal(t, "Milano", reporter.lastCity)
	assert.Equal(t, types.LangItalian, reporter.lastLang)
	assert.Equal(t, 1, sender.typing)
	msg := sender.last(t)
	assert.Equal(t, "markdown", msg.kind)
	assert.Equal(t, "forecast for Milano", msg.text)
}

func TestWeatherCommand_FallsBackToSavedCity(t *testing.T) {
	reporter := &stubReporter{weatherMsg: "forecast"}
	store := newMemUserStore(types.User{ID: 7, Language: types.LangEnglish, City: "London"})
	b, _ := newTestBot(store, reporter)

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/weather"))

	assert.Equal(t, "London", reporter.lastCity)
}

func TestWeatherCommand_NoCityAtAll(t *testing.T) {
	b, sender := newTestBot(newMemUserStore(), &stubReporter{})

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/weather"))

	assert.Contains(t, sender.last(t).text, "Please specify a city")
}

func TestWeatherCommand_CityNotFound(t *testing.T) {
	reporter := &stubReporter{err: types.NewAppError(types.ErrCodeNotFoundCity, "no match", nil)}
	b, sender := newTestBot(newMemUserStore(), reporter)

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/weather Atlantis"))

	assert.Contains(t, sender.last(t).text, "couldn't find weather data for 'Atlantis'")
}

func TestFreeTextIsTreatedAsCity(t *testing.T) {
	reporter := &stubReporter{weatherMsg: "forecast"}
	b, sender := newTestBot(newMemUserStore(), reporter)

	b.ProcessUpdate(context.Background(), textUpdate(7, "Napoli"))

	assert.Equal(t, "Napoli", reporter.lastCity)
	assert.Equal(t, "markdown", sender.last(t).kind)
}

func TestRainCommand(t *testing.T) {
	reporter := &stubReporter{rainMsg: "rain outlook"}
	store := newMemUserStore(types.User{ID: 7, Language: types.LangItalian, City: "Milano"})
	b, sender := newTestBot(store, reporter)

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/rain"))

	assert.Equal(t, "Milano", reporter.lastCity)
	assert.Equal(t, "rain outlook", sender.last(t).text)
}

func TestSetCity(t *testing.T) {
	store := newMemUserStore()
	b, sender := newTestBot(store, &stubReporter{})

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/setcity Torino"))

	assert.Equal(t, "Torino", store.users[7].City)
	assert.Contains(t, sender.last(t).text, "City saved: Torino")
}

func TestAlerts_RequiresSavedCity(t *testing.T) {
	b, sender := newTestBot(newMemUserStore(), &stubReporter{})

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/alerts"))

	assert.Contains(t, sender.last(t).text, "First save your city")
}

func TestAlerts_TogglesOnAndOff(t *testing.T) {
	store := newMemUserStore(types.User{ID: 7, Language: types.LangItalian, City: "Milano"})
	b, sender := newTestBot(store, &stubReporter{})

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/alerts"))
	assert.True(t, store.users[7].RainAlerts)
	assert.Contains(t, sender.last(t).text, "Avvisi pioggia attivati")

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/alerts"))
	assert.False(t, store.users[7].RainAlerts)
	assert.Contains(t, sender.last(t).text, "Avvisi pioggia disattivati")
}

func TestLanguageFlow(t *testing.T) {
	store := newMemUserStore()
	b, sender := newTestBot(store, &stubReporter{})

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/language"))
	assert.Equal(t, "keyboard", sender.last(t).kind)
	assert.Contains(t, sender.last(t).text, "Scegli la tua lingua")

	b.ProcessUpdate(context.Background(), textUpdate(7, buttonItalian))
	assert.Equal(t, types.LangItalian, store.users[7].Language)
	assert.Contains(t, sender.last(t).text, "Lingua impostata su Italiano")
}

func TestItalianCommandAliases(t *testing.T) {
	reporter := &stubReporter{weatherMsg: "previsioni"}
	store := newMemUserStore(types.User{ID: 7, Language: types.LangItalian})
	b, sender := newTestBot(store, reporter)

	b.ProcessUpdate(context.Background(), commandUpdate(7, "/meteo Roma"))

	assert.Equal(t, "Roma", reporter.lastCity)
	assert.Equal(t, "previsioni", sender.last(t).text)
}

func TestNonMessageUpdateIsIgnored(t *testing.T) {
	b, sender := newTestBot(newMemUserStore(), &stubReporter{})

	b.ProcessUpdate(context.Background(), tgbotapi.Update{})

	assert.Empty(t, sender.messages)
}
