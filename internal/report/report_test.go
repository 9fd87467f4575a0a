package report

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rainwatch/internal/rain"
	"rainwatch/internal/types"
	"rainwatch/internal/weather"
)

type stubClock struct{ t time.Time }

func (c stubClock) Now() time.Time { return c.t }

type stubWeather struct {
	forecast *weather.Forecast
	failCity string
}

func (s *stubWeather) ResolveCity(_ context.Context, name string) (weather.Location, error) {
	if name == s.failCity {
		return weather.Location{}, types.NewAppError(types.ErrCodeNotFoundCity, "no match", nil)
	}
	return weather.Location{Name: name, Region: "Lombardia", Latitude: 45.46, Longitude: 9.19}, nil
}

func (s *stubWeather) FetchForecast(context.Context, float64, float64) (*weather.Forecast, error) {
	return s.forecast, nil
}

type recordingSender struct {
	mu       sync.Mutex
	messages map[int64][]string
	failFor  int64
}

func newRecordingSender() *recordingSender {
	return &recordingSender{messages: map[int64][]string{}}
}

func (s *recordingSender) SendMarkdown(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if chatID == s.failFor {
		return types.NewAppError(types.ErrCodeUpstreamTelegram, "blocked by user", nil)
	}
	s.messages[chatID] = append(s.messages[chatID], text)
	return nil
}

type stubLister struct {
	users   []types.User
	listErr error
}

func (s *stubLister) ListWithCity(context.Context) ([]types.User, error) {
	return s.users, s.listErr
}

func newTestService(forecast *weather.Forecast, now time.Time) (*Service, *stubWeather) {
	sw := &stubWeather{forecast: forecast}
	return NewService(sw, rain.NewClassifier(0.5, 40), stubClock{t: now}), sw
}

func TestWeatherMessage_IncludesRainWarning(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	forecast := &weather.Forecast{
		Timezone: time.UTC,
		Current:  weather.CurrentConditions{Time: now, TemperatureC: 12.0, WeatherCode: 61},
		Hourly: []types.HourlyForecastPoint{
			{Time: now.Add(2 * time.Hour), PrecipitationMM: 3.0, ProbabilityPct: 70},
		},
	}
	svc, _ := newTestService(forecast, now)

	msg, err := svc.WeatherMessage(context.Background(), types.LangItalian, "Milano")
	require.NoError(t, err)
	assert.Contains(t, msg, "Meteo per Milano")
	assert.Contains(t, msg, "AVVISO PIOGGIA")
}

func TestWeatherMessage_InsignificantRainSuppressed(t *testing.T) {
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	forecast := &weather.Forecast{
		Timezone: time.UTC,
		Hourly: []types.HourlyForecastPoint{
			{Time: now.Add(2 * time.Hour), PrecipitationMM: 0.2, ProbabilityPct: 30},
		},
	}
	svc, _ := newTestService(forecast, now)

	msg, err := svc.WeatherMessage(context.Background(), types.LangEnglish, "Milan")
	require.NoError(t, err)
	assert.Contains(t, msg, "No significant rain expected")
}

func TestRainMessage_UsesLooserGate(t *testing.T) {
	// 0.3mm/10% fails the alert gate but shows up in the 48h outlook.
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	forecast := &weather.Forecast{
		Timezone: time.UTC,
		Hourly: []types.HourlyForecastPoint{
			{Time: now.Add(2 * time.Hour), PrecipitationMM: 0.3, ProbabilityPct: 10},
		},
	}
	svc, _ := newTestService(forecast, now)

	msg, err := svc.RainMessage(context.Background(), types.LangItalian, "Milano")
	require.NoError(t, err)
	assert.Contains(t, msg, "**Oggi (10/03)**")
	assert.NotContains(t, msg, "Nessuna pioggia significativa")
}

func TestWeatherMessage_PropagatesCityNotFound(t *testing.T) {
	svc, sw := newTestService(&weather.Forecast{Timezone: time.UTC}, time.Now())
	sw.failCity = "Atlantide"

	_, err := svc.WeatherMessage(context.Background(), types.LangItalian, "Atlantide")
	require.Error(t, err)
	assert.True(t, types.IsCode(err, types.ErrCodeNotFoundCity))
}

func TestBroadcaster_DeliversToAllUsers(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&weather.Forecast{Timezone: time.UTC}, now)
	sender := newRecordingSender()
	b := NewBroadcaster(svc, &stubLister{users: []types.User{
		{ID: 1, Language: types.LangItalian, City: "Milano"},
		{ID: 2, Language: types.LangEnglish, City: "London"},
	}}, sender, types.NewLogger(nil))
	b.sendDelay = 0

	summary, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, summary.Delivered)
	assert.Equal(t, 0, summary.Failed)

	require.Len(t, sender.messages[1], 1)
	assert.Contains(t, sender.messages[1][0], "Buongiorno")
	assert.Contains(t, sender.messages[2][0], "Good morning")
}

func TestBroadcaster_FailedUserDoesNotStopOthers(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, sw := newTestService(&weather.Forecast{Timezone: time.UTC}, now)
	sw.failCity = "Atlantide"
	sender := newRecordingSender()
	b := NewBroadcaster(svc, &stubLister{users: []types.User{
		{ID: 1, Language: types.LangItalian, City: "Atlantide"},
		{ID: 2, Language: types.LangEnglish, City: "London"},
	}}, sender, types.NewLogger(nil))
	b.sendDelay = 0

	summary, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Delivered)
	assert.Equal(t, 1, summary.Failed)

	// The failed user gets a notice instead of silence.
	require.Len(t, sender.messages[1], 1)
	assert.Contains(t, sender.messages[1][0], "Non sono riuscito a recuperare")
}

func TestBroadcaster_SendFailureIsCounted(t *testing.T) {
	now := time.Date(2026, 3, 10, 8, 0, 0, 0, time.UTC)
	svc, _ := newTestService(&weather.Forecast{Timezone: time.UTC}, now)
	sender := newRecordingSender()
	sender.failFor = 1
	b := NewBroadcaster(svc, &stubLister{users: []types.User{
		{ID: 1, Language: types.LangItalian, City: "Milano"},
		{ID: 2, Language: types.LangEnglish, City: "London"},
	}}, sender, types.NewLogger(nil))
	b.sendDelay = 0

	summary, err := b.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, summary.Delivered)
	assert.Equal(t, 1, summary.Failed)
}
