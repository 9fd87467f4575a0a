// Package report builds the user-facing weather and rain forecast messages
// and runs the daily morning broadcast.
package report

import (
	"context"
	"time"

	"rainwatch/internal/i18n"
	"rainwatch/internal/rain"
	"rainwatch/internal/types"
	"rainwatch/internal/weather"
)

// ForecastSource resolves cities and fetches forecasts.
type ForecastSource interface {
	ResolveCity(ctx context.Context, name string) (weather.Location, error)
	FetchForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error)
}

// Service renders localized weather reports and rain outlooks for a city.
//
// The two message types use different significance gates: the 24h warning
// block of the weather report only flags rain worth a notification, while
// the 48h outlook reports any measurable rain so "is it worth planning
// around" questions get a complete answer.
type Service struct {
	weather  ForecastSource
	alerting rain.Classifier
	outlook  rain.Classifier
	clock    types.Clock
}

// NewService creates a report Service. alerting is the same classifier the
// alert scan uses; the outlook classifier is fixed at 0.1mm with no
// probability gate.
func NewService(forecasts ForecastSource, alerting rain.Classifier, clock types.Clock) *Service {
	return &Service{
		weather:  forecasts,
		alerting: alerting,
		outlook:  rain.NewClassifier(0.1, 0),
		clock:    clock,
	}
}

// WeatherMessage renders the complete weather report for a city: 24h rain
// warning, current conditions, and the multi-day outlook.
func (s *Service) WeatherMessage(ctx context.Context, lang types.Language, city string) (string, error) {
	loc, forecast, err := s.fetch(ctx, city)
	if err != nil {
		return "", err
	}

	now := s.clock.Now().In(forecast.Timezone)
	candidates := rain.ExtractCandidates(forecast.Hourly, now, 24*time.Hour)
	events := s.alerting.ClassifyAll(candidates)

	return i18n.WeatherReport(lang, loc.Name, loc.Region, forecast, events), nil
}

// RainMessage renders the detailed 48-hour rain outlook for a city.
func (s *Service) RainMessage(ctx context.Context, lang types.Language, city string) (string, error) {
	loc, forecast, err := s.fetch(ctx, city)
	if err != nil {
		return "", err
	}

	now := s.clock.Now().In(forecast.Timezone)
	candidates := rain.ExtractCandidates(forecast.Hourly, now, 48*time.Hour)
	events := s.outlook.ClassifyAll(candidates)

	return i18n.RainOutlook(lang, loc.Name, loc.Region, events, now), nil
}

func (s *Service) fetch(ctx context.Context, city string) (weather.Location, *weather.Forecast, error) {
	loc, err := s.weather.ResolveCity(ctx, city)
	if err != nil {
		return weather.Location{}, nil, err
	}
	forecast, err := s.weather.FetchForecast(ctx, loc.Latitude, loc.Longitude)
	if err != nil {
		return weather.Location{}, nil, err
	}
	return loc, forecast, nil
}
