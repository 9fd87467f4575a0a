// Package weather implements the Open-Meteo client used for geocoding city
// names and fetching hourly precipitation forecasts. Requests are routed
// through the external.BaseClient for retries and circuit breaking.
package weather

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"time"

	"rainwatch/internal/external"
	"rainwatch/internal/types"
)

// hourlyTimeLayout is the timestamp format Open-Meteo uses when a timezone
// is requested ("timezone=auto"): local wall-clock time without offset.
const hourlyTimeLayout = "2006-01-02T15:04"

// dailyDateLayout is the date format of the daily forecast block.
const dailyDateLayout = "2006-01-02"

// Location is a resolved city: coordinates plus the administrative region
// used in report headers.
type Location struct {
	Name      string
	Latitude  float64
	Longitude float64
	Region    string
}

// CurrentConditions holds the instantaneous weather block of a forecast.
type CurrentConditions struct {
	Time         time.Time
	TemperatureC float64
	ApparentC    float64
	WindKmh      float64
	WeatherCode  int
}

// DailyForecast is one day of the multi-day outlook.
type DailyForecast struct {
	Date        time.Time
	WeatherCode int
	MinC        float64
	MaxC        float64
}

// Forecast is a complete forecast response localized to the location's
// timezone. Hourly carries the precipitation series the rain core consumes;
// Current and Daily feed the report formatter.
type Forecast struct {
	Timezone *time.Location
	Hourly   []types.HourlyForecastPoint
	Current  CurrentConditions
	Daily    []DailyForecast
}

// Config holds the endpoints and query defaults for the client.
type Config struct {
	GeocodingBaseURL string
	ForecastBaseURL  string
	ForecastDays     int
}

// Client calls the Open-Meteo geocoding and forecast APIs.
type Client struct {
	http *external.BaseClient
	cfg  Config
}

// NewClient creates a Client. ForecastDays defaults to 5 when unset.
func NewClient(httpClient *external.BaseClient, cfg Config) *Client {
	if cfg.ForecastDays <= 0 {
		cfg.ForecastDays = 5
	}
	return &Client{http: httpClient, cfg: cfg}
}

// geocodingResponse mirrors the Open-Meteo geocoding search payload.
type geocodingResponse struct {
	Results []struct {
		Name      string  `json:"name"`
		Latitude  float64 `json:"latitude"`
		Longitude float64 `json:"longitude"`
		Admin1    string  `json:"admin1"`
	} `json:"results"`
}

// ResolveCity converts a city name to coordinates. The search is performed
// with Italian language preference, matching the bot's primary audience;
// Open-Meteo still resolves names in any language.
func (c *Client) ResolveCity(ctx context.Context, name string) (Location, error) {
	q := url.Values{}
	q.Set("name", name)
	q.Set("count", "1")
	q.Set("language", "it")

	var resp geocodingResponse
	if err := c.http.GetJSON(ctx, c.cfg.GeocodingBaseURL+"?"+q.Encode(), &resp); err != nil {
		return Location{}, types.NewAppError(types.ErrCodeUpstreamGeocoding, "geocoding request failed", err)
	}
	if len(resp.Results) == 0 {
		return Location{}, types.NewAppError(types.ErrCodeNotFoundCity, fmt.Sprintf("no match for city %q", name), nil)
	}

	r := resp.Results[0]
	return Location{
		Name:      r.Name,
		Latitude:  r.Latitude,
		Longitude: r.Longitude,
		Region:    r.Admin1,
	}, nil
}

// forecastResponse mirrors the subset of the Open-Meteo forecast payload
// the bot consumes.
type forecastResponse struct {
	Timezone string `json:"timezone"`
	Current  struct {
		Time                string  `json:"time"`
		Temperature2M       float64 `json:"temperature_2m"`
		ApparentTemperature float64 `json:"apparent_temperature"`
		WindSpeed10M        float64 `json:"wind_speed_10m"`
		WeatherCode         int     `json:"weather_code"`
	} `json:"current"`
	Hourly struct {
		Time                     []string  `json:"time"`
		Precipitation            []float64 `json:"precipitation"`
		PrecipitationProbability []float64 `json:"precipitation_probability"`
		WeatherCode              []int     `json:"weather_code"`
	} `json:"hourly"`
	Daily struct {
		Time             []string  `json:"time"`
		WeatherCode      []int     `json:"weather_code"`
		Temperature2MMax []float64 `json:"temperature_2m_max"`
		Temperature2MMin []float64 `json:"temperature_2m_min"`
	} `json:"daily"`
}

// FetchForecast retrieves the hourly precipitation series plus current and
// daily blocks for a coordinate pair. All timestamps are localized to the
// timezone Open-Meteo reports for the location, so event times and dedup
// buckets match the user's wall clock.
func (c *Client) FetchForecast(ctx context.Context, lat, lon float64) (*Forecast, error) {
	q := url.Values{}
	q.Set("latitude", formatCoord(lat))
	q.Set("longitude", formatCoord(lon))
	q.Set("current", "temperature_2m,apparent_temperature,wind_speed_10m,weather_code")
	q.Set("hourly", "precipitation,precipitation_probability,weather_code")
	q.Set("daily", "weather_code,temperature_2m_max,temperature_2m_min")
	q.Set("timezone", "auto")
	q.Set("forecast_days", strconv.Itoa(c.cfg.ForecastDays))

	var resp forecastResponse
	if err := c.http.GetJSON(ctx, c.cfg.ForecastBaseURL+"?"+q.Encode(), &resp); err != nil {
		return nil, types.NewAppError(types.ErrCodeUpstreamForecast, "forecast request failed", err)
	}

	loc, err := time.LoadLocation(resp.Timezone)
	if err != nil {
		// An unknown timezone name should not lose the forecast.
		loc = time.UTC
	}

	f := &Forecast{Timezone: loc}

	for i, ts := range resp.Hourly.Time {
		t, parseErr := time.ParseInLocation(hourlyTimeLayout, ts, loc)
		if parseErr != nil {
			continue
		}
		p := types.HourlyForecastPoint{Time: t}
		if i < len(resp.Hourly.Precipitation) {
			p.PrecipitationMM = resp.Hourly.Precipitation[i]
		}
		if i < len(resp.Hourly.PrecipitationProbability) {
			p.ProbabilityPct = resp.Hourly.PrecipitationProbability[i]
		}
		if i < len(resp.Hourly.WeatherCode) {
			p.WeatherCode = resp.Hourly.WeatherCode[i]
		}
		f.Hourly = append(f.Hourly, p)
	}

	if t, parseErr := time.ParseInLocation(hourlyTimeLayout, resp.Current.Time, loc); parseErr == nil {
		f.Current.Time = t
	}
	f.Current.TemperatureC = resp.Current.Temperature2M
	f.Current.ApparentC = resp.Current.ApparentTemperature
	f.Current.WindKmh = resp.Current.WindSpeed10M
	f.Current.WeatherCode = resp.Current.WeatherCode

	for i, ds := range resp.Daily.Time {
		d, parseErr := time.ParseInLocation(dailyDateLayout, ds, loc)
		if parseErr != nil {
			continue
		}
		day := DailyForecast{Date: d}
		if i < len(resp.Daily.WeatherCode) {
			day.WeatherCode = resp.Daily.WeatherCode[i]
		}
		if i < len(resp.Daily.Temperature2MMax) {
			day.MaxC = resp.Daily.Temperature2MMax[i]
		}
		if i < len(resp.Daily.Temperature2MMin) {
			day.MinC = resp.Daily.Temperature2MMin[i]
		}
		f.Daily = append(f.Daily, day)
	}

	return f, nil
}

// formatCoord renders a coordinate with enough precision for Open-Meteo's
// grid without leaking float noise into URLs.
func formatCoord(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}
