// Package weather reads the current sky condition and outdoor
// temperature from an external provider.
package weather

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strings"
	"time"

	owm "github.com/briandowns/openweathermap"
	"github.com/icodealot/noaa"
	"github.com/rs/zerolog"
)

// Report is one observation.
type Report struct {
	Sky         string // textual sky condition, e.g. "overcast clouds"
	TempCelsius float64
}

// Provider returns the current conditions for its configured location.
type Provider interface {
	Current(ctx context.Context) (Report, error)
}

// Overcast reports whether a textual sky condition counts as cloud
// cover for the early-dusk adjustment.
func Overcast(sky string) bool {
	s := strings.ToLower(sky)
	for _, marker := range []string{"cloud", "overcast", "rain", "drizzle", "snow", "fog", "mist", "storm", "thunder"} {
		if strings.Contains(s, marker) {
			return true
		}
	}
	return false
}

// OWM reads conditions from OpenWeatherMap. Coordinates take precedence;
// when they are unset the query falls back to the city name.
type OWM struct {
	apiKey     string
	city       string
	lat, lon   float64
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewOWM creates an OpenWeatherMap provider. Either coordinates or a
// city name must be given.
func NewOWM(apiKey, city string, lat, lon float64, timeout time.Duration, logger zerolog.Logger) (*OWM, error) {
	if apiKey == "" {
		return nil, errors.New("openweathermap provider requires an API key")
	}
	if city == "" && lat == 0 && lon == 0 {
		return nil, errors.New("openweathermap provider requires coordinates or a city")
	}
	if timeout == 0 {
		timeout = 30 * time.Second
	}
	return &OWM{
		apiKey:     apiKey,
		city:       city,
		lat:        lat,
		lon:        lon,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}, nil
}

// Current implements Provider.
func (o *OWM) Current(ctx context.Context) (Report, error) {
	w, err := owm.NewCurrent("C", "EN", o.apiKey, owm.WithHttpClient(o.httpClient))
	if err != nil {
		return Report{}, fmt.Errorf("openweathermap client: %w", err)
	}

	if o.lat != 0 || o.lon != 0 {
		err = w.CurrentByCoordinates(&owm.Coordinates{Latitude: o.lat, Longitude: o.lon})
	} else {
		err = w.CurrentByName(o.city)
	}
	if err != nil {
		return Report{}, fmt.Errorf("openweathermap current conditions: %w", err)
	}

	sky := ""
	if len(w.Weather) > 0 {
		sky = w.Weather[0].Description
	}

	o.logger.Debug().
		Str("sky", sky).
		Float64("temp_c", w.Main.Temp).
		Int("clouds_pct", w.Clouds.All).
		Msg("OpenWeatherMap conditions")

	return Report{Sky: sky, TempCelsius: w.Main.Temp}, nil
}

// NOAA reads conditions from the US National Weather Service forecast
// endpoint. No API key required, US coverage only.
type NOAA struct {
	lat, lon float64
	logger   zerolog.Logger
}

// NewNOAA creates a NOAA provider for the given coordinates.
func NewNOAA(lat, lon float64, logger zerolog.Logger) *NOAA {
	return &NOAA{lat: lat, lon: lon, logger: logger}
}

// Current implements Provider using the first forecast period.
func (n *NOAA) Current(ctx context.Context) (Report, error) {
	forecast, err := noaa.Forecast(
		fmt.Sprintf("%.4f", n.lat),
		fmt.Sprintf("%.4f", n.lon),
	)
	if err != nil {
		return Report{}, fmt.Errorf("noaa forecast: %w", err)
	}
	if len(forecast.Periods) == 0 {
		return Report{}, errors.New("noaa forecast: no periods returned")
	}

	period := forecast.Periods[0]
	temp := period.Temperature
	if strings.EqualFold(period.TemperatureUnit, "F") {
		temp = math.Round((temp - 32) * 5 / 9)
	}

	n.logger.Debug().
		Str("sky", period.Summary).
		Float64("temp_c", temp).
		Msg("NOAA conditions")

	return Report{Sky: period.Summary, TempCelsius: temp}, nil
}
