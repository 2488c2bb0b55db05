// Package controller wires the bridge, the solar calculator, the
// weather provider and the lighting policy into one scheduled run.
package controller

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/rs/zerolog"

	"github.com/huetils/sundial/internal/bridge"
	"github.com/huetils/sundial/internal/config"
	"github.com/huetils/sundial/internal/daylight"
	"github.com/huetils/sundial/internal/policy"
	"github.com/huetils/sundial/internal/sun"
	"github.com/huetils/sundial/internal/weather"
)

// Runner performs one invocation of the lighting automation.
type Runner struct {
	cfg      *config.Config
	client   bridge.Client
	actuator *bridge.Actuator
	resolver *sun.Resolver
	weather  weather.Provider // nil when no provider is configured
	logger   zerolog.Logger
}

// New assembles a runner from its collaborators.
func New(cfg *config.Config, client bridge.Client, actuator *bridge.Actuator, resolver *sun.Resolver, provider weather.Provider, logger zerolog.Logger) *Runner {
	return &Runner{
		cfg:      cfg,
		client:   client,
		actuator: actuator,
		resolver: resolver,
		weather:  provider,
		logger:   logger,
	}
}

// Run executes the full control flow: recency gate, solar events,
// optional cloud adjustment, policy decision, actuation. now must be
// UTC; errors abort the run, the next scheduled invocation retries.
func (r *Runner) Run(ctx context.Context, now time.Time) error {
	sensors, err := r.client.Sensors(ctx)
	if err != nil {
		return err
	}

	readings := toReadings(sensors)
	if policy.PressedRecently(now, readings, r.cfg.Sensors, r.cfg.Policy.RecencyThreshold.Duration()) {
		r.logger.Info().Msg("Sensor pressed not long ago, leaving the lights alone")
		return nil
	}

	ev, tz, err := r.solarEvents(ctx, now)
	if err != nil {
		return err
	}

	if r.weather != nil {
		report, err := r.weather.Current(ctx)
		if err != nil {
			return err
		}
		if weather.Overcast(report.Sky) {
			r.logger.Info().Str("sky", report.Sky).Msg("Overcast sky, pulling dusk earlier")
			ev = ev.CloudAdjusted(r.cfg.Policy.CloudOffset.Duration())
		}
	}

	controlled, err := r.controlledLights(ctx)
	if err != nil {
		return err
	}

	plan := policy.Decide(now, tz, ev, controlled, r.policyConfig())
	r.logger.Info().
		Float64("illumination", plan.Illumination).
		Stringer("period", plan.Period).
		Uint16("color_temp", plan.ColorTemp).
		Str("reason", plan.Reason).
		Int("targets", len(plan.Targets)).
		Msg("Lighting plan computed")

	return r.actuator.Apply(ctx, plan)
}

// RunThermometer sets one light's hue to reflect the outdoor
// temperature, with brightness following the daylight.
func (r *Runner) RunThermometer(ctx context.Context, now time.Time, lightName string) error {
	if r.weather == nil {
		return errors.New("thermometer mode requires a weather provider")
	}

	report, err := r.weather.Current(ctx)
	if err != nil {
		return err
	}
	color := policy.DegreeToColor(report.TempCelsius)

	lights, err := r.client.Lights(ctx)
	if err != nil {
		return err
	}
	var light *bridge.Light
	for i := range lights {
		if lights[i].Name == lightName {
			light = &lights[i]
			break
		}
	}
	if light == nil {
		r.logger.Warn().Str("light", lightName).Msg("Light not found on bridge, nothing to do")
		return nil
	}

	ev, _, err := r.solarEvents(ctx, now)
	if err != nil {
		return err
	}
	illum := daylight.Illumination(now, ev)
	bri := uint8(math.Round(daylight.Interpolate(illum, 0, 255)))

	r.logger.Info().
		Float64("temp_c", report.TempCelsius).
		Uint16("hue", color).
		Uint8("bri", bri).
		Msg("Thermometer target computed")

	if !light.On {
		if err := r.client.SetLight(ctx, light.ID, bridge.Change{On: true}); err != nil {
			return err
		}
	}
	sat := uint8(255)
	return r.client.SetLight(ctx, light.ID, bridge.Change{
		On:         true,
		Hue:        &color,
		Sat:        &sat,
		Brightness: &bri,
	})
}

// solarEvents resolves the location and computes the day's events from
// the run's UTC reference date.
func (r *Runner) solarEvents(ctx context.Context, now time.Time) (sun.Events, *time.Location, error) {
	loc, err := r.resolver.Resolve(ctx, r.cfg.Geo.City)
	if err != nil {
		return sun.Events{}, nil, fmt.Errorf("failed to resolve location: %w", err)
	}

	tz, err := time.LoadLocation(r.cfg.Geo.Timezone)
	if err != nil {
		r.logger.Warn().Err(err).Str("timezone", r.cfg.Geo.Timezone).Msg("Failed to load timezone, using UTC")
		tz = time.UTC
	}

	ev := sun.EventsForDate(now.UTC(), loc.Latitude, loc.Longitude)
	if !ev.Valid() {
		r.logger.Warn().Msg("Solar events out of order, likely a polar location")
	}

	r.logger.Info().
		Str("location", loc.Name).
		Time("dawn", ev.Dawn).
		Time("sunrise", ev.Sunrise).
		Time("sunset", ev.Sunset).
		Time("dusk", ev.Dusk).
		Time("now", now).
		Msg("Solar events for today")

	return ev, tz, nil
}

// controlledLights reads the bridge lights and keeps those named in the
// configuration. Names with no matching light are skipped: the policy
// operates only on what exists.
func (r *Runner) controlledLights(ctx context.Context) ([]policy.LightState, error) {
	lights, err := r.client.Lights(ctx)
	if err != nil {
		return nil, err
	}

	byName := make(map[string]bridge.Light, len(lights))
	for _, l := range lights {
		byName[l.Name] = l
	}

	controlled := make([]policy.LightState, 0, len(r.cfg.Lights))
	for _, name := range r.cfg.Lights {
		l, ok := byName[name]
		if !ok {
			r.logger.Warn().Str("light", name).Msg("Light not found on bridge, skipping")
			continue
		}
		controlled = append(controlled, policy.LightState{
			ID:         l.ID,
			Name:       l.Name,
			On:         l.On,
			Brightness: l.Brightness,
			ColorTemp:  l.ColorTemp,
		})
	}
	return controlled, nil
}

func (r *Runner) policyConfig() policy.Config {
	p := r.cfg.Policy
	return policy.Config{
		RecencyThreshold: p.RecencyThreshold.Duration(),
		CurfewStart:      p.CurfewStart,
		CurfewEnd:        p.CurfewEnd,
		RunInterval:      p.RunInterval.Duration(),
		OnlySwitchOff:    p.OnlySwitchOff,
		MinMireds:        uint16(p.MinMireds),
		MaxMireds:        uint16(p.MaxMireds),
		CloudOffset:      p.CloudOffset.Duration(),
	}
}

func toReadings(sensors []bridge.Sensor) []policy.SensorReading {
	readings := make([]policy.SensorReading, 0, len(sensors))
	for _, s := range sensors {
		if s.LastPressed.IsZero() {
			continue
		}
		readings = append(readings, policy.SensorReading{Name: s.Name, LastPressed: s.LastPressed})
	}
	return readings
}
