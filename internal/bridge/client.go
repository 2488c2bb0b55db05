// Package bridge adapts the Hue bridge API to the narrow capability
// surface the controller needs: list lights, sensors and groups, and
// write light state with a transition time.
package bridge

import (
	"context"
	"fmt"
	"time"

	"github.com/amimof/huego"
	"github.com/rs/zerolog"
)

// Light is the observed state of one bridge light.
type Light struct {
	ID         int
	Name       string
	On         bool
	Brightness uint8
	ColorTemp  uint16
}

// Sensor is a read-only snapshot of one bridge sensor. LastPressed is
// zero when the sensor has never reported.
type Sensor struct {
	Name        string
	LastPressed time.Time
}

// Group is a named set of light IDs.
type Group struct {
	Name   string
	Lights []string
}

// Change is one state write to a light. On is always sent (the v1 API
// includes it in every body); nil attribute pointers are omitted.
type Change struct {
	On         bool
	Brightness *uint8
	ColorTemp  *uint16
	Hue        *uint16
	Sat        *uint8
	Transition time.Duration
}

// Client is the bridge capability consumed by the controller.
type Client interface {
	Lights(ctx context.Context) ([]Light, error)
	Sensors(ctx context.Context) ([]Sensor, error)
	Groups(ctx context.Context) ([]Group, error)
	SetLight(ctx context.Context, id int, change Change) error
}

// HueClient implements Client on top of a Hue bridge's v1 API.
type HueClient struct {
	bridge *huego.Bridge
	logger zerolog.Logger
}

// NewHueClient creates a client for the bridge at the given address,
// authenticated with the given API user token.
func NewHueClient(address, token string, logger zerolog.Logger) *HueClient {
	return &HueClient{
		bridge: huego.New(address, token),
		logger: logger,
	}
}

// Lights returns all lights known to the bridge.
func (c *HueClient) Lights(ctx context.Context) ([]Light, error) {
	raw, err := c.bridge.GetLightsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list lights: %w", err)
	}

	lights := make([]Light, 0, len(raw))
	for _, l := range raw {
		light := Light{ID: l.ID, Name: l.Name}
		if l.State != nil {
			light.On = l.State.On
			light.Brightness = l.State.Bri
			light.ColorTemp = l.State.Ct
		}
		lights = append(lights, light)
	}
	return lights, nil
}

// Sensors returns all sensors known to the bridge, with their last
// update instant parsed to UTC.
func (c *HueClient) Sensors(ctx context.Context) ([]Sensor, error) {
	raw, err := c.bridge.GetSensorsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list sensors: %w", err)
	}

	sensors := make([]Sensor, 0, len(raw))
	for _, s := range raw {
		sensor := Sensor{Name: s.Name}
		if v, ok := s.State["lastupdated"].(string); ok {
			sensor.LastPressed = parseLastUpdated(v)
		}
		sensors = append(sensors, sensor)
	}
	return sensors, nil
}

// Groups returns all groups known to the bridge.
func (c *HueClient) Groups(ctx context.Context) ([]Group, error) {
	raw, err := c.bridge.GetGroupsContext(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}

	groups := make([]Group, 0, len(raw))
	for _, g := range raw {
		groups = append(groups, Group{Name: g.Name, Lights: g.Lights})
	}
	return groups, nil
}

// SetLight writes one state change to a light.
func (c *HueClient) SetLight(ctx context.Context, id int, change Change) error {
	state := huego.State{
		On:             change.On,
		TransitionTime: uint16(change.Transition / (100 * time.Millisecond)),
	}
	if change.Brightness != nil {
		state.Bri = *change.Brightness
	}
	if change.ColorTemp != nil {
		state.Ct = *change.ColorTemp
	}
	if change.Hue != nil {
		state.Hue = *change.Hue
	}
	if change.Sat != nil {
		state.Sat = *change.Sat
	}

	if _, err := c.bridge.SetLightStateContext(ctx, id, state); err != nil {
		return fmt.Errorf("failed to set light %d state: %w", id, err)
	}

	c.logger.Debug().
		Int("light", id).
		Bool("on", change.On).
		Dur("transition", change.Transition).
		Msg("Light state written")
	return nil
}

// The bridge reports sensor timestamps as naive UTC, "none" when the
// sensor never fired.
func parseLastUpdated(v string) time.Time {
	t, err := time.ParseInLocation("2006-01-02T15:04:05", v, time.UTC)
	if err != nil {
		return time.Time{}
	}
	return t
}
