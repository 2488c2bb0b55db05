package controller

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/huetils/sundial/internal/bridge"
	"github.com/huetils/sundial/internal/config"
	"github.com/huetils/sundial/internal/sun"
	"github.com/huetils/sundial/internal/weather"
)

type fakeBridge struct {
	lights  []bridge.Light
	sensors []bridge.Sensor
	writes  []write
}

type write struct {
	id     int
	change bridge.Change
}

func (f *fakeBridge) Lights(ctx context.Context) ([]bridge.Light, error)   { return f.lights, nil }
func (f *fakeBridge) Sensors(ctx context.Context) ([]bridge.Sensor, error) { return f.sensors, nil }
func (f *fakeBridge) Groups(ctx context.Context) ([]bridge.Group, error)   { return nil, nil }

func (f *fakeBridge) SetLight(ctx context.Context, id int, change bridge.Change) error {
	f.writes = append(f.writes, write{id: id, change: change})
	return nil
}

type fakeWeather struct {
	report weather.Report
}

func (f *fakeWeather) Current(ctx context.Context) (weather.Report, error) {
	return f.report, nil
}

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Geo.City = "Paris"
	cfg.Sensors = []string{"Salon Entrée"}
	cfg.Lights = []string{"Salon 1-1", "Salon 1-2"}
	return cfg
}

func newRunner(cfg *config.Config, client *fakeBridge, provider weather.Provider) *Runner {
	logger := zerolog.Nop()
	return New(
		cfg,
		client,
		bridge.NewActuator(client, 1000, logger),
		sun.NewFixedResolver("Paris", 48.8566, 2.3522, logger),
		provider,
		logger,
	)
}

func parisNoon() time.Time {
	return time.Date(2021, 12, 25, 12, 0, 0, 0, time.UTC)
}

func TestRunRecentPressShortCircuits(t *testing.T) {
	now := parisNoon()
	client := &fakeBridge{
		lights: []bridge.Light{{ID: 1, Name: "Salon 1-1", On: true, Brightness: 200}},
		sensors: []bridge.Sensor{
			{Name: "Salon Entrée", LastPressed: now.Add(-10 * time.Minute)},
		},
	}

	err := newRunner(testConfig(), client, nil).Run(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, client.writes, "a recent press must suppress every write")
}

func TestRunMiddayPowersLightsOff(t *testing.T) {
	now := parisNoon()
	client := &fakeBridge{
		lights: []bridge.Light{
			{ID: 1, Name: "Salon 1-1", On: true, Brightness: 200},
			{ID: 2, Name: "Salon 1-2", On: false},
		},
		sensors: []bridge.Sensor{
			{Name: "Salon Entrée", LastPressed: now.Add(-5 * time.Hour)},
		},
	}

	err := newRunner(testConfig(), client, nil).Run(context.Background(), now)
	require.NoError(t, err)

	// Only the lit light needs a write; the off one is a no-op.
	require.Len(t, client.writes, 1)
	assert.Equal(t, 1, client.writes[0].id)
}

func TestRunCurfewPowersLightsOff(t *testing.T) {
	now := time.Date(2021, 12, 25, 3, 0, 0, 0, time.UTC)
	client := &fakeBridge{
		lights: []bridge.Light{{ID: 1, Name: "Salon 1-1", On: true, Brightness: 1}},
	}

	err := newRunner(testConfig(), client, nil).Run(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, client.writes, 1)
	assert.False(t, client.writes[0].change.On)
}

func TestRunNightPowersLightsOn(t *testing.T) {
	now := time.Date(2021, 12, 25, 20, 0, 0, 0, time.UTC)
	client := &fakeBridge{
		lights: []bridge.Light{{ID: 1, Name: "Salon 1-1", On: true, Brightness: 100, ColorTemp: 300}},
	}

	err := newRunner(testConfig(), client, nil).Run(context.Background(), now)
	require.NoError(t, err)

	require.Len(t, client.writes, 1)
	w := client.writes[0]
	assert.True(t, w.change.On)
	require.NotNil(t, w.change.Brightness)
	assert.Equal(t, uint8(255), *w.change.Brightness, "full night compensates with full brightness")
	require.NotNil(t, w.change.ColorTemp)
	assert.Equal(t, uint16(500), *w.change.ColorTemp, "full night is warmest")
}

func TestRunOvercastPullsDuskEarlier(t *testing.T) {
	// 16:15 UTC is inside Paris evening twilight on a clear day, but
	// past dusk once the overcast offset pulls it 30 minutes earlier.
	now := time.Date(2021, 12, 25, 16, 15, 0, 0, time.UTC)
	mkClient := func() *fakeBridge {
		return &fakeBridge{
			lights: []bridge.Light{{ID: 1, Name: "Salon 1-1", On: true, Brightness: 100, ColorTemp: 300}},
		}
	}

	clear := mkClient()
	err := newRunner(testConfig(), clear, &fakeWeather{report: weather.Report{Sky: "clear sky"}}).Run(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, clear.writes, 1)
	require.NotNil(t, clear.writes[0].change.Brightness)
	clearBri := *clear.writes[0].change.Brightness
	assert.Greater(t, clearBri, uint8(0))
	assert.Less(t, clearBri, uint8(255), "twilight should interpolate, not saturate")

	cloudy := mkClient()
	err = newRunner(testConfig(), cloudy, &fakeWeather{report: weather.Report{Sky: "overcast clouds"}}).Run(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, cloudy.writes, 1)
	require.NotNil(t, cloudy.writes[0].change.Brightness)
	assert.Equal(t, uint8(255), *cloudy.writes[0].change.Brightness, "overcast evening is already full night")
}

func TestRunSkipsUnknownLights(t *testing.T) {
	now := parisNoon()
	cfg := testConfig()
	cfg.Lights = []string{"Salon 1-1", "Ghost"}
	client := &fakeBridge{
		lights: []bridge.Light{{ID: 1, Name: "Salon 1-1", On: true, Brightness: 200}},
	}

	err := newRunner(cfg, client, nil).Run(context.Background(), now)
	require.NoError(t, err)
	require.Len(t, client.writes, 1, "unknown light names are skipped, not fatal")
	assert.Equal(t, 1, client.writes[0].id)
}

func TestRunOnlySwitchOffAtNight(t *testing.T) {
	now := time.Date(2021, 12, 25, 20, 0, 0, 0, time.UTC)
	cfg := testConfig()
	cfg.Policy.OnlySwitchOff = true
	client := &fakeBridge{
		lights: []bridge.Light{{ID: 1, Name: "Salon 1-1", On: false}},
	}

	err := newRunner(cfg, client, nil).Run(context.Background(), now)
	require.NoError(t, err)
	assert.Empty(t, client.writes, "only-switchoff must never power lights on")
}

func TestRunThermometer(t *testing.T) {
	now := parisNoon()
	client := &fakeBridge{
		lights: []bridge.Light{{ID: 7, Name: "Bureau", On: false}},
	}
	provider := &fakeWeather{report: weather.Report{Sky: "clear sky", TempCelsius: 0}}

	err := newRunner(testConfig(), client, provider).RunThermometer(context.Background(), now, "Bureau")
	require.NoError(t, err)

	// Off light: powered on first, then hue/sat/bri applied.
	require.Len(t, client.writes, 2)
	assert.True(t, client.writes[0].change.On)

	w := client.writes[1]
	require.NotNil(t, w.change.Hue)
	assert.Equal(t, uint16(25500), *w.change.Hue, "0°C maps to green")
	require.NotNil(t, w.change.Sat)
	assert.Equal(t, uint8(255), *w.change.Sat)
	require.NotNil(t, w.change.Brightness)
	assert.Equal(t, uint8(255), *w.change.Brightness, "midday thermometer runs at full brightness")
}

func TestRunThermometerWithoutProvider(t *testing.T) {
	client := &fakeBridge{}
	err := newRunner(testConfig(), client, nil).RunThermometer(context.Background(), parisNoon(), "Bureau")
	require.Error(t, err)
}

func TestRunThermometerUnknownLight(t *testing.T) {
	client := &fakeBridge{}
	provider := &fakeWeather{report: weather.Report{TempCelsius: 20}}
	err := newRunner(testConfig(), client, provider).RunThermometer(context.Background(), parisNoon(), "Ghost")
	require.NoError(t, err)
	assert.Empty(t, client.writes)
}
