// Command sundial adjusts Hue lights from the sun's position. It is a
// one-shot tool meant to run every few minutes from cron or a systemd
// timer; all state lives on the bridge.
package main

import (
	"context"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/huetils/sundial/internal/bridge"
	"github.com/huetils/sundial/internal/config"
	"github.com/huetils/sundial/internal/controller"
	"github.com/huetils/sundial/internal/sun"
	"github.com/huetils/sundial/internal/weather"
)

func main() {
	var (
		configPath    = pflag.StringP("config", "c", "", "Path to configuration file")
		bridgeAddr    = pflag.String("hue-bridge", "", "Hue bridge address")
		bridgeToken   = pflag.String("hue-token", "", "Hue bridge API token")
		sensors       = pflag.StringSlice("sensors", nil, "Hue sensors to watch")
		lights        = pflag.StringSlice("lights", nil, "Hue lights to change")
		onlySwitchOff = pflag.Bool("only-switchoff", false, "Power lights off but never on (good for bedrooms)")
		nowFlag       = pflag.String("now", "", "Simulate a specific time (like 2021-12-03T23:00:00) for test purposes")
		listSensors   = pflag.Bool("list-sensors", false, "List sensors and exit")
		listLights    = pflag.Bool("list-lights", false, "List lights and exit")
		thermometer   = pflag.Bool("thermometer", false, "Reflect the outdoor temperature on one light's color")
		thermoLight   = pflag.String("light", "", "Light for --thermometer mode")
		verbose       = pflag.BoolP("verbose", "v", false, "Debug logging")
	)
	pflag.Parse()

	cfg := loadConfig(*configPath)
	if *verbose {
		cfg.Log.Level = "debug"
	}
	setupLogging(cfg.Log.Level, cfg.Log.UseJSON, cfg.Log.Colors)

	// Flags override the config file.
	if city := pflag.Arg(0); city != "" {
		cfg.Geo.City = city
	}
	if *bridgeAddr != "" {
		cfg.Hue.Bridge = *bridgeAddr
	}
	if *bridgeToken != "" {
		cfg.Hue.Token = *bridgeToken
	}
	if len(*sensors) > 0 {
		cfg.Sensors = *sensors
	}
	if len(*lights) > 0 {
		cfg.Lights = *lights
	}
	if *onlySwitchOff {
		cfg.Policy.OnlySwitchOff = true
	}

	logger := log.With().Str("run_id", uuid.NewString()).Logger()
	now := parseNow(*nowFlag, cfg.Geo.Timezone, logger)

	ctx := context.Background()
	client := bridge.NewHueClient(cfg.Hue.Bridge, cfg.Hue.Token, logger)

	if *listSensors {
		all, err := client.Sensors(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to list sensors")
		}
		bridge.PrintSensors(os.Stdout, all)
		return
	}
	if *listLights {
		all, err := client.Lights(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to list lights")
		}
		groups, err := client.Groups(ctx)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to list groups")
		}
		bridge.PrintLights(os.Stdout, all, groups)
		return
	}

	runner := controller.New(
		cfg,
		client,
		bridge.NewActuator(client, cfg.Hue.RateLimitRPS, logger),
		newResolver(cfg, logger),
		newWeather(cfg, logger),
		logger,
	)

	var err error
	if *thermometer {
		if *thermoLight == "" {
			logger.Fatal().Msg("--thermometer requires --light")
		}
		err = runner.RunThermometer(ctx, now, *thermoLight)
	} else {
		err = runner.Run(ctx, now)
	}
	if err != nil {
		logger.Fatal().Err(err).Msg("Run failed")
	}
}

func loadConfig(path string) *config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatal().Err(err).Str("config", path).Msg("Failed to load configuration")
	}
	return cfg
}

// parseNow returns the run's reference instant in UTC. A naive --now
// value is interpreted in the configured timezone. A malformed value is
// fatal before any decision is computed.
func parseNow(value, timezone string, logger zerolog.Logger) time.Time {
	if value == "" {
		return time.Now().UTC()
	}

	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t.UTC()
	}

	tz, err := time.LoadLocation(timezone)
	if err != nil {
		tz = time.Local
	}
	t, err := time.ParseInLocation("2006-01-02T15:04:05", value, tz)
	if err != nil {
		logger.Fatal().Err(err).Str("now", value).Msg("Invalid --now value")
	}
	return t.UTC()
}

func newResolver(cfg *config.Config, logger zerolog.Logger) *sun.Resolver {
	if cfg.Geo.Lat != 0 || cfg.Geo.Lon != 0 {
		return sun.NewFixedResolver(cfg.Geo.City, cfg.Geo.Lat, cfg.Geo.Lon, logger)
	}

	var cache *sun.Geocache
	if cfg.Geo.CachePath != "" {
		var err error
		cache, err = sun.OpenGeocache(cfg.Geo.CachePath, logger)
		if err != nil {
			logger.Warn().Err(err).Msg("Failed to open geocache, geocoding without it")
			cache = nil
		}
	}
	return sun.NewResolver(cfg.Geo.HTTPTimeout.Duration(), cache, logger)
}

func newWeather(cfg *config.Config, logger zerolog.Logger) weather.Provider {
	switch cfg.Weather.Provider {
	case "openweathermap":
		p, err := weather.NewOWM(cfg.Weather.APIKey, cfg.Geo.City, cfg.Geo.Lat, cfg.Geo.Lon, cfg.Weather.Timeout.Duration(), logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("Failed to configure weather provider")
		}
		return p
	case "noaa":
		return weather.NewNOAA(cfg.Geo.Lat, cfg.Geo.Lon, logger)
	default:
		return nil
	}
}

func setupLogging(level string, useJSON bool, colors bool) {
	zerolog.TimeFieldFormat = time.RFC3339

	if useJSON {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: "2006-01-02T15:04:05.000Z07:00",
			NoColor:    !colors,
		})
	}

	switch level {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}
}
