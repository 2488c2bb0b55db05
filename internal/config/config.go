// Package config loads the sundial configuration file.
package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	Hue     HueConfig     `yaml:"hue"`
	Geo     GeoConfig     `yaml:"geo"`
	Weather WeatherConfig `yaml:"weather"`
	Policy  PolicyConfig  `yaml:"policy"`
	Log     LogConfig     `yaml:"log"`

	// Sensors to watch for recent presses and lights to control.
	Sensors []string `yaml:"sensors"`
	Lights  []string `yaml:"lights"`
}

// HueConfig contains Hue bridge connection settings.
type HueConfig struct {
	Bridge       string  `yaml:"bridge"`
	Token        string  `yaml:"token"`
	RateLimitRPS float64 `yaml:"rate_limit_rps"`
}

// GeoConfig contains location settings for the solar calculations. When
// Lat/Lon are set the city name is never geocoded.
type GeoConfig struct {
	City        string   `yaml:"city"`
	Lat         float64  `yaml:"lat,omitempty"`
	Lon         float64  `yaml:"lon,omitempty"`
	Timezone    string   `yaml:"timezone"`
	HTTPTimeout Duration `yaml:"http_timeout"`
	CachePath   string   `yaml:"cache_path"` // SQLite geocode cache, empty disables it
}

// WeatherConfig selects the optional weather provider used for the
// cloud-cover adjustment and the thermometer mode.
type WeatherConfig struct {
	Provider string   `yaml:"provider"` // "", "openweathermap" or "noaa"
	APIKey   string   `yaml:"api_key"`
	Timeout  Duration `yaml:"timeout"`
}

// PolicyConfig contains the lighting policy tunables.
type PolicyConfig struct {
	RecencyThreshold Duration `yaml:"recency_threshold"`
	CurfewStart      int      `yaml:"curfew_start"`
	CurfewEnd        int      `yaml:"curfew_end"`
	RunInterval      Duration `yaml:"run_interval"`
	OnlySwitchOff    bool     `yaml:"only_switchoff"`
	MinMireds        int      `yaml:"min_mireds"`
	MaxMireds        int      `yaml:"max_mireds"`
	CloudOffset      Duration `yaml:"cloud_offset"`
}

// LogConfig contains logging settings.
type LogConfig struct {
	Level   string `yaml:"level"`
	Colors  bool   `yaml:"colors"`
	UseJSON bool   `yaml:"json"`
}

// Duration is a wrapper around time.Duration for YAML unmarshalling.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler for Duration.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// Duration returns the underlying time.Duration.
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	cfg := &Config{}
	cfg.applyDefaults()
	return cfg
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	expanded := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if cfg.Geo.Timezone == "" {
		cfg.Geo.Timezone = "UTC"
	}
	if cfg.Geo.HTTPTimeout == 0 {
		cfg.Geo.HTTPTimeout = Duration(10 * time.Second)
	}

	if cfg.Hue.RateLimitRPS == 0 {
		cfg.Hue.RateLimitRPS = 10.0
	}

	if cfg.Weather.Timeout == 0 {
		cfg.Weather.Timeout = Duration(30 * time.Second)
	}

	if cfg.Policy.RecencyThreshold == 0 {
		cfg.Policy.RecencyThreshold = Duration(60 * time.Minute)
	}
	if cfg.Policy.CurfewEnd == 0 {
		cfg.Policy.CurfewEnd = 7
	}
	if cfg.Policy.RunInterval == 0 {
		cfg.Policy.RunInterval = Duration(10 * time.Minute)
	}
	if cfg.Policy.MinMireds == 0 {
		cfg.Policy.MinMireds = 154
	}
	if cfg.Policy.MaxMireds == 0 {
		cfg.Policy.MaxMireds = 500
	}
	if cfg.Policy.CloudOffset == 0 {
		cfg.Policy.CloudOffset = Duration(30 * time.Minute)
	}
}

func (cfg *Config) validate() error {
	switch cfg.Weather.Provider {
	case "", "openweathermap":
	case "noaa":
		// NOAA has no name lookup, only gridpoints.
		if cfg.Geo.Lat == 0 && cfg.Geo.Lon == 0 {
			return fmt.Errorf("noaa weather provider requires geo.lat and geo.lon")
		}
	default:
		return fmt.Errorf("unknown weather provider %q", cfg.Weather.Provider)
	}
	if cfg.Policy.MinMireds > cfg.Policy.MaxMireds {
		return fmt.Errorf("min_mireds %d exceeds max_mireds %d", cfg.Policy.MinMireds, cfg.Policy.MaxMireds)
	}
	return nil
}

// expandEnvVars expands environment variables in the format ${VAR} or
// ${VAR:default}.
func expandEnvVars(input string) string {
	re := regexp.MustCompile(`\$\{([^}:]+)(?::([^}]*))?\}`)

	return re.ReplaceAllStringFunc(input, func(match string) string {
		parts := re.FindStringSubmatch(match)
		if len(parts) < 2 {
			return match
		}

		varName := parts[1]
		defaultVal := ""
		if len(parts) >= 3 {
			defaultVal = parts[2]
		}

		if val := os.Getenv(varName); val != "" {
			return val
		}
		return defaultVal
	})
}
