package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "sundial.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	if cfg.Log.Level != "info" {
		t.Errorf("Log.Level = %q, want info", cfg.Log.Level)
	}
	if cfg.Geo.Timezone != "UTC" {
		t.Errorf("Geo.Timezone = %q, want UTC", cfg.Geo.Timezone)
	}
	if got := cfg.Policy.RecencyThreshold.Duration(); got != 60*time.Minute {
		t.Errorf("Policy.RecencyThreshold = %v, want 60m", got)
	}
	if cfg.Policy.CurfewStart != 0 || cfg.Policy.CurfewEnd != 7 {
		t.Errorf("curfew = (%d, %d), want (0, 7)", cfg.Policy.CurfewStart, cfg.Policy.CurfewEnd)
	}
	if got := cfg.Policy.RunInterval.Duration(); got != 10*time.Minute {
		t.Errorf("Policy.RunInterval = %v, want 10m", got)
	}
	if cfg.Policy.MinMireds != 154 || cfg.Policy.MaxMireds != 500 {
		t.Errorf("mireds = (%d, %d), want (154, 500)", cfg.Policy.MinMireds, cfg.Policy.MaxMireds)
	}
	if got := cfg.Policy.CloudOffset.Duration(); got != 30*time.Minute {
		t.Errorf("Policy.CloudOffset = %v, want 30m", got)
	}
	if cfg.Hue.RateLimitRPS != 10.0 {
		t.Errorf("Hue.RateLimitRPS = %v, want 10", cfg.Hue.RateLimitRPS)
	}
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
hue:
  bridge: 192.168.1.2
  token: secret
geo:
  city: Paris
  timezone: Europe/Paris
weather:
  provider: openweathermap
  api_key: abc
policy:
  recency_threshold: 45m
  only_switchoff: true
sensors:
  - "Salon Entrée"
lights:
  - "Salon 1-1"
  - "Salon 1-2"
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	if cfg.Hue.Bridge != "192.168.1.2" {
		t.Errorf("Hue.Bridge = %q", cfg.Hue.Bridge)
	}
	if cfg.Geo.City != "Paris" || cfg.Geo.Timezone != "Europe/Paris" {
		t.Errorf("geo = %+v", cfg.Geo)
	}
	if got := cfg.Policy.RecencyThreshold.Duration(); got != 45*time.Minute {
		t.Errorf("Policy.RecencyThreshold = %v, want 45m", got)
	}
	if !cfg.Policy.OnlySwitchOff {
		t.Error("Policy.OnlySwitchOff should be true")
	}
	// Unset fields still get defaults.
	if got := cfg.Policy.RunInterval.Duration(); got != 10*time.Minute {
		t.Errorf("Policy.RunInterval = %v, want 10m", got)
	}
	if len(cfg.Sensors) != 1 || cfg.Sensors[0] != "Salon Entrée" {
		t.Errorf("Sensors = %v", cfg.Sensors)
	}
	if len(cfg.Lights) != 2 {
		t.Errorf("Lights = %v", cfg.Lights)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoadUnknownProvider(t *testing.T) {
	path := writeConfig(t, `
weather:
  provider: darksky
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown provider")
	}
}

func TestLoadNOAAWithoutCoordinates(t *testing.T) {
	path := writeConfig(t, `
geo:
  city: Paris
weather:
  provider: noaa
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for noaa without coordinates")
	}
}

func TestLoadNOAAWithCoordinates(t *testing.T) {
	path := writeConfig(t, `
geo:
  lat: 39.7392
  lon: -104.9903
weather:
  provider: noaa
`)
	if _, err := Load(path); err != nil {
		t.Fatalf("Load: %v", err)
	}
}

func TestLoadMiredsOutOfOrder(t *testing.T) {
	path := writeConfig(t, `
policy:
  min_mireds: 500
  max_mireds: 154
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for inverted mired range")
	}
}

func TestLoadBadDuration(t *testing.T) {
	path := writeConfig(t, `
policy:
  recency_threshold: soon
`)
	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unparseable duration")
	}
}

func TestEnvExpansion(t *testing.T) {
	t.Setenv("SUNDIAL_TEST_TOKEN", "from-env")

	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"set variable", "token: ${SUNDIAL_TEST_TOKEN}", "token: from-env"},
		{"set variable ignores default", "token: ${SUNDIAL_TEST_TOKEN:fallback}", "token: from-env"},
		{"unset variable uses default", "city: ${SUNDIAL_TEST_UNSET:Paris}", "city: Paris"},
		{"unset variable without default", "city: ${SUNDIAL_TEST_UNSET}", "city: "},
		{"no variables", "city: Paris", "city: Paris"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := expandEnvVars(tt.input); got != tt.want {
				t.Errorf("expandEnvVars(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestLoadExpandsEnv(t *testing.T) {
	t.Setenv("SUNDIAL_TEST_BRIDGE", "10.0.0.5")
	path := writeConfig(t, `
hue:
  bridge: ${SUNDIAL_TEST_BRIDGE}
  token: ${SUNDIAL_TEST_NOTSET:fallback-token}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Hue.Bridge != "10.0.0.5" {
		t.Errorf("Hue.Bridge = %q, want 10.0.0.5", cfg.Hue.Bridge)
	}
	if cfg.Hue.Token != "fallback-token" {
		t.Errorf("Hue.Token = %q, want fallback-token", cfg.Hue.Token)
	}
}
