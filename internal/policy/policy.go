package policy

import (
	"math"
	"time"

	"github.com/huetils/sundial/internal/daylight"
	"github.com/huetils/sundial/internal/sun"
)

// Config collects the tunables of the lighting policy. The zero value is
// not usable; start from DefaultConfig.
type Config struct {
	// RecencyThreshold is how long after a human sensor press the
	// automation keeps its hands off.
	RecencyThreshold time.Duration

	// CurfewStart and CurfewEnd bound the local-hour window (exclusive
	// on both ends) during which lights are forced off regardless of
	// illumination.
	CurfewStart int
	CurfewEnd   int

	// RunInterval is the expected delay between two invocations; light
	// transitions are stretched over exactly this duration so each run
	// picks up where the previous one left off.
	RunInterval time.Duration

	// OnlySwitchOff disables the power-on path. Good for bedrooms.
	OnlySwitchOff bool

	// MinMireds is the coldest color temperature (full day), MaxMireds
	// the warmest (full night).
	MinMireds uint16
	MaxMireds uint16

	// CloudOffset is how much earlier sunset and dusk are assumed to
	// arrive under an overcast sky.
	CloudOffset time.Duration
}

// DefaultConfig returns the stock policy settings.
func DefaultConfig() Config {
	return Config{
		RecencyThreshold: 60 * time.Minute,
		CurfewStart:      0,
		CurfewEnd:        7,
		RunInterval:      10 * time.Minute,
		MinMireds:        154,
		MaxMireds:        500,
		CloudOffset:      30 * time.Minute,
	}
}

// LightState is the observed state of one controlled light.
type LightState struct {
	ID         int
	Name       string
	On         bool
	Brightness uint8
	ColorTemp  uint16
}

// Action is what the plan wants done with one light.
type Action int

const (
	ActionNone Action = iota
	ActionPowerOff
	ActionPowerOn
)

func (a Action) String() string {
	switch a {
	case ActionPowerOff:
		return "power-off"
	case ActionPowerOn:
		return "power-on"
	default:
		return "none"
	}
}

// Target is the desired end state for one light.
type Target struct {
	Light      LightState
	Action     Action
	Brightness uint8 // only meaningful for ActionPowerOn
}

// Plan is the decision for one run: per-light targets plus the global
// color temperature, and the context that produced them.
type Plan struct {
	Illumination float64
	Period       daylight.Period
	ColorTemp    uint16
	Transition   time.Duration
	Targets      []Target
	Reason       string
}

// Decide runs the decision state machine of one invocation. The curfew
// check uses now in the local zone; everything else is UTC arithmetic
// over the (possibly cloud-adjusted) solar events.
//
// Brightness direction: low illumination maps to high brightness, the
// light compensates for the missing daylight. Color temperature runs the
// other way: full day is coldest, full night warmest.
func Decide(now time.Time, local *time.Location, ev sun.Events, lights []LightState, cfg Config) Plan {
	illum := daylight.Illumination(now, ev)

	plan := Plan{
		Illumination: illum,
		Period:       daylight.PeriodOf(now, ev),
		ColorTemp:    uint16(math.Round(daylight.Interpolate(illum, float64(cfg.MaxMireds), float64(cfg.MinMireds)))),
		Transition:   cfg.RunInterval,
	}

	switch {
	case illum == 1:
		// Daylight needs no artificial light.
		plan.Reason = "daylight"
		for _, l := range lights {
			plan.Targets = append(plan.Targets, Target{Light: l, Action: ActionPowerOff})
		}

	case inCurfew(now.In(local).Hour(), cfg):
		plan.Reason = "curfew"
		for _, l := range lights {
			plan.Targets = append(plan.Targets, Target{Light: l, Action: ActionPowerOff})
		}

	case cfg.OnlySwitchOff:
		plan.Reason = "only-switchoff"

	default:
		plan.Reason = "sun below horizon"
		bri := uint8(math.Round(daylight.Interpolate(illum, 255, 0)))
		for _, l := range lights {
			plan.Targets = append(plan.Targets, Target{Light: l, Action: ActionPowerOn, Brightness: bri})
		}
	}

	return plan
}

func inCurfew(hour int, cfg Config) bool {
	return hour > cfg.CurfewStart && hour < cfg.CurfewEnd
}
