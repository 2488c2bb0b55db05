// Package daylight models how much natural light is available at an
// instant, given the day's solar events.
package daylight

import (
	"time"

	"github.com/huetils/sundial/internal/sun"
)

// Period is the discrete classification of an instant relative to the
// solar events.
type Period int

const (
	Night Period = iota
	Transition
	Day
)

func (p Period) String() string {
	switch p {
	case Night:
		return "night"
	case Transition:
		return "transition"
	case Day:
		return "day"
	default:
		return "unknown"
	}
}

// Illumination maps an instant to [0, 1]: 0 is full night, 1 is full
// day, and values in between are the linear position within the
// dawn-to-sunrise or sunset-to-dusk twilight window.
//
// A zero-length twilight window (polar day or night) degenerates to an
// instantaneous step: the value of whichever boundary is adjacent.
func Illumination(now time.Time, ev sun.Events) float64 {
	if now.Before(ev.Dawn) || now.After(ev.Dusk) {
		return 0
	}
	if now.Before(ev.Sunrise) {
		window := ev.Sunrise.Sub(ev.Dawn)
		if window <= 0 {
			return 1
		}
		return float64(now.Sub(ev.Dawn)) / float64(window)
	}
	if now.After(ev.Sunset) {
		window := ev.Dusk.Sub(ev.Sunset)
		if window <= 0 {
			return 0
		}
		return float64(ev.Dusk.Sub(now)) / float64(window)
	}
	return 1
}

// PeriodOf classifies an instant: Night outside [dawn, dusk], Day
// inside [sunrise, sunset], Transition otherwise.
func PeriodOf(now time.Time, ev sun.Events) Period {
	if now.Before(ev.Dawn) || now.After(ev.Dusk) {
		return Night
	}
	if !now.Before(ev.Sunrise) && !now.After(ev.Sunset) {
		return Day
	}
	return Transition
}
