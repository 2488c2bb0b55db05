// Package sun computes the four solar events that drive the lighting
// schedule: civil dawn, sunrise, sunset and civil dusk.
package sun

import "time"

// Events holds the solar events for one calendar day at one location.
// All instants are UTC. Invariant: Dawn <= Sunrise <= Sunset <= Dusk.
type Events struct {
	Dawn    time.Time
	Sunrise time.Time
	Sunset  time.Time
	Dusk    time.Time
}

// Valid reports whether the events are in their expected order.
func (e Events) Valid() bool {
	return !e.Sunrise.Before(e.Dawn) &&
		!e.Sunset.Before(e.Sunrise) &&
		!e.Dusk.Before(e.Sunset)
}

// CloudAdjusted returns a copy with Sunset and Dusk pulled earlier by
// offset, simulating an earlier nightfall under overcast sky. The
// adjusted sunset never crosses back over sunrise, so the ordering
// invariant holds for any offset.
func (e Events) CloudAdjusted(offset time.Duration) Events {
	if offset <= 0 {
		return e
	}
	sunset := e.Sunset.Add(-offset)
	dusk := e.Dusk.Add(-offset)
	if sunset.Before(e.Sunrise) {
		sunset = e.Sunrise
	}
	if dusk.Before(sunset) {
		dusk = sunset
	}
	e.Sunset = sunset
	e.Dusk = dusk
	return e
}
