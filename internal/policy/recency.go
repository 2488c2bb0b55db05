// Package policy turns a point in time, the day's solar events and the
// observed light states into a concrete lighting plan.
package policy

import "time"

// SensorReading is a read-only snapshot of one bridge sensor.
type SensorReading struct {
	Name        string
	LastPressed time.Time
}

// PressedRecently reports whether any watched sensor was pressed less
// than threshold ago. A true result suppresses the whole run: a human
// touched something, the automation stays out of the way.
func PressedRecently(now time.Time, readings []SensorReading, watched []string, threshold time.Duration) bool {
	if len(watched) == 0 || threshold <= 0 {
		return false
	}

	names := make(map[string]struct{}, len(watched))
	for _, n := range watched {
		names[n] = struct{}{}
	}

	for _, r := range readings {
		if _, ok := names[r.Name]; !ok {
			continue
		}
		if now.Sub(r.LastPressed) < threshold {
			return true
		}
	}
	return false
}
