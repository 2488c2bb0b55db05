package policy

import "github.com/huetils/sundial/internal/daylight"

// Hue-wheel angles (of 65535) for the thermometer calibration points.
const (
	hueBlue   = 46920
	hueGreen  = 25500
	hueYellow = 12750
	hueRed    = 65280 // same spoke of the wheel as 0
	huePurple = 56100
)

// DegreeToColor maps an outdoor temperature in Celsius to a hue-wheel
// angle, piecewise linearly between calibration points:
//
//	-10°C blue, 0°C green, 10°C yellow, 30°C red, 40°C purple,
//
// clamped to blue below -10°C and purple above 40°C. The 10..30 segment
// descends to angle 0 and the 30..40 segment continues from 65280,
// which is the same point on the wheel.
func DegreeToColor(celsius float64) uint16 {
	switch {
	case celsius < -10:
		return hueBlue
	case celsius < 0:
		return uint16(daylight.Between(-10, 0, hueBlue, hueGreen, celsius))
	case celsius < 10:
		return uint16(daylight.Between(0, 10, hueGreen, hueYellow, celsius))
	case celsius < 30:
		return uint16(daylight.Between(10, 30, hueYellow, 0, celsius))
	case celsius < 40:
		return uint16(daylight.Between(30, 40, hueRed, huePurple, celsius))
	default:
		return huePurple
	}
}
