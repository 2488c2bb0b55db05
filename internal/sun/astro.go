package sun

import (
	"math"
	"time"
)

// Solar altitude angles, in degrees below the horizon.
const (
	sunriseAngle = -0.833 // accounts for refraction and the solar disc
	civilAngle   = -6.0   // civil twilight
)

// EventsForDate computes the solar events for the given UTC calendar day
// at the given coordinates, using the NOAA sunrise equation.
func EventsForDate(date time.Time, lat, lon float64) Events {
	// The equation expects the Julian day at noon, not midnight.
	jd := toJulianDay(date.UTC()) + 0.5

	return Events{
		Dawn:    sunTime(jd, lat, lon, civilAngle, true),
		Sunrise: sunTime(jd, lat, lon, sunriseAngle, true),
		Sunset:  sunTime(jd, lat, lon, sunriseAngle, false),
		Dusk:    sunTime(jd, lat, lon, civilAngle, false),
	}
}

// toJulianDay converts a date to the Julian day number at 00:00 UT.
func toJulianDay(t time.Time) float64 {
	y := float64(t.Year())
	m := float64(t.Month())
	d := float64(t.Day())

	if m <= 2 {
		y--
		m += 12
	}

	a := math.Floor(y / 100)
	b := 2 - a + math.Floor(a/4)

	return math.Floor(365.25*(y+4716)) + math.Floor(30.6001*(m+1)) + d + b - 1524.5
}

// sunTime calculates the instant the sun crosses the given altitude
// angle, rising or setting. At polar latitudes the hour angle is clamped,
// which collapses the event onto solar transit instead of failing.
func sunTime(jd, lat, lon, angle float64, rising bool) time.Time {
	n := jd - 2451545.0 + 0.0008
	jStar := n - lon/360.0

	// Solar mean anomaly
	m := math.Mod(357.5291+0.98560028*jStar, 360.0)
	mRad := m * math.Pi / 180.0

	// Equation of center
	c := 1.9148*math.Sin(mRad) + 0.02*math.Sin(2*mRad) + 0.0003*math.Sin(3*mRad)

	// Ecliptic longitude
	lambda := math.Mod(m+c+180+102.9372, 360.0)
	lambdaRad := lambda * math.Pi / 180.0

	// Solar transit
	jTransit := 2451545.0 + jStar + 0.0053*math.Sin(mRad) - 0.0069*math.Sin(2*lambdaRad)

	// Declination of the sun
	sinDec := math.Sin(lambdaRad) * math.Sin(23.44*math.Pi/180.0)
	dec := math.Asin(sinDec)

	// Hour angle for the requested altitude
	latRad := lat * math.Pi / 180.0
	angleRad := angle * math.Pi / 180.0

	cosOmega := (math.Sin(angleRad) - math.Sin(latRad)*math.Sin(dec)) / (math.Cos(latRad) * math.Cos(dec))
	if cosOmega > 1 {
		cosOmega = 1
	} else if cosOmega < -1 {
		cosOmega = -1
	}

	omega := math.Acos(cosOmega) * 180.0 / math.Pi

	jTime := jTransit + omega/360.0
	if rising {
		jTime = jTransit - omega/360.0
	}

	return julianToTime(jTime)
}

// julianToTime converts a fractional Julian day to a UTC instant.
func julianToTime(jd float64) time.Time {
	unix := (jd - 2440587.5) * 86400.0
	sec := math.Floor(unix)
	return time.Unix(int64(sec), int64((unix-sec)*1e9)).UTC()
}
