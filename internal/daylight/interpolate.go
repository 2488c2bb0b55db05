package daylight

// Interpolate blends linearly between v0 (alpha 0) and v1 (alpha 1).
func Interpolate(alpha, v0, v1 float64) float64 {
	return (1-alpha)*v0 + alpha*v1
}

// Between maps v from the input range [lo, hi] onto the output range
// [outLo, outHi]. A collapsed input range yields outLo.
func Between(lo, hi, outLo, outHi, v float64) float64 {
	span := hi - lo
	if span == 0 {
		return outLo
	}
	return Interpolate((v-lo)/span, outLo, outHi)
}
