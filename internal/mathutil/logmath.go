package mathutil

import "math"

// LogZero represents log(0), used as negative infinity in log-domain arithmetic.
const LogZero = -1e30

// SafeLog returns the natural log of x, or LogZero when x is not positive.
func SafeLog(x float64) float64 {
	if x <= 0 {
		return LogZero
	}
	return math.Log(x)
}

