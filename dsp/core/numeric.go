package core

import (
	"math"
	"time"
)

const defaultEpsilon = 1e-12

// Clamp limits value to the inclusive range [min, max].
func Clamp(value, min, max float64) float64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// ClampInt limits value to the inclusive range [min, max].
func ClampInt(value, min, max int64) int64 {
	if min > max {
		min, max = max, min
	}

	if value < min {
		return min
	}

	if value > max {
		return max
	}

	return value
}

// NearlyEqual reports whether a and b are equal within eps.
func NearlyEqual(a, b, eps float64) bool {
	if eps <= 0 {
		eps = defaultEpsilon
	}

	diff := math.Abs(a - b)
	if diff <= eps {
		return true
	}

	largest := math.Max(math.Abs(a), math.Abs(b))
	if largest == 0 {
		return diff <= eps
	}

	return diff/largest <= eps
}

// IsInteger reports whether x lies within eps of a whole number.
func IsInteger(x, eps float64) bool {
	return math.Abs(x-math.Round(x)) < eps
}

// Seconds converts a duration to fractional seconds.
func Seconds(d time.Duration) float64 {
	return d.Seconds()
}

// Duration converts fractional seconds to a duration, rounding to the
// nearest nanosecond.
func Duration(seconds float64) time.Duration {
	if math.IsNaN(seconds) {
		return 0
	}

	return time.Duration(math.Round(seconds * float64(time.Second)))
}

// Period returns the duration of one sample at rate. A non-positive rate has
// no period and yields 0.
func Period(rate float64) time.Duration {
	if rate <= 0 {
		return 0
	}

	return Duration(1 / rate)
}
