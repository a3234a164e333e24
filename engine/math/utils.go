package math

import "golang.org/x/exp/constraints"

// Clamp returns the value `f` clamped to the range [low, high].
// It works for any numeric type (integers and floats).
func Clamp[T constraints.Ordered](f, low, high T) T {
	if f < low {
		return low
	}
	if f > high {
		return high
	}
	return f
}

// AlignUp rounds value up to the next multiple of alignment.
// Alignment must be a power of two.
func AlignUp(value, alignment int) int {
	return (value + alignment - 1) &^ (alignment - 1)
}

// Lerp interpolates linearly between a and b by t.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}
