package common

import "math"

// Epsilon is the tolerance used by AlmostEqual.
const Epsilon = 1e-6

// AlmostEqual reports whether a and b differ by less than Epsilon.
func AlmostEqual(a, b float64) bool {
	return math.Abs(a-b) < Epsilon
}

// FloorDiv divides a by b rounding toward negative infinity, so chunk
// indices stay correct for negative tile coordinates.
func FloorDiv(a, b int) int {
	q := a / b
	if (a%b != 0) && ((a < 0) != (b < 0)) {
		q--
	}
	return q
}

// FloorMod is the remainder that pairs with FloorDiv; it is always in [0, |b|).
func FloorMod(a, b int) int {
	m := a % b
	if m != 0 && ((m < 0) != (b < 0)) {
		m += b
	}
	return m
}
