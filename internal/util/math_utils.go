package util

import "math"

// Round2 rounds a value to two decimals for display.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}
