// Package floatutils provides small helpers for float64 values
package floatutils

import (
	"math"

	"gonum.org/v1/gonum/spatial/r1"
)

// Clip returns value limited to the closed range [min, max]. If min
// exceeds max, min is returned.
func Clip(value, min, max float64) float64 {
	return math.Max(math.Min(value, max), min)
}

// ClipInterval returns value limited to the closed interval i
func ClipInterval(value float64, i r1.Interval) float64 {
	return Clip(value, i.Min, i.Max)
}
