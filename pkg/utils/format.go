// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/guregu/null/v6"
)

var spaceRe = regexp.MustCompile(`\s+`)

// NormSpace collapses runs of whitespace to single spaces and trims.
func NormSpace(s string) string {
	return strings.TrimSpace(spaceRe.ReplaceAllString(s, " "))
}

// Clamp limits x to the range [lo, hi].
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// RoundTo rounds x to the given number of decimal places.
func RoundTo(x float64, places int) float64 {
	pow := math.Pow(10, float64(places))
	return math.Round(x*pow) / pow
}

// PctChange returns (a-b)/b*100, or an invalid Float when either input
// is null or the base is exactly zero. Positive means an increase since
// the compared period. Never returns Inf or NaN.
func PctChange(a, b null.Float) null.Float {
	if !a.Valid || !b.Valid || b.Float64 == 0 {
		return null.Float{}
	}
	return null.FloatFrom((a.Float64 - b.Float64) / b.Float64 * 100.0)
}

// FormatSignedPercent formats a percentage with an explicit sign and two
// decimals, e.g. "-15.00%".
func FormatSignedPercent(v float64) string {
	return fmt.Sprintf("%+.2f%%", v)
}
