package domain

import (
	"math"
	"strconv"
	"strings"
)

// InvalidMagnitude is the category returned for input that is not a number.
const InvalidMagnitude = "Invalid magnitude value"

// CategorizeMagnitude maps an earthquake magnitude to its descriptive class.
func CategorizeMagnitude(m float64) string {
	switch {
	case math.IsNaN(m):
		return InvalidMagnitude
	case m < 2.0:
		return "Micro Earthquake"
	case m < 4.0:
		return "Minor Earthquake"
	case m < 6.0:
		return "Light Earthquake"
	case m < 7.0:
		return "Strong Earthquake"
	case m < 8.0:
		return "Major Earthquake"
	case m < 10.0:
		return "Great Earthquake"
	default:
		return "Massive Earthquake"
	}
}

// CategorizeMagnitudeString parses s as a number and categorizes it.
func CategorizeMagnitudeString(s string) string {
	m, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return InvalidMagnitude
	}
	return CategorizeMagnitude(m)
}
