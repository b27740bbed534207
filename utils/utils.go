package utils

import (
	"math"
	"strconv"
)

func RoundToXDp(f float64, dp uint8) float64 {
	e := math.Pow(10, float64(dp))
	return math.Round(f*e) / e
}

// FormatCoord renders an svg coordinate rounded to 2dp without trailing zeros.
func FormatCoord(f float64) string {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return "0"
	}
	return strconv.FormatFloat(RoundToXDp(f, 2), 'f', -1, 64)
}
