package chart

import (
	"math"
	"strconv"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var tickPrinter = message.NewPrinter(language.English)

// FormatTick renders a value axis label, whole numbers get thousands separators.
func FormatTick(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return ""
	}
	if v == math.Trunc(v) && math.Abs(v) < 1e15 {
		return tickPrinter.Sprintf("%d", int64(v))
	}
	// ticks below one are exact multiples of a power of ten, trimming float noise is enough
	return strconv.FormatFloat(v, 'f', -1, 64)
}
