package charts

import (
	"fmt"
	"math"
	"strconv"
)

const (
	// PositiveColor and NegativeColor mark scores above and below zero
	PositiveColor = "#2ca02c"
	NegativeColor = "#d62728"

	PrimaryLineColor = "#1f77b4"
	CompareLineColor = "#ff7f0e"
	HistogramColor   = "#4C78A8"

	// ColorRangeMin and ColorRangeMax bound the diverging colour scale
	ColorRangeMin = -0.5
	ColorRangeMax = 0.5
)

// rdylgn is the 11-step red-yellow-green diverging palette
var rdylgn = []string{
	"#a50026", "#d73027", "#f46d43", "#fdae61", "#fee08b", "#ffffbf",
	"#d9ef8b", "#a6d96a", "#66bd63", "#1a9850", "#006837",
}

// ScoreColor maps a score onto the RdYlGn scale between lo and hi.
// Values outside the range are clamped.
func ScoreColor(score, lo, hi float64) string {
	if hi <= lo || math.IsNaN(score) {
		return rdylgn[len(rdylgn)/2]
	}
	t := (score - lo) / (hi - lo)
	t = math.Max(0, math.Min(1, t))

	pos := t * float64(len(rdylgn)-1)
	i := int(math.Floor(pos))
	if i >= len(rdylgn)-1 {
		return rdylgn[len(rdylgn)-1]
	}
	return mix(rdylgn[i], rdylgn[i+1], pos-float64(i))
}

func mix(a, b string, t float64) string {
	if t == 0 {
		return a
	}
	ar, ag, ab := rgb(a)
	br, bg, bb := rgb(b)
	lerp := func(x, y uint8) uint8 {
		return uint8(math.Round(float64(x) + (float64(y)-float64(x))*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", lerp(ar, br), lerp(ag, bg), lerp(ab, bb))
}

func rgb(hex string) (uint8, uint8, uint8) {
	v, _ := strconv.ParseUint(hex[1:], 16, 32)
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}
