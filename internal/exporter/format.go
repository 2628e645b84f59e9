package exporter

import (
	"strconv"
)

// formatScore formats a sentiment score with exactly 2 decimal places
func formatScore(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatInt formats an int value for CSV output
func formatInt(i int) string {
	return strconv.Itoa(i)
}
