package exporter

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatScore(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero value", input: 0, expected: "0.00"},
		{name: "one decimal padded", input: 0.2, expected: "0.20"},
		{name: "negative", input: -0.55, expected: "-0.55"},
		{name: "rounds half up", input: 0.125001, expected: "0.13"},
		{name: "upper bound", input: 1, expected: "1.00"},
		{name: "lower bound", input: -1, expected: "-1.00"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatScore(tt.input))
		})
	}
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "2024", formatInt(2024))
	assert.Equal(t, "0", formatInt(0))
}
