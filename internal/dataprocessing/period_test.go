package dataprocessing

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeMonth(t *testing.T) {
	tests := []struct {
		input   string
		want    string
		wantErr bool
	}{
		{input: "Jan", want: "Jan"},
		{input: "jan", want: "Jan"},
		{input: " DEC ", want: "Dec"},
		{input: "September", want: "Sep"},
		{input: "Sept", want: "Sep"},
		{input: "Jn", wantErr: true},
		{input: "Janx", wantErr: true},
		{input: "Foo", wantErr: true},
		{input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := NormalizeMonth(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParsePeriod(t *testing.T) {
	got, err := ParsePeriod("mar", 2023)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), got)

	_, err = ParsePeriod("13", 2023)
	assert.Error(t, err)
}

func TestParseYear(t *testing.T) {
	year, err := ParseYear("2024")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	year, err = ParseYear("2024.0")
	require.NoError(t, err)
	assert.Equal(t, 2024, year)

	_, err = ParseYear("2024.5")
	assert.Error(t, err)

	_, err = ParseYear("")
	assert.Error(t, err)
}

func TestParseScore(t *testing.T) {
	score, err := ParseScore(" -0.25 ")
	require.NoError(t, err)
	assert.InDelta(t, -0.25, score, 1e-12)

	_, err = ParseScore("n/a")
	assert.Error(t, err)

	_, err = ParseScore("")
	assert.Error(t, err)
}
