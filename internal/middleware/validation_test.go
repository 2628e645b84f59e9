package middleware

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apierrors "sentimentpulse/internal/errors"
	api "sentimentpulse/pkg/contracts/api/v1"
	"sentimentpulse/pkg/contracts/domain"
)

func TestValidateStruct(t *testing.T) {
	v := NewValidationMiddleware(nil)

	tests := []struct {
		name      string
		input     interface{}
		wantField string
		wantMsg   string
	}{
		{name: "valid dashboard", input: &api.DashboardRequest{Sector: "IT", Company: "TCS"}},
		{name: "default bins", input: &api.HistogramRequest{}},
		{name: "bins too high", input: &api.HistogramRequest{Bins: 101}, wantField: "bins", wantMsg: "bins must be at most 100"},
		{name: "bins negative", input: &api.HistogramRequest{Bins: -1}, wantField: "bins", wantMsg: "bins must be at least 1"},
		{name: "bad format", input: &api.DownloadRequest{Format: "pdf"}, wantField: "format", wantMsg: "format must be one of: csv, xlsx"},
		{name: "missing company", input: &api.TrendRequest{}, wantField: "company", wantMsg: "company is required"},
		{name: "control characters", input: &api.CompaniesRequest{Sector: "IT\x00"}, wantField: "sector", wantMsg: "sector must not contain control characters"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.ValidateStruct(tt.input)
			if tt.wantField == "" {
				assert.NoError(t, err)
				return
			}

			var apiErr *apierrors.APIError
			require.ErrorAs(t, err, &apiErr)
			details, ok := apiErr.Details.(apierrors.ValidationErrors)
			require.True(t, ok)
			require.Len(t, details.Errors, 1)
			assert.Equal(t, tt.wantField, details.Errors[0].Field)
			assert.Equal(t, tt.wantMsg, details.Errors[0].Message)
		})
	}
}

func TestValidateStructLongText(t *testing.T) {
	v := NewValidationMiddleware(nil)

	// the longest name a workbook row may carry is still selectable
	longest := strings.Repeat("a", 255)
	require.NoError(t, v.ValidateStruct(&api.DashboardRequest{Sector: longest, Company: longest, Compare: longest}))
	require.NoError(t, v.ValidateStruct(&api.TrendRequest{Company: longest}))
	require.NoError(t, v.ValidateStruct(&domain.Observation{Company: longest, Sector: longest, Month: "Jan", Year: 2024, Score: 0.1}))

	err := v.ValidateStruct(&api.DashboardRequest{Company: longest + "a"})
	var apiErr *apierrors.APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, "company must be at most 255 characters", apiErr.Details.(apierrors.ValidationErrors).Errors[0].Message)
}
