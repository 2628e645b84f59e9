package dataprocessing

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/option"

	"sentimentpulse/internal/shared/testutil"
)

// MockValuesFetcher is a mock implementation of ValuesFetcher
type MockValuesFetcher struct {
	mock.Mock
}

func (m *MockValuesFetcher) FetchValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	args := m.Called(ctx, spreadsheetID, readRange)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([][]interface{}), args.Error(1)
}

func TestWorkbookSource(t *testing.T) {
	path := testutil.WriteSampleWorkbook(t)
	src := NewWorkbookSource(path, testutil.SampleSheet)

	assert.Equal(t, "xlsx", src.Name())
	assert.Equal(t, path, src.Location())

	obs, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, obs, len(testutil.SampleRows()))
}

func TestWorkbookSourceCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewWorkbookSource("unused.xlsx", "Sheet1").Load(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSheetsSource(t *testing.T) {
	fetcher := new(MockValuesFetcher)
	fetcher.On("FetchValues", mock.Anything, "sheet-123", "'Quarterly Sentiment'").Return([][]interface{}{
		{"Company", "Sector", "Month", "Year", "Overall_Score"},
		{"Infosys", "IT", "Jan", float64(2024), 0.4},
		{"TCS", "IT", "Jan", float64(2024), nil},
	}, nil)

	src := NewSheetsSource(fetcher, "sheet-123", "Quarterly Sentiment", time.Second, nil)
	assert.Equal(t, "sheets", src.Name())
	assert.Contains(t, src.Location(), "sheet-123")

	_, err := src.Load(context.Background())
	require.Error(t, err, "empty score cell fails the parse")
	assert.ErrorIs(t, err, ErrInvalidRow)
	fetcher.AssertExpectations(t)
}

func TestSheetsSourceFetchError(t *testing.T) {
	fetcher := new(MockValuesFetcher)
	fetcher.On("FetchValues", mock.Anything, "sheet-123", mock.Anything).Return(nil, errors.New("quota exceeded"))

	src := NewSheetsSource(fetcher, "sheet-123", "Quarterly Sentiment", 0, nil)
	_, err := src.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestSheetRange(t *testing.T) {
	assert.Equal(t, "'Quarterly Sentiment'", SheetRange("Quarterly Sentiment"))
	assert.Equal(t, "'Bob''s Sheet'", SheetRange("Bob's Sheet"))
}

func TestCellsToRows(t *testing.T) {
	rows := CellsToRows([][]interface{}{
		{"Infosys", float64(2024), 0.25, true, nil},
	})
	assert.Equal(t, [][]string{{"Infosys", "2024", "0.25", "true", ""}}, rows)
}

// TestGoogleSheetsFetcher drives the real Sheets client against a local
// endpoint serving a values response.
func TestGoogleSheetsFetcher(t *testing.T) {
	var gotPath string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "UNFORMATTED_VALUE", r.URL.Query().Get("valueRenderOption"))
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"range":          "'Quarterly Sentiment'!A1:E3",
			"majorDimension": "ROWS",
			"values": [][]interface{}{
				{"Company", "Sector", "Month", "Year", "Overall_Score"},
				{"Infosys", "IT", "Jan", 2024, 0.4},
				{"TCS", "IT", "Apr", 2024, -0.1},
			},
		})
	}))
	defer server.Close()

	ctx := context.Background()
	fetcher, err := NewGoogleSheetsFetcher(ctx, "",
		option.WithoutAuthentication(),
		option.WithEndpoint(server.URL+"/"),
		option.WithHTTPClient(server.Client()),
	)
	require.NoError(t, err)

	src := NewSheetsSource(fetcher, "sheet-123", "Quarterly Sentiment", 5*time.Second, nil)
	obs, err := src.Load(ctx)
	require.NoError(t, err)
	require.Len(t, obs, 2)
	assert.Equal(t, "TCS", obs[1].Company)
	assert.InDelta(t, -0.1, obs[1].Score, 1e-9)
	assert.True(t, strings.HasPrefix(gotPath, "/v4/spreadsheets/sheet-123/values/"))
}

func TestNewGoogleSheetsFetcherMissingCredentials(t *testing.T) {
	_, err := NewGoogleSheetsFetcher(context.Background(), "/nonexistent/credentials.json")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read credentials file")
}
