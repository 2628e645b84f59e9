package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"sentimentpulse/internal/dataprocessing"
	"sentimentpulse/internal/shared/testutil"
	"sentimentpulse/pkg/contracts/domain"
	"sentimentpulse/pkg/contracts/events"
)

func newTestService(t *testing.T, src *testutil.StubSource, hub WebSocketHub) *DatasetService {
	t.Helper()
	logger, _ := testutil.NewTestLogger(t)
	summarizer := dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())
	return NewDatasetService(src, summarizer, hub, nil, logger)
}

func TestDatasetServiceLoadsOnce(t *testing.T) {
	src := testutil.NewStubSource(testutil.SampleObservations())
	svc := newTestService(t, src, nil)
	ctx := context.Background()

	d1, err := svc.Dataset(ctx)
	require.NoError(t, err)
	d2, err := svc.Dataset(ctx)
	require.NoError(t, err)

	assert.Same(t, d1, d2)
	assert.Equal(t, 1, src.Calls())
	assert.Equal(t, 13, d1.Len())
}

func TestDatasetServiceConcurrentFirstLoad(t *testing.T) {
	src := testutil.NewStubSource(testutil.SampleObservations())
	src.SetDelay(50 * time.Millisecond)
	svc := newTestService(t, src, nil)

	g, ctx := errgroup.WithContext(context.Background())
	for i := 0; i < 10; i++ {
		g.Go(func() error {
			_, err := svc.Dataset(ctx)
			return err
		})
	}
	require.NoError(t, g.Wait())
	assert.Equal(t, 1, src.Calls())
}

func TestDatasetServiceCachesLoadError(t *testing.T) {
	src := testutil.NewStubSource(nil)
	src.Set(nil, fmt.Errorf("%w: /data/missing.xlsx", dataprocessing.ErrFileNotFound))
	svc := newTestService(t, src, nil)
	ctx := context.Background()

	_, err := svc.Dataset(ctx)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDataFileNotFound)
	assert.Equal(t, "Data file not found at: /data/Sentiment_Analysis_Production.xlsx", UserMessage(err))

	_, err = svc.Dataset(ctx)
	require.Error(t, err)
	assert.Equal(t, 1, src.Calls(), "failed load is cached")

	status := svc.Status()
	assert.False(t, status.Loaded)
	assert.Contains(t, status.Error, "Data file not found at:")
}

func TestDatasetServiceParseError(t *testing.T) {
	src := testutil.NewStubSource(nil)
	src.Set(nil, &dataprocessing.RowError{Row: 4, Column: "Year", Err: errors.New("not a number")})
	svc := newTestService(t, src, nil)

	_, err := svc.Dataset(context.Background())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrDataFileNotFound)
	assert.ErrorIs(t, err, dataprocessing.ErrInvalidRow)
	assert.Equal(t, "Error: row 4, column Year: not a number", UserMessage(err))
}

func TestDatasetServiceEmptySource(t *testing.T) {
	svc := newTestService(t, testutil.NewStubSource([]domain.Observation{}), nil)

	_, err := svc.Dataset(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrNoObservations)
}

func TestDatasetServiceReload(t *testing.T) {
	src := testutil.NewStubSource(nil)
	src.Set(nil, fmt.Errorf("%w: missing", dataprocessing.ErrFileNotFound))

	hub := new(MockWebSocketHub)
	hub.On("Broadcast", string(events.MessageTypeDataUpdate), mock.MatchedBy(func(u events.DataUpdate) bool {
		return u.Error == "" && u.Observations == 13 && u.Companies == 8 && u.Source == "stub"
	})).Once()

	svc := newTestService(t, src, hub)
	ctx := context.Background()

	_, err := svc.Dataset(ctx)
	require.Error(t, err)

	src.Set(testutil.SampleObservations(), nil)
	d, err := svc.Reload(ctx)
	require.NoError(t, err)
	assert.Equal(t, 13, d.Len())
	assert.Equal(t, 2, src.Calls())

	status := svc.Status()
	assert.True(t, status.Loaded)
	assert.Equal(t, 8, status.Companies)
	assert.Empty(t, status.Error)
	hub.AssertExpectations(t)
}

func TestDatasetServiceReloadDuringLoad(t *testing.T) {
	sample := testutil.SampleObservations()
	src := testutil.NewStubSource(sample[:1])
	src.SetDelay(100 * time.Millisecond)
	svc := newTestService(t, src, nil)

	first := make(chan *dataprocessing.Dataset, 1)
	go func() {
		d, _ := svc.Dataset(context.Background())
		first <- d
	}()
	require.Eventually(t, func() bool { return src.Calls() == 1 }, time.Second, time.Millisecond)

	src.Set(sample[:2], nil)
	d, err := svc.Reload(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, d.Len())
	assert.Equal(t, 2, src.Calls())

	// the earlier load finishes late and must not replace the reloaded table
	select {
	case old := <-first:
		require.NotNil(t, old)
		assert.Equal(t, 1, old.Len())
	case <-time.After(2 * time.Second):
		t.Fatal("first load did not finish")
	}

	cached, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.Same(t, d, cached)
	assert.Equal(t, 2, svc.Status().Observations)
}

func TestDatasetServiceReloadFailureBroadcastsError(t *testing.T) {
	src := testutil.NewStubSource(testutil.SampleObservations())
	hub := new(MockWebSocketHub)
	hub.On("Broadcast", string(events.MessageTypeDataUpdate), mock.MatchedBy(func(u events.DataUpdate) bool {
		return u.Error == "Error: disk on fire"
	})).Once()

	svc := newTestService(t, src, hub)
	ctx := context.Background()
	_, err := svc.Dataset(ctx)
	require.NoError(t, err)

	src.Set(nil, errors.New("disk on fire"))
	_, err = svc.Reload(ctx)
	require.Error(t, err)
	hub.AssertExpectations(t)
}

func TestDatasetServiceCallerCancellation(t *testing.T) {
	src := testutil.NewStubSource(testutil.SampleObservations())
	src.SetDelay(100 * time.Millisecond)
	svc := newTestService(t, src, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := svc.Dataset(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	// the shared load still completes for later callers
	d, err := svc.Dataset(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 13, d.Len())
}

func TestDatasetServiceStatusBeforeLoad(t *testing.T) {
	svc := newTestService(t, testutil.NewStubSource(nil), nil)

	status := svc.Status()
	assert.False(t, status.Loaded)
	assert.Equal(t, "stub", status.Source)
	assert.True(t, status.LoadedAt.IsZero())
}

func TestDatasetServiceView(t *testing.T) {
	svc := newTestService(t, testutil.NewStubSource(testutil.SampleObservations()), nil)

	view, err := svc.View(context.Background(), domain.Selection{Sector: "IT", Compare: "TCS"})
	require.NoError(t, err)

	assert.Equal(t, "Indian Market Sentiment Tracker", view.Title)
	assert.Equal(t, "Infosys", view.DeepDive.Selection.Company)
	assert.Equal(t, "TCS", view.DeepDive.Selection.Compare)
	assert.Len(t, view.Histogram, 15)
	assert.Len(t, view.Summary.TopPositive, 5)
}

func TestDatasetServiceQueries(t *testing.T) {
	svc := newTestService(t, testutil.NewStubSource(testutil.SampleObservations()), nil)
	ctx := context.Background()

	summary, err := svc.Summary(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Infosys", summary.TopPositive[0].Company)
	assert.Equal(t, "Tata Steel", summary.TopNegative[0].Company)

	rows, err := svc.Snapshot(ctx)
	require.NoError(t, err)
	assert.Len(t, rows, 8)

	stats, err := svc.SectorPerformance(ctx)
	require.NoError(t, err)
	assert.Equal(t, "IT", stats[0].Sector)

	bins, err := svc.Histogram(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, bins, 15)
	bins, err = svc.Histogram(ctx, 4)
	require.NoError(t, err)
	assert.Len(t, bins, 4)

	companies, err := svc.Companies(ctx, "Banking")
	require.NoError(t, err)
	assert.Equal(t, []string{"HDFC Bank", "ICICI Bank"}, companies)

	sectors, err := svc.Sectors(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Banking", "IT", "Metals", "Pharma"}, sectors)
}

func TestDatasetServiceCompanyTrend(t *testing.T) {
	svc := newTestService(t, testutil.NewStubSource(testutil.SampleObservations()), nil)
	ctx := context.Background()

	tests := []struct {
		name        string
		company     string
		compare     string
		wantErr     error
		wantCompare bool
	}{
		{name: "single company", company: "Infosys"},
		{name: "with compare", company: "Infosys", compare: "TCS", wantCompare: true},
		{name: "none compare", company: "Infosys", compare: domain.NoCompare},
		{name: "self compare ignored", company: "Infosys", compare: "Infosys"},
		{name: "unknown company", company: "Wipro", wantErr: ErrCompanyNotFound},
		{name: "unknown compare", company: "Infosys", compare: "Wipro", wantErr: ErrCompanyNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trend, err := svc.CompanyTrend(ctx, tt.company, tt.compare)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.company, trend.Metric.Company)
			assert.NotEmpty(t, trend.Primary.Points)
			assert.Equal(t, tt.wantCompare, trend.Compare != nil)
		})
	}
}

func TestDatasetServiceExport(t *testing.T) {
	svc := newTestService(t, testutil.NewStubSource(testutil.SampleObservations()), nil)
	ctx := context.Background()

	var buf bytes.Buffer
	require.NoError(t, svc.Export(ctx, &buf, "csv"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("Company,Sector,Score,Month,Year\nInfosys,IT,0.62,Jul,2024\n")))

	buf.Reset()
	require.NoError(t, svc.Export(ctx, &buf, "xlsx"))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("PK")), "xlsx is a zip archive")

	err := svc.Export(ctx, &buf, "pdf")
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
