package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"sentimentpulse/internal/dataprocessing"
	"sentimentpulse/internal/exporter"
	"sentimentpulse/internal/infrastructure"
	"sentimentpulse/pkg/contracts/domain"
	"sentimentpulse/pkg/contracts/events"
)

// WebSocketHub receives reload notifications
type WebSocketHub interface {
	Broadcast(messageType string, data interface{})
}

// CompanyTrend is the deep-dive payload for one company
type CompanyTrend struct {
	Metric  domain.CompanyMetric `json:"metric"`
	Primary domain.TrendSeries   `json:"primary"`
	Compare *domain.TrendSeries  `json:"compare,omitempty"`
}

// DatasetStatus describes the cached dataset
type DatasetStatus struct {
	Loaded       bool      `json:"loaded"`
	Source       string    `json:"source"`
	Location     string    `json:"location"`
	Observations int       `json:"observations"`
	Companies    int       `json:"companies"`
	LoadedAt     time.Time `json:"loaded_at,omitempty"`
	Error        string    `json:"error,omitempty"`
}

// DatasetService loads the sentiment table once and serves aggregations
// from the cached copy until Reload is called.
type DatasetService struct {
	source     dataprocessing.Source
	summarizer *dataprocessing.Summarizer
	hub        WebSocketHub
	metrics    *infrastructure.DashboardMetrics
	logger     *slog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	gen      uint64
	loaded   bool
	dataset  *dataprocessing.Dataset
	loadErr  error
	loadedAt time.Time
}

// NewDatasetService creates a dataset service. hub and metrics may be nil.
func NewDatasetService(source dataprocessing.Source, summarizer *dataprocessing.Summarizer, hub WebSocketHub, metrics *infrastructure.DashboardMetrics, logger *slog.Logger) *DatasetService {
	if logger == nil {
		logger = slog.Default()
	}
	if summarizer == nil {
		summarizer = dataprocessing.NewSummarizer(logger, dataprocessing.DefaultSummarizerConfig())
	}

	logger.Info("DatasetService initialized",
		slog.String("source", source.Name()),
		slog.String("location", source.Location()))

	return &DatasetService{
		source:     source,
		summarizer: summarizer,
		hub:        hub,
		metrics:    metrics,
		logger:     logger.With(slog.String("component", "dataset_service")),
	}
}

// Dataset returns the cached dataset, loading it on first use. A failed
// load is cached as well and returned until Reload.
func (s *DatasetService) Dataset(ctx context.Context) (*dataprocessing.Dataset, error) {
	s.mu.RLock()
	if s.loaded {
		d, err := s.dataset, s.loadErr
		s.mu.RUnlock()
		return d, err
	}
	gen := s.gen
	s.mu.RUnlock()

	return s.loadShared(ctx, gen)
}

// Reload drops the cache, reads the source again and notifies subscribers.
// A load already in flight is not joined; its result is discarded.
func (s *DatasetService) Reload(ctx context.Context) (*dataprocessing.Dataset, error) {
	s.mu.Lock()
	s.gen++
	s.loaded = false
	gen := s.gen
	s.mu.Unlock()

	d, err := s.loadShared(ctx, gen)
	s.notify(d, err)
	return d, err
}

// loadShared collapses concurrent loads of one generation into one source
// read. Only the current generation may fill the cache.
func (s *DatasetService) loadShared(ctx context.Context, gen uint64) (*dataprocessing.Dataset, error) {
	ch := s.group.DoChan(strconv.FormatUint(gen, 10), func() (interface{}, error) {
		s.mu.RLock()
		if s.loaded && s.gen == gen {
			d, err := s.dataset, s.loadErr
			s.mu.RUnlock()
			return d, err
		}
		s.mu.RUnlock()

		// detached so one caller's cancellation does not fail the others
		d, err := s.load(context.WithoutCancel(ctx))

		s.mu.Lock()
		if s.gen == gen {
			s.loaded = true
			s.dataset = d
			s.loadErr = err
			s.loadedAt = time.Now()
		} else {
			s.logger.Debug("Discarded superseded load", slog.Uint64("generation", gen))
		}
		s.mu.Unlock()
		return d, err
	})

	select {
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*dataprocessing.Dataset), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (s *DatasetService) load(ctx context.Context) (*dataprocessing.Dataset, error) {
	start := time.Now()
	s.logger.InfoContext(ctx, "Loading sentiment data",
		slog.String("source", s.source.Name()),
		slog.String("location", s.source.Location()))

	obs, err := s.source.Load(ctx)
	if err == nil && len(obs) == 0 {
		err = ErrNoObservations
	}
	duration := time.Since(start)

	if err != nil {
		loadErr := &DataLoadError{Source: s.source.Name(), Location: s.source.Location(), Err: err}
		s.metrics.RecordDatasetLoad(ctx, s.source.Name(), duration, 0, loadErr)
		infrastructure.RecordError(ctx, loadErr)
		s.logger.ErrorContext(ctx, "Failed to load sentiment data",
			slog.String("error", err.Error()),
			slog.Duration("duration", duration))
		return nil, loadErr
	}

	d := dataprocessing.NewDataset(obs)
	s.metrics.RecordDatasetLoad(ctx, s.source.Name(), duration, d.Len(), nil)
	s.logger.InfoContext(ctx, "Sentiment data loaded",
		slog.Int("observations", d.Len()),
		slog.Int("companies", len(d.Latest())),
		slog.Duration("duration", duration))
	return d, nil
}

func (s *DatasetService) notify(d *dataprocessing.Dataset, err error) {
	if s.hub == nil {
		return
	}
	update := events.DataUpdate{
		Source:   s.source.Name(),
		LoadedAt: time.Now().UTC(),
	}
	if err != nil {
		update.Error = UserMessage(err)
	} else {
		update.Observations = d.Len()
		update.Companies = len(d.Latest())
	}
	s.hub.Broadcast(string(events.MessageTypeDataUpdate), update)
}

// Status reports what is cached without triggering a load
func (s *DatasetService) Status() DatasetStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := DatasetStatus{
		Loaded:   s.loaded && s.loadErr == nil,
		Source:   s.source.Name(),
		Location: s.source.Location(),
	}
	if !s.loaded {
		return status
	}
	status.LoadedAt = s.loadedAt
	if s.loadErr != nil {
		status.Error = UserMessage(s.loadErr)
		return status
	}
	status.Observations = s.dataset.Len()
	status.Companies = len(s.dataset.Latest())
	return status
}

// View assembles the full dashboard for a selection
func (s *DatasetService) View(ctx context.Context, sel domain.Selection) (domain.DashboardView, error) {
	d, err := s.Dataset(ctx)
	if err != nil {
		s.metrics.RecordRender(ctx, "error")
		return domain.DashboardView{}, err
	}
	view := s.summarizer.BuildView(d, sel)
	s.metrics.RecordRender(ctx, "ok")
	return view, nil
}

// Summary returns the three metric cards
func (s *DatasetService) Summary(ctx context.Context) (domain.Summary, error) {
	d, err := s.Dataset(ctx)
	if err != nil {
		return domain.Summary{}, err
	}
	return s.summarizer.Summary(d), nil
}

// Snapshot returns the latest row per company ordered by score
func (s *DatasetService) Snapshot(ctx context.Context) ([]domain.Observation, error) {
	d, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return d.GridRows(), nil
}

// SectorPerformance returns the mean and company count of every sector
func (s *DatasetService) SectorPerformance(ctx context.Context) ([]domain.SectorStat, error) {
	d, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return d.SectorPerformance(), nil
}

// Histogram bins the latest scores. Zero bins uses the configured count.
func (s *DatasetService) Histogram(ctx context.Context, bins int) ([]domain.HistogramBin, error) {
	d, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	if bins <= 0 {
		bins = s.summarizer.Config().Bins
	}
	return d.Histogram(bins), nil
}

// Companies lists the companies of a sector
func (s *DatasetService) Companies(ctx context.Context, sector string) ([]string, error) {
	d, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return d.Companies(sector), nil
}

// Sectors lists the distinct sectors
func (s *DatasetService) Sectors(ctx context.Context) ([]string, error) {
	d, err := s.Dataset(ctx)
	if err != nil {
		return nil, err
	}
	return d.Sectors(), nil
}

// CompanyTrend returns the history and current score of a company, with an
// optional second company for comparison.
func (s *DatasetService) CompanyTrend(ctx context.Context, company, compare string) (CompanyTrend, error) {
	d, err := s.Dataset(ctx)
	if err != nil {
		return CompanyTrend{}, err
	}

	metric, ok := d.CompanyMetric(company)
	if !ok {
		return CompanyTrend{}, &CompanyNotFoundError{Company: company}
	}
	primary, _ := d.Trend(company)
	result := CompanyTrend{Metric: metric, Primary: primary}

	if compare != "" && compare != domain.NoCompare && compare != company {
		series, ok := d.Trend(compare)
		if !ok {
			return CompanyTrend{}, &CompanyNotFoundError{Company: compare}
		}
		result.Compare = &series
	}
	return result, nil
}

// Export writes the snapshot table in csv or xlsx format
func (s *DatasetService) Export(ctx context.Context, w io.Writer, format string) error {
	if format != exporter.FormatCSV && format != exporter.FormatXLSX {
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	rows, err := s.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := exporter.WriteSnapshot(w, format, rows); err != nil {
		return fmt.Errorf("failed to export snapshot: %w", err)
	}
	s.metrics.RecordExport(ctx, format)
	return nil
}

// UserMessage is the text shown to dashboard users for a load failure
func UserMessage(err error) string {
	var loadErr *DataLoadError
	if errors.As(err, &loadErr) {
		return loadErr.Message()
	}
	return err.Error()
}
