package http

import (
	"context"
	"io"

	"sentimentpulse/internal/dataprocessing"
	"sentimentpulse/internal/services"
	"sentimentpulse/pkg/contracts/domain"
)

// DatasetServiceInterface defines the dataset operations used by the handlers
type DatasetServiceInterface interface {
	View(ctx context.Context, sel domain.Selection) (domain.DashboardView, error)
	Summary(ctx context.Context) (domain.Summary, error)
	Snapshot(ctx context.Context) ([]domain.Observation, error)
	SectorPerformance(ctx context.Context) ([]domain.SectorStat, error)
	Histogram(ctx context.Context, bins int) ([]domain.HistogramBin, error)
	Companies(ctx context.Context, sector string) ([]string, error)
	CompanyTrend(ctx context.Context, company, compare string) (services.CompanyTrend, error)
	Export(ctx context.Context, w io.Writer, format string) error
	Reload(ctx context.Context) (*dataprocessing.Dataset, error)
	Status() services.DatasetStatus
}

var _ DatasetServiceInterface = (*services.DatasetService)(nil)
