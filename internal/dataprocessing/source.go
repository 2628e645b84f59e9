package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"sentimentpulse/pkg/contracts/domain"
)

// Source loads the full set of sentiment observations
type Source interface {
	// Load reads every observation from the underlying store
	Load(ctx context.Context) ([]domain.Observation, error)
	// Name identifies the source kind for logs and metrics
	Name() string
	// Location describes where the data lives (file path or spreadsheet)
	Location() string
}

// WorkbookSource reads observations from a local XLSX workbook
type WorkbookSource struct {
	Path  string
	Sheet string
}

// NewWorkbookSource creates a source for the given workbook and sheet
func NewWorkbookSource(path, sheet string) *WorkbookSource {
	return &WorkbookSource{Path: path, Sheet: sheet}
}

// Load implements Source
func (s *WorkbookSource) Load(ctx context.Context) ([]domain.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return ParseWorkbook(s.Path, s.Sheet)
}

// Name implements Source
func (s *WorkbookSource) Name() string { return "xlsx" }

// Location implements Source
func (s *WorkbookSource) Location() string { return s.Path }

// ValuesFetcher returns the cell values of a spreadsheet range
type ValuesFetcher interface {
	FetchValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error)
}

// SheetsSource reads observations from a Google spreadsheet with the same
// layout as the workbook.
type SheetsSource struct {
	SpreadsheetID string
	Sheet         string
	Timeout       time.Duration

	fetcher ValuesFetcher
	logger  *slog.Logger
}

// NewSheetsSource creates a Google Sheets source backed by fetcher
func NewSheetsSource(fetcher ValuesFetcher, spreadsheetID, sheet string, timeout time.Duration, logger *slog.Logger) *SheetsSource {
	if logger == nil {
		logger = slog.Default()
	}
	return &SheetsSource{
		SpreadsheetID: spreadsheetID,
		Sheet:         sheet,
		Timeout:       timeout,
		fetcher:       fetcher,
		logger:        logger.With(slog.String("component", "sheets_source")),
	}
}

// Load implements Source
func (s *SheetsSource) Load(ctx context.Context) ([]domain.Observation, error) {
	if s.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.Timeout)
		defer cancel()
	}

	values, err := s.fetcher.FetchValues(ctx, s.SpreadsheetID, SheetRange(s.Sheet))
	if err != nil {
		return nil, fmt.Errorf("failed to fetch sheet %q: %w", s.Sheet, err)
	}

	s.logger.DebugContext(ctx, "Fetched spreadsheet values",
		slog.String("spreadsheet_id", s.SpreadsheetID),
		slog.String("sheet", s.Sheet),
		slog.Int("rows", len(values)))

	return ParseRows(CellsToRows(values))
}

// Name implements Source
func (s *SheetsSource) Name() string { return "sheets" }

// Location implements Source
func (s *SheetsSource) Location() string {
	return fmt.Sprintf("spreadsheet %s, sheet %q", s.SpreadsheetID, s.Sheet)
}

// SheetRange quotes a sheet title for use as an A1 range
func SheetRange(sheet string) string {
	return "'" + strings.ReplaceAll(sheet, "'", "''") + "'"
}

// CellsToRows converts Sheets API values into string rows
func CellsToRows(values [][]interface{}) [][]string {
	rows := make([][]string, len(values))
	for i, row := range values {
		cells := make([]string, len(row))
		for j, v := range row {
			cells[j] = cellString(v)
		}
		rows[i] = cells
	}
	return rows
}

func cellString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(val)
	default:
		return fmt.Sprint(val)
	}
}

// GoogleSheetsFetcher fetches values through the Sheets v4 API
type GoogleSheetsFetcher struct {
	service *sheets.Service
}

// NewGoogleSheetsFetcher creates a fetcher authenticated with a service
// account credentials file. Extra client options are appended.
func NewGoogleSheetsFetcher(ctx context.Context, credentialsFile string, opts ...option.ClientOption) (*GoogleSheetsFetcher, error) {
	clientOpts := make([]option.ClientOption, 0, len(opts)+1)
	if credentialsFile != "" {
		credentialsJSON, err := os.ReadFile(credentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read credentials file: %w", err)
		}
		clientOpts = append(clientOpts, option.WithCredentialsJSON(credentialsJSON))
	}
	clientOpts = append(clientOpts, opts...)

	service, err := sheets.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create sheets service: %w", err)
	}
	return &GoogleSheetsFetcher{service: service}, nil
}

// FetchValues implements ValuesFetcher
func (f *GoogleSheetsFetcher) FetchValues(ctx context.Context, spreadsheetID, readRange string) ([][]interface{}, error) {
	resp, err := f.service.Spreadsheets.Values.Get(spreadsheetID, readRange).
		ValueRenderOption("UNFORMATTED_VALUE").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}
