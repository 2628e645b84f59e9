package dataprocessing

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/xuri/excelize/v2"

	"sentimentpulse/pkg/contracts/domain"
)

// Workbook column names
const (
	ColumnCompany          = "company"
	ColumnSector           = "sector"
	ColumnMonth            = "month"
	ColumnYear             = "year"
	ColumnOverallScore     = "overall_score"
	ColumnOverallSentiment = "overall_sentiment"
)

// scoreColumns lists the accepted score headers in order of preference
var scoreColumns = []string{ColumnOverallScore, ColumnOverallSentiment}

var rowValidator = newRowValidator()

func newRowValidator() *validator.Validate {
	v := validator.New()
	// Report workbook column names in validation errors
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := fld.Tag.Get("csv")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ColumnMap maps normalised header names to column indexes
type ColumnMap map[string]int

// ScoreColumn returns the index and header of the preferred score column
func (m ColumnMap) ScoreColumn() (int, string, bool) {
	for _, name := range scoreColumns {
		if idx, ok := m[name]; ok {
			return idx, name, true
		}
	}
	return 0, "", false
}

// MapHeader builds a ColumnMap from a header row. Names are matched
// case-insensitively with surrounding whitespace ignored and inner spaces
// treated as underscores. The first occurrence of a duplicate header wins.
func MapHeader(header []string) (ColumnMap, error) {
	columns := make(ColumnMap, len(header))
	for i, h := range header {
		name := normaliseHeader(h)
		if name == "" {
			continue
		}
		if _, seen := columns[name]; !seen {
			columns[name] = i
		}
	}

	for _, required := range []string{ColumnCompany, ColumnSector, ColumnMonth, ColumnYear} {
		if _, ok := columns[required]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, required)
		}
	}
	if _, _, ok := columns.ScoreColumn(); !ok {
		return nil, fmt.Errorf("%w: Overall_Score or Overall_Sentiment", ErrMissingColumn)
	}

	return columns, nil
}

func normaliseHeader(h string) string {
	return strings.Join(strings.Fields(strings.ToLower(h)), "_")
}

// ParseWorkbook reads sentiment observations from the named sheet of an
// XLSX workbook.
func ParseWorkbook(path, sheet string) ([]domain.Observation, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrFileNotFound, path)
		}
		return nil, fmt.Errorf("failed to stat data file: %w", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open workbook: %w", err)
	}
	defer f.Close()

	if idx, _ := f.GetSheetIndex(sheet); idx < 0 {
		return nil, fmt.Errorf("%w: %q (available: %s)", ErrSheetNotFound, sheet, strings.Join(f.GetSheetList(), ", "))
	}

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet %q: %w", sheet, err)
	}

	slog.Debug("Read sentiment sheet",
		slog.String("file", path),
		slog.String("sheet", sheet),
		slog.Int("rows", len(rows)))

	return ParseRows(rows)
}

// ParseRows converts a header row followed by data rows into observations.
// Blank rows are skipped; any other malformed row fails the whole parse.
func ParseRows(rows [][]string) ([]domain.Observation, error) {
	headerIdx := -1
	for i, row := range rows {
		if !isBlank(row) {
			headerIdx = i
			break
		}
	}
	if headerIdx < 0 {
		return nil, ErrEmptySheet
	}

	columns, err := MapHeader(rows[headerIdx])
	if err != nil {
		return nil, err
	}
	scoreIdx, scoreName, _ := columns.ScoreColumn()

	observations := make([]domain.Observation, 0, len(rows)-headerIdx-1)
	for i := headerIdx + 1; i < len(rows); i++ {
		row := rows[i]
		if isBlank(row) {
			continue
		}
		sheetRow := i + 1

		cell := func(idx int) string {
			if idx < len(row) {
				return strings.TrimSpace(row[idx])
			}
			return ""
		}

		year, err := ParseYear(cell(columns[ColumnYear]))
		if err != nil {
			return nil, &RowError{Row: sheetRow, Column: "Year", Err: err}
		}

		month, err := NormalizeMonth(cell(columns[ColumnMonth]))
		if err != nil {
			return nil, &RowError{Row: sheetRow, Column: "Month", Err: err}
		}

		date, err := ParsePeriod(month, year)
		if err != nil {
			return nil, &RowError{Row: sheetRow, Column: "Month", Err: err}
		}

		score, err := ParseScore(cell(scoreIdx))
		if err != nil {
			return nil, &RowError{Row: sheetRow, Column: scoreName, Err: err}
		}

		obs := domain.Observation{
			Company: cell(columns[ColumnCompany]),
			Sector:  cell(columns[ColumnSector]),
			Month:   month,
			Year:    year,
			Score:   score,
			Date:    date,
		}

		if err := rowValidator.Struct(obs); err != nil {
			return nil, &RowError{Row: sheetRow, Err: describeValidation(err)}
		}

		observations = append(observations, obs)
	}

	return observations, nil
}

func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			parts = append(parts, fmt.Sprintf("%s is required", fe.Field()))
		case "gte", "lte":
			parts = append(parts, fmt.Sprintf("%s %v is out of range", fe.Field(), fe.Value()))
		default:
			parts = append(parts, fmt.Sprintf("%s failed %s", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(parts, "; "))
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
