package exporter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"sentimentpulse/pkg/contracts/domain"
)

// SnapshotSheet is the sheet name of the XLSX export
const SnapshotSheet = "Latest Snapshot"

// Export formats
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
)

// scoreNumFmt is the built-in "0.00" number format
const scoreNumFmt = 2

// SnapshotHeaders are the columns of the snapshot table
var SnapshotHeaders = []string{"Company", "Sector", "Score", "Month", "Year"}

// ContentType returns the MIME type of an export format
func ContentType(format string) string {
	switch format {
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "text/csv; charset=utf-8"
	}
}

// SnapshotFilename returns the download name for a format
func SnapshotFilename(format string) string {
	return "sentiment_snapshot." + format
}

// SnapshotRecords converts rows to CSV records in SnapshotHeaders order
func SnapshotRecords(rows []domain.Observation) [][]string {
	records := make([][]string, 0, len(rows))
	for _, r := range rows {
		records = append(records, []string{
			r.Company,
			r.Sector,
			formatScore(r.Score),
			r.Month,
			formatInt(r.Year),
		})
	}
	return records
}

// WriteSnapshot writes rows in the requested format
func WriteSnapshot(w io.Writer, format string, rows []domain.Observation) error {
	switch format {
	case FormatCSV:
		return WriteSnapshotCSV(w, rows)
	case FormatXLSX:
		return WriteSnapshotXLSX(w, rows)
	default:
		return fmt.Errorf("unsupported export format: %s", format)
	}
}

// WriteSnapshotCSV writes the snapshot table as CSV
func WriteSnapshotCSV(w io.Writer, rows []domain.Observation) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(SnapshotHeaders); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}
	if err := writer.WriteAll(SnapshotRecords(rows)); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}
	return nil
}

// WriteSnapshotXLSX writes the snapshot table as a workbook with numeric
// score cells shown to two decimals.
func WriteSnapshotXLSX(w io.Writer, rows []domain.Observation) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), SnapshotSheet); err != nil {
		return fmt.Errorf("failed to name sheet: %w", err)
	}

	header := make([]interface{}, len(SnapshotHeaders))
	for i, h := range SnapshotHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(SnapshotSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write headers: %w", err)
	}

	for i, r := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		row := []interface{}{r.Company, r.Sector, r.Score, r.Month, r.Year}
		if err := f.SetSheetRow(SnapshotSheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d: %w", i+2, err)
		}
	}

	if err := styleSnapshot(f, len(rows)); err != nil {
		return err
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

func styleSnapshot(f *excelize.File, n int) error {
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	if err := f.SetCellStyle(SnapshotSheet, "A1", "E1", bold); err != nil {
		return fmt.Errorf("failed to style headers: %w", err)
	}

	if n > 0 {
		score, err := f.NewStyle(&excelize.Style{NumFmt: scoreNumFmt})
		if err != nil {
			return fmt.Errorf("failed to create score style: %w", err)
		}
		last, err := excelize.CoordinatesToCellName(3, n+1)
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(SnapshotSheet, "C2", last, score); err != nil {
			return fmt.Errorf("failed to style scores: %w", err)
		}
	}

	if err := f.SetColWidth(SnapshotSheet, "A", "B", 24); err != nil {
		return err
	}
	return f.SetPanes(SnapshotSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}
