package testutil

import (
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"sentimentpulse/pkg/contracts/domain"
)

// SampleSheet is the sheet name used by the sample workbook
const SampleSheet = "Quarterly Sentiment"

// SampleHeader is the header row of the sample workbook
var SampleHeader = []interface{}{"Company", "Sector", "Month", "Year", "Overall_Score"}

// SampleRows returns the data rows of the sample workbook, deliberately
// out of chronological order.
//
// Latest scores per company:
//
//	Cipla      Pharma  Jul 2024 -0.20
//	HDFC Bank  Banking Apr 2024 -0.15
//	Hindalco   Metals  Apr 2024 -0.05
//	ICICI Bank Banking Apr 2024  0.35
//	Infosys    IT      Jul 2024  0.62
//	Sun Pharma Pharma  Apr 2024  0.05
//	TCS        IT      Apr 2024  0.20
//	Tata Steel Metals  Apr 2024 -0.55
func SampleRows() [][]interface{} {
	return [][]interface{}{
		{"Infosys", "IT", "Apr", 2024, 0.55},
		{"Infosys", "IT", "Jan", 2024, 0.40},
		{"Infosys", "IT", "Jul", 2024, 0.62},
		{"TCS", "IT", "Jan", 2024, 0.30},
		{"TCS", "IT", "Apr", 2024, 0.20},
		{"HDFC Bank", "Banking", "Jan", 2024, 0.10},
		{"HDFC Bank", "Banking", "Apr", 2024, -0.15},
		{"ICICI Bank", "Banking", "Apr", 2024, 0.35},
		{"Tata Steel", "Metals", "Jan", 2024, -0.40},
		{"Tata Steel", "Metals", "Apr", 2024, -0.55},
		{"Hindalco", "Metals", "Apr", 2024, -0.05},
		{"Sun Pharma", "Pharma", "Apr", 2024, 0.05},
		{"Cipla", "Pharma", "Jul", 2024, -0.20},
	}
}

// SampleObservations returns SampleRows as observations, in row order
func SampleObservations() []domain.Observation {
	rows := SampleRows()
	out := make([]domain.Observation, 0, len(rows))
	for _, r := range rows {
		out = append(out, Observation(r[0].(string), r[1].(string), r[2].(string), r[3].(int), r[4].(float64)))
	}
	return out
}

// Observation builds an observation with its period date filled in
func Observation(company, sector, month string, year int, score float64) domain.Observation {
	date, err := time.Parse(domain.PeriodLayout, month+" "+strconv.Itoa(year))
	if err != nil {
		panic(err)
	}
	return domain.Observation{
		Company: company,
		Sector:  sector,
		Month:   month,
		Year:    year,
		Score:   score,
		Date:    date,
	}
}

// WriteWorkbook saves an XLSX file under t.TempDir() with a header row and
// data rows on the named sheet, and returns its path.
func WriteWorkbook(t *testing.T, sheet string, header []interface{}, rows [][]interface{}) string {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		t.Fatalf("failed to rename sheet: %v", err)
	}

	if header != nil {
		if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
			t.Fatalf("failed to write header: %v", err)
		}
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			t.Fatalf("failed to build cell name: %v", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, cell, &r); err != nil {
			t.Fatalf("failed to write row %d: %v", i+2, err)
		}
	}

	path := filepath.Join(t.TempDir(), "Sentiment_Analysis_Production.xlsx")
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("failed to save workbook: %v", err)
	}
	return path
}

// WriteSampleWorkbook writes the sample data set and returns its path
func WriteSampleWorkbook(t *testing.T) string {
	t.Helper()
	return WriteWorkbook(t, SampleSheet, SampleHeader, SampleRows())
}
