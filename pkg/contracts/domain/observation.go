package domain

import (
	"fmt"
	"time"
)

// PeriodLayout is the Go layout of a reporting period label, e.g. "Jan 2024"
const PeriodLayout = "Jan 2006"

// Observation is one sentiment reading for a company in a reporting period.
// It is the single row type shared by parsers, aggregations, exporters and
// the HTTP API.
//
// Usage:
//
//	obs := domain.Observation{
//	    Company: "Infosys",
//	    Sector:  "IT",
//	    Month:   "Jan",
//	    Year:    2024,
//	    Score:   0.42,
//	}
type Observation struct {
	// Company is the display name of the company as it appears in the workbook
	Company string `json:"company" csv:"Company" validate:"required,max=255"`

	// Sector is the industry the company belongs to
	Sector string `json:"sector" csv:"Sector" validate:"required,max=255"`

	// Month is the three-letter English abbreviation of the reporting month
	Month string `json:"month" csv:"Month" validate:"required,len=3"`

	// Year is the four-digit reporting year
	Year int `json:"year" csv:"Year" validate:"gte=1900,lte=2200"`

	// Score is the sentiment score; -1 is fully negative, +1 fully positive
	Score float64 `json:"score" csv:"Score" validate:"gte=-1,lte=1"`

	// Date is the first day of the reporting period, derived from Month and Year
	Date time.Time `json:"date" csv:"-"`
}

// Period returns the "Mon YYYY" label of the observation
func (o Observation) Period() string {
	return fmt.Sprintf("%s %d", o.Month, o.Year)
}

// Positive reports whether the score is strictly above zero
func (o Observation) Positive() bool {
	return o.Score > 0
}
