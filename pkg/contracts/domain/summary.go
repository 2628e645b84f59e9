package domain

import "time"

// RankedEntry is one line in a ranked list such as Top Positive
type RankedEntry struct {
	Company string  `json:"company"`
	Sector  string  `json:"sector"`
	Score   float64 `json:"score"`
}

// Positive reports whether the entry should be shown in the positive colour
func (e RankedEntry) Positive() bool {
	return e.Score > 0
}

// SectorStat aggregates the latest scores of the companies in one sector
type SectorStat struct {
	Sector string  `json:"sector"`
	Mean   float64 `json:"mean"`
	Count  int     `json:"count"`
}

// Positive reports whether the sector mean should be shown in the positive colour
func (s SectorStat) Positive() bool {
	return s.Mean > 0
}

// HistogramBin is a half-open score interval [Lower, Upper); the last bin
// of a histogram is closed on both ends.
type HistogramBin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
	Count int     `json:"count"`
}

// TrendPoint is a single point of a company's score history
type TrendPoint struct {
	Date   time.Time `json:"date"`
	Period string    `json:"period"`
	Score  float64   `json:"score"`
}

// TrendSeries is the chronological score history of one company
type TrendSeries struct {
	Company string       `json:"company"`
	Points  []TrendPoint `json:"points"`
}

// CompanyMetric is the "Current Score" card of the deep-dive section
type CompanyMetric struct {
	Company string  `json:"company"`
	Sector  string  `json:"sector"`
	Period  string  `json:"period"`
	Month   string  `json:"month"`
	Year    int     `json:"year"`
	Score   float64 `json:"score"`
}

// Summary holds the three metric cards at the top of the dashboard
type Summary struct {
	TopPositive    []RankedEntry `json:"top_positive"`
	TopNegative    []RankedEntry `json:"top_negative"`
	SectorAverages []SectorStat  `json:"sector_averages"`
}
