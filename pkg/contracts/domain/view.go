package domain

import "time"

// AllSectors is the sector filter value that selects every company
const AllSectors = "All Sectors"

// NoCompare is the compare filter value that disables the second trend line
const NoCompare = "None"

// Selection is the resolved state of the deep-dive filters
type Selection struct {
	Sector  string `json:"sector"`
	Company string `json:"company"`
	Compare string `json:"compare"`
}

// HasCompare reports whether a comparison company is selected
func (s Selection) HasCompare() bool {
	return s.Compare != "" && s.Compare != NoCompare
}

// Filters are the option lists of the deep-dive select boxes
type Filters struct {
	Sectors   []string `json:"sectors"`
	Companies []string `json:"companies"`
	Compare   []string `json:"compare"`
}

// DeepDive is the company-level section of the dashboard
type DeepDive struct {
	Selection Selection      `json:"selection"`
	Filters   Filters        `json:"filters"`
	Metric    *CompanyMetric `json:"metric,omitempty"`
	Primary   *TrendSeries   `json:"primary,omitempty"`
	Compare   *TrendSeries   `json:"compare,omitempty"`
}

// DashboardView is everything required to render one dashboard page
type DashboardView struct {
	Title       string         `json:"title"`
	Summary     Summary        `json:"summary"`
	Sectors     []SectorStat   `json:"sectors"`
	Histogram   []HistogramBin `json:"histogram"`
	DeepDive    DeepDive       `json:"deep_dive"`
	Grid        []Observation  `json:"grid"`
	Companies   int            `json:"companies"`
	Rows        int            `json:"rows"`
	GeneratedAt time.Time      `json:"generated_at"`
}
