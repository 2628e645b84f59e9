// Package api contains API contract definitions for the sentiment dashboard.
// Version v1 represents the current stable API version.
package api

// DashboardRequest carries the deep-dive filter selection from the query string
type DashboardRequest struct {
	Sector  string `json:"sector" query:"sector" validate:"max=255,safetext"`
	Company string `json:"company" query:"company" validate:"max=255,safetext"`
	Compare string `json:"compare" query:"compare" validate:"max=255,safetext"`
}

// HistogramRequest selects the number of histogram bins
type HistogramRequest struct {
	Bins int `json:"bins" query:"bins" validate:"omitempty,min=1,max=100"`
}

// CompaniesRequest filters the company list by sector
type CompaniesRequest struct {
	Sector string `json:"sector" query:"sector" validate:"max=255,safetext"`
}

// TrendRequest selects a company trend with an optional comparison
type TrendRequest struct {
	Company string `json:"company" validate:"required,max=255,safetext"`
	Compare string `json:"compare" query:"compare" validate:"max=255,safetext"`
}

// DownloadRequest selects the snapshot export format
type DownloadRequest struct {
	Format string `json:"format" validate:"required,oneof=csv xlsx"`
}
