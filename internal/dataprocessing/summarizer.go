package dataprocessing

import (
	"log/slog"
	"time"

	"sentimentpulse/pkg/contracts/domain"
)

// Summarizer turns a Dataset into the cards, charts and deep-dive section
// shown on the dashboard.
type Summarizer struct {
	logger *slog.Logger
	config SummarizerConfig
	now    func() time.Time
}

// SummarizerConfig holds configuration options for the Summarizer.
type SummarizerConfig struct {
	Title string // Page heading
	TopN  int    // Entries per ranked card
	Bins  int    // Histogram bin count
}

// DefaultSummarizerConfig returns the dashboard defaults
func DefaultSummarizerConfig() SummarizerConfig {
	return SummarizerConfig{
		Title: "Indian Market Sentiment Tracker",
		TopN:  5,
		Bins:  15,
	}
}

// NewSummarizer creates a summarizer. Zero config fields take defaults.
func NewSummarizer(logger *slog.Logger, config SummarizerConfig) *Summarizer {
	if logger == nil {
		logger = slog.Default()
	}
	defaults := DefaultSummarizerConfig()
	if config.Title == "" {
		config.Title = defaults.Title
	}
	if config.TopN <= 0 {
		config.TopN = defaults.TopN
	}
	if config.Bins <= 0 {
		config.Bins = defaults.Bins
	}
	return &Summarizer{
		logger: logger.With(slog.String("component", "summarizer")),
		config: config,
		now:    time.Now,
	}
}

// Config returns the effective configuration
func (s *Summarizer) Config() SummarizerConfig {
	return s.config
}

// Summary builds the Top Positive, Top Negative and Sector Average cards
func (s *Summarizer) Summary(d *Dataset) domain.Summary {
	return domain.Summary{
		TopPositive:    d.TopPositive(s.config.TopN),
		TopNegative:    d.TopNegative(s.config.TopN),
		SectorAverages: d.SectorAverages(s.config.TopN),
	}
}

// ResolveSelection clamps a requested selection to values present in the
// dataset and returns it with the matching filter option lists.
func (s *Summarizer) ResolveSelection(d *Dataset, req domain.Selection) (domain.Selection, domain.Filters) {
	sectors := d.Sectors()
	sel := domain.Selection{Sector: domain.AllSectors, Compare: domain.NoCompare}
	if contains(sectors, req.Sector) {
		sel.Sector = req.Sector
	}

	companies := d.Companies(sel.Sector)
	if contains(companies, req.Company) {
		sel.Company = req.Company
	} else if len(companies) > 0 {
		sel.Company = companies[0]
	}

	compare := make([]string, 0, len(companies))
	compare = append(compare, domain.NoCompare)
	for _, c := range companies {
		if c != sel.Company {
			compare = append(compare, c)
		}
	}
	if req.Compare != sel.Company && contains(compare, req.Compare) {
		sel.Compare = req.Compare
	}

	if req.Company != "" && req.Company != sel.Company {
		s.logger.Debug("company not in filtered list, using default",
			slog.String("requested", req.Company),
			slog.String("sector", sel.Sector),
			slog.String("selected", sel.Company))
	}

	filters := domain.Filters{
		Sectors:   append([]string{domain.AllSectors}, sectors...),
		Companies: companies,
		Compare:   compare,
	}
	return sel, filters
}

// DeepDive builds the company section for a selection
func (s *Summarizer) DeepDive(d *Dataset, req domain.Selection) domain.DeepDive {
	sel, filters := s.ResolveSelection(d, req)
	dive := domain.DeepDive{Selection: sel, Filters: filters}

	if sel.Company == "" {
		return dive
	}
	if metric, ok := d.CompanyMetric(sel.Company); ok {
		dive.Metric = &metric
	}
	if series, ok := d.Trend(sel.Company); ok {
		dive.Primary = &series
	}
	if sel.HasCompare() {
		if series, ok := d.Trend(sel.Compare); ok {
			dive.Compare = &series
		}
	}
	return dive
}

// BuildView assembles the complete dashboard for a selection
func (s *Summarizer) BuildView(d *Dataset, req domain.Selection) domain.DashboardView {
	latest := d.Latest()
	view := domain.DashboardView{
		Title:       s.config.Title,
		Summary:     s.Summary(d),
		Sectors:     d.SectorPerformance(),
		Histogram:   d.Histogram(s.config.Bins),
		DeepDive:    s.DeepDive(d, req),
		Grid:        d.GridRows(),
		Companies:   len(latest),
		Rows:        d.Len(),
		GeneratedAt: s.now().UTC(),
	}

	s.logger.Debug("dashboard view built",
		slog.Int("companies", view.Companies),
		slog.Int("rows", view.Rows),
		slog.String("company", view.DeepDive.Selection.Company))
	return view
}

func contains(values []string, v string) bool {
	if v == "" {
		return false
	}
	for _, x := range values {
		if x == v {
			return true
		}
	}
	return false
}
