package dataprocessing

import (
	"math"
	"sort"

	"sentimentpulse/pkg/contracts/domain"
)

// Dataset is an immutable, sorted table of sentiment observations with the
// aggregations the dashboard needs. It is safe for concurrent readers.
type Dataset struct {
	observations []domain.Observation
	latest       []domain.Observation
	byCompany    map[string][]domain.Observation
	sectors      []string
}

// NewDataset copies observations and sorts them by company then date.
// Rows with equal company and date keep their input order.
func NewDataset(observations []domain.Observation) *Dataset {
	obs := make([]domain.Observation, len(observations))
	copy(obs, observations)

	sort.SliceStable(obs, func(i, j int) bool {
		if obs[i].Company != obs[j].Company {
			return obs[i].Company < obs[j].Company
		}
		return obs[i].Date.Before(obs[j].Date)
	})

	d := &Dataset{
		observations: obs,
		byCompany:    groupByCompany(obs),
	}
	d.latest = d.computeLatest()
	d.sectors = uniqueSorted(obs, func(o domain.Observation) string { return o.Sector })
	return d
}

// groupByCompany preserves the sorted order within each company
func groupByCompany(obs []domain.Observation) map[string][]domain.Observation {
	groups := make(map[string][]domain.Observation)
	for _, o := range obs {
		groups[o.Company] = append(groups[o.Company], o)
	}
	return groups
}

// computeLatest picks the maximum-date row per company. Because each group
// is stably sorted by date, the last element is the latest and, on ties,
// the one that appeared last in the input.
func (d *Dataset) computeLatest() []domain.Observation {
	latest := make([]domain.Observation, 0, len(d.byCompany))
	for _, rows := range d.byCompany {
		latest = append(latest, rows[len(rows)-1])
	}
	sort.Slice(latest, func(i, j int) bool {
		return latest[i].Company < latest[j].Company
	})
	return latest
}

// Len returns the number of observations
func (d *Dataset) Len() int {
	return len(d.observations)
}

// Latest returns one observation per company, its most recent period,
// sorted by company name.
func (d *Dataset) Latest() []domain.Observation {
	out := make([]domain.Observation, len(d.latest))
	copy(out, d.latest)
	return out
}

// TopPositive returns the n companies with the highest latest score.
// Ties are broken by company name.
func (d *Dataset) TopPositive(n int) []domain.RankedEntry {
	return d.ranked(n, func(a, b domain.Observation) bool {
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		return a.Company < b.Company
	})
}

// TopNegative returns the n companies with the lowest latest score.
// Ties are broken by company name.
func (d *Dataset) TopNegative(n int) []domain.RankedEntry {
	return d.ranked(n, func(a, b domain.Observation) bool {
		if a.Score != b.Score {
			return a.Score < b.Score
		}
		return a.Company < b.Company
	})
}

func (d *Dataset) ranked(n int, less func(a, b domain.Observation) bool) []domain.RankedEntry {
	rows := d.Latest()
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })

	if n < 0 {
		n = 0
	}
	if n > len(rows) {
		n = len(rows)
	}

	out := make([]domain.RankedEntry, 0, n)
	for _, r := range rows[:n] {
		out = append(out, domain.RankedEntry{Company: r.Company, Sector: r.Sector, Score: r.Score})
	}
	return out
}

// SectorPerformance returns the mean latest score and company count of
// every sector, highest mean first. Ties are broken by sector name.
func (d *Dataset) SectorPerformance() []domain.SectorStat {
	type acc struct {
		sum   float64
		count int
	}
	bySector := make(map[string]*acc)
	for _, o := range d.latest {
		a, ok := bySector[o.Sector]
		if !ok {
			a = &acc{}
			bySector[o.Sector] = a
		}
		a.sum += o.Score
		a.count++
	}

	stats := make([]domain.SectorStat, 0, len(bySector))
	for sector, a := range bySector {
		stats = append(stats, domain.SectorStat{
			Sector: sector,
			Mean:   a.sum / float64(a.count),
			Count:  a.count,
		})
	}
	sort.Slice(stats, func(i, j int) bool {
		if stats[i].Mean != stats[j].Mean {
			return stats[i].Mean > stats[j].Mean
		}
		return stats[i].Sector < stats[j].Sector
	})
	return stats
}

// SectorAverages returns the n best sectors by mean latest score
func (d *Dataset) SectorAverages(n int) []domain.SectorStat {
	stats := d.SectorPerformance()
	if n < 0 {
		n = 0
	}
	if n < len(stats) {
		stats = stats[:n]
	}
	return stats
}

// Histogram splits the latest scores into equal-width bins spanning the
// observed minimum and maximum. The maximum falls in the last bin. When
// every score is equal a single bin holds them all.
func (d *Dataset) Histogram(bins int) []domain.HistogramBin {
	return Histogram(scores(d.latest), bins)
}

// Histogram bins values into equal-width intervals over [min, max]
func Histogram(values []float64, bins int) []domain.HistogramBin {
	if len(values) == 0 || bins < 1 {
		return []domain.HistogramBin{}
	}

	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}

	if lo == hi {
		return []domain.HistogramBin{{Lower: lo, Upper: hi, Count: len(values)}}
	}

	width := (hi - lo) / float64(bins)
	out := make([]domain.HistogramBin, bins)
	for i := range out {
		// explicit conversions stop fused multiply-add, keeping edges identical across architectures
		out[i].Lower = lo + float64(float64(i)*width)
		out[i].Upper = lo + float64(float64(i+1)*width)
	}
	out[bins-1].Upper = hi

	for _, v := range values {
		idx := min(max(int((v-lo)/width), 0), bins-1)
		// division rounding can disagree with the stored edges
		for idx+1 < bins && v >= out[idx+1].Lower {
			idx++
		}
		for idx > 0 && v < out[idx].Lower {
			idx--
		}
		out[idx].Count++
	}
	return out
}

func scores(obs []domain.Observation) []float64 {
	out := make([]float64, len(obs))
	for i, o := range obs {
		out[i] = o.Score
	}
	return out
}

// Sectors returns the distinct sectors in ascending order
func (d *Dataset) Sectors() []string {
	out := make([]string, len(d.sectors))
	copy(out, d.sectors)
	return out
}

// Companies returns the distinct companies of a sector in ascending order.
// An empty sector or domain.AllSectors selects every company.
func (d *Dataset) Companies(sector string) []string {
	if sector == "" || sector == domain.AllSectors {
		return uniqueSorted(d.observations, func(o domain.Observation) string { return o.Company })
	}
	filtered := make([]domain.Observation, 0)
	for _, o := range d.observations {
		if o.Sector == sector {
			filtered = append(filtered, o)
		}
	}
	return uniqueSorted(filtered, func(o domain.Observation) string { return o.Company })
}

// Trend returns the chronological score history of a company
func (d *Dataset) Trend(company string) (domain.TrendSeries, bool) {
	rows, ok := d.byCompany[company]
	if !ok {
		return domain.TrendSeries{}, false
	}
	points := make([]domain.TrendPoint, len(rows))
	for i, r := range rows {
		points[i] = domain.TrendPoint{Date: r.Date, Period: r.Period(), Score: r.Score}
	}
	return domain.TrendSeries{Company: company, Points: points}, true
}

// CompanyMetric returns the latest reading of a company
func (d *Dataset) CompanyMetric(company string) (domain.CompanyMetric, bool) {
	rows, ok := d.byCompany[company]
	if !ok {
		return domain.CompanyMetric{}, false
	}
	last := rows[len(rows)-1]
	return domain.CompanyMetric{
		Company: last.Company,
		Sector:  last.Sector,
		Period:  last.Period(),
		Month:   last.Month,
		Year:    last.Year,
		Score:   last.Score,
	}, true
}

// GridRows returns the latest snapshot ordered by score, highest first.
// Ties are broken by company name.
func (d *Dataset) GridRows() []domain.Observation {
	rows := d.Latest()
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Score != rows[j].Score {
			return rows[i].Score > rows[j].Score
		}
		return rows[i].Company < rows[j].Company
	})
	return rows
}

func uniqueSorted(obs []domain.Observation, key func(domain.Observation) string) []string {
	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, o := range obs {
		k := key(o)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
