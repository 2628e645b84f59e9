package charts

import (
	"fmt"
	"math"
	"time"

	"sentimentpulse/pkg/contracts/domain"
)

// Container heights in pixels
const (
	TreemapHeight   = 320
	HistogramHeight = 320
	TrendHeight     = 450
)

// Trend chart y-axis range and background bands
const (
	TrendAxisMin = -1.1
	TrendAxisMax = 1.1
	BandLimit    = 1.5
	BandOpacity  = 0.05
)

// SectorTreemap sizes each sector by its company count and colours it by
// the mean latest score.
func SectorTreemap(stats []domain.SectorStat) Chart {
	nodes := make([]TreemapNode, 0, len(stats))
	for _, s := range stats {
		nodes = append(nodes, TreemapNode{
			Name:  s.Sector,
			Value: s.Count,
			Mean:  s.Mean,
			Label: &Label{Show: true, Formatter: sectorLabel(s)},
			ItemStyle: &ItemStyle{
				Color: ScoreColor(s.Mean, ColorRangeMin, ColorRangeMax),
			},
		})
	}

	return Chart{
		ID:     "sector-map",
		Height: TreemapHeight,
		Option: Option{
			Tooltip: &Tooltip{Trigger: "item"},
			Series: []*Series{{
				Type:       "treemap",
				Name:       "Sectors",
				Data:       nodes,
				Breadcrumb: &Toggle{Show: false},
				Roam:       boolean(false),
				NodeClick:  boolean(false),
				Label:      &Label{Show: true, Formatter: "{b}"},
				ItemStyle:  &ItemStyle{BorderColor: "#ffffff", BorderWidth: 2},
			}},
		},
	}
}

// sectorLabel is the tile text: sector, mean score and company count
func sectorLabel(s domain.SectorStat) string {
	noun := "companies"
	if s.Count == 1 {
		noun = "company"
	}
	return fmt.Sprintf("{b}\n%+.2f · %d %s", s.Mean, s.Count, noun)
}

// ScoreHistogram plots the distribution of latest scores with a dotted
// reference line at zero.
func ScoreHistogram(bins []domain.HistogramBin) Chart {
	data := make([][2]float64, 0, len(bins))
	for _, b := range bins {
		data = append(data, [2]float64{(b.Lower + b.Upper) / 2, float64(b.Count)})
	}

	return Chart{
		ID:     "market-spread",
		Height: HistogramHeight,
		Option: Option{
			Tooltip: &Tooltip{Trigger: "axis"},
			Grid:    &Grid{Left: 10, Right: 10, Top: 20, Bottom: 10, Label: true},
			XAxis:   &Axis{Type: "value", Name: "Score", SplitLine: &SplitLine{Show: false}},
			YAxis:   &Axis{Type: "value", Name: "Companies"},
			Series: []*Series{{
				Type:      "bar",
				Name:      "Companies",
				Data:      data,
				BarWidth:  "90%",
				ItemStyle: &ItemStyle{Color: HistogramColor},
				MarkLine: &MarkLine{
					Silent:    true,
					Symbol:    "none",
					LineStyle: &LineStyle{Color: "#000000", Type: "dotted", Width: 1},
					Label:     &Label{Show: false},
					Data:      []MarkLineTarget{{XAxis: float(0)}},
				},
			}},
		},
	}
}

// TrendLine plots a company's score history and, when compare is not nil,
// a second company as a dotted line.
func TrendLine(primary domain.TrendSeries, compare *domain.TrendSeries) Chart {
	line := &Series{
		Type:       "line",
		Name:       primary.Company,
		Data:       trendPoints(primary, true),
		Symbol:     "circle",
		SymbolSize: 10,
		LineStyle:  &LineStyle{Color: PrimaryLineColor, Width: 4},
		ItemStyle:  &ItemStyle{Color: PrimaryLineColor},
		MarkArea: &MarkArea{
			Silent: true,
			Data: [][2]MarkAreaEnd{
				{
					{YAxis: 0, ItemStyle: &ItemStyle{Color: PositiveColor, Opacity: BandOpacity}},
					{YAxis: BandLimit},
				},
				{
					{YAxis: -BandLimit, ItemStyle: &ItemStyle{Color: NegativeColor, Opacity: BandOpacity}},
					{YAxis: 0},
				},
			},
		},
	}
	series := []*Series{line}

	if compare != nil {
		series = append(series, &Series{
			Type:       "line",
			Name:       compare.Company,
			Data:       trendPoints(*compare, false),
			Symbol:     "circle",
			SymbolSize: 6,
			LineStyle:  &LineStyle{Color: CompareLineColor, Width: 3, Type: "dotted"},
			ItemStyle:  &ItemStyle{Color: CompareLineColor},
		})
	}

	return Chart{
		ID:     "trend",
		Height: TrendHeight,
		Option: Option{
			Tooltip: &Tooltip{Trigger: "axis"},
			Legend:  &Legend{Show: true, Orient: "horizontal", Top: "top", Left: "right"},
			Grid:    &Grid{Left: 10, Right: 20, Top: 40, Bottom: 10, Label: true},
			XAxis:   &Axis{Type: "time"},
			YAxis: &Axis{
				Type: "value",
				Name: "Sentiment Score",
				Min:  float(TrendAxisMin),
				Max:  float(TrendAxisMax),
			},
			Series: series,
		},
	}
}

// trendPoints colours each marker by score when colored is set
func trendPoints(s domain.TrendSeries, colored bool) []Point {
	points := make([]Point, 0, len(s.Points))
	for _, p := range s.Points {
		pt := Point{Value: [2]interface{}{p.Date.Format(time.DateOnly), round2(p.Score)}}
		if colored {
			pt.ItemStyle = &ItemStyle{Color: ScoreColor(p.Score, ColorRangeMin, ColorRangeMax)}
		}
		points = append(points, pt)
	}
	return points
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
