package charts

import "encoding/json"

// Option is the subset of the ECharts option object used by the dashboard.
// Field names follow the ECharts JSON schema.
type Option struct {
	Tooltip *Tooltip  `json:"tooltip,omitempty"`
	Legend  *Legend   `json:"legend,omitempty"`
	Grid    *Grid     `json:"grid,omitempty"`
	XAxis   *Axis     `json:"xAxis,omitempty"`
	YAxis   *Axis     `json:"yAxis,omitempty"`
	Series  []*Series `json:"series"`
}

// Tooltip configures hover behaviour
type Tooltip struct {
	Trigger string `json:"trigger,omitempty"`
}

// Legend configures the series legend
type Legend struct {
	Show   bool   `json:"show"`
	Orient string `json:"orient,omitempty"`
	Top    string `json:"top,omitempty"`
	Left   string `json:"left,omitempty"`
}

// Grid sets the plot area margins
type Grid struct {
	Left   int  `json:"left"`
	Right  int  `json:"right"`
	Top    int  `json:"top"`
	Bottom int  `json:"bottom"`
	Label  bool `json:"containLabel"`
}

// Axis is a cartesian axis
type Axis struct {
	Type      string     `json:"type"`
	Name      string     `json:"name,omitempty"`
	Min       *float64   `json:"min,omitempty"`
	Max       *float64   `json:"max,omitempty"`
	SplitLine *SplitLine `json:"splitLine,omitempty"`
}

// SplitLine toggles axis grid lines
type SplitLine struct {
	Show bool `json:"show"`
}

// Series is a single chart series
type Series struct {
	Type       string      `json:"type"`
	Name       string      `json:"name,omitempty"`
	Data       interface{} `json:"data"`
	Symbol     string      `json:"symbol,omitempty"`
	SymbolSize int         `json:"symbolSize,omitempty"`
	BarWidth   string      `json:"barWidth,omitempty"`
	LineStyle  *LineStyle  `json:"lineStyle,omitempty"`
	ItemStyle  *ItemStyle  `json:"itemStyle,omitempty"`
	Label      *Label      `json:"label,omitempty"`
	MarkLine   *MarkLine   `json:"markLine,omitempty"`
	MarkArea   *MarkArea   `json:"markArea,omitempty"`

	// treemap only
	Breadcrumb *Toggle `json:"breadcrumb,omitempty"`
	Roam       *bool   `json:"roam,omitempty"`
	NodeClick  *bool   `json:"nodeClick,omitempty"`
}

// Toggle is an object with a single show flag
type Toggle struct {
	Show bool `json:"show"`
}

// LineStyle styles a line or mark line
type LineStyle struct {
	Color string  `json:"color,omitempty"`
	Width float64 `json:"width,omitempty"`
	Type  string  `json:"type,omitempty"`
}

// ItemStyle styles a bar, point or treemap node
type ItemStyle struct {
	Color       string  `json:"color,omitempty"`
	Opacity     float64 `json:"opacity,omitempty"`
	BorderColor string  `json:"borderColor,omitempty"`
	BorderWidth float64 `json:"borderWidth,omitempty"`
}

// Label configures series labels
type Label struct {
	Show      bool   `json:"show"`
	Formatter string `json:"formatter,omitempty"`
}

// MarkLine draws reference lines
type MarkLine struct {
	Silent    bool             `json:"silent"`
	Symbol    string           `json:"symbol,omitempty"`
	LineStyle *LineStyle       `json:"lineStyle,omitempty"`
	Label     *Label           `json:"label,omitempty"`
	Data      []MarkLineTarget `json:"data"`
}

// MarkLineTarget positions a mark line on one axis
type MarkLineTarget struct {
	XAxis *float64 `json:"xAxis,omitempty"`
	YAxis *float64 `json:"yAxis,omitempty"`
}

// MarkArea shades rectangular regions
type MarkArea struct {
	Silent bool             `json:"silent"`
	Data   [][2]MarkAreaEnd `json:"data"`
}

// MarkAreaEnd is one corner of a mark area
type MarkAreaEnd struct {
	YAxis     float64    `json:"yAxis"`
	ItemStyle *ItemStyle `json:"itemStyle,omitempty"`
}

// TreemapNode is a treemap leaf
type TreemapNode struct {
	Name      string     `json:"name"`
	Value     int        `json:"value"`
	Mean      float64    `json:"mean"`
	Label     *Label     `json:"label,omitempty"`
	ItemStyle *ItemStyle `json:"itemStyle,omitempty"`
}

// Point is a value-axis data item with its own style
type Point struct {
	Value     [2]interface{} `json:"value"`
	ItemStyle *ItemStyle     `json:"itemStyle,omitempty"`
}

// Chart pairs an option with the container it renders into
type Chart struct {
	ID     string `json:"id"`
	Height int    `json:"height"`
	Option Option `json:"option"`
}

// JSON encodes the option for embedding in a page
func (c Chart) JSON() ([]byte, error) {
	return json.Marshal(c.Option)
}

func float(v float64) *float64 {
	return &v
}

func boolean(v bool) *bool {
	return &v
}
