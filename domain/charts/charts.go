// Package charts holds the data extracted for charts: amounts per category and series,
// and binned frequencies.
package charts

import (
	"tabstat/domain/design"
)

// Amount is one category of one series.
type Amount struct {
	Category string  `json:"category"`
	Value    float64 `json:"value"`
	Freq     int64   `json:"freq"`
	// Pct is the share of the series' records in this category.
	Pct float64 `json:"pct"`
}

// Series is one line, bar group or pie. A chart without a series variable has a single
// unlabelled series.
type Series struct {
	Label   string   `json:"label"`
	Amounts []Amount `json:"amounts"`
}

// Amounts is the data of a category chart. Every series lists every category, in the
// same order.
type Amounts struct {
	CategoryVariable string             `json:"category_variable"`
	SeriesVariable   string             `json:"series_variable,omitempty"`
	MeasureVariable  string             `json:"measure_variable,omitempty"`
	Metric           design.ChartMetric `json:"metric"`
	Categories       []string           `json:"categories"`
	Series           []Series           `json:"series"`
}

// Bin is a half-open interval [Lower, Upper); the last bin also holds its upper limit.
type Bin struct {
	Lower float64 `json:"lower"`
	Upper float64 `json:"upper"`
}

// HistogramChart is the binned values of one chart.
type HistogramChart struct {
	Label string  `json:"label"`
	N     int     `json:"n"`
	Freqs []int64 `json:"freqs"`
	// Normal is the normal curve at each bin midpoint scaled to the chart's total, or nil
	// when the values do not vary.
	Normal []float64 `json:"normal,omitempty"`
}

// Histogram is the data of one or more histograms sharing the same bins.
type Histogram struct {
	Variable      string           `json:"variable"`
	ChartVariable string           `json:"chart_variable,omitempty"`
	Bins          []Bin            `json:"bins"`
	Charts        []HistogramChart `json:"charts"`
	Excluded      int              `json:"excluded"`
}
