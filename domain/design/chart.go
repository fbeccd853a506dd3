package design

import (
	"strings"

	"tabstat/domain/core"
)

// ChartMetric is the amount a category chart plots.
type ChartMetric string

const (
	ChartFreq ChartMetric = "FREQ"
	ChartPct  ChartMetric = "PCT"
	ChartAvg  ChartMetric = "AVG"
	ChartSum  ChartMetric = "SUM"
)

// UnmarshalText accepts metric names case-insensitively.
func (m *ChartMetric) UnmarshalText(b []byte) error {
	*m = ChartMetric(strings.ToUpper(strings.TrimSpace(string(b))))
	return nil
}

// NeedsMeasure reports whether the metric aggregates a numeric measure variable.
func (m ChartMetric) NeedsMeasure() bool { return m == ChartAvg || m == ChartSum }

// AmountsDesign extracts the data behind bar, line, area and pie charts: one amount per
// category, optionally split into series.
type AmountsDesign struct {
	Common           `yaml:",inline"`
	CategoryVariable string      `yaml:"category_variable"`
	SeriesVariable   string      `yaml:"series_variable,omitempty"`
	Metric           ChartMetric `yaml:"metric"`
	MeasureVariable  string      `yaml:"measure_variable,omitempty"`
	CategorySort     SortOrder   `yaml:"category_sort"`
	SeriesSort       SortOrder   `yaml:"series_sort"`
}

func (d *AmountsDesign) Validate() error {
	if err := d.Common.validate(); err != nil {
		return err
	}
	if d.CategoryVariable == "" {
		return core.NewConfigurationError("category_variable is required")
	}
	if d.SeriesVariable == d.CategoryVariable {
		return core.NewConfigurationError("series_variable must differ from category_variable")
	}
	switch d.Metric {
	case "", ChartFreq, ChartPct:
		if d.MeasureVariable != "" {
			return core.NewConfigurationError("measure_variable is only used with AVG or SUM")
		}
	case ChartAvg, ChartSum:
		if d.MeasureVariable == "" {
			return core.NewConfigurationError("%s needs a measure_variable", d.Metric)
		}
	default:
		return core.NewConfigurationError("unknown chart metric %q", d.Metric)
	}
	switch d.CategorySort {
	case SortIncreasing, SortDecreasing:
		if d.SeriesVariable != "" {
			return core.NewConfigurationError("categories of a chart with series cannot be sorted by frequency")
		}
	}
	return valueOrCustom("series", d.SeriesSort)
}

// MetricOrDefault returns FREQ when no metric is set.
func (d *AmountsDesign) MetricOrDefault() ChartMetric {
	if d.Metric == "" {
		return ChartFreq
	}
	return d.Metric
}

// Variables returns the grouping variables, category first.
func (d *AmountsDesign) Variables() []string {
	if d.SeriesVariable == "" {
		return []string{d.CategoryVariable}
	}
	return []string{d.CategoryVariable, d.SeriesVariable}
}

// HistogramDesign bins a numeric variable, optionally once per value of a chart variable.
// Every chart shares the bins computed over all values.
type HistogramDesign struct {
	Common        `yaml:",inline"`
	Variable      string    `yaml:"variable"`
	ChartVariable string    `yaml:"chart_variable,omitempty"`
	ChartSort     SortOrder `yaml:"chart_sort"`
	Bins          int       `yaml:"bins,omitempty"` // 0 picks a bin count from the data
}

// MaxBins bounds the bin count of a histogram.
const MaxBins = 100

func (d *HistogramDesign) Validate() error {
	if err := d.Common.validate(); err != nil {
		return err
	}
	if d.Variable == "" {
		return core.NewConfigurationError("variable is required")
	}
	if d.ChartVariable == d.Variable {
		return core.NewConfigurationError("chart_variable must differ from variable")
	}
	if d.Bins < 0 || d.Bins > MaxBins {
		return core.NewConfigurationError("bins must be between 1 and %d, got %d", MaxBins, d.Bins)
	}
	return valueOrCustom("chart", d.ChartSort)
}

func valueOrCustom(what string, order SortOrder) error {
	switch order {
	case "", SortByValue, SortCustom:
		return nil
	}
	return core.NewConfigurationError("%s values can only be sorted by VALUE or CUSTOM, got %q", what, order)
}
