package designfile

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabstat/domain/core"
	"tabstat/domain/design"
	"tabstat/domain/stats"
)

const batch = `
kind: cross_tab
table: survey
title: Country by gender
rows:
  - variable: country
    sort: custom
    total: true
    child:
      variable: age_group
columns:
  - variable: gender
    pct_metrics: [ROW_PCT, Col %]
sort_orders_file: orders.yaml
---
kind: frequency
table: survey
filter: WHERE rating IS NOT NULL
decimal_points: 1
rows:
  - variable: browser
include_column_percent: true
---
kind: anova
table: survey
grouping_variable: country
group_values: [Japan, Italy, Germany]
measure_variable: weight_start
sort_order: value
show_workings: true
---
kind: ttest_paired
table: survey
variable_a: weight_start
variable_b: weight_end
high_precision_required: true
---
kind: chi_square
table: survey
variable_a: country
variable_b: gender
sort_a: CUSTOM
sort_orders:
  country: [Japan, Italy]
`

func TestLoadBatch(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "designs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(batch), 0o644))

	designs, err := Load(path)
	require.NoError(t, err)
	require.Len(t, designs, 5)

	ct, ok := designs[0].(*design.CrossTabDesign)
	require.True(t, ok)
	assert.Equal(t, "default", ct.StyleName)
	assert.Equal(t, design.DefaultDecimalPoints, ct.DecimalPoints)
	assert.Equal(t, filepath.Join(dir, "orders.yaml"), ct.SortOrdersFile)
	assert.Equal(t, design.SortCustom, ct.Rows[0].Sort)
	assert.Equal(t, design.SortByValue, ct.Rows[0].Child.Sort)
	assert.Equal(t, design.OrientationRow, ct.Rows[0].Child.Orientation)
	assert.Equal(t, design.OrientationColumn, ct.Columns[0].Orientation)
	assert.Equal(t, []design.Metric{design.MetricRowPct, design.MetricColPct}, ct.Columns[0].PctMetrics)
	assert.Equal(t, []string{"country", "age_group", "gender"}, ct.Variables())

	freq := designs[1].(*design.FrequencyDesign)
	assert.True(t, freq.IncludeColumnPercent)
	assert.Equal(t, 1, freq.DecimalPoints)

	anova := designs[2].(*design.GroupedDesign)
	assert.Equal(t, stats.KindANOVA, anova.TestKind())
	assert.Len(t, anova.GroupValues, 3)
	assert.Equal(t, design.SortByValue, anova.SortOrder)
	assert.True(t, anova.ShowWorkings)

	paired := designs[3].(*design.PairedDesign)
	assert.Equal(t, stats.KindPairedT, paired.TestKind())
	assert.True(t, paired.HighPrecision)

	chi := designs[4].(*design.ChiSquareDesign)
	assert.Equal(t, []string{"Japan", "Italy"}, chi.SortOrders["country"])
}

func TestParseCharts(t *testing.T) {
	doc := `
kind: chart
table: survey
category_variable: browser
series_variable: country
metric: avg
measure_variable: rating
series_sort: custom
sort_orders:
  country: [NZ, UK]
---
kind: histogram
table: survey
variable: age
chart_variable: country
bins: 8
`
	designs, err := Parse([]byte(doc))
	require.NoError(t, err)
	require.Len(t, designs, 2)

	chart, ok := designs[0].(*design.AmountsDesign)
	require.True(t, ok)
	assert.Equal(t, design.ChartAvg, chart.Metric)
	assert.Equal(t, "rating", chart.MeasureVariable)
	assert.Equal(t, design.SortCustom, chart.SeriesSort)
	assert.Equal(t, []string{"browser", "country"}, chart.Variables())

	histo, ok := designs[1].(*design.HistogramDesign)
	require.True(t, ok)
	assert.Equal(t, "age", histo.Variable)
	assert.Equal(t, 8, histo.Bins)
}

func TestParseErrors(t *testing.T) {
	cases := map[string]string{
		"missing kind":      "table: survey",
		"unknown kind":      "kind: radar\ntable: survey",
		"histogram bins":    "kind: histogram\ntable: s\nvariable: a\nbins: 1000",
		"chart freq sort":   "kind: chart\ntable: s\ncategory_variable: a\nseries_variable: b\ncategory_sort: decreasing",
		"bad sort":          "kind: frequency\ntable: survey\nrows:\n  - variable: a\n    sort: sideways",
		"stats sort orders": "kind: pearson_r\ntable: s\nvariable_a: a\nvariable_b: b\nsort_orders:\n  a: [1]",
		"invalid":           "kind: [",
		"empty":             "",
		"metrics on rows":   "kind: cross_tab\ntable: s\nrows:\n  - variable: a\n    pct_metrics: [ROW_PCT]\ncolumns:\n  - variable: b",
	}
	for name, doc := range cases {
		_, err := Parse([]byte(doc))
		assert.True(t, core.IsConfigurationError(err), "%s: %v", name, err)
	}
}

func TestLoadWithDecimals(t *testing.T) {
	path := filepath.Join(t.TempDir(), "designs.yaml")
	doc := "kind: frequency\ntable: survey\nrows:\n  - variable: gender\n---\nkind: frequency\ntable: survey\ndecimal_points: 0\nrows:\n  - variable: gender\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o644))

	designs, err := LoadWithDecimals(path, 5)
	require.NoError(t, err)
	require.Len(t, designs, 2)
	assert.Equal(t, 5, designs[0].Settings().DecimalPoints)
	assert.Equal(t, 0, designs[1].Settings().DecimalPoints)
}
