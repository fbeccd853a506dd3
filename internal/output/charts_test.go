package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabstat/domain/charts"
	"tabstat/domain/core"
	"tabstat/domain/design"
	"tabstat/domain/report"
)

func TestAssembler_Amounts(t *testing.T) {
	data := &charts.Amounts{
		CategoryVariable: "browser",
		SeriesVariable:   "country",
		Metric:           design.ChartFreq,
		Categories:       []string{"Chrome", "Safari"},
		Series: []charts.Series{
			{Label: "NZ", Amounts: []charts.Amount{{Category: "Chrome", Freq: 3, Pct: 75}, {Category: "Safari", Freq: 1, Pct: 25}}},
			{Label: "UK", Amounts: []charts.Amount{{Category: "Chrome", Freq: 0}, {Category: "Safari", Freq: 2, Pct: 100}}},
		},
	}

	doc, err := NewAssembler().Amounts(data, testStyle(), Meta{Title: "Browsers", DecimalPoints: 1})
	require.NoError(t, err)
	assert.Equal(t, report.KindChart, doc.Kind)
	require.NotNil(t, doc.Chart)
	assert.Equal(t, "FREQ of browser and country", doc.Chart.Caption)
	assert.Equal(t, []string{"browser", "NZ", "UK"}, doc.Chart.Headers)
	assert.Equal(t, [][]string{{"Chrome", "3 (75.0%)", "0 (0.0%)"}, {"Safari", "1 (25.0%)", "2 (100.0%)"}}, doc.Chart.Rows)
}

func TestAssembler_AmountsSingleSeriesMeasure(t *testing.T) {
	data := &charts.Amounts{
		CategoryVariable: "browser",
		MeasureVariable:  "rating",
		Metric:           design.ChartAvg,
		Categories:       []string{"Chrome"},
		Series:           []charts.Series{{Amounts: []charts.Amount{{Category: "Chrome", Value: 3.26, Freq: 4}}}},
	}

	doc, err := NewAssembler().Amounts(data, testStyle(), Meta{DecimalPoints: 1})
	require.NoError(t, err)
	assert.Equal(t, "AVG of rating by browser", doc.Chart.Caption)
	assert.Equal(t, []string{"browser", "AVG"}, doc.Chart.Headers)
	assert.Equal(t, [][]string{{"Chrome", "3.3"}}, doc.Chart.Rows)
}

func TestAssembler_Histogram(t *testing.T) {
	data := &charts.Histogram{
		Variable: "age",
		Bins:     []charts.Bin{{Lower: 0, Upper: 5}, {Lower: 5, Upper: 10}},
		Charts: []charts.HistogramChart{
			{N: 3, Freqs: []int64{1, 2}, Normal: []float64{1.25, 1.75}},
		},
		Excluded: 2,
	}

	doc, err := NewAssembler().Histogram(data, testStyle(), Meta{DecimalPoints: 2})
	require.NoError(t, err)
	assert.Equal(t, report.KindHistogram, doc.Kind)
	assert.Equal(t, []string{"age", "Freq", "Freq normal"}, doc.Chart.Headers)
	assert.Equal(t, [][]string{{"0 to <5", "1", "1.25"}, {"5 to 10", "2", "1.75"}}, doc.Chart.Rows)
	assert.Contains(t, doc.Chart.Footnotes, "Freq: N = 3")
	assert.Contains(t, doc.Chart.Footnotes, "2 value(s) were excluded as missing or non-numeric.")
}

func TestAssembler_ChartNeedsData(t *testing.T) {
	_, err := NewAssembler().Amounts(nil, testStyle(), Meta{})
	assert.True(t, core.IsConfigurationError(err))
	_, err = NewAssembler().Histogram(&charts.Histogram{}, report.Style{Name: "bare"}, Meta{})
	assert.True(t, core.IsStyleError(err))
}
