package charts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
	"tabstat/internal/tabulation"
)

func browsersIndex() *tabulation.Index {
	return tabulation.NewIndex([]string{"browser", "country"}, []dataset.Combination{
		{Values: []any{"Chrome", "NZ"}, Count: 3},
		{Values: []any{"Chrome", "UK"}, Count: 1},
		{Values: []any{"Firefox", "NZ"}, Count: 1},
		{Values: []any{"Firefox", nil}, Count: 5},
		{Values: []any{"Safari", "UK"}, Count: 3},
	})
}

func TestAmounts_SingleSeries(t *testing.T) {
	d := &design.AmountsDesign{Common: design.NewCommon("web"), CategoryVariable: "browser", CategorySort: design.SortDecreasing}

	a, err := Amounts(d, browsersIndex(), nil)
	require.NoError(t, err)
	assert.Equal(t, design.ChartFreq, a.Metric)
	assert.Equal(t, []string{"Firefox", "Chrome", "Safari"}, a.Categories)
	require.Len(t, a.Series, 1)
	assert.Equal(t, "", a.Series[0].Label)
	assert.Equal(t, int64(6), a.Series[0].Amounts[0].Freq)
	assert.Equal(t, 6.0, a.Series[0].Amounts[0].Value)
	assert.InDelta(t, 100*6/13.0, a.Series[0].Amounts[0].Pct, 1e-9)
}

func TestAmounts_SeriesDropNullsAndShareBySeries(t *testing.T) {
	d := &design.AmountsDesign{
		Common:           design.NewCommon("web"),
		CategoryVariable: "browser",
		SeriesVariable:   "country",
		Metric:           design.ChartPct,
		SeriesSort:       design.SortCustom,
	}
	d.SortOrders = design.CustomOrders{"country": {"UK"}}

	a, err := Amounts(d, browsersIndex(), d.SortOrders)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chrome", "Firefox", "Safari"}, a.Categories)
	require.Len(t, a.Series, 2)
	assert.Equal(t, "UK", a.Series[0].Label)
	assert.Equal(t, "NZ", a.Series[1].Label)

	nz := a.Series[1].Amounts
	assert.Equal(t, int64(3), nz[0].Freq)
	assert.InDelta(t, 75.0, nz[0].Value, 1e-9)
	assert.InDelta(t, 25.0, nz[1].Value, 1e-9)
	assert.Equal(t, 0.0, nz[2].Value)

	var sum float64
	for _, amount := range a.Series[0].Amounts {
		sum += amount.Pct
	}
	assert.InDelta(t, 100.0, sum, 1e-9)
}

func TestAmounts_UnknownVariable(t *testing.T) {
	d := &design.AmountsDesign{Common: design.NewCommon("web"), CategoryVariable: "device"}
	_, err := Amounts(d, browsersIndex(), nil)
	assert.ErrorIs(t, err, core.ErrVariableNotFound)
}

func TestMeasures_AverageAndSum(t *testing.T) {
	rows := [][]any{
		{"Chrome", "NZ", 4.0},
		{"Chrome", "NZ", 2.0},
		{"Chrome", "UK", "n/a"},
		{"Safari", "UK", 5},
		{nil, "UK", 9},
	}
	d := &design.AmountsDesign{
		Common:           design.NewCommon("web"),
		CategoryVariable: "browser",
		SeriesVariable:   "country",
		Metric:           design.ChartAvg,
		MeasureVariable:  "rating",
	}

	avg, err := Measures(d, rows, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Chrome", "Safari"}, avg.Categories)
	require.Len(t, avg.Series, 2)
	assert.Equal(t, "NZ", avg.Series[0].Label)
	assert.InDelta(t, 3.0, avg.Series[0].Amounts[0].Value, 1e-12)
	assert.Equal(t, 0.0, avg.Series[0].Amounts[1].Value)

	uk := avg.Series[1].Amounts
	assert.Equal(t, int64(1), uk[0].Freq, "non-numeric measures still count as records")
	assert.Equal(t, 0.0, uk[0].Value)
	assert.InDelta(t, 5.0, uk[1].Value, 1e-12)
	assert.InDelta(t, 50.0, uk[1].Pct, 1e-12)

	d.Metric = design.ChartSum
	sum, err := Measures(d, rows, nil)
	require.NoError(t, err)
	assert.InDelta(t, 6.0, sum.Series[0].Amounts[0].Value, 1e-12)
}

func TestMeasures_RejectsCountMetrics(t *testing.T) {
	d := &design.AmountsDesign{Common: design.NewCommon("web"), CategoryVariable: "browser"}
	_, err := Measures(d, nil, nil)
	assert.True(t, core.IsConfigurationError(err))

	d.Metric = design.ChartSum
	_, err = Measures(d, nil, nil)
	assert.True(t, core.IsInsufficientDataError(err))
}

func TestHistogram_SharedBins(t *testing.T) {
	var rows [][]any
	for i := 0; i < 8; i++ {
		rows = append(rows, []any{float64(i), "a"})
	}
	rows = append(rows, []any{7, "b"}, []any{"x", "b"}, []any{3, nil})
	d := &design.HistogramDesign{Common: design.NewCommon("web"), Variable: "age", ChartVariable: "grp", Bins: 4}

	h, err := Histogram(d, rows, nil)
	require.NoError(t, err)
	require.Len(t, h.Bins, 4)
	assert.Equal(t, 0.0, h.Bins[0].Lower)
	assert.Equal(t, 7.0, h.Bins[3].Upper)
	assert.Equal(t, 1, h.Excluded)

	require.Len(t, h.Charts, 2)
	assert.Equal(t, "grp: a", h.Charts[0].Label)
	assert.Equal(t, 8, h.Charts[0].N)
	assert.Equal(t, []int64{2, 2, 2, 2}, h.Charts[0].Freqs)
	assert.Equal(t, []int64{0, 0, 0, 1}, h.Charts[1].Freqs, "the top value falls in the last bin")
	assert.Nil(t, h.Charts[1].Normal)

	var curve float64
	for _, y := range h.Charts[0].Normal {
		curve += y
	}
	assert.InDelta(t, 8.0, curve, 1e-9)
}

func TestHistogram_DefaultBinsAndSingleValue(t *testing.T) {
	rows := make([][]any, 16)
	for i := range rows {
		rows[i] = []any{i}
	}
	h, err := Histogram(&design.HistogramDesign{Common: design.NewCommon("web"), Variable: "n"}, rows, nil)
	require.NoError(t, err)
	assert.Len(t, h.Bins, 5)
	require.Len(t, h.Charts, 1)
	assert.Equal(t, "", h.Charts[0].Label)

	var total int64
	for _, f := range h.Charts[0].Freqs {
		total += f
	}
	assert.Equal(t, int64(16), total)

	flat, err := Histogram(&design.HistogramDesign{Common: design.NewCommon("web"), Variable: "n"}, [][]any{{2}, {2}}, nil)
	require.NoError(t, err)
	require.Len(t, flat.Bins, 1)
	assert.Equal(t, 1.5, flat.Bins[0].Lower)
	assert.Equal(t, []int64{2}, flat.Charts[0].Freqs)
}

func TestHistogram_NoNumericValues(t *testing.T) {
	_, err := Histogram(&design.HistogramDesign{Common: design.NewCommon("web"), Variable: "n"}, [][]any{{nil}, {"a"}}, nil)
	assert.True(t, core.IsInsufficientDataError(err))
}
