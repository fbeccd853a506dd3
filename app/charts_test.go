package app

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"tabstat/domain/core"
	"tabstat/domain/design"
	"tabstat/domain/report"
)

func TestAmounts_FrequencyBySeries(t *testing.T) {
	f := newFixture(t)
	d := &design.AmountsDesign{Common: design.NewCommon("survey"), CategoryVariable: "country", SeriesVariable: "gender"}

	a, err := f.svc.Amounts(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"FR", "UK"}, a.Categories)
	require.Len(t, a.Series, 2)
	assert.Equal(t, "F", a.Series[0].Label)
	assert.Equal(t, int64(2), a.Series[0].Amounts[0].Freq)
	assert.Equal(t, int64(4), a.Series[0].Amounts[1].Freq)
	assert.InDelta(t, 100*4/6.0, a.Series[0].Amounts[1].Pct, 1e-9)
}

func TestAmounts_AverageOfMeasure(t *testing.T) {
	f := newFixture(t)
	d := &design.AmountsDesign{
		Common:           design.NewCommon("survey"),
		CategoryVariable: "grp",
		Metric:           design.ChartAvg,
		MeasureVariable:  "score",
	}

	a, err := f.svc.Amounts(context.Background(), d)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "c", "d"}, a.Categories)
	amounts := a.Series[0].Amounts
	assert.InDelta(t, 2.0, amounts[0].Value, 1e-12)
	assert.InDelta(t, 5.0, amounts[1].Value, 1e-12)
	assert.InDelta(t, 8.0, amounts[2].Value, 1e-12)
	assert.Equal(t, int64(1), amounts[3].Freq)
	assert.Equal(t, 0.0, amounts[3].Value)
}

func TestAmounts_UnknownMeasure(t *testing.T) {
	f := newFixture(t)
	d := &design.AmountsDesign{
		Common:           design.NewCommon("survey"),
		CategoryVariable: "grp",
		Metric:           design.ChartSum,
		MeasureVariable:  "height",
	}
	_, err := f.svc.Amounts(context.Background(), d)
	assert.ErrorIs(t, err, core.ErrVariableNotFound)
}

func TestHistogram_Score(t *testing.T) {
	f := newFixture(t)
	h, err := f.svc.Histogram(context.Background(), &design.HistogramDesign{Common: design.NewCommon("survey"), Variable: "score"})
	require.NoError(t, err)
	require.Len(t, h.Bins, 5)
	require.Len(t, h.Charts, 1)
	assert.Equal(t, []int64{2, 2, 1, 2, 2}, h.Charts[0].Freqs)
	assert.Equal(t, 9, h.Charts[0].N)
	assert.Equal(t, 1, h.Excluded)
}

func TestMakeOutput_ChartDocuments(t *testing.T) {
	f := newFixture(t)
	f.styles.On("Style", mock.Anything, "default").Return(completeStyle(), nil)

	bar, err := f.svc.MakeOutput(context.Background(), &design.AmountsDesign{Common: design.NewCommon("survey"), CategoryVariable: "country"})
	require.NoError(t, err)
	assert.Equal(t, report.KindChart, bar.Document.Kind)
	data, err := os.ReadFile(bar.Path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "<caption>FREQ of country</caption>")

	histo, err := f.svc.MakeOutput(context.Background(), &design.HistogramDesign{Common: design.NewCommon("survey"), Variable: "score", ChartVariable: "gender"})
	require.NoError(t, err)
	assert.Equal(t, report.KindHistogram, histo.Document.Kind)
	assert.Equal(t, []string{"score", "gender: F", "gender: F normal", "gender: M", "gender: M normal"}, histo.Document.Chart.Headers)
}
