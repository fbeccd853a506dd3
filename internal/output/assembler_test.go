package output

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tabstat/domain/core"
	"tabstat/domain/design"
	"tabstat/domain/report"
	"tabstat/domain/stats"
	"tabstat/domain/tabulation"
)

func testStyle() report.Style {
	tokens := map[string]string{}
	for _, t := range RequiredTokens() {
		tokens[t] = "#000000"
	}
	tokens[TokenFirstLevelFont] = "#ffffff"
	tokens[TokenOtherLevelFont] = "#333333"
	tokens[TokenCornerBackground] = "#eeeeee"
	return report.Style{Name: "test", Tokens: tokens}
}

func path(steps ...tabulation.Step) tabulation.Path {
	return tabulation.Path{Steps: steps}
}

func val(variable, value string) tabulation.Step {
	return tabulation.Step{Variable: variable, Value: value, Key: value, Label: value}
}

func total(variable string) tabulation.Step {
	return tabulation.Step{Variable: variable, Label: tabulation.TotalLabel, Total: true}
}

func sampleGrid() *tabulation.Grid {
	rows := []tabulation.Path{
		path(val("country", "Japan")),
		path(val("country", "Italy")),
		path(total("country")),
	}
	cols := []tabulation.Path{
		path(val("gender", "F"), val("age", "young")),
		path(val("gender", "F"), val("age", "old")),
		path(val("gender", "M"), val("age", "young")),
		path(val("gender", "M"), val("age", "old")),
	}
	metrics := make([][]design.Metric, len(cols))
	for i := range metrics {
		metrics[i] = []design.Metric{design.MetricFreq, design.MetricColPct}
	}
	cells := make([][]tabulation.Cell, len(rows))
	for r := range cells {
		cells[r] = make([]tabulation.Cell, len(cols))
		for c := range cells[r] {
			count := int64(10 + r + c)
			cells[r][c] = tabulation.Cell{Count: count, Pct: map[design.Metric]float64{design.MetricColPct: 25}}
		}
	}
	return &tabulation.Grid{RowPaths: rows, ColPaths: cols, ColMetrics: metrics, Cells: cells}
}

func TestTable_Layout(t *testing.T) {
	doc, err := NewAssembler().Table(sampleGrid(), testStyle(), Meta{Title: "Country by gender", DecimalPoints: 1})
	require.NoError(t, err)
	assert.Equal(t, report.KindCrossTab, doc.Kind)
	assert.Equal(t, "test", doc.StyleName)
	assert.False(t, doc.ID.String() == "")

	head := doc.Table.HeaderRows
	require.Len(t, head, 5)

	require.Len(t, head[0], 2)
	assert.Equal(t, report.RoleCorner, head[0][0].Role)
	assert.Equal(t, 2, head[0][0].ColSpan)
	assert.Equal(t, 5, head[0][0].RowSpan)
	assert.Equal(t, "#eeeeee", head[0][0].Background)
	assert.Equal(t, "gender", head[0][1].Text)
	assert.Equal(t, 8, head[0][1].ColSpan)
	assert.Equal(t, "#ffffff", head[0][1].FontColor)

	require.Len(t, head[1], 2)
	assert.Equal(t, "F", head[1][0].Text)
	assert.Equal(t, 4, head[1][0].ColSpan)

	require.Len(t, head[2], 2)
	assert.Equal(t, "age", head[2][1].Text)
	assert.Equal(t, "#333333", head[2][1].FontColor)
	assert.Equal(t, 1, head[2][1].Level)

	require.Len(t, head[3], 4)
	assert.Equal(t, "old", head[3][3].Text)
	assert.Equal(t, 2, head[3][3].ColSpan)

	require.Len(t, head[4], 8)
	assert.Equal(t, "Freq", head[4][0].Text)
	assert.Equal(t, "Col %", head[4][1].Text)

	body := doc.Table.Rows
	require.Len(t, body, 3)
	require.Len(t, body[0].Labels, 2)
	assert.Equal(t, "country", body[0].Labels[0].Text)
	assert.Equal(t, 3, body[0].Labels[0].RowSpan)
	assert.Equal(t, "Japan", body[0].Labels[1].Text)
	require.Len(t, body[1].Labels, 1)
	assert.Equal(t, "Italy", body[1].Labels[0].Text)

	assert.True(t, body[2].Total)
	assert.Equal(t, report.RoleTotal, body[2].Labels[0].Role)
	assert.Equal(t, tabulation.TotalLabel, body[2].Labels[0].Text)

	assert.Equal(t, []string{"10", "25.0%", "11", "25.0%", "12", "25.0%", "13", "25.0%"}, body[0].Values)
}

func TestTable_NestedRowSpans(t *testing.T) {
	rows := []tabulation.Path{
		path(val("country", "Japan"), val("gender", "F")),
		path(val("country", "Japan"), val("gender", "M")),
		path(val("country", "Italy"), val("gender", "F")),
		path(val("country", "Italy"), total("gender")),
	}
	cols := []tabulation.Path{{}}
	cells := make([][]tabulation.Cell, len(rows))
	for i := range cells {
		cells[i] = []tabulation.Cell{{Count: int64(i)}}
	}
	grid := &tabulation.Grid{RowPaths: rows, ColPaths: cols, ColMetrics: [][]design.Metric{{design.MetricFreq}}, Cells: cells}

	doc, err := NewAssembler().Table(grid, testStyle(), Meta{Kind: report.KindFrequency})
	require.NoError(t, err)
	assert.Equal(t, report.KindFrequency, doc.Kind)
	require.Len(t, doc.Table.HeaderRows, 1)

	body := doc.Table.Rows
	// country variable, Japan, gender variable, F
	require.Len(t, body[0].Labels, 4)
	assert.Equal(t, 4, body[0].Labels[0].RowSpan)
	assert.Equal(t, 2, body[0].Labels[1].RowSpan)
	assert.Equal(t, 2, body[0].Labels[2].RowSpan)
	// M only
	require.Len(t, body[1].Labels, 1)
	assert.Equal(t, "M", body[1].Labels[0].Text)
	// Italy, gender variable, F
	require.Len(t, body[2].Labels, 3)
	assert.Equal(t, "Italy", body[2].Labels[0].Text)
	assert.Equal(t, "#ffffff", body[2].Labels[0].FontColor)
	assert.Equal(t, "#333333", body[2].Labels[2].FontColor)
	assert.Equal(t, []string{"3"}, body[3].Values)
}

func TestUnresolvedTokenIsStyleError(t *testing.T) {
	style := testStyle()
	delete(style.Tokens, TokenFootnoteFont)

	_, err := NewAssembler().Table(sampleGrid(), style, Meta{})
	require.Error(t, err)
	assert.True(t, core.IsStyleError(err))
	assert.Contains(t, err.Error(), TokenFootnoteFont)

	_, err = NewAssembler().Stats(&stats.Result{Kind: stats.KindANOVA}, style, Meta{})
	assert.True(t, core.IsStyleError(err))
}

func chiSquareResult() *stats.Result {
	return &stats.Result{
		Kind:          stats.KindChiSquare,
		StatisticName: "Chi Square",
		Statistic:     20.0 / 3,
		DF:            []float64{1},
		PValue:        0.0098,
		Excluded:      2,
		Contingency: &stats.ContingencyDetail{
			RowVariable: "country", ColVariable: "gender",
			RowLabels: []string{"Japan", "Italy"}, ColLabels: []string{"Female", "Male"},
			Observed:       [][]float64{{20, 10}, {10, 20}},
			Expected:       [][]float64{{15, 15}, {15, 15}},
			Total:          60,
			MinExpected:    15,
			PctCellsBelow5: 0,
		},
		Narrative:     "## Worked Example: Chi Square\n\n| a | b |\n|---|---|\n| 1 | 2 |\n",
		DecimalPoints: 3,
	}
}

func TestStats_ChiSquare(t *testing.T) {
	doc, err := NewAssembler().Stats(chiSquareResult(), testStyle(), Meta{})
	require.NoError(t, err)
	assert.Equal(t, report.KindStats, doc.Kind)
	assert.Equal(t, "Chi Square Test of Independence", doc.Title)

	view := doc.Stats
	require.NotNil(t, view)
	assert.Equal(t, report.KeyValue{Key: "Chi Square", Value: "6.667"}, view.Summary[0])
	assert.Equal(t, report.KeyValue{Key: "Degrees of freedom", Value: "1"}, view.Summary[1])
	assert.Equal(t, report.KeyValue{Key: "p value", Value: "0.01"}, view.Summary[2])

	require.NotNil(t, view.Observed)
	require.NotNil(t, view.Expected)
	assert.Equal(t, "gender", view.Observed.HeaderRows[0][1].Text)
	assert.Equal(t, 2, view.Observed.HeaderRows[0][1].ColSpan)
	assert.Equal(t, []string{"20", "10"}, view.Observed.Rows[0].Values)
	assert.Equal(t, []string{"15", "15"}, view.Expected.Rows[1].Values)
	assert.Equal(t, "country", view.Observed.Rows[0].Labels[0].Text)
	assert.Len(t, view.Observed.Rows[1].Labels, 1)

	assert.Contains(t, view.Footnotes, "2 value(s) were excluded as missing or non-numeric.")
	assert.Contains(t, doc.NarrativeHTML, "<h2")
	assert.Contains(t, doc.NarrativeHTML, "<table>")
}

func TestStats_GroupsAndSmallP(t *testing.T) {
	r := &stats.Result{
		Kind:          stats.KindMannWhitney,
		StatisticName: "U",
		Statistic:     0,
		PValue:        0.0002,
		Rank:          &stats.RankDetail{N: 6, Z: 1.9640},
		Groups: []stats.GroupSummary{
			{Label: "a", N: 3, Mean: 2, Median: 2, SD: 1, Min: 1, Max: 3, RankSum: 6, MeanRank: 2},
			{Label: "b", N: 3, Mean: 5, Median: 5, SD: 1, Min: 4, Max: 6, RankSum: 15, MeanRank: 5},
		},
	}
	doc, err := NewAssembler().Stats(r, testStyle(), Meta{Title: "Scores", DecimalPoints: 2})
	require.NoError(t, err)
	assert.Equal(t, "Scores", doc.Title)
	assert.Equal(t, "< 0.001", doc.Stats.Summary[1].Value)
	assert.Equal(t, []string{"Group", "N", "Mean", "Median", "SD", "Min", "Max", "Rank sum", "Mean rank"}, doc.Stats.GroupHeaders)
	assert.Equal(t, []string{"b", "3", "5", "5", "1", "4", "6", "15", "5"}, doc.Stats.GroupRows[1])
	assert.Empty(t, doc.NarrativeHTML)
}

func TestFingerprint(t *testing.T) {
	a := NewAssembler()
	settings := map[string]any{"table": "survey", "rows": "country", "dp": 3}

	first, err := a.Stats(chiSquareResult(), testStyle(), Meta{Settings: settings})
	require.NoError(t, err)
	second, err := a.Stats(chiSquareResult(), testStyle(), Meta{Settings: map[string]any{"dp": 3, "rows": "country", "table": "survey"}})
	require.NoError(t, err)
	third, err := a.Stats(chiSquareResult(), testStyle(), Meta{Settings: map[string]any{"table": "survey", "rows": "gender", "dp": 3}})
	require.NoError(t, err)

	assert.Equal(t, first.Fingerprint, second.Fingerprint)
	assert.NotEqual(t, first.Fingerprint, third.Fingerprint)
	assert.NotEqual(t, first.ID, second.ID)
}
