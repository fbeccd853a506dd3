package output

import (
	"fmt"
	"strings"

	"tabstat/domain/report"
	"tabstat/domain/stats"
	"tabstat/internal/format"
)

func statsView(r *stats.Result, c colors, dp int) *report.StatsView {
	num := func(x float64) string { return format.Number(x, dp) }
	view := &report.StatsView{TestTitle: r.Kind.Title()}

	add := func(key, value string) {
		view.Summary = append(view.Summary, report.KeyValue{Key: key, Value: value})
	}
	add(r.StatisticName, num(r.Statistic))
	if len(r.DF) > 0 {
		dfs := make([]string, len(r.DF))
		for i, df := range r.DF {
			dfs[i] = num(df)
		}
		add("Degrees of freedom", strings.Join(dfs, ", "))
	}
	add("p value", format.PValue(r.PValue, dp))

	if e := r.Effect; e != nil {
		add("Mean difference", num(e.MeanDifference))
		add("Cohen's d", num(e.CohensD))
	}
	if rk := r.Rank; rk != nil {
		add("N", fmt.Sprint(rk.N))
		add("z", num(rk.Z))
	}
	if cd := r.Correlation; cd != nil {
		add("N", fmt.Sprint(cd.N))
		add("t", num(cd.T))
		add("Slope", num(cd.Slope))
		add("Intercept", num(cd.Intercept))
		add("r²", num(cd.RSquared))
	}
	if nd := r.Normality; nd != nil {
		add("N", fmt.Sprint(nd.N))
		add("Skew", num(nd.Skew))
		add("Excess kurtosis", num(nd.Kurtosis))
	}
	if ct := r.Contingency; ct != nil {
		add("Minimum expected count", num(ct.MinExpected))
		add("% cells with expected count < 5", format.Pct(ct.PctCellsBelow5, 1))
		view.Observed = contingencyView(ct.RowVariable, ct.ColVariable, ct.RowLabels, ct.ColLabels, ct.Observed, c, dp)
		view.Expected = contingencyView(ct.RowVariable, ct.ColVariable, ct.RowLabels, ct.ColLabels, ct.Expected, c, dp)
		if ct.PctCellsBelow5 > 20 {
			view.Footnotes = append(view.Footnotes, fmt.Sprintf(
				"%s of cells have an expected count below 5; the chi square approximation may be unreliable.",
				format.Pct(ct.PctCellsBelow5, 1)))
		}
	}

	if len(r.Groups) > 0 {
		ranked := r.Kind == stats.KindMannWhitney || r.Kind == stats.KindKruskalWallis
		view.GroupHeaders = []string{"Group", "N", "Mean", "Median", "SD", "Min", "Max"}
		if ranked {
			view.GroupHeaders = append(view.GroupHeaders, "Rank sum", "Mean rank")
		}
		for _, g := range r.Groups {
			row := []string{g.Label, fmt.Sprint(g.N), num(g.Mean), num(g.Median), num(g.SD), num(g.Min), num(g.Max)}
			if ranked {
				row = append(row, num(g.RankSum), num(g.MeanRank))
			}
			view.GroupRows = append(view.GroupRows, row)
		}
	}

	if r.Excluded > 0 {
		view.Footnotes = append(view.Footnotes, fmt.Sprintf("%d value(s) were excluded as missing or non-numeric.", r.Excluded))
	}
	if r.HighPrecision {
		view.Footnotes = append(view.Footnotes, "Computed with high precision arithmetic.")
	}
	return view
}

func contingencyView(rowVar, colVar string, rowLabels, colLabels []string, values [][]float64, c colors, dp int) *report.TableView {
	view := &report.TableView{HeaderRows: make([][]report.HeaderCell, 2)}
	corner := report.HeaderCell{Role: report.RoleCorner, ColSpan: 2, RowSpan: 2, Background: c.corner}
	variable := c.cell(colVar, report.RoleVariable, 0)
	variable.ColSpan = len(colLabels)
	view.HeaderRows[0] = []report.HeaderCell{corner, variable}
	for _, l := range colLabels {
		view.HeaderRows[1] = append(view.HeaderRows[1], c.cell(l, report.RoleValue, 0))
	}

	for i, label := range rowLabels {
		row := report.BodyRow{}
		if i == 0 {
			v := c.cell(rowVar, report.RoleVariable, 0)
			v.RowSpan = len(rowLabels)
			row.Labels = append(row.Labels, v)
		}
		row.Labels = append(row.Labels, c.cell(label, report.RoleValue, 0))
		for _, x := range values[i] {
			row.Values = append(row.Values, format.Number(x, dp))
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}
