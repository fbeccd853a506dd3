package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"tabstat/app"
	"tabstat/domain/charts"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
	"tabstat/domain/report"
	result "tabstat/domain/stats"
	domain "tabstat/domain/tabulation"
	"tabstat/internal/format"
)

// newWriter prints the title on its own line; go-pretty wraps titles to the table width.
func newWriter(w io.Writer, title string) table.Writer {
	if title != "" {
		fmt.Fprintln(w, title)
	}
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	// variable names and value labels keep their case
	t.Style().Format.Header = text.FormatDefault
	t.Style().Format.Footer = text.FormatDefault
	return t
}

func tableName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func printSchema(w io.Writer, schema dataset.Schema) {
	t := newWriter(w, schema.Table)
	t.AppendHeader(table.Row{"Variable", "Kind"})
	for _, v := range schema.Variables {
		t.AppendRow(table.Row{v.Name, v.Kind})
	}
	t.Render()
}

// printGrid flattens a grid: one label column per row level, one value column per
// column path and metric.
func printGrid(w io.Writer, c *design.Common, grid *domain.Grid) {
	t := newWriter(w, c.Title)
	depth := grid.RowDepth()

	header := make(table.Row, depth)
	var align []table.ColumnConfig
	for _, p := range grid.RowPaths {
		for i, v := range p.Variables() {
			header[i] = v
		}
	}
	for ci, p := range grid.ColPaths {
		label := strings.Join(p.Labels(), " / ")
		for _, m := range grid.ColMetrics[ci] {
			name := string(m)
			if label != "" {
				name = label + " " + name
			}
			header = append(header, name)
			align = append(align, table.ColumnConfig{Number: len(header), Align: text.AlignRight})
		}
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(align)

	for ri, p := range grid.RowPaths {
		row := make(table.Row, depth)
		for i, label := range p.Labels() {
			row[i] = label
		}
		for ci := range grid.ColPaths {
			cell := grid.Cell(ri, ci)
			for _, m := range grid.ColMetrics[ci] {
				if m == design.MetricFreq {
					row = append(row, format.Count(cell.Count))
				} else {
					row = append(row, format.Pct(cell.Value(m), c.DecimalPoints))
				}
			}
		}
		if last, ok := p.Terminal(); ok && last.Total {
			t.AppendSeparator()
		}
		t.AppendRow(row)
	}
	t.Render()
}

func printResult(w io.Writer, c *design.Common, r *result.Result) {
	dp := c.DecimalPoints
	title := c.Title
	if title == "" {
		title = r.Kind.Title()
	}

	t := newWriter(w, title)
	t.AppendRow(table.Row{r.StatisticName, format.Number(r.Statistic, dp)})
	if len(r.DF) > 0 {
		dfs := make([]string, len(r.DF))
		for i, df := range r.DF {
			dfs[i] = format.Number(df, dp)
		}
		t.AppendRow(table.Row{"df", strings.Join(dfs, ", ")})
	}
	t.AppendRow(table.Row{"p", format.PValue(r.PValue, dp)})
	if r.Effect != nil {
		t.AppendRow(table.Row{"Cohen's d", format.Number(r.Effect.CohensD, dp)})
	}
	if r.Correlation != nil {
		t.AppendRow(table.Row{"r²", format.Number(r.Correlation.RSquared, dp)})
		t.AppendRow(table.Row{"line", "y = " + format.Number(r.Correlation.Intercept, dp) + " + " + format.Number(r.Correlation.Slope, dp) + "x"})
	}
	if r.Excluded > 0 {
		t.AppendRow(table.Row{"excluded", r.Excluded})
	}
	t.Render()

	if len(r.Groups) > 0 {
		g := newWriter(w, "")
		g.AppendHeader(table.Row{"Group", "N", "Mean", "Median", "SD", "Min", "Max"})
		for _, s := range r.Groups {
			g.AppendRow(table.Row{s.Label, s.N, format.Number(s.Mean, dp), format.Number(s.Median, dp),
				format.Number(s.SD, dp), format.Number(s.Min, dp), format.Number(s.Max, dp)})
		}
		g.Render()
	}
	if ct := r.Contingency; ct != nil {
		o := newWriter(w, "Observed (expected)")
		header := table.Row{ct.RowVariable + " \\ " + ct.ColVariable}
		for _, l := range ct.ColLabels {
			header = append(header, l)
		}
		o.AppendHeader(header)
		for i, l := range ct.RowLabels {
			row := table.Row{l}
			for j := range ct.ColLabels {
				row = append(row, format.Number(ct.Observed[i][j], dp)+" ("+format.Number(ct.Expected[i][j], dp)+")")
			}
			o.AppendRow(row)
		}
		o.Render()
	}
	if r.Narrative != "" {
		io.WriteString(w, "\n"+r.Narrative+"\n")
	}
}

func printOutputs(w io.Writer, results []*app.OutputResult) {
	t := newWriter(w, "")
	t.AppendHeader(table.Row{"Kind", "Title", "Path", "ms"})
	for _, r := range results {
		t.AppendRow(table.Row{r.Document.Kind, r.Document.Title, r.Path, r.RuntimeMs})
	}
	t.Render()
}

func printStyle(w io.Writer, style report.Style) {
	t := newWriter(w, style.Name)
	t.AppendHeader(table.Row{"Token", "Value"})
	for _, name := range style.TokenNames() {
		t.AppendRow(table.Row{name, style.Tokens[name]})
	}
	t.Render()
}

func printAmounts(w io.Writer, c *design.Common, data *charts.Amounts) {
	t := newWriter(w, c.Title)
	header := table.Row{data.CategoryVariable}
	var align []table.ColumnConfig
	for _, s := range data.Series {
		label := s.Label
		if label == "" {
			label = string(data.Metric)
		}
		header = append(header, label)
		align = append(align, table.ColumnConfig{Number: len(header), Align: text.AlignRight})
	}
	t.AppendHeader(header)
	t.SetColumnConfigs(align)
	for i, category := range data.Categories {
		row := table.Row{category}
		for _, s := range data.Series {
			a := s.Amounts[i]
			switch data.Metric {
			case design.ChartFreq:
				row = append(row, format.Count(a.Freq))
			case design.ChartPct:
				row = append(row, format.Pct(a.Value, c.DecimalPoints))
			default:
				row = append(row, format.Number(a.Value, c.DecimalPoints))
			}
		}
		t.AppendRow(row)
	}
	t.Render()
}

func printHistogram(w io.Writer, c *design.Common, data *charts.Histogram) {
	t := newWriter(w, c.Title)
	header := table.Row{"From", "To"}
	for _, chart := range data.Charts {
		label := chart.Label
		if label == "" {
			label = "Freq"
		}
		header = append(header, label)
	}
	t.AppendHeader(header)
	for i, b := range data.Bins {
		row := table.Row{format.Number(b.Lower, c.DecimalPoints), format.Number(b.Upper, c.DecimalPoints)}
		for _, chart := range data.Charts {
			row = append(row, chart.Freqs[i])
		}
		t.AppendRow(row)
	}
	if data.Excluded > 0 {
		t.AppendFooter(table.Row{"excluded", data.Excluded})
	}
	t.Render()
}
