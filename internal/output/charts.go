package output

import (
	"fmt"

	"tabstat/domain/charts"
	"tabstat/domain/core"
	"tabstat/domain/design"
	"tabstat/domain/report"
	"tabstat/internal/format"
)

// Amounts formats category chart data as a styled document: one row per category, one
// column per series.
func (a *Assembler) Amounts(data *charts.Amounts, style report.Style, meta Meta) (*report.Document, error) {
	if data == nil {
		return nil, core.NewConfigurationError("no chart data to assemble")
	}
	colors, err := style.ResolveAll(RequiredTokens()...)
	if err != nil {
		return nil, err
	}
	doc := a.document(style, colors, meta)
	doc.Kind = report.KindChart
	doc.Chart = amountsView(data, meta.DecimalPoints)
	return doc, nil
}

// Histogram formats binned data as a styled document: one row per bin, a frequency
// column per chart and a normal curve column where one was fitted.
func (a *Assembler) Histogram(data *charts.Histogram, style report.Style, meta Meta) (*report.Document, error) {
	if data == nil {
		return nil, core.NewConfigurationError("no histogram data to assemble")
	}
	colors, err := style.ResolveAll(RequiredTokens()...)
	if err != nil {
		return nil, err
	}
	doc := a.document(style, colors, meta)
	doc.Kind = report.KindHistogram
	doc.Chart = histogramView(data, meta.DecimalPoints)
	return doc, nil
}

func amountsView(data *charts.Amounts, dp int) *report.ChartView {
	caption := string(data.Metric) + " of " + data.CategoryVariable
	if data.MeasureVariable != "" {
		caption = string(data.Metric) + " of " + data.MeasureVariable + " by " + data.CategoryVariable
	}
	if data.SeriesVariable != "" {
		caption += " and " + data.SeriesVariable
	}
	view := &report.ChartView{Caption: caption, Headers: []string{data.CategoryVariable}}
	for _, s := range data.Series {
		label := s.Label
		if label == "" {
			label = string(data.Metric)
		}
		view.Headers = append(view.Headers, label)
	}
	for i, category := range data.Categories {
		row := []string{category}
		for _, s := range data.Series {
			row = append(row, amountText(data.Metric, s.Amounts[i], dp))
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func amountText(metric design.ChartMetric, a charts.Amount, dp int) string {
	switch metric {
	case design.ChartFreq:
		return format.Count(a.Freq) + " (" + format.Pct(a.Pct, dp) + ")"
	case design.ChartPct:
		return format.Pct(a.Value, dp)
	}
	return format.Number(a.Value, dp)
}

func histogramView(data *charts.Histogram, dp int) *report.ChartView {
	view := &report.ChartView{Caption: "Histogram of " + data.Variable, Headers: []string{data.Variable}}
	for _, c := range data.Charts {
		label := c.Label
		if label == "" {
			label = "Freq"
		}
		view.Headers = append(view.Headers, label)
		if c.Normal != nil {
			view.Headers = append(view.Headers, label+" normal")
		}
		view.Footnotes = append(view.Footnotes, fmt.Sprintf("%s: N = %d", label, c.N))
	}
	last := len(data.Bins) - 1
	for i, b := range data.Bins {
		upper := " to <"
		if i == last {
			upper = " to "
		}
		row := []string{format.Number(b.Lower, dp) + upper + format.Number(b.Upper, dp)}
		for _, c := range data.Charts {
			row = append(row, format.Count(c.Freqs[i]))
			if c.Normal != nil {
				row = append(row, format.Number(c.Normal[i], dp))
			}
		}
		view.Rows = append(view.Rows, row)
	}
	if data.Excluded > 0 {
		view.Footnotes = append(view.Footnotes, fmt.Sprintf("%d value(s) were excluded as missing or non-numeric.", data.Excluded))
	}
	return view
}
