// Package charts extracts the data charts are drawn from.
package charts

import (
	"fmt"

	mstats "github.com/montanaflynn/stats"

	domain "tabstat/domain/charts"
	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
	"tabstat/internal/sorting"
	"tabstat/internal/tabulation"
)

// Amounts counts every category of every series from grouped counts. Records with a
// null category or series are left out; percentages are shares of the series.
func Amounts(d *design.AmountsDesign, idx *tabulation.Index, orders design.CustomOrders) (*domain.Amounts, error) {
	metric := d.MetricOrDefault()
	if metric.NeedsMeasure() {
		return nil, core.NewConfigurationError("%s amounts need the measure values, not counts", metric)
	}
	view := idx.Restrict(d.Variables())
	for _, v := range d.Variables() {
		if !view.Has(v) {
			return nil, fmt.Errorf("%w: %q", core.ErrVariableNotFound, v)
		}
	}

	cats, err := ordered(&d.Common, d.CategoryVariable, d.CategorySort, view.Values(d.CategoryVariable, nil), orders)
	if err != nil {
		return nil, err
	}
	series := []sorting.Item{{}}
	if d.SeriesVariable != "" {
		if series, err = ordered(&d.Common, d.SeriesVariable, d.SeriesSort, view.Values(d.SeriesVariable, nil), orders); err != nil {
			return nil, err
		}
	}

	out := newAmounts(d, metric, cats)
	for _, s := range series {
		var scope []tabulation.Constraint
		if d.SeriesVariable != "" {
			scope = []tabulation.Constraint{{Variable: d.SeriesVariable, Key: s.Key}}
		}
		total := view.Count(scope)
		sr := domain.Series{Label: s.Label}
		for _, c := range cats {
			freq := view.Count(append([]tabulation.Constraint{{Variable: d.CategoryVariable, Key: c.Key}}, scope...))
			a := domain.Amount{Category: c.Label, Freq: freq, Pct: share(freq, total), Value: float64(freq)}
			if metric == design.ChartPct {
				a.Value = a.Pct
			}
			sr.Amounts = append(sr.Amounts, a)
		}
		out.Series = append(out.Series, sr)
	}
	return out, nil
}

// Measures averages or sums the measure per category and series. rows hold the category,
// the series when the design has one, then the measure. Freq counts records; measure
// values that are null or not numeric are skipped and a category without any gets 0.
func Measures(d *design.AmountsDesign, rows [][]any, orders design.CustomOrders) (*domain.Amounts, error) {
	metric := d.MetricOrDefault()
	if !metric.NeedsMeasure() {
		return nil, core.NewConfigurationError("%s amounts are counted, not measured", metric)
	}
	withSeries := d.SeriesVariable != ""
	measureAt := 1
	if withSeries {
		measureAt = 2
	}

	var catItems, seriesItems []sorting.Item
	catSeen, seriesSeen := map[string]int{}, map[string]int{}
	values := map[[2]string][]float64{}
	counts := map[[2]string]int64{}
	records := map[string]int64{}
	for _, row := range rows {
		if len(row) <= measureAt || row[0] == nil || (withSeries && row[1] == nil) {
			continue
		}
		catKey := dataset.Key(row[0])
		catItems = tally(catItems, catSeen, &d.Common, d.CategoryVariable, row[0])
		var seriesKey string
		if withSeries {
			seriesKey = dataset.Key(row[1])
			seriesItems = tally(seriesItems, seriesSeen, &d.Common, d.SeriesVariable, row[1])
		}
		cell := [2]string{catKey, seriesKey}
		records[seriesKey]++
		counts[cell]++
		if x, ok := dataset.Float(row[measureAt]); ok {
			values[cell] = append(values[cell], x)
		}
	}
	if len(catItems) == 0 {
		return nil, core.NewInsufficientDataError("no records with a %q value", d.CategoryVariable)
	}

	cats, err := sorting.Resolve(d.CategoryVariable, d.CategorySort, catItems, orders)
	if err != nil {
		return nil, err
	}
	series := []sorting.Item{{}}
	if withSeries {
		if series, err = sorting.Resolve(d.SeriesVariable, d.SeriesSort, seriesItems, orders); err != nil {
			return nil, err
		}
	}

	out := newAmounts(d, metric, cats)
	for _, s := range series {
		sr := domain.Series{Label: s.Label}
		for _, c := range cats {
			cell := [2]string{c.Key, s.Key}
			xs := values[cell]
			a := domain.Amount{Category: c.Label, Freq: counts[cell], Pct: share(counts[cell], records[s.Key])}
			if len(xs) > 0 {
				if metric == design.ChartAvg {
					a.Value, err = mstats.Mean(xs)
				} else {
					a.Value, err = mstats.Sum(xs)
				}
				if err != nil {
					return nil, err
				}
			}
			sr.Amounts = append(sr.Amounts, a)
		}
		out.Series = append(out.Series, sr)
	}
	return out, nil
}

func newAmounts(d *design.AmountsDesign, metric design.ChartMetric, cats []sorting.Item) *domain.Amounts {
	out := &domain.Amounts{
		CategoryVariable: d.CategoryVariable,
		SeriesVariable:   d.SeriesVariable,
		MeasureVariable:  d.MeasureVariable,
		Metric:           metric,
		Categories:       make([]string, len(cats)),
	}
	for i, c := range cats {
		out.Categories[i] = c.Label
	}
	return out
}

// ordered labels observed values and sorts them with the Sort Resolver.
func ordered(c *design.Common, variable string, order design.SortOrder, values []tabulation.ValueCount, orders design.CustomOrders) ([]sorting.Item, error) {
	items := make([]sorting.Item, len(values))
	for i, v := range values {
		items[i] = sorting.NewItem(v.Value, c.Label(variable, v.Key), v.Freq)
	}
	return sorting.Resolve(variable, order, items, orders)
}

// tally adds one record of value to items, keeping first-seen order.
func tally(items []sorting.Item, seen map[string]int, c *design.Common, variable string, value any) []sorting.Item {
	key := dataset.Key(value)
	if i, ok := seen[key]; ok {
		items[i].Freq++
		return items
	}
	seen[key] = len(items)
	return append(items, sorting.NewItem(value, c.Label(variable, key), 1))
}

func share(n, total int64) float64 {
	if total == 0 {
		return 0
	}
	return 100 * float64(n) / float64(total)
}
