package charts

import (
	"math"
	"sort"

	"gonum.org/v1/gonum/stat"
	"gonum.org/v1/gonum/stat/distuv"

	domain "tabstat/domain/charts"
	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
	"tabstat/internal/sorting"
)

// Histogram bins a numeric variable. rows hold the value, then the chart value when the
// design has a chart variable. Values that are null or not numeric are excluded and
// counted. All charts share bins spanning every value.
func Histogram(d *design.HistogramDesign, rows [][]any, orders design.CustomOrders) (*domain.Histogram, error) {
	withCharts := d.ChartVariable != ""
	out := &domain.Histogram{Variable: d.Variable, ChartVariable: d.ChartVariable}

	var items []sorting.Item
	seen := map[string]int{}
	byChart := map[string][]float64{}
	var all []float64
	for _, row := range rows {
		if len(row) == 0 || (withCharts && (len(row) < 2 || row[1] == nil)) {
			continue
		}
		x, ok := dataset.Float(row[0])
		if !ok {
			out.Excluded++
			continue
		}
		var key string
		if withCharts {
			key = dataset.Key(row[1])
			items = tally(items, seen, &d.Common, d.ChartVariable, row[1])
		}
		byChart[key] = append(byChart[key], x)
		all = append(all, x)
	}
	if len(all) == 0 {
		return nil, core.NewInsufficientDataError("%q has no numeric values", d.Variable)
	}

	groups := []sorting.Item{{}}
	if withCharts {
		var err error
		if groups, err = sorting.Resolve(d.ChartVariable, d.ChartSort, items, orders); err != nil {
			return nil, err
		}
	}

	n := d.Bins
	if n == 0 {
		n = binCount(len(all))
	}
	lo, hi := bounds(all)
	out.Bins = bins(lo, hi, n)
	dividers := make([]float64, len(out.Bins)+1)
	for i, b := range out.Bins {
		dividers[i] = b.Lower
	}
	// the top limit belongs to the last bin
	dividers[len(out.Bins)] = math.Nextafter(out.Bins[len(out.Bins)-1].Upper, math.Inf(1))

	for _, c := range groups {
		xs := byChart[c.Key]
		sort.Float64s(xs)
		counts := stat.Histogram(nil, dividers, xs, nil)
		chart := domain.HistogramChart{N: len(xs), Freqs: make([]int64, len(counts))}
		if withCharts {
			chart.Label = d.ChartVariable + ": " + c.Label
		}
		for i, f := range counts {
			chart.Freqs[i] = int64(f)
		}
		chart.Normal = normalCurve(xs, out.Bins)
		out.Charts = append(out.Charts, chart)
	}
	return out, nil
}

// binCount follows Sturges' rule.
func binCount(n int) int {
	k := int(math.Ceil(math.Log2(float64(n)))) + 1
	return max(1, min(k, design.MaxBins))
}

func bounds(xs []float64) (float64, float64) {
	lo, hi := xs[0], xs[0]
	for _, x := range xs[1:] {
		lo = math.Min(lo, x)
		hi = math.Max(hi, x)
	}
	return lo, hi
}

// bins splits [lo, hi] into n equal widths. A single distinct value gets one bin of
// width 1 centred on it.
func bins(lo, hi float64, n int) []domain.Bin {
	if lo == hi {
		return []domain.Bin{{Lower: lo - 0.5, Upper: hi + 0.5}}
	}
	width := (hi - lo) / float64(n)
	out := make([]domain.Bin, n)
	for i := range out {
		out[i] = domain.Bin{Lower: lo + float64(i)*width, Upper: lo + float64(i+1)*width}
	}
	out[n-1].Upper = hi
	return out
}

// normalCurve evaluates the normal density fitted to xs at each bin midpoint, scaled so
// the curve sums to the number of values.
func normalCurve(xs []float64, bins []domain.Bin) []float64 {
	if len(xs) < 2 {
		return nil
	}
	mean, sd := stat.MeanStdDev(xs, nil)
	if sd == 0 || math.IsNaN(sd) {
		return nil
	}
	dist := distuv.Normal{Mu: mean, Sigma: sd}
	ys := make([]float64, len(bins))
	var sum float64
	for i, b := range bins {
		ys[i] = dist.Prob((b.Lower + b.Upper) / 2)
		sum += ys[i]
	}
	if sum == 0 {
		return nil
	}
	for i := range ys {
		ys[i] *= float64(len(xs)) / sum
	}
	return ys
}
