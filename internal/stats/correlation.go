package stats

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"tabstat/domain/core"
	result "tabstat/domain/stats"
)

// maxWorkedRows caps the per-record table of a worked example.
const maxWorkedRows = 50

// Pearson is Pearson's product moment correlation.
type Pearson struct {
	a, b Group
}

func NewPearson(a, b Group) (*Pearson, error) {
	if err := requirePaired(a, b); err != nil {
		return nil, err
	}
	return &Pearson{a: a, b: b}, nil
}

func (c *Pearson) Kind() result.Kind { return result.KindPearson }

// line is a least squares fit through (x, y).
type line struct {
	slope, intercept float64
	xMin, xMax       float64
}

type pearsonWorkings struct {
	labels        [2]string
	n             int
	meanX, meanY  float64
	sxx, syy, sxy float64
	r, t, df, p   float64
	fit           line
}

func (c *Pearson) Compute(opts Options) (*result.Result, error) {
	p, err := cleanPairs(c.a, c.b, 3)
	if err != nil {
		return nil, err
	}
	xs, ys := p.a.xs, p.b.xs
	num := newNumeric(opts.HighPrecision)

	w := pearsonWorkings{labels: [2]string{p.a.label, p.b.label}, n: len(xs)}
	w.meanX, w.meanY = num.mean(xs), num.mean(ys)
	w.sxx, w.syy = num.ssd(xs, w.meanX), num.ssd(ys, w.meanY)
	if w.sxx == 0 || w.syy == 0 {
		return nil, core.NewInsufficientDataError("%q or %q does not vary", p.a.label, p.b.label)
	}
	w.sxy = num.crossDeviations(xs, ys, w.meanX, w.meanY)
	if opts.HighPrecision {
		w.r = w.sxy / math.Sqrt(w.sxx*w.syy)
		w.fit = fitFromSums(xs, w.sxy/w.sxx, w.meanY-w.sxy/w.sxx*w.meanX)
	} else {
		w.r = stat.Correlation(xs, ys, nil)
		intercept, slope := stat.LinearRegression(xs, ys, nil, false)
		w.fit = fitFromSums(xs, slope, intercept)
	}
	w.r = math.Max(-1, math.Min(1, w.r))
	w.df = float64(w.n - 2)
	w.t, w.p = NewDistributions().CorrelationPValue(w.r, w.n)

	r := &result.Result{
		Kind:          result.KindPearson,
		StatisticName: "r",
		Statistic:     w.r,
		DF:            []float64{w.df},
		PValue:        w.p,
		Groups:        []result.GroupSummary{summarize(p.a), summarize(p.b)},
		Excluded:      p.droppedAt,
		Correlation:   correlationDetail(w.n, w.r, w.t, w.fit),
	}
	return finish(r, opts, w.narrate), nil
}

func fitFromSums(xs []float64, slope, intercept float64) line {
	l := line{slope: slope, intercept: intercept, xMin: xs[0], xMax: xs[0]}
	for _, x := range xs {
		l.xMin = math.Min(l.xMin, x)
		l.xMax = math.Max(l.xMax, x)
	}
	return l
}

func correlationDetail(n int, r, t float64, fit line) *result.CorrelationDetail {
	return &result.CorrelationDetail{
		N:         n,
		R:         r,
		T:         t,
		Slope:     fit.slope,
		Intercept: fit.intercept,
		RSquared:  r * r,
		XStart:    fit.xMin,
		YStart:    fit.intercept + fit.slope*fit.xMin,
		XEnd:      fit.xMax,
		YEnd:      fit.intercept + fit.slope*fit.xMax,
	}
}

func (w pearsonWorkings) narrate(n *narrator) {
	n.heading("Worked Example: Pearson's R")
	n.step("Step 1 - Means and sums of squares")
	n.para("Over %d complete pairs the mean of %s is %s and the mean of %s is %s.",
		w.n, w.labels[0], n.num(w.meanX), w.labels[1], n.num(w.meanY))
	n.para("Sxx = %s, Syy = %s and Sxy = %s.", n.num(w.sxx), n.num(w.syy), n.num(w.sxy))
	n.step("Step 2 - r")
	n.para("r = Sxy / √(Sxx × Syy) = %s.", n.num(w.r))
	n.step("Step 3 - t and p")
	n.para("t = r × √(df / (1 - r²)) = %s with %s degrees of freedom, giving p = %s.", n.num(w.t), n.num(w.df), n.p(w.p))
	n.para("The least squares line is y = %s + %s x.", n.num(w.fit.intercept), n.num(w.fit.slope))
	n.conclusion(w.p)
}

// Spearman is Spearman's rank correlation.
type Spearman struct {
	a, b Group
}

func NewSpearman(a, b Group) (*Spearman, error) {
	if err := requirePaired(a, b); err != nil {
		return nil, err
	}
	return &Spearman{a: a, b: b}, nil
}

func (c *Spearman) Kind() result.Kind { return result.KindSpearman }

type spearmanWorkings struct {
	labels    [2]string
	xs, ys    []float64
	rx, ry    []float64
	sumD2     float64
	rsFormula float64
	ties      bool
	rs, t     float64
	df, p     float64
}

func (c *Spearman) Compute(opts Options) (*result.Result, error) {
	p, err := cleanPairs(c.a, c.b, 3)
	if err != nil {
		return nil, err
	}
	xs, ys := p.a.xs, p.b.xs
	num := newNumeric(opts.HighPrecision)

	w := spearmanWorkings{labels: [2]string{p.a.label, p.b.label}, xs: xs, ys: ys}
	var tiesX, tiesY []int
	w.rx, tiesX = rankAverage(xs)
	w.ry, tiesY = rankAverage(ys)
	w.ties = len(tiesX) > 0 || len(tiesY) > 0

	n := float64(len(xs))
	for i := range w.rx {
		d := w.rx[i] - w.ry[i]
		w.sumD2 += d * d
	}
	w.rsFormula = 1 - 6*w.sumD2/(n*(n*n-1))

	// ties take average ranks and stay in the d² formula
	if num.ssd(w.rx, num.mean(w.rx)) == 0 || num.ssd(w.ry, num.mean(w.ry)) == 0 {
		return nil, core.NewInsufficientDataError("%q or %q does not vary", p.a.label, p.b.label)
	}
	w.rs = math.Max(-1, math.Min(1, w.rsFormula))
	w.df = n - 2
	w.t = w.rs * math.Sqrt(w.df/((w.rs+1)*(1-w.rs)))
	if math.IsInf(w.t, 0) {
		w.p = 0
	} else {
		w.p = NewDistributions().TTestPValue(w.t, w.df)
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	r := &result.Result{
		Kind:          result.KindSpearman,
		StatisticName: "r",
		Statistic:     w.rs,
		DF:            []float64{w.df},
		PValue:        w.p,
		Groups:        []result.GroupSummary{summarize(p.a), summarize(p.b)},
		Excluded:      p.droppedAt,
		Correlation:   correlationDetail(len(xs), w.rs, w.t, fitFromSums(xs, slope, intercept)),
	}
	return finish(r, opts, w.narrate), nil
}

func (w spearmanWorkings) narrate(n *narrator) {
	n.heading("Worked Example: Spearman's R")
	n.step("Step 1 - Rank each variable")
	rows := make([][]string, 0, min(len(w.xs), maxWorkedRows))
	for i := 0; i < len(w.xs) && i < maxWorkedRows; i++ {
		d := w.rx[i] - w.ry[i]
		rows = append(rows, []string{n.num(w.xs[i]), n.num(w.rx[i]), n.num(w.ys[i]), n.num(w.ry[i]), n.num(d), n.num(d * d)})
	}
	n.table([]string{w.labels[0], "Rank", w.labels[1], "Rank", "Diff", "Diff²"}, rows)
	if len(w.xs) > maxWorkedRows {
		n.para("Only the first %d of %d records are shown.", maxWorkedRows, len(w.xs))
	}
	n.step("Step 2 - rs")
	if w.ties {
		n.para("Tied values share the average of the ranks they span.")
	}
	n.para("Σd² = %s so rs = 1 - 6Σd² / (n(n² - 1)) = %s.", n.num(w.sumD2), n.num(w.rs))
	n.step("Step 3 - t and p")
	n.para("t = rs × √((n - 2) / ((rs + 1)(1 - rs))) = %s with %s degrees of freedom, giving p = %s.",
		n.num(w.t), n.num(w.df), n.p(w.p))
	n.conclusion(w.p)
}
