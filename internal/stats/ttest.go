package stats

import (
	"math"

	"tabstat/domain/core"
	result "tabstat/domain/stats"
)

// IndependentT is the pooled variance two sample t-test.
type IndependentT struct {
	a, b Group
}

func NewIndependentT(a, b Group) (*IndependentT, error) {
	if a.Label != "" && a.Label == b.Label {
		return nil, core.NewConfigurationError("independent t-test needs two different groups, got %q twice", a.Label)
	}
	return &IndependentT{a: a, b: b}, nil
}

func (t *IndependentT) Kind() result.Kind { return result.KindIndependentT }

type independentTWorkings struct {
	labels    [2]string
	ns        [2]int
	means     [2]float64
	ssds      [2]float64
	pooledVar float64
	se        float64
	t, df, p  float64
}

func (t *IndependentT) Compute(opts Options) (*result.Result, error) {
	samples, err := cleanAll([]Group{t.a, t.b}, 2)
	if err != nil {
		return nil, err
	}
	num := newNumeric(opts.HighPrecision)

	var w independentTWorkings
	for i, s := range samples {
		w.labels[i] = s.label
		w.ns[i] = len(s.xs)
		w.means[i] = num.mean(s.xs)
		w.ssds[i] = num.ssd(s.xs, w.means[i])
	}
	n1, n2 := float64(w.ns[0]), float64(w.ns[1])
	w.df = n1 + n2 - 2
	w.pooledVar = (w.ssds[0] + w.ssds[1]) / w.df
	w.se = math.Sqrt(w.pooledVar * (1/n1 + 1/n2))
	w.t, w.p = tRatio(w.means[0]-w.means[1], w.se, w.df)

	dist := NewDistributions()
	pooledSD := math.Sqrt(w.pooledVar)
	r := &result.Result{
		Kind:          result.KindIndependentT,
		StatisticName: "t",
		Statistic:     w.t,
		DF:            []float64{w.df},
		PValue:        w.p,
		Groups:        []result.GroupSummary{summarize(samples[0]), summarize(samples[1])},
		Excluded:      totalExcluded(samples),
		Effect: &result.EffectDetail{
			MeanDifference: w.means[0] - w.means[1],
			SD:             pooledSD,
			CohensD:        dist.EffectSizeCohenD(w.means[0]-w.means[1], pooledSD),
		},
	}
	return finish(r, opts, w.narrate), nil
}

// tRatio turns a difference and its standard error into t and a two-tailed p-value.
// A zero standard error gives t = 0 when there is no difference and ±Inf otherwise.
func tRatio(diff, se, df float64) (t, p float64) {
	if se == 0 {
		if diff == 0 {
			return 0, 1
		}
		return math.Copysign(math.Inf(1), diff), 0
	}
	t = diff / se
	return t, NewDistributions().TTestPValue(t, df)
}

func (w independentTWorkings) narrate(n *narrator) {
	n.heading("Worked Example: Independent Samples t-test")
	n.step("Step 1 - Group means")
	n.table([]string{"Group", "N", "Mean", "Sum of squared deviations"}, [][]string{
		{w.labels[0], n.num(float64(w.ns[0])), n.num(w.means[0]), n.num(w.ssds[0])},
		{w.labels[1], n.num(float64(w.ns[1])), n.num(w.means[1]), n.num(w.ssds[1])},
	})
	n.step("Step 2 - Pooled variance")
	n.para("Pooled variance = (%s + %s) / %s = %s.", n.num(w.ssds[0]), n.num(w.ssds[1]), n.num(w.df), n.num(w.pooledVar))
	n.para("Standard error of the difference = √(%s × (1/%d + 1/%d)) = %s.", n.num(w.pooledVar), w.ns[0], w.ns[1], n.num(w.se))
	n.step("Step 3 - t and p")
	n.para("t = (%s - %s) / %s = %s with %s degrees of freedom, giving a two-tailed p = %s.",
		n.num(w.means[0]), n.num(w.means[1]), n.num(w.se), n.num(w.t), n.num(w.df), n.p(w.p))
	n.conclusion(w.p)
}

// PairedT is the paired samples t-test on matched measurements.
type PairedT struct {
	a, b Group
}

func NewPairedT(a, b Group) (*PairedT, error) {
	if err := requirePaired(a, b); err != nil {
		return nil, err
	}
	return &PairedT{a: a, b: b}, nil
}

func (t *PairedT) Kind() result.Kind { return result.KindPairedT }

type pairedTWorkings struct {
	labels   [2]string
	n        int
	meanDiff float64
	varDiff  float64
	se       float64
	t, df, p float64
}

func (t *PairedT) Compute(opts Options) (*result.Result, error) {
	p, err := cleanPairs(t.a, t.b, 2)
	if err != nil {
		return nil, err
	}
	num := newNumeric(opts.HighPrecision)

	diffs := make([]float64, len(p.a.xs))
	for i := range diffs {
		diffs[i] = p.a.xs[i] - p.b.xs[i]
	}
	w := pairedTWorkings{labels: [2]string{p.a.label, p.b.label}, n: len(diffs)}
	w.meanDiff = num.mean(diffs)
	w.varDiff = num.ssd(diffs, w.meanDiff) / float64(w.n-1)
	w.se = math.Sqrt(w.varDiff / float64(w.n))
	w.df = float64(w.n - 1)
	w.t, w.p = tRatio(w.meanDiff, w.se, w.df)

	sdDiff := math.Sqrt(w.varDiff)
	r := &result.Result{
		Kind:          result.KindPairedT,
		StatisticName: "t",
		Statistic:     w.t,
		DF:            []float64{w.df},
		PValue:        w.p,
		Groups:        []result.GroupSummary{summarize(p.a), summarize(p.b)},
		Excluded:      p.droppedAt,
		Effect: &result.EffectDetail{
			MeanDifference: w.meanDiff,
			SD:             sdDiff,
			CohensD:        NewDistributions().EffectSizeCohenD(w.meanDiff, sdDiff),
		},
	}
	return finish(r, opts, w.narrate), nil
}

func (w pairedTWorkings) narrate(n *narrator) {
	n.heading("Worked Example: Paired Samples t-test")
	n.step("Step 1 - Differences")
	n.para("For each of the %d complete pairs the difference %s - %s is taken. Their mean is %s and their variance %s.",
		w.n, w.labels[0], w.labels[1], n.num(w.meanDiff), n.num(w.varDiff))
	n.step("Step 2 - Standard error")
	n.para("Standard error = √(%s / %d) = %s.", n.num(w.varDiff), w.n, n.num(w.se))
	n.step("Step 3 - t and p")
	n.para("t = %s / %s = %s with %s degrees of freedom, giving a two-tailed p = %s.",
		n.num(w.meanDiff), n.num(w.se), n.num(w.t), n.num(w.df), n.p(w.p))
	n.conclusion(w.p)
}
