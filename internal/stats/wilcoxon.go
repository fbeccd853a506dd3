package stats

import (
	"math"

	"tabstat/domain/core"
	result "tabstat/domain/stats"
)

// Wilcoxon is the Wilcoxon signed ranks test on matched measurements.
type Wilcoxon struct {
	a, b Group
}

func NewWilcoxon(a, b Group) (*Wilcoxon, error) {
	if err := requirePaired(a, b); err != nil {
		return nil, err
	}
	return &Wilcoxon{a: a, b: b}, nil
}

func (wx *Wilcoxon) Kind() result.Kind { return result.KindWilcoxon }

type wilcoxonWorkings struct {
	labels   [2]string
	pairs    int
	zeros    int
	n        int
	positive float64
	negative float64
	t        float64
	mean, se float64
	z, p     float64
}

func (wx *Wilcoxon) Compute(opts Options) (*result.Result, error) {
	p, err := cleanPairs(wx.a, wx.b, 2)
	if err != nil {
		return nil, err
	}

	w := wilcoxonWorkings{labels: [2]string{p.a.label, p.b.label}, pairs: len(p.a.xs)}
	var diffs []float64
	for i := range p.a.xs {
		d := p.a.xs[i] - p.b.xs[i]
		if d == 0 {
			w.zeros++
			continue
		}
		diffs = append(diffs, d)
	}
	w.n = len(diffs)
	if w.n == 0 {
		return nil, core.NewInsufficientDataError("every difference between %q and %q is zero", p.a.label, p.b.label)
	}

	abs := make([]float64, w.n)
	for i, d := range diffs {
		abs[i] = math.Abs(d)
	}
	ranks, _ := rankAverage(abs)
	for i, d := range diffs {
		if d > 0 {
			w.positive += ranks[i]
		} else {
			w.negative += ranks[i]
		}
	}
	w.t = math.Min(w.positive, w.negative)
	fn := float64(w.n)
	w.mean = fn * (fn + 1) / 4
	w.se = math.Sqrt(fn * (fn + 1) * (2*fn + 1) / 24)
	w.z = (w.t - w.mean) / w.se
	w.p = math.Min(1, 2*NewDistributions().NormalUpperTail(math.Abs(w.z)))

	r := &result.Result{
		Kind:          result.KindWilcoxon,
		StatisticName: "T",
		Statistic:     w.t,
		PValue:        w.p,
		Groups:        []result.GroupSummary{summarize(p.a), summarize(p.b)},
		Excluded:      p.droppedAt,
		Rank: &result.RankDetail{
			N:             w.n,
			Z:             w.z,
			TieCorrection: 1,
			PositiveRanks: w.positive,
			NegativeRanks: w.negative,
		},
	}
	return finish(r, opts, w.narrate), nil
}

func (w wilcoxonWorkings) narrate(n *narrator) {
	n.heading("Worked Example: Wilcoxon Signed Ranks")
	n.step("Step 1 - Differences")
	n.para("Of %d complete pairs, %d have a zero difference (%s - %s) and are dropped, leaving %d.",
		w.pairs, w.zeros, w.labels[0], w.labels[1], w.n)
	n.step("Step 2 - Rank the absolute differences")
	n.para("The absolute differences are ranked, ties sharing their average rank. Ranks of positive differences sum to %s and of negative differences to %s.",
		n.num(w.positive), n.num(w.negative))
	n.para("T is the smaller sum, %s.", n.num(w.t))
	n.step("Step 3 - z and p")
	n.para("Mean = n(n + 1)/4 = %s and standard error = √(n(n + 1)(2n + 1)/24) = %s, so z = %s.",
		n.num(w.mean), n.num(w.se), n.num(w.z))
	n.para("The two-tailed p-value is %s.", n.p(w.p))
	n.conclusion(w.p)
}
