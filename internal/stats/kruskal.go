package stats

import (
	"fmt"

	"tabstat/domain/core"
	result "tabstat/domain/stats"
)

// KruskalWallis is the Kruskal-Wallis H test, a rank based alternative to ANOVA.
type KruskalWallis struct {
	groups []Group
}

func NewKruskalWallis(groups []Group) (*KruskalWallis, error) {
	if len(groups) < 2 {
		return nil, fmt.Errorf("%w: Kruskal-Wallis H needs at least 2 groups, got %d", core.ErrArity, len(groups))
	}
	return &KruskalWallis{groups: groups}, nil
}

func (k *KruskalWallis) Kind() result.Kind { return result.KindKruskalWallis }

type kruskalWorkings struct {
	labels   []string
	ns       []int
	rankSums []float64
	n        int
	hRaw     float64
	tie      float64
	h, df, p float64
}

func (k *KruskalWallis) Compute(opts Options) (*result.Result, error) {
	samples, err := cleanAll(k.groups, 2)
	if err != nil {
		return nil, err
	}

	var all []float64
	for _, s := range samples {
		all = append(all, s.xs...)
	}
	ranks, ties := rankAverage(all)

	w := kruskalWorkings{n: len(all), tie: tieCorrection(ties, len(all))}
	offset := 0
	sumTerm := 0.0
	for _, s := range samples {
		rs := 0.0
		for i := range s.xs {
			rs += ranks[offset+i]
		}
		offset += len(s.xs)
		w.labels = append(w.labels, s.label)
		w.ns = append(w.ns, len(s.xs))
		w.rankSums = append(w.rankSums, rs)
		sumTerm += rs * rs / float64(len(s.xs))
	}
	fn := float64(w.n)
	w.hRaw = 12/(fn*(fn+1))*sumTerm - 3*(fn+1)
	w.df = float64(len(samples) - 1)
	if w.tie > 0 {
		w.h = w.hRaw / w.tie
		w.p = NewDistributions().ChiSquarePValue(w.h, w.df)
	} else {
		// every value tied
		w.h, w.p = 0, 1
	}

	r := &result.Result{
		Kind:          result.KindKruskalWallis,
		StatisticName: "H",
		Statistic:     w.h,
		DF:            []float64{w.df},
		PValue:        w.p,
		Excluded:      totalExcluded(samples),
		Rank:          &result.RankDetail{N: w.n, TieCorrection: w.tie},
	}
	for i, s := range samples {
		g := summarize(s)
		g.RankSum = w.rankSums[i]
		g.MeanRank = w.rankSums[i] / float64(w.ns[i])
		r.Groups = append(r.Groups, g)
	}
	return finish(r, opts, w.narrate), nil
}

func (w kruskalWorkings) narrate(n *narrator) {
	n.heading("Worked Example: Kruskal-Wallis H")
	n.step("Step 1 - Rank all values together")
	n.para("All %d values are ranked from smallest to largest, tied values sharing the average of their ranks.", w.n)
	rows := make([][]string, len(w.labels))
	for i := range w.labels {
		rows[i] = []string{w.labels[i], fmt.Sprint(w.ns[i]), n.num(w.rankSums[i]), n.num(w.rankSums[i] / float64(w.ns[i]))}
	}
	n.table([]string{"Group", "N", "Sum of ranks", "Mean rank"}, rows)

	n.step("Step 2 - H")
	n.para("H = 12 / (N(N + 1)) × Σ(R²/n) - 3(N + 1) = %s.", n.num(w.hRaw))
	n.para("Correcting for ties divides by %s, giving H = %s.", n.num(w.tie), n.num(w.h))

	n.step("Step 3 - p")
	n.para("Compared to a chi-square distribution with %s degrees of freedom, p = %s.", n.num(w.df), n.p(w.p))
	n.conclusion(w.p)
}
