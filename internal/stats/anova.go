package stats

import (
	"fmt"
	"math"

	"tabstat/domain/core"
	result "tabstat/domain/stats"
)

// ANOVA is a one-way analysis of variance across two or more groups.
type ANOVA struct {
	groups []Group
}

func NewANOVA(groups []Group) (*ANOVA, error) {
	if len(groups) < 2 {
		return nil, fmt.Errorf("%w: ANOVA needs at least 2 groups, got %d", core.ErrArity, len(groups))
	}
	return &ANOVA{groups: groups}, nil
}

func (a *ANOVA) Kind() result.Kind { return result.KindANOVA }

type anovaGroup struct {
	label string
	n     int
	mean  float64
	ssd   float64
}

type anovaWorkings struct {
	groups   []anovaGroup
	grand    float64
	ssb, ssw float64
	dfb, dfw float64
	msb, msw float64
	f, p     float64
}

func (a *ANOVA) Compute(opts Options) (*result.Result, error) {
	samples, err := cleanAll(a.groups, 2)
	if err != nil {
		return nil, err
	}
	num := newNumeric(opts.HighPrecision)

	var all []float64
	for _, s := range samples {
		all = append(all, s.xs...)
	}
	w := anovaWorkings{grand: num.mean(all)}
	for _, s := range samples {
		g := anovaGroup{label: s.label, n: len(s.xs), mean: num.mean(s.xs)}
		g.ssd = num.ssd(s.xs, g.mean)
		w.groups = append(w.groups, g)

		dev := g.mean - w.grand
		w.ssb += float64(g.n) * dev * dev
		w.ssw += g.ssd
	}
	w.dfb = float64(len(samples) - 1)
	w.dfw = float64(len(all) - len(samples))
	w.msb = w.ssb / w.dfb
	w.msw = w.ssw / w.dfw

	switch {
	case w.msw > 0:
		w.f = w.msb / w.msw
		w.p = NewDistributions().FTestPValue(w.f, w.dfb, w.dfw)
	case w.msb > 0:
		w.f, w.p = math.Inf(1), 0
	default:
		w.f, w.p = 0, 1
	}

	r := &result.Result{
		Kind:          result.KindANOVA,
		StatisticName: "F",
		Statistic:     w.f,
		DF:            []float64{w.dfb, w.dfw},
		PValue:        w.p,
		Excluded:      totalExcluded(samples),
	}
	for _, s := range samples {
		r.Groups = append(r.Groups, summarize(s))
	}
	return finish(r, opts, w.narrate), nil
}

func (w anovaWorkings) narrate(n *narrator) {
	n.heading("Worked Example: One-way ANOVA")
	n.step("Step 1 - Group means")
	rows := make([][]string, len(w.groups))
	for i, g := range w.groups {
		rows[i] = []string{g.label, fmt.Sprint(g.n), n.num(g.mean), n.num(g.ssd)}
	}
	n.table([]string{"Group", "N", "Mean", "Sum of squared deviations"}, rows)
	n.para("The grand mean of all values is %s.", n.num(w.grand))

	n.step("Step 2 - Sums of squares")
	n.para("Between groups: sum of N × (group mean - grand mean)² = %s.", n.num(w.ssb))
	n.para("Within groups: sum of each group's squared deviations from its own mean = %s.", n.num(w.ssw))

	n.step("Step 3 - Mean squares")
	n.para("Between: %s / %s = %s. Within: %s / %s = %s.",
		n.num(w.ssb), n.num(w.dfb), n.num(w.msb), n.num(w.ssw), n.num(w.dfw), n.num(w.msw))

	n.step("Step 4 - F and p")
	n.para("F = %s / %s = %s with %s and %s degrees of freedom, giving p = %s.",
		n.num(w.msb), n.num(w.msw), n.num(w.f), n.num(w.dfb), n.num(w.dfw), n.p(w.p))
	n.conclusion(w.p)
}
