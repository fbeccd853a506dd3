package stats

import (
	"math"

	"tabstat/domain/core"
	result "tabstat/domain/stats"
)

// minNormalityN is the smallest sample the skew test is defined for.
const minNormalityN = 8

// Normality is the D'Agostino-Pearson K² omnibus test. In paired mode it tests the
// differences between two matched variables.
type Normality struct {
	a, b   Group
	paired bool
}

func NewNormality(values Group) *Normality {
	return &Normality{a: values}
}

func NewPairedNormality(a, b Group) (*Normality, error) {
	if err := requirePaired(a, b); err != nil {
		return nil, err
	}
	return &Normality{a: a, b: b, paired: true}, nil
}

func (t *Normality) Kind() result.Kind { return result.KindNormality }

type normalityWorkings struct {
	label      string
	n          int
	mean       float64
	m2, m3, m4 float64
	skew       float64
	kurtosis   float64 // Pearson, not excess
	zSkew      float64
	zKurt      float64
	k2, p      float64
}

func (t *Normality) Compute(opts Options) (*result.Result, error) {
	var s sample
	excluded := 0
	var groups []result.GroupSummary
	if t.paired {
		p, err := cleanPairs(t.a, t.b, minNormalityN)
		if err != nil {
			return nil, err
		}
		s = sample{label: p.a.label + " - " + p.b.label}
		for i := range p.a.xs {
			s.xs = append(s.xs, p.a.xs[i]-p.b.xs[i])
		}
		excluded = p.droppedAt
		groups = []result.GroupSummary{summarize(s)}
	} else {
		samples, err := cleanAll([]Group{t.a}, minNormalityN)
		if err != nil {
			return nil, err
		}
		s = samples[0]
		excluded = s.excluded
		groups = []result.GroupSummary{summarize(s)}
	}

	num := newNumeric(opts.HighPrecision)
	w := normalityWorkings{label: s.label, n: len(s.xs)}
	fn := float64(w.n)
	w.mean = num.mean(s.xs)
	w.m2 = num.powerSum(s.xs, w.mean, 2) / fn
	if w.m2 == 0 {
		return nil, core.NewInsufficientDataError("%q does not vary", s.label)
	}
	w.m3 = num.powerSum(s.xs, w.mean, 3) / fn
	w.m4 = num.powerSum(s.xs, w.mean, 4) / fn
	w.skew = w.m3 / math.Pow(w.m2, 1.5)
	w.kurtosis = w.m4 / (w.m2 * w.m2)
	w.zSkew = skewZ(w.skew, fn)
	w.zKurt = kurtosisZ(w.kurtosis, fn)
	w.k2 = w.zSkew*w.zSkew + w.zKurt*w.zKurt
	w.p = NewDistributions().ChiSquarePValue(w.k2, 2)

	r := &result.Result{
		Kind:          result.KindNormality,
		StatisticName: "K²",
		Statistic:     w.k2,
		DF:            []float64{2},
		PValue:        w.p,
		Groups:        groups,
		Excluded:      excluded,
		Normality: &result.NormalityDetail{
			N:         w.n,
			Paired:    t.paired,
			Skew:      w.skew,
			Kurtosis:  w.kurtosis - 3,
			ZSkew:     w.zSkew,
			ZKurtosis: w.zKurt,
		},
	}
	return finish(r, opts, w.narrate), nil
}

// skewZ transforms sample skewness into an approximately standard normal score.
func skewZ(b2, n float64) float64 {
	y := b2 * math.Sqrt((n+1)*(n+3)/(6*(n-2)))
	beta2 := 3 * (n*n + 27*n - 70) * (n + 1) * (n + 3) / ((n - 2) * (n + 5) * (n + 7) * (n + 9))
	w2 := -1 + math.Sqrt(2*(beta2-1))
	delta := 1 / math.Sqrt(0.5*math.Log(w2))
	alpha := math.Sqrt(2 / (w2 - 1))
	ya := y / alpha
	return delta * math.Log(ya+math.Sqrt(ya*ya+1))
}

// kurtosisZ transforms sample kurtosis into an approximately standard normal score.
func kurtosisZ(b2, n float64) float64 {
	e := 3 * (n - 1) / (n + 1)
	varb2 := 24 * n * (n - 2) * (n - 3) / ((n + 1) * (n + 1) * (n + 3) * (n + 5))
	x := (b2 - e) / math.Sqrt(varb2)
	sqrtBeta1 := 6 * (n*n - 5*n + 2) / ((n + 7) * (n + 9)) * math.Sqrt(6*(n+3)*(n+5)/(n*(n-2)*(n-3)))
	a := 6 + 8/sqrtBeta1*(2/sqrtBeta1+math.Sqrt(1+4/(sqrtBeta1*sqrtBeta1)))
	term1 := 1 - 2/(9*a)
	denom := 1 + x*math.Sqrt(2/(a-4))
	term2 := math.Cbrt((1 - 2/a) / denom)
	return (term1 - term2) / math.Sqrt(2/(9*a))
}

func (w normalityWorkings) narrate(n *narrator) {
	n.heading("Worked Example: Normality Test")
	n.step("Step 1 - Moments")
	n.para("Over %d values of %s the mean is %s. The central moments are m2 = %s, m3 = %s and m4 = %s.",
		w.n, w.label, n.num(w.mean), n.num(w.m2), n.num(w.m3), n.num(w.m4))
	n.para("Skew = m3 / m2^1.5 = %s and kurtosis = m4 / m2² = %s (excess kurtosis %s).",
		n.num(w.skew), n.num(w.kurtosis), n.num(w.kurtosis-3))
	n.step("Step 2 - z scores")
	n.para("The skew transforms to z = %s and the kurtosis to z = %s.", n.num(w.zSkew), n.num(w.zKurt))
	n.step("Step 3 - K² and p")
	n.para("K² = %s² + %s² = %s, compared to chi-square with 2 degrees of freedom: p = %s.",
		n.num(w.zSkew), n.num(w.zKurt), n.num(w.k2), n.p(w.p))
	if w.p < 0.05 {
		n.para("The data are unlikely to come from a normal distribution.")
	} else {
		n.para("There is no evidence against the data coming from a normal distribution.")
	}
}
