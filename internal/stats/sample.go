package stats

import (
	"fmt"
	"sort"

	mstats "github.com/montanaflynn/stats"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
	result "tabstat/domain/stats"
)

// Group is a labelled sample of raw measure values as read from the source. Values that
// are null or not numeric are excluded before any computation and counted.
type Group struct {
	Label  string
	Values []any
}

// sample is a group after exclusions.
type sample struct {
	label    string
	xs       []float64
	excluded int
}

func clean(g Group) sample {
	s := sample{label: g.Label, xs: make([]float64, 0, len(g.Values))}
	for _, v := range g.Values {
		f, ok := dataset.Float(v)
		if !ok {
			s.excluded++
			continue
		}
		s.xs = append(s.xs, f)
	}
	return s
}

func cleanAll(groups []Group, minimum int) ([]sample, error) {
	out := make([]sample, len(groups))
	for i, g := range groups {
		out[i] = clean(g)
		if len(out[i].xs) < minimum {
			return nil, core.NewInsufficientDataError("group %q has %d usable values, at least %d required",
				g.Label, len(out[i].xs), minimum)
		}
	}
	return out, nil
}

// pairs is two matched samples after pairwise exclusion.
type pairs struct {
	a, b      sample
	droppedAt int // pairs dropped because either side was unusable
}

// cleanPairs drops every pair where either value is unusable. Each side records how
// many of its own values were unusable.
func cleanPairs(a, b Group, minimum int) (pairs, error) {
	if err := requirePaired(a, b); err != nil {
		return pairs{}, err
	}
	p := pairs{a: sample{label: a.Label}, b: sample{label: b.Label}}
	for i := range a.Values {
		x, okA := dataset.Float(a.Values[i])
		y, okB := dataset.Float(b.Values[i])
		if !okA {
			p.a.excluded++
		}
		if !okB {
			p.b.excluded++
		}
		if !okA || !okB {
			p.droppedAt++
			continue
		}
		p.a.xs = append(p.a.xs, x)
		p.b.xs = append(p.b.xs, y)
	}
	if len(p.a.xs) < minimum {
		return pairs{}, core.NewInsufficientDataError("%d complete pairs of %q and %q, at least %d required",
			len(p.a.xs), a.Label, b.Label, minimum)
	}
	return p, nil
}

func requirePaired(a, b Group) error {
	if len(a.Values) != len(b.Values) {
		return fmt.Errorf("%w: paired samples differ in length: %d vs %d", core.ErrArity, len(a.Values), len(b.Values))
	}
	return nil
}

// summarize describes a sample for reporting.
func summarize(s sample) result.GroupSummary {
	g := result.GroupSummary{Label: s.label, N: len(s.xs), Excluded: s.excluded}
	if len(s.xs) == 0 {
		return g
	}
	g.Mean, _ = mstats.Mean(s.xs)
	g.Median, _ = mstats.Median(s.xs)
	g.Min, _ = mstats.Min(s.xs)
	g.Max, _ = mstats.Max(s.xs)
	if len(s.xs) > 1 {
		g.SD, _ = mstats.StandardDeviationSample(s.xs)
	}
	return g
}

func totalExcluded(samples []sample) int {
	n := 0
	for _, s := range samples {
		n += s.excluded
	}
	return n
}

// rankAverage assigns 1-based ranks, averaging ties. It also returns the size of every
// tie group so callers can apply tie corrections.
func rankAverage(xs []float64) (ranks []float64, ties []int) {
	idx := make([]int, len(xs))
	for i := range idx {
		idx[i] = i
	}
	sort.SliceStable(idx, func(i, j int) bool { return xs[idx[i]] < xs[idx[j]] })

	ranks = make([]float64, len(xs))
	for i := 0; i < len(idx); {
		j := i
		for j+1 < len(idx) && xs[idx[j+1]] == xs[idx[i]] {
			j++
		}
		avg := float64(i+j)/2 + 1
		for k := i; k <= j; k++ {
			ranks[idx[k]] = avg
		}
		if j > i {
			ties = append(ties, j-i+1)
		}
		i = j + 1
	}
	return ranks, ties
}

// tieCorrection is 1 - Σ(t³ - t) / (N³ - N).
func tieCorrection(ties []int, n int) float64 {
	if n < 2 {
		return 1
	}
	sum := 0.0
	for _, t := range ties {
		ft := float64(t)
		sum += ft*ft*ft - ft
	}
	fn := float64(n)
	return 1 - sum/(fn*fn*fn-fn)
}
