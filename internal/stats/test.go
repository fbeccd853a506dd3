package stats

import (
	result "tabstat/domain/stats"
)

// Options control how a test is computed and reported.
type Options struct {
	// HighPrecision accumulates sums in 256-bit floats instead of float64.
	HighPrecision bool
	DecimalPoints int
	// ShowWorkings adds a markdown worked example to the result.
	ShowWorkings bool
}

// Test is one inferential test over already extracted data.
type Test interface {
	Kind() result.Kind
	Compute(opts Options) (*result.Result, error)
}

// finish stamps the options onto a result and attaches the narrative when requested.
// narrate only reads the workings the statistic was computed from.
func finish(r *result.Result, opts Options, narrate func(n *narrator)) *result.Result {
	r.DecimalPoints = opts.DecimalPoints
	r.HighPrecision = opts.HighPrecision
	if opts.ShowWorkings && narrate != nil {
		n := newNarrator(opts.DecimalPoints)
		narrate(n)
		r.Narrative = n.String()
	}
	return r
}
