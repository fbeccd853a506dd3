package stats

import (
	"math/big"
)

// bigPrec is the mantissa precision of the high precision path.
const bigPrec = 256

// numeric accumulates sums either in float64 or, for high precision, in big.Float.
// Both paths return float64 results.
type numeric struct {
	exact bool
}

func newNumeric(highPrecision bool) numeric {
	return numeric{exact: highPrecision}
}

func newBig() *big.Float {
	return new(big.Float).SetPrec(bigPrec)
}

func (n numeric) sum(xs []float64) float64 {
	if !n.exact {
		s := 0.0
		for _, x := range xs {
			s += x
		}
		return s
	}
	acc := newBig()
	for _, x := range xs {
		acc.Add(acc, newBig().SetFloat64(x))
	}
	f, _ := acc.Float64()
	return f
}

func (n numeric) mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	if !n.exact {
		return n.sum(xs) / float64(len(xs))
	}
	acc := newBig()
	for _, x := range xs {
		acc.Add(acc, newBig().SetFloat64(x))
	}
	acc.Quo(acc, newBig().SetInt64(int64(len(xs))))
	f, _ := acc.Float64()
	return f
}

// powerSum is Σ(x - center)^k.
func (n numeric) powerSum(xs []float64, center float64, k int) float64 {
	if !n.exact {
		s := 0.0
		for _, x := range xs {
			d := x - center
			term := 1.0
			for i := 0; i < k; i++ {
				term *= d
			}
			s += term
		}
		return s
	}
	c := newBig().SetFloat64(center)
	acc := newBig()
	for _, x := range xs {
		d := newBig().Sub(newBig().SetFloat64(x), c)
		term := newBig().SetInt64(1)
		for i := 0; i < k; i++ {
			term.Mul(term, d)
		}
		acc.Add(acc, term)
	}
	f, _ := acc.Float64()
	return f
}

// ssd is the sum of squared deviations from center.
func (n numeric) ssd(xs []float64, center float64) float64 {
	return n.powerSum(xs, center, 2)
}

// sampleVariance uses the n-1 denominator.
func (n numeric) sampleVariance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	return n.ssd(xs, n.mean(xs)) / float64(len(xs)-1)
}

// crossDeviations is Σ(x - mx)(y - my) over paired slices.
func (n numeric) crossDeviations(xs, ys []float64, mx, my float64) float64 {
	if !n.exact {
		s := 0.0
		for i := range xs {
			s += (xs[i] - mx) * (ys[i] - my)
		}
		return s
	}
	bx, by := newBig().SetFloat64(mx), newBig().SetFloat64(my)
	acc := newBig()
	for i := range xs {
		dx := newBig().Sub(newBig().SetFloat64(xs[i]), bx)
		dy := newBig().Sub(newBig().SetFloat64(ys[i]), by)
		acc.Add(acc, dx.Mul(dx, dy))
	}
	f, _ := acc.Float64()
	return f
}
