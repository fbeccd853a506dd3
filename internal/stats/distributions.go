// Package stats computes the inferential tests behind statistical designs.
package stats

import (
	"math"

	"gonum.org/v1/gonum/mathext"
	"gonum.org/v1/gonum/stat/distuv"
)

// Distributions provides the reference distributions used to turn statistics into p-values.
type Distributions struct{}

// NewDistributions creates a new distributions utility
func NewDistributions() *Distributions {
	return &Distributions{}
}

// TTestPValue is the two-tailed p-value of a Student's t statistic.
func (d *Distributions) TTestPValue(t, df float64) float64 {
	if df <= 0 || math.IsNaN(t) {
		return 1.0
	}
	tDist := distuv.StudentsT{Mu: 0, Sigma: 1, Nu: df}
	return clampP(2 * tDist.Survival(math.Abs(t)))
}

// FTestPValue is the upper tail p-value of an F statistic.
func (d *Distributions) FTestPValue(f, df1, df2 float64) float64 {
	if df1 <= 0 || df2 <= 0 || math.IsNaN(f) {
		return 1.0
	}
	fDist := distuv.F{D1: df1, D2: df2}
	return clampP(fDist.Survival(f))
}

// ChiSquarePValue is the upper tail p-value of a chi-square statistic.
func (d *Distributions) ChiSquarePValue(chi, df float64) float64 {
	if df <= 0 || math.IsNaN(chi) {
		return 1.0
	}
	chiDist := distuv.ChiSquared{K: df}
	return clampP(chiDist.Survival(chi))
}

// NormalUpperTail is 1 - Φ(z).
func (d *Distributions) NormalUpperTail(z float64) float64 {
	return distuv.UnitNormal.Survival(z)
}

// IncompleteBeta is the regularized incomplete beta function I_x(a, b).
func (d *Distributions) IncompleteBeta(a, b, x float64) float64 {
	switch {
	case x <= 0:
		return 0
	case x >= 1:
		return 1
	}
	return mathext.RegIncBeta(a, b, x)
}

// CorrelationPValue is the two-tailed p-value of a correlation coefficient via its
// t transform, evaluated through the incomplete beta function.
func (d *Distributions) CorrelationPValue(r float64, n int) (t, p float64) {
	const tiny = 1.0e-30
	df := float64(n - 2)
	if df <= 0 {
		return 0, 1.0
	}
	t = r * math.Sqrt(df/((1.0-r+tiny)*(1.0+r+tiny)))
	p = d.IncompleteBeta(0.5*df, 0.5, df/(df+t*t))
	return t, clampP(p)
}

// EffectSizeCohenD computes Cohen's d from a mean difference and a pooled SD.
func (d *Distributions) EffectSizeCohenD(meanDiff, pooledSD float64) float64 {
	if pooledSD == 0 {
		return 0
	}
	return meanDiff / pooledSD
}

func clampP(p float64) float64 {
	switch {
	case math.IsNaN(p):
		return 1.0
	case p < 0:
		return 0
	case p > 1:
		return 1
	}
	return p
}
