package stats

import (
	"math"
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/stat/distuv"

	"tabstat/domain/core"
	result "tabstat/domain/stats"
)

func group(label string, values ...float64) Group {
	g := Group{Label: label}
	for _, v := range values {
		g.Values = append(g.Values, v)
	}
	return g
}

var defaultOpts = Options{DecimalPoints: 3}

func separatedGroups() []Group {
	return []Group{group("a", 1, 2, 3), group("b", 4, 5, 6), group("c", 7, 8, 9)}
}

func TestANOVA_SeparatedGroups(t *testing.T) {
	test, err := NewANOVA(separatedGroups())
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.Equal(t, result.KindANOVA, r.Kind)
	assert.InDelta(t, 27.0, r.Statistic, 1e-9)
	assert.Equal(t, []float64{2, 6}, r.DF)
	// F(2, 6) upper tail is (1 + 2F/6)^-3
	assert.InDelta(t, 0.001, r.PValue, 1e-6)
	assert.Less(t, r.PValue, 0.01)
	require.Len(t, r.Groups, 3)
	assert.Equal(t, 5.0, r.Groups[1].Mean)
	assert.Empty(t, r.Narrative)
}

func TestANOVA_SameDistributionRarelySignificant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	notSignificant := 0
	const trials = 50
	for trial := 0; trial < trials; trial++ {
		groups := make([]Group, 3)
		for g := range groups {
			groups[g].Label = string(rune('a' + g))
			for i := 0; i < 30; i++ {
				groups[g].Values = append(groups[g].Values, 50+10*rng.NormFloat64())
			}
		}
		test, err := NewANOVA(groups)
		require.NoError(t, err)
		r, err := test.Compute(defaultOpts)
		require.NoError(t, err)
		if r.PValue > 0.05 {
			notSignificant++
		}
	}
	assert.GreaterOrEqual(t, notSignificant, 40, "expected a large majority of trials to be non-significant")
}

func TestANOVA_Arity(t *testing.T) {
	_, err := NewANOVA([]Group{group("only", 1, 2, 3)})
	require.Error(t, err)
	assert.ErrorIs(t, err, core.ErrArity)
	assert.True(t, core.IsConfigurationError(err))
}

func TestANOVA_InsufficientGroup(t *testing.T) {
	test, err := NewANOVA([]Group{group("a", 1, 2, 3), {Label: "b", Values: []any{4.0, nil, "x"}}})
	require.NoError(t, err)
	_, err = test.Compute(defaultOpts)
	assert.True(t, core.IsInsufficientDataError(err))
}

func TestKruskalWallis(t *testing.T) {
	test, err := NewKruskalWallis(separatedGroups())
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.InDelta(t, 7.2, r.Statistic, 1e-9)
	assert.Equal(t, []float64{2}, r.DF)
	assert.InDelta(t, math.Exp(-3.6), r.PValue, 1e-9)
	assert.Equal(t, 6.0, r.Groups[0].RankSum)
	assert.Equal(t, 8.0, r.Groups[2].MeanRank)
}

func TestIndependentT(t *testing.T) {
	test, err := NewIndependentT(group("a", 1, 2, 3, 4, 5), group("b", 3, 4, 5, 6, 7))
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.InDelta(t, -2.0, r.Statistic, 1e-9)
	assert.Equal(t, []float64{8}, r.DF)
	assert.InDelta(t, 0.0805, r.PValue, 1e-3)
	require.NotNil(t, r.Effect)
	assert.InDelta(t, -2.0, r.Effect.MeanDifference, 1e-9)
	assert.InDelta(t, -2/math.Sqrt(2.5), r.Effect.CohensD, 1e-9)
}

func TestIndependentT_ExclusionCount(t *testing.T) {
	a := Group{Label: "a", Values: []any{1.0, nil, 2.0, "n/a", 3.0, "", int64(4), 5.0}}
	b := Group{Label: "b", Values: []any{3.0, 4.0, "7", 5.0, 6.0, nil}}

	test, err := NewIndependentT(a, b)
	require.NoError(t, err)
	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)

	assert.Equal(t, 3, r.Groups[0].Excluded)
	assert.Equal(t, 5, r.Groups[0].N)
	assert.Equal(t, 1, r.Groups[1].Excluded)
	assert.Equal(t, 5, r.Groups[1].N)
	assert.Equal(t, 4, r.Excluded)
}

func TestPairedT(t *testing.T) {
	test, err := NewPairedT(group("before", 10, 12, 14, 16, 18), group("after", 9, 11, 14, 14, 15))
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.InDelta(t, 1.4/math.Sqrt(0.26), r.Statistic, 1e-9)
	assert.Equal(t, []float64{4}, r.DF)
	assert.InDelta(t, NewDistributions().TTestPValue(r.Statistic, 4), r.PValue, 1e-12)
}

func TestPairedT_DropsIncompletePairs(t *testing.T) {
	a := Group{Label: "a", Values: []any{1.0, 2.0, nil, 4.0, 5.0}}
	b := Group{Label: "b", Values: []any{2.0, "x", 3.0, 5.0, 7.0}}
	test, err := NewPairedT(a, b)
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.Equal(t, 2, r.Excluded)
	assert.Equal(t, 3, r.Groups[0].N)
	assert.Equal(t, 1, r.Groups[0].Excluded)
	assert.Equal(t, 1, r.Groups[1].Excluded)
}

func TestPairedTests_LengthMismatch(t *testing.T) {
	a, b := group("a", 1, 2, 3), group("b", 1, 2)
	_, err := NewPairedT(a, b)
	assert.True(t, core.IsConfigurationError(err))
	_, err = NewWilcoxon(a, b)
	assert.True(t, core.IsConfigurationError(err))
	_, err = NewPearson(a, b)
	assert.True(t, core.IsConfigurationError(err))
	_, err = NewPairedNormality(a, b)
	assert.True(t, core.IsConfigurationError(err))
}

func TestMannWhitney(t *testing.T) {
	test, err := NewMannWhitney(group("a", 1, 2, 3), group("b", 4, 5, 6))
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Statistic)
	require.NotNil(t, r.Rank)
	assert.InDelta(t, 4.5/math.Sqrt(5.25), r.Rank.Z, 1e-9)
	assert.InDelta(t, 1-distuv.UnitNormal.CDF(r.Rank.Z), r.PValue, 1e-9)
	assert.InDelta(t, 0.0248, r.PValue, 1e-3)
	assert.Equal(t, 6.0, r.Groups[0].RankSum)
	assert.Equal(t, 15.0, r.Groups[1].RankSum)
}

func TestMannWhitney_TieCorrection(t *testing.T) {
	test, err := NewMannWhitney(group("a", 1, 2, 2), group("b", 2, 3, 4))
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	// three tied 2s in six values
	assert.InDelta(t, 1-24.0/210, r.Rank.TieCorrection, 1e-12)
}

func TestWilcoxon(t *testing.T) {
	test, err := NewWilcoxon(group("a", 2, 4, 6, 8, 10), group("b", 1, 2, 3, 4, 5))
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.Equal(t, 0.0, r.Statistic)
	assert.Equal(t, 15.0, r.Rank.PositiveRanks)
	assert.InDelta(t, -7.5/math.Sqrt(13.75), r.Rank.Z, 1e-9)
	assert.InDelta(t, 0.0431, r.PValue, 1e-3)
}

func TestWilcoxon_AllZeroDifferences(t *testing.T) {
	test, err := NewWilcoxon(group("a", 1, 2, 3), group("b", 1, 2, 3))
	require.NoError(t, err)
	_, err = test.Compute(defaultOpts)
	assert.True(t, core.IsInsufficientDataError(err))
}

func TestChiSquare(t *testing.T) {
	independent, err := NewChiSquare(Contingency{
		RowVariable: "country", ColVariable: "gender",
		RowLabels: []string{"Japan", "Italy"}, ColLabels: []string{"Female", "Male"},
		Observed: [][]float64{{10, 10}, {10, 10}},
	})
	require.NoError(t, err)
	r, err := independent.Compute(defaultOpts)
	require.NoError(t, err)
	assert.InDelta(t, 0.0, r.Statistic, 1e-12)
	assert.Greater(t, r.PValue, 0.5)

	associated, err := NewChiSquare(Contingency{
		RowVariable: "country", ColVariable: "gender",
		RowLabels: []string{"Japan", "Italy"}, ColLabels: []string{"Female", "Male"},
		Observed: [][]float64{{20, 10}, {10, 20}},
	})
	require.NoError(t, err)
	r, err = associated.Compute(defaultOpts)
	require.NoError(t, err)
	assert.InDelta(t, 20.0/3, r.Statistic, 1e-9)
	assert.Equal(t, []float64{1}, r.DF)
	assert.InDelta(t, 0.0098, r.PValue, 1e-3)
	require.NotNil(t, r.Contingency)
	assert.Equal(t, 15.0, r.Contingency.Expected[0][1])
	assert.Equal(t, 15.0, r.Contingency.MinExpected)
	assert.Equal(t, 0.0, r.Contingency.PctCellsBelow5)
}

func TestChiSquare_Validation(t *testing.T) {
	_, err := NewChiSquare(Contingency{RowLabels: []string{"a"}, ColLabels: []string{"x", "y"}, Observed: [][]float64{{1}}})
	assert.True(t, core.IsConfigurationError(err))

	single, err := NewChiSquare(Contingency{RowLabels: []string{"a"}, ColLabels: []string{"x", "y"}, Observed: [][]float64{{1, 2}}})
	require.NoError(t, err)
	_, err = single.Compute(defaultOpts)
	assert.True(t, core.IsInsufficientDataError(err))
}

func TestPearson(t *testing.T) {
	test, err := NewPearson(group("x", 1, 2, 3, 4, 5), group("y", 2, 4, 5, 4, 5))
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.InDelta(t, 6/math.Sqrt(60), r.Statistic, 1e-9)
	assert.Equal(t, []float64{3}, r.DF)
	require.NotNil(t, r.Correlation)
	assert.InDelta(t, 0.6, r.Correlation.Slope, 1e-9)
	assert.InDelta(t, 2.2, r.Correlation.Intercept, 1e-9)
	assert.InDelta(t, 0.6, r.Correlation.RSquared, 1e-9)
	assert.InDelta(t, 2.8, r.Correlation.YStart, 1e-9)
	// the incomplete beta form equals the two-tailed t-test p
	assert.InDelta(t, NewDistributions().TTestPValue(r.Correlation.T, 3), r.PValue, 1e-6)
}

func TestPearson_NoVariation(t *testing.T) {
	test, err := NewPearson(group("x", 1, 1, 1, 1), group("y", 1, 2, 3, 4))
	require.NoError(t, err)
	_, err = test.Compute(defaultOpts)
	assert.True(t, core.IsInsufficientDataError(err))
}

func TestSpearman(t *testing.T) {
	test, err := NewSpearman(group("x", 1, 2, 3, 4, 5), group("y", 2, 1, 4, 3, 5))
	require.NoError(t, err)

	r, err := test.Compute(Options{DecimalPoints: 3, ShowWorkings: true})
	require.NoError(t, err)
	assert.InDelta(t, 0.8, r.Statistic, 1e-9)
	assert.InDelta(t, 0.8*math.Sqrt(3/0.36), r.Correlation.T, 1e-9)
	assert.Contains(t, r.Narrative, "Σd² = 4")
	assert.NotContains(t, r.Narrative, "Tied values")
}

func TestSpearman_TiesUseDSquaredFormula(t *testing.T) {
	test, err := NewSpearman(group("x", 1, 2, 2, 3, 4, 5, 5, 6), group("y", 2, 1, 3, 3, 5, 4, 6, 6))
	require.NoError(t, err)

	r, err := test.Compute(Options{DecimalPoints: 3, ShowWorkings: true})
	require.NoError(t, err)
	// average ranks give Σd² = 9 over n = 8
	rs := 1 - 6*9.0/(8*63)
	assert.InDelta(t, rs, r.Statistic, 1e-12)
	assert.InDelta(t, rs*math.Sqrt(6/((rs+1)*(1-rs))), r.Correlation.T, 1e-9)
	assert.Equal(t, []float64{6}, r.DF)
	assert.Contains(t, r.Narrative, "Tied values")
	assert.Contains(t, r.Narrative, "Σd² = 9")
}

func TestSpearman_PerfectMonotonic(t *testing.T) {
	test, err := NewSpearman(group("x", 1, 2, 3, 4), group("y", 10, 20, 40, 80))
	require.NoError(t, err)
	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.Equal(t, 1.0, r.Statistic)
	assert.Equal(t, 0.0, r.PValue)
}

func normalQuantiles(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = distuv.UnitNormal.Quantile((float64(i) + 0.5) / float64(n))
	}
	return out
}

func exponentialQuantiles(n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = -math.Log(1 - (float64(i)+0.5)/float64(n))
	}
	return out
}

func TestNormality(t *testing.T) {
	normal, err := NewNormality(group("normal", normalQuantiles(50)...)).Compute(defaultOpts)
	require.NoError(t, err)
	assert.Greater(t, normal.PValue, 0.05)
	assert.InDelta(t, 0.0, normal.Normality.Skew, 1e-6)
	assert.Equal(t, []float64{2}, normal.DF)

	skewed, err := NewNormality(group("exponential", exponentialQuantiles(50)...)).Compute(defaultOpts)
	require.NoError(t, err)
	assert.Less(t, skewed.PValue, 0.01)
	assert.Greater(t, skewed.Normality.Skew, 1.0)
	assert.InDelta(t, math.Exp(-skewed.Statistic/2), skewed.PValue, 1e-9)
}

func TestNormality_PairedTestsDifferences(t *testing.T) {
	base := normalQuantiles(40)
	skew := exponentialQuantiles(40)
	a := make([]float64, len(base))
	for i := range base {
		a[i] = 100 + base[i] + skew[i]
	}
	test, err := NewPairedNormality(group("after", a...), group("before", base...))
	require.NoError(t, err)

	r, err := test.Compute(defaultOpts)
	require.NoError(t, err)
	assert.True(t, r.Normality.Paired)
	assert.Equal(t, "after - before", r.Groups[0].Label)
	assert.Less(t, r.PValue, 0.01)
}

func TestNormality_TooFewValues(t *testing.T) {
	_, err := NewNormality(group("few", 1, 2, 3, 4, 5, 6, 7)).Compute(defaultOpts)
	assert.True(t, core.IsInsufficientDataError(err))
}

// High and standard precision must agree to the requested decimal places.
func TestPrecisionPathsAgree(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	draw := func(label string, n int, mean float64) Group {
		g := Group{Label: label}
		for i := 0; i < n; i++ {
			g.Values = append(g.Values, mean+rng.NormFloat64()*3.7+0.001*float64(i))
		}
		return g
	}
	a, b, c := draw("a", 40, 100000.25), draw("b", 40, 100001.5), draw("c", 40, 100002.75)

	build := func() []Test {
		anova, _ := NewANOVA([]Group{a, b, c})
		indep, _ := NewIndependentT(a, b)
		paired, _ := NewPairedT(a, b)
		pearson, _ := NewPearson(a, c)
		spearman, _ := NewSpearman(a, c)
		kw, _ := NewKruskalWallis([]Group{a, b, c})
		chi, _ := NewChiSquare(Contingency{RowLabels: []string{"r1", "r2"}, ColLabels: []string{"c1", "c2", "c3"},
			Observed: [][]float64{{12.5, 30, 17}, {20, 11, 40.25}}})
		return []Test{anova, indep, paired, pearson, spearman, kw, chi, NewNormality(a)}
	}

	const dp = 3
	tolerance := 0.5 * math.Pow(10, -dp)
	for _, test := range build() {
		fast, err := test.Compute(Options{DecimalPoints: dp})
		require.NoError(t, err, string(test.Kind()))
		exact, err := test.Compute(Options{DecimalPoints: dp, HighPrecision: true})
		require.NoError(t, err, string(test.Kind()))

		assert.InDelta(t, fast.Statistic, exact.Statistic, tolerance, "statistic of %s", test.Kind())
		assert.InDelta(t, fast.PValue, exact.PValue, tolerance, "p-value of %s", test.Kind())
		assert.True(t, exact.HighPrecision)
	}
}

func TestShowWorkings_NarrativeUsesComputedValues(t *testing.T) {
	test, err := NewANOVA(separatedGroups())
	require.NoError(t, err)

	r, err := test.Compute(Options{DecimalPoints: 3, ShowWorkings: true})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(r.Narrative, "## Worked Example: One-way ANOVA"))
	assert.Contains(t, r.Narrative, "F = 27 / 1 = 27")
	assert.Contains(t, r.Narrative, "3 | 5 | 2")
}

func TestEveryTestNarrates(t *testing.T) {
	a, b, c := group("a", 1, 3, 2, 5, 4, 7, 6, 9, 8, 10), group("b", 2, 2, 4, 3, 6, 5, 8, 7, 9, 12), group("c", 5, 6, 7, 8, 9, 10, 11, 12, 13, 14)
	anova, _ := NewANOVA([]Group{a, b, c})
	kw, _ := NewKruskalWallis([]Group{a, b, c})
	indep, _ := NewIndependentT(a, c)
	paired, _ := NewPairedT(a, b)
	mw, _ := NewMannWhitney(a, c)
	wx, _ := NewWilcoxon(a, b)
	pearson, _ := NewPearson(a, b)
	spearman, _ := NewSpearman(a, b)
	chi, _ := NewChiSquare(Contingency{RowVariable: "r", ColVariable: "c", RowLabels: []string{"x", "y"}, ColLabels: []string{"p", "q"},
		Observed: [][]float64{{3, 7}, {6, 4}}})
	pairedNorm, _ := NewPairedNormality(a, c)

	seen := map[result.Kind]bool{}
	for _, test := range []Test{anova, kw, indep, paired, mw, wx, pearson, spearman, chi, NewNormality(a), pairedNorm} {
		r, err := test.Compute(Options{DecimalPoints: 2, ShowWorkings: true})
		require.NoError(t, err, string(test.Kind()))
		assert.Contains(t, r.Narrative, "Worked Example", string(test.Kind()))
		assert.GreaterOrEqual(t, r.PValue, 0.0)
		assert.LessOrEqual(t, r.PValue, 1.0)
		seen[r.Kind] = true
	}
	assert.Len(t, seen, len(result.Kinds()))
}
