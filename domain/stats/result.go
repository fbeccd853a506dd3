package stats

// Kind identifies a statistical test.
type Kind string

const (
	KindANOVA         Kind = "anova"
	KindChiSquare     Kind = "chi_square"
	KindIndependentT  Kind = "ttest_independent"
	KindPairedT       Kind = "ttest_paired"
	KindMannWhitney   Kind = "mann_whitney_u"
	KindWilcoxon      Kind = "wilcoxon_signed_rank"
	KindKruskalWallis Kind = "kruskal_wallis_h"
	KindPearson       Kind = "pearson_r"
	KindSpearman      Kind = "spearman_r"
	KindNormality     Kind = "normality"
)

var kindTitles = map[Kind]string{
	KindANOVA:         "One-way ANOVA",
	KindChiSquare:     "Chi Square Test of Independence",
	KindIndependentT:  "Independent Samples t-test",
	KindPairedT:       "Paired Samples t-test",
	KindMannWhitney:   "Mann-Whitney U",
	KindWilcoxon:      "Wilcoxon Signed Ranks",
	KindKruskalWallis: "Kruskal-Wallis H",
	KindPearson:       "Pearson's R Correlation",
	KindSpearman:      "Spearman's R Correlation",
	KindNormality:     "Normality Test",
}

// Title is the human readable test name.
func (k Kind) Title() string {
	if t, ok := kindTitles[k]; ok {
		return t
	}
	return string(k)
}

// Kinds lists every supported test in a stable order.
func Kinds() []Kind {
	return []Kind{
		KindANOVA, KindChiSquare, KindIndependentT, KindPairedT, KindMannWhitney,
		KindWilcoxon, KindKruskalWallis, KindPearson, KindSpearman, KindNormality,
	}
}

// GroupSummary describes one group (or one side of a pair) after exclusions.
type GroupSummary struct {
	Label    string  `json:"label"`
	N        int     `json:"n"`
	Excluded int     `json:"excluded"`
	Mean     float64 `json:"mean"`
	Median   float64 `json:"median"`
	SD       float64 `json:"sd"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	RankSum  float64 `json:"rank_sum,omitempty"`
	MeanRank float64 `json:"mean_rank,omitempty"`
}

// ContingencyDetail is the observed vs expected sub-table of a chi-square test.
type ContingencyDetail struct {
	RowVariable string      `json:"row_variable"`
	ColVariable string      `json:"col_variable"`
	RowLabels   []string    `json:"row_labels"`
	ColLabels   []string    `json:"col_labels"`
	Observed    [][]float64 `json:"observed"`
	Expected    [][]float64 `json:"expected"`
	Total       float64     `json:"total"`
	MinExpected float64     `json:"min_expected"`
	// PctCellsBelow5 is the share of cells with an expected count under 5, in percent.
	PctCellsBelow5 float64 `json:"pct_cells_below_5"`
}

// CorrelationDetail carries the coefficient and the least squares line through the points.
type CorrelationDetail struct {
	N         int     `json:"n"`
	R         float64 `json:"r"`
	T         float64 `json:"t"`
	Slope     float64 `json:"slope"`
	Intercept float64 `json:"intercept"`
	RSquared  float64 `json:"r_squared"`
	XStart    float64 `json:"x_start"`
	YStart    float64 `json:"y_start"`
	XEnd      float64 `json:"x_end"`
	YEnd      float64 `json:"y_end"`
}

// NormalityDetail carries the D'Agostino-Pearson components.
type NormalityDetail struct {
	N         int     `json:"n"`
	Paired    bool    `json:"paired"`
	Skew      float64 `json:"skew"`
	Kurtosis  float64 `json:"kurtosis"` // excess kurtosis
	ZSkew     float64 `json:"z_skew"`
	ZKurtosis float64 `json:"z_kurtosis"`
}

// EffectDetail is reported by the t-tests.
type EffectDetail struct {
	MeanDifference float64 `json:"mean_difference"`
	SD             float64 `json:"sd"` // pooled SD, or SD of differences for paired data
	CohensD        float64 `json:"cohens_d"`
}

// RankDetail is reported by the rank based tests.
type RankDetail struct {
	N             int     `json:"n"`
	Z             float64 `json:"z"`
	TieCorrection float64 `json:"tie_correction"`
	PositiveRanks float64 `json:"positive_ranks,omitempty"`
	NegativeRanks float64 `json:"negative_ranks,omitempty"`
}

// Result is the uniform outcome of every statistical test. It is built once and not modified.
type Result struct {
	Kind          Kind           `json:"kind"`
	StatisticName string         `json:"statistic_name"`
	Statistic     float64        `json:"statistic"`
	DF            []float64      `json:"df,omitempty"`
	PValue        float64        `json:"p_value"`
	Groups        []GroupSummary `json:"groups,omitempty"`
	Excluded      int            `json:"excluded"`

	Contingency *ContingencyDetail `json:"contingency,omitempty"`
	Correlation *CorrelationDetail `json:"correlation,omitempty"`
	Normality   *NormalityDetail   `json:"normality,omitempty"`
	Effect      *EffectDetail      `json:"effect,omitempty"`
	Rank        *RankDetail        `json:"rank,omitempty"`

	// Narrative is a markdown worked example, present when workings were requested.
	Narrative     string `json:"narrative,omitempty"`
	DecimalPoints int    `json:"decimal_points"`
	HighPrecision bool   `json:"high_precision"`
}

// Significant reports whether the p-value is below alpha.
func (r *Result) Significant(alpha float64) bool {
	return r.PValue < alpha
}
