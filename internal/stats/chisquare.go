package stats

import (
	"fmt"

	"tabstat/domain/core"
	result "tabstat/domain/stats"
)

// Contingency is an observed frequency table of two categorical variables.
// Labels are already in display order.
type Contingency struct {
	RowVariable string
	ColVariable string
	RowLabels   []string
	ColLabels   []string
	Observed    [][]float64
}

// ChiSquare is the chi-square test of independence.
type ChiSquare struct {
	table Contingency
}

func NewChiSquare(table Contingency) (*ChiSquare, error) {
	if len(table.Observed) != len(table.RowLabels) {
		return nil, core.NewConfigurationError("contingency table has %d rows but %d row labels", len(table.Observed), len(table.RowLabels))
	}
	for i, row := range table.Observed {
		if len(row) != len(table.ColLabels) {
			return nil, core.NewConfigurationError("contingency row %q has %d cells, want %d", table.RowLabels[i], len(row), len(table.ColLabels))
		}
	}
	return &ChiSquare{table: table}, nil
}

func (c *ChiSquare) Kind() result.Kind { return result.KindChiSquare }

type chiSquareWorkings struct {
	table             Contingency
	rowTotals         []float64
	colTotals         []float64
	total             float64
	expected          [][]float64
	terms             [][]float64
	chi, df, p        float64
	minExpected       float64
	pctCellsUnderFive float64
}

func (c *ChiSquare) Compute(opts Options) (*result.Result, error) {
	t := c.table
	if len(t.RowLabels) < 2 || len(t.ColLabels) < 2 {
		return nil, core.NewInsufficientDataError("chi square needs at least 2 values of %q and of %q, got %d and %d",
			t.RowVariable, t.ColVariable, len(t.RowLabels), len(t.ColLabels))
	}
	num := newNumeric(opts.HighPrecision)

	w := chiSquareWorkings{table: t, rowTotals: make([]float64, len(t.RowLabels)), colTotals: make([]float64, len(t.ColLabels))}
	for i, row := range t.Observed {
		w.rowTotals[i] = num.sum(row)
		for j, o := range row {
			w.colTotals[j] += o
		}
	}
	w.total = num.sum(w.rowTotals)
	if w.total == 0 {
		return nil, core.NewInsufficientDataError("no records with values for both %q and %q", t.RowVariable, t.ColVariable)
	}

	w.expected = make([][]float64, len(t.RowLabels))
	w.terms = make([][]float64, len(t.RowLabels))
	var terms []float64
	underFive := 0
	w.minExpected = -1
	for i := range t.Observed {
		w.expected[i] = make([]float64, len(t.ColLabels))
		w.terms[i] = make([]float64, len(t.ColLabels))
		for j, o := range t.Observed[i] {
			e := w.rowTotals[i] * w.colTotals[j] / w.total
			w.expected[i][j] = e
			if w.minExpected < 0 || e < w.minExpected {
				w.minExpected = e
			}
			if e < 5 {
				underFive++
			}
			if e > 0 {
				w.terms[i][j] = (o - e) * (o - e) / e
				terms = append(terms, w.terms[i][j])
			}
		}
	}
	w.chi = num.sum(terms)
	w.df = float64((len(t.RowLabels) - 1) * (len(t.ColLabels) - 1))
	w.p = NewDistributions().ChiSquarePValue(w.chi, w.df)
	w.pctCellsUnderFive = 100 * float64(underFive) / float64(len(t.RowLabels)*len(t.ColLabels))

	r := &result.Result{
		Kind:          result.KindChiSquare,
		StatisticName: "χ²",
		Statistic:     w.chi,
		DF:            []float64{w.df},
		PValue:        w.p,
		Contingency: &result.ContingencyDetail{
			RowVariable:    t.RowVariable,
			ColVariable:    t.ColVariable,
			RowLabels:      t.RowLabels,
			ColLabels:      t.ColLabels,
			Observed:       t.Observed,
			Expected:       w.expected,
			Total:          w.total,
			MinExpected:    w.minExpected,
			PctCellsBelow5: w.pctCellsUnderFive,
		},
	}
	return finish(r, opts, w.narrate), nil
}

func (w chiSquareWorkings) narrate(n *narrator) {
	t := w.table
	n.heading("Worked Example: Chi Square Test of Independence")
	n.step("Step 1 - Observed frequencies and totals")
	headers := append([]string{t.RowVariable + " \\ " + t.ColVariable}, t.ColLabels...)
	headers = append(headers, "Total")
	rows := make([][]string, 0, len(t.RowLabels)+1)
	for i, label := range t.RowLabels {
		row := []string{label}
		for _, o := range t.Observed[i] {
			row = append(row, n.num(o))
		}
		rows = append(rows, append(row, n.num(w.rowTotals[i])))
	}
	totals := []string{"Total"}
	for _, ct := range w.colTotals {
		totals = append(totals, n.num(ct))
	}
	n.table(headers, append(rows, append(totals, n.num(w.total))))

	n.step("Step 2 - Expected frequencies")
	n.para("Each expected frequency is row total × column total / grand total (%s).", n.num(w.total))
	rows = rows[:0]
	for i, label := range t.RowLabels {
		row := []string{label}
		for _, e := range w.expected[i] {
			row = append(row, n.num(e))
		}
		rows = append(rows, row)
	}
	n.table(headers[:len(headers)-1], rows)

	n.step("Step 3 - χ²")
	n.para("Each cell contributes (observed - expected)² / expected. For example %s / %s contributes %s.",
		t.RowLabels[0], t.ColLabels[0], n.num(w.terms[0][0]))
	n.para("Summing all %d cells gives χ² = %s.", len(t.RowLabels)*len(t.ColLabels), n.num(w.chi))

	n.step("Step 4 - p")
	n.para("Degrees of freedom = (%d - 1) × (%d - 1) = %s, giving p = %s.",
		len(t.RowLabels), len(t.ColLabels), n.num(w.df), n.p(w.p))
	n.para("The minimum expected cell count is %s and %s of cells have an expected count under 5.",
		n.num(w.minExpected), fmt.Sprintf("%s%%", n.num(w.pctCellsUnderFive)))
	n.conclusion(w.p)
}
