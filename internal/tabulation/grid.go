package tabulation

import (
	"tabstat/domain/core"
	"tabstat/domain/design"
	domain "tabstat/domain/tabulation"
)

// BuildGrid counts every (row path, column path) intersection and derives the requested
// percentages. metrics lists, per column path, the metrics to display under it.
//
// ROW_PCT divides by the records matching the full row path and the column path with its
// innermost level relaxed, so siblings at the innermost column level sum to 100.
// COL_PCT mirrors this on the row axis. A zero denominator yields 0.
func BuildGrid(rows, cols []domain.Path, idx *Index, metrics [][]design.Metric) (*domain.Grid, error) {
	if len(metrics) != len(cols) {
		return nil, core.NewConfigurationError("got metrics for %d column paths, want %d", len(metrics), len(cols))
	}

	rowCons := make([][]Constraint, len(rows))
	rowRelaxed := make([][]Constraint, len(rows))
	for r, p := range rows {
		rowCons[r] = constraints(p)
		rowRelaxed[r] = constraints(p.RelaxTerminal())
	}
	colCons := make([][]Constraint, len(cols))
	colRelaxed := make([][]Constraint, len(cols))
	for c, p := range cols {
		colCons[c] = constraints(p)
		colRelaxed[c] = constraints(p.RelaxTerminal())
	}

	// one pre-aggregated table per distinct variable combination
	for r := range rows {
		for c := range cols {
			idx.Prepare(variables(rowCons[r], colCons[c]))
		}
	}

	g := &domain.Grid{
		RowPaths:   rows,
		ColPaths:   cols,
		ColMetrics: make([][]design.Metric, len(cols)),
		Cells:      make([][]domain.Cell, len(rows)),
	}
	for c := range cols {
		g.ColMetrics[c] = withFreq(metrics[c])
	}

	for r := range rows {
		g.Cells[r] = make([]domain.Cell, len(cols))
		for c := range cols {
			cell := domain.Cell{Count: idx.Count(join(rowCons[r], colCons[c]))}
			for _, m := range metrics[c] {
				switch m {
				case design.MetricRowPct:
					cell.RowBase = idx.Count(join(rowCons[r], colRelaxed[c]))
					setPct(&cell, m, cell.Count, cell.RowBase)
				case design.MetricColPct:
					cell.ColBase = idx.Count(join(rowRelaxed[r], colCons[c]))
					setPct(&cell, m, cell.Count, cell.ColBase)
				}
			}
			g.Cells[r][c] = cell
		}
	}
	return g, nil
}

func setPct(cell *domain.Cell, m design.Metric, count, base int64) {
	if cell.Pct == nil {
		cell.Pct = map[design.Metric]float64{}
	}
	if base == 0 {
		cell.Pct[m] = 0
		return
	}
	cell.Pct[m] = 100 * float64(count) / float64(base)
}

func constraints(p domain.Path) []Constraint {
	out := make([]Constraint, len(p.Steps))
	for i, s := range p.Steps {
		out[i] = Constraint{Variable: s.Variable, Key: s.Key, Any: s.Total}
	}
	return out
}

func join(a, b []Constraint) []Constraint {
	out := make([]Constraint, 0, len(a)+len(b))
	return append(append(out, a...), b...)
}

func variables(a, b []Constraint) []string {
	out := make([]string, 0, len(a)+len(b))
	for _, c := range a {
		out = append(out, c.Variable)
	}
	for _, c := range b {
		out = append(out, c.Variable)
	}
	return out
}

func withFreq(metrics []design.Metric) []design.Metric {
	out := []design.Metric{design.MetricFreq}
	for _, m := range metrics {
		if m != design.MetricFreq {
			out = append(out, m)
		}
	}
	return out
}
