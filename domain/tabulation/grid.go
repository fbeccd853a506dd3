package tabulation

import (
	"tabstat/domain/design"
)

// Cell is the intersection of one row path and one column path.
type Cell struct {
	Count int64 `json:"count"`
	// Pct holds requested percentage metrics, in percent (0-100).
	Pct map[design.Metric]float64 `json:"pct,omitempty"`
	// RowBase and ColBase are the denominators used for ROW_PCT and COL_PCT.
	RowBase int64 `json:"row_base"`
	ColBase int64 `json:"col_base"`
}

// Value returns the value of a metric for the cell.
func (c Cell) Value(m design.Metric) float64 {
	if m == design.MetricFreq {
		return float64(c.Count)
	}
	return c.Pct[m]
}

// Grid is the ordered cell matrix of a table. It is built once and not modified.
type Grid struct {
	RowPaths []Path `json:"row_paths"`
	ColPaths []Path `json:"col_paths"`
	// ColMetrics lists the metrics displayed under each column path; Freq always comes first.
	ColMetrics [][]design.Metric `json:"col_metrics"`
	Cells      [][]Cell          `json:"cells"`
}

// Cell returns the cell at row r, column c.
func (g *Grid) Cell(r, c int) Cell {
	return g.Cells[r][c]
}

// Rows and Cols return the grid dimensions.
func (g *Grid) Rows() int { return len(g.RowPaths) }
func (g *Grid) Cols() int { return len(g.ColPaths) }

// RowDepth is the deepest row path.
func (g *Grid) RowDepth() int { return maxDepth(g.RowPaths) }

// ColDepth is the deepest column path.
func (g *Grid) ColDepth() int { return maxDepth(g.ColPaths) }

func maxDepth(paths []Path) int {
	depth := 0
	for _, p := range paths {
		if p.Depth() > depth {
			depth = p.Depth()
		}
	}
	return depth
}
