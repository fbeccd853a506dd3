package tabulation

import (
	"strings"

	"tabstat/domain/design"
	domain "tabstat/domain/tabulation"
)

// CrossTab expands every row and column tree of the design and builds the grid.
// Trees on one axis are concatenated in declaration order.
//
// idx may hold nulls. Each tree is expanded over the records with a value for every
// variable of that tree, and each (row tree, column tree) block is counted over the
// records with a value for every variable of the pair, so a null in one tree never
// changes the counts of an unrelated block.
func CrossTab(d *design.CrossTabDesign, idx *Index, orders design.CustomOrders) (*domain.Grid, error) {
	opts := ExpandOptions{Orders: orders, Labels: d.Common.Label}
	views := newViews(idx)

	rowBlocks, err := expandEach(d.Rows, views, opts)
	if err != nil {
		return nil, err
	}
	colBlocks, err := expandEach(d.Columns, views, opts)
	if err != nil {
		return nil, err
	}

	g := &domain.Grid{}
	for i, rowSpec := range d.Rows {
		var rowCells [][]domain.Cell
		for j, colSpec := range d.Columns {
			metrics := make([][]design.Metric, len(colBlocks[j]))
			for k := range metrics {
				metrics[k] = colSpec.Metrics()
			}
			pair := append(append([]string(nil), rowSpec.Variables()...), colSpec.Variables()...)
			block, err := BuildGrid(rowBlocks[i], colBlocks[j], views.over(pair), metrics)
			if err != nil {
				return nil, err
			}
			if i == 0 {
				g.ColPaths = append(g.ColPaths, block.ColPaths...)
				g.ColMetrics = append(g.ColMetrics, block.ColMetrics...)
			}
			if rowCells == nil {
				rowCells = block.Cells
				continue
			}
			for r := range rowCells {
				rowCells[r] = append(rowCells[r], block.Cells[r]...)
			}
		}
		g.RowPaths = append(g.RowPaths, rowBlocks[i]...)
		g.Cells = append(g.Cells, rowCells...)
	}
	return g, nil
}

// Frequency builds a single-column grid of counts, optionally with column percentages.
// Each row tree is counted over the records with a value for every variable of the tree.
func Frequency(d *design.FrequencyDesign, idx *Index, orders design.CustomOrders) (*domain.Grid, error) {
	opts := ExpandOptions{Orders: orders, Labels: d.Common.Label}
	views := newViews(idx)

	var metrics []design.Metric
	if d.IncludeColumnPercent {
		metrics = []design.Metric{design.MetricColPct}
	}
	g := &domain.Grid{ColPaths: []domain.Path{{}}}
	for _, spec := range d.Rows {
		view := views.over(spec.Variables())
		rows, err := Expand(spec, view, opts)
		if err != nil {
			return nil, err
		}
		block, err := BuildGrid(rows, g.ColPaths, view, [][]design.Metric{metrics})
		if err != nil {
			return nil, err
		}
		g.ColMetrics = block.ColMetrics
		g.RowPaths = append(g.RowPaths, block.RowPaths...)
		g.Cells = append(g.Cells, block.Cells...)
	}
	return g, nil
}

func expandEach(specs []*design.DimensionSpec, views *views, opts ExpandOptions) ([][]domain.Path, error) {
	out := make([][]domain.Path, len(specs))
	for i, spec := range specs {
		paths, err := Expand(spec, views.over(spec.Variables()), opts)
		if err != nil {
			return nil, err
		}
		out[i] = paths
	}
	return out, nil
}

// views caches restricted indexes by variable set.
type views struct {
	idx   *Index
	cache map[string]*Index
}

func newViews(idx *Index) *views {
	return &views{idx: idx, cache: map[string]*Index{}}
}

func (v *views) over(vars []string) *Index {
	sig := strings.Join(vars, keySep)
	if ix, ok := v.cache[sig]; ok {
		return ix
	}
	ix := v.idx.Restrict(vars)
	v.cache[sig] = ix
	return ix
}
