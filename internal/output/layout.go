package output

import (
	"tabstat/domain/design"
	"tabstat/domain/report"
	"tabstat/domain/tabulation"
	"tabstat/internal/format"
)

// levelColors is the font, background and border for one nesting level.
type levelColors struct {
	font, background, border string
}

type colors struct {
	first, other levelColors
	corner       string
}

func palette(tokens map[string]string) colors {
	return colors{
		first: levelColors{
			font:       tokens[TokenFirstLevelFont],
			background: tokens[TokenFirstLevelBackground],
			border:     tokens[TokenFirstLevelBorder],
		},
		other: levelColors{
			font:       tokens[TokenOtherLevelFont],
			background: tokens[TokenOtherLevelBackground],
			border:     tokens[TokenOtherLevelBorder],
		},
		corner: tokens[TokenCornerBackground],
	}
}

func (c colors) cell(text string, role report.CellRole, level int) report.HeaderCell {
	lc := c.other
	if level == 0 {
		lc = c.first
	}
	return report.HeaderCell{
		Text: text, Role: role, Level: level, ColSpan: 1, RowSpan: 1,
		FontColor: lc.font, Background: lc.background, Border: lc.border,
	}
}

// layoutTable produces the header block and body rows of a grid.
//
// Each column level takes two header rows, the variable name then the values,
// followed by one row of metric names. Row labels take two columns per level.
// Spanned cells are emitted once, on the first row or column they cover.
func layoutTable(g *tabulation.Grid, c colors, dp int) *report.TableView {
	colDepth, rowDepth := g.ColDepth(), g.RowDepth()
	view := &report.TableView{}

	widths := make([]int, g.Cols())
	for i := range g.ColPaths {
		widths[i] = len(g.ColMetrics[i])
	}

	headerRows := 2*colDepth + 1
	view.HeaderRows = make([][]report.HeaderCell, headerRows)
	if rowDepth > 0 {
		corner := report.HeaderCell{Role: report.RoleCorner, ColSpan: 2 * rowDepth, RowSpan: headerRows, Background: c.corner}
		view.HeaderRows[0] = append(view.HeaderRows[0], corner)
	}

	for level := 0; level < colDepth; level++ {
		for _, run := range runs(g.ColPaths, level, false) {
			width := 0
			for i := run.start; i < run.end; i++ {
				width += widths[i]
			}
			step, ok := stepAt(g.ColPaths[run.start], level)
			vcell, ncell := c.cell("", report.RoleValue, level), c.cell("", report.RoleVariable, level)
			if ok {
				ncell.Text = step.Variable
			}
			ncell.ColSpan = width
			view.HeaderRows[2*level] = append(view.HeaderRows[2*level], ncell)

			for _, vrun := range runs(g.ColPaths[run.start:run.end], level, true) {
				vwidth := 0
				for i := run.start + vrun.start; i < run.start+vrun.end; i++ {
					vwidth += widths[i]
				}
				vcell.ColSpan = vwidth
				vcell.Text, vcell.Role = "", report.RoleValue
				if vs, ok := stepAt(g.ColPaths[run.start+vrun.start], level); ok {
					vcell.Text = vs.Label
					if vs.Total {
						vcell.Role = report.RoleTotal
					}
				}
				view.HeaderRows[2*level+1] = append(view.HeaderRows[2*level+1], vcell)
			}
		}
	}
	metricLevel := max(colDepth-1, 0)
	for i := range g.ColPaths {
		for _, m := range g.ColMetrics[i] {
			view.HeaderRows[headerRows-1] = append(view.HeaderRows[headerRows-1], c.cell(string(m), report.RoleMetric, metricLevel))
		}
	}

	rowSpans := labelSpans(g.RowPaths, rowDepth)
	for r, path := range g.RowPaths {
		row := report.BodyRow{Total: path.IsTotal()}
		for level := 0; level < rowDepth; level++ {
			span := rowSpans[level][r]
			if span.variable > 0 {
				cell := c.cell("", report.RoleVariable, level)
				if step, ok := stepAt(path, level); ok {
					cell.Text = step.Variable
				}
				cell.RowSpan = span.variable
				row.Labels = append(row.Labels, cell)
			}
			if span.value > 0 {
				cell := c.cell("", report.RoleValue, level)
				if step, ok := stepAt(path, level); ok {
					cell.Text = step.Label
					if step.Total {
						cell.Role = report.RoleTotal
					}
				}
				cell.RowSpan = span.value
				row.Labels = append(row.Labels, cell)
			}
		}
		for col := range g.ColPaths {
			cell := g.Cell(r, col)
			for _, m := range g.ColMetrics[col] {
				row.Values = append(row.Values, formatMetric(cell, m, dp))
			}
		}
		view.Rows = append(view.Rows, row)
	}
	return view
}

func formatMetric(cell tabulation.Cell, m design.Metric, dp int) string {
	if m == design.MetricFreq {
		return format.Count(cell.Count)
	}
	return format.Pct(cell.Value(m), dp)
}

func stepAt(p tabulation.Path, level int) (tabulation.Step, bool) {
	if level >= len(p.Steps) {
		return tabulation.Step{}, false
	}
	return p.Steps[level], true
}

// run is a half-open range of consecutive paths sharing a header cell.
type run struct{ start, end int }

// runs groups consecutive paths that agree on every level above level and on
// the variable at level. With includeValue they must also agree on the value at level.
func runs(paths []tabulation.Path, level int, includeValue bool) []run {
	var out []run
	for i := 0; i < len(paths); {
		j := i + 1
		for j < len(paths) && sameHeader(paths[i], paths[j], level, includeValue) {
			j++
		}
		out = append(out, run{i, j})
		i = j
	}
	return out
}

func sameHeader(a, b tabulation.Path, level int, includeValue bool) bool {
	for l := 0; l <= level; l++ {
		sa, okA := stepAt(a, l)
		sb, okB := stepAt(b, l)
		if okA != okB {
			return false
		}
		if !okA {
			continue
		}
		if sa.Variable != sb.Variable {
			return false
		}
		if (l < level || includeValue) && (sa.Key != sb.Key || sa.Total != sb.Total) {
			return false
		}
	}
	return true
}

type span struct{ variable, value int }

// labelSpans computes, per level and row, how many rows each label cell covers.
// Zero means the cell is covered by one above it.
func labelSpans(paths []tabulation.Path, depth int) [][]span {
	out := make([][]span, depth)
	for level := 0; level < depth; level++ {
		out[level] = make([]span, len(paths))
		for _, vr := range runs(paths, level, false) {
			out[level][vr.start].variable = vr.end - vr.start
			for _, r := range runs(paths[vr.start:vr.end], level, true) {
				out[level][vr.start+r.start].value = r.end - r.start
			}
		}
	}
	return out
}
