package app

import (
	"context"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
	result "tabstat/domain/stats"
	"tabstat/internal/sorting"
	"tabstat/internal/stats"
)

// buildTest reads the records a test design names and constructs the test over them.
func (s *ReportService) buildTest(ctx context.Context, d design.TestDesign) (stats.Test, error) {
	switch td := d.(type) {
	case *design.GroupedDesign:
		values, err := s.sortGroupValues(ctx, &td.Common, td.GroupingVariable, td.SortOrder, td.GroupValues)
		if err != nil {
			return nil, err
		}
		groups, err := s.groups(ctx, &td.Common, td.GroupingVariable, td.MeasureVariable, values)
		if err != nil {
			return nil, err
		}
		if td.Kind == result.KindKruskalWallis {
			return stats.NewKruskalWallis(groups)
		}
		return stats.NewANOVA(groups)

	case *design.TwoGroupDesign:
		groups, err := s.groups(ctx, &td.Common, td.GroupingVariable, td.MeasureVariable, []any{td.GroupA, td.GroupB})
		if err != nil {
			return nil, err
		}
		if td.Kind == result.KindMannWhitney {
			return stats.NewMannWhitney(groups[0], groups[1])
		}
		return stats.NewIndependentT(groups[0], groups[1])

	case *design.PairedDesign:
		a, b, err := s.pair(ctx, &td.Common, td.VariableA, td.VariableB)
		if err != nil {
			return nil, err
		}
		return newPairedTest(td, a, b)

	case *design.NormalityDesign:
		if !td.Paired() {
			rows, err := s.rows(ctx, &td.Common, td.VariableA)
			if err != nil {
				return nil, err
			}
			return stats.NewNormality(column(td.VariableA, rows, 0)), nil
		}
		a, b, err := s.pair(ctx, &td.Common, td.VariableA, td.VariableB)
		if err != nil {
			return nil, err
		}
		return stats.NewPairedNormality(a, b)

	case *design.ChiSquareDesign:
		table, err := s.contingency(ctx, td)
		if err != nil {
			return nil, err
		}
		return stats.NewChiSquare(table)
	}
	return nil, core.NewConfigurationError("unsupported test design %T", d)
}

func newPairedTest(d *design.PairedDesign, a, b stats.Group) (stats.Test, error) {
	switch d.Kind {
	case result.KindPairedT:
		return stats.NewPairedT(a, b)
	case result.KindWilcoxon:
		return stats.NewWilcoxon(a, b)
	case result.KindPearson:
		return stats.NewPearson(a, b)
	case result.KindSpearman:
		return stats.NewSpearman(a, b)
	}
	return nil, core.NewConfigurationError("%q is not a paired test", d.Kind)
}

func (s *ReportService) rows(ctx context.Context, c *design.Common, vars ...string) ([][]any, error) {
	if err := s.checkVariables(ctx, c.Table, vars...); err != nil {
		return nil, err
	}
	return s.source.Rows(ctx, dataset.Query{Table: c.Table, Variables: vars, Filter: c.Filter})
}

// groups splits the measure by the requested values of the grouping variable, in the
// order the values were requested. Records in other groups are ignored.
func (s *ReportService) groups(ctx context.Context, c *design.Common, grouping, measure string, values []any) ([]stats.Group, error) {
	if err := s.checkVariables(ctx, c.Table, grouping, measure); err != nil {
		return nil, err
	}
	rows, err := s.source.Rows(ctx, dataset.Query{
		Table:     c.Table,
		Variables: []string{grouping, measure},
		Filter:    c.Filter,
		NotNull:   []string{grouping},
	})
	if err != nil {
		return nil, err
	}

	pos := make(map[string]int, len(values))
	var groups []stats.Group
	for _, v := range values {
		key := dataset.Key(v)
		if _, dup := pos[key]; dup || dataset.IsMissing(v) {
			continue
		}
		pos[key] = len(groups)
		groups = append(groups, stats.Group{Label: c.Label(grouping, key)})
	}
	for _, row := range rows {
		if i, ok := pos[dataset.Key(row[0])]; ok {
			groups[i].Values = append(groups[i].Values, row[1])
		}
	}
	return groups, nil
}

// sortGroupValues orders the requested group values with the Sort Resolver. An empty
// order keeps them as requested.
func (s *ReportService) sortGroupValues(ctx context.Context, c *design.Common, grouping string, order design.SortOrder, values []any) ([]any, error) {
	if order == "" {
		return values, nil
	}
	orders, err := s.sortOrders(ctx, c)
	if err != nil {
		return nil, err
	}
	items := make([]sorting.Item, len(values))
	for i, v := range values {
		items[i] = sorting.NewItem(v, c.Label(grouping, dataset.Key(v)), 0)
	}
	sorted, err := sorting.Resolve(grouping, order, items, orders)
	if err != nil {
		return nil, err
	}
	out := make([]any, len(sorted))
	for i, it := range sorted {
		out[i] = it.Value
	}
	return out, nil
}

// pair reads two variables record by record so that values stay matched.
func (s *ReportService) pair(ctx context.Context, c *design.Common, a, b string) (stats.Group, stats.Group, error) {
	rows, err := s.rows(ctx, c, a, b)
	if err != nil {
		return stats.Group{}, stats.Group{}, err
	}
	return column(a, rows, 0), column(b, rows, 1), nil
}

func column(label string, rows [][]any, i int) stats.Group {
	g := stats.Group{Label: label, Values: make([]any, len(rows))}
	for r, row := range rows {
		g.Values[r] = row[i]
	}
	return g
}

// contingency counts the joint categories of the two variables. Categories are ordered
// by the Sort Resolver, starting from the store's grouping order (ascending by value).
func (s *ReportService) contingency(ctx context.Context, d *design.ChiSquareDesign) (stats.Contingency, error) {
	c := &d.Common
	vars := []string{d.VariableA, d.VariableB}
	if err := s.checkVariables(ctx, c.Table, vars...); err != nil {
		return stats.Contingency{}, err
	}
	orders, err := s.sortOrders(ctx, c)
	if err != nil {
		return stats.Contingency{}, err
	}
	combos, err := s.source.CountBy(ctx, dataset.Query{Table: c.Table, Variables: vars, Filter: c.Filter, NotNull: vars})
	if err != nil {
		return stats.Contingency{}, err
	}

	rowItems, err := categories(c, d.VariableA, d.SortA, combos, 0, orders)
	if err != nil {
		return stats.Contingency{}, err
	}
	colItems, err := categories(c, d.VariableB, d.SortB, combos, 1, orders)
	if err != nil {
		return stats.Contingency{}, err
	}

	rowPos := positions(rowItems)
	colPos := positions(colItems)
	observed := make([][]float64, len(rowItems))
	for i := range observed {
		observed[i] = make([]float64, len(colItems))
	}
	for _, combo := range combos {
		r := rowPos[dataset.Key(combo.Values[0])]
		col := colPos[dataset.Key(combo.Values[1])]
		observed[r][col] += float64(combo.Count)
	}
	return stats.Contingency{
		RowVariable: d.VariableA,
		ColVariable: d.VariableB,
		RowLabels:   labels(rowItems),
		ColLabels:   labels(colItems),
		Observed:    observed,
	}, nil
}

func categories(c *design.Common, variable string, order design.SortOrder, combos []dataset.Combination, i int, orders design.CustomOrders) ([]sorting.Item, error) {
	pos := map[string]int{}
	var items []sorting.Item
	for _, combo := range combos {
		v := combo.Values[i]
		key := dataset.Key(v)
		if at, ok := pos[key]; ok {
			items[at].Freq += combo.Count
			continue
		}
		pos[key] = len(items)
		items = append(items, sorting.NewItem(v, c.Label(variable, key), combo.Count))
	}
	return sorting.Resolve(variable, order, items, orders)
}

func positions(items []sorting.Item) map[string]int {
	pos := make(map[string]int, len(items))
	for i, it := range items {
		pos[it.Key] = i
	}
	return pos
}

func labels(items []sorting.Item) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.Label
	}
	return out
}
