package app

import (
	"context"

	domain "tabstat/domain/charts"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
	"tabstat/internal/charts"
	"tabstat/internal/tabulation"
)

// Amounts extracts the data of a category chart. Frequencies and percentages come from
// grouped counts; averages and sums read the measure record by record.
func (s *ReportService) Amounts(ctx context.Context, d *design.AmountsDesign) (*domain.Amounts, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c := &d.Common
	vars := d.Variables()
	metric := d.MetricOrDefault()
	needed := vars
	if metric.NeedsMeasure() {
		needed = append(append([]string(nil), vars...), d.MeasureVariable)
	}
	if err := s.checkVariables(ctx, c.Table, needed...); err != nil {
		return nil, err
	}
	orders, err := s.sortOrders(ctx, c)
	if err != nil {
		return nil, err
	}

	if metric.NeedsMeasure() {
		rows, err := s.source.Rows(ctx, dataset.Query{Table: c.Table, Variables: needed, Filter: c.Filter, NotNull: vars})
		if err != nil {
			return nil, err
		}
		return charts.Measures(d, rows, orders)
	}
	combos, err := s.source.CountBy(ctx, dataset.Query{Table: c.Table, Variables: vars, Filter: c.Filter, NotNull: vars})
	if err != nil {
		return nil, err
	}
	return charts.Amounts(d, tabulation.NewIndex(vars, combos), orders)
}

// Histogram bins the values of a numeric variable.
func (s *ReportService) Histogram(ctx context.Context, d *design.HistogramDesign) (*domain.Histogram, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	c := &d.Common
	vars := []string{d.Variable}
	var notNull []string
	if d.ChartVariable != "" {
		vars = append(vars, d.ChartVariable)
		notNull = []string{d.ChartVariable}
	}
	if err := s.checkVariables(ctx, c.Table, vars...); err != nil {
		return nil, err
	}
	orders, err := s.sortOrders(ctx, c)
	if err != nil {
		return nil, err
	}
	rows, err := s.source.Rows(ctx, dataset.Query{Table: c.Table, Variables: vars, Filter: c.Filter, NotNull: notNull})
	if err != nil {
		return nil, err
	}
	h, err := charts.Histogram(d, rows, orders)
	if err != nil {
		return nil, err
	}
	s.logger.Debug("histogram of %s.%s: %d bins, %d excluded", c.Table, d.Variable, len(h.Bins), h.Excluded)
	return h, nil
}
