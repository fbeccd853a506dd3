package design

import (
	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/stats"
)

// TestDesign is a design producing a statistical test result.
type TestDesign interface {
	Design
	TestKind() stats.Kind
}

// Sort orders are only read by tests that sort with CUSTOM.
func (c *Common) rejectSortSettings() error {
	if len(c.SortOrders) > 0 || c.SortOrdersFile != "" {
		return core.NewConfigurationError("sort orders can only be set for tests sorted with CUSTOM")
	}
	return nil
}

func requireVariables(names map[string]string) error {
	for field, name := range names {
		if name == "" {
			return core.NewConfigurationError("%s is required", field)
		}
	}
	return nil
}

// GroupedDesign compares a numeric measure across the values of a grouping variable.
// It backs ANOVA and Kruskal-Wallis H.
type GroupedDesign struct {
	Common           `yaml:",inline"`
	Kind             stats.Kind `yaml:"-"`
	GroupingVariable string     `yaml:"grouping_variable"`
	GroupValues      []any      `yaml:"group_values"`
	MeasureVariable  string     `yaml:"measure_variable"`
	// SortOrder orders the groups by VALUE or CUSTOM. Empty keeps group_values order.
	SortOrder SortOrder `yaml:"sort_order,omitempty"`
}

func NewANOVADesign(c Common, grouping, measure string, groups ...any) *GroupedDesign {
	return &GroupedDesign{Common: c, Kind: stats.KindANOVA, GroupingVariable: grouping, MeasureVariable: measure, GroupValues: groups}
}

func NewKruskalWallisDesign(c Common, grouping, measure string, groups ...any) *GroupedDesign {
	return &GroupedDesign{Common: c, Kind: stats.KindKruskalWallis, GroupingVariable: grouping, MeasureVariable: measure, GroupValues: groups}
}

func (d *GroupedDesign) TestKind() stats.Kind { return d.Kind }

func (d *GroupedDesign) Validate() error {
	if err := d.Common.validate(); err != nil {
		return err
	}
	switch d.SortOrder {
	case "", SortByValue:
		if err := d.rejectSortSettings(); err != nil {
			return err
		}
	case SortCustom:
	default:
		return core.NewConfigurationError("%s groups can only be sorted by VALUE or CUSTOM, got %q", d.Kind.Title(), d.SortOrder)
	}
	if d.Kind != stats.KindANOVA && d.Kind != stats.KindKruskalWallis {
		return core.NewConfigurationError("%q is not a grouped test", d.Kind)
	}
	if err := requireVariables(map[string]string{"grouping_variable": d.GroupingVariable, "measure_variable": d.MeasureVariable}); err != nil {
		return err
	}
	if distinct(d.GroupValues) < 2 {
		return core.NewConfigurationError("%s needs at least two distinct group values, got %d", d.Kind.Title(), distinct(d.GroupValues))
	}
	return nil
}

// TwoGroupDesign compares a numeric measure between two values of a grouping variable.
// It backs the independent t-test and Mann-Whitney U.
type TwoGroupDesign struct {
	Common           `yaml:",inline"`
	Kind             stats.Kind `yaml:"-"`
	GroupingVariable string     `yaml:"grouping_variable"`
	GroupA           any        `yaml:"group_a"`
	GroupB           any        `yaml:"group_b"`
	MeasureVariable  string     `yaml:"measure_variable"`
}

func NewIndependentTDesign(c Common, grouping, measure string, a, b any) *TwoGroupDesign {
	return &TwoGroupDesign{Common: c, Kind: stats.KindIndependentT, GroupingVariable: grouping, MeasureVariable: measure, GroupA: a, GroupB: b}
}

func NewMannWhitneyDesign(c Common, grouping, measure string, a, b any) *TwoGroupDesign {
	return &TwoGroupDesign{Common: c, Kind: stats.KindMannWhitney, GroupingVariable: grouping, MeasureVariable: measure, GroupA: a, GroupB: b}
}

func (d *TwoGroupDesign) TestKind() stats.Kind { return d.Kind }

func (d *TwoGroupDesign) Validate() error {
	if err := d.Common.validate(); err != nil {
		return err
	}
	if err := d.rejectSortSettings(); err != nil {
		return err
	}
	if d.Kind != stats.KindIndependentT && d.Kind != stats.KindMannWhitney {
		return core.NewConfigurationError("%q is not a two group test", d.Kind)
	}
	if err := requireVariables(map[string]string{"grouping_variable": d.GroupingVariable, "measure_variable": d.MeasureVariable}); err != nil {
		return err
	}
	if dataset.IsMissing(d.GroupA) || dataset.IsMissing(d.GroupB) {
		return core.NewConfigurationError("%s needs group_a and group_b", d.Kind.Title())
	}
	if dataset.Key(d.GroupA) == dataset.Key(d.GroupB) {
		return core.NewConfigurationError("%s needs two different groups, got %q twice", d.Kind.Title(), dataset.Key(d.GroupA))
	}
	return nil
}

// PairedDesign relates two variables measured on the same records.
// It backs the paired t-test, Wilcoxon signed ranks, Pearson's R and Spearman's R.
type PairedDesign struct {
	Common    `yaml:",inline"`
	Kind      stats.Kind `yaml:"-"`
	VariableA string     `yaml:"variable_a"`
	VariableB string     `yaml:"variable_b"`
}

func NewPairedDesign(c Common, kind stats.Kind, a, b string) *PairedDesign {
	return &PairedDesign{Common: c, Kind: kind, VariableA: a, VariableB: b}
}

func (d *PairedDesign) TestKind() stats.Kind { return d.Kind }

func (d *PairedDesign) Validate() error {
	if err := d.Common.validate(); err != nil {
		return err
	}
	if err := d.rejectSortSettings(); err != nil {
		return err
	}
	switch d.Kind {
	case stats.KindPairedT, stats.KindWilcoxon, stats.KindPearson, stats.KindSpearman:
	default:
		return core.NewConfigurationError("%q is not a paired test", d.Kind)
	}
	if err := requireVariables(map[string]string{"variable_a": d.VariableA, "variable_b": d.VariableB}); err != nil {
		return err
	}
	if d.VariableA == d.VariableB {
		return core.NewConfigurationError("%s needs two different variables", d.Kind.Title())
	}
	return nil
}

// ChiSquareDesign tests independence of two categorical variables. Unlike the other tests
// it sorts: the categories of the observed/expected table follow the sort orders.
type ChiSquareDesign struct {
	Common    `yaml:",inline"`
	VariableA string    `yaml:"variable_a"`
	VariableB string    `yaml:"variable_b"`
	SortA     SortOrder `yaml:"sort_a"`
	SortB     SortOrder `yaml:"sort_b"`
}

func (d *ChiSquareDesign) TestKind() stats.Kind { return stats.KindChiSquare }

func (d *ChiSquareDesign) Validate() error {
	if err := d.Common.validate(); err != nil {
		return err
	}
	if err := requireVariables(map[string]string{"variable_a": d.VariableA, "variable_b": d.VariableB}); err != nil {
		return err
	}
	if d.VariableA == d.VariableB {
		return core.NewConfigurationError("chi square needs two different variables")
	}
	for _, order := range []SortOrder{d.SortA, d.SortB} {
		switch order {
		case "", SortByValue, SortCustom:
		default:
			return core.NewConfigurationError("chi square categories can only be sorted by VALUE or CUSTOM, got %q", order)
		}
	}
	return nil
}

// NormalityDesign tests one variable, or the differences between two paired variables.
type NormalityDesign struct {
	Common    `yaml:",inline"`
	VariableA string `yaml:"variable_a"`
	VariableB string `yaml:"variable_b"` // optional; set for paired mode
}

func (d *NormalityDesign) TestKind() stats.Kind { return stats.KindNormality }

// Paired reports whether the differences between A and B are tested.
func (d *NormalityDesign) Paired() bool { return d.VariableB != "" }

func (d *NormalityDesign) Validate() error {
	if err := d.Common.validate(); err != nil {
		return err
	}
	if err := d.rejectSortSettings(); err != nil {
		return err
	}
	if d.VariableA == "" {
		return core.NewConfigurationError("variable_a is required")
	}
	if d.VariableA == d.VariableB {
		return core.NewConfigurationError("paired normality needs two different variables")
	}
	return nil
}

func distinct(values []any) int {
	seen := map[string]bool{}
	for _, v := range values {
		if dataset.IsMissing(v) {
			continue
		}
		seen[dataset.Key(v)] = true
	}
	return len(seen)
}
