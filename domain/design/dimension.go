package design

import (
	"tabstat/domain/core"
)

// Orientation is the axis a dimension belongs to.
type Orientation string

const (
	OrientationRow    Orientation = "row"
	OrientationColumn Orientation = "column"
)

// DimensionSpec is one level of a row or column grouping. Child nests one level deeper,
// e.g. Country > Home Location Type.
type DimensionSpec struct {
	Variable    string         `yaml:"variable"`
	Sort        SortOrder      `yaml:"sort"`
	HasTotal    bool           `yaml:"total"`
	PctMetrics  []Metric       `yaml:"pct_metrics"`
	Values      []any          `yaml:"values"` // declared values, emitted even when unobserved
	Child       *DimensionSpec `yaml:"child"`
	Orientation Orientation    `yaml:"-"`
}

// Row builds a row dimension. The orientation propagates to every descendant.
func Row(variable string, opts ...DimensionOption) *DimensionSpec {
	d := &DimensionSpec{Variable: variable, Sort: SortByValue}
	for _, opt := range opts {
		opt(d)
	}
	d.Orient(OrientationRow)
	return d
}

// Column builds a column dimension.
func Column(variable string, opts ...DimensionOption) *DimensionSpec {
	d := &DimensionSpec{Variable: variable, Sort: SortByValue}
	for _, opt := range opts {
		opt(d)
	}
	d.Orient(OrientationColumn)
	return d
}

// DimensionOption configures a DimensionSpec under construction.
type DimensionOption func(*DimensionSpec)

func WithTotal() DimensionOption { return func(d *DimensionSpec) { d.HasTotal = true } }

func WithSort(order SortOrder) DimensionOption { return func(d *DimensionSpec) { d.Sort = order } }

func WithMetrics(metrics ...Metric) DimensionOption {
	return func(d *DimensionSpec) { d.PctMetrics = metrics }
}

func WithValues(values ...any) DimensionOption {
	return func(d *DimensionSpec) { d.Values = values }
}

func WithChild(child *DimensionSpec) DimensionOption {
	return func(d *DimensionSpec) { d.Child = child }
}

// Orient sets the orientation for the whole chain.
func (d *DimensionSpec) Orient(o Orientation) {
	for cur := d; cur != nil; cur = cur.Child {
		if cur.Orientation == "" {
			cur.Orientation = o
		}
	}
}

// Chain returns this spec and its descendants, outermost first.
func (d *DimensionSpec) Chain() []*DimensionSpec {
	var chain []*DimensionSpec
	for cur := d; cur != nil; cur = cur.Child {
		chain = append(chain, cur)
	}
	return chain
}

// Variables returns the variable names of the chain, outermost first.
func (d *DimensionSpec) Variables() []string {
	var vars []string
	for _, level := range d.Chain() {
		vars = append(vars, level.Variable)
	}
	return vars
}

// Terminal returns the innermost spec of the chain.
func (d *DimensionSpec) Terminal() *DimensionSpec {
	chain := d.Chain()
	return chain[len(chain)-1]
}

// Metrics returns the percentage metrics declared on the chain (terminal level only).
func (d *DimensionSpec) Metrics() []Metric {
	return d.Terminal().PctMetrics
}

// Validate checks structural rules: percentage metrics only on terminal column specs,
// consistent orientation, no repeated variable within one chain.
func (d *DimensionSpec) Validate() error {
	return d.ValidateAs(d.Orientation)
}

// ValidateAs validates the chain as if placed on the given axis. Levels without an
// orientation take the axis; levels with a different one are rejected.
func (d *DimensionSpec) ValidateAs(axis Orientation) error {
	seen := map[string]bool{}
	for _, level := range d.Chain() {
		orientation := level.Orientation
		if orientation == "" {
			orientation = axis
		}
		if axis != "" && orientation != axis {
			return core.NewConfigurationError("dimension %q is a %s dimension on the %s axis", level.Variable, orientation, axis)
		}
		if level.Variable == "" {
			return core.NewConfigurationError("dimension without a variable")
		}
		if seen[level.Variable] {
			return core.NewConfigurationError("variable %q repeated in the same dimension chain", level.Variable)
		}
		seen[level.Variable] = true

		if level.Child != nil && level.Child.Orientation != "" && level.Child.Orientation != orientation {
			return core.NewConfigurationError("dimension %q has a child with a different orientation", level.Variable)
		}
		if len(level.PctMetrics) > 0 {
			if level.Child != nil {
				return core.NewConfigurationError("metrics are only allowed on the terminal dimension (%q has a child)", level.Variable)
			}
			if orientation != OrientationColumn {
				return core.NewConfigurationError("metrics are only allowed on column dimensions (%q is a row)", level.Variable)
			}
			for _, m := range level.PctMetrics {
				if !m.IsPct() {
					return core.NewConfigurationError("%q is not a percentage metric", m)
				}
			}
		}
		switch level.Sort {
		case "", SortByValue, SortByLabel, SortCustom, SortIncreasing, SortDecreasing:
		default:
			return core.NewConfigurationError("unknown sort order %q for %q", level.Sort, level.Variable)
		}
	}
	return nil
}
