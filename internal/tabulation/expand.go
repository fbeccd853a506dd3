package tabulation

import (
	"fmt"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
	domain "tabstat/domain/tabulation"
	"tabstat/internal/sorting"
)

// CountView is the data a dimension tree is expanded against.
type CountView interface {
	Has(variable string) bool
	Values(variable string, scope map[string]string) []ValueCount
}

// LabelFunc returns the display label of a value key.
type LabelFunc func(variable, key string) string

// ExpandOptions carries the per-invocation inputs of tree expansion.
type ExpandOptions struct {
	Orders design.CustomOrders
	Labels LabelFunc
}

func (o ExpandOptions) label(variable, key string) string {
	if o.Labels == nil {
		return key
	}
	return o.Labels(variable, key)
}

// Expand resolves a dimension tree into its ordered leaf paths. Each value is followed
// by its child expansion scoped to that value; a Total comes last at its level and is
// expanded over the child scoped to every record of the enclosing scope.
func Expand(spec *design.DimensionSpec, view CountView, opts ExpandOptions) ([]domain.Path, error) {
	if spec == nil {
		return nil, core.NewConfigurationError("nil dimension")
	}
	for _, level := range spec.Chain() {
		if !view.Has(level.Variable) {
			return nil, fmt.Errorf("%w: %q", core.ErrVariableNotFound, level.Variable)
		}
	}
	steps, err := expandLevel(spec, view, map[string]string{}, opts)
	if err != nil {
		return nil, err
	}
	paths := make([]domain.Path, len(steps))
	for i, s := range steps {
		paths[i] = domain.Path{Steps: s}
	}
	return paths, nil
}

func expandLevel(spec *design.DimensionSpec, view CountView, scope map[string]string, opts ExpandOptions) ([][]domain.Step, error) {
	ordered, err := sorting.Resolve(spec.Variable, spec.Sort, levelItems(spec, view, scope, opts), opts.Orders)
	if err != nil {
		return nil, err
	}

	var out [][]domain.Step
	for _, it := range ordered {
		step := domain.Step{Variable: spec.Variable, Value: it.Value, Key: it.Key, Label: it.Label}
		if spec.Child == nil {
			out = append(out, []domain.Step{step})
			continue
		}
		children, err := expandLevel(spec.Child, view, withScope(scope, spec.Variable, it.Key), opts)
		if err != nil {
			return nil, err
		}
		out = append(out, prefix(step, children)...)
	}

	if spec.HasTotal {
		total := domain.Step{Variable: spec.Variable, Label: domain.TotalLabel, Total: true}
		if spec.Child == nil {
			out = append(out, []domain.Step{total})
		} else {
			children, err := expandLevel(spec.Child, view, scope, opts)
			if err != nil {
				return nil, err
			}
			out = append(out, prefix(total, children)...)
		}
	}
	return out, nil
}

// levelItems merges observed values (index order) with declared values
// not observed in this scope, which follow in declaration order with zero frequency.
func levelItems(spec *design.DimensionSpec, view CountView, scope map[string]string, opts ExpandOptions) []sorting.Item {
	var items []sorting.Item
	seen := map[string]bool{}
	for _, vc := range view.Values(spec.Variable, scope) {
		seen[vc.Key] = true
		items = append(items, sorting.Item{Value: vc.Value, Key: vc.Key, Label: opts.label(spec.Variable, vc.Key), Freq: vc.Freq})
	}
	for _, declared := range spec.Values {
		if dataset.IsMissing(declared) {
			continue
		}
		key := dataset.Key(declared)
		if seen[key] {
			continue
		}
		seen[key] = true
		items = append(items, sorting.NewItem(declared, opts.label(spec.Variable, key), 0))
	}
	return items
}

func withScope(scope map[string]string, variable, key string) map[string]string {
	next := make(map[string]string, len(scope)+1)
	for k, v := range scope {
		next[k] = v
	}
	next[variable] = key
	return next
}

func prefix(step domain.Step, children [][]domain.Step) [][]domain.Step {
	out := make([][]domain.Step, len(children))
	for i, c := range children {
		path := make([]domain.Step, 0, len(c)+1)
		path = append(path, step)
		out[i] = append(path, c...)
	}
	return out
}
