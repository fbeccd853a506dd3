package tabulation

import "strings"

// TotalLabel is the display label of a synthetic Total step.
const TotalLabel = "TOTAL"

// Step is one level of a resolved dimension path.
type Step struct {
	Variable string `json:"variable"`
	Value    any    `json:"value,omitempty"`
	Key      string `json:"key"`
	Label    string `json:"label"`
	Total    bool   `json:"total,omitempty"`
}

// Path is one leaf of an expanded dimension tree, outermost level first.
type Path struct {
	Steps []Step `json:"steps"`
}

// Depth is the number of levels in the path.
func (p Path) Depth() int { return len(p.Steps) }

// Variables returns the variable of each level.
func (p Path) Variables() []string {
	vars := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		vars[i] = s.Variable
	}
	return vars
}

// Labels returns the display label of each level.
func (p Path) Labels() []string {
	labels := make([]string, len(p.Steps))
	for i, s := range p.Steps {
		labels[i] = s.Label
	}
	return labels
}

// Terminal returns the innermost step.
func (p Path) Terminal() (Step, bool) {
	if len(p.Steps) == 0 {
		return Step{}, false
	}
	return p.Steps[len(p.Steps)-1], true
}

// IsTotal reports whether any level of the path is a Total.
func (p Path) IsTotal() bool {
	for _, s := range p.Steps {
		if s.Total {
			return true
		}
	}
	return false
}

// RelaxTerminal returns a copy whose innermost level matches any value.
func (p Path) RelaxTerminal() Path {
	if len(p.Steps) == 0 {
		return p
	}
	steps := make([]Step, len(p.Steps))
	copy(steps, p.Steps)
	last := &steps[len(steps)-1]
	*last = Step{Variable: last.Variable, Key: last.Key, Label: TotalLabel, Total: true}
	return Path{Steps: steps}
}

func (p Path) String() string {
	return strings.Join(p.Labels(), " > ")
}
