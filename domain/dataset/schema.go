package dataset

import "strings"

// Kind is the measurement level of a variable.
type Kind string

const (
	KindCategorical Kind = "categorical"
	KindNumeric     Kind = "numeric"
)

// Variable is a named column of the source table.
type Variable struct {
	Name string `json:"name"`
	Kind Kind   `json:"kind"`
}

// Schema describes one table of a data source.
type Schema struct {
	Table     string     `json:"table"`
	Variables []Variable `json:"variables"`
}

// Lookup finds a variable by name.
func (s Schema) Lookup(name string) (Variable, bool) {
	for _, v := range s.Variables {
		if v.Name == name {
			return v, true
		}
	}
	return Variable{}, false
}

// Has reports whether every named variable exists.
func (s Schema) Has(names ...string) (missing string, ok bool) {
	for _, n := range names {
		if _, found := s.Lookup(n); !found {
			return n, false
		}
	}
	return "", true
}

// Query addresses a filtered projection of one table.
type Query struct {
	Table     string
	Variables []string
	// Filter is a boolean condition in the store's native SQL. A leading WHERE is tolerated.
	Filter  string
	NotNull []string
}

// CleanFilter returns the filter without a leading WHERE keyword.
func (q Query) CleanFilter() string {
	f := strings.TrimSpace(q.Filter)
	if len(f) >= 5 && strings.EqualFold(f[:5], "where") && (len(f) == 5 || f[5] == ' ' || f[5] == '\n' || f[5] == '\t') {
		f = strings.TrimSpace(f[5:])
	}
	return f
}

// Combination is one distinct combination of grouping values and its record count.
// Values are positional, matching Query.Variables.
type Combination struct {
	Values []any
	Count  int64
}
