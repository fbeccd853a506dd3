// Package tabulation expands dimension trees and cross-tabulates them into grids.
package tabulation

import (
	"strings"

	"tabstat/domain/dataset"
)

const (
	keySep   = "\x1f"
	wildcard = "\x00"
)

// ValueCount is one observed value of a variable within a scope.
type ValueCount struct {
	Value any
	Key   string
	Freq  int64
}

// Constraint restricts one variable to a value key. Any relaxes it to every value.
type Constraint struct {
	Variable string
	Key      string
	Any      bool
}

// Index answers record counts for any conjunction of value constraints over a set of
// grouping variables. It is built once from grouped counts; per-variable-set tables
// hold the count of every wildcard mask so each lookup is a single map access.
type Index struct {
	vars   []string
	pos    map[string]int
	keys   [][]string
	values [][]any
	counts []int64
	total  int64

	tables map[string]map[string]int64
}

// NewIndex builds an index from combinations whose values are positional over vars.
// Combination order is kept; stores return combinations sorted by their values.
func NewIndex(vars []string, combos []dataset.Combination) *Index {
	ix := &Index{
		vars:   append([]string(nil), vars...),
		pos:    make(map[string]int, len(vars)),
		tables: map[string]map[string]int64{},
	}
	for i, v := range vars {
		ix.pos[v] = i
	}
	for _, c := range combos {
		keys := make([]string, len(vars))
		values := make([]any, len(vars))
		for i := range vars {
			var v any
			if i < len(c.Values) {
				v = dataset.Normalize(c.Values[i])
			}
			values[i] = v
			keys[i] = dataset.Key(v)
		}
		ix.keys = append(ix.keys, keys)
		ix.values = append(ix.values, values)
		ix.counts = append(ix.counts, c.Count)
		ix.total += c.Count
	}
	return ix
}

// Restrict returns an index over vars alone whose universe drops every record with a
// null in any of them. Variables the index does not cover are left out, so the result
// does not cover them either.
func (ix *Index) Restrict(vars []string) *Index {
	var covered []string
	for _, v := range vars {
		if ix.Has(v) {
			covered = append(covered, v)
		}
	}
	var combos []dataset.Combination
records:
	for r, values := range ix.values {
		projected := make([]any, len(covered))
		for i, v := range covered {
			value := values[ix.pos[v]]
			if value == nil {
				continue records
			}
			projected[i] = value
		}
		combos = append(combos, dataset.Combination{Values: projected, Count: ix.counts[r]})
	}
	return NewIndex(covered, combos)
}

// Has reports whether the index covers a variable.
func (ix *Index) Has(variable string) bool {
	_, ok := ix.pos[variable]
	return ok
}

// Total is the number of records in the universe.
func (ix *Index) Total() int64 { return ix.total }

// Values lists the values of a variable among records matching scope (variable -> key),
// in the order of the combinations the index was built from, with their frequencies.
func (ix *Index) Values(variable string, scope map[string]string) []ValueCount {
	p, ok := ix.pos[variable]
	if !ok {
		return nil
	}
	var out []ValueCount
	seen := map[string]int{}
	for r, keys := range ix.keys {
		if !ix.matches(keys, scope) {
			continue
		}
		k := keys[p]
		if i, dup := seen[k]; dup {
			out[i].Freq += ix.counts[r]
			continue
		}
		seen[k] = len(out)
		out = append(out, ValueCount{Value: ix.values[r][p], Key: k, Freq: ix.counts[r]})
	}
	return out
}

func (ix *Index) matches(keys []string, scope map[string]string) bool {
	for variable, key := range scope {
		p, ok := ix.pos[variable]
		if !ok || keys[p] != key {
			return false
		}
	}
	return true
}

// Prepare pre-aggregates every wildcard mask over the given variables.
// Count prepares lazily; calling Prepare up front keeps cell work constant time.
func (ix *Index) Prepare(vars []string) map[string]int64 {
	sig := strings.Join(vars, keySep)
	if table, ok := ix.tables[sig]; ok {
		return table
	}
	positions := make([]int, len(vars))
	for i, v := range vars {
		positions[i] = ix.pos[v]
	}
	table := make(map[string]int64)
	masks := 1 << len(vars)
	parts := make([]string, len(vars))
	for r, keys := range ix.keys {
		for mask := 0; mask < masks; mask++ {
			for i, p := range positions {
				if mask&(1<<i) != 0 {
					parts[i] = wildcard
				} else {
					parts[i] = keys[p]
				}
			}
			table[strings.Join(parts, keySep)] += ix.counts[r]
		}
	}
	ix.tables[sig] = table
	return table
}

// Count returns the number of records matching every constraint. Constraints on
// variables the index does not cover match nothing.
func (ix *Index) Count(constraints []Constraint) int64 {
	vars := make([]string, len(constraints))
	parts := make([]string, len(constraints))
	for i, c := range constraints {
		if !ix.Has(c.Variable) {
			return 0
		}
		vars[i] = c.Variable
		if c.Any {
			parts[i] = wildcard
		} else {
			parts[i] = c.Key
		}
	}
	return ix.Prepare(vars)[strings.Join(parts, keySep)]
}
