package testkit

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
)

// Table is an in-memory table: named columns and positional rows.
type Table struct {
	Name    string
	Columns []dataset.Variable
	Rows    [][]any
}

func (t *Table) column(name string) (int, bool) {
	for i, c := range t.Columns {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Predicate selects records for a named filter.
type Predicate func(record map[string]any) bool

// MemorySource is a DataSource over in-memory tables. SQL filters cannot be
// evaluated, so each filter string used in a test must be registered with a predicate.
type MemorySource struct {
	mu      sync.RWMutex
	tables  map[string]*Table
	filters map[string]Predicate
	queries int
}

func NewMemorySource(tables ...*Table) *MemorySource {
	m := &MemorySource{tables: map[string]*Table{}, filters: map[string]Predicate{}}
	for _, t := range tables {
		m.tables[t.Name] = t
	}
	return m
}

// RegisterFilter makes a filter string usable in queries.
func (m *MemorySource) RegisterFilter(filter string, p Predicate) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.filters[strings.TrimSpace(filter)] = p
}

// Queries counts the Rows and CountBy calls served.
func (m *MemorySource) Queries() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.queries
}

func (m *MemorySource) Schema(ctx context.Context, table string) (dataset.Schema, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[table]
	if !ok {
		return dataset.Schema{}, core.NewDataSourceError("schema", fmt.Errorf("no such table %q", table))
	}
	return dataset.Schema{Table: table, Variables: slices.Clone(t.Columns)}, nil
}

func (m *MemorySource) Rows(ctx context.Context, q dataset.Query) ([][]any, error) {
	records, err := m.scan(q)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (m *MemorySource) CountBy(ctx context.Context, q dataset.Query) ([]dataset.Combination, error) {
	records, err := m.scan(q)
	if err != nil {
		return nil, err
	}
	index := map[string]int{}
	var combos []dataset.Combination
	for _, rec := range records {
		keys := make([]string, len(rec))
		for i, v := range rec {
			keys[i] = dataset.Key(v)
		}
		k := strings.Join(keys, "\x1f")
		if i, ok := index[k]; ok {
			combos[i].Count++
			continue
		}
		index[k] = len(combos)
		combos = append(combos, dataset.Combination{Values: rec, Count: 1})
	}
	slices.SortStableFunc(combos, func(a, b dataset.Combination) int {
		for i := range a.Values {
			if c := dataset.Compare(a.Values[i], b.Values[i]); c != 0 {
				return c
			}
		}
		return 0
	})
	return combos, nil
}

// scan projects the query's variables from every matching record.
func (m *MemorySource) scan(q dataset.Query) ([][]any, error) {
	m.mu.Lock()
	m.queries++
	m.mu.Unlock()

	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[q.Table]
	if !ok {
		return nil, core.NewDataSourceError("query", fmt.Errorf("no such table %q", q.Table))
	}
	cols := make([]int, len(q.Variables))
	for i, v := range q.Variables {
		c, ok := t.column(v)
		if !ok {
			return nil, core.NewDataSourceError("query", fmt.Errorf("no such column %q", v))
		}
		cols[i] = c
	}
	var pred Predicate
	if f := q.CleanFilter(); f != "" {
		if pred, ok = m.filters[f]; !ok {
			return nil, core.NewDataSourceError("query", fmt.Errorf("unregistered filter %q", f))
		}
	}

	var out [][]any
rows:
	for _, row := range t.Rows {
		if pred != nil && !pred(t.record(row)) {
			continue
		}
		for _, name := range q.NotNull {
			if c, ok := t.column(name); ok && row[c] == nil {
				continue rows
			}
		}
		projected := make([]any, len(cols))
		for i, c := range cols {
			projected[i] = dataset.Normalize(row[c])
		}
		out = append(out, projected)
	}
	return out, nil
}

func (t *Table) record(row []any) map[string]any {
	rec := make(map[string]any, len(t.Columns))
	for i, c := range t.Columns {
		rec[c.Name] = row[i]
	}
	return rec
}
