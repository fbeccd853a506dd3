// Package sorting orders the observed values of a grouping variable.
package sorting

import (
	"fmt"
	"sort"
	"strings"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
)

// Item is one observed (or declared) value of a variable.
type Item struct {
	Value any
	Key   string
	Label string
	Freq  int64
}

// NewItem builds an item, deriving the key from the value and defaulting the label to it.
func NewItem(value any, label string, freq int64) Item {
	key := dataset.Key(value)
	if label == "" {
		label = key
	}
	return Item{Value: dataset.Normalize(value), Key: key, Label: label, Freq: freq}
}

// Resolve returns items in the order prescribed by the sort order. Input order only
// matters for values a custom order does not rank; those keep it.
// The input slice is not modified.
func Resolve(variable string, order design.SortOrder, items []Item, custom design.CustomOrders) ([]Item, error) {
	out := make([]Item, len(items))
	copy(out, items)

	switch order {
	case "", design.SortByValue:
		sort.SliceStable(out, func(i, j int) bool {
			return dataset.Compare(out[i].Value, out[j].Value) < 0
		})
	case design.SortByLabel:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.Compare(out[i].Label, out[j].Label) < 0
		})
	case design.SortIncreasing, design.SortDecreasing:
		desc := order == design.SortDecreasing
		sort.SliceStable(out, func(i, j int) bool {
			if out[i].Freq != out[j].Freq {
				if desc {
					return out[i].Freq > out[j].Freq
				}
				return out[i].Freq < out[j].Freq
			}
			return dataset.Compare(out[i].Value, out[j].Value) < 0
		})
	case design.SortCustom:
		ranked, ok := custom.For(variable)
		if !ok {
			return nil, fmt.Errorf("%w for variable %q", core.ErrMissingSortOrder, variable)
		}
		rank := make(map[string]int, len(ranked))
		for i, key := range ranked {
			if _, dup := rank[key]; !dup {
				rank[key] = i
			}
		}
		// unranked values share rank len(ranked); the stable sort keeps their input order
		position := func(it Item) int {
			if r, ok := rank[it.Key]; ok {
				return r
			}
			return len(ranked)
		}
		sort.SliceStable(out, func(i, j int) bool {
			return position(out[i]) < position(out[j])
		})
	default:
		return nil, core.NewConfigurationError("unknown sort order %q for variable %q", order, variable)
	}
	return out, nil
}

// Keys returns the keys of items in order.
func Keys(items []Item) []string {
	keys := make([]string, len(items))
	for i, it := range items {
		keys[i] = it.Key
	}
	return keys
}
