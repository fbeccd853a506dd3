package design

import (
	"fmt"
	"strings"
)

// SortOrder is how the values of one grouping variable are ordered.
type SortOrder string

const (
	SortByValue    SortOrder = "VALUE"
	SortByLabel    SortOrder = "LABEL"
	SortCustom     SortOrder = "CUSTOM"
	SortIncreasing SortOrder = "INCREASING" // by frequency, smallest first
	SortDecreasing SortOrder = "DECREASING" // by frequency, largest first
)

// ParseSortOrder accepts the canonical names case-insensitively. Empty means VALUE.
func ParseSortOrder(s string) (SortOrder, error) {
	switch SortOrder(strings.ToUpper(strings.TrimSpace(s))) {
	case "", SortByValue:
		return SortByValue, nil
	case SortByLabel:
		return SortByLabel, nil
	case SortCustom:
		return SortCustom, nil
	case SortIncreasing:
		return SortIncreasing, nil
	case SortDecreasing:
		return SortDecreasing, nil
	}
	return "", fmt.Errorf("unknown sort order %q", s)
}

// UnmarshalText lets sort orders be decoded from YAML scalars.
func (o *SortOrder) UnmarshalText(b []byte) error {
	parsed, err := ParseSortOrder(string(b))
	if err != nil {
		return err
	}
	*o = parsed
	return nil
}

// CustomOrders maps a variable name to its explicitly ranked value keys.
type CustomOrders map[string][]string

// For returns the ranked keys for a variable.
func (c CustomOrders) For(variable string) ([]string, bool) {
	if c == nil {
		return nil, false
	}
	keys, ok := c[variable]
	return keys, ok
}
