// Package sortorders reads custom sort orders from YAML: a mapping from variable
// name to its values in display order.
package sortorders

import (
	"context"
	"os"

	"gopkg.in/yaml.v3"

	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
	"tabstat/ports"
)

// FileSource implements ports.SortOrderSource over YAML files.
type FileSource struct{}

var _ ports.SortOrderSource = FileSource{}

func (FileSource) SortOrders(ctx context.Context, path string) (design.CustomOrders, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, core.NewConfigurationError("reading sort orders %s: %v", path, err)
	}
	return Parse(data)
}

// Parse decodes sort orders. Values may be numbers or text; they are matched by key.
func Parse(data []byte) (design.CustomOrders, error) {
	var raw map[string][]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, core.NewConfigurationError("sort orders are not valid YAML: %v", err)
	}
	orders := make(design.CustomOrders, len(raw))
	for variable, values := range raw {
		seen := map[string]bool{}
		keys := make([]string, 0, len(values))
		for _, v := range values {
			k := dataset.Key(v)
			if seen[k] {
				return nil, core.NewConfigurationError("value %q is listed twice in the sort order of %q", k, variable)
			}
			seen[k] = true
			keys = append(keys, k)
		}
		orders[variable] = keys
	}
	return orders, nil
}
