package ports

import (
	"context"

	"tabstat/domain/design"
	"tabstat/domain/report"
)

// StyleSource resolves a named style to its flat token map.
type StyleSource interface {
	Style(ctx context.Context, name string) (report.Style, error)
}

// SortOrderSource loads custom sort orders from a file.
type SortOrderSource interface {
	SortOrders(ctx context.Context, path string) (design.CustomOrders, error)
}
