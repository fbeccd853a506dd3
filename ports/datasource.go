package ports

import (
	"context"

	"tabstat/domain/dataset"
)

// DataSource gives read access to the tables designs are computed over.
// Implementations wrap every failure as a data source error and do not retry.
type DataSource interface {
	// Schema lists the variables of a table and their kinds.
	Schema(ctx context.Context, table string) (dataset.Schema, error)
	// Rows returns the filtered values of the query's variables, one slice per record.
	Rows(ctx context.Context, q dataset.Query) ([][]any, error)
	// CountBy returns each distinct combination of the query's variables with its
	// record count, ordered by the grouping columns.
	CountBy(ctx context.Context, q dataset.Query) ([]dataset.Combination, error)
}

// Ingester loads a delimited or spreadsheet file into a table.
type Ingester interface {
	Ingest(ctx context.Context, table, path string) (dataset.Schema, error)
}
