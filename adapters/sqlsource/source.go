// Package sqlsource reads design data from SQL databases through sqlx.
package sqlsource

import (
	"context"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"               // postgres driver
	_ "github.com/marcboeker/go-duckdb" // duckdb driver
	_ "modernc.org/sqlite"              // sqlite driver

	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/internal"
	"tabstat/ports"
)

// Source implements ports.DataSource over a SQL connection.
type Source struct {
	db      *sqlx.DB
	dialect Dialect
	logger  *internal.Logger
}

var _ ports.DataSource = (*Source)(nil)

// New wraps an open connection.
func New(db *sqlx.DB, dialect Dialect, logger *internal.Logger) *Source {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Source{db: db, dialect: dialect, logger: logger}
}

// Open connects to a backend and checks the connection.
func Open(ctx context.Context, backend, dsn string, logger *internal.Logger) (*Source, error) {
	dialect, err := DialectFor(backend)
	if err != nil {
		return nil, core.NewConfigurationError("%v", err)
	}
	db, err := sqlx.Open(dialect.Driver, dsn)
	if err != nil {
		return nil, core.NewDataSourceError("open "+dialect.Name, err)
	}
	if dialect.Name != Postgres.Name && isMemory(dsn) {
		// every connection to an in-memory database is a separate database
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, core.NewDataSourceError("ping "+dialect.Name, err)
	}
	return New(db, dialect, logger), nil
}

func isMemory(dsn string) bool {
	return dsn == "" || strings.Contains(dsn, ":memory:") || strings.Contains(dsn, "mode=memory")
}

// DB exposes the connection for ingestion.
func (s *Source) DB() *sqlx.DB { return s.db }

// Dialect returns the SQL dialect of the connection.
func (s *Source) Dialect() Dialect { return s.dialect }

func (s *Source) Close() error { return s.db.Close() }

func (s *Source) Schema(ctx context.Context, table string) (dataset.Schema, error) {
	query := fmt.Sprintf("SELECT * FROM %s LIMIT 0", s.dialect.Quote(table))
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return dataset.Schema{}, core.NewDataSourceError("schema of "+table, err)
	}
	defer rows.Close()

	types, err := rows.ColumnTypes()
	if err != nil {
		return dataset.Schema{}, core.NewDataSourceError("schema of "+table, err)
	}
	schema := dataset.Schema{Table: table}
	for _, ct := range types {
		kind := dataset.KindCategorical
		if s.dialect.IsNumeric(ct.DatabaseTypeName()) {
			kind = dataset.KindNumeric
		}
		schema.Variables = append(schema.Variables, dataset.Variable{Name: ct.Name(), Kind: kind})
	}
	return schema, nil
}

func (s *Source) Rows(ctx context.Context, q dataset.Query) ([][]any, error) {
	if len(q.Variables) == 0 {
		return nil, core.NewConfigurationError("no variables to read from %q", q.Table)
	}
	query := fmt.Sprintf("SELECT %s FROM %s%s", s.columns(q.Variables), s.dialect.Quote(q.Table), s.where(q))
	s.logger.Debug("sqlsource: %s", query)

	out, err := s.scan(ctx, query, len(q.Variables))
	if err != nil {
		return nil, core.NewDataSourceError("rows of "+q.Table, err)
	}
	return out, nil
}

func (s *Source) CountBy(ctx context.Context, q dataset.Query) ([]dataset.Combination, error) {
	var query string
	if len(q.Variables) == 0 {
		query = fmt.Sprintf("SELECT COUNT(*) FROM %s%s", s.dialect.Quote(q.Table), s.where(q))
	} else {
		cols := s.columns(q.Variables)
		query = fmt.Sprintf("SELECT %s, COUNT(*) FROM %s%s GROUP BY %s ORDER BY %s",
			cols, s.dialect.Quote(q.Table), s.where(q), cols, cols)
	}
	s.logger.Debug("sqlsource: %s", query)

	records, err := s.scan(ctx, query, len(q.Variables)+1)
	if err != nil {
		return nil, core.NewDataSourceError("counts of "+q.Table, err)
	}
	combos := make([]dataset.Combination, 0, len(records))
	for _, rec := range records {
		n, ok := dataset.Float(rec[len(rec)-1])
		if !ok {
			return nil, core.NewDataSourceError("counts of "+q.Table, fmt.Errorf("unexpected count %v", rec[len(rec)-1]))
		}
		combos = append(combos, dataset.Combination{Values: rec[:len(rec)-1], Count: int64(n)})
	}
	return combos, nil
}

func (s *Source) columns(vars []string) string {
	quoted := make([]string, len(vars))
	for i, v := range vars {
		quoted[i] = s.dialect.Quote(v)
	}
	return strings.Join(quoted, ", ")
}

func (s *Source) where(q dataset.Query) string {
	var conds []string
	if f := q.CleanFilter(); f != "" {
		conds = append(conds, "("+f+")")
	}
	for _, v := range q.NotNull {
		conds = append(conds, s.dialect.Quote(v)+" IS NOT NULL")
	}
	if len(conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conds, " AND ")
}

func (s *Source) scan(ctx context.Context, query string, width int) ([][]any, error) {
	rows, err := s.db.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out [][]any
	for rows.Next() {
		rec, err := rows.SliceScan()
		if err != nil {
			return nil, err
		}
		if len(rec) != width {
			return nil, fmt.Errorf("expected %d columns, got %d", width, len(rec))
		}
		for i := range rec {
			rec[i] = dataset.Normalize(rec[i])
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}
