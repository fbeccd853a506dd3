// Package embedded is a local store that ingests CSV and XLSX files into SQLite or
// DuckDB and serves them as a data source.
package embedded

import (
	"context"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"tabstat/adapters/sqlsource"
	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/internal"
	"tabstat/ports"
)

// Store is a file-backed data source that can ingest files.
type Store struct {
	*sqlsource.Source
	logger *internal.Logger
}

var (
	_ ports.DataSource = (*Store)(nil)
	_ ports.Ingester   = (*Store)(nil)
)

// Open opens or creates a store. Only embedded backends are accepted.
func Open(ctx context.Context, backend, path string, logger *internal.Logger) (*Store, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	dialect, err := sqlsource.DialectFor(backend)
	if err != nil {
		return nil, core.NewConfigurationError("%v", err)
	}
	if dialect.Name == sqlsource.Postgres.Name {
		return nil, core.NewConfigurationError("postgres is not an embedded backend")
	}
	src, err := sqlsource.Open(ctx, dialect.Name, path, logger)
	if err != nil {
		return nil, err
	}
	return &Store{Source: src, logger: logger}, nil
}

// Ingest replaces table with the contents of a CSV or XLSX file and returns its schema.
func (s *Store) Ingest(ctx context.Context, table, path string) (dataset.Schema, error) {
	if strings.TrimSpace(table) == "" {
		return dataset.Schema{}, core.NewConfigurationError("a table name is required")
	}
	ext := strings.ToLower(filepath.Ext(path))
	if s.Dialect().Name == sqlsource.DuckDB.Name && ext == ".csv" {
		if err := s.ingestNativeCSV(ctx, table, path); err != nil {
			return dataset.Schema{}, err
		}
		return s.Schema(ctx, table)
	}

	raw, err := NewFileReader(path).Read()
	if err != nil {
		return dataset.Schema{}, err
	}
	if err := s.load(ctx, table, raw); err != nil {
		return dataset.Schema{}, err
	}
	s.logger.Info("ingested %s into %s (%d columns, %d rows)", path, table, len(raw.Headers), len(raw.Rows))
	return s.Schema(ctx, table)
}

// ingestNativeCSV lets DuckDB infer the schema itself.
func (s *Store) ingestNativeCSV(ctx context.Context, table, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return core.NewDataSourceError("ingest "+path, err)
	}
	query := fmt.Sprintf("CREATE OR REPLACE TABLE %s AS SELECT * FROM read_csv_auto('%s', header=true)",
		s.Dialect().Quote(table), strings.ReplaceAll(abs, "'", "''"))
	if _, err := s.DB().ExecContext(ctx, query); err != nil {
		return core.NewDataSourceError("ingest "+path, err)
	}
	s.logger.Info("ingested %s into %s with read_csv_auto", path, table)
	return nil
}

type columnType int

const (
	columnText columnType = iota
	columnInteger
	columnReal
)

// inferTypes treats a column as numeric when every non-blank cell parses as a number.
func inferTypes(raw *RawTable) []columnType {
	types := make([]columnType, len(raw.Headers))
	for c := range raw.Headers {
		t, seen := columnInteger, false
		for _, row := range raw.Rows {
			cell := row[c]
			if cell == "" {
				continue
			}
			seen = true
			if _, err := strconv.ParseInt(cell, 10, 64); err == nil {
				continue
			}
			if _, err := strconv.ParseFloat(cell, 64); err == nil {
				t = columnReal
				continue
			}
			t = columnText
			break
		}
		if !seen {
			t = columnText
		}
		types[c] = t
	}
	return types
}

func (s *Store) sqlType(t columnType) string {
	duck := s.Dialect().Name == sqlsource.DuckDB.Name
	switch t {
	case columnInteger:
		if duck {
			return "BIGINT"
		}
		return "INTEGER"
	case columnReal:
		if duck {
			return "DOUBLE"
		}
		return "REAL"
	}
	if duck {
		return "VARCHAR"
	}
	return "TEXT"
}

func convert(cell string, t columnType) any {
	if cell == "" {
		return nil
	}
	switch t {
	case columnInteger:
		n, _ := strconv.ParseInt(cell, 10, 64)
		return n
	case columnReal:
		f, _ := strconv.ParseFloat(cell, 64)
		return f
	}
	return cell
}

func (s *Store) load(ctx context.Context, table string, raw *RawTable) error {
	d := s.Dialect()
	types := inferTypes(raw)
	defs := make([]string, len(raw.Headers))
	marks := make([]string, len(raw.Headers))
	for i, h := range raw.Headers {
		defs[i] = d.Quote(h) + " " + s.sqlType(types[i])
		marks[i] = "?"
	}

	tx, err := s.DB().BeginTxx(ctx, nil)
	if err != nil {
		return core.NewDataSourceError("ingest "+table, err)
	}
	defer func() { _ = tx.Rollback() }()

	stmts := []string{
		"DROP TABLE IF EXISTS " + d.Quote(table),
		fmt.Sprintf("CREATE TABLE %s (%s)", d.Quote(table), strings.Join(defs, ", ")),
	}
	for _, stmt := range stmts {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return core.NewDataSourceError("ingest "+table, err)
		}
	}
	insert, err := tx.PreparexContext(ctx, d.Rebind(fmt.Sprintf("INSERT INTO %s VALUES (%s)", d.Quote(table), strings.Join(marks, ", "))))
	if err != nil {
		return core.NewDataSourceError("ingest "+table, err)
	}
	defer insert.Close()

	args := make([]any, len(raw.Headers))
	for _, row := range raw.Rows {
		for i, cell := range row {
			args[i] = convert(cell, types[i])
		}
		if _, err := insert.ExecContext(ctx, args...); err != nil {
			return core.NewDataSourceError("ingest "+table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return core.NewDataSourceError("ingest "+table, err)
	}
	return nil
}
