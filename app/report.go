package app

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"tabstat/adapters/render"
	"tabstat/domain/core"
	"tabstat/domain/dataset"
	"tabstat/domain/design"
	"tabstat/domain/report"
	result "tabstat/domain/stats"
	domain "tabstat/domain/tabulation"
	"tabstat/internal"
	"tabstat/internal/output"
	"tabstat/internal/stats"
	"tabstat/internal/tabulation"
	"tabstat/ports"
)

// ReportService turns designs into grids, test results and rendered documents.
type ReportService struct {
	source    ports.DataSource
	styles    ports.StyleSource
	orders    ports.SortOrderSource
	renderer  ports.Renderer
	assembler *output.Assembler
	logger    *internal.Logger

	outputDir   string
	concurrency int
}

// ReportOptions configure where documents go and how batches run.
type ReportOptions struct {
	OutputDir   string
	Concurrency int
}

// OutputResult describes one written document.
type OutputResult struct {
	Document  *report.Document `json:"document"`
	Path      string           `json:"path"`
	RuntimeMs int64            `json:"runtime_ms"`
}

// NewReportService creates a report service. The sort order source may be nil when no
// design loads its orders from a file.
func NewReportService(source ports.DataSource, styles ports.StyleSource, orders ports.SortOrderSource, renderer ports.Renderer, logger *internal.Logger, opts ReportOptions) *ReportService {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.OutputDir == "" {
		opts.OutputDir = "."
	}
	return &ReportService{
		source:      source,
		styles:      styles,
		orders:      orders,
		renderer:    renderer,
		assembler:   output.NewAssembler(),
		logger:      logger,
		outputDir:   opts.OutputDir,
		concurrency: opts.Concurrency,
	}
}

// Tabulate computes the grid of a cross tab or frequency design.
func (s *ReportService) Tabulate(ctx context.Context, d design.Design) (*domain.Grid, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	common := d.Settings()

	var vars []string
	switch td := d.(type) {
	case *design.CrossTabDesign:
		vars = td.Variables()
	case *design.FrequencyDesign:
		vars = td.Variables()
	default:
		return nil, core.NewConfigurationError("%T is not a table design", d)
	}
	if err := s.checkVariables(ctx, common.Table, vars...); err != nil {
		return nil, err
	}
	orders, err := s.sortOrders(ctx, common)
	if err != nil {
		return nil, err
	}

	// One snapshot for the whole table. Nulls stay in; each block drops the nulls of its own variables.
	combos, err := s.source.CountBy(ctx, dataset.Query{Table: common.Table, Variables: vars, Filter: common.Filter})
	if err != nil {
		return nil, err
	}
	idx := tabulation.NewIndex(vars, combos)
	s.logger.Debug("tabulating %s: %d combinations over %d records", common.Table, len(combos), idx.Total())

	switch td := d.(type) {
	case *design.CrossTabDesign:
		return tabulation.CrossTab(td, idx, orders)
	case *design.FrequencyDesign:
		return tabulation.Frequency(td, idx, orders)
	}
	return nil, nil
}

// ToResult extracts the data a test design names and computes the test.
func (s *ReportService) ToResult(ctx context.Context, d design.TestDesign) (*result.Result, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}
	test, err := s.buildTest(ctx, d)
	if err != nil {
		return nil, err
	}
	common := d.Settings()
	r, err := test.Compute(stats.Options{
		HighPrecision: common.HighPrecision,
		DecimalPoints: common.DecimalPoints,
		ShowWorkings:  common.ShowWorkings,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Debug("%s on %s: %s = %g, p = %g", r.Kind, common.Table, r.StatisticName, r.Statistic, r.PValue)
	return r, nil
}

// MakeOutput computes a design, assembles it with its style and writes the document.
// Nothing is written when any step fails.
func (s *ReportService) MakeOutput(ctx context.Context, d design.Design) (*OutputResult, error) {
	start := time.Now()
	common := d.Settings()

	doc, err := s.Assemble(ctx, d)
	if err != nil {
		return nil, err
	}
	path := s.outputPath(common, doc)
	if err := render.WriteFile(ctx, s.renderer, doc, path); err != nil {
		return nil, err
	}
	if common.ShowInBrowser {
		s.logger.Info("show_in_web_browser is set; open %s to view the output", path)
	}
	s.logger.Info("wrote %s (%s)", path, doc.Kind)
	return &OutputResult{Document: doc, Path: path, RuntimeMs: time.Since(start).Milliseconds()}, nil
}

// Assemble computes a design and merges it with its style without writing anything.
// Tables, tests and chart data each get their own document kind.
func (s *ReportService) Assemble(ctx context.Context, d design.Design) (*report.Document, error) {
	common := d.Settings()
	style, err := s.styles.Style(ctx, common.StyleName)
	if err != nil {
		return nil, err
	}
	meta := output.Meta{
		Title:         common.Title,
		Subtitles:     common.Subtitles,
		DecimalPoints: common.DecimalPoints,
		Settings:      settings(d),
	}

	switch td := d.(type) {
	case design.TestDesign:
		r, err := s.ToResult(ctx, td)
		if err != nil {
			return nil, err
		}
		return s.assembler.Stats(r, style, meta)
	case *design.AmountsDesign:
		data, err := s.Amounts(ctx, td)
		if err != nil {
			return nil, err
		}
		return s.assembler.Amounts(data, style, meta)
	case *design.HistogramDesign:
		data, err := s.Histogram(ctx, td)
		if err != nil {
			return nil, err
		}
		return s.assembler.Histogram(data, style, meta)
	}

	grid, err := s.Tabulate(ctx, d)
	if err != nil {
		return nil, err
	}
	meta.Kind = report.KindCrossTab
	if _, ok := d.(*design.FrequencyDesign); ok {
		meta.Kind = report.KindFrequency
	}
	return s.assembler.Table(grid, style, meta)
}

// RunBatch writes every design, running up to the configured number concurrently.
// The first failure cancels the designs not yet started and is returned.
func (s *ReportService) RunBatch(ctx context.Context, designs []design.Design) ([]*OutputResult, error) {
	results := make([]*OutputResult, len(designs))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)

	for i, d := range designs {
		i, d := i, d
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			out, err := s.MakeOutput(gctx, d)
			if err != nil {
				return fmt.Errorf("design %d (%s): %w", i+1, d.Settings().Table, err)
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.logger.Error("batch failed: %v", err)
		return nil, err
	}
	s.logger.Info("batch of %d designs complete", len(designs))
	return results, nil
}

func (s *ReportService) checkVariables(ctx context.Context, table string, vars ...string) error {
	schema, err := s.source.Schema(ctx, table)
	if err != nil {
		return err
	}
	if missing, ok := schema.Has(vars...); !ok {
		return core.NewVariableNotFoundError(missing, table)
	}
	return nil
}

func (s *ReportService) sortOrders(ctx context.Context, c *design.Common) (design.CustomOrders, error) {
	if c.SortOrdersFile == "" {
		return c.SortOrders, nil
	}
	if s.orders == nil {
		return nil, core.NewConfigurationError("sort_orders_file %q set but no sort order source is configured", c.SortOrdersFile)
	}
	return s.orders.SortOrders(ctx, c.SortOrdersFile)
}

func (s *ReportService) outputPath(c *design.Common, doc *report.Document) string {
	path := c.OutputPath
	if path == "" {
		path = filepath.Join(s.outputDir, doc.ID.String())
	}
	if filepath.Ext(path) == "" {
		path += s.renderer.Extension()
	}
	return path
}

// settings flattens the fields that determine a document's content.
func settings(d design.Design) map[string]any {
	c := d.Settings()
	definition, _ := yaml.Marshal(d)
	out := map[string]any{
		"design":         fmt.Sprintf("%T", d),
		"definition":     string(definition),
		"table":          c.Table,
		"filter":         c.Filter,
		"style":          c.StyleName,
		"decimal_points": c.DecimalPoints,
		"high_precision": c.HighPrecision,
		"show_workings":  c.ShowWorkings,
	}
	if td, ok := d.(design.TestDesign); ok {
		out["test"] = string(td.TestKind())
	}
	return out
}
