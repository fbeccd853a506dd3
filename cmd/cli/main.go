package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"tabstat/adapters/designfile"
	"tabstat/adapters/embedded"
	"tabstat/adapters/render"
	"tabstat/adapters/sortorders"
	"tabstat/adapters/sqlsource"
	"tabstat/adapters/styles"
	"tabstat/app"
	"tabstat/domain/design"
	"tabstat/internal"
	"tabstat/internal/config"
	apperrors "tabstat/internal/errors"
	"tabstat/ports"
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "tabstat",
		Short:         "Cross tabulation and statistical tests over tabular data",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(
		newIngestCmd(),
		newSchemaCmd(),
		newTableCmd(),
		newStatsCmd(),
		newChartCmd(),
		newBatchCmd(),
		newStylesCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		code := apperrors.GetCode(err)
		fmt.Fprintf(os.Stderr, "%s: %v\n", code, err)
		os.Exit(apperrors.ExitCode(err))
	}
}

// env is what every command needs: configuration, a logger and an open data source.
type env struct {
	cfg    *config.Config
	logger *internal.Logger
	source ports.DataSource
	closer io.Closer
}

func setup(ctx context.Context) (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	logger := internal.NewDefaultLogger()
	if level, ok := internal.ParseLogLevel(cfg.Log.Level); ok {
		logger.SetLevel(level)
	}

	e := &env{cfg: cfg, logger: logger}
	if cfg.Store.Backend == config.BackendPostgres {
		src, err := sqlsource.Open(ctx, cfg.Store.Backend, cfg.Store.DSN, logger)
		if err != nil {
			return nil, err
		}
		e.source, e.closer = src, src
		return e, nil
	}
	store, err := embedded.Open(ctx, cfg.Store.Backend, cfg.Store.DSN, logger)
	if err != nil {
		return nil, err
	}
	e.source, e.closer = store, store
	return e, nil
}

func (e *env) Close() {
	if e.closer != nil {
		if err := e.closer.Close(); err != nil {
			e.logger.Warn("closing store: %v", err)
		}
	}
}

func (e *env) service() (*app.ReportService, error) {
	renderer, err := render.NewHTMLRenderer()
	if err != nil {
		return nil, apperrors.Wrap(err, "loading HTML template")
	}
	return app.NewReportService(
		e.source,
		styles.NewSource(e.cfg.Output.StylesDir),
		sortorders.FileSource{},
		renderer,
		e.logger,
		app.ReportOptions{OutputDir: e.cfg.Output.Dir, Concurrency: e.cfg.Batch.Concurrency},
	), nil
}

func (e *env) designs(paths []string) ([]design.Design, error) {
	var all []design.Design
	for _, path := range paths {
		designs, err := designfile.LoadWithDecimals(path, e.cfg.Output.DecimalPoints)
		if err != nil {
			return nil, apperrors.Wrapf(err, "loading designs from %s", path)
		}
		all = append(all, designs...)
	}
	return all, nil
}

func newIngestCmd() *cobra.Command {
	var table string

	cmd := &cobra.Command{
		Use:   "ingest [file]",
		Short: "Load a CSV or XLSX file into the embedded store",
		Long: `Load a CSV or XLSX file into a table of the embedded store, replacing the table
if it exists. Column types are inferred from the values.

Example: tabstat ingest survey.csv --table survey`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runIngest(cmd.Context(), cmd.OutOrStdout(), args[0], table)
		},
	}

	cmd.Flags().StringVar(&table, "table", "", "Destination table (default: file name without extension)")
	return cmd
}

func runIngest(ctx context.Context, w io.Writer, path, table string) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	ingester, ok := e.source.(ports.Ingester)
	if !ok {
		return apperrors.Configuration("the " + e.cfg.Store.Backend + " backend does not support ingestion")
	}
	if table == "" {
		table = tableName(path)
	}
	schema, err := ingester.Ingest(ctx, table, path)
	if err != nil {
		return apperrors.Wrapf(err, "ingesting %s into %q", path, table)
	}
	printSchema(w, schema)
	return nil
}

func newSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema [table]",
		Short: "Show the variables of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			schema, err := e.source.Schema(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printSchema(cmd.OutOrStdout(), schema)
			return nil
		},
	}
}

func newTableCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "table [design.yaml]",
		Short: "Compute the cross tab and frequency designs of a file",
		Long: `Compute every cross tab and frequency design in a design file and print the
grids. With --write each design is also rendered to its output path.

Example: tabstat table designs/country_by_gender.yaml --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(cmd.Context(), cmd.OutOrStdout(), args[0], write)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Render each table to its output path")
	return cmd
}

func runTable(ctx context.Context, w io.Writer, path string, write bool) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	svc, err := e.service()
	if err != nil {
		return err
	}
	designs, err := e.designs([]string{path})
	if err != nil {
		return err
	}

	printed := 0
	for _, d := range designs {
		switch d.(type) {
		case *design.CrossTabDesign, *design.FrequencyDesign:
		default:
			continue
		}
		grid, err := svc.Tabulate(ctx, d)
		if err != nil {
			return err
		}
		printGrid(w, d.Settings(), grid)
		printed++

		if write {
			out, err := svc.MakeOutput(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "written to %s\n", out.Path)
		}
	}
	if printed == 0 {
		return apperrors.Configuration("no table designs in " + path)
	}
	return nil
}

func newStatsCmd() *cobra.Command {
	var write, workings bool

	cmd := &cobra.Command{
		Use:   "stats [design.yaml]",
		Short: "Run the statistical test designs of a file",
		Long: `Run every statistical test design in a design file and print the results.

Example: tabstat stats designs/rating_by_browser.yaml --workings`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStats(cmd.Context(), cmd.OutOrStdout(), args[0], write, workings)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Render each result to its output path")
	cmd.Flags().BoolVar(&workings, "workings", false, "Print the worked example of each test")
	return cmd
}

func runStats(ctx context.Context, w io.Writer, path string, write, workings bool) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	svc, err := e.service()
	if err != nil {
		return err
	}
	designs, err := e.designs([]string{path})
	if err != nil {
		return err
	}

	printed := 0
	for _, d := range designs {
		td, ok := d.(design.TestDesign)
		if !ok {
			continue
		}
		if workings {
			td.Settings().ShowWorkings = true
		}
		r, err := svc.ToResult(ctx, td)
		if err != nil {
			return err
		}
		printResult(w, td.Settings(), r)
		printed++

		if write {
			out, err := svc.MakeOutput(ctx, td)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "written to %s\n", out.Path)
		}
	}
	if printed == 0 {
		return apperrors.Configuration("no statistical test designs in " + path)
	}
	return nil
}

func newChartCmd() *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "chart [design.yaml]",
		Short: "Extract the data of the chart and histogram designs of a file",
		Long: `Compute the amounts of every chart design and the bins of every histogram design
in a design file and print them.

Example: tabstat chart designs/browsers.yaml --write`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChart(cmd.Context(), cmd.OutOrStdout(), args[0], write)
		},
	}

	cmd.Flags().BoolVar(&write, "write", false, "Render each chart's data to its output path")
	return cmd
}

func runChart(ctx context.Context, w io.Writer, path string, write bool) error {
	e, err := setup(ctx)
	if err != nil {
		return err
	}
	defer e.Close()

	svc, err := e.service()
	if err != nil {
		return err
	}
	designs, err := e.designs([]string{path})
	if err != nil {
		return err
	}

	printed := 0
	for _, d := range designs {
		switch cd := d.(type) {
		case *design.AmountsDesign:
			data, err := svc.Amounts(ctx, cd)
			if err != nil {
				return err
			}
			printAmounts(w, cd.Settings(), data)
		case *design.HistogramDesign:
			data, err := svc.Histogram(ctx, cd)
			if err != nil {
				return err
			}
			printHistogram(w, cd.Settings(), data)
		default:
			continue
		}
		printed++

		if write {
			out, err := svc.MakeOutput(ctx, d)
			if err != nil {
				return err
			}
			fmt.Fprintf(w, "written to %s\n", out.Path)
		}
	}
	if printed == 0 {
		return apperrors.Configuration("no chart designs in " + path)
	}
	return nil
}

func newBatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "batch [design.yaml...]",
		Short: "Render every design of one or more files",
		Long: `Render every design of the given files to HTML, running designs concurrently
up to TABSTAT_BATCH_CONCURRENCY. The first failure stops the batch.

Example: tabstat batch designs/*.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := setup(cmd.Context())
			if err != nil {
				return err
			}
			defer e.Close()

			svc, err := e.service()
			if err != nil {
				return err
			}
			designs, err := e.designs(args)
			if err != nil {
				return err
			}
			results, err := svc.RunBatch(cmd.Context(), designs)
			if err != nil {
				return err
			}
			printOutputs(cmd.OutOrStdout(), results)
			return nil
		},
	}
}

func newStylesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "styles [name]",
		Short: "List styles, or show the tokens of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			src := styles.NewSource(cfg.Output.StylesDir)
			if len(args) == 0 {
				for _, name := range src.Names() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			}
			style, err := src.Style(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			printStyle(cmd.OutOrStdout(), style)
			return nil
		},
	}
	return cmd
}
