package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"tradestats/adapters/report"
	"tradestats/adapters/samples"
	"tradestats/app"
	"tradestats/domain/comparison"
	"tradestats/internal"
	"tradestats/internal/analysis/groups"
	"tradestats/internal/config"
	"tradestats/internal/errors"
	"tradestats/ports"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Load environment variables from .env file
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "tradestats",
		Short: "Compare a metric between two groups with Welch's t-test or Mann-Whitney U",
	}

	rootCmd.AddCommand(
		newCompareCmd(),
		newBatchCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// sourceFlags select where samples come from and how to split them.
type sourceFlags struct {
	file        string
	dsn         string
	driver      string
	table       string
	groupColumn string
	groupA      string
	groupB      string
	alpha       float64
	test        string
	format      string
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.file, "file", "", "CSV or XLSX export to read")
	cmd.Flags().StringVar(&f.dsn, "dsn", "", "Database connection string (defaults to DATABASE_URL)")
	cmd.Flags().StringVar(&f.driver, "driver", "", "Database driver: postgres or sqlite (defaults to DB_DRIVER)")
	cmd.Flags().StringVar(&f.table, "table", "", "Table to read when using a database")
	cmd.Flags().StringVar(&f.groupColumn, "group-column", "", "Column holding the group label")
	cmd.Flags().StringVar(&f.groupA, "group-a", "", "Label of the first group")
	cmd.Flags().StringVar(&f.groupB, "group-b", "", "Label of the second group")
	cmd.Flags().Float64Var(&f.alpha, "alpha", 0, "Significance level (defaults to ALPHA)")
	cmd.Flags().StringVar(&f.test, "test", "", "Test path: parametric, nonparametric or both (defaults to DEFAULT_TEST)")
	cmd.Flags().StringVar(&f.format, "format", "text", "Output format: text, json, markdown or html")

	cmd.MarkFlagRequired("group-column")
	cmd.MarkFlagRequired("group-a")
	cmd.MarkFlagRequired("group-b")
	cmd.MarkFlagsMutuallyExclusive("file", "dsn")
}

func (f *sourceFlags) request(column string) app.ComparisonRequest {
	return app.ComparisonRequest{
		Query: &comparison.SampleQuery{
			Table:       f.table,
			ValueColumn: column,
			GroupColumn: f.groupColumn,
			GroupA:      f.groupA,
			GroupB:      f.groupB,
		},
		Alpha: f.alpha,
		Test:  comparison.TestKind(f.test),
	}
}

// setup loads configuration and opens the sample source. The returned cleanup
// closes any database handle.
func (f *sourceFlags) setup(ctx context.Context) (*app.ComparisonService, func(), error) {
	switch f.format {
	case "text", "json", "markdown", "html":
	default:
		return nil, nil, fmt.Errorf("unknown format %q (want text, json, markdown or html)", f.format)
	}

	appConfig, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := internal.NewLogger(appConfig.LogLevel)

	cleanup := func() {}
	var source ports.SampleSource
	switch {
	case f.file != "":
		source = samples.NewFileSource(f.file, logger)
	default:
		dsn, driver := f.dsn, f.driver
		if dsn == "" {
			dsn = appConfig.Database.URL
		}
		if driver == "" {
			driver = appConfig.Database.Driver
		}
		if dsn == "" {
			return nil, nil, fmt.Errorf("either --file or --dsn (or DATABASE_URL) is required")
		}
		db, err := samples.OpenDatabase(ctx, driver, dsn)
		if err != nil {
			return nil, nil, errors.Wrapf(err, "failed to open %s source", driver)
		}
		cleanup = func() { db.Close() }
		source = samples.NewSQLSource(db, logger)
	}

	return app.NewComparisonService(source, appConfig.Analysis, appConfig.Plot, logger), cleanup, nil
}

func newCompareCmd() *cobra.Command {
	var flags sourceFlags
	var column, plotPath string

	cmd := &cobra.Command{
		Use:   "compare",
		Short: "Compare one metric between two groups",
		Long: `Compare one metric between two groups and print descriptives, test results and a verdict.

Example: tradestats compare --file calls.csv --column "Handle Time" --group-column queue --group-a billing --group-b support --test both --plot aht.svg`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service, cleanup, err := flags.setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			outcome, err := service.Compare(ctx, flags.request(column))
			if err != nil {
				return err
			}
			if err := writeOutcomes(cmd.OutOrStdout(), flags.format, outcome); err != nil {
				return err
			}
			if plotPath != "" {
				return writePlot(service, outcome, plotPath)
			}
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&column, "column", "", "Metric column to compare")
	cmd.Flags().StringVar(&plotPath, "plot", "", "Write overlaid histograms to this .svg or .png file")
	cmd.MarkFlagRequired("column")

	return cmd
}

func newBatchCmd() *cobra.Command {
	var flags sourceFlags
	var columns []string

	cmd := &cobra.Command{
		Use:   "batch",
		Short: "Compare several metrics between the same two groups concurrently",
		Long: `Compare several metrics between the same two groups. Comparisons run concurrently,
at most BATCH_CONCURRENCY at a time.

Example: tradestats batch --file calls.xlsx --group-column queue --group-a billing --group-b support --column handle_time --column csat`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			service, cleanup, err := flags.setup(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			reqs := make([]app.ComparisonRequest, len(columns))
			for i, column := range columns {
				reqs[i] = flags.request(column)
			}

			outcomes, err := service.CompareAll(ctx, reqs)
			if err != nil {
				return err
			}
			return writeOutcomes(cmd.OutOrStdout(), flags.format, outcomes...)
		},
	}

	flags.register(cmd)
	cmd.Flags().StringArrayVar(&columns, "column", nil, "Metric column to compare (repeatable)")
	cmd.MarkFlagRequired("column")

	return cmd
}

func writeOutcomes(w io.Writer, format string, outcomes ...*app.ComparisonOutcome) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if len(outcomes) == 1 {
			return enc.Encode(outcomes[0])
		}
		return enc.Encode(outcomes)
	case "markdown":
		for _, outcome := range outcomes {
			if _, err := fmt.Fprintln(w, report.Markdown(outcome)); err != nil {
				return err
			}
		}
	case "html":
		for _, outcome := range outcomes {
			if _, err := w.Write(report.HTML(outcome)); err != nil {
				return err
			}
		}
	default:
		for _, outcome := range outcomes {
			if _, err := fmt.Fprintln(w, report.Text(outcome)); err != nil {
				return err
			}
		}
	}
	return nil
}

// writePlot renders to a file it creates and closes.
func writePlot(service *app.ComparisonService, outcome *app.ComparisonOutcome, path string) (err error) {
	opts := service.PlotOptions(outcome)
	if strings.HasSuffix(strings.ToLower(path), ".png") {
		opts.Format = groups.PlotPNG
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create plot file: %w", err)
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	if err := outcome.Plot(f, opts); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Plot written to %s\n", path)
	return nil
}
