package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/latticedata/lattice/internal/catalog"
	"github.com/latticedata/lattice/internal/engine"
	"github.com/latticedata/lattice/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database   string
	All        bool
	StoreIDs   []string
	BeforeYear int
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run [report]",
		Short: "Evaluate reports against the loaded dataset",
		Long: `Evaluate one report, or the whole battery with --all.

Reports come from the compiled catalog; "lattice reports" lists them.
Filter flags override the report's defaults for ad-hoc queries.

Examples:
  lattice run store_revenue --db ./lattice.db
  lattice run weather_store_revenue --db ./lattice.db --stores S001,S002
  lattice run --all --db ./lattice.db --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if opts.All == (len(args) == 1) {
				return NewExitError(ExitCommandError, "provide exactly one report name or --all")
			}
			name := ""
			if len(args) == 1 {
				name = args[0]
			}
			return runReports(opts, name, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().BoolVar(&opts.All, "all", false, "run every report in the catalog")
	cmd.Flags().StringSliceVar(&opts.StoreIDs, "stores", nil, "restrict to these store IDs")
	cmd.Flags().IntVar(&opts.BeforeYear, "before-year", 0, "keep only sales before this year")

	return cmd
}

func runReports(opts *RunOptions, name string, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	runner, err := openRunner(opts.Database)
	if err != nil {
		return err
	}

	engineOpts := engine.Options{StoreIDs: opts.StoreIDs, BeforeYear: opts.BeforeYear}

	if opts.All {
		return runAllReports(opts, formatter, runner, engineOpts, cmd)
	}

	out, err := runner.Run(name, engineOpts)
	if err != nil {
		if engine.IsUnknownReport(err) {
			_ = formatter.Error("UNKNOWN_REPORT", err.Error(), nil)
			return WrapExitError(ExitCommandError, "unknown report", err)
		}
		return WrapExitError(ExitFailure, "report evaluation failed", err)
	}

	rep := findReport(runner, name)
	if opts.Format == "json" {
		return formatter.Success(NewTableJSON(name, rep.Title, out))
	}
	renderTable(cmd.OutOrStdout(), rep.Title, out)
	return nil
}

func runAllReports(opts *RunOptions, formatter *OutputFormatter, runner *engine.Runner,
	engineOpts engine.Options, cmd *cobra.Command) error {

	results := runner.RunAll(engineOpts)

	var firstErr error
	tables := make([]TableJSON, 0, len(results))
	for _, res := range results {
		if res.Err != nil {
			slog.Error("report failed", "report", res.Name, "error", res.Err)
			if firstErr == nil {
				firstErr = res.Err
			}
			continue
		}
		rep := findReport(runner, res.Name)
		tables = append(tables, NewTableJSON(res.Name, rep.Title, res.Table))
	}

	if opts.Format == "json" {
		if err := formatter.Success(tables); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for i, res := range results {
			if res.Err != nil {
				fmt.Fprintf(w, "Error [%s]: %v\n", res.Name, res.Err)
				continue
			}
			if i > 0 {
				fmt.Fprintln(w)
			}
			renderTable(w, findReport(runner, res.Name).Title, res.Table)
		}
	}

	if firstErr != nil {
		return WrapExitError(ExitFailure, "one or more reports failed", firstErr)
	}
	return nil
}

// openRunner opens the database, reads the dataset back, and compiles the
// report catalog.
func openRunner(dbPath string) (*engine.Runner, error) {
	reports, err := catalog.Load()
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to compile report catalog", err)
	}

	st, err := store.Open(dbPath)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	ds, err := st.ReadDataset(context.Background())
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to read dataset", err)
	}
	slog.Info("dataset loaded", "facts", len(ds.Facts))

	return engine.NewRunner(ds, reports), nil
}

func findReport(runner *engine.Runner, name string) catalog.Report {
	for _, rep := range runner.Reports() {
		if rep.Name == name {
			return rep
		}
	}
	return catalog.Report{Name: name}
}
