package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/latticedata/lattice/internal/dataset"
	"github.com/latticedata/lattice/internal/store"
)

// LoadOptions holds flags for the load command.
type LoadOptions struct {
	*RootOptions
	Database   string
	Facts      string
	Stores     string
	Dates      string
	Promotions string

	// AllowInconsistentDims downgrades duplicate-dimension conflicts from
	// errors to first-row-wins.
	AllowInconsistentDims bool
}

// LoadResult is the success payload for the load command.
type LoadResult struct {
	BatchID    string `json:"batch_id"`
	Facts      int    `json:"facts"`
	Stores     int    `json:"stores"`
	Dates      int    `json:"dates"`
	Promotions int    `json:"promotions"`
}

// NewLoadCommand creates the load command.
func NewLoadCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &LoadOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Load and validate a CSV dataset into the database",
		Long: `Load a star-schema sales dataset from CSV files.

All four files are parsed, cross-validated (foreign keys, value ranges,
dimension consistency), and persisted as one atomic load batch. A dataset
that fails validation writes nothing.

Example:
  lattice load --db ./lattice.db \
    --facts sales.csv --stores stores.csv --dates dates.csv --promotions promotions.csv`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLoad(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Facts, "facts", "", "path to the sales fact CSV (required)")
	_ = cmd.MarkFlagRequired("facts")
	cmd.Flags().StringVar(&opts.Stores, "stores", "", "path to the store dimension CSV (required)")
	_ = cmd.MarkFlagRequired("stores")
	cmd.Flags().StringVar(&opts.Dates, "dates", "", "path to the date dimension CSV (required)")
	_ = cmd.MarkFlagRequired("dates")
	cmd.Flags().StringVar(&opts.Promotions, "promotions", "", "path to the promotion dimension CSV (required)")
	_ = cmd.MarkFlagRequired("promotions")
	cmd.Flags().BoolVar(&opts.AllowInconsistentDims, "allow-inconsistent-dims", false,
		"keep the first row on duplicate dimension keys instead of failing")

	return cmd
}

func runLoad(opts *LoadOptions, cmd *cobra.Command) error {
	configureLogging(opts.Verbose)
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	slog.Info("loading dataset",
		"facts", opts.Facts, "stores", opts.Stores,
		"dates", opts.Dates, "promotions", opts.Promotions)

	ds, err := dataset.LoadFiles(opts.Facts, opts.Stores, opts.Dates, opts.Promotions,
		dataset.LoadOptions{AllowInconsistentDims: opts.AllowInconsistentDims})
	if err != nil {
		if dataset.IsValidationError(err) {
			_ = formatter.Error("VALIDATION", err.Error(), nil)
			return WrapExitError(ExitFailure, "dataset validation failed", err)
		}
		return WrapExitError(ExitCommandError, "failed to read dataset", err)
	}
	slog.Info("dataset validated", "facts", len(ds.Facts))

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			slog.Error("error closing database", "error", closeErr)
		}
	}()

	batchID, err := st.WriteDataset(context.Background(), ds)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to write dataset", err)
	}
	slog.Info("dataset persisted", "batch", batchID)

	result := LoadResult{
		BatchID:    batchID,
		Facts:      len(ds.Facts),
		Stores:     len(ds.Stores),
		Dates:      len(ds.Dates),
		Promotions: len(ds.Promotions),
	}
	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	printer.Fprintf(w, "Loaded %d fact(s) as batch %s\n", result.Facts, result.BatchID)
	printer.Fprintf(w, "Dimensions: %d store(s), %d date(s), %d promotion(s)\n",
		result.Stores, result.Dates, result.Promotions)
	return nil
}

// configureLogging sets the default slog handler. Logs go to stderr so JSON
// output on stdout stays parseable.
func configureLogging(verbose bool) {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}
