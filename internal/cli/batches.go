package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/latticedata/lattice/internal/store"
)

// BatchListEntry is one load batch in the batches listing.
type BatchListEntry struct {
	ID        string `json:"id"`
	LoadedAt  string `json:"loaded_at"`
	FactCount int    `json:"fact_count"`
}

// NewBatchesCommand creates the batches command.
func NewBatchesCommand(rootOpts *RootOptions) *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:           "batches",
		Short:         "List load batches in the database",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatches(rootOpts, database, cmd)
		},
	}

	cmd.Flags().StringVar(&database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}

func runBatches(opts *RootOptions, database string, cmd *cobra.Command) error {
	st, err := store.Open(database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	batches, err := st.Batches(context.Background())
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list batches", err)
	}

	entries := make([]BatchListEntry, 0, len(batches))
	for _, b := range batches {
		entries = append(entries, BatchListEntry{
			ID:        b.ID,
			LoadedAt:  b.LoadedAt.Format(time.RFC3339),
			FactCount: b.FactCount,
		})
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(entries)
	}

	w := cmd.OutOrStdout()
	if len(entries) == 0 {
		fmt.Fprintln(w, "No load batches.")
		return nil
	}
	for _, e := range entries {
		printer.Fprintf(w, "%s  %s  %d fact(s)\n", e.ID, e.LoadedAt, e.FactCount)
	}
	return nil
}
