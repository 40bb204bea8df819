package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/latticedata/lattice/internal/catalog"
)

// ReportInfo is one catalog entry in the reports listing.
type ReportInfo struct {
	Name    string   `json:"name"`
	Title   string   `json:"title"`
	GroupBy []string `json:"group_by,omitempty"`
	Scalar  bool     `json:"scalar,omitempty"`
}

// NewReportsCommand creates the reports command.
func NewReportsCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "reports",
		Short:         "List the report catalog",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReportsList(rootOpts, cmd)
		},
	}
}

func runReportsList(opts *RootOptions, cmd *cobra.Command) error {
	reports, err := catalog.Load()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compile report catalog", err)
	}

	infos := make([]ReportInfo, 0, len(reports))
	for _, rep := range reports {
		infos = append(infos, ReportInfo{
			Name:    rep.Name,
			Title:   rep.Title,
			GroupBy: rep.GroupBy,
			Scalar:  rep.Scalar,
		})
	}

	formatter := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout(), Verbose: opts.Verbose}
	if opts.Format == "json" {
		return formatter.Success(infos)
	}

	w := cmd.OutOrStdout()
	width := 0
	for _, info := range infos {
		if len(info.Name) > width {
			width = len(info.Name)
		}
	}
	for _, info := range infos {
		fmt.Fprintf(w, "%s  %s\n", pad(info.Name, width), info.Title)
	}
	return nil
}
