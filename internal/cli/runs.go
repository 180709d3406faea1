package cli

import (
	"bufio"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
	"github.com/roach88/snaphist/internal/store"
	"github.com/roach88/snaphist/internal/tabular"
)

// RunsOptions holds flags for the runs command.
type RunsOptions struct {
	*RootOptions
	Database       string
	OpenEndedLabel string
}

// RunDetail is a stored run together with its records.
type RunDetail struct {
	Run     store.Run   `json:"run"`
	Records []ir.Record `json:"records"`
}

// NewRunsCommand creates the runs command.
func NewRunsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "runs [run-id]",
		Short: "List or show saved runs",
		Long: `List the runs saved with 'snaphist build --save', or show one of them.

Without an argument, prints one line per run in save order. With a run id,
prints the run summary followed by its records as CSV.

Example:
  snaphist runs --db ./history.db
  snaphist runs --db ./history.db 0190c5a8-...`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 1 {
				return runShowRun(opts, cmd, args[0])
			}
			return runListRuns(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database (env SNAPHIST_DB)")
	cmd.Flags().StringVar(&opts.OpenEndedLabel, "open-ended-label", "", "text written for open-ended instants (\"date\" writes 9999-12-31 23:59:59; env SNAPHIST_OPEN_ENDED_LABEL)")

	return cmd
}

func (o *RunsOptions) openStore(cmd *cobra.Command) (*store.Store, error) {
	cfg, err := o.loadConfig()
	if err != nil {
		return nil, err
	}
	setDefault(cmd, "db", &o.Database, cfg.DBPath)
	setDefault(cmd, "open-ended-label", &o.OpenEndedLabel, cfg.OpenEndedLabel)
	if o.Database == "" {
		return nil, NewExitError(ExitCommandError, "--db is required")
	}
	return openExistingStore(o.Database)
}

func runListRuns(opts *RunsOptions, cmd *cobra.Command) error {
	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st, opts.logger(cmd.ErrOrStderr()))()

	runs, err := st.ListRuns(commandContext(cmd))
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to list runs", err)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Report(runs, nil)
	}

	w := cmd.OutOrStdout()
	if len(runs) == 0 {
		fmt.Fprintln(w, "No runs saved.")
		return nil
	}
	for _, r := range runs {
		fmt.Fprintf(w, "%s  %d records  %d objects  %s\n", r.ID, r.Records, r.Objects, r.HistoryHash)
	}
	return nil
}

func runShowRun(opts *RunsOptions, cmd *cobra.Command, runID string) error {
	st, err := opts.openStore(cmd)
	if err != nil {
		return err
	}
	defer closeStore(st, opts.logger(cmd.ErrOrStderr()))()

	ctx := commandContext(cmd)
	run, err := st.ReadRun(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run", err)
	}
	records, err := st.ReadRunRecords(ctx, runID)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read run records", err)
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Report(RunDetail{Run: run, Records: records}, nil)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Run:          %s\n", run.ID)
	fmt.Fprintf(w, "Objects:      %d\n", run.Objects)
	fmt.Fprintf(w, "Records:      %d\n", run.Records)
	fmt.Fprintf(w, "Orphans:      %d\n", run.Orphans)
	fmt.Fprintf(w, "History hash: %s\n", run.HistoryHash)
	fmt.Fprintf(w, "Tool version: %s\n", run.ToolVersion)
	fmt.Fprintln(w)

	h := &history.History{Records: records, Columns: run.Columns}
	bw := bufio.NewWriter(w)
	writeOpts := tabular.WriteOptions{OpenEndedLabel: openEndedLabel(opts.OpenEndedLabel)}
	if err := tabular.WriteCSV(bw, h.Table(), writeOpts); err != nil {
		return WrapExitError(ExitCommandError, "failed to write records", err)
	}
	return bw.Flush()
}
