package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/store"
	"github.com/roach88/snaphist/internal/tabular"
)

// Output encodings for the build command.
const (
	OutputCSV   = "csv"
	OutputJSONL = "jsonl"
)

// BuildOptions holds flags for the build command.
type BuildOptions struct {
	*RootOptions
	Source      SourceOptions
	Reconstruct ReconstructOptions

	Output         string
	OutputFormat   string
	OpenEndedLabel string
	Save           bool

	// RunIDGenerator allows overriding run id generation (for testing).
	// If nil, defaults to store.UUIDv7Generator.
	RunIDGenerator store.RunIDGenerator
}

// BuildResult summarises a build.
type BuildResult struct {
	Objects          int      `json:"objects"`
	Records          int      `json:"records"`
	Columns          []string `json:"columns"`
	Orphans          int      `json:"orphans"`
	DuplicateObjects int      `json:"duplicate_objects"`
	HistoryHash      string   `json:"history_hash"`
	Output           string   `json:"output"`
	RunID            string   `json:"run_id,omitempty"`
}

// NewBuildCommand creates the build command.
func NewBuildCommand(rootOpts *RootOptions) *cobra.Command {
	return newBuildCommand(&BuildOptions{RootOptions: rootOpts})
}

func newBuildCommand(opts *BuildOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Reconstruct the snapshot history",
		Long: `Reconstruct the snapshot history of every object and write it out.

Input comes from CSV files, a SQLite database imported with 'snaphist import',
or PostgreSQL. The output is one row per snapshot: the object's fields, the
snapshot interval, and one column per attribute name (blank when absent).

Example:
  snaphist build --objects processed_obj.csv --attributes processed_attr.csv
  snaphist build --db ./history.db --output - --output-format jsonl
  snaphist build --pg postgres://localhost/plant --db ./history.db --save`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(opts, cmd)
		},
	}

	addSourceFlags(cmd, &opts.Source)
	addReconstructFlags(cmd, &opts.Reconstruct)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", `output file, "-" for stdout (env SNAPHIST_OUTPUT, default history_summary.csv)`)
	cmd.Flags().StringVar(&opts.OutputFormat, "output-format", OutputCSV, "output encoding (csv|jsonl)")
	cmd.Flags().StringVar(&opts.OpenEndedLabel, "open-ended-label", "", "text written for open-ended instants (\"date\" writes 9999-12-31 23:59:59; env SNAPHIST_OPEN_ENDED_LABEL, default infinity)")
	cmd.Flags().BoolVar(&opts.Save, "save", false, "store the run in --db")

	return cmd
}

func runBuild(opts *BuildOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	opts.Source.applyConfig(cmd, cfg)
	opts.Reconstruct.applyConfig(cmd, cfg)
	setDefault(cmd, "output", &opts.Output, cfg.OutputPath)
	setDefault(cmd, "open-ended-label", &opts.OpenEndedLabel, cfg.OpenEndedLabel)
	if opts.Output == "" {
		opts.Output = "history_summary.csv"
	}

	if opts.OutputFormat != OutputCSV && opts.OutputFormat != OutputJSONL {
		return NewExitError(ExitCommandError, fmt.Sprintf("invalid output format %q: must be csv or jsonl", opts.OutputFormat))
	}
	if opts.Save && opts.Source.Database == "" {
		return NewExitError(ExitCommandError, "--save requires --db")
	}

	logger := opts.logger(cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	src, closeSrc, err := openSource(ctx, &opts.Source, cfg.Tables(), logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	objects, attrs, err := loadInput(ctx, src)
	if err != nil {
		return err
	}
	logger.Debug("input loaded", "objects", len(objects), "attributes", len(attrs))

	h := history.Reconstruct(objects, attrs, opts.Reconstruct.historyOptions())
	if h.Orphans > 0 {
		logger.Warn("dropped attributes of unknown objects", "count", h.Orphans)
	}
	if h.DuplicateObjects > 0 {
		logger.Warn("ignored repeated object ids", "count", h.DuplicateObjects)
	}

	hash, err := h.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to hash history", err)
	}

	writeOpts := tabular.WriteOptions{OpenEndedLabel: openEndedLabel(opts.OpenEndedLabel)}
	if err := writeHistory(cmd.OutOrStdout(), opts.Output, opts.OutputFormat, h, writeOpts); err != nil {
		return WrapExitError(ExitCommandError, "failed to write output", err)
	}
	logger.Info("history written", "output", opts.Output, "records", len(h.Records), "history_hash", hash)

	result := BuildResult{
		Objects:          h.Objects,
		Records:          len(h.Records),
		Columns:          h.Columns,
		Orphans:          h.Orphans,
		DuplicateObjects: h.DuplicateObjects,
		HistoryHash:      hash,
		Output:           opts.Output,
	}

	if opts.Save {
		runID, err := saveRun(ctx, opts, h, logger)
		if err != nil {
			return err
		}
		result.RunID = runID
	}

	// Writing history to stdout leaves no room for a summary there.
	if opts.Output == "-" {
		return nil
	}
	return outputBuild(opts, cmd, result)
}

// writeHistory writes h to path, or to stdout when path is "-".
func writeHistory(stdout io.Writer, path, format string, h *history.History, opts tabular.WriteOptions) (err error) {
	var w io.Writer = stdout
	if path != "-" {
		f, createErr := os.Create(path)
		if createErr != nil {
			return createErr
		}
		defer func() {
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
		}()
		w = f
	}

	bw := bufio.NewWriter(w)
	switch format {
	case OutputJSONL:
		err = tabular.WriteJSONL(bw, h, opts)
	default:
		err = tabular.WriteCSV(bw, h.Table(), opts)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

func saveRun(ctx context.Context, opts *BuildOptions, h *history.History, logger *slog.Logger) (string, error) {
	st, err := openStore(opts.Source.Database)
	if err != nil {
		return "", err
	}
	defer closeStore(st, logger)()

	gen := opts.RunIDGenerator
	if gen == nil {
		gen = store.UUIDv7Generator{}
	}

	run, err := st.SaveRun(ctx, gen.Generate(), h)
	if err != nil {
		return "", WrapExitError(ExitCommandError, "failed to save run", err)
	}
	logger.Info("run saved", "run_id", run.ID, "db", opts.Source.Database)
	return run.ID, nil
}

func outputBuild(opts *BuildOptions, cmd *cobra.Command, result BuildResult) error {
	if opts.Format == "json" {
		return opts.formatter(cmd).Report(result, nil)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Objects:      %d\n", result.Objects)
	fmt.Fprintf(w, "Records:      %d\n", result.Records)
	fmt.Fprintf(w, "Columns:      %d\n", len(result.Columns))
	if result.Orphans > 0 {
		fmt.Fprintf(w, "Orphans:      %d\n", result.Orphans)
	}
	if result.DuplicateObjects > 0 {
		fmt.Fprintf(w, "Duplicates:   %d\n", result.DuplicateObjects)
	}
	fmt.Fprintf(w, "History hash: %s\n", result.HistoryHash)
	fmt.Fprintf(w, "Output:       %s\n", result.Output)
	if result.RunID != "" {
		fmt.Fprintf(w, "Run:          %s\n", result.RunID)
	}
	return nil
}

// commandContext returns the command's context, or Background when unset.
func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
