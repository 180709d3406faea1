package cli

import (
	"context"
	"fmt"
	"log/slog"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
)

// VerifyOptions holds flags for the verify command.
type VerifyOptions struct {
	*RootOptions
	Source      SourceOptions
	Reconstruct ReconstructOptions
	RunID       string // stored run to compare against
}

// VerifyResult holds the outcome of a verification.
type VerifyResult struct {
	Records       int                 `json:"records"`
	HistoryHash   string              `json:"history_hash"`
	Deterministic bool                `json:"deterministic"`
	Violations    []history.Violation `json:"violations"`
	RunID         string              `json:"run_id,omitempty"`
	RunMatches    *bool               `json:"run_matches,omitempty"`
}

// Passed reports whether every check held.
func (r VerifyResult) Passed() bool {
	return r.Deterministic && len(r.Violations) == 0 && (r.RunMatches == nil || *r.RunMatches)
}

// NewVerifyCommand creates the verify command.
func NewVerifyCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &VerifyOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that reconstruction is deterministic and complete",
		Long: `Reconstruct the input twice, sequentially and in parallel, and compare the
history hashes. Then check that every object's records tile its lifetime
with one record per change point.

With --run, the stored run's records are also compared against the fresh
reconstruction (requires --db).

Exit codes:
  0 - All checks passed
  1 - A check failed
  2 - Command error (unreadable input, unknown run, etc.)

Example:
  snaphist verify --objects processed_obj.csv --attributes processed_attr.csv
  snaphist verify --db ./history.db --run 0190c5a8-...`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runVerify(opts, cmd)
		},
	}

	addSourceFlags(cmd, &opts.Source)
	addReconstructFlags(cmd, &opts.Reconstruct)
	cmd.Flags().StringVar(&opts.RunID, "run", "", "stored run id to compare against (requires --db)")

	return cmd
}

func runVerify(opts *VerifyOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	opts.Source.applyConfig(cmd, cfg)
	opts.Reconstruct.applyConfig(cmd, cfg)

	if opts.RunID != "" && opts.Source.Database == "" {
		return NewExitError(ExitCommandError, "--run requires --db")
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

	hopts := opts.Reconstruct.historyOptions()
	first := history.Reconstruct(objects, attrs, hopts)
	second := history.Reconstruct(objects, attrs, alternateWorkers(hopts))

	firstHash, err := first.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to hash history", err)
	}
	secondHash, err := second.Hash()
	if err != nil {
		return WrapExitError(ExitFailure, "failed to hash history", err)
	}

	result := VerifyResult{
		Records:       len(first.Records),
		HistoryHash:   firstHash,
		Deterministic: firstHash == secondHash,
		Violations:    history.Verify(first, objects, attrs, hopts),
	}
	if result.Violations == nil {
		result.Violations = []history.Violation{}
	}
	if !result.Deterministic {
		logger.Error("reconstruction is not deterministic", "first", firstHash, "second", secondHash)
	}
	for _, v := range result.Violations {
		logger.Warn(v.Message, "kind", v.Kind, "object_id", v.ObjectID)
	}

	if opts.RunID != "" {
		matches, err := compareStoredRun(ctx, opts, logger, first.Columns, firstHash)
		if err != nil {
			return err
		}
		result.RunID = opts.RunID
		result.RunMatches = &matches
	}

	return outputVerify(opts, cmd, result)
}

// alternateWorkers flips between sequential and parallel reconstruction.
func alternateWorkers(opts history.Options) history.Options {
	if opts.Workers > 1 {
		opts.Workers = 1
	} else {
		opts.Workers = 4
	}
	return opts
}

// compareStoredRun checks that the stored records of a run hash to the
// fresh history hash.
// compareStoredRun reports whether the stored run has the given column set,
// and whether its records hash to the same history hash.
func compareStoredRun(ctx context.Context, opts *VerifyOptions, logger *slog.Logger, columns []string, hash string) (bool, error) {
	st, err := openExistingStore(opts.Source.Database)
	if err != nil {
		return false, err
	}
	defer st.Close()

	run, err := st.ReadRun(ctx, opts.RunID)
	if err != nil {
		return false, WrapExitError(ExitCommandError, "failed to read run", err)
	}
	records, err := st.ReadRunRecords(ctx, opts.RunID)
	if err != nil {
		return false, WrapExitError(ExitCommandError, "failed to read run records", err)
	}

	stored, err := ir.HistoryHash(run.Columns, records)
	if err != nil {
		return false, WrapExitError(ExitFailure, "failed to hash stored run", err)
	}
	sameColumns := slices.Equal(run.Columns, columns)
	if !sameColumns {
		logger.Warn("stored run columns differ", "run", run.ID, "stored", run.Columns, "input", columns)
	}
	if stored != hash || run.HistoryHash != hash {
		logger.Warn("stored run records differ", "run", run.ID, "stored", stored, "input", hash)
	}
	return sameColumns && stored == hash && run.HistoryHash == hash, nil
}

func outputVerify(opts *VerifyOptions, cmd *cobra.Command, result VerifyResult) error {
	var message string
	switch {
	case !result.Deterministic:
		message = "reconstruction is not deterministic"
	case len(result.Violations) > 0:
		message = fmt.Sprintf("%d violation(s)", len(result.Violations))
	case result.RunMatches != nil && !*result.RunMatches:
		message = fmt.Sprintf("stored run %s differs from the input", result.RunID)
	}

	if opts.Format == "json" {
		var failure *CLIError
		if !result.Passed() {
			failure = &CLIError{Code: "E_VERIFY_FAILED", Message: message}
		}
		if err := opts.formatter(cmd).Report(result, failure); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		for _, v := range result.Violations {
			fmt.Fprintf(w, "%s\n", v)
		}
		fmt.Fprintf(w, "Records:      %d\n", result.Records)
		fmt.Fprintf(w, "History hash: %s\n", result.HistoryHash)
		if result.RunMatches != nil {
			fmt.Fprintf(w, "Run %s: match=%t\n", result.RunID, *result.RunMatches)
		}
		if result.Passed() {
			fmt.Fprintln(w, "✓ Verified")
		} else {
			fmt.Fprintf(w, "✗ %s\n", message)
		}
	}

	if !result.Passed() {
		return NewExitError(ExitFailure, message)
	}
	return nil
}
