package cli

import (
	"fmt"
	"maps"
	"slices"

	"github.com/spf13/cobra"

	"github.com/roach88/snaphist/internal/history"
)

// CheckOptions holds flags for the check command.
type CheckOptions struct {
	*RootOptions
	Source SourceOptions
	Strict bool // exit 1 when any finding is reported
}

// CheckResult holds the data-quality report.
type CheckResult struct {
	Objects    int                         `json:"objects"`
	Attributes int                         `json:"attributes"`
	Findings   []history.Finding           `json:"findings"`
	Counts     map[history.FindingKind]int `json:"counts"`
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &CheckOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "check",
		Short: "Report data-quality findings in the input",
		Long: `Report input rows that reconstruction handles silently:

  DUPLICATE_OBJECT           object id seen more than once (first wins)
  INVERTED_OBJECT_WINDOW     object terminated before it was created
  ORPHAN_ATTRIBUTE           attribute of an unknown object (dropped)
  INVERTED_ATTRIBUTE_WINDOW  attribute terminated before it was created
  OVERLAPPING_VALUES         two values of one attribute valid at once
  OUTSIDE_LIFETIME           attribute created outside its object's lifetime

Each finding is logged to stderr; stdout carries the counts per kind.

Exit codes:
  0 - No findings, or findings without --strict
  1 - Findings with --strict
  2 - Command error (unreadable input, etc.)

Example:
  snaphist check --objects processed_obj.csv --attributes processed_attr.csv
  snaphist check --db ./history.db --strict --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(opts, cmd)
		},
	}

	addSourceFlags(cmd, &opts.Source)
	cmd.Flags().BoolVar(&opts.Strict, "strict", false, "exit 1 when any finding is reported")

	return cmd
}

func runCheck(opts *CheckOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	opts.Source.applyConfig(cmd, cfg)

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

	findings := history.Inspect(objects, attrs)
	counts := make(map[history.FindingKind]int)
	for _, f := range findings {
		counts[f.Kind]++
		logger.Warn(f.Message,
			"kind", f.Kind,
			"object_id", f.ObjectID,
			"attribute_id", f.AttributeID,
			"name", f.Name,
		)
	}

	result := CheckResult{
		Objects:    len(objects),
		Attributes: len(attrs),
		Findings:   findings,
		Counts:     counts,
	}
	if result.Findings == nil {
		result.Findings = []history.Finding{}
	}

	failed := opts.Strict && len(findings) > 0
	message := fmt.Sprintf("%d finding(s)", len(findings))

	if opts.Format == "json" {
		var failure *CLIError
		if failed {
			failure = &CLIError{Code: "E_FINDINGS", Message: message}
		}
		if err := opts.formatter(cmd).Report(result, failure); err != nil {
			return err
		}
	} else {
		w := cmd.OutOrStdout()
		fmt.Fprintf(w, "Checked %d objects and %d attributes: %s\n", result.Objects, result.Attributes, message)
		kinds := slices.Sorted(maps.Keys(counts))
		for _, kind := range kinds {
			fmt.Fprintf(w, "  %-26s %d\n", kind, counts[kind])
		}
	}

	if failed {
		return NewExitError(ExitFailure, message)
	}
	return nil
}
