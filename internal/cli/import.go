package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ImportOptions holds flags for the import command.
type ImportOptions struct {
	*RootOptions
	Source SourceOptions
}

// ImportResult summarises an import.
type ImportResult struct {
	Database           string `json:"database"`
	ObjectsRead        int    `json:"objects_read"`
	ObjectsImported    int    `json:"objects_imported"`
	AttributesRead     int    `json:"attributes_read"`
	AttributesImported int    `json:"attributes_imported"`
}

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ImportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import objects and attributes into a SQLite database",
		Long: `Import objects and attributes from CSV files or PostgreSQL into a SQLite
database. The database is created if it doesn't exist.

Rows whose id is already stored are skipped, so importing the same input
twice is harmless and the first occurrence of an id wins.

Example:
  snaphist import --objects processed_obj.csv --attributes processed_attr.csv --db ./history.db
  snaphist import --pg postgres://localhost/plant --db ./history.db`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(opts, cmd)
		},
	}

	addSourceFlags(cmd, &opts.Source)

	return cmd
}

func runImport(opts *ImportOptions, cmd *cobra.Command) error {
	cfg, err := opts.loadConfig()
	if err != nil {
		return err
	}
	opts.Source.applyConfig(cmd, cfg)

	target := opts.Source.Database
	if target == "" {
		return NewExitError(ExitCommandError, "--db is required")
	}

	// The database is the target; input must come from elsewhere.
	input := opts.Source
	input.Database = ""
	if input.Postgres == "" && input.Objects == "" && input.Attributes == "" {
		return NewExitError(ExitCommandError, "no input: set --objects and --attributes, or --pg")
	}

	logger := opts.logger(cmd.ErrOrStderr())
	ctx := commandContext(cmd)

	src, closeSrc, err := openSource(ctx, &input, cfg.Tables(), logger)
	if err != nil {
		return err
	}
	defer closeSrc()

	objects, attrs, err := loadInput(ctx, src)
	if err != nil {
		return err
	}

	st, err := openStore(target)
	if err != nil {
		return err
	}
	defer closeStore(st, logger)()

	objImported, err := st.ImportObjects(ctx, objects)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to import objects", err)
	}
	attrImported, err := st.ImportAttributes(ctx, attrs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to import attributes", err)
	}

	if skipped := len(objects) - objImported; skipped > 0 {
		logger.Warn("skipped objects with an already stored id", "count", skipped)
	}
	if skipped := len(attrs) - attrImported; skipped > 0 {
		logger.Warn("skipped attributes with an already stored id", "count", skipped)
	}

	result := ImportResult{
		Database:           target,
		ObjectsRead:        len(objects),
		ObjectsImported:    objImported,
		AttributesRead:     len(attrs),
		AttributesImported: attrImported,
	}

	if opts.Format == "json" {
		return opts.formatter(cmd).Report(result, nil)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Imported %d of %d objects and %d of %d attributes into %s\n",
		result.ObjectsImported, result.ObjectsRead,
		result.AttributesImported, result.AttributesRead,
		result.Database)
	return nil
}
