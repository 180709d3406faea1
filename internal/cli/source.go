package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/snaphist/internal/config"
	"github.com/roach88/snaphist/internal/history"
	"github.com/roach88/snaphist/internal/ir"
	"github.com/roach88/snaphist/internal/pgsource"
	"github.com/roach88/snaphist/internal/store"
	"github.com/roach88/snaphist/internal/tabular"
)

// Source supplies reconstruction input. tabular.FileSource, store.Store and
// pgsource.Source implement it.
type Source interface {
	Objects(ctx context.Context) ([]ir.Object, error)
	Attributes(ctx context.Context) ([]ir.Attribute, error)
}

// SourceOptions selects where input is read from.
//
// Precedence: --pg, then CSV files (--objects/--attributes), then --db.
type SourceOptions struct {
	Objects    string
	Attributes string
	Database   string
	Postgres   string
}

// addSourceFlags registers the input flags on cmd.
func addSourceFlags(cmd *cobra.Command, opts *SourceOptions) {
	cmd.Flags().StringVar(&opts.Objects, "objects", "", "objects CSV file (env SNAPHIST_OBJECTS)")
	cmd.Flags().StringVar(&opts.Attributes, "attributes", "", "attributes CSV file (env SNAPHIST_ATTRIBUTES)")
	cmd.Flags().StringVar(&opts.Database, "db", "", "SQLite database (env SNAPHIST_DB)")
	cmd.Flags().StringVar(&opts.Postgres, "pg", "", "PostgreSQL DSN (env SNAPHIST_PG_DSN)")
}

// applyConfig fills flags the user did not set from cfg.
func (o *SourceOptions) applyConfig(cmd *cobra.Command, cfg config.Config) {
	setDefault(cmd, "objects", &o.Objects, cfg.ObjectsPath)
	setDefault(cmd, "attributes", &o.Attributes, cfg.AttributesPath)
	setDefault(cmd, "db", &o.Database, cfg.DBPath)
	setDefault(cmd, "pg", &o.Postgres, cfg.PostgresDSN)
}

// ReconstructOptions are the flags shared by commands that reconstruct.
type ReconstructOptions struct {
	Workers         int
	ClampToLifetime bool
}

func addReconstructFlags(cmd *cobra.Command, opts *ReconstructOptions) {
	cmd.Flags().IntVar(&opts.Workers, "workers", 1, "objects reconstructed in parallel (env SNAPHIST_WORKERS)")
	cmd.Flags().BoolVar(&opts.ClampToLifetime, "clamp-to-lifetime", false,
		"ignore attribute changes outside the object's lifetime (env SNAPHIST_CLAMP_TO_LIFETIME)")
}

func (o *ReconstructOptions) applyConfig(cmd *cobra.Command, cfg config.Config) {
	if !cmd.Flags().Changed("workers") && cfg.Workers > 0 {
		o.Workers = cfg.Workers
	}
	if !cmd.Flags().Changed("clamp-to-lifetime") {
		o.ClampToLifetime = cfg.ClampToLifetime
	}
}

func (o *ReconstructOptions) historyOptions() history.Options {
	return history.Options{Workers: o.Workers, ClampToLifetime: o.ClampToLifetime}
}

// setDefault assigns value to *target unless the flag was given explicitly.
func setDefault(cmd *cobra.Command, flag string, target *string, value string) {
	if cmd.Flags().Changed(flag) || value == "" {
		return
	}
	*target = value
}

// openSource opens the source the options select. The returned close
// function is never nil.
func openSource(ctx context.Context, opts *SourceOptions, tables pgsource.Tables, logger *slog.Logger) (Source, func(), error) {
	switch {
	case opts.Postgres != "":
		logger.Debug("reading from postgres", "objects_table", tables.Objects, "attributes_table", tables.Attributes)
		src, err := pgsource.Open(ctx, opts.Postgres, tables)
		if err != nil {
			return nil, func() {}, WrapExitError(ExitCommandError, "failed to open postgres source", err)
		}
		return src, src.Close, nil

	case opts.Objects != "" || opts.Attributes != "":
		if opts.Objects == "" || opts.Attributes == "" {
			return nil, func() {}, NewExitError(ExitCommandError, "both --objects and --attributes are required for CSV input")
		}
		logger.Debug("reading CSV files", "objects", opts.Objects, "attributes", opts.Attributes)
		return tabular.FileSource{ObjectsPath: opts.Objects, AttributesPath: opts.Attributes}, func() {}, nil

	case opts.Database != "":
		logger.Debug("reading from database", "path", opts.Database)
		st, err := openExistingStore(opts.Database)
		if err != nil {
			return nil, func() {}, err
		}
		return st, closeStore(st, logger), nil
	}

	return nil, func() {}, NewExitError(ExitCommandError, "no input: set --objects and --attributes, --db, or --pg")
}

// loadInput reads every object and attribute from src.
func loadInput(ctx context.Context, src Source) ([]ir.Object, []ir.Attribute, error) {
	objects, err := src.Objects(ctx)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to read objects", err)
	}
	attrs, err := src.Attributes(ctx)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to read attributes", err)
	}
	return objects, attrs, nil
}

// openExistingStore opens a database that must already exist.
func openExistingStore(path string) (*store.Store, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, NewExitError(ExitCommandError, fmt.Sprintf("database not found: %s", path))
	}
	return openStore(path)
}

// openStore opens or creates a database.
func openStore(path string) (*store.Store, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "failed to open database", err)
	}
	return st, nil
}

func closeStore(st *store.Store, logger *slog.Logger) func() {
	return func() {
		if err := st.Close(); err != nil {
			logger.Error("error closing database", "error", err)
		}
	}
}

// plainDateLabel selects the plain date 9999-12-31 23:59:59 for the
// open-ended sentinel instead of a textual label.
const plainDateLabel = "date"

// openEndedLabel returns the configured label, falling back to the default.
// The value "date" maps to the empty label, which tabular renders as the
// sentinel's plain date.
func openEndedLabel(flagValue string) string {
	switch flagValue {
	case "":
		return ir.OpenEndedLabel
	case plainDateLabel:
		return ""
	}
	return flagValue
}
