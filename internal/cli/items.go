package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todo/internal/config"
	"github.com/roach88/todo/internal/store"
)

// action is one of the four store operations reachable from the CLI.
type action string

const (
	actionList  action = "list"
	actionAdd   action = "add"
	actionCheck action = "check"
	actionDel   action = "del"
)

// NewListCommand creates the list command.
func NewListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "Print the current list",
		Args:          noArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, rootOpts, actionList, nil)
		},
	}
}

// NewAddCommand creates the add command.
func NewAddCommand(rootOpts *RootOptions) *cobra.Command {
	return newItemCommand(rootOpts, actionAdd, "Add to list",
		`Add an item to the list, unchecked.

The words given are joined with single spaces to form the item. Adding an
item that is already on the list unchecks it.

Example:
  todo add buy milk`)
}

// NewCheckCommand creates the check command.
func NewCheckCommand(rootOpts *RootOptions) *cobra.Command {
	return newItemCommand(rootOpts, actionCheck, "Check off an item from the list",
		`Check off an item from the list.

Checking an item that is not on the list adds it already checked.

Example:
  todo check buy milk`)
}

// NewDelCommand creates the del command.
func NewDelCommand(rootOpts *RootOptions) *cobra.Command {
	return newItemCommand(rootOpts, actionDel, "Delete an item",
		`Delete an item from the list.

Deleting an item that is not on the list does nothing.

Example:
  todo del buy milk`)
}

func newItemCommand(rootOpts *RootOptions, act action, short, long string) *cobra.Command {
	return &cobra.Command{
		Use:           string(act) + " <item>...",
		Short:         short,
		Long:          long,
		Args:          requireItem,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, rootOpts, act, args)
		},
	}
}

// requireItem accepts one or more words forming an item label.
func requireItem(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s requires an item", cmd.Name()))
	}
	return nil
}

func noArgs(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("%s takes no arguments, got %q", cmd.Name(), args))
	}
	return nil
}

// runAction opens the store, applies act and prints the resulting list.
func runAction(cmd *cobra.Command, opts *RootOptions, act action, words []string) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	cfg, err := opts.resolveConfig()
	if err != nil {
		return WrapExitError(ExitCommandError, "invalid configuration", err)
	}

	formatter := &OutputFormatter{
		Format:    cfg.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	ctx := cmd.Context()
	st, err := openStore(ctx, cfg, logger, formatter)
	if err != nil {
		if store.IsCorrupt(err) {
			return WrapExitError(ExitFailure, "cannot read todo list", err)
		}
		return WrapExitError(ExitCommandError, "cannot open todo list", err)
	}
	defer func() {
		if closeErr := st.Close(); closeErr != nil {
			logger.Error("error closing store", "error", closeErr)
		}
	}()

	label := strings.Join(words, " ")
	switch act {
	case actionAdd:
		err = st.Add(ctx, label)
	case actionCheck:
		err = st.Check(ctx, label)
	case actionDel:
		err = st.Delete(ctx, label)
	}
	if err != nil {
		return WrapExitError(ExitFailure, fmt.Sprintf("%s %q failed", act, label), err)
	}

	return formatter.PrintList(st.Render(), newListing(st.Items()))
}

// resolveConfig layers command-line flags over the loaded config.
func (o *RootOptions) resolveConfig() (*config.Config, error) {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return nil, err
	}

	if o.DataDir != "" {
		cfg.DataDir = o.DataDir
	}
	if o.Backend != "" {
		cfg.Backend = o.Backend
	}
	if o.Format != "" {
		cfg.Format = o.Format
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !isValidFormat(cfg.Format) {
		return nil, fmt.Errorf("invalid format %q: must be one of %v", cfg.Format, ValidFormats)
	}
	return cfg, nil
}

// openStore opens the configured backend and loads the list from it.
func openStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, out *OutputFormatter) (*store.Store, error) {
	path, err := cfg.StorePath()
	if err != nil {
		return nil, err
	}
	out.VerboseLog("using %s store at %s", cfg.Backend, path)

	var backend store.Backend
	switch cfg.Backend {
	case config.BackendSQLite:
		b, err := store.OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		backend = b
	default:
		b, err := store.OpenFile(path)
		if err != nil {
			return nil, err
		}
		backend = b
	}

	st, err := store.Open(ctx, backend, store.WithLogger(logger))
	if err != nil {
		backend.Close()
		return nil, err
	}
	return st, nil
}

// newLogger returns a text logger on w, at debug level when verbose.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}
