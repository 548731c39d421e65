package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/roach88/todo/internal/config"
)

// Version is the program version reported by --version.
const Version = "1.0.0"

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose    bool
	Format     string // "text" | "json" | "yaml"; empty means the configured default
	ConfigPath string
	DataDir    string
	Backend    string

	// Short action flags on the root command (-l, -a, -c, -r).
	list, add, check, del bool
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json", "yaml"}

// NewRootCommand creates the root command for the todo CLI.
func NewRootCommand() *cobra.Command {
	return newRootCommand(&RootOptions{})
}

func newRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "todo",
		Short:   "cli todo list",
		Long:    "A command-line todo list kept in a single file in your data directory.",
		Version: Version,
		Example: `  todo add buy milk
  todo -c buy milk
  todo del placeholder
  todo -l`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Validate format flag
			if opts.Format != "" && !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError,
					fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runShortFlag(opts, cmd, args)
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "", "output format (text|json|yaml)")
	cmd.PersistentFlags().StringVar(&opts.ConfigPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.DataDir, "data-dir", "", "directory holding the todo list")
	cmd.PersistentFlags().StringVar(&opts.Backend, "backend", "", "storage backend (file|sqlite)")

	// Short flag forms of the subcommands
	cmd.Flags().BoolVarP(&opts.list, "list", "l", false, "print the current list")
	cmd.Flags().BoolVarP(&opts.add, "add", "a", false, "add an item to the list")
	cmd.Flags().BoolVarP(&opts.check, "check", "c", false, "check off an item from the list")
	cmd.Flags().BoolVarP(&opts.del, "del", "r", false, "delete an item")

	cmd.SetFlagErrorFunc(func(cmd *cobra.Command, err error) error {
		return WrapExitError(ExitCommandError, "invalid usage", err)
	})

	// Add subcommands
	cmd.AddCommand(NewListCommand(opts))
	cmd.AddCommand(NewAddCommand(opts))
	cmd.AddCommand(NewCheckCommand(opts))
	cmd.AddCommand(NewDelCommand(opts))

	return cmd
}

// runShortFlag dispatches `todo -l`, `todo -a words...` and friends.
// With no action flag it prints usage and fails.
func runShortFlag(opts *RootOptions, cmd *cobra.Command, args []string) error {
	set := 0
	for _, on := range []bool{opts.list, opts.add, opts.check, opts.del} {
		if on {
			set++
		}
	}
	if set > 1 {
		return NewExitError(ExitCommandError, "only one of -l, -a, -c, -r may be given")
	}

	switch {
	case opts.list:
		if len(args) > 0 {
			return NewExitError(ExitCommandError, fmt.Sprintf("list takes no arguments, got %q", args))
		}
		return runAction(cmd, opts, actionList, nil)
	case opts.add:
		return runItemFlag(cmd, opts, actionAdd, args)
	case opts.check:
		return runItemFlag(cmd, opts, actionCheck, args)
	case opts.del:
		return runItemFlag(cmd, opts, actionDel, args)
	}

	if len(args) > 0 {
		return NewExitError(ExitCommandError, fmt.Sprintf("unknown command %q for %q", args[0], cmd.CommandPath()))
	}
	fmt.Fprint(cmd.ErrOrStderr(), cmd.UsageString())
	return NewExitError(ExitCommandError, "a command is required")
}

func runItemFlag(cmd *cobra.Command, opts *RootOptions, act action, args []string) error {
	if err := requireItem(cmd, args); err != nil {
		return err
	}
	return runAction(cmd, opts, act, args)
}

// actionFlags maps the short action flags to the subcommand they stand for.
var actionFlags = map[string]string{
	"-l": "list", "--list": "list",
	"-a": "add", "--add": "add",
	"-c": "check", "--check": "check",
	"-r": "del", "--del": "del",
}

// valueFlags are the root flags that consume the following argument.
var valueFlags = map[string]bool{
	"--format":   true,
	"--config":   true,
	"--data-dir": true,
	"--backend":  true,
}

// expandActionFlag rewrites a leading action flag into its subcommand, so
// that `todo -a list` adds the item "list" instead of running list.
// Only global flags may precede the action flag. With more than one action
// flag the args are returned unchanged and the root reports the conflict.
func expandActionFlag(args []string) []string {
	pos := -1
	for i := 0; i < len(args); i++ {
		a := args[i]
		if _, ok := actionFlags[a]; ok {
			if pos >= 0 {
				return args
			}
			pos = i
			continue
		}
		if pos >= 0 || a == "--" || !strings.HasPrefix(a, "-") {
			break
		}
		if valueFlags[a] {
			i++
		}
	}
	if pos < 0 {
		return args
	}

	out := make([]string, len(args))
	copy(out, args)
	out[pos] = actionFlags[args[pos]]
	return out
}

// Execute runs the CLI with args and returns the process exit code.
// Errors are reported on stderr in the configured output format.
func Execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	opts := &RootOptions{}
	cmd := newRootCommand(opts)
	cmd.SetArgs(expandActionFlag(args))
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)

	err := cmd.ExecuteContext(ctx)
	if err == nil {
		return ExitSuccess
	}

	f := &OutputFormatter{Format: opts.errorFormat(), Writer: stderr, Verbose: opts.Verbose}
	_ = f.Error(errorCode(err), err.Error(), nil)
	return GetExitCode(err)
}

// errorFormat picks the format for reporting a failed run: the --format
// flag, else the environment or config file, else text.
func (o *RootOptions) errorFormat() string {
	if o.Format != "" {
		if isValidFormat(o.Format) {
			return o.Format
		}
		return config.DefaultFormat
	}
	cfg, err := config.Load(o.ConfigPath)
	if err != nil || !isValidFormat(cfg.Format) {
		return config.DefaultFormat
	}
	return cfg.Format
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	for _, f := range ValidFormats {
		if f == format {
			return true
		}
	}
	return false
}
