package cli

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/platinummonkey/envfile/pkg/envfile"
	"github.com/platinummonkey/envfile/pkg/observability"
)

// Command represents a CLI command
type Command struct {
	Name        string
	Description string
	Usage       string
	Run         func(args []string) error
	Subcommands map[string]*Command
	Flags       *flag.FlagSet
}

// app carries what every subcommand writes to.
type app struct {
	stdout io.Writer
	stderr io.Writer
	logger *logrus.Logger
}

// NewRootCommand creates the root command writing to the process streams
func NewRootCommand() *Command {
	return NewRootCommandWithOutput(os.Stdout, os.Stderr)
}

// NewRootCommandWithOutput creates the root command writing to stdout and
// stderr. Logs go to stderr at ENVFILE_LOG_LEVEL, warn by default.
func NewRootCommandWithOutput(stdout, stderr io.Writer) *Command {
	level := os.Getenv("ENVFILE_LOG_LEVEL")
	if level == "" {
		level = "warn"
	}

	a := &app{
		stdout: stdout,
		stderr: stderr,
		logger: observability.NewLogger(level, observability.FormatText, stderr),
	}

	root := &Command{
		Name:        "envfile",
		Description: "envfile - load KEY=VALUE env files",
		Subcommands: make(map[string]*Command),
		Flags:       flag.NewFlagSet("envfile", flag.ContinueOnError),
	}
	root.Flags.SetOutput(stdout)

	for _, cmd := range []*Command{
		a.newGetCommand(),
		a.newDumpCommand(),
		a.newCheckCommand(),
		a.newExecCommand(),
		a.newPublishCommand(),
	} {
		root.Subcommands[cmd.Name] = cmd
	}

	return root
}

// Execute runs the command with the process arguments
func (c *Command) Execute() error {
	return c.ExecuteArgs(os.Args[1:])
}

// ExecuteArgs runs the command with args, excluding the program name
func (c *Command) ExecuteArgs(args []string) error {
	if len(args) == 0 {
		return c.usage()
	}

	switch strings.ToLower(args[0]) {
	case "-h", "--help", "help":
		return c.usage()
	}

	if subcmd, ok := c.Subcommands[args[0]]; ok {
		err := subcmd.Run(args[1:])
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	return usageErrorf("unknown command: %s", args[0])
}

// usage prints the command usage
func (c *Command) usage() error {
	out := c.Flags.Output()
	fmt.Fprintf(out, "Usage: %s <command> [args]\n\n", c.Name)
	fmt.Fprintf(out, "Commands:\n")

	names := make([]string, 0, len(c.Subcommands))
	for name := range c.Subcommands {
		names = append(names, name)
	}
	sort.Strings(names)

	for _, name := range names {
		fmt.Fprintf(out, "  %-10s %s\n", name, c.Subcommands[name].Description)
	}
	return nil
}

// newFlagSet returns a flag set that reports errors instead of exiting and
// prints the command's usage line with its defaults.
func (a *app) newFlagSet(cmd *Command) *flag.FlagSet {
	flags := flag.NewFlagSet(cmd.Name, flag.ContinueOnError)
	flags.SetOutput(a.stderr)
	flags.Usage = func() {
		fmt.Fprintf(a.stderr, "Usage: envfile %s\n\n%s\n", cmd.Usage, cmd.Description)
		flags.PrintDefaults()
	}
	cmd.Flags = flags
	return flags
}

// parse parses args, mapping flag errors to usage errors.
func parse(flags *flag.FlagSet, args []string) error {
	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return err
		}
		return &ExitError{Code: ExitUsage, Err: err}
	}
	return nil
}

// load loads paths in order into a fresh store.
func (a *app) load(paths []string, opts ...envfile.StoreOption) (*envfile.Store, error) {
	store := envfile.NewStore(opts...)
	loader := envfile.NewLoader(store, envfile.WithLogger(a.logger))
	if err := loader.LoadFiles(paths...); err != nil {
		return nil, err
	}
	return store, nil
}
