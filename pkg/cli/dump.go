package cli

import (
	"github.com/platinummonkey/envfile/pkg/export"
)

func (a *app) newDumpCommand() *Command {
	cmd := &Command{
		Name:        "dump",
		Description: "Print the loaded entries as env, json or yaml",
		Usage:       "dump [-format env|json|yaml] [-o FILE] FILE...",
	}
	flags := a.newFlagSet(cmd)
	format := flags.String("format", string(export.FormatEnv), "Output format: env, json or yaml")
	output := flags.String("o", "", "Write to FILE instead of stdout")

	cmd.Run = func(args []string) error {
		if err := parse(flags, args); err != nil {
			return err
		}
		if flags.NArg() == 0 {
			flags.Usage()
			return usageErrorf("dump needs at least one file")
		}

		parsed, err := export.ParseFormat(*format)
		if err != nil {
			return &ExitError{Code: ExitUsage, Err: err}
		}

		store, err := a.load(flags.Args())
		if err != nil {
			return err
		}

		if *output != "" {
			return export.WriteFile(*output, store.Snapshot(), parsed)
		}
		return export.Write(a.stdout, store.Snapshot(), parsed)
	}

	return cmd
}
