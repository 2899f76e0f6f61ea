package cli

import (
	"fmt"

	"github.com/platinummonkey/envfile/pkg/envfile"
)

func (a *app) newCheckCommand() *Command {
	cmd := &Command{
		Name:        "check",
		Description: "Report lines a load would skip or split",
		Usage:       "check [-quiet] FILE...",
	}
	flags := a.newFlagSet(cmd)
	quiet := flags.Bool("quiet", false, "Only print issues")

	cmd.Run = func(args []string) error {
		if err := parse(flags, args); err != nil {
			return err
		}
		if flags.NArg() == 0 {
			flags.Usage()
			return usageErrorf("check needs at least one file")
		}

		loader := envfile.NewLoader(envfile.NewStore(), envfile.WithLogger(a.logger))

		var total int
		for _, path := range flags.Args() {
			report, err := loader.InspectFile(path)
			if err != nil {
				return err
			}

			for _, issue := range report.Issues {
				fmt.Fprintf(a.stdout, "%s:%d: %s: %q\n", path, issue.Line, issue.Reason, issue.Text)
			}
			if !*quiet {
				fmt.Fprintf(a.stdout, "%s: %d entries, %d keys, %d issues\n",
					path, report.Entries, len(report.Keys), len(report.Issues))
			}
			total += len(report.Issues)
		}

		if total > 0 {
			return &ExitError{Code: ExitFailure, Err: fmt.Errorf("%d issues found", total)}
		}
		return nil
	}

	return cmd
}
