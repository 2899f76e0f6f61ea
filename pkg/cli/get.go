package cli

import (
	"flag"
	"fmt"
)

func (a *app) newGetCommand() *Command {
	cmd := &Command{
		Name:        "get",
		Description: "Print the value of KEY after loading FILE...",
		Usage:       "get [-default VALUE] FILE... KEY",
	}
	flags := a.newFlagSet(cmd)
	defaultValue := flags.String("default", "", "Value to print when KEY is not set")

	cmd.Run = func(args []string) error {
		if err := parse(flags, args); err != nil {
			return err
		}

		rest := flags.Args()
		if len(rest) < 2 {
			flags.Usage()
			return usageErrorf("get needs at least one file and a key")
		}
		paths, key := rest[:len(rest)-1], rest[len(rest)-1]

		store, err := a.load(paths)
		if err != nil {
			return err
		}

		value, ok := store.Get(key)
		if !ok {
			if !isFlagSet(cmd, "default") {
				return &ExitError{Code: ExitFailure, Err: fmt.Errorf("key not found: %s", key)}
			}
			value = *defaultValue
		}

		fmt.Fprintln(a.stdout, value)
		return nil
	}

	return cmd
}

func isFlagSet(cmd *Command, name string) bool {
	set := false
	cmd.Flags.Visit(func(f *flag.Flag) {
		if f.Name == name {
			set = true
		}
	})
	return set
}
