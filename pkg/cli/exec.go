package cli

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

func (a *app) newExecCommand() *Command {
	cmd := &Command{
		Name:        "exec",
		Description: "Run a command with the loaded entries added to its environment",
		Usage:       "exec [-clean] FILE... -- COMMAND [ARGS...]",
	}
	flags := a.newFlagSet(cmd)
	clean := flags.Bool("clean", false, "Start from an empty environment instead of the current one")

	cmd.Run = func(args []string) error {
		split := -1
		for i, arg := range args {
			if arg == "--" {
				split = i
				break
			}
		}
		if split < 0 || split == len(args)-1 {
			flags.Usage()
			return usageErrorf("exec needs a command after --")
		}

		if err := parse(flags, args[:split]); err != nil {
			return err
		}
		if flags.NArg() == 0 {
			flags.Usage()
			return usageErrorf("exec needs at least one file")
		}
		command := args[split+1:]

		store, err := a.load(flags.Args())
		if err != nil {
			return err
		}

		base := os.Environ()
		if *clean {
			base = nil
		}

		child := exec.Command(command[0], command[1:]...)
		child.Env = mergeEnv(base, store.Environ())
		child.Stdin = os.Stdin
		child.Stdout = a.stdout
		child.Stderr = a.stderr

		a.logger.WithField("command", command[0]).Debug("Running command")
		if err := child.Run(); err != nil {
			var exitErr *exec.ExitError
			if errors.As(err, &exitErr) {
				return &ExitError{Code: childExitCode(exitErr), Err: fmt.Errorf("%s: %w", command[0], err)}
			}
			return fmt.Errorf("run %s: %w", command[0], err)
		}
		return nil
	}

	return cmd
}

// childExitCode reports a child killed by a signal as 128+signal, the way
// shells do.
func childExitCode(exitErr *exec.ExitError) int {
	if status, ok := exitErr.Sys().(syscall.WaitStatus); ok && status.Signaled() {
		return 128 + int(status.Signal())
	}
	return exitErr.ExitCode()
}

// mergeEnv overlays KEY=VALUE pairs onto base. Overlay values replace base
// values in place; new keys are appended in overlay order.
func mergeEnv(base, overlay []string) []string {
	index := make(map[string]int, len(base))
	merged := make([]string, 0, len(base)+len(overlay))

	for _, kv := range base {
		key, _, _ := strings.Cut(kv, "=")
		if i, ok := index[key]; ok {
			merged[i] = kv
			continue
		}
		index[key] = len(merged)
		merged = append(merged, kv)
	}

	for _, kv := range overlay {
		key, _, _ := strings.Cut(kv, "=")
		if i, ok := index[key]; ok {
			merged[i] = kv
			continue
		}
		index[key] = len(merged)
		merged = append(merged, kv)
	}

	return merged
}
