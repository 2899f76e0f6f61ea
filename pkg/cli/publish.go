package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/platinummonkey/envfile/pkg/publish"
)

func (a *app) newPublishCommand() *Command {
	cmd := &Command{
		Name:        "publish",
		Description: "Copy the loaded entries into a Redis hash",
		Usage:       "publish [-redis URL] [-key KEY] [-timeout DURATION] FILE...",
	}
	flags := a.newFlagSet(cmd)
	redisURL := flags.String("redis", os.Getenv("ENVFILE_REDIS_URL"), "Redis URL (default $ENVFILE_REDIS_URL)")
	key := flags.String("key", "envfile", "Redis hash key")
	timeout := flags.Duration("timeout", 30*time.Second, "Overall timeout")

	cmd.Run = func(args []string) error {
		if err := parse(flags, args); err != nil {
			return err
		}
		if flags.NArg() == 0 {
			flags.Usage()
			return usageErrorf("publish needs at least one file")
		}
		if *redisURL == "" {
			return usageErrorf("publish needs -redis or ENVFILE_REDIS_URL")
		}
		if *key == "" {
			return usageErrorf("publish needs a non-empty -key")
		}

		store, err := a.load(flags.Args())
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), *timeout)
		defer cancel()

		client, err := publish.NewClient(ctx, *redisURL)
		if err != nil {
			return err
		}
		defer client.Close()

		n, err := publish.NewPublisher(client, *key, a.logger, nil).PublishStore(ctx, store)
		if err != nil {
			return err
		}

		fmt.Fprintf(a.stdout, "published %d keys to %s\n", n, *key)
		return nil
	}

	return cmd
}
