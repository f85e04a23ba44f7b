// Copyright (c) 2023 BVK Chaitanya

package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"

	"github.com/bvk/marketbrowser/subcmds"
	"github.com/bvk/marketbrowser/subcmds/db"
	"github.com/bvk/marketbrowser/subcmds/defaults"
	"github.com/bvk/marketbrowser/subcmds/state"
	"github.com/visvasity/cli"
	"github.com/visvasity/sglog"
)

// loggedCmd adds a -log-dir flag to a command. When the flag is non-empty,
// slog messages go into per-severity log files in that directory.
type loggedCmd struct {
	cmd cli.Command

	logDir string
}

func withLogging(cmd cli.Command) cli.Command {
	return &loggedCmd{cmd: cmd}
}

func (c *loggedCmd) Purpose() string {
	if v, ok := c.cmd.(interface{ Purpose() string }); ok {
		return v.Purpose()
	}
	return ""
}

func (c *loggedCmd) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	name, fset, run := c.cmd.Command()
	fset.StringVar(&c.logDir, "log-dir", defaults.LogDir(), "when non-empty, writes log files into this directory")
	return name, fset, cli.CmdFunc(func(ctx context.Context, args []string) error {
		if len(c.logDir) != 0 {
			if err := os.MkdirAll(c.logDir, 0o700); err != nil {
				return err
			}
			backend := sglog.NewBackend(&sglog.Options{LogDirs: []string{c.logDir}})
			defer backend.Close()
			slog.SetDefault(slog.New(backend.Handler()))
		}
		return run(ctx, args)
	})
}

func main() {
	stateCmds := []cli.Command{
		withLogging(new(state.Show)),
		withLogging(new(state.Filter)),
		withLogging(new(state.Sort)),
		withLogging(new(state.Page)),
		withLogging(new(state.Reset)),
	}

	dbCmds := []cli.Command{
		new(db.Get),
		new(db.Set),
		new(db.Delete),
		new(db.List),
	}

	cmds := []cli.Command{
		withLogging(new(subcmds.Browse)),
		withLogging(new(subcmds.Migrate)),
		cli.NewGroup("state", "Inspect and edit the saved table state", stateCmds...),
		cli.NewGroup("db", "View/update database directly", dbCmds...),
	}
	if err := cli.Run(context.Background(), cmds, os.Args[1:]); err != nil {
		log.Fatal(err)
	}
}
