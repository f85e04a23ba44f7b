// Copyright (c) 2025 BVK Chaitanya

package state

import (
	"context"
	"flag"

	"github.com/bvk/marketbrowser/store"
	"github.com/bvk/marketbrowser/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Reset struct {
	cmdutil.DBFlags
}

func (c *Reset) Purpose() string {
	return "Restores defaults for the named state slices or for all"
}

func (c *Reset) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("reset", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "reset", fset, cli.CmdFunc(c.run)
}

func (c *Reset) run(ctx context.Context, args []string) error {
	var slices []store.Slice
	for _, arg := range args {
		slice, err := store.ParseSlice(arg)
		if err != nil {
			return err
		}
		slices = append(slices, slice)
	}

	return withStore(ctx, &c.DBFlags, func(s *store.Store) error {
		s.Reset(slices...)
		return printState(cli.Stdout(ctx), s.Snapshot())
	})
}
