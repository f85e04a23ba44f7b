// Copyright (c) 2025 BVK Chaitanya

package state

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/marketbrowser/store"
	"github.com/bvk/marketbrowser/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Show struct {
	cmdutil.DBFlags
}

func (c *Show) Purpose() string {
	return "Prints the saved filter, sort and pagination state"
}

func (c *Show) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("show", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	return "show", fset, cli.CmdFunc(c.run)
}

func (c *Show) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	return withStore(ctx, &c.DBFlags, func(s *store.Store) error {
		return printState(cli.Stdout(ctx), s.Snapshot())
	})
}
