// Copyright (c) 2025 BVK Chaitanya

package state

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"github.com/bvk/marketbrowser/store"
	"github.com/bvk/marketbrowser/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Sort struct {
	cmdutil.DBFlags

	key    string
	asc    bool
	toggle bool
}

func (c *Sort) Purpose() string {
	return "Changes the saved sort column and direction"
}

func (c *Sort) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	var names []string
	for _, k := range store.SortKeys() {
		names = append(names, k.String())
	}

	fset := flag.NewFlagSet("sort", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.key, "key", "", "sort column; one of "+strings.Join(names, ", "))
	fset.BoolVar(&c.asc, "asc", false, "when true, sorts in ascending order")
	fset.BoolVar(&c.toggle, "toggle", false, "when true, behaves like a column header click")
	return "sort", fset, cli.CmdFunc(c.run)
}

func (c *Sort) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if len(c.key) == 0 {
		return fmt.Errorf("sort column must be specified with -key")
	}
	key, err := store.ParseSortKey(c.key)
	if err != nil {
		return err
	}

	return withStore(ctx, &c.DBFlags, func(s *store.Store) error {
		if c.toggle {
			if err := s.ToggleSort(key); err != nil {
				return err
			}
		} else if err := s.SetSort(key, !c.asc); err != nil {
			return err
		}
		return printState(cli.Stdout(ctx), s.Snapshot())
	})
}
