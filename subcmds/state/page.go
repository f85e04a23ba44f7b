// Copyright (c) 2025 BVK Chaitanya

package state

import (
	"context"
	"flag"
	"fmt"

	"github.com/bvk/marketbrowser/paging"
	"github.com/bvk/marketbrowser/store"
	"github.com/bvk/marketbrowser/subcmds/cmdutil"
	"github.com/visvasity/cli"
)

type Page struct {
	cmdutil.DBFlags

	size  int
	index int
}

func (c *Page) Purpose() string {
	return "Changes the saved page size or page index"
}

func (c *Page) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("page", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.IntVar(&c.size, "size", 0, fmt.Sprintf("entries per page; one of %v", paging.AllowedSizes))
	fset.IntVar(&c.index, "index", -1, "zero-based page index")
	return "page", fset, cli.CmdFunc(c.run)
}

func (c *Page) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if c.size == 0 && c.index < 0 {
		return fmt.Errorf("at least one of -size or -index must be specified")
	}

	return withStore(ctx, &c.DBFlags, func(s *store.Store) error {
		if c.size != 0 {
			if err := s.SetEntriesPerPage(c.size); err != nil {
				return err
			}
		}
		if c.index >= 0 {
			if err := s.SetPage(c.index); err != nil {
				return err
			}
		}
		return printState(cli.Stdout(ctx), s.Snapshot())
	})
}
