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

type Filter struct {
	cmdutil.DBFlags

	collaterals string
	oracles     string

	unknownTokens  bool
	unknownOracles bool
}

func (c *Filter) Purpose() string {
	return "Replaces the saved market filter"
}

func (c *Filter) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("filter", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.collaterals, "collateral", "", "comma separated collateral token addresses")
	fset.StringVar(&c.oracles, "oracle", "", "comma separated oracle addresses")
	fset.BoolVar(&c.unknownTokens, "unknown-tokens", false, "when true, includes markets with unrecognized collateral tokens")
	fset.BoolVar(&c.unknownOracles, "unknown-oracles", false, "when true, includes markets with unrecognized oracles")
	return "filter", fset, cli.CmdFunc(c.run)
}

func (c *Filter) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	collaterals, err := cmdutil.ParseAddresses(c.collaterals)
	if err != nil {
		return err
	}
	oracles, err := cmdutil.ParseAddresses(c.oracles)
	if err != nil {
		return err
	}

	return withStore(ctx, &c.DBFlags, func(s *store.Store) error {
		s.UpdateFilter(func(f *store.Filter) {
			f.Collaterals = store.NewAddressSet(collaterals...)
			f.Oracles = store.NewAddressSet(oracles...)
			f.IncludeUnknownTokens = c.unknownTokens
			f.IncludeUnknownOracles = c.unknownOracles
		})
		return printState(cli.Stdout(ctx), s.Snapshot())
	})
}
