// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/bvk/marketbrowser/market"
	"github.com/bvk/marketbrowser/pipeline"
	"github.com/bvk/marketbrowser/store"
	"github.com/bvk/marketbrowser/subcmds/cmdutil"
	"github.com/bvk/marketbrowser/table"
	"github.com/visvasity/cli"
	"golang.org/x/term"
)

type Browse struct {
	cmdutil.DBFlags

	marketsFile  string
	registryFile string

	selectKeys string
	page       int
	next, prev bool

	showCart bool
	digits   int
}

func (c *Browse) Purpose() string {
	return "Prints a page of markets using the saved table state"
}

func (c *Browse) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("browse", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.StringVar(&c.marketsFile, "markets", "", "path to the markets JSON file")
	fset.StringVar(&c.registryFile, "registry", "", "path to the trusted registry JSON file")
	fset.StringVar(&c.selectKeys, "select", "", "comma separated market keys to select")
	fset.IntVar(&c.page, "page", -1, "zero-based page index to show")
	fset.BoolVar(&c.next, "next", false, "when true, moves to the next page")
	fset.BoolVar(&c.prev, "prev", false, "when true, moves to the previous page")
	fset.BoolVar(&c.showCart, "cart", false, "when true, prints selected markets")
	fset.IntVar(&c.digits, "digits", 4, "significant digits for amounts")
	return "browse", fset, cli.CmdFunc(c.run)
}

func (c *Browse) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}
	if len(c.marketsFile) == 0 {
		return fmt.Errorf("markets file must be specified with -markets")
	}
	markets, err := market.ReadMarketsFile(c.marketsFile)
	if err != nil {
		return err
	}

	var reg market.Registry
	if len(c.registryFile) != 0 {
		r, err := market.ReadRegistryFile(c.registryFile)
		if err != nil {
			return err
		}
		ntokens, noracles, nvaults := r.Size()
		slog.Info("loaded trusted registry", "tokens", ntokens, "oracles", noracles, "vaults", nvaults)
		reg = r
	}

	keys, err := cmdutil.ParseKeys(c.selectKeys)
	if err != nil {
		return err
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	s, err := store.New(ctx, db, nil)
	if err != nil {
		return err
	}
	defer func() {
		if err := s.Close(); err != nil {
			slog.Warn("could not save table state (ignored)", "store", s.ID(), "err", err)
		}
	}()

	stdout := cli.Stdout(ctx)
	plain := true
	if f, ok := stdout.(*os.File); ok {
		plain = !term.IsTerminal(int(f.Fd()))
	}

	tbl := table.New(s, &table.Options{
		Markets:           markets,
		Registry:          reg,
		ShowSelectColumn:  len(keys) != 0,
		ShowCart:          c.showCart,
		SignificantDigits: c.digits,
		Plain:             plain,
	})
	for _, k := range keys {
		tbl.Toggle(k)
	}

	if c.page >= 0 {
		if err := s.SetPage(c.page); err != nil {
			return err
		}
	}
	if c.next {
		tbl.NextPage()
	}
	if c.prev {
		tbl.PrevPage()
	}

	if err := tbl.Render(stdout); err != nil {
		return err
	}
	return c.printFacets(stdout, tbl.View())
}

func (c *Browse) printFacets(w io.Writer, v *table.View) error {
	if v.Page.TotalCount == 0 && len(v.Facets.Collaterals) == 0 {
		return nil
	}
	printFacets := func(title string, set store.AddressSet, facets []pipeline.Facet) {
		fmt.Fprintf(w, "\n%s:", title)
		for _, f := range facets {
			mark := ""
			if set.Has(f.Address) {
				mark = "*"
			}
			if f.Unknown {
				mark += "?"
			}
			fmt.Fprintf(w, " %s%s(%d)", f.Label, mark, f.Count)
		}
		fmt.Fprintln(w)
	}
	printFacets("Collaterals", v.Filter.Collaterals, v.Facets.Collaterals)
	printFacets("Oracles", v.Filter.Oracles, v.Facets.Oracles)
	return nil
}
