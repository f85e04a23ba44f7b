// Copyright (c) 2025 BVK Chaitanya

package subcmds

import (
	"context"
	"flag"
	"fmt"
	"log"

	"github.com/bvk/marketbrowser/gobs"
	"github.com/bvk/marketbrowser/store"
	"github.com/bvk/marketbrowser/subcmds/cmdutil"
	"github.com/bvkgo/kv"
	"github.com/visvasity/cli"
)

type Migrate struct {
	cmdutil.DBFlags

	dryRun bool
}

func (c *Migrate) Purpose() string {
	return "Converts legacy per-field table settings into the unified state"
}

func (c *Migrate) Command() (string, *flag.FlagSet, cli.CmdFunc) {
	fset := flag.NewFlagSet("migrate", flag.ContinueOnError)
	c.DBFlags.SetFlags(fset)
	fset.BoolVar(&c.dryRun, "dry-run", false, "when true only prints the information")
	return "migrate", fset, cli.CmdFunc(c.run)
}

func (c *Migrate) run(ctx context.Context, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("this command takes no arguments")
	}

	db, closer, err := c.DBFlags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	migrate := func(ctx context.Context, rw kv.ReadWriter) error {
		state, result, err := store.Migrate(ctx, rw, gobs.TableStateKey, c.dryRun)
		if err != nil {
			return err
		}
		log.Printf("%s: %s %#v", gobs.TableStateKey, result, state.V1)
		if c.dryRun && result == store.Migrated {
			log.Printf("dry run: table state is not written")
		}
		return nil
	}
	if err := kv.WithReadWriter(ctx, db, migrate); err != nil {
		return err
	}
	return nil
}
