// Copyright (c) 2025 BVK Chaitanya

package state

import (
	"context"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/bvk/marketbrowser/store"
	"github.com/bvk/marketbrowser/subcmds/cmdutil"
)

// withStore opens the table state store on the database and runs fn. Changes
// made by fn are saved before returning.
func withStore(ctx context.Context, dbflags *cmdutil.DBFlags, fn func(*store.Store) error) error {
	db, closer, err := dbflags.GetDatabase(ctx)
	if err != nil {
		return err
	}
	defer closer()

	s, err := store.New(ctx, db, nil)
	if err != nil {
		return err
	}

	if err := fn(s); err != nil {
		s.Close()
		return err
	}
	if err := s.Close(); err != nil {
		return fmt.Errorf("could not save table state to the database: %w", err)
	}
	return nil
}

func printState(w io.Writer, st *store.State) error {
	addrs := func(set store.AddressSet) string {
		if len(set) == 0 {
			return "any"
		}
		var hexes []string
		for _, a := range set.Sorted() {
			hexes = append(hexes, a.Hex())
		}
		return strings.Join(hexes, ",")
	}

	tw := tabwriter.NewWriter(w, 0, 0, 1, ' ', 0)
	fmt.Fprintf(tw, "Collaterals\t%s\t\n", addrs(st.Filter.Collaterals))
	fmt.Fprintf(tw, "Oracles\t%s\t\n", addrs(st.Filter.Oracles))
	fmt.Fprintf(tw, "IncludeUnknownTokens\t%t\t\n", st.Filter.IncludeUnknownTokens)
	fmt.Fprintf(tw, "IncludeUnknownOracles\t%t\t\n", st.Filter.IncludeUnknownOracles)
	fmt.Fprintf(tw, "Sort\t%s\t\n", st.Sort)
	fmt.Fprintf(tw, "EntriesPerPage\t%d\t\n", st.Pagination.EntriesPerPage)
	fmt.Fprintf(tw, "Page\t%d\t\n", st.Pagination.Page)
	return tw.Flush()
}
