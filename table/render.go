// Copyright (c) 2025 BVK Chaitanya

package table

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"text/tabwriter"

	"github.com/bvk/marketbrowser/market"
)

// Render writes the current view as text: a header row, one line per market
// on the current page, a page footer and, when enabled, the cart.
func (t *Table) Render(w io.Writer) error {
	v := t.View()

	out := w
	var tw *tabwriter.Writer
	if !t.opts.Plain {
		tw = tabwriter.NewWriter(w, 0, 0, 1, ' ', tabwriter.AlignRight)
		out = tw
	}

	titles := make([]string, 0, len(v.Columns))
	for _, c := range v.Columns {
		titles = append(titles, c.title(v.Sort))
	}
	if _, err := fmt.Fprintf(out, "%s\t\n", strings.Join(titles, "\t")); err != nil {
		return err
	}
	for _, row := range v.Rows {
		if _, err := fmt.Fprintf(out, "%s\t\n", strings.Join(row.Cells, "\t")); err != nil {
			return err
		}
	}
	if tw != nil {
		if err := tw.Flush(); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintln(w, pageFooter(v)); err != nil {
		return err
	}

	if t.opts.ShowCart {
		if _, err := fmt.Fprintf(w, "\nSelected (%d):\n", len(v.Cart)); err != nil {
			return err
		}
		for _, item := range v.Cart {
			if _, err := fmt.Fprintf(w, "  %s\n", t.cartItem(item)); err != nil {
				return err
			}
		}
	}
	return nil
}

func pageFooter(v *View) string {
	if v.Page.PageCount == 0 {
		return "No markets"
	}
	return fmt.Sprintf("Page %d of %d (%d markets, %d per page)",
		v.Page.Index+1, v.Page.PageCount, v.Page.TotalCount, v.Page.EntriesPerPage)
}

// cartItem formats one cart entry with the RenderCartItem hook when it is
// set. Hook failures produce the placeholder.
func (t *Table) cartItem(item *CartItem) (s string) {
	if t.opts.RenderCartItem == nil || item.Market == nil {
		return cartLabel(t.opts.Registry, item)
	}

	defer func() {
		if r := recover(); r != nil {
			slog.Warn("cart item renderer panicked", "market", item.Key, "panic", r)
			s = market.Placeholder
		}
	}()

	var buf bytes.Buffer
	if err := t.opts.RenderCartItem(&buf, item.Market); err != nil {
		slog.Warn("could not render cart item", "market", item.Key, "err", err)
		return market.Placeholder
	}
	return strings.TrimRight(buf.String(), "\n")
}
