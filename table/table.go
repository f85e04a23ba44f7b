// Copyright (c) 2025 BVK Chaitanya

// Package table ties a market list, a trusted registry and a state store
// into a browsable table. A Table derives views from the store on demand and
// writes user actions back into the store.
package table

import (
	"io"
	"sync"

	"github.com/bvk/marketbrowser/market"
	"github.com/bvk/marketbrowser/pipeline"
	"github.com/bvk/marketbrowser/rows"
	"github.com/bvk/marketbrowser/store"
	"github.com/ethereum/go-ethereum/common"
)

type Options struct {
	// Markets is the initial market list. The table never modifies it.
	Markets []*market.Market

	// Registry recognizes trusted tokens, oracles and vaults. A nil registry
	// recognizes nothing.
	Registry market.Registry

	// OnToggleMarket is called after a market's selection is toggled.
	OnToggleMarket func(key common.Hash)

	// Disabled turns selection toggles into no-ops.
	Disabled bool

	ShowSelectColumn bool
	ShowCart         bool

	// RenderCartItem, when set, writes one cart entry. Errors and panics are
	// rendered as the placeholder.
	RenderCartItem func(w io.Writer, m *market.Market) error

	// SignificantDigits for amounts. Defaults to 4.
	SignificantDigits int

	// Plain when true renders tab-separated cells without alignment.
	Plain bool
}

func (v *Options) setDefaults() {
	if v.SignificantDigits <= 0 {
		v.SignificantDigits = 4
	}
}

type Table struct {
	store *store.Store
	opts  Options

	memo *pipeline.Memo

	mu sync.Mutex

	markets []*market.Market

	// rendered holds row snapshots from the last View.
	rendered map[common.Hash]rows.Snapshot
}

func New(s *store.Store, opts *Options) *Table {
	if opts == nil {
		opts = new(Options)
	}
	t := &Table{
		store:   s,
		opts:    *opts,
		memo:    pipeline.NewMemo(opts.Registry),
		markets: opts.Markets,
	}
	t.opts.setDefaults()
	return t
}

func (t *Table) Store() *store.Store {
	return t.store
}

// SetMarkets replaces the market list. The list must not be modified
// afterwards; pass a new slice for every update.
func (t *Table) SetMarkets(markets []*market.Market) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.markets = markets
}

// Refresh drops cached derivations, e.g. after registry entries are added.
// Every row of the next View is redrawn.
func (t *Table) Refresh() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.memo.Invalidate()
	t.rendered = nil
}

// Toggle flips the selection of a market and returns true if it is selected
// afterwards. When the table is disabled nothing changes.
func (t *Table) Toggle(key common.Hash) bool {
	if t.opts.Disabled {
		return t.store.IsSelected(key)
	}
	selected := t.store.ToggleSelection(key)
	if t.opts.OnToggleMarket != nil {
		t.opts.OnToggleMarket(key)
	}
	return selected
}

// SelectPage selects every market on the current page.
func (t *Table) SelectPage() {
	if t.opts.Disabled {
		return
	}
	page := t.page()
	keys := make([]common.Hash, 0, len(page.Markets))
	for _, m := range page.Markets {
		keys = append(keys, m.Key)
	}
	t.store.SelectMany(keys...)
}

func (t *Table) page() *pipeline.Page {
	t.mu.Lock()
	markets := t.markets
	t.mu.Unlock()

	state := t.store.Snapshot()
	visible := t.memo.FilterSort(markets, state.Filter, state.Sort)
	return t.memo.Paginate(visible, state.Pagination)
}

// NextPage moves to the next page and returns false on the last page.
func (t *Table) NextPage() bool {
	page := t.page()
	if !page.HasNext {
		return false
	}
	return t.store.SetPage(page.Index+1) == nil
}

// PrevPage moves to the previous page and returns false on the first page.
func (t *Table) PrevPage() bool {
	page := t.page()
	if !page.HasPrev {
		return false
	}
	return t.store.SetPage(page.Index-1) == nil
}
