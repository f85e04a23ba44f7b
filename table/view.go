// Copyright (c) 2025 BVK Chaitanya

package table

import (
	"strconv"
	"strings"

	"github.com/bvk/marketbrowser/market"
	"github.com/bvk/marketbrowser/pipeline"
	"github.com/bvk/marketbrowser/rows"
	"github.com/bvk/marketbrowser/store"
	"github.com/ethereum/go-ethereum/common"
)

type Column struct {
	Title string

	// Sortable is false for columns without a sort key.
	Sortable bool
	SortKey  store.SortKey
}

var dataColumns = []Column{
	{Title: "Collateral", Sortable: true, SortKey: store.SortByCollateral},
	{Title: "Loan", Sortable: true, SortKey: store.SortByLoan},
	{Title: "Oracle"},
	{Title: "LLTV", Sortable: true, SortKey: store.SortByLLTV},
	{Title: "Supply", Sortable: true, SortKey: store.SortByTotalSupply},
	{Title: "Borrow", Sortable: true, SortKey: store.SortByTotalBorrow},
	{Title: "Liquidity", Sortable: true, SortKey: store.SortByLiquidity},
	{Title: "SupplyAPY", Sortable: true, SortKey: store.SortBySupplyRate},
	{Title: "BorrowAPY", Sortable: true, SortKey: store.SortByBorrowRate},
	{Title: "Utilization", Sortable: true, SortKey: store.SortByUtilization},
	{Title: "Vaults", Sortable: true, SortKey: store.SortByTrustedVaults},
}

type Row struct {
	Market *market.Market

	Selected bool

	// Redraw is true if the row is new or its inputs changed since the
	// previous View.
	Redraw bool

	// Cells are the formatted values for View.Columns.
	Cells []string
}

type CartItem struct {
	Key common.Hash

	// Market is nil if the key is not in the current market list.
	Market *market.Market

	// Visible is false if the market is filtered out.
	Visible bool
}

type View struct {
	Columns []Column
	Rows    []*Row

	Facets     *pipeline.FacetSet
	Filter     store.Filter
	Sort       store.Sort
	Pagination store.Pagination

	// Page holds the current page after clamping.
	Page *pipeline.Page

	// Cart lists selected markets in key order. It is empty unless
	// Options.ShowCart is set.
	Cart []*CartItem

	Disabled bool
}

// View derives the current table contents. An out of range page index is
// clamped and the clamped index is saved into the store.
func (t *Table) View() *View {
	t.mu.Lock()
	defer t.mu.Unlock()

	state := t.store.Snapshot()
	facets := t.memo.Facets(t.markets)
	visible := t.memo.FilterSort(t.markets, state.Filter, state.Sort)
	page := t.memo.Paginate(visible, state.Pagination)
	if page.Index != state.Pagination.Page {
		state.Pagination = t.store.ClampPage(len(visible))
	}

	v := &View{
		Facets:     facets,
		Filter:     state.Filter,
		Sort:       state.Sort,
		Pagination: state.Pagination,
		Page:       page,
		Disabled:   t.opts.Disabled,
	}
	if t.opts.ShowSelectColumn {
		v.Columns = append(v.Columns, Column{Title: "Sel"})
	}
	v.Columns = append(v.Columns, dataColumns...)

	snaps := rows.CaptureAll(t.opts.Registry, page.Markets, state.Selection, t.opts.Disabled)
	redraw := make(map[common.Hash]bool)
	for _, k := range rows.Diff(t.rendered, snaps) {
		redraw[k] = true
	}
	t.rendered = snaps

	for _, m := range page.Markets {
		selected := state.Selection.Has(m.Key)
		v.Rows = append(v.Rows, &Row{
			Market:   m,
			Selected: selected,
			Redraw:   redraw[m.Key],
			Cells:    t.cells(m, selected),
		})
	}

	if t.opts.ShowCart {
		v.Cart = t.cart(state.Selection, visible)
	}
	return v
}

func (t *Table) cart(sel store.Selection, visible []*market.Market) []*CartItem {
	all := make(map[common.Hash]*market.Market, len(t.markets))
	for _, m := range t.markets {
		all[m.Key] = m
	}
	shown := make(map[common.Hash]bool, len(visible))
	for _, m := range visible {
		shown[m.Key] = true
	}
	var items []*CartItem
	for _, k := range sel.Keys() {
		items = append(items, &CartItem{Key: k, Market: all[k], Visible: shown[k]})
	}
	return items
}

func (t *Table) cells(m *market.Market, selected bool) []string {
	reg, sig := t.opts.Registry, t.opts.SignificantDigits

	var cells []string
	if t.opts.ShowSelectColumn {
		cells = append(cells, checkbox(selected, t.opts.Disabled))
	}

	oracle := market.OracleLabel(reg, m.Oracle)
	if market.IsUnknownOracle(reg, m.Oracle) {
		oracle += "?"
	}
	collateral := market.TokenLabel(reg, m.Collateral)
	if market.IsUnknownToken(reg, m.Collateral.Address) {
		collateral += "?"
	}

	cells = append(cells,
		collateral,
		market.TokenLabel(reg, m.Loan),
		oracle,
		market.FormatPercent(m.LLTV, sig),
		market.FormatAmount(m.TotalSupply, sig),
		market.FormatAmount(m.TotalBorrow, sig),
		market.FormatAmount(m.Liquidity, sig),
		market.FormatPercent(m.SupplyRate, sig),
		market.FormatPercent(m.BorrowRate, sig),
		formatUtilization(m, sig),
		vaultNames(reg, m),
	)
	return cells
}

func checkbox(selected, disabled bool) string {
	switch {
	case disabled && selected:
		return "(x)"
	case disabled:
		return "( )"
	case selected:
		return "[x]"
	}
	return "[ ]"
}

func formatUtilization(m *market.Market, sig int) string {
	if !m.TotalSupply.IsValid() || !m.TotalBorrow.IsValid() {
		return market.Placeholder
	}
	u := m.Utilization()
	return market.FormatPercent(market.Amount{Value: u.Shift(18).BigInt(), Decimals: 18}, sig)
}

func vaultNames(reg market.Registry, m *market.Market) string {
	vaults := market.TrustedVaults(reg, m)
	if len(vaults) == 0 {
		return market.Placeholder
	}
	first := vaults[0].Name
	if first == "" {
		first = market.ShortAddress(vaults[0].Address.Hex())
	}
	if len(vaults) == 1 {
		return first
	}
	return first + " +" + strconv.Itoa(len(vaults)-1)
}

// title returns the column title with a sort direction marker.
func (c Column) title(s store.Sort) string {
	if !c.Sortable || c.SortKey != s.Key {
		return c.Title
	}
	if s.Descending {
		return c.Title + " v"
	}
	return c.Title + " ^"
}

func cartLabel(reg market.Registry, item *CartItem) string {
	if item.Market == nil {
		return market.ShortAddress(item.Key.Hex()) + " (missing)"
	}
	m := item.Market
	label := strings.Join([]string{
		market.TokenLabel(reg, m.Collateral),
		market.TokenLabel(reg, m.Loan),
	}, "/")
	if !item.Visible {
		label += " (hidden)"
	}
	return label
}
