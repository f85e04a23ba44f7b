// Copyright (c) 2025 BVK Chaitanya

// Package pipeline derives table contents from a market list and store
// state: filter facets, the filtered and sorted list, and the current page.
// All functions are pure; Memo adds single-entry caching on top of them.
package pipeline

import (
	"bytes"
	"slices"
	"strings"

	"github.com/bvk/marketbrowser/market"
	"github.com/bvk/marketbrowser/paging"
	"github.com/bvk/marketbrowser/store"
	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Facet is one filter option derived from the market list.
type Facet struct {
	Address common.Address
	Label   string

	// Unknown is true if the value is not recognized by the registry.
	Unknown bool

	// Count is the number of markets with this value.
	Count int
}

type FacetSet struct {
	Collaterals []Facet
	Oracles     []Facet
}

// Facets returns the distinct collateral tokens and oracles present in the
// markets. Facets are ordered by case-insensitive label, then by address.
func Facets(markets []*market.Market, reg market.Registry) *FacetSet {
	collaterals := make(map[common.Address]*Facet)
	oracles := make(map[common.Address]*Facet)

	for _, m := range markets {
		if f, ok := collaterals[m.Collateral.Address]; ok {
			f.Count++
		} else {
			collaterals[m.Collateral.Address] = &Facet{
				Address: m.Collateral.Address,
				Label:   market.TokenLabel(reg, m.Collateral),
				Unknown: market.IsUnknownToken(reg, m.Collateral.Address),
				Count:   1,
			}
		}

		// An oracle is unknown if any market reports it as not whitelisted.
		unknown := market.IsUnknownOracle(reg, m.Oracle)
		if f, ok := oracles[m.Oracle.Address]; ok {
			f.Count++
			f.Unknown = f.Unknown || unknown
		} else {
			oracles[m.Oracle.Address] = &Facet{
				Address: m.Oracle.Address,
				Label:   market.OracleLabel(reg, m.Oracle),
				Unknown: unknown,
				Count:   1,
			}
		}
	}

	return &FacetSet{
		Collaterals: sortedFacets(collaterals),
		Oracles:     sortedFacets(oracles),
	}
}

func sortedFacets(m map[common.Address]*Facet) []Facet {
	facets := make([]Facet, 0, len(m))
	for _, f := range m {
		facets = append(facets, *f)
	}
	slices.SortFunc(facets, func(a, b Facet) int {
		if c := strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label)); c != 0 {
			return c
		}
		return bytes.Compare(a.Address[:], b.Address[:])
	})
	return facets
}

func matchSet(set store.AddressSet, addr common.Address, unknownIncluded bool) bool {
	return len(set) == 0 || set.Has(addr) || unknownIncluded
}

// Match returns true if the market passes the filter.
func Match(m *market.Market, reg market.Registry, f store.Filter) bool {
	tokenOK := matchSet(f.Collaterals, m.Collateral.Address,
		f.IncludeUnknownTokens && market.IsUnknownToken(reg, m.Collateral.Address))
	if !tokenOK {
		return false
	}
	return matchSet(f.Oracles, m.Oracle.Address,
		f.IncludeUnknownOracles && market.IsUnknownOracle(reg, m.Oracle))
}

// sortItem caches per-market sort values so registry lookups happen once per
// market instead of once per comparison.
type sortItem struct {
	m     *market.Market
	label string
	num   decimal.Decimal
	valid bool
}

func sortValue(m *market.Market, reg market.Registry, key store.SortKey) sortItem {
	item := sortItem{m: m, valid: true}
	amount := func(a market.Amount) {
		item.num, item.valid = a.Decimal(), a.IsValid()
	}
	switch key {
	case store.SortByCollateral:
		item.label = strings.ToLower(market.TokenLabel(reg, m.Collateral))
	case store.SortByLoan:
		item.label = strings.ToLower(market.TokenLabel(reg, m.Loan))
	case store.SortByLLTV:
		amount(m.LLTV)
	case store.SortBySupplyRate:
		amount(m.SupplyRate)
	case store.SortByBorrowRate:
		amount(m.BorrowRate)
	case store.SortByTotalSupply:
		amount(m.TotalSupply)
	case store.SortByTotalBorrow:
		amount(m.TotalBorrow)
	case store.SortByLiquidity:
		amount(m.Liquidity)
	case store.SortByTrustedVaults:
		item.num = decimal.NewFromInt(int64(len(market.TrustedVaults(reg, m))))
	case store.SortByUtilization:
		item.num = m.Utilization()
	}
	return item
}

func compareItems(a, b *sortItem, key store.SortKey) int {
	if !key.IsNumeric() {
		return strings.Compare(a.label, b.label)
	}
	// Invalid amounts order below every valid amount.
	if a.valid != b.valid {
		if a.valid {
			return 1
		}
		return -1
	}
	return a.num.Cmp(b.num)
}

// SortMarkets returns a sorted copy of the markets. Markets that compare
// equal on the sort key are ordered by market key ascending, regardless of
// the sort direction, so the result never depends on the input order.
func SortMarkets(markets []*market.Market, reg market.Registry, s store.Sort) []*market.Market {
	items := make([]sortItem, len(markets))
	for i, m := range markets {
		items[i] = sortValue(m, reg, s.Key)
	}
	slices.SortStableFunc(items, func(a, b sortItem) int {
		c := compareItems(&a, &b, s.Key)
		if s.Descending {
			c = -c
		}
		if c != 0 {
			return c
		}
		return bytes.Compare(a.m.Key[:], b.m.Key[:])
	})

	sorted := make([]*market.Market, len(items))
	for i := range items {
		sorted[i] = items[i].m
	}
	return sorted
}

// FilterSort returns the markets passing the filter in sort order. The input
// slice is not modified.
func FilterSort(markets []*market.Market, reg market.Registry, f store.Filter, s store.Sort) []*market.Market {
	var matched []*market.Market
	for _, m := range markets {
		if Match(m, reg, f) {
			matched = append(matched, m)
		}
	}
	return SortMarkets(matched, reg, s)
}

type Page struct {
	// Markets holds the rows of the current page.
	Markets []*market.Market

	// Index is the page index after clamping.
	Index          int
	EntriesPerPage int

	TotalCount int
	PageCount  int

	HasPrev bool
	HasNext bool
}

// Paginate returns the page selected by p from the list. Out of range page
// indices are clamped to the nearest valid page. An empty list has zero pages
// and an empty page 0.
func Paginate(list []*market.Market, p store.Pagination) *Page {
	size := p.EntriesPerPage
	if size <= 0 {
		size = paging.DefaultSize
	}
	total := len(list)
	index := paging.Clamp(p.Page, total, size)
	begin, end := paging.Bounds(index, total, size)
	count := paging.Count(total, size)
	return &Page{
		Markets:        slices.Clip(list[begin:end]),
		Index:          index,
		EntriesPerPage: size,
		TotalCount:     total,
		PageCount:      count,
		HasPrev:        index > 0,
		HasNext:        index+1 < count,
	}
}
