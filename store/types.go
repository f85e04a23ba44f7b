// Copyright (c) 2025 BVK Chaitanya

package store

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"slices"

	"github.com/bvk/marketbrowser/paging"
	"github.com/ethereum/go-ethereum/common"
)

// Slice names an independently observable part of the store.
type Slice int

const (
	FilterSlice Slice = iota
	SortSlice
	PaginationSlice
	SelectionSlice

	numSlices
)

func (s Slice) String() string {
	switch s {
	case FilterSlice:
		return "filter"
	case SortSlice:
		return "sort"
	case PaginationSlice:
		return "pagination"
	case SelectionSlice:
		return "selection"
	}
	return fmt.Sprintf("slice(%d)", int(s))
}

// ParseSlice parses a slice name as returned by Slice.String.
func ParseSlice(s string) (Slice, error) {
	for v := Slice(0); v < numSlices; v++ {
		if v.String() == s {
			return v, nil
		}
	}
	return 0, fmt.Errorf("unknown state slice %q: %w", s, os.ErrInvalid)
}

type SortKey int

const (
	SortByCollateral SortKey = iota
	SortByLoan
	SortByLLTV
	SortBySupplyRate
	SortByBorrowRate
	SortByTotalSupply
	SortByTotalBorrow
	SortByLiquidity
	SortByTrustedVaults
	SortByUtilization

	numSortKeys
)

var sortKeyNames = [numSortKeys]string{
	SortByCollateral:    "collateral",
	SortByLoan:          "loan",
	SortByLLTV:          "lltv",
	SortBySupplyRate:    "supply-rate",
	SortByBorrowRate:    "borrow-rate",
	SortByTotalSupply:   "total-supply",
	SortByTotalBorrow:   "total-borrow",
	SortByLiquidity:     "liquidity",
	SortByTrustedVaults: "trusted-vaults",
	SortByUtilization:   "utilization",
}

func (k SortKey) String() string {
	if k < 0 || k >= numSortKeys {
		return fmt.Sprintf("sort-key(%d)", int(k))
	}
	return sortKeyNames[k]
}

func (k SortKey) IsValid() bool {
	return k >= 0 && k < numSortKeys
}

// IsNumeric returns true for columns holding quantities. Numeric columns
// start in descending order when first selected; text columns start
// ascending.
func (k SortKey) IsNumeric() bool {
	return k != SortByCollateral && k != SortByLoan
}

func SortKeys() []SortKey {
	keys := make([]SortKey, numSortKeys)
	for i := range keys {
		keys[i] = SortKey(i)
	}
	return keys
}

func ParseSortKey(s string) (SortKey, error) {
	for i, name := range sortKeyNames {
		if name == s {
			return SortKey(i), nil
		}
	}
	return 0, fmt.Errorf("unknown sort key %q: %w", s, os.ErrInvalid)
}

// AddressSet is a set of token or oracle addresses.
type AddressSet map[common.Address]struct{}

func NewAddressSet(addrs ...common.Address) AddressSet {
	s := make(AddressSet, len(addrs))
	for _, a := range addrs {
		s[a] = struct{}{}
	}
	return s
}

func (s AddressSet) Has(a common.Address) bool {
	_, ok := s[a]
	return ok
}

func (s AddressSet) Clone() AddressSet {
	if s == nil {
		return AddressSet{}
	}
	return maps.Clone(s)
}

// Sorted returns the addresses in byte order.
func (s AddressSet) Sorted() []common.Address {
	addrs := slices.Collect(maps.Keys(s))
	slices.SortFunc(addrs, func(a, b common.Address) int {
		return bytes.Compare(a[:], b[:])
	})
	return addrs
}

// Filter selects markets by collateral token and oracle. An empty set does
// not filter anything.
type Filter struct {
	Collaterals AddressSet
	Oracles     AddressSet

	// IncludeUnknownTokens admits markets whose collateral token is not in the
	// trusted registry even when it is not in Collaterals.
	IncludeUnknownTokens bool

	// IncludeUnknownOracles admits markets with an unrecognized or
	// non-whitelisted oracle even when it is not in Oracles.
	IncludeUnknownOracles bool
}

func DefaultFilter() Filter {
	return Filter{
		Collaterals: AddressSet{},
		Oracles:     AddressSet{},
	}
}

func (f Filter) Clone() Filter {
	f.Collaterals = f.Collaterals.Clone()
	f.Oracles = f.Oracles.Clone()
	return f
}

func (f Filter) Equal(g Filter) bool {
	return f.IncludeUnknownTokens == g.IncludeUnknownTokens &&
		f.IncludeUnknownOracles == g.IncludeUnknownOracles &&
		maps.Equal(f.Collaterals, g.Collaterals) &&
		maps.Equal(f.Oracles, g.Oracles)
}

// IsEmpty returns true if the filter has no inclusion sets.
func (f Filter) IsEmpty() bool {
	return len(f.Collaterals) == 0 && len(f.Oracles) == 0
}

type Sort struct {
	Key        SortKey
	Descending bool
}

func DefaultSort() Sort {
	return Sort{Key: SortByTotalSupply, Descending: true}
}

func (s Sort) String() string {
	if s.Descending {
		return s.Key.String() + " desc"
	}
	return s.Key.String() + " asc"
}

type Pagination struct {
	EntriesPerPage int

	// Page is the zero-based current page index.
	Page int
}

func DefaultPagination() Pagination {
	return Pagination{EntriesPerPage: paging.DefaultSize}
}

// Selection is the set of selected market keys.
type Selection map[common.Hash]struct{}

func (s Selection) Has(key common.Hash) bool {
	_, ok := s[key]
	return ok
}

func (s Selection) Clone() Selection {
	if s == nil {
		return Selection{}
	}
	return maps.Clone(s)
}

// Keys returns the selected keys in byte order.
func (s Selection) Keys() []common.Hash {
	keys := slices.Collect(maps.Keys(s))
	slices.SortFunc(keys, func(a, b common.Hash) int {
		return bytes.Compare(a[:], b[:])
	})
	return keys
}

// State is a consistent copy of all slices.
type State struct {
	Filter     Filter
	Sort       Sort
	Pagination Pagination
	Selection  Selection
}
