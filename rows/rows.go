// Copyright (c) 2025 BVK Chaitanya

// Package rows decides which table rows must be redrawn between two renders.
// Rows are addressed by market key, never by position.
package rows

import (
	"bytes"
	"slices"

	"github.com/bvk/marketbrowser/market"
	"github.com/bvk/marketbrowser/store"
	"github.com/ethereum/go-ethereum/common"
)

// Snapshot holds the inputs a rendered row depends on. Labels are resolved
// against the registry at capture time, so registry updates show up as
// changed snapshots.
type Snapshot struct {
	Key common.Hash

	Collateral string
	Loan       string
	Oracle     string

	UnknownCollateral bool
	UnknownOracle     bool

	// Vaults holds labels of the trusted supplying vaults in display order.
	Vaults []string

	LLTV       market.Amount
	Supply     market.Amount
	Borrow     market.Amount
	Liquidity  market.Amount
	SupplyRate market.Amount
	BorrowRate market.Amount

	Whitelisted bool

	Selected bool
	Disabled bool
}

func Capture(reg market.Registry, m *market.Market, selected, disabled bool) Snapshot {
	var vaults []string
	for _, v := range market.TrustedVaults(reg, m) {
		label := v.Name
		if label == "" {
			label = v.Address.Hex()
		}
		vaults = append(vaults, label)
	}
	return Snapshot{
		Key:               m.Key,
		Collateral:        market.TokenLabel(reg, m.Collateral),
		Loan:              market.TokenLabel(reg, m.Loan),
		Oracle:            market.OracleLabel(reg, m.Oracle),
		UnknownCollateral: market.IsUnknownToken(reg, m.Collateral.Address),
		UnknownOracle:     market.IsUnknownOracle(reg, m.Oracle),
		Vaults:            vaults,
		LLTV:              m.LLTV,
		Supply:            m.TotalSupply,
		Borrow:      m.TotalBorrow,
		Liquidity:   m.Liquidity,
		SupplyRate:  m.SupplyRate,
		BorrowRate:  m.BorrowRate,
		Whitelisted: m.Oracle.Whitelisted,
		Selected:    selected,
		Disabled:    disabled,
	}
}

// CaptureAll returns snapshots for the markets keyed by market key.
func CaptureAll(reg market.Registry, markets []*market.Market, sel store.Selection, disabled bool) map[common.Hash]Snapshot {
	snaps := make(map[common.Hash]Snapshot, len(markets))
	for _, m := range markets {
		snaps[m.Key] = Capture(reg, m, sel.Has(m.Key), disabled)
	}
	return snaps
}

// NeedsRedraw returns true if a row rendered from prev may look different
// when rendered from next. Amounts are compared by value, so a change of
// representation alone does not trigger a redraw.
func NeedsRedraw(prev, next Snapshot) bool {
	if prev.Key != next.Key {
		return true
	}
	if prev.Whitelisted != next.Whitelisted || prev.Selected != next.Selected || prev.Disabled != next.Disabled {
		return true
	}
	if prev.Collateral != next.Collateral || prev.Loan != next.Loan || prev.Oracle != next.Oracle {
		return true
	}
	if prev.UnknownCollateral != next.UnknownCollateral || prev.UnknownOracle != next.UnknownOracle {
		return true
	}
	if !slices.Equal(prev.Vaults, next.Vaults) {
		return true
	}
	return !prev.LLTV.Equal(next.LLTV) ||
		!prev.Supply.Equal(next.Supply) ||
		!prev.Borrow.Equal(next.Borrow) ||
		!prev.Liquidity.Equal(next.Liquidity) ||
		!prev.SupplyRate.Equal(next.SupplyRate) ||
		!prev.BorrowRate.Equal(next.BorrowRate)
}

// Diff returns the keys in next whose rows are new or need a redraw, in key
// order. Rows only present in prev are not reported.
func Diff(prev, next map[common.Hash]Snapshot) []common.Hash {
	var keys []common.Hash
	for k, n := range next {
		if p, ok := prev[k]; !ok || NeedsRedraw(p, n) {
			keys = append(keys, k)
		}
	}
	slices.SortFunc(keys, func(a, b common.Hash) int {
		return bytes.Compare(a[:], b[:])
	})
	return keys
}
