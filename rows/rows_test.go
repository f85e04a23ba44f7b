// Copyright (c) 2025 BVK Chaitanya

package rows

import (
	"math/big"
	"slices"
	"testing"

	"github.com/bvk/marketbrowser/market"
	"github.com/bvk/marketbrowser/store"
	"github.com/ethereum/go-ethereum/common"
)

func newMarket(id int64, supply int64) *market.Market {
	return &market.Market{
		Key:         common.BigToHash(big.NewInt(id)),
		Oracle:      market.OracleRef{Whitelisted: true},
		TotalSupply: market.NewAmount(supply, 6),
		TotalBorrow: market.NewAmount(supply/4, 6),
		Liquidity:   market.NewAmount(supply-supply/4, 6),
		SupplyRate:  market.NewAmount(3e16, 18),
		BorrowRate:  market.NewAmount(5e16, 18),
	}
}

func TestUnrelatedChange(t *testing.T) {
	a, b := newMarket(1, 1000), newMarket(2, 2000)
	prev := CaptureAll(nil, []*market.Market{a, b}, nil, false)

	changed := *b
	changed.TotalSupply = market.NewAmount(9999, 6)
	next := CaptureAll(nil, []*market.Market{a, &changed}, nil, false)

	if NeedsRedraw(prev[a.Key], next[a.Key]) {
		t.Fatalf("unaffected row must not be redrawn")
	}
	if !NeedsRedraw(prev[b.Key], next[b.Key]) {
		t.Fatalf("changed row must be redrawn")
	}
	if got := Diff(prev, next); !slices.Equal(got, []common.Hash{b.Key}) {
		t.Fatalf("want only %s, got %v", b.Key, got)
	}
}

func TestNumericEquality(t *testing.T) {
	m := newMarket(1, 1000)
	prev := Capture(nil, m, false, false)

	// Same value in a different representation.
	next := prev
	next.Supply = market.Amount{Value: big.NewInt(1000000), Decimals: 9}
	if NeedsRedraw(prev, next) {
		t.Fatalf("equal amounts with different decimals must not need a redraw")
	}

	next.Supply = market.Amount{}
	if !NeedsRedraw(prev, next) {
		t.Fatalf("a value turning malformed must need a redraw")
	}
}

func TestSelectionAndDisabled(t *testing.T) {
	m := newMarket(1, 1000)
	base := Capture(nil, m, false, false)

	cases := []struct {
		name string
		next Snapshot
	}{
		{"selected", Capture(nil, m, true, false)},
		{"disabled", Capture(nil, m, false, true)},
		{"other-key", Capture(nil, newMarket(2, 1000), false, false)},
	}
	for _, c := range cases {
		if !NeedsRedraw(base, c.next) {
			t.Fatalf("%s: want redraw", c.name)
		}
	}
	if NeedsRedraw(base, Capture(nil, m, false, false)) {
		t.Fatalf("identical snapshots must not need a redraw")
	}
}

func TestDiff(t *testing.T) {
	a, b, c := newMarket(1, 10), newMarket(2, 20), newMarket(3, 30)
	prev := CaptureAll(nil, []*market.Market{a, b}, nil, false)

	sel := store.Selection{a.Key: {}}
	next := CaptureAll(nil, []*market.Market{c, b, a}, sel, false)

	// a changed selection, c is new, b is unchanged.
	if got, want := Diff(prev, next), []common.Hash{a.Key, c.Key}; !slices.Equal(got, want) {
		t.Fatalf("want %v, got %v", want, got)
	}
	if got := Diff(next, next); len(got) != 0 {
		t.Fatalf("want no redraws, got %v", got)
	}
	if got := Diff(nil, next); len(got) != 3 {
		t.Fatalf("want every row on the first render, got %v", got)
	}
}

func TestDisplayedFields(t *testing.T) {
	vault := common.HexToAddress("0x3333333333333333333333333333333333333333")
	token := common.HexToAddress("0x4444444444444444444444444444444444444444")

	reg := new(market.StaticRegistry)
	reg.AddVault(&market.VaultInfo{Address: vault, Name: "Steakhouse"})

	m := newMarket(1, 1000)
	m.Collateral = market.Asset{Address: token, Decimals: 18}
	m.LLTV = market.NewAmount(86e16, 18)
	m.Vaults = []common.Address{vault}
	base := Capture(reg, m, false, false)

	noVaults := *m
	noVaults.Vaults = nil
	if !NeedsRedraw(base, Capture(reg, &noVaults, false, false)) {
		t.Fatalf("dropping a trusted vault must need a redraw")
	}

	lltv := *m
	lltv.LLTV = market.NewAmount(915e15, 18)
	if !NeedsRedraw(base, Capture(reg, &lltv, false, false)) {
		t.Fatalf("lltv change must need a redraw")
	}

	// Registering the collateral token changes its label and unknown flag.
	reg.AddToken(&market.TokenInfo{Address: token, Symbol: "WETH"})
	next := Capture(reg, m, false, false)
	if next.UnknownCollateral || next.Collateral != "WETH" {
		t.Fatalf("want known WETH collateral, got %q (unknown %t)", next.Collateral, next.UnknownCollateral)
	}
	if !NeedsRedraw(base, next) {
		t.Fatalf("registry change must need a redraw")
	}
}
