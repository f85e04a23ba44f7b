// Copyright (c) 2025 BVK Chaitanya

package market

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/shopspring/decimal"
)

// Amount is an integer quantity scaled by a power of ten. The represented
// value is Value * 10^-Decimals. A nil Value is a malformed amount.
type Amount struct {
	Value    *big.Int
	Decimals int32
}

// NewAmount returns an amount for the integer value v with the given number of
// decimals.
func NewAmount(v int64, decimals int32) Amount {
	return Amount{Value: big.NewInt(v), Decimals: decimals}
}

// ParseAmount parses a base-10 integer string into an amount.
func ParseAmount(s string, decimals int32) (Amount, bool) {
	v, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return Amount{}, false
	}
	return Amount{Value: v, Decimals: decimals}, true
}

func (a Amount) IsValid() bool {
	return a.Value != nil
}

// Decimal returns the exact decimal value of the amount. Invalid amounts are
// treated as zero.
func (a Amount) Decimal() decimal.Decimal {
	if a.Value == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(a.Value, -a.Decimals)
}

// Cmp compares two amounts numerically, so 1000e-3 and 1e0 are equal.
func (a Amount) Cmp(b Amount) int {
	return a.Decimal().Cmp(b.Decimal())
}

// Equal returns true if both amounts have the same validity and value.
func (a Amount) Equal(b Amount) bool {
	if a.IsValid() != b.IsValid() {
		return false
	}
	return a.Cmp(b) == 0
}

type Asset struct {
	Address  common.Address
	Symbol   string
	Decimals int32
}

type OracleRef struct {
	Address common.Address

	// Whitelisted is the trust flag reported by the market data source.
	Whitelisted bool
}

// Market is one lending market as received from the market-list source. The
// core never modifies Market values.
type Market struct {
	Key common.Hash

	Collateral Asset
	Loan       Asset
	Oracle     OracleRef

	// LLTV and rates are 1e18 scaled fractions.
	LLTV       Amount
	SupplyRate Amount
	BorrowRate Amount

	TotalSupply Amount
	TotalBorrow Amount
	Liquidity   Amount

	// Vaults holds the addresses of vaults supplying into the market.
	Vaults []common.Address
}

func (m *Market) String() string {
	return "market:" + m.Key.Hex()
}

// Utilization returns TotalBorrow / TotalSupply. Markets without supply have
// zero utilization.
func (m *Market) Utilization() decimal.Decimal {
	supply := m.TotalSupply.Decimal()
	if supply.IsZero() {
		return decimal.Zero
	}
	return m.TotalBorrow.Decimal().DivRound(supply, 18)
}
