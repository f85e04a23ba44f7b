// Copyright (c) 2025 BVK Chaitanya

package market

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/ethereum/go-ethereum/common"
)

// jsonAsset and the other json types define the file format accepted by the
// command-line tools. Amounts are base-10 integer strings.
type jsonAsset struct {
	Address  string `json:"address"`
	Symbol   string `json:"symbol"`
	Decimals int32  `json:"decimals"`
}

type jsonMarket struct {
	UniqueKey string `json:"uniqueKey"`

	Collateral jsonAsset `json:"collateralAsset"`
	Loan       jsonAsset `json:"loanAsset"`

	Oracle            string `json:"oracleAddress"`
	OracleWhitelisted bool   `json:"oracleWhitelisted"`

	LLTV       string `json:"lltv"`
	SupplyRate string `json:"supplyApy"`
	BorrowRate string `json:"borrowApy"`

	TotalSupply string `json:"supplyAssets"`
	TotalBorrow string `json:"borrowAssets"`
	Liquidity   string `json:"liquidityAssets"`

	Vaults []string `json:"vaults"`
}

type jsonRegistry struct {
	Tokens []struct {
		Address string `json:"address"`
		Symbol  string `json:"symbol"`
		Name    string `json:"name"`
	} `json:"tokens"`
	Oracles []struct {
		Address string `json:"address"`
		Label   string `json:"label"`
	} `json:"oracles"`
	Vaults []struct {
		Address string `json:"address"`
		Name    string `json:"name"`
		Curator string `json:"curator"`
	} `json:"vaults"`
}

func parseAddress(s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("invalid address %q: %w", s, os.ErrInvalid)
	}
	return common.HexToAddress(s), nil
}

// parseOptionalAmount returns an invalid Amount for empty or malformed
// strings, which are displayed as placeholders.
func parseOptionalAmount(s string, decimals int32) Amount {
	if a, ok := ParseAmount(s, decimals); ok {
		return a
	}
	return Amount{Decimals: decimals}
}

func (v *jsonMarket) toMarket() (*Market, error) {
	if len(v.UniqueKey) != 66 {
		return nil, fmt.Errorf("invalid market key %q: %w", v.UniqueKey, os.ErrInvalid)
	}
	collateral, err := parseAddress(v.Collateral.Address)
	if err != nil {
		return nil, fmt.Errorf("market %s: collateral: %w", v.UniqueKey, err)
	}
	loan, err := parseAddress(v.Loan.Address)
	if err != nil {
		return nil, fmt.Errorf("market %s: loan asset: %w", v.UniqueKey, err)
	}
	oracle, err := parseAddress(v.Oracle)
	if err != nil {
		return nil, fmt.Errorf("market %s: oracle: %w", v.UniqueKey, err)
	}
	m := &Market{
		Key: common.HexToHash(v.UniqueKey),
		Collateral: Asset{
			Address:  collateral,
			Symbol:   v.Collateral.Symbol,
			Decimals: v.Collateral.Decimals,
		},
		Loan: Asset{
			Address:  loan,
			Symbol:   v.Loan.Symbol,
			Decimals: v.Loan.Decimals,
		},
		Oracle: OracleRef{
			Address:     oracle,
			Whitelisted: v.OracleWhitelisted,
		},
		LLTV:        parseOptionalAmount(v.LLTV, 18),
		SupplyRate:  parseOptionalAmount(v.SupplyRate, 18),
		BorrowRate:  parseOptionalAmount(v.BorrowRate, 18),
		TotalSupply: parseOptionalAmount(v.TotalSupply, v.Loan.Decimals),
		TotalBorrow: parseOptionalAmount(v.TotalBorrow, v.Loan.Decimals),
		Liquidity:   parseOptionalAmount(v.Liquidity, v.Loan.Decimals),
	}
	for _, s := range v.Vaults {
		addr, err := parseAddress(s)
		if err != nil {
			return nil, fmt.Errorf("market %s: vault: %w", v.UniqueKey, err)
		}
		m.Vaults = append(m.Vaults, addr)
	}
	return m, nil
}

// ReadMarkets decodes a json array of markets. Markets with duplicate keys are
// rejected because rows are addressed by key.
func ReadMarkets(r io.Reader) ([]*Market, error) {
	var items []*jsonMarket
	if err := json.NewDecoder(r).Decode(&items); err != nil {
		return nil, fmt.Errorf("could not decode markets: %w", err)
	}
	seen := make(map[common.Hash]bool, len(items))
	markets := make([]*Market, 0, len(items))
	for i, item := range items {
		m, err := item.toMarket()
		if err != nil {
			return nil, fmt.Errorf("could not parse market at index %d: %w", i, err)
		}
		if seen[m.Key] {
			return nil, fmt.Errorf("duplicate market key %s: %w", m.Key.Hex(), os.ErrExist)
		}
		seen[m.Key] = true
		markets = append(markets, m)
	}
	return markets, nil
}

func ReadMarketsFile(file string) ([]*Market, error) {
	fp, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ReadMarkets(fp)
}

// ReadRegistry decodes a json registry file into a StaticRegistry.
func ReadRegistry(r io.Reader) (*StaticRegistry, error) {
	v := new(jsonRegistry)
	if err := json.NewDecoder(r).Decode(v); err != nil {
		return nil, fmt.Errorf("could not decode registry: %w", err)
	}
	reg := new(StaticRegistry)
	for _, t := range v.Tokens {
		addr, err := parseAddress(t.Address)
		if err != nil {
			return nil, fmt.Errorf("registry token: %w", err)
		}
		reg.AddToken(&TokenInfo{Address: addr, Symbol: t.Symbol, Name: t.Name})
	}
	for _, o := range v.Oracles {
		addr, err := parseAddress(o.Address)
		if err != nil {
			return nil, fmt.Errorf("registry oracle: %w", err)
		}
		reg.AddOracle(&OracleInfo{Address: addr, Label: o.Label})
	}
	for _, x := range v.Vaults {
		addr, err := parseAddress(x.Address)
		if err != nil {
			return nil, fmt.Errorf("registry vault: %w", err)
		}
		reg.AddVault(&VaultInfo{Address: addr, Name: x.Name, Curator: x.Curator})
	}
	return reg, nil
}

func ReadRegistryFile(file string) (*StaticRegistry, error) {
	fp, err := os.Open(file)
	if err != nil {
		return nil, err
	}
	defer fp.Close()
	return ReadRegistry(fp)
}
