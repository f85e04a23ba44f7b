// Copyright (c) 2025 BVK Chaitanya

package market

import (
	"github.com/bvk/marketbrowser/syncmap"
	"github.com/ethereum/go-ethereum/common"
)

type TokenInfo struct {
	Address common.Address
	Symbol  string
	Name    string
}

type OracleInfo struct {
	Address common.Address
	Label   string
}

type VaultInfo struct {
	Address common.Address
	Name    string
	Curator string
}

// Registry is the trusted registry of tokens, oracles and vaults. Entries
// missing from the registry are considered unrecognized.
type Registry interface {
	LookupToken(addr common.Address) (*TokenInfo, bool)
	LookupOracle(addr common.Address) (*OracleInfo, bool)
	LookupVault(addr common.Address) (*VaultInfo, bool)
}

// StaticRegistry is a Registry backed by in-memory maps. It is safe for
// concurrent use, so entries can be added while tables read from it.
type StaticRegistry struct {
	tokens  syncmap.Map[common.Address, *TokenInfo]
	oracles syncmap.Map[common.Address, *OracleInfo]
	vaults  syncmap.Map[common.Address, *VaultInfo]
}

func (r *StaticRegistry) AddToken(v *TokenInfo) {
	r.tokens.Store(v.Address, v)
}

func (r *StaticRegistry) AddOracle(v *OracleInfo) {
	r.oracles.Store(v.Address, v)
}

func (r *StaticRegistry) AddVault(v *VaultInfo) {
	r.vaults.Store(v.Address, v)
}

// Size returns the number of token, oracle and vault entries.
func (r *StaticRegistry) Size() (tokens, oracles, vaults int) {
	return r.tokens.Len(), r.oracles.Len(), r.vaults.Len()
}

func (r *StaticRegistry) LookupToken(addr common.Address) (*TokenInfo, bool) {
	return r.tokens.Load(addr)
}

func (r *StaticRegistry) LookupOracle(addr common.Address) (*OracleInfo, bool) {
	return r.oracles.Load(addr)
}

func (r *StaticRegistry) LookupVault(addr common.Address) (*VaultInfo, bool) {
	return r.vaults.Load(addr)
}

// IsUnknownToken returns true if the token is absent from the registry. A nil
// registry recognizes nothing.
func IsUnknownToken(reg Registry, addr common.Address) bool {
	if reg == nil {
		return true
	}
	_, ok := reg.LookupToken(addr)
	return !ok
}

// IsUnknownOracle returns true if the market's oracle is not whitelisted or is
// absent from the registry.
func IsUnknownOracle(reg Registry, oracle OracleRef) bool {
	if !oracle.Whitelisted || reg == nil {
		return true
	}
	_, ok := reg.LookupOracle(oracle.Address)
	return !ok
}

// TrustedVaults returns registry entries for the market's supplying vaults,
// in the market's vault order. Unrecognized vaults are skipped.
func TrustedVaults(reg Registry, m *Market) []*VaultInfo {
	if reg == nil {
		return nil
	}
	var vs []*VaultInfo
	for _, addr := range m.Vaults {
		if v, ok := reg.LookupVault(addr); ok {
			vs = append(vs, v)
		}
	}
	return vs
}

// TokenLabel returns the registry symbol for a token, then the symbol
// reported by the market, then a shortened address.
func TokenLabel(reg Registry, asset Asset) string {
	if reg != nil {
		if v, ok := reg.LookupToken(asset.Address); ok && v.Symbol != "" {
			return v.Symbol
		}
	}
	if asset.Symbol != "" {
		return asset.Symbol
	}
	return ShortAddress(asset.Address.Hex())
}

func OracleLabel(reg Registry, oracle OracleRef) string {
	if reg != nil {
		if v, ok := reg.LookupOracle(oracle.Address); ok && v.Label != "" {
			return v.Label
		}
	}
	return ShortAddress(oracle.Address.Hex())
}
