// Copyright (c) 2025 BVK Chaitanya

package market

import (
	"errors"
	"os"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

const marketsJSON = `[
  {
    "uniqueKey": "0x0000000000000000000000000000000000000000000000000000000000000001",
    "collateralAsset": {"address": "0x1111111111111111111111111111111111111111", "symbol": "WETH", "decimals": 18},
    "loanAsset": {"address": "0x2222222222222222222222222222222222222222", "symbol": "USDC", "decimals": 6},
    "oracleAddress": "0x3333333333333333333333333333333333333333",
    "oracleWhitelisted": true,
    "lltv": "860000000000000000",
    "supplyAssets": "1000000000",
    "borrowAssets": "250000000",
    "liquidityAssets": "750000000",
    "vaults": ["0x4444444444444444444444444444444444444444"]
  }
]`

const registryJSON = `{
  "tokens": [{"address": "0x1111111111111111111111111111111111111111", "symbol": "WETH"}],
  "oracles": [{"address": "0x3333333333333333333333333333333333333333", "label": "Chainlink"}],
  "vaults": [{"address": "0x4444444444444444444444444444444444444444", "name": "Steakhouse USDC"}]
}`

func TestReadMarkets(t *testing.T) {
	markets, err := ReadMarkets(strings.NewReader(marketsJSON))
	if err != nil {
		t.Fatal(err)
	}
	if len(markets) != 1 {
		t.Fatalf("want 1 market, got %d", len(markets))
	}
	m := markets[0]
	if s := FormatAmount(m.TotalSupply, 4); s != "1K" {
		t.Fatalf("want 1K supply, got %q", s)
	}
	if s := FormatPercent(m.LLTV, 3); s != "86%" {
		t.Fatalf("want 86%%, got %q", s)
	}
	if m.SupplyRate.IsValid() {
		t.Fatalf("missing supply rate must be an invalid amount")
	}
	if u := m.Utilization().String(); u != "0.25" {
		t.Fatalf("want 0.25 utilization, got %s", u)
	}

	reg, err := ReadRegistry(strings.NewReader(registryJSON))
	if err != nil {
		t.Fatal(err)
	}
	if IsUnknownToken(reg, m.Collateral.Address) {
		t.Fatalf("collateral token must be recognized")
	}
	if !IsUnknownToken(reg, m.Loan.Address) {
		t.Fatalf("loan token must be unrecognized")
	}
	if IsUnknownOracle(reg, m.Oracle) {
		t.Fatalf("oracle must be recognized")
	}
	if vs := TrustedVaults(reg, m); len(vs) != 1 || vs[0].Name != "Steakhouse USDC" {
		t.Fatalf("want one trusted vault, got %v", vs)
	}
	if label := OracleLabel(reg, m.Oracle); label != "Chainlink" {
		t.Fatalf("want Chainlink, got %q", label)
	}
	unknown := OracleRef{Address: common.HexToAddress("0x5555555555555555555555555555555555555555"), Whitelisted: true}
	if label := OracleLabel(reg, unknown); label != "0x5555…5555" {
		t.Fatalf("want a short address, got %q", label)
	}
}

func TestReadMarketsDuplicate(t *testing.T) {
	dup := "[" + strings.Trim(marketsJSON, "[]\n ") + "," + strings.Trim(marketsJSON, "[]\n ") + "]"
	if _, err := ReadMarkets(strings.NewReader(dup)); !errors.Is(err, os.ErrExist) {
		t.Fatalf("want ErrExist, got %v", err)
	}
}
