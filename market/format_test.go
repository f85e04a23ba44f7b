// Copyright (c) 2025 BVK Chaitanya

package market

import (
	"math/big"
	"strings"
	"testing"
)

func TestFormatAmount(t *testing.T) {
	maxUint256, _ := new(big.Int).SetString("115792089237316195423570985008687907853269984665640564039457584007913129639935", 10)

	testCases := []struct {
		value    *big.Int
		decimals int32
		sig      int
		want     string
	}{
		{big.NewInt(0), 18, 4, "0"},
		{big.NewInt(5), 0, 4, "5"},
		{big.NewInt(123456789), 2, 4, "1.234M"},
		{big.NewInt(999999), 0, 2, "990K"},
		{big.NewInt(1000), 0, 4, "1K"},
		{big.NewInt(999), 0, 4, "999"},
		{big.NewInt(123456), 9, 3, "0.000123"},
		{big.NewInt(19999), 4, 2, "1.9"},
		{big.NewInt(-123456789), 2, 4, "-1.234M"},
		{big.NewInt(5), -3, 4, "5K"},
		{big.NewInt(1_500_000_000_000), 0, 3, "1.5T"},
		{big.NewInt(1), 18, 4, "0.000000000000000001"},
		{nil, 18, 4, Placeholder},
		{big.NewInt(1), 18, 0, Placeholder},
		{big.NewInt(1), 1000, 4, Placeholder},
	}

	for i, tc := range testCases {
		got := FormatAmount(Amount{Value: tc.value, Decimals: tc.decimals}, tc.sig)
		if got != tc.want {
			t.Errorf("%d: want %q, got %q", i, tc.want, got)
		}
	}

	// Largest uint256 must format without failing.
	if s := FormatAmount(Amount{Value: maxUint256, Decimals: 0}, 6); s == Placeholder || s[len(s)-1] != 'T' {
		t.Fatalf("want a T suffixed value, got %q", s)
	}
	// Beyond the T range digits past the significant ones become zeros.
	if s := FormatAmount(Amount{Value: maxUint256, Decimals: 18}, 6); !strings.HasPrefix(s, "115792000") || !strings.HasSuffix(s, "T") {
		t.Fatalf("want 115792000...T, got %q", s)
	}
}

func TestFormatPercent(t *testing.T) {
	rate, _ := ParseAmount("45678900000000000", 18) // 0.0456789
	if s := FormatPercent(rate, 3); s != "4.56%" {
		t.Fatalf("want 4.56%%, got %q", s)
	}
	if s := FormatPercent(Amount{}, 3); s != Placeholder {
		t.Fatalf("want placeholder, got %q", s)
	}
}

func TestAmountEqual(t *testing.T) {
	a := NewAmount(1000, 3)
	b := NewAmount(1, 0)
	if !a.Equal(b) {
		t.Fatalf("want %v == %v", a, b)
	}
	if a.Equal(Amount{}) {
		t.Fatalf("valid amount must not equal an invalid amount")
	}
	if !(Amount{}).Equal(Amount{Decimals: 6}) {
		t.Fatalf("invalid amounts must be equal")
	}
}
