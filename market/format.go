// Copyright (c) 2025 BVK Chaitanya

package market

import (
	"math/big"
	"strings"

	"github.com/shopspring/decimal"
)

// Placeholder is displayed for amounts that cannot be formatted.
const Placeholder = "-"

// maxDecimals bounds the exponent of amounts accepted for formatting.
const maxDecimals = 255

var suffixes = []string{"", "K", "M", "B", "T"}

var bigTen = big.NewInt(10)

// FormatAmount formats the amount with at most sig significant digits.
// Extra digits are truncated toward zero, never rounded. Values with an
// integer part of four or more digits are scaled down by thousands and
// suffixed with K, M, B or T; values beyond the T range keep the T suffix
// with a longer integer part. Sub-unit values keep sig significant digits
// after their leading zeros.
func FormatAmount(a Amount, sig int) string {
	if a.Value == nil || sig <= 0 {
		return Placeholder
	}
	if a.Decimals > maxDecimals || a.Decimals < -maxDecimals {
		return Placeholder
	}
	if a.Value.Sign() == 0 {
		return "0"
	}

	neg := a.Value.Sign() < 0
	coef := new(big.Int).Abs(a.Value)
	exp := -a.Decimals

	// Power of ten of the leading digit.
	ndigits := len(coef.String())
	lead := ndigits + int(exp) - 1

	suffix := 0
	if lead >= 3 {
		suffix = min(lead/3, len(suffixes)-1)
		exp -= int32(3 * suffix)
	}

	if drop := ndigits - sig; drop > 0 {
		coef.Quo(coef, new(big.Int).Exp(bigTen, big.NewInt(int64(drop)), nil))
		exp += int32(drop)
	}

	d := decimal.NewFromBigInt(coef, exp)
	if neg {
		d = d.Neg()
	}
	return d.String() + suffixes[suffix]
}

// FormatPercent formats a 1e18 scaled fraction as a percentage with at most
// sig significant digits.
func FormatPercent(rate Amount, sig int) string {
	if rate.Value == nil {
		return Placeholder
	}
	// Shift two places to turn a fraction into percent.
	s := FormatAmount(Amount{Value: rate.Value, Decimals: rate.Decimals - 2}, sig)
	if s == Placeholder {
		return s
	}
	return s + "%"
}

// ShortAddress returns a "0x1234…abcd" form of a hex address string.
func ShortAddress(hex string) string {
	if len(hex) <= 12 {
		return hex
	}
	var sb strings.Builder
	sb.WriteString(hex[:6])
	sb.WriteString("…")
	sb.WriteString(hex[len(hex)-4:])
	return sb.String()
}
