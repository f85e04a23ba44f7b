// Copyright (c) 2025 BVK Chaitanya

package gobs

// Legacy per-field keys written by older releases. Values are plain strings,
// not gob encoded. They are only read during migration and never written.
const (
	// Json array of hex addresses.
	LegacyCollateralFilterKey = "/legacy/collateral-filter"
	LegacyOracleFilterKey     = "/legacy/oracle-filter"

	// "true" or "false".
	LegacyIncludeUnknownTokensKey  = "/legacy/include-unknown-tokens"
	LegacyIncludeUnknownOraclesKey = "/legacy/include-unknown-oracle"

	// Decimal column index; see LegacySortColumns.
	LegacySortColumnKey = "/legacy/sort-column"

	// "1" for ascending and "-1" for descending.
	LegacySortDirectionKey = "/legacy/sort-direction"

	// Decimal integer.
	LegacyEntriesPerPageKey = "/legacy/entries-per-page"
)

var LegacyKeys = []string{
	LegacyCollateralFilterKey,
	LegacyOracleFilterKey,
	LegacyIncludeUnknownTokensKey,
	LegacyIncludeUnknownOraclesKey,
	LegacySortColumnKey,
	LegacySortDirectionKey,
	LegacyEntriesPerPageKey,
}

// LegacySortColumns maps legacy column indices to sort key names.
var LegacySortColumns = []string{
	0: "collateral",
	1: "loan",
	2: "lltv",
	3: "supply-rate",
	4: "borrow-rate",
	5: "total-supply",
	6: "total-borrow",
	7: "liquidity",
	8: "trusted-vaults",
}
