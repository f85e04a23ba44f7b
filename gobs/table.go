// Copyright (c) 2025 BVK Chaitanya

package gobs

// TableStateKey is the unified database key for the persisted table state.
const TableStateKey = "/marketbrowser/table-state"

// TableState is the versioned envelope for persisted table state. Exactly one
// version pointer is non-nil.
type TableState struct {
	V1 *TableStateV1
}

type TableStateV1 struct {
	Filter     FilterState
	Sort       SortState
	Pagination PaginationState
}

type FilterState struct {
	// Collaterals and Oracles hold hex encoded addresses.
	Collaterals []string
	Oracles     []string

	IncludeUnknownTokens  bool
	IncludeUnknownOracles bool
}

type SortState struct {
	// Key is the sort key name, e.g. "total-supply".
	Key        string
	Descending bool
}

type PaginationState struct {
	EntriesPerPage int
	Page           int
}
