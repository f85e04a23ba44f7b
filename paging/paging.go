// Copyright (c) 2025 BVK Chaitanya

// Package paging implements the page arithmetic shared by the state store and
// the table pipeline. Page indices are zero-based.
package paging

import "slices"

// AllowedSizes lists the page sizes a user can pick, in ascending order.
var AllowedSizes = []int{5, 8, 10, 15, 20, 30, 50}

const DefaultSize = 8

func IsAllowedSize(n int) bool {
	return slices.Contains(AllowedSizes, n)
}

// Count returns the number of pages needed for total items. Zero items need
// zero pages.
func Count(total, size int) int {
	if total <= 0 || size <= 0 {
		return 0
	}
	return (total + size - 1) / size
}

// Clamp limits page into [0, max(Count(total, size)-1, 0)].
func Clamp(page, total, size int) int {
	last := Count(total, size) - 1
	if page > last {
		page = last
	}
	if page < 0 {
		page = 0
	}
	return page
}

// Bounds returns the half-open item range [begin, end) for a page after
// clamping it.
func Bounds(page, total, size int) (begin, end int) {
	if size <= 0 || total <= 0 {
		return 0, 0
	}
	page = Clamp(page, total, size)
	begin = page * size
	end = min(begin+size, total)
	return begin, end
}
