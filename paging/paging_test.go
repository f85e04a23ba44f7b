// Copyright (c) 2025 BVK Chaitanya

package paging

import "testing"

func TestCount(t *testing.T) {
	testCases := []struct {
		total, size, want int
	}{
		{0, 8, 0},
		{1, 8, 1},
		{8, 8, 1},
		{9, 8, 2},
		{5, 8, 1},
		{100, 10, 10},
		{10, 0, 0},
	}
	for _, tc := range testCases {
		if got := Count(tc.total, tc.size); got != tc.want {
			t.Errorf("Count(%d, %d): want %d, got %d", tc.total, tc.size, tc.want, got)
		}
	}
}

func TestClamp(t *testing.T) {
	if got := Clamp(5, 9, 8); got != 1 {
		t.Fatalf("want 1, got %d", got)
	}
	if got := Clamp(-3, 9, 8); got != 0 {
		t.Fatalf("want 0, got %d", got)
	}
	if got := Clamp(2, 0, 8); got != 0 {
		t.Fatalf("want 0 for an empty list, got %d", got)
	}
}

func TestBoundsPartition(t *testing.T) {
	for _, size := range AllowedSizes {
		for total := 0; total < 120; total++ {
			next := 0
			for page := 0; page < Count(total, size); page++ {
				begin, end := Bounds(page, total, size)
				if begin != next {
					t.Fatalf("total %d size %d page %d: want begin %d, got %d", total, size, page, next, begin)
				}
				if page < Count(total, size)-1 && end-begin != size {
					t.Fatalf("total %d size %d page %d: want a full page, got %d items", total, size, page, end-begin)
				}
				next = end
			}
			if next != total {
				t.Fatalf("total %d size %d: pages cover %d items", total, size, next)
			}
		}
	}
}
