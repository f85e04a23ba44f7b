// Copyright (c) 2025 BVK Chaitanya

package pipeline

import (
	"sync"

	"github.com/bvk/marketbrowser/market"
	"github.com/bvk/marketbrowser/store"
)

// Memo caches the most recent result of each derivation and recomputes it
// only when an input changes. Market lists are compared by identity (same
// backing array and length), so callers must replace the list instead of
// modifying it in place. Registry contents are assumed to be stable; callers
// must Invalidate after adding registry entries.
type Memo struct {
	mu sync.Mutex

	reg market.Registry

	facets struct {
		ok      bool
		markets []*market.Market
		value   *FacetSet
	}

	visible struct {
		ok      bool
		markets []*market.Market
		filter  store.Filter
		sort    store.Sort
		value   []*market.Market
	}

	page struct {
		ok    bool
		list  []*market.Market
		p     store.Pagination
		value *Page
	}

	hits, misses int
}

func NewMemo(reg market.Registry) *Memo {
	return &Memo{reg: reg}
}

func sameList[T any](a, b []T) bool {
	return len(a) == len(b) && (len(a) == 0 || &a[0] == &b[0])
}

// Invalidate drops all cached results.
func (m *Memo) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.facets.ok = false
	m.visible.ok = false
	m.page.ok = false
}

// Stats returns the number of cache hits and misses so far.
func (m *Memo) Stats() (hits, misses int) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.hits, m.misses
}

func (m *Memo) Facets(markets []*market.Market) *FacetSet {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.facets.ok && sameList(m.facets.markets, markets) {
		m.hits++
		return m.facets.value
	}
	m.misses++
	m.facets.ok = true
	m.facets.markets = markets
	m.facets.value = Facets(markets, m.reg)
	return m.facets.value
}

// FilterSort returns the cached filtered and sorted list. The filter is
// cloned so later changes by the caller do not affect the cache key.
func (m *Memo) FilterSort(markets []*market.Market, f store.Filter, s store.Sort) []*market.Market {
	m.mu.Lock()
	defer m.mu.Unlock()

	v := &m.visible
	if v.ok && sameList(v.markets, markets) && v.filter.Equal(f) && v.sort == s {
		m.hits++
		return v.value
	}
	m.misses++
	v.ok = true
	v.markets = markets
	v.filter = f.Clone()
	v.sort = s
	v.value = FilterSort(markets, m.reg, f, s)
	return v.value
}

func (m *Memo) Paginate(list []*market.Market, p store.Pagination) *Page {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.page.ok && sameList(m.page.list, list) && m.page.p == p {
		m.hits++
		return m.page.value
	}
	m.misses++
	m.page.ok = true
	m.page.list = list
	m.page.p = p
	m.page.value = Paginate(list, p)
	return m.page.value
}
