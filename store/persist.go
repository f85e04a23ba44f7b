// Copyright (c) 2025 BVK Chaitanya

package store

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/bvk/marketbrowser/ctxutil"
	"github.com/bvk/marketbrowser/gobs"
	"github.com/bvk/marketbrowser/kvutil"
	"github.com/bvk/marketbrowser/paging"
	"github.com/bvkgo/kv"
	"github.com/ethereum/go-ethereum/common"
)

func toGobs(f Filter, s Sort, p Pagination) *gobs.TableState {
	v := &gobs.TableStateV1{
		Filter: gobs.FilterState{
			IncludeUnknownTokens:  f.IncludeUnknownTokens,
			IncludeUnknownOracles: f.IncludeUnknownOracles,
		},
		Sort: gobs.SortState{
			Key:        s.Key.String(),
			Descending: s.Descending,
		},
		Pagination: gobs.PaginationState{
			EntriesPerPage: p.EntriesPerPage,
			Page:           p.Page,
		},
	}
	for _, a := range f.Collaterals.Sorted() {
		v.Filter.Collaterals = append(v.Filter.Collaterals, a.Hex())
	}
	for _, a := range f.Oracles.Sorted() {
		v.Filter.Oracles = append(v.Filter.Oracles, a.Hex())
	}
	return &gobs.TableState{V1: v}
}

func parseAddresses(hexes []string) (AddressSet, error) {
	set := make(AddressSet, len(hexes))
	for _, h := range hexes {
		if !common.IsHexAddress(h) {
			return nil, fmt.Errorf("invalid address %q: %w", h, os.ErrInvalid)
		}
		set[common.HexToAddress(h)] = struct{}{}
	}
	return set, nil
}

// fromGobs validates a persisted state. Any invalid field makes the whole
// state invalid.
func fromGobs(state *gobs.TableState) (Filter, Sort, Pagination, error) {
	var (
		f Filter
		s Sort
		p Pagination
	)
	if state == nil {
		return f, s, p, fmt.Errorf("nil table state: %w", os.ErrInvalid)
	}
	v := state.V1
	if v == nil {
		return f, s, p, fmt.Errorf("table state has no known version: %w", os.ErrInvalid)
	}

	collaterals, err := parseAddresses(v.Filter.Collaterals)
	if err != nil {
		return f, s, p, fmt.Errorf("collateral filter: %w", err)
	}
	oracles, err := parseAddresses(v.Filter.Oracles)
	if err != nil {
		return f, s, p, fmt.Errorf("oracle filter: %w", err)
	}
	f = Filter{
		Collaterals:           collaterals,
		Oracles:               oracles,
		IncludeUnknownTokens:  v.Filter.IncludeUnknownTokens,
		IncludeUnknownOracles: v.Filter.IncludeUnknownOracles,
	}

	key, err := ParseSortKey(v.Sort.Key)
	if err != nil {
		return f, s, p, err
	}
	s = Sort{Key: key, Descending: v.Sort.Descending}

	if !paging.IsAllowedSize(v.Pagination.EntriesPerPage) {
		return f, s, p, fmt.Errorf("page size %d is not allowed: %w", v.Pagination.EntriesPerPage, os.ErrInvalid)
	}
	if v.Pagination.Page < 0 {
		return f, s, p, fmt.Errorf("page index %d is negative: %w", v.Pagination.Page, os.ErrInvalid)
	}
	p = Pagination{EntriesPerPage: v.Pagination.EntriesPerPage, Page: v.Pagination.Page}
	return f, s, p, nil
}

// writer saves table states to the database in a background goroutine. Only
// the latest pending state is kept; a state is always taken and written while
// holding writeMu, so an older state never overwrites a newer one.
type writer struct {
	db  kv.Database
	key string

	cg     ctxutil.CloseGroup
	kickCh chan struct{}

	writeMu sync.Mutex

	mu      sync.Mutex
	pending *gobs.TableState

	// err is the first write error. No writes are attempted after it.
	err error
}

func newWriter(db kv.Database, key string) *writer {
	w := &writer{
		db:     db,
		key:    key,
		kickCh: make(chan struct{}, 1),
	}
	w.cg.Go(w.goLoop)
	return w
}

func (w *writer) goLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.kickCh:
			w.flush(context.WithoutCancel(ctx))
		}
	}
}

func (w *writer) enqueue(state *gobs.TableState) {
	w.mu.Lock()
	w.pending = state
	w.mu.Unlock()

	if w.cg.Context().Err() != nil {
		// Closed; nobody is left to write in the background.
		w.flush(context.Background())
		return
	}
	select {
	case w.kickCh <- struct{}{}:
	default:
	}
}

func (w *writer) isFailed() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err != nil
}

// flush writes the pending state, if any. After the first write failure all
// further writes are skipped and the store keeps working in memory.
func (w *writer) flush(ctx context.Context) error {
	w.writeMu.Lock()
	defer w.writeMu.Unlock()

	w.mu.Lock()
	state, werr := w.pending, w.err
	w.pending = nil
	w.mu.Unlock()

	if werr != nil {
		return werr
	}
	if state == nil {
		return nil
	}
	if err := kvutil.SetDB(ctx, w.db, w.key, state); err != nil {
		err = fmt.Errorf("could not save table state: %w", err)
		w.mu.Lock()
		w.err = err
		w.mu.Unlock()
		slog.Warn("could not save table state (continuing in memory)", "key", w.key, "err", err)
		return err
	}
	return nil
}

func (w *writer) close() error {
	w.cg.Close()
	return w.flush(context.Background())
}
