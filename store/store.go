// Copyright (c) 2025 BVK Chaitanya

// Package store implements the table state container. A Store holds the
// filter, sort, pagination and selection slices of one table instance.
// Filter, sort and pagination are saved to a kv.Database under one key;
// selection lives only as long as the Store.
//
// Every write touches one slice (a filter change also resets the page) and
// is applied under a single lock, so readers and subscribers never observe a
// partial update. Subscribers receive values of only the slice they
// subscribed to.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/bvk/marketbrowser/gobs"
	"github.com/bvk/marketbrowser/kvutil"
	"github.com/bvk/marketbrowser/paging"
	"github.com/bvkgo/kv"
	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/visvasity/topic"
)

type Options struct {
	// Key is the database key for the persisted state. Defaults to
	// gobs.TableStateKey.
	Key string

	// NoMigrate when true skips probing legacy keys on startup.
	NoMigrate bool
}

func (v *Options) setDefaults() {
	if len(v.Key) == 0 {
		v.Key = gobs.TableStateKey
	}
}

type Store struct {
	id   uuid.UUID
	opts Options

	writer *writer

	mu sync.Mutex

	filter     Filter
	sort       Sort
	pagination Pagination
	selection  Selection

	versions [numSlices]uint64

	filterTopic     *topic.Topic[Filter]
	sortTopic       *topic.Topic[Sort]
	paginationTopic *topic.Topic[Pagination]
	selectionTopic  *topic.Topic[Selection]
}

// New creates a store with state loaded from the database. A nil database
// keeps the state only in memory. Database errors are never fatal: the store
// logs them and continues with default state.
func New(ctx context.Context, db kv.Database, opts *Options) (*Store, error) {
	if opts == nil {
		opts = new(Options)
	}
	s := &Store{
		id:              uuid.New(),
		opts:            *opts,
		filter:          DefaultFilter(),
		sort:            DefaultSort(),
		pagination:      DefaultPagination(),
		selection:       Selection{},
		filterTopic:     topic.New[Filter](),
		sortTopic:       topic.New[Sort](),
		paginationTopic: topic.New[Pagination](),
		selectionTopic:  topic.New[Selection](),
	}
	s.opts.setDefaults()

	if db != nil {
		if err := s.load(ctx, db); err != nil {
			slog.Warn("could not load table state (using defaults)", "store", s.id, "key", s.opts.Key, "err", err)
		}
		s.writer = newWriter(db, s.opts.Key)
	}

	s.filterTopic.Send(s.filter.Clone())
	s.sortTopic.Send(s.sort)
	s.paginationTopic.Send(s.pagination)
	s.selectionTopic.Send(s.selection.Clone())
	return s, nil
}

func (s *Store) load(ctx context.Context, db kv.Database) error {
	var state *gobs.TableState
	var result MigrateResult
	if s.opts.NoMigrate {
		err := kv.WithReader(ctx, db, func(ctx context.Context, r kv.Reader) error {
			v, err := Load(ctx, r, s.opts.Key)
			state = v
			return err
		})
		if err != nil {
			return err
		}
	} else {
		err := kv.WithReadWriter(ctx, db, func(ctx context.Context, rw kv.ReadWriter) (err error) {
			state, result, err = Migrate(ctx, rw, s.opts.Key, false /* dryRun */)
			return err
		})
		if err != nil {
			return err
		}
		if result == Migrated {
			slog.Info("migrated legacy table state", "store", s.id, "key", s.opts.Key)
		}
	}

	f, so, p, err := fromGobs(state)
	if err != nil {
		return err
	}
	s.filter, s.sort, s.pagination = f, so, p
	return nil
}

// Load reads the table state at key without consulting legacy keys. Missing
// or invalid state yields the defaults.
func Load(ctx context.Context, r kv.Getter, key string) (*gobs.TableState, error) {
	state, err := kvutil.Get[gobs.TableState](ctx, r, key)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			slog.Warn("could not read table state (treated as missing)", "key", key, "err", err)
		}
		return toGobs(DefaultFilter(), DefaultSort(), DefaultPagination()), nil
	}
	if _, _, _, err := fromGobs(state); err != nil {
		slog.Warn("ignoring invalid table state", "key", key, "err", err)
		return toGobs(DefaultFilter(), DefaultSort(), DefaultPagination()), nil
	}
	return state, nil
}

// ID returns a unique id for the store instance, used in log messages.
func (s *Store) ID() uuid.UUID {
	return s.id
}

// Close saves any pending state and stops the background writer. The store
// remains usable afterwards, but each write is then saved synchronously.
// Close returns the write error that stopped persistence, if any.
func (s *Store) Close() error {
	if s.writer == nil {
		return nil
	}
	return s.writer.close()
}

// Flush waits until the latest state is written to the database.
func (s *Store) Flush(ctx context.Context) error {
	if s.writer == nil {
		return nil
	}
	return s.writer.flush(ctx)
}

// Persistent returns true if state changes are being saved to a database.
// It turns false after the first write failure.
func (s *Store) Persistent() bool {
	return s.writer != nil && !s.writer.isFailed()
}

// saveLocked enqueues the persisted slices for the writer. Must be called
// with the lock held so that states are enqueued in mutation order.
func (s *Store) saveLocked() {
	if s.writer == nil {
		return
	}
	s.writer.enqueue(toGobs(s.filter, s.sort, s.pagination))
}

func (s *Store) Filter() Filter {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.filter.Clone()
}

func (s *Store) Sort() Sort {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sort
}

func (s *Store) Pagination() Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pagination
}

func (s *Store) Selection() Selection {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Clone()
}

func (s *Store) IsSelected(key common.Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.selection.Has(key)
}

// Snapshot returns a consistent copy of all slices.
func (s *Store) Snapshot() *State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return &State{
		Filter:     s.filter.Clone(),
		Sort:       s.sort,
		Pagination: s.pagination,
		Selection:  s.selection.Clone(),
	}
}

// Version returns a counter that changes every time the slice changes.
func (s *Store) Version(slice Slice) uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	if slice < 0 || slice >= numSlices {
		return 0
	}
	return s.versions[slice]
}

// SubscribeFilter returns a receiver for filter changes. Receivers start with
// the current value and only keep the latest unreceived value.
func (s *Store) SubscribeFilter() (*topic.Receiver[Filter], error) {
	return topic.Subscribe(s.filterTopic, 1, true /* includeRecent */)
}

func (s *Store) SubscribeSort() (*topic.Receiver[Sort], error) {
	return topic.Subscribe(s.sortTopic, 1, true /* includeRecent */)
}

func (s *Store) SubscribePagination() (*topic.Receiver[Pagination], error) {
	return topic.Subscribe(s.paginationTopic, 1, true /* includeRecent */)
}

func (s *Store) SubscribeSelection() (*topic.Receiver[Selection], error) {
	return topic.Subscribe(s.selectionTopic, 1, true /* includeRecent */)
}

func (s *Store) setFilterLocked(f Filter) {
	if f.Collaterals == nil {
		f.Collaterals = AddressSet{}
	}
	if f.Oracles == nil {
		f.Oracles = AddressSet{}
	}
	if f.Equal(s.filter) {
		return
	}
	s.filter = f
	s.versions[FilterSlice]++
	s.filterTopic.Send(f.Clone())

	// A filter change can shrink the list; restart from the first page.
	if s.pagination.Page != 0 {
		s.pagination.Page = 0
		s.versions[PaginationSlice]++
		s.paginationTopic.Send(s.pagination)
	}
	s.saveLocked()
}

// UpdateFilter applies fn to a copy of the current filter and stores the
// result as one update.
func (s *Store) UpdateFilter(fn func(f *Filter)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f := s.filter.Clone()
	fn(&f)
	s.setFilterLocked(f)
}

func (s *Store) SetCollaterals(addrs ...common.Address) {
	s.UpdateFilter(func(f *Filter) { f.Collaterals = NewAddressSet(addrs...) })
}

// ToggleCollateral adds or removes a collateral token from the filter.
func (s *Store) ToggleCollateral(addr common.Address) {
	s.UpdateFilter(func(f *Filter) {
		if f.Collaterals.Has(addr) {
			delete(f.Collaterals, addr)
		} else {
			f.Collaterals[addr] = struct{}{}
		}
	})
}

func (s *Store) SetOracles(addrs ...common.Address) {
	s.UpdateFilter(func(f *Filter) { f.Oracles = NewAddressSet(addrs...) })
}

func (s *Store) ToggleOracle(addr common.Address) {
	s.UpdateFilter(func(f *Filter) {
		if f.Oracles.Has(addr) {
			delete(f.Oracles, addr)
		} else {
			f.Oracles[addr] = struct{}{}
		}
	})
}

func (s *Store) SetIncludeUnknownTokens(v bool) {
	s.UpdateFilter(func(f *Filter) { f.IncludeUnknownTokens = v })
}

func (s *Store) SetIncludeUnknownOracles(v bool) {
	s.UpdateFilter(func(f *Filter) { f.IncludeUnknownOracles = v })
}

func (s *Store) setSortLocked(v Sort) {
	if v == s.sort {
		return
	}
	s.sort = v
	s.versions[SortSlice]++
	s.sortTopic.Send(v)
	s.saveLocked()
}

func (s *Store) SetSort(key SortKey, descending bool) error {
	if !key.IsValid() {
		return fmt.Errorf("invalid sort key %d: %w", int(key), os.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setSortLocked(Sort{Key: key, Descending: descending})
	return nil
}

// ToggleSort behaves like clicking a column header: the active key flips its
// direction and any other key becomes active in its natural direction.
func (s *Store) ToggleSort(key SortKey) error {
	if !key.IsValid() {
		return fmt.Errorf("invalid sort key %d: %w", int(key), os.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.sort.Key == key {
		s.setSortLocked(Sort{Key: key, Descending: !s.sort.Descending})
		return nil
	}
	s.setSortLocked(Sort{Key: key, Descending: key.IsNumeric()})
	return nil
}

func (s *Store) setPaginationLocked(p Pagination) {
	if p == s.pagination {
		return
	}
	s.pagination = p
	s.versions[PaginationSlice]++
	s.paginationTopic.Send(p)
	s.saveLocked()
}

// SetEntriesPerPage changes the page size and returns to the first page.
func (s *Store) SetEntriesPerPage(n int) error {
	if !paging.IsAllowedSize(n) {
		return fmt.Errorf("page size %d is not one of %v: %w", n, paging.AllowedSizes, os.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setPaginationLocked(Pagination{EntriesPerPage: n, Page: 0})
	return nil
}

// SetPage sets the current page index. Indices past the last page are
// clamped by the pipeline and by ClampPage.
func (s *Store) SetPage(page int) error {
	if page < 0 {
		return fmt.Errorf("page index %d is negative: %w", page, os.ErrInvalid)
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setPaginationLocked(Pagination{EntriesPerPage: s.pagination.EntriesPerPage, Page: page})
	return nil
}

// ClampPage clamps the current page for a list of total items and returns
// the resulting pagination.
func (s *Store) ClampPage(total int) Pagination {
	s.mu.Lock()
	defer s.mu.Unlock()

	p := s.pagination
	p.Page = paging.Clamp(p.Page, total, p.EntriesPerPage)
	s.setPaginationLocked(p)
	return p
}

func (s *Store) publishSelectionLocked() {
	s.versions[SelectionSlice]++
	s.selectionTopic.Send(s.selection.Clone())
}

// ToggleSelection flips the selection of a market and returns true if it is
// selected afterwards.
func (s *Store) ToggleSelection(key common.Hash) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	selected := !s.selection.Has(key)
	if selected {
		s.selection[key] = struct{}{}
	} else {
		delete(s.selection, key)
	}
	s.publishSelectionLocked()
	return selected
}

func (s *Store) SelectMany(keys ...common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, k := range keys {
		if !s.selection.Has(k) {
			s.selection[k] = struct{}{}
			changed = true
		}
	}
	if changed {
		s.publishSelectionLocked()
	}
}

func (s *Store) DeselectMany(keys ...common.Hash) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, k := range keys {
		if s.selection.Has(k) {
			delete(s.selection, k)
			changed = true
		}
	}
	if changed {
		s.publishSelectionLocked()
	}
}

func (s *Store) ClearSelection() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.selection) == 0 {
		return
	}
	s.selection = Selection{}
	s.publishSelectionLocked()
}

// Reset restores defaults for the given slices, or for all slices when none
// are given.
func (s *Store) Reset(slices ...Slice) {
	if len(slices) == 0 {
		slices = []Slice{FilterSlice, SortSlice, PaginationSlice, SelectionSlice}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, slice := range slices {
		switch slice {
		case FilterSlice:
			s.setFilterLocked(DefaultFilter())
		case SortSlice:
			s.setSortLocked(DefaultSort())
		case PaginationSlice:
			s.setPaginationLocked(DefaultPagination())
		case SelectionSlice:
			if len(s.selection) != 0 {
				s.selection = Selection{}
				s.publishSelectionLocked()
			}
		}
	}
}
