// Copyright (c) 2025 BVK Chaitanya

package store

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bvk/marketbrowser/gobs"
	"github.com/bvk/marketbrowser/kvutil"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/ethereum/go-ethereum/common"
	"github.com/visvasity/topic"
)

var (
	weth = common.HexToAddress("0x1111111111111111111111111111111111111111")
	wbtc = common.HexToAddress("0x2222222222222222222222222222222222222222")

	chainlink = common.HexToAddress("0x3333333333333333333333333333333333333333")

	m1 = common.HexToHash("0x01")
	m2 = common.HexToHash("0x02")
)

var errQuota = errors.New("quota exceeded")

// failingDB fails all read-write transactions while failWrites is set.
type failingDB struct {
	kv.Database

	failWrites atomic.Bool
}

func (d *failingDB) NewTransaction(ctx context.Context) (kv.Transaction, error) {
	if d.failWrites.Load() {
		return nil, errQuota
	}
	return d.Database.NewTransaction(ctx)
}

func TestDefaults(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, kvmemdb.New(), nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	if f := s.Filter(); !f.IsEmpty() || f.IncludeUnknownTokens || f.IncludeUnknownOracles {
		t.Fatalf("want empty filter, got %#v", f)
	}
	if v := s.Sort(); v != DefaultSort() {
		t.Fatalf("want %v, got %v", DefaultSort(), v)
	}
	if p := s.Pagination(); p != DefaultPagination() {
		t.Fatalf("want %#v, got %#v", DefaultPagination(), p)
	}
	if !s.Persistent() {
		t.Fatalf("store with a database must be persistent")
	}
}

func TestPersistence(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	s1, err := New(ctx, db, nil)
	if err != nil {
		t.Fatal(err)
	}
	s1.SetCollaterals(weth, wbtc)
	s1.SetIncludeUnknownOracles(true)
	if err := s1.SetSort(SortByLiquidity, false); err != nil {
		t.Fatal(err)
	}
	if err := s1.SetEntriesPerPage(20); err != nil {
		t.Fatal(err)
	}
	if err := s1.SetPage(3); err != nil {
		t.Fatal(err)
	}
	s1.ToggleSelection(m1)
	if err := s1.Close(); err != nil {
		t.Fatal(err)
	}

	s2, err := New(ctx, db, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()

	want := NewAddressSet(weth, wbtc)
	if f := s2.Filter(); !f.Equal(Filter{Collaterals: want, Oracles: AddressSet{}, IncludeUnknownOracles: true}) {
		t.Fatalf("unexpected filter %#v", f)
	}
	if v := s2.Sort(); v != (Sort{Key: SortByLiquidity}) {
		t.Fatalf("want liquidity asc, got %v", v)
	}
	if p := s2.Pagination(); p != (Pagination{EntriesPerPage: 20, Page: 3}) {
		t.Fatalf("want 20/3, got %#v", p)
	}
	// Selection is session scoped.
	if sel := s2.Selection(); len(sel) != 0 {
		t.Fatalf("want empty selection, got %v", sel.Keys())
	}
}

func TestFlushOrder(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	s, err := New(ctx, db, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	for _, n := range []int{5, 10, 15, 20, 30, 50, 8} {
		if err := s.SetEntriesPerPage(n); err != nil {
			t.Fatal(err)
		}
	}
	if err := s.Flush(ctx); err != nil {
		t.Fatal(err)
	}
	state, err := kvutil.GetDB[gobs.TableState](ctx, db, gobs.TableStateKey)
	if err != nil {
		t.Fatal(err)
	}
	if n := state.V1.Pagination.EntriesPerPage; n != 8 {
		t.Fatalf("want last page size 8 saved, got %d", n)
	}
}

func TestFilterResetsPage(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetPage(4); err != nil {
		t.Fatal(err)
	}
	s.ToggleOracle(chainlink)
	if p := s.Pagination(); p.Page != 0 {
		t.Fatalf("want page 0 after a filter change, got %d", p.Page)
	}
	if !s.Filter().Oracles.Has(chainlink) {
		t.Fatalf("want oracle in filter")
	}
	s.ToggleOracle(chainlink)
	if s.Filter().Oracles.Has(chainlink) {
		t.Fatalf("want oracle removed from filter")
	}
	if s.Persistent() {
		t.Fatalf("store without a database must not be persistent")
	}
}

func TestInvalidWrites(t *testing.T) {
	ctx := context.Background()

	s, err := New(ctx, nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if err := s.SetEntriesPerPage(7); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
	if err := s.SetPage(-1); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
	if err := s.SetSort(SortKey(100), true); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want ErrInvalid, got %v", err)
	}
}

func TestToggleSort(t *testing.T) {
	s, err := New(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Default is total supply descending.
	if err := s.ToggleSort(SortByTotalSupply); err != nil {
		t.Fatal(err)
	}
	if v := s.Sort(); v != (Sort{Key: SortByTotalSupply, Descending: false}) {
		t.Fatalf("want total supply asc, got %v", v)
	}
	if err := s.ToggleSort(SortByCollateral); err != nil {
		t.Fatal(err)
	}
	if v := s.Sort(); v != (Sort{Key: SortByCollateral, Descending: false}) {
		t.Fatalf("want collateral asc, got %v", v)
	}
	if err := s.ToggleSort(SortByBorrowRate); err != nil {
		t.Fatal(err)
	}
	if v := s.Sort(); v != (Sort{Key: SortByBorrowRate, Descending: true}) {
		t.Fatalf("want borrow rate desc, got %v", v)
	}
}

func TestSelectionIndependentOfFilter(t *testing.T) {
	s, err := New(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	if !s.ToggleSelection(m1) {
		t.Fatalf("want m1 selected")
	}
	s.SetCollaterals(wbtc)
	if !s.IsSelected(m1) {
		t.Fatalf("m1 must stay selected after filtering")
	}

	s.SelectMany(m1, m2)
	if n := len(s.Selection()); n != 2 {
		t.Fatalf("want 2 selected, got %d", n)
	}
	s.DeselectMany(m1)
	if s.IsSelected(m1) || !s.IsSelected(m2) {
		t.Fatalf("want only m2 selected, got %v", s.Selection().Keys())
	}
	s.ClearSelection()
	if n := len(s.Selection()); n != 0 {
		t.Fatalf("want empty selection, got %d", n)
	}
}

func TestReset(t *testing.T) {
	s, err := New(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	s.SetCollaterals(weth)
	if err := s.SetSort(SortByLLTV, false); err != nil {
		t.Fatal(err)
	}
	s.ToggleSelection(m1)

	s.Reset(SortSlice)
	if v := s.Sort(); v != DefaultSort() {
		t.Fatalf("want default sort, got %v", v)
	}
	if f := s.Filter(); f.IsEmpty() {
		t.Fatalf("filter must not be reset")
	}

	s.Reset()
	if f := s.Filter(); !f.IsEmpty() {
		t.Fatalf("want empty filter after full reset")
	}
	if s.IsSelected(m1) {
		t.Fatalf("want empty selection after full reset")
	}
}

func TestSliceVersions(t *testing.T) {
	s, err := New(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}
	pv := s.Version(PaginationSlice)
	sv := s.Version(SortSlice)

	s.SetIncludeUnknownTokens(true)
	if v := s.Version(PaginationSlice); v != pv {
		t.Fatalf("pagination version must not change on a filter change at page 0")
	}
	if v := s.Version(SortSlice); v != sv {
		t.Fatalf("sort version must not change on a filter change")
	}
	// Writing the same value is not a change.
	fv := s.Version(FilterSlice)
	s.SetIncludeUnknownTokens(true)
	if v := s.Version(FilterSlice); v != fv {
		t.Fatalf("want unchanged filter version, got %d -> %d", fv, v)
	}
}

func TestSubscriptions(t *testing.T) {
	s, err := New(context.Background(), nil, nil)
	if err != nil {
		t.Fatal(err)
	}

	pr, err := s.SubscribePagination()
	if err != nil {
		t.Fatal(err)
	}
	defer pr.Close()
	pch, err := topic.ReceiveCh(pr)
	if err != nil {
		t.Fatal(err)
	}

	fr, err := s.SubscribeFilter()
	if err != nil {
		t.Fatal(err)
	}
	defer fr.Close()
	fch, err := topic.ReceiveCh(fr)
	if err != nil {
		t.Fatal(err)
	}

	if p := <-pch; p != DefaultPagination() {
		t.Fatalf("want initial pagination, got %#v", p)
	}
	if f := <-fch; !f.IsEmpty() {
		t.Fatalf("want initial empty filter, got %#v", f)
	}

	s.SetCollaterals(weth)
	if f := <-fch; !f.Collaterals.Has(weth) {
		t.Fatalf("want weth in filter update")
	}
	select {
	case p := <-pch:
		t.Fatalf("pagination subscriber must not see filter changes, got %#v", p)
	case <-time.After(50 * time.Millisecond):
	}

	if err := s.SetPage(2); err != nil {
		t.Fatal(err)
	}
	if p := <-pch; p.Page != 2 {
		t.Fatalf("want page 2, got %d", p.Page)
	}
}

func TestWriteFailure(t *testing.T) {
	ctx := context.Background()
	db := &failingDB{Database: kvmemdb.New()}

	s, err := New(ctx, db, nil)
	if err != nil {
		t.Fatal(err)
	}

	db.failWrites.Store(true)
	s.SetCollaterals(weth)
	if err := s.Flush(ctx); !errors.Is(err, errQuota) {
		t.Fatalf("want quota error, got %v", err)
	}
	if s.Persistent() {
		t.Fatalf("store must stop persisting after a write failure")
	}
	// State keeps working in memory.
	if err := s.SetEntriesPerPage(10); err != nil {
		t.Fatal(err)
	}
	if p := s.Pagination(); p.EntriesPerPage != 10 {
		t.Fatalf("want 10, got %d", p.EntriesPerPage)
	}
	// The lost write is reported when the store is closed.
	if err := s.Close(); !errors.Is(err, errQuota) {
		t.Fatalf("want quota error from close, got %v", err)
	}
}

func TestLoadFailure(t *testing.T) {
	ctx := context.Background()
	db := &failingDB{Database: kvmemdb.New()}
	db.failWrites.Store(true)

	s, err := New(ctx, db, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if v := s.Sort(); v != DefaultSort() {
		t.Fatalf("want default sort, got %v", v)
	}
}

func TestMalformedState(t *testing.T) {
	ctx := context.Background()
	db := kvmemdb.New()

	setRaw := func(ctx context.Context, rw kv.ReadWriter) error {
		return rw.Set(ctx, gobs.TableStateKey, strings.NewReader("not a gob"))
	}
	if err := kv.WithReadWriter(ctx, db, setRaw); err != nil {
		t.Fatal(err)
	}
	s, err := New(ctx, db, nil)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()
	if p := s.Pagination(); p != DefaultPagination() {
		t.Fatalf("want default pagination, got %#v", p)
	}

	bad := &gobs.TableState{V1: &gobs.TableStateV1{
		Sort:       gobs.SortState{Key: "total-supply"},
		Pagination: gobs.PaginationState{EntriesPerPage: 7},
	}}
	if err := kvutil.SetDB(ctx, db, "/other", bad); err != nil {
		t.Fatal(err)
	}
	s2, err := New(ctx, db, &Options{Key: "/other", NoMigrate: true})
	if err != nil {
		t.Fatal(err)
	}
	defer s2.Close()
	if p := s2.Pagination(); p != DefaultPagination() {
		t.Fatalf("want default pagination for a disallowed page size, got %#v", p)
	}
}
