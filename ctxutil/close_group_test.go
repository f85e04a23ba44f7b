// Copyright (c) 2023 BVK Chaitanya

package ctxutil

import (
	"context"
	"errors"
	"os"
	"sync/atomic"
	"testing"
)

func TestCloseGroup(t *testing.T) {
	var cg CloseGroup

	var ndone atomic.Int32
	for i := 0; i < 100; i++ {
		cg.Go(func(ctx context.Context) {
			<-ctx.Done()
			ndone.Add(1)
		})
	}

	cg.Close()
	if n := ndone.Load(); n != 100 {
		t.Fatalf("want 100 goroutines done, got %d", n)
	}
	if err := context.Cause(cg.Context()); !errors.Is(err, os.ErrClosed) {
		t.Fatalf("want ErrClosed, got %v", err)
	}
}
