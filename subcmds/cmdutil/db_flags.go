// Copyright (c) 2023 BVK Chaitanya

package cmdutil

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"path"
	"path/filepath"

	"github.com/bvk/marketbrowser/subcmds/defaults"
	"github.com/bvkgo/kv"
	"github.com/bvkgo/kv/kvmemdb"
	"github.com/bvkgo/kvbadger"
	"github.com/dgraph-io/badger/v4"
	"github.com/nightlyone/lockfile"
)

type DBFlags struct {
	dataDir string

	memory bool
}

func (f *DBFlags) SetFlags(fset *flag.FlagSet) {
	fset.StringVar(&f.dataDir, "data-dir", defaults.DataDir(), "Path to the database directory")
	fset.BoolVar(&f.memory, "memory", false, "when true, uses an empty in-memory database")
}

func isGoodKey(k string) bool {
	return path.IsAbs(k) && k == path.Clean(k)
}

// GetDatabase opens the database in the data directory. The directory is
// locked until the closer is called, so only one command uses it at a time.
func (f *DBFlags) GetDatabase(ctx context.Context) (db kv.Database, closer func(), status error) {
	if f.memory || len(f.dataDir) == 0 {
		return kvmemdb.New(), func() {}, nil
	}

	if err := os.MkdirAll(f.dataDir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("could not create data directory %q: %w", f.dataDir, err)
	}
	dataDir, err := filepath.Abs(f.dataDir)
	if err != nil {
		return nil, nil, fmt.Errorf("could not determine data-dir %q absolute path: %w", f.dataDir, err)
	}

	lockPath := filepath.Join(dataDir, "marketbrowser.lock")
	flock, err := lockfile.New(lockPath)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create lock file %q: %w", lockPath, err)
	}
	if err := flock.TryLock(); err != nil {
		return nil, nil, fmt.Errorf("could not get lock on file %q: %w", lockPath, err)
	}

	bopts := badger.DefaultOptions(dataDir)
	bdb, err := badger.Open(bopts)
	if err != nil {
		flock.Unlock()
		return nil, nil, fmt.Errorf("could not open the database: %w", err)
	}

	closer = func() {
		if err := bdb.Close(); err != nil {
			log.Printf("could not close the database (ignored): %v", err)
		}
		flock.Unlock()
	}
	return kvbadger.New(bdb, isGoodKey), closer, nil
}
