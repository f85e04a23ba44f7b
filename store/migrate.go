// Copyright (c) 2025 BVK Chaitanya

package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/bvk/marketbrowser/gobs"
	"github.com/bvk/marketbrowser/kvutil"
	"github.com/bvk/marketbrowser/paging"
	"github.com/bvkgo/kv"
)

type MigrateResult int

const (
	// Loaded means a valid state already existed under the unified key.
	Loaded MigrateResult = iota

	// Migrated means the state was assembled from legacy keys and written
	// under the unified key.
	Migrated

	// Defaults means neither a unified nor a legacy state was found.
	Defaults
)

func (r MigrateResult) String() string {
	switch r {
	case Loaded:
		return "loaded"
	case Migrated:
		return "migrated"
	case Defaults:
		return "defaults"
	}
	return fmt.Sprintf("migrate-result(%d)", int(r))
}

// Migrate returns the table state stored at key. When the key is missing or
// holds an invalid state, legacy per-field keys are probed; if any of them
// exist an equivalent state is written once under key. Legacy keys are never
// modified, so running Migrate again only loads the unified state.
//
// When dryRun is true nothing is written.
func Migrate(ctx context.Context, rw kv.ReadWriter, key string, dryRun bool) (*gobs.TableState, MigrateResult, error) {
	state, err := kvutil.Get[gobs.TableState](ctx, rw, key)
	if err == nil {
		_, _, _, err := fromGobs(state)
		if err == nil {
			return state, Loaded, nil
		}
		slog.Warn("ignoring invalid table state", "key", key, "err", err)
	} else if !errors.Is(err, os.ErrNotExist) {
		slog.Warn("could not read table state (treated as missing)", "key", key, "err", err)
	}

	legacy, found, err := readLegacy(ctx, rw)
	if err != nil {
		return nil, Defaults, err
	}
	if !found {
		return toGobs(DefaultFilter(), DefaultSort(), DefaultPagination()), Defaults, nil
	}
	if !dryRun {
		if err := kvutil.Set(ctx, rw, key, legacy); err != nil {
			return nil, Defaults, fmt.Errorf("could not save migrated table state: %w", err)
		}
	}
	return legacy, Migrated, nil
}

// readLegacy assembles a table state from legacy keys. Missing or malformed
// legacy values fall back to the default for that field.
func readLegacy(ctx context.Context, r kv.Getter) (*gobs.TableState, bool, error) {
	values := make(map[string]string)
	for _, k := range gobs.LegacyKeys {
		v, err := kvutil.GetString[string](ctx, r, k)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, false, fmt.Errorf("could not read legacy key %q: %w", k, err)
		}
		values[k] = strings.TrimSpace(v)
	}
	if len(values) == 0 {
		return nil, false, nil
	}

	f, s, p := DefaultFilter(), DefaultSort(), DefaultPagination()

	if v, ok := values[gobs.LegacyCollateralFilterKey]; ok {
		if set, err := parseLegacyAddresses(v); err == nil {
			f.Collaterals = set
		} else {
			slog.Warn("ignoring malformed legacy value", "key", gobs.LegacyCollateralFilterKey, "err", err)
		}
	}
	if v, ok := values[gobs.LegacyOracleFilterKey]; ok {
		if set, err := parseLegacyAddresses(v); err == nil {
			f.Oracles = set
		} else {
			slog.Warn("ignoring malformed legacy value", "key", gobs.LegacyOracleFilterKey, "err", err)
		}
	}
	if v, ok := values[gobs.LegacyIncludeUnknownTokensKey]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IncludeUnknownTokens = b
		}
	}
	if v, ok := values[gobs.LegacyIncludeUnknownOraclesKey]; ok {
		if b, err := strconv.ParseBool(v); err == nil {
			f.IncludeUnknownOracles = b
		}
	}
	if v, ok := values[gobs.LegacySortColumnKey]; ok {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 && n < len(gobs.LegacySortColumns) {
			if key, err := ParseSortKey(gobs.LegacySortColumns[n]); err == nil {
				s.Key = key
			}
		}
	}
	if v, ok := values[gobs.LegacySortDirectionKey]; ok {
		switch v {
		case "1":
			s.Descending = false
		case "-1":
			s.Descending = true
		}
	}
	if v, ok := values[gobs.LegacyEntriesPerPageKey]; ok {
		if n, err := strconv.Atoi(v); err == nil && paging.IsAllowedSize(n) {
			p.EntriesPerPage = n
		}
	}
	return toGobs(f, s, p), true, nil
}

func parseLegacyAddresses(v string) (AddressSet, error) {
	var hexes []string
	if err := json.Unmarshal([]byte(v), &hexes); err != nil {
		return nil, err
	}
	return parseAddresses(hexes)
}
