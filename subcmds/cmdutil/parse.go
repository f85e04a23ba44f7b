// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"fmt"
	"os"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
)

func splitList(s string) []string {
	var items []string
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); len(v) != 0 {
			items = append(items, v)
		}
	}
	return items
}

// ParseAddresses parses a comma separated list of hex addresses.
func ParseAddresses(s string) ([]common.Address, error) {
	var addrs []common.Address
	for _, v := range splitList(s) {
		if !common.IsHexAddress(v) {
			return nil, fmt.Errorf("invalid address %q: %w", v, os.ErrInvalid)
		}
		addrs = append(addrs, common.HexToAddress(v))
	}
	return addrs, nil
}

// ParseKeys parses a comma separated list of hex market keys.
func ParseKeys(s string) ([]common.Hash, error) {
	var keys []common.Hash
	for _, v := range splitList(s) {
		data, err := hexutil.Decode(v)
		if err != nil || len(data) != common.HashLength {
			return nil, fmt.Errorf("invalid market key %q: %w", v, os.ErrInvalid)
		}
		keys = append(keys, common.BytesToHash(data))
	}
	return keys, nil
}
