// Copyright (c) 2025 BVK Chaitanya

package cmdutil

import (
	"errors"
	"os"
	"testing"

	"github.com/ethereum/go-ethereum/common"
)

func TestParseAddresses(t *testing.T) {
	addrs, err := ParseAddresses(" 0x1111111111111111111111111111111111111111, ,0x2222222222222222222222222222222222222222")
	if err != nil {
		t.Fatal(err)
	}
	if len(addrs) != 2 || addrs[1] != common.HexToAddress("0x2222222222222222222222222222222222222222") {
		t.Fatalf("unexpected addresses %v", addrs)
	}
	if addrs, err := ParseAddresses(""); err != nil || len(addrs) != 0 {
		t.Fatalf("want no addresses, got %v, %v", addrs, err)
	}
	if _, err := ParseAddresses("0x1234"); !errors.Is(err, os.ErrInvalid) {
		t.Fatalf("want os.ErrInvalid, got %v", err)
	}
}

func TestParseKeys(t *testing.T) {
	const key = "0x0000000000000000000000000000000000000000000000000000000000000001"
	keys, err := ParseKeys(key)
	if err != nil {
		t.Fatal(err)
	}
	if len(keys) != 1 || keys[0] != common.HexToHash(key) {
		t.Fatalf("unexpected keys %v", keys)
	}
	for _, bad := range []string{"0x01", "1", "0xzz00000000000000000000000000000000000000000000000000000000000001"} {
		if _, err := ParseKeys(bad); !errors.Is(err, os.ErrInvalid) {
			t.Fatalf("%q: want os.ErrInvalid, got %v", bad, err)
		}
	}
}
