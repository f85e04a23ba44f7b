// Copyright (c) 2023 BVK Chaitanya

package db

import (
	"encoding/gob"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/bvk/marketbrowser/gobs"
)

func TypeNameValue(typename string) (any, error) {
	var v any
	switch typename {
	case "TableState":
		v = new(gobs.TableState)
	default:
		return nil, fmt.Errorf("unsupported type name %q: %w", typename, os.ErrInvalid)
	}
	return v, nil
}

// formatValue returns the value as JSON when a type name is given, or as raw
// text otherwise. Legacy keys hold raw text values.
func formatValue(r io.Reader, typename string) (string, error) {
	if len(typename) == 0 {
		data, err := io.ReadAll(r)
		if err != nil {
			return "", err
		}
		return string(data), nil
	}
	value, err := TypeNameValue(typename)
	if err != nil {
		return "", err
	}
	if err := gob.NewDecoder(r).Decode(value); err != nil {
		return "", fmt.Errorf("could not gob-decode value as %s: %w", typename, err)
	}
	data, err := json.Marshal(value)
	if err != nil {
		return "", err
	}
	return string(data), nil
}
