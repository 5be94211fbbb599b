// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"

	"github.com/fogpack/fogpack/lib/types"
)

// binaryPrefix marks strings in definition files that should become
// binary values (JSON and YAML have no native binary type).
const binaryPrefix = "base64:"

func parseJSONCDefinition(data []byte) (any, error) {
	decoder := json.NewDecoder(bytes.NewReader(jsonc.ToJSON(data)))
	decoder.UseNumber()
	var value any
	if err := decoder.Decode(&value); err != nil {
		return nil, err
	}
	return value, nil
}

func parseYAMLDefinition(data []byte) (any, error) {
	var value any
	if err := yaml.Unmarshal(data, &value); err != nil {
		return nil, err
	}
	return value, nil
}

func definitionToMap(value any) (*types.Map, error) {
	converted, err := toValue(value)
	if err != nil {
		return nil, err
	}
	m, ok := converted.AsMap()
	if !ok {
		return nil, fmt.Errorf("schema definition must be a map at the top level")
	}
	return m, nil
}

// toValue maps a decoded JSON/YAML structure onto the fogpack value
// model: objects become maps, arrays become arrays, integers become
// Int, other numbers become F64, and "base64:" strings become binary.
func toValue(v any) (types.Value, error) {
	switch x := v.(type) {
	case nil:
		return types.NewNull(), nil
	case bool:
		return types.NewBool(x), nil
	case string:
		if strings.HasPrefix(x, binaryPrefix) {
			raw, err := base64.StdEncoding.DecodeString(x[len(binaryPrefix):])
			if err != nil {
				return types.Value{}, fmt.Errorf("bad base64 value: %w", err)
			}
			return types.NewBin(raw), nil
		}
		return types.NewStr(x)
	case json.Number:
		if i, err := x.Int64(); err == nil {
			return types.NewI64(i), nil
		}
		f, err := x.Float64()
		if err != nil {
			return types.Value{}, fmt.Errorf("bad number %q", x.String())
		}
		return types.NewF64(f), nil
	case int:
		return types.NewI64(int64(x)), nil
	case int64:
		return types.NewI64(x), nil
	case uint64:
		return types.NewU64(x), nil
	case float64:
		return types.NewF64(x), nil
	case []any:
		elems := make([]types.Value, 0, len(x))
		for _, item := range x {
			converted, err := toValue(item)
			if err != nil {
				return types.Value{}, err
			}
			elems = append(elems, converted)
		}
		return types.NewArray(elems), nil
	case map[string]any:
		keys := make([]string, 0, len(x))
		for key := range x {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		m := types.NewMap()
		for _, key := range keys {
			converted, err := toValue(x[key])
			if err != nil {
				return types.Value{}, err
			}
			if err := m.Set(key, converted); err != nil {
				return types.Value{}, err
			}
		}
		return types.NewMapValue(m), nil
	default:
		return types.Value{}, fmt.Errorf("unsupported definition value of type %T", v)
	}
}
