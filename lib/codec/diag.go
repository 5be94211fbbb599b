// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"

	"github.com/fogpack/fogpack/lib/types"
)

// Diagnose strictly decodes data and returns a human-readable
// diagnostic rendering of the value. Use this to inspect encoded
// documents without mapping them onto host types.
func Diagnose(data []byte) (string, error) {
	v, err := Decode(data)
	if err != nil {
		return "", err
	}
	var sb strings.Builder
	writeDiag(&sb, v)
	return sb.String(), nil
}

// DiagnoseValue renders an already-decoded value.
func DiagnoseValue(v types.Value) string {
	var sb strings.Builder
	writeDiag(&sb, v)
	return sb.String()
}

func writeDiag(sb *strings.Builder, v types.Value) {
	switch v.Kind() {
	case types.KindNull:
		sb.WriteString("null")
	case types.KindBool:
		b, _ := v.AsBool()
		sb.WriteString(strconv.FormatBool(b))
	case types.KindInt:
		i, _ := v.AsInt()
		sb.WriteString(i.String())
	case types.KindF32:
		f, _ := v.AsF32()
		fmt.Fprintf(sb, "%s_f32", strconv.FormatFloat(float64(f), 'g', -1, 32))
	case types.KindF64:
		f, _ := v.AsF64()
		sb.WriteString(strconv.FormatFloat(f, 'g', -1, 64))
	case types.KindStr:
		s, _ := v.AsStr()
		sb.WriteString(strconv.Quote(s))
	case types.KindBin:
		b, _ := v.AsBin()
		fmt.Fprintf(sb, "h'%s'", hex.EncodeToString(b))
	case types.KindArray:
		arr, _ := v.AsArray()
		sb.WriteByte('[')
		for i, elem := range arr {
			if i > 0 {
				sb.WriteString(", ")
			}
			writeDiag(sb, elem)
		}
		sb.WriteByte(']')
	case types.KindMap:
		m, _ := v.AsMap()
		sb.WriteByte('{')
		for i := 0; i < m.Len(); i++ {
			if i > 0 {
				sb.WriteString(", ")
			}
			key, val := m.At(i)
			sb.WriteString(strconv.Quote(key))
			sb.WriteString(": ")
			writeDiag(sb, val)
		}
		sb.WriteByte('}')
	case types.KindHash:
		h, _ := v.AsHash()
		fmt.Fprintf(sb, "hash(%s)", h)
	case types.KindIdentity:
		id, _ := v.AsIdentity()
		fmt.Fprintf(sb, "identity(%s)", id)
	case types.KindLockbox:
		l, _ := v.AsLockbox()
		fmt.Fprintf(sb, "lockbox(%d bytes)", l.Size())
	case types.KindTime:
		t, _ := v.AsTime()
		fmt.Fprintf(sb, "time(%s)", t)
	}
}
