// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"regexp"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"

	"github.com/fogpack/fogpack/lib/types"
)

// normMode selects the Unicode normalization applied before regex
// matching.
type normMode uint8

const (
	normNone normMode = iota
	normNFC
	normNFKC
)

func (n normMode) apply(s string) string {
	switch n {
	case normNFC:
		return norm.NFC.String(s)
	case normNFKC:
		return norm.NFKC.String(s)
	}
	return s
}

// strOpts is the option set for Str validators. min_len/max_len bound
// the UTF-8 byte length, min_char/max_char the rune count. Patterns
// are RE2 (no lookaround, no backreferences); all patterns must
// match. When normalize is set, both the tested string and the
// pattern sources are normalized before use.
type strOpts struct {
	in, nin    []string
	minLen     int
	maxLen     int
	hasMaxLen  bool
	minChar    int
	maxChar    int
	hasMaxChar bool
	useChar    bool
	matches    []*regexp.Regexp
	normalize  normMode

	query, size, regex bool
}

func newStrOpts(isQuery bool, in []string) *strOpts {
	return &strOpts{in: in, query: isQuery, size: isQuery, regex: isQuery}
}

func parseStr(m *types.Map, isQuery bool, budget *Budget) (*Validator, error) {
	o := newStrOpts(isQuery, nil)
	v := &Validator{kind: Str, strv: o}

	// normalize is read ahead of the loop: it affects pattern
	// compilation, and map iteration order would otherwise make the
	// result depend on field spelling.
	if nv, ok := m.Get("normalize"); ok {
		s, err := fieldStr(nv, "normalize")
		if err != nil {
			return nil, err
		}
		switch s {
		case "None":
			o.normalize = normNone
		case "NFC":
			o.normalize = normNFC
		case "NFKC":
			o.normalize = normNFKC
		default:
			return nil, buildf("`normalize` must be \"None\", \"NFC\", or \"NFKC\", got %q", s)
		}
	}

	for idx := 0; idx < m.Len(); idx++ {
		key, fv := m.At(idx)
		var err error
		switch key {
		case "type", "normalize":
		case "comment":
			v.comment, err = fieldStr(fv, key)
		case "default":
			err = checkDefault(fv, types.KindStr)
		case "in":
			o.in, err = strSet(fv, key)
		case "nin":
			o.nin, err = strSet(fv, key)
		case "min_len":
			o.minLen, err = fieldLen(fv, key)
		case "max_len":
			o.maxLen, err = fieldLen(fv, key)
			o.hasMaxLen = true
		case "min_char":
			o.minChar, err = fieldLen(fv, key)
			o.useChar = true
		case "max_char":
			o.maxChar, err = fieldLen(fv, key)
			o.hasMaxChar = true
			o.useChar = true
		case "matches":
			err = o.parsePatterns(fv, budget)
		case "query":
			o.query, err = fieldBool(fv, key)
		case "size":
			o.size, err = fieldBool(fv, key)
		case "regex":
			o.regex, err = fieldBool(fv, key)
		default:
			err = buildf("field %q not allowed in Str validator", key)
		}
		if err != nil {
			return nil, err
		}
	}
	return v, nil
}

func strSet(fv types.Value, name string) ([]string, error) {
	vals, err := constSet(fv, types.KindStr, name)
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(vals))
	for _, v := range vals {
		s, _ := v.AsStr()
		out = append(out, s)
	}
	return out, nil
}

func (o *strOpts) parsePatterns(fv types.Value, budget *Budget) error {
	sources, err := strSet(fv, "matches")
	if err != nil {
		return err
	}
	for _, src := range sources {
		budget.Regexes--
		if budget.Regexes < 0 {
			return buildf("regex budget exhausted")
		}
		re, err := regexp.Compile(o.normalize.apply(src))
		if err != nil {
			return buildf("bad regex %q: %v", src, err)
		}
		o.matches = append(o.matches, re)
	}
	return nil
}

func (o *strOpts) validate(val types.Value, path []string) error {
	s, ok := val.AsStr()
	if !ok {
		return failf(path, "type", "expected Str, got %v", val.Kind())
	}
	if len(o.in) > 0 {
		for _, c := range o.in {
			if c == s {
				return nil
			}
		}
		return failf(path, "in", "string is not in the `in` set")
	}
	for _, c := range o.nin {
		if c == s {
			return failf(path, "nin", "string is in the `nin` set")
		}
	}
	if len(s) < o.minLen {
		return failf(path, "min_len", "string is %d bytes, minimum is %d", len(s), o.minLen)
	}
	if o.hasMaxLen && len(s) > o.maxLen {
		return failf(path, "max_len", "string is %d bytes, maximum is %d", len(s), o.maxLen)
	}
	if o.useChar {
		chars := utf8.RuneCountInString(s)
		if chars < o.minChar {
			return failf(path, "min_char", "string is %d characters, minimum is %d", chars, o.minChar)
		}
		if o.hasMaxChar && chars > o.maxChar {
			return failf(path, "max_char", "string is %d characters, maximum is %d", chars, o.maxChar)
		}
	}
	if len(o.matches) > 0 {
		tested := o.normalize.apply(s)
		for _, re := range o.matches {
			if !re.MatchString(tested) {
				return failf(path, "matches", "string does not match %q", re.String())
			}
		}
	}
	return nil
}

func (o *strOpts) restricts() bool {
	return len(o.in) > 0 || len(o.nin) > 0 || o.minLen > 0 || o.hasMaxLen ||
		o.useChar || len(o.matches) > 0
}

func (o *strOpts) permits(q *strOpts) error {
	if (len(q.in) > 0 || len(q.nin) > 0) && !o.query {
		return incompatiblef("in/nin on a Str position without `query`")
	}
	if (q.minLen > 0 || q.hasMaxLen || q.useChar) && !o.size {
		return incompatiblef("size predicate on a Str position without `size`")
	}
	if len(q.matches) > 0 && !o.regex {
		return incompatiblef("regex predicate on a Str position without `regex`")
	}
	return nil
}
