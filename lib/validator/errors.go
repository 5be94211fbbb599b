// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import (
	"errors"
	"fmt"
	"strings"
)

// Error kinds, matched with errors.Is.
var (
	// ErrBuild reports a structurally invalid validator: unknown
	// option fields, wrong option types, a missing or cyclic alias,
	// a bad regex, or an exhausted regex budget.
	ErrBuild = errors.New("invalid validator")

	// ErrValidation is the kind wrapped by every Failure.
	ErrValidation = errors.New("validation failed")

	// ErrIncompatible reports a query that uses a feature the schema
	// did not enable at the matching position.
	ErrIncompatible = errors.New("query incompatible with schema")
)

// Failure describes a validation rejection: where it happened, which
// clause rejected, and why. It never reproduces the offending value
// beyond a short summary.
type Failure struct {
	// Path locates the offending value: "/" for the root, then
	// field names and array indices, e.g. "/posts/3/title".
	Path string

	// Clause names the option that rejected, e.g. "max_len", "req",
	// or "type" for a kind mismatch.
	Clause string

	// Message is a short human-readable explanation.
	Message string
}

func (f *Failure) Error() string {
	return fmt.Sprintf("validation failed at %s: %s: %s", f.Path, f.Clause, f.Message)
}

func (f *Failure) Unwrap() error { return ErrValidation }

func failf(path []string, clause, format string, args ...any) error {
	p := "/"
	if len(path) > 0 {
		p = "/" + strings.Join(path, "/")
	}
	return &Failure{Path: p, Clause: clause, Message: fmt.Sprintf(format, args...)}
}

func buildf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrBuild, fmt.Sprintf(format, args...))
}

func incompatiblef(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrIncompatible, fmt.Sprintf(format, args...))
}
