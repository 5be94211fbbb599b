// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

import "github.com/fogpack/fogpack/lib/types"

// Item is one outstanding link obligation: the referenced document
// must exist, must use one of the listed schemas (when Schemas is
// non-empty), and must validate against Link (when non-nil).
type Item struct {
	Hash    types.Hash
	Schemas []types.Hash
	Link    *Validator
}

// Checklist accumulates link obligations during validation. A value
// that validated with a non-empty checklist is only conditionally
// accepted: the caller must resolve every item against its document
// store to finish the job.
type Checklist struct {
	items []Item
}

// NewChecklist returns an empty checklist.
func NewChecklist() *Checklist { return &Checklist{} }

func (c *Checklist) add(h types.Hash, schemas []types.Hash, link *Validator) {
	c.items = append(c.items, Item{Hash: h, Schemas: schemas, Link: link})
}

// Items returns the accumulated obligations.
func (c *Checklist) Items() []Item { return c.items }

// Empty reports whether validation completed with nothing left to
// resolve.
func (c *Checklist) Empty() bool { return len(c.items) == 0 }
