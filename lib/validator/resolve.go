// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

// ResolveAliases checks a types table and the validators that use it:
// every alias reference must name an entry in the table, no alias may
// shadow a base kind name, and alias references may not form a cycle
// unless the cycle passes through a boxing position (array elements,
// map fields, or a hash link). Cycles through boxes describe recursive
// structures and are legal; validation-time depth bounding keeps them
// finite.
func ResolveAliases(aliases map[string]*Validator, roots ...*Validator) error {
	for name := range aliases {
		if _, isBase := baseKindNames[name]; isBase {
			return buildf("alias %q shadows a base kind", name)
		}
	}

	// Every reference — from a root or from inside an alias body —
	// must resolve.
	for _, root := range roots {
		if err := checkRefs(root, aliases); err != nil {
			return err
		}
	}
	for _, body := range aliases {
		if err := checkRefs(body, aliases); err != nil {
			return err
		}
	}

	// Cycle detection over the non-boxing reference graph: from each
	// alias body, collect the aliases reachable without crossing a
	// box. Only Multi alternatives and direct references are
	// non-boxing edges.
	const (
		unvisited = 0
		visiting  = 1
		done      = 2
	)
	state := make(map[string]int, len(aliases))
	var visit func(name string) error
	visit = func(name string) error {
		switch state[name] {
		case visiting:
			return buildf("alias cycle through %q does not pass through a boxing position", name)
		case done:
			return nil
		}
		state[name] = visiting
		for _, next := range directRefs(aliases[name], nil) {
			if _, ok := aliases[next]; ok {
				if err := visit(next); err != nil {
					return err
				}
			}
		}
		state[name] = done
		return nil
	}
	for name := range aliases {
		if err := visit(name); err != nil {
			return err
		}
	}
	return nil
}

// checkRefs walks the whole validator tree (through boxes) and
// verifies every alias reference resolves.
func checkRefs(v *Validator, aliases map[string]*Validator) error {
	if v == nil {
		return nil
	}
	switch v.kind {
	case Ref:
		if _, ok := aliases[v.ref]; !ok {
			return buildf("alias %q is not defined in the types table", v.ref)
		}
	case Multi:
		for _, alt := range v.anyOf {
			if err := checkRefs(alt, aliases); err != nil {
				return err
			}
		}
	case Array:
		for _, sub := range v.arrayv.items {
			if err := checkRefs(sub, aliases); err != nil {
				return err
			}
		}
		if err := checkRefs(v.arrayv.extra, aliases); err != nil {
			return err
		}
		for _, sub := range v.arrayv.contains {
			if err := checkRefs(sub, aliases); err != nil {
				return err
			}
		}
	case Obj:
		for _, sub := range v.objv.req {
			if err := checkRefs(sub, aliases); err != nil {
				return err
			}
		}
		for _, sub := range v.objv.opt {
			if err := checkRefs(sub, aliases); err != nil {
				return err
			}
		}
		if err := checkRefs(v.objv.fieldType, aliases); err != nil {
			return err
		}
	case Hash:
		if err := checkRefs(v.hashv.link, aliases); err != nil {
			return err
		}
	}
	return nil
}

// directRefs collects alias names reachable from v without crossing a
// boxing position.
func directRefs(v *Validator, acc []string) []string {
	if v == nil {
		return acc
	}
	switch v.kind {
	case Ref:
		acc = append(acc, v.ref)
	case Multi:
		for _, alt := range v.anyOf {
			acc = directRefs(alt, acc)
		}
	}
	return acc
}
