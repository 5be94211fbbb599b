// Copyright 2026 The Fogpack Authors
// SPDX-License-Identifier: Apache-2.0

package validator

// Check decides whether a query validator is admissible against a
// schema validator: at every position the query may only use
// predicates the schema's permission flags enable there. An
// inadmissible query is rejected before any matching happens, which is
// what lets a database pre-index exactly the fields a schema declares
// queryable.
//
// The aliases table is the schema's; query validators cannot define
// or reference aliases of their own.
func Check(schema, query *Validator, aliases map[string]*Validator) error {
	c := &checker{aliases: aliases, maxDepth: DefaultMaxDepth}
	return c.check(schema, query)
}

type checker struct {
	aliases  map[string]*Validator
	maxDepth int
	depth    int
}

func (c *checker) check(schema, query *Validator) error {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > c.maxDepth {
		return incompatiblef("query check depth exceeds %d", c.maxDepth)
	}

	// Resolve the schema position through aliases and Multi before
	// comparing kinds.
	switch schema.kind {
	case Ref:
		target, ok := c.aliases[schema.ref]
		if !ok {
			return incompatiblef("schema alias %q is not defined", schema.ref)
		}
		return c.check(target, query)
	case Multi:
		var firstErr error
		for _, alt := range schema.anyOf {
			err := c.check(alt, query)
			if err == nil {
				return nil
			}
			if firstErr == nil {
				firstErr = err
			}
		}
		return firstErr
	}

	// A query that restricts nothing is always admissible; one that
	// restricts anything needs a schema position of the same kind
	// with the right flags.
	switch query.kind {
	case Any:
		return nil
	case Ref:
		return incompatiblef("queries cannot reference aliases")
	case Multi:
		for _, alt := range query.anyOf {
			if err := c.check(schema, alt); err != nil {
				return err
			}
		}
		return nil
	}

	if schema.kind == Any {
		if queryRestricts(query) {
			return incompatiblef("restrictive query on an unconstrained position")
		}
		return nil
	}

	if schema.kind != query.kind {
		return incompatiblef("query kind %d does not match schema kind %d", query.kind, schema.kind)
	}

	switch schema.kind {
	case Null:
		return nil
	case Bool:
		return schema.boolv.permits(query.boolv)
	case Int:
		return schema.intv.permits(query.intv)
	case F32:
		return schema.f32v.permits(query.f32v)
	case F64:
		return schema.f64v.permits(query.f64v)
	case Str:
		return schema.strv.permits(query.strv)
	case Bin:
		return schema.binv.permits(query.binv)
	case Time:
		return schema.timev.permits(query.timev)
	case Ident:
		return schema.identv.permits(query.identv)
	case Lock:
		return schema.lockv.permits(query.lockv)
	case Array:
		return schema.arrayv.permits(c, query.arrayv)
	case Obj:
		return schema.objv.permits(c, query.objv)
	case Hash:
		return schema.hashv.permits(c, query.hashv)
	}
	return incompatiblef("unsupported schema kind")
}

// queryRestricts reports whether the query validator constrains
// values beyond its kind.
func queryRestricts(q *Validator) bool {
	switch q.kind {
	case Any, Null:
		return false
	case Multi:
		for _, alt := range q.anyOf {
			if queryRestricts(alt) {
				return true
			}
		}
		return false
	case Bool:
		return q.boolv.restricts()
	case Int:
		return q.intv.restricts()
	case F32:
		return q.f32v.restricts()
	case F64:
		return q.f64v.restricts()
	case Str:
		return q.strv.restricts()
	case Bin:
		return q.binv.restricts()
	case Time:
		return q.timev.restricts()
	case Ident:
		return q.identv.restricts()
	case Lock:
		return q.lockv.restricts()
	case Array:
		return q.arrayv.restricts()
	case Obj:
		return q.objv.restricts()
	case Hash:
		return q.hashv.restricts()
	}
	return true
}
