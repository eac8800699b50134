// Package handlers implements the per-predicate operation handlers the
// engine calls to deduce or refute one goal template (spec.md §4.4).
// Each native predicate gets a "FromEntries" handler (resolve argument
// values directly, possibly via a bound anchored key, and check the
// predicate's relation) and, where the predicate can also be justified
// by copying an existing EDB statement, a "Copy" handler. Grounded on
// original_source/core/new_solver/src/handlers/*.rs; Go's lack of a
// one-trait-per-file ceremony lets the binary-comparison and ternary-
// arithmetic families share their argument-resolution logic instead of
// repeating it per predicate the way the Rust handlers do.
package handlers

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

type classKind int

const (
	classGround classKind = iota
	classWait
	classTypeError
	classNoFact
)

// classified is one argument's resolution state during FromEntries
// propagation, mirroring lteq.rs's ArgVal enum.
type classified struct {
	kind     classKind
	value    value.Value
	wait     int
	premises []store.Premise
}

// classify resolves a template argument to a ground Value: literals
// resolve directly, wildcards resolve via the store's bindings or
// suspend, and anchored keys resolve through the EDB once their root
// wildcard is bound.
func classify(a podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) classified {
	switch a.Kind {
	case podlang.ArgLiteral:
		return classified{kind: classGround, value: a.Literal}
	case podlang.ArgWildcard:
		v, ok := s.Bindings[a.WildcardIndex]
		if !ok {
			return classified{kind: classWait, wait: a.WildcardIndex}
		}
		return classified{kind: classGround, value: v}
	case podlang.ArgAnchoredKey:
		root, ok := store.BoundRoot(s, a.WildcardIndex)
		if !ok {
			return classified{kind: classWait, wait: a.WildcardIndex}
		}
		v, ok := db.ContainsValue(root, a.Key)
		if !ok {
			return classified{kind: classNoFact}
		}
		src, ok := db.ContainsSourceOf(root, a.Key, v)
		if !ok {
			return classified{kind: classNoFact}
		}
		tag := store.TagFromSource(a.Key, v, src)
		return classified{
			kind:  classGround,
			value: v,
			premises: []store.Premise{{
				Statement: store.ContainsStmt(root, a.Key, v),
				Tag:       tag,
			}},
		}
	default:
		return classified{kind: classTypeError}
	}
}

// resolveAll classifies every argument, returning the combined waits,
// any hard failure kind (TypeError/NoFact map to Contradiction per the
// original handlers), and the ground values plus premises when every
// argument resolved.
func resolveAll(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) (vals []value.Value, premises []store.Premise, result *store.PropagatorResult) {
	classes := make([]classified, len(args))
	for i, a := range args {
		classes[i] = classify(a, s, db)
	}
	for _, c := range classes {
		if c.kind == classTypeError || c.kind == classNoFact {
			r := store.ContradictionResult()
			return nil, nil, &r
		}
	}
	var waits []int
	for _, c := range classes {
		if c.kind == classWait {
			waits = append(waits, c.wait)
		}
	}
	if len(waits) > 0 {
		r := store.SuspendResult(waits)
		return nil, nil, &r
	}
	vals = make([]value.Value, len(classes))
	for i, c := range classes {
		vals[i] = c.value
		premises = append(premises, c.premises...)
	}
	return vals, premises, nil
}

func asInt(v value.Value) (int64, bool) { return v.AsInt64() }
