package store

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

// BoundRoot returns the commitment hash a wildcard is bound to, if any.
func BoundRoot(s *ConstraintStore, wildcard int) (value.Hash, bool) {
	v, ok := s.Bindings[wildcard]
	if !ok {
		return value.Hash{}, false
	}
	return v.Raw(), true
}

// ContainsStmt builds a ground Contains(root, key, value) statement.
func ContainsStmt(root value.Hash, key value.Key, v value.Value) podlang.Statement {
	return podlang.NewStatement(podlang.NativePred(podlang.PredContains),
		podlang.Lit(value.Raw(root)), podlang.Lit(value.String(key.Name())), podlang.Lit(v))
}

// TagFromSource maps an edb.ContainsSource to the OpTag it justifies a
// Contains statement with, per the engine's preference for generation
// over copying when both are available.
func TagFromSource(key value.Key, v value.Value, src edb.ContainsSource) podlang.OpTag {
	if src.Kind == edb.SourceGeneratedFromFullDict {
		return podlang.GeneratedContains(src.Root, key, v)
	}
	return podlang.CopyStatement(src.Pod)
}

// EnumerateChoicesFor lists one Choice per (root, source) that can
// justify Contains(root, key, value), binding wildcard to each root.
func EnumerateChoicesFor(key value.Key, v value.Value, wildcard int, db *edb.EDB) []Choice {
	pairs := db.EnumerateContainsSources(key, v)
	out := make([]Choice, 0, len(pairs))
	for _, p := range pairs {
		tag := TagFromSource(key, v, p.Source)
		out = append(out, Choice{
			Bindings: []WildcardBinding{{Wildcard: wildcard, Value: value.Raw(p.Root)}},
			Tag:      tag,
			Premises: []Premise{{Statement: ContainsStmt(p.Root, key, v), Tag: tag}},
		})
	}
	return out
}

// EntailedIfBoundMatches checks whether root's dictionary is known to
// contain (key, value); if so it returns the Entailed result a handler
// should return.
func EntailedIfBoundMatches(root value.Hash, key value.Key, v value.Value, db *edb.EDB) (PropagatorResult, bool) {
	src, ok := db.ContainsSourceOf(root, key, v)
	if !ok {
		return PropagatorResult{}, false
	}
	tag := TagFromSource(key, v, src)
	return EntailedResult(tag, Premise{Statement: ContainsStmt(root, key, v), Tag: tag}), true
}

// EntailedIfBothBoundEqual checks whether two anchored keys resolve to
// equal values, returning a two-premise Entailed result if so.
func EntailedIfBothBoundEqual(rl value.Hash, keyL value.Key, rr value.Hash, keyR value.Key, db *edb.EDB) (PropagatorResult, bool) {
	vl, ok := db.ContainsValue(rl, keyL)
	if !ok {
		return PropagatorResult{}, false
	}
	vr, ok := db.ContainsValue(rr, keyR)
	if !ok || !vl.Equal(vr) {
		return PropagatorResult{}, false
	}
	srcL, ok := db.ContainsSourceOf(rl, keyL, vl)
	if !ok {
		return PropagatorResult{}, false
	}
	srcR, ok := db.ContainsSourceOf(rr, keyR, vr)
	if !ok {
		return PropagatorResult{}, false
	}
	tagL := TagFromSource(keyL, vl, srcL)
	tagR := TagFromSource(keyR, vr, srcR)
	return EntailedResult(podlang.Derived(podlang.PredEqual,
		ContainsStmt(rl, keyL, vl), ContainsStmt(rr, keyR, vr)),
		Premise{Statement: ContainsStmt(rl, keyL, vl), Tag: tagL},
		Premise{Statement: ContainsStmt(rr, keyR, vr), Tag: tagR},
	), true
}

// InstantiateGoal resolves a StatementTemplate to a ground Statement
// under the current bindings, or reports ok=false if a required
// wildcard is still unbound.
func InstantiateGoal(t podlang.StatementTemplate, bindings map[int]value.Value) (podlang.Statement, bool) {
	args := make([]podlang.ValueRef, len(t.Args))
	for i, a := range t.Args {
		vr, ok := argToValueRef(a, bindings)
		if !ok {
			return podlang.Statement{}, false
		}
		args[i] = vr
	}
	return podlang.NewStatement(t.Predicate, args...), true
}

func argToValueRef(a podlang.TemplateArg, bindings map[int]value.Value) (podlang.ValueRef, bool) {
	switch a.Kind {
	case podlang.ArgLiteral:
		return podlang.Lit(a.Literal), true
	case podlang.ArgWildcard:
		v, ok := bindings[a.WildcardIndex]
		if !ok {
			return podlang.ValueRef{}, false
		}
		return podlang.Lit(v), true
	case podlang.ArgAnchoredKey:
		v, ok := bindings[a.WildcardIndex]
		if !ok {
			return podlang.ValueRef{}, false
		}
		return podlang.Anchored(v.Raw(), a.Key), true
	default:
		return podlang.ValueRef{}, false
	}
}

// InstantiateCustomHead resolves a custom predicate's head arguments
// (always plain values, never anchored keys, per the MVP restriction
// the original solver also applies) to a ground Statement.
func InstantiateCustomHead(ref podlang.CustomPredicateRef, headArgs []podlang.TemplateArg, bindings map[int]value.Value) (podlang.Statement, bool) {
	vals := make([]podlang.ValueRef, len(headArgs))
	for i, a := range headArgs {
		switch a.Kind {
		case podlang.ArgLiteral:
			vals[i] = podlang.Lit(a.Literal)
		case podlang.ArgWildcard:
			v, ok := bindings[a.WildcardIndex]
			if !ok {
				return podlang.Statement{}, false
			}
			vals[i] = podlang.Lit(v)
		default:
			return podlang.Statement{}, false
		}
	}
	return podlang.NewStatement(podlang.CustomPred(ref), vals...), true
}

// WildcardsIn collects every wildcard index referenced by args, for a
// handler's fallback Suspend-or-Contradiction decision.
func WildcardsIn(args []podlang.TemplateArg) []int {
	var out []int
	seen := make(map[int]bool)
	for _, a := range args {
		if (a.Kind == podlang.ArgWildcard || a.Kind == podlang.ArgAnchoredKey) && !seen[a.WildcardIndex] {
			seen[a.WildcardIndex] = true
			out = append(out, a.WildcardIndex)
		}
	}
	return out
}
