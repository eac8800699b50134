package seminaive

import (
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/value"
)

// reachablePredicates computes the Magic-Set pre-filter (spec.md §4.8
// step 2): the set of custom predicates transitively called from req,
// in a breadth-first discovery order so the evaluator fires the
// request's own predicates before nested ones. This is the
// predicate-name-granularity simplification of full per-adornment
// Magic-Set specialization: rather than deriving a distinct magic
// predicate per bound-argument pattern, every reachable predicate is
// fully materialized regardless of which argument positions a caller
// happened to bind. See DESIGN.md for why this is sufficient for
// correctness (the Evaluator still "only derives facts relevant to the
// query" at the predicate level) though not for the original's
// per-adornment performance characteristics.
func reachablePredicates(req podlang.Request, predicates *predicate.Registry) []podlang.CustomPredicateRef {
	type key struct {
		batch value.Hash
		index int
	}
	seen := make(map[key]bool)
	var order []podlang.CustomPredicateRef
	var queue []podlang.CustomPredicateRef

	for _, t := range req.Templates {
		if t.Predicate.IsCustom() {
			queue = append(queue, t.Predicate.Custom)
		}
	}

	for len(queue) > 0 {
		ref := queue[0]
		queue = queue[1:]
		k := key{batch: ref.BatchHash, index: ref.Index}
		if seen[k] {
			continue
		}
		seen[k] = true
		order = append(order, ref)

		rules, ok := predicates.Rules(ref)
		if !ok {
			continue
		}
		for _, rule := range rules {
			for _, t := range rule.Body {
				if t.Predicate.IsCustom() {
					queue = append(queue, t.Predicate.Custom)
				}
			}
		}
	}
	return order
}

// remapBody rewrites a rule's body templates through posMap, turning a
// rule-local wildcard frame into the evaluator's global one (the same
// transform engine.Driver applies per-call; duplicated here in its own
// package rather than exported from engine, since the two engines share
// no runtime state).
func remapBody(body []podlang.StatementTemplate, posMap []int) []podlang.StatementTemplate {
	out := make([]podlang.StatementTemplate, len(body))
	for i, t := range body {
		args := make([]podlang.TemplateArg, len(t.Args))
		for j, a := range t.Args {
			args[j] = remapArg(a, posMap)
		}
		out[i] = podlang.NewTemplate(t.Predicate, args...)
	}
	return out
}

func remapArg(a podlang.TemplateArg, posMap []int) podlang.TemplateArg {
	switch a.Kind {
	case podlang.ArgWildcard:
		return podlang.ArgWild(posMap[a.WildcardIndex], a.WildcardName)
	case podlang.ArgAnchoredKey:
		return podlang.ArgAnchored(posMap[a.WildcardIndex], a.WildcardName, a.Key)
	default:
		return a
	}
}
