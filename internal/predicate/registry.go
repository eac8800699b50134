// Package predicate is the predicate registry: it resolves a Predicate
// to its expansion rules, turning each CustomPredicate's AND/OR body
// into one or more plain conjunctive Rules the engine can branch over
// (spec.md §4.2, §4.5).
package predicate

import (
	"fmt"

	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

// Rule is one conjunctive expansion of a custom predicate: the engine
// must satisfy every template in Body, under the wildcard frame sized
// by WildcardCount, to conclude the predicate holds.
type Rule struct {
	Predicate     podlang.CustomPredicateRef
	WildcardCount int
	Body          []podlang.StatementTemplate
}

// Registry resolves predicates (native pass straight through to
// package handlers; custom resolve to one or more Rules) and rejects
// batches containing direct self-recursion, which the constraint-
// propagation engine cannot terminate on (spec.md §4.2 edge case).
type Registry struct {
	batches map[value.Hash]*podlang.CustomPredicateBatch
	rules   map[predRefKey][]Rule
}

type predRefKey struct {
	batch value.Hash
	index int
}

func keyOf(ref podlang.CustomPredicateRef) predRefKey {
	return predRefKey{batch: ref.BatchHash, index: ref.Index}
}

func NewRegistry() *Registry {
	return &Registry{
		batches: make(map[value.Hash]*podlang.CustomPredicateBatch),
		rules:   make(map[predRefKey][]Rule),
	}
}

// Register adds a CustomPredicateBatch to the registry, expanding each
// predicate's AND/OR body into its Rule set and rejecting direct
// self-recursion (a predicate whose body calls itself at index i with
// no other predicate on the cycle).
func (r *Registry) Register(batch *podlang.CustomPredicateBatch) error {
	r.batches[batch.Hash] = batch
	for i, pred := range batch.Predicates {
		ref := batch.Ref(i)
		if callsSelf(pred, ref) {
			return fmt.Errorf("predicate registry: %s: direct self-recursion is rejected (constraint-propagation engine cannot terminate on it)", ref)
		}
		r.rules[keyOf(ref)] = expand(pred, ref)
	}
	return nil
}

func callsSelf(pred podlang.CustomPredicate, self podlang.CustomPredicateRef) bool {
	for _, t := range pred.Body {
		if t.Predicate.IsCustom() &&
			t.Predicate.Custom.BatchHash == self.BatchHash &&
			t.Predicate.Custom.Index == self.Index {
			return true
		}
	}
	return false
}

// expand turns one CustomPredicate into its Rule set: a BodyAnd
// predicate yields a single Rule over its whole body; a BodyOr
// predicate yields one single-template Rule per disjunct, since Podlang
// OR bodies list alternative statements rather than alternative
// sub-conjunctions (nested AND-of-OR is expressed by calling another
// custom predicate from a body template).
func expand(pred podlang.CustomPredicate, ref podlang.CustomPredicateRef) []Rule {
	wc := wildcardCount(pred)
	switch pred.Kind {
	case podlang.BodyAnd:
		return []Rule{{Predicate: ref, WildcardCount: wc, Body: pred.Body}}
	case podlang.BodyOr:
		rules := make([]Rule, 0, len(pred.Body))
		for _, t := range pred.Body {
			rules = append(rules, Rule{Predicate: ref, WildcardCount: wc, Body: []podlang.StatementTemplate{t}})
		}
		return rules
	default:
		return nil
	}
}

func wildcardCount(pred podlang.CustomPredicate) int {
	max := pred.ArgCount - 1
	for _, t := range pred.Body {
		if n := t.WildcardCount(); n-1 > max {
			max = n - 1
		}
	}
	return max + 1
}

// Rules returns the expansion rules for a custom predicate ref, or nil
// (with ok=false) if it was never registered — the caller should raise
// errs.UnknownPredicate.
func (r *Registry) Rules(ref podlang.CustomPredicateRef) ([]Rule, bool) {
	rules, ok := r.rules[keyOf(ref)]
	return rules, ok
}

// Predicate resolves a CustomPredicateRef back to its definition, for
// rendering and diagnostics.
func (r *Registry) Predicate(ref podlang.CustomPredicateRef) (podlang.CustomPredicate, bool) {
	b, ok := r.batches[ref.BatchHash]
	if !ok || ref.Index < 0 || ref.Index >= len(b.Predicates) {
		return podlang.CustomPredicate{}, false
	}
	return b.Predicates[ref.Index], true
}
