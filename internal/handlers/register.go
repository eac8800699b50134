package handlers

import (
	"podsolve/internal/podlang"
	"podsolve/internal/store"
)

// RegisterAll builds a store.Registry with every native predicate's
// handlers wired in the fixed per-predicate order spec.md §4.3
// describes, mirroring the register_*_handlers functions scattered
// across the original handlers/*.rs files.
func RegisterAll() *store.Registry {
	reg := store.NewRegistry()

	for _, pred := range []podlang.NativePredicate{podlang.PredEqual, podlang.PredNotEqual, podlang.PredLt, podlang.PredLtEq} {
		reg.Register(pred, CompareFromEntriesHandler{Pred: pred})
		reg.Register(pred, CompareCopyHandler{Pred: pred})
	}

	for _, pred := range []podlang.NativePredicate{podlang.PredSumOf, podlang.PredProductOf, podlang.PredMaxOf} {
		reg.Register(pred, TernaryArithFromEntriesHandler{Op: ternaryOps[pred]})
	}

	reg.Register(podlang.PredHashOf, HashOfFromEntriesHandler{})
	reg.Register(podlang.PredHashOf, CopyHashOfHandler{})

	// Contains and NotContains register Copy before FromEntries, matching
	// contains.rs/not_contains.rs's register_*_handlers (the dispatch
	// order is fixed per predicate, not uniform across predicates).
	reg.Register(podlang.PredContains, CopyContainsHandler{})
	reg.Register(podlang.PredContains, ContainsFromEntriesHandler{})

	reg.Register(podlang.PredNotContains, CopyNotContainsHandler{})
	reg.Register(podlang.PredNotContains, NotContainsFromEntriesHandler{})

	reg.Register(podlang.PredSignedBy, SignedByFromEntriesHandler{})
	reg.Register(podlang.PredPublicKeyOf, PublicKeyOfFromEntriesHandler{})

	return reg
}
