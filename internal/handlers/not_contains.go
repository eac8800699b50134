package handlers

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

// CopyNotContainsHandler justifies NotContains(root, key) by finding a
// copied fact of that shape, enumerating candidate roots when root is
// an unbound wildcard and key is known. Grounded on not_contains.rs's
// CopyNotContainsHandler.
type CopyNotContainsHandler struct{}

func (CopyNotContainsHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 2 {
		return store.ContradictionResult()
	}
	rootArg, keyArg := args[0], args[1]

	if rootArg.Kind == podlang.ArgWildcard {
		if _, bound := s.Bindings[rootArg.WildcardIndex]; !bound {
			key, ok := keyFromArg(keyArg, s)
			if !ok {
				return suspendOrContradict(args, s)
			}
			var choices []store.Choice
			for _, rp := range db.NotContainsRootsForKey(key) {
				tag := podlang.CopyStatement(rp.Pod)
				choices = append(choices, store.Choice{
					Bindings: []store.WildcardBinding{{Wildcard: rootArg.WildcardIndex, Value: value.Raw(rp.Root)}},
					Tag:      tag,
				})
			}
			if len(choices) == 0 {
				return store.ContradictionResult()
			}
			return store.ChoicesResult(choices)
		}
	}

	root, ok := rootFromArg(rootArg, s)
	if !ok {
		return suspendOrContradict(args, s)
	}
	key, ok := keyFromArg(keyArg, s)
	if !ok {
		return store.ContradictionResult()
	}
	pod, ok := db.NotContainsCopyRootKey(root, key)
	if !ok {
		return store.ContradictionResult()
	}
	return store.EntailedResult(podlang.CopyStatement(pod))
}

// NotContainsFromEntriesHandler justifies NotContains(root, key) when
// root's full dictionary is known and key is absent from it. Grounded
// on not_contains.rs's NotContainsFromEntriesHandler.
type NotContainsFromEntriesHandler struct{}

func (NotContainsFromEntriesHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 2 {
		return store.ContradictionResult()
	}
	root, ok := rootFromArg(args[0], s)
	if !ok {
		return suspendOrContradict(args, s)
	}
	key, ok := keyFromArg(args[1], s)
	if !ok {
		return store.ContradictionResult()
	}
	absent, known := db.FullDictAbsence(root, key)
	if !known {
		// Unknown absence: no full dictionary for root is registered, so
		// absence cannot be shown here (the copy handler, registered
		// first, has already had its turn).
		return store.ContradictionResult()
	}
	if !absent {
		return store.ContradictionResult()
	}
	return store.EntailedResult(podlang.FromLiterals())
}
