package handlers

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

// SignedByFromEntriesHandler implements SignedBy(root, public-key)
// (spec.md §4.3): when both are bound, it looks up the tracked
// SignedDictionary at root and checks the signer; when root is an
// unbound wildcard, it enumerates registered signed dictionaries.
// No dedicated original_source handler file exists for SignedBy;
// this is grounded on edb.rs's SignedDict/EnumerateSignedDicts methods.
type SignedByFromEntriesHandler struct{}

func (SignedByFromEntriesHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 2 {
		return store.ContradictionResult()
	}
	rootArg, pkArg := args[0], args[1]

	if rootArg.Kind == podlang.ArgWildcard {
		if _, bound := s.Bindings[rootArg.WildcardIndex]; !bound {
			pk, ok := pkFromArg(pkArg, s)
			if !ok {
				return suspendOrContradict(args, s)
			}
			var choices []store.Choice
			for _, sd := range db.EnumerateSignedDicts() {
				if sd.Signer.Hash() != pk.Hash() {
					continue
				}
				choices = append(choices, store.Choice{
					Bindings: []store.WildcardBinding{{Wildcard: rootArg.WildcardIndex, Value: value.Raw(sd.Root())}},
					Tag:      podlang.FromLiterals(),
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
	pk, ok := pkFromArg(pkArg, s)
	if !ok {
		return suspendOrContradict(args, s)
	}

	sd, ok := db.SignedDict(root)
	if !ok || sd.Signer.Hash() != pk.Hash() {
		return store.ContradictionResult()
	}
	return store.EntailedResult(podlang.FromLiterals())
}

func pkFromArg(a podlang.TemplateArg, s *store.ConstraintStore) (value.PublicKey, bool) {
	var v value.Value
	switch a.Kind {
	case podlang.ArgLiteral:
		v = a.Literal
	case podlang.ArgWildcard:
		bound, ok := s.Bindings[a.WildcardIndex]
		if !ok {
			return value.PublicKey{}, false
		}
		v = bound
	default:
		return value.PublicKey{}, false
	}
	return v.PublicKey2()
}
