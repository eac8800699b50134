package handlers

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

// rootFromArg resolves Contains's root argument from a literal or
// bound-wildcard template arg, grounded on contains.rs's root_from_arg.
func rootFromArg(a podlang.TemplateArg, s *store.ConstraintStore) (value.Hash, bool) {
	switch a.Kind {
	case podlang.ArgLiteral:
		return a.Literal.Raw(), true
	case podlang.ArgWildcard:
		v, ok := s.Bindings[a.WildcardIndex]
		if !ok {
			return value.Hash{}, false
		}
		return v.Raw(), true
	default:
		return value.Hash{}, false
	}
}

func keyFromArg(a podlang.TemplateArg, s *store.ConstraintStore) (value.Key, bool) {
	var v value.Value
	switch a.Kind {
	case podlang.ArgLiteral:
		v = a.Literal
	case podlang.ArgWildcard:
		bound, ok := s.Bindings[a.WildcardIndex]
		if !ok {
			return value.Key{}, false
		}
		v = bound
	default:
		return value.Key{}, false
	}
	name, ok := v.String2()
	if !ok {
		return value.Key{}, false
	}
	return value.NewKey(name), true
}

// CopyContainsHandler justifies Contains by finding a copied fact,
// binding the value argument (or checking it) from the copy.
// Grounded on contains.rs's CopyContainsHandler.
type CopyContainsHandler struct{}

func (CopyContainsHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 3 {
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

	switch args[2].Kind {
	case podlang.ArgWildcard:
		if bound, isBound := s.Bindings[args[2].WildcardIndex]; isBound {
			src, ok := db.ContainsSourceOf(root, key, bound)
			if !ok || src.Kind != edb.SourceCopied {
				return store.ContradictionResult()
			}
			tag := podlang.CopyStatement(src.Pod)
			return store.EntailedResult(tag, store.Premise{Statement: store.ContainsStmt(root, key, bound), Tag: tag})
		}
		var choices []store.Choice
		for _, cv := range db.ContainsCopiedValues(root, key) {
			tag := podlang.CopyStatement(cv.Pod)
			choices = append(choices, store.Choice{
				Bindings: []store.WildcardBinding{{Wildcard: args[2].WildcardIndex, Value: cv.Value}},
				Tag:      tag,
				Premises: []store.Premise{{Statement: store.ContainsStmt(root, key, cv.Value), Tag: tag}},
			})
		}
		if len(choices) == 0 {
			return store.ContradictionResult()
		}
		return store.ChoicesResult(choices)
	case podlang.ArgLiteral:
		src, ok := db.ContainsSourceOf(root, key, args[2].Literal)
		if !ok || src.Kind != edb.SourceCopied {
			return store.ContradictionResult()
		}
		tag := podlang.CopyStatement(src.Pod)
		return store.EntailedResult(tag)
	default:
		return store.ContradictionResult()
	}
}

// ContainsFromEntriesHandler justifies Contains from a fully known
// dictionary, enumerating candidate roots when the root is an unbound
// wildcard and key/value are both known. Grounded on contains.rs's
// ContainsFromEntriesHandler.
type ContainsFromEntriesHandler struct{}

func (ContainsFromEntriesHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 3 {
		return store.ContradictionResult()
	}

	if args[0].Kind == podlang.ArgWildcard {
		if _, bound := s.Bindings[args[0].WildcardIndex]; !bound {
			key, keyOK := keyFromArg(args[1], s)
			val, valOK := valFromArg(args[2], s)
			if keyOK && valOK {
				choices := store.EnumerateChoicesFor(key, val, args[0].WildcardIndex, db)
				if len(choices) == 0 {
					return store.ContradictionResult()
				}
				return store.ChoicesResult(choices)
			}
		}
	}

	root, ok := rootFromArg(args[0], s)
	if !ok {
		return suspendOrContradict(args, s)
	}
	key, ok := keyFromArg(args[1], s)
	if !ok {
		return store.ContradictionResult()
	}

	switch args[2].Kind {
	case podlang.ArgWildcard:
		v, ok := db.ContainsFullValue(root, key)
		if !ok {
			return store.ContradictionResult()
		}
		tag := podlang.GeneratedContains(root, key, v)
		return store.EntailedWithBindings(tag, []store.WildcardBinding{{Wildcard: args[2].WildcardIndex, Value: v}})
	case podlang.ArgLiteral:
		src, ok := db.ContainsSourceOf(root, key, args[2].Literal)
		if !ok || src.Kind != edb.SourceGeneratedFromFullDict {
			return store.ContradictionResult()
		}
		return store.EntailedResult(podlang.GeneratedContains(root, key, args[2].Literal))
	default:
		return store.ContradictionResult()
	}
}

func valFromArg(a podlang.TemplateArg, s *store.ConstraintStore) (value.Value, bool) {
	switch a.Kind {
	case podlang.ArgLiteral:
		return a.Literal, true
	case podlang.ArgWildcard:
		v, ok := s.Bindings[a.WildcardIndex]
		return v, ok
	default:
		return value.Value{}, false
	}
}

func suspendOrContradict(args []podlang.TemplateArg, s *store.ConstraintStore) store.PropagatorResult {
	var waits []int
	for _, w := range store.WildcardsIn(args) {
		if _, ok := s.Bindings[w]; !ok {
			waits = append(waits, w)
		}
	}
	if len(waits) == 0 {
		return store.ContradictionResult()
	}
	return store.SuspendResult(waits)
}
