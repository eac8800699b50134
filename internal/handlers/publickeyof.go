package handlers

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

// PublicKeyOfFromEntriesHandler implements PublicKeyOf(public-key,
// secret-key) (spec.md §4.3, S6): when only the public key is bound, it
// looks up the matching secret key in the EDB's keypair table and binds
// it; when both are bound, it validates the pair. No dedicated
// original_source handler file exists for PublicKeyOf; grounded on
// edb.rs's get_secret_key/enumerate_keypairs methods.
type PublicKeyOfFromEntriesHandler struct{}

func (PublicKeyOfFromEntriesHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 2 {
		return store.ContradictionResult()
	}
	pkArg, skArg := args[0], args[1]
	pk, ok := pkFromArg(pkArg, s)
	if !ok {
		return suspendOrContradict(args, s)
	}
	secret, ok := db.GetSecretKey(pk)
	if !ok {
		return store.ContradictionResult()
	}

	switch skArg.Kind {
	case podlang.ArgWildcard:
		if bound, isBound := s.Bindings[skArg.WildcardIndex]; isBound {
			if bound.Raw() != secret {
				return store.ContradictionResult()
			}
			return store.EntailedResult(podlang.FromLiterals())
		}
		return store.EntailedWithBindings(podlang.FromLiterals(),
			[]store.WildcardBinding{{Wildcard: skArg.WildcardIndex, Value: value.Raw(secret)}})
	case podlang.ArgLiteral:
		if skArg.Literal.Raw() != secret {
			return store.ContradictionResult()
		}
		return store.EntailedResult(podlang.FromLiterals())
	default:
		return store.ContradictionResult()
	}
}
