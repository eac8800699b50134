package handlers

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

// HashOfFromEntriesHandler implements HashOf(a, b, c) meaning a =
// hash([b, c]): it can validate when all three are ground and compute a
// when b and c are ground, but the hash cannot be reversed, so b or c
// unbound always suspends. Grounded on handlers/hashof.rs.
type HashOfFromEntriesHandler struct{}

func (HashOfFromEntriesHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 3 {
		return store.ContradictionResult()
	}
	a := classify(args[0], s, db)
	b := classify(args[1], s, db)
	c := classify(args[2], s, db)
	if a.kind == classTypeError || b.kind == classTypeError || c.kind == classTypeError ||
		b.kind == classNoFact || c.kind == classNoFact {
		return store.ContradictionResult()
	}

	if b.kind == classWait || c.kind == classWait {
		var waits []int
		if a.kind == classWait {
			waits = append(waits, a.wait)
		}
		if b.kind == classWait {
			waits = append(waits, b.wait)
		}
		if c.kind == classWait {
			waits = append(waits, c.wait)
		}
		return store.SuspendResult(waits)
	}

	expected := value.Raw(value.HashValues(b.value, c.value))
	premises := append(append([]store.Premise{}, b.premises...), c.premises...)

	if a.kind == classGround {
		if !a.value.Equal(expected) {
			return store.ContradictionResult()
		}
		premises = append(premises, a.premises...)
		if len(premises) == 0 {
			return store.EntailedResult(podlang.FromLiterals())
		}
		stmts := make([]podlang.Statement, len(premises))
		for i, p := range premises {
			stmts[i] = p.Statement
		}
		return store.EntailedResult(podlang.Derived(podlang.PredHashOf, stmts...), premises...)
	}

	// a.kind == classWait: bind it, unless it's an anchored key slot,
	// which isn't a meaningful bind target.
	if args[0].Kind != podlang.ArgWildcard {
		return store.ContradictionResult()
	}
	tag := podlang.FromLiterals()
	if len(premises) > 0 {
		stmts := make([]podlang.Statement, len(premises))
		for i, p := range premises {
			stmts[i] = p.Statement
		}
		tag = podlang.Derived(podlang.PredHashOf, stmts...)
	}
	binding := store.WildcardBinding{Wildcard: args[0].WildcardIndex, Value: expected}
	return store.EntailedWithBindings(tag, []store.WildcardBinding{binding}, premises...)
}

// CopyHashOfHandler justifies HashOf by finding an existing HashOf fact
// and binding unbound wildcard arguments from it.
type CopyHashOfHandler struct{}

func (CopyHashOfHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 3 {
		return store.ContradictionResult()
	}
	sels := []edb.ArgSel{edb.SelAnyVal(), edb.SelAnyVal(), edb.SelAnyVal()}
	facts := db.Query(podlang.NativePred(podlang.PredHashOf), sels)
	var choices []store.Choice
	for _, f := range facts {
		bindings, ok := bindingsFromFact(args, f, s)
		if !ok {
			continue
		}
		tag := podlang.CopyStatement(provenanceOf(db, podlang.NativePred(podlang.PredHashOf), f))
		choices = append(choices, store.Choice{Bindings: bindings, Tag: tag, Premises: []store.Premise{{Statement: f, Tag: tag}}})
	}
	if len(choices) == 0 {
		return store.ContradictionResult()
	}
	return store.ChoicesResult(choices)
}
