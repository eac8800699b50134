package handlers

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

// Comparator decides whether lhs relates to rhs the way one native
// comparison predicate requires.
type Comparator func(lhs, rhs value.Value) bool

var comparators = map[podlang.NativePredicate]Comparator{
	podlang.PredEqual:    func(l, r value.Value) bool { return l.Equal(r) },
	podlang.PredNotEqual: func(l, r value.Value) bool { return !l.Equal(r) },
	podlang.PredLt:       ordComparator(func(a, b int64) bool { return a < b }),
	podlang.PredLtEq:     ordComparator(func(a, b int64) bool { return a <= b }),
}

func ordComparator(cmp func(a, b int64) bool) Comparator {
	return func(l, r value.Value) bool {
		li, ok := asInt(l)
		if !ok {
			return false
		}
		ri, ok := asInt(r)
		if !ok {
			return false
		}
		return cmp(li, ri)
	}
}

// CompareFromEntriesHandler resolves both arguments (literal, bound
// wildcard, or bound anchored key) and checks Pred's relation, matching
// lteq.rs's LtEqFromEntriesHandler generalized across Equal/NotEqual/
// Lt/LtEq.
type CompareFromEntriesHandler struct {
	Pred podlang.NativePredicate
}

func (h CompareFromEntriesHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 2 {
		return store.ContradictionResult()
	}
	vals, premises, early := resolveAll(args, s, db)
	if early != nil {
		return *early
	}
	cmp := comparators[h.Pred]
	if h.Pred == podlang.PredLt || h.Pred == podlang.PredLtEq {
		if _, ok := asInt(vals[0]); !ok {
			return store.ContradictionResult()
		}
		if _, ok := asInt(vals[1]); !ok {
			return store.ContradictionResult()
		}
	}
	if !cmp(vals[0], vals[1]) {
		return store.ContradictionResult()
	}
	if len(premises) == 0 {
		return store.EntailedResult(podlang.FromLiterals())
	}
	stmts := make([]podlang.Statement, len(premises))
	for i, p := range premises {
		stmts[i] = p.Statement
	}
	return store.EntailedResult(podlang.Derived(h.Pred, stmts...), premises...)
}

// CompareCopyHandler justifies Pred by finding an existing EDB fact of
// the same shape, binding any unbound wildcards to the fact's operands,
// matching lteq.rs's CopyLtEqHandler generalized across predicates.
type CompareCopyHandler struct {
	Pred podlang.NativePredicate
}

func (h CompareCopyHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 2 {
		return store.ContradictionResult()
	}
	sels, unresolved := selectorsFor(args, s)
	if unresolved {
		waits := pendingWildcards(args, s)
		if len(waits) == 0 {
			return store.ContradictionResult()
		}
		return store.SuspendResult(waits)
	}

	facts := db.Query(podlang.NativePred(h.Pred), sels)
	var choices []store.Choice
	for _, f := range facts {
		bindings, ok := bindingsFromFact(args, f, s)
		if !ok {
			continue
		}
		tag := podlang.CopyStatement(provenanceOf(db, podlang.NativePred(h.Pred), f))
		choices = append(choices, store.Choice{Bindings: bindings, Tag: tag, Premises: []store.Premise{{Statement: f, Tag: tag}}})
	}
	if len(choices) == 0 {
		return store.ContradictionResult()
	}
	return store.ChoicesResult(choices)
}

// selectorsFor builds one EDB query selector per arg: an exact selector
// for a ground arg (literal, bound wildcard, or anchored key whose root
// is bound), SelAnyVal for an unbound wildcard, and SelByKey for an
// anchored key whose root is unbound. unresolved is true only when an
// arg has none of these kinds (e.g. an empty slot), in which case no
// selectors are returned.
func selectorsFor(args []podlang.TemplateArg, s *store.ConstraintStore) (sels []edb.ArgSel, unresolved bool) {
	sels = make([]edb.ArgSel, len(args))
	for i, a := range args {
		switch a.Kind {
		case podlang.ArgLiteral:
			sels[i] = edb.SelLit(a.Literal)
		case podlang.ArgWildcard:
			if v, ok := s.Bindings[a.WildcardIndex]; ok {
				sels[i] = edb.SelLit(v)
			} else {
				sels[i] = edb.SelAnyVal()
			}
		case podlang.ArgAnchoredKey:
			if root, ok := store.BoundRoot(s, a.WildcardIndex); ok {
				sels[i] = edb.SelExact(root, a.Key)
			} else {
				sels[i] = edb.SelByKey(a.Key)
			}
		default:
			return nil, true
		}
	}
	return sels, false
}

func pendingWildcards(args []podlang.TemplateArg, s *store.ConstraintStore) []int {
	var out []int
	for _, w := range store.WildcardsIn(args) {
		if _, ok := s.Bindings[w]; !ok {
			out = append(out, w)
		}
	}
	return out
}

// bindingsFromFact derives the wildcard bindings a candidate fact
// implies for args, or ok=false if the fact is structurally
// incompatible (e.g. an anchored-key slot whose fact argument is a
// literal).
func bindingsFromFact(args []podlang.TemplateArg, fact podlang.Statement, s *store.ConstraintStore) ([]store.WildcardBinding, bool) {
	var out []store.WildcardBinding
	for i, a := range args {
		fa := fact.Args[i]
		switch a.Kind {
		case podlang.ArgLiteral:
			if !fa.IsLiteral() || !fa.Literal.Equal(a.Literal) {
				return nil, false
			}
		case podlang.ArgWildcard:
			if !fa.IsLiteral() {
				return nil, false
			}
			if existing, bound := s.Bindings[a.WildcardIndex]; bound {
				if !existing.Equal(fa.Literal) {
					return nil, false
				}
			} else {
				out = append(out, store.WildcardBinding{Wildcard: a.WildcardIndex, Value: fa.Literal})
			}
		case podlang.ArgAnchoredKey:
			if fa.IsLiteral() {
				return nil, false
			}
			if existing, bound := s.Bindings[a.WildcardIndex]; bound {
				if existing.Raw() != fa.Root {
					return nil, false
				}
			} else {
				out = append(out, store.WildcardBinding{Wildcard: a.WildcardIndex, Value: value.Raw(fa.Root)})
			}
		}
	}
	return out, true
}

// provenanceOf resolves which pod a fact came from, for the copy
// operation's source tag.
func provenanceOf(db *edb.EDB, pred podlang.Predicate, fact podlang.Statement) value.PodRef {
	for _, r := range db.QueryWithProvenance(pred, nil) {
		if r.Statement.Key() == fact.Key() {
			return r.Pod
		}
	}
	return value.PodRef{}
}
