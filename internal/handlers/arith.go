package handlers

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

// ternaryOp is one ternary arithmetic native predicate's semantics:
// Result = Forward(B, C). Invert, when non-nil, solves for one operand
// given the result and the other operand (Sum and Product are fully
// invertible; Max is not, so its Invert is nil and the handler only
// validates/suspends on missing operands, matching the asymmetry the
// original solver's MaxOf handler also exhibits for the undeterminable
// cases).
type ternaryOp struct {
	Pred    podlang.NativePredicate
	Forward func(b, c int64) int64
	Invert  func(result, known int64) (other int64, ok bool)
}

var ternaryOps = map[podlang.NativePredicate]ternaryOp{
	podlang.PredSumOf: {
		Pred:    podlang.PredSumOf,
		Forward: func(b, c int64) int64 { return b + c },
		Invert:  func(result, known int64) (int64, bool) { return result - known, true },
	},
	podlang.PredProductOf: {
		Pred:    podlang.PredProductOf,
		Forward: func(b, c int64) int64 { return b * c },
		Invert: func(result, known int64) (int64, bool) {
			if known == 0 || result%known != 0 {
				return 0, false
			}
			return result / known, true
		},
	},
	podlang.PredMaxOf: {
		Pred:    podlang.PredMaxOf,
		Forward: func(b, c int64) int64 {
			if b > c {
				return b
			}
			return c
		},
	},
}

// TernaryArithFromEntriesHandler generalizes sumof.rs/maxof.rs: it
// classifies Result, B, C, validates when all three are ground, and
// binds the remaining wildcard when exactly two are ground: Result is
// computed forward from B and C, while an operand is bound only when
// the predicate is invertible.
type TernaryArithFromEntriesHandler struct {
	Op ternaryOp
}

func (h TernaryArithFromEntriesHandler) Propagate(args []podlang.TemplateArg, s *store.ConstraintStore, db *edb.EDB) store.PropagatorResult {
	if len(args) != 3 {
		return store.ContradictionResult()
	}
	classes := make([]classified, 3)
	for i, a := range args {
		classes[i] = classify(a, s, db)
	}
	for _, c := range classes {
		if c.kind == classTypeError || c.kind == classNoFact {
			return store.ContradictionResult()
		}
	}

	var groundIdx []int
	var waits []int
	for i, c := range classes {
		switch c.kind {
		case classGround:
			groundIdx = append(groundIdx, i)
		case classWait:
			waits = append(waits, c.wait)
		}
	}

	if len(groundIdx) < 2 {
		if len(waits) == 0 {
			return store.ContradictionResult()
		}
		return store.SuspendResult(waits)
	}

	if len(groundIdx) == 3 {
		ri, _ := asInt(classes[0].value)
		bi, _ := asInt(classes[1].value)
		ci, _ := asInt(classes[2].value)
		if h.Op.Forward(bi, ci) != ri {
			return store.ContradictionResult()
		}
		var premises []store.Premise
		for _, c := range classes {
			premises = append(premises, c.premises...)
		}
		if len(premises) == 0 {
			return store.EntailedResult(podlang.FromLiterals())
		}
		stmts := make([]podlang.Statement, len(premises))
		for i, p := range premises {
			stmts[i] = p.Statement
		}
		return store.EntailedResult(podlang.Derived(h.Op.Pred, stmts...), premises...)
	}

	// Exactly two ground; the remaining slot must be a bare wildcard
	// (not an anchored key: binding an AK's value isn't meaningful), and
	// solving for an operand (rather than Result) needs an invertible
	// predicate.
	unknown := 0
	for unknown < 3 && classes[unknown].kind != classWait {
		unknown++
	}
	if args[unknown].Kind != podlang.ArgWildcard || (unknown != 0 && h.Op.Invert == nil) {
		if len(waits) == 0 {
			return store.ContradictionResult()
		}
		return store.SuspendResult(waits)
	}

	var result int64
	switch unknown {
	case 0:
		bi, _ := asInt(classes[1].value)
		ci, _ := asInt(classes[2].value)
		result = h.Op.Forward(bi, ci)
	case 1:
		ri, _ := asInt(classes[0].value)
		ci, _ := asInt(classes[2].value)
		v, ok := h.Op.Invert(ri, ci)
		if !ok {
			return store.ContradictionResult()
		}
		result = v
	default:
		ri, _ := asInt(classes[0].value)
		bi, _ := asInt(classes[1].value)
		v, ok := h.Op.Invert(ri, bi)
		if !ok {
			return store.ContradictionResult()
		}
		result = v
	}

	var premises []store.Premise
	for i, c := range classes {
		if i != unknown {
			premises = append(premises, c.premises...)
		}
	}
	tag := podlang.FromLiterals()
	if len(premises) > 0 {
		stmts := make([]podlang.Statement, len(premises))
		for i, p := range premises {
			stmts[i] = p.Statement
		}
		tag = podlang.Derived(h.Op.Pred, stmts...)
	}
	binding := store.WildcardBinding{Wildcard: args[unknown].WildcardIndex, Value: value.Int(result)}
	return store.EntailedWithBindings(tag, []store.WildcardBinding{binding}, premises...)
}
