package store

import (
	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

// ResultKind tags a handler's verdict for one goal (spec.md §4.4).
type ResultKind int

const (
	// Entailed: the goal holds outright, justified by Tag and the
	// accompanying Premises (empty for a literal-only deduction).
	Entailed ResultKind = iota
	// Choices: the goal holds under one of several alternative
	// bindings; the engine branches, trying each in turn.
	Choices
	// Suspend: the goal cannot be evaluated yet; retry once any
	// wildcard in On becomes bound.
	Suspend
	// Contradiction: the goal cannot hold under the current bindings.
	Contradiction
)

// WildcardBinding is one (wildcard index, value) pair a Choice or an
// Entailed result fixes.
type WildcardBinding struct {
	Wildcard int
	Value    value.Value
}

// Choice is one alternative a Choices result offers.
type Choice struct {
	Bindings []WildcardBinding
	Tag      podlang.OpTag
	Premises []Premise
}

// PropagatorResult is what an OpHandler returns for one goal against
// one ConstraintStore state.
type PropagatorResult struct {
	Kind         ResultKind
	Bindings     []WildcardBinding // new bindings for Entailed
	Premises     []Premise         // supporting facts for Entailed
	Tag          podlang.OpTag
	Alternatives []Choice
	On           []int
}

func EntailedResult(tag podlang.OpTag, premises ...Premise) PropagatorResult {
	return PropagatorResult{Kind: Entailed, Tag: tag, Premises: premises}
}

func EntailedWithBindings(tag podlang.OpTag, bindings []WildcardBinding, premises ...Premise) PropagatorResult {
	return PropagatorResult{Kind: Entailed, Tag: tag, Bindings: bindings, Premises: premises}
}

func ChoicesResult(alts []Choice) PropagatorResult {
	return PropagatorResult{Kind: Choices, Alternatives: alts}
}

// SuspendResult builds a Suspend PropagatorResult, deduped and sorted
// so the engine's wake-up bookkeeping is deterministic.
func SuspendResult(on []int) PropagatorResult {
	seen := make(map[int]bool, len(on))
	out := make([]int, 0, len(on))
	for _, w := range on {
		if !seen[w] {
			seen[w] = true
			out = append(out, w)
		}
	}
	return PropagatorResult{Kind: Suspend, On: out}
}

func ContradictionResult() PropagatorResult {
	return PropagatorResult{Kind: Contradiction}
}

// OpHandler deduces or refutes one StatementTemplate goal against a
// ConstraintStore and the EDB (spec.md §4.4). Handlers never mutate the
// store directly: the engine applies bindings from a returned
// PropagatorResult only once it commits to a branch.
type OpHandler interface {
	Propagate(args []podlang.TemplateArg, store *ConstraintStore, db *edb.EDB) PropagatorResult
}

// Registry maps a native predicate to its ordered list of handlers, in
// registration order (see handlers.RegisterAll for the order per
// predicate); the engine tries each in turn, skipping those that return
// Contradiction.
type Registry struct {
	handlers map[podlang.NativePredicate][]OpHandler
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[podlang.NativePredicate][]OpHandler)}
}

func (r *Registry) Register(pred podlang.NativePredicate, h OpHandler) {
	r.handlers[pred] = append(r.handlers[pred], h)
}

func (r *Registry) Handlers(pred podlang.NativePredicate) []OpHandler {
	return r.handlers[pred]
}
