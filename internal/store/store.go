// Package store implements the ConstraintStore the engine thread carries
// through a single solve: wildcard bindings, the premises accumulated so
// far, the input pods referenced, and the set of goals currently
// suspended on an unbound wildcard (spec.md §4.3). Grounded on
// original_source/core/new_solver/src/util.rs's ConstraintStore usage
// and the PropagatorResult/Choice shapes its handlers return.
package store

import (
	"sort"
	"strconv"

	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

// Premise pairs a ground Statement with the OpTag that justifies it,
// the unit the proof DAG is built from (spec.md §4.6).
type Premise struct {
	Statement podlang.Statement
	Tag       podlang.OpTag
}

// ConstraintStore carries one search branch's accumulated state. Copy
// is a deep-enough clone for the choice-point search to fork branches
// without aliasing mutable maps.
type ConstraintStore struct {
	Bindings  map[int]value.Value
	Premises  []Premise
	InputPods map[value.Hash]value.PodRef
	// Waits maps a suspended goal's index (in the engine's goal list) to
	// the wildcard indices it is blocked on.
	Waits map[int][]int
}

func NewConstraintStore() *ConstraintStore {
	return &ConstraintStore{
		Bindings:  make(map[int]value.Value),
		InputPods: make(map[value.Hash]value.PodRef),
		Waits:     make(map[int][]int),
	}
}

// Clone deep-copies the store for an independent search branch.
func (s *ConstraintStore) Clone() *ConstraintStore {
	c := &ConstraintStore{
		Bindings:  make(map[int]value.Value, len(s.Bindings)),
		Premises:  append([]Premise(nil), s.Premises...),
		InputPods: make(map[value.Hash]value.PodRef, len(s.InputPods)),
		Waits:     make(map[int][]int, len(s.Waits)),
	}
	for k, v := range s.Bindings {
		c.Bindings[k] = v
	}
	for k, v := range s.InputPods {
		c.InputPods[k] = v
	}
	for k, v := range s.Waits {
		c.Waits[k] = append([]int(nil), v...)
	}
	return c
}

// Bind records a wildcard binding, reporting false if it conflicts with
// an existing binding of the same wildcard to a different value
// (spec.md §4.3 edge case: a Contradiction, not a panic).
func (s *ConstraintStore) Bind(wildcard int, v value.Value) bool {
	if existing, ok := s.Bindings[wildcard]; ok {
		return existing.Equal(v)
	}
	s.Bindings[wildcard] = v
	return true
}

// AddPremise appends one justified Statement, deduping by statement key
// so the same fact used twice doesn't bloat the proof DAG.
func (s *ConstraintStore) AddPremise(p Premise) {
	for _, existing := range s.Premises {
		if existing.Statement.Key() == p.Statement.Key() {
			return
		}
	}
	s.Premises = append(s.Premises, p)
}

// AddInputPod records that ref contributed to this branch's proof.
func (s *ConstraintStore) AddInputPod(ref value.PodRef) {
	s.InputPods[ref.ID] = ref
}

// Fingerprint returns a deterministic string summarizing the store's
// bindings: stores with the same bindings give the same string. The
// engine keeps no fingerprint cache and does not call it.
func (s *ConstraintStore) Fingerprint() string {
	keys := make([]int, 0, len(s.Bindings))
	for k := range s.Bindings {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	out := make([]byte, 0, len(keys)*24)
	for _, k := range keys {
		out = append(out, []byte(strconv.Itoa(k))...)
		out = append(out, ':')
		out = append(out, []byte(s.Bindings[k].Raw().String())...)
		out = append(out, ';')
	}
	return string(out)
}
