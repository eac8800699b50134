package prover

import (
	"fmt"
	"sort"

	"podsolve/internal/edb"
	"podsolve/internal/engine"
	"podsolve/internal/errs"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/proof"
	"podsolve/internal/value"
)

// Builder accumulates the pieces a cryptographic ProveFunc needs:
// the input-pod cover and the ordered, public-flagged operation list.
// podsolve populates it; the caller's ProveFunc consumes it.
type Builder struct {
	InputPods  []value.PodRef
	Operations []Operation
}

// AddInputPod records one pod the proof depends on.
func (b *Builder) AddInputPod(ref value.PodRef) { b.InputPods = append(b.InputPods, ref) }

// PubOp appends a publicly-visible operation.
func (b *Builder) PubOp(op Operation) {
	op.Public = true
	b.Operations = append(b.Operations, op)
}

// PrivOp appends a privately-visible operation.
func (b *Builder) PrivOp(op Operation) {
	op.Public = false
	b.Operations = append(b.Operations, op)
}

// ProveFunc runs the cryptographic prover over a populated Builder and
// returns the MainPod it manufactures. podsolve never implements one
// itself (spec.md §4.7: "the core does not construct the cryptographic
// MainPod itself").
type ProveFunc func(b *Builder) (*podlang.MainPod, error)

// PublicSelector decides which DAG nodes the built pod exposes
// publicly; defaults to proof.PublicStatements (spec.md §4.6's
// top-level policy) when nil is passed to BuildPodFromAnswer.
type PublicSelector func(d *proof.DAG, answer *engine.Answer) map[string]bool

// VerifyingDataSet is the opaque set of verifier keys a recursive proof
// is checked against; podsolve threads it through to ProveFunc
// untouched, since validating it is the cryptographic prover's job.
type VerifyingDataSet any

// BuildPodFromAnswer implements spec.md §4.7's build_pod_from_answer: it
// builds the proof DAG, replays every node into an Operation in
// dependency order, applies the public selector, covers the input pods,
// and hands the populated Builder to proveFn.
func BuildPodFromAnswer(
	answer *engine.Answer,
	params *paramsconfig.Params,
	vdSet VerifyingDataSet,
	proveFn ProveFunc,
	db *edb.EDB,
	publicSelector PublicSelector,
) (*podlang.MainPod, error) {
	dag := proof.Build(answer)
	if len(dag.Nodes) > params.MaxStatements {
		return nil, errs.New(errs.DepthExceeded, "build_pod_from_answer", nil)
	}

	if publicSelector == nil {
		publicSelector = func(d *proof.DAG, a *engine.Answer) map[string]bool {
			return proof.PublicStatements(d, a)
		}
	}
	public := publicSelector(dag, answer)

	b := &Builder{}
	for _, ref := range proof.MinimalInputPods(dag, db) {
		b.AddInputPod(ref)
	}

	publicCount := 0
	for _, n := range proof.TopoOrder(dag) {
		op, err := mapToOperation(n, db)
		if err != nil {
			return nil, err
		}
		if public[n.Statement.Key()] {
			publicCount++
			if publicCount > params.MaxPublicStatements {
				return nil, errs.New(errs.DepthExceeded, "build_pod_from_answer", nil)
			}
			b.PubOp(op)
		} else {
			b.PrivOp(op)
		}
	}

	if params.UseMockProofs {
		return mockProve(b), nil
	}
	if proveFn == nil {
		return nil, errs.New(errs.ProverError, "build_pod_from_answer", fmt.Errorf("no ProveFunc supplied"))
	}
	pod, err := proveFn(b)
	if err != nil {
		return nil, errs.New(errs.ProverError, "build_pod_from_answer", err)
	}
	return pod, nil
}

// mockProve assembles a MainPod directly from the builder's operation
// list without invoking any cryptographic prover, for tests and
// development that only care about operation-list shape (spec.md §6
// Params.use_mock_proofs).
func mockProve(b *Builder) *podlang.MainPod {
	pod := &podlang.MainPod{InputPods: append([]value.PodRef(nil), b.InputPods...)}
	for _, op := range b.Operations {
		if op.Public {
			pod.PublicStatements = append(pod.PublicStatements, op.Head)
		} else {
			pod.PrivateStatements = append(pod.PrivateStatements, op.Head)
		}
	}
	pod.ID = mockPodID(pod)
	return pod
}

func mockPodID(pod *podlang.MainPod) value.Hash {
	vals := make([]value.Value, 0, len(pod.PublicStatements)+len(pod.PrivateStatements))
	for _, s := range pod.AllStatements() {
		vals = append(vals, value.String(s.Key()))
	}
	sort.Slice(vals, func(i, j int) bool {
		vi, _ := vals[i].String2()
		vj, _ := vals[j].String2()
		return vi < vj
	})
	return value.HashValues(vals...)
}
