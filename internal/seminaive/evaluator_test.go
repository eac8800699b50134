package seminaive_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/edb"
	"podsolve/internal/handlers"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/seminaive"
	"podsolve/internal/value"
)

func newEvaluator(db *edb.EDB) *seminaive.Evaluator {
	return seminaive.NewEvaluator(db, handlers.RegisterAll(), predicate.NewRegistry(), paramsconfig.DefaultParams())
}

func TestSolve_LiteralComparison(t *testing.T) {
	db := edb.NewBuilder().Build()
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgLit(value.Int(4)), podlang.ArgLit(value.Int(4))),
	)

	answer, err := newEvaluator(db).Solve(req)
	require.NoError(t, err)
	require.Len(t, answer.Requested, 1)
	require.True(t, answer.Requested[0].Equal(podlang.NewStatement(podlang.NativePred(podlang.PredEqual), podlang.Lit(value.Int(4)), podlang.Lit(value.Int(4)))))
}

func TestSolve_ContradictionHasNoProof(t *testing.T) {
	db := edb.NewBuilder().Build()
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgLit(value.Int(1)), podlang.ArgLit(value.Int(2))),
	)

	_, err := newEvaluator(db).Solve(req)
	require.Error(t, err)
}

// TestSolve_IndirectRecursionThroughMangle exercises the mangle
// delegation path end to end. precedesDirect touches a native Lt goal
// (CompareCopyHandler's full-table copy, the one native path that can
// enumerate every fact of a predicate from a completely unbound query,
// since the round loop always fires a rule under a fresh, uncommitted
// wildcard frame rather than the goal-directed bindings
// engine.Driver.solveCustomGoal would supply) and so stays on the
// hand-written round loop, but reachable and reachableVia, a
// mutually-recursive pair whose own rule bodies call nothing but other
// custom predicates, are classified mangle-eligible and their
// transitive closure is computed by
// github.com/google/mangle/engine.EvalProgramWithStats, seeded with the
// round loop's already-materialized precedesDirect facts as ground
// boundary input (classifyMangleEligible/buildMangleSource in
// mangle.go). The EDB only records that 1 precedes 2 and 2 precedes 3,
// so resolving reachable(1, 3) requires mangle to actually chase the
// reachableVia recursion, not just echo a fact the round loop produced
// directly.
func TestSolve_IndirectRecursionThroughMangle(t *testing.T) {
	podA := value.PodRef{ID: value.HashValues(value.String("pod:1-precedes-2"))}
	podB := value.PodRef{ID: value.HashValues(value.String("pod:2-precedes-3"))}
	db := edb.NewBuilder().
		AddStatement(podlang.NewStatement(podlang.NativePred(podlang.PredLt), podlang.Lit(value.Int(1)), podlang.Lit(value.Int(2))), podA).
		AddStatement(podlang.NewStatement(podlang.NativePred(podlang.PredLt), podlang.Lit(value.Int(2)), podlang.Lit(value.Int(3))), podB).
		Build()

	precedesDirectPred := podlang.CustomPredicate{
		Name:          "precedesDirect",
		Kind:          podlang.BodyAnd,
		ArgCount:      2,
		WildcardNames: []string{"from", "to"},
		Body: []podlang.StatementTemplate{
			podlang.NewTemplate(podlang.NativePred(podlang.PredLt), podlang.ArgWild(0, "from"), podlang.ArgWild(1, "to")),
		},
	}
	reachablePred := podlang.CustomPredicate{
		Name:          "reachable",
		Kind:          podlang.BodyOr,
		ArgCount:      2,
		WildcardNames: []string{"from", "to"},
		Body: []podlang.StatementTemplate{
			podlang.NewTemplate(podlang.BatchSelf(0, "precedesDirect"), podlang.ArgWild(0, "from"), podlang.ArgWild(1, "to")),
			podlang.NewTemplate(podlang.BatchSelf(2, "reachableVia"), podlang.ArgWild(0, "from"), podlang.ArgWild(1, "to")),
		},
	}
	reachableViaPred := podlang.CustomPredicate{
		Name:          "reachableVia",
		Kind:          podlang.BodyAnd,
		ArgCount:      2,
		WildcardNames: []string{"from", "to", "mid"},
		Body: []podlang.StatementTemplate{
			podlang.NewTemplate(podlang.BatchSelf(1, "reachable"), podlang.ArgWild(0, "from"), podlang.ArgWild(2, "mid")),
			podlang.NewTemplate(podlang.BatchSelf(0, "precedesDirect"), podlang.ArgWild(2, "mid"), podlang.ArgWild(1, "to")),
		},
	}
	batch := podlang.NewCustomPredicateBatch([]podlang.CustomPredicate{precedesDirectPred, reachablePred, reachableViaPred})

	predicates := predicate.NewRegistry()
	require.NoError(t, predicates.Register(batch))

	evaluator := seminaive.NewEvaluator(db, handlers.RegisterAll(), predicates, paramsconfig.DefaultParams())
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.CustomPred(batch.Ref(1)), podlang.ArgLit(value.Int(1)), podlang.ArgLit(value.Int(3))),
	)

	answer, err := evaluator.Solve(req)
	require.NoError(t, err)
	require.Len(t, answer.Requested, 1)
	require.True(t, answer.Requested[0].Equal(podlang.NewStatement(podlang.CustomPred(batch.Ref(1)), podlang.Lit(value.Int(1)), podlang.Lit(value.Int(3)))))
}

func TestSolve_ContainsCopyBindsWildcard(t *testing.T) {
	pod := value.PodRef{ID: value.HashValues(value.String("pod:carol"))}
	root := value.HashValues(value.String("dict:carol"))
	key := value.String("balance")
	fact := podlang.NewStatement(podlang.NativePred(podlang.PredContains), podlang.Lit(value.Raw(root)), podlang.Lit(key), podlang.Lit(value.Int(100)))
	db := edb.NewBuilder().AddStatement(fact, pod).Build()

	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredContains), podlang.ArgLit(value.Raw(root)), podlang.ArgLit(key), podlang.ArgWild(0, "v")),
	)

	answer, err := newEvaluator(db).Solve(req)
	require.NoError(t, err)
	require.Len(t, answer.Requested, 1)
	got, ok := answer.Requested[0].Args[2].Literal.AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 100, got)
}
