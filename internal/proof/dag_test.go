package proof_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/edb"
	"podsolve/internal/engine"
	"podsolve/internal/handlers"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/proof"
	"podsolve/internal/value"
)

func solveContainsCopy(t *testing.T) (*engine.Answer, value.PodRef, *edb.EDB) {
	t.Helper()
	pod := value.PodRef{ID: value.HashValues(value.String("pod:bob"))}
	root := value.HashValues(value.String("dict:bob"))
	key := value.String("score")
	fact := podlang.NewStatement(podlang.NativePred(podlang.PredContains), podlang.Lit(value.Raw(root)), podlang.Lit(key), podlang.Lit(value.Int(7)))
	db := edb.NewBuilder().AddStatement(fact, pod).Build()

	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredContains), podlang.ArgLit(value.Raw(root)), podlang.ArgLit(key), podlang.ArgWild(0, "v")),
	)

	d := engine.NewDriver(db, handlers.RegisterAll(), predicate.NewRegistry(), paramsconfig.DefaultParams())
	answer, err := d.Solve(req)
	require.NoError(t, err)
	return answer, pod, db
}

func TestBuild_MarksRequestedPublic(t *testing.T) {
	answer, pod, db := solveContainsCopy(t)

	dag := proof.Build(answer)
	require.NotEmpty(t, dag.Nodes)

	public := proof.PublicStatements(dag, answer)
	for _, s := range answer.Requested {
		require.True(t, public[s.Key()], "requested statement %s should be public", s)
	}

	pods := proof.MinimalInputPods(dag, db)
	require.Len(t, pods, 1)
	require.Equal(t, pod.ID, pods[0].ID)
}

func TestMinimalInputPods_PrefersSharedPodWhenStatementHasMultipleProviders(t *testing.T) {
	podBob := value.PodRef{ID: value.HashValues(value.String("pod:bob"))}
	podAlice := value.PodRef{ID: value.HashValues(value.String("pod:alice"))}
	root := value.HashValues(value.String("dict:bob"))
	key := value.String("score")
	shared := podlang.NewStatement(podlang.NativePred(podlang.PredContains), podlang.Lit(value.Raw(root)), podlang.Lit(key), podlang.Lit(value.Int(7)))
	onlyBob := podlang.NewStatement(podlang.NativePred(podlang.PredContains), podlang.Lit(value.Raw(root)), podlang.Lit(value.String("rank")), podlang.Lit(value.Int(1)))

	db := edb.NewBuilder().
		AddStatement(shared, podBob).
		AddStatement(shared, podAlice).
		AddStatement(onlyBob, podBob).
		Build()

	d := &proof.DAG{Nodes: []proof.Node{
		{Statement: shared, Tag: podlang.CopyStatement(podAlice)},
		{Statement: onlyBob, Tag: podlang.CopyStatement(podBob)},
	}}

	pods := proof.MinimalInputPods(d, db)
	require.Len(t, pods, 1, "pod:bob alone provides both statements, so it should be the whole cover")
	require.Equal(t, podBob.ID, pods[0].ID)
}

func TestLookup_FindsRecordedNode(t *testing.T) {
	answer, _, _ := solveContainsCopy(t)
	dag := proof.Build(answer)

	goal := answer.Requested[0]
	node, ok := dag.Lookup(goal.Key())
	require.True(t, ok)
	require.True(t, node.Statement.Equal(goal))
	require.Equal(t, podlang.OpCopyStatement, node.Tag.Kind)
}
