package prover_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/edb"
	"podsolve/internal/engine"
	"podsolve/internal/handlers"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/prover"
	"podsolve/internal/value"
)

func solveEqualLiterals(t *testing.T) (*engine.Answer, *edb.EDB) {
	t.Helper()
	db := edb.NewBuilder().Build()
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgLit(value.Int(3)), podlang.ArgLit(value.Int(3))),
	)
	d := engine.NewDriver(db, handlers.RegisterAll(), predicate.NewRegistry(), paramsconfig.DefaultParams())
	answer, err := d.Solve(req)
	require.NoError(t, err)
	return answer, db
}

func TestBuildPodFromAnswer_MockProve(t *testing.T) {
	answer, db := solveEqualLiterals(t)
	params := paramsconfig.DefaultParams()
	params.UseMockProofs = true

	pod, err := prover.BuildPodFromAnswer(answer, params, nil, nil, db, nil)
	require.NoError(t, err)
	require.NotEmpty(t, pod.PublicStatements)
	require.Contains(t, statementStrings(pod.PublicStatements), answer.Requested[0].String())
}

func TestBuildPodFromAnswer_NoProveFuncErrors(t *testing.T) {
	answer, db := solveEqualLiterals(t)
	params := paramsconfig.DefaultParams()
	params.UseMockProofs = false

	_, err := prover.BuildPodFromAnswer(answer, params, nil, nil, db, nil)
	require.Error(t, err)
}

func TestBuildPodFromAnswer_InvokesProveFunc(t *testing.T) {
	answer, db := solveEqualLiterals(t)
	params := paramsconfig.DefaultParams()
	params.UseMockProofs = false

	called := false
	proveFn := func(b *prover.Builder) (*podlang.MainPod, error) {
		called = true
		require.NotEmpty(t, b.Operations)
		return &podlang.MainPod{PublicStatements: []podlang.Statement{answer.Requested[0]}}, nil
	}

	pod, err := prover.BuildPodFromAnswer(answer, params, nil, proveFn, db, nil)
	require.NoError(t, err)
	require.True(t, called)
	require.Len(t, pod.PublicStatements, 1)
}

func statementStrings(stmts []podlang.Statement) []string {
	out := make([]string, len(stmts))
	for i, s := range stmts {
		out[i] = s.String()
	}
	return out
}
