package compare_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/compare"
	"podsolve/internal/edb"
	"podsolve/internal/handlers"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/value"
)

func TestRun_AgreeOnLiteralComparison(t *testing.T) {
	db := edb.NewBuilder().Build()
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgLit(value.Int(9)), podlang.ArgLit(value.Int(9))),
	)

	report, err := compare.Run(db, handlers.RegisterAll(), predicate.NewRegistry(), paramsconfig.DefaultParams(), req)
	require.NoError(t, err)
	require.True(t, report.Agreement)
	require.Empty(t, report.OnlyTopDown)
	require.Empty(t, report.OnlyBottomUp)
	require.NotEmpty(t, report.TopDown)
	require.NotEmpty(t, report.BottomUp)
}

func TestRun_AgreeOnContainsCopy(t *testing.T) {
	pod := value.PodRef{ID: value.HashValues(value.String("pod:dana"))}
	root := value.HashValues(value.String("dict:dana"))
	key := value.String("count")
	fact := podlang.NewStatement(podlang.NativePred(podlang.PredContains), podlang.Lit(value.Raw(root)), podlang.Lit(key), podlang.Lit(value.Int(3)))
	db := edb.NewBuilder().AddStatement(fact, pod).Build()

	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredContains), podlang.ArgLit(value.Raw(root)), podlang.ArgLit(key), podlang.ArgWild(0, "v")),
	)

	report, err := compare.Run(db, handlers.RegisterAll(), predicate.NewRegistry(), paramsconfig.DefaultParams(), req)
	require.NoError(t, err)
	require.True(t, report.Agreement)
}

func TestRun_ErrorsOnContradiction(t *testing.T) {
	db := edb.NewBuilder().Build()
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgLit(value.Int(1)), podlang.ArgLit(value.Int(2))),
	)

	_, err := compare.Run(db, handlers.RegisterAll(), predicate.NewRegistry(), paramsconfig.DefaultParams(), req)
	require.Error(t, err)
}
