package render_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/edb"
	"podsolve/internal/engine"
	"podsolve/internal/handlers"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/render"
	"podsolve/internal/value"
)

func TestDAG_RendersRequestedStatement(t *testing.T) {
	db := edb.NewBuilder().Build()
	req := podlang.NewRequest(
		podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgLit(value.Int(1)), podlang.ArgLit(value.Int(1))),
	)
	d := engine.NewDriver(db, handlers.RegisterAll(), predicate.NewRegistry(), paramsconfig.DefaultParams())
	answer, err := d.Solve(req)
	require.NoError(t, err)

	out := render.DAG(answer)
	require.True(t, strings.Contains(out, "equal"))
	require.True(t, strings.Contains(out, "from_literals"))
}
