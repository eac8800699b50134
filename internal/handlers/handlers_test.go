package handlers_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/edb"
	"podsolve/internal/handlers"
	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

func firstHandler(t *testing.T, pred podlang.NativePredicate) store.OpHandler {
	t.Helper()
	hs := handlers.RegisterAll().Handlers(pred)
	require.NotEmpty(t, hs)
	return hs[0]
}

func TestSumOf_ValidatesGroundTriple(t *testing.T) {
	h := firstHandler(t, podlang.PredSumOf)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	args := []podlang.TemplateArg{podlang.ArgLit(value.Int(5)), podlang.ArgLit(value.Int(2)), podlang.ArgLit(value.Int(3))}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Entailed, res.Kind)
}

func TestSumOf_RejectsWrongSum(t *testing.T) {
	h := firstHandler(t, podlang.PredSumOf)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	args := []podlang.TemplateArg{podlang.ArgLit(value.Int(9)), podlang.ArgLit(value.Int(2)), podlang.ArgLit(value.Int(3))}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Contradiction, res.Kind)
}

func TestSumOf_InvertsForMissingOperand(t *testing.T) {
	h := firstHandler(t, podlang.PredSumOf)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	args := []podlang.TemplateArg{podlang.ArgLit(value.Int(5)), podlang.ArgWild(0, "b"), podlang.ArgLit(value.Int(3))}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Entailed, res.Kind)
	require.Len(t, res.Bindings, 1)
	require.Equal(t, 0, res.Bindings[0].Wildcard)
	n, ok := res.Bindings[0].Value.AsInt64()
	require.True(t, ok)
	require.EqualValues(t, 2, n)
}

func TestProductOf_InvertFailsOnNonDivisibleResult(t *testing.T) {
	h := firstHandler(t, podlang.PredProductOf)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	args := []podlang.TemplateArg{podlang.ArgLit(value.Int(7)), podlang.ArgWild(0, "b"), podlang.ArgLit(value.Int(2))}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Contradiction, res.Kind)
}

func TestMaxOf_NotInvertibleSuspendsOnMissingOperand(t *testing.T) {
	h := firstHandler(t, podlang.PredMaxOf)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	args := []podlang.TemplateArg{podlang.ArgWild(2, "r"), podlang.ArgLit(value.Int(5)), podlang.ArgWild(0, "c")}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Suspend, res.Kind)
}

func TestCompareFromEntries_LtHoldsOnGroundInts(t *testing.T) {
	h := firstHandler(t, podlang.PredLt)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	args := []podlang.TemplateArg{podlang.ArgLit(value.Int(2)), podlang.ArgLit(value.Int(3))}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Entailed, res.Kind)
}

func TestCompareFromEntries_LtFailsOnGroundInts(t *testing.T) {
	h := firstHandler(t, podlang.PredLt)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	args := []podlang.TemplateArg{podlang.ArgLit(value.Int(5)), podlang.ArgLit(value.Int(3))}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Contradiction, res.Kind)
}

func TestCompareFromEntries_EqualSuspendsOnUnboundWildcard(t *testing.T) {
	h := firstHandler(t, podlang.PredEqual)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	args := []podlang.TemplateArg{podlang.ArgLit(value.Int(1)), podlang.ArgWild(0, "x")}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Suspend, res.Kind)
}

func TestHashOf_BindsResultFromKnownOperands(t *testing.T) {
	h := firstHandler(t, podlang.PredHashOf)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	b := value.String("b")
	c := value.Int(7)
	args := []podlang.TemplateArg{podlang.ArgWild(0, "a"), podlang.ArgLit(b), podlang.ArgLit(c)}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Entailed, res.Kind)
	require.Len(t, res.Bindings, 1)
	require.True(t, res.Bindings[0].Value.Equal(value.Raw(value.HashValues(b, c))))
}

func TestHashOf_ValidatesGroundResult(t *testing.T) {
	h := firstHandler(t, podlang.PredHashOf)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	b := value.String("b")
	c := value.Int(7)
	a := value.Raw(value.HashValues(b, c))
	args := []podlang.TemplateArg{podlang.ArgLit(a), podlang.ArgLit(b), podlang.ArgLit(c)}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Entailed, res.Kind)
}

func TestHashOf_SuspendsOnUnboundOperand(t *testing.T) {
	h := firstHandler(t, podlang.PredHashOf)
	db := edb.NewBuilder().Build()
	s := store.NewConstraintStore()

	args := []podlang.TemplateArg{podlang.ArgWild(0, "a"), podlang.ArgWild(1, "b"), podlang.ArgLit(value.Int(1))}
	res := h.Propagate(args, s, db)
	require.Equal(t, store.Suspend, res.Kind)
}
