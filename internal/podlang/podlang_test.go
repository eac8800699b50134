package podlang_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

func TestStatement_KeyDedupsStructurallyEqual(t *testing.T) {
	a := podlang.NewStatement(podlang.NativePred(podlang.PredEqual), podlang.Lit(value.Int(1)), podlang.Lit(value.Int(1)))
	b := podlang.NewStatement(podlang.NativePred(podlang.PredEqual), podlang.Lit(value.Int(1)), podlang.Lit(value.Int(1)))
	require.Equal(t, a.Key(), b.Key())
	require.True(t, a.Equal(b))
}

func TestStatement_KeyDiffersOnArgs(t *testing.T) {
	a := podlang.NewStatement(podlang.NativePred(podlang.PredEqual), podlang.Lit(value.Int(1)), podlang.Lit(value.Int(1)))
	b := podlang.NewStatement(podlang.NativePred(podlang.PredEqual), podlang.Lit(value.Int(1)), podlang.Lit(value.Int(2)))
	require.NotEqual(t, a.Key(), b.Key())
	require.False(t, a.Equal(b))
}

func TestValueRef_AnchoredKeyEqualityIgnoresLiteral(t *testing.T) {
	root := value.HashValues(value.String("dict"))
	key := value.NewKey("amount")
	a := podlang.Anchored(root, key)
	b := podlang.Anchored(root, key)
	require.True(t, a.Equal(b))
	require.True(t, a.IsAnchoredKey())
	require.False(t, a.IsLiteral())
}

func TestPredicate_NativeEqualityByTag(t *testing.T) {
	a := podlang.NativePred(podlang.PredLt)
	b := podlang.NativePred(podlang.PredLt)
	c := podlang.NativePred(podlang.PredLtEq)
	require.True(t, a.Equal(b))
	require.False(t, a.Equal(c))
	require.Equal(t, "lt", a.String())
	require.Equal(t, 2, podlang.PredLt.Arity())
}

func TestPredicate_CustomEqualityByBatchAndIndex(t *testing.T) {
	ref1 := podlang.CustomPredicateRef{BatchHash: value.HashValues(value.String("batch")), Index: 0, Name: "over18"}
	ref2 := ref1
	ref3 := ref1
	ref3.Index = 1

	p1 := podlang.CustomPred(ref1)
	p2 := podlang.CustomPred(ref2)
	p3 := podlang.CustomPred(ref3)
	require.True(t, p1.Equal(p2))
	require.False(t, p1.Equal(p3))
	require.True(t, p1.IsCustom())
	require.False(t, p1.IsNative())
}

func TestTemplate_WildcardCountCoversAnchoredKeys(t *testing.T) {
	tmpl := podlang.NewTemplate(
		podlang.NativePred(podlang.PredContains),
		podlang.ArgAnchored(2, "root", value.NewKey("amount")),
		podlang.ArgLit(value.String("amount")),
		podlang.ArgWild(0, "v"),
	)
	require.Equal(t, 3, tmpl.WildcardCount())
}

func TestCustomPredicateBatch_SelfRefsResolveToRealHash(t *testing.T) {
	batch := podlang.NewCustomPredicateBatch([]podlang.CustomPredicate{
		{
			Name:     "base",
			Kind:     podlang.BodyAnd,
			ArgCount: 1,
			Body: []podlang.StatementTemplate{
				podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgWild(0, "x"), podlang.ArgWild(0, "x")),
			},
		},
		{
			Name:     "calls_base",
			Kind:     podlang.BodyAnd,
			ArgCount: 1,
			Body: []podlang.StatementTemplate{
				podlang.NewTemplate(podlang.BatchSelf(0, "base"), podlang.ArgWild(0, "x")),
			},
		},
	})

	require.NotEqual(t, value.ZeroHash, batch.Hash)
	callsBase := batch.Predicates[1]
	resolvedPred := callsBase.Body[0].Predicate
	require.True(t, resolvedPred.IsCustom())
	require.Equal(t, batch.Hash, resolvedPred.Custom.BatchHash)

	ref := batch.Ref(0)
	require.Equal(t, "base", ref.Name)
	require.Equal(t, batch.Hash, ref.BatchHash)
}
