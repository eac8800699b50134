package predicate_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/value"
)

func TestRegister_AndBodyYieldsOneRule(t *testing.T) {
	batch := podlang.NewCustomPredicateBatch([]podlang.CustomPredicate{
		{
			Name:     "both_equal",
			Kind:     podlang.BodyAnd,
			ArgCount: 2,
			Body: []podlang.StatementTemplate{
				podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgWild(0, "a"), podlang.ArgWild(1, "b")),
				podlang.NewTemplate(podlang.NativePred(podlang.PredLt), podlang.ArgWild(1, "b"), podlang.ArgWild(0, "a")),
			},
		},
	})

	reg := predicate.NewRegistry()
	require.NoError(t, reg.Register(batch))

	ref := batch.Ref(0)
	rules, ok := reg.Rules(ref)
	require.True(t, ok)
	require.Len(t, rules, 1)
	require.Len(t, rules[0].Body, 2)
}

func TestRegister_OrBodyYieldsOneRulePerDisjunct(t *testing.T) {
	batch := podlang.NewCustomPredicateBatch([]podlang.CustomPredicate{
		{
			Name:     "either",
			Kind:     podlang.BodyOr,
			ArgCount: 1,
			Body: []podlang.StatementTemplate{
				podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgWild(0, "x"), podlang.ArgLit(value.String("a"))),
				podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgWild(0, "x"), podlang.ArgLit(value.String("b"))),
			},
		},
	})

	reg := predicate.NewRegistry()
	require.NoError(t, reg.Register(batch))

	rules, ok := reg.Rules(batch.Ref(0))
	require.True(t, ok)
	require.Len(t, rules, 2)
	for _, r := range rules {
		require.Len(t, r.Body, 1)
	}
}

func TestRegister_RejectsDirectSelfRecursion(t *testing.T) {
	batch := podlang.NewCustomPredicateBatch([]podlang.CustomPredicate{
		{
			Name:     "loops",
			Kind:     podlang.BodyAnd,
			ArgCount: 1,
			Body: []podlang.StatementTemplate{
				podlang.NewTemplate(podlang.BatchSelf(0, "loops"), podlang.ArgWild(0, "x")),
			},
		},
	})

	reg := predicate.NewRegistry()
	require.Error(t, reg.Register(batch))
}

func TestPredicate_ResolvesRefBackToDefinition(t *testing.T) {
	batch := podlang.NewCustomPredicateBatch([]podlang.CustomPredicate{
		{Name: "named", Kind: podlang.BodyAnd, ArgCount: 1, Body: []podlang.StatementTemplate{
			podlang.NewTemplate(podlang.NativePred(podlang.PredEqual), podlang.ArgWild(0, "x"), podlang.ArgWild(0, "x")),
		}},
	})

	reg := predicate.NewRegistry()
	require.NoError(t, reg.Register(batch))

	def, ok := reg.Predicate(batch.Ref(0))
	require.True(t, ok)
	require.Equal(t, "named", def.Name)
}

func TestRules_UnknownRefNotFound(t *testing.T) {
	reg := predicate.NewRegistry()
	_, ok := reg.Rules(podlang.CustomPredicateRef{Index: 0})
	require.False(t, ok)
}
