package store_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/podlang"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

func TestBind_ConflictingValueIsRejected(t *testing.T) {
	s := store.NewConstraintStore()
	require.True(t, s.Bind(0, value.Int(1)))
	require.True(t, s.Bind(0, value.Int(1)))
	require.False(t, s.Bind(0, value.Int(2)))
}

func TestAddPremise_DedupsByStatementKey(t *testing.T) {
	s := store.NewConstraintStore()
	stmt := podlang.NewStatement(podlang.NativePred(podlang.PredEqual), podlang.Lit(value.Int(1)), podlang.Lit(value.Int(1)))
	s.AddPremise(store.Premise{Statement: stmt, Tag: podlang.FromLiterals()})
	s.AddPremise(store.Premise{Statement: stmt, Tag: podlang.FromLiterals()})
	require.Len(t, s.Premises, 1)
}

func TestClone_IndependentBindings(t *testing.T) {
	s := store.NewConstraintStore()
	s.Bind(0, value.Int(1))
	c := s.Clone()
	c.Bind(1, value.Int(2))

	_, ok := s.Bindings[1]
	require.False(t, ok)
	_, ok = c.Bindings[1]
	require.True(t, ok)
}

func TestFingerprint_SameBindingsSameFingerprint(t *testing.T) {
	a := store.NewConstraintStore()
	a.Bind(0, value.Int(1))
	a.Bind(1, value.Int(2))

	b := store.NewConstraintStore()
	b.Bind(1, value.Int(2))
	b.Bind(0, value.Int(1))

	require.Equal(t, a.Fingerprint(), b.Fingerprint())
}

func TestFingerprint_DifferentBindingsDifferentFingerprint(t *testing.T) {
	a := store.NewConstraintStore()
	a.Bind(0, value.Int(1))

	b := store.NewConstraintStore()
	b.Bind(0, value.Int(2))

	require.NotEqual(t, a.Fingerprint(), b.Fingerprint())
}
