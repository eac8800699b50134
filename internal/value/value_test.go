package value_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/value"
)

func TestEqual_SameContentDifferentConstruction(t *testing.T) {
	a := value.Int(42)
	b := value.Int(42)
	require.True(t, a.Equal(b))
	require.Equal(t, a.Raw(), b.Raw())
}

func TestEqual_DifferentKindsNeverCollide(t *testing.T) {
	i := value.Int(0)
	s := value.String("")
	b := value.Bool(false)
	require.False(t, i.Equal(s))
	require.False(t, i.Equal(b))
	require.False(t, s.Equal(b))
}

func TestEqual_ArraysAreOrderSensitive(t *testing.T) {
	a := value.Array([]value.Value{value.Int(1), value.Int(2)})
	b := value.Array([]value.Value{value.Int(2), value.Int(1)})
	require.False(t, a.Equal(b))

	c := value.Array([]value.Value{value.Int(1), value.Int(2)})
	require.True(t, a.Equal(c))
}

func TestSortValues_Deterministic(t *testing.T) {
	vs := []value.Value{value.Int(5), value.Int(1), value.Int(3)}
	value.SortValues(vs)
	for i := 1; i < len(vs); i++ {
		require.True(t, vs[i-1].Raw().Less(vs[i].Raw()) || vs[i-1].Raw() == vs[i].Raw())
	}
}

func TestKey_NameAndHashRoundtrip(t *testing.T) {
	k := value.NewKey("amount")
	require.Equal(t, "amount", k.Name())
	require.Equal(t, value.NewKey("amount").Hash(), k.Hash())
}

func TestDictionary_CommitmentIndependentOfInsertionOrder(t *testing.T) {
	d1 := value.NewDictionary(3, map[string]value.Value{
		"a": value.Int(1),
		"b": value.Int(2),
	})
	d2 := value.NewDictionary(3, map[string]value.Value{
		"b": value.Int(2),
		"a": value.Int(1),
	})
	require.Equal(t, d1.Commitment(), d2.Commitment())
}

func TestDictionary_GetAndContains(t *testing.T) {
	d := value.NewDictionary(3, map[string]value.Value{"amount": value.Int(42)})
	v, ok := d.Get("amount")
	require.True(t, ok)
	require.True(t, v.Equal(value.Int(42)))

	require.True(t, d.Contains("amount"))
	require.False(t, d.Contains("missing"))

	_, ok = d.Get("missing")
	require.False(t, ok)
}

func TestDictionary_DifferentContentDifferentCommitment(t *testing.T) {
	d1 := value.NewDictionary(3, map[string]value.Value{"amount": value.Int(42)})
	d2 := value.NewDictionary(3, map[string]value.Value{"amount": value.Int(43)})
	require.NotEqual(t, d1.Commitment(), d2.Commitment())
}

func TestSet_MembershipAndCommitment(t *testing.T) {
	s1 := value.NewSet(3, []value.Value{value.Int(1), value.Int(2), value.Int(2)})
	require.Equal(t, 2, s1.Len())
	require.True(t, s1.Contains(value.Int(1)))
	require.False(t, s1.Contains(value.Int(3)))

	s2 := value.NewSet(3, []value.Value{value.Int(2), value.Int(1)})
	require.Equal(t, s1.Commitment(), s2.Commitment())
}

func TestHashValues_OrderSensitive(t *testing.T) {
	h1 := value.HashValues(value.Int(1), value.Int(2))
	h2 := value.HashValues(value.Int(2), value.Int(1))
	require.NotEqual(t, h1, h2)

	h3 := value.HashValues(value.Int(1), value.Int(2))
	require.Equal(t, h1, h3)
}
