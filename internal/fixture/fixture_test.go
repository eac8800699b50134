package fixture

import (
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/podlang"
)

func TestBuild_LiteralsAndWildcards(t *testing.T) {
	s := Scenario{
		Pods: []PodFixture{
			{
				Name: "alice",
				Statements: []StatementSpec{
					{Predicate: "equal", Args: []interface{}{7, 7}},
				},
			},
		},
		Request: []TemplateSpec{
			{Predicate: "equal", Args: []interface{}{5, 5}},
			{Predicate: "lt", Args: []interface{}{"?x", 10}},
		},
	}

	db, req, err := s.Build()
	require.NoError(t, err)
	require.NotNil(t, db)
	require.Len(t, req.Templates, 2)

	require.True(t, req.Templates[0].Predicate.IsNative())
	require.Equal(t, podlang.PredEqual, req.Templates[0].Predicate.Native)
	require.Equal(t, podlang.ArgLiteral, req.Templates[0].Args[0].Kind)

	require.Equal(t, podlang.PredLt, req.Templates[1].Predicate.Native)
	require.Equal(t, podlang.ArgWildcard, req.Templates[1].Args[0].Kind)
	require.Equal(t, "x", req.Templates[1].Args[0].WildcardName)
}

func TestBuild_UnknownPredicate(t *testing.T) {
	s := Scenario{Request: []TemplateSpec{{Predicate: "not_a_real_predicate"}}}
	_, _, err := s.Build()
	require.Error(t, err)
}

func TestBuild_UnsupportedValue(t *testing.T) {
	s := Scenario{Request: []TemplateSpec{{Predicate: "equal", Args: []interface{}{3.14, 1}}}}
	_, _, err := s.Build()
	require.Error(t, err)
}
