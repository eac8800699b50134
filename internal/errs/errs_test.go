package errs_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/errs"
)

func TestHasKind_MatchesWrappedError(t *testing.T) {
	inner := errors.New("boom")
	err := errs.New(errs.NoProof, "engine.solve", inner)
	wrapped := fmt.Errorf("top: %w", err)

	require.True(t, errs.HasKind(wrapped, errs.NoProof))
	require.False(t, errs.HasKind(wrapped, errs.Contradiction))
}

func TestIs_ComparesByKindOnly(t *testing.T) {
	a := errs.New(errs.DepthExceeded, "engine.solve", nil)
	b := errs.New(errs.DepthExceeded, "seminaive.solve", nil)
	c := errs.New(errs.NoProof, "engine.solve", nil)

	require.True(t, errors.Is(a, b))
	require.False(t, errors.Is(a, c))
}

func TestUnwrap_ExposesWrappedCause(t *testing.T) {
	inner := errors.New("cause")
	err := errs.New(errs.ProverError, "prover.build", inner)
	require.Equal(t, inner, errors.Unwrap(err))
}
