package paramsconfig_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"podsolve/internal/paramsconfig"
)

func TestLoad_MissingFileFallsBackToDefaults(t *testing.T) {
	p, err := paramsconfig.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)
	require.Equal(t, paramsconfig.DefaultParams().MaxStatements, p.MaxStatements)
}

func TestLoad_ParsesYAMLOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_statements: 10\nuse_mock_proofs: true\n"), 0644))

	p, err := paramsconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, 10, p.MaxStatements)
	require.True(t, p.UseMockProofs)
}

func TestLoad_EnvOverridesWinOverFileAndDefaults(t *testing.T) {
	t.Setenv("PODSOLVE_MAX_STATEMENTS", "77")
	t.Setenv("PODSOLVE_USE_MOCK_PROOFS", "true")
	path := filepath.Join(t.TempDir(), "params.yaml")
	require.NoError(t, os.WriteFile(path, []byte("max_statements: 10\nuse_mock_proofs: false\n"), 0644))

	p, err := paramsconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, 77, p.MaxStatements)
	require.True(t, p.UseMockProofs)
}

func TestSave_RoundTripsThroughLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "params.yaml")
	original := paramsconfig.DefaultParams()
	original.MaxSearchDepth = 99
	require.NoError(t, original.Save(path))

	loaded, err := paramsconfig.Load(path)
	require.NoError(t, err)
	require.Equal(t, 99, loaded.MaxSearchDepth)
}
