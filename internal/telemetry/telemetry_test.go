package telemetry_test

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"podsolve/internal/telemetry"
)

func TestCounterSink_AccumulatesPerCategoryAndName(t *testing.T) {
	sink := telemetry.NewCounterSink()
	sink.Counter(telemetry.CategoryEngine, "goals_solved", 1)
	sink.Counter(telemetry.CategoryEngine, "goals_solved", 2)
	sink.Counter(telemetry.CategoryEDB, "goals_solved", 5)

	require.EqualValues(t, 3, sink.Get(telemetry.CategoryEngine, "goals_solved"))
	require.EqualValues(t, 5, sink.Get(telemetry.CategoryEDB, "goals_solved"))
	require.EqualValues(t, 0, sink.Get(telemetry.CategoryProof, "goals_solved"))
}

func TestNopSink_NeverPanics(t *testing.T) {
	var sink telemetry.Sink = telemetry.NopSink{}
	sink.Event(telemetry.CategoryStore, "noop", telemetry.F("k", 1))
	sink.Counter(telemetry.CategoryStore, "noop", 1)
	require.NotNil(t, sink.WithTrace("trace-1"))
}

func TestDebugSink_WithTracePreservesLoggerAndTagsTrace(t *testing.T) {
	logger := zap.NewNop()
	sink := telemetry.NewDebugSink(logger)
	traced := sink.WithTrace("trace-xyz")
	require.NotNil(t, traced)

	traced.Event(telemetry.CategoryProver, "built operation", telemetry.F("op", "copy"))
	traced.Counter(telemetry.CategoryProver, "operations", 1)
}

func TestNewTraceID_ProducesDistinctIDs(t *testing.T) {
	a := telemetry.NewTraceID()
	b := telemetry.NewTraceID()
	require.NotEmpty(t, a)
	require.NotEqual(t, a, b)
}
