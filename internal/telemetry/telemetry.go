// Package telemetry gives the engine somewhere to report what it did
// without coupling it to any one output: a Sink interface with a no-op,
// a counting, and a zap-backed debug/trace implementation, mirroring how
// the teacher separates its category file loggers (internal/logging)
// from its zap-backed CLI logger (cmd/nerd/main.go).
package telemetry

import (
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Category names one subsystem's telemetry stream, matching the
// teacher's Category constants in spirit (one per subsystem, not one
// per log line).
type Category string

const (
	CategoryEngine    Category = "engine"
	CategoryStore     Category = "store"
	CategoryEDB       Category = "edb"
	CategorySeminaive Category = "seminaive"
	CategoryProof     Category = "proof"
	CategoryProver    Category = "prover"
)

// Sink receives telemetry events from the engine and its collaborators.
// Implementations must be safe to ignore entirely: the solver's own
// control flow never depends on a Sink call succeeding or even
// happening.
type Sink interface {
	Event(cat Category, msg string, fields ...Field)
	Counter(cat Category, name string, delta int64)
	// WithTrace returns a Sink that tags every event it emits with a
	// stable trace ID, for following one solve call's events when
	// several solves run concurrently.
	WithTrace(traceID string) Sink
}

// Field is a lightweight key/value pair, avoiding a direct zap.Field
// dependency at call sites that don't otherwise need zap.
type Field struct {
	Key   string
	Value any
}

func F(key string, value any) Field { return Field{Key: key, Value: value} }

// NopSink discards every event; the default when no telemetry is wanted.
type NopSink struct{}

func (NopSink) Event(Category, string, ...Field)    {}
func (NopSink) Counter(Category, string, int64)     {}
func (n NopSink) WithTrace(string) Sink             { return n }

// CounterSink accumulates per-(category,name) counters in memory and
// discards events; useful in tests asserting on operation counts
// without parsing log output.
type CounterSink struct {
	counts map[Category]map[string]int64
}

func NewCounterSink() *CounterSink {
	return &CounterSink{counts: make(map[Category]map[string]int64)}
}

func (c *CounterSink) Event(Category, string, ...Field) {}

func (c *CounterSink) Counter(cat Category, name string, delta int64) {
	byName, ok := c.counts[cat]
	if !ok {
		byName = make(map[string]int64)
		c.counts[cat] = byName
	}
	byName[name] += delta
}

func (c *CounterSink) WithTrace(string) Sink { return c }

func (c *CounterSink) Get(cat Category, name string) int64 {
	return c.counts[cat][name]
}

// DebugSink writes events and counters through a *zap.Logger, the way
// the teacher's CLI entrypoint reports to stderr.
type DebugSink struct {
	logger  *zap.Logger
	traceID string
}

func NewDebugSink(logger *zap.Logger) *DebugSink {
	return &DebugSink{logger: logger}
}

func (d *DebugSink) Event(cat Category, msg string, fields ...Field) {
	zf := make([]zap.Field, 0, len(fields)+2)
	zf = append(zf, zap.String("category", string(cat)))
	if d.traceID != "" {
		zf = append(zf, zap.String("trace", d.traceID))
	}
	for _, f := range fields {
		zf = append(zf, zap.Any(f.Key, f.Value))
	}
	d.logger.Debug(msg, zf...)
}

func (d *DebugSink) Counter(cat Category, name string, delta int64) {
	d.logger.Debug("counter", zap.String("category", string(cat)), zap.String("name", name), zap.Int64("delta", delta))
}

func (d *DebugSink) WithTrace(traceID string) Sink {
	return &DebugSink{logger: d.logger, traceID: traceID}
}

// NewTraceID mints a fresh correlation ID for one solve call, the way a
// request ID threads through the teacher's structured log entries.
func NewTraceID() string {
	return uuid.NewString()
}
