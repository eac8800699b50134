package compare_test

import (
	"testing"

	"go.uber.org/goleak"
)

// compare.Run fans out onto two goroutines per call (engine.Driver and
// seminaive.Evaluator); verify neither leaks past errgroup.Wait.
func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}
