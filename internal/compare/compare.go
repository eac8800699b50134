// Package compare runs both solving engines over the same request and
// asserts they agree, the way spec.md §8 invariant 8 requires ("the two
// engines, given the same EDB and request, produce the same set of
// derivable statements — though not necessarily in the same order").
// Grounded on the teacher's use of golang.org/x/sync/errgroup to run
// independent goroutines and collect the first error
// (cmd/nerd/internal/worker's fan-out pattern).
package compare

import (
	"sort"

	"golang.org/x/sync/errgroup"

	"podsolve/internal/edb"
	"podsolve/internal/engine"
	"podsolve/internal/errs"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/proof"
	"podsolve/internal/seminaive"
	"podsolve/internal/store"
)

// Report is the outcome of comparing the two engines on one request.
type Report struct {
	TopDown   []podlang.Statement
	BottomUp  []podlang.Statement
	Agreement bool
	// Only set when Agreement is false: statement keys present in one
	// engine's derived set but not the other's.
	OnlyTopDown  []string
	OnlyBottomUp []string
}

// Run solves req with both engine.Driver and seminaive.Evaluator
// concurrently and compares the statement keys each proof DAG
// contains. A mismatch signals the two engines have drifted out of
// the equivalence spec.md §8 requires for non-self-recursive
// predicates (both engines reject direct self-recursion at predicate
// registration, so neither can reach a predicate the other cannot).
func Run(db *edb.EDB, handlers *store.Registry, predicates *predicate.Registry, params *paramsconfig.Params, req podlang.Request) (*Report, error) {
	var topDownAnswer, bottomUpAnswer *engine.Answer

	g := new(errgroup.Group)
	g.Go(func() error {
		d := engine.NewDriver(db, handlers, predicates, params)
		a, err := d.Solve(req)
		if err != nil {
			return err
		}
		topDownAnswer = a
		return nil
	})
	g.Go(func() error {
		e := seminaive.NewEvaluator(db, handlers, predicates, params)
		a, err := e.Solve(req)
		if err != nil {
			return err
		}
		bottomUpAnswer = a
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, errs.New(errs.NoProof, "compare.run", err)
	}

	topDag := proof.Build(topDownAnswer)
	bottomDag := proof.Build(bottomUpAnswer)

	topKeys := statementKeys(topDag)
	bottomKeys := statementKeys(bottomDag)

	report := &Report{
		TopDown:  statementsOf(topDag),
		BottomUp: statementsOf(bottomDag),
	}
	report.OnlyTopDown = diff(topKeys, bottomKeys)
	report.OnlyBottomUp = diff(bottomKeys, topKeys)
	report.Agreement = len(report.OnlyTopDown) == 0 && len(report.OnlyBottomUp) == 0
	return report, nil
}

func statementKeys(d *proof.DAG) map[string]bool {
	out := make(map[string]bool, len(d.Nodes))
	for _, n := range d.Nodes {
		out[n.Statement.Key()] = true
	}
	return out
}

func statementsOf(d *proof.DAG) []podlang.Statement {
	out := make([]podlang.Statement, len(d.Nodes))
	for i, n := range d.Nodes {
		out[i] = n.Statement
	}
	return out
}

func diff(a, b map[string]bool) []string {
	var out []string
	for k := range a {
		if !b[k] {
			out = append(out, k)
		}
	}
	sort.Strings(out)
	return out
}
