package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"podsolve/internal/compare"
	"podsolve/internal/fixture"
	"podsolve/internal/handlers"
	"podsolve/internal/predicate"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Run both engines over a fixture and check they agree",
	Long: `Solves --fixture's request with both the top-down
constraint-propagation engine and the bottom-up semi-naive evaluator
concurrently, and reports whether the two derived statement sets
match (the equivalence spec.md §8 invariant 8 requires for
non-self-recursive predicates).`,
	RunE: runCompare,
}

func runCompare(cmd *cobra.Command, args []string) error {
	if fixturePath == "" {
		return fmt.Errorf("--fixture is required")
	}
	db, req, err := fixture.Load(fixturePath)
	if err != nil {
		return err
	}
	params, err := loadParams()
	if err != nil {
		return err
	}

	h := handlers.RegisterAll()
	preds := predicate.NewRegistry()

	report, err := compare.Run(db, h, preds, params, req)
	if err != nil {
		return fmt.Errorf("compare: %w", err)
	}

	logger.Info("compared engines",
		zap.String("fixture", fixturePath),
		zap.Bool("agreement", report.Agreement),
		zap.Int("top_down_statements", len(report.TopDown)),
		zap.Int("bottom_up_statements", len(report.BottomUp)),
	)

	if report.Agreement {
		fmt.Println("engines agree:", len(report.TopDown), "statements")
		return nil
	}

	fmt.Println("engines disagree")
	fmt.Println("only in top-down engine:")
	for _, k := range report.OnlyTopDown {
		fmt.Println("  " + k)
	}
	fmt.Println("only in bottom-up engine:")
	for _, k := range report.OnlyBottomUp {
		fmt.Println("  " + k)
	}
	return fmt.Errorf("engines disagree on %d statement(s)", len(report.OnlyTopDown)+len(report.OnlyBottomUp))
}
