package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"podsolve/internal/engine"
	"podsolve/internal/fixture"
	"podsolve/internal/handlers"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/predicate"
	"podsolve/internal/render"
	"podsolve/internal/seminaive"
)

var useSeminaive bool

var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve a fixture's request and print the resulting proof DAG",
	Long: `Loads the EDB and request described by --fixture, runs the
proof-search engine, and prints the resulting proof DAG: one line per
derived statement, marked public ("*") or private, with the operation
tag that justifies it.

By default this runs the top-down constraint-propagation engine
(package engine); pass --seminaive to run the bottom-up semi-naive
alternative (package seminaive) instead.`,
	RunE: runSolve,
}

func init() {
	solveCmd.Flags().BoolVar(&useSeminaive, "seminaive", false, "Use the bottom-up semi-naive evaluator instead of the top-down engine")
}

func loadParams() (*paramsconfig.Params, error) {
	if paramsPath == "" {
		return paramsconfig.DefaultParams(), nil
	}
	return paramsconfig.Load(paramsPath)
}

func runSolve(cmd *cobra.Command, args []string) error {
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

	logger.Info("solving", zap.String("fixture", fixturePath), zap.Bool("seminaive", useSeminaive))

	var answer *engine.Answer
	if useSeminaive {
		answer, err = seminaive.NewEvaluator(db, h, preds, params).Solve(req)
	} else {
		answer, err = engine.NewDriver(db, h, preds, params).Solve(req)
	}
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	fmt.Print(render.DAG(answer))
	fmt.Println()
	fmt.Println("requested:")
	for _, s := range answer.Requested {
		fmt.Println("  " + s.String())
	}
	return nil
}
