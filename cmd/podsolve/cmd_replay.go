package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"podsolve/internal/engine"
	"podsolve/internal/fixture"
	"podsolve/internal/handlers"
	"podsolve/internal/predicate"
	"podsolve/internal/prover"
)

var replayCmd = &cobra.Command{
	Use:   "replay",
	Short: "Solve a fixture and replay its proof DAG into a mock MainPod",
	Long: `Solves --fixture's request with the top-down engine, then runs
the External Prover Interface (package prover) with mock proofs
enabled: the resulting operation list is printed instead of handed to a
real cryptographic backend.`,
	RunE: runReplay,
}

func runReplay(cmd *cobra.Command, args []string) error {
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
	params.UseMockProofs = true

	h := handlers.RegisterAll()
	preds := predicate.NewRegistry()

	answer, err := engine.NewDriver(db, h, preds, params).Solve(req)
	if err != nil {
		return fmt.Errorf("solve: %w", err)
	}

	logger.Info("replaying", zap.String("fixture", fixturePath), zap.Int("premises", len(answer.Store.Premises)))

	pod, err := prover.BuildPodFromAnswer(answer, params, nil, nil, db, nil)
	if err != nil {
		return fmt.Errorf("build pod: %w", err)
	}

	fmt.Printf("pod id: %s\n", pod.ID)
	fmt.Println("public statements:")
	for _, s := range pod.PublicStatements {
		fmt.Println("  " + s.String())
	}
	fmt.Println("private statements:")
	for _, s := range pod.PrivateStatements {
		fmt.Println("  " + s.String())
	}
	fmt.Println("input pods:")
	for _, ref := range pod.InputPods {
		fmt.Println("  " + ref.String())
	}
	return nil
}
