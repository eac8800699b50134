// Package main implements the podsolve CLI - a proof-search engine for
// Podlang MainPod requests.
//
// This file is the entry point and command registration hub. Command
// implementations are split across cmd_*.go files:
//
//   - cmd_solve.go   - solveCmd, runSolve()    (top-down engine.Driver)
//   - cmd_replay.go  - replayCmd, runReplay()  (prover.BuildPodFromAnswer)
//   - cmd_compare.go - compareCmd, runCompare() (package compare)
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	verbose    bool
	fixturePath string
	paramsPath string

	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "podsolve",
	Short: "podsolve - Podlang MainPod proof-search engine",
	Long: `podsolve answers a Podlang request against a fact database built
from a set of input pods, producing a proof DAG and an operation list a
cryptographic prover can replay into a MainPod.

Run "podsolve solve", "podsolve replay", or "podsolve compare" against a
YAML scenario file (see internal/fixture for the format).`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		config := zap.NewProductionConfig()
		if verbose {
			config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = config.Build()
		if err != nil {
			return fmt.Errorf("initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVarP(&fixturePath, "fixture", "f", "", "Path to a YAML scenario file (required)")
	rootCmd.PersistentFlags().StringVar(&paramsPath, "params", "", "Path to a Params YAML file (default: built-in bounds)")

	rootCmd.AddCommand(solveCmd, replayCmd, compareCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
