// Package paramsconfig holds the solver's tunable resource bounds
// (spec.md §6 Params), loaded the way the teacher loads its top-level
// configuration: yaml.v3 over a file, falling back to DefaultParams,
// then environment overrides.
package paramsconfig

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Params bounds the engine and EDB against runaway search and
// oversized containers.
type Params struct {
	// MaxDepthMTContainers is the Merkle depth intended for Dictionary
	// and Set commitments; no code in this module reads it (callers pass
	// a depth to value.NewDictionary/NewSet themselves).
	MaxDepthMTContainers int `yaml:"max_depth_mt_containers"`

	// MaxInputPodsPublicStatements is carried for the prover backend;
	// the EDB does not check it when pods are added.
	MaxInputPodsPublicStatements int `yaml:"max_input_pods_public_statements"`

	// MaxStatements bounds the seminaive evaluator's materialized fact
	// count and the number of proof DAG nodes BuildPodFromAnswer accepts;
	// exceeding either is DepthExceeded. The top-down engine does not
	// check it.
	MaxStatements int `yaml:"max_statements"`

	// MaxPublicStatements bounds how many statements a built MainPod may
	// expose publicly.
	MaxPublicStatements int `yaml:"max_public_statements"`

	// MaxOperationArgs is carried for the prover backend; no code in
	// this module checks operation argument counts against it.
	MaxOperationArgs int `yaml:"max_operation_args"`

	// UseMockProofs, when true, lets the external Prover Interface skip
	// invoking prove_fn and emit a placeholder proof, for tests that
	// only care about operation-list shape.
	UseMockProofs bool `yaml:"use_mock_proofs"`

	// MaxEnumerationWidth caps how many partial bindings the seminaive
	// evaluator's rule-body join keeps per body template; extra ones are
	// dropped, not reported as an error. Zero means unbounded. The
	// top-down engine's Contains enumeration is not capped by it.
	MaxEnumerationWidth int `yaml:"max_enumeration_width"`

	// MaxSearchDepth bounds the top-down engine's search depth (one
	// level per goal resolved or custom rule expanded along the current
	// path); exceeding it is DepthExceeded (spec.md §5: "Search depth /
	// choice-stack size: configurable"). The seminaive evaluator uses it
	// as its maximum number of rounds.
	MaxSearchDepth int `yaml:"max_search_depth"`
}

// DefaultParams returns podsolve's baseline bounds.
func DefaultParams() *Params {
	return &Params{
		MaxDepthMTContainers:         32,
		MaxInputPodsPublicStatements: 128,
		MaxStatements:                4096,
		MaxPublicStatements:          256,
		MaxOperationArgs:             8,
		UseMockProofs:                false,
		MaxEnumerationWidth:          10000,
		MaxSearchDepth:               256,
	}
}

// Load reads Params from a YAML file at path, falling back to
// DefaultParams if the file does not exist, then applies environment
// overrides.
func Load(path string) (*Params, error) {
	p := DefaultParams()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			p.applyEnvOverrides()
			return p, nil
		}
		return nil, fmt.Errorf("read params: %w", err)
	}

	if err := yaml.Unmarshal(data, p); err != nil {
		return nil, fmt.Errorf("parse params: %w", err)
	}
	p.applyEnvOverrides()
	return p, nil
}

func (p *Params) applyEnvOverrides() {
	if v := os.Getenv("PODSOLVE_MAX_STATEMENTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.MaxStatements = n
		}
	}
	if v := os.Getenv("PODSOLVE_MAX_ENUMERATION_WIDTH"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			p.MaxEnumerationWidth = n
		}
	}
	if v := os.Getenv("PODSOLVE_USE_MOCK_PROOFS"); v != "" {
		p.UseMockProofs = v == "1" || v == "true"
	}
}

// Save writes p to path as YAML.
func (p *Params) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("marshal params: %w", err)
	}
	return os.WriteFile(path, data, 0644)
}
