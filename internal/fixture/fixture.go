// Package fixture loads a small YAML scenario format into an EDB and a
// Request, so cmd/podsolve has something to drive without a Podlang
// text parser (explicitly out of scope, spec.md §1). It covers native
// predicates, literal Int/String/Bool values, and named pods; custom
// predicate batches and the remaining Value kinds
// (Array/Dict/Set/PublicKey/PodID/Raw) are not representable in this format (see
// DESIGN.md) — load those programmatically via package edb and
// package podlang instead. Grounded on paramsconfig's yaml.v3 file
// loading convention.
package fixture

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"podsolve/internal/edb"
	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

// Scenario is the top-level YAML document shape.
type Scenario struct {
	Pods    []PodFixture    `yaml:"pods"`
	Request []TemplateSpec  `yaml:"request"`
}

// PodFixture names one input pod and the statements the EDB should
// attribute to it.
type PodFixture struct {
	Name       string          `yaml:"name"`
	Statements []StatementSpec `yaml:"statements"`
}

// StatementSpec is one ground Statement: a native predicate name and
// its literal argument list.
type StatementSpec struct {
	Predicate string        `yaml:"predicate"`
	Args      []interface{} `yaml:"args"`
}

// TemplateSpec is one request conjunct: a native predicate name and an
// argument list where any string beginning with "?" names a wildcard.
type TemplateSpec struct {
	Predicate string        `yaml:"predicate"`
	Args      []interface{} `yaml:"args"`
}

// Load reads a Scenario file and converts it into an EDB and a Request.
func Load(path string) (*edb.EDB, podlang.Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, podlang.Request{}, fmt.Errorf("read fixture: %w", err)
	}
	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, podlang.Request{}, fmt.Errorf("parse fixture: %w", err)
	}
	return s.Build()
}

// Build converts an already-parsed Scenario, letting callers construct
// one without going through disk (e.g. in tests).
func (s Scenario) Build() (*edb.EDB, podlang.Request, error) {
	b := edb.NewBuilder()
	for _, pod := range s.Pods {
		ref := value.PodRef{ID: value.HashValues(value.String("pod:" + pod.Name))}
		for _, stmt := range pod.Statements {
			ground, err := toStatement(stmt.Predicate, stmt.Args)
			if err != nil {
				return nil, podlang.Request{}, fmt.Errorf("pod %s: %w", pod.Name, err)
			}
			b.AddStatement(ground, ref)
		}
	}

	wildcards := make(map[string]int)
	templates := make([]podlang.StatementTemplate, 0, len(s.Request))
	for i, t := range s.Request {
		tmpl, err := toTemplate(t.Predicate, t.Args, wildcards)
		if err != nil {
			return nil, podlang.Request{}, fmt.Errorf("request[%d]: %w", i, err)
		}
		templates = append(templates, tmpl)
	}
	return b.Build(), podlang.NewRequest(templates...), nil
}

func toStatement(predName string, rawArgs []interface{}) (podlang.Statement, error) {
	pred, err := nativePredicate(predName)
	if err != nil {
		return podlang.Statement{}, err
	}
	args := make([]podlang.ValueRef, len(rawArgs))
	for i, raw := range rawArgs {
		v, err := toValue(raw)
		if err != nil {
			return podlang.Statement{}, fmt.Errorf("arg %d: %w", i, err)
		}
		args[i] = podlang.Lit(v)
	}
	return podlang.NewStatement(podlang.NativePred(pred), args...), nil
}

func toTemplate(predName string, rawArgs []interface{}, wildcards map[string]int) (podlang.StatementTemplate, error) {
	pred, err := nativePredicate(predName)
	if err != nil {
		return podlang.StatementTemplate{}, err
	}
	args := make([]podlang.TemplateArg, len(rawArgs))
	for i, raw := range rawArgs {
		if name, ok := raw.(string); ok && len(name) > 1 && name[0] == '?' {
			idx, exists := wildcards[name]
			if !exists {
				idx = len(wildcards)
				wildcards[name] = idx
			}
			args[i] = podlang.ArgWild(idx, name[1:])
			continue
		}
		v, err := toValue(raw)
		if err != nil {
			return podlang.StatementTemplate{}, fmt.Errorf("arg %d: %w", i, err)
		}
		args[i] = podlang.ArgLit(v)
	}
	return podlang.NewTemplate(podlang.NativePred(pred), args...), nil
}

func toValue(raw interface{}) (value.Value, error) {
	switch v := raw.(type) {
	case int:
		return value.Int(int64(v)), nil
	case int64:
		return value.Int(v), nil
	case string:
		return value.String(v), nil
	case bool:
		return value.Bool(v), nil
	default:
		return value.Value{}, fmt.Errorf("unsupported fixture value %v (%T)", raw, raw)
	}
}

var predByName = map[string]podlang.NativePredicate{
	"equal":         podlang.PredEqual,
	"not_equal":     podlang.PredNotEqual,
	"lt":            podlang.PredLt,
	"lt_eq":         podlang.PredLtEq,
	"contains":      podlang.PredContains,
	"not_contains":  podlang.PredNotContains,
	"sum_of":        podlang.PredSumOf,
	"product_of":    podlang.PredProductOf,
	"max_of":        podlang.PredMaxOf,
	"hash_of":       podlang.PredHashOf,
	"signed_by":     podlang.PredSignedBy,
	"public_key_of": podlang.PredPublicKeyOf,
}

func nativePredicate(name string) (podlang.NativePredicate, error) {
	p, ok := predByName[name]
	if !ok {
		return podlang.PredNone, fmt.Errorf("unknown native predicate %q", name)
	}
	return p, nil
}
