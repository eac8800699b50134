// Package podlang holds the Podlang statement/template/predicate AST that
// the proof-search engine consumes: statements over ground ValueRefs,
// statement templates over wildcards, custom predicates and their
// content-addressed batches, and the Request a solve call answers.
// Parsing Podlang's UTF-8 source grammar (spec.md §6) is explicitly out of
// scope (spec.md §1); this package assumes a parsed AST is already built,
// by hand or by an external parser, using the constructors below.
package podlang

import "podsolve/internal/value"

// ValueRefKind tags a ground ValueRef's variant.
type ValueRefKind int

const (
	ValueRefLiteral ValueRefKind = iota
	ValueRefAnchoredKey
)

// ValueRef is either a literal Value or an anchored key: a promise that
// the dictionary committed to by Root contains Key (spec.md §3). The
// zero value is a literal zero Value, not a meaningful anchored key.
type ValueRef struct {
	Kind    ValueRefKind
	Literal value.Value
	Root    value.Hash
	Key     value.Key
}

// Lit builds a literal ValueRef.
func Lit(v value.Value) ValueRef { return ValueRef{Kind: ValueRefLiteral, Literal: v} }

// Anchored builds an anchored-key ValueRef: root["key"].
func Anchored(root value.Hash, key value.Key) ValueRef {
	return ValueRef{Kind: ValueRefAnchoredKey, Root: root, Key: key}
}

func (r ValueRef) IsLiteral() bool     { return r.Kind == ValueRefLiteral }
func (r ValueRef) IsAnchoredKey() bool { return r.Kind == ValueRefAnchoredKey }

func (r ValueRef) String() string {
	if r.IsLiteral() {
		return r.Literal.String()
	}
	return r.Root.String() + "[\"" + r.Key.Name() + "\"]"
}

// Equal compares two ground ValueRefs structurally: literals by content
// hash, anchored keys by (root, key-hash).
func (r ValueRef) Equal(o ValueRef) bool {
	if r.Kind != o.Kind {
		return false
	}
	if r.IsLiteral() {
		return r.Literal.Equal(o.Literal)
	}
	return r.Root == o.Root && r.Key.Hash() == o.Key.Hash()
}
