package podlang

import "podsolve/internal/value"

// NativePredicate enumerates the built-in predicates the operation
// handlers in package handlers know how to deduce (spec.md §4.4).
type NativePredicate int

const (
	PredNone NativePredicate = iota
	PredEqual
	PredNotEqual
	PredLt
	PredLtEq
	PredContains
	PredNotContains
	PredSumOf
	PredProductOf
	PredMaxOf
	PredHashOf
	PredSignedBy
	PredPublicKeyOf
)

var nativeArity = map[NativePredicate]int{
	PredNone:        0,
	PredEqual:       2,
	PredNotEqual:    2,
	PredLt:          2,
	PredLtEq:        2,
	PredContains:    3,
	PredNotContains: 2,
	PredSumOf:       3,
	PredProductOf:   3,
	PredMaxOf:       3,
	PredHashOf:      3,
	PredSignedBy:    2,
	PredPublicKeyOf: 2,
}

var nativeNames = map[NativePredicate]string{
	PredNone:        "none",
	PredEqual:       "equal",
	PredNotEqual:    "not_equal",
	PredLt:          "lt",
	PredLtEq:        "lt_eq",
	PredContains:    "contains",
	PredNotContains: "not_contains",
	PredSumOf:       "sum_of",
	PredProductOf:   "product_of",
	PredMaxOf:       "max_of",
	PredHashOf:      "hash_of",
	PredSignedBy:    "signed_by",
	PredPublicKeyOf: "public_key_of",
}

func (p NativePredicate) Arity() int    { return nativeArity[p] }
func (p NativePredicate) String() string { return nativeNames[p] }

// CustomPredicateRef names one predicate inside a content-addressed batch.
type CustomPredicateRef struct {
	BatchHash value.Hash
	Index     int
	// Name is carried for diagnostics only; identity is (BatchHash, Index).
	Name string
}

func (r CustomPredicateRef) String() string { return r.Name }

// PredicateKind tags a Predicate's variant.
type PredicateKind int

const (
	PredicateKindNative PredicateKind = iota
	PredicateKindCustom
)

// Predicate is either a NativePredicate or a reference into a
// CustomPredicateBatch (spec.md §3). Two Predicates are the same
// predicate iff Kind matches and, for native, Native matches, or for
// custom, (BatchHash, Index) matches.
type Predicate struct {
	Kind   PredicateKind
	Native NativePredicate
	Custom CustomPredicateRef
}

func NativePred(p NativePredicate) Predicate {
	return Predicate{Kind: PredicateKindNative, Native: p}
}

func CustomPred(ref CustomPredicateRef) Predicate {
	return Predicate{Kind: PredicateKindCustom, Custom: ref}
}

func (p Predicate) IsNative() bool { return p.Kind == PredicateKindNative }
func (p Predicate) IsCustom() bool { return p.Kind == PredicateKindCustom }

func (p Predicate) String() string {
	if p.IsNative() {
		return p.Native.String()
	}
	return p.Custom.String()
}

// Equal reports whether p and o name the same predicate.
func (p Predicate) Equal(o Predicate) bool {
	if p.Kind != o.Kind {
		return false
	}
	if p.IsNative() {
		return p.Native == o.Native
	}
	return p.Custom.BatchHash == o.Custom.BatchHash && p.Custom.Index == o.Custom.Index
}
