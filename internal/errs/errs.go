// Package errs defines podsolve's error taxonomy (spec.md §7): every
// error the engine, EDB, handlers, or prover surface is one of a fixed
// set of Kinds, wrapped with the operation that raised it.
package errs

import (
	"errors"
	"fmt"
)

// Kind classifies why a solve, parse, or replay failed.
type Kind int

const (
	// Parse: malformed Podlang source or AST.
	Parse Kind = iota
	// UnknownPredicate: a Statement or StatementTemplate names a
	// predicate not in the registry or any supplied batch.
	UnknownPredicate
	// MissingField: an anchored key's dictionary does not contain Key.
	MissingField
	// TypeMismatch: an operation's arguments have the wrong Value Kind.
	TypeMismatch
	// NoProof: the search exhausted every choice point without
	// satisfying the request.
	NoProof
	// Contradiction: an internal solver invariant was violated (two
	// incompatible bindings reached the same wildcard); never expected
	// to escape a correct engine, but surfaced rather than panicking.
	Contradiction
	// DepthExceeded: a configured Params bound (search depth, statement
	// count, public statement count) was exceeded.
	DepthExceeded
	// ReplayMissingDictionary: proof replay needed a full dictionary (to
	// render a GeneratedContains or a derived NotContains operation)
	// that the EDB supplied to the replay call does not hold.
	ReplayMissingDictionary
	// ProverError: the external prove_fn returned a failure.
	ProverError
)

func (k Kind) String() string {
	switch k {
	case Parse:
		return "parse"
	case UnknownPredicate:
		return "unknown_predicate"
	case MissingField:
		return "missing_field"
	case TypeMismatch:
		return "type_mismatch"
	case NoProof:
		return "no_proof"
	case Contradiction:
		return "contradiction"
	case DepthExceeded:
		return "depth_exceeded"
	case ReplayMissingDictionary:
		return "replay_missing_dictionary"
	case ProverError:
		return "prover_error"
	default:
		return "unknown"
	}
}

// Error is podsolve's wrapped error type: a Kind, the operation that
// raised it, and an optional wrapped cause.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Kind)
}

func (e *Error) Unwrap() error { return e.Err }

// Is reports whether target is an *Error with the same Kind, so callers
// can write errors.Is(err, errs.New(errs.NoProof, "", nil)) or compare
// against a Kind sentinel via HasKind.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return e.Kind == t.Kind
	}
	return false
}

// New builds an *Error.
func New(kind Kind, op string, err error) *Error {
	return &Error{Kind: kind, Op: op, Err: err}
}

// HasKind reports whether err (or any error it wraps) is a podsolve
// *Error of the given Kind.
func HasKind(err error, kind Kind) bool {
	for err != nil {
		var e *Error
		if !errors.As(err, &e) {
			return false
		}
		if e.Kind == kind {
			return true
		}
		err = e.Err
	}
	return false
}
