// Package prover implements the External Prover Interface (spec.md
// §4.7): it turns a proof.DAG into an ordered list of Operations a
// cryptographic prover can replay, and hands that list plus the input
// pod cover to a caller-supplied ProveFunc. podsolve never constructs
// the cryptographic MainPod itself. Grounded on
// original_source/core/new_solver/src/replay.rs's map_to_operation,
// op_arg_from_vr and build_pod_from_answer.
package prover

import (
	"fmt"

	"podsolve/internal/edb"
	"podsolve/internal/errs"
	"podsolve/internal/podlang"
	"podsolve/internal/proof"
	"podsolve/internal/value"
)

// OperationKind tags which cryptographic operation a Node replays into.
type OperationKind int

const (
	OpCopy OperationKind = iota
	OpCustom
	OpFromEntries
	OpContainsFromEntries
	OpNotContainsFromEntries
	OpDictSignedBy
)

// Operation is podsolve's replay-level stand-in for a pod2 frontend
// operation: enough to drive a real prover's builder without this
// module depending on a concrete cryptographic backend.
type Operation struct {
	Kind   OperationKind
	Head   podlang.Statement
	Native podlang.NativePredicate
	Public bool

	// OpFromEntries: the operation's argument statements (other
	// justified Contains/comparison premises the op was derived from).
	Args []podlang.Statement

	// OpContainsFromEntries/OpNotContainsFromEntries: the full
	// dictionary backing the root, resolved from the EDB so the
	// cryptographic prover can walk the Merkle proof itself.
	Dict *value.Dictionary

	// OpCustom
	Predicate   podlang.CustomPredicateRef
	OrderedBody []podlang.Statement

	// OpCopy
	Source value.PodRef

	// OpDictSignedBy
	SignedDict *value.SignedDictionary
}

// mapToOperation converts one proof DAG node into its replay Operation,
// resolving any Contains premise whose root has a known full dictionary
// into that dictionary (replay.rs: "the builder will not accept raw
// anchored-key Contains premises, only full-dictionary-backed ones").
func mapToOperation(n proof.Node, db *edb.EDB) (Operation, error) {
	tag := n.Tag
	switch tag.Kind {
	case podlang.OpCopyStatement:
		return Operation{Kind: OpCopy, Head: n.Statement, Source: tag.Source}, nil

	case podlang.OpGeneratedContains:
		dict, ok := db.FullDict(tag.Root)
		if !ok {
			return Operation{}, errs.New(errs.ReplayMissingDictionary, "replay",
				fmt.Errorf("no full dictionary known for root %s", tag.Root))
		}
		return Operation{Kind: OpContainsFromEntries, Head: n.Statement, Native: podlang.PredContains, Dict: dict}, nil

	case podlang.OpDerived:
		args := tag.Premises
		kind := OpFromEntries
		var dict *value.Dictionary
		switch tag.Op {
		case podlang.PredNotContains:
			kind = OpNotContainsFromEntries
			if root, ok := rootOfHead(n.Statement); ok {
				d, ok := db.FullDict(root)
				if !ok {
					return Operation{}, errs.New(errs.ReplayMissingDictionary, "replay",
						fmt.Errorf("no full dictionary known for root %s", root))
				}
				dict = d
			}
		case podlang.PredContains:
			kind = OpContainsFromEntries
			if root, ok := rootOfHead(n.Statement); ok {
				if d, ok := db.FullDict(root); ok {
					dict = d
				}
			}
		}
		return Operation{Kind: kind, Head: n.Statement, Native: tag.Op, Args: args, Dict: dict}, nil

	case podlang.OpCustomDeduction:
		return Operation{
			Kind:        OpCustom,
			Head:        n.Statement,
			Predicate:   tag.Predicate,
			OrderedBody: nonZero(tag.OrderedBody),
		}, nil

	case podlang.OpFromLiterals:
		if n.Statement.Predicate.IsNative() && n.Statement.Predicate.Native == podlang.PredSignedBy {
			if root, ok := rootOfHead(n.Statement); ok {
				if sd, ok := db.SignedDict(root); ok {
					return Operation{Kind: OpDictSignedBy, Head: n.Statement, SignedDict: sd}, nil
				}
			}
		}
		return Operation{Kind: OpFromEntries, Head: n.Statement, Native: n.Statement.Predicate.Native}, nil

	default:
		return Operation{}, errs.New(errs.ProverError, "replay", fmt.Errorf("unreplayable OpTag kind %d", tag.Kind))
	}
}

func nonZero(stmts []podlang.Statement) []podlang.Statement {
	out := make([]podlang.Statement, 0, len(stmts))
	for _, s := range stmts {
		if !s.IsZero() {
			out = append(out, s)
		}
	}
	return out
}

func rootOfHead(s podlang.Statement) (value.Hash, bool) {
	if len(s.Args) == 0 || !s.Args[0].IsLiteral() {
		return value.Hash{}, false
	}
	return s.Args[0].Literal.Raw2()
}
