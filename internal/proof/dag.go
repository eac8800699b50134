// Package proof builds the proof DAG an engine.Answer implies and walks
// it for replay: statement-nodes keyed by canonical serialization,
// operation-nodes with premise in-edges and a single head out-edge, a
// public/private visibility split, and a minimal input-pod cover.
// Grounded on original_source/core/new_solver/src/replay.rs's
// ProofDagWithOps construction and top_level_public_selector.
package proof

import (
	"sort"

	"podsolve/internal/edb"
	"podsolve/internal/engine"
	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

// Node is one statement in the proof DAG: the ground Statement plus the
// OpTag that justifies it, and the statement keys of every premise the
// tag cites (empty for FromLiterals/GeneratedContains/CopyStatement,
// which cite no prior DAG node).
type Node struct {
	Statement podlang.Statement
	Tag       podlang.OpTag
	Premises  []string // Statement.Key() of each cited premise
}

// DAG is the deduped, dependency-ordered set of statement-nodes an
// Answer's ConstraintStore produced.
type DAG struct {
	Nodes []Node
	byKey map[string]int
}

// Build constructs a DAG from an Answer, deduping premises by statement
// key (a ConstraintStore may have recorded the same justified Statement
// twice across independent branches of a custom predicate's expansion;
// the DAG keeps the first).
func Build(answer *engine.Answer) *DAG {
	d := &DAG{byKey: make(map[string]int)}
	for _, p := range answer.Store.Premises {
		d.add(p.Statement, p.Tag)
	}
	return d
}

func (d *DAG) add(stmt podlang.Statement, tag podlang.OpTag) {
	key := stmt.Key()
	if _, ok := d.byKey[key]; ok {
		return
	}
	n := Node{Statement: stmt, Tag: tag, Premises: premiseKeysOf(tag)}
	d.byKey[key] = len(d.Nodes)
	d.Nodes = append(d.Nodes, n)
}

func premiseKeysOf(tag podlang.OpTag) []string {
	switch tag.Kind {
	case podlang.OpDerived:
		out := make([]string, len(tag.Premises))
		for i, p := range tag.Premises {
			out[i] = p.Key()
		}
		return out
	case podlang.OpCustomDeduction:
		var out []string
		for _, p := range tag.OrderedBody {
			if p.IsZero() {
				continue
			}
			out = append(out, p.Key())
		}
		return out
	default:
		return nil
	}
}

// Lookup returns the Node for a given statement key, if present.
func (d *DAG) Lookup(key string) (Node, bool) {
	i, ok := d.byKey[key]
	if !ok {
		return Node{}, false
	}
	return d.Nodes[i], true
}

// PublicStatements returns the statement keys the DAG exposes publicly:
// a node is public iff it is never cited as another node's premise, or
// it is one of the request's own top-level goals (spec.md §4.6:
// "public iff not consumed as a later premise OR is a direct premise of
// _request_goal").
func PublicStatements(d *DAG, answer *engine.Answer) map[string]bool {
	consumed := make(map[string]bool)
	for _, n := range d.Nodes {
		for _, pk := range n.Premises {
			consumed[pk] = true
		}
	}
	requested := make(map[string]bool, len(answer.Requested))
	for _, s := range answer.Requested {
		requested[s.Key()] = true
	}

	public := make(map[string]bool)
	for _, n := range d.Nodes {
		key := n.Statement.Key()
		if !consumed[key] || requested[key] {
			public[key] = true
		}
	}
	return public
}

// MinimalInputPods computes a minimal set of value.PodRef covering every
// CopyStatement node, via greedy set cover over each node's full
// provider set recomputed from db (spec.md §4.6 and GLOSSARY "minimal
// input pod cover"). A CopyStatement node's own Tag.Source names only
// the one pod the search happened to commit to; other ingested pods
// may assert the identical statement, so the provider set for each
// statement is re-queried from the EDB before covering, matching
// original_source/core/new_solver/src/proof.rs's
// providers_for_statement + to_inputs: pods that are the sole provider
// of some statement are pre-selected, then the remaining uncovered
// statements are covered by repeatedly picking the not-yet-chosen pod
// that provides the most of them (ties broken by pod ID for
// determinism, where the Rust original leaves them to HashMap
// iteration order).
func MinimalInputPods(d *DAG, db *edb.EDB) []value.PodRef {
	providers := make(map[string][]value.PodRef)
	var stmtOrder []string
	for _, n := range d.Nodes {
		if n.Tag.Kind != podlang.OpCopyStatement {
			continue
		}
		key := n.Statement.Key()
		if _, ok := providers[key]; ok {
			continue
		}
		provs := db.ProvidersOf(n.Statement)
		if len(provs) == 0 {
			// The EDB should always know at least the pod the search
			// itself copied from; fall back to it rather than drop
			// the statement from the cover entirely.
			provs = []value.PodRef{n.Tag.Source}
		}
		providers[key] = provs
		stmtOrder = append(stmtOrder, key)
	}
	if len(stmtOrder) == 0 {
		return nil
	}

	chosen := make(map[value.Hash]value.PodRef)
	isCovered := func(key string) bool {
		for _, p := range providers[key] {
			if _, ok := chosen[p.ID]; ok {
				return true
			}
		}
		return false
	}

	// Pre-select the sole provider of every single-provider statement.
	for _, key := range stmtOrder {
		if len(providers[key]) == 1 {
			p := providers[key][0]
			chosen[p.ID] = p
		}
	}

	uncovered := make(map[string]bool, len(stmtOrder))
	for _, key := range stmtOrder {
		if !isCovered(key) {
			uncovered[key] = true
		}
	}

	for len(uncovered) > 0 {
		candidates := make(map[value.Hash]value.PodRef)
		for key := range uncovered {
			for _, p := range providers[key] {
				if _, ok := chosen[p.ID]; !ok {
					candidates[p.ID] = p
				}
			}
		}
		if len(candidates) == 0 {
			break // no remaining provider covers any uncovered statement
		}
		ids := make([]value.Hash, 0, len(candidates))
		for id := range candidates {
			ids = append(ids, id)
		}
		sort.Slice(ids, func(i, j int) bool { return ids[i].Less(ids[j]) })

		var best value.PodRef
		bestCount := -1
		for _, id := range ids {
			count := 0
			for key := range uncovered {
				for _, p := range providers[key] {
					if p.ID == id {
						count++
						break
					}
				}
			}
			if count > bestCount {
				bestCount = count
				best = candidates[id]
			}
		}

		chosen[best.ID] = best
		for key := range uncovered {
			if isCovered(key) {
				delete(uncovered, key)
			}
		}
	}

	out := make([]value.PodRef, 0, len(chosen))
	for _, p := range chosen {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })
	return out
}

// TopoOrder returns the DAG's nodes in a post-order suitable for replay:
// every premise precedes the node that cites it. Build already appends
// nodes in an order where this invariant holds (the engine records a
// custom predicate's body premises before its head, and a native
// goal's supporting premises before its own head), so TopoOrder is the
// identity pass; it exists as the named replay step spec.md §4.6
// describes, and as the place a future non-sequential engine's output
// would need real sorting.
func TopoOrder(d *DAG) []Node {
	return d.Nodes
}
