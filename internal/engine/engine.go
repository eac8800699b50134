// Package engine is the constraint-propagation solver (spec.md §4.5): a
// top-down, depth-first search over the request's goal templates, using
// package handlers to dispatch native predicates and package predicate
// to expand custom ones. Grounded on original_source/core/new_solver/src's
// engine driver loop and its choice-stack/suspend bookkeeping, reworked
// here as an idiomatic Go recursive backtracker (see DESIGN.md for the
// simplifications this takes versus the original's explicit choice
// stack and fingerprint-cache termination check).
package engine

import (
	"fmt"

	"podsolve/internal/edb"
	"podsolve/internal/errs"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/store"
)

// Driver carries the fixed inputs of one solve call: the fact database,
// the native handler registry, the custom predicate registry, and the
// resource bounds. nextWildcard allocates fresh global wildcard indices
// when a custom rule is instantiated (the Go port's stand-in for the
// original's external wildcard-renaming pass in custom.rs).
type Driver struct {
	DB         *edb.EDB
	Handlers   *store.Registry
	Predicates *predicate.Registry
	Params     *paramsconfig.Params

	nextWildcard int
}

// NewDriver builds a Driver ready to Solve requests against db.
func NewDriver(db *edb.EDB, handlers *store.Registry, predicates *predicate.Registry, params *paramsconfig.Params) *Driver {
	return &Driver{DB: db, Handlers: handlers, Predicates: predicates, Params: params}
}

// requestGoalName names the request's top-level goal in diagnostics
// (spec.md §4.5 step 2). It is only a label: Solve does not wrap the
// request in a registered predicate (see Solve).
var requestGoalName = "_request_goal"

// Answer is a successful Solve's result: the final ConstraintStore (its
// Premises hold every Statement the search justified, in an order where
// a Statement always precedes any operation that consumed it as a
// premise) plus the ground form of the request's own goal templates,
// which package proof treats as always-public (spec.md §4.6: "a direct
// premise of _request_goal" is public regardless of reuse elsewhere).
type Answer struct {
	Store     *store.ConstraintStore
	Requested []podlang.Statement
}

// Solve answers a Request against the Driver's EDB: it seeds a fresh
// ConstraintStore, allocates one wildcard per distinct template
// wildcard the request already names (so request wildcards keep their
// caller-visible indices), and runs solveQueue over the request's
// templates directly, since a request's templates are already a flat
// conjunction with no private wildcards of their own to remap. This is
// the Go port's synthetic-_request_goal step (spec.md §4.5 step 2):
// rather than materializing a one-off custom predicate wrapping the
// request, the request's templates are solved as the top-level goal
// queue directly and their instantiated form is recorded as Requested.
func (d *Driver) Solve(req podlang.Request) (*Answer, error) {
	d.nextWildcard = requestWildcardCount(req)
	s := store.NewConstraintStore()
	result, err := d.solveQueue(req.Templates, s, 0, 0)
	if err != nil {
		if errs.HasKind(err, errs.DepthExceeded) {
			return nil, err
		}
		return nil, errs.New(errs.NoProof, "solve", err)
	}

	requested := make([]podlang.Statement, 0, len(req.Templates))
	for _, t := range req.Templates {
		stmt, ok := store.InstantiateGoal(t, result.Bindings)
		if !ok {
			return nil, errs.New(errs.NoProof, "solve", fmt.Errorf("request goal left unbound after search"))
		}
		requested = append(requested, stmt)
	}
	return &Answer{Store: result, Requested: requested}, nil
}

func requestWildcardCount(req podlang.Request) int {
	max := -1
	for _, t := range req.Templates {
		if n := t.WildcardCount(); n-1 > max {
			max = n - 1
		}
	}
	return max + 1
}

func (d *Driver) allocWildcard() int {
	w := d.nextWildcard
	d.nextWildcard++
	return w
}

// errDeadlock is the internal sentinel for a failed search branch: every
// remaining goal is suspended and none can make progress, or every
// handler, choice, or rule for a goal has failed. Solve turns it into
// NoProof.
var errDeadlock = fmt.Errorf("engine: %s", requestGoalName+": all remaining goals suspended")

// solveQueue depth-first searches for bindings that satisfy every
// template in queue, given the accumulated state s. depth counts the
// goals resolved along the current search path, native goals and
// custom predicate rule expansions alike (bounded by
// Params.MaxSearchDepth); stall
// counts consecutive Suspend rotations without progress, so a queue of
// goals that can never wake is recognized as failed rather than looped
// on forever (spec.md §4.5's suspend/wake-up step, §4.4's termination
// requirement).
func (d *Driver) solveQueue(queue []podlang.StatementTemplate, s *store.ConstraintStore, depth, stall int) (*store.ConstraintStore, error) {
	if len(queue) == 0 {
		return s, nil
	}
	if depth > d.Params.MaxSearchDepth {
		return nil, errs.New(errs.DepthExceeded, "solve", nil)
	}
	if stall >= len(queue) {
		return nil, errDeadlock
	}

	g := queue[0]
	rest := queue[1:]

	if g.Predicate.IsCustom() {
		return d.solveCustomGoal(g, rest, s, depth, stall)
	}
	return d.solveNativeGoal(g, rest, s, depth, stall)
}

// solveNativeGoal tries the handlers registered for g's predicate in
// order (spec.md §4.4: handler selection is by Kind). A Contradiction
// moves on to the next handler; a Suspend rotates g to the back of the
// queue without trying later handlers. After an Entailed or Choices
// result, rest is solved under that commitment; if that fails (other
// than by DepthExceeded), the search backtracks into the next handler.
func (d *Driver) solveNativeGoal(g podlang.StatementTemplate, rest []podlang.StatementTemplate, s *store.ConstraintStore, depth, stall int) (*store.ConstraintStore, error) {
	handlers := d.Handlers.Handlers(g.Predicate.Native)
	if len(handlers) == 0 {
		return nil, errs.New(errs.UnknownPredicate, "solve", fmt.Errorf("no handlers registered for %s", g.Predicate))
	}

	for _, h := range handlers {
		res := h.Propagate(g.Args, s, d.DB)
		switch res.Kind {
		case store.Contradiction:
			continue

		case store.Suspend:
			rotated := append(append([]podlang.StatementTemplate{}, rest...), g)
			return d.solveQueue(rotated, s, depth, stall+1)

		case store.Entailed:
			s2 := s.Clone()
			if !applyBindings(s2, res.Bindings) {
				continue
			}
			for _, p := range res.Premises {
				s2.AddPremise(p)
			}
			head, ok := store.InstantiateGoal(g, s2.Bindings)
			if !ok {
				continue
			}
			s2.AddPremise(store.Premise{Statement: head, Tag: res.Tag})
			recordInputPod(s2, res.Tag)
			if out, err := d.solveQueue(rest, s2, depth+1, 0); err == nil {
				return out, nil
			} else if errs.HasKind(err, errs.DepthExceeded) {
				return nil, err
			}

		case store.Choices:
			out, err := d.tryChoices(g, res.Alternatives, rest, s, depth)
			if err != nil {
				if errs.HasKind(err, errs.DepthExceeded) {
					return nil, err
				}
				continue
			}
			return out, nil
		}
	}
	return nil, errDeadlock
}

func (d *Driver) tryChoices(g podlang.StatementTemplate, alts []store.Choice, rest []podlang.StatementTemplate, s *store.ConstraintStore, depth int) (*store.ConstraintStore, error) {
	for _, alt := range alts {
		s2 := s.Clone()
		if !applyBindings(s2, alt.Bindings) {
			continue
		}
		for _, p := range alt.Premises {
			s2.AddPremise(p)
		}
		head, ok := store.InstantiateGoal(g, s2.Bindings)
		if !ok {
			continue
		}
		s2.AddPremise(store.Premise{Statement: head, Tag: alt.Tag})
		recordInputPod(s2, alt.Tag)
		if out, err := d.solveQueue(rest, s2, depth+1, 0); err == nil {
			return out, nil
		} else if errs.HasKind(err, errs.DepthExceeded) {
			return nil, err
		}
	}
	return nil, errDeadlock
}

func applyBindings(s *store.ConstraintStore, bindings []store.WildcardBinding) bool {
	for _, b := range bindings {
		if !s.Bind(b.Wildcard, b.Value) {
			return false
		}
	}
	return true
}

func recordInputPod(s *store.ConstraintStore, tag podlang.OpTag) {
	if tag.Kind == podlang.OpCopyStatement {
		s.AddInputPod(tag.Source)
	}
}

// solveCustomGoal tries each rule registered for g's predicate in turn,
// instantiating its body under a fresh wildcard frame and solving that
// body as a self-contained sub-query before resuming rest (a deliberate
// simplification versus the original's single flat goal pool; see
// DESIGN.md).
func (d *Driver) solveCustomGoal(g podlang.StatementTemplate, rest []podlang.StatementTemplate, s *store.ConstraintStore, depth, stall int) (*store.ConstraintStore, error) {
	ref := g.Predicate.Custom
	rules, ok := d.Predicates.Rules(ref)
	if !ok {
		return nil, errs.New(errs.UnknownPredicate, "solve", fmt.Errorf("custom predicate %s not registered", ref))
	}

	var lastErr error = errDeadlock
	for _, rule := range rules {
		s2 := s.Clone()
		posMap, headArgs, ok := d.bindRuleFrame(rule, g.Args, s2)
		if !ok {
			continue
		}
		substBody := remapBody(rule.Body, posMap)

		bodyStore, err := d.solveQueue(substBody, s2, depth+1, 0)
		if err != nil {
			if errs.HasKind(err, errs.DepthExceeded) {
				return nil, err
			}
			lastErr = err
			continue
		}

		orderedBody := make([]podlang.Statement, len(substBody))
		for i, t := range substBody {
			stmt, ok := store.InstantiateGoal(t, bodyStore.Bindings)
			if !ok {
				orderedBody[i] = podlang.Statement{}
				continue
			}
			orderedBody[i] = stmt
		}
		headStmt, ok := store.InstantiateCustomHead(ref, headArgs, bodyStore.Bindings)
		if !ok {
			continue
		}
		tag := podlang.CustomDeduction(ref, orderedBody)
		bodyStore.AddPremise(store.Premise{Statement: headStmt, Tag: tag})

		if out, err := d.solveQueue(rest, bodyStore, depth+1, 0); err == nil {
			return out, nil
		} else if errs.HasKind(err, errs.DepthExceeded) {
			return nil, err
		} else {
			lastErr = err
		}
	}
	return nil, lastErr
}

// bindRuleFrame builds the position map from a rule's local wildcard
// indices to fresh (or caller-aliased) global ones, binding the frame's
// head positions from the caller's args, and returns the head's
// TemplateArgs in terms of the new global indices.
//
// A head position that is itself a caller wildcard is aliased directly
// to that wildcard's global index (no fresh allocation, no equality
// constraint needed); a literal head position gets a fresh wildcard
// immediately bound to the literal; an anchored-key head position is
// resolved against the EDB when possible, otherwise given a fresh
// unbound wildcard (a documented limitation: the original solver's
// handling of anchored keys passed as custom-predicate arguments is
// richer than this MVP port attempts). Every private, body-only
// position gets a fresh global index.
func (d *Driver) bindRuleFrame(rule predicate.Rule, callerArgs []podlang.TemplateArg, s *store.ConstraintStore) (posMap []int, headArgs []podlang.TemplateArg, ok bool) {
	posMap = make([]int, rule.WildcardCount)
	headArgs = make([]podlang.TemplateArg, len(callerArgs))

	for i, callerArg := range callerArgs {
		switch callerArg.Kind {
		case podlang.ArgWildcard:
			posMap[i] = callerArg.WildcardIndex
			headArgs[i] = podlang.ArgWild(callerArg.WildcardIndex, callerArg.WildcardName)

		case podlang.ArgLiteral:
			w := d.allocWildcard()
			if !s.Bind(w, callerArg.Literal) {
				return nil, nil, false
			}
			posMap[i] = w
			headArgs[i] = podlang.ArgWild(w, callerArg.WildcardName)

		case podlang.ArgAnchoredKey:
			w := d.allocWildcard()
			if root, bound := store.BoundRoot(s, callerArg.WildcardIndex); bound {
				if v, found := d.DB.ContainsValue(root, callerArg.Key); found {
					if !s.Bind(w, v) {
						return nil, nil, false
					}
				}
			}
			posMap[i] = w
			headArgs[i] = podlang.ArgWild(w, callerArg.WildcardName)

		default:
			return nil, nil, false
		}
	}

	for i := len(callerArgs); i < rule.WildcardCount; i++ {
		posMap[i] = d.allocWildcard()
	}
	return posMap, headArgs, true
}

// remapBody rewrites a rule's body templates through posMap, turning a
// rule-local wildcard frame into the caller's global one.
func remapBody(body []podlang.StatementTemplate, posMap []int) []podlang.StatementTemplate {
	out := make([]podlang.StatementTemplate, len(body))
	for i, t := range body {
		args := make([]podlang.TemplateArg, len(t.Args))
		for j, a := range t.Args {
			args[j] = remapArg(a, posMap)
		}
		out[i] = podlang.NewTemplate(t.Predicate, args...)
	}
	return out
}

func remapArg(a podlang.TemplateArg, posMap []int) podlang.TemplateArg {
	switch a.Kind {
	case podlang.ArgWildcard:
		return podlang.ArgWild(posMap[a.WildcardIndex], a.WildcardName)
	case podlang.ArgAnchoredKey:
		return podlang.ArgAnchored(posMap[a.WildcardIndex], a.WildcardName, a.Key)
	default:
		return a
	}
}
