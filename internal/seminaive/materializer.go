package seminaive

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"

	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

// Extension is one way of extending a partial binding set to satisfy a
// single StatementTemplate, with the OpTag and supporting premises that
// justify it — the Materializer's unit of output (spec.md §4.8 step 3).
type Extension struct {
	Bindings map[int]value.Value
	Tag      podlang.OpTag
	Premises []store.Premise
}

// enumerate is the Materializer: it asks the native handler registry,
// via a throwaway ConstraintStore seeded with bindings, for every way
// tmpl can be satisfied, mirroring the from-entries handlers' own
// logic exactly (spec.md §4.8 step 3: "dispatches to native handlers
// that mirror the from-entries logic"). A per-call cache keyed by the
// template's predicate and its currently-bound wildcards avoids
// re-querying the same pattern across rounds.
func (e *Evaluator) enumerate(tmpl podlang.StatementTemplate, bindings map[int]value.Value, cache *lru.Cache[string, []Extension]) []Extension {
	key := cacheKey(tmpl, bindings)
	if cache != nil {
		if v, ok := cache.Get(key); ok {
			return v
		}
	}

	tmp := store.NewConstraintStore()
	for w, v := range bindings {
		tmp.Bind(w, v)
	}

	var out []Extension
	for _, h := range e.Handlers.Handlers(tmpl.Predicate.Native) {
		res := h.Propagate(tmpl.Args, tmp, e.DB)
		switch res.Kind {
		case store.Entailed:
			if merged, ok := mergeBindings(bindings, res.Bindings); ok {
				out = append(out, Extension{Bindings: merged, Tag: res.Tag, Premises: append([]store.Premise(nil), res.Premises...)})
			}
		case store.Choices:
			for _, c := range res.Alternatives {
				if merged, ok := mergeBindings(bindings, c.Bindings); ok {
					out = append(out, Extension{Bindings: merged, Tag: c.Tag, Premises: append([]store.Premise(nil), c.Premises...)})
				}
			}
		}
		if len(out) > 0 {
			break
		}
	}

	if cache != nil {
		cache.Add(key, out)
	}
	return out
}

func mergeBindings(base map[int]value.Value, add []store.WildcardBinding) (map[int]value.Value, bool) {
	merged := make(map[int]value.Value, len(base)+len(add))
	for k, v := range base {
		merged[k] = v
	}
	for _, b := range add {
		if existing, ok := merged[b.Wildcard]; ok {
			if !existing.Equal(b.Value) {
				return nil, false
			}
			continue
		}
		merged[b.Wildcard] = b.Value
	}
	return merged, true
}

func cacheKey(tmpl podlang.StatementTemplate, bindings map[int]value.Value) string {
	out := tmpl.Predicate.String()
	for _, w := range store.WildcardsIn(tmpl.Args) {
		if v, ok := bindings[w]; ok {
			out += fmt.Sprintf("|%d=%s", w, v.Raw().String())
		} else {
			out += fmt.Sprintf("|%d=?", w)
		}
	}
	return out
}

// unify matches a body template's args against a ground Statement's
// ValueRefs, extending bindings (a fresh copy, base untouched) or
// reporting failure. Facts in the materialized table are always
// ground literals, so an AnchoredKey ValueRef on the candidate side
// never matches (a documented limitation: this port's bottom-up join
// does not resolve anchored-key facts, only literal ones).
func unify(args []podlang.TemplateArg, refs []podlang.ValueRef, bindings map[int]value.Value) map[int]value.Value {
	if len(args) != len(refs) {
		return nil
	}
	out := make(map[int]value.Value, len(bindings))
	for k, v := range bindings {
		out[k] = v
	}
	for i, a := range args {
		ref := refs[i]
		if !ref.IsLiteral() {
			return nil
		}
		v := ref.Literal
		switch a.Kind {
		case podlang.ArgLiteral:
			if !a.Literal.Equal(v) {
				return nil
			}
		case podlang.ArgWildcard:
			if existing, ok := out[a.WildcardIndex]; ok {
				if !existing.Equal(v) {
					return nil
				}
			} else {
				out[a.WildcardIndex] = v
			}
		default:
			return nil
		}
	}
	return out
}

type joinState struct {
	Bindings map[int]value.Value
	Premises []store.Premise
}

// joinBody finds every way to satisfy body's templates in left-to-right
// order, joining native Materializer extensions and custom subgoal
// matches against the facts already derived this round (spec.md §4.8
// step 3's per-rule body evaluation). Width is capped by
// Params.MaxEnumerationWidth to bound runaway joins: states beyond the
// cap are dropped. (The top-down engine's EnumerateChoicesFor has no
// such cap.)
func (e *Evaluator) joinBody(body []podlang.StatementTemplate, facts *FactStore, tags map[string]podlang.OpTag, cache *lru.Cache[string, []Extension]) []joinState {
	states := []joinState{{Bindings: map[int]value.Value{}}}
	for _, tmpl := range body {
		var next []joinState
		for _, st := range states {
			if tmpl.Predicate.IsCustom() {
				next = append(next, e.joinCustom(tmpl, st, facts, tags)...)
			} else {
				next = append(next, e.joinNative(tmpl, st, cache)...)
			}
			if e.Params.MaxEnumerationWidth > 0 && len(next) > e.Params.MaxEnumerationWidth {
				next = next[:e.Params.MaxEnumerationWidth]
			}
		}
		states = next
		if len(states) == 0 {
			return nil
		}
	}
	return states
}

func (e *Evaluator) joinNative(tmpl podlang.StatementTemplate, st joinState, cache *lru.Cache[string, []Extension]) []joinState {
	exts := e.enumerate(tmpl, st.Bindings, cache)
	out := make([]joinState, 0, len(exts))
	for _, ext := range exts {
		head, ok := store.InstantiateGoal(tmpl, ext.Bindings)
		if !ok {
			continue
		}
		premises := append(append([]store.Premise(nil), st.Premises...), ext.Premises...)
		premises = append(premises, store.Premise{Statement: head, Tag: ext.Tag})
		out = append(out, joinState{Bindings: ext.Bindings, Premises: premises})
	}
	return out
}

func (e *Evaluator) joinCustom(tmpl podlang.StatementTemplate, st joinState, facts *FactStore, tags map[string]podlang.OpTag) []joinState {
	ref := tmpl.Predicate.Custom
	var out []joinState
	for _, cand := range facts.Statements(ref.String(), len(tmpl.Args)) {
		merged := unify(tmpl.Args, cand.Args, st.Bindings)
		if merged == nil {
			continue
		}
		premises := append(append([]store.Premise(nil), st.Premises...), store.Premise{Statement: cand, Tag: tags[cand.Key()]})
		out = append(out, joinState{Bindings: merged, Premises: premises})
	}
	return out
}

// firedFact is one new fact a rule firing round derived for its head
// predicate.
type firedFact struct {
	head         podlang.Statement
	tag          podlang.OpTag
	bodyPremises []store.Premise
}

// fireRule instantiates rule under a fresh global wildcard frame (no
// caller bindings — the bottom-up engine fires rules unconditionally
// within the reachable set, rather than under the goal-directed
// aliasing engine.Driver's solveCustomGoal performs) and returns every
// head fact the rule's body can currently justify.
func (e *Evaluator) fireRule(ref podlang.CustomPredicateRef, rule predicate.Rule, facts *FactStore, tags map[string]podlang.OpTag, cache *lru.Cache[string, []Extension]) ([]firedFact, error) {
	pred, ok := e.Predicates.Predicate(ref)
	if !ok {
		return nil, nil
	}

	posMap := make([]int, rule.WildcardCount)
	for i := range posMap {
		posMap[i] = e.allocWildcard()
	}
	substBody := remapBody(rule.Body, posMap)

	states := e.joinBody(substBody, facts, tags, cache)
	out := make([]firedFact, 0, len(states))
	for _, st := range states {
		headArgs := make([]podlang.TemplateArg, pred.ArgCount)
		for i := 0; i < pred.ArgCount; i++ {
			headArgs[i] = podlang.ArgWild(posMap[i], fmt.Sprintf("r%d", posMap[i]))
		}
		headStmt, ok := store.InstantiateCustomHead(ref, headArgs, st.Bindings)
		if !ok {
			continue
		}
		orderedBody := make([]podlang.Statement, len(substBody))
		for i, t := range substBody {
			if s, ok := store.InstantiateGoal(t, st.Bindings); ok {
				orderedBody[i] = s
			}
		}
		out = append(out, firedFact{
			head:         headStmt,
			tag:          podlang.CustomDeduction(ref, orderedBody),
			bodyPremises: st.Premises,
		})
	}
	return out, nil
}
