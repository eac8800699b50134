package seminaive

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"podsolve/internal/edb"
	"podsolve/internal/engine"
	"podsolve/internal/errs"
	"podsolve/internal/paramsconfig"
	"podsolve/internal/podlang"
	"podsolve/internal/predicate"
	"podsolve/internal/store"
	"podsolve/internal/value"
)

// Evaluator is the bottom-up alternative to engine.Driver (spec.md
// §4.8): it repeatedly fires custom-predicate rules over the EDB until
// no rule produces a new fact, instead of the top-down engine's
// goal-directed search. Grounded on the same OpHandler/Registry
// abstractions engine.Driver uses, so both engines justify a given
// Statement with the exact same OpTag vocabulary (the equivalence
// spec.md §8 invariant 8 requires).
type Evaluator struct {
	DB         *edb.EDB
	Handlers   *store.Registry
	Predicates *predicate.Registry
	Params     *paramsconfig.Params

	nextWildcard int
}

func NewEvaluator(db *edb.EDB, handlers *store.Registry, predicates *predicate.Registry, params *paramsconfig.Params) *Evaluator {
	return &Evaluator{DB: db, Handlers: handlers, Predicates: predicates, Params: params}
}

// Solve answers req bottom-up: a Magic-Set-lite pass restricts work to
// predicates reachable from req (spec.md §4.8 step 2, simplified to
// predicate-name reachability rather than full per-adornment
// specialization — see DESIGN.md), then splits that set into the
// predicates whose rules touch a native predicate somewhere and
// everything else (classifyMangleEligible). The former run the
// semi-naive round loop below first, firing every reachable rule each
// round until none derives a new fact (step 3); the latter are then
// evaluated to their fixpoint by the real github.com/google/mangle/engine
// via mengine.EvalProgramWithStats (mangle.go), seeded with whatever
// native-touching facts the round loop already materialized, before a
// final pass resolves req's own templates against the combined,
// materialized fact table.
func (e *Evaluator) Solve(req podlang.Request) (*engine.Answer, error) {
	e.nextWildcard = requestWildcardCount(req)
	reachable := reachablePredicates(req, e.Predicates)
	mangleRefs, roundRefs := classifyMangleEligible(reachable, e.Predicates)

	facts := NewFactStore()
	tags := make(map[string]podlang.OpTag)
	s := store.NewConstraintStore()
	prov := NewProvenanceStore()

	cache, _ := lru.New[string, []Extension](4096)

	for round := 0; round < e.Params.MaxSearchDepth; round++ {
		changed := false
		for _, ref := range roundRefs {
			rules, ok := e.Predicates.Rules(ref)
			if !ok {
				continue
			}
			for _, rule := range rules {
				fired, err := e.fireRule(ref, rule, facts, tags, cache)
				if err != nil {
					return nil, err
				}
				for _, f := range fired {
					if facts.AddStatement(f.head) {
						changed = true
						tags[f.head.Key()] = f.tag
						s.AddPremise(store.Premise{Statement: f.head, Tag: f.tag})
						for _, p := range f.bodyPremises {
							s.AddPremise(p)
						}
						node := &ProofNode{Statement: f.head, Kind: justKindOf(f.tag)}
						if f.tag.Kind == podlang.OpCustomDeduction {
							node.CustomPred = f.tag.Predicate
						} else {
							node.NativeOp = f.tag.Op
						}
						for _, p := range f.bodyPremises {
							if n, ok := prov.Lookup(p.Statement); ok {
								node.Premises = append(node.Premises, n)
							}
						}
						prov.Record(node)
					}
				}
			}
		}
		if len(facts.ListPredicates()) > 0 && factCount(facts) > e.Params.MaxStatements {
			return nil, errs.New(errs.DepthExceeded, "seminaive.solve", nil)
		}
		if !changed {
			break
		}
	}

	if err := e.runMangleClosure(mangleRefs, facts, tags, s, prov); err != nil {
		return nil, err
	}
	if len(facts.ListPredicates()) > 0 && factCount(facts) > e.Params.MaxStatements {
		return nil, errs.New(errs.DepthExceeded, "seminaive.solve", nil)
	}

	requested := make([]podlang.Statement, 0, len(req.Templates))
	for _, t := range req.Templates {
		stmt, ok, tag, premises := e.resolveRequestGoal(t, facts, tags)
		if !ok {
			return nil, errs.New(errs.NoProof, "seminaive.solve", nil)
		}
		s.AddPremise(store.Premise{Statement: stmt, Tag: tag})
		for _, p := range premises {
			s.AddPremise(p)
		}
		requested = append(requested, stmt)
	}

	return &engine.Answer{Store: s, Requested: requested}, nil
}

func justKindOf(tag podlang.OpTag) JustificationKind {
	switch tag.Kind {
	case podlang.OpCustomDeduction:
		return JustCustom
	case podlang.OpGeneratedContains:
		return JustNewEntry
	case podlang.OpDerived:
		switch tag.Op {
		case podlang.PredEqual, podlang.PredNotEqual, podlang.PredLt, podlang.PredLtEq:
			return JustValueComparison
		default:
			return JustSpecial
		}
	case podlang.OpCopyStatement:
		return JustFact
	default:
		return JustFact
	}
}

func factCount(facts *FactStore) int {
	n := 0
	for _, pred := range facts.ListPredicates() {
		n += len(facts.Statements(pred.Symbol, pred.Arity))
	}
	return n
}

// resolveRequestGoal answers one top-level request template directly,
// either against the materialized fact table (for custom predicates) or
// by invoking the native handler registry once more now that every
// reachable rule has been fully materialized.
func (e *Evaluator) resolveRequestGoal(t podlang.StatementTemplate, facts *FactStore, tags map[string]podlang.OpTag) (podlang.Statement, bool, podlang.OpTag, []store.Premise) {
	if t.Predicate.IsCustom() {
		ref := t.Predicate.Custom
		for _, cand := range facts.Statements(ref.String(), len(t.Args)) {
			if unify(t.Args, cand.Args, map[int]value.Value{}) != nil {
				return cand, true, tags[cand.Key()], nil
			}
		}
		return podlang.Statement{}, false, podlang.OpTag{}, nil
	}
	exts := e.enumerate(t, map[int]value.Value{}, nil)
	if len(exts) == 0 {
		return podlang.Statement{}, false, podlang.OpTag{}, nil
	}
	ext := exts[0]
	stmt, ok := store.InstantiateGoal(t, ext.Bindings)
	if !ok {
		return podlang.Statement{}, false, podlang.OpTag{}, nil
	}
	return stmt, true, ext.Tag, ext.Premises
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

func (e *Evaluator) allocWildcard() int {
	w := e.nextWildcard
	e.nextWildcard++
	return w
}
