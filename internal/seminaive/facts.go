// Package seminaive is the bottom-up alternative engine spec.md §4.8
// describes: Magic-Set rewriting, a semi-naive fixpoint loop over the
// EDB, and proof reconstruction via a ProvenanceStore. Every ground
// Statement here is encoded through github.com/google/mangle's
// ast.Atom/ast.Constant/factstore types (grounded on
// _examples/duynguyendang-gca/pkg/meb's FactStore implementation for
// the predicate-indexed row shape), and for custom predicates whose
// rule bodies reference only other custom predicates (no native
// comparison/arithmetic/Contains goal), the §4.8 fixpoint itself is
// handed to github.com/google/mangle/engine.EvalProgramWithStats, the
// same entry point the teacher's own internal/mangle/engine.go wraps
// (see mangle.go). Rule bodies that also touch a native predicate fall
// outside what EvalProgramWithStats can evaluate — arithmetic
// inversion, EDB-backed Contains, and cryptographic checks are not
// expressible as pure Datalog atoms — and stay on the hand-written
// materializer (materializer.go) that dispatches to the same
// store.Registry the top-down engine.Driver uses.
package seminaive

import (
	"fmt"
	"sync"

	"github.com/google/mangle/ast"

	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

// atomOf encodes a ground podlang.Statement as a mangle Atom for the
// bookkeeping FactStore below. Literal arguments keep their native
// Mangle constant type (ast.NumberType for ints, ast.StringType for
// strings and every other Value kind, content-hash-keyed so two equal
// Values always collide to the same constant) rather than flattening
// every kind through one opaque string; anchored-key arguments, which
// have no ground value yet, are encoded as a "root/key" string so two
// references to the same anchored field still collide under
// unification.
func atomOf(s podlang.Statement) ast.Atom {
	args := make([]ast.BaseTerm, len(s.Args))
	for i, a := range s.Args {
		args[i] = literalConstant(a)
	}
	return ast.Atom{
		Predicate: ast.PredicateSym{Symbol: s.Predicate.String(), Arity: len(s.Args)},
		Args:      args,
	}
}

// literalConstant converts one Statement argument to a typed mangle
// Constant: a ValueRef.Literal of kind Int becomes a NumberType
// constant carrying the actual integer, and every other kind (string,
// bool, array, dict, set, public key, pod id, raw) becomes a
// StringType constant keyed by its canonical text, since Mangle has no
// native term shape for Podlang's composite values.
func literalConstant(r podlang.ValueRef) ast.Constant {
	if !r.IsLiteral() {
		return ast.Constant{Type: ast.StringType, Symbol: r.Root.String() + "/" + r.Key.Name()}
	}
	v := r.Literal
	if n, ok := v.Int(); ok {
		return ast.Constant{Type: ast.NumberType, NumValue: n}
	}
	if sv, ok := v.String2(); ok {
		return ast.Constant{Type: ast.StringType, Symbol: sv}
	}
	return ast.Constant{Type: ast.StringType, Symbol: v.Raw().String()}
}

// fullHex renders h as a collision-free hex string (unlike Hash.String,
// which truncates to a short display prefix) — used for identifiers
// this package hands to the real mangle parser/engine, where a
// truncated prefix could alias two distinct predicates or constants.
func fullHex(h value.Hash) string {
	return fmt.Sprintf("%016x%016x%016x%016x", h[0], h[1], h[2], h[3])
}

// FactStore is an in-memory factstore.FactStore: ground Statements
// indexed by predicate symbol, mirroring MEBStore's
// predicate-to-rows shape without the on-disk backing the teacher's
// store needs (this evaluator's whole EDB comfortably fits in memory
// for a single solve call, spec.md §5: "bounded resources").
type FactStore struct {
	mu   sync.RWMutex
	rows map[ast.PredicateSym][]ast.Atom
	// stmts mirrors rows, keyed by the same predicate symbol, so proof
	// reconstruction can map an Atom back to the Statement it came from
	// without re-parsing constants.
	stmts map[ast.PredicateSym]map[string]podlang.Statement
}

func NewFactStore() *FactStore {
	return &FactStore{
		rows:  make(map[ast.PredicateSym][]ast.Atom),
		stmts: make(map[ast.PredicateSym]map[string]podlang.Statement),
	}
}

// Add records atom, returning false if it was already
// present (factstore.FactStore.Add's contract).
func (fs *FactStore) Add(atom ast.Atom) bool {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.addLocked(atom, podlang.Statement{})
}

// AddStatement is Add plus recording stmt itself for provenance lookup.
func (fs *FactStore) AddStatement(stmt podlang.Statement) bool {
	atom := atomOf(stmt)
	fs.mu.Lock()
	defer fs.mu.Unlock()
	return fs.addLocked(atom, stmt)
}

func (fs *FactStore) addLocked(atom ast.Atom, stmt podlang.Statement) bool {
	key := atomKey(atom)
	if fs.stmts[atom.Predicate] == nil {
		fs.stmts[atom.Predicate] = make(map[string]podlang.Statement)
	}
	if _, exists := fs.stmts[atom.Predicate][key]; exists {
		return false
	}
	fs.rows[atom.Predicate] = append(fs.rows[atom.Predicate], atom)
	fs.stmts[atom.Predicate][key] = stmt
	return true
}

func atomKey(atom ast.Atom) string {
	out := atom.Predicate.Symbol
	for _, a := range atom.Args {
		if c, ok := a.(ast.Constant); ok {
			if c.Type == ast.NumberType {
				out += fmt.Sprintf("|#%d", c.NumValue)
			} else {
				out += "|" + c.Symbol
			}
		}
	}
	return out
}

// GetFacts streams every atom matching query's predicate symbol,
// ignoring bound argument positions (callers filter further
// themselves); satisfies factstore.ReadOnlyFactStore.GetFacts.
func (fs *FactStore) GetFacts(query ast.Atom, cb func(ast.Atom) error) error {
	fs.mu.RLock()
	rows := append([]ast.Atom(nil), fs.rows[query.Predicate]...)
	fs.mu.RUnlock()
	for _, atom := range rows {
		if err := cb(atom); err != nil {
			return err
		}
	}
	return nil
}

// ListPredicates satisfies factstore.ReadOnlyFactStore.ListPredicates.
func (fs *FactStore) ListPredicates() []ast.PredicateSym {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	out := make([]ast.PredicateSym, 0, len(fs.rows))
	for p := range fs.rows {
		out = append(out, p)
	}
	return out
}

// Merge folds other's facts into fs, satisfying
// factstore.FactStore.Merge.
func (fs *FactStore) Merge(other *FactStore) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()
	for _, pred := range other.ListPredicates() {
		other.mu.RLock()
		rows := append([]ast.Atom(nil), other.rows[pred]...)
		stmts := other.stmts[pred]
		other.mu.RUnlock()
		for _, atom := range rows {
			fs.addLocked(atom, stmts[atomKey(atom)])
		}
	}
	return nil
}

// Statements returns every Statement recorded for pred's symbol whose
// AddStatement call supplied one.
func (fs *FactStore) Statements(symbol string, arity int) []podlang.Statement {
	fs.mu.RLock()
	defer fs.mu.RUnlock()
	sym := ast.PredicateSym{Symbol: symbol, Arity: arity}
	out := make([]podlang.Statement, 0, len(fs.stmts[sym]))
	for _, s := range fs.stmts[sym] {
		out = append(out, s)
	}
	return out
}
