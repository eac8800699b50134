package edb

import (
	"sort"

	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

// Query returns every indexed fact for pred whose arguments satisfy
// every ArgSel in sels, positionally. An empty result for a predicate
// with no index is not an error: it simply means no such facts exist.
func (e *EDB) Query(pred podlang.Predicate, sels []ArgSel) []podlang.Statement {
	idx, ok := e.perPredicate[keyOf(pred)]
	if !ok {
		return nil
	}

	var candidates map[int]struct{}
	for i, sel := range sels {
		if i >= len(idx.argIndexes) {
			return nil
		}
		ids := idx.argIndexes[i][selKey(sel)]
		set := make(map[int]struct{}, len(ids))
		for _, id := range ids {
			set[id] = struct{}{}
		}
		if candidates == nil {
			candidates = set
		} else {
			for id := range candidates {
				if _, ok := set[id]; !ok {
					delete(candidates, id)
				}
			}
		}
		if len(candidates) == 0 {
			return nil
		}
	}
	if candidates == nil {
		candidates = make(map[int]struct{}, len(idx.facts))
		for i := range idx.facts {
			candidates[i] = struct{}{}
		}
	}

	ids := make([]int, 0, len(candidates))
	for id := range candidates {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	out := make([]podlang.Statement, 0, len(ids))
	for _, id := range ids {
		out = append(out, idx.facts[id].Statement)
	}
	return out
}

// QueryWithProvenance is Query plus each result's contributing pod.
func (e *EDB) QueryWithProvenance(pred podlang.Predicate, sels []ArgSel) []struct {
	Statement podlang.Statement
	Pod       value.PodRef
} {
	idx, ok := e.perPredicate[keyOf(pred)]
	if !ok {
		return nil
	}
	stmts := e.Query(pred, sels)
	byKey := make(map[string]value.PodRef, len(idx.facts))
	for _, f := range idx.facts {
		byKey[f.Statement.Key()] = f.Pod
	}
	out := make([]struct {
		Statement podlang.Statement
		Pod       value.PodRef
	}, 0, len(stmts))
	for _, s := range stmts {
		out = append(out, struct {
			Statement podlang.Statement
			Pod       value.PodRef
		}{Statement: s, Pod: byKey[s.Key()]})
	}
	return out
}

func selKey(sel ArgSel) indexKey {
	switch sel.Kind {
	case SelLiteral:
		return indexKey{kind: 1, raw: sel.Literal.Raw()}
	case SelAnyLiteral:
		return indexKey{kind: 2}
	case SelAnchoredKeyExact:
		return indexKey{kind: 3, root: sel.Root, raw: sel.Key.Hash()}
	default:
		return indexKey{kind: 4, raw: sel.Key.Hash()}
	}
}

// ContainsValue resolves a known value at (root, key), preferring a
// copied fact over a full-dictionary entry, matching the original
// solver's lookup order.
func (e *EDB) ContainsValue(root value.Hash, key value.Key) (value.Value, bool) {
	if vs, ok := e.containsCopied[copiedKey{root: root, key: key.Hash()}]; ok && len(vs) > 0 {
		return vs[0].Value, true
	}
	if m, ok := e.fullDicts[root]; ok {
		if v, ok := m[key.Hash()]; ok {
			return v, true
		}
	}
	return value.Value{}, false
}

// ContainsSourceOf returns the provenance of a specific Contains(root,
// key, val) fact, preferring GeneratedFromFullDict over Copied so the
// engine emits the cheaper GeneratedContains operation when both are
// available (podlang open question: prefer generation over copying).
func (e *EDB) ContainsSourceOf(root value.Hash, key value.Key, val value.Value) (ContainsSource, bool) {
	if m, ok := e.fullDicts[root]; ok {
		if v, ok := m[key.Hash()]; ok && v.Equal(val) {
			return ContainsSource{Kind: SourceGeneratedFromFullDict, Root: root}, true
		}
	}
	if vs, ok := e.containsCopied[copiedKey{root: root, key: key.Hash()}]; ok {
		for _, e2 := range vs {
			if e2.Value.Equal(val) {
				return ContainsSource{Kind: SourceCopied, Pod: e2.Pod}, true
			}
		}
	}
	return ContainsSource{}, false
}

// EnumerateContainsSources lists every (root, source) pair that can
// justify Contains(root, key, val), sorted by root for determinism
// (spec.md §4.1 invariant ii).
func (e *EDB) EnumerateContainsSources(key value.Key, val value.Value) []struct {
	Root   value.Hash
	Source ContainsSource
} {
	type pair struct {
		Root   value.Hash
		Source ContainsSource
	}
	var out []pair
	for ck, vs := range e.containsCopied {
		if ck.key != key.Hash() {
			continue
		}
		for _, e2 := range vs {
			if e2.Value.Equal(val) {
				out = append(out, pair{Root: ck.root, Source: ContainsSource{Kind: SourceCopied, Pod: e2.Pod}})
			}
		}
	}
	for root, m := range e.fullDicts {
		if v, ok := m[key.Hash()]; ok && v.Equal(val) {
			out = append(out, pair{Root: root, Source: ContainsSource{Kind: SourceGeneratedFromFullDict, Root: root}})
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Root != out[j].Root {
			return out[i].Root.Less(out[j].Root)
		}
		return out[i].Source.Kind < out[j].Source.Kind // Copied before Generated, matching enumeration order elsewhere
	})
	result := make([]struct {
		Root   value.Hash
		Source ContainsSource
	}, len(out))
	for i, p := range out {
		result[i] = struct {
			Root   value.Hash
			Source ContainsSource
		}{Root: p.Root, Source: p.Source}
	}
	return result
}

// ContainsCopiedValues lists every (value, pod) pair a copied Contains
// fact at (root, key) offers, sorted by value hash for determinism.
func (e *EDB) ContainsCopiedValues(root value.Hash, key value.Key) []struct {
	Value value.Value
	Pod   value.PodRef
} {
	vs, ok := e.containsCopied[copiedKey{root: root, key: key.Hash()}]
	if !ok {
		return nil
	}
	out := make([]struct {
		Value value.Value
		Pod   value.PodRef
	}, len(vs))
	for i, v := range vs {
		out[i] = struct {
			Value value.Value
			Pod   value.PodRef
		}{Value: v.Value, Pod: v.Pod}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Value.Raw().Less(out[j].Value.Raw()) })
	return out
}

// ContainsFullValue resolves a value at (root, key) from a tracked full
// dictionary only, ignoring copied facts.
func (e *EDB) ContainsFullValue(root value.Hash, key value.Key) (value.Value, bool) {
	m, ok := e.fullDicts[root]
	if !ok {
		return value.Value{}, false
	}
	v, ok := m[key.Hash()]
	return v, ok
}

// NotContainsRootsForKey lists every (root, pod) pair that copies a
// NotContains(root, key) fact for key, sorted by root for determinism.
func (e *EDB) NotContainsRootsForKey(key value.Key) []struct {
	Root value.Hash
	Pod  value.PodRef
} {
	type pair struct {
		Root value.Hash
		Pod  value.PodRef
	}
	var out []pair
	for nk, pods := range e.notContainsCopied {
		if nk.key != key.Hash() {
			continue
		}
		for _, p := range pods {
			out = append(out, pair{Root: nk.root, Pod: p})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Root.Less(out[j].Root) })
	result := make([]struct {
		Root value.Hash
		Pod  value.PodRef
	}, len(out))
	for i, p := range out {
		result[i] = struct {
			Root value.Hash
			Pod  value.PodRef
		}{Root: p.Root, Pod: p.Pod}
	}
	return result
}

// NotContainsCopyRootKey resolves the provenance pod of a copied
// NotContains(root, key) fact, if any.
func (e *EDB) NotContainsCopyRootKey(root value.Hash, key value.Key) (value.PodRef, bool) {
	pods, ok := e.notContainsCopied[notContainsKey{root: root, key: key.Hash()}]
	if !ok || len(pods) == 0 {
		return value.PodRef{}, false
	}
	return pods[0], true
}

// FullDict resolves a tracked Dictionary object by its commitment root,
// used by proof replay to render GeneratedContains operations.
func (e *EDB) FullDict(root value.Hash) (*value.Dictionary, bool) {
	d, ok := e.fullDictObjs[root]
	return d, ok
}

// SignedDict resolves a tracked SignedDictionary by root.
func (e *EDB) SignedDict(root value.Hash) (*value.SignedDictionary, bool) {
	sd, ok := e.signedDicts[root]
	return sd, ok
}

// EnumerateSignedDicts lists every tracked SignedDictionary, sorted by
// root for deterministic enumeration.
func (e *EDB) EnumerateSignedDicts() []*value.SignedDictionary {
	roots := make([]value.Hash, 0, len(e.signedDicts))
	for r := range e.signedDicts {
		roots = append(roots, r)
	}
	sort.Slice(roots, func(i, j int) bool { return roots[i].Less(roots[j]) })
	out := make([]*value.SignedDictionary, 0, len(roots))
	for _, r := range roots {
		out = append(out, e.signedDicts[r])
	}
	return out
}

// FullDictAbsence reports, if root's full dictionary is known, whether
// key is absent from it.
func (e *EDB) FullDictAbsence(root value.Hash, key value.Key) (absent bool, known bool) {
	m, ok := e.fullDicts[root]
	if !ok {
		return false, false
	}
	_, present := m[key.Hash()]
	return !present, true
}

// ResolvePod looks up a previously-ingested MainPod by its id.
func (e *EDB) ResolvePod(ref value.PodRef) (*podlang.MainPod, bool) {
	p, ok := e.pods[ref.ID]
	return p, ok
}

// GetSecretKey resolves a tracked keypair's secret half by public key.
func (e *EDB) GetSecretKey(pk value.PublicKey) (value.Hash, bool) {
	s, ok := e.keypairs[pk.Hash()]
	return s, ok
}

// EnumerateKeypairs lists every tracked (public, secret) pair, sorted by
// public key hash.
func (e *EDB) EnumerateKeypairs() []value.Keypair {
	pubs := make([]value.Hash, 0, len(e.keypairs))
	for p := range e.keypairs {
		pubs = append(pubs, p)
	}
	sort.Slice(pubs, func(i, j int) bool { return pubs[i].Less(pubs[j]) })
	out := make([]value.Keypair, 0, len(pubs))
	for _, p := range pubs {
		out = append(out, value.Keypair{Public: value.NewPublicKey(p), Secret: e.keypairs[p]})
	}
	return out
}

// ProvidersOf returns every distinct pod that ingested stmt verbatim,
// sorted by pod ID for determinism. Used to recompute a minimal
// input-pod cover from scratch (spec.md §4.6), rather than trusting
// the single pod a particular derivation happened to record: two
// input pods can assert the identical public statement, and the
// cheapest cover may prefer either one depending on what else that
// pod already provides. Grounded on
// original_source/core/new_solver/src/proof.rs's
// providers_for_statement, which re-queries the fact index instead of
// reusing a recorded single source.
func (e *EDB) ProvidersOf(stmt podlang.Statement) []value.PodRef {
	idx, ok := e.perPredicate[keyOf(stmt.Predicate)]
	if !ok {
		return nil
	}
	key := stmt.Key()
	seen := make(map[value.Hash]bool)
	var out []value.PodRef
	for _, f := range idx.facts {
		if f.Statement.Key() != key {
			continue
		}
		if seen[f.Pod.ID] {
			continue
		}
		seen[f.Pod.ID] = true
		out = append(out, f.Pod)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Less(out[j].ID) })
	return out
}

// CustomMatches returns every existing custom-predicate head matching
// filters positionally (nil entries match anything), plus the
// provenance pod of each match.
func (e *EDB) CustomMatches(ref podlang.CustomPredicateRef, filters []*value.Value) ([][]value.Value, []value.PodRef) {
	sels := make([]ArgSel, len(filters))
	for i, f := range filters {
		if f == nil {
			sels[i] = SelAnyVal()
		} else {
			sels[i] = SelLit(*f)
		}
	}
	pred := podlang.CustomPred(ref)
	qr := e.QueryWithProvenance(pred, sels)
	args := make([][]value.Value, 0, len(qr))
	pods := make([]value.PodRef, 0, len(qr))
	for _, r := range qr {
		vs := make([]value.Value, len(r.Statement.Args))
		for i, a := range r.Statement.Args {
			vs[i] = a.Literal
		}
		args = append(args, vs)
		pods = append(pods, r.Pod)
	}
	return args, pods
}

// CustomAnyMatch reports whether any custom-predicate head matches filters.
func (e *EDB) CustomAnyMatch(ref podlang.CustomPredicateRef, filters []*value.Value) bool {
	args, _ := e.CustomMatches(ref, filters)
	return len(args) > 0
}
