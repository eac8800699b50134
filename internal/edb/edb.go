// Package edb implements the extensional fact database the solver reads
// from: an immutable, deterministically-ordered index over the
// statements, dictionaries, and keypairs supplied to a solve call
// (spec.md §4.1). Grounded on the teacher's category-indexed lookup
// style and on original_source/core/new_solver/src/edb.rs's
// ImmutableEdb/ImmutableEdbBuilder split.
package edb

import (
	"podsolve/internal/podlang"
	"podsolve/internal/value"
)

// ArgSelKind tags an ArgSel's matching mode.
type ArgSelKind int

const (
	SelLiteral ArgSelKind = iota
	SelAnyLiteral
	SelAnchoredKeyByKey
	SelAnchoredKeyExact
)

// ArgSel selects what an EDB query requires of one Statement argument.
type ArgSel struct {
	Kind    ArgSelKind
	Literal value.Value
	Root    value.Hash
	Key     value.Key
}

func SelLit(v value.Value) ArgSel          { return ArgSel{Kind: SelLiteral, Literal: v} }
func SelAnyVal() ArgSel                     { return ArgSel{Kind: SelAnyLiteral} }
func SelByKey(k value.Key) ArgSel           { return ArgSel{Kind: SelAnchoredKeyByKey, Key: k} }
func SelExact(root value.Hash, k value.Key) ArgSel {
	return ArgSel{Kind: SelAnchoredKeyExact, Root: root, Key: k}
}

// predKey identifies one predicate's fact index.
type predKey struct {
	native    bool
	nativeID  podlang.NativePredicate
	batchHash value.Hash
	index     int
}

func keyOf(pred podlang.Predicate) predKey {
	if pred.IsNative() {
		return predKey{native: true, nativeID: pred.Native}
	}
	return predKey{batchHash: pred.Custom.BatchHash, index: pred.Custom.Index}
}

// indexKey is a comparable map key covering every ArgSel variant a fact
// argument can be pre-indexed under.
type indexKey struct {
	kind int // 1=literal 2=any 3=full-anchored 4=partial-anchored
	raw  value.Hash
	root value.Hash
}

type factEntry struct {
	Statement podlang.Statement
	Pod       value.PodRef
}

type predIndex struct {
	facts      []factEntry
	argIndexes []map[indexKey][]int
}

// ContainsSourceKind tags how a Contains(root,key,value) fact is
// justified: copied verbatim from an input pod, or derivable directly
// from a known full dictionary.
type ContainsSourceKind int

const (
	SourceCopied ContainsSourceKind = iota
	SourceGeneratedFromFullDict
)

type ContainsSource struct {
	Kind ContainsSourceKind
	Pod  value.PodRef
	Root value.Hash
}

type copiedEntry struct {
	Value value.Value
	Pod   value.PodRef
}

type copiedKey struct {
	root value.Hash
	key  value.Hash
}

// notContainsKey indexes a copied NotContains(root, key) fact.
type notContainsKey struct {
	root value.Hash
	key  value.Hash
}

// EDB is the read-only fact database a single solve call queries
// against. Build it with Builder; once Build returns, an EDB is never
// mutated (spec.md §4.1 invariant: read-only after construction).
type EDB struct {
	perPredicate map[predKey]*predIndex

	containsCopied    map[copiedKey][]copiedEntry
	notContainsCopied map[notContainsKey][]value.PodRef
	fullDicts         map[value.Hash]map[value.Hash]value.Value
	fullDictObjs   map[value.Hash]*value.Dictionary
	signedDicts    map[value.Hash]*value.SignedDictionary
	pods           map[value.Hash]*podlang.MainPod
	keypairs       map[value.Hash]value.Hash // public-key hash -> secret
}

// Builder accumulates statements, dictionaries, pods, and keypairs
// before producing an immutable EDB.
type Builder struct {
	edb *EDB
}

func NewBuilder() *Builder {
	return &Builder{edb: &EDB{
		perPredicate:      make(map[predKey]*predIndex),
		containsCopied:    make(map[copiedKey][]copiedEntry),
		notContainsCopied: make(map[notContainsKey][]value.PodRef),
		fullDicts:         make(map[value.Hash]map[value.Hash]value.Value),
		fullDictObjs:   make(map[value.Hash]*value.Dictionary),
		signedDicts:    make(map[value.Hash]*value.SignedDictionary),
		pods:           make(map[value.Hash]*podlang.MainPod),
		keypairs:       make(map[value.Hash]value.Hash),
	}}
}

// AddStatement indexes one ground Statement under its provenance pod,
// additionally recording it as a copied-Contains fact when it is a
// ground Contains(root,key,value) triple.
func (b *Builder) AddStatement(stmt podlang.Statement, pod value.PodRef) *Builder {
	if stmt.Predicate.IsNative() && stmt.Predicate.Native == podlang.PredContains && len(stmt.Args) == 3 {
		root, rok := literalHash(stmt.Args[0])
		key, kok := literalKey(stmt.Args[1])
		if rok && kok {
			ck := copiedKey{root: root, key: key.Hash()}
			b.edb.containsCopied[ck] = append(b.edb.containsCopied[ck], copiedEntry{Value: stmt.Args[2].Literal, Pod: pod})
		}
	}
	if stmt.Predicate.IsNative() && stmt.Predicate.Native == podlang.PredNotContains && len(stmt.Args) == 2 {
		root, rok := literalHash(stmt.Args[0])
		key, kok := literalKey(stmt.Args[1])
		if rok && kok {
			nk := notContainsKey{root: root, key: key.Hash()}
			b.edb.notContainsCopied[nk] = append(b.edb.notContainsCopied[nk], pod)
		}
	}

	pk := keyOf(stmt.Predicate)
	idx, ok := b.edb.perPredicate[pk]
	if !ok {
		idx = &predIndex{}
		b.edb.perPredicate[pk] = idx
	}
	factID := len(idx.facts)
	idx.facts = append(idx.facts, factEntry{Statement: stmt, Pod: pod})

	for len(idx.argIndexes) < len(stmt.Args) {
		idx.argIndexes = append(idx.argIndexes, make(map[indexKey][]int))
	}
	for i, arg := range stmt.Args {
		for _, ik := range indexKeysFor(arg) {
			idx.argIndexes[i][ik] = append(idx.argIndexes[i][ik], factID)
		}
	}
	return b
}

func indexKeysFor(arg podlang.ValueRef) []indexKey {
	if arg.IsLiteral() {
		return []indexKey{{kind: 1, raw: arg.Literal.Raw()}, {kind: 2}}
	}
	return []indexKey{
		{kind: 3, root: arg.Root, raw: arg.Key.Hash()},
		{kind: 4, raw: arg.Key.Hash()},
	}
}

func literalHash(r podlang.ValueRef) (value.Hash, bool) {
	if !r.IsLiteral() {
		return value.Hash{}, false
	}
	return r.Literal.Raw(), true
}

func literalKey(r podlang.ValueRef) (value.Key, bool) {
	if !r.IsLiteral() {
		return value.Key{}, false
	}
	s, ok := r.Literal.String2()
	if !ok {
		return value.Key{}, false
	}
	return value.NewKey(s), true
}

// AddFullKV registers a single known (root, key, value) entry, useful
// for tests that don't want to build a whole Dictionary.
func (b *Builder) AddFullKV(root value.Hash, key value.Key, v value.Value) *Builder {
	m, ok := b.edb.fullDicts[root]
	if !ok {
		m = make(map[value.Hash]value.Value)
		b.edb.fullDicts[root] = m
	}
	m[key.Hash()] = v
	return b
}

// AddFullDict registers every entry of dict under its commitment root,
// keeping the Dictionary object for proof replay.
func (b *Builder) AddFullDict(dict *value.Dictionary) *Builder {
	root := dict.Commitment()
	b.edb.fullDictObjs[root] = dict
	m, ok := b.edb.fullDicts[root]
	if !ok {
		m = make(map[value.Hash]value.Value)
		b.edb.fullDicts[root] = m
	}
	for _, k := range dict.Keys() {
		v, _ := dict.GetByKey(k)
		m[k.Hash()] = v
	}
	return b
}

// AddSignedDict registers a SignedDictionary and indexes its underlying
// dictionary the same way AddFullDict does.
func (b *Builder) AddSignedDict(sd *value.SignedDictionary) *Builder {
	root := sd.Root()
	b.edb.signedDicts[root] = sd
	return b.AddFullDict(sd.Dict)
}

// AddMainPod stores pod for replay and indexes its public statements
// (and any dictionaries they carry as literal arguments).
func (b *Builder) AddMainPod(pod *podlang.MainPod) *Builder {
	b.edb.pods[pod.ID] = pod
	ref := pod.Ref()
	for _, st := range pod.PublicStatements {
		b.AddStatement(st, ref)
		for _, arg := range st.Args {
			if arg.IsLiteral() {
				if d, ok := arg.Literal.Dict2(); ok {
					b.AddFullDict(d)
				}
			}
		}
	}
	return b
}

// AddKeypair registers a known (public, secret) pair for SignedBy and
// PublicKeyOf generation.
func (b *Builder) AddKeypair(kp value.Keypair) *Builder {
	b.edb.keypairs[kp.Public.Hash()] = kp.Secret
	return b
}

// Build finalizes the EDB. The Builder must not be reused afterward.
func (b *Builder) Build() *EDB { return b.edb }
