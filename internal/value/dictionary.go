package value

import "sort"

// entry is a resolved (Key, Value) pair inside a Dictionary.
type entry struct {
	key   Key
	value Value
}

// Dictionary maps Key to Value. Its commitment is a Merkle root over
// (key-hash, value-raw) pairs at a configured depth (spec.md §3): two
// dictionaries built from the same entry multiset, regardless of
// insertion order, commit to the same root, because leaves are always
// sorted by key hash before the tree is built.
type Dictionary struct {
	byHash map[Hash]entry
	depth  int

	commitment *Hash
}

// NewDictionary builds a Dictionary from name->Value entries at the given
// Merkle depth (spec.md §6 Params.MaxDepthMTContainers).
func NewDictionary(depth int, entries map[string]Value) *Dictionary {
	d := &Dictionary{byHash: make(map[Hash]entry, len(entries)), depth: depth}
	for name, v := range entries {
		k := NewKey(name)
		d.byHash[k.Hash()] = entry{key: k, value: v}
	}
	return d
}

// Depth returns the dictionary's configured Merkle depth.
func (d *Dictionary) Depth() int { return d.depth }

// Get resolves a key to its value.
func (d *Dictionary) Get(key string) (Value, bool) {
	e, ok := d.byHash[NewKey(key).Hash()]
	return e.value, ok
}

// GetByKey resolves a pre-hashed Key.
func (d *Dictionary) GetByKey(k Key) (Value, bool) {
	e, ok := d.byHash[k.Hash()]
	return e.value, ok
}

// Contains reports whether key is present, regardless of value.
func (d *Dictionary) Contains(key string) bool {
	_, ok := d.byHash[NewKey(key).Hash()]
	return ok
}

// Keys returns the dictionary's keys in a deterministic (hash) order.
func (d *Dictionary) Keys() []Key {
	out := make([]Key, 0, len(d.byHash))
	for _, e := range d.byHash {
		out = append(out, e.key)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Hash().Less(out[j].Hash()) })
	return out
}

// Len returns the number of entries.
func (d *Dictionary) Len() int { return len(d.byHash) }

// Commitment computes (and caches) the Merkle root over sorted
// (key-hash, value-raw) leaf pairs, padded with ZeroHash up to 2^depth
// leaves.
func (d *Dictionary) Commitment() Hash {
	if d.commitment != nil {
		return *d.commitment
	}

	leafCount := 1 << uint(d.depth)
	leaves := make([]Hash, 0, len(d.byHash))
	for _, e := range d.byHash {
		leaves = append(leaves, hashOf2(e.key.Hash(), e.value.Raw()))
	}
	sort.Slice(leaves, func(i, j int) bool { return leaves[i].Less(leaves[j]) })
	for len(leaves) < leafCount {
		leaves = append(leaves, ZeroHash)
	}

	level := leaves
	for len(level) > 1 {
		next := make([]Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, hashOf2(level[i], level[i+1]))
		}
		level = next
	}

	root := ZeroHash
	if len(level) == 1 {
		root = level[0]
	}
	d.commitment = &root
	return root
}
