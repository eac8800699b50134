package value

import (
	"encoding/binary"
	"fmt"
	"sort"
)

// Kind tags the variant held by a Value.
type Kind int

const (
	KindInt Kind = iota
	KindString
	KindBool
	KindArray
	KindDict
	KindSet
	KindPublicKey
	KindPodID
	KindRaw
)

func (k Kind) String() string {
	switch k {
	case KindInt:
		return "int"
	case KindString:
		return "string"
	case KindBool:
		return "bool"
	case KindArray:
		return "array"
	case KindDict:
		return "dict"
	case KindSet:
		return "set"
	case KindPublicKey:
		return "public-key"
	case KindPodID:
		return "pod-id"
	case KindRaw:
		return "raw"
	default:
		return "unknown"
	}
}

// PublicKey is an opaque identifier for a signer. Signature verification
// itself is out of scope (spec.md §1); podsolve only ever compares and
// hashes public keys.
type PublicKey struct {
	id Hash
}

// NewPublicKey wraps a raw identifier as a PublicKey.
func NewPublicKey(id Hash) PublicKey { return PublicKey{id: id} }

func (p PublicKey) Hash() Hash      { return p.id }
func (p PublicKey) String() string  { return "pk:" + p.id.String() }
func (p PublicKey) Equal(o PublicKey) bool { return p.id == o.id }

// Value is a tagged union over the types spec.md §3 enumerates. The zero
// Value is the integer 0; use the constructors below to build other kinds.
type Value struct {
	kind Kind

	i   int64
	s   string
	b   bool
	arr []Value
	dict *Dictionary
	set  *Set
	pk   PublicKey
	h    Hash // PodID or Raw payload

	rawCache *Hash
}

func Int(i int64) Value      { return Value{kind: KindInt, i: i} }
func String(s string) Value  { return Value{kind: KindString, s: s} }
func Bool(b bool) Value      { return Value{kind: KindBool, b: b} }
func Array(vs []Value) Value { return Value{kind: KindArray, arr: vs} }
func DictValue(d *Dictionary) Value { return Value{kind: KindDict, dict: d} }
func SetValue(s *Set) Value  { return Value{kind: KindSet, set: s} }
func PublicKeyValue(pk PublicKey) Value { return Value{kind: KindPublicKey, pk: pk} }
func PodID(h Hash) Value     { return Value{kind: KindPodID, h: h} }
func Raw(h Hash) Value       { return Value{kind: KindRaw, h: h} }

func (v Value) Kind() Kind { return v.kind }

func (v Value) Int() (int64, bool)      { return v.i, v.kind == KindInt }
func (v Value) String2() (string, bool) { return v.s, v.kind == KindString }
func (v Value) Bool2() (bool, bool)     { return v.b, v.kind == KindBool }
func (v Value) Array2() ([]Value, bool) { return v.arr, v.kind == KindArray }
func (v Value) Dict2() (*Dictionary, bool) { return v.dict, v.kind == KindDict }
func (v Value) Set2() (*Set, bool)      { return v.set, v.kind == KindSet }
func (v Value) PublicKey2() (PublicKey, bool) { return v.pk, v.kind == KindPublicKey }
func (v Value) PodID2() (Hash, bool)    { return v.h, v.kind == KindPodID }
func (v Value) Raw2() (Hash, bool)      { return v.h, v.kind == KindRaw }

// AsInt64 returns the integer payload, resolving through PodID/Raw-tagged
// ints is never attempted: callers that need "any integer" must check Kind.
func (v Value) AsInt64() (int64, bool) {
	if v.kind != KindInt {
		return 0, false
	}
	return v.i, true
}

// raw computes the canonical 256-bit content hash of v (spec.md §3: "Every
// Value has a canonical 256-bit content hash"). Each kind is prefixed with
// its tag so a KindInt and a KindString never collide on payload bytes.
func (v Value) raw() Hash {
	if v.rawCache != nil {
		return *v.rawCache
	}
	var h Hash
	switch v.kind {
	case KindInt:
		var buf [9]byte
		buf[0] = byte(KindInt)
		binary.BigEndian.PutUint64(buf[1:], uint64(v.i))
		h = hashBytes(buf[:])
	case KindString:
		buf := append([]byte{byte(KindString)}, []byte(v.s)...)
		h = hashBytes(buf)
	case KindBool:
		b := byte(0)
		if v.b {
			b = 1
		}
		h = hashBytes([]byte{byte(KindBool), b})
	case KindArray:
		buf := []byte{byte(KindArray)}
		for _, e := range v.arr {
			buf = appendHash(buf, e.Raw())
		}
		h = hashBytes(buf)
	case KindDict:
		h = hashOf2(Hash{0, 0, 0, uint64(KindDict)}, v.dict.Commitment())
	case KindSet:
		h = hashOf2(Hash{0, 0, 0, uint64(KindSet)}, v.set.Commitment())
	case KindPublicKey:
		h = hashOf2(Hash{0, 0, 0, uint64(KindPublicKey)}, v.pk.id)
	case KindPodID:
		h = hashOf2(Hash{0, 0, 0, uint64(KindPodID)}, v.h)
	case KindRaw:
		h = v.h
	default:
		panic(fmt.Sprintf("value: unknown kind %v", v.kind))
	}
	v.rawCache = &h
	return h
}

// Raw returns the canonical content hash, matching spec.md §3's `raw()`.
func (v Value) Raw() Hash { return v.raw() }

// Equal implements equality-by-content-hash (spec.md §3: "Equality is by
// content hash").
func (v Value) Equal(o Value) bool { return v.raw() == o.raw() }

func (v Value) String() string {
	switch v.kind {
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindString:
		return fmt.Sprintf("%q", v.s)
	case KindBool:
		return fmt.Sprintf("%t", v.b)
	case KindArray:
		return fmt.Sprintf("%v", v.arr)
	case KindDict:
		return "dict:" + v.dict.Commitment().String()
	case KindSet:
		return "set:" + v.set.Commitment().String()
	case KindPublicKey:
		return v.pk.String()
	case KindPodID:
		return "pod:" + v.h.String()
	case KindRaw:
		return "raw:" + v.h.String()
	default:
		return "<invalid value>"
	}
}

// SortValues sorts a slice of Values by content hash, giving set/array
// construction a canonical order independent of insertion order.
func SortValues(vs []Value) {
	sort.Slice(vs, func(i, j int) bool { return vs[i].Raw().Less(vs[j].Raw()) })
}
