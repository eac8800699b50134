package value

// Key is a named string whose hash is the digest of the name. Anchored
// keys (spec.md §3) pair a Key with a dictionary root.
type Key struct {
	name string
	hash Hash
}

// NewKey constructs a Key, computing its hash eagerly so repeated lookups
// don't re-hash the name.
func NewKey(name string) Key {
	return Key{name: name, hash: hashName(name)}
}

// Name returns the key's source string.
func (k Key) Name() string { return k.name }

// Hash returns the digest of the key's name.
func (k Key) Hash() Hash { return k.hash }

func (k Key) String() string { return k.name }
