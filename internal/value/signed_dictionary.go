package value

// SignedDictionary is a Dictionary plus a public key and a signature over
// the dictionary's commitment (spec.md §3). Invariant: the signature
// verifies under the public key against the commitment; podsolve treats
// verification as the caller's responsibility (an external verify
// routine per spec.md §6) and simply stores the triple.
type SignedDictionary struct {
	Dict      *Dictionary
	Signer    PublicKey
	Signature Signature
}

// Root returns the dictionary's commitment, used as the anchor root for
// anchored keys into this dictionary.
func (sd *SignedDictionary) Root() Hash { return sd.Dict.Commitment() }

// PodRef identifies a MainPod or SignedDictionary as an EDB input, by its
// content hash.
type PodRef struct {
	ID Hash
}

func (r PodRef) String() string { return "pod:" + r.ID.String() }
