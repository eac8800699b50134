package value

// Signature is an opaque payload produced by signing a commitment.
// Real Schnorr signing/verification is out of scope (spec.md §1); this
// package only needs something deterministic and content-addressed so
// SignedDictionary round-trips and EDB indexing have something concrete
// to operate on in tests and examples.
type Signature struct {
	h Hash
}

// Keypair is a toy stand-in for a real asymmetric keypair: PublicKey is a
// one-way digest of SecretKey. It exists so the data model and EDB have
// something to store and compare; no part of the core solver depends on
// the scheme being cryptographically sound, only on PublicKeyOf/SignedBy
// being checkable functions of (pk, sk) and (dict, pk, sig).
type Keypair struct {
	Public PublicKey
	Secret Hash
}

// NewKeypair derives a Keypair from a secret seed.
func NewKeypair(secret Hash) Keypair {
	pk := hashOf2(Hash{0, 0, 0, 0xDEADBEEF}, secret)
	return Keypair{Public: NewPublicKey(pk), Secret: secret}
}

// Sign produces a Signature over commitment using the keypair's secret.
func (kp Keypair) Sign(commitment Hash) Signature {
	return Signature{h: hashOf2(kp.Secret, commitment)}
}

// Verify checks that sig is what Sign(sk, commitment) would have produced
// for the secret key backing pk. Real signature schemes verify with only
// the public key; this stand-in requires the secret because it has no
// asymmetric structure to exploit. This package provides no
// public-key-only verifier.
func Verify(kp Keypair, commitment Hash, sig Signature) bool {
	return kp.Sign(commitment) == sig
}
