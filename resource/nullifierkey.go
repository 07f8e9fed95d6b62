package resource

import (
	"crypto/sha256"

	"github.com/anoma/arm-go/armerrors"
)

// NullifierKey is the secret scalar a resource owner holds; knowledge of it
// is required to compute a resource's Nullifier and thereby spend it. Its
// public counterpart, NullifierKeyCommitment, is what a resource actually
// commits to.
type NullifierKey struct {
	bytes [DigestSize]byte
}

// NewNullifierKey wraps 32 secret bytes as a NullifierKey.
func NewNullifierKey(b []byte) (NullifierKey, error) {
	if len(b) != DigestSize {
		return NullifierKey{}, armerrors.New(armerrors.KindInvalidNullifierKey, "must be 32 bytes")
	}
	var nk NullifierKey
	copy(nk.bytes[:], b)
	return nk, nil
}

// Bytes returns the raw 32 secret bytes.
func (nk NullifierKey) Bytes() []byte {
	out := make([]byte, DigestSize)
	copy(out, nk.bytes[:])
	return out
}

// Commit derives the public NullifierKeyCommitment bound to nk: plain
// SHA-256(nk), with no domain separation tag, matching spec.md §3's
// nk_commitment = SHA-256(nk) definition exactly.
func (nk NullifierKey) Commit() NullifierKeyCommitment {
	d := Digest(sha256.Sum256(nk.bytes[:]))
	return NullifierKeyCommitment{digest: d}
}

// Zeroize overwrites the secret key material in place. The caller must not
// use nk after calling Zeroize.
func (nk *NullifierKey) Zeroize() {
	for i := range nk.bytes {
		nk.bytes[i] = 0
	}
}

// NullifierKeyCommitment is the public commitment to a NullifierKey that a
// resource records in its nk_commitment field.
type NullifierKeyCommitment struct {
	digest Digest
}

// NullifierKeyCommitmentFromDigest wraps an already-computed digest as a
// NullifierKeyCommitment, for deserializing resources off the wire.
func NullifierKeyCommitmentFromDigest(d Digest) NullifierKeyCommitment {
	return NullifierKeyCommitment{digest: d}
}

// Digest returns the underlying 32-byte commitment.
func (c NullifierKeyCommitment) Digest() Digest {
	return c.digest
}
