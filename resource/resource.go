package resource

import (
	"crypto/sha256"
	"encoding/binary"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/curve"
)

// Domain separation tags for the hash constructions below. Each ties a
// SHA-256 invocation to exactly one semantic use, so that no two of a
// resource's derived fields can ever collide by construction.
const (
	commitmentDST = "ARM_RESOURCE_COMMITMENT"
	nullifierDST  = "ARM_RESOURCE_NULLIFIER"
	nonceDST      = "ARM_RESOURCE_NONCE"
)

// prfExpandPersonalization is the 16-byte personalization string Psi and
// Rcm expand RandSeed under, carried verbatim from the reference
// implementation's randomness-expansion construction.
const prfExpandPersonalization = "RISC0_ExpandSeed"

// prfExpandPsi and prfExpandRcm are the one-byte domain separators that
// distinguish Psi's and Rcm's expansion of the same RandSeed/Nonce pair.
const (
	prfExpandPsi byte = 0
	prfExpandRcm byte = 1
)

// Resource is the atomic, content-addressed unit of state ARM transactions
// consume and create. Every field participates in the resource's
// Commitment; LogicRef and LabelRef additionally determine its Kind.
type Resource struct {
	// LogicRef identifies the resource logic that governs this resource's
	// consumption and creation (the circuit/program enforcing its rules).
	LogicRef Digest
	// LabelRef identifies the resource's type within its logic (e.g. which
	// asset or NFT collection it belongs to).
	LabelRef Digest
	// Quantity is the resource's fungible amount.
	Quantity uint64
	// ValueRef references the resource's opaque application-defined payload.
	ValueRef Digest
	// IsEphemeral marks a resource that need not have ever been committed
	// to the commitment tree (used for padding and intra-transaction
	// bookkeeping resources).
	IsEphemeral bool
	// Nonce distinguishes resources that are otherwise identical, and
	// binds a created resource to the nullifier of the resource that
	// authorized its creation.
	Nonce Digest
	// NKCommitment is the public commitment to the NullifierKey required
	// to compute this resource's Nullifier.
	NKCommitment NullifierKeyCommitment
	// RandSeed is the secret randomness Psi and Rcm are derived from. It
	// must never be revealed; only Psi and Rcm (and their hashes, via
	// Commitment/Nullifier) become public.
	RandSeed Digest
}

// quantityBytes renders Quantity as 8 big-endian bytes.
func (r Resource) quantityBytes() []byte {
	b := make([]byte, 8)
	binary.BigEndian.PutUint64(b, r.Quantity)
	return b
}

// Psi is the public, nonce-bound pseudo-random value derived from the
// resource's secret RandSeed. It appears in both Commitment and Nullifier,
// linking the two without revealing RandSeed.
func (r Resource) Psi() Digest {
	h := sha256.New()
	h.Write([]byte(prfExpandPersonalization))
	h.Write([]byte{prfExpandPsi})
	h.Write(r.RandSeed[:])
	h.Write(r.Nonce[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Rcm is the public commitment-randomness value derived from RandSeed, used
// to blind Commitment independently of Psi.
func (r Resource) Rcm() Digest {
	h := sha256.New()
	h.Write([]byte(prfExpandPersonalization))
	h.Write([]byte{prfExpandRcm})
	h.Write(r.RandSeed[:])
	h.Write(r.Nonce[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Kind maps (LogicRef, LabelRef) onto a secp256k1 point. Two resources
// share a Kind exactly when they share both LogicRef and LabelRef — the
// quantity they carry of that kind is what compliance proofs balance.
func (r Resource) Kind() (curve.Point, error) {
	msg := make([]byte, 0, 2*DigestSize)
	msg = append(msg, r.LogicRef[:]...)
	msg = append(msg, r.LabelRef[:]...)
	p, err := curve.HashToCurve(msg, curve.HashToCurveDST)
	if err != nil {
		return curve.Point{}, armerrors.Wrap(armerrors.KindInvalidResourceKind, err)
	}
	return p, nil
}

// Commitment is the resource's content address: a binding, hiding digest of
// every field, blinded by Rcm. It is what gets recorded in the commitment
// tree when the resource is created.
func (r Resource) Commitment() Digest {
	psi := r.Psi()
	rcm := r.Rcm()

	h := sha256.New()
	h.Write([]byte(commitmentDST))
	h.Write(r.LogicRef[:])
	h.Write(r.LabelRef[:])
	h.Write(r.quantityBytes())
	h.Write(r.ValueRef[:])
	h.Write(boolByte(r.IsEphemeral))
	h.Write(r.Nonce[:])
	nkc := r.NKCommitment.Digest()
	h.Write(nkc[:])
	h.Write(psi[:])
	h.Write(rcm[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Nullifier derives the resource's nullifier from the supplied
// NullifierKey. Producing it requires knowledge of nk, not merely its
// commitment, which is what makes consumption authorization-gated.
//
// It returns KindInvalidNullifierKey if nk's commitment does not match the
// resource's recorded NKCommitment.
func (r Resource) Nullifier(nk NullifierKey) (Digest, error) {
	if nk.Commit().Digest() != r.NKCommitment.Digest() {
		return Digest{}, armerrors.New(armerrors.KindInvalidNullifierKey,
			"nullifier key does not match resource's nk_commitment")
	}
	psi := r.Psi()
	commitment := r.Commitment()

	h := sha256.New()
	h.Write([]byte(nullifierDST))
	h.Write(nk.bytes[:])
	h.Write(r.Nonce[:])
	h.Write(psi[:])
	h.Write(commitment[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d, nil
}

// Tag returns the identifier a resource contributes to an action: its
// Nullifier when consumed, its Commitment when created. Both are 32-byte
// digests and are ordered together, as siblings, in the action tree.
func (r Resource) Tag(consumed bool, nk NullifierKey) (Digest, error) {
	if consumed {
		return r.Nullifier(nk)
	}
	return r.Commitment(), nil
}

// DeriveNonce computes the nonce a variable-sized compliance unit assigns
// to its index-th created resource, binding it to the digest of every
// nullifier the unit consumes (spec.md §9 open question on nonce
// derivation, variable-sized shape).
func DeriveNonce(index uint32, consumedNullifiersDigest Digest) Digest {
	idx := make([]byte, 4)
	binary.BigEndian.PutUint32(idx, index)

	h := sha256.New()
	h.Write([]byte(nonceDST))
	h.Write(idx)
	h.Write(consumedNullifiersDigest[:])
	var d Digest
	copy(d[:], h.Sum(nil))
	return d
}

func boolByte(b bool) []byte {
	if b {
		return []byte{1}
	}
	return []byte{0}
}
