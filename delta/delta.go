// Package delta implements the delta proof spec.md §5 binds every
// transaction to: a recoverable ECDSA signature over secp256k1 proving
// knowledge of the blinding scalar rcv whose base-point multiple rcv*G
// equals the sum of every action's delta, which holds when the actions'
// value terms cancel (i.e. the transaction's total value delta balances).
// Grounded on the recoverable-
// signature wire format `arm_evm`/`aarm_evm` use in original_source/ to
// make ARM's delta proofs directly verifiable by an EVM precompile.
package delta

import (
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
	"github.com/decred/dcrd/dcrec/secp256k1/v4/ecdsa"
	"golang.org/x/crypto/sha3"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/resource"
)

// Proof is a delta proof: a 65-byte recoverable ECDSA signature in
// decred's compact wire format — a 1-byte recovery header (27 + recovery
// ID, +4 if the recovered key should be treated as compressed) followed
// by 32-byte r and 32-byte s.
type Proof []byte

const compactProofSize = 65

// msgDST separates a delta proof's signed message from any other keccak
// use in this module.
const msgDST = "ARM_DELTA_MESSAGE"

// maxRecoveryID bounds a proof's recovery id: decred's compact header is
// 27+recoveryID (+4 if the recovered key is compressed), and only
// recoveryID 0 or 1 is accepted — 2 or 3 are rejected as malleable.
const maxRecoveryID = 1

// recoveryID extracts the recovery id (0-3) from a compact proof's header
// byte, undoing decred's +4 compressed-key offset first.
func recoveryID(header byte) byte {
	if header >= 31 {
		header -= 4
	}
	return header - 27
}

// halfOrder returns floor(N/2), the threshold a canonical signature's s
// value must not exceed (BIP-62/EIP-2's malleability guard).
func halfOrder() *big.Int {
	return new(big.Int).Rsh(curve.Order(), 1)
}

// checkCanonical rejects a compact proof whose recovery id is above
// maxRecoveryID or whose s component is in the upper half of the curve
// order, the two checks spec.md's malleability guard requires of both
// prove and verify.
func checkCanonical(proof Proof) error {
	if recoveryID(proof[0]) > maxRecoveryID {
		return armerrors.New(armerrors.KindInvalidDeltaProof, "delta proof: recovery id greater than 1")
	}
	s := new(big.Int).SetBytes(proof[33:65])
	if s.Cmp(halfOrder()) > 0 {
		return armerrors.New(armerrors.KindInvalidDeltaProof, "delta proof: s is in the upper half of the curve order")
	}
	return nil
}

// Msg computes the message a delta proof signs: the Keccak-256 digest of
// every action's delta-contributing tag set, so a delta proof cannot be
// replayed against a different transaction. Callers pass the concatenated
// compliance-instance tags (consumed nullifiers then created commitments)
// of every action in the transaction, in action order.
func Msg(actionTags [][]resource.Digest) resource.Digest {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(msgDST))
	for _, tags := range actionTags {
		for _, tag := range tags {
			h.Write(tag[:])
		}
	}
	var d resource.Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Prove signs msg with rcv as a secp256k1 private key, producing a
// recoverable signature whose public key is rcv*G — the same scalar every
// action's Rcv summed together into the transaction's total delta.
func Prove(rcv *big.Int, msg resource.Digest) (Proof, error) {
	if rcv == nil || rcv.Sign() == 0 {
		return nil, armerrors.New(armerrors.KindInvalidSigningKey, "delta proof: rcv must be a nonzero scalar")
	}
	scalar := curve.ScalarToModN(rcv)
	priv := secp256k1.NewPrivateKey(&scalar)
	sig := ecdsa.SignCompact(priv, msg[:], true)
	if len(sig) != compactProofSize {
		return nil, armerrors.New(armerrors.KindDeltaProofGenerationFailed, "delta proof: unexpected signature length")
	}
	if err := checkCanonical(sig); err != nil {
		return nil, armerrors.Wrap(armerrors.KindDeltaProofGenerationFailed, err)
	}
	return Proof(sig), nil
}

// Verify recovers the signer's public key from proof over msg and checks
// it equals delta (the transaction's aggregated value delta point).
func Verify(delta curve.Point, msg resource.Digest, proof Proof) error {
	if len(proof) != compactProofSize {
		return armerrors.New(armerrors.KindInvalidDeltaProof, "delta proof: wrong length")
	}
	if err := checkCanonical(proof); err != nil {
		return err
	}
	recovered, _, err := ecdsa.RecoverCompact(proof, msg[:])
	if err != nil {
		return armerrors.Wrap(armerrors.KindDeltaProofVerificationFailed, err)
	}
	expected, err := curve.ToPublicKey(delta)
	if err != nil {
		return armerrors.Wrap(armerrors.KindInvalidDelta, err)
	}
	if !recovered.IsEqual(expected) {
		return armerrors.New(armerrors.KindDeltaProofVerificationFailed,
			"delta proof: recovered key does not match the transaction's delta")
	}
	return nil
}

// Compose sums a set of per-action delta points into one transaction-wide
// delta, the value Verify checks a delta proof's recovered key against.
func Compose(deltas []curve.Point) curve.Point {
	total := curve.Identity()
	for _, d := range deltas {
		total = curve.Add(total, d)
	}
	return total
}

// ToEthereumVRS converts a decred compact-format proof (recovery
// header||r||s) into Ethereum's r||s||v wire order, subtracting the
// compressed-key offset decred's header may carry so v is exactly
// 27+recoveryID as Ethereum precompiles expect.
func ToEthereumVRS(p Proof) ([65]byte, error) {
	var out [65]byte
	if len(p) != compactProofSize {
		return out, armerrors.New(armerrors.KindInvalidDeltaProof, "delta proof: wrong length")
	}
	header := p[0]
	if header >= 31 {
		header -= 4 // decred adds 4 when the recovered key should be compressed
	}
	recID := header - 27
	copy(out[0:32], p[1:33])
	copy(out[32:64], p[33:65])
	out[64] = 27 + recID
	return out, nil
}

// FromEthereumVRS converts an Ethereum-ordered r||s||v proof back into
// decred's compact wire format, assuming a compressed recovered key (the
// format this package's Prove always produces).
func FromEthereumVRS(vrs [65]byte) Proof {
	out := make([]byte, compactProofSize)
	recID := vrs[64] - 27
	out[0] = 27 + recID + 4
	copy(out[1:33], vrs[0:32])
	copy(out[33:65], vrs[32:64])
	return Proof(out)
}
