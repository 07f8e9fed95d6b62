package zkvm

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"

	"github.com/anoma/arm-go/armerrors"
)

// memoryDST separates MemoryOracle's proof tag from any other SHA-256 use.
const memoryDST = "ARM_ZKVM_MEMORY_ORACLE"

// MemoryOracle is a deterministic in-memory stand-in for a real zkVM: it
// treats the proving key as a MAC key and derives the journal from the
// witness (see Prove), so
// Prove/Verify check exactly one thing — that the caller presenting a
// receipt actually holds the matching proving/verifying key pair — without
// any circuit compilation or heavyweight proof generation. It mirrors the
// teacher's InMemoryTreeStore/InMemoryNullifierStore test-double pattern:
// behaviorally faithful to the real interface, free of its setup cost.
type MemoryOracle struct{}

// NewMemoryOracle constructs a MemoryOracle. It is stateless.
func NewMemoryOracle() MemoryOracle {
	return MemoryOracle{}
}

func mac(key, journal []byte) []byte {
	h := hmac.New(sha256.New, append([]byte(memoryDST), key...))
	h.Write(journal)
	return h.Sum(nil)
}

// Prove returns a journal tagged with a MAC over (pk, journal) as the
// "proof". A 64-byte witness is read in Groth16Oracle's
// witness(32)||binding(32) layout and, as there, only the binding half
// becomes the journal; a witness of any other length is returned unchanged
// as the journal.
func (MemoryOracle) Prove(ctx context.Context, pk ProvingKey, witness []byte) (Receipt, error) {
	public := witness
	if len(witness) == 64 {
		public = witness[32:]
	}
	journal := append([]byte(nil), public...)
	return Receipt{Journal: journal, Proof: mac(pk, journal)}, nil
}

// Verify recomputes the MAC from vk and the receipt's journal and compares
// it against the receipt's proof in constant time.
func (MemoryOracle) Verify(ctx context.Context, vk VerifyingKey, receipt Receipt) error {
	expected := mac(vk, receipt.Journal)
	if !hmac.Equal(expected, receipt.Proof) {
		return armerrors.New(armerrors.KindProofVerificationFailed, "memory oracle: proof does not match journal")
	}
	return nil
}

// MemoryKeyPair derives a matched (ProvingKey, VerifyingKey) pair for
// MemoryOracle from a single seed — both keys must be equal, since
// MemoryOracle does not model the proving/verifying key asymmetry a real
// zkVM has.
func MemoryKeyPair(seed []byte) (ProvingKey, VerifyingKey) {
	k := append([]byte(nil), seed...)
	return ProvingKey(k), VerifyingKey(append([]byte(nil), k...))
}
