// Package zkvm realizes the opaque zkVM oracle spec.md §6 treats as an
// external collaborator: a prove(pk, witness) -> (journal, proof) and
// verify(vk, journal, proof) -> ok|err pair. Compliance and resource-logic
// proofs are both just instances of this interface, bound to whatever
// circuit a caller's ProvingKey/VerifyingKey pair was generated for.
package zkvm

import "context"

// ProvingKey and VerifyingKey are opaque, oracle-specific key material.
type ProvingKey []byte
type VerifyingKey []byte

// Receipt is what Prove returns: the public journal the prover committed
// to, and the proof attesting the journal was produced by running the
// proving key's program on some witness.
type Receipt struct {
	Journal []byte
	Proof   []byte
}

// Prover runs a zkVM program over a secret witness and returns a Receipt.
type Prover interface {
	Prove(ctx context.Context, pk ProvingKey, witness []byte) (Receipt, error)
}

// Verifier checks that a Receipt's proof attests to its journal under the
// program vk was generated for.
type Verifier interface {
	Verify(ctx context.Context, vk VerifyingKey, receipt Receipt) error
}

// Oracle is the combined prove/verify surface every concrete
// implementation in this package provides.
type Oracle interface {
	Prover
	Verifier
}
