package logic

import (
	"context"
	"crypto/sha256"

	"github.com/anoma/arm-go/resource"
	"github.com/anoma/arm-go/zkvm"
)

// TrivialLogic is a resource logic that accepts any consumption or
// creation unconditionally, generating and verifying proofs through a
// zkvm.Oracle the same way any other resource logic would (supplemented
// from arm/src/logic_proof.rs::PaddingResourceLogic, which the
// distillation's spec.md omitted: a resource whose LogicRef points at
// this logic imposes no constraint of its own, useful for padding
// resources an action needs only to balance Quantity or to fill an
// ActionTree up to its fixed leaf count).
type TrivialLogic struct {
	Oracle zkvm.Oracle
	PK     zkvm.ProvingKey
	VK     zkvm.VerifyingKey
}

// NewTrivialLogic constructs a TrivialLogic that proves through oracle
// with the caller-supplied key pair pk/vk.
func NewTrivialLogic(oracle zkvm.Oracle, pk zkvm.ProvingKey, vk zkvm.VerifyingKey) TrivialLogic {
	return TrivialLogic{Oracle: oracle, PK: pk, VK: vk}
}

// Prove produces a Proof attesting to in's binding digest, with no
// witness beyond the public statement itself.
func (t TrivialLogic) Prove(ctx context.Context, in VerifierInputs) (Proof, error) {
	binding := in.Binding()
	witness := make([]byte, 0, 64)
	witness = append(witness, binding[:]...)
	witness = append(witness, binding[:]...)
	receipt, err := t.Oracle.Prove(ctx, t.PK, witness)
	if err != nil {
		return Proof{}, err
	}
	return Proof{VerifyingKey: t.VK, Receipt: receipt}, nil
}

// trivialLogicRefDST separates the well-known TrivialLogic reference from
// every other SHA-256 use in this module.
const trivialLogicRefDST = "ARM_TRIVIAL_LOGIC_REF"

// TrivialLogicRef returns the well-known LogicRef value resources set to
// signal they are bound to TrivialLogic. Deployments that wire a real
// zkvm.Oracle to it derive VerifyingKey material separately; this digest
// exists only so independently constructed padding resources agree on a
// single reference without a live oracle in scope.
func TrivialLogicRef() resource.Digest {
	sum := sha256.Sum256([]byte(trivialLogicRefDST))
	return resource.Digest(sum)
}
