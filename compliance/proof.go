package compliance

import (
	"context"
	"crypto/sha256"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/armutil"
	"github.com/anoma/arm-go/resource"
	"github.com/anoma/arm-go/zkvm"
)

// instanceBindingDST separates a compliance Instance's binding digest from
// every other SHA-256 use in this module.
const instanceBindingDST = "ARM_COMPLIANCE_BINDING"

// Binding computes the digest a compliance unit's zkVM receipt journal must
// equal: a commitment to every field of the public instance, so a receipt
// cannot be replayed against a different instance.
func (inst Instance) Binding() resource.Digest {
	h := sha256.New()
	h.Write([]byte(instanceBindingDST))
	h.Write([]byte(inst.Shape))
	for _, nf := range inst.ConsumedNullifiers {
		h.Write(nf[:])
	}
	for _, c := range inst.CreatedCommitments {
		h.Write(c[:])
	}
	for _, r := range inst.ConsumedLogicRefs {
		h.Write(r[:])
	}
	for _, r := range inst.CreatedLogicRefs {
		h.Write(r[:])
	}
	h.Write(inst.ConsumedRoot[:])
	for _, w := range inst.DeltaX {
		h.Write(armutil.Uint32Bytes(w))
	}
	for _, w := range inst.DeltaY {
		h.Write(armutil.Uint32Bytes(w))
	}
	var d resource.Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Proof bundles a compliance unit's zkVM receipt with the verifying key
// its circuit is expected to resolve to.
type Proof struct {
	VerifyingKey zkvm.VerifyingKey
	Receipt      zkvm.Receipt
}

// Verifier checks a compliance Instance's proof using an injected
// zkvm.Verifier, the same boundary logic.Verifier uses for resource-logic
// proofs.
type Verifier struct {
	Oracle zkvm.Verifier
}

// NewVerifier constructs a Verifier backed by the given zkvm.Verifier.
func NewVerifier(oracle zkvm.Verifier) Verifier {
	return Verifier{Oracle: oracle}
}

// Verify checks that proof attests to inst's binding digest under the
// zkVM oracle.
func (v Verifier) Verify(ctx context.Context, inst Instance, proof Proof) error {
	want := inst.Binding()
	if len(proof.Receipt.Journal) != len(want) || toDigest(proof.Receipt.Journal) != want {
		return armerrors.New(armerrors.KindInvalidComplianceInstance,
			"compliance verifier: journal does not match instance binding")
	}
	if err := v.Oracle.Verify(ctx, proof.VerifyingKey, proof.Receipt); err != nil {
		return armerrors.Wrap(armerrors.KindInvalidComplianceInstance, err)
	}
	return nil
}

func toDigest(b []byte) resource.Digest {
	var d resource.Digest
	copy(d[:], b)
	return d
}
