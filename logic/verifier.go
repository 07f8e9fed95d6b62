package logic

import (
	"context"
	"crypto/sha256"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/resource"
	"github.com/anoma/arm-go/zkvm"
)

// bindingDST separates a resource logic's binding digest from every other
// SHA-256 use in this module.
const bindingDST = "ARM_LOGIC_BINDING"

// VerifierInputs is the public statement a resource-logic proof attests
// to: that the resource tagged Tag, consumed or created according to
// IsConsumed within the action whose tags form the Merkle tree rooted at
// ActionTreeRoot, carries app_data AppData (spec.md §3/§4 — resource
// logic is invoked once per resource, consumed or created, and is given
// the whole action's tag set so it can inspect sibling resources).
type VerifierInputs struct {
	Tag            resource.Digest
	IsConsumed     bool
	ActionTreeRoot resource.Digest
	AppData        AppData
}

// Binding computes the public digest a LogicProof's receipt journal must
// equal: the hash a resource logic's circuit commits to as its public
// output.
func (in VerifierInputs) Binding() resource.Digest {
	h := sha256.New()
	h.Write([]byte(bindingDST))
	h.Write(in.Tag[:])
	if in.IsConsumed {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}
	h.Write(in.ActionTreeRoot[:])
	appDigest := in.AppData.Digest()
	h.Write(appDigest[:])
	var d resource.Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Proof bundles a resource logic's zkVM receipt with the verifying key its
// LogicRef is expected to resolve to.
type Proof struct {
	VerifyingKey zkvm.VerifyingKey
	Receipt      zkvm.Receipt
}

// Verifier checks a resource's logic proof against its public inputs
// using an injected zkvm.Verifier, mirroring compliance.Instance's
// separation between the public statement and the proof attesting it.
type Verifier struct {
	Oracle zkvm.Verifier
}

// NewVerifier constructs a Verifier backed by the given zkvm.Verifier.
func NewVerifier(oracle zkvm.Verifier) Verifier {
	return Verifier{Oracle: oracle}
}

// Verify checks that proof attests to in's binding digest under the zkVM
// oracle, and that the receipt's journal matches that binding exactly —
// a resource logic that proved a different statement is rejected even if
// its proof is otherwise well-formed.
func (v Verifier) Verify(ctx context.Context, in VerifierInputs, proof Proof) error {
	want := in.Binding()
	if len(proof.Receipt.Journal) != len(want) || mustDigest(proof.Receipt.Journal) != want {
		return armerrors.New(armerrors.KindInvalidLogicProof, "logic verifier: journal does not match binding")
	}
	if err := v.Oracle.Verify(ctx, proof.VerifyingKey, proof.Receipt); err != nil {
		return armerrors.Wrap(armerrors.KindInvalidLogicProof, err)
	}
	return nil
}

func mustDigest(b []byte) resource.Digest {
	var d resource.Digest
	copy(d[:], b)
	return d
}
