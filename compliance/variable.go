package compliance

import (
	"crypto/sha256"
	"math/big"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/merklepath"
	"github.com/anoma/arm-go/resource"
)

const consumedDigestDST = "ARM_COMPLIANCE_CONSUMED_DIGEST"

// ConsumedEntry pairs a consumed resource with the key and Merkle path
// needed to spend and authenticate it.
type ConsumedEntry struct {
	Resource resource.Resource
	NK       resource.NullifierKey
	Path     merklepath.Path
}

// VariableWitness is the N:M compliance-unit shape: any number of consumed
// resources are transformed into any number of created resources. Each
// created resource's Nonce is derived from its index and the digest of all
// consumed nullifiers (spec.md §9 open question on nonce derivation,
// variable-sized shape), rather than equal to a single nullifier.
type VariableWitness struct {
	Consumed     []ConsumedEntry
	Created      []resource.Resource
	ConsumedRoot resource.Digest
	// EphemeralRoot is the root reported for any consumed entry whose
	// Resource.IsEphemeral is true, in place of a Merkle path check
	// against ConsumedRoot (spec.md §4.3 point 2).
	EphemeralRoot resource.Digest
	Rcv           *big.Int
}

// consumedNullifiersDigest hashes every consumed nullifier, in witness
// order, into a single digest that binds the whole consumed set.
func consumedNullifiersDigest(nullifiers []resource.Digest) resource.Digest {
	h := sha256.New()
	h.Write([]byte(consumedDigestDST))
	for _, nf := range nullifiers {
		h.Write(nf[:])
	}
	var d resource.Digest
	copy(d[:], h.Sum(nil))
	return d
}

// Constrain checks the witness and produces the unit's public Instance.
func (w VariableWitness) Constrain() (*Instance, error) {
	if len(w.Consumed) == 0 || len(w.Created) == 0 {
		return nil, armerrors.New(armerrors.KindMissingField,
			"variable compliance unit requires at least one consumed and one created resource")
	}

	consumedNfs := make([]resource.Digest, len(w.Consumed))
	consumedResources := make([]resource.Resource, len(w.Consumed))
	consumedLogicRefs := make([]resource.Digest, len(w.Consumed))
	allEphemeral := true
	for i, entry := range w.Consumed {
		nf, err := entry.Resource.Nullifier(entry.NK)
		if err != nil {
			return nil, err
		}
		if entry.Resource.IsEphemeral {
			// existence in the commitment tree is not required; no path check.
		} else {
			allEphemeral = false
			if !entry.Path.Verify(entry.Resource.Commitment(), w.ConsumedRoot, merklepath.CommitmentTreeDepth) {
				return nil, armerrors.New(armerrors.KindInvalidMerklePath,
					"consumed resource's commitment does not verify against the consumed root")
			}
		}
		consumedNfs[i] = nf
		consumedResources[i] = entry.Resource
		consumedLogicRefs[i] = entry.Resource.LogicRef
	}
	consumedRoot := w.ConsumedRoot
	if allEphemeral {
		consumedRoot = w.EphemeralRoot
	}

	digest := consumedNullifiersDigest(consumedNfs)
	createdCommitments := make([]resource.Digest, len(w.Created))
	createdLogicRefs := make([]resource.Digest, len(w.Created))
	for i, created := range w.Created {
		expected := resource.DeriveNonce(uint32(i), digest)
		if created.Nonce != expected {
			return nil, armerrors.New(armerrors.KindInvalidResourceNonce,
				"variable compliance unit: created resource nonce does not match derived nonce")
		}
		createdCommitments[i] = created.Commitment()
		createdLogicRefs[i] = created.LogicRef
	}

	valueDelta, err := sumValueDeltas(consumedResources, w.Created)
	if err != nil {
		return nil, err
	}
	if w.Rcv == nil {
		return nil, armerrors.New(armerrors.KindInvalidRcv, "rcv must not be nil")
	}
	delta := curve.Add(valueDelta, curve.ScalarBaseMult(w.Rcv))

	dx, dy := encodeDelta(delta)
	return &Instance{
		Shape:              ShapeVariable,
		ConsumedNullifiers: consumedNfs,
		CreatedCommitments: createdCommitments,
		ConsumedLogicRefs:  consumedLogicRefs,
		CreatedLogicRefs:   createdLogicRefs,
		ConsumedRoot:       consumedRoot,
		DeltaX:             dx,
		DeltaY:             dy,
	}, nil
}
