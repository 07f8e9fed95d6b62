package compliance

import (
	"math/big"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/merklepath"
	"github.com/anoma/arm-go/resource"
)

// MinimalWitness is the 1:1 compliance-unit shape: exactly one consumed
// resource is transformed into exactly one created resource, with the
// created resource's Nonce set directly to the consumed resource's
// Nullifier (spec.md §9 open question on nonce derivation, minimal shape).
type MinimalWitness struct {
	Consumed     resource.Resource
	ConsumedNK   resource.NullifierKey
	ConsumedPath merklepath.Path
	ConsumedRoot resource.Digest
	// EphemeralRoot is the designated root reported in place of a real
	// Merkle path check when Consumed.IsEphemeral is true (spec.md §4.3
	// point 2); callers typically pass merklepath.InitialRoot().
	EphemeralRoot resource.Digest
	Created       resource.Resource
	Rcv           *big.Int // blinding scalar for this unit's value delta
}

// Constrain checks the witness's internal consistency and produces the
// public Instance a zkVM oracle would be asked to attest to. If the
// consumed resource is ephemeral, its Merkle path check is skipped and
// EphemeralRoot is reported as the consumed root instead (spec.md §4.3
// point 2); otherwise the consumed resource's Merkle path must verify
// against ConsumedRoot. The created resource's Nonce must equal the
// consumed resource's Nullifier either way.
func (w MinimalWitness) Constrain() (*Instance, error) {
	consumedNf, err := w.Consumed.Nullifier(w.ConsumedNK)
	if err != nil {
		return nil, err
	}

	consumedRoot := w.ConsumedRoot
	if w.Consumed.IsEphemeral {
		consumedRoot = w.EphemeralRoot
	} else if !w.ConsumedPath.Verify(w.Consumed.Commitment(), w.ConsumedRoot, merklepath.CommitmentTreeDepth) {
		return nil, armerrors.New(armerrors.KindInvalidMerklePath,
			"consumed resource's commitment does not verify against the consumed root")
	}

	if w.Created.Nonce != consumedNf {
		return nil, armerrors.New(armerrors.KindInvalidResourceNonce,
			"minimal compliance unit: created.nonce must equal consumed nullifier")
	}

	valueDelta, err := sumValueDeltas([]resource.Resource{w.Consumed}, []resource.Resource{w.Created})
	if err != nil {
		return nil, err
	}
	if w.Rcv == nil {
		return nil, armerrors.New(armerrors.KindInvalidRcv, "rcv must not be nil")
	}
	delta := curve.Add(valueDelta, curve.ScalarBaseMult(w.Rcv))

	dx, dy := encodeDelta(delta)
	return &Instance{
		Shape:              ShapeMinimal,
		ConsumedNullifiers: []resource.Digest{consumedNf},
		CreatedCommitments: []resource.Digest{w.Created.Commitment()},
		ConsumedLogicRefs:  []resource.Digest{w.Consumed.LogicRef},
		CreatedLogicRefs:   []resource.Digest{w.Created.LogicRef},
		ConsumedRoot:       consumedRoot,
		DeltaX:             dx,
		DeltaY:             dy,
	}, nil
}
