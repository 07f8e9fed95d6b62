package compliance

import (
	"math/big"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/merklepath"
	"github.com/anoma/arm-go/resource"
	"github.com/anoma/arm-go/sigma"
)

// SigmabusWitness is the sigma-protocol compliance shape: rather than
// deriving its value delta by multiplying out each resource's kind point
// individually, it proves knowledge of the net quantity and blinding
// opening a single Pedersen commitment, using the shared resource Kind as
// the commitment's base. This lets many sigmabus units be checked together
// with sigma.BatchVerify instead of one full-cost opening check each.
type SigmabusWitness struct {
	Consumed     []ConsumedEntry
	Created      []resource.Resource
	ConsumedRoot resource.Digest
	// EphemeralRoot is the root reported for any consumed entry whose
	// Resource.IsEphemeral is true, in place of a Merkle path check
	// against ConsumedRoot (spec.md §4.3 point 2).
	EphemeralRoot resource.Digest
	Rcv           *big.Int
}

// SigmabusInstance extends Instance with the sigma proof a sigmabus unit
// additionally publishes.
type SigmabusInstance struct {
	Instance
	Kind  curve.Point
	Proof *sigma.Proof
}

// sigmaContext binds a sigmabus unit's consumed/created tag sets into its
// sigma proof's Fiat-Shamir transcript, so the proof cannot be replayed
// against a different unit's commitment.
func sigmaContext(consumedNfs, createdCommitments []resource.Digest) []byte {
	var buf []byte
	for _, nf := range consumedNfs {
		buf = append(buf, nf[:]...)
	}
	for _, c := range createdCommitments {
		buf = append(buf, c[:]...)
	}
	return buf
}

// Constrain checks the witness and produces the unit's public
// SigmabusInstance. Every consumed and created resource must share the
// same Kind; this is the batching unit's whole point.
func (w SigmabusWitness) Constrain() (*SigmabusInstance, error) {
	if len(w.Consumed) == 0 && len(w.Created) == 0 {
		return nil, armerrors.New(armerrors.KindMissingField,
			"sigmabus compliance unit requires at least one resource")
	}

	var kind curve.Point
	haveKind := false
	checkKind := func(r resource.Resource) error {
		k, err := r.Kind()
		if err != nil {
			return armerrors.Wrap(armerrors.KindInvalidResourceKind, err)
		}
		if !haveKind {
			kind = k
			haveKind = true
			return nil
		}
		if !curve.Equal(kind, k) {
			return armerrors.New(armerrors.KindInvalidResourceKind,
				"sigmabus compliance unit: all resources must share one kind")
		}
		return nil
	}

	consumedNfs := make([]resource.Digest, len(w.Consumed))
	consumedLogicRefs := make([]resource.Digest, len(w.Consumed))
	allEphemeral := true
	net := new(big.Int)
	n := curve.Order()

	for i, entry := range w.Consumed {
		if err := checkKind(entry.Resource); err != nil {
			return nil, err
		}
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
		consumedLogicRefs[i] = entry.Resource.LogicRef
		net.Sub(net, new(big.Int).SetUint64(entry.Resource.Quantity))
	}
	consumedRoot := w.ConsumedRoot
	if allEphemeral {
		consumedRoot = w.EphemeralRoot
	}

	createdCommitments := make([]resource.Digest, len(w.Created))
	createdLogicRefs := make([]resource.Digest, len(w.Created))
	for i, r := range w.Created {
		if err := checkKind(r); err != nil {
			return nil, err
		}
		createdCommitments[i] = r.Commitment()
		createdLogicRefs[i] = r.LogicRef
		net.Add(net, new(big.Int).SetUint64(r.Quantity))
	}
	net.Mod(net, n)

	if w.Rcv == nil {
		return nil, armerrors.New(armerrors.KindInvalidRcv, "rcv must not be nil")
	}

	commitment, err := sigma.CommitWithBase(net, w.Rcv, kind)
	if err != nil {
		return nil, armerrors.Wrap(armerrors.KindDeltaProofGenerationFailed, err)
	}

	ctx := sigmaContext(consumedNfs, createdCommitments)
	proof, err := sigma.ProveWithBase(net, w.Rcv, commitment, kind, ctx)
	if err != nil {
		return nil, armerrors.Wrap(armerrors.KindDeltaProofGenerationFailed, err)
	}

	dx, dy := encodeDelta(commitment)
	return &SigmabusInstance{
		Instance: Instance{
			Shape:              ShapeSigmabus,
			ConsumedNullifiers: consumedNfs,
			CreatedCommitments: createdCommitments,
			ConsumedLogicRefs:  consumedLogicRefs,
			CreatedLogicRefs:   createdLogicRefs,
			ConsumedRoot:       consumedRoot,
			DeltaX:             dx,
			DeltaY:             dy,
		},
		Kind:  kind,
		Proof: proof,
	}, nil
}

// Context returns the Fiat-Shamir context this instance's sigma proof was
// bound to, for callers (e.g. the aggregation package) that need to
// recheck or batch many instances' proofs outside this package.
func (inst SigmabusInstance) Context() []byte {
	return sigmaContext(inst.ConsumedNullifiers, inst.CreatedCommitments)
}

// Verify checks a SigmabusInstance's own sigma proof in isolation. Batches
// of sigmabus instances should instead be checked together with
// sigma.BatchVerify (see the aggregation package).
func (inst SigmabusInstance) Verify() bool {
	return sigma.VerifyWithBase(inst.Delta(), inst.Proof, inst.Kind, inst.Context())
}
