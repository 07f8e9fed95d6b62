// Package compliance implements the three compliance-unit shapes ARM
// supports — minimal (1:1), variable-sized (N:M), and sigmabus — each
// binding a set of consumed and created resources to a public Instance a
// zkVM oracle (see the zkvm package) proves was derived honestly.
package compliance

import (
	"math/big"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/resource"
)

// Shape names the compliance-unit variant an Instance was produced by.
type Shape string

const (
	ShapeMinimal  Shape = "minimal"
	ShapeVariable Shape = "variable"
	ShapeSigmabus Shape = "sigmabus"
)

// Instance is the public output of a compliance unit: the tags it binds,
// the commitment-tree root its consumed resources were proven against, and
// the value delta it contributes, wire-encoded as the compliance circuit's
// public instance would publish it.
type Instance struct {
	Shape Shape

	// ConsumedNullifiers are the nullifiers of every resource this unit
	// consumes, in the order the unit's witness supplied them.
	ConsumedNullifiers []resource.Digest
	// CreatedCommitments are the commitments of every resource this unit
	// creates, in the order the unit's witness supplied them.
	CreatedCommitments []resource.Digest
	// ConsumedLogicRefs and CreatedLogicRefs are the LogicRef of each
	// resource in ConsumedNullifiers/CreatedCommitments, passed through
	// unchanged from the witness (spec.md §4.3 point 5). Action.Verify
	// checks every resource-logic proof's verifying key against the
	// entry here for its tag, rejecting with VerifyingKeyMismatch on any
	// disagreement.
	ConsumedLogicRefs []resource.Digest
	CreatedLogicRefs  []resource.Digest
	// ConsumedRoot is the commitment-tree root every consumed resource's
	// inclusion path was checked against.
	ConsumedRoot resource.Digest

	// DeltaX, DeltaY are this unit's contribution to the transaction's
	// value delta, as big-endian u32 words (the wire shape spec.md §6
	// mandates for compliance instance delta coordinates).
	DeltaX []uint32
	DeltaY []uint32
}

// Delta decodes the instance's wire-encoded delta back into a curve point.
func (inst Instance) Delta() curve.Point {
	x, y := curve.WordsToCoord(inst.DeltaX), curve.WordsToCoord(inst.DeltaY)
	if x.Sign() == 0 && y.Sign() == 0 {
		return curve.Identity()
	}
	return curve.Point{X: x, Y: y}
}

// encodeDelta renders a delta point as the Instance's wire words.
func encodeDelta(p curve.Point) ([]uint32, []uint32) {
	if p.Infinity {
		return make([]uint32, 8), make([]uint32, 8)
	}
	return curve.PointToWords(p.X), curve.PointToWords(p.Y)
}

// signedValueDelta returns sign*qty*kind, the curve-point contribution a
// single resource makes to a compliance unit's value delta: positive for
// created resources, negative for consumed ones.
func signedValueDelta(kind curve.Point, quantity uint64, consumed bool) curve.Point {
	q := new(big.Int).SetUint64(quantity)
	if consumed {
		q.Neg(q)
		q.Mod(q, curve.Order())
	}
	return curve.ScalarMult(kind, q)
}

func sumValueDeltas(consumed, created []resource.Resource) (curve.Point, error) {
	total := curve.Identity()
	for _, r := range consumed {
		k, err := r.Kind()
		if err != nil {
			return curve.Point{}, armerrors.Wrap(armerrors.KindInvalidResourceKind, err)
		}
		total = curve.Add(total, signedValueDelta(k, r.Quantity, true))
	}
	for _, r := range created {
		k, err := r.Kind()
		if err != nil {
			return curve.Point{}, armerrors.Wrap(armerrors.KindInvalidResourceKind, err)
		}
		total = curve.Add(total, signedValueDelta(k, r.Quantity, false))
	}
	return total, nil
}
