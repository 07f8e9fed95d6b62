// Package transaction implements spec.md §5's Transaction: a set of
// actions whose combined value delta is attested by one delta proof, plus
// the cross-action nullifier-uniqueness check no single action can
// enforce on its own.
package transaction

import (
	"context"
	"math/big"

	"github.com/anoma/arm-go/action"
	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/compliance"
	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/delta"
	"github.com/anoma/arm-go/logic"
	"github.com/anoma/arm-go/resource"
)

// Transaction bundles every action a balanced state transition needs,
// plus the delta proof attesting the whole set's value delta.
type Transaction struct {
	Actions []action.Action
	// ExpectedBalance is the value delta this transaction's actions are
	// required to sum to once Compose-d. It is the point at infinity for
	// an ordinary value-conserving transaction, and any other point for a
	// deliberate, explicitly signed mint or burn.
	ExpectedBalance curve.Point
	DeltaProof      delta.Proof
}

// actionTagSets returns every action's own tag set (consumed nullifiers
// then created commitments, in the action's own order), in action order —
// the shape delta.Msg expects.
func (tx Transaction) actionTagSets() [][]resource.Digest {
	sets := make([][]resource.Digest, len(tx.Actions))
	for i, a := range tx.Actions {
		sets[i] = a.Tags()
	}
	return sets
}

// GetDeltaMsg computes the message the transaction's delta proof signs
// over.
func (tx Transaction) GetDeltaMsg() resource.Digest {
	return delta.Msg(tx.actionTagSets())
}

// Delta sums every action's own value delta into the transaction's total.
func (tx Transaction) Delta() curve.Point {
	deltas := make([]curve.Point, len(tx.Actions))
	for i, a := range tx.Actions {
		deltas[i] = a.Delta()
	}
	return delta.Compose(deltas)
}

// GenerateDeltaProof signs the transaction's own delta message with rcv,
// the sum of every action's own blinding scalar, and stores the result in
// DeltaProof.
func (tx *Transaction) GenerateDeltaProof(rcv *big.Int) error {
	proof, err := delta.Prove(rcv, tx.GetDeltaMsg())
	if err != nil {
		return err
	}
	tx.DeltaProof = proof
	return nil
}

// Compose merges two transactions that were independently proven into one
// (spec.md §5's aggregation-by-composition): their action lists
// concatenate, and the caller is expected to have produced a fresh
// DeltaProof over the composed transaction's own GetDeltaMsg, since a
// signature over one sub-transaction's message does not attest to the
// composed one's.
func Compose(a, b Transaction) Transaction {
	actions := make([]action.Action, 0, len(a.Actions)+len(b.Actions))
	actions = append(actions, a.Actions...)
	actions = append(actions, b.Actions...)
	return Transaction{
		Actions:         actions,
		ExpectedBalance: curve.Add(a.ExpectedBalance, b.ExpectedBalance),
	}
}

// duplicateNullifiers reports the first nullifier seen more than once
// across every action's consumed set, or ok=false if there is none.
func duplicateNullifiers(actions []action.Action) (resource.Digest, bool) {
	seen := make(map[resource.Digest]struct{})
	for _, a := range actions {
		for _, nf := range a.Compliance.ConsumedNullifiers {
			if _, ok := seen[nf]; ok {
				return nf, true
			}
			seen[nf] = struct{}{}
		}
	}
	return resource.Digest{}, false
}

// Verify checks every action (compliance proof, logic proofs, per-action
// tag tree), rejects any nullifier consumed by more than one action in
// the transaction, and checks the transaction's delta proof attests that
// the composed delta equals ExpectedBalance.
func (tx Transaction) Verify(ctx context.Context, complianceVerifier compliance.Verifier, logicVerifier logic.Verifier) error {
	if len(tx.Actions) == 0 {
		return armerrors.New(armerrors.KindMissingField, "transaction must contain at least one action")
	}

	if nf, dup := duplicateNullifiers(tx.Actions); dup {
		return armerrors.New(armerrors.KindNullifierDuplication,
			"transaction: nullifier "+nf.String()+" consumed by more than one action")
	}

	for _, a := range tx.Actions {
		if err := a.Verify(ctx, complianceVerifier, logicVerifier); err != nil {
			return err
		}
	}

	total := tx.Delta()
	remainder := curve.Sub(total, tx.ExpectedBalance)
	if err := delta.Verify(remainder, tx.GetDeltaMsg(), tx.DeltaProof); err != nil {
		return err
	}
	return nil
}
