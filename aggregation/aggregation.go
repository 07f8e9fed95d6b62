// Package aggregation implements spec.md §5's two ways to combine many
// transactions into one verified unit: Sequential (PCD-style incremental
// folding, where step N's validity is checked one step at a time) and
// Batch (every transaction checked independently, order-insensitive).
// Both additionally batch-verify every sigmabus compliance unit's sigma
// proof across the whole aggregated set in one combined check, per the
// Open Question decision recorded in DESIGN.md: a sigmabus unit's
// Pedersen opening is never implicitly covered by the outer aggregation
// result, since the sigma protocol runs outside the zkVM oracle boundary.
package aggregation

import (
	"context"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/compliance"
	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/logic"
	"github.com/anoma/arm-go/sigma"
	"github.com/anoma/arm-go/transaction"
)

// Verifiers bundles the zkVM verifier boundaries every transaction in an
// aggregation is checked against.
type Verifiers struct {
	Compliance compliance.Verifier
	Logic      logic.Verifier
}

// collectSigmabus gathers every sigmabus unit's (commitment, proof, base,
// context) terms across every action of every transaction, the shape
// sigma.BatchVerify expects.
func collectSigmabus(txs []transaction.Transaction) ([]curve.Point, []*sigma.Proof, []curve.Point, [][]byte) {
	var commitments []curve.Point
	var proofs []*sigma.Proof
	var bases []curve.Point
	var contexts [][]byte

	for _, tx := range txs {
		for _, a := range tx.Actions {
			if a.Sigmabus == nil {
				continue
			}
			commitments = append(commitments, a.Sigmabus.Delta())
			proofs = append(proofs, a.Sigmabus.Proof)
			bases = append(bases, a.Sigmabus.Kind)
			contexts = append(contexts, a.Sigmabus.Context())
		}
	}
	return commitments, proofs, bases, contexts
}

// verifySigmabus runs sigma.BatchVerify over every sigmabus unit found in
// txs; when txs hold no sigmabus unit it returns nil without calling it.
func verifySigmabus(txs []transaction.Transaction) error {
	commitments, proofs, bases, contexts := collectSigmabus(txs)
	if len(commitments) == 0 {
		return nil
	}
	if !sigma.BatchVerify(commitments, proofs, bases, contexts) {
		return armerrors.New(armerrors.KindDeltaProofVerificationFailed,
			"aggregation: one or more sigmabus units failed batch verification")
	}
	return nil
}

// Sequential verifies a chain of transactions one at a time, the way a
// PCD (proof-carrying data) fold checks step N only once step N-1 has
// already been accepted — if any transaction fails, the whole chain is
// rejected and later transactions are not even attempted.
type Sequential struct{}

// Verify checks txs in order, then batch-verifies every sigmabus unit
// across the whole chain in one combined check.
func (Sequential) Verify(ctx context.Context, txs []transaction.Transaction, v Verifiers) error {
	if len(txs) == 0 {
		return armerrors.New(armerrors.KindMissingField, "sequential aggregation requires at least one transaction")
	}
	for _, tx := range txs {
		if err := tx.Verify(ctx, v.Compliance, v.Logic); err != nil {
			return err
		}
	}
	return verifySigmabus(txs)
}

// Batch verifies a set of transactions independently of one another — no
// ordering is implied or required between them.
type Batch struct{}

// Verify checks every transaction in txs (order-independent), then
// batch-verifies every sigmabus unit across the whole set in one combined
// check.
func (Batch) Verify(ctx context.Context, txs []transaction.Transaction, v Verifiers) error {
	if len(txs) == 0 {
		return armerrors.New(armerrors.KindMissingField, "batch aggregation requires at least one transaction")
	}
	for _, tx := range txs {
		if err := tx.Verify(ctx, v.Compliance, v.Logic); err != nil {
			return err
		}
	}
	return verifySigmabus(txs)
}
