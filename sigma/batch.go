package sigma

import (
	"math/big"

	"github.com/anoma/arm-go/curve"
)

// BatchVerify checks many (commitment, proof, context) triples, each
// against its own base H, at once using a random linear combination,
// rather than verifying each proof's two-point equation independently.
// Each coefficient is itself derived by Fiat-Shamir from the full batch, so
// the combination is reproducible without a trusted or interactive
// verifier supplying randomness. Passing a nil entry in bases (a zero-value
// Point: nil coordinates, not the point at infinity) uses the package's
// default BindingGenerator for that item.
//
// It returns false if the slices have mismatched lengths, if any individual
// proof is malformed, or if the combined check fails. Per the decision
// recorded in DESIGN.md, aggregation calls this over every sigmabus unit
// present once every transaction in the set has verified.
func BatchVerify(commitments []curve.Point, proofs []*Proof, bases []curve.Point, contexts [][]byte) bool {
	if len(commitments) != len(proofs) || len(commitments) != len(contexts) || len(commitments) != len(bases) {
		return false
	}
	if len(commitments) == 0 {
		return true
	}
	for _, p := range proofs {
		if p == nil {
			return false
		}
	}

	coeffs := batchCoefficients(commitments, proofs, contexts)

	defaultBase, err := BindingGenerator()
	if err != nil {
		return false
	}

	n := curve.Order()
	lhsZr := new(big.Int)
	lhs := curve.Identity()
	rhs := curve.Identity()

	for i := range commitments {
		c := challenge(commitments[i], proofs[i].T, contexts[i])

		weightedZv := new(big.Int).Mul(coeffs[i], proofs[i].Zv)
		weightedZv.Mod(weightedZv, n)
		base := bases[i]
		if base.X == nil && !base.Infinity {
			base = defaultBase
		}
		lhs = curve.Add(lhs, curve.ScalarMult(base, weightedZv))

		lhsZr.Add(lhsZr, new(big.Int).Mul(coeffs[i], proofs[i].Zr))

		weightedT := curve.ScalarMult(proofs[i].T, coeffs[i])
		cCoeff := new(big.Int).Mul(coeffs[i], c)
		cCoeff.Mod(cCoeff, n)
		weightedC := curve.ScalarMult(commitments[i], cCoeff)

		rhs = curve.Add(rhs, curve.Add(weightedT, weightedC))
	}
	lhsZr.Mod(lhsZr, n)

	g, err := HidingGenerator()
	if err != nil {
		return false
	}
	lhs = curve.Add(lhs, curve.ScalarMult(g, lhsZr))

	return curve.Equal(lhs, rhs)
}

// batchCoefficients derives one Fiat-Shamir scalar per entry, binding the
// entry's own index and data plus every commitment in the batch, so a
// prover cannot choose commitments to cancel out the combination.
func batchCoefficients(commitments []curve.Point, proofs []*Proof, contexts [][]byte) []*big.Int {
	var transcript []byte
	for i, c := range commitments {
		transcript = appendCoord(transcript, c.X)
		transcript = appendCoord(transcript, c.Y)
		transcript = appendCoord(transcript, proofs[i].T.X)
		transcript = appendCoord(transcript, proofs[i].T.Y)
		transcript = append(transcript, contexts[i]...)
	}

	coeffs := make([]*big.Int, len(commitments))
	for i := range commitments {
		idx := make([]byte, 8)
		for j := 0; j < 8; j++ {
			idx[j] = byte(i >> (8 * j))
		}
		coeffs[i] = curve.HashToScalar(append(idx, transcript...))
		if coeffs[i].Sign() == 0 {
			coeffs[i] = big.NewInt(1)
		}
	}
	return coeffs
}
