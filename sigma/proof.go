package sigma

import (
	"crypto/rand"
	"math/big"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/curve"
)

// Commit computes a Pedersen commitment to value under randomness blinding:
// value*H + blinding*G, where H is BindingGenerator and G is
// HidingGenerator (secp256k1's base point).
func Commit(value, blinding *big.Int) (curve.Point, error) {
	h, err := BindingGenerator()
	if err != nil {
		return curve.Point{}, err
	}
	return CommitWithBase(value, blinding, h)
}

// CommitWithBase is Commit generalized to an explicit base H, used by the
// sigmabus compliance shape where the committed value is a net resource
// quantity and H must be that resource kind's own curve point rather than
// the package's fixed BindingGenerator.
func CommitWithBase(value, blinding *big.Int, h curve.Point) (curve.Point, error) {
	g, err := HidingGenerator()
	if err != nil {
		return curve.Point{}, err
	}
	return curve.Add(curve.ScalarMult(h, value), curve.ScalarMult(g, blinding)), nil
}

// Proof is a non-interactive (Fiat-Shamir) proof of knowledge of a
// Pedersen commitment's opening (value, blinding).
type Proof struct {
	// T is the prover's commitment to its random nonces.
	T curve.Point
	// Zv is the response binding the witnessed value into the challenge.
	Zv *big.Int
	// Zr is the response binding the witnessed blinding into the challenge.
	Zr *big.Int
}

// challenge derives the Fiat-Shamir challenge scalar from the commitment
// being proven, the prover's nonce commitment T, and an arbitrary
// transcript binding additional context (e.g. the compliance unit's other
// public data) into the proof.
func challenge(commitment, t curve.Point, context []byte) *big.Int {
	buf := make([]byte, 0, 4*32+len(context))
	buf = appendCoord(buf, commitment.X)
	buf = appendCoord(buf, commitment.Y)
	buf = appendCoord(buf, t.X)
	buf = appendCoord(buf, t.Y)
	buf = append(buf, context...)
	return curve.HashToScalar(buf)
}

func appendCoord(buf []byte, v *big.Int) []byte {
	b := make([]byte, 32)
	if v != nil {
		v.FillBytes(b)
	}
	return append(buf, b...)
}

// Prove constructs a Proof that the prover knows (value, blinding) such
// that Commit(value, blinding) == commitment, binding context into the
// Fiat-Shamir transcript.
func Prove(value, blinding *big.Int, commitment curve.Point, context []byte) (*Proof, error) {
	h, err := BindingGenerator()
	if err != nil {
		return nil, err
	}
	return ProveWithBase(value, blinding, commitment, h, context)
}

// ProveWithBase is Prove generalized to an explicit base H (see
// CommitWithBase).
func ProveWithBase(value, blinding *big.Int, commitment, h curve.Point, context []byte) (*Proof, error) {
	kv, err := randScalar()
	if err != nil {
		return nil, armerrors.Wrap(armerrors.KindProveFailed, err)
	}
	kr, err := randScalar()
	if err != nil {
		return nil, armerrors.Wrap(armerrors.KindProveFailed, err)
	}

	t, err := CommitWithBase(kv, kr, h)
	if err != nil {
		return nil, armerrors.Wrap(armerrors.KindProveFailed, err)
	}

	c := challenge(commitment, t, context)
	n := curve.Order()

	zv := new(big.Int).Mul(c, value)
	zv.Add(zv, kv)
	zv.Mod(zv, n)

	zr := new(big.Int).Mul(c, blinding)
	zr.Add(zr, kr)
	zr.Mod(zr, n)

	return &Proof{T: t, Zv: zv, Zr: zr}, nil
}

// Verify checks that p proves knowledge of an opening of commitment under
// the same context Prove was called with.
func Verify(commitment curve.Point, p *Proof, context []byte) bool {
	h, err := BindingGenerator()
	if err != nil {
		return false
	}
	return VerifyWithBase(commitment, p, h, context)
}

// VerifyWithBase is Verify generalized to an explicit base H (see
// CommitWithBase).
func VerifyWithBase(commitment curve.Point, p *Proof, h curve.Point, context []byte) bool {
	if p == nil {
		return false
	}
	c := challenge(commitment, p.T, context)

	lhs, err := CommitWithBase(p.Zv, p.Zr, h)
	if err != nil {
		return false
	}
	rhs := curve.Add(p.T, curve.ScalarMult(commitment, c))
	return curve.Equal(lhs, rhs)
}

// randScalar draws a uniform scalar in [1, N).
func randScalar() (*big.Int, error) {
	n := curve.Order()
	for {
		k, err := rand.Int(rand.Reader, n)
		if err != nil {
			return nil, err
		}
		if k.Sign() != 0 {
			return k, nil
		}
	}
}
