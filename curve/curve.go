// Package curve provides the secp256k1 group and scalar-field arithmetic
// shared by resource kinds, compliance deltas, the sigma protocol, and delta
// proofs. It is a thin layer over github.com/decred/dcrd/dcrec/secp256k1/v4,
// the same curve library family three other repos in the retrieval pack pull
// in indirectly (certenIO-certen-validator, luxfi-consensus, parsdao-pars).
package curve

import (
	"crypto/sha256"
	"math/big"

	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// Point is an affine point on secp256k1. Infinity represents the group
// identity; X and Y are nil in that case.
type Point struct {
	X, Y     *big.Int
	Infinity bool
}

// Identity returns the point at infinity (the additive identity).
func Identity() Point {
	return Point{Infinity: true}
}

// kCurve is the package-wide secp256k1 curve instance.
var kCurve = secp256k1.S256()

// Order returns the secp256k1 group order N.
func Order() *big.Int {
	return new(big.Int).Set(kCurve.Params().N)
}

// FieldPrime returns the secp256k1 base field prime P.
func FieldPrime() *big.Int {
	return new(big.Int).Set(kCurve.Params().P)
}

// Generator returns the secp256k1 base point G.
func Generator() Point {
	p := kCurve.Params()
	return Point{X: new(big.Int).Set(p.Gx), Y: new(big.Int).Set(p.Gy)}
}

// Add returns a + b.
func Add(a, b Point) Point {
	if a.Infinity {
		return b
	}
	if b.Infinity {
		return a
	}
	x, y := kCurve.Add(a.X, a.Y, b.X, b.Y)
	return Point{X: x, Y: y}
}

// Negate returns -p.
func Negate(p Point) Point {
	if p.Infinity {
		return p
	}
	y := new(big.Int).Sub(FieldPrime(), p.Y)
	y.Mod(y, FieldPrime())
	return Point{X: new(big.Int).Set(p.X), Y: y}
}

// Sub returns a - b.
func Sub(a, b Point) Point {
	return Add(a, Negate(b))
}

// ScalarMult returns k*p, reducing k modulo the group order first.
func ScalarMult(p Point, k *big.Int) Point {
	if p.Infinity {
		return p
	}
	kk := new(big.Int).Mod(k, Order())
	if kk.Sign() == 0 {
		return Identity()
	}
	x, y := kCurve.ScalarMult(p.X, p.Y, kk.Bytes())
	return Point{X: x, Y: y}
}

// ScalarBaseMult returns k*G, reducing k modulo the group order first.
func ScalarBaseMult(k *big.Int) Point {
	kk := new(big.Int).Mod(k, Order())
	if kk.Sign() == 0 {
		return Identity()
	}
	x, y := kCurve.ScalarBaseMult(kk.Bytes())
	return Point{X: x, Y: y}
}

// Equal reports whether a and b are the same point.
func Equal(a, b Point) bool {
	if a.Infinity != b.Infinity {
		return false
	}
	if a.Infinity {
		return true
	}
	return a.X.Cmp(b.X) == 0 && a.Y.Cmp(b.Y) == 0
}

// ToPublicKey converts p to a *secp256k1.PublicKey, for interop with the
// decred ECDSA package. p must not be the point at infinity.
func ToPublicKey(p Point) (*secp256k1.PublicKey, error) {
	if p.Infinity {
		return nil, errInvalidPublicKey("point at infinity")
	}
	var fx, fy secp256k1.FieldVal
	xb := make([]byte, 32)
	yb := make([]byte, 32)
	p.X.FillBytes(xb)
	p.Y.FillBytes(yb)
	if overflow := fx.SetByteSlice(xb); overflow {
		return nil, errInvalidPublicKey("x coordinate overflows field")
	}
	if overflow := fy.SetByteSlice(yb); overflow {
		return nil, errInvalidPublicKey("y coordinate overflows field")
	}
	pub := secp256k1.NewPublicKey(&fx, &fy)
	if !kCurve.IsOnCurve(p.X, p.Y) {
		return nil, errInvalidPublicKey("point is not on the curve")
	}
	return pub, nil
}

// FromPublicKey converts a *secp256k1.PublicKey back to an affine Point.
func FromPublicKey(pub *secp256k1.PublicKey) Point {
	x := new(big.Int).SetBytes(pub.X().Bytes()[:])
	y := new(big.Int).SetBytes(pub.Y().Bytes()[:])
	return Point{X: x, Y: y}
}

// ScalarToModN converts k (reduced modulo N) into a *secp256k1.ModNScalar.
func ScalarToModN(k *big.Int) secp256k1.ModNScalar {
	var s secp256k1.ModNScalar
	kk := new(big.Int).Mod(k, Order())
	kb := make([]byte, 32)
	kk.FillBytes(kb)
	s.SetByteSlice(kb)
	return s
}

// PointToWords encodes a field coordinate as eight big-endian u32 words, the
// wire shape the compliance instance uses for delta_x/delta_y.
func PointToWords(coord *big.Int) []uint32 {
	b := make([]byte, 32)
	coord.FillBytes(b)
	words := make([]uint32, 8)
	for i := 0; i < 8; i++ {
		words[i] = uint32(b[i*4])<<24 | uint32(b[i*4+1])<<16 | uint32(b[i*4+2])<<8 | uint32(b[i*4+3])
	}
	return words
}

// WordsToCoord decodes eight big-endian u32 words back into a coordinate.
func WordsToCoord(words []uint32) *big.Int {
	b := make([]byte, 32)
	for i := 0; i < 8 && i < len(words); i++ {
		b[i*4] = byte(words[i] >> 24)
		b[i*4+1] = byte(words[i] >> 16)
		b[i*4+2] = byte(words[i] >> 8)
		b[i*4+3] = byte(words[i])
	}
	return new(big.Int).SetBytes(b)
}

type curveError string

func (e curveError) Error() string { return string(e) }

func errInvalidPublicKey(msg string) error {
	return curveError("invalid public key: " + msg)
}

// hashToScalarDST is used by the sigma protocol's Fiat-Shamir challenge.
const hashToScalarDST = "ARM_SIGMA_CHALLENGE"

// HashToScalar reduces SHA-256(data) modulo the group order, giving a
// deterministic non-uniform scalar. Used for Fiat-Shamir challenges where
// full hash_to_field uniformity is not required.
func HashToScalar(data []byte) *big.Int {
	h := sha256.Sum256(append([]byte(hashToScalarDST), data...))
	s := new(big.Int).SetBytes(h[:])
	return s.Mod(s, Order())
}
