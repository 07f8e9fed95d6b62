// Package sigma implements the Σ-protocol (Schnorr-style proof of
// knowledge of a Pedersen commitment opening) used by the sigmabus
// compliance-unit shape to prove a committed net resource quantity is
// well-formed without revealing the quantity.
package sigma

import "github.com/anoma/arm-go/curve"

// bindingGeneratorDST is the domain separation tag the binding generator
// (the one the committed value is multiplied by) is hashed onto the curve
// under. The hiding generator needs none: it is secp256k1's base point.
const bindingGeneratorDST = "ARM_SIGMA_BINDING_GENERATOR"

// BindingGenerator is the generator H a Pedersen commitment multiplies the
// committed value by: C = value*H + blinding*G.
func BindingGenerator() (curve.Point, error) {
	return curve.HashToCurve([]byte("H"), bindingGeneratorDST)
}

// HidingGenerator is the generator G a Pedersen commitment blinds with:
// secp256k1's standard base point, curve.Generator(). A sigmabus unit's
// blinding term is therefore rcv*G, the same term the other compliance
// shapes add and the delta proof's signing key is checked against.
func HidingGenerator() (curve.Point, error) {
	return curve.Generator(), nil
}

