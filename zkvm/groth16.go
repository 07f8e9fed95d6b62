package zkvm

import (
	"context"
	"math/big"

	"github.com/consensys/gnark-crypto/ecc"
	"github.com/consensys/gnark/backend/groth16"
	"github.com/consensys/gnark/frontend"
	"github.com/consensys/gnark/frontend/cs/r1cs"

	"github.com/anoma/arm-go/armerrors"
)

// BindingCircuit is the shared circuit shape both compliance and
// resource-logic proofs compile to in this module: a succinct assertion
// that the prover knows a private witness equal to the public binding
// digest. This is the same level of fidelity as the teacher's own
// TransactionCircuit ("a simplified circuit definition") — real
// in-circuit SHA-256/secp256k1 gadgets for the actual compliance and logic
// predicates are out of scope for both the teacher and this module, whose
// concrete proving program is always this one shell. See DESIGN.md.
type BindingCircuit struct {
	Witness frontend.Variable
	Binding frontend.Variable `gnark:",public"`
}

// Define implements frontend.Circuit.
func (c *BindingCircuit) Define(api frontend.API) error {
	api.AssertIsEqual(c.Witness, c.Binding)
	return nil
}

// Groth16Oracle is the Oracle implementation backed by
// github.com/consensys/gnark and github.com/consensys/gnark-crypto
// (BN254, Groth16) — the teacher's own proving stack
// (internal/zkp/circuits.go), generalized from an ad hoc shielded-
// transaction circuit into this module's single reusable binding shell.
type Groth16Oracle struct {
	ccs frontend.CompiledConstraintSystem
}

// NewGroth16Oracle compiles BindingCircuit once; every Setup call produces
// a fresh key pair over the same compiled circuit.
func NewGroth16Oracle() (*Groth16Oracle, error) {
	circuit := &BindingCircuit{}
	ccs, err := frontend.Compile(ecc.BN254.ScalarField(), r1cs.NewBuilder, circuit)
	if err != nil {
		return nil, armerrors.Wrap(armerrors.KindBuildProverEnvFailed, err)
	}
	return &Groth16Oracle{ccs: ccs}, nil
}

// Setup generates a fresh (ProvingKey, VerifyingKey) pair for
// BindingCircuit.
func (o *Groth16Oracle) Setup() (ProvingKey, VerifyingKey, error) {
	pk, vk, err := groth16.Setup(o.ccs)
	if err != nil {
		return nil, nil, armerrors.Wrap(armerrors.KindBuildProverEnvFailed, err)
	}
	return ProvingKey(pk.MarshalBinary()), VerifyingKey(vk.MarshalBinary()), nil
}

// Prove proves knowledge of a 32-byte witness equal to a 32-byte binding
// digest (the concatenation witness||binding is the expected format of the
// witness argument).
func (o *Groth16Oracle) Prove(ctx context.Context, pk ProvingKey, witness []byte) (Receipt, error) {
	if len(witness) != 64 {
		return Receipt{}, armerrors.New(armerrors.KindWriteWitnessFailed,
			"groth16 oracle: witness must be witness(32)||binding(32)")
	}
	witnessVal := new(big.Int).SetBytes(witness[:32])
	bindingVal := new(big.Int).SetBytes(witness[32:])

	gnarkPK := groth16.NewProvingKey(ecc.BN254)
	if err := gnarkPK.UnmarshalBinary(pk); err != nil {
		return Receipt{}, armerrors.Wrap(armerrors.KindBuildProverEnvFailed, err)
	}

	assignment := &BindingCircuit{Witness: witnessVal, Binding: bindingVal}
	w, err := frontend.NewWitness(assignment, ecc.BN254.ScalarField())
	if err != nil {
		return Receipt{}, armerrors.Wrap(armerrors.KindWriteWitnessFailed, err)
	}

	proof, err := groth16.Prove(o.ccs, gnarkPK, w)
	if err != nil {
		return Receipt{}, armerrors.Wrap(armerrors.KindProveFailed, err)
	}

	proofBytes := proof.MarshalBinary()

	journal := make([]byte, 32)
	bindingVal.FillBytes(journal)
	return Receipt{Journal: journal, Proof: proofBytes}, nil
}

// Verify checks receipt.Proof against a public witness built from
// receipt.Journal (the 32-byte binding digest).
func (o *Groth16Oracle) Verify(ctx context.Context, vk VerifyingKey, receipt Receipt) error {
	if len(receipt.Journal) != 32 {
		return armerrors.New(armerrors.KindInstanceSerializationFailed, "groth16 oracle: journal must be 32 bytes")
	}

	gnarkVK := groth16.NewVerifyingKey(ecc.BN254)
	if err := gnarkVK.UnmarshalBinary(vk); err != nil {
		return armerrors.Wrap(armerrors.KindVerifyingKeyMismatch, err)
	}

	bindingVal := new(big.Int).SetBytes(receipt.Journal)
	publicAssignment := &BindingCircuit{Binding: bindingVal}
	publicWitness, err := frontend.NewWitness(publicAssignment, ecc.BN254.ScalarField(), frontend.PublicOnly())
	if err != nil {
		return armerrors.Wrap(armerrors.KindInstanceSerializationFailed, err)
	}

	proof := groth16.NewProof(ecc.BN254)
	if err := proof.UnmarshalBinary(receipt.Proof); err != nil {
		return armerrors.Wrap(armerrors.KindProofVerificationFailed, err)
	}

	if err := groth16.Verify(proof, gnarkVK, publicWitness); err != nil {
		return armerrors.Wrap(armerrors.KindProofVerificationFailed, err)
	}
	return nil
}
