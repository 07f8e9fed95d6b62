package aggregation

import (
	"context"
	"math/big"
	"testing"

	"github.com/anoma/arm-go/action"
	"github.com/anoma/arm-go/compliance"
	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/logic"
	"github.com/anoma/arm-go/merklepath"
	"github.com/anoma/arm-go/resource"
	"github.com/anoma/arm-go/transaction"
	"github.com/anoma/arm-go/zkvm"
)

func digestFrom(b byte) resource.Digest {
	var d resource.Digest
	for i := range d {
		d[i] = b
	}
	return d
}

func mustNK(t *testing.T, b byte) resource.NullifierKey {
	t.Helper()
	buf := make([]byte, resource.DigestSize)
	for i := range buf {
		buf[i] = b
	}
	nk, err := resource.NewNullifierKey(buf)
	if err != nil {
		t.Fatalf("NewNullifierKey: %v", err)
	}
	return nk
}

// buildSigmabusTransaction builds one single-action transaction whose
// compliance unit is the sigmabus shape, with trivial-logic proofs for
// every resource, so its action carries a non-nil Sigmabus field for
// aggregation to batch-verify.
func buildSigmabusTransaction(t *testing.T, ctx context.Context, oracle zkvm.Oracle, seed byte, rcv int64) transaction.Transaction {
	t.Helper()
	tree := merklepath.NewCommitmentTree(merklepath.NewInMemoryStore())
	if err := tree.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	nk := mustNK(t, seed)
	logicRef, labelRef := digestFrom(1), digestFrom(2)
	consumed := resource.Resource{
		LogicRef: logicRef, LabelRef: labelRef, Quantity: 30,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(seed + 1), Nonce: digestFrom(seed + 2),
	}
	pos, err := tree.Insert(ctx, consumed.Commitment())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	path, err := tree.PathTo(ctx, pos)
	if err != nil {
		t.Fatalf("PathTo: %v", err)
	}
	created := resource.Resource{
		LogicRef: logicRef, LabelRef: labelRef, Quantity: 30,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(seed + 3), Nonce: digestFrom(seed + 4),
	}

	w := compliance.SigmabusWitness{
		Consumed:     []compliance.ConsumedEntry{{Resource: consumed, NK: nk, Path: path}},
		Created:      []resource.Resource{created},
		ConsumedRoot: tree.Root(),
		Rcv:          big.NewInt(rcv),
	}
	inst, err := w.Constrain()
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}

	compliancePK, complianceVK := zkvm.MemoryKeyPair([]byte{seed, 0xc0})
	binding := inst.Instance.Binding()
	witness := append(append([]byte{}, binding[:]...), binding[:]...)
	receipt, err := oracle.Prove(ctx, compliancePK, witness)
	if err != nil {
		t.Fatalf("compliance Prove: %v", err)
	}

	logicPK, logicVK := zkvm.MemoryKeyPair(logicRef[:])
	tl := logic.NewTrivialLogic(oracle, logicPK, logicVK)

	consumedNf := inst.ConsumedNullifiers[0]
	createdCommitment := inst.CreatedCommitments[0]
	tags := []resource.Digest{consumedNf, createdCommitment}
	tagTree, err := merklepath.BuildActionTree(tags)
	if err != nil {
		t.Fatalf("BuildActionTree: %v", err)
	}
	root := tagTree.Root()

	consumedProof, err := tl.Prove(ctx, logic.VerifierInputs{Tag: consumedNf, IsConsumed: true, ActionTreeRoot: root})
	if err != nil {
		t.Fatalf("Prove consumed logic: %v", err)
	}
	createdProof, err := tl.Prove(ctx, logic.VerifierInputs{Tag: createdCommitment, IsConsumed: false, ActionTreeRoot: root})
	if err != nil {
		t.Fatalf("Prove created logic: %v", err)
	}

	act := action.Action{
		Compliance:      inst.Instance,
		ComplianceProof: compliance.Proof{VerifyingKey: complianceVK, Receipt: receipt},
		Logics: []action.ResourceLogic{
			{Tag: consumedNf, IsConsumed: true, Proof: consumedProof},
			{Tag: createdCommitment, IsConsumed: false, Proof: createdProof},
		},
		Sigmabus: inst,
	}

	tx := transaction.Transaction{Actions: []action.Action{act}, ExpectedBalance: curve.Identity()}
	if err := tx.GenerateDeltaProof(big.NewInt(rcv)); err != nil {
		t.Fatalf("GenerateDeltaProof: %v", err)
	}
	return tx
}

func TestBatchVerifySigmabusAcrossTransactions(t *testing.T) {
	ctx := context.Background()
	oracle := zkvm.NewMemoryOracle()

	tx1 := buildSigmabusTransaction(t, ctx, oracle, 0x60, 13)
	tx2 := buildSigmabusTransaction(t, ctx, oracle, 0x70, 17)

	v := Verifiers{Compliance: compliance.NewVerifier(oracle), Logic: logic.NewVerifier(oracle)}
	if err := (Batch{}).Verify(ctx, []transaction.Transaction{tx1, tx2}, v); err != nil {
		t.Fatalf("Batch.Verify: %v", err)
	}
}

func TestSequentialVerifySigmabusAcrossTransactions(t *testing.T) {
	ctx := context.Background()
	oracle := zkvm.NewMemoryOracle()

	tx1 := buildSigmabusTransaction(t, ctx, oracle, 0x80, 21)
	tx2 := buildSigmabusTransaction(t, ctx, oracle, 0x90, 29)

	v := Verifiers{Compliance: compliance.NewVerifier(oracle), Logic: logic.NewVerifier(oracle)}
	if err := (Sequential{}).Verify(ctx, []transaction.Transaction{tx1, tx2}, v); err != nil {
		t.Fatalf("Sequential.Verify: %v", err)
	}
}

func TestBatchVerifyDetectsTamperedSigmabusProof(t *testing.T) {
	ctx := context.Background()
	oracle := zkvm.NewMemoryOracle()

	tx1 := buildSigmabusTransaction(t, ctx, oracle, 0xa0, 3)
	tx1.Actions[0].Sigmabus.Proof.Zv.Add(tx1.Actions[0].Sigmabus.Proof.Zv, big.NewInt(1))

	v := Verifiers{Compliance: compliance.NewVerifier(oracle), Logic: logic.NewVerifier(oracle)}
	if err := (Batch{}).Verify(ctx, []transaction.Transaction{tx1}, v); err == nil {
		t.Fatalf("expected Batch.Verify to reject a tampered sigmabus proof")
	}
}
