package compliance

import (
	"context"
	"math/big"
	"testing"

	"github.com/anoma/arm-go/merklepath"
	"github.com/anoma/arm-go/resource"
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

func TestMinimalWitnessConstrain(t *testing.T) {
	ctx := context.Background()
	tree := merklepath.NewCommitmentTree(merklepath.NewInMemoryStore())
	if err := tree.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	nk := mustNK(t, 0x11)
	consumed := resource.Resource{
		LogicRef:     digestFrom(1),
		LabelRef:     digestFrom(2),
		Quantity:     50,
		ValueRef:     digestFrom(3),
		Nonce:        digestFrom(4),
		NKCommitment: nk.Commit(),
		RandSeed:     digestFrom(5),
	}
	pos, err := tree.Insert(ctx, consumed.Commitment())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	path, err := tree.PathTo(ctx, pos)
	if err != nil {
		t.Fatalf("PathTo: %v", err)
	}

	consumedNf, err := consumed.Nullifier(nk)
	if err != nil {
		t.Fatalf("Nullifier: %v", err)
	}

	created := resource.Resource{
		LogicRef:     digestFrom(1),
		LabelRef:     digestFrom(2),
		Quantity:     50,
		ValueRef:     digestFrom(6),
		Nonce:        consumedNf,
		NKCommitment: nk.Commit(),
		RandSeed:     digestFrom(7),
	}

	w := MinimalWitness{
		Consumed:     consumed,
		ConsumedNK:   nk,
		ConsumedPath: path,
		ConsumedRoot: tree.Root(),
		Created:      created,
		Rcv:          big.NewInt(99),
	}

	inst, err := w.Constrain()
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	if inst.Shape != ShapeMinimal {
		t.Fatalf("expected ShapeMinimal, got %s", inst.Shape)
	}
	if len(inst.ConsumedNullifiers) != 1 || inst.ConsumedNullifiers[0] != consumedNf {
		t.Fatalf("unexpected consumed nullifiers: %+v", inst.ConsumedNullifiers)
	}
}

func TestMinimalWitnessConstrainEphemeral(t *testing.T) {
	nk := mustNK(t, 0x55)
	consumed := resource.Resource{
		LogicRef:     digestFrom(1),
		LabelRef:     digestFrom(2),
		Quantity:     50,
		Nonce:        digestFrom(4),
		NKCommitment: nk.Commit(),
		RandSeed:     digestFrom(5),
		IsEphemeral:  true,
	}
	consumedNf, err := consumed.Nullifier(nk)
	if err != nil {
		t.Fatalf("Nullifier: %v", err)
	}

	created := resource.Resource{
		LogicRef:     digestFrom(1),
		LabelRef:     digestFrom(2),
		Quantity:     50,
		Nonce:        consumedNf,
		NKCommitment: nk.Commit(),
		RandSeed:     digestFrom(7),
	}

	w := MinimalWitness{
		Consumed: consumed,
		ConsumedNK: nk,
		// ConsumedPath is left zero-valued: an ephemeral consumed resource
		// never existed in the commitment tree, so it has no real path.
		ConsumedRoot:  digestFrom(0xee), // deliberately wrong; must be ignored
		EphemeralRoot: merklepath.InitialRoot(),
		Created:       created,
		Rcv:           big.NewInt(3),
	}

	inst, err := w.Constrain()
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	if inst.ConsumedRoot != merklepath.InitialRoot() {
		t.Fatalf("expected instance to report EphemeralRoot as the consumed root")
	}
}

func TestMinimalWitnessRejectsWrongNonce(t *testing.T) {
	ctx := context.Background()
	tree := merklepath.NewCommitmentTree(merklepath.NewInMemoryStore())
	if err := tree.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	nk := mustNK(t, 0x22)
	consumed := resource.Resource{
		LogicRef:     digestFrom(1),
		LabelRef:     digestFrom(2),
		Quantity:     10,
		NKCommitment: nk.Commit(),
		RandSeed:     digestFrom(5),
		Nonce:        digestFrom(9),
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
		LogicRef:     digestFrom(1),
		LabelRef:     digestFrom(2),
		Quantity:     10,
		NKCommitment: nk.Commit(),
		RandSeed:     digestFrom(7),
		Nonce:        digestFrom(123), // wrong: should equal consumed's nullifier
	}

	w := MinimalWitness{
		Consumed:     consumed,
		ConsumedNK:   nk,
		ConsumedPath: path,
		ConsumedRoot: tree.Root(),
		Created:      created,
		Rcv:          big.NewInt(1),
	}

	if _, err := w.Constrain(); err == nil {
		t.Fatalf("expected error for mismatched created nonce")
	}
}

func TestSigmabusWitnessConstrainAndVerify(t *testing.T) {
	ctx := context.Background()
	tree := merklepath.NewCommitmentTree(merklepath.NewInMemoryStore())
	if err := tree.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	nk := mustNK(t, 0x33)
	logicRef := digestFrom(1)
	labelRef := digestFrom(2)

	c1 := resource.Resource{
		LogicRef: logicRef, LabelRef: labelRef, Quantity: 30,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(10), Nonce: digestFrom(11),
	}
	c2 := resource.Resource{
		LogicRef: logicRef, LabelRef: labelRef, Quantity: 20,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(12), Nonce: digestFrom(13),
	}

	pos1, err := tree.Insert(ctx, c1.Commitment())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	pos2, err := tree.Insert(ctx, c2.Commitment())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	path1, err := tree.PathTo(ctx, pos1)
	if err != nil {
		t.Fatalf("PathTo: %v", err)
	}
	path2, err := tree.PathTo(ctx, pos2)
	if err != nil {
		t.Fatalf("PathTo: %v", err)
	}

	created := resource.Resource{
		LogicRef: logicRef, LabelRef: labelRef, Quantity: 50,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(14), Nonce: digestFrom(15),
	}

	w := SigmabusWitness{
		Consumed: []ConsumedEntry{
			{Resource: c1, NK: nk, Path: path1},
			{Resource: c2, NK: nk, Path: path2},
		},
		Created:      []resource.Resource{created},
		ConsumedRoot: tree.Root(),
		Rcv:          big.NewInt(7),
	}

	inst, err := w.Constrain()
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	if !inst.Verify() {
		t.Fatalf("sigmabus instance failed to verify its own proof")
	}
}

func TestSigmabusWitnessRejectsMixedKinds(t *testing.T) {
	ctx := context.Background()
	tree := merklepath.NewCommitmentTree(merklepath.NewInMemoryStore())
	if err := tree.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	nk := mustNK(t, 0x44)
	c1 := resource.Resource{
		LogicRef: digestFrom(1), LabelRef: digestFrom(2), Quantity: 10,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(20), Nonce: digestFrom(21),
	}
	c2 := resource.Resource{
		LogicRef: digestFrom(1), LabelRef: digestFrom(99), Quantity: 10,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(22), Nonce: digestFrom(23),
	}

	pos1, err := tree.Insert(ctx, c1.Commitment())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	pos2, err := tree.Insert(ctx, c2.Commitment())
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	path1, err := tree.PathTo(ctx, pos1)
	if err != nil {
		t.Fatalf("PathTo: %v", err)
	}
	path2, err := tree.PathTo(ctx, pos2)
	if err != nil {
		t.Fatalf("PathTo: %v", err)
	}

	w := SigmabusWitness{
		Consumed: []ConsumedEntry{
			{Resource: c1, NK: nk, Path: path1},
			{Resource: c2, NK: nk, Path: path2},
		},
		ConsumedRoot: tree.Root(),
		Rcv:          big.NewInt(1),
	}

	if _, err := w.Constrain(); err == nil {
		t.Fatalf("expected error for mixed resource kinds")
	}
}

func TestVariableWitnessConstrainAllEphemeral(t *testing.T) {
	nk := mustNK(t, 0x66)
	c1 := resource.Resource{
		LogicRef: digestFrom(1), LabelRef: digestFrom(2), Quantity: 10,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(30), Nonce: digestFrom(31),
		IsEphemeral: true,
	}
	c2 := resource.Resource{
		LogicRef: digestFrom(1), LabelRef: digestFrom(2), Quantity: 15,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(32), Nonce: digestFrom(33),
		IsEphemeral: true,
	}

	nf1, err := c1.Nullifier(nk)
	if err != nil {
		t.Fatalf("Nullifier: %v", err)
	}
	nf2, err := c2.Nullifier(nk)
	if err != nil {
		t.Fatalf("Nullifier: %v", err)
	}
	digest := consumedNullifiersDigest([]resource.Digest{nf1, nf2})

	created := resource.Resource{
		LogicRef: digestFrom(1), LabelRef: digestFrom(2), Quantity: 25,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(34), Nonce: resource.DeriveNonce(0, digest),
	}

	w := VariableWitness{
		Consumed: []ConsumedEntry{
			{Resource: c1, NK: nk},
			{Resource: c2, NK: nk},
		},
		Created:       []resource.Resource{created},
		ConsumedRoot:  digestFrom(0xee), // deliberately wrong; must be ignored
		EphemeralRoot: merklepath.InitialRoot(),
		Rcv:           big.NewInt(4),
	}

	inst, err := w.Constrain()
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	if inst.ConsumedRoot != merklepath.InitialRoot() {
		t.Fatalf("expected instance to report EphemeralRoot when every consumed entry is ephemeral")
	}
}

func TestSigmabusWitnessConstrainAllEphemeral(t *testing.T) {
	nk := mustNK(t, 0x77)
	logicRef := digestFrom(1)
	labelRef := digestFrom(2)

	c1 := resource.Resource{
		LogicRef: logicRef, LabelRef: labelRef, Quantity: 30,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(40), Nonce: digestFrom(41),
		IsEphemeral: true,
	}
	created := resource.Resource{
		LogicRef: logicRef, LabelRef: labelRef, Quantity: 30,
		NKCommitment: nk.Commit(), RandSeed: digestFrom(42), Nonce: digestFrom(43),
	}

	w := SigmabusWitness{
		Consumed:      []ConsumedEntry{{Resource: c1, NK: nk}},
		Created:       []resource.Resource{created},
		ConsumedRoot:  digestFrom(0xee), // deliberately wrong; must be ignored
		EphemeralRoot: merklepath.InitialRoot(),
		Rcv:           big.NewInt(5),
	}

	inst, err := w.Constrain()
	if err != nil {
		t.Fatalf("Constrain: %v", err)
	}
	if inst.ConsumedRoot != merklepath.InitialRoot() {
		t.Fatalf("expected instance to report EphemeralRoot when every consumed entry is ephemeral")
	}
	if !inst.Verify() {
		t.Fatalf("sigmabus instance failed to verify its own proof")
	}
}
