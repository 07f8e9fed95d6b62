package delta

import (
	"math/big"
	"testing"

	"github.com/anoma/arm-go/curve"
	"github.com/anoma/arm-go/resource"
)

func TestProveVerifyRoundTrip(t *testing.T) {
	rcv := big.NewInt(123456789)
	deltaPoint := curve.ScalarBaseMult(rcv)

	tags := [][]resource.Digest{{resource.Digest{1, 2, 3}, resource.Digest{4, 5, 6}}}
	msg := Msg(tags)

	proof, err := Prove(rcv, msg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}
	if err := Verify(deltaPoint, msg, proof); err != nil {
		t.Fatalf("Verify rejected a valid delta proof: %v", err)
	}
}

func TestVerifyRejectsWrongDelta(t *testing.T) {
	rcv := big.NewInt(42)
	msg := Msg([][]resource.Digest{{resource.Digest{7}}})
	proof, err := Prove(rcv, msg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	wrongDelta := curve.ScalarBaseMult(big.NewInt(43))
	if err := Verify(wrongDelta, msg, proof); err == nil {
		t.Fatalf("expected Verify to reject a mismatched delta")
	}
}

func TestVerifyRejectsWrongMessage(t *testing.T) {
	rcv := big.NewInt(42)
	deltaPoint := curve.ScalarBaseMult(rcv)
	msg := Msg([][]resource.Digest{{resource.Digest{7}}})
	proof, err := Prove(rcv, msg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	otherMsg := Msg([][]resource.Digest{{resource.Digest{8}}})
	if err := Verify(deltaPoint, otherMsg, proof); err == nil {
		t.Fatalf("expected Verify to reject a proof over a different message")
	}
}

func TestComposeSumsDeltas(t *testing.T) {
	a := curve.ScalarBaseMult(big.NewInt(5))
	b := curve.ScalarBaseMult(big.NewInt(7))
	got := Compose([]curve.Point{a, b})
	want := curve.ScalarBaseMult(big.NewInt(12))
	if !curve.Equal(got, want) {
		t.Fatalf("Compose did not sum points correctly")
	}
}

func TestEthereumVRSRoundTrip(t *testing.T) {
	rcv := big.NewInt(99999)
	msg := Msg([][]resource.Digest{{resource.Digest{9, 9}}})
	proof, err := Prove(rcv, msg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	vrs, err := ToEthereumVRS(proof)
	if err != nil {
		t.Fatalf("ToEthereumVRS: %v", err)
	}
	back := FromEthereumVRS(vrs)
	if len(back) != len(proof) {
		t.Fatalf("round-tripped proof has wrong length")
	}
	for i := range proof {
		if proof[i] != back[i] {
			t.Fatalf("round-tripped proof differs at byte %d", i)
		}
	}
}

func TestCheckCanonicalRejectsHighRecoveryID(t *testing.T) {
	rcv := big.NewInt(123456789)
	msg := Msg([][]resource.Digest{{resource.Digest{1, 2, 3}}})
	proof, err := Prove(rcv, msg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	tampered := append(Proof(nil), proof...)
	tampered[0] += 2 // bump the recovery id past maxRecoveryID
	if err := checkCanonical(tampered); err == nil {
		t.Fatalf("expected checkCanonical to reject a proof with recovery id > 1")
	}
}

func TestVerifyRejectsHighRecoveryID(t *testing.T) {
	rcv := big.NewInt(123456789)
	deltaPoint := curve.ScalarBaseMult(rcv)
	msg := Msg([][]resource.Digest{{resource.Digest{1, 2, 3}}})
	proof, err := Prove(rcv, msg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	tampered := append(Proof(nil), proof...)
	tampered[0] += 2
	if err := Verify(deltaPoint, msg, tampered); err == nil {
		t.Fatalf("expected Verify to reject a proof with recovery id > 1")
	}
}

func TestVerifyRejectsHighS(t *testing.T) {
	rcv := big.NewInt(123456789)
	deltaPoint := curve.ScalarBaseMult(rcv)
	msg := Msg([][]resource.Digest{{resource.Digest{1, 2, 3}}})
	proof, err := Prove(rcv, msg)
	if err != nil {
		t.Fatalf("Prove: %v", err)
	}

	s := new(big.Int).SetBytes(proof[33:65])
	highS := new(big.Int).Sub(curve.Order(), s)
	if highS.Cmp(halfOrder()) <= 0 {
		t.Fatalf("test setup error: flipped s is not actually in the upper half of the order")
	}

	tampered := append(Proof(nil), proof...)
	sBytes := highS.FillBytes(make([]byte, 32))
	copy(tampered[33:65], sBytes)
	if err := Verify(deltaPoint, msg, tampered); err == nil {
		t.Fatalf("expected Verify to reject a proof whose s is in the upper half of the curve order")
	}
}

func TestMsgDeterministicAndOrderSensitive(t *testing.T) {
	tags1 := [][]resource.Digest{{resource.Digest{1}, resource.Digest{2}}}
	tags2 := [][]resource.Digest{{resource.Digest{2}, resource.Digest{1}}}
	if Msg(tags1) == Msg(tags2) {
		t.Fatalf("Msg should be sensitive to tag order")
	}
	if Msg(tags1) != Msg(tags1) {
		t.Fatalf("Msg is not deterministic")
	}
}
