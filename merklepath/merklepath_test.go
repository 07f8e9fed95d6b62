package merklepath

import (
	"context"
	"testing"

	"github.com/anoma/arm-go/resource"
)

func digestFrom(b byte) resource.Digest {
	var d resource.Digest
	for i := range d {
		d[i] = b
	}
	return d
}

func TestCommitmentTreeInsertAndVerify(t *testing.T) {
	ctx := context.Background()
	store := NewInMemoryStore()
	tree := NewCommitmentTree(store)
	if err := tree.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}

	if got := tree.Root(); got != InitialRoot() {
		t.Fatalf("empty tree root mismatch: got %s want %s", got, InitialRoot())
	}

	c1 := digestFrom(1)
	pos, err := tree.Insert(ctx, c1)
	if err != nil {
		t.Fatalf("Insert: %v", err)
	}
	if pos != 0 {
		t.Fatalf("expected first position 0, got %d", pos)
	}

	path, err := tree.PathTo(ctx, pos)
	if err != nil {
		t.Fatalf("PathTo: %v", err)
	}
	if !path.Verify(c1, tree.Root(), CommitmentTreeDepth) {
		t.Fatalf("path does not verify against tree root")
	}
}

func TestCommitmentTreeRootChangesOnInsert(t *testing.T) {
	ctx := context.Background()
	tree := NewCommitmentTree(NewInMemoryStore())
	if err := tree.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	before := tree.Root()
	if _, err := tree.Insert(ctx, digestFrom(7)); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	after := tree.Root()
	if before == after {
		t.Fatalf("root did not change after insert")
	}
}

func TestCommitmentTreeContains(t *testing.T) {
	ctx := context.Background()
	tree := NewCommitmentTree(NewInMemoryStore())
	if err := tree.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	c := digestFrom(3)
	if _, err := tree.Insert(ctx, c); err != nil {
		t.Fatalf("Insert: %v", err)
	}
	found, pos, err := tree.Contains(ctx, c)
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if !found || pos != 0 {
		t.Fatalf("expected commitment found at position 0, got found=%v pos=%d", found, pos)
	}

	found, _, err = tree.Contains(ctx, digestFrom(99))
	if err != nil {
		t.Fatalf("Contains: %v", err)
	}
	if found {
		t.Fatalf("unexpected commitment found")
	}
}

func TestActionTreePaddingAndOrder(t *testing.T) {
	tags := []resource.Digest{digestFrom(5), digestFrom(2), digestFrom(9)}
	tree, err := BuildActionTree(tags)
	if err != nil {
		t.Fatalf("BuildActionTree: %v", err)
	}
	if len(tree.leaves) != ActionTreeMaxLeaves {
		t.Fatalf("expected %d leaves, got %d", ActionTreeMaxLeaves, len(tree.leaves))
	}
	sorted := []resource.Digest{digestFrom(2), digestFrom(5), digestFrom(9)}
	for i, want := range sorted {
		if tree.leaves[i] != want {
			t.Fatalf("leaf %d is not in sorted order", i)
		}
	}
	for i := 3; i < ActionTreeMaxLeaves; i++ {
		if tree.leaves[i] != PaddingLeaf() {
			t.Fatalf("leaf %d is not the padding leaf", i)
		}
	}
}

func TestActionTreeRootOrderIndependent(t *testing.T) {
	tagsA := []resource.Digest{digestFrom(5), digestFrom(2), digestFrom(9)}
	tagsB := []resource.Digest{digestFrom(9), digestFrom(5), digestFrom(2)}

	treeA, err := BuildActionTree(tagsA)
	if err != nil {
		t.Fatalf("BuildActionTree: %v", err)
	}
	treeB, err := BuildActionTree(tagsB)
	if err != nil {
		t.Fatalf("BuildActionTree: %v", err)
	}
	if treeA.Root() != treeB.Root() {
		t.Fatalf("action tree root depends on input order")
	}
}

func TestActionTreePathVerifies(t *testing.T) {
	tag := digestFrom(42)
	tags := []resource.Digest{digestFrom(1), tag, digestFrom(3)}
	tree, err := BuildActionTree(tags)
	if err != nil {
		t.Fatalf("BuildActionTree: %v", err)
	}
	path, ok := tree.PathTo(tag)
	if !ok {
		t.Fatalf("expected to find path for tag")
	}
	if !path.Verify(tag, tree.Root(), ActionTreeDepth) {
		t.Fatalf("action tree path does not verify")
	}
}

func TestActionTreeRejectsTooManyTags(t *testing.T) {
	tags := make([]resource.Digest, ActionTreeMaxLeaves+1)
	for i := range tags {
		tags[i] = digestFrom(byte(i))
	}
	if _, err := BuildActionTree(tags); err == nil {
		t.Fatalf("expected error for too many tags")
	}
}
