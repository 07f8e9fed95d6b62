// Package merklepath implements the two fixed-depth Merkle trees ARM relies
// on: each action's small 4-deep action tree over its resource tags, and the
// system-wide 32-deep commitment tree over every created resource's
// commitment.
package merklepath

import (
	"crypto/sha256"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/resource"
)

// Path is a root-path from a leaf to the root of a fixed-depth binary
// Merkle tree: one sibling hash and one left/right bit per level.
type Path struct {
	// Siblings are the sibling hashes along the path, leaf to root.
	Siblings []resource.Digest
	// PathBits indicates, per level, whether the current node is the right
	// child (true) or the left child (false) of its parent.
	PathBits []bool
	// LeafPosition is the leaf's index within the tree.
	LeafPosition uint64
}

// hashPair hashes two sibling digests together to produce their parent.
func hashPair(left, right resource.Digest) resource.Digest {
	h := sha256.New()
	h.Write(left[:])
	h.Write(right[:])
	var out resource.Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Root recomputes the root a leaf and its path would produce.
func (p Path) Root(leaf resource.Digest, depth int) (resource.Digest, error) {
	if len(p.Siblings) != depth || len(p.PathBits) != depth {
		return resource.Digest{}, armerrors.New(armerrors.KindInvalidMerklePath,
			"path length does not match tree depth")
	}
	current := leaf
	for i := 0; i < depth; i++ {
		if p.PathBits[i] {
			current = hashPair(p.Siblings[i], current)
		} else {
			current = hashPair(current, p.Siblings[i])
		}
	}
	return current, nil
}

// Verify reports whether leaf and p reproduce expectedRoot under a tree of
// the given depth.
func (p Path) Verify(leaf resource.Digest, expectedRoot resource.Digest, depth int) bool {
	root, err := p.Root(leaf, depth)
	if err != nil {
		return false
	}
	return root == expectedRoot
}
