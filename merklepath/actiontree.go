package merklepath

import (
	"bytes"
	"crypto/sha256"
	"sort"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/resource"
)

// ActionTreeDepth is the fixed depth of an action's own Merkle tree: up to
// 2^ActionTreeDepth = 16 resource tags (nullifiers and commitments) per
// action.
const ActionTreeDepth = 4

// ActionTreeMaxLeaves is the maximum number of tags a single action tree
// can hold.
const ActionTreeMaxLeaves = 1 << ActionTreeDepth

// paddingLeafDST seeds the canonical padding leaf used to fill unused
// action tree slots up to ActionTreeMaxLeaves.
const paddingLeafDST = "ARM_ACTION_TREE_PADDING_LEAF"

// PaddingLeaf is the fixed digest used to pad an action tree whose action
// has fewer than ActionTreeMaxLeaves tags.
func PaddingLeaf() resource.Digest {
	h := sha256.Sum256([]byte(paddingLeafDST))
	return resource.Digest(h)
}

// ActionTree is the small, fully in-memory Merkle tree built fresh for
// every action from its sorted resource tags.
type ActionTree struct {
	leaves []resource.Digest
	nodes  [][]resource.Digest // nodes[0] is the leaf level, nodes[depth] is {root}
}

// BuildActionTree sorts tags into canonical order, pads them with
// PaddingLeaf up to ActionTreeMaxLeaves, and builds the fixed-depth tree
// over them. Canonical sorting makes the tree root independent of the
// order resources were supplied in.
func BuildActionTree(tags []resource.Digest) (*ActionTree, error) {
	if len(tags) > ActionTreeMaxLeaves {
		return nil, armerrors.New(armerrors.KindInvalidMerklePath,
			"action has more tags than the action tree can hold")
	}

	leaves := make([]resource.Digest, len(tags))
	copy(leaves, tags)
	sort.Slice(leaves, func(i, j int) bool {
		return bytes.Compare(leaves[i][:], leaves[j][:]) < 0
	})

	padding := PaddingLeaf()
	for len(leaves) < ActionTreeMaxLeaves {
		leaves = append(leaves, padding)
	}

	nodes := make([][]resource.Digest, ActionTreeDepth+1)
	nodes[0] = leaves
	for level := 0; level < ActionTreeDepth; level++ {
		cur := nodes[level]
		next := make([]resource.Digest, len(cur)/2)
		for i := range next {
			next[i] = hashPair(cur[2*i], cur[2*i+1])
		}
		nodes[level+1] = next
	}

	return &ActionTree{leaves: leaves, nodes: nodes}, nil
}

// Root returns the action tree's root digest.
func (t *ActionTree) Root() resource.Digest {
	return t.nodes[ActionTreeDepth][0]
}

// PathTo returns the Merkle path for the leaf holding tag, and reports
// whether tag was found among the tree's (possibly padding) leaves.
func (t *ActionTree) PathTo(tag resource.Digest) (Path, bool) {
	index := -1
	for i, leaf := range t.leaves {
		if leaf == tag {
			index = i
			break
		}
	}
	if index < 0 {
		return Path{}, false
	}

	siblings := make([]resource.Digest, ActionTreeDepth)
	bits := make([]bool, ActionTreeDepth)
	idx := uint64(index)
	for level := 0; level < ActionTreeDepth; level++ {
		siblingIdx := idx ^ 1
		siblings[level] = t.nodes[level][siblingIdx]
		bits[level] = idx%2 == 1
		idx /= 2
	}

	return Path{Siblings: siblings, PathBits: bits, LeafPosition: uint64(index)}, true
}
