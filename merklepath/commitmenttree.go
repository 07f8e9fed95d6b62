package merklepath

import (
	"context"
	"sync"

	"github.com/anoma/arm-go/armerrors"
	"github.com/anoma/arm-go/resource"
)

// CommitmentTreeDepth is the fixed depth of the system-wide commitment
// tree: every resource ever created occupies one of its 2^32 leaves.
const CommitmentTreeDepth = 32

// Store defines the interface for commitment tree persistence. A
// Postgres-backed implementation lives in the store package; InMemoryStore
// below is the in-process stand-in used by tests.
type Store interface {
	GetNode(ctx context.Context, level, index uint64) (resource.Digest, error)
	SetNode(ctx context.Context, level, index uint64, hash resource.Digest) error
	GetRoot(ctx context.Context) (resource.Digest, error)
	SetRoot(ctx context.Context, root resource.Digest) error
	GetSize(ctx context.Context) (uint64, error)
	SetSize(ctx context.Context, size uint64) error
}

// ErrTreeFull is returned by Insert once the tree has reached its maximum
// capacity of 2^CommitmentTreeDepth leaves.
var ErrTreeFull = armerrors.New(armerrors.KindInvalidMerklePath, "commitment tree is full")

// ErrInvalidPosition is returned when a requested leaf position is beyond
// the tree's current size.
var ErrInvalidPosition = armerrors.New(armerrors.KindInvalidMerklePath, "invalid leaf position")

// CommitmentTree is a depth-32 append-only Merkle tree over resource
// commitments, backed by a Store for the actual node data.
type CommitmentTree struct {
	mu    sync.RWMutex
	depth int
	size  uint64
	root  resource.Digest
	store Store

	emptyCache []resource.Digest // emptyCache[level] = hash of an empty subtree rooted at that level
}

// NewCommitmentTree constructs a CommitmentTree of CommitmentTreeDepth
// backed by store.
func NewCommitmentTree(store Store) *CommitmentTree {
	ct := &CommitmentTree{depth: CommitmentTreeDepth, store: store}
	ct.emptyCache = computeEmptyCache(ct.depth)
	ct.root = ct.emptyCache[ct.depth]
	return ct
}

// computeEmptyCache precomputes the hash of an empty subtree at every level
// 0..depth, level 0 being the all-zero leaf digest.
func computeEmptyCache(depth int) []resource.Digest {
	cache := make([]resource.Digest, depth+1)
	cache[0] = resource.Digest{}
	for level := 1; level <= depth; level++ {
		cache[level] = hashPair(cache[level-1], cache[level-1])
	}
	return cache
}

// InitialRoot is the root of a commitment tree with no leaves inserted.
func InitialRoot() resource.Digest {
	cache := computeEmptyCache(CommitmentTreeDepth)
	return cache[CommitmentTreeDepth]
}

// Initialize loads the tree's root and size from the backing store. A
// store with no prior state (GetRoot fails or returns the all-zero digest)
// yields the empty tree.
func (ct *CommitmentTree) Initialize(ctx context.Context) error {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	root, err := ct.store.GetRoot(ctx)
	if err != nil || root == (resource.Digest{}) {
		ct.root = ct.emptyCache[ct.depth]
		ct.size = 0
		return nil
	}
	ct.root = root

	size, err := ct.store.GetSize(ctx)
	if err != nil {
		ct.size = 0
	} else {
		ct.size = size
	}
	return nil
}

// Insert appends a new commitment and returns the leaf position it was
// assigned.
func (ct *CommitmentTree) Insert(ctx context.Context, commitment resource.Digest) (uint64, error) {
	ct.mu.Lock()
	defer ct.mu.Unlock()

	maxLeaves := uint64(1) << ct.depth
	if ct.size >= maxLeaves {
		return 0, ErrTreeFull
	}

	position := ct.size
	ct.size++

	if err := ct.store.SetNode(ctx, 0, position, commitment); err != nil {
		ct.size--
		return 0, err
	}

	current := commitment
	index := position
	for level := 0; level < ct.depth; level++ {
		siblingIndex := index ^ 1
		sibling, err := ct.store.GetNode(ctx, uint64(level), siblingIndex)
		if err != nil {
			sibling = ct.emptyCache[level]
		}

		var parent resource.Digest
		if index%2 == 0 {
			parent = hashPair(current, sibling)
		} else {
			parent = hashPair(sibling, current)
		}

		index /= 2
		current = parent
		if err := ct.store.SetNode(ctx, uint64(level+1), index, current); err != nil {
			return 0, err
		}
	}

	ct.root = current
	if err := ct.store.SetRoot(ctx, ct.root); err != nil {
		return 0, err
	}
	if err := ct.store.SetSize(ctx, ct.size); err != nil {
		return 0, err
	}
	return position, nil
}

// Root returns the tree's current root.
func (ct *CommitmentTree) Root() resource.Digest {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.root
}

// Size returns the number of commitments inserted so far.
func (ct *CommitmentTree) Size() uint64 {
	ct.mu.RLock()
	defer ct.mu.RUnlock()
	return ct.size
}

// PathTo returns the Merkle path for the leaf at position.
func (ct *CommitmentTree) PathTo(ctx context.Context, position uint64) (Path, error) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	if position >= ct.size {
		return Path{}, ErrInvalidPosition
	}

	siblings := make([]resource.Digest, ct.depth)
	bits := make([]bool, ct.depth)

	index := position
	for level := 0; level < ct.depth; level++ {
		siblingIndex := index ^ 1
		sibling, err := ct.store.GetNode(ctx, uint64(level), siblingIndex)
		if err != nil {
			sibling = ct.emptyCache[level]
		}
		siblings[level] = sibling
		bits[level] = index%2 == 1
		index /= 2
	}

	return Path{Siblings: siblings, PathBits: bits, LeafPosition: position}, nil
}

// Contains reports whether commitment has been inserted, and at what
// position. It is a linear scan over the store's leaf level; callers that
// need this on a hot path should maintain their own index.
func (ct *CommitmentTree) Contains(ctx context.Context, commitment resource.Digest) (bool, uint64, error) {
	ct.mu.RLock()
	defer ct.mu.RUnlock()

	for i := uint64(0); i < ct.size; i++ {
		leaf, err := ct.store.GetNode(ctx, 0, i)
		if err != nil {
			continue
		}
		if leaf == commitment {
			return true, i, nil
		}
	}
	return false, 0, nil
}

// InMemoryStore is a map-backed Store used by tests and by callers that do
// not need commitments to survive process restarts.
type InMemoryStore struct {
	mu    sync.RWMutex
	nodes map[uint64]map[uint64]resource.Digest
	root  resource.Digest
	size  uint64
}

// NewInMemoryStore constructs an empty InMemoryStore.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{nodes: make(map[uint64]map[uint64]resource.Digest)}
}

var errNodeNotFound = armerrors.New(armerrors.KindTagNotFound, "merkle node not found")

func (s *InMemoryStore) GetNode(ctx context.Context, level, index uint64) (resource.Digest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	levelMap, ok := s.nodes[level]
	if !ok {
		return resource.Digest{}, errNodeNotFound
	}
	h, ok := levelMap[index]
	if !ok {
		return resource.Digest{}, errNodeNotFound
	}
	return h, nil
}

func (s *InMemoryStore) SetNode(ctx context.Context, level, index uint64, hash resource.Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.nodes[level] == nil {
		s.nodes[level] = make(map[uint64]resource.Digest)
	}
	s.nodes[level][index] = hash
	return nil
}

func (s *InMemoryStore) GetRoot(ctx context.Context) (resource.Digest, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.root, nil
}

func (s *InMemoryStore) SetRoot(ctx context.Context, root resource.Digest) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.root = root
	return nil
}

func (s *InMemoryStore) GetSize(ctx context.Context) (uint64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.size, nil
}

func (s *InMemoryStore) SetSize(ctx context.Context, size uint64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.size = size
	return nil
}
