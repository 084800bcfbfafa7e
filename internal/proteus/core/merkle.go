package core

import (
	"fmt"
	"math/bits"

	"golang.org/x/sync/errgroup"
)

// parallelThreshold is the leaf count above which tree construction fans
// out across goroutines, mirroring the teacher's make_tree/make_tree_threaded
// split in spirit (original_source/stark/src/merkle.rs).
const parallelThreshold = 256

// MerkleTree stores 2N hashes breadth-first for N leaves: index 0 is
// unused, the root is at index 1, and leaf i lives at index N+i. This
// follows spec.md §3's literal data model rather than the ported source's
// storage-saving omission of the raw leaf layer; see DESIGN.md.
type MerkleTree struct {
	nodes     []Hash
	numLeaves int
}

// MakeTree builds a Merkle tree over leaves, whose count must be a power
// of two and at least 1.
func MakeTree(leaves []Hashable) (*MerkleTree, error) {
	n := len(leaves)
	if n == 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("core: leaf count must be a power of two, got %d", n)
	}

	nodes := make([]Hash, 2*n)
	if n >= parallelThreshold {
		if err := parallelFill(nodes, n, 0, n, func(i int) Hash { return leaves[i].Hash() }); err != nil {
			return nil, err
		}
	} else {
		for i, leaf := range leaves {
			nodes[n+i] = leaf.Hash()
		}
	}

	for lo := n / 2; lo >= 1; lo /= 2 {
		hi := lo * 2
		if hi-lo >= parallelThreshold {
			if err := parallelLayer(nodes, lo, hi); err != nil {
				return nil, err
			}
		} else {
			for i := lo; i < hi; i++ {
				nodes[i] = HashNode(nodes[2*i], nodes[2*i+1])
			}
		}
		if lo == 1 {
			break
		}
	}

	return &MerkleTree{nodes: nodes, numLeaves: n}, nil
}

// parallelFill hashes leaves[lo:hi] into nodes[offset+lo:offset+hi].
func parallelFill(nodes []Hash, offset, lo, hi int, leafHash func(int) Hash) error {
	var g errgroup.Group
	const chunk = 64
	for start := lo; start < hi; start += chunk {
		start := start
		end := start + chunk
		if end > hi {
			end = hi
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				nodes[offset+i] = leafHash(i)
			}
			return nil
		})
	}
	return g.Wait()
}

// parallelLayer hashes sibling pairs for nodes[lo:hi) from nodes[2*lo:2*hi).
func parallelLayer(nodes []Hash, lo, hi int) error {
	var g errgroup.Group
	const chunk = 64
	for start := lo; start < hi; start += chunk {
		start := start
		end := start + chunk
		if end > hi {
			end = hi
		}
		g.Go(func() error {
			for i := start; i < end; i++ {
				nodes[i] = HashNode(nodes[2*i], nodes[2*i+1])
			}
			return nil
		})
	}
	return g.Wait()
}

// Root returns the tree's root hash.
func (t *MerkleTree) Root() Hash { return t.nodes[1] }

// NumLeaves returns the number of leaves committed to.
func (t *MerkleTree) NumLeaves() int { return t.numLeaves }

// Leaf returns the stored hash of leaf i.
func (t *MerkleTree) Leaf(i int) Hash { return t.nodes[t.numLeaves+i] }

func log2(n int) int { return bits.Len(uint(n)) - 1 }

// known-bitmap bottom-up walk shared by Proof and DecommitmentSize. onEmit
// is called once per sibling node whose hash a decommitment must carry,
// with that node's index; the walk always runs up to the root.
func walkKnown(numLeaves int, indices []int, onEmit func(nodeIndex int)) {
	known := make([]bool, 2*numLeaves)
	for _, idx := range indices {
		known[numLeaves+idx] = true
	}
	depth := log2(numLeaves)
	for d := depth; d >= 1; d-- {
		lo := 1 << (d - 1)
		hi := 1 << d
		for i := lo; i < hi; i++ {
			left := known[2*i]
			right := known[2*i+1]
			switch {
			case left && !right:
				onEmit(2*i + 1)
			case right && !left:
				onEmit(2 * i)
			}
			known[i] = left || right
		}
	}
}

// Proof returns the ordered sibling decommitment for the given (sorted,
// deduplicated) leaf indices: leaf-level siblings first, then each upper
// layer left to right, with no entry emitted for a pair whose both
// members were requested. Ported from original_source/stark/src/merkle.rs
// proof(), adapted to this package's full-array tree representation (see
// DESIGN.md).
func (t *MerkleTree) Proof(indices []int) []Hash {
	var decommitment []Hash
	walkKnown(t.numLeaves, indices, func(nodeIndex int) {
		decommitment = append(decommitment, t.nodes[nodeIndex])
	})
	return decommitment
}

// DecommitmentSize computes len(Proof(indices)) without building the tree
// or the hash list, for pre-sizing proof buffers.
func DecommitmentSize(numLeaves int, indices []int) int {
	count := 0
	walkKnown(numLeaves, indices, func(int) { count++ })
	return count
}

// LeafEntry pairs a 0-indexed leaf position with its (already hashed or
// hashable) value, for Verify.
type LeafEntry struct {
	Index int
	Leaf  Hashable
}

type queueItem struct {
	nodeIndex int
	hash      Hash
}

// countPairs returns, for a queue sorted descending by nodeIndex, the
// positions i such that queue[i] and queue[i+1] are sibling leaves (i.e.
// queue[i].nodeIndex is odd and queue[i].nodeIndex-1 == queue[i+1].nodeIndex),
// ported from original_source/stark/src/merkle.rs count_pairs().
func countPairs(queue []queueItem) []int {
	var pairs []int
	for i := 0; i+1 < len(queue); i++ {
		if queue[i].nodeIndex%2 == 1 && queue[i].nodeIndex-1 == queue[i+1].nodeIndex {
			pairs = append(pairs, i)
		}
	}
	return pairs
}

func containsHash(hashes []Hash, h Hash) bool {
	for _, x := range hashes {
		if x == h {
			return true
		}
	}
	return false
}

// Verify checks that values (sorted ascending by Index) combine with
// decommitment to reconstruct root, given the tree's depth (log2 of the
// leaf count). Ported from original_source/stark/src/merkle.rs verify().
func Verify(root Hash, depth int, values []LeafEntry, decommitment []Hash) bool {
	if len(values) == 0 {
		return false
	}
	numLeaves := 1 << depth

	queue := make([]queueItem, 0, len(values))
	previousIndex := -1
	for i := len(values) - 1; i >= 0; i-- {
		leaf := values[i]
		h := leaf.Leaf.Hash()
		switch {
		case leaf.Index%2 == 1 || previousIndex != leaf.Index+1:
			queue = append(queue, queueItem{numLeaves + leaf.Index, h})
			previousIndex = leaf.Index
		case !containsHash(decommitment, h):
			queue = append(queue, queueItem{numLeaves + leaf.Index, h})
		}
	}

	consumed := 0
	for {
		if len(queue) == 1 && queue[0].nodeIndex == 1 {
			return consumed == len(decommitment) && queue[0].hash == root
		}

		pairs := countPairs(queue)

		var segment []Hash
		if consumed < len(decommitment) {
			segLen := len(queue) - 2*len(pairs)
			if consumed+segLen > len(decommitment) {
				return false
			}
			segment = decommitment[consumed : consumed+segLen]
			consumed += segLen
		}
		di := len(segment) - 1

		newQueue := make([]queueItem, 0, len(queue)/2+1)
		i := 0
		pairIdx := 0
		for i < len(queue) {
			if pairIdx < len(pairs) && i == pairs[pairIdx] {
				newQueue = append(newQueue, queueItem{
					nodeIndex: queue[i].nodeIndex / 2,
					hash:      HashNode(queue[i+1].hash, queue[i].hash),
				})
				i += 2
				pairIdx++
				continue
			}
			if di < 0 {
				return false
			}
			other := segment[di]
			di--
			var combined Hash
			if queue[i].nodeIndex%2 == 0 {
				combined = HashNode(queue[i].hash, other)
			} else {
				combined = HashNode(other, queue[i].hash)
			}
			newQueue = append(newQueue, queueItem{nodeIndex: queue[i].nodeIndex / 2, hash: combined})
			i++
		}
		if di != -1 {
			return false
		}
		queue = newQueue
	}
}

// Index is a 0-indexed breadth-first node address (root = 0), a standalone
// helper for generalized ancestor/descendant reasoning over tree
// positions. It is distinct from MerkleTree's 1-indexed node
// numbering (see DESIGN.md "Index numbering choice").
type Index int

// IndexFromDepthOffset returns the index of the node at the given depth
// (root = depth 0) and offset within that depth (0 = leftmost).
func IndexFromDepthOffset(depth, offset int) Index {
	return Index((1 << uint(depth)) - 1 + offset)
}

// Depth returns the node's depth (root = 0).
func (i Index) Depth() int {
	return log2(int(i) + 1)
}

// Offset returns the node's position within its depth, 0 = leftmost.
func (i Index) Offset() int {
	return int(i) - ((1 << uint(i.Depth())) - 1)
}

// IsRoot reports whether i is the root.
func (i Index) IsRoot() bool { return i == 0 }

// IsLeft reports whether i is a left child (odd in this 0-indexed scheme).
func (i Index) IsLeft() bool { return !i.IsRoot() && int(i)%2 == 1 }

// IsRight reports whether i is a right child.
func (i Index) IsRight() bool { return !i.IsRoot() && int(i)%2 == 0 }

// Parent returns i's parent; calling Parent on the root returns the root.
func (i Index) Parent() Index {
	if i.IsRoot() {
		return i
	}
	return Index((int(i) - 1) / 2)
}

// Sibling returns the other child of i's parent.
func (i Index) Sibling() Index {
	if i.IsLeft() {
		return i + 1
	}
	return i - 1
}

// LeftChild returns i's left child.
func (i Index) LeftChild() Index { return Index(2*int(i) + 1) }

// RightChild returns i's right child.
func (i Index) RightChild() Index { return Index(2*int(i) + 2) }

// AncestorOf reports whether other is reachable from i by repeated child
// steps. This method (along with DescendsFrom and LastCommonAncestor) is
// left as an empty stub in original_source/stark/src/merkle_tree/index.rs;
// per spec.md §9 it is derived here from the index numbering rather than
// ported: depth-align the deeper index upward via Parent, then compare.
func (i Index) AncestorOf(other Index) bool {
	if other.Depth() < i.Depth() {
		return false
	}
	cur := other
	for cur.Depth() > i.Depth() {
		cur = cur.Parent()
	}
	return cur == i
}

// DescendsFrom reports whether i is a descendant of ancestor.
func (i Index) DescendsFrom(ancestor Index) bool {
	return ancestor.AncestorOf(i)
}

// LastCommonAncestor returns the deepest index that is an ancestor of both
// a and b, derived the same way as AncestorOf: align depths, then climb
// both together until they coincide.
func LastCommonAncestor(a, b Index) Index {
	for a.Depth() > b.Depth() {
		a = a.Parent()
	}
	for b.Depth() > a.Depth() {
		b = b.Parent()
	}
	for a != b {
		a = a.Parent()
		b = b.Parent()
	}
	return a
}
