package core

import (
	"testing"

	"github.com/holiman/uint256"
)

// plainBytes encodes fe's residue as a 32-byte big-endian integer, with no
// Montgomery multiplier — the convention original_source/stark/src/merkle.rs
// uses for its `U256`-valued leaves (Hashable over the raw integer, not a
// field element's wire encoding).
func plainBytes(fe *FieldElement) [32]byte {
	var u uint256.Int
	u.SetFromBig(fe.Big())
	return u.Bytes32()
}

// TestMerkleTreeVector reproduces the 64-leaf commitment vector named in
// spec.md §8: leaves valued (i+10)^3 for i in [0, 64), committed to under
// this package's masked-Keccak node hash, decommitted at indices
// {1, 11, 14}.
func TestMerkleTreeVector(t *testing.T) {
	const n = 64
	leaves := make([]Hashable, n)
	for i := 0; i < n; i++ {
		fe := DefaultField.NewElementFromUint64(uint64(i + 10)).Pow(3)
		b := plainBytes(fe)
		leaves[i] = BytesHashable(b[:])
	}

	tree, err := MakeTree(leaves)
	if err != nil {
		t.Fatalf("MakeTree: %v", err)
	}

	const wantRoot = "fd112f44bc944f33e2567f86eea202350913b11c000000000000000000000000"
	if got := tree.Root().String(); got != wantRoot {
		t.Fatalf("root = %s, want %s", got, wantRoot)
	}

	indices := []int{1, 11, 14}
	proof := tree.Proof(indices)

	values := make([]LeafEntry, len(indices))
	for i, idx := range indices {
		values[i] = LeafEntry{Index: idx, Leaf: leaves[idx]}
	}

	if !Verify(tree.Root(), log2(n), values, proof) {
		t.Fatal("decommitment did not verify against the committed root")
	}

	if got := DecommitmentSize(n, indices); got != len(proof) {
		t.Fatalf("DecommitmentSize(indices, n) = %d, want len(proof) = %d", got, len(proof))
	}

	// Substituting any revealed leaf value must cause rejection.
	tampered := append([]LeafEntry(nil), values...)
	badFe := DefaultField.NewElementFromUint64(999).Pow(3)
	badBytes := plainBytes(badFe)
	tampered[0] = LeafEntry{Index: values[0].Index, Leaf: BytesHashable(badBytes[:])}
	if Verify(tree.Root(), log2(n), tampered, proof) {
		t.Fatal("verification accepted a tampered leaf value")
	}

	// Substituting the root must also cause rejection.
	wrongRoot := tree.Root()
	wrongRoot[0] ^= 0xff
	if Verify(wrongRoot, log2(n), values, proof) {
		t.Fatal("verification accepted a wrong root")
	}
}

func TestMerkleSingleLeafTree(t *testing.T) {
	leaf := BytesHashable([]byte("only leaf"))
	tree, err := MakeTree([]Hashable{leaf})
	if err != nil {
		t.Fatalf("MakeTree: %v", err)
	}
	if tree.Root() != leaf.Hash() {
		t.Fatal("single-leaf tree's root must equal the leaf's own hash")
	}
	proof := tree.Proof([]int{0})
	if len(proof) != 0 {
		t.Fatalf("a fully-known single-leaf tree needs no decommitment, got %d entries", len(proof))
	}
}

func TestMakeTreeRejectsNonPowerOfTwo(t *testing.T) {
	leaves := make([]Hashable, 3)
	for i := range leaves {
		leaves[i] = BytesHashable([]byte{byte(i)})
	}
	if _, err := MakeTree(leaves); err == nil {
		t.Fatal("expected an error for a non-power-of-two leaf count")
	}
}
