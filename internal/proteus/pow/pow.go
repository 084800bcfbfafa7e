// Package pow implements the transcript-seeded grinding puzzle: find a
// 64-bit nonce whose masked-Keccak hash with the seed has at least
// difficulty leading zero bits. Grounded on spec.md §4.8; the masked hash
// itself is core.HashBytes (core/hash.go), shared with Merkle leaf hashing.
package pow

import (
	"encoding/binary"
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

// Search finds the smallest nonce such that hash(seed || nonce) has at
// least difficulty leading zero bits, scanning nonces from 0 upward.
// Difficulty 0 always succeeds immediately with nonce 0.
func Search(seed []byte, difficulty uint8) uint64 {
	if difficulty == 0 {
		return 0
	}
	for nonce := uint64(0); ; nonce++ {
		if Check(seed, difficulty, nonce) {
			return nonce
		}
	}
}

// Check reports whether nonce solves the grinding puzzle for seed and
// difficulty.
func Check(seed []byte, difficulty uint8, nonce uint64) bool {
	return leadingZeroBits(digest(seed, nonce)) >= int(difficulty)
}

func digest(seed []byte, nonce uint64) core.Hash {
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	return core.HashBytes(append(append([]byte(nil), seed...), nonceBytes[:]...))
}

func leadingZeroBits(h core.Hash) int {
	count := 0
	for _, b := range h {
		if b == 0 {
			count += 8
			continue
		}
		for mask := byte(0x80); mask != 0; mask >>= 1 {
			if b&mask != 0 {
				return count
			}
			count++
		}
	}
	return count
}

// Verify checks a proof-supplied nonce, returning an error the verifier
// can surface as ProofOfWorkFailed.
func Verify(seed []byte, difficulty uint8, nonce uint64) error {
	if !Check(seed, difficulty, nonce) {
		return fmt.Errorf("pow: nonce %d does not meet difficulty %d", nonce, difficulty)
	}
	return nil
}
