package core

import (
	"crypto/sha256"

	"github.com/zeebo/blake3"
	"golang.org/x/crypto/sha3"
)

// Hash is a 32-byte digest. Values produced by maskedKeccak (and thus by
// HashBytes, HashNode, and every Merkle leaf/node hash) always have their
// last 12 bytes, [20:32] (the low 96 bits in big-endian interpretation) zeroed, per
// spec.md §4.1. Values produced by SpongeHash's sha256/blake3 backends are
// NOT masked this way; those backends are an alternate transcript-hash
// choice, never used for Merkle commitments.
type Hash [32]byte

// Bytes returns the digest bytes.
func (h Hash) Bytes() []byte { return h[:] }

// String renders the digest as lowercase hex.
func (h Hash) String() string {
	const hextable = "0123456789abcdef"
	out := make([]byte, 64)
	for i, b := range h {
		out[i*2] = hextable[b>>4]
		out[i*2+1] = hextable[b&0xf]
	}
	return string(out)
}

// Hashable is implemented by anything that can be committed to a Merkle
// tree leaf or absorbed into a transcript.
type Hashable interface {
	Hash() Hash
}

// maskedKeccak computes Keccak256(data) with bytes [20:32] zeroed, per
// spec.md §4.1.
func maskedKeccak(data ...[]byte) Hash {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	var out Hash
	copy(out[:], h.Sum(nil))
	for i := 20; i < 32; i++ {
		out[i] = 0
	}
	return out
}

// HashBytes computes the masked hash of raw bytes.
func HashBytes(data []byte) Hash { return maskedKeccak(data) }

// HashNode computes the two-child Merkle node hash: hash(left || right).
func HashNode(left, right Hash) Hash {
	return maskedKeccak(left[:], right[:])
}

// BytesHashable wraps a raw byte slice so it implements Hashable.
type BytesHashable []byte

// Hash implements Hashable.
func (b BytesHashable) Hash() Hash { return HashBytes(b) }

// HashFunction names an alternate channel-absorption hash, matching the
// teacher's Config.HashFunction enum (utils/config.go), extended with a
// blake3 option (SPEC_FULL.md §4.1 [EXPANSION]). Merkle leaf/node hashing
// always uses maskedKeccak regardless of this setting.
type HashFunction string

const (
	HashKeccak HashFunction = "sha3"
	HashSHA256 HashFunction = "sha256"
	HashBlake3 HashFunction = "blake3"
)

// SpongeHash hashes data using the named transcript hash function, falling
// back to masked Keccak256 for an empty/unknown name.
func SpongeHash(fn HashFunction, data []byte) Hash {
	switch fn {
	case HashBlake3:
		sum := blake3.Sum256(data)
		return Hash(sum)
	case HashSHA256:
		sum := sha256.Sum256(data)
		return Hash(sum)
	case HashKeccak, "":
		return maskedKeccak(data)
	default:
		return maskedKeccak(data)
	}
}
