// Package channel implements the Fiat-Shamir transcript: a sponge-like
// byte buffer shared symmetrically between the prover and verifier, with
// helpers to squeeze field elements, query indices, and proof-of-work
// seeds. Grounded on the teacher's utils/channel.go Channel type (a single
// running-hash state updated by Send/Receive calls), generalized to the
// symmetric ProverChannel/VerifierChannel split spec.md §4.7 requires and
// switched from "hash the whole accumulated state each step" to an
// explicit running sponge absorbed incrementally, since the teacher's
// Send/ReceiveRandomInt both rehash starting from c.state every call,
// which this package folds into one WriteBytes/squeeze primitive per
// spec.md §9's "route every externally visible byte through a single
// function" invariant.
package channel

import (
	"encoding/binary"
	"fmt"
	"math/big"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

// ErrTranscriptExhausted is returned by VerifierChannel.ReadBytes when the
// underlying proof buffer has no more bytes to read.
type ErrTranscriptExhausted struct {
	Requested, Remaining int
}

func (e *ErrTranscriptExhausted) Error() string {
	return fmt.Sprintf("channel: transcript exhausted: requested %d bytes, %d remaining", e.Requested, e.Remaining)
}

// sponge is the shared absorb/squeeze core both channel halves wrap.
type sponge struct {
	hashFn core.HashFunction
	state  core.Hash
	digest []byte // buffered squeeze output not yet consumed
}

func newSponge(hashFn core.HashFunction) *sponge {
	return &sponge{hashFn: hashFn}
}

// absorb mixes data into the running state and invalidates any buffered
// squeeze output, so that every absorb changes subsequent randomness.
func (s *sponge) absorb(data []byte) {
	s.state = core.SpongeHash(s.hashFn, append(s.state.Bytes(), data...))
	s.digest = nil
}

// squeezeBytes returns n pseudorandom bytes derived from the current
// state, advancing an internal counter so repeated squeezes without
// intervening absorbs yield distinct output.
func (s *sponge) squeezeBytes(n int) []byte {
	out := make([]byte, 0, n)
	counter := uint64(0)
	for len(out) < n {
		var ctrBytes [8]byte
		binary.BigEndian.PutUint64(ctrBytes[:], counter)
		block := core.SpongeHash(s.hashFn, append(s.state.Bytes(), ctrBytes[:]...))
		out = append(out, block.Bytes()...)
		counter++
	}
	// Squeezing also evolves the state, so the same bytes are never
	// produced twice even across calls.
	s.state = core.SpongeHash(s.hashFn, append(s.state.Bytes(), out...))
	return out[:n]
}

// ProverChannel owns the outbound proof byte-stream under construction and
// the sponge absorbing it.
type ProverChannel struct {
	sponge *sponge
	proof  []byte
}

// NewProverChannel creates an empty prover channel using the given
// transcript hash function.
func NewProverChannel(hashFn core.HashFunction) *ProverChannel {
	return &ProverChannel{sponge: newSponge(hashFn)}
}

// WriteBytes appends b to both the proof stream and the sponge. This is
// the single function through which every externally visible byte must
// pass, per spec.md §9.
func (c *ProverChannel) WriteBytes(b []byte) {
	c.proof = append(c.proof, b...)
	c.sponge.absorb(b)
}

// WriteFieldElement writes a field element's canonical 32-byte encoding.
func (c *ProverChannel) WriteFieldElement(fe *core.FieldElement) {
	b := fe.Bytes()
	c.WriteBytes(b[:])
}

// WriteHash writes a 32-byte digest (e.g. a Merkle root).
func (c *ProverChannel) WriteHash(h core.Hash) {
	c.WriteBytes(h.Bytes())
}

// Proof returns the accumulated proof byte-stream.
func (c *ProverChannel) Proof() []byte { return append([]byte(nil), c.proof...) }

// GetRandomFieldElement squeezes a uniformly distributed field element via
// rejection sampling over the sponge's wide output.
func (c *ProverChannel) GetRandomFieldElement(field *core.Field) *core.FieldElement {
	return rejectionSampleFieldElement(c.sponge, field)
}

// GetRandomFieldElements squeezes n random field elements.
func (c *ProverChannel) GetRandomFieldElements(field *core.Field, n int) []*core.FieldElement {
	out := make([]*core.FieldElement, n)
	for i := range out {
		out[i] = c.GetRandomFieldElement(field)
	}
	return out
}

// GetRandomQueryIndex squeezes a query index uniformly in [0, domainSize)
// via rejection sampling.
func (c *ProverChannel) GetRandomQueryIndex(domainSize int) int {
	return rejectionSampleIndex(c.sponge, domainSize)
}

// GetRandomQueryIndices squeezes n distinct query indices in [0, domainSize).
func (c *ProverChannel) GetRandomQueryIndices(domainSize, n int) []int {
	return distinctIndices(c.sponge, domainSize, n)
}

// GetPoWSeed squeezes the byte string the proof-of-work grinding puzzle is
// seeded with.
func (c *ProverChannel) GetPoWSeed() []byte {
	return c.sponge.squeezeBytes(32)
}

// VerifierChannel consumes a proof byte-stream in the same order the
// prover wrote it, absorbing each read as it happens so its squeezes stay
// in lockstep with the prover's.
type VerifierChannel struct {
	sponge *sponge
	proof  []byte
	cursor int
}

// NewVerifierChannel wraps a received proof byte-stream for replay.
func NewVerifierChannel(hashFn core.HashFunction, proof []byte) *VerifierChannel {
	return &VerifierChannel{sponge: newSponge(hashFn), proof: proof}
}

// ReadBytes consumes and absorbs the next n bytes of the proof stream.
func (c *VerifierChannel) ReadBytes(n int) ([]byte, error) {
	if c.cursor+n > len(c.proof) {
		return nil, &ErrTranscriptExhausted{Requested: n, Remaining: len(c.proof) - c.cursor}
	}
	b := c.proof[c.cursor : c.cursor+n]
	c.cursor += n
	c.sponge.absorb(b)
	return b, nil
}

// ReadFieldElement reads and absorbs a canonical 32-byte field element.
func (c *VerifierChannel) ReadFieldElement(field *core.Field) (*core.FieldElement, error) {
	b, err := c.ReadBytes(32)
	if err != nil {
		return nil, err
	}
	var arr [32]byte
	copy(arr[:], b)
	return field.FromBytes(arr)
}

// ReadHash reads and absorbs a 32-byte digest.
func (c *VerifierChannel) ReadHash() (core.Hash, error) {
	b, err := c.ReadBytes(32)
	if err != nil {
		return core.Hash{}, err
	}
	var h core.Hash
	copy(h[:], b)
	return h, nil
}

// Remaining reports how many unread bytes are left in the proof.
func (c *VerifierChannel) Remaining() int { return len(c.proof) - c.cursor }

// GetRandomFieldElement squeezes the same value the prover's corresponding
// call produced, provided all prior writes/reads matched.
func (c *VerifierChannel) GetRandomFieldElement(field *core.Field) *core.FieldElement {
	return rejectionSampleFieldElement(c.sponge, field)
}

func (c *VerifierChannel) GetRandomFieldElements(field *core.Field, n int) []*core.FieldElement {
	out := make([]*core.FieldElement, n)
	for i := range out {
		out[i] = c.GetRandomFieldElement(field)
	}
	return out
}

func (c *VerifierChannel) GetRandomQueryIndex(domainSize int) int {
	return rejectionSampleIndex(c.sponge, domainSize)
}

func (c *VerifierChannel) GetRandomQueryIndices(domainSize, n int) []int {
	return distinctIndices(c.sponge, domainSize, n)
}

func (c *VerifierChannel) GetPoWSeed() []byte {
	return c.sponge.squeezeBytes(32)
}

// rejectionSampleFieldElement squeezes 32-byte blocks until one reduces to
// a value less than the field's modulus without wraparound bias, matching
// the teacher's ReceiveRandomInt range-sampling intent but avoiding its
// mod-based bias by rejecting out-of-range draws instead.
func rejectionSampleFieldElement(s *sponge, field *core.Field) *core.FieldElement {
	modulus := field.Modulus()
	for {
		b := s.squeezeBytes(32)
		v := new(big.Int).SetBytes(b)
		if v.Cmp(modulus) < 0 {
			return field.NewElement(v)
		}
	}
}

// rejectionSampleIndex squeezes bytes until one yields an unbiased index
// in [0, domainSize).
func rejectionSampleIndex(s *sponge, domainSize int) int {
	if domainSize <= 0 {
		return 0
	}
	bound := big.NewInt(int64(domainSize))
	// Reject draws in the final partial range [floor(2^256/domainSize)*domainSize, 2^256)
	// to remove modulo bias.
	limit := new(big.Int).Lsh(big.NewInt(1), 256)
	limit.Div(limit, bound)
	limit.Mul(limit, bound)
	for {
		b := s.squeezeBytes(32)
		v := new(big.Int).SetBytes(b)
		if v.Cmp(limit) < 0 {
			return int(new(big.Int).Mod(v, bound).Int64())
		}
	}
}

// distinctIndices draws n distinct indices in [0, domainSize) in squeeze
// order, skipping repeats.
func distinctIndices(s *sponge, domainSize, n int) []int {
	seen := make(map[int]bool, n)
	out := make([]int, 0, n)
	for len(out) < n {
		idx := rejectionSampleIndex(s, domainSize)
		if seen[idx] {
			continue
		}
		seen[idx] = true
		out = append(out, idx)
	}
	return out
}
