// Package protocol implements the end-to-end prover/verifier state
// machine (spec.md §4.10): trace commitment, constraint sampling,
// composition commitment, OODS, DEEP composition, FRI, proof-of-work, and
// queries. Grounded on the teacher's utils/config.go (ProofParams'
// fluent With*/Validate shape) and protocols/stark.go (phase
// orchestration), adapted to the DSL/FRI packages built for this system.
package protocol

import "fmt"

// Params mirrors spec.md §6's ProofParams: blowup_log2, pow_bits, queries,
// fri_layout. Grounded on the teacher's Config type (utils/config.go),
// whose fluent With* builder style this keeps.
type Params struct {
	BlowupLog2 uint8
	PowBits    uint8
	Queries    uint16
	FriLayout  []uint8
}

// DefaultParams returns a reasonable starting configuration (blowup 16,
// no grinding, 20 queries, folding by 3 then 2s), matching the teacher's
// pattern of a Default()-like constructor alongside fluent overrides.
func DefaultParams() Params {
	return Params{BlowupLog2: 4, PowBits: 0, Queries: 20, FriLayout: []uint8{3, 2}}
}

// WithBlowup returns a copy of p with BlowupLog2 set.
func (p Params) WithBlowup(log2 uint8) Params { p.BlowupLog2 = log2; return p }

// WithPoWBits returns a copy of p with PowBits set.
func (p Params) WithPoWBits(bits uint8) Params { p.PowBits = bits; return p }

// WithQueries returns a copy of p with Queries set.
func (p Params) WithQueries(n uint16) Params { p.Queries = n; return p }

// WithFriLayout returns a copy of p with FriLayout set.
func (p Params) WithFriLayout(layout []uint8) Params {
	p.FriLayout = append([]uint8(nil), layout...)
	return p
}

// Clone returns a deep copy of p.
func (p Params) Clone() Params {
	return Params{BlowupLog2: p.BlowupLog2, PowBits: p.PowBits, Queries: p.Queries, FriLayout: append([]uint8(nil), p.FriLayout...)}
}

// Validate checks p's internal consistency against a trace length:
// fri_layout's sum plus the final layer's log2 size must equal
// blowup_log2 + log2(trace_len).
func (p Params) Validate(traceLen int) error {
	if p.PowBits > 40 {
		return fmt.Errorf("protocol: pow_bits %d exceeds the 0-40 range", p.PowBits)
	}
	if p.Queries == 0 {
		return fmt.Errorf("protocol: queries must be positive")
	}
	traceLog2 := log2(traceLen)
	if 1<<uint(traceLog2) != traceLen {
		return fmt.Errorf("protocol: trace_len must be a power of two, got %d", traceLen)
	}
	total := int(p.BlowupLog2) + traceLog2
	foldSum := 0
	for _, k := range p.FriLayout {
		foldSum += int(k)
	}
	if foldSum > total {
		return fmt.Errorf("protocol: fri_layout sum %d exceeds available domain log2 %d", foldSum, total)
	}
	return nil
}

// FinalLayerSize returns the fully-folded FRI layer's size given a trace
// length.
func (p Params) FinalLayerSize(traceLen int) int {
	total := int(p.BlowupLog2) + log2(traceLen)
	foldSum := 0
	for _, k := range p.FriLayout {
		foldSum += int(k)
	}
	return 1 << uint(total-foldSum)
}

// FriSchedule converts FriLayout to the []int the fri package expects.
func (p Params) FriSchedule() []int {
	out := make([]int, len(p.FriLayout))
	for i, k := range p.FriLayout {
		out[i] = int(k)
	}
	return out
}

// DecommitmentSizeUpperBound estimates the number of hashes the proof's
// decommitment sections will contain, for pre-sizing buffers: each
// committed layer (trace + composition parts + FRI layers) contributes
// roughly queries * log2(layer size) sibling hashes in the worst case
// (no shared-index savings), which is a safe over-estimate given
// core.DecommitmentSize's dedup is index-pattern-dependent.
func (p Params) DecommitmentSizeUpperBound(traceLen, numColumns, numCompositionParts int) int {
	traceLog2 := log2(traceLen)
	lde := traceLog2 + int(p.BlowupLog2)
	perQuery := lde * (numColumns + numCompositionParts)

	domainLog2 := lde
	for _, k := range p.FriLayout {
		perQuery += domainLog2
		domainLog2 -= int(k)
	}
	return int(p.Queries) * perQuery
}

func log2(n int) int {
	b := 0
	for (1 << uint(b)) < n {
		b++
	}
	return b
}
