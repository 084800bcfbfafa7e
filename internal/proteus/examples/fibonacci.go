// Package examples carries a single worked claim, a two-term Fibonacci
// recurrence, used throughout this repository's tests and the public
// package's doc example as the simplest claim that exercises every phase
// of the protocol: two boundary constraints, one transition constraint
// excluded from its first two rows, and a claimed final value resolved
// through the DSL's ClaimPolynomial node. It is a fixture, not a virtual
// machine: spec.md keeps witness generation for specific applications
// (Fibonacci, Pedersen Merkle, STARKDEX) out of scope, and this package
// stays within that boundary by exposing exactly one claim shape.
package examples

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/component"
	"github.com/0xProject/starkcrypto/internal/proteus/constraints"
	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/dsl"
	"github.com/0xProject/starkcrypto/internal/proteus/trace"
)

// Claim is the public statement a Fibonacci proof attests to: starting
// from SeedA, SeedB, the TraceLen-th term of the recurrence
// a(i) = a(i-1) + a(i-2) equals FinalValue.
type Claim struct {
	TraceLen   int
	SeedA      *core.FieldElement
	SeedB      *core.FieldElement
	FinalValue *core.FieldElement
}

// Bytes encodes the claim as the public input absorbed into the
// transcript ahead of any prover-controlled commitment, per spec.md
// §4.10's ClaimAbsorb phase.
func (c *Claim) Bytes() []byte {
	out := make([]byte, 0, 32*3+8)
	seedA := c.SeedA.Bytes()
	seedB := c.SeedB.Bytes()
	final := c.FinalValue.Bytes()
	out = append(out, byte(c.TraceLen>>24), byte(c.TraceLen>>16), byte(c.TraceLen>>8), byte(c.TraceLen))
	out = append(out, seedA[:]...)
	out = append(out, seedB[:]...)
	out = append(out, final[:]...)
	return out
}

// lookup resolves the single ClaimPolynomial node this fixture's
// constraints use (index 0, subindex 0) to the claim's final value,
// ignoring the inner expression's value since the claim carries no
// further structure for this fixture.
func (c *Claim) lookup(idx, subidx int, _ *core.FieldElement) (*core.FieldElement, error) {
	if idx != 0 || subidx != 0 {
		return nil, fmt.Errorf("examples: fibonacci claim has no polynomial at (%d, %d)", idx, subidx)
	}
	return c.FinalValue, nil
}

// Witness builds the single-column trace table for the recurrence seeded
// by seedA, seedB, together with the claim it attests to. traceLen must
// be a power of two, at least 4 (so the transition constraint's excluded
// rows 0 and 1 leave at least two constrained rows).
func Witness(field *core.Field, traceLen int, seedA, seedB uint64) (*trace.Table, *Claim, error) {
	if traceLen < 4 || traceLen&(traceLen-1) != 0 {
		return nil, nil, fmt.Errorf("examples: trace_len must be a power of two >= 4, got %d", traceLen)
	}

	tr, err := trace.NewTable(field, traceLen, 1)
	if err != nil {
		return nil, nil, err
	}

	a := field.NewElementFromUint64(seedA)
	b := field.NewElementFromUint64(seedB)
	tr.Set(0, 0, a)
	tr.Set(1, 0, b)
	for row := 2; row < traceLen; row++ {
		next := a.Add(b)
		tr.Set(row, 0, next)
		a, b = b, next
	}

	claim := &Claim{
		TraceLen:   traceLen,
		SeedA:      field.NewElementFromUint64(seedA),
		SeedB:      field.NewElementFromUint64(seedB),
		FinalValue: tr.Get(traceLen-1, 0),
	}
	return tr, claim, nil
}

// Constraints builds the constraint set for a Fibonacci claim over a
// trace of claim.TraceLen rows, at the given LDE blowup factor. Grounded
// on the boundary/transition split original_source/crypto/stark/examples
// demonstrates for a similarly-shaped recurrence claim, and on
// original_source/crypto/stark/examples/claim_polynomial.rs for routing
// the claimed final value through a ClaimPolynomial node rather than a
// baked-in constant, so the fixture exercises that DSL path.
func Constraints(field *core.Field, claim *Claim, blowupLog2 int) (*constraints.Constraints, error) {
	n := claim.TraceLen
	generator, err := field.PrimitiveRootOfUnity(n)
	if err != nil {
		return nil, err
	}
	one := field.One()
	x := dsl.X()

	// boundary@0: column 0's first row equals the seed.
	boundaryStart := constraints.Constraint{
		Name: "fibonacci.boundary.start",
		Expr: dsl.Trace(0, 0).Sub(dsl.Constant(claim.SeedA)).Div(x.Sub(dsl.Constant(one))),
	}
	// boundary@1: column 0's second row equals the second seed.
	boundaryNext := constraints.Constraint{
		Name: "fibonacci.boundary.next",
		Expr: dsl.Trace(0, 0).Sub(dsl.Constant(claim.SeedB)).Div(x.Sub(dsl.Constant(generator))),
	}

	// transition, excluded from rows 0 and 1: row i's value equals the
	// sum of the two preceding rows. The raw difference vanishes on every
	// row but the first two (where offset -1/-2 wrap around to garbage
	// rows n-1, n-2), so dividing by the vanishing polynomial of every
	// row except {0, 1} yields a polynomial of the uniform target degree
	// once lifted, exactly as spec.md §4.5's degree-adjustment step
	// expects.
	zUnrestricted := x.Pow(uint64(n)).Sub(dsl.Constant(one))
	excludeFirstTwo := x.Sub(dsl.Constant(one)).Mul(x.Sub(dsl.Constant(generator)))
	transitionDivisor := zUnrestricted.Div(excludeFirstTwo)
	transition := constraints.Constraint{
		Name: "fibonacci.transition",
		Expr: dsl.Trace(0, 0).Sub(dsl.Trace(0, -1)).Sub(dsl.Trace(0, -2)).Div(transitionDivisor),
	}

	// boundary@last: the final row equals the publicly claimed value,
	// resolved through the claim lookup rather than a baked-in constant.
	lastPoint := generator.Pow(uint64(n - 1))
	claimedFinal := dsl.ClaimPolynomial(0, 0, dsl.Constant(one))
	boundaryFinal := constraints.Constraint{
		Name: "fibonacci.boundary.final",
		Expr: dsl.Trace(0, 0).Sub(claimedFinal).Div(x.Sub(dsl.Constant(lastPoint))),
	}

	cons := []constraints.Constraint{boundaryStart, boundaryNext, transition, boundaryFinal}

	cs, err := constraints.New(1, n, blowupLog2, claim.Bytes(), cons)
	if err != nil {
		return nil, err
	}
	cs.Claim = claim.lookup
	return cs, nil
}

// Build assembles a Fibonacci claim as a component.Component (spec.md
// §4.11's Trace/Constraints/Labels triple, with "start", "next", and
// "final" labels over column 0, mirroring component.Example's label
// naming), and, alongside it, the Constraints set ready for Prove/Verify.
// The Component's own constraint list is expression-only (no names, no
// claim resolution): routing it through Constraints above is what attaches
// diagnostic names, the degree bound, and the ClaimPolynomial lookup
// protocol.Prove/Verify require.
func Build(field *core.Field, traceLen int, seedA, seedB uint64, blowupLog2 int) (*component.Component, *Claim, *constraints.Constraints, error) {
	tr, claim, err := Witness(field, traceLen, seedA, seedB)
	if err != nil {
		return nil, nil, nil, err
	}
	cs, err := Constraints(field, claim, blowupLog2)
	if err != nil {
		return nil, nil, nil, err
	}

	comp := &component.Component{
		Field: field,
		Trace: tr,
		Labels: map[string]component.Label{
			"start": {Row: 0, Expr: dsl.Trace(0, 0)},
			"next":  {Row: 1, Expr: dsl.Trace(0, 0)},
			"final": {Row: traceLen - 1, Expr: dsl.Trace(0, 0)},
		},
	}
	for _, c := range cs.List {
		comp.Constraints = append(comp.Constraints, c.Expr)
	}

	return comp, claim, cs, nil
}
