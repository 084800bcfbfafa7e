package proteus

import (
	"github.com/0xProject/starkcrypto/internal/proteus/constraints"
	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/dsl"
	"github.com/0xProject/starkcrypto/internal/proteus/protocol"
	"github.com/0xProject/starkcrypto/internal/proteus/trace"
)

// FieldElement is an element of the proof system's 252-bit prime field.
// This is the public type used throughout proteus for trace values,
// constants, and claim data.
type FieldElement = core.FieldElement

// Field is the finite field FieldElement values belong to.
type Field = core.Field

// DefaultField is the 252-bit STARK-friendly prime field every proof in
// this package is built over.
var DefaultField = core.DefaultField

// Expr is a node in the rational-expression constraint DSL (spec.md §4.4):
// a small algebra of X, trace-column lookups, constants, periodic
// polynomials, claim-polynomial references, and the usual arithmetic
// operators, closed under Component's structural rewrites.
type Expr = dsl.Expr

// TraceTable is the rectangular execution trace a claim is proved
// against: rows a power of two, at least one column.
type TraceTable = trace.Table

// Constraint pairs a rational expression with a diagnostic name.
type Constraint = constraints.Constraint

// Constraints is a validated set of constraints over a fixed trace shape.
type Constraints = constraints.Constraints

// Proof is the prover's output byte-stream.
type Proof = protocol.Proof

// Params configures the prover/verifier: LDE blowup factor, proof-of-work
// grinding difficulty, query count, and the FRI folding schedule.
// Grounded on the teacher's Config type (utils/config.go) and this
// package's protocol.Params, which this simply re-exports with the
// teacher's fluent With*/Clone/Validate treatment intact.
type Params = protocol.Params

// DefaultParams returns a reasonable starting configuration: blowup 16,
// no grinding, 20 queries, folding by 3 then 2.
func DefaultParams() Params { return protocol.DefaultParams() }

// NewTraceTable allocates a zero-filled trace table with the given shape.
func NewTraceTable(field *Field, numRows, numColumns int) (*TraceTable, error) {
	return trace.NewTable(field, numRows, numColumns)
}

// NewConstraints validates and wraps a constraint list for a trace of the
// given shape, against the degree bound the blowup factor allows.
func NewConstraints(numColumns, numRows, blowupLog2 int, claimBytes []byte, list []Constraint) (*Constraints, error) {
	cs, err := constraints.New(numColumns, numRows, blowupLog2, claimBytes, list)
	if err != nil {
		return nil, wrapError(err)
	}
	return cs, nil
}

// WithClaim attaches a ClaimPolynomial resolver to cs, for constraint
// sets that reference public-input-dependent values by index rather than
// by a baked-in constant.
func WithClaim(cs *Constraints, resolve dsl.ClaimLookup) *Constraints {
	cs.Claim = resolve
	return cs
}
