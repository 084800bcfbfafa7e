// Package dsl implements the rational-expression constraint language:
// a small algebraic AST evaluated over trace column polynomials, generators
// of the trace domain, and out-of-domain sample points. Grounded on the
// RationalExpression DSL demonstrated in
// original_source/crypto/stark/examples/claim_polynomial.rs and
// original_source/crypto/stark/src/component/mod.rs, which pattern-match
// over the same tagged variants (X, Trace, Constant, ClaimPolynomial,
// arithmetic, Pow) to rewrite constraints under component operations.
package dsl

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

// Kind tags the variant of a RationalExpression node.
type Kind int

const (
	KindX Kind = iota
	KindConstant
	KindTrace
	KindClaimPolynomial
	KindPeriodic
	KindNeg
	KindAdd
	KindSub
	KindMul
	KindDiv
	KindPow
)

// Expr is a node in the rational-expression AST. Only the fields relevant
// to Kind are populated; this mirrors the teacher's preference for a small
// number of explicit tagged-variant types over an interface hierarchy (see
// the RationalExpression enum's usage above).
type Expr struct {
	Kind Kind

	// KindConstant
	Constant *core.FieldElement

	// KindTrace
	Column int
	Offset int

	// KindClaimPolynomial
	ClaimIndex    int
	ClaimSubindex int

	// KindPeriodic
	PeriodicCoeffs []*core.FieldElement

	// KindNeg, KindPow
	Arg *Expr
	Exp uint64

	// KindAdd, KindSub, KindMul, KindDiv
	Left, Right *Expr
}

// X is the DSL's free variable.
func X() *Expr { return &Expr{Kind: KindX} }

// Constant wraps a field element as a leaf expression.
func Constant(fe *core.FieldElement) *Expr { return &Expr{Kind: KindConstant, Constant: fe} }

// Trace references column col at row offset (relative to the current
// evaluation row, wrapping modulo trace_len).
func Trace(col, offset int) *Expr { return &Expr{Kind: KindTrace, Column: col, Offset: offset} }

// ClaimPolynomial references the idx-th claim polynomial's subidx-th
// coefficient block, evaluated via inner.
func ClaimPolynomial(idx, subidx int, inner *Expr) *Expr {
	return &Expr{Kind: KindClaimPolynomial, ClaimIndex: idx, ClaimSubindex: subidx, Arg: inner}
}

// Periodic denotes a polynomial in X^(trace_len/len(coeffs)) built from
// coeffs, repeating every len(coeffs) rows.
func Periodic(coeffs []*core.FieldElement) *Expr {
	return &Expr{Kind: KindPeriodic, PeriodicCoeffs: append([]*core.FieldElement(nil), coeffs...)}
}

func (e *Expr) Neg() *Expr          { return &Expr{Kind: KindNeg, Arg: e} }
func (e *Expr) Add(other *Expr) *Expr { return &Expr{Kind: KindAdd, Left: e, Right: other} }
func (e *Expr) Sub(other *Expr) *Expr { return &Expr{Kind: KindSub, Left: e, Right: other} }
func (e *Expr) Mul(other *Expr) *Expr { return &Expr{Kind: KindMul, Left: e, Right: other} }
func (e *Expr) Div(other *Expr) *Expr { return &Expr{Kind: KindDiv, Left: e, Right: other} }
func (e *Expr) Pow(exp uint64) *Expr   { return &Expr{Kind: KindPow, Arg: e, Exp: exp} }

// TraceLookup resolves a column at a point: Eval calls it as
// Trace(col, ctx.X) for every Trace node, whatever the node's row offset.
type TraceLookup func(col int, x *core.FieldElement) (*core.FieldElement, error)

// ClaimLookup resolves a ClaimPolynomial(idx, subidx, inner) node to a
// polynomial evaluation, given the already-evaluated inner expression.
type ClaimLookup func(idx, subidx int, innerValue *core.FieldElement) (*core.FieldElement, error)

// EvalContext bundles the external data Eval needs beyond the expression
// tree itself: the field, the point x, a trace column evaluator, and a
// claim-polynomial resolver. Eval does not apply a Trace node's row
// offset: every Trace node is looked up at ctx.X. The constraint
// compiler, component checks and OODS evaluation resolve offsets with
// their own evaluators.
type EvalContext struct {
	Field    *core.Field
	X        *core.FieldElement
	TraceLen int
	Trace    TraceLookup
	Claim    ClaimLookup
}

// Eval recursively evaluates the expression at ctx.X.
func (e *Expr) Eval(ctx *EvalContext) (*core.FieldElement, error) {
	switch e.Kind {
	case KindX:
		return ctx.X, nil
	case KindConstant:
		return e.Constant, nil
	case KindTrace:
		if ctx.Trace == nil {
			return nil, fmt.Errorf("dsl: no trace lookup bound for Trace(%d, %d)", e.Column, e.Offset)
		}
		return ctx.Trace(e.Column, ctx.X)
	case KindPeriodic:
		if ctx.TraceLen == 0 {
			return nil, fmt.Errorf("dsl: EvalContext.TraceLen must be set to evaluate a Periodic node")
		}
		poly, err := core.NewPeriodicPolynomial(ctx.Field, e.PeriodicCoeffs, ctx.TraceLen)
		if err != nil {
			return nil, err
		}
		return poly.Evaluate(ctx.X), nil
	case KindClaimPolynomial:
		inner, err := e.Arg.Eval(ctx)
		if err != nil {
			return nil, err
		}
		if ctx.Claim == nil {
			return nil, fmt.Errorf("dsl: no claim lookup bound for ClaimPolynomial(%d, %d)", e.ClaimIndex, e.ClaimSubindex)
		}
		return ctx.Claim(e.ClaimIndex, e.ClaimSubindex, inner)
	case KindNeg:
		v, err := e.Arg.Eval(ctx)
		if err != nil {
			return nil, err
		}
		return v.Neg(), nil
	case KindAdd:
		l, err := e.Left.Eval(ctx)
		if err != nil {
			return nil, err
		}
		r, err := e.Right.Eval(ctx)
		if err != nil {
			return nil, err
		}
		return l.Add(r), nil
	case KindSub:
		l, err := e.Left.Eval(ctx)
		if err != nil {
			return nil, err
		}
		r, err := e.Right.Eval(ctx)
		if err != nil {
			return nil, err
		}
		return l.Sub(r), nil
	case KindMul:
		l, err := e.Left.Eval(ctx)
		if err != nil {
			return nil, err
		}
		r, err := e.Right.Eval(ctx)
		if err != nil {
			return nil, err
		}
		return l.Mul(r), nil
	case KindDiv:
		l, err := e.Left.Eval(ctx)
		if err != nil {
			return nil, err
		}
		r, err := e.Right.Eval(ctx)
		if err != nil {
			return nil, err
		}
		if r.IsZero() {
			return nil, fmt.Errorf("dsl: division by zero evaluating rational expression at x=%s", ctx.X)
		}
		return l.Div(r)
	case KindPow:
		v, err := e.Arg.Eval(ctx)
		if err != nil {
			return nil, err
		}
		return v.Pow(e.Exp), nil
	default:
		return nil, fmt.Errorf("dsl: unknown expression kind %d", e.Kind)
	}
}
