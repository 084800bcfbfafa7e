package constraints

import (
	"fmt"

	"golang.org/x/sync/errgroup"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/dsl"
)

// LDEContext supplies the data the compiler needs to evaluate constraints
// across the LDE coset: the coset's elements, per-column trace polynomials
// (already shifted to be evaluated directly, not via the trace domain
// generator), and claim-polynomial resolution.
type LDEContext struct {
	Field        *core.Field
	CosetPoints  []*core.FieldElement
	Generator    *core.FieldElement // trace domain generator, for Trace() offset lookups
	TraceLen     int
	ColumnPolys  []*core.Polynomial
	ResolveClaim dsl.ClaimLookup
}

// evalAt recursively evaluates expr at x, resolving Trace(col, off) nodes
// by shifting x by generator^off before delegating to the column
// polynomial evaluator. This walks the same tree Eval does but needs
// access to offsets that dsl.EvalContext.Trace alone cannot see (offset is
// static per node while x varies per coset point), so the compiler
// performs its own substitution pass rather than calling Expr.Eval
// directly.
func evalAt(ctx *LDEContext, expr *dsl.Expr, x *core.FieldElement) (*core.FieldElement, error) {
	evalCtx := &dsl.EvalContext{
		Field:    ctx.Field,
		X:        x,
		TraceLen: ctx.TraceLen,
		Claim:    ctx.ResolveClaim,
	}
	return evalWithOffsets(ctx, expr, x, evalCtx)
}

// evalWithOffsets evaluates expr at x, handling Trace nodes by shifting x
// with the node's own offset (generator^offset) before delegating to the
// column polynomial, and otherwise recursing like dsl.Expr.Eval.
func evalWithOffsets(ctx *LDEContext, expr *dsl.Expr, x *core.FieldElement, evalCtx *dsl.EvalContext) (*core.FieldElement, error) {
	if expr.Kind == dsl.KindTrace {
		shiftedX := x
		if expr.Offset != 0 {
			g := ctx.Generator
			if expr.Offset < 0 {
				inv, err := g.Inv()
				if err != nil {
					return nil, err
				}
				shiftedX = x.Mul(inv.Pow(uint64(-expr.Offset)))
			} else {
				shiftedX = x.Mul(g.Pow(uint64(expr.Offset)))
			}
		}
		return ctx.ColumnPolys[expr.Column].Evaluate(shiftedX), nil
	}

	leaf := &dsl.EvalContext{Field: evalCtx.Field, X: x, TraceLen: evalCtx.TraceLen, Claim: evalCtx.Claim}
	switch expr.Kind {
	case dsl.KindX, dsl.KindConstant, dsl.KindPeriodic:
		return expr.Eval(leaf)
	case dsl.KindClaimPolynomial:
		inner, err := evalWithOffsets(ctx, expr.Arg, x, evalCtx)
		if err != nil {
			return nil, err
		}
		if evalCtx.Claim == nil {
			return nil, fmt.Errorf("constraints: no claim lookup bound for ClaimPolynomial(%d, %d)", expr.ClaimIndex, expr.ClaimSubindex)
		}
		return evalCtx.Claim(expr.ClaimIndex, expr.ClaimSubindex, inner)
	case dsl.KindNeg:
		v, err := evalWithOffsets(ctx, expr.Arg, x, evalCtx)
		if err != nil {
			return nil, err
		}
		return v.Neg(), nil
	case dsl.KindPow:
		v, err := evalWithOffsets(ctx, expr.Arg, x, evalCtx)
		if err != nil {
			return nil, err
		}
		return v.Pow(expr.Exp), nil
	case dsl.KindAdd, dsl.KindSub, dsl.KindMul, dsl.KindDiv:
		l, err := evalWithOffsets(ctx, expr.Left, x, evalCtx)
		if err != nil {
			return nil, err
		}
		r, err := evalWithOffsets(ctx, expr.Right, x, evalCtx)
		if err != nil {
			return nil, err
		}
		switch expr.Kind {
		case dsl.KindAdd:
			return l.Add(r), nil
		case dsl.KindSub:
			return l.Sub(r), nil
		case dsl.KindMul:
			return l.Mul(r), nil
		default:
			if r.IsZero() {
				return nil, fmt.Errorf("constraints: division by zero at x=%s", x)
			}
			return l.Div(r)
		}
	default:
		return nil, fmt.Errorf("constraints: unknown expression kind %d", expr.Kind)
	}
}

// Compile combines c's constraints with transcript-derived coefficients
// (two per constraint: alpha_i, beta_i) into the values of the composition
// polynomial C(X) = sum_i (alpha_i + beta_i*X^adj_i) * constraint_i(X) on
// every point of ctx.CosetPoints. Grounded on the teacher's
// EvaluateComposition (weighted linear combination of constraint
// evaluations) and ParallelEvaluateQuotients (protocols/constraints.go),
// replacing its sync.WaitGroup/error-channel pattern with errgroup.
func Compile(c *Constraints, ctx *LDEContext, coefficients []*core.FieldElement) ([]*core.FieldElement, error) {
	if len(coefficients) != 2*len(c.List) {
		return nil, fmt.Errorf("constraints: expected %d coefficients, got %d", 2*len(c.List), len(coefficients))
	}
	target := c.TargetDegree()

	type perConstraint struct {
		expr       *dsl.Expr
		alpha      *core.FieldElement
		beta       *core.FieldElement
		adjustment uint64
	}
	prepared := make([]perConstraint, len(c.List))
	for i, constraint := range c.List {
		deg, err := constraint.Expr.Degree(c.NumRows)
		if err != nil {
			return nil, fmt.Errorf("constraints: constraint %q: %w", constraint.Name, err)
		}
		adj, err := dsl.DegreeAdjustment(deg, 0, target)
		if err != nil {
			return nil, fmt.Errorf("constraints: constraint %q: %w", constraint.Name, err)
		}
		prepared[i] = perConstraint{
			expr:       constraint.Expr,
			alpha:      coefficients[2*i],
			beta:       coefficients[2*i+1],
			adjustment: uint64(adj),
		}
	}

	n := len(ctx.CosetPoints)
	result := make([]*core.FieldElement, n)

	const chunk = 64
	var g errgroup.Group
	for start := 0; start < n; start += chunk {
		start := start
		end := start + chunk
		if end > n {
			end = n
		}
		g.Go(func() error {
			for idx := start; idx < end; idx++ {
				x := ctx.CosetPoints[idx]
				acc := ctx.Field.Zero()
				for _, p := range prepared {
					v, err := evalAt(ctx, p.expr, x)
					if err != nil {
						return fmt.Errorf("constraints: evaluating at point %d: %w", idx, err)
					}
					weight := p.alpha.Add(p.beta.Mul(x.Pow(p.adjustment)))
					acc = acc.Add(weight.Mul(v))
				}
				result[idx] = acc
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return result, nil
}

// SplitCount returns the number of degree-<trace_len sub-polynomials the
// composition polynomial must be split into: floor(deg(C)/trace_len)+1,
// i.e. ceil((deg(C)+1)/trace_len), enough parts to hold deg(C)+1
// coefficients.
func SplitCount(compositionDegree, traceLen int) int {
	if compositionDegree < 0 {
		return 1
	}
	return compositionDegree/traceLen + 1
}

// Split partitions composition's coefficients into parts of length
// traceLen each, so that C(X) = sum_k X^k * part_k(X^numParts) when
// reassembled in the standard radix splitting used for committing
// sub-degree pieces separately.
func Split(field *core.Field, composition *core.Polynomial, numParts, traceLen int) []*core.Polynomial {
	parts := make([][]*core.FieldElement, numParts)
	for i := range parts {
		parts[i] = make([]*core.FieldElement, traceLen)
		for j := range parts[i] {
			parts[i][j] = field.Zero()
		}
	}
	for i, coeff := range composition.Coefficients {
		part := i % numParts
		pos := i / numParts
		if pos < traceLen {
			parts[part][pos] = coeff
		}
	}
	out := make([]*core.Polynomial, numParts)
	for i, p := range parts {
		out[i] = core.NewPolynomial(field, p)
	}
	return out
}
