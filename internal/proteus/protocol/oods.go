package protocol

import (
	"fmt"
	"sort"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/dsl"
)

// collectOffsets walks every constraint's expression tree and returns the
// sorted, deduplicated set of row offsets referenced by any Trace node,
// always including 0 and 1 (the current and next row) since the DEEP
// composition step needs both regardless of what the constraints
// themselves reference.
func collectOffsets(list []*dsl.Expr) []int {
	seen := map[int]bool{0: true, 1: true}
	var walk func(e *dsl.Expr)
	walk = func(e *dsl.Expr) {
		if e == nil {
			return
		}
		switch e.Kind {
		case dsl.KindTrace:
			seen[e.Offset] = true
		case dsl.KindNeg, dsl.KindPow:
			walk(e.Arg)
		case dsl.KindClaimPolynomial:
			walk(e.Arg)
		case dsl.KindAdd, dsl.KindSub, dsl.KindMul, dsl.KindDiv:
			walk(e.Left)
			walk(e.Right)
		}
	}
	for _, e := range list {
		walk(e)
	}
	out := make([]int, 0, len(seen))
	for o := range seen {
		out = append(out, o)
	}
	sort.Ints(out)
	return out
}

// oodsValues holds, per column, the out-of-domain evaluations revealed for
// every offset collectOffsets found necessary, plus the per-part
// composition evaluations at z^numParts.
type oodsValues struct {
	offsets      []int
	traceAt      [][]*core.FieldElement // traceAt[offsetIndex][column]
	compositionAt []*core.FieldElement   // per composition part, at z^numParts
}

// evalAtOODS evaluates expr at a single out-of-domain point using the
// revealed trace values in v (indexed by offset then column) rather than
// column polynomials, mirroring constraints.evalWithOffsets and
// component.evalWithOffsets but specialized to the post-OODS,
// values-only setting the verifier is restricted to.
func evalAtOODS(field *core.Field, expr *dsl.Expr, z *core.FieldElement, traceLen int, v *oodsValues, claim dsl.ClaimLookup) (*core.FieldElement, error) {
	switch expr.Kind {
	case dsl.KindX:
		return z, nil
	case dsl.KindConstant:
		return expr.Constant, nil
	case dsl.KindPeriodic:
		poly, err := core.NewPeriodicPolynomial(field, expr.PeriodicCoeffs, traceLen)
		if err != nil {
			return nil, err
		}
		return poly.Evaluate(z), nil
	case dsl.KindTrace:
		oi := -1
		for i, o := range v.offsets {
			if o == expr.Offset {
				oi = i
				break
			}
		}
		if oi < 0 || expr.Column >= len(v.traceAt[oi]) {
			return nil, fmt.Errorf("protocol: no OODS value revealed for Trace(%d, %d)", expr.Column, expr.Offset)
		}
		return v.traceAt[oi][expr.Column], nil
	case dsl.KindClaimPolynomial:
		inner, err := evalAtOODS(field, expr.Arg, z, traceLen, v, claim)
		if err != nil {
			return nil, err
		}
		if claim == nil {
			return nil, fmt.Errorf("protocol: no claim lookup bound for ClaimPolynomial(%d, %d)", expr.ClaimIndex, expr.ClaimSubindex)
		}
		return claim(expr.ClaimIndex, expr.ClaimSubindex, inner)
	case dsl.KindNeg:
		val, err := evalAtOODS(field, expr.Arg, z, traceLen, v, claim)
		if err != nil {
			return nil, err
		}
		return val.Neg(), nil
	case dsl.KindPow:
		val, err := evalAtOODS(field, expr.Arg, z, traceLen, v, claim)
		if err != nil {
			return nil, err
		}
		return val.Pow(expr.Exp), nil
	case dsl.KindAdd, dsl.KindSub, dsl.KindMul, dsl.KindDiv:
		l, err := evalAtOODS(field, expr.Left, z, traceLen, v, claim)
		if err != nil {
			return nil, err
		}
		r, err := evalAtOODS(field, expr.Right, z, traceLen, v, claim)
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
				return nil, fmt.Errorf("protocol: division by zero evaluating OODS constraint at z=%s", z)
			}
			return l.Div(r)
		}
	default:
		return nil, fmt.Errorf("protocol: unknown expression kind %d", expr.Kind)
	}
}
