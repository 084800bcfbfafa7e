package component

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/dsl"
)

// Check verifies the two invariants spec.md §4.11 requires of every
// component: every constraint evaluates to zero at every point of the
// trace domain, and every labeled value evaluates (via its expression) to
// the field element actually stored in the trace at the label's row.
func (c *Component) Check() error {
	rows := c.Trace.NumRows()
	generator, err := c.Field.PrimitiveRootOfUnity(rows)
	if err != nil {
		return err
	}

	columnPolys, err := c.Trace.ColumnPolynomials()
	if err != nil {
		return fmt.Errorf("component: interpolating columns: %w", err)
	}

	traceLookup := func(col int, x *core.FieldElement) (*core.FieldElement, error) {
		if col < 0 || col >= len(columnPolys) {
			return nil, fmt.Errorf("component: column %d out of range", col)
		}
		return columnPolys[col].Evaluate(x), nil
	}

	point := c.Field.One()
	for row := 0; row < rows; row++ {
		for ci, constraint := range c.Constraints {
			v, err := evalWithOffsets(c, constraint, point, rows, generator, traceLookup)
			if err != nil {
				return fmt.Errorf("component: constraint %d at row %d: %w", ci, row, err)
			}
			if !v.IsZero() {
				return fmt.Errorf("component: constraint %d does not vanish at row %d", ci, row)
			}
		}
		point = point.Mul(generator)
	}

	for name, label := range c.Labels {
		at := generator.Pow(uint64(label.Row))
		v, err := evalWithOffsets(c, label.Expr, at, rows, generator, traceLookup)
		if err != nil {
			return fmt.Errorf("component: label %q: %w", name, err)
		}
		if col := expectedColumn(label.Expr); col >= 0 && !v.Equal(c.Trace.Get(label.Row, col)) {
			return fmt.Errorf("component: label %q does not match trace value at row %d", name, label.Row)
		}
	}
	return nil
}

// expectedColumn returns the column a bare Trace(col, 0) label expression
// reads, or -1 if the label expression is not a simple trace lookup (in
// which case Check only validates it evaluates without error).
func expectedColumn(e *dsl.Expr) int {
	if e.Kind == dsl.KindTrace && e.Offset == 0 {
		return e.Column
	}
	return -1
}

// evalWithOffsets evaluates expr at x, resolving Trace(col, off) by
// shifting x with generator^off, matching the semantics
// constraints.Compile uses for the same DSL nodes.
func evalWithOffsets(c *Component, expr *dsl.Expr, x *core.FieldElement, traceLen int, generator *core.FieldElement, lookup func(int, *core.FieldElement) (*core.FieldElement, error)) (*core.FieldElement, error) {
	if expr.Kind == dsl.KindTrace {
		shiftedX := x
		if expr.Offset != 0 {
			if expr.Offset < 0 {
				inv, err := generator.Inv()
				if err != nil {
					return nil, err
				}
				shiftedX = x.Mul(inv.Pow(uint64(-expr.Offset)))
			} else {
				shiftedX = x.Mul(generator.Pow(uint64(expr.Offset)))
			}
		}
		return lookup(expr.Column, shiftedX)
	}

	switch expr.Kind {
	case dsl.KindX:
		return x, nil
	case dsl.KindConstant:
		return expr.Constant, nil
	case dsl.KindPeriodic:
		poly, err := core.NewPeriodicPolynomial(c.Field, expr.PeriodicCoeffs, traceLen)
		if err != nil {
			return nil, err
		}
		return poly.Evaluate(x), nil
	case dsl.KindClaimPolynomial:
		return nil, fmt.Errorf("component: ClaimPolynomial is not supported inside component constraints")
	case dsl.KindNeg:
		v, err := evalWithOffsets(c, expr.Arg, x, traceLen, generator, lookup)
		if err != nil {
			return nil, err
		}
		return v.Neg(), nil
	case dsl.KindPow:
		v, err := evalWithOffsets(c, expr.Arg, x, traceLen, generator, lookup)
		if err != nil {
			return nil, err
		}
		return v.Pow(expr.Exp), nil
	case dsl.KindAdd, dsl.KindSub, dsl.KindMul, dsl.KindDiv:
		l, err := evalWithOffsets(c, expr.Left, x, traceLen, generator, lookup)
		if err != nil {
			return nil, err
		}
		r, err := evalWithOffsets(c, expr.Right, x, traceLen, generator, lookup)
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
				return nil, fmt.Errorf("component: division by zero")
			}
			return l.Div(r)
		}
	default:
		return nil, fmt.Errorf("component: unknown expression kind %d", expr.Kind)
	}
}
