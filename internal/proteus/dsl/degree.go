package dsl

import "fmt"

// Degree computes the symbolic upper bound on an expression's polynomial
// degree over a trace of traceLen rows, per the rule table: X -> 1,
// Constant -> 0, Trace -> traceLen-1, ClaimPolynomial(_, _, e) ->
// deg(e)*traceLen, Periodic(coeffs) -> len(coeffs)-1, arithmetic follows
// the usual sum/product rules, and Div subtracts the denominator's degree
// (the denominator's degree must not exceed the numerator's; Degree
// returns an error when it does).
func (e *Expr) Degree(traceLen int) (int, error) {
	switch e.Kind {
	case KindX:
		return 1, nil
	case KindConstant:
		return 0, nil
	case KindTrace:
		return traceLen - 1, nil
	case KindPeriodic:
		return len(e.PeriodicCoeffs) - 1, nil
	case KindClaimPolynomial:
		inner, err := e.Arg.Degree(traceLen)
		if err != nil {
			return 0, err
		}
		return inner * traceLen, nil
	case KindNeg:
		return e.Arg.Degree(traceLen)
	case KindPow:
		inner, err := e.Arg.Degree(traceLen)
		if err != nil {
			return 0, err
		}
		return inner * int(e.Exp), nil
	case KindAdd, KindSub:
		l, err := e.Left.Degree(traceLen)
		if err != nil {
			return 0, err
		}
		r, err := e.Right.Degree(traceLen)
		if err != nil {
			return 0, err
		}
		if l > r {
			return l, nil
		}
		return r, nil
	case KindMul:
		l, err := e.Left.Degree(traceLen)
		if err != nil {
			return 0, err
		}
		r, err := e.Right.Degree(traceLen)
		if err != nil {
			return 0, err
		}
		return l + r, nil
	case KindDiv:
		l, err := e.Left.Degree(traceLen)
		if err != nil {
			return 0, err
		}
		r, err := e.Right.Degree(traceLen)
		if err != nil {
			return 0, err
		}
		if r > l {
			return 0, fmt.Errorf("dsl: denominator degree %d exceeds numerator degree %d", r, l)
		}
		return l - r, nil
	default:
		return 0, fmt.Errorf("dsl: unknown expression kind %d", e.Kind)
	}
}

// DegreeAdjustment returns the exponent by which X must multiply this
// expression's base value to lift a constraint of the given numerator and
// denominator degree to the uniform target degree (typically
// 2*traceLen-1), so that the composition polynomial's terms are homogeneous
// in degree.
func DegreeAdjustment(numeratorDeg, denominatorDeg, target int) (int, error) {
	base := numeratorDeg - denominatorDeg
	adj := target - base
	if adj < 0 {
		return 0, fmt.Errorf("dsl: constraint degree %d exceeds target degree %d", base, target)
	}
	return adj, nil
}
