package core

import "fmt"

// PeriodicPolynomial represents a column of per-row constants that repeats
// every period rows across a trace of traceLen rows, expressed as the
// polynomial P(X^(traceLen/period)) for a degree-(period-1) polynomial P
// built from coeffs via interpolation. Grounded on the teacher's periodic
// constraint columns in protocols/constraints.go, generalized here into a
// standalone evaluable type per spec.md §4.4's Periodic expression node.
type PeriodicPolynomial struct {
	field    *Field
	inner    *Polynomial
	traceLen int
	period   int
}

// NewPeriodicPolynomial builds a periodic polynomial from its period values
// (one per row of the repeating block, values[i] is the constant at rows
// i, i+period, i+2*period, ...), for a trace of traceLen rows. period must
// divide traceLen and both must be powers of two.
func NewPeriodicPolynomial(field *Field, values []*FieldElement, traceLen int) (*PeriodicPolynomial, error) {
	period := len(values)
	if period == 0 || period&(period-1) != 0 {
		return nil, fmt.Errorf("core: period must be a power of two, got %d", period)
	}
	if traceLen%period != 0 {
		return nil, fmt.Errorf("core: period %d does not divide trace length %d", period, traceLen)
	}
	inner, err := Interpolate(field, values)
	if err != nil {
		return nil, err
	}
	return &PeriodicPolynomial{field: field, inner: inner, traceLen: traceLen, period: period}, nil
}

// Period returns the number of rows before the polynomial's values repeat.
func (p *PeriodicPolynomial) Period() int { return p.period }

// Evaluate computes the periodic polynomial at x: inner(x^(traceLen/period)).
func (p *PeriodicPolynomial) Evaluate(x *FieldElement) *FieldElement {
	exponent := uint64(p.traceLen / p.period)
	return p.inner.Evaluate(x.Pow(exponent))
}

// EvaluateAtRow evaluates the polynomial at the trace domain point of the
// given row, generator^(row mod traceLen), via Evaluate; useful for
// sanity-checking against the values it was built from.
func (p *PeriodicPolynomial) EvaluateAtRow(field *Field, generator *FieldElement, row int) *FieldElement {
	x := generator.Pow(uint64(row % p.traceLen))
	return p.Evaluate(x)
}
