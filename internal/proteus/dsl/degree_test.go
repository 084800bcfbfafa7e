package dsl

import (
	"testing"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

func TestDegreeRules(t *testing.T) {
	const traceLen = 16
	field := core.DefaultField
	one := Constant(field.One())

	cases := []struct {
		name string
		expr *Expr
		want int
	}{
		{"x", X(), 1},
		{"constant", one, 0},
		{"trace", Trace(0, 0), traceLen - 1},
		{"periodic4", Periodic([]*core.FieldElement{field.One(), field.One(), field.One(), field.One()}), 3},
		{"add", X().Add(Trace(0, 0)), traceLen - 1},
		{"mul", Trace(0, 0).Mul(Trace(1, 0)), 2 * (traceLen - 1)},
		{"neg", Trace(0, 0).Neg(), traceLen - 1},
		{"pow", X().Pow(5), 5},
		{"div", Trace(0, 0).Sub(one).Div(X().Sub(one)), traceLen - 2},
		{"claim", ClaimPolynomial(0, 0, one), 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := c.expr.Degree(traceLen)
			if err != nil {
				t.Fatalf("Degree: %v", err)
			}
			if got != c.want {
				t.Fatalf("degree = %d, want %d", got, c.want)
			}
		})
	}
}

// TestDegreeOfTransitionShapedRationalExpression checks the symbolic rule
// table's degree for a constraint shaped like the Fibonacci transition
// constraint (a trace difference divided by a partial vanishing
// polynomial) at traceLen 8. It does not evaluate the expression.
func TestDegreeOfTransitionShapedRationalExpression(t *testing.T) {
	const traceLen = 8
	field := core.DefaultField
	generator, err := field.PrimitiveRootOfUnity(traceLen)
	if err != nil {
		t.Fatalf("PrimitiveRootOfUnity: %v", err)
	}
	one := field.One()

	zUnrestricted := X().Pow(traceLen).Sub(Constant(one))
	excludeFirstTwo := X().Sub(Constant(one)).Mul(X().Sub(Constant(generator)))
	expr := Trace(0, 0).Sub(Trace(0, -1)).Div(zUnrestricted.Div(excludeFirstTwo))

	got, err := expr.Degree(traceLen)
	if err != nil {
		t.Fatalf("Degree: %v", err)
	}
	// numerator degree traceLen-1, denominator degree traceLen-2, so the
	// rule table gives (traceLen-1) - (traceLen-2) = 1.
	if want := 1; got != want {
		t.Fatalf("degree = %d, want %d", got, want)
	}
}

func TestDegreeDivDenominatorExceedsNumeratorErrors(t *testing.T) {
	const traceLen = 16
	expr := X().Div(Trace(0, 0))
	if _, err := expr.Degree(traceLen); err == nil {
		t.Fatal("expected an error when the denominator's degree exceeds the numerator's")
	}
}

func TestDegreeAdjustment(t *testing.T) {
	adj, err := DegreeAdjustment(5, 2, 10)
	if err != nil {
		t.Fatalf("DegreeAdjustment: %v", err)
	}
	if adj != 7 {
		t.Fatalf("adjustment = %d, want 7", adj)
	}
	if _, err := DegreeAdjustment(10, 0, 5); err == nil {
		t.Fatal("expected an error when the base degree exceeds the target")
	}
}
