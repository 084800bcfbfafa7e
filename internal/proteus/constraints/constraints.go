// Package constraints validates collections of rational-expression
// constraints against trace dimensions and compiles them into a single
// composition polynomial. Grounded on the teacher's AIRConstraints
// collection type and ParallelEvaluateQuotients
// (protocols/constraints.go), generalized from the teacher's
// fixed-category (initial/consistency/transition/terminal) constraint
// lists to the DSL's uniform RationalExpression constraints.
package constraints

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/dsl"
)

// ErrorCode classifies a constraints-construction failure.
type ErrorCode string

const (
	ErrInvalidTraceDimensions ErrorCode = "InvalidTraceDimensions"
	ErrEmptyConstraints       ErrorCode = "EmptyConstraints"
	ErrDegreeTooHigh          ErrorCode = "DegreeTooHigh"
)

// Error reports a constraints-construction failure.
type Error struct {
	Code ErrorCode
	Msg  string
}

func (e *Error) Error() string { return fmt.Sprintf("constraints: %s: %s", e.Code, e.Msg) }

// Constraint is a single rational-expression constraint, required to have
// finite degree strictly less than blowup*trace_len.
type Constraint struct {
	Expr *dsl.Expr
	Name string
}

// Constraints is a validated collection of constraints over a trace shape,
// carrying the claim bytes absorbed into the transcript as public input.
type Constraints struct {
	NumColumns int
	NumRows    int
	ClaimBytes []byte
	List       []Constraint

	// Claim resolves ClaimPolynomial nodes, if any constraint uses one.
	// Left nil when the claim carries no such public-input polynomials.
	Claim dsl.ClaimLookup

	maxDegree int
}

// New validates and wraps a set of constraints for a trace of the given
// shape, failing the LDE blowup factor's degree bound.
func New(numColumns, numRows, blowupLog2 int, claimBytes []byte, list []Constraint) (*Constraints, error) {
	if numRows < 2 || numRows&(numRows-1) != 0 || numColumns < 1 {
		return nil, &Error{Code: ErrInvalidTraceDimensions, Msg: fmt.Sprintf("rows=%d cols=%d", numRows, numColumns)}
	}
	if len(list) == 0 {
		return nil, &Error{Code: ErrEmptyConstraints, Msg: "no constraints supplied"}
	}

	maxAllowed := (1 << blowupLog2) * numRows
	maxDegree := 0
	for _, c := range list {
		d, err := c.Expr.Degree(numRows)
		if err != nil {
			return nil, &Error{Code: ErrDegreeTooHigh, Msg: fmt.Sprintf("constraint %q: %v", c.Name, err)}
		}
		if d >= maxAllowed {
			return nil, &Error{Code: ErrDegreeTooHigh, Msg: fmt.Sprintf("constraint %q has degree %d, max allowed %d", c.Name, d, maxAllowed-1)}
		}
		if d > maxDegree {
			maxDegree = d
		}
	}

	return &Constraints{
		NumColumns: numColumns,
		NumRows:    numRows,
		ClaimBytes: append([]byte(nil), claimBytes...),
		List:       list,
		maxDegree:  maxDegree,
	}, nil
}

// MaxDegree returns the highest symbolic degree among the constraints.
func (c *Constraints) MaxDegree() int { return c.maxDegree }

// TargetDegree is the uniform degree (2*trace_len-1) every constraint is
// lifted to by the composition compiler.
func (c *Constraints) TargetDegree() int { return 2*c.NumRows - 1 }
