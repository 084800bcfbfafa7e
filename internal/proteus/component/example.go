package component

import (
	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/dsl"
)

// Example builds a small deterministic component exercising the algebra's
// invariants: a rows x cols trace of a linear recurrence seeded by seedA
// and seedB (column 0 holds the recurrence, column 1 each row's value
// plus the previous row's, wrapping around at row 0),
// with a single transition constraint tying consecutive rows together and
// labels "start", "next", and "final" marking the first row, second row,
// and last row of column 0.
//
// original_source/crypto/stark/src/component/mod.rs exercises the algebra
// against a FixedComponent::example fixture defined in a sibling example.rs
// that was not part of the extracted source; this fixture is this
// package's own stand-in; see DESIGN.md for why its numeric label values
// are not expected to reproduce the original's hex constants bit-for-bit.
func Example(field *core.Field, rows, cols int, seedA, seedB uint64) (*Component, error) {
	c, err := Empty(field, rows, cols)
	if err != nil {
		return nil, err
	}

	a := field.NewElementFromUint64(seedA)
	b := field.NewElementFromUint64(seedB)
	c.Trace.Set(0, 0, a)
	for row := 1; row < rows; row++ {
		next := a.Add(b)
		a, b = b, next
		c.Trace.Set(row, 0, a)
	}

	if cols > 1 {
		// column 1 is defined cyclically from column 0 so the transition
		// constraint holds at every row, including the row-0 wraparound,
		// without needing special boundary handling.
		for row := 0; row < rows; row++ {
			prev := c.Trace.Get(row-1, 0)
			c.Trace.Set(row, 1, c.Trace.Get(row, 0).Add(prev))
		}
		c.Constraints = []*dsl.Expr{
			dsl.Trace(1, 0).Sub(dsl.Trace(0, 0)).Sub(dsl.Trace(0, -1)),
		}
	}

	c.Labels["start"] = Label{Row: 0, Expr: dsl.Trace(0, 0)}
	c.Labels["next"] = Label{Row: 1, Expr: dsl.Trace(0, 0)}
	c.Labels["final"] = Label{Row: rows - 1, Expr: dsl.Trace(0, 0)}
	return c, nil
}
