// Package trace holds the rectangular execution-trace table and its
// per-column interpolation into the core polynomial layer.
package trace

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

// Table is a row-major matrix of field elements: num_rows (a power of two,
// at least 2) by num_columns (at least 1). Row lookups wrap around modulo
// num_rows, matching the neighbor-offset semantics the constraint DSL needs
// for boundary rows. Grounded on the teacher's trace handling inside
// protocols/stark.go (TraceTable construction ahead of LDE commitment).
type Table struct {
	field   *core.Field
	rows    int
	columns int
	data    []*core.FieldElement // row-major: data[row*columns+col]
}

// NewTable allocates a zero-filled table with the given dimensions.
func NewTable(field *core.Field, numRows, numColumns int) (*Table, error) {
	if numRows < 2 || numRows&(numRows-1) != 0 {
		return nil, fmt.Errorf("trace: num_rows must be a power of two >= 2, got %d", numRows)
	}
	if numColumns < 1 {
		return nil, fmt.Errorf("trace: num_columns must be >= 1, got %d", numColumns)
	}
	data := make([]*core.FieldElement, numRows*numColumns)
	zero := field.Zero()
	for i := range data {
		data[i] = zero
	}
	return &Table{field: field, rows: numRows, columns: numColumns, data: data}, nil
}

// NumRows returns the trace length.
func (t *Table) NumRows() int { return t.rows }

// NumColumns returns the trace width.
func (t *Table) NumColumns() int { return t.columns }

// Field returns the field the table's entries belong to.
func (t *Table) Field() *core.Field { return t.field }

func (t *Table) index(row, col int) int {
	r := ((row % t.rows) + t.rows) % t.rows
	return r*t.columns + col
}

// Get reads the entry at (row, col); row wraps around modulo num_rows.
func (t *Table) Get(row, col int) *core.FieldElement {
	return t.data[t.index(row, col)]
}

// Set writes the entry at (row, col); row wraps around modulo num_rows.
func (t *Table) Set(row, col int, value *core.FieldElement) {
	t.data[t.index(row, col)] = value
}

// Column returns a copy of column col's values across all rows, in row
// order, suitable for interpolation.
func (t *Table) Column(col int) []*core.FieldElement {
	out := make([]*core.FieldElement, t.rows)
	for r := 0; r < t.rows; r++ {
		out[r] = t.data[r*t.columns+col]
	}
	return out
}

// ColumnPolynomial interpolates column col over the trace_len-th roots of
// unity subgroup via inverse NTT, yielding the polynomial whose evaluations
// on that subgroup equal the column's rows in order.
func (t *Table) ColumnPolynomial(col int) (*core.Polynomial, error) {
	return core.Interpolate(t.field, t.Column(col))
}

// ColumnPolynomials interpolates every column, in column order.
func (t *Table) ColumnPolynomials() ([]*core.Polynomial, error) {
	out := make([]*core.Polynomial, t.columns)
	for c := 0; c < t.columns; c++ {
		p, err := t.ColumnPolynomial(c)
		if err != nil {
			return nil, fmt.Errorf("trace: interpolating column %d: %w", c, err)
		}
		out[c] = p
	}
	return out, nil
}

// Generator returns the generator of the trace domain (the subgroup of
// order num_rows).
func (t *Table) Generator() (*core.FieldElement, error) {
	return t.field.PrimitiveRootOfUnity(t.rows)
}
