package core

import "fmt"

// Polynomial is a dense, coefficient-form polynomial, low-degree term
// first. Grounded on the teacher's core/polynomial.go (Add/Sub/Mul/Eval),
// extended with NTT-based interpolation and coset low-degree extension
// per spec.md §4.5.
type Polynomial struct {
	field        *Field
	Coefficients []*FieldElement
}

// NewPolynomial wraps coefficients (low-degree first) in field's domain.
// Trailing zero coefficients are not trimmed automatically; callers that
// need exact degree should call Trim().
func NewPolynomial(field *Field, coeffs []*FieldElement) *Polynomial {
	c := append([]*FieldElement(nil), coeffs...)
	return &Polynomial{field: field, Coefficients: c}
}

// Trim drops trailing zero coefficients, returning a new polynomial.
func (p *Polynomial) Trim() *Polynomial {
	n := len(p.Coefficients)
	for n > 0 && p.Coefficients[n-1].IsZero() {
		n--
	}
	return NewPolynomial(p.field, p.Coefficients[:n])
}

// Degree returns the trimmed degree, or -1 for the zero polynomial.
func (p *Polynomial) Degree() int {
	t := p.Trim()
	return len(t.Coefficients) - 1
}

// Evaluate computes p(x) via Horner's method.
func (p *Polynomial) Evaluate(x *FieldElement) *FieldElement {
	result := p.field.Zero()
	for i := len(p.Coefficients) - 1; i >= 0; i-- {
		result = result.Mul(x).Add(p.Coefficients[i])
	}
	return result
}

// Add returns p + other.
func (p *Polynomial) Add(other *Polynomial) *Polynomial {
	n := len(p.Coefficients)
	if len(other.Coefficients) > n {
		n = len(other.Coefficients)
	}
	out := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		out[i] = p.coeffAt(i).Add(other.coeffAt(i))
	}
	return NewPolynomial(p.field, out)
}

// Sub returns p - other.
func (p *Polynomial) Sub(other *Polynomial) *Polynomial {
	n := len(p.Coefficients)
	if len(other.Coefficients) > n {
		n = len(other.Coefficients)
	}
	out := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		out[i] = p.coeffAt(i).Sub(other.coeffAt(i))
	}
	return NewPolynomial(p.field, out)
}

// Mul returns p * other via schoolbook convolution.
func (p *Polynomial) Mul(other *Polynomial) *Polynomial {
	pt, ot := p.Trim(), other.Trim()
	if len(pt.Coefficients) == 0 || len(ot.Coefficients) == 0 {
		return NewPolynomial(p.field, nil)
	}
	out := make([]*FieldElement, len(pt.Coefficients)+len(ot.Coefficients)-1)
	for i := range out {
		out[i] = p.field.Zero()
	}
	for i, a := range pt.Coefficients {
		if a.IsZero() {
			continue
		}
		for j, b := range ot.Coefficients {
			out[i+j] = out[i+j].Add(a.Mul(b))
		}
	}
	return NewPolynomial(p.field, out)
}

// MulScalar returns c * p.
func (p *Polynomial) MulScalar(c *FieldElement) *Polynomial {
	out := make([]*FieldElement, len(p.Coefficients))
	for i, a := range p.Coefficients {
		out[i] = a.Mul(c)
	}
	return NewPolynomial(p.field, out)
}

// Shift returns the polynomial Q such that Q(x) = p(g*x).
func (p *Polynomial) Shift(g *FieldElement) *Polynomial {
	out := make([]*FieldElement, len(p.Coefficients))
	power := p.field.One()
	for i, a := range p.Coefficients {
		out[i] = a.Mul(power)
		power = power.Mul(g)
	}
	return NewPolynomial(p.field, out)
}

func (p *Polynomial) coeffAt(i int) *FieldElement {
	if i < len(p.Coefficients) {
		return p.Coefficients[i]
	}
	return p.field.Zero()
}

// Interpolate returns the unique polynomial of degree < len(values) whose
// evaluations on the trace_len-th roots of unity subgroup equal values, via
// radix-2 INTT.
func Interpolate(field *Field, values []*FieldElement) (*Polynomial, error) {
	coeffs, err := INTT(field, values)
	if err != nil {
		return nil, fmt.Errorf("core: interpolate: %w", err)
	}
	return NewPolynomial(field, coeffs), nil
}

// LDE (low-degree extension) evaluates p on the coset offset*H, where H is
// the multiplicative subgroup of order domainSize.
func (p *Polynomial) LDE(offset *FieldElement, domainSize int) ([]*FieldElement, error) {
	shifted := p.Shift(offset)
	return NTT(p.field, shifted.Coefficients, domainSize)
}

// CosetElements returns offset*H for H the order-n subgroup.
func CosetElements(field *Field, offset *FieldElement, n int) ([]*FieldElement, error) {
	root, err := field.PrimitiveRootOfUnity(n)
	if err != nil {
		return nil, err
	}
	out := make([]*FieldElement, n)
	cur := offset
	for i := 0; i < n; i++ {
		out[i] = cur
		cur = cur.Mul(root)
	}
	return out, nil
}
