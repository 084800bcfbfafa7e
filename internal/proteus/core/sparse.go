package core

import "sort"

// SparseTerm is a single (coefficient, exponent) pair of a SparsePolynomial.
type SparseTerm struct {
	Coefficient *FieldElement
	Exponent    uint64
}

// SparsePolynomial represents a polynomial as a small set of nonzero terms,
// used for claim polynomials and other widely-spaced-degree expressions
// where a dense representation would waste memory. Grounded on the
// teacher's rational-expression handling in protocols/claim.go, which
// evaluates claim polynomials term-by-term rather than as dense arrays.
type SparsePolynomial struct {
	field *Field
	terms []SparseTerm
}

// NewSparsePolynomial builds a SparsePolynomial from terms, sorted
// ascending by exponent with duplicate exponents combined.
func NewSparsePolynomial(field *Field, terms []SparseTerm) *SparsePolynomial {
	byExp := make(map[uint64]*FieldElement)
	order := make([]uint64, 0, len(terms))
	for _, t := range terms {
		if existing, ok := byExp[t.Exponent]; ok {
			byExp[t.Exponent] = existing.Add(t.Coefficient)
		} else {
			byExp[t.Exponent] = t.Coefficient
			order = append(order, t.Exponent)
		}
	}
	sort.Slice(order, func(i, j int) bool { return order[i] < order[j] })

	out := make([]SparseTerm, 0, len(order))
	for _, exp := range order {
		c := byExp[exp]
		if c.IsZero() {
			continue
		}
		out = append(out, SparseTerm{Coefficient: c, Exponent: exp})
	}
	return &SparsePolynomial{field: field, terms: out}
}

// Terms returns the polynomial's nonzero terms in ascending exponent order.
func (p *SparsePolynomial) Terms() []SparseTerm {
	return append([]SparseTerm(nil), p.terms...)
}

// Degree returns the highest exponent with a nonzero coefficient, or -1 for
// the zero polynomial.
func (p *SparsePolynomial) Degree() int {
	if len(p.terms) == 0 {
		return -1
	}
	return int(p.terms[len(p.terms)-1].Exponent)
}

// Evaluate computes p(x) as the sum of coefficient * x^exponent over all
// terms, each power computed by repeated squaring.
func (p *SparsePolynomial) Evaluate(x *FieldElement) *FieldElement {
	result := p.field.Zero()
	for _, t := range p.terms {
		result = result.Add(t.Coefficient.Mul(x.Pow(t.Exponent)))
	}
	return result
}
