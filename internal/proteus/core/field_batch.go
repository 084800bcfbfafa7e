package core

import "fmt"

// BatchInvert inverts every element of elements in roughly one inversion's
// worth of work using Montgomery's trick, adapted from the teacher's
// core/field_batch.go (BatchInversion). Used by coset evaluation and FRI
// fold-coefficient computation, both of which need many simultaneous
// inverses.
func BatchInvert(elements []*FieldElement) ([]*FieldElement, error) {
	n := len(elements)
	if n == 0 {
		return nil, nil
	}
	for i, e := range elements {
		if e.IsZero() {
			return nil, fmt.Errorf("core: cannot batch-invert zero element at index %d", i)
		}
	}

	acc := make([]*FieldElement, n)
	acc[0] = elements[0]
	for i := 1; i < n; i++ {
		acc[i] = acc[i-1].Mul(elements[i])
	}

	accInv, err := acc[n-1].Inv()
	if err != nil {
		return nil, fmt.Errorf("core: failed to invert batch accumulator: %w", err)
	}

	results := make([]*FieldElement, n)
	for i := n - 1; i > 0; i-- {
		results[i] = accInv.Mul(acc[i-1])
		accInv = accInv.Mul(elements[i])
	}
	results[0] = accInv

	return results, nil
}
