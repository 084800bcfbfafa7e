package core

import (
	"fmt"
	"math/big"
)

// PrimitiveRootOfUnity returns a generator of the unique subgroup of order
// n (n must be a power of two dividing f's multiplicative group order).
func (f *Field) PrimitiveRootOfUnity(n int) (*FieldElement, error) {
	if n <= 0 || n&(n-1) != 0 {
		return nil, fmt.Errorf("core: order must be a power of two, got %d", n)
	}
	pMinus1 := new(big.Int).Sub(f.modulus, big.NewInt(1))
	exp := new(big.Int).Div(pMinus1, big.NewInt(int64(n)))
	if new(big.Int).Mul(exp, big.NewInt(int64(n))).Cmp(pMinus1) != 0 {
		return nil, fmt.Errorf("core: field order is not divisible by %d", n)
	}
	return DefaultGenerator.Exp(exp), nil
}

func bitReverse(x, bits int) int {
	result := 0
	for i := 0; i < bits; i++ {
		result = (result << 1) | (x & 1)
		x >>= 1
	}
	return result
}

// nttInPlace performs an iterative radix-2 Cooley-Tukey transform of
// values (length must be a power of two) using root as the primitive
// len(values)-th root of unity.
func nttInPlace(values []*FieldElement, root *FieldElement) {
	n := len(values)
	bits := log2(n)
	for i := 0; i < n; i++ {
		j := bitReverse(i, bits)
		if j > i {
			values[i], values[j] = values[j], values[i]
		}
	}

	for size := 2; size <= n; size <<= 1 {
		half := size / 2
		stepExp := uint64(n / size)
		w := root.Pow(stepExp)
		for start := 0; start < n; start += size {
			wi := values[start].Field().One()
			for k := 0; k < half; k++ {
				u := values[start+k]
				v := values[start+k+half].Mul(wi)
				values[start+k] = u.Add(v)
				values[start+k+half] = u.Sub(v)
				wi = wi.Mul(w)
			}
		}
	}
}

// NTT evaluates the polynomial with the given coefficients (low-degree
// first, zero-padded to a power-of-two length) at all n-th roots of unity.
func NTT(field *Field, coeffs []*FieldElement, n int) ([]*FieldElement, error) {
	root, err := field.PrimitiveRootOfUnity(n)
	if err != nil {
		return nil, err
	}
	values := make([]*FieldElement, n)
	for i := 0; i < n; i++ {
		if i < len(coeffs) {
			values[i] = coeffs[i]
		} else {
			values[i] = field.Zero()
		}
	}
	nttInPlace(values, root)
	return values, nil
}

// INTT interpolates the coefficients of the unique polynomial of degree
// < n whose evaluations on the n-th roots of unity are values.
func INTT(field *Field, values []*FieldElement) ([]*FieldElement, error) {
	n := len(values)
	root, err := field.PrimitiveRootOfUnity(n)
	if err != nil {
		return nil, err
	}
	rootInv, err := root.Inv()
	if err != nil {
		return nil, err
	}
	coeffs := append([]*FieldElement(nil), values...)
	nttInPlace(coeffs, rootInv)

	nInv, err := field.NewElementFromUint64(uint64(n)).Inv()
	if err != nil {
		return nil, err
	}
	for i := range coeffs {
		coeffs[i] = coeffs[i].Mul(nInv)
	}
	return coeffs, nil
}
