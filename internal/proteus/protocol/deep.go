package protocol

import (
	"sort"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

// nextPow2 returns the smallest power of two >= n (n >= 1).
func nextPow2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}
	return p
}

// sortedUnique returns xs deduplicated and sorted ascending.
func sortedUnique(xs []int) []int {
	seen := make(map[int]bool, len(xs))
	out := make([]int, 0, len(xs))
	for _, x := range xs {
		if !seen[x] {
			seen[x] = true
			out = append(out, x)
		}
	}
	sort.Ints(out)
	return out
}

// offsetIndex returns the position of offset within the sorted offsets
// slice collectOffsets produced, or -1 if absent.
func offsetIndex(offsets []int, offset int) int {
	for i, o := range offsets {
		if o == offset {
			return i
		}
	}
	return -1
}

// shiftPoint returns z * generator^offset, handling negative offsets via
// inversion, mirroring constraints.evalWithOffsets' Trace-node shift.
func shiftPoint(z, generator *core.FieldElement, offset int) (*core.FieldElement, error) {
	if offset == 0 {
		return z, nil
	}
	if offset > 0 {
		return z.Mul(generator.Pow(uint64(offset))), nil
	}
	inv, err := generator.Inv()
	if err != nil {
		return nil, err
	}
	return z.Mul(inv.Pow(uint64(-offset))), nil
}

// concatValues concatenates the canonical 32-byte encoding of each value,
// for leaves packing several columns or composition parts into one
// committed index.
func concatValues(values []*core.FieldElement) core.BytesHashable {
	out := make([]byte, 0, 32*len(values))
	for _, v := range values {
		b := v.Bytes()
		out = append(out, b[:]...)
	}
	return core.BytesHashable(out)
}

// compositionValueAt reconstructs C(x) = sum_k x^k * partValues[k], where
// partValues[k] is part_k evaluated at x^numParts (the quantity the
// composition commitment actually stores), per constraints.Split's radix
// decomposition.
func compositionValueAt(field *core.Field, x *core.FieldElement, partValues []*core.FieldElement) *core.FieldElement {
	acc := field.Zero()
	xPow := field.One()
	for _, pv := range partValues {
		acc = acc.Add(xPow.Mul(pv))
		xPow = xPow.Mul(x)
	}
	return acc
}

// deepParams bundles the out-of-domain data needed to evaluate the DEEP
// composition polynomial at an arbitrary domain point, shared between the
// prover (which evaluates it at every LDE point to build the FRI input)
// and the verifier (which evaluates it once per query to cross-check
// against the FRI proof's revealed initial-layer value).
type deepParams struct {
	field       *core.Field
	z, zg       *core.FieldElement
	zNumParts   *core.FieldElement
	traceAtZ    []*core.FieldElement // per column, T_col(z)
	traceAtZg   []*core.FieldElement // per column, T_col(z*g)
	compAtZ     []*core.FieldElement // per part, part_k(z^numParts)
	deepCoeffs  []*core.FieldElement // len = numColumns + numParts
	numColumns  int
	numParts    int
}

// deepValueAt evaluates the DEEP polynomial at domain point x, given the
// trace values T_col(x) and composition part values part_k(x^numParts)
// at that same point. Grounded on the DEEP-ALI quotienting scheme
// described in SPEC_FULL.md's FRI/DEEP expansion: trace columns are
// quotiented against both z and z*g (the current and next row), and each
// composition part is quotiented against z^numParts, with one transcript
// coefficient per term as spec.md §4.10 names ("|trace_cols| +
// |composition_parts| coefficients").
func deepValueAt(p *deepParams, x *core.FieldElement, traceAtX, compPartsAtX []*core.FieldElement) (*core.FieldElement, error) {
	acc := p.field.Zero()

	xMinusZ := x.Sub(p.z)
	if xMinusZ.IsZero() {
		return nil, errDeepPole("x == z")
	}
	xMinusZInv, err := xMinusZ.Inv()
	if err != nil {
		return nil, err
	}
	xMinusZg := x.Sub(p.zg)
	if xMinusZg.IsZero() {
		return nil, errDeepPole("x == z*g")
	}
	xMinusZgInv, err := xMinusZg.Inv()
	if err != nil {
		return nil, err
	}

	for c := 0; c < p.numColumns; c++ {
		termZ := traceAtX[c].Sub(p.traceAtZ[c]).Mul(xMinusZInv)
		termZg := traceAtX[c].Sub(p.traceAtZg[c]).Mul(xMinusZgInv)
		acc = acc.Add(p.deepCoeffs[c].Mul(termZ.Add(termZg)))
	}

	xNumParts := x.Pow(uint64(p.numParts))
	denom := xNumParts.Sub(p.zNumParts)
	if denom.IsZero() {
		return nil, errDeepPole("x^numParts == z^numParts")
	}
	denomInv, err := denom.Inv()
	if err != nil {
		return nil, err
	}
	for k := 0; k < p.numParts; k++ {
		term := compPartsAtX[k].Sub(p.compAtZ[k]).Mul(denomInv)
		acc = acc.Add(p.deepCoeffs[p.numColumns+k].Mul(term))
	}

	return acc, nil
}

type deepPoleError string

func (e deepPoleError) Error() string { return "protocol: DEEP evaluation hit a pole: " + string(e) }

func errDeepPole(msg string) error { return deepPoleError(msg) }
