package protocol

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/fri"
)

// LDEDomain is the coset core.DefaultGenerator*<root-of-unity> a column or
// composition polynomial is evaluated on for commitment and FRI. Grounded
// on the teacher's ArithmeticDomain (protocols/domains.go), narrowed to
// the single coset shape this system always uses (DefaultGenerator as the
// fixed coset offset, so every LDE domain is disjoint from the trace
// domain it extends).
type LDEDomain struct {
	Offset    *core.FieldElement
	Generator *core.FieldElement
	Size      int
}

// NewLDEDomain builds the size-element coset domain used to LDE a
// trace_len-row table by the given blowup factor.
func NewLDEDomain(field *core.Field, traceLen, blowupLog2 int) (LDEDomain, error) {
	size := traceLen << uint(blowupLog2)
	generator, err := field.PrimitiveRootOfUnity(size)
	if err != nil {
		return LDEDomain{}, fmt.Errorf("protocol: lde domain of size %d: %w", size, err)
	}
	return LDEDomain{Offset: core.DefaultGenerator, Generator: generator, Size: size}, nil
}

// Elements returns the domain's points in order.
func (d LDEDomain) Elements() []*core.FieldElement {
	out := make([]*core.FieldElement, d.Size)
	cur := d.Offset
	for i := range out {
		out[i] = cur
		cur = cur.Mul(d.Generator)
	}
	return out
}

// At returns the domain's i-th point without materializing the whole
// slice.
func (d LDEDomain) At(i int) *core.FieldElement {
	return d.Offset.Mul(d.Generator.Pow(uint64(i)))
}

// FRIDomain converts d to the fri package's Domain representation.
func (d LDEDomain) FRIDomain() fri.Domain {
	return fri.Domain{Offset: d.Offset, Generator: d.Generator, Size: d.Size}
}
