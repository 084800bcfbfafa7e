// Package core provides the field, hash, Merkle, and polynomial primitives
// shared by every higher-level proteus package.
package core

import (
	"fmt"
	"math/big"

	"github.com/holiman/uint256"
)

// Field is the 252-bit prime field the proof system operates over:
// p = 2^251 + 17*2^192 + 1, the StarkWare-style field used throughout the
// original source this package generalizes from the teacher's 31-bit toy
// modulus.
type Field struct {
	modulus *big.Int
}

// FieldElement is a residue modulo Field.modulus.
type FieldElement struct {
	field *Field
	value *big.Int
}

// NewField creates a field with the given modulus.
func NewField(modulus *big.Int) (*Field, error) {
	if modulus.Cmp(big.NewInt(2)) <= 0 {
		return nil, fmt.Errorf("modulus must be greater than 2")
	}
	return &Field{modulus: new(big.Int).Set(modulus)}, nil
}

var (
	// stark251Modulus is 2^251 + 17*2^192 + 1.
	stark251Modulus = func() *big.Int {
		m := new(big.Int).Lsh(big.NewInt(1), 251)
		term := new(big.Int).Lsh(big.NewInt(17), 192)
		m.Add(m, term)
		m.Add(m, big.NewInt(1))
		return m
	}()

	// montgomeryR is 2^256 mod p, the Montgomery radix used by the
	// canonical byte encoding (see Bytes/FromBytes below).
	montgomeryR = new(big.Int).Mod(new(big.Int).Lsh(big.NewInt(1), 256), stark251Modulus)

	// DefaultField is the 252-bit prime field used by the proof engine.
	DefaultField, _ = NewField(stark251Modulus)

	// DefaultGenerator is a generator of DefaultField's multiplicative group.
	DefaultGenerator = DefaultField.NewElementFromInt64(3)
)

// Modulus returns a copy of the field's modulus.
func (f *Field) Modulus() *big.Int {
	return new(big.Int).Set(f.modulus)
}

// Equals reports whether two fields share a modulus.
func (f *Field) Equals(other *Field) bool {
	return f.modulus.Cmp(other.modulus) == 0
}

// NewElement reduces value modulo the field and wraps it.
func (f *Field) NewElement(value *big.Int) *FieldElement {
	normalized := new(big.Int).Mod(value, f.modulus)
	return &FieldElement{field: f, value: normalized}
}

// NewElementFromInt64 reduces a signed int64 into the field.
func (f *Field) NewElementFromInt64(value int64) *FieldElement {
	return f.NewElement(big.NewInt(value))
}

// NewElementFromUint64 reduces an unsigned uint64 into the field.
func (f *Field) NewElementFromUint64(value uint64) *FieldElement {
	return f.NewElement(new(big.Int).SetUint64(value))
}

// Zero returns the additive identity.
func (f *Field) Zero() *FieldElement { return f.NewElement(big.NewInt(0)) }

// One returns the multiplicative identity.
func (f *Field) One() *FieldElement { return f.NewElement(big.NewInt(1)) }

// Field returns the field this element belongs to.
func (fe *FieldElement) Field() *Field { return fe.field }

// Big returns a copy of the element's residue.
func (fe *FieldElement) Big() *big.Int { return new(big.Int).Set(fe.value) }

func (fe *FieldElement) checkField(other *FieldElement) {
	if !fe.field.Equals(other.field) {
		panic("core: operands belong to different fields")
	}
}

// Add returns fe + other.
func (fe *FieldElement) Add(other *FieldElement) *FieldElement {
	fe.checkField(other)
	return fe.field.NewElement(new(big.Int).Add(fe.value, other.value))
}

// Sub returns fe - other.
func (fe *FieldElement) Sub(other *FieldElement) *FieldElement {
	fe.checkField(other)
	return fe.field.NewElement(new(big.Int).Sub(fe.value, other.value))
}

// Neg returns -fe.
func (fe *FieldElement) Neg() *FieldElement {
	return fe.field.NewElement(new(big.Int).Neg(fe.value))
}

// Mul returns fe * other.
func (fe *FieldElement) Mul(other *FieldElement) *FieldElement {
	fe.checkField(other)
	return fe.field.NewElement(new(big.Int).Mul(fe.value, other.value))
}

// Square returns fe * fe.
func (fe *FieldElement) Square() *FieldElement { return fe.Mul(fe) }

// Inv returns the multiplicative inverse of fe.
func (fe *FieldElement) Inv() (*FieldElement, error) {
	if fe.value.Sign() == 0 {
		return nil, fmt.Errorf("core: cannot invert zero element")
	}
	x := new(big.Int).ModInverse(fe.value, fe.field.modulus)
	if x == nil {
		return nil, fmt.Errorf("core: inverse does not exist")
	}
	return fe.field.NewElement(x), nil
}

// Div returns fe / other.
func (fe *FieldElement) Div(other *FieldElement) (*FieldElement, error) {
	fe.checkField(other)
	inv, err := other.Inv()
	if err != nil {
		return nil, fmt.Errorf("core: division failed: %w", err)
	}
	return fe.Mul(inv), nil
}

// Pow returns fe raised to a non-negative exponent.
func (fe *FieldElement) Pow(exponent uint64) *FieldElement {
	result := new(big.Int).Exp(fe.value, new(big.Int).SetUint64(exponent), fe.field.modulus)
	return fe.field.NewElement(result)
}

// Exp returns fe raised to an arbitrary-precision exponent.
func (fe *FieldElement) Exp(exponent *big.Int) *FieldElement {
	return fe.field.NewElement(new(big.Int).Exp(fe.value, exponent, fe.field.modulus))
}

// Sqrt returns a square root of fe via Tonelli-Shanks, erroring if fe is not
// a quadratic residue.
func (fe *FieldElement) Sqrt() (*FieldElement, error) {
	if fe.IsZero() {
		return fe.field.Zero(), nil
	}
	p := fe.field.modulus
	n := fe.value

	eulerExp := new(big.Int).Rsh(new(big.Int).Sub(p, big.NewInt(1)), 1)
	if new(big.Int).Exp(n, eulerExp, p).Cmp(big.NewInt(1)) != 0 {
		return nil, fmt.Errorf("core: element is not a quadratic residue")
	}

	if new(big.Int).And(p, big.NewInt(3)).Cmp(big.NewInt(3)) == 0 {
		exp := new(big.Int).Rsh(new(big.Int).Add(p, big.NewInt(1)), 2)
		return fe.field.NewElement(new(big.Int).Exp(n, exp, p)), nil
	}

	// Tonelli-Shanks for p == 1 (mod 4).
	q := new(big.Int).Sub(p, big.NewInt(1))
	s := 0
	for q.Bit(0) == 0 {
		q.Rsh(q, 1)
		s++
	}

	z := big.NewInt(2)
	for {
		if new(big.Int).Exp(z, eulerExp, p).Cmp(big.NewInt(1)) != 0 {
			break
		}
		z.Add(z, big.NewInt(1))
	}

	m := s
	c := new(big.Int).Exp(z, q, p)
	qPlus1Half := new(big.Int).Rsh(new(big.Int).Add(q, big.NewInt(1)), 1)
	x := new(big.Int).Exp(n, qPlus1Half, p)
	t := new(big.Int).Exp(n, q, p)

	for t.Cmp(big.NewInt(1)) != 0 {
		i := 1
		tt := new(big.Int).Exp(t, big.NewInt(2), p)
		for tt.Cmp(big.NewInt(1)) != 0 {
			tt.Exp(tt, big.NewInt(2), p)
			i++
		}

		b := new(big.Int).Exp(c, new(big.Int).Lsh(big.NewInt(1), uint(m-i-1)), p)
		x.Mul(x, b).Mod(x, p)
		c = new(big.Int).Exp(b, big.NewInt(2), p)
		t.Mul(t, c).Mod(t, p)
		m = i
	}

	return fe.field.NewElement(x), nil
}

// Equal reports whether two elements of the same field hold equal residues.
func (fe *FieldElement) Equal(other *FieldElement) bool {
	if !fe.field.Equals(other.field) {
		return false
	}
	return fe.value.Cmp(other.value) == 0
}

// IsZero reports whether fe is the additive identity.
func (fe *FieldElement) IsZero() bool { return fe.value.Sign() == 0 }

// IsOne reports whether fe is the multiplicative identity.
func (fe *FieldElement) IsOne() bool { return fe.value.Cmp(big.NewInt(1)) == 0 }

// String renders the element's residue in decimal.
func (fe *FieldElement) String() string { return fe.value.String() }

// Bytes encodes fe as 32-byte Montgomery form, big-endian: the wire value is
// (residue * R) mod p for R = 2^256 mod p, matching the original source's
// `as_montgomery().to_bytes_be()` convention (see SPEC_FULL.md §3).
func (fe *FieldElement) Bytes() [32]byte {
	montgomery := new(big.Int).Mod(new(big.Int).Mul(fe.value, montgomeryR), fe.field.modulus)
	var u uint256.Int
	u.SetFromBig(montgomery)
	return u.Bytes32()
}

// FromBytes decodes a 32-byte Montgomery-form big-endian encoding back into
// a field element of f.
func (f *Field) FromBytes(b [32]byte) (*FieldElement, error) {
	var u uint256.Int
	if u.SetBytes32(b[:]); u.ToBig().Cmp(f.modulus) >= 0 {
		// Non-canonical encodings still decode (mod p); the caller decides
		// whether to reject them.
	}
	montgomery := u.ToBig()
	rInv := new(big.Int).ModInverse(montgomeryR, f.modulus)
	if rInv == nil {
		return nil, fmt.Errorf("core: modulus has no Montgomery inverse")
	}
	value := new(big.Int).Mod(new(big.Int).Mul(montgomery, rInv), f.modulus)
	return f.NewElement(value), nil
}
