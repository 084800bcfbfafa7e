package core

import "testing"

func TestFieldElementBytesRoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 2, 3, 12345, 1 << 40}
	for _, v := range cases {
		fe := DefaultField.NewElementFromUint64(v)
		b := fe.Bytes()
		got, err := DefaultField.FromBytes(b)
		if err != nil {
			t.Fatalf("FromBytes(%d): %v", v, err)
		}
		if !got.Equal(fe) {
			t.Fatalf("round trip mismatch for %d: got %s, want %s", v, got, fe)
		}
	}
}

func TestFieldArithmetic(t *testing.T) {
	a := DefaultField.NewElementFromUint64(5)
	b := DefaultField.NewElementFromUint64(7)

	if !a.Add(b).Equal(DefaultField.NewElementFromUint64(12)) {
		t.Fatal("5 + 7 != 12")
	}
	if !a.Mul(b).Equal(DefaultField.NewElementFromUint64(35)) {
		t.Fatal("5 * 7 != 35")
	}
	if !a.Sub(a).IsZero() {
		t.Fatal("a - a != 0")
	}

	inv, err := b.Inv()
	if err != nil {
		t.Fatalf("Inv: %v", err)
	}
	if !b.Mul(inv).IsOne() {
		t.Fatal("b * b^-1 != 1")
	}
	if _, err := DefaultField.Zero().Inv(); err == nil {
		t.Fatal("expected an error inverting zero")
	}

	q, err := a.Div(b)
	if err != nil {
		t.Fatalf("Div: %v", err)
	}
	if !q.Mul(b).Equal(a) {
		t.Fatal("(a / b) * b != a")
	}
}

func TestFieldElementSqrt(t *testing.T) {
	x := DefaultField.NewElementFromUint64(4)
	sq := x.Mul(x)
	root, err := sq.Sqrt()
	if err != nil {
		t.Fatalf("Sqrt: %v", err)
	}
	if !root.Mul(root).Equal(sq) {
		t.Fatal("sqrt(x^2)^2 != x^2")
	}
}

func TestPrimitiveRootOfUnityHasExpectedOrder(t *testing.T) {
	const n = 1024
	g, err := DefaultField.PrimitiveRootOfUnity(n)
	if err != nil {
		t.Fatalf("PrimitiveRootOfUnity: %v", err)
	}
	if !g.Pow(n).IsOne() {
		t.Fatal("g^n != 1")
	}
	if g.Pow(n / 2).IsOne() {
		t.Fatal("g^(n/2) == 1, generator has too small an order")
	}
}
