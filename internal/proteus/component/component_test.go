package component

import (
	"testing"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

func TestExampleComponentChecks(t *testing.T) {
	c, err := Example(core.DefaultField, 8, 2, 2, 3)
	if err != nil {
		t.Fatalf("Example: %v", err)
	}
	if err := c.Check(); err != nil {
		t.Fatalf("Check: %v", err)
	}
}

func TestPermuteColumnsPreservesCheck(t *testing.T) {
	c, err := Example(core.DefaultField, 8, 2, 2, 3)
	if err != nil {
		t.Fatalf("Example: %v", err)
	}
	permuted, err := PermuteColumns(c, []int{1, 0})
	if err != nil {
		t.Fatalf("PermuteColumns: %v", err)
	}
	if err := permuted.Check(); err != nil {
		t.Fatalf("Check after PermuteColumns: %v", err)
	}
}

func TestShiftPreservesCheck(t *testing.T) {
	c, err := Example(core.DefaultField, 8, 2, 2, 3)
	if err != nil {
		t.Fatalf("Example: %v", err)
	}
	shifted, err := Shift(c, 3)
	if err != nil {
		t.Fatalf("Shift: %v", err)
	}
	if err := shifted.Check(); err != nil {
		t.Fatalf("Check after Shift: %v", err)
	}
}

func TestFoldPreservesCheck(t *testing.T) {
	c, err := Example(core.DefaultField, 8, 2, 2, 3)
	if err != nil {
		t.Fatalf("Example: %v", err)
	}
	folded, err := Fold(c)
	if err != nil {
		t.Fatalf("Fold: %v", err)
	}
	if err := folded.Check(); err != nil {
		t.Fatalf("Check after Fold: %v", err)
	}
}

func TestFoldRejectsOddColumnCount(t *testing.T) {
	c, err := Example(core.DefaultField, 8, 1, 2, 3)
	if err != nil {
		t.Fatalf("Example: %v", err)
	}
	if _, err := Fold(c); err == nil {
		t.Fatal("expected an error folding a component with an odd column count")
	}
}

func TestComposeHorizontalAndVerticalPreserveCheck(t *testing.T) {
	a, err := Example(core.DefaultField, 8, 2, 2, 3)
	if err != nil {
		t.Fatalf("Example a: %v", err)
	}
	b, err := Example(core.DefaultField, 8, 2, 5, 8)
	if err != nil {
		t.Fatalf("Example b: %v", err)
	}

	h, err := ComposeHorizontal(a, b)
	if err != nil {
		t.Fatalf("ComposeHorizontal: %v", err)
	}
	if err := h.Check(); err != nil {
		t.Fatalf("Check after ComposeHorizontal: %v", err)
	}
	if _, ok := h.Labels["left_start"]; !ok {
		t.Fatal("expected a left_start label after ComposeHorizontal")
	}
	if _, ok := h.Labels["right_start"]; !ok {
		t.Fatal("expected a right_start label after ComposeHorizontal")
	}

	v, err := ComposeVertical(a, b)
	if err != nil {
		t.Fatalf("ComposeVertical: %v", err)
	}
	if err := v.Check(); err != nil {
		t.Fatalf("Check after ComposeVertical: %v", err)
	}
	if len(v.Constraints) != len(a.Constraints) {
		t.Fatalf("ComposeVertical produced %d constraints, want %d", len(v.Constraints), len(a.Constraints))
	}
}

func TestComposeVerticalRejectsMismatchedShapes(t *testing.T) {
	a, err := Example(core.DefaultField, 8, 2, 2, 3)
	if err != nil {
		t.Fatalf("Example a: %v", err)
	}
	b, err := Example(core.DefaultField, 16, 2, 5, 8)
	if err != nil {
		t.Fatalf("Example b: %v", err)
	}
	if _, err := ComposeVertical(a, b); err == nil {
		t.Fatal("expected an error composing components of different row counts")
	}
}

func TestFoldManyPreservesCheck(t *testing.T) {
	c, err := Example(core.DefaultField, 8, 2, 2, 3)
	if err != nil {
		t.Fatalf("Example: %v", err)
	}
	folded, err := FoldMany(c, 2)
	if err != nil {
		t.Fatalf("FoldMany: %v", err)
	}
	if err := folded.Check(); err != nil {
		t.Fatalf("Check after FoldMany: %v", err)
	}
	if got, want := folded.Trace.NumRows(), 8*4; got != want {
		t.Fatalf("folded rows = %d, want %d", got, want)
	}
}

func TestComposeFoldedAlignsUnequalRowCounts(t *testing.T) {
	a, err := Example(core.DefaultField, 8, 1, 2, 3)
	if err != nil {
		t.Fatalf("Example a: %v", err)
	}
	b, err := Example(core.DefaultField, 32, 1, 5, 8)
	if err != nil {
		t.Fatalf("Example b: %v", err)
	}

	composed, err := ComposeFolded(a, b)
	if err != nil {
		t.Fatalf("ComposeFolded: %v", err)
	}
	if err := composed.Check(); err != nil {
		t.Fatalf("Check after ComposeFolded: %v", err)
	}
	if got, want := composed.Trace.NumRows(), 32; got != want {
		t.Fatalf("composed rows = %d, want %d", got, want)
	}
}

// TestExampleLabelsDoNotReproduceOriginalVector documents, rather than
// silently working around, the discrepancy recorded in DESIGN.md: this
// package's Example fixture stands in for the original's
// FixedComponent::example numeric vector (whose source lives outside the
// extracted original_source tree), so its label values are this package's
// own deterministic derivation, not the original's hex constants. Check
// above already confirms labels are internally consistent with the
// stored trace; this test only pins the seed-derived starting value so a
// future edit to Example's construction doesn't silently drift.
func TestExampleLabelsDoNotReproduceOriginalVector(t *testing.T) {
	c, err := Example(core.DefaultField, 8, 2, 2, 3)
	if err != nil {
		t.Fatalf("Example: %v", err)
	}
	start := c.Trace.Get(c.Labels["start"].Row, 0)
	if !start.Equal(core.DefaultField.NewElementFromUint64(2)) {
		t.Fatalf("start = %s, want 2", start)
	}
}
