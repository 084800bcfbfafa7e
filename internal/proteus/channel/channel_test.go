package channel

import (
	"errors"
	"testing"

	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

func TestProverVerifierChannelLockstep(t *testing.T) {
	field := core.DefaultField

	pc := NewProverChannel(core.HashKeccak)
	pc.WriteBytes([]byte("claim"))
	root := core.HashBytes([]byte("root"))
	pc.WriteHash(root)
	fe := field.NewElementFromUint64(42)
	pc.WriteFieldElement(fe)
	randomBefore := pc.GetRandomFieldElement(field)
	idxBefore := pc.GetRandomQueryIndex(1024)

	proof := pc.Proof()

	vc := NewVerifierChannel(core.HashKeccak, proof)
	if _, err := vc.ReadBytes(len("claim")); err != nil {
		t.Fatalf("ReadBytes: %v", err)
	}
	gotRoot, err := vc.ReadHash()
	if err != nil {
		t.Fatalf("ReadHash: %v", err)
	}
	if gotRoot != root {
		t.Fatalf("root mismatch: got %s want %s", gotRoot, root)
	}
	gotFe, err := vc.ReadFieldElement(field)
	if err != nil {
		t.Fatalf("ReadFieldElement: %v", err)
	}
	if !gotFe.Equal(fe) {
		t.Fatal("field element mismatch")
	}
	randomAfter := vc.GetRandomFieldElement(field)
	if !randomAfter.Equal(randomBefore) {
		t.Fatal("verifier's squeeze diverged from the prover's")
	}
	idxAfter := vc.GetRandomQueryIndex(1024)
	if idxAfter != idxBefore {
		t.Fatalf("query index mismatch: got %d want %d", idxAfter, idxBefore)
	}
	if vc.Remaining() != 0 {
		t.Fatalf("expected no remaining bytes, got %d", vc.Remaining())
	}
}

func TestVerifierChannelExhausted(t *testing.T) {
	vc := NewVerifierChannel(core.HashKeccak, []byte{1, 2, 3})
	_, err := vc.ReadBytes(4)
	if err == nil {
		t.Fatal("expected an error reading past the end of the transcript")
	}
	var exhausted *ErrTranscriptExhausted
	if !errors.As(err, &exhausted) {
		t.Fatalf("expected *ErrTranscriptExhausted, got %T", err)
	}
	if exhausted.Requested != 4 || exhausted.Remaining != 3 {
		t.Fatalf("unexpected error fields: %+v", exhausted)
	}
}

func TestDistinctQueryIndicesAreDistinctAndInRange(t *testing.T) {
	pc := NewProverChannel(core.HashKeccak)
	indices := pc.GetRandomQueryIndices(1<<10, 20)
	if len(indices) != 20 {
		t.Fatalf("got %d indices, want 20", len(indices))
	}
	seen := make(map[int]bool, len(indices))
	for _, idx := range indices {
		if seen[idx] {
			t.Fatalf("duplicate query index %d", idx)
		}
		seen[idx] = true
		if idx < 0 || idx >= 1<<10 {
			t.Fatalf("index %d out of range [0, %d)", idx, 1<<10)
		}
	}
}

func TestAbsorbingDifferentBytesDivergesState(t *testing.T) {
	field := core.DefaultField

	a := NewProverChannel(core.HashKeccak)
	a.WriteBytes([]byte("one"))
	ra := a.GetRandomFieldElement(field)

	b := NewProverChannel(core.HashKeccak)
	b.WriteBytes([]byte("two"))
	rb := b.GetRandomFieldElement(field)

	if ra.Equal(rb) {
		t.Fatal("channels absorbing different bytes produced the same squeeze")
	}
}
