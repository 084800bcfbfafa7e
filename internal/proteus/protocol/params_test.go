package protocol

import "testing"

func TestFriScheduleConversion(t *testing.T) {
	p := Params{FriLayout: []uint8{3, 2, 2}}
	got := p.FriSchedule()
	want := []int{3, 2, 2}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("schedule[%d] = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestParamsValidate(t *testing.T) {
	cases := []struct {
		name     string
		params   Params
		traceLen int
		wantErr  bool
	}{
		{"default ok", DefaultParams(), 1024, false},
		{"fold sum exceeds domain", Params{BlowupLog2: 2, Queries: 10, FriLayout: []uint8{10}}, 16, true},
		{"zero queries", Params{BlowupLog2: 2, Queries: 0, FriLayout: []uint8{1}}, 16, true},
		{"pow bits too high", Params{BlowupLog2: 2, Queries: 10, PowBits: 41, FriLayout: []uint8{1}}, 16, true},
		{"non-power-of-two trace", Params{BlowupLog2: 2, Queries: 10, FriLayout: []uint8{1}}, 17, true},
		{"empty layout ok", Params{BlowupLog2: 4, Queries: 20, FriLayout: nil}, 2, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.params.Validate(c.traceLen)
			if (err != nil) != c.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, c.wantErr)
			}
		})
	}
}

func TestFinalLayerSizeAndDecommitmentUpperBound(t *testing.T) {
	p := Params{BlowupLog2: 4, Queries: 30, FriLayout: []uint8{3, 2}}
	const traceLen = 1024 // 2^10

	// total domain log2 = 10 + 4 = 14, fold sum = 5, final layer log2 = 9
	if got, want := p.FinalLayerSize(traceLen), 1<<9; got != want {
		t.Fatalf("FinalLayerSize = %d, want %d", got, want)
	}
	if p.DecommitmentSizeUpperBound(traceLen, 1, 1) <= 0 {
		t.Fatal("expected a positive decommitment size upper bound")
	}
}

func TestParamsCloneIsIndependent(t *testing.T) {
	p := DefaultParams()
	clone := p.Clone()
	clone.FriLayout[0] = 99
	if p.FriLayout[0] == 99 {
		t.Fatal("Clone shared the underlying FriLayout slice with the original")
	}
}

func TestParamsFluentBuildersDoNotMutateReceiver(t *testing.T) {
	base := DefaultParams()
	derived := base.WithBlowup(8).WithQueries(40).WithPoWBits(20)

	if base.BlowupLog2 == 8 || base.Queries == 40 || base.PowBits == 20 {
		t.Fatal("With* builders mutated the receiver instead of returning a copy")
	}
	if derived.BlowupLog2 != 8 || derived.Queries != 40 || derived.PowBits != 20 {
		t.Fatalf("derived params did not reflect the requested overrides: %+v", derived)
	}
}
