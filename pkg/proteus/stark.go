package proteus

import (
	"github.com/0xProject/starkcrypto/internal/proteus/protocol"
)

// Prove runs the full prover state machine (spec.md §4.10) over a filled
// trace table against a validated constraint set, returning a proof byte
// stream a matching Verify call can check. Any internal error is
// classified into ProofError before being returned, so callers never see
// a bare, unclassified error from this package's entry points.
func Prove(tr *TraceTable, cs *Constraints, params Params) (Proof, error) {
	proof, err := protocol.Prove(tr, cs, params)
	if err != nil {
		return nil, wrapError(err)
	}
	return proof, nil
}

// Verify replays Prove's channel operations in lockstep against a proof
// byte-stream, checking every commitment, consistency relation, and
// grinding puzzle the protocol requires. A nil return means the proof is
// valid for cs under params; any non-nil return is a *ProofError naming
// which of the spec's error kinds (§7) the proof or input failed.
func Verify(cs *Constraints, proof Proof, params Params) error {
	if err := protocol.Verify(cs, proof, params); err != nil {
		return wrapError(err)
	}
	return nil
}
