package protocol

// Proof is the prover's output byte-stream (spec.md §6). It carries no
// internal framing beyond what fri.Proof's length-prefixed final layer
// already needs: every other boundary (root positions, OODS value counts,
// query decommitment sizes) is re-derived deterministically by the
// verifier from Params and the transcript-sampled randomness it replays,
// so a flat byte slice plus a VerifierChannel to read it back is
// sufficient. This replaces the teacher's ProofItem queue
// (protocols/proof.go, proof_stream.go), which tagged each item with a
// field-element/hash discriminant; here the discriminant is implicit in
// the fixed phase order both sides walk in lockstep.
type Proof []byte

// Bytes returns a copy of the proof's raw bytes.
func (p Proof) Bytes() []byte { return append([]byte(nil), p...) }

// Len reports the proof's size in bytes.
func (p Proof) Len() int { return len(p) }
