package proteus

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/constraints"
	"github.com/0xProject/starkcrypto/internal/proteus/protocol"
)

// ErrorCode classifies a proving or verification failure, covering the
// ten kinds spec.md §7 names. Grounded on the teacher's
// pkg/vybium-starks-vm/errors.go ErrorCode enum, adapted from the
// teacher's VM-execution-shaped kinds to this package's prove/verify
// boundary.
type ErrorCode int

const (
	// ErrUnknown represents an error the internal packages did not
	// classify, including a trace whose shape does not match the
	// constraint set passed to Prove.
	ErrUnknown ErrorCode = iota

	// ErrInvalidTraceDimensions means a constraint set was built with
	// invalid trace dimensions: a row count that is not a power of two of
	// at least 2, or no columns.
	ErrInvalidTraceDimensions

	// ErrEmptyConstraints means a constraint set was built with no
	// constraints in it.
	ErrEmptyConstraints

	// ErrDegreeTooHigh means a constraint's symbolic degree exceeds the
	// blowup factor's bound.
	ErrDegreeTooHigh

	// ErrInvalidParams means a ProofParams value failed validation
	// (bad queries/pow_bits/fri_layout against the trace geometry).
	ErrInvalidParams

	// ErrRootHashMismatch means a revealed Merkle decommitment did not
	// verify against its committed root.
	ErrRootHashMismatch

	// ErrNotEnoughHashes means the proof byte-stream ran out of data at
	// a point the channel expected more hashes or field elements.
	ErrNotEnoughHashes

	// ErrTranscriptExhausted is ErrNotEnoughHashes' more specific form:
	// the verifier channel's read cursor ran past the proof's length.
	ErrTranscriptExhausted

	// ErrOodsConsistencyFailed means the out-of-domain recombination of
	// constraint values did not match the composition polynomial's
	// revealed value at the sampled point.
	ErrOodsConsistencyFailed

	// ErrFriLayerInconsistent means a FRI query's revealed values did not
	// fold consistently from one committed layer to the next, or did not
	// match the DEEP polynomial's own value at that query index.
	ErrFriLayerInconsistent

	// ErrFinalPolynomialTooHighDegree means FRI's fully-folded final
	// layer polynomial exceeded its expected degree bound.
	ErrFinalPolynomialTooHighDegree

	// ErrProofOfWorkFailed means the proof's grinding nonce did not
	// satisfy the required leading-zero-bit difficulty.
	ErrProofOfWorkFailed
)

func (c ErrorCode) String() string {
	switch c {
	case ErrInvalidTraceDimensions:
		return "InvalidTraceDimensions"
	case ErrEmptyConstraints:
		return "EmptyConstraints"
	case ErrDegreeTooHigh:
		return "DegreeTooHigh"
	case ErrInvalidParams:
		return "InvalidParams"
	case ErrRootHashMismatch:
		return "RootHashMismatch"
	case ErrNotEnoughHashes:
		return "NotEnoughHashes"
	case ErrTranscriptExhausted:
		return "TranscriptExhausted"
	case ErrOodsConsistencyFailed:
		return "OodsConsistencyFailed"
	case ErrFriLayerInconsistent:
		return "FriLayerInconsistent"
	case ErrFinalPolynomialTooHighDegree:
		return "FinalPolynomialTooHighDegree"
	case ErrProofOfWorkFailed:
		return "ProofOfWorkFailed"
	default:
		return "Unknown"
	}
}

// ProofError reports a classified prove/verify failure, mirroring the
// teacher's VMError{Code, Message, Cause} shape (pkg/vybium-starks-vm/errors.go)
// including its Unwrap/Is support for errors.Is/errors.As callers.
type ProofError struct {
	Code    ErrorCode
	Message string
	Cause   error
}

func (e *ProofError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("proteus error [%s]: %s (caused by: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("proteus error [%s]: %s", e.Code, e.Message)
}

func (e *ProofError) Unwrap() error { return e.Cause }

func (e *ProofError) Is(target error) bool {
	t, ok := target.(*ProofError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// wrapError classifies an internal constraints.Error or protocol.Error
// into the public taxonomy, or falls back to ErrUnknown for anything
// else (the internal packages' only other errors are either programmer
// panics, by design, or bare fmt.Errorf for malformed caller-supplied
// shapes, which this still reports as ErrUnknown rather than silently
// dropping).
func wrapError(err error) error {
	if err == nil {
		return nil
	}
	if ce, ok := err.(*constraints.Error); ok {
		switch ce.Code {
		case constraints.ErrInvalidTraceDimensions:
			return &ProofError{Code: ErrInvalidTraceDimensions, Message: ce.Msg, Cause: err}
		case constraints.ErrEmptyConstraints:
			return &ProofError{Code: ErrEmptyConstraints, Message: ce.Msg, Cause: err}
		case constraints.ErrDegreeTooHigh:
			return &ProofError{Code: ErrDegreeTooHigh, Message: ce.Msg, Cause: err}
		}
	}
	if pe, ok := err.(*protocol.Error); ok {
		switch pe.Code {
		case protocol.ErrInvalidParams:
			return &ProofError{Code: ErrInvalidParams, Message: pe.Msg, Cause: err}
		case protocol.ErrRootHashMismatch:
			return &ProofError{Code: ErrRootHashMismatch, Message: pe.Msg, Cause: err}
		case protocol.ErrNotEnoughHashes:
			return &ProofError{Code: ErrNotEnoughHashes, Message: pe.Msg, Cause: err}
		case protocol.ErrTranscriptExhausted:
			return &ProofError{Code: ErrTranscriptExhausted, Message: pe.Msg, Cause: err}
		case protocol.ErrOodsConsistencyFailed:
			return &ProofError{Code: ErrOodsConsistencyFailed, Message: pe.Msg, Cause: err}
		case protocol.ErrFriLayerInconsistent:
			return &ProofError{Code: ErrFriLayerInconsistent, Message: pe.Msg, Cause: err}
		case protocol.ErrFinalPolynomialTooHighDegree:
			return &ProofError{Code: ErrFinalPolynomialTooHighDegree, Message: pe.Msg, Cause: err}
		case protocol.ErrProofOfWorkFailed:
			return &ProofError{Code: ErrProofOfWorkFailed, Message: pe.Msg, Cause: err}
		}
	}
	return &ProofError{Code: ErrUnknown, Message: err.Error(), Cause: err}
}
