package protocol

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sort"

	"github.com/0xProject/starkcrypto/internal/proteus/channel"
	"github.com/0xProject/starkcrypto/internal/proteus/constraints"
	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/fri"
	"github.com/0xProject/starkcrypto/internal/proteus/pow"
)

// Verify replays Prove's channel operations in lockstep against a proof
// byte-stream, checking every commitment, consistency relation, and
// grinding puzzle the spec's phases require. Grounded on the teacher's
// stark.go/verifier.go phase sequencing, mirrored channel-for-channel
// against prover.go.
func Verify(cs *constraints.Constraints, proof Proof, params Params) error {
	traceLen := cs.NumRows
	if err := params.Validate(traceLen); err != nil {
		return wrapErr(ErrInvalidParams, "init", err)
	}

	field := core.DefaultField
	numColumns := cs.NumColumns

	ch := channel.NewVerifierChannel(core.HashKeccak, proof.Bytes())
	if _, err := ch.ReadBytes(len(cs.ClaimBytes)); err != nil {
		return transcriptErr("init", err)
	}

	ldeDomain, err := NewLDEDomain(field, traceLen, int(params.BlowupLog2))
	if err != nil {
		return err
	}
	domainSize := ldeDomain.Size

	// --- TraceCommit ---
	traceRoot, err := ch.ReadHash()
	if err != nil {
		return transcriptErr("trace_commit", err)
	}

	// --- ConstraintSample ---
	coefficients := ch.GetRandomFieldElements(field, 2*len(cs.List))
	weights, err := prepareWeights(cs, coefficients)
	if err != nil {
		return err
	}

	// --- CompositionCommit ---
	generator, err := field.PrimitiveRootOfUnity(traceLen)
	if err != nil {
		return err
	}
	compRoot, err := ch.ReadHash()
	if err != nil {
		return transcriptErr("composition_commit", err)
	}

	compositionDegree := cs.TargetDegree()
	numParts := nextPow2(constraints.SplitCount(compositionDegree, traceLen))
	compDomainSize := domainSize / numParts

	// --- OODS ---
	z := sampleOODSPoint(func() *core.FieldElement { return ch.GetRandomFieldElement(field) }, traceLen)
	offsets := collectOffsets(cs.List)
	traceAt := make([][]*core.FieldElement, len(offsets))
	for oi := range offsets {
		vals := make([]*core.FieldElement, numColumns)
		for c := 0; c < numColumns; c++ {
			fv, err := ch.ReadFieldElement(field)
			if err != nil {
				return transcriptErr("oods", err)
			}
			vals[c] = fv
		}
		traceAt[oi] = vals
	}
	zNumParts := z.Pow(uint64(numParts))
	compAtZ := make([]*core.FieldElement, numParts)
	for k := 0; k < numParts; k++ {
		fv, err := ch.ReadFieldElement(field)
		if err != nil {
			return transcriptErr("oods", err)
		}
		compAtZ[k] = fv
	}

	zIdx0 := offsetIndex(offsets, 0)
	zIdx1 := offsetIndex(offsets, 1)
	if zIdx0 < 0 || zIdx1 < 0 {
		return fmt.Errorf("protocol: OODS offsets unexpectedly missing 0 or 1")
	}

	ov := &oodsValues{offsets: offsets, traceAt: traceAt, compositionAt: compAtZ}
	expected, err := recombineAtOODS(field, weights, z, traceLen, ov, cs.Claim)
	if err != nil {
		return err
	}
	actual := compositionValueAt(field, z, compAtZ)
	if !expected.Equal(actual) {
		return &Error{Code: ErrOodsConsistencyFailed, Phase: "oods", Msg: "recombined constraint value does not match composition value at z"}
	}

	// --- DEEPCompose ---
	deepCoeffs := ch.GetRandomFieldElements(field, numColumns+numParts)
	dp := &deepParams{
		field: field, z: z, zg: z.Mul(generator), zNumParts: zNumParts,
		traceAtZ: traceAt[zIdx0], traceAtZg: traceAt[zIdx1], compAtZ: compAtZ,
		deepCoeffs: deepCoeffs, numColumns: numColumns, numParts: numParts,
	}

	// --- FRI commitments ---
	deepRoot, err := ch.ReadHash()
	if err != nil {
		return transcriptErr("fri", err)
	}
	schedule := params.FriSchedule()
	alphas, friRoots, finalPoly, err := fri.ReadCommitments(field, schedule, ch)
	if err != nil {
		return transcriptErr("fri", err)
	}
	if maxDegree := params.FinalLayerSize(traceLen) >> params.BlowupLog2; len(finalPoly.Coefficients) > maxDegree {
		return &Error{Code: ErrFinalPolynomialTooHighDegree, Phase: "fri", Msg: fmt.Sprintf("final layer has %d coefficients, want at most %d", len(finalPoly.Coefficients), maxDegree)}
	}

	// --- PoW ---
	seed := ch.GetPoWSeed()
	nonceBytes, err := ch.ReadBytes(8)
	if err != nil {
		return transcriptErr("pow", err)
	}
	nonce := binary.BigEndian.Uint64(nonceBytes)
	if err := pow.Verify(seed, params.PowBits, nonce); err != nil {
		return &Error{Code: ErrProofOfWorkFailed, Phase: "pow", Msg: err.Error()}
	}

	// --- Queries ---
	queryIndices := ch.GetRandomQueryIndices(domainSize, int(params.Queries))
	sortedIdx := sortedUnique(queryIndices)

	traceValues := make(map[int][]*core.FieldElement, len(sortedIdx))
	for _, idx := range sortedIdx {
		vals := make([]*core.FieldElement, numColumns)
		for c := 0; c < numColumns; c++ {
			fv, err := ch.ReadFieldElement(field)
			if err != nil {
				return transcriptErr("queries", err)
			}
			vals[c] = fv
		}
		traceValues[idx] = vals
	}
	traceDepth := log2(domainSize)
	traceDecommitSize := core.DecommitmentSize(domainSize, sortedIdx)
	traceDecommit := make([]core.Hash, traceDecommitSize)
	for i := range traceDecommit {
		h, err := ch.ReadHash()
		if err != nil {
			return transcriptErr("queries", err)
		}
		traceDecommit[i] = h
	}
	traceEntries := make([]core.LeafEntry, len(sortedIdx))
	for i, idx := range sortedIdx {
		traceEntries[i] = core.LeafEntry{Index: idx, Leaf: concatValues(traceValues[idx])}
	}
	if !core.Verify(traceRoot, traceDepth, traceEntries, traceDecommit) {
		return &Error{Code: ErrRootHashMismatch, Phase: "queries", Msg: "trace decommitment failed"}
	}

	compIdxSet := make(map[int]bool, len(sortedIdx))
	for _, idx := range sortedIdx {
		compIdxSet[idx%compDomainSize] = true
	}
	compIndices := make([]int, 0, len(compIdxSet))
	for idx := range compIdxSet {
		compIndices = append(compIndices, idx)
	}
	sort.Ints(compIndices)

	compValues := make(map[int][]*core.FieldElement, len(compIndices))
	for _, idx := range compIndices {
		vals := make([]*core.FieldElement, numParts)
		for k := 0; k < numParts; k++ {
			fv, err := ch.ReadFieldElement(field)
			if err != nil {
				return transcriptErr("queries", err)
			}
			vals[k] = fv
		}
		compValues[idx] = vals
	}
	compDepth := log2(compDomainSize)
	compDecommitSize := core.DecommitmentSize(compDomainSize, compIndices)
	compDecommit := make([]core.Hash, compDecommitSize)
	for i := range compDecommit {
		h, err := ch.ReadHash()
		if err != nil {
			return transcriptErr("queries", err)
		}
		compDecommit[i] = h
	}
	compEntries := make([]core.LeafEntry, len(compIndices))
	for i, idx := range compIndices {
		compEntries[i] = core.LeafEntry{Index: idx, Leaf: concatValues(compValues[idx])}
	}
	if !core.Verify(compRoot, compDepth, compEntries, compDecommit) {
		return &Error{Code: ErrRootHashMismatch, Phase: "queries", Msg: "composition decommitment failed"}
	}

	// roots[j] must equal root(layers[j]) per fri.VerifyQuery's indexing:
	// layer 0's root is the externally-committed deepRoot, and the last
	// FRI-read root (for the final committed layer) is never consulted by
	// VerifyQuery's check loop, so it is dropped here.
	var allRoots []core.Hash
	allRoots = append(allRoots, deepRoot)
	if len(friRoots) > 0 {
		allRoots = append(allRoots, friRoots[:len(friRoots)-1]...)
	}
	friDomain := ldeDomain.FRIDomain()
	finalDomain := fri.FinalDomain(friDomain, schedule)

	cosetPoints := ldeDomain.Elements()
	for _, idx := range queryIndices {
		q, err := fri.ReadQuery(field, friDomain, schedule, idx, ch)
		if err != nil {
			return transcriptErr("queries", err)
		}

		traceAtX := traceValues[idx]
		compAtX := compValues[idx%compDomainSize]
		deepExpected, err := deepValueAt(dp, cosetPoints[idx], traceAtX, compAtX)
		if err != nil {
			return wrapErr(ErrFriLayerInconsistent, "queries", err)
		}
		m0 := domainSize >> uint(schedule[0])
		t0 := idx / m0
		if t0 >= len(q.GroupValues[0]) || !deepExpected.Equal(q.GroupValues[0][t0]) {
			return &Error{Code: ErrFriLayerInconsistent, Phase: "queries", Msg: "DEEP value does not match FRI layer-0 group value"}
		}

		if err := fri.VerifyQuery(field, friDomain, schedule, allRoots, finalPoly, finalDomain, alphas, q); err != nil {
			return wrapErr(ErrFriLayerInconsistent, "queries", err)
		}
	}

	return nil
}

func transcriptErr(phase string, err error) error {
	var exhausted *channel.ErrTranscriptExhausted
	if errors.As(err, &exhausted) {
		return &Error{Code: ErrTranscriptExhausted, Phase: phase, Msg: exhausted.Error()}
	}
	return wrapErr(ErrNotEnoughHashes, phase, err)
}
