package protocol

import (
	"encoding/binary"
	"fmt"
	"sort"

	"github.com/0xProject/starkcrypto/internal/proteus/channel"
	"github.com/0xProject/starkcrypto/internal/proteus/constraints"
	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/fri"
	"github.com/0xProject/starkcrypto/internal/proteus/pow"
	"github.com/0xProject/starkcrypto/internal/proteus/trace"
)

// Prove runs the full prover state machine (spec.md §4.10) over a filled
// trace table against a validated constraint set, producing a proof byte
// stream a matching Verify call can check. Grounded on the teacher's
// stark.go/prover.go phase sequencing (protocols/stark.go, prover.go),
// replaced wholesale with the DEEP-ALI/FRI construction this system uses
// instead of the teacher's binary-RS-code IOP.
func Prove(tr *trace.Table, cs *constraints.Constraints, params Params) (Proof, error) {
	if tr.NumRows() != cs.NumRows || tr.NumColumns() != cs.NumColumns {
		return nil, fmt.Errorf("protocol: trace shape (%d rows, %d cols) does not match constraints (%d rows, %d cols)",
			tr.NumRows(), tr.NumColumns(), cs.NumRows, cs.NumColumns)
	}
	if err := params.Validate(tr.NumRows()); err != nil {
		return nil, wrapErr(ErrInvalidParams, "init", err)
	}

	field := tr.Field()
	traceLen := tr.NumRows()
	numColumns := tr.NumColumns()

	ch := channel.NewProverChannel(core.HashKeccak)
	ch.WriteBytes(cs.ClaimBytes)

	ldeDomain, err := NewLDEDomain(field, traceLen, int(params.BlowupLog2))
	if err != nil {
		return nil, err
	}
	domainSize := ldeDomain.Size
	cosetPoints := ldeDomain.Elements()

	// --- TraceCommit ---
	columnPolys, err := tr.ColumnPolynomials()
	if err != nil {
		return nil, fmt.Errorf("protocol: interpolating trace columns: %w", err)
	}
	columnLDEs := make([][]*core.FieldElement, numColumns)
	for c, poly := range columnPolys {
		vals, err := poly.LDE(ldeDomain.Offset, domainSize)
		if err != nil {
			return nil, fmt.Errorf("protocol: LDE of column %d: %w", c, err)
		}
		columnLDEs[c] = vals
	}

	traceLeaves := make([]core.Hashable, domainSize)
	for i := 0; i < domainSize; i++ {
		vals := make([]*core.FieldElement, numColumns)
		for c := range vals {
			vals[c] = columnLDEs[c][i]
		}
		traceLeaves[i] = concatValues(vals)
	}
	traceTree, err := core.MakeTree(traceLeaves)
	if err != nil {
		return nil, fmt.Errorf("protocol: committing trace: %w", err)
	}
	ch.WriteHash(traceTree.Root())

	// --- ConstraintSample ---
	coefficients := ch.GetRandomFieldElements(field, 2*len(cs.List))

	// --- CompositionCommit ---
	generator, err := tr.Generator()
	if err != nil {
		return nil, err
	}
	ldeCtx := &constraints.LDEContext{
		Field:        field,
		CosetPoints:  cosetPoints,
		Generator:    generator,
		TraceLen:     traceLen,
		ColumnPolys:  columnPolys,
		ResolveClaim: cs.Claim,
	}
	compositionValues, err := constraints.Compile(cs, ldeCtx, coefficients)
	if err != nil {
		return nil, fmt.Errorf("protocol: compiling constraints: %w", err)
	}

	offsetInv, err := ldeDomain.Offset.Inv()
	if err != nil {
		return nil, err
	}
	qc, err := core.INTT(field, compositionValues)
	if err != nil {
		return nil, fmt.Errorf("protocol: interpolating composition polynomial: %w", err)
	}
	compositionPoly := core.NewPolynomial(field, qc).Shift(offsetInv).Trim()

	// Sized from the target degree, exactly as Verify does, so both sides
	// agree on the number of parts whatever the actual degree turns out to be.
	numParts := nextPow2(constraints.SplitCount(cs.TargetDegree(), traceLen))
	parts := constraints.Split(field, compositionPoly, numParts, traceLen)

	compDomainSize := domainSize / numParts
	compPartOffset := ldeDomain.Offset.Pow(uint64(numParts))
	compLDEs := make([][]*core.FieldElement, numParts)
	for k, part := range parts {
		vals, err := part.LDE(compPartOffset, compDomainSize)
		if err != nil {
			return nil, fmt.Errorf("protocol: LDE of composition part %d: %w", k, err)
		}
		compLDEs[k] = vals
	}

	compLeaves := make([]core.Hashable, compDomainSize)
	for i := 0; i < compDomainSize; i++ {
		vals := make([]*core.FieldElement, numParts)
		for k := range vals {
			vals[k] = compLDEs[k][i]
		}
		compLeaves[i] = concatValues(vals)
	}
	compTree, err := core.MakeTree(compLeaves)
	if err != nil {
		return nil, fmt.Errorf("protocol: committing composition: %w", err)
	}
	ch.WriteHash(compTree.Root())

	// --- OODS ---
	z := sampleOODSPoint(func() *core.FieldElement { return ch.GetRandomFieldElement(field) }, traceLen)
	offsets := collectOffsets(cs.List)
	traceAt := make([][]*core.FieldElement, len(offsets))
	for oi, o := range offsets {
		point, err := shiftPoint(z, generator, o)
		if err != nil {
			return nil, err
		}
		vals := make([]*core.FieldElement, numColumns)
		for c, poly := range columnPolys {
			vals[c] = poly.Evaluate(point)
			ch.WriteFieldElement(vals[c])
		}
		traceAt[oi] = vals
	}
	zNumParts := z.Pow(uint64(numParts))
	compAtZ := make([]*core.FieldElement, numParts)
	for k, part := range parts {
		compAtZ[k] = part.Evaluate(zNumParts)
		ch.WriteFieldElement(compAtZ[k])
	}

	zIdx0 := offsetIndex(offsets, 0)
	zIdx1 := offsetIndex(offsets, 1)
	if zIdx0 < 0 || zIdx1 < 0 {
		return nil, fmt.Errorf("protocol: OODS offsets unexpectedly missing 0 or 1")
	}

	// --- DEEPCompose ---
	deepCoeffs := ch.GetRandomFieldElements(field, numColumns+numParts)
	dp := &deepParams{
		field: field, z: z, zg: z.Mul(generator), zNumParts: zNumParts,
		traceAtZ: traceAt[zIdx0], traceAtZg: traceAt[zIdx1], compAtZ: compAtZ,
		deepCoeffs: deepCoeffs, numColumns: numColumns, numParts: numParts,
	}

	deepValues := make([]*core.FieldElement, domainSize)
	for i := 0; i < domainSize; i++ {
		traceAtX := make([]*core.FieldElement, numColumns)
		for c := range traceAtX {
			traceAtX[c] = columnLDEs[c][i]
		}
		compAtX := make([]*core.FieldElement, numParts)
		for k := range compAtX {
			compAtX[k] = compLDEs[k][i%compDomainSize]
		}
		v, err := deepValueAt(dp, cosetPoints[i], traceAtX, compAtX)
		if err != nil {
			return nil, fmt.Errorf("protocol: computing DEEP value at index %d: %w", i, err)
		}
		deepValues[i] = v
	}

	// --- FRI ---
	deepRoot, err := fri.CommitInitialRoot(deepValues)
	if err != nil {
		return nil, fmt.Errorf("protocol: committing DEEP layer: %w", err)
	}
	ch.WriteHash(deepRoot)

	friDomain := ldeDomain.FRIDomain()
	schedule := params.FriSchedule()
	friProof, err := fri.Prove(field, deepValues, friDomain, schedule, ch)
	if err != nil {
		return nil, fmt.Errorf("protocol: FRI: %w", err)
	}

	// --- PoW ---
	seed := ch.GetPoWSeed()
	nonce := pow.Search(seed, params.PowBits)
	var nonceBytes [8]byte
	binary.BigEndian.PutUint64(nonceBytes[:], nonce)
	ch.WriteBytes(nonceBytes[:])

	// --- Queries ---
	queryIndices := ch.GetRandomQueryIndices(domainSize, int(params.Queries))
	sortedIdx := sortedUnique(queryIndices)

	for _, idx := range sortedIdx {
		for c := 0; c < numColumns; c++ {
			ch.WriteFieldElement(columnLDEs[c][idx])
		}
	}
	for _, h := range traceTree.Proof(sortedIdx) {
		ch.WriteHash(h)
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
	for _, idx := range compIndices {
		for k := 0; k < numParts; k++ {
			ch.WriteFieldElement(compLDEs[k][idx])
		}
	}
	for _, h := range compTree.Proof(compIndices) {
		ch.WriteHash(h)
	}

	for _, idx := range queryIndices {
		q, err := fri.QueryOne(friProof, idx)
		if err != nil {
			return nil, fmt.Errorf("protocol: FRI query at index %d: %w", idx, err)
		}
		fri.WriteQuery(ch, q)
	}

	return Proof(ch.Proof()), nil
}

// sampleOODSPoint draws field elements from squeeze until one is not a
// traceLen-th root of unity, so z lies outside the trace domain and no
// constraint denominator that vanishes there (X - g^i, X^traceLen - 1) is
// zero when the constraints are evaluated at z.
func sampleOODSPoint(squeeze func() *core.FieldElement, traceLen int) *core.FieldElement {
	for {
		z := squeeze()
		if !z.Pow(uint64(traceLen)).IsOne() {
			return z
		}
	}
}
