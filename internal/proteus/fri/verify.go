package fri

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/channel"
	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

// ReadCommitments replays the channel reads matching Prove's writes: one
// challenge per schedule step, a root for every step but the last, and
// finally the length-prefixed final-layer coefficients. The verifier's
// counterpart to Prove, kept in this package since it must stay in exact
// lockstep with Prove's write order.
func ReadCommitments(field *core.Field, schedule []int, ch *channel.VerifierChannel) (alphas []*core.FieldElement, roots []core.Hash, finalPoly *core.Polynomial, err error) {
	alphas = make([]*core.FieldElement, len(schedule))
	for j := range schedule {
		alphas[j] = ch.GetRandomFieldElement(field)
		if j < len(schedule)-1 {
			root, err := ch.ReadHash()
			if err != nil {
				return nil, nil, nil, fmt.Errorf("fri: reading layer %d root: %w", j, err)
			}
			roots = append(roots, root)
		}
	}

	lenBytes, err := ch.ReadBytes(4)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("fri: reading final layer length: %w", err)
	}
	n := int(lenBytes[0])<<24 | int(lenBytes[1])<<16 | int(lenBytes[2])<<8 | int(lenBytes[3])
	coeffs := make([]*core.FieldElement, n)
	for i := range coeffs {
		coeffs[i], err = ch.ReadFieldElement(field)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("fri: reading final layer coefficient %d: %w", i, err)
		}
	}
	return alphas, roots, core.NewPolynomial(field, coeffs), nil
}

// FinalDomain returns the domain the fully-folded final layer lives on:
// initial shrunk by 2^TotalFoldLog2(schedule).
func FinalDomain(initial Domain, schedule []int) Domain {
	d := initial
	for _, logK := range schedule {
		d = d.shrink(1 << uint(logK))
	}
	return d
}

// ReadQuery reads back one query's decommitment in the same shape
// QueryOne produces: per schedule layer, a group of 2^schedule[j] field
// elements plus its Merkle decommitment,
// sized deterministically via core.DecommitmentSize so no length prefix
// is needed.
func ReadQuery(field *core.Field, initialDomain Domain, schedule []int, index int, ch *channel.VerifierChannel) (*Query, error) {
	q := &Query{Index: index}
	domain := initialDomain
	idx := index
	for j, logK := range schedule {
		k := 1 << uint(logK)
		next := domain.shrink(k)
		m := next.Size
		if m == 0 {
			return nil, fmt.Errorf("fri: layer %d has zero size", j+1)
		}
		start := idx % m

		values := make([]*core.FieldElement, k)
		for t := 0; t < k; t++ {
			v, err := ch.ReadFieldElement(field)
			if err != nil {
				return nil, fmt.Errorf("fri: reading query group value layer %d: %w", j, err)
			}
			values[t] = v
		}

		indices := make([]int, k)
		for t := 0; t < k; t++ {
			indices[t] = start + t*m
		}
		size := core.DecommitmentSize(domain.Size, indices)
		decommitment := make([]core.Hash, size)
		for i := range decommitment {
			h, err := ch.ReadHash()
			if err != nil {
				return nil, fmt.Errorf("fri: reading query decommitment hash %d at layer %d: %w", i, j, err)
			}
			decommitment[i] = h
		}

		q.StartIndex = append(q.StartIndex, start)
		q.GroupValues = append(q.GroupValues, values)
		q.Decommitment = append(q.Decommitment, decommitment)

		idx = start
		domain = next
	}
	return q, nil
}

// WriteQuery writes one query's decommitment to the prover channel, the
// counterpart ReadQuery replays.
func WriteQuery(ch *channel.ProverChannel, q *Query) {
	for j := range q.GroupValues {
		for _, v := range q.GroupValues[j] {
			ch.WriteFieldElement(v)
		}
		for _, h := range q.Decommitment[j] {
			ch.WriteHash(h)
		}
	}
}
