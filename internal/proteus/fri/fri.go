// Package fri implements the FRI low-degree test: recursive folding of an
// LDE evaluation vector with a Merkle commitment at each layer, followed
// by query-time decommitment. Grounded on the teacher's FRIProtocol
// (protocols/fri.go), whose foldFunction implements the TR17-134 binary
// (factor-2) folding formula; this package generalizes that formula to an
// arbitrary factor 2^k per layer via a direct radix-2^k fold (see
// foldByFactor) rather than stacking uncommitted binary sub-folds, so that
// every committed layer in the proof corresponds 1:1 with a schedule entry
// and its query decommitment, matching spec.md §4.9's per-layer
// commit-then-query structure.
package fri

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/channel"
	"github.com/0xProject/starkcrypto/internal/proteus/core"
)

// Domain is a coset offset*<generator> of the given size.
type Domain struct {
	Offset    *core.FieldElement
	Generator *core.FieldElement
	Size      int
}

// Elements returns the domain's points in order.
func (d Domain) Elements() []*core.FieldElement {
	out := make([]*core.FieldElement, d.Size)
	cur := d.Offset
	for i := range out {
		out[i] = cur
		cur = cur.Mul(d.Generator)
	}
	return out
}

// shrink returns the domain folded down by factor K: offset and generator
// raised to the K-th power, size divided by K.
func (d Domain) shrink(k int) Domain {
	return Domain{
		Offset:    d.Offset.Pow(uint64(k)),
		Generator: d.Generator.Pow(uint64(k)),
		Size:      d.Size / k,
	}
}

// geometricSum returns 1 + z + z^2 + ... + z^(k-1).
func geometricSum(field *core.Field, z *core.FieldElement, k int) *core.FieldElement {
	if z.IsOne() {
		return field.NewElementFromUint64(uint64(k))
	}
	numerator := z.Pow(uint64(k)).Sub(field.One())
	denominator := z.Sub(field.One())
	inv, _ := denominator.Inv()
	return numerator.Mul(inv)
}

// foldByFactor folds evaluations on domain d (size n = k*m) down to a
// vector of size m on d.shrink(k), using challenge alpha. For each new
// position i in [0, m), the K points {f[i+t*m] : t=0..k-1} are the values
// of P at x_i*zeta^t for zeta = d.Generator^m (a primitive k-th root of
// unity), and next[i] = sum_t alpha^t * P_t(x_i^k) where
// P(x) = sum_t x^t P_t(x^k). This reduces, via the DFT/IDFT duality
// between the P_t decomposition and evaluations at x_i*zeta^t, to:
//
//	next[i] = (1/k) * sum_j f[i+j*m] * geometricSum(alpha * x_i^-1 * zeta^-j, k)
func foldByFactor(field *core.Field, f []*core.FieldElement, d Domain, k int, alpha *core.FieldElement) ([]*core.FieldElement, error) {
	n := d.Size
	if n%k != 0 {
		return nil, fmt.Errorf("fri: domain size %d not divisible by fold factor %d", n, k)
	}
	m := n / k

	elements := d.Elements()
	zeta := d.Generator.Pow(uint64(m))
	zetaInv, err := zeta.Inv()
	if err != nil {
		return nil, err
	}

	xInvs := make([]*core.FieldElement, m)
	for i := 0; i < m; i++ {
		xInvs[i] = elements[i]
	}
	xInvs, err = core.BatchInvert(xInvs)
	if err != nil {
		return nil, fmt.Errorf("fri: fold: %w", err)
	}

	kInv, err := field.NewElementFromUint64(uint64(k)).Inv()
	if err != nil {
		return nil, err
	}

	next := make([]*core.FieldElement, m)
	for i := 0; i < m; i++ {
		acc := field.Zero()
		zetaInvPowJ := field.One()
		for j := 0; j < k; j++ {
			z := alpha.Mul(xInvs[i]).Mul(zetaInvPowJ)
			acc = acc.Add(f[i+j*m].Mul(geometricSum(field, z, k)))
			zetaInvPowJ = zetaInvPowJ.Mul(zetaInv)
		}
		next[i] = acc.Mul(kInv)
	}
	return next, nil
}

// LayerCommit is one committed FRI layer: its Merkle root plus the
// evaluation vector and domain needed to answer queries against it.
type LayerCommit struct {
	Root        core.Hash
	Tree        *core.MerkleTree
	Evaluations []*core.FieldElement
	Domain      Domain
}

func commitLayer(evaluations []*core.FieldElement, domain Domain) (LayerCommit, error) {
	leaves := make([]core.Hashable, len(evaluations))
	for i, v := range evaluations {
		b := v.Bytes()
		leaves[i] = core.BytesHashable(b[:])
	}
	tree, err := core.MakeTree(leaves)
	if err != nil {
		return LayerCommit{}, fmt.Errorf("fri: committing layer: %w", err)
	}
	return LayerCommit{Root: tree.Root(), Tree: tree, Evaluations: evaluations, Domain: domain}, nil
}

// Proof holds every layer (layer 0 is the initial, pre-folding
// evaluation vector; its root is assumed already absorbed by the caller
// and is not rewritten to the channel; the last entry, the fully-folded
// layer, carries no Merkle tree) plus the final, fully-folded polynomial
// written in the clear.
type Proof struct {
	Layers    []LayerCommit
	FinalPoly *core.Polynomial
	Schedule  []int
}

// CommitInitialRoot computes the Merkle root of the initial (unfolded)
// evaluation vector without retaining the tree, for the caller to absorb
// into the channel before calling Prove: Prove's own internal layer-0
// commitment (built identically, for answering queries) assumes its root
// was already written by the time its first challenge is squeezed, per
// spec.md §4.9's commit-then-challenge ordering.
func CommitInitialRoot(evaluations []*core.FieldElement) (core.Hash, error) {
	lc, err := commitLayer(evaluations, Domain{})
	if err != nil {
		return core.Hash{}, err
	}
	return lc.Root, nil
}

// Prove runs FRI on the given initial LDE evaluation vector (on domain),
// folding by 2^k for each log-factor k in schedule and Merkle-committing
// the result after every fold but the last, then writing the fully-folded
// layer's trimmed coefficients in the clear.
func Prove(field *core.Field, evaluations []*core.FieldElement, domain Domain, schedule []int, ch *channel.ProverChannel) (*Proof, error) {
	layer0, err := commitLayer(evaluations, domain)
	if err != nil {
		return nil, err
	}
	layers := []LayerCommit{layer0}

	current := evaluations
	currentDomain := domain
	for j, logK := range schedule {
		k := 1 << uint(logK)
		alpha := ch.GetRandomFieldElement(field)
		folded, err := foldByFactor(field, current, currentDomain, k, alpha)
		if err != nil {
			return nil, err
		}
		current = folded
		currentDomain = currentDomain.shrink(k)

		// The very last folded layer's coefficients are written in full
		// below (finalPoly), so it needs no Merkle commitment: the
		// verifier checks each query's last fold directly against finalPoly.
		if j == len(schedule)-1 {
			layers = append(layers, LayerCommit{Evaluations: current, Domain: currentDomain})
			break
		}

		lc, err := commitLayer(current, currentDomain)
		if err != nil {
			return nil, err
		}
		ch.WriteHash(lc.Root)
		layers = append(layers, lc)
	}

	finalPoly, err := core.Interpolate(field, current)
	if err != nil {
		return nil, fmt.Errorf("fri: interpolating final layer: %w", err)
	}
	// Interpolate works over the subgroup; shift back onto the final coset
	// so that finalPoly(offset*g^i) equals current[i].
	offsetInv, err := currentDomain.Offset.Inv()
	if err != nil {
		return nil, fmt.Errorf("fri: final layer offset: %w", err)
	}
	finalPoly = finalPoly.Shift(offsetInv).Trim()

	ch.WriteBytes(lengthPrefix(len(finalPoly.Coefficients)))
	for _, c := range finalPoly.Coefficients {
		ch.WriteFieldElement(c)
	}

	return &Proof{Layers: layers, FinalPoly: finalPoly, Schedule: schedule}, nil
}

func lengthPrefix(n int) []byte {
	return []byte{byte(n >> 24), byte(n >> 16), byte(n >> 8), byte(n)}
}

// TotalFoldLog2 returns the sum of the schedule's per-layer log-fold
// factors, i.e. log2(initial size / final size).
func TotalFoldLog2(schedule []int) int {
	total := 0
	for _, k := range schedule {
		total += k
	}
	return total
}
