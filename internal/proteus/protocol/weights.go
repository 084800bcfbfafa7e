package protocol

import (
	"fmt"

	"github.com/0xProject/starkcrypto/internal/proteus/constraints"
	"github.com/0xProject/starkcrypto/internal/proteus/core"
	"github.com/0xProject/starkcrypto/internal/proteus/dsl"
)

// constraintWeight is one constraint's transcript-sampled combination
// coefficients plus the degree adjustment that lifts it to the
// composition polynomial's uniform target degree, mirroring the
// perConstraint bookkeeping constraints.Compile performs internally but
// exposed here for the verifier's OODS and query-time recomputation,
// which walk the same constraint list without calling Compile itself.
type constraintWeight struct {
	expr       *dsl.Expr
	alpha      *core.FieldElement
	beta       *core.FieldElement
	adjustment uint64
}

// prepareWeights pairs each constraint with its two transcript
// coefficients and degree adjustment, duplicating constraints.Compile's
// per-constraint setup loop so the verifier can evaluate the composition
// recombination formula without access to LDEContext's coset-wide
// machinery.
func prepareWeights(cs *constraints.Constraints, coefficients []*core.FieldElement) ([]constraintWeight, error) {
	if len(coefficients) != 2*len(cs.List) {
		return nil, fmt.Errorf("protocol: expected %d constraint coefficients, got %d", 2*len(cs.List), len(coefficients))
	}
	target := cs.TargetDegree()
	out := make([]constraintWeight, len(cs.List))
	for i, c := range cs.List {
		deg, err := c.Expr.Degree(cs.NumRows)
		if err != nil {
			return nil, fmt.Errorf("protocol: constraint %q: %w", c.Name, err)
		}
		adj, err := dsl.DegreeAdjustment(deg, 0, target)
		if err != nil {
			return nil, fmt.Errorf("protocol: constraint %q: %w", c.Name, err)
		}
		out[i] = constraintWeight{expr: c.Expr, alpha: coefficients[2*i], beta: coefficients[2*i+1], adjustment: uint64(adj)}
	}
	return out, nil
}

// recombineAtOODS evaluates sum_i (alpha_i + beta_i*point^adj_i) *
// constraint_i(point) using the revealed out-of-domain trace values in v,
// the verifier's side of constraints.Compile's weighted sum.
func recombineAtOODS(field *core.Field, weights []constraintWeight, point *core.FieldElement, traceLen int, v *oodsValues, claim dsl.ClaimLookup) (*core.FieldElement, error) {
	acc := field.Zero()
	for _, w := range weights {
		val, err := evalAtOODS(field, w.expr, point, traceLen, v, claim)
		if err != nil {
			return nil, err
		}
		weight := w.alpha.Add(w.beta.Mul(point.Pow(w.adjustment)))
		acc = acc.Add(weight.Mul(val))
	}
	return acc, nil
}
