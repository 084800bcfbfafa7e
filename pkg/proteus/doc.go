// Package proteus is the public API of a transparent, hash-based
// (STARK) proof system: a trace-commitment / rational-expression
// constraint / FRI low-degree-test pipeline built over a 252-bit prime
// field with a Keccak-based Fiat-Shamir transcript.
//
// # Scope
//
// proteus proves and verifies a single relation: "this trace table
// satisfies this set of rational-expression constraints, with this
// public claim absorbed as input." It does not implement a virtual
// machine, an instruction set, or witness generation for any specific
// application; callers build their own TraceTable and Constraints (the
// internal/proteus/examples package's Fibonacci claim is one small
// worked example, not a general-purpose feature).
//
// # Quick start
//
// Building a claim, proving it, and verifying the proof:
//
//	tr, claim, err := examples.Witness(proteus.DefaultField, 1024, 1, 1)
//	if err != nil {
//		log.Fatal(err)
//	}
//	cs, err := examples.Constraints(proteus.DefaultField, claim, 4)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	params := proteus.DefaultParams().WithBlowup(4).WithQueries(30)
//	proof, err := proteus.Prove(tr, cs, params)
//	if err != nil {
//		log.Fatal(err)
//	}
//
//	if err := proteus.Verify(cs, proof, params); err != nil {
//		log.Fatal(err)
//	}
//
// # Architecture
//
//   - pkg/proteus: this package, the stable public surface.
//   - internal/proteus/core: field arithmetic, polynomials, NTT, Merkle trees.
//   - internal/proteus/dsl: the rational-expression constraint language.
//   - internal/proteus/trace: the execution-trace table type.
//   - internal/proteus/constraints: constraint validation and compilation
//     into a composition polynomial.
//   - internal/proteus/channel: the Fiat-Shamir sponge transcript.
//   - internal/proteus/fri: the FRI low-degree test.
//   - internal/proteus/pow: the proof-of-work grinding puzzle.
//   - internal/proteus/component: structural algebra over constraint
//     systems (permute, shift, fold, compose).
//   - internal/proteus/protocol: the end-to-end prover/verifier state
//     machine this package wraps.
//
// Implementation details under internal/ can be refactored without
// breaking this package's API.
package proteus
