// Command proteus-demo exercises the proteus prover and verifier
// end-to-end on the Fibonacci fixture (internal/proteus/examples). It is
// not a general-purpose CLI: spec.md keeps CLI, logging, and benchmark
// harnesses out of scope, and this command exists purely to narrate the
// prove/verify round trip a reader can run without writing Go.
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/0xProject/starkcrypto/internal/proteus/examples"
	"github.com/0xProject/starkcrypto/pkg/proteus"
)

func main() {
	traceLen := flag.Int("trace-len", 1024, "Fibonacci trace length (power of two)")
	seedA := flag.Uint64("seed-a", 1, "first recurrence seed")
	seedB := flag.Uint64("seed-b", 1, "second recurrence seed")
	blowup := flag.Uint("blowup-log2", 4, "log2 of the LDE blowup factor")
	queries := flag.Uint("queries", 30, "number of FRI query indices")
	powBits := flag.Uint("pow-bits", 12, "proof-of-work grinding difficulty")
	corrupt := flag.Bool("corrupt", false, "flip one trace value to demonstrate a rejected proof")
	flag.Parse()

	logStderr(fmt.Sprintf("building Fibonacci witness: trace_len=%d seed_a=%d seed_b=%d", *traceLen, *seedA, *seedB))
	tr, claim, err := examples.Witness(proteus.DefaultField, *traceLen, *seedA, *seedB)
	if err != nil {
		fatal(fmt.Sprintf("building witness: %v", err))
	}
	logStderr(fmt.Sprintf("claimed final value: %s", claim.FinalValue))

	if *corrupt {
		logStderr("corrupting row 2 of the trace to demonstrate a failing verification")
		tr.Set(2, 0, tr.Get(2, 0).Add(proteus.DefaultField.One()))
	}

	logStderr("compiling constraints...")
	cs, err := examples.Constraints(proteus.DefaultField, claim, int(*blowup))
	if err != nil {
		fatal(fmt.Sprintf("compiling constraints: %v", err))
	}

	params := proteus.DefaultParams().
		WithBlowup(uint8(*blowup)).
		WithQueries(uint16(*queries)).
		WithPoWBits(uint8(*powBits))

	logStderr("generating proof...")
	start := time.Now()
	proof, err := proteus.Prove(tr, cs, params)
	if err != nil {
		fatal(fmt.Sprintf("proving: %v", err))
	}
	logStderr(fmt.Sprintf("proof generated in %s (%d bytes)", time.Since(start), proof.Len()))

	logStderr("verifying proof...")
	start = time.Now()
	err = proteus.Verify(cs, proof, params)
	logStderr(fmt.Sprintf("verification ran in %s", time.Since(start)))
	if err != nil {
		logStderr(fmt.Sprintf("proof REJECTED: %v", err))
		os.Exit(1)
	}

	logStderr("proof ACCEPTED")
}

func logStderr(msg string) {
	fmt.Fprintln(os.Stderr, "proteus-demo:", msg)
}

func fatal(msg string) {
	logStderr("ERROR: " + msg)
	os.Exit(1)
}
