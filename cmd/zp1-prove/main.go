// Command zp1-prove ingests a 77-column execution trace as JSON, proves it,
// verifies the proof it just produced, and writes the CBOR-encoded proof,
// base64-encoded, to stdout. It is a thin driver over pkg/zp1core; the RV32IM emulator that
// would produce trace.json in a real deployment is out of scope for this
// module (spec.md §1) and is not part of this binary.
package main

import (
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/ZippelLabs/ZP1/internal/zp1core/core"
	"github.com/ZippelLabs/ZP1/internal/zp1core/vm"
	"github.com/ZippelLabs/ZP1/pkg/zp1core"
)

// traceFile is the on-disk JSON shape: one array of uint32 values per
// trace column, in internal/zp1core/vm.Column order, every column the
// same length and that length a power of two. publicInputs is optional;
// an absent or zero-valued block proves/verifies against the all-zero
// PublicInputs, which is only appropriate for a program with no claimed
// input/output binding.
type traceFile struct {
	Columns      [vm.NumColumns][]uint32 `json:"columns"`
	PublicInputs *publicInputsFile       `json:"public_inputs,omitempty"`
}

// publicInputsFile is the hex-string wire shape of zp1core.PublicInputs.
type publicInputsFile struct {
	ProgramImageHash string `json:"program_image_hash"`
	InitialPC        uint32 `json:"initial_pc"`
	InputDigest      string `json:"input_digest"`
	OutputDigest     string `json:"output_digest"`
}

func (f *publicInputsFile) toPublicInputs() (zp1core.PublicInputs, error) {
	var pi zp1core.PublicInputs
	if f == nil {
		return pi, nil
	}
	pi.InitialPC = f.InitialPC
	if err := decodeDigest(f.ProgramImageHash, &pi.ProgramImageHash); err != nil {
		return pi, fmt.Errorf("program_image_hash: %w", err)
	}
	if err := decodeDigest(f.InputDigest, &pi.InputDigest); err != nil {
		return pi, fmt.Errorf("input_digest: %w", err)
	}
	if err := decodeDigest(f.OutputDigest, &pi.OutputDigest); err != nil {
		return pi, fmt.Errorf("output_digest: %w", err)
	}
	return pi, nil
}

func decodeDigest(s string, out *[32]byte) error {
	if s == "" {
		return nil
	}
	b, err := hex.DecodeString(s)
	if err != nil {
		return fmt.Errorf("invalid hex: %w", err)
	}
	if len(b) != 32 {
		return fmt.Errorf("expected 32 bytes, got %d", len(b))
	}
	copy(out[:], b)
	return nil
}

func main() {
	inPath := flag.String("trace", "", "path to a trace JSON file (see traceFile in main.go for its shape)")
	skipVerify := flag.Bool("skip-verify", false, "skip the self-check verify pass after proving")
	flag.Parse()

	if *inPath == "" {
		fatal("missing required -trace flag")
	}

	t, pi, err := loadTrace(*inPath)
	if err != nil {
		fatal(fmt.Sprintf("load trace: %v", err))
	}

	cfg := zp1core.DefaultSecurityConfig()

	proof, err := zp1core.Prove(t, pi, cfg)
	if err != nil {
		fatal(fmt.Sprintf("prove: %v", err))
	}

	if !*skipVerify {
		if err := zp1core.Verify(proof, pi, cfg); err != nil {
			fatal(fmt.Sprintf("self-check verify: %v", err))
		}
	}

	b, err := zp1core.EncodeProof(proof)
	if err != nil {
		fatal(fmt.Sprintf("encode proof: %v", err))
	}

	fmt.Fprintln(os.Stdout, base64.StdEncoding.EncodeToString(b))
}

func loadTrace(path string) (*vm.Trace, zp1core.PublicInputs, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, zp1core.PublicInputs{}, err
	}
	defer f.Close()

	var tf traceFile
	if err := json.NewDecoder(f).Decode(&tf); err != nil {
		return nil, zp1core.PublicInputs{}, fmt.Errorf("parse trace JSON: %w", err)
	}

	pi, err := tf.PublicInputs.toPublicInputs()
	if err != nil {
		return nil, zp1core.PublicInputs{}, fmt.Errorf("public_inputs: %w", err)
	}

	numRows := len(tf.Columns[0])
	for c := range tf.Columns {
		if len(tf.Columns[c]) != numRows {
			return nil, zp1core.PublicInputs{}, fmt.Errorf("column %d has %d rows, column 0 has %d", c, len(tf.Columns[c]), numRows)
		}
	}

	t, err := vm.NewTrace(numRows)
	if err != nil {
		return nil, zp1core.PublicInputs{}, err
	}
	for c := 0; c < vm.NumColumns; c++ {
		for r := 0; r < numRows; r++ {
			t.Columns[c][r] = core.NewM31(uint64(tf.Columns[c][r]))
		}
	}
	return t, pi, nil
}

func fatal(msg string) {
	fmt.Fprintln(os.Stderr, "zp1-prove: error:", msg)
	os.Exit(1)
}
