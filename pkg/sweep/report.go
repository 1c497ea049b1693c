package sweep

import (
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/fxamacker/cbor/v2"
)

// Cell is the outcome of all trials for one (bit-length, signature count) pair.
type Cell struct {
	Bits       int           `json:"bits" cbor:"1,keyasint"`
	Signatures int           `json:"signatures" cbor:"2,keyasint"`
	Trials     int           `json:"trials" cbor:"3,keyasint"`
	Successes  int           `json:"successes" cbor:"4,keyasint"`
	Failures   int           `json:"failures" cbor:"5,keyasint"`
	Errors     int           `json:"errors" cbor:"6,keyasint"`
	Rate       float64       `json:"rate" cbor:"7,keyasint"`
	Elapsed    time.Duration `json:"elapsed" cbor:"8,keyasint"`
}

// successRate returns 100·successes/trials rounded to one decimal.
func successRate(successes, trials int) float64 {
	if trials == 0 {
		return 0
	}
	return math.Round(float64(successes)*1000/float64(trials)) / 10
}

// Report is the success-rate table produced by a sweep.
type Report struct {
	Group   string        `json:"group" cbor:"1,keyasint"`
	Digest  string        `json:"digest" cbor:"2,keyasint"`
	Seed    string        `json:"seed,omitempty" cbor:"3,keyasint,omitempty"`
	Cells   []Cell        `json:"cells" cbor:"4,keyasint"`
	Elapsed time.Duration `json:"elapsed" cbor:"5,keyasint"`
}

// Add appends a cell.
func (r *Report) Add(c Cell) {
	r.Cells = append(r.Cells, c)
}

// BitLengths returns the distinct bit-lengths in order of first appearance.
func (r *Report) BitLengths() []int {
	seen := make(map[int]bool)
	var out []int
	for _, c := range r.Cells {
		if !seen[c.Bits] {
			seen[c.Bits] = true
			out = append(out, c.Bits)
		}
	}
	return out
}

// Series returns the cells of one bit-length.
func (r *Report) Series(bits int) []Cell {
	var out []Cell
	for _, c := range r.Cells {
		if c.Bits == bits {
			out = append(out, c)
		}
	}
	return out
}

// Lookup finds the cell for (bits, signatures).
func (r *Report) Lookup(bits, signatures int) (Cell, bool) {
	for _, c := range r.Cells {
		if c.Bits == bits && c.Signatures == signatures {
			return c, true
		}
	}
	return Cell{}, false
}

// WriteTable writes the report as a fixed-width text table.
func (r *Report) WriteTable(w io.Writer) error {
	var b strings.Builder
	fmt.Fprintf(&b, "%10s | %10s | %17s | %8s\n", "Nonce Bits", "Signatures", "Success Rate (%)", "Errors")
	b.WriteString(strings.Repeat("-", 56))
	b.WriteByte('\n')
	for _, c := range r.Cells {
		fmt.Fprintf(&b, "%10d | %10d | %17.1f | %8d\n", c.Bits, c.Signatures, c.Rate, c.Errors)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// WriteJSON writes the report as indented JSON.
func (r *Report) WriteJSON(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(r)
}

// plainReport drops the methods of Report so cbor does not call MarshalBinary.
type plainReport Report

// MarshalBinary encodes the report as CBOR.
func (r *Report) MarshalBinary() ([]byte, error) {
	return cbor.Marshal((*plainReport)(r))
}

// UnmarshalReport decodes a report written by MarshalBinary.
func UnmarshalReport(data []byte) (*Report, error) {
	var r plainReport
	if err := cbor.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("failed to decode report: %w", err)
	}
	return (*Report)(&r), nil
}
