// Package report implements the key=value report format the kernels emit,
// plus parsing and tolerance comparison of saved reports. The text format is
// the external contract: two builds of the kernels are compared by diffing
// these reports.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/example/go-veccheck/internal/kernel"
)

// Report is one full kernel run rendered for output. TimingMS and Iterations
// are only present for repetition-mode runs.
type Report struct {
	TimingMS   float64 `json:"timing_ms,omitempty"`
	Iterations int     `json:"iterations,omitempty"`
	VLength    int     `json:"vlength"`
	Count      int     `json:"reduction_count"`
	Sum        float64 `json:"reduction_sum"`
	Sum2       float64 `json:"reduction_sum2"`

	Output       []float64 `json:"output"`
	Intermediate []float64 `json:"intermediate"`

	Backend string `json:"backend,omitempty"`
}

// FromResult builds a single-shot report from a kernel result.
func FromResult(res kernel.Result) Report {
	return Report{
		VLength:      kernel.Length,
		Count:        res.Count,
		Sum:          res.Sum,
		Sum2:         res.Sum2,
		Output:       append([]float64(nil), res.Output[:]...),
		Intermediate: append([]float64(nil), res.Intermediate[:]...),
	}
}

// WithTiming returns a copy carrying repetition-mode timing fields.
func (r Report) WithTiming(elapsed time.Duration, iterations int) Report {
	r.TimingMS = float64(elapsed.Nanoseconds()) / 1e6
	r.Iterations = iterations
	return r
}

// formatFloat renders a float with 15 significant digits, matching C's
// %.15g used by the reference builds.
func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 15, 64)
}

// WriteTo emits the report in the exact key=value contract order:
// TIMING_MS and ITERATIONS (repetition mode only), VLENGTH,
// REDUCTION_COUNT, REDUCTION_SUM, REDUCTION_SUM2, then one line per
// OUTPUT and INTERMEDIATE index.
func (r Report) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder

	if r.Iterations > 0 {
		fmt.Fprintf(&sb, "TIMING_MS=%.3f\n", r.TimingMS)
		fmt.Fprintf(&sb, "ITERATIONS=%d\n", r.Iterations)
	}
	fmt.Fprintf(&sb, "VLENGTH=%d\n", r.VLength)
	fmt.Fprintf(&sb, "REDUCTION_COUNT=%d\n", r.Count)
	fmt.Fprintf(&sb, "REDUCTION_SUM=%s\n", formatFloat(r.Sum))
	fmt.Fprintf(&sb, "REDUCTION_SUM2=%s\n", formatFloat(r.Sum2))
	for i, v := range r.Output {
		fmt.Fprintf(&sb, "OUTPUT[%d]=%s\n", i, formatFloat(v))
	}
	for i, v := range r.Intermediate {
		fmt.Fprintf(&sb, "INTERMEDIATE[%d]=%s\n", i, formatFloat(v))
	}

	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

// String renders the report text contract.
func (r Report) String() string {
	var sb strings.Builder
	_, _ = r.WriteTo(&sb)
	return sb.String()
}
