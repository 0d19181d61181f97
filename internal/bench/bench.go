// Package bench provides the repetition-mode measurement loop and the
// multi-run statistics for the veccheck bench command.
package bench

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/example/go-veccheck/internal/kernel"
)

// Totals accumulates the per-iteration reduction scalars of the measured
// loop. The loop body is pure, so its results must escape somewhere
// observable or the compiler is free to delete the whole loop.
type Totals struct {
	Count int
	Sum   float64
	Sum2  float64
}

// Sink receives the accumulated totals of the most recent Measure call.
// Only its observability matters; the reported values come from a final
// recomputation after the loop.
var Sink Totals

// Measure runs the full transform+reduce pass iterations times, timing the
// whole loop, then recomputes once more and returns that canonical result.
// The post-loop result is exactly equal to a single-shot run: every
// iteration is stateless apart from the discarded accumulators.
func Measure(b kernel.Backend, iterations int) (time.Duration, kernel.Result) {
	var totals Totals

	start := time.Now()
	for i := 0; i < iterations; i++ {
		res := kernel.Run(b)
		totals.Count += res.Count
		totals.Sum += res.Sum
		totals.Sum2 += res.Sum2
	}
	elapsed := time.Since(start)

	Sink = totals

	return elapsed, kernel.Run(b)
}

// ---------------------------------------------------------------------------
// Run result and stats
// ---------------------------------------------------------------------------

// RunResult holds the timing of a single measured loop.
type RunResult struct {
	Index      int
	Cold       bool // true for the first run (cold-start)
	Iterations int
	Duration   time.Duration
	Result     kernel.Result
}

// Stats holds aggregate timing statistics across all runs.
type Stats struct {
	Min  time.Duration
	Max  time.Duration
	Mean time.Duration
}

// ComputeStats calculates min, max and mean over a slice of durations.
// The slice must be non-empty.
func ComputeStats(durations []time.Duration) Stats {
	if len(durations) == 0 {
		return Stats{}
	}
	mn, mx := durations[0], durations[0]
	var sum time.Duration
	for _, d := range durations {
		if d < mn {
			mn = d
		}
		if d > mx {
			mx = d
		}
		sum += d
	}
	return Stats{
		Min:  mn,
		Max:  mx,
		Mean: sum / time.Duration(len(durations)),
	}
}

// ---------------------------------------------------------------------------
// Threshold gate
// ---------------------------------------------------------------------------

// CheckThreshold returns an error if meanMS exceeds thresholdMS.
// A threshold of 0 disables the gate.
func CheckThreshold(meanMS, thresholdMS float64) error {
	if thresholdMS <= 0 {
		return nil
	}
	if meanMS > thresholdMS {
		return fmt.Errorf("mean elapsed %.3f ms exceeds threshold %.3f ms", meanMS, thresholdMS)
	}
	return nil
}

// DurationMS converts a duration to fractional milliseconds.
func DurationMS(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// ---------------------------------------------------------------------------
// Output formatters
// ---------------------------------------------------------------------------

// FormatTable writes a human-readable ASCII table of bench results to w.
func FormatTable(runs []RunResult, stats Stats, w io.Writer) {
	sb := &strings.Builder{}

	fmt.Fprintf(sb, "%-5s  %-5s  %8s  %10s  %12s\n", "Run", "Cold", "Iters", "MS", "US/iter")
	fmt.Fprintln(sb, strings.Repeat("-", 50))

	for _, r := range runs {
		cold := ""
		if r.Cold {
			cold = "yes"
		}
		perIter := 0.0
		if r.Iterations > 0 {
			perIter = DurationMS(r.Duration) * 1000 / float64(r.Iterations)
		}
		fmt.Fprintf(sb, "%-5d  %-5s  %8d  %10.3f  %12.3f\n",
			r.Index+1,
			cold,
			r.Iterations,
			DurationMS(r.Duration),
			perIter,
		)
	}

	fmt.Fprintln(sb, strings.Repeat("-", 50))
	fmt.Fprintf(sb, "%-5s  %-5s  %8s  %10.3f  %12s  (min)\n", "", "", "", DurationMS(stats.Min), "")
	fmt.Fprintf(sb, "%-5s  %-5s  %8s  %10.3f  %12s  (mean)\n", "", "", "", DurationMS(stats.Mean), "")
	fmt.Fprintf(sb, "%-5s  %-5s  %8s  %10.3f  %12s  (max)\n", "", "", "", DurationMS(stats.Max), "")

	fmt.Fprint(w, sb.String())
}

// jsonReport is the top-level JSON structure emitted by FormatJSON.
type jsonReport struct {
	Runs  []jsonRun `json:"runs"`
	Stats jsonStats `json:"stats"`
}

type jsonRun struct {
	Index      int     `json:"index"`
	Cold       bool    `json:"cold"`
	Iterations int     `json:"iterations"`
	DurationMS float64 `json:"duration_ms"`
}

type jsonStats struct {
	MinMS  float64 `json:"min_ms"`
	MeanMS float64 `json:"mean_ms"`
	MaxMS  float64 `json:"max_ms"`
}

// FormatJSON writes a JSON report of bench results to w.
func FormatJSON(runs []RunResult, stats Stats, w io.Writer) {
	jr := jsonReport{
		Runs: make([]jsonRun, len(runs)),
		Stats: jsonStats{
			MinMS:  DurationMS(stats.Min),
			MeanMS: DurationMS(stats.Mean),
			MaxMS:  DurationMS(stats.Max),
		},
	}
	for i, r := range runs {
		jr.Runs[i] = jsonRun{
			Index:      r.Index,
			Cold:       r.Cold,
			Iterations: r.Iterations,
			DurationMS: DurationMS(r.Duration),
		}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(jr)
}
