package main

import (
	"fmt"
	"os"
	"time"

	"github.com/example/go-veccheck/internal/bench"
	"github.com/example/go-veccheck/internal/kernel"
	"github.com/example/go-veccheck/internal/report"
	"github.com/spf13/cobra"
)

func newBenchCmd() *cobra.Command {
	var (
		backendName string
		iterations  int
		runs        int
		format      string
		msThreshold float64
		out         string
	)

	cmd := &cobra.Command{
		Use:   "bench",
		Short: "Time repeated kernel runs and report the canonical values",
		RunE: func(_ *cobra.Command, _ []string) error {
			cfg, err := requireConfig()
			if err != nil {
				return err
			}

			if iterations == 0 {
				iterations = cfg.Bench.Iterations
			}
			if iterations < 1 {
				return fmt.Errorf("--iterations must be at least 1")
			}
			if runs == 0 {
				runs = cfg.Bench.Runs
			}
			if runs < 1 {
				return fmt.Errorf("--runs must be at least 1")
			}
			if format != "report" && format != "table" && format != "json" {
				return fmt.Errorf("--format must be 'report', 'table' or 'json'")
			}
			if msThreshold == 0 {
				msThreshold = cfg.Bench.MSThreshold
			}

			name, err := resolveBackend(backendName, cfg.Kernel.Backend)
			if err != nil {
				return err
			}
			backend, err := kernel.Select(name)
			if err != nil {
				return err
			}

			results := runBench(backend, iterations, runs)

			durations := make([]time.Duration, len(results))
			for i, r := range results {
				durations[i] = r.Duration
			}
			stats := bench.ComputeStats(durations)

			switch format {
			case "json":
				bench.FormatJSON(results, stats, os.Stdout)
			case "table":
				bench.FormatTable(results, stats, os.Stdout)
			default:
				// Canonical contract output: timing of the last measured
				// loop, values from its post-loop recomputation.
				last := results[len(results)-1]
				rep := report.FromResult(last.Result).WithTiming(last.Duration, last.Iterations)
				if err := writeReport(rep, out); err != nil {
					return err
				}
			}

			return bench.CheckThreshold(bench.DurationMS(stats.Mean), msThreshold)
		},
	}

	cmd.Flags().StringVar(&backendName, "backend", "", "Kernel backend: scalar|block|auto (overrides config)")
	cmd.Flags().IntVar(&iterations, "iterations", 0, "Transform+reduce iterations per measured loop (default from config)")
	cmd.Flags().IntVar(&runs, "runs", 0, "Number of measured loops (default from config)")
	cmd.Flags().StringVar(&format, "format", "report", "Output format: report|table|json")
	cmd.Flags().Float64Var(&msThreshold, "ms-threshold", 0, "Exit non-zero if mean elapsed ms exceeds this value (0 = disabled)")
	cmd.Flags().StringVar(&out, "out", "", "Write the report to a file instead of stdout (report format only)")

	return cmd
}

func runBench(backend kernel.Backend, iterations, runs int) []bench.RunResult {
	results := make([]bench.RunResult, 0, runs)

	for i := 0; i < runs; i++ {
		elapsed, res := bench.Measure(backend, iterations)
		results = append(results, bench.RunResult{
			Index:      i,
			Cold:       i == 0,
			Iterations: iterations,
			Duration:   elapsed,
			Result:     res,
		})
	}

	return results
}
