// Package doctor provides environment preflight checks for veccheck.
package doctor

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"

	"github.com/example/go-veccheck/internal/kernel"
)

// PassMark and FailMark are the prefix symbols printed for each check result.
const (
	PassMark = "✓"
	FailMark = "✗"
)

// selfCheckTolerance bounds the drift each backend is allowed against the
// reference values of the fixed constant tables.
const selfCheckTolerance = 1e-12

// Reference values for the fixed input vector; see the kernel package.
const (
	refOutput0 = 4.605170185988091 // -ln(0.1) * 2
	refOutput7 = 0.446287102628419 // -ln(0.8) * 2
	refCount   = 5
)

// Config holds injectable dependencies for each doctor check.
type Config struct {
	// Backends to self-check. Empty means all selectable backends.
	Backends []kernel.Backend
	// ConfigFile, when non-empty, is verified to exist on disk.
	ConfigFile string
	// Features returns the detected CPU vector features. Defaults to
	// kernel.Features.
	Features func() []string
}

// Result collects the outcome of all checks.
type Result struct {
	failures []string
}

// Failed returns true if any check failed.
func (r *Result) Failed() bool { return len(r.failures) > 0 }

// Failures returns the list of failure messages.
func (r *Result) Failures() []string { return append([]string(nil), r.failures...) }

// AddFailure appends an external failure message to the result.
func (r *Result) AddFailure(msg string) { r.failures = append(r.failures, msg) }

func (r *Result) fail(msg string) { r.failures = append(r.failures, msg) }

// Run executes all configured checks and writes human-readable output to w.
// Each check line is prefixed with PassMark or FailMark.
func Run(cfg Config, w io.Writer) Result {
	var res Result

	backends := cfg.Backends
	if len(backends) == 0 {
		backends = []kernel.Backend{kernel.Scalar{}, kernel.Block{}}
	}
	features := cfg.Features
	if features == nil {
		features = kernel.Features
	}

	// ---- CPU features -----------------------------------------------------
	if feats := features(); len(feats) == 0 {
		fmt.Fprintf(w, "%s cpu features: none detected (scalar auto-selection)\n", PassMark)
	} else {
		fmt.Fprintf(w, "%s cpu features: %s\n", PassMark, strings.Join(feats, " "))
	}
	if kernel.NoBlockEnv() {
		fmt.Fprintf(w, "%s block backend: disabled via environment\n", PassMark)
	}

	// ---- backend self-checks ----------------------------------------------
	results := make([]kernel.Result, len(backends))
	for i, b := range backends {
		results[i] = kernel.Run(b)
		if err := checkReference(results[i]); err != nil {
			res.fail(fmt.Sprintf("backend %s: %v", b.Name(), err))
			fmt.Fprintf(w, "%s backend %s: %v\n", FailMark, b.Name(), err)
			continue
		}
		fmt.Fprintf(w, "%s backend %s: reference values ok\n", PassMark, b.Name())
	}

	// ---- cross-backend parity ---------------------------------------------
	parityOK := true
	for i := 1; i < len(results); i++ {
		if results[i] != results[0] {
			parityOK = false
			msg := fmt.Sprintf("parity: %s and %s disagree", backends[0].Name(), backends[i].Name())
			res.fail(msg)
			fmt.Fprintf(w, "%s %s\n", FailMark, msg)
		}
	}
	if parityOK && len(results) > 1 {
		fmt.Fprintf(w, "%s backend parity: bitwise identical\n", PassMark)
	}

	// ---- config file ------------------------------------------------------
	if cfg.ConfigFile != "" {
		if _, err := os.Stat(cfg.ConfigFile); err != nil {
			res.fail(fmt.Sprintf("config file %q: %v", cfg.ConfigFile, err))
			fmt.Fprintf(w, "%s config file %s: not found\n", FailMark, cfg.ConfigFile)
		} else {
			fmt.Fprintf(w, "%s config file: %s\n", PassMark, cfg.ConfigFile)
		}
	}

	return res
}

// checkReference validates a result against the known values for the fixed
// constant tables.
func checkReference(res kernel.Result) error {
	if res.Count != refCount {
		return fmt.Errorf("count = %d, want %d", res.Count, refCount)
	}
	if d := math.Abs(res.Output[0] - refOutput0); d > selfCheckTolerance {
		return fmt.Errorf("output[0] = %.17g, off reference by %.2e", res.Output[0], d)
	}
	if d := math.Abs(res.Output[7] - refOutput7); d > selfCheckTolerance {
		return fmt.Errorf("output[7] = %.17g, off reference by %.2e", res.Output[7], d)
	}

	var sum float64
	for _, v := range res.Output {
		sum += v
	}
	if res.Sum != sum {
		return fmt.Errorf("sum = %.17g, want sequential sum %.17g", res.Sum, sum)
	}

	return nil
}
