// Package testutil provides shared report assertion helpers for tests.
package testutil

import (
	"math"
	"strings"
	"testing"

	"github.com/example/go-veccheck/internal/report"
)

// MustParseReport parses key=value report text and fails the test on error.
func MustParseReport(tb testing.TB, text string) report.Parsed {
	tb.Helper()

	parsed, err := report.Parse(strings.NewReader(text))
	if err != nil {
		tb.Fatalf("report: parse: %v", err)
	}
	return parsed
}

// AssertKeyNear checks that the report contains key as a numeric field
// within tol of want.
func AssertKeyNear(tb testing.TB, text, key string, want, tol float64) {
	tb.Helper()

	parsed := MustParseReport(tb, text)
	f, ok := parsed.Fields[key]
	if !ok {
		tb.Fatalf("report: key %q not present", key)
	}
	if !f.IsNum {
		tb.Fatalf("report: key %q = %q, not numeric", key, f.Raw)
	}
	if math.Abs(f.Num-want) > tol {
		tb.Fatalf("report: %s = %.17g, want %.17g ± %g", key, f.Num, want, tol)
	}
}

// AssertKeyInt checks that the report contains key as an exact integer field.
func AssertKeyInt(tb testing.TB, text, key string, want int) {
	tb.Helper()

	parsed := MustParseReport(tb, text)
	f, ok := parsed.Fields[key]
	if !ok {
		tb.Fatalf("report: key %q not present", key)
	}
	if !f.IsInt || f.Num != float64(want) {
		tb.Fatalf("report: %s = %q, want integer %d", key, f.Raw, want)
	}
}
