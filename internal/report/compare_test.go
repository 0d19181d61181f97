package report

import (
	"strings"
	"testing"
)

func mustParse(t *testing.T, text string) Parsed {
	t.Helper()
	p, err := Parse(strings.NewReader(text))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	return p
}

func findingFor(findings []Finding, key string) (Finding, bool) {
	for _, f := range findings {
		if f.Key == key {
			return f, true
		}
	}
	return Finding{}, false
}

func TestCompare_IdenticalReportsPass(t *testing.T) {
	text := "VLENGTH=8\nREDUCTION_COUNT=5\nREDUCTION_SUM=12.7043679494842\n"
	findings, passed := Compare(mustParse(t, text), mustParse(t, text), DefaultTolerance)

	if !passed {
		t.Fatalf("identical reports did not pass: %+v", findings)
	}
	for _, f := range findings {
		if f.Status != StatusOK {
			t.Fatalf("finding %q = %s, want OK", f.Key, f.Status)
		}
	}
}

func TestCompare_FloatWithinTolerance(t *testing.T) {
	ref := mustParse(t, "REDUCTION_SUM=12.7043679494842\n")
	got := mustParse(t, "REDUCTION_SUM=12.704367949484200001\n")

	_, passed := Compare(ref, got, DefaultTolerance)
	if !passed {
		t.Fatal("sub-tolerance float drift should pass")
	}
}

func TestCompare_FloatBeyondTolerance(t *testing.T) {
	ref := mustParse(t, "REDUCTION_SUM=12.7043679494842\n")
	got := mustParse(t, "REDUCTION_SUM=12.7043679504842\n")

	findings, passed := Compare(ref, got, DefaultTolerance)
	if passed {
		t.Fatal("1e-9 drift should fail at 1e-12 tolerance")
	}
	f, ok := findingFor(findings, "REDUCTION_SUM")
	if !ok || f.Status != StatusMismatch {
		t.Fatalf("REDUCTION_SUM finding = %+v, want MISMATCH", f)
	}
}

func TestCompare_IntegerExact(t *testing.T) {
	ref := mustParse(t, "REDUCTION_COUNT=5\n")
	got := mustParse(t, "REDUCTION_COUNT=6\n")

	// Integer drift of 1 would pass a relative tolerance of 1; integers
	// must be compared exactly regardless.
	_, passed := Compare(ref, got, Tolerance{Abs: 10, Rel: 10})
	if passed {
		t.Fatal("integer mismatch must fail even under loose tolerance")
	}
}

func TestCompare_MissingKey(t *testing.T) {
	ref := mustParse(t, "VLENGTH=8\nREDUCTION_COUNT=5\n")
	got := mustParse(t, "VLENGTH=8\n")

	findings, passed := Compare(ref, got, DefaultTolerance)
	if passed {
		t.Fatal("missing key must fail")
	}
	f, ok := findingFor(findings, "REDUCTION_COUNT")
	if !ok || f.Status != StatusMissing {
		t.Fatalf("REDUCTION_COUNT finding = %+v, want MISSING", f)
	}
}

func TestCompare_NaNMatchesNaNOnly(t *testing.T) {
	ref := mustParse(t, "OUTPUT[0]=NaN\n")

	if _, passed := Compare(ref, mustParse(t, "OUTPUT[0]=NaN\n"), DefaultTolerance); !passed {
		t.Fatal("NaN vs NaN should pass")
	}
	if _, passed := Compare(ref, mustParse(t, "OUTPUT[0]=1.0\n"), DefaultTolerance); passed {
		t.Fatal("NaN vs finite should fail")
	}
}
