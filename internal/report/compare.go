package report

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
)

// Tolerance defines acceptable numeric drift between two reports. A value
// passes when it is within Abs absolute difference or Rel relative
// difference of the reference.
type Tolerance struct {
	Abs float64
	Rel float64
}

// DefaultTolerance is the cross-build comparison target: floating-point
// lines within 1e-12, integer lines exact.
var DefaultTolerance = Tolerance{Abs: 1e-12, Rel: 1e-12}

// Field is one parsed key=value line.
type Field struct {
	Raw   string
	Num   float64
	IsNum bool
	IsInt bool
}

// Parsed is a report read back from its text form, keys in file order.
type Parsed struct {
	Keys   []string
	Fields map[string]Field
}

// Parse reads key=value lines. Lines without '=' are skipped, unknown keys
// are kept, so reports from newer or older builds still compare.
func Parse(r io.Reader) (Parsed, error) {
	p := Parsed{Fields: make(map[string]Field)}

	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		key, val, ok := strings.Cut(line, "=")
		if !ok || key == "" {
			continue
		}

		f := Field{Raw: val}
		if n, err := strconv.ParseInt(val, 10, 64); err == nil {
			f.Num = float64(n)
			f.IsNum = true
			f.IsInt = true
		} else if n, err := strconv.ParseFloat(val, 64); err == nil {
			f.Num = n
			f.IsNum = true
		}

		if _, dup := p.Fields[key]; !dup {
			p.Keys = append(p.Keys, key)
		}
		p.Fields[key] = f
	}
	if err := sc.Err(); err != nil {
		return Parsed{}, fmt.Errorf("report: scan: %w", err)
	}
	if len(p.Keys) == 0 {
		return Parsed{}, fmt.Errorf("report: no key=value lines found")
	}

	return p, nil
}

// Status classifies one compared key.
type Status string

const (
	StatusOK       Status = "OK"
	StatusMismatch Status = "MISMATCH"
	StatusMissing  Status = "MISSING"
)

// Finding is the comparison outcome for one key.
type Finding struct {
	Key    string
	Status Status
	Detail string
}

// Compare checks every key of ref against got. Integer lines must match
// exactly, float lines within tol, everything else byte-for-byte. It
// returns one finding per reference key and whether all of them passed.
func Compare(ref, got Parsed, tol Tolerance) ([]Finding, bool) {
	findings := make([]Finding, 0, len(ref.Keys))
	passed := true

	for _, key := range ref.Keys {
		rf := ref.Fields[key]
		gf, ok := got.Fields[key]
		if !ok {
			findings = append(findings, Finding{Key: key, Status: StatusMissing,
				Detail: "key absent from candidate report"})
			passed = false
			continue
		}

		switch {
		case rf.IsInt && gf.IsInt:
			if rf.Num != gf.Num {
				findings = append(findings, Finding{Key: key, Status: StatusMismatch,
					Detail: fmt.Sprintf("ref=%s got=%s (integer, exact match required)", rf.Raw, gf.Raw)})
				passed = false
				continue
			}
		case rf.IsNum && gf.IsNum:
			if math.IsNaN(rf.Num) || math.IsNaN(gf.Num) {
				if !math.IsNaN(rf.Num) || !math.IsNaN(gf.Num) {
					findings = append(findings, Finding{Key: key, Status: StatusMismatch,
						Detail: fmt.Sprintf("ref=%s got=%s (NaN on one side only)", rf.Raw, gf.Raw)})
					passed = false
					continue
				}
				findings = append(findings, Finding{Key: key, Status: StatusOK})
				continue
			}
			diff := absDiff(rf.Num, gf.Num)
			rel := diff / maxAbs(rf.Num, 1e-15)
			if diff > tol.Abs && rel > tol.Rel {
				findings = append(findings, Finding{Key: key, Status: StatusMismatch,
					Detail: fmt.Sprintf("ref=%s got=%s diff=%.2e rel=%.2e", rf.Raw, gf.Raw, diff, rel)})
				passed = false
				continue
			}
		default:
			if rf.Raw != gf.Raw {
				findings = append(findings, Finding{Key: key, Status: StatusMismatch,
					Detail: fmt.Sprintf("ref=%q got=%q", rf.Raw, gf.Raw)})
				passed = false
				continue
			}
		}

		findings = append(findings, Finding{Key: key, Status: StatusOK})
	}

	return findings, passed
}

func absDiff(a, b float64) float64 {
	d := a - b
	if d < 0 {
		return -d
	}
	return d
}

func maxAbs(v, floor float64) float64 {
	if v < 0 {
		v = -v
	}
	if v < floor {
		return floor
	}
	return v
}
