package doctor

import (
	"testing"

	"github.com/example/go-veccheck/internal/kernel"
)

func TestCheckReference_AcceptsRealResult(t *testing.T) {
	if err := checkReference(kernel.Run(kernel.Scalar{})); err != nil {
		t.Fatalf("checkReference on real result: %v", err)
	}
}

func TestCheckReference_RejectsCorruption(t *testing.T) {
	tests := []struct {
		name    string
		corrupt func(*kernel.Result)
	}{
		{"wrong count", func(r *kernel.Result) { r.Count = 4 }},
		{"drifted output0", func(r *kernel.Result) { r.Output[0] += 1e-9 }},
		{"drifted output7", func(r *kernel.Result) { r.Output[7] -= 1e-9 }},
		{"reordered sum", func(r *kernel.Result) { r.Sum += 1e-9 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := kernel.Run(kernel.Scalar{})
			tt.corrupt(&res)

			if err := checkReference(res); err == nil {
				t.Fatal("expected error for corrupted result")
			}
		})
	}
}
