// Package kernel implements the fixed-size numeric kernels shared by both
// execution backends: two elementwise transcendental transforms over an
// 8-element vector and three sequential reductions. Both backends must
// produce bit-identical results on the fixed constant tables so their
// reports can be diffed externally.
package kernel

// Length is the vector length for every kernel in this package. It is fixed
// for the lifetime of the process.
const Length = 8

// Inputs is the constant input vector. All values are strictly positive, so
// the logarithm transform stays in its safe domain.
var Inputs = [Length]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8}

// Flags is the constant flag vector used by the counting reduction.
var Flags = [Length]int{1, 0, 1, 1, 0, 0, 1, 1}

// Result holds the derived vectors and reduction scalars of one full
// transform+reduce pass. Vectors are fully recomputed on each pass.
type Result struct {
	Output       [Length]float64 `json:"output"`
	Intermediate [Length]float64 `json:"intermediate"`
	Count        int             `json:"count"`
	Sum          float64         `json:"sum"`
	Sum2         float64         `json:"sum2"`
}

// Run executes one transform+reduce pass on the fixed constant tables.
func Run(b Backend) Result {
	var res Result
	b.LogScale(res.Output[:], Inputs[:], 2.0)
	b.ExpRatio(res.Intermediate[:], Inputs[:], 0.1)
	res.Count = b.SumInts(Flags[:])
	res.Sum = b.Sum(res.Output[:])
	res.Sum2 = b.Sum(res.Intermediate[:])
	return res
}
