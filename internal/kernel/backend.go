package kernel

// Backend is one rendition of the kernels. The scalar backend writes every
// operation as a plain per-element loop; the block backend processes fixed
// lane groups the way portable SIMD fallbacks are written. Reductions are
// sequential left-to-right in every backend — lane-parallel partial sums
// would change the rounding and break cross-backend comparison.
type Backend interface {
	Name() string

	// LogScale computes dst[i] = -log(src[i]) * scale. Non-positive inputs
	// yield NaN (or -Inf for zero) per standard library log semantics; the
	// transform never aborts.
	LogScale(dst, src []float64, scale float64)

	// ExpRatio computes dst[i] = exp(-src[i]) / (src[i] + bias).
	ExpRatio(dst, src []float64, bias float64)

	// Sum returns the sequential ascending-index sum of xs.
	Sum(xs []float64) float64

	// SumInts returns the sequential ascending-index sum of xs.
	SumInts(xs []int) int
}

func checkLengths(dst, src []float64) {
	if len(dst) != len(src) {
		panic("kernel: slice length mismatch")
	}
}
