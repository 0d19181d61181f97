package kernel

import "math"

// Scalar is the explicit-loop rendition: one element per iteration, no
// blocking. It is the reference semantics every other backend must match.
type Scalar struct{}

func (Scalar) Name() string { return BackendScalar }

func (Scalar) LogScale(dst, src []float64, scale float64) {
	checkLengths(dst, src)
	for i := range dst {
		dst[i] = -math.Log(src[i]) * scale
	}
}

func (Scalar) ExpRatio(dst, src []float64, bias float64) {
	checkLengths(dst, src)
	for i := range dst {
		dst[i] = math.Exp(-src[i]) / (src[i] + bias)
	}
}

func (Scalar) Sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func (Scalar) SumInts(xs []int) int {
	var s int
	for _, x := range xs {
		s += x
	}
	return s
}
