package kernel

import "math"

// blockLanes is the lane-group width of the block backend. Four float64
// lanes match a 256-bit vector register.
const blockLanes = 4

// Block is the lane-blocked rendition: elementwise transforms run over fixed
// lane groups with a scalar tail, the shape a vectorizing compiler produces
// from array-notation or SIMD-pragma code. Every lane is independent, so the
// group-inner loops may execute in any order without changing the result.
type Block struct{}

func (Block) Name() string { return BackendBlock }

func (Block) LogScale(dst, src []float64, scale float64) {
	checkLengths(dst, src)
	n := len(dst)
	i := 0
	for ; i+blockLanes <= n; i += blockLanes {
		d := dst[i : i+blockLanes : i+blockLanes]
		s := src[i : i+blockLanes : i+blockLanes]
		for l := 0; l < blockLanes; l++ {
			d[l] = -math.Log(s[l]) * scale
		}
	}
	for ; i < n; i++ {
		dst[i] = -math.Log(src[i]) * scale
	}
}

func (Block) ExpRatio(dst, src []float64, bias float64) {
	checkLengths(dst, src)
	n := len(dst)
	i := 0
	for ; i+blockLanes <= n; i += blockLanes {
		d := dst[i : i+blockLanes : i+blockLanes]
		s := src[i : i+blockLanes : i+blockLanes]
		for l := 0; l < blockLanes; l++ {
			d[l] = math.Exp(-s[l]) / (s[l] + bias)
		}
	}
	for ; i < n; i++ {
		dst[i] = math.Exp(-src[i]) / (src[i] + bias)
	}
}

// Sum keeps the sequential reduction order. Accumulating one partial sum per
// lane and combining would reorder the additions and drift from the scalar
// backend by a few ULPs.
func (Block) Sum(xs []float64) float64 {
	var s float64
	for _, x := range xs {
		s += x
	}
	return s
}

func (Block) SumInts(xs []int) int {
	var s int
	for _, x := range xs {
		s += x
	}
	return s
}
