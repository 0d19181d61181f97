package kernel

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/cpu"
)

// Backend names accepted by Select.
const (
	BackendScalar = "scalar"
	BackendBlock  = "block"
	BackendAuto   = "auto"
)

// noBlockEnv disables the block backend in auto mode when set to anything
// other than "" or "0".
const noBlockEnv = "VECCHECK_NO_BLOCK"

// Select returns the backend for the given name. An empty name or "auto"
// picks the block backend on SIMD-capable hardware and scalar otherwise.
func Select(name string) (Backend, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", BackendAuto:
		return autoBackend(), nil
	case BackendScalar:
		return Scalar{}, nil
	case BackendBlock:
		return Block{}, nil
	default:
		return nil, fmt.Errorf(
			"invalid backend %q (expected %s|%s|%s)",
			name, BackendScalar, BackendBlock, BackendAuto,
		)
	}
}

// Names returns the selectable backend names, auto excluded.
func Names() []string {
	return []string{BackendScalar, BackendBlock}
}

// NoBlockEnv reports whether the block backend is disabled via environment.
func NoBlockEnv() bool {
	v := os.Getenv(noBlockEnv)
	return v != "" && v != "0"
}

func autoBackend() Backend {
	if NoBlockEnv() {
		return Scalar{}
	}
	if hasWideLanes() {
		return Block{}
	}
	return Scalar{}
}

// hasWideLanes reports whether the CPU exposes vector registers wide enough
// for the block lane width. Both backends are portable Go; this only steers
// the auto choice toward the layout the hardware would vectorize.
func hasWideLanes() bool {
	return cpu.X86.HasAVX2 || cpu.ARM64.HasASIMD
}

// Features lists the detected CPU vector features for diagnostics.
func Features() []string {
	var out []string
	if cpu.X86.HasSSE2 {
		out = append(out, "sse2")
	}
	if cpu.X86.HasAVX {
		out = append(out, "avx")
	}
	if cpu.X86.HasAVX2 {
		out = append(out, "avx2")
	}
	if cpu.X86.HasAVX512F {
		out = append(out, "avx512f")
	}
	if cpu.ARM64.HasASIMD {
		out = append(out, "asimd")
	}
	if cpu.ARM64.HasSVE {
		out = append(out, "sve")
	}
	return out
}
