package config

import (
	"fmt"
	"strings"
)

const (
	BackendScalar = "scalar"
	BackendBlock  = "block"
	BackendAuto   = "auto"
)

// NormalizeBackend canonicalizes a configured backend name. An empty value
// means auto-selection.
func NormalizeBackend(raw string) (string, error) {
	backend := strings.ToLower(strings.TrimSpace(raw))
	if backend == "" {
		backend = BackendAuto
	}
	switch backend {
	case BackendScalar, BackendBlock, BackendAuto:
		return backend, nil
	default:
		return "", fmt.Errorf(
			"invalid backend %q (expected %s|%s|%s)",
			raw,
			BackendScalar,
			BackendBlock,
			BackendAuto,
		)
	}
}
