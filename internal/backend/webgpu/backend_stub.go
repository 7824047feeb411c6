//go:build !windows

// Package webgpu implements a GPU compute backend over WebGPU. The native
// wgpu bindings currently ship for windows only; on other platforms New
// reports the backend as unavailable so callers can fall back to CPU.
package webgpu

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/tensor"
)

// New reports that no WebGPU device is available on this platform.
func New() (tensor.Backend, error) {
	return nil, fmt.Errorf("webgpu: backend is not available on this platform")
}
