// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package webgpu provides the GPU compute backend over WebGPU.
//
// Availability depends on the platform and on a usable GPU adapter; New
// returns an error when either is missing, so callers can fall back to
// the CPU backend.
package webgpu

import (
	internalwebgpu "github.com/born-ml/graphrun/internal/backend/webgpu"
	"github.com/born-ml/graphrun/tensor"
)

// New creates a WebGPU backend, or returns an error when no GPU is
// available.
//
// Example:
//
//	backend, err := webgpu.New()
//	if err != nil {
//	    backend = cpu.New()
//	}
func New() (tensor.Backend, error) {
	return internalwebgpu.New()
}
