// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go compute backend.
package cpu

import (
	internalcpu "github.com/born-ml/graphrun/internal/backend/cpu"
	"github.com/born-ml/graphrun/tensor"
)

// Backend is the CPU backend implementation: pure Go kernels with
// goroutine parallelism over batch and channel dimensions.
type Backend = internalcpu.Backend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	registry := layers.NewRegistry(backend)
func New() *Backend {
	return internalcpu.New()
}
