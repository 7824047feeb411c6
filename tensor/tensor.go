// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public API for the tensor types the graph
// runtime computes over.
//
// The package re-exports the core data model:
//   - RawTensor: a contiguous row-major float buffer with shape metadata
//   - Backend: the compute interface layer kernels are built on
//   - Shape, DataType, Device: core type definitions
//
// Example:
//
//	x, err := tensor.FromFloat32([]float32{1, 2, 3}, tensor.Shape{1, 3, 1})
package tensor

import (
	"github.com/born-ml/graphrun/internal/tensor"
)

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// RawTensor is the low-level tensor representation: a contiguous row-major
// byte buffer plus shape and type metadata.
type RawTensor = tensor.RawTensor

// Backend defines the compute operations layer kernels are built on.
type Backend = tensor.Backend

// NewRaw creates a zero-initialized tensor with the given shape and type.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// FromFloat32 creates a Float32 tensor initialized from data.
func FromFloat32(data []float32, shape Shape) (*RawTensor, error) {
	return tensor.FromFloat32(data, shape)
}
