// Package cpu implements the CPU backend with pure Go kernels.
package cpu

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/tensor"
)

// Backend implements tensor operations on CPU.
type Backend struct {
	device tensor.Device
}

// New creates a new CPU backend.
func New() *Backend {
	return &Backend{
		device: tensor.CPU,
	}
}

// Name returns the backend name.
func (cpu *Backend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *Backend) Device() tensor.Device {
	return cpu.device
}

// newResultLike allocates a Float32 result tensor shaped like x.
func (cpu *Backend) newResultLike(op string, x *tensor.RawTensor) *tensor.RawTensor {
	result, err := tensor.NewRaw(x.Shape(), x.DType(), cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}

// binaryOp applies f element-wise over two same-shaped Float32 tensors.
func (cpu *Backend) binaryOp(op string, a, b *tensor.RawTensor, f func(x, y float32) float32) *tensor.RawTensor {
	if !a.Shape().Equal(b.Shape()) {
		panic(fmt.Sprintf("%s: shape mismatch: %v vs %v", op, a.Shape(), b.Shape()))
	}
	if a.DType() != tensor.Float32 || b.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: only float32 supported, got %s and %s", op, a.DType(), b.DType()))
	}

	result := cpu.newResultLike(op, a)
	ad, bd, rd := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()
	for i := range rd {
		rd[i] = f(ad[i], bd[i])
	}
	return result
}

// unaryOp applies f element-wise over a Float32 tensor.
func (cpu *Backend) unaryOp(op string, x *tensor.RawTensor, f func(v float32) float32) *tensor.RawTensor {
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("%s: only float32 supported, got %s", op, x.DType()))
	}

	result := cpu.newResultLike(op, x)
	xd, rd := x.AsFloat32(), result.AsFloat32()
	for i := range rd {
		rd[i] = f(xd[i])
	}
	return result
}

// Add performs element-wise addition.
func (cpu *Backend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("add", a, b, func(x, y float32) float32 { return x + y })
}

// Sub performs element-wise subtraction.
func (cpu *Backend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("sub", a, b, func(x, y float32) float32 { return x - y })
}

// Mul performs element-wise multiplication.
func (cpu *Backend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("mul", a, b, func(x, y float32) float32 { return x * y })
}

// Div performs element-wise division.
func (cpu *Backend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binaryOp("div", a, b, func(x, y float32) float32 { return x / y })
}

// AddScalar adds a scalar to every element.
func (cpu *Backend) AddScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return cpu.unaryOp("add_scalar", x, func(v float32) float32 { return v + scalar })
}

// MulScalar multiplies every element by a scalar.
func (cpu *Backend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	return cpu.unaryOp("mul_scalar", x, func(v float32) float32 { return v * scalar })
}

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)
