package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/graphrun/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("relu", x, func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// Sigmoid applies 1/(1+exp(-x)) element-wise.
func (cpu *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("sigmoid", x, sigmoid)
}

// SiLU applies x*sigmoid(x) element-wise.
func (cpu *Backend) SiLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unaryOp("silu", x, func(v float32) float32 {
		return v * sigmoid(v)
	})
}

func sigmoid(v float32) float32 {
	return float32(1.0 / (1.0 + math.Exp(-float64(v))))
}

// Softmax applies softmax along dim.
// Uses the max-subtraction trick for numerical stability.
func (cpu *Backend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	if dim < 0 {
		dim += len(shape)
	}
	if dim < 0 || dim >= len(shape) {
		panic(fmt.Sprintf("softmax: dim %d out of range for shape %v", dim, shape))
	}
	if x.DType() != tensor.Float32 {
		panic(fmt.Sprintf("softmax: only float32 supported, got %s", x.DType()))
	}

	result := cpu.newResultLike("softmax", x)
	xd, rd := x.AsFloat32(), result.AsFloat32()

	// Iterate all slices along dim: outer (before dim) x inner (after dim).
	dimSize := shape[dim]
	inner := 1
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	outer := x.NumElements() / (dimSize * inner)

	for o := 0; o < outer; o++ {
		for in := 0; in < inner; in++ {
			base := o*dimSize*inner + in

			maxVal := float32(math.Inf(-1))
			for d := 0; d < dimSize; d++ {
				if v := xd[base+d*inner]; v > maxVal {
					maxVal = v
				}
			}

			var sum float64
			for d := 0; d < dimSize; d++ {
				e := math.Exp(float64(xd[base+d*inner] - maxVal))
				rd[base+d*inner] = float32(e)
				sum += e
			}

			for d := 0; d < dimSize; d++ {
				rd[base+d*inner] = float32(float64(rd[base+d*inner]) / sum)
			}
		}
	}

	return result
}
