package cpu

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/tensor"
)

// MatMul performs matrix multiplication for 2D tensors: [m,k] x [k,n] -> [m,n].
func (cpu *Backend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	aShape := a.Shape()
	bShape := b.Shape()

	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %dD and %dD", len(aShape), len(bShape)))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch: %v x %v", aShape, bShape))
	}
	if a.DType() != tensor.Float32 || b.DType() != tensor.Float32 {
		panic(fmt.Sprintf("matmul: only float32 supported, got %s and %s", a.DType(), b.DType()))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]

	result, err := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("matmul: failed to create result tensor: %v", err))
	}

	ad, bd, rd := a.AsFloat32(), b.AsFloat32(), result.AsFloat32()

	// ikj loop order for cache-friendly access to b.
	for i := 0; i < m; i++ {
		for p := 0; p < k; p++ {
			av := ad[i*k+p]
			if av == 0 {
				continue
			}
			brow := bd[p*n : (p+1)*n]
			rrow := rd[i*n : (i+1)*n]
			for j := 0; j < n; j++ {
				rrow[j] += av * brow[j]
			}
		}
	}

	return result
}
