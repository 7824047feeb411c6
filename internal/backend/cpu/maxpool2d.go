package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/graphrun/internal/parallel"
	"github.com/born-ml/graphrun/internal/tensor"
)

// MaxPool2D performs 2D max pooling.
//
// Input shape:  [batch, channels, height, width]
// Output shape: [batch, channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernelSize) / stride + 1
//	out_w = (width + 2*padding - kernelSize) / stride + 1
//
// Padding positions contribute -inf, so they never win the max.
func (cpu *Backend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [N,C,H,W], got %dD", len(inputShape)))
	}
	if kernelSize <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d", kernelSize))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("maxpool2d: invalid padding %d", padding))
	}

	N := inputShape[0]
	C := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]

	HOut := (H+2*padding-kernelSize)/stride + 1
	WOut := (W+2*padding-kernelSize)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("maxpool2d: kernel size %d too large for input %dx%d", kernelSize, H, W))
	}

	output, err := tensor.NewRaw(tensor.Shape{N, C, HOut, WOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("maxpool2d: failed to create output tensor: %v", err))
	}

	inputData := input.AsFloat32()
	outputData := output.AsFloat32()

	negInf := float32(math.Inf(-1))

	parallel.ForBatch(N, C, func(n, c int) {
		inPlane := inputData[(n*C+c)*H*W:]
		outPlane := outputData[(n*C+c)*HOut*WOut:]
		for oh := 0; oh < HOut; oh++ {
			for ow := 0; ow < WOut; ow++ {
				best := negInf
				hBase := oh*stride - padding
				wBase := ow*stride - padding
				for kh := 0; kh < kernelSize; kh++ {
					ih := hBase + kh
					if ih < 0 || ih >= H {
						continue
					}
					for kw := 0; kw < kernelSize; kw++ {
						iw := wBase + kw
						if iw < 0 || iw >= W {
							continue
						}
						if v := inPlane[ih*W+iw]; v > best {
							best = v
						}
					}
				}
				outPlane[oh*WOut+ow] = best
			}
		}
	}, parallel.DefaultConfig())

	return output
}
