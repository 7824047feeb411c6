package cpu

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/parallel"
	"github.com/born-ml/graphrun/internal/tensor"
)

// Conv2D performs 2D convolution.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - kernel_h) / stride + 1
//	out_w = (width + 2*padding - kernel_w) / stride + 1
func (cpu *Backend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	inputShape := input.Shape()
	kernelShape := kernel.Shape()

	if len(inputShape) != 4 {
		panic(fmt.Sprintf("conv2d: input must be 4D [N,C,H,W], got %dD", len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("conv2d: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", len(kernelShape)))
	}
	if stride <= 0 {
		panic(fmt.Sprintf("conv2d: invalid stride %d", stride))
	}
	if padding < 0 {
		panic(fmt.Sprintf("conv2d: invalid padding %d", padding))
	}

	N := inputShape[0]
	CIn := inputShape[1]
	H := inputShape[2]
	W := inputShape[3]
	COut := kernelShape[0]
	KH := kernelShape[2]
	KW := kernelShape[3]

	if CIn != kernelShape[1] {
		panic(fmt.Sprintf("conv2d: input channels %d != kernel channels %d", CIn, kernelShape[1]))
	}

	HOut := (H+2*padding-KH)/stride + 1
	WOut := (W+2*padding-KW)/stride + 1
	if HOut <= 0 || WOut <= 0 {
		panic(fmt.Sprintf("conv2d: invalid output dimensions: out_h=%d, out_w=%d (check stride/padding)", HOut, WOut))
	}

	output, err := tensor.NewRaw(tensor.Shape{N, COut, HOut, WOut}, tensor.Float32, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("conv2d: failed to create output tensor: %v", err))
	}

	inputData := input.AsFloat32()
	kernelData := kernel.AsFloat32()
	outputData := output.AsFloat32()

	// Direct convolution, one (batch, out-channel) plane per task.
	parallel.ForBatch(N, COut, func(n, co int) {
		outPlane := outputData[(n*COut+co)*HOut*WOut:]
		for oh := 0; oh < HOut; oh++ {
			for ow := 0; ow < WOut; ow++ {
				var acc float32
				hBase := oh*stride - padding
				wBase := ow*stride - padding
				for ci := 0; ci < CIn; ci++ {
					inPlane := inputData[(n*CIn+ci)*H*W:]
					kPlane := kernelData[(co*CIn+ci)*KH*KW:]
					for kh := 0; kh < KH; kh++ {
						ih := hBase + kh
						if ih < 0 || ih >= H {
							continue
						}
						for kw := 0; kw < KW; kw++ {
							iw := wBase + kw
							if iw < 0 || iw >= W {
								continue
							}
							acc += inPlane[ih*W+iw] * kPlane[kh*KW+kw]
						}
					}
				}
				outPlane[oh*WOut+ow] = acc
			}
		}
	}, parallel.DefaultConfig())

	return output
}
