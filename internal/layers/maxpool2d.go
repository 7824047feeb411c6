package layers

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/runtime"
	"github.com/born-ml/graphrun/internal/tensor"
)

// maxPool2d is a 2-D max pooling layer over [C,H,W] buffers.
type maxPool2d struct {
	backend tensor.Backend
	kernel  int
	stride  int
	padding int
}

func newMaxPool2d(backend tensor.Backend, op *runtime.Operator) (runtime.Layer, error) {
	if dh, dw, ok, err := intPair(op, "dilation"); err != nil {
		return nil, err
	} else if ok && (dh != 1 || dw != 1) {
		return nil, fmt.Errorf("dilated pooling (dilation=(%d,%d)) is not supported", dh, dw)
	}

	kernel, err := squareParam(op, "kernel_size", 0)
	if err != nil {
		return nil, err
	}
	if kernel <= 0 {
		return nil, fmt.Errorf("missing or invalid kernel_size parameter")
	}
	// Stride defaults to the kernel size, matching the usual pooling contract.
	stride, err := squareParam(op, "stride", kernel)
	if err != nil {
		return nil, err
	}
	padding, err := squareParam(op, "padding", 0)
	if err != nil {
		return nil, err
	}

	return &maxPool2d{backend: backend, kernel: kernel, stride: stride, padding: padding}, nil
}

func (l *maxPool2d) Forward(inputs, outputs []*tensor.RawTensor) error {
	if len(inputs) != len(outputs) {
		return fmt.Errorf("got %d input buffers for %d output buffers", len(inputs), len(outputs))
	}
	for i, in := range inputs {
		shape := in.Shape()
		if len(shape) != 3 {
			return fmt.Errorf("buffer %d: want [C,H,W] input, got shape %v", i, shape)
		}
		in4, err := in.Reshape(tensor.Shape{1, shape[0], shape[1], shape[2]})
		if err != nil {
			return err
		}

		res := l.backend.MaxPool2D(in4, l.kernel, l.stride, l.padding)

		shaped, err := res.Reshape(outputs[i].Shape())
		if err != nil {
			return err
		}
		if err := outputs[i].CopyFrom(shaped); err != nil {
			return err
		}
	}
	return nil
}
