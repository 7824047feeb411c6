package layers

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/runtime"
	"github.com/born-ml/graphrun/internal/tensor"
)

// conv2d is a 2-D convolution over [C,H,W] buffers with optional per-channel
// bias. Grouped and dilated convolutions are not supported.
type conv2d struct {
	backend tensor.Backend
	weight  *tensor.RawTensor // [out, in, kh, kw]
	bias    []float32         // one value per output channel, nil without bias
	stride  int
	padding int
	outCh   int
}

func newConv2d(backend tensor.Backend, op *runtime.Operator) (runtime.Layer, error) {
	if groups, ok := op.ParamInt("groups"); ok && groups != 1 {
		return nil, fmt.Errorf("grouped convolution (groups=%d) is not supported", groups)
	}
	if dh, dw, ok, err := intPair(op, "dilation"); err != nil {
		return nil, err
	} else if ok && (dh != 1 || dw != 1) {
		return nil, fmt.Errorf("dilated convolution (dilation=(%d,%d)) is not supported", dh, dw)
	}
	if mode, ok := op.ParamString("padding_mode"); ok && mode != "zeros" {
		return nil, fmt.Errorf("padding mode %q is not supported", mode)
	}

	stride, err := squareParam(op, "stride", 1)
	if err != nil {
		return nil, err
	}
	padding, err := squareParam(op, "padding", 0)
	if err != nil {
		return nil, err
	}

	weight, ok := op.Attr("weight")
	if !ok {
		return nil, fmt.Errorf("missing weight attribute")
	}
	if len(weight.Shape) != 4 {
		return nil, fmt.Errorf("weight must be 4-D [out,in,kh,kw], got shape %v", weight.Shape)
	}
	kernel, err := weight.Tensor()
	if err != nil {
		return nil, err
	}

	l := &conv2d{
		backend: backend,
		weight:  kernel,
		stride:  stride,
		padding: padding,
		outCh:   weight.Shape[0],
	}

	if hasBias, _ := op.ParamBool("bias"); hasBias {
		bias, ok := op.Attr("bias")
		if !ok {
			return nil, fmt.Errorf("bias enabled but bias attribute is missing")
		}
		if len(bias.Data) != l.outCh {
			return nil, fmt.Errorf("bias has %d values for %d output channels", len(bias.Data), l.outCh)
		}
		l.bias = bias.Data
	}

	return l, nil
}

func (l *conv2d) Forward(inputs, outputs []*tensor.RawTensor) error {
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

		res := l.backend.Conv2D(in4, l.weight, l.stride, l.padding)

		if l.bias != nil {
			data := res.AsFloat32()
			plane := len(data) / l.outCh
			for c := 0; c < l.outCh; c++ {
				b := l.bias[c]
				for j := c * plane; j < (c+1)*plane; j++ {
					data[j] += b
				}
			}
		}

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
