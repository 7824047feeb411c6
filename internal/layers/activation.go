package layers

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/runtime"
	"github.com/born-ml/graphrun/internal/tensor"
)

// unary applies one element-wise backend operation buffer by buffer.
type unary struct {
	fn func(*tensor.RawTensor) *tensor.RawTensor
}

func (l *unary) Forward(inputs, outputs []*tensor.RawTensor) error {
	if len(inputs) != len(outputs) {
		return fmt.Errorf("got %d input buffers for %d output buffers", len(inputs), len(outputs))
	}
	for i, in := range inputs {
		if err := outputs[i].CopyFrom(l.fn(in)); err != nil {
			return err
		}
	}
	return nil
}

func newReLU(backend tensor.Backend, _ *runtime.Operator) (runtime.Layer, error) {
	return &unary{fn: backend.ReLU}, nil
}

func newSigmoid(backend tensor.Backend, _ *runtime.Operator) (runtime.Layer, error) {
	return &unary{fn: backend.Sigmoid}, nil
}

func newSiLU(backend tensor.Backend, _ *runtime.Operator) (runtime.Layer, error) {
	return &unary{fn: backend.SiLU}, nil
}

// softmax normalizes each buffer to a probability distribution over all of
// its elements. Buffers carry no batch dimension, so the distribution spans
// the whole per-element buffer regardless of the declared dim parameter.
type softmax struct {
	backend tensor.Backend
}

func (l *softmax) Forward(inputs, outputs []*tensor.RawTensor) error {
	if len(inputs) != len(outputs) {
		return fmt.Errorf("got %d input buffers for %d output buffers", len(inputs), len(outputs))
	}
	for i, in := range inputs {
		flat, err := in.Reshape(tensor.Shape{1, in.NumElements()})
		if err != nil {
			return err
		}
		res := l.backend.Softmax(flat, 1)
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

func newSoftmax(backend tensor.Backend, _ *runtime.Operator) (runtime.Layer, error) {
	return &softmax{backend: backend}, nil
}
