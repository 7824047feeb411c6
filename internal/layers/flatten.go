package layers

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/runtime"
	"github.com/born-ml/graphrun/internal/tensor"
)

// flatten copies each buffer into the output's shape, collapsing spatial
// dimensions into a feature vector. Element counts must agree.
type flatten struct{}

func (l *flatten) Forward(inputs, outputs []*tensor.RawTensor) error {
	if len(inputs) != len(outputs) {
		return fmt.Errorf("got %d input buffers for %d output buffers", len(inputs), len(outputs))
	}
	for i, in := range inputs {
		view, err := in.Reshape(outputs[i].Shape())
		if err != nil {
			return err
		}
		if err := outputs[i].CopyFrom(view); err != nil {
			return err
		}
	}
	return nil
}

func newFlatten(_ tensor.Backend, _ *runtime.Operator) (runtime.Layer, error) {
	return &flatten{}, nil
}
