package layers

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/runtime"
	"github.com/born-ml/graphrun/internal/tensor"
)

// linear is a fully connected layer: y = x·Wᵀ + b. The weight is stored
// pre-transposed as [in,out] so each pass is a single MatMul.
type linear struct {
	backend tensor.Backend
	weightT *tensor.RawTensor // [in, out]
	bias    *tensor.RawTensor // [1, out], nil when the layer has no bias
	inF     int
	outF    int
}

func newLinear(backend tensor.Backend, op *runtime.Operator) (runtime.Layer, error) {
	weight, ok := op.Attr("weight")
	if !ok {
		return nil, fmt.Errorf("missing weight attribute")
	}
	if len(weight.Shape) != 2 {
		return nil, fmt.Errorf("weight must be 2-D [out,in], got shape %v", weight.Shape)
	}
	outF, inF := weight.Shape[0], weight.Shape[1]
	if len(weight.Data) != outF*inF {
		return nil, fmt.Errorf("weight has %d values for shape %v", len(weight.Data), weight.Shape)
	}

	// Transpose once at bind time.
	wt := make([]float32, inF*outF)
	for o := 0; o < outF; o++ {
		for i := 0; i < inF; i++ {
			wt[i*outF+o] = weight.Data[o*inF+i]
		}
	}
	weightT, err := tensor.FromFloat32(wt, tensor.Shape{inF, outF})
	if err != nil {
		return nil, err
	}

	l := &linear{backend: backend, weightT: weightT, inF: inF, outF: outF}

	if hasBias, _ := op.ParamBool("bias"); hasBias {
		bias, ok := op.Attr("bias")
		if !ok {
			return nil, fmt.Errorf("bias enabled but bias attribute is missing")
		}
		if len(bias.Data) != outF {
			return nil, fmt.Errorf("bias has %d values for %d output features", len(bias.Data), outF)
		}
		l.bias, err = tensor.FromFloat32(bias.Data, tensor.Shape{1, outF})
		if err != nil {
			return nil, err
		}
	}

	return l, nil
}

func (l *linear) Forward(inputs, outputs []*tensor.RawTensor) error {
	if len(inputs) != len(outputs) {
		return fmt.Errorf("got %d input buffers for %d output buffers", len(inputs), len(outputs))
	}
	for i, in := range inputs {
		if in.NumElements() != l.inF {
			return fmt.Errorf("buffer %d has %d elements, want %d input features", i, in.NumElements(), l.inF)
		}
		x, err := in.Reshape(tensor.Shape{1, l.inF})
		if err != nil {
			return err
		}
		y := l.backend.MatMul(x, l.weightT)
		if l.bias != nil {
			y = l.backend.Add(y, l.bias)
		}
		shaped, err := y.Reshape(outputs[i].Shape())
		if err != nil {
			return err
		}
		if err := outputs[i].CopyFrom(shaped); err != nil {
			return err
		}
	}
	return nil
}
