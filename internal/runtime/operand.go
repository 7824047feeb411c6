package runtime

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/tensor"
)

// Operand is a named, typed, shaped data edge holding one tensor buffer per
// batch element. The declared shape has rank 2 ([batch, features]) or rank 4
// ([batch, channels, height, width]); buffers carry the non-batch dimensions,
// with rank-2 operands stored as 1×features×1 buffers.
type Operand struct {
	Name  string
	Type  tensor.DataType
	Shape []int
	Data  []*tensor.RawTensor
}

// Batch returns the declared batch dimension.
func (o *Operand) Batch() int {
	if len(o.Shape) == 0 {
		return 0
	}
	return o.Shape[0]
}

// checkShape validates the operand's declared shape: rank 2 or 4, batch >= 0.
func (o *Operand) checkShape() error {
	if len(o.Shape) != 2 && len(o.Shape) != 4 {
		return fmt.Errorf("%w: operand %q: unsupported shape rank %d (want 2 or 4)",
			ErrConfiguration, o.Name, len(o.Shape))
	}
	if o.Shape[0] < 0 {
		return fmt.Errorf("%w: operand %q: dynamic batch size is not supported",
			ErrConfiguration, o.Name)
	}
	if o.Type != tensor.Float32 {
		return fmt.Errorf("%w: operand %q: only float32 operands are supported, got %s",
			ErrConfiguration, o.Name, o.Type)
	}
	return nil
}

// bufferShape returns the per-batch-element buffer shape for the declared
// operand shape: [c,h,w] for rank-4 operands, [1,f,1] for rank-2 operands.
func (o *Operand) bufferShape() tensor.Shape {
	if len(o.Shape) == 4 {
		return tensor.Shape{o.Shape[1], o.Shape[2], o.Shape[3]}
	}
	return tensor.Shape{1, o.Shape[1], 1}
}

// resolve validates pre-existing buffers against the declared shape, or
// allocates zero-initialized buffers when none exist.
func (o *Operand) resolve() error {
	if err := o.checkShape(); err != nil {
		return err
	}

	batch := o.Batch()
	want := o.bufferShape()

	if len(o.Data) > 0 {
		if len(o.Data) != batch {
			return fmt.Errorf("%w: operand %q: %d buffers for batch size %d",
				ErrShapeMismatch, o.Name, len(o.Data), batch)
		}
		for i, buf := range o.Data {
			if !buf.Shape().Equal(want) {
				return fmt.Errorf("%w: operand %q buffer %d: got %v, want %v",
					ErrShapeMismatch, o.Name, i, buf.Shape(), want)
			}
		}
		return nil
	}

	o.Data = make([]*tensor.RawTensor, batch)
	for i := range o.Data {
		buf, err := tensor.NewRaw(want, tensor.Float32, tensor.CPU)
		if err != nil {
			return fmt.Errorf("%w: operand %q: %v", ErrShapeMismatch, o.Name, err)
		}
		o.Data[i] = buf
	}
	return nil
}
