package runtime

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/pnnx"
	"github.com/born-ml/graphrun/internal/tensor"
)

// ParamKind enumerates the value kinds an operator parameter can carry.
type ParamKind = pnnx.ParamKind

// Parameter kinds, re-exported from the descriptor package.
const (
	ParamUnknown     = pnnx.ParamUnknown
	ParamBool        = pnnx.ParamBool
	ParamInt         = pnnx.ParamInt
	ParamFloat       = pnnx.ParamFloat
	ParamString      = pnnx.ParamString
	ParamIntArray    = pnnx.ParamIntArray
	ParamFloatArray  = pnnx.ParamFloatArray
	ParamStringArray = pnnx.ParamStringArray
)

// Param is a typed operator parameter. Kind selects which field is set.
type Param struct {
	Kind    ParamKind
	B       bool
	I       int
	F       float32
	S       string
	Ints    []int
	Floats  []float32
	Strings []string
}

// newParam converts a descriptor parameter into a runtime Param.
// An unrecognized kind is a configuration error.
func newParam(p pnnx.Parameter) (*Param, error) {
	switch p.Kind {
	case ParamUnknown:
		return &Param{Kind: ParamUnknown}, nil
	case ParamBool:
		return &Param{Kind: ParamBool, B: p.B}, nil
	case ParamInt:
		return &Param{Kind: ParamInt, I: p.I}, nil
	case ParamFloat:
		return &Param{Kind: ParamFloat, F: p.F}, nil
	case ParamString:
		return &Param{Kind: ParamString, S: p.S}, nil
	case ParamIntArray:
		return &Param{Kind: ParamIntArray, Ints: append([]int(nil), p.Ints...)}, nil
	case ParamFloatArray:
		return &Param{Kind: ParamFloatArray, Floats: append([]float32(nil), p.Floats...)}, nil
	case ParamStringArray:
		return &Param{Kind: ParamStringArray, Strings: append([]string(nil), p.Strings...)}, nil
	default:
		return nil, fmt.Errorf("%w: unknown parameter kind %d", ErrConfiguration, int(p.Kind))
	}
}

// Attr is a named weight attribute: float32 data plus its declared shape.
type Attr struct {
	Shape []int
	Data  []float32
}

// Tensor materializes the attribute as a RawTensor with its declared shape.
func (a *Attr) Tensor() (*tensor.RawTensor, error) {
	return tensor.FromFloat32(a.Data, tensor.Shape(a.Shape))
}

// newAttr converts a descriptor attribute. Only float32 attributes are
// supported; anything else is a configuration error.
func newAttr(a pnnx.Attribute) (*Attr, error) {
	if a.Type != pnnx.OperandTypeFloat32 {
		return nil, fmt.Errorf("%w: unsupported attribute element type %d", ErrConfiguration, a.Type)
	}
	return &Attr{Shape: append([]int(nil), a.Shape...), Data: a.Float32s()}, nil
}
