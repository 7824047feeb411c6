package pnnx

import (
	"encoding/binary"
	"math"
)

// Operand element type codes used in .param shape annotations.
const (
	OperandTypeUnknown = 0
	OperandTypeFloat32 = 1
)

// Graph is a parsed model description: a flat operator list plus the operand
// edges connecting them.
type Graph struct {
	Operators []*Operator
	Operands  []*Operand
}

// Operator is one node of the model description.
type Operator struct {
	Type    string
	Name    string
	Inputs  []*Operand
	Outputs []*Operand
	Params  map[string]Parameter
	Attrs   map[string]Attribute
}

// Operand is a named data edge between operators.
type Operand struct {
	Name      string
	Producer  *Operator
	Consumers []*Operator
	Type      int // element type code, OperandTypeFloat32 for f32
	Shape     []int
}

// ParamKind enumerates the value kinds a parameter can carry.
type ParamKind int

// Parameter kinds.
const (
	ParamUnknown ParamKind = iota
	ParamBool
	ParamInt
	ParamFloat
	ParamString
	ParamIntArray
	ParamFloatArray
	ParamStringArray
)

// String returns a human-readable kind name.
func (k ParamKind) String() string {
	switch k {
	case ParamUnknown:
		return "unknown"
	case ParamBool:
		return "bool"
	case ParamInt:
		return "int"
	case ParamFloat:
		return "float"
	case ParamString:
		return "string"
	case ParamIntArray:
		return "int[]"
	case ParamFloatArray:
		return "float[]"
	case ParamStringArray:
		return "string[]"
	default:
		return "invalid"
	}
}

// Parameter is a typed operator parameter. Kind selects which field is set.
type Parameter struct {
	Kind    ParamKind
	B       bool
	I       int
	F       float32
	S       string
	Ints    []int
	Floats  []float32
	Strings []string
}

// Attribute is a named weight blob with a declared shape.
// Data is raw little-endian storage; Type is an operand element type code.
type Attribute struct {
	Type  int
	Shape []int
	Data  []byte
}

// NumElements returns the element count implied by the attribute shape.
func (a Attribute) NumElements() int {
	n := 1
	for _, d := range a.Shape {
		n *= d
	}
	return n
}

// Float32s decodes the attribute data as little-endian float32 values.
func (a Attribute) Float32s() []float32 {
	n := len(a.Data) / 4
	out := make([]float32, n)
	for i := 0; i < n; i++ {
		bits := binary.LittleEndian.Uint32(a.Data[i*4:])
		out[i] = math.Float32frombits(bits)
	}
	return out
}
