package tensor

// DataType represents the underlying data type of a tensor.
type DataType int

// Supported data types. The graph runtime computes in Float32; Float64 exists
// for kernels that need extra precision in tests and reductions.
const (
	Float32 DataType = iota
	Float64
)

// Size returns the size of one element in bytes.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	default:
		return 0
	}
}

// String returns a human-readable type name.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	default:
		return "unknown"
	}
}
