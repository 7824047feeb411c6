package runtime

import "github.com/born-ml/graphrun/internal/tensor"

// Layer is the compute contract of a bound operator. Forward reads the flat
// ordered input tensor list and writes results into the pre-allocated output
// buffers. A non-nil error aborts the current pass.
type Layer interface {
	Forward(inputs, outputs []*tensor.RawTensor) error
}

// Factory resolves compute handlers by operator. The runtime calls it once
// per non-sentinel node during Build; the factory has authority to reject
// operator types it does not know.
type Factory interface {
	Create(op *Operator) (Layer, error)
}
