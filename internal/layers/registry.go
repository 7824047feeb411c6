// Package layers provides the built-in compute handlers bound to graph
// operators, keyed by their descriptor type tags.
package layers

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/runtime"
	"github.com/born-ml/graphrun/internal/tensor"
)

// Builder constructs a compute handler for one operator node.
type Builder func(backend tensor.Backend, op *runtime.Operator) (runtime.Layer, error)

// Registry maps operator type tags to layer builders and implements
// runtime.Factory. Registration is explicit; there is no global registry.
type Registry struct {
	backend  tensor.Backend
	builders map[string]Builder
}

// NewRegistry creates a registry with all built-in layers registered,
// bound to the given compute backend.
func NewRegistry(backend tensor.Backend) *Registry {
	r := &Registry{
		backend:  backend,
		builders: make(map[string]Builder),
	}

	r.Register("nn.ReLU", newReLU)
	r.Register("F.relu", newReLU)
	r.Register("nn.Sigmoid", newSigmoid)
	r.Register("F.sigmoid", newSigmoid)
	r.Register("nn.SiLU", newSiLU)
	r.Register("F.silu", newSiLU)
	r.Register("nn.Softmax", newSoftmax)
	r.Register("F.softmax", newSoftmax)
	r.Register("nn.Flatten", newFlatten)
	r.Register("torch.flatten", newFlatten)
	r.Register("nn.Linear", newLinear)
	r.Register("nn.Conv2d", newConv2d)
	r.Register("nn.MaxPool2d", newMaxPool2d)
	r.Register("F.max_pool2d", newMaxPool2d)

	return r
}

// Register binds an operator type tag to a builder, replacing any
// previous binding for the same tag.
func (r *Registry) Register(opType string, b Builder) {
	r.builders[opType] = b
}

// Create resolves the compute handler for an operator node.
func (r *Registry) Create(op *runtime.Operator) (runtime.Layer, error) {
	b, ok := r.builders[op.Type]
	if !ok {
		return nil, fmt.Errorf("no layer registered for operator type %q", op.Type)
	}
	return b(r.backend, op)
}

// intPair reads a parameter that may be a scalar int or a 1- or 2-element
// int array, returning it as a (height, width) pair.
func intPair(op *runtime.Operator, name string) (int, int, bool, error) {
	if v, ok := op.ParamInts(name); ok {
		switch len(v) {
		case 1:
			return v[0], v[0], true, nil
		case 2:
			return v[0], v[1], true, nil
		default:
			return 0, 0, false, fmt.Errorf("parameter %q: want 1 or 2 elements, got %d", name, len(v))
		}
	}
	if v, ok := op.ParamInt(name); ok {
		return v, v, true, nil
	}
	return 0, 0, false, nil
}

// squareParam reads an intPair parameter that the CPU kernels require to be
// square, falling back to def when absent.
func squareParam(op *runtime.Operator, name string, def int) (int, error) {
	h, w, ok, err := intPair(op, name)
	if err != nil {
		return 0, err
	}
	if !ok {
		return def, nil
	}
	if h != w {
		return 0, fmt.Errorf("parameter %q: non-square value (%d,%d) is not supported", name, h, w)
	}
	return h, nil
}
