package runtime

import "errors"

// Error taxonomy of the graph runtime. Every failure the runtime can return
// wraps one of these sentinels, so callers can classify with errors.Is.
var (
	// ErrConfiguration covers structurally invalid models: missing file
	// paths, empty operator lists, unsupported element types or shape
	// ranks, multi-output operators, unknown parameter or attribute kinds.
	ErrConfiguration = errors.New("invalid graph configuration")

	// ErrLoad covers model descriptor parse failures.
	ErrLoad = errors.New("model load failed")

	// ErrShapeMismatch covers buffer/shape/batch inconsistencies found
	// while resolving operand tensors.
	ErrShapeMismatch = errors.New("tensor shape mismatch")

	// ErrGraphState is returned when an operation is invoked before the
	// graph reached the required lifecycle state.
	ErrGraphState = errors.New("graph state error")

	// ErrLayerBind is returned when the layer factory cannot produce a
	// compute handler for an operator.
	ErrLayerBind = errors.New("layer binding failed")

	// ErrReadinessViolation covers scheduling invariant breaches: the
	// output reached before all producers delivered, buffer count
	// mismatches during propagation, or an unreachable output node.
	ErrReadinessViolation = errors.New("node readiness violated")

	// ErrCompute is returned when a bound layer reports a forward failure.
	ErrCompute = errors.New("layer compute failed")
)
