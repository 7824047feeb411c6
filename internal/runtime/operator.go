package runtime

// Operator is one computation node of the executable graph. The graph owns
// all operators; adjacency is held as indices into the graph's node arena.
type Operator struct {
	Name string
	Type string

	// Inputs maps producer name to the input operand and drives readiness
	// counting: a node is ready when every distinct producer delivered.
	Inputs map[string]*Operand

	// InputSeq holds the same operands in declaration order, duplicates
	// allowed. It determines the flat tensor list a layer receives.
	InputSeq []*Operand

	// Output is the node's single output operand. Multi-output operators
	// are rejected at build time.
	Output *Operand

	// Params and Attrs carry the operator's typed parameters and float32
	// weight attributes.
	Params map[string]*Param
	Attrs  map[string]*Attr

	// Layer is the bound compute handler; nil for sentinel nodes.
	Layer Layer

	consumerNames  []string // consumer node names from the descriptor
	consumers      []int    // arena indices of consumer nodes
	declaredOutput []int    // output shape from the descriptor, nil if none
	meet           int      // distinct producers delivered this pass
}

// ParamBool returns the named bool parameter.
func (op *Operator) ParamBool(name string) (bool, bool) {
	p, ok := op.Params[name]
	if !ok || p.Kind != ParamBool {
		return false, false
	}
	return p.B, true
}

// ParamInt returns the named int parameter.
func (op *Operator) ParamInt(name string) (int, bool) {
	p, ok := op.Params[name]
	if !ok || p.Kind != ParamInt {
		return 0, false
	}
	return p.I, true
}

// ParamFloat returns the named float parameter.
func (op *Operator) ParamFloat(name string) (float32, bool) {
	p, ok := op.Params[name]
	if !ok || p.Kind != ParamFloat {
		return 0, false
	}
	return p.F, true
}

// ParamString returns the named string parameter.
func (op *Operator) ParamString(name string) (string, bool) {
	p, ok := op.Params[name]
	if !ok || p.Kind != ParamString {
		return "", false
	}
	return p.S, true
}

// ParamInts returns the named int-array parameter.
func (op *Operator) ParamInts(name string) ([]int, bool) {
	p, ok := op.Params[name]
	if !ok || p.Kind != ParamIntArray {
		return nil, false
	}
	return p.Ints, true
}

// Attr returns the named weight attribute.
func (op *Operator) Attr(name string) (*Attr, bool) {
	a, ok := op.Attrs[name]
	return a, ok
}

// distinctProducers returns the readiness threshold: the number of distinct
// producers that must deliver before the node may fire.
func (op *Operator) distinctProducers() int {
	return len(op.Inputs)
}
