package runtime

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/pnnx"
	"github.com/born-ml/graphrun/internal/tensor"
)

// Sentinel operator types marking the graph boundary. Sentinel nodes carry
// no compute handler.
const (
	OpTypeInput  = "pnnx.Input"
	OpTypeOutput = "pnnx.Output"
)

// State is the graph lifecycle state. It only moves forward: nodes and edges
// are created during Init and are never restructured afterwards.
type State int

// Lifecycle states. Uninitialized is the zero value of a Graph that was not
// created through New; New performs the Uninitialized -> NeedInit transition
// itself, so a constructed graph starts at NeedInit.
const (
	StateUninitialized State = iota
	StateNeedInit
	StateNeedBuild
	StateComplete
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "Uninitialized"
	case StateNeedInit:
		return "NeedInit"
	case StateNeedBuild:
		return "NeedBuild"
	case StateComplete:
		return "Complete"
	default:
		return "Invalid"
	}
}

// Graph is an executable computation graph loaded from a model description.
//
// Lifecycle: New -> Init (builds nodes and edges) -> Build (resolves operand
// buffers, binds layers) -> Forward (any number of passes). Delivery counters
// and the work queue are per-pass mutable state, so at most one Forward call
// may be in flight at a time; concurrent passes require external
// serialization.
//
// Example:
//
//	g := runtime.New("model.param", "model.bin", registry)
//	if err := g.Build("input_0", "output_0"); err != nil {
//	    log.Fatal(err)
//	}
//	outputs, err := g.Forward(inputs, false)
type Graph struct {
	paramPath string
	binPath   string
	factory   Factory

	state  State
	nodes  []*Operator
	byName map[string]int

	// Sentinel node name sets, filled during Build.
	inputs  map[string]int
	outputs map[string]int

	inputName  string
	outputName string

	trace TraceFunc
}

// New creates a graph for the given model description paths.
// The factory resolves compute handlers during Build.
func New(paramPath, binPath string, factory Factory) *Graph {
	return &Graph{
		paramPath: paramPath,
		binPath:   binPath,
		factory:   factory,
		state:     StateNeedInit,
	}
}

// State returns the current lifecycle state.
func (g *Graph) State() State {
	return g.state
}

// SetTrace installs a per-node trace callback. Events are emitted only when
// Forward runs with debug enabled; tracing never affects scheduling.
func (g *Graph) SetTrace(fn TraceFunc) {
	g.trace = fn
}

// Nodes returns the number of operator nodes.
func (g *Graph) Nodes() int {
	return len(g.nodes)
}

// InputNames returns the sentinel input node names recorded during Build.
func (g *Graph) InputNames() []string {
	names := make([]string, 0, len(g.inputs))
	for name := range g.inputs {
		names = append(names, name)
	}
	return names
}

// InputShape returns the declared operand shape the named input node
// produces. Valid once the graph is built.
func (g *Graph) InputShape(name string) ([]int, error) {
	idx, ok := g.inputs[name]
	if !ok {
		return nil, fmt.Errorf("%w: input node %q not found", ErrConfiguration, name)
	}
	node := g.nodes[idx]
	if node.Output == nil {
		return nil, fmt.Errorf("%w: input node %q has no resolved output", ErrGraphState, name)
	}
	return append([]int(nil), node.Output.Shape...), nil
}

// OutputNames returns the sentinel output node names recorded during Build.
func (g *Graph) OutputNames() []string {
	names := make([]string, 0, len(g.outputs))
	for name := range g.outputs {
		names = append(names, name)
	}
	return names
}

// Init loads the model description and constructs the node arena and its
// adjacency. On success the state advances to NeedBuild.
func (g *Graph) Init() error {
	if g.state != StateNeedInit {
		return fmt.Errorf("%w: Init requires state %s, current state is %s",
			ErrGraphState, StateNeedInit, g.state)
	}
	if g.paramPath == "" || g.binPath == "" {
		return fmt.Errorf("%w: param path or weight path is empty", ErrConfiguration)
	}

	desc, err := pnnx.Load(g.paramPath, g.binPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrLoad, err)
	}

	return g.initFrom(desc)
}

// initFrom constructs the runtime graph from an already-parsed description.
func (g *Graph) initFrom(desc *pnnx.Graph) error {
	if len(desc.Operators) == 0 {
		return fmt.Errorf("%w: operator list is empty", ErrConfiguration)
	}

	g.nodes = make([]*Operator, 0, len(desc.Operators))
	g.byName = make(map[string]int, len(desc.Operators))

	for _, op := range desc.Operators {
		node, err := buildOperator(op)
		if err != nil {
			return err
		}
		if _, exists := g.byName[node.Name]; exists {
			return fmt.Errorf("%w: duplicate operator name %q", ErrConfiguration, node.Name)
		}
		g.byName[node.Name] = len(g.nodes)
		g.nodes = append(g.nodes, node)
	}

	// Wire consumer adjacency as indices into the node arena. A consumer
	// appears at most once per producer: the delivery counter counts
	// distinct producers, not edge references.
	for i, node := range g.nodes {
		seen := make(map[int]bool, len(node.consumerNames))
		for _, name := range node.consumerNames {
			j, ok := g.byName[name]
			if !ok || j == i || seen[j] {
				continue
			}
			seen[j] = true
			node.consumers = append(node.consumers, j)
		}
	}

	g.state = StateNeedBuild
	return nil
}

// buildOperator converts one descriptor operator into a runtime node.
func buildOperator(op *pnnx.Operator) (*Operator, error) {
	node := &Operator{
		Name:   op.Name,
		Type:   op.Type,
		Inputs: make(map[string]*Operand),
		Params: make(map[string]*Param),
		Attrs:  make(map[string]*Attr),
	}

	for _, in := range op.Inputs {
		if in.Producer == nil {
			return nil, fmt.Errorf("%w: operator %q input %q has no producer",
				ErrConfiguration, op.Name, in.Name)
		}
		if in.Type != pnnx.OperandTypeFloat32 {
			return nil, fmt.Errorf("%w: operator %q input %q: unsupported operand type %d",
				ErrConfiguration, op.Name, in.Name, in.Type)
		}

		// One operand per distinct producer; a duplicate reference reuses
		// the same operand in the ordered sequence.
		operand, ok := node.Inputs[in.Producer.Name]
		if !ok {
			operand = &Operand{
				Name:  in.Producer.Name,
				Type:  tensor.Float32,
				Shape: append([]int(nil), in.Shape...),
			}
			node.Inputs[in.Producer.Name] = operand
		}
		node.InputSeq = append(node.InputSeq, operand)
	}

	if len(op.Outputs) > 1 {
		return nil, fmt.Errorf("%w: operator %q declares %d outputs, only one output per node is supported",
			ErrConfiguration, op.Name, len(op.Outputs))
	}
	if len(op.Outputs) == 1 {
		out := op.Outputs[0]
		for _, consumer := range out.Consumers {
			node.consumerNames = append(node.consumerNames, consumer.Name)
		}
		node.declaredOutput = append([]int(nil), out.Shape...)
	}

	for name, p := range op.Params {
		param, err := newParam(p)
		if err != nil {
			return nil, fmt.Errorf("operator %q parameter %q: %w", op.Name, name, err)
		}
		node.Params[name] = param
	}
	for name, a := range op.Attrs {
		attr, err := newAttr(a)
		if err != nil {
			return nil, fmt.Errorf("operator %q attribute %q: %w", op.Name, name, err)
		}
		node.Attrs[name] = attr
	}

	return node, nil
}

// Build prepares the graph for execution: it auto-invokes Init when needed,
// resolves and allocates all operand buffers, binds compute handlers, and
// records the input and output node names used by Forward. On success the
// state advances to Complete.
//
// A graph that is already Complete rejects Build: nodes and edges are
// created once and never restructured.
func (g *Graph) Build(inputName, outputName string) error {
	if g.state == StateNeedInit {
		if err := g.Init(); err != nil {
			return err
		}
	}
	if g.state == StateComplete {
		return fmt.Errorf("%w: graph is already built", ErrGraphState)
	}
	if g.state != StateNeedBuild {
		return fmt.Errorf("%w: Build requires state %s, current state is %s",
			ErrGraphState, StateNeedBuild, g.state)
	}
	if len(g.nodes) == 0 {
		return fmt.Errorf("%w: graph has no operators", ErrConfiguration)
	}

	if err := g.resolveInputOperands(); err != nil {
		return err
	}
	if err := g.resolveOutputOperands(); err != nil {
		return err
	}

	g.inputs = make(map[string]int)
	g.outputs = make(map[string]int)

	for i, node := range g.nodes {
		switch node.Type {
		case OpTypeInput:
			g.inputs[node.Name] = i
		case OpTypeOutput:
			g.outputs[node.Name] = i
		default:
			layer, err := g.factory.Create(node)
			if err != nil {
				return fmt.Errorf("%w: operator %q (%s): %v", ErrLayerBind, node.Name, node.Type, err)
			}
			if layer == nil {
				return fmt.Errorf("%w: operator %q (%s): factory returned no layer",
					ErrLayerBind, node.Name, node.Type)
			}
			node.Layer = layer
		}
	}

	g.inputName = inputName
	g.outputName = outputName
	g.state = StateComplete
	return nil
}
