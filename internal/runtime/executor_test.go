package runtime

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphrun/internal/pnnx"
	"github.com/born-ml/graphrun/internal/tensor"
)

func inputBatch(t *testing.T, values []float32) []*tensor.RawTensor {
	t.Helper()
	buf, err := tensor.FromFloat32(values, tensor.Shape{1, len(values), 1})
	require.NoError(t, err)
	return []*tensor.RawTensor{buf}
}

func TestForward_LinearChainIdentity(t *testing.T) {
	runs := map[string]int{}
	g := buildGraph(t, linearChain(), countingFactory(runs), "I", "O")

	out, err := g.Forward(inputBatch(t, []float32{1, 2, 3}), false)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []float32{1, 2, 3}, out[0].AsFloat32())
	assert.Equal(t, map[string]int{"A": 1, "B": 1}, runs)
}

func TestForward_DiamondVisitsEachNodeOnce(t *testing.T) {
	runs := map[string]int{}
	g := buildGraph(t, diamond(), countingFactory(runs), "I", "O")

	out, err := g.Forward(inputBatch(t, []float32{4, 5, 6}), false)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, []float32{4, 5, 6}, out[0].AsFloat32())
	assert.Equal(t, map[string]int{"A": 1, "B": 1, "C": 1}, runs)
}

// fillLayer ignores its inputs and writes a constant into every output
// buffer, so downstream captures can tell producers apart.
func fillLayer(v float32) Layer {
	return layerFunc(func(_, outputs []*tensor.RawTensor) error {
		for _, out := range outputs {
			out.Fill(v)
		}
		return nil
	})
}

// captureLayer records the flat input buffer values a node was invoked with.
func captureLayer(seen *[][]float32) Layer {
	return layerFunc(func(inputs, outputs []*tensor.RawTensor) error {
		for _, in := range inputs {
			*seen = append(*seen, append([]float32(nil), in.AsFloat32()...))
		}
		return outputs[0].CopyFrom(inputs[0])
	})
}

func TestForward_DiamondConcatenatesProducerInputs(t *testing.T) {
	// A and B write distinct constants; C's flat input list must hold A's
	// buffers before B's, in operand declaration order.
	var seen [][]float32
	factory := factoryFunc(func(op *Operator) (Layer, error) {
		switch op.Name {
		case "A":
			return fillLayer(10), nil
		case "B":
			return fillLayer(20), nil
		case "C":
			return captureLayer(&seen), nil
		default:
			return nil, errors.New("unexpected operator " + op.Name)
		}
	})

	g := buildGraph(t, diamond(), factory, "I", "O")
	out, err := g.Forward(inputBatch(t, []float32{1, 2, 3}), false)
	require.NoError(t, err)

	require.Len(t, seen, 2)
	assert.Equal(t, []float32{10, 10, 10}, seen[0])
	assert.Equal(t, []float32{20, 20, 20}, seen[1])
	assert.Equal(t, []float32{10, 10, 10}, out[0].AsFloat32())
}

func TestForward_DuplicateInputReference(t *testing.T) {
	// D references A's output twice: the ordered sequence carries the same
	// operand in both slots, while readiness counts A as one producer.
	in := descOp(OpTypeInput, "I")
	a := descOp("identity", "A")
	d := descOp("pair", "D")
	sink := descOp(OpTypeOutput, "O")

	shape := []int{1, 3}
	edge("0", in, shape, a)
	edge("1", a, shape, d, d)
	edge("2", d, shape, sink)

	runs := map[string]int{}
	var seen [][]float32
	factory := factoryFunc(func(op *Operator) (Layer, error) {
		if op.Name == "D" {
			capture := captureLayer(&seen)
			return layerFunc(func(inputs, outputs []*tensor.RawTensor) error {
				runs["D"]++
				return capture.Forward(inputs, outputs)
			}), nil
		}
		return &passThrough{name: op.Name, runs: runs}, nil
	})

	desc := &pnnx.Graph{Operators: []*pnnx.Operator{in, a, d, sink}}
	g := buildGraph(t, desc, factory, "I", "O")

	node := g.nodes[g.byName["D"]]
	require.Len(t, node.InputSeq, 2)
	assert.Same(t, node.InputSeq[0], node.InputSeq[1])
	assert.Equal(t, 1, node.distinctProducers())

	out, err := g.Forward(inputBatch(t, []float32{7, 8, 9}), false)
	require.NoError(t, err)
	assert.Equal(t, 1, runs["D"])
	require.Len(t, seen, 2)
	assert.Equal(t, []float32{7, 8, 9}, seen[0])
	assert.Equal(t, []float32{7, 8, 9}, seen[1])
	assert.Equal(t, []float32{7, 8, 9}, out[0].AsFloat32())
}

func TestForward_RepeatedPasses(t *testing.T) {
	runs := map[string]int{}
	g := buildGraph(t, diamond(), countingFactory(runs), "I", "O")

	for i := 1; i <= 3; i++ {
		out, err := g.Forward(inputBatch(t, []float32{float32(i), 0, 0}), false)
		require.NoError(t, err)
		assert.Equal(t, float32(i), out[0].AsFloat32()[0])
	}
	assert.Equal(t, map[string]int{"A": 3, "B": 3, "C": 3}, runs)

	// Counters are zeroed after every pass.
	for _, node := range g.nodes {
		assert.Zero(t, node.meet)
	}
}

func TestForward_RequiresCompleteState(t *testing.T) {
	g := New("", "", countingFactory(map[string]int{}))
	require.NoError(t, g.initFrom(linearChain()))

	_, err := g.Forward(inputBatch(t, []float32{1, 2, 3}), false)
	require.ErrorIs(t, err, ErrGraphState)
}

func TestForward_UnknownSentinelNames(t *testing.T) {
	g := New("", "", countingFactory(map[string]int{}))
	require.NoError(t, g.initFrom(linearChain()))
	require.NoError(t, g.Build("missing", "O"))

	_, err := g.Forward(inputBatch(t, []float32{1, 2, 3}), false)
	require.ErrorIs(t, err, ErrConfiguration)
}

func TestForward_BufferCountMismatch(t *testing.T) {
	g := buildGraph(t, linearChain(), countingFactory(map[string]int{}), "I", "O")

	// Two buffers supplied against a batch-1 graph.
	one, err := tensor.FromFloat32([]float32{1, 2, 3}, tensor.Shape{1, 3, 1})
	require.NoError(t, err)
	two, err := tensor.FromFloat32([]float32{4, 5, 6}, tensor.Shape{1, 3, 1})
	require.NoError(t, err)

	_, err = g.Forward([]*tensor.RawTensor{one, two}, false)
	require.ErrorIs(t, err, ErrReadinessViolation)
}

func TestForward_InputShapeMismatch(t *testing.T) {
	g := buildGraph(t, linearChain(), countingFactory(map[string]int{}), "I", "O")

	bad, err := tensor.FromFloat32([]float32{1, 2, 3, 4}, tensor.Shape{1, 4, 1})
	require.NoError(t, err)

	_, err = g.Forward([]*tensor.RawTensor{bad}, false)
	require.ErrorIs(t, err, ErrShapeMismatch)
}

func TestForward_WrapsLayerFailure(t *testing.T) {
	boom := errors.New("boom")
	factory := factoryFunc(func(op *Operator) (Layer, error) {
		if op.Name == "B" {
			return layerFunc(func(_, _ []*tensor.RawTensor) error { return boom }), nil
		}
		return &passThrough{name: op.Name, runs: map[string]int{}}, nil
	})

	g := buildGraph(t, linearChain(), factory, "I", "O")
	_, err := g.Forward(inputBatch(t, []float32{1, 2, 3}), false)
	require.ErrorIs(t, err, ErrCompute)
	assert.Contains(t, err.Error(), `"B"`)

	// A failed pass still resets the counters.
	for _, node := range g.nodes {
		assert.Zero(t, node.meet)
	}
}

func TestForward_OutputConvergenceRejected(t *testing.T) {
	in := descOp(OpTypeInput, "I")
	a := descOp("identity", "A")
	b := descOp("identity", "B")
	out := descOp(OpTypeOutput, "O")

	shape := []int{1, 3}
	edge("0", in, shape, a, b)
	edge("1", a, shape, out)
	edge("2", b, shape, out)

	desc := &pnnx.Graph{Operators: []*pnnx.Operator{in, a, b, out}}
	g := buildGraph(t, desc, countingFactory(map[string]int{}), "I", "O")

	_, err := g.Forward(inputBatch(t, []float32{1, 2, 3}), false)
	require.ErrorIs(t, err, ErrConfiguration)
	assert.Contains(t, err.Error(), "exactly 1")
}

func TestForward_TraceEvents(t *testing.T) {
	g := buildGraph(t, diamond(), countingFactory(map[string]int{}), "I", "O")

	var events []Event
	g.SetTrace(func(ev Event) { events = append(events, ev) })

	_, err := g.Forward(inputBatch(t, []float32{1, 2, 3}), false)
	require.NoError(t, err)
	assert.Empty(t, events, "events must only be emitted in debug mode")

	_, err = g.Forward(inputBatch(t, []float32{1, 2, 3}), true)
	require.NoError(t, err)
	require.Len(t, events, 3)

	names := map[string]bool{}
	for _, ev := range events {
		names[ev.Node] = true
		assert.Equal(t, "identity", ev.Type)
	}
	assert.Equal(t, map[string]bool{"A": true, "B": true, "C": true}, names)
}

type layerFunc func(inputs, outputs []*tensor.RawTensor) error

func (f layerFunc) Forward(inputs, outputs []*tensor.RawTensor) error {
	return f(inputs, outputs)
}
