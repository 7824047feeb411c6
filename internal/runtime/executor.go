package runtime

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/born-ml/graphrun/internal/tensor"
)

// Event describes one executed node of a forward pass. Events are emitted
// only when Forward runs with debug enabled and never influence scheduling.
type Event struct {
	Node     string
	Type     string
	Duration time.Duration
}

// TraceFunc receives per-node execution events. When no callback is
// installed, events are logged at debug level.
type TraceFunc func(Event)

// Forward runs one pass over the built graph. The supplied tensors are
// delivered to the consumers of the designated input node; the returned
// slice holds the output node's result buffers, one per batch element.
//
// With debug enabled, a trace event is emitted per executed node.
func (g *Graph) Forward(inputs []*tensor.RawTensor, debug bool) ([]*tensor.RawTensor, error) {
	if g.state != StateComplete {
		return nil, fmt.Errorf("%w: Forward requires state %s, current state is %s",
			ErrGraphState, StateComplete, g.state)
	}
	inputIdx, ok := g.inputs[g.inputName]
	if !ok {
		return nil, fmt.Errorf("%w: input node %q not found", ErrConfiguration, g.inputName)
	}
	outputIdx, ok := g.outputs[g.outputName]
	if !ok {
		return nil, fmt.Errorf("%w: output node %q not found", ErrConfiguration, g.outputName)
	}

	// Counters are per-pass state; zero them even when the pass aborts.
	defer g.resetMeet()

	queue := []int{inputIdx}
	for len(queue) > 0 {
		idx := queue[0]
		queue = queue[1:]
		node := g.nodes[idx]

		if idx == outputIdx {
			return g.collectOutput(node)
		}

		if node.Type == OpTypeInput {
			// The input sentinel has no handler; the supplied tensors act
			// as its output.
			if err := g.deliver(node, inputs, &queue); err != nil {
				return nil, err
			}
			continue
		}

		if node.meet != node.distinctProducers() {
			return nil, fmt.Errorf("%w: node %q dequeued with %d of %d deliveries",
				ErrReadinessViolation, node.Name, node.meet, node.distinctProducers())
		}

		// Flat ordered input list: every buffer of every operand in
		// declaration order, duplicates included.
		total := 0
		for _, operand := range node.InputSeq {
			total += len(operand.Data)
		}
		flat := make([]*tensor.RawTensor, 0, total)
		for _, operand := range node.InputSeq {
			flat = append(flat, operand.Data...)
		}

		start := time.Now()
		if err := node.Layer.Forward(flat, node.Output.Data); err != nil {
			return nil, fmt.Errorf("%w: node %q (%s): %v", ErrCompute, node.Name, node.Type, err)
		}
		if debug {
			g.emit(Event{Node: node.Name, Type: node.Type, Duration: time.Since(start)})
		}

		if err := g.deliver(node, node.Output.Data, &queue); err != nil {
			return nil, err
		}
	}

	return nil, fmt.Errorf("%w: output node %q was never reached", ErrReadinessViolation, g.outputName)
}

// deliver copies the produced buffers into each consumer's matching input
// operand, bumps the consumer's delivery counter by one, and enqueues the
// consumer at the moment it becomes ready. Each consumer is enqueued exactly
// once per pass.
func (g *Graph) deliver(node *Operator, outs []*tensor.RawTensor, queue *[]int) error {
	for _, ci := range node.consumers {
		consumer := g.nodes[ci]
		operand, ok := consumer.Inputs[node.Name]
		if !ok {
			continue
		}

		if len(operand.Data) != len(outs) {
			return fmt.Errorf("%w: node %q -> %q: %d produced buffers for %d input buffers",
				ErrReadinessViolation, node.Name, consumer.Name, len(outs), len(operand.Data))
		}
		for i, buf := range outs {
			if err := operand.Data[i].CopyFrom(buf); err != nil {
				return fmt.Errorf("%w: node %q -> %q buffer %d: %v",
					ErrShapeMismatch, node.Name, consumer.Name, i, err)
			}
		}

		consumer.meet++
		if consumer.meet == consumer.distinctProducers() {
			*queue = append(*queue, ci)
		}
	}
	return nil
}

// collectOutput extracts the final buffers from the output sentinel, which
// must converge from exactly one producer.
func (g *Graph) collectOutput(node *Operator) ([]*tensor.RawTensor, error) {
	if len(node.Inputs) != 1 {
		return nil, fmt.Errorf("%w: output node %q has %d input operands, want exactly 1",
			ErrConfiguration, node.Name, len(node.Inputs))
	}
	for _, operand := range node.Inputs {
		return operand.Data, nil
	}
	return nil, nil
}

func (g *Graph) resetMeet() {
	for _, node := range g.nodes {
		node.meet = 0
	}
}

func (g *Graph) emit(ev Event) {
	if g.trace != nil {
		g.trace(ev)
		return
	}
	slog.Debug("node executed", "node", ev.Node, "type", ev.Type, "duration", ev.Duration)
}
