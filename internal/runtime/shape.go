package runtime

import (
	"fmt"

	"github.com/born-ml/graphrun/internal/tensor"
)

// resolveInputOperands runs the input half of shape resolution: every input
// operand of every node is validated and its per-batch buffers are allocated.
func (g *Graph) resolveInputOperands() error {
	for _, node := range g.nodes {
		for _, operand := range node.Inputs {
			if err := operand.resolve(); err != nil {
				return fmt.Errorf("operator %q: %w", node.Name, err)
			}
		}
	}
	return nil
}

// resolveOutputOperands runs the output half of shape resolution: every node
// other than the output sentinel must declare exactly one output shape, which
// is materialized as an operand named after the node. An existing operand is
// validated against the declared shape instead of being replaced.
func (g *Graph) resolveOutputOperands() error {
	for _, node := range g.nodes {
		if len(node.declaredOutput) == 0 {
			if node.Type == OpTypeOutput {
				continue
			}
			return fmt.Errorf("%w: operator %q (%s) declares no output",
				ErrConfiguration, node.Name, node.Type)
		}

		if node.Output == nil {
			node.Output = &Operand{
				Name:  node.Name + "_output",
				Type:  tensor.Float32,
				Shape: append([]int(nil), node.declaredOutput...),
			}
		} else {
			if node.Output.Type != tensor.Float32 {
				return fmt.Errorf("%w: operator %q output: only float32 operands are supported, got %s",
					ErrConfiguration, node.Name, node.Output.Type)
			}
			if !tensor.Shape(node.Output.Shape).Equal(tensor.Shape(node.declaredOutput)) {
				return fmt.Errorf("%w: operator %q output: shape %v does not match declared %v",
					ErrShapeMismatch, node.Name, node.Output.Shape, node.declaredOutput)
			}
		}

		if err := node.Output.resolve(); err != nil {
			return fmt.Errorf("operator %q: %w", node.Name, err)
		}
	}
	return nil
}
