// Package main provides the graphrun CLI: load a .param/.bin model
// description, inspect it, and run forward passes.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/born-ml/graphrun/backend/cpu"
	"github.com/born-ml/graphrun/backend/webgpu"
	"github.com/born-ml/graphrun/graph"
	"github.com/born-ml/graphrun/internal/pnnx"
	"github.com/born-ml/graphrun/layers"
	"github.com/born-ml/graphrun/tensor"
)

const version = "v0.1.0-dev"

func main() {
	root := &cobra.Command{
		Use:           "graphrun",
		Short:         "Inference graph runtime",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	var verbose bool
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	root.PersistentPreRun = func(_ *cobra.Command, _ []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
	}

	root.AddCommand(newRunCommand(), newInfoCommand(), newVersionCommand())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "graphrun %s\n", version)
		},
	}
}

func newInfoCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "info <model.param> <model.bin>",
		Short: "Describe a model: operators, edges, weights",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, err := pnnx.Load(args[0], args[1])
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "operators: %d, operands: %d\n\n", len(desc.Operators), len(desc.Operands))
			for _, op := range desc.Operators {
				fmt.Fprintf(out, "%-24s %s\n", op.Type, op.Name)
				for _, in := range op.Inputs {
					fmt.Fprintf(out, "    in:  %s %v\n", in.Name, in.Shape)
				}
				for _, o := range op.Outputs {
					fmt.Fprintf(out, "    out: %s %v\n", o.Name, o.Shape)
				}
				attrs := make([]string, 0, len(op.Attrs))
				for name := range op.Attrs {
					attrs = append(attrs, name)
				}
				sort.Strings(attrs)
				for _, name := range attrs {
					a := op.Attrs[name]
					fmt.Fprintf(out, "    attr: %s %v (%d bytes)\n", name, a.Shape, len(a.Data))
				}
			}
			return nil
		},
	}
	return cmd
}

func newRunCommand() *cobra.Command {
	var (
		inputName   string
		outputName  string
		backendName string
		fill        float32
		debug       bool
	)

	cmd := &cobra.Command{
		Use:   "run <model.param> <model.bin>",
		Short: "Build a model and run one forward pass",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			backend, err := selectBackend(backendName)
			if err != nil {
				return err
			}
			slog.Info("backend selected", "name", backend.Name())

			g := graph.New(args[0], args[1], layers.NewRegistry(backend))
			if err := g.Build(inputName, outputName); err != nil {
				return err
			}

			shape, err := g.InputShape(inputName)
			if err != nil {
				return err
			}
			inputs, err := makeInputs(shape, fill)
			if err != nil {
				return err
			}
			slog.Info("model built", "nodes", g.Nodes(), "input_shape", shape)

			outputs, err := g.Forward(inputs, debug)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, buf := range outputs {
				data := buf.AsFloat32()
				argmax := 0
				for j, v := range data {
					if v > data[argmax] {
						argmax = j
					}
				}
				preview := data
				if len(preview) > 10 {
					preview = preview[:10]
				}
				fmt.Fprintf(out, "batch %d: shape %v argmax %d values %v\n", i, buf.Shape(), argmax, preview)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&inputName, "input", "pnnx_input_0", "input node name")
	cmd.Flags().StringVar(&outputName, "output", "pnnx_output_0", "output node name")
	cmd.Flags().StringVar(&backendName, "backend", "cpu", "compute backend (cpu, webgpu)")
	cmd.Flags().Float32Var(&fill, "fill", 1, "value to fill the input tensors with")
	cmd.Flags().BoolVar(&debug, "debug", false, "emit per-node trace events")

	return cmd
}

func selectBackend(name string) (tensor.Backend, error) {
	switch name {
	case "cpu":
		return cpu.New(), nil
	case "webgpu":
		b, err := webgpu.New()
		if err != nil {
			slog.Warn("webgpu unavailable, falling back to cpu", "err", err)
			return cpu.New(), nil
		}
		return b, nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

// makeInputs allocates one buffer per batch element from the declared
// operand shape, filled with a constant value.
func makeInputs(shape []int, fill float32) ([]*tensor.RawTensor, error) {
	var batch int
	var bufShape tensor.Shape
	switch len(shape) {
	case 4:
		batch = shape[0]
		bufShape = tensor.Shape{shape[1], shape[2], shape[3]}
	case 2:
		batch = shape[0]
		bufShape = tensor.Shape{1, shape[1], 1}
	default:
		return nil, fmt.Errorf("unsupported input shape %v", shape)
	}

	inputs := make([]*tensor.RawTensor, batch)
	for i := range inputs {
		buf, err := tensor.NewRaw(bufShape, tensor.Float32, tensor.CPU)
		if err != nil {
			return nil, err
		}
		buf.Fill(fill)
		inputs[i] = buf
	}
	return inputs, nil
}
