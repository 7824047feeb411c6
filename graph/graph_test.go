// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package graph_test

import (
	"encoding/binary"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/graphrun/backend/cpu"
	"github.com/born-ml/graphrun/graph"
	"github.com/born-ml/graphrun/internal/pnnx"
	"github.com/born-ml/graphrun/layers"
	"github.com/born-ml/graphrun/tensor"
)

func float32Bytes(values ...float32) []byte {
	out := make([]byte, 4*len(values))
	for i, v := range values {
		binary.LittleEndian.PutUint32(out[i*4:], math.Float32bits(v))
	}
	return out
}

// writeMLP writes a 3-feature, 2-class model to disk:
// pnnx.Input -> nn.Linear -> nn.ReLU -> pnnx.Output.
func writeMLP(t *testing.T) (string, string) {
	t.Helper()
	dir := t.TempDir()

	param := filepath.Join(dir, "mlp.param")
	bin := filepath.Join(dir, "mlp.bin")

	paramText := `7767517
4 3
pnnx.Input pnnx_input_0 0 1 0 #0=(1,3)f32
nn.Linear fc 1 1 0 1 bias=True in_features=3 out_features=2 @weight=(2,3)f32 @bias=(2)f32 #1=(1,2)f32
nn.ReLU act 1 1 1 2 #2=(1,2)f32
pnnx.Output pnnx_output_0 1 0 2
`
	require.NoError(t, os.WriteFile(param, []byte(paramText), 0o644))

	entries := []pnnx.WeightEntry{
		{Name: "fc.weight", Shape: []int{2, 3}, Data: float32Bytes(1, -2, 3, -4, 5, -6)},
		{Name: "fc.bias", Shape: []int{2}, Data: float32Bytes(0.5, -0.5)},
	}
	require.NoError(t, pnnx.WriteWeights(bin, entries))

	return param, bin
}

func TestGraph_EndToEnd(t *testing.T) {
	param, bin := writeMLP(t)

	g := graph.New(param, bin, layers.NewRegistry(cpu.New()))
	require.NoError(t, g.Build("pnnx_input_0", "pnnx_output_0"))
	assert.Equal(t, graph.StateComplete, g.State())

	shape, err := g.InputShape("pnnx_input_0")
	require.NoError(t, err)
	assert.Equal(t, []int{1, 3}, shape)

	x, err := tensor.FromFloat32([]float32{1, 1, 1}, tensor.Shape{1, 3, 1})
	require.NoError(t, err)

	out, err := g.Forward([]*tensor.RawTensor{x}, false)
	require.NoError(t, err)
	require.Len(t, out, 1)

	got := out[0].AsFloat32()
	assert.InDelta(t, 2.5, got[0], 1e-5) // 1-2+3+0.5
	assert.InDelta(t, 0.0, got[1], 1e-5) // relu(-5.5)
}

func TestGraph_TraceEvents(t *testing.T) {
	param, bin := writeMLP(t)

	g := graph.New(param, bin, layers.NewRegistry(cpu.New()))
	require.NoError(t, g.Build("pnnx_input_0", "pnnx_output_0"))

	var events []graph.Event
	g.SetTrace(func(ev graph.Event) { events = append(events, ev) })

	x, err := tensor.FromFloat32([]float32{1, 1, 1}, tensor.Shape{1, 3, 1})
	require.NoError(t, err)

	_, err = g.Forward([]*tensor.RawTensor{x}, true)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "fc", events[0].Node)
	assert.Equal(t, "act", events[1].Node)
}

func TestGraph_MissingWeightFile(t *testing.T) {
	param, _ := writeMLP(t)

	g := graph.New(param, filepath.Join(t.TempDir(), "absent.bin"), layers.NewRegistry(cpu.New()))
	err := g.Build("pnnx_input_0", "pnnx_output_0")
	require.ErrorIs(t, err, graph.ErrLoad)
}
