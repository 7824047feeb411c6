// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package graph provides the public API of the inference graph runtime.
//
// A Graph is loaded from a .param/.bin model description, built once, and
// then run any number of times:
//
//	backend := cpu.New()
//	g := graph.New("model.param", "model.bin", layers.NewRegistry(backend))
//	if err := g.Build("pnnx_input_0", "pnnx_output_0"); err != nil {
//	    log.Fatal(err)
//	}
//	outputs, err := g.Forward(inputs, false)
package graph

import (
	"github.com/born-ml/graphrun/internal/runtime"
)

// Graph is an executable computation graph.
type Graph = runtime.Graph

// State is the graph lifecycle state.
type State = runtime.State

// Lifecycle states.
const (
	StateUninitialized State = runtime.StateUninitialized
	StateNeedInit      State = runtime.StateNeedInit
	StateNeedBuild     State = runtime.StateNeedBuild
	StateComplete      State = runtime.StateComplete
)

// Operator is one computation node of a graph.
type Operator = runtime.Operator

// Operand is a named, typed, shaped data edge between operators.
type Operand = runtime.Operand

// Param is a typed operator parameter.
type Param = runtime.Param

// Attr is a named float32 weight attribute.
type Attr = runtime.Attr

// Layer is the compute contract of a bound operator.
type Layer = runtime.Layer

// Factory resolves compute handlers during Build.
type Factory = runtime.Factory

// Event describes one executed node of a forward pass.
type Event = runtime.Event

// TraceFunc receives per-node execution events in debug mode.
type TraceFunc = runtime.TraceFunc

// New creates a graph for the given model description paths.
func New(paramPath, binPath string, factory Factory) *Graph {
	return runtime.New(paramPath, binPath, factory)
}

// Error sentinels; classify failures with errors.Is.
var (
	ErrConfiguration      = runtime.ErrConfiguration
	ErrLoad               = runtime.ErrLoad
	ErrShapeMismatch      = runtime.ErrShapeMismatch
	ErrGraphState         = runtime.ErrGraphState
	ErrLayerBind          = runtime.ErrLayerBind
	ErrReadinessViolation = runtime.ErrReadinessViolation
	ErrCompute            = runtime.ErrCompute
)
