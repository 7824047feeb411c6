// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package layers provides the built-in layer library and its registry.
//
// The registry implements graph.Factory and resolves compute handlers by
// operator type tag. Custom layers are added with Register:
//
//	registry := layers.NewRegistry(cpu.New())
//	registry.Register("custom.Scale", func(b tensor.Backend, op *graph.Operator) (graph.Layer, error) {
//	    ...
//	})
package layers

import (
	internallayers "github.com/born-ml/graphrun/internal/layers"
	"github.com/born-ml/graphrun/tensor"
)

// Registry maps operator type tags to layer builders.
type Registry = internallayers.Registry

// Builder constructs a compute handler for one operator node.
type Builder = internallayers.Builder

// NewRegistry creates a registry with all built-in layers registered.
func NewRegistry(backend tensor.Backend) *Registry {
	return internallayers.NewRegistry(backend)
}
