//go:build windows

// Package webgpu implements a GPU compute backend over WebGPU.
// Element-wise operations run as WGSL compute shaders via go-webgpu's
// zero-CGO bindings; structured kernels (matmul, convolution, pooling,
// softmax) delegate to the CPU backend, where the round-trip cost of
// small per-batch buffers outweighs the GPU win.
package webgpu

import (
	"fmt"
	"sync"

	"github.com/go-webgpu/webgpu/wgpu"

	"github.com/born-ml/graphrun/internal/backend/cpu"
	"github.com/born-ml/graphrun/internal/tensor"
)

// Backend implements tensor.Backend on a WebGPU device.
type Backend struct {
	instance *wgpu.Instance
	adapter  *wgpu.Adapter
	device   *wgpu.Device
	queue    *wgpu.Queue

	// Shader and pipeline cache, keyed by shader name.
	shaders   map[string]*wgpu.ShaderModule
	pipelines map[string]*wgpu.ComputePipeline
	mu        sync.RWMutex

	cpu *cpu.Backend
}

// New creates a WebGPU backend, or returns an error when no usable
// adapter or native library is available.
func New() (backend tensor.Backend, err error) {
	// The native loader panics when wgpu_native is missing.
	defer func() {
		if r := recover(); r != nil {
			backend = nil
			err = fmt.Errorf("webgpu: native library not available: %v", r)
		}
	}()

	instance := wgpu.CreateInstance(nil)
	adapter, adapterErr := instance.RequestAdapter(&wgpu.RequestAdapterOptions{
		PowerPreference: wgpu.PowerPreferenceHighPerformance,
	})
	if adapterErr != nil {
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request adapter: %w", adapterErr)
	}

	device, deviceErr := adapter.RequestDevice(nil)
	if deviceErr != nil {
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to request device: %w", deviceErr)
	}

	queue := device.GetQueue()
	if queue == nil {
		device.Release()
		adapter.Release()
		instance.Release()
		return nil, fmt.Errorf("webgpu: failed to get queue")
	}

	return &Backend{
		instance:  instance,
		adapter:   adapter,
		device:    device,
		queue:     queue,
		shaders:   make(map[string]*wgpu.ShaderModule),
		pipelines: make(map[string]*wgpu.ComputePipeline),
		cpu:       cpu.New(),
	}, nil
}

// Release frees the GPU resources held by the backend.
func (b *Backend) Release() {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, p := range b.pipelines {
		p.Release()
	}
	for _, s := range b.shaders {
		s.Release()
	}
	b.pipelines = map[string]*wgpu.ComputePipeline{}
	b.shaders = map[string]*wgpu.ShaderModule{}
	b.queue.Release()
	b.device.Release()
	b.adapter.Release()
	b.instance.Release()
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return "webgpu"
}

// Device returns the compute device.
func (b *Backend) Device() tensor.Device {
	return tensor.WebGPU
}

func gpuCheck(op string, t *tensor.RawTensor, err error) *tensor.RawTensor {
	if err != nil {
		panic(fmt.Sprintf("webgpu %s: %v", op, err))
	}
	return t
}

// Add performs element-wise addition on GPU.
func (b *Backend) Add(a, other *tensor.RawTensor) *tensor.RawTensor {
	t, err := b.runBinaryOp(a, other, "add", addShader)
	return gpuCheck("add", t, err)
}

// Sub performs element-wise subtraction on GPU.
func (b *Backend) Sub(a, other *tensor.RawTensor) *tensor.RawTensor {
	t, err := b.runBinaryOp(a, other, "sub", subShader)
	return gpuCheck("sub", t, err)
}

// Mul performs element-wise multiplication on GPU.
func (b *Backend) Mul(a, other *tensor.RawTensor) *tensor.RawTensor {
	t, err := b.runBinaryOp(a, other, "mul", mulShader)
	return gpuCheck("mul", t, err)
}

// Div performs element-wise division on GPU.
func (b *Backend) Div(a, other *tensor.RawTensor) *tensor.RawTensor {
	t, err := b.runBinaryOp(a, other, "div", divShader)
	return gpuCheck("div", t, err)
}

// AddScalar adds a scalar to every element on GPU.
func (b *Backend) AddScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	t, err := b.runScalarOp(x, scalar, "scalar_add", scalarAddShader)
	return gpuCheck("scalar add", t, err)
}

// MulScalar multiplies every element by a scalar on GPU.
func (b *Backend) MulScalar(x *tensor.RawTensor, scalar float32) *tensor.RawTensor {
	t, err := b.runScalarOp(x, scalar, "scalar_mul", scalarMulShader)
	return gpuCheck("scalar mul", t, err)
}

// ReLU applies max(0, x) on GPU.
func (b *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	t, err := b.runUnaryOp(x, "relu", reluShader)
	return gpuCheck("relu", t, err)
}

// Sigmoid applies 1/(1+exp(-x)) on GPU.
func (b *Backend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	t, err := b.runUnaryOp(x, "sigmoid", sigmoidShader)
	return gpuCheck("sigmoid", t, err)
}

// SiLU applies x*sigmoid(x) on GPU.
func (b *Backend) SiLU(x *tensor.RawTensor) *tensor.RawTensor {
	t, err := b.runUnaryOp(x, "silu", siluShader)
	return gpuCheck("silu", t, err)
}

// MatMul delegates to the CPU kernel.
func (b *Backend) MatMul(a, other *tensor.RawTensor) *tensor.RawTensor {
	return b.cpu.MatMul(a, other)
}

// Conv2D delegates to the CPU kernel.
func (b *Backend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return b.cpu.Conv2D(input, kernel, stride, padding)
}

// MaxPool2D delegates to the CPU kernel.
func (b *Backend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride, padding int) *tensor.RawTensor {
	return b.cpu.MaxPool2D(input, kernelSize, stride, padding)
}

// Softmax delegates to the CPU kernel.
func (b *Backend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	return b.cpu.Softmax(x, dim)
}

var _ tensor.Backend = (*Backend)(nil)
