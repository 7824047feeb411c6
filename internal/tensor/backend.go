package tensor

// Backend defines the compute operations the layer library is built on.
// Backends handle the actual numeric work for layer kernels.
//
// Implementations:
//   - backend/cpu: pure Go kernels
//   - backend/webgpu: element-wise ops on GPU via WGSL, CPU delegate for the rest
type Backend interface {
	// Element-wise binary operations. Shapes must match exactly.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations.
	AddScalar(x *RawTensor, scalar float32) *RawTensor
	MulScalar(x *RawTensor, scalar float32) *RawTensor

	// Matrix multiplication for 2D tensors: [m,k] x [k,n] -> [m,n].
	MatMul(a, b *RawTensor) *RawTensor

	// Convolutional operations on 4D [N,C,H,W] tensors.
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	MaxPool2D(input *RawTensor, kernelSize, stride, padding int) *RawTensor

	// Activation functions (element-wise except Softmax).
	ReLU(x *RawTensor) *RawTensor
	Sigmoid(x *RawTensor) *RawTensor
	SiLU(x *RawTensor) *RawTensor
	Softmax(x *RawTensor, dim int) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}
