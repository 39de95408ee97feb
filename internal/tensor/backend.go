package tensor

import "fmt"

// Backend defines the interface that compute backends implement.
// Backends perform the numeric work on RawTensors; they never modify their
// inputs and always return freshly allocated results.
//
// Programmer errors (incompatible shapes, mixed devices or dtypes) panic.
type Backend interface {
	// Element-wise binary operations with NumPy-style broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations.
	MulScalar(x *RawTensor, scalar float64) *RawTensor
	AddScalar(x *RawTensor, scalar float64) *RawTensor

	// Element-wise math.
	Exp(x *RawTensor) *RawTensor
	Log(x *RawTensor) *RawTensor
	Log1p(x *RawTensor) *RawTensor // log(1 + x)
	Sqrt(x *RawTensor) *RawTensor
	Softplus(x *RawTensor) *RawTensor // log(1 + exp(x))
	Sigmoid(x *RawTensor) *RawTensor

	// Reductions.
	Sum(x *RawTensor) *RawTensor // scalar result

	// Shape operations.
	Reshape(x *RawTensor, shape Shape) *RawTensor
	Transpose(x *RawTensor, axes ...int) *RawTensor

	// MatMul multiplies 2D tensors: [M, K] @ [K, N] -> [M, N].
	MatMul(a, b *RawTensor) *RawTensor

	// Conv2D performs a 2D cross-correlation with groups=1.
	//   input:  [N, C_in, H, W]
	//   kernel: [C_out, C_in, K_h, K_w]
	//   output: [N, C_out, H_out, W_out]
	Conv2D(input, kernel *RawTensor, opts Conv2DOptions) *RawTensor
	Conv2DInputBackward(input, kernel, grad *RawTensor, opts Conv2DOptions) *RawTensor
	Conv2DKernelBackward(input, kernel, grad *RawTensor, opts Conv2DOptions) *RawTensor

	// Metadata.
	Name() string
	Device() Device
}

// Conv2DOptions configures a 2D convolution.
type Conv2DOptions struct {
	Stride   int // step between output positions (>= 1)
	Padding  int // implicit zero padding on every side (>= 0)
	Dilation int // spacing between kernel taps (>= 1)
}

// DefaultConv2DOptions returns stride 1, padding 0, dilation 1.
func DefaultConv2DOptions() Conv2DOptions {
	return Conv2DOptions{Stride: 1, Padding: 0, Dilation: 1}
}

// Validate checks the option ranges.
func (o Conv2DOptions) Validate() error {
	if o.Stride < 1 {
		return fmt.Errorf("invalid stride %d (must be >= 1)", o.Stride)
	}
	if o.Padding < 0 {
		return fmt.Errorf("invalid padding %d (must be >= 0)", o.Padding)
	}
	if o.Dilation < 1 {
		return fmt.Errorf("invalid dilation %d (must be >= 1)", o.Dilation)
	}
	return nil
}

// OutputSize computes one spatial output dimension:
//
//	out = (in + 2*padding - dilation*(kernel-1) - 1) / stride + 1
func (o Conv2DOptions) OutputSize(in, kernel int) int {
	return (in+2*o.Padding-o.Dilation*(kernel-1)-1)/o.Stride + 1
}
