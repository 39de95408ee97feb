package ops

import "github.com/born-ml/bayes/internal/tensor"

// Conv2DOp represents a 2D convolution: output = conv2d(input, kernel).
//
// Forward:
//
//	input:  [N, C_in, H, W]
//	kernel: [C_out, C_in, K_h, K_w]
//	output: [N, C_out, H_out, W_out]
//
// Backward:
//   - grad_input:  the kernel-weighted scatter of outputGrad (col2im of kernel^T @ grad)
//   - grad_kernel: the correlation of outputGrad with the input patches (grad @ im2col(input)^T)
type Conv2DOp struct {
	binary
	opts tensor.Conv2DOptions
}

// NewConv2DOp creates a new Conv2DOp.
func NewConv2DOp(input, kernel, output *tensor.RawTensor, opts tensor.Conv2DOptions) *Conv2DOp {
	return &Conv2DOp{binary: newBinary(input, kernel, output), opts: opts}
}

// Options returns the stride, padding and dilation of the forward pass.
func (op *Conv2DOp) Options() tensor.Conv2DOptions {
	return op.opts
}

// Backward computes gradients for input and kernel.
func (op *Conv2DOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input, kernel := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		backend.Conv2DInputBackward(input, kernel, outputGrad, op.opts),
		backend.Conv2DKernelBackward(input, kernel, outputGrad, op.opts),
	}
}
