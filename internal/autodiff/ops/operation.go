// Package ops defines operation interfaces and implementations for automatic differentiation.
//
// Each operation implements the Operation interface, which provides:
//   - Forward pass: computed by the backend
//   - Backward pass: computes gradients for inputs given output gradient
//
// Supported operations:
//   - AddOp, SubOp, MulOp, DivOp: element-wise arithmetic with broadcasting
//   - MulScalarOp, AddScalarOp: arithmetic with a constant
//   - ExpOp, LogOp, Log1pOp, SqrtOp, SoftplusOp, SigmoidOp: element-wise math
//   - SumOp: reduction to a scalar
//   - ReshapeOp, TransposeOp: shape manipulation
//   - MatMulOp: matrix multiplication (d(A@B)/dA = grad@B^T, d(A@B)/dB = A^T@grad)
//   - Conv2DOp: 2D convolution with stride, padding and dilation
package ops

import "github.com/born-ml/bayes/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
// Each operation records its inputs and output during the forward pass,
// and computes input gradients during the backward pass.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// Returns a slice of gradients corresponding to each input tensor.
	//
	// Example for AddOp:
	//   inputs: [a, b]
	//   outputGrad: dL/d(a+b)
	//   returns: [dL/d(a+b), dL/d(a+b)] (gradient flows equally to both inputs)
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// unary holds the bookkeeping shared by single-input operations.
type unary struct {
	input  *tensor.RawTensor
	output *tensor.RawTensor
}

// Inputs returns the single input tensor.
func (u *unary) Inputs() []*tensor.RawTensor {
	return []*tensor.RawTensor{u.input}
}

// Output returns the output tensor.
func (u *unary) Output() *tensor.RawTensor {
	return u.output
}

// binary holds the bookkeeping shared by two-input operations.
type binary struct {
	inputs []*tensor.RawTensor // [a, b]
	output *tensor.RawTensor
}

func newBinary(a, b, output *tensor.RawTensor) binary {
	return binary{inputs: []*tensor.RawTensor{a, b}, output: output}
}

// Inputs returns the input tensors [a, b].
func (b *binary) Inputs() []*tensor.RawTensor {
	return b.inputs
}

// Output returns the output tensor.
func (b *binary) Output() *tensor.RawTensor {
	return b.output
}
