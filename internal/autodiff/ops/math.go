package ops

import "github.com/born-ml/bayes/internal/tensor"

// ExpOp represents output = exp(x).
type ExpOp struct {
	unary
}

// NewExpOp creates a new ExpOp.
func NewExpOp(input, output *tensor.RawTensor) *ExpOp {
	return &ExpOp{unary{input: input, output: output}}
}

// Backward computes grad_x = outputGrad * exp(x), reusing the output.
func (op *ExpOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, op.output)}
}

// LogOp represents output = ln(x).
type LogOp struct {
	unary
}

// NewLogOp creates a new LogOp.
func NewLogOp(input, output *tensor.RawTensor) *LogOp {
	return &LogOp{unary{input: input, output: output}}
}

// Backward computes grad_x = outputGrad / x.
func (op *LogOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, op.input)}
}

// Log1pOp represents output = ln(1 + x).
type Log1pOp struct {
	unary
}

// NewLog1pOp creates a new Log1pOp.
func NewLog1pOp(input, output *tensor.RawTensor) *Log1pOp {
	return &Log1pOp{unary{input: input, output: output}}
}

// Backward computes grad_x = outputGrad / (1 + x).
func (op *Log1pOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, backend.AddScalar(op.input, 1))}
}

// SqrtOp represents output = sqrt(x).
type SqrtOp struct {
	unary
}

// NewSqrtOp creates a new SqrtOp.
func NewSqrtOp(input, output *tensor.RawTensor) *SqrtOp {
	return &SqrtOp{unary{input: input, output: output}}
}

// Backward computes grad_x = outputGrad / (2 * sqrt(x)), reusing the output.
func (op *SqrtOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Div(outputGrad, backend.MulScalar(op.output, 2))}
}

// SoftplusOp represents output = ln(1 + exp(x)).
//
// d softplus(x)/dx = sigmoid(x), so grad_x = outputGrad * sigmoid(x).
type SoftplusOp struct {
	unary
}

// NewSoftplusOp creates a new SoftplusOp.
func NewSoftplusOp(input, output *tensor.RawTensor) *SoftplusOp {
	return &SoftplusOp{unary{input: input, output: output}}
}

// Backward computes the softplus gradient.
func (op *SoftplusOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(outputGrad, backend.Sigmoid(op.input))}
}

// SigmoidOp represents the sigmoid activation operation: σ(x) = 1 / (1 + exp(-x)).
type SigmoidOp struct {
	unary
}

// NewSigmoidOp creates a new sigmoid operation.
func NewSigmoidOp(input, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{unary{input: input, output: output}}
}

// Backward computes the gradient for sigmoid.
//
// dσ/dx = σ(x) * (1 - σ(x)), so with the output already computed:
// grad_input = grad_output * output * (1 - output).
func (op *SigmoidOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	oneMinusSigmoid := backend.Sub(onesLike(op.output), op.output)
	derivative := backend.Mul(op.output, oneMinusSigmoid)
	return []*tensor.RawTensor{backend.Mul(outputGrad, derivative)}
}
