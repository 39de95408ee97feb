package ops

import "github.com/born-ml/bayes/internal/tensor"

// SumOp represents a full reduction to a scalar: output = Σ x.
//
// Every input element contributes with weight 1, so the scalar output
// gradient is broadcast back over the input shape.
type SumOp struct {
	unary
}

// NewSumOp creates a new SumOp.
func NewSumOp(input, output *tensor.RawTensor) *SumOp {
	return &SumOp{unary{input: input, output: output}}
}

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Mul(onesLike(op.input), outputGrad)}
}
