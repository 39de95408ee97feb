package ops

import "github.com/born-ml/bayes/internal/tensor"

// ReshapeOp represents a reshape. The gradient is reshaped back to the
// input shape.
type ReshapeOp struct {
	unary
}

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{unary{input: input, output: output}}
}

// Backward reshapes outputGrad to the input shape.
func (op *ReshapeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(outputGrad, op.input.Shape())}
}
