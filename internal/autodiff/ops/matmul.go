package ops

import "github.com/born-ml/bayes/internal/tensor"

// MatMulOp represents a 2D matrix multiplication: output = A @ B.
//
// Backward pass:
//   - grad_A = outputGrad @ B^T
//   - grad_B = A^T @ outputGrad
type MatMulOp struct {
	binary
}

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{newBinary(a, b, output)}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		backend.MatMul(outputGrad, backend.Transpose(b, 1, 0)),
		backend.MatMul(backend.Transpose(a, 1, 0), outputGrad),
	}
}
