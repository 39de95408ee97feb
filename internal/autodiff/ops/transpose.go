package ops

import "github.com/born-ml/bayes/internal/tensor"

// TransposeOp represents a permutation of dimensions.
//
// The backward pass applies the inverse permutation: if the forward pass
// moved dimension axes[i] to position i, the gradient moves it back.
type TransposeOp struct {
	unary
	axes []int
}

// NewTransposeOp creates a new TransposeOp. axes must be the full permutation
// used in the forward pass.
func NewTransposeOp(input, output *tensor.RawTensor, axes []int) *TransposeOp {
	return &TransposeOp{
		unary: unary{input: input, output: output},
		axes:  append([]int(nil), axes...),
	}
}

// Backward transposes outputGrad with the inverse permutation.
func (op *TransposeOp) Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, axis := range op.axes {
		inverse[axis] = i
	}
	return []*tensor.RawTensor{backend.Transpose(outputGrad, inverse...)}
}
