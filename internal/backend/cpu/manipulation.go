package cpu

import (
	"fmt"

	"github.com/born-ml/bayes/internal/tensor"
)

// Reshape returns a copy of x with a new shape of the same element count.
func (cpu *CPUBackend) Reshape(x *tensor.RawTensor, newShape tensor.Shape) *tensor.RawTensor {
	cpu.checkOperands("reshape", x)
	if newShape.NumElements() != x.NumElements() {
		panic(fmt.Sprintf("reshape: cannot reshape %v (%d elements) to %v (%d elements)",
			x.Shape(), x.NumElements(), newShape, newShape.NumElements()))
	}
	result := cpu.newResult("reshape", newShape, x.DType())
	if err := result.CopyFrom(x); err != nil {
		panic(fmt.Sprintf("reshape: %v", err))
	}
	return result
}

// Transpose permutes the dimensions of x.
// With no axes the dimensions are reversed.
func (cpu *CPUBackend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	cpu.checkOperands("transpose", x)
	shape := x.Shape()
	ndim := len(shape)

	if len(axes) == 0 {
		axes = make([]int, ndim)
		for i := range axes {
			axes[i] = ndim - 1 - i
		}
	}
	if len(axes) != ndim {
		panic(fmt.Sprintf("transpose: got %d axes for %dD tensor", len(axes), ndim))
	}

	seen := make([]bool, ndim)
	outShape := make(tensor.Shape, ndim)
	for i, ax := range axes {
		if ax < 0 || ax >= ndim || seen[ax] {
			panic(fmt.Sprintf("transpose: invalid permutation %v for %dD tensor", axes, ndim))
		}
		seen[ax] = true
		outShape[i] = shape[ax]
	}

	result := cpu.newResult("transpose", outShape, x.DType())

	// srcStrides[i] is the source stride of output dimension i.
	inStrides := x.Strides()
	srcStrides := make([]int, ndim)
	for i, ax := range axes {
		srcStrides[i] = inStrides[ax]
	}

	switch x.DType() {
	case tensor.Float32:
		permute(result.AsFloat32(), x.AsFloat32(), outShape, srcStrides)
	case tensor.Float64:
		permute(result.AsFloat64(), x.AsFloat64(), outShape, srcStrides)
	}
	return result
}

func permute[F float](dst, src []F, outShape tensor.Shape, srcStrides []int) {
	index := make([]int, len(outShape))
	off := 0
	for i := range dst {
		dst[i] = src[off]
		for d := len(outShape) - 1; d >= 0; d-- {
			index[d]++
			off += srcStrides[d]
			if index[d] < outShape[d] {
				break
			}
			off -= srcStrides[d] * outShape[d]
			index[d] = 0
		}
	}
}
