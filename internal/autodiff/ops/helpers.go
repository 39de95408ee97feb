package ops

import (
	"fmt"

	"github.com/born-ml/bayes/internal/tensor"
)

// reduceBroadcast reduces a gradient tensor to match the target shape.
// This is necessary when broadcasting was used in the forward pass.
//
// Example:
//
//	Forward: a[3,1] + b[3,4] -> c[3,4]  (a was broadcast along dim 1)
//	Backward: grad_c[3,4] -> grad_a[3,1] (sum along dim 1)
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape) *tensor.RawTensor {
	gradShape := grad.Shape()
	if gradShape.Equal(targetShape) {
		return grad
	}

	result, err := tensor.NewRaw(targetShape, grad.DType(), grad.Device())
	if err != nil {
		panic(fmt.Sprintf("reduceBroadcast: failed to create result: %v", err))
	}

	// Walk the gradient in row-major order; each element lands on the target
	// offset given by the broadcast strides (0 along broadcast dimensions).
	strides := tensor.BroadcastStrides(targetShape, gradShape)
	switch grad.DType() {
	case tensor.Float32:
		accumulate(result.AsFloat32(), grad.AsFloat32(), gradShape, strides)
	case tensor.Float64:
		accumulate(result.AsFloat64(), grad.AsFloat64(), gradShape, strides)
	default:
		panic(fmt.Sprintf("reduceBroadcast: unsupported dtype %s", grad.DType()))
	}
	return result
}

func accumulate[F float32 | float64](dst, src []F, shape tensor.Shape, strides []int) {
	index := make([]int, len(shape))
	offset := 0
	for _, v := range src {
		dst[offset] += v
		for d := len(shape) - 1; d >= 0; d-- {
			index[d]++
			offset += strides[d]
			if index[d] < shape[d] {
				break
			}
			offset -= strides[d] * index[d]
			index[d] = 0
		}
	}
}

// onesLike returns a tensor of ones with x's shape, dtype and device.
func onesLike(x *tensor.RawTensor) *tensor.RawTensor {
	ones, err := tensor.NewRaw(x.Shape(), x.DType(), x.Device())
	if err != nil {
		panic(fmt.Sprintf("onesLike: %v", err))
	}
	ones.Fill(1)
	return ones
}
