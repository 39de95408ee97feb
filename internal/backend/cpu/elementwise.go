package cpu

import (
	"fmt"

	"github.com/born-ml/bayes/internal/tensor"
)

// Add performs element-wise addition with NumPy-style broadcasting.
func (cpu *CPUBackend) Add(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("add", a, b, func(x, y float64) float64 { return x + y })
}

// Sub performs element-wise subtraction with broadcasting.
func (cpu *CPUBackend) Sub(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("sub", a, b, func(x, y float64) float64 { return x - y })
}

// Mul performs element-wise multiplication with broadcasting.
func (cpu *CPUBackend) Mul(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("mul", a, b, func(x, y float64) float64 { return x * y })
}

// Div performs element-wise division with broadcasting.
func (cpu *CPUBackend) Div(a, b *tensor.RawTensor) *tensor.RawTensor {
	return cpu.binary("div", a, b, func(x, y float64) float64 { return x / y })
}

// MulScalar multiplies every element by scalar.
func (cpu *CPUBackend) MulScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	cpu.checkOperands("mul_scalar", x)
	result := cpu.newResult("mul_scalar", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		s := float32(scalar)
		dst, src := result.AsFloat32(), x.AsFloat32()
		for i, v := range src {
			dst[i] = v * s
		}
	case tensor.Float64:
		dst, src := result.AsFloat64(), x.AsFloat64()
		for i, v := range src {
			dst[i] = v * scalar
		}
	}
	return result
}

// AddScalar adds scalar to every element.
func (cpu *CPUBackend) AddScalar(x *tensor.RawTensor, scalar float64) *tensor.RawTensor {
	cpu.checkOperands("add_scalar", x)
	result := cpu.newResult("add_scalar", x.Shape(), x.DType())
	switch x.DType() {
	case tensor.Float32:
		s := float32(scalar)
		dst, src := result.AsFloat32(), x.AsFloat32()
		for i, v := range src {
			dst[i] = v + s
		}
	case tensor.Float64:
		dst, src := result.AsFloat64(), x.AsFloat64()
		for i, v := range src {
			dst[i] = v + scalar
		}
	}
	return result
}

// binary applies fn element-wise, broadcasting a and b to a common shape.
// float32 operands are widened for fn and the result narrowed again.
func (cpu *CPUBackend) binary(op string, a, b *tensor.RawTensor, fn func(x, y float64) float64) *tensor.RawTensor {
	cpu.checkOperands(op, a, b)

	outShape, needsBroadcast, err := tensor.BroadcastShapes(a.Shape(), b.Shape())
	if err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}
	result := cpu.newResult(op, outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		binaryKernel(result.AsFloat32(), a.AsFloat32(), b.AsFloat32(), a.Shape(), b.Shape(), outShape, needsBroadcast,
			func(x, y float32) float32 { return float32(fn(float64(x), float64(y))) })
	case tensor.Float64:
		binaryKernel(result.AsFloat64(), a.AsFloat64(), b.AsFloat64(), a.Shape(), b.Shape(), outShape, needsBroadcast, fn)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s", op, a.DType()))
	}
	return result
}

func binaryKernel[F float](dst, a, b []F, aShape, bShape, outShape tensor.Shape, needsBroadcast bool, fn func(x, y F) F) {
	if !needsBroadcast {
		for i := range dst {
			dst[i] = fn(a[i], b[i])
		}
		return
	}

	aStrides := tensor.BroadcastStrides(aShape, outShape)
	bStrides := tensor.BroadcastStrides(bShape, outShape)
	index := make([]int, len(outShape))
	aOff, bOff := 0, 0

	for i := range dst {
		dst[i] = fn(a[aOff], b[bOff])

		// Advance the multi-index like an odometer, keeping both offsets in step.
		for d := len(outShape) - 1; d >= 0; d-- {
			index[d]++
			aOff += aStrides[d]
			bOff += bStrides[d]
			if index[d] < outShape[d] {
				break
			}
			aOff -= aStrides[d] * outShape[d]
			bOff -= bStrides[d] * outShape[d]
			index[d] = 0
		}
	}
}
