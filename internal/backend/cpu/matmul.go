package cpu

import (
	"fmt"

	"github.com/born-ml/bayes/internal/tensor"
	"gonum.org/v1/gonum/blas"
)

// MatMul multiplies 2D tensors: [M, K] @ [K, N] -> [M, N].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	cpu.checkOperands("matmul", a, b)
	aShape, bShape := a.Shape(), b.Shape()
	if len(aShape) != 2 || len(bShape) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D operands, got %v and %v", aShape, bShape))
	}
	if aShape[1] != bShape[0] {
		panic(fmt.Sprintf("matmul: inner dimensions differ: %v @ %v", aShape, bShape))
	}

	m, k, n := aShape[0], aShape[1], bShape[1]
	result := cpu.newResult("matmul", tensor.Shape{m, n}, a.DType())

	switch a.DType() {
	case tensor.Float32:
		gemm(blas.NoTrans, blas.NoTrans, 1, a.AsFloat32(), m, k, b.AsFloat32(), k, n, 0, result.AsFloat32())
	case tensor.Float64:
		gemm(blas.NoTrans, blas.NoTrans, 1, a.AsFloat64(), m, k, b.AsFloat64(), k, n, 0, result.AsFloat64())
	}
	return result
}
