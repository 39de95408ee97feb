package cpu

import (
	"github.com/born-ml/bayes/internal/tensor"
	"gonum.org/v1/gonum/floats"
)

// Sum reduces all elements to a 0-D tensor.
//
// float32 data is accumulated in float64 so large reductions (a KL term over
// every kernel weight, for instance) do not drift.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	cpu.checkOperands("sum", x)
	result := cpu.newResult("sum", tensor.Shape{}, x.DType())

	switch x.DType() {
	case tensor.Float32:
		var sum float64
		for _, v := range x.AsFloat32() {
			sum += float64(v)
		}
		result.AsFloat32()[0] = float32(sum)
	case tensor.Float64:
		result.AsFloat64()[0] = floats.Sum(x.AsFloat64())
	}
	return result
}
