package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/bayes/internal/tensor"
	"github.com/chewxy/math32"
)

// softplusThreshold bounds the region where log1p(exp(x)) is evaluated.
// Above it softplus(x) is x, below its negation softplus(x) is exp(x), both
// to float32 precision.
const softplusThreshold = 20

// Exp computes element-wise exponential: exp(x).
func (cpu *CPUBackend) Exp(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("exp", x, math32.Exp, math.Exp)
}

// Log computes element-wise natural logarithm: ln(x).
// Non-positive inputs produce -Inf or NaN, as in package math.
func (cpu *CPUBackend) Log(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("log", x, math32.Log, math.Log)
}

// Log1p computes element-wise log(1 + x), accurate for small x.
func (cpu *CPUBackend) Log1p(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("log1p", x, math32.Log1p, math.Log1p)
}

// Sqrt computes element-wise square root.
func (cpu *CPUBackend) Sqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sqrt", x, math32.Sqrt, math.Sqrt)
}

// Softplus computes element-wise log(1 + exp(x)).
//
// Large inputs return x directly so exp never overflows. Results that would
// underflow to zero are floored at the smallest positive value, so the output
// is strictly positive for every finite x.
func (cpu *CPUBackend) Softplus(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("softplus", x, softplus32, softplus64)
}

// Sigmoid computes element-wise 1 / (1 + exp(-x)).
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary("sigmoid", x, sigmoid32, sigmoid64)
}

func softplus32(v float32) float32 {
	switch {
	case v > softplusThreshold:
		return v
	case v < -softplusThreshold:
		return max(math32.Exp(v), math.SmallestNonzeroFloat32)
	}
	return math32.Log1p(math32.Exp(v))
}

func softplus64(v float64) float64 {
	switch {
	case v > softplusThreshold:
		return v
	case v < -softplusThreshold:
		return max(math.Exp(v), math.SmallestNonzeroFloat64)
	}
	return math.Log1p(math.Exp(v))
}

func sigmoid32(v float32) float32 {
	if v >= 0 {
		return 1 / (1 + math32.Exp(-v))
	}
	e := math32.Exp(v)
	return e / (1 + e)
}

func sigmoid64(v float64) float64 {
	if v >= 0 {
		return 1 / (1 + math.Exp(-v))
	}
	e := math.Exp(v)
	return e / (1 + e)
}

// unary applies the dtype-specific function to every element of x.
func (cpu *CPUBackend) unary(op string, x *tensor.RawTensor, f32 func(float32) float32, f64 func(float64) float64) *tensor.RawTensor {
	cpu.checkOperands(op, x)
	result := cpu.newResult(op, x.Shape(), x.DType())

	switch x.DType() {
	case tensor.Float32:
		mapInto(result.AsFloat32(), x.AsFloat32(), f32)
	case tensor.Float64:
		mapInto(result.AsFloat64(), x.AsFloat64(), f64)
	default:
		panic(fmt.Sprintf("%s: unsupported dtype %s (only float32/float64 supported)", op, x.DType()))
	}
	return result
}

func mapInto[F float](dst, src []F, fn func(F) F) {
	for i, v := range src {
		dst[i] = fn(v)
	}
}
