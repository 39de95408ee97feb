// Package cpu implements the CPU backend. Dense kernels are delegated to
// gonum's BLAS; element-wise float32 math goes through math32.
package cpu

import (
	"fmt"

	"github.com/born-ml/bayes/internal/parallel"
	"github.com/born-ml/bayes/internal/tensor"
)

// float is the element constraint shared by the generic kernels.
type float interface {
	~float32 | ~float64
}

// CPUBackend implements tensor operations on the host processor.
type CPUBackend struct {
	device   tensor.Device
	parallel parallel.Config
}

// New creates a new CPU backend that unfolds convolution inputs on all
// physical cores.
func New() *CPUBackend {
	return NewWithParallel(parallel.DefaultConfig())
}

// NewWithParallel creates a CPU backend with an explicit work split.
// parallel.Sequential() keeps every kernel on the calling goroutine.
func NewWithParallel(cfg parallel.Config) *CPUBackend {
	return &CPUBackend{
		device:   tensor.CPU,
		parallel: cfg,
	}
}

// Name returns the backend name.
func (cpu *CPUBackend) Name() string {
	return "CPU"
}

// Device returns the compute device.
func (cpu *CPUBackend) Device() tensor.Device {
	return cpu.device
}

// checkOperands panics unless every operand lives on this backend's device
// and all operands share one dtype.
func (cpu *CPUBackend) checkOperands(op string, xs ...*tensor.RawTensor) {
	for i, x := range xs {
		if x.Device() != cpu.device {
			panic(fmt.Sprintf("%s: operand %d is on %s, backend is %s", op, i, x.Device(), cpu.device))
		}
		if x.DType() != xs[0].DType() {
			panic(fmt.Sprintf("%s: dtype mismatch: %s vs %s", op, xs[0].DType(), x.DType()))
		}
	}
}

// newResult allocates a result tensor on this backend.
func (cpu *CPUBackend) newResult(op string, shape tensor.Shape, dtype tensor.DataType) *tensor.RawTensor {
	result, err := tensor.NewRaw(shape, dtype, cpu.device)
	if err != nil {
		panic(fmt.Sprintf("%s: failed to create result tensor: %v", op, err))
	}
	return result
}
