package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/born-ml/bayes/internal/parallel"
	"github.com/born-ml/bayes/internal/tensor"
)

// Conv2DInputBackward computes ∂L/∂input for Conv2D.
//
// With gradMat = grad rearranged to [C_out, N*H_out*W_out]:
//
//	dCol   = gradMatᵀ @ kernel   [N*H_out*W_out, C_in*K_h*K_w]
//	dInput = col2im(dCol)        [N, C_in, H, W]
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, opts tensor.Conv2DOptions) *tensor.RawTensor {
	cpu.checkOperands("conv2d_input_backward", input, kernel, grad)
	g := geometry("conv2d_input_backward", input.Shape(), kernel.Shape(), opts)
	checkGradShape("conv2d_input_backward", grad.Shape(), g)

	inputGrad := cpu.newResult("conv2d_input_backward", input.Shape(), grad.DType())

	switch grad.DType() {
	case tensor.Float32:
		conv2dInputBackward(inputGrad.AsFloat32(), kernel.AsFloat32(), grad.AsFloat32(), g, cpu.parallel)
	case tensor.Float64:
		conv2dInputBackward(inputGrad.AsFloat64(), kernel.AsFloat64(), grad.AsFloat64(), g, cpu.parallel)
	default:
		panic(fmt.Sprintf("conv2d_input_backward: unsupported dtype %s", grad.DType()))
	}
	return inputGrad
}

// Conv2DKernelBackward computes ∂L/∂kernel for Conv2D.
//
//	dKernel = gradMat @ im2col(input)   [C_out, C_in*K_h*K_w]
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, opts tensor.Conv2DOptions) *tensor.RawTensor {
	cpu.checkOperands("conv2d_kernel_backward", input, kernel, grad)
	g := geometry("conv2d_kernel_backward", input.Shape(), kernel.Shape(), opts)
	checkGradShape("conv2d_kernel_backward", grad.Shape(), g)

	kernelGrad := cpu.newResult("conv2d_kernel_backward", kernel.Shape(), grad.DType())

	switch grad.DType() {
	case tensor.Float32:
		conv2dKernelBackward(kernelGrad.AsFloat32(), input.AsFloat32(), grad.AsFloat32(), g, cpu.parallel)
	case tensor.Float64:
		conv2dKernelBackward(kernelGrad.AsFloat64(), input.AsFloat64(), grad.AsFloat64(), g, cpu.parallel)
	default:
		panic(fmt.Sprintf("conv2d_kernel_backward: unsupported dtype %s", grad.DType()))
	}
	return kernelGrad
}

func checkGradShape(op string, gradShape tensor.Shape, g convGeometry) {
	want := tensor.Shape{g.N, g.COut, g.HOut, g.WOut}
	if !gradShape.Equal(want) {
		panic(fmt.Sprintf("%s: grad shape %v, expected %v", op, gradShape, want))
	}
}

func conv2dInputBackward[F float](inputGrad, kernel, grad []F, g convGeometry, cfg parallel.Config) {
	rows, cols := g.colRows(), g.colCols()

	gradMat := make([]F, g.COut*rows)
	batchFirstToChannelsFirst(gradMat, grad, g)

	dCol := make([]F, rows*cols)
	gemm(blas.Trans, blas.NoTrans, 1, gradMat, g.COut, rows, kernel, g.COut, cols, 0, dCol)

	col2im(inputGrad, dCol, g, cfg)
}

func conv2dKernelBackward[F float](kernelGrad, input, grad []F, g convGeometry, cfg parallel.Config) {
	rows, cols := g.colRows(), g.colCols()

	gradMat := make([]F, g.COut*rows)
	batchFirstToChannelsFirst(gradMat, grad, g)

	col := make([]F, rows*cols)
	im2col(col, input, g, cfg)

	gemm(blas.NoTrans, blas.NoTrans, 1, gradMat, g.COut, rows, col, rows, cols, 0, kernelGrad)
}
