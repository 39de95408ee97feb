package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"

	"github.com/born-ml/bayes/internal/parallel"
	"github.com/born-ml/bayes/internal/tensor"
)

// convGeometry holds the sizes of one Conv2D call.
type convGeometry struct {
	N, CIn, H, W    int
	COut, KH, KW    int
	HOut, WOut      int
	stride, padding int
	dilation        int
}

// colRows is the number of output positions (rows of the im2col matrix).
func (g convGeometry) colRows() int { return g.N * g.HOut * g.WOut }

// colCols is the receptive field size (columns of the im2col matrix).
func (g convGeometry) colCols() int { return g.CIn * g.KH * g.KW }

// geometry validates Conv2D operands and computes output sizes.
func geometry(op string, inputShape, kernelShape tensor.Shape, opts tensor.Conv2DOptions) convGeometry {
	if len(inputShape) != 4 {
		panic(fmt.Sprintf("%s: input must be 4D [N,C,H,W], got %dD", op, len(inputShape)))
	}
	if len(kernelShape) != 4 {
		panic(fmt.Sprintf("%s: kernel must be 4D [C_out,C_in,K_h,K_w], got %dD", op, len(kernelShape)))
	}
	if err := opts.Validate(); err != nil {
		panic(fmt.Sprintf("%s: %v", op, err))
	}

	g := convGeometry{
		N: inputShape[0], CIn: inputShape[1], H: inputShape[2], W: inputShape[3],
		COut: kernelShape[0], KH: kernelShape[2], KW: kernelShape[3],
		stride: opts.Stride, padding: opts.Padding, dilation: opts.Dilation,
	}
	if kernelShape[1] != g.CIn {
		panic(fmt.Sprintf("%s: input channels %d != kernel channels %d", op, g.CIn, kernelShape[1]))
	}

	// Effective (dilated) kernel extent must fit into the padded input.
	effH := opts.Dilation*(g.KH-1) + 1
	effW := opts.Dilation*(g.KW-1) + 1
	if effH > g.H+2*g.padding || effW > g.W+2*g.padding {
		panic(fmt.Sprintf("%s: kernel extent %dx%d exceeds padded input %dx%d",
			op, effH, effW, g.H+2*g.padding, g.W+2*g.padding))
	}

	g.HOut = opts.OutputSize(g.H, g.KH)
	g.WOut = opts.OutputSize(g.W, g.KW)
	return g
}

// Conv2D performs 2D convolution (cross-correlation, groups=1) using im2col.
//
// Input shape:  [batch, in_channels, height, width]
// Kernel shape: [out_channels, in_channels, kernel_h, kernel_w]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Algorithm:
//  1. Im2col: unfold input patches into [N*H_out*W_out, C_in*K_h*K_w]
//  2. GEMM:   kernel [C_out, C_in*K_h*K_w] @ colᵀ -> [C_out, N*H_out*W_out]
//  3. Rearrange to [N, C_out, H_out, W_out]
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, opts tensor.Conv2DOptions) *tensor.RawTensor {
	cpu.checkOperands("conv2d", input, kernel)
	g := geometry("conv2d", input.Shape(), kernel.Shape(), opts)

	output := cpu.newResult("conv2d", tensor.Shape{g.N, g.COut, g.HOut, g.WOut}, input.DType())

	switch input.DType() {
	case tensor.Float32:
		conv2dForward(output.AsFloat32(), input.AsFloat32(), kernel.AsFloat32(), g, cpu.parallel)
	case tensor.Float64:
		conv2dForward(output.AsFloat64(), input.AsFloat64(), kernel.AsFloat64(), g, cpu.parallel)
	default:
		panic(fmt.Sprintf("conv2d: unsupported dtype %s", input.DType()))
	}
	return output
}

func conv2dForward[F float](output, input, kernel []F, g convGeometry, cfg parallel.Config) {
	rows, cols := g.colRows(), g.colCols()

	col := make([]F, rows*cols)
	im2col(col, input, g, cfg)

	// [C_out, N*H_out*W_out]
	tmp := make([]F, g.COut*rows)
	gemm(blas.NoTrans, blas.Trans, 1, kernel, g.COut, cols, col, rows, cols, 0, tmp)

	channelsFirstToBatchFirst(output, tmp, g)
}

// im2col unfolds input [N, C, H, W] into col [N*H_out*W_out, C*K_h*K_w].
// Each row holds the (zero padded, dilated) receptive field of one output
// position. Rows are independent and filled in parallel.
func im2col[F float](col, input []F, g convGeometry, cfg parallel.Config) {
	cols := g.colCols()
	plane := g.HOut * g.WOut

	parallel.For(g.colRows(), cfg, func(start, end int) {
		for row := start; row < end; row++ {
			n, pos := row/plane, row%plane
			hStart := (pos/g.WOut)*g.stride - g.padding
			wStart := (pos%g.WOut)*g.stride - g.padding
			idx := row * cols

			for c := 0; c < g.CIn; c++ {
				base := (n*g.CIn + c) * g.H * g.W
				for kh := 0; kh < g.KH; kh++ {
					h := hStart + kh*g.dilation
					for kw := 0; kw < g.KW; kw++ {
						w := wStart + kw*g.dilation
						if h >= 0 && h < g.H && w >= 0 && w < g.W {
							col[idx] = input[base+h*g.W+w]
						} else {
							col[idx] = 0
						}
						idx++
					}
				}
			}
		}
	})
}

// col2im is the adjoint of im2col: it scatter-adds col back into an
// [N, C, H, W] buffer. dst must be zeroed by the caller. Receptive fields
// overlap within an image, so work is split by image.
func col2im[F float](dst, col []F, g convGeometry, cfg parallel.Config) {
	cols := g.colCols()
	plane := g.HOut * g.WOut

	parallel.For(g.N, parallel.Config{Workers: cfg.Workers, MinChunk: 1}, func(start, end int) {
		for n := start; n < end; n++ {
			for pos := 0; pos < plane; pos++ {
				row := n*plane + pos
				hStart := (pos/g.WOut)*g.stride - g.padding
				wStart := (pos%g.WOut)*g.stride - g.padding
				idx := row * cols

				for c := 0; c < g.CIn; c++ {
					base := (n*g.CIn + c) * g.H * g.W
					for kh := 0; kh < g.KH; kh++ {
						h := hStart + kh*g.dilation
						for kw := 0; kw < g.KW; kw++ {
							w := wStart + kw*g.dilation
							if h >= 0 && h < g.H && w >= 0 && w < g.W {
								dst[base+h*g.W+w] += col[idx]
							}
							idx++
						}
					}
				}
			}
		}
	})
}

// channelsFirstToBatchFirst rearranges [C_out, N*H_out*W_out] into
// [N, C_out, H_out, W_out].
func channelsFirstToBatchFirst[F float](dst, src []F, g convGeometry) {
	plane := g.HOut * g.WOut
	rows := g.colRows()
	for n := 0; n < g.N; n++ {
		for c := 0; c < g.COut; c++ {
			copy(dst[(n*g.COut+c)*plane:(n*g.COut+c+1)*plane], src[c*rows+n*plane:c*rows+(n+1)*plane])
		}
	}
}

// batchFirstToChannelsFirst is the inverse of channelsFirstToBatchFirst.
func batchFirstToChannelsFirst[F float](dst, src []F, g convGeometry) {
	plane := g.HOut * g.WOut
	rows := g.colRows()
	for n := 0; n < g.N; n++ {
		for c := 0; c < g.COut; c++ {
			copy(dst[c*rows+n*plane:c*rows+(n+1)*plane], src[(n*g.COut+c)*plane:(n*g.COut+c+1)*plane])
		}
	}
}
