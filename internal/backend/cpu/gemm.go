package cpu

import (
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

// gemm computes c = alpha * op(a) @ op(b) + beta * c on dense row-major data.
//
// aRows/aCols and bRows/bCols describe a and b as stored (before op);
// c must hold m*n elements where m, n follow from the transposes.
func gemm[F float](tA, tB blas.Transpose, alpha F, a []F, aRows, aCols int, b []F, bRows, bCols int, beta F, c []F) {
	m, n := aRows, bCols
	if tA == blas.Trans {
		m = aCols
	}
	if tB == blas.Trans {
		n = bRows
	}

	switch a := any(a).(type) {
	case []float32:
		blas32.Gemm(tA, tB, float32(alpha),
			blas32.General{Rows: aRows, Cols: aCols, Stride: aCols, Data: a},
			blas32.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: any(b).([]float32)},
			float32(beta),
			blas32.General{Rows: m, Cols: n, Stride: n, Data: any(c).([]float32)})
	case []float64:
		blas64.Gemm(tA, tB, float64(alpha),
			blas64.General{Rows: aRows, Cols: aCols, Stride: aCols, Data: a},
			blas64.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: any(b).([]float64)},
			float64(beta),
			blas64.General{Rows: m, Cols: n, Stride: n, Data: any(c).([]float64)})
	default:
		panic("gemm: unsupported element type")
	}
}
