package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/bayes/internal/tensor"
)

func raw32(t *testing.T, data []float32, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func raw64(t *testing.T, data []float64, shape tensor.Shape) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float64, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat64(), data)
	return r
}

func TestCPUBackend_Metadata(t *testing.T) {
	backend := New()
	assert.Equal(t, "CPU", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
}

func TestCPUBackend_BinaryBroadcast(t *testing.T) {
	backend := New()

	// [2, 3] op [3]
	a := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := raw32(t, []float32{10, 20, 30}, tensor.Shape{3})

	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, backend.Add(a, b).AsFloat32())
	assert.Equal(t, []float32{-9, -18, -27, -6, -15, -24}, backend.Sub(a, b).AsFloat32())
	assert.Equal(t, []float32{10, 40, 90, 40, 100, 180}, backend.Mul(a, b).AsFloat32())

	// [2, 1] / [1, 3] -> [2, 3]
	c := raw64(t, []float64{6, 12}, tensor.Shape{2, 1})
	d := raw64(t, []float64{1, 2, 3}, tensor.Shape{1, 3})
	q := backend.Div(c, d)
	assert.Equal(t, tensor.Shape{2, 3}, q.Shape())
	assert.Equal(t, []float64{6, 3, 2, 12, 6, 4}, q.AsFloat64())
}

func TestCPUBackend_BinaryScalarOperand(t *testing.T) {
	backend := New()
	x := raw32(t, []float32{1, 2, 3}, tensor.Shape{3})
	s := raw32(t, []float32{2}, tensor.Shape{})

	assert.Equal(t, []float32{2, 4, 6}, backend.Mul(s, x).AsFloat32())
}

func TestCPUBackend_BinaryPanics(t *testing.T) {
	backend := New()
	a := raw32(t, []float32{1, 2, 3}, tensor.Shape{3})
	b := raw32(t, []float32{1, 2}, tensor.Shape{2})
	assert.Panics(t, func() { backend.Add(a, b) }, "incompatible shapes")

	c := raw64(t, []float64{1, 2, 3}, tensor.Shape{3})
	assert.Panics(t, func() { backend.Add(a, c) }, "dtype mismatch")
}

func TestCPUBackend_RejectsForeignDevice(t *testing.T) {
	backend := New()
	local := raw32(t, []float32{1}, tensor.Shape{1})
	remote, err := tensor.NewRaw(tensor.Shape{1}, tensor.Float32, tensor.CUDA)
	require.NoError(t, err)

	assert.PanicsWithValue(t, "add: operand 1 is on CUDA, backend is CPU", func() {
		backend.Add(local, remote)
	})
	assert.Panics(t, func() { backend.Exp(remote) })
}

func TestCPUBackend_ScalarOps(t *testing.T) {
	backend := New()
	x := raw32(t, []float32{1, -2}, tensor.Shape{2})
	assert.Equal(t, []float32{3, -6}, backend.MulScalar(x, 3).AsFloat32())
	assert.Equal(t, []float32{1.5, -1.5}, backend.AddScalar(x, 0.5).AsFloat32())
}

func TestCPUBackend_UnaryMath(t *testing.T) {
	backend := New()
	x := raw64(t, []float64{0.25, 1, 4}, tensor.Shape{3})

	for i, v := range backend.Exp(x).AsFloat64() {
		assert.InDelta(t, math.Exp(x.AsFloat64()[i]), v, 1e-12)
	}
	for i, v := range backend.Log(x).AsFloat64() {
		assert.InDelta(t, math.Log(x.AsFloat64()[i]), v, 1e-12)
	}
	for i, v := range backend.Log1p(x).AsFloat64() {
		assert.InDelta(t, math.Log1p(x.AsFloat64()[i]), v, 1e-12)
	}
	assert.Equal(t, []float64{0.5, 1, 2}, backend.Sqrt(x).AsFloat64())

	x32 := raw32(t, []float32{0.25, 1, 4}, tensor.Shape{3})
	assert.InDeltaSlice(t, []float32{0.5, 1, 2}, backend.Sqrt(x32).AsFloat32(), 1e-6)
}

func TestCPUBackend_SoftplusStrictlyPositive(t *testing.T) {
	backend := New()
	inputs := []float32{-1000, -200, -104, -50, -20.5, -3, 0, 3, 20.5, 50, 1000}

	out := backend.Softplus(raw32(t, inputs, tensor.Shape{len(inputs)})).AsFloat32()
	for i, v := range out {
		assert.Greaterf(t, v, float32(0), "softplus(%v)", inputs[i])
		assert.Falsef(t, math.IsInf(float64(v), 0) || math.IsNaN(float64(v)), "softplus(%v) = %v", inputs[i], v)
	}

	// Reference values in the exact region.
	assert.InDelta(t, math.Log(2), float64(out[6]), 1e-6)
	assert.InDelta(t, math.Log1p(math.Exp(-3)), float64(out[5]), 1e-6)
	assert.InDelta(t, 50, float64(out[9]), 1e-6)

	out64 := backend.Softplus(raw64(t, []float64{-1000, 0, 1000}, tensor.Shape{3})).AsFloat64()
	assert.Greater(t, out64[0], 0.0)
	assert.InDelta(t, math.Log(2), out64[1], 1e-12)
	assert.Equal(t, 1000.0, out64[2])
}

func TestCPUBackend_Sigmoid(t *testing.T) {
	backend := New()
	out := backend.Sigmoid(raw64(t, []float64{-800, 0, 800}, tensor.Shape{3})).AsFloat64()
	assert.Equal(t, []float64{0, 0.5, 1}, out)
}

func TestCPUBackend_Sum(t *testing.T) {
	backend := New()

	s := backend.Sum(raw32(t, []float32{1, 2, 3, 4}, tensor.Shape{2, 2}))
	assert.Empty(t, s.Shape())
	assert.Equal(t, float32(10), s.AsFloat32()[0])

	s64 := backend.Sum(raw64(t, []float64{0.5, 0.25}, tensor.Shape{2}))
	assert.Equal(t, 0.75, s64.AsFloat64()[0])
}

func TestCPUBackend_ReshapeCopies(t *testing.T) {
	backend := New()
	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	y := backend.Reshape(x, tensor.Shape{3, 2})
	assert.Equal(t, tensor.Shape{3, 2}, y.Shape())
	y.AsFloat32()[0] = 100
	assert.Equal(t, float32(1), x.AsFloat32()[0])

	assert.Panics(t, func() { backend.Reshape(x, tensor.Shape{4}) })
}

func TestCPUBackend_Transpose(t *testing.T) {
	backend := New()
	x := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})

	y := backend.Transpose(x)
	assert.Equal(t, tensor.Shape{3, 2}, y.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, y.AsFloat32())

	// [2, 1, 3] -> [3, 2, 1]
	z := backend.Transpose(raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 1, 3}), 2, 0, 1)
	assert.Equal(t, tensor.Shape{3, 2, 1}, z.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, z.AsFloat32())

	assert.Panics(t, func() { backend.Transpose(x, 0, 0) })
}

func TestCPUBackend_MatMul(t *testing.T) {
	backend := New()
	a := raw32(t, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b := raw32(t, []float32{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})

	c := backend.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, c.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, c.AsFloat32())

	a64 := raw64(t, []float64{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	b64 := raw64(t, []float64{7, 8, 9, 10, 11, 12}, tensor.Shape{3, 2})
	assert.Equal(t, []float64{58, 64, 139, 154}, backend.MatMul(a64, b64).AsFloat64())

	assert.Panics(t, func() { backend.MatMul(a, a) })
}
