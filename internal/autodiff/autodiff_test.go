package autodiff_test

import (
	"math/rand/v2"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/bayes/internal/autodiff"
	"github.com/born-ml/bayes/internal/backend/cpu"
	"github.com/born-ml/bayes/internal/tensor"
)

type backendT = *autodiff.AutodiffBackend[*cpu.CPUBackend]
type tensor64 = *tensor.Tensor[float64, backendT]

func randomTensor(t *testing.T, rng *rand.Rand, shape tensor.Shape, backend backendT) tensor64 {
	t.Helper()
	x := tensor.Zeros[float64](shape, backend)
	for i := range x.Data() {
		x.Data()[i] = rng.NormFloat64()
	}
	return x
}

func positiveTensor(t *testing.T, rng *rand.Rand, shape tensor.Shape, backend backendT) tensor64 {
	t.Helper()
	x := tensor.Zeros[float64](shape, backend)
	for i := range x.Data() {
		x.Data()[i] = 0.5 + rng.Float64()
	}
	return x
}

// checkGradients compares tape gradients of the scalar f(inputs) with
// central finite differences.
func checkGradients(t *testing.T, f func(inputs []tensor64) tensor64, inputs []tensor64, backend backendT) {
	t.Helper()
	const h = 1e-6

	backend.Tape().Clear()
	backend.Tape().StartRecording()
	out := f(inputs)
	grads := autodiff.Backward(out, backend)
	backend.Tape().StopRecording()
	backend.Tape().Clear()

	for k, x := range inputs {
		grad, ok := grads[x.Raw()]
		require.Truef(t, ok, "input %d received no gradient", k)
		require.Truef(t, x.Shape().Equal(grad.Shape()), "input %d grad shape %v, want %v", k, grad.Shape(), x.Shape())

		data := x.Data()
		for i := range data {
			orig := data[i]
			data[i] = orig + h
			plus := f(inputs).Item()
			data[i] = orig - h
			minus := f(inputs).Item()
			data[i] = orig

			numeric := (plus - minus) / (2 * h)
			assert.InDeltaf(t, numeric, grad.AsFloat64()[i], 1e-5, "input %d element %d", k, i)
		}
	}
}

func TestGradients(t *testing.T) {
	tests := []struct {
		name   string
		shapes []tensor.Shape
		pos    bool // inputs must be positive
		f      func(in []tensor64) tensor64
	}{
		{"add broadcast", []tensor.Shape{{2, 3}, {3}}, false, func(in []tensor64) tensor64 {
			return in[0].Add(in[1]).Square().Sum()
		}},
		{"sub broadcast", []tensor.Shape{{2, 1}, {2, 3}}, false, func(in []tensor64) tensor64 {
			return in[0].Sub(in[1]).Square().Sum()
		}},
		{"mul", []tensor.Shape{{2, 3}, {2, 3}}, false, func(in []tensor64) tensor64 {
			return in[0].Mul(in[1]).Sum()
		}},
		{"div", []tensor.Shape{{3}, {3}}, true, func(in []tensor64) tensor64 {
			return in[0].Div(in[1]).Sum()
		}},
		{"scalar ops", []tensor.Shape{{4}}, false, func(in []tensor64) tensor64 {
			return in[0].MulScalar(3).AddScalar(-1).Square().Sum()
		}},
		{"exp", []tensor.Shape{{4}}, false, func(in []tensor64) tensor64 {
			return in[0].Exp().Sum()
		}},
		{"log", []tensor.Shape{{4}}, true, func(in []tensor64) tensor64 {
			return in[0].Log().Sum()
		}},
		{"log1p", []tensor.Shape{{4}}, true, func(in []tensor64) tensor64 {
			return in[0].Log1p().Sum()
		}},
		{"sqrt", []tensor.Shape{{4}}, true, func(in []tensor64) tensor64 {
			return in[0].Sqrt().Sum()
		}},
		{"softplus", []tensor.Shape{{5}}, false, func(in []tensor64) tensor64 {
			return in[0].Softplus().Square().Sum()
		}},
		{"sigmoid", []tensor.Shape{{5}}, false, func(in []tensor64) tensor64 {
			return in[0].Sigmoid().Square().Sum()
		}},
		{"reshape", []tensor.Shape{{6}, {2, 3}}, false, func(in []tensor64) tensor64 {
			return in[0].Reshape(2, 3).Mul(in[1]).Sum()
		}},
		{"transpose", []tensor.Shape{{2, 3, 4}, {4, 2, 3}}, false, func(in []tensor64) tensor64 {
			return in[0].Transpose(2, 0, 1).Mul(in[1]).Sum()
		}},
		{"matmul", []tensor.Shape{{2, 3}, {3, 4}, {2, 4}}, false, func(in []tensor64) tensor64 {
			return in[0].MatMul(in[1]).Mul(in[2]).Sum()
		}},
		{"conv2d", []tensor.Shape{{2, 2, 5, 5}, {3, 2, 3, 3}, {2, 3, 2, 2}}, false, func(in []tensor64) tensor64 {
			opts := tensor.Conv2DOptions{Stride: 2, Padding: 1, Dilation: 2}
			return in[0].Conv2D(in[1], opts).Mul(in[2]).Sum()
		}},
		{"shared input", []tensor.Shape{{3}}, false, func(in []tensor64) tensor64 {
			return in[0].Mul(in[0]).Add(in[0]).Sum()
		}},
	}

	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := autodiff.New(cpu.New())
			rng := rand.New(rand.NewPCG(uint64(i), 99))

			inputs := make([]tensor64, len(tt.shapes))
			for k, shape := range tt.shapes {
				if tt.pos {
					inputs[k] = positiveTensor(t, rng, shape, backend)
				} else {
					inputs[k] = randomTensor(t, rng, shape, backend)
				}
			}
			checkGradients(t, tt.f, inputs, backend)
		})
	}
}

func TestGradientTape_Recording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	tape := backend.Tape()
	x := tensor.Ones[float32](tensor.Shape{2}, backend)

	assert.False(t, tape.IsRecording())
	x.Add(x)
	assert.Equal(t, 0, tape.NumOps())

	tape.StartRecording()
	x.Add(x).Exp()
	assert.Equal(t, 2, tape.NumOps())

	tape.Clear()
	assert.Equal(t, 0, tape.NumOps())
	assert.True(t, tape.IsRecording())
}

func TestBackward_DoesNotRecordGradientOps(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x, err := tensor.FromSlice([]float32{2}, tensor.Shape{1}, backend)
	require.NoError(t, err)
	y := x.Mul(x).Sum()
	before := backend.Tape().NumOps()

	grads := autodiff.Backward(y, backend)
	assert.Equal(t, before, backend.Tape().NumOps())
	assert.True(t, backend.Tape().IsRecording())
	assert.InDelta(t, 4.0, float64(grads[x.Raw()].AsFloat32()[0]), 1e-6)
}

func TestBackward_PanicsWithoutRecording(t *testing.T) {
	backend := autodiff.New(cpu.New())
	x := tensor.Ones[float32](tensor.Shape{2}, backend)
	y := x.Sum()
	assert.Panics(t, func() { autodiff.Backward(y, backend) })
}

func TestBackward_UnrelatedTensorHasNoGradient(t *testing.T) {
	backend := autodiff.New(cpu.New())
	backend.Tape().StartRecording()

	x := tensor.Ones[float32](tensor.Shape{2}, backend)
	unused := tensor.Ones[float32](tensor.Shape{2}, backend)
	_ = unused.Exp()
	y := x.Sum()

	grads := autodiff.Backward(y, backend)
	_, ok := grads[unused.Raw()]
	assert.False(t, ok)
	assert.Equal(t, []float32{1, 1}, grads[x.Raw()].AsFloat32())
}

func TestAutodiffBackend_Metadata(t *testing.T) {
	inner := cpu.New()
	backend := autodiff.New(inner)
	assert.Equal(t, "Autodiff(CPU)", backend.Name())
	assert.Equal(t, tensor.CPU, backend.Device())
	assert.Same(t, inner, backend.Inner())
	assert.Same(t, backend.Tape(), backend.GetTape())
}
