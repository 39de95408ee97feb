package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/bayes/internal/backend/cpu"
	"github.com/born-ml/bayes/internal/random"
	"github.com/born-ml/bayes/internal/tensor"
)

type cpuModel = Sequential[*cpu.CPUBackend]

// newCNN builds BayesConv2D(1→2, k3, pad 1) → Softplus → Flatten → BayesLinear(2*4*4→3).
func newCNN(t *testing.T, seed uint64) (*cpuModel, *BayesConv2D[*cpu.CPUBackend], *BayesLinear[*cpu.CPUBackend]) {
	t.Helper()
	backend := cpu.New()
	gen := random.New(seed)

	convCfg := DefaultBayesConv2DConfig(1, 2, 3)
	convCfg.Padding = 1
	conv, err := NewBayesConv2D(convCfg, backend, gen)
	require.NoError(t, err)

	fc, err := NewBayesLinear(DefaultBayesLinearConfig(2*4*4, 3), backend, gen)
	require.NoError(t, err)

	model := NewSequential[*cpu.CPUBackend](conv, NewSoftplus[*cpu.CPUBackend](), NewFlatten[*cpu.CPUBackend]())
	model.Add(fc)
	return model, conv, fc
}

func TestSequential_Forward(t *testing.T) {
	model, _, _ := newCNN(t, 1)
	require.Equal(t, 4, model.Len())

	input := random.StandardNormal[float32](random.New(2), tensor.Shape{5, 1, 4, 4}, cpu.New())
	out := model.Forward(input)
	assert.Equal(t, tensor.Shape{5, 3}, out.Shape())

	assert.IsType(t, &Softplus[*cpu.CPUBackend]{}, model.Module(1))
	assert.Panics(t, func() { model.Module(4) })
}

func TestSequential_KLDivergenceSumsChildren(t *testing.T) {
	model, conv, fc := newCNN(t, 3)

	want := conv.KLDivergence().Item() + fc.KLDivergence().Item()
	assert.InEpsilon(t, want, model.KLDivergence().Item(), 1e-6)

	plain := NewSequential[*cpu.CPUBackend](NewSoftplus[*cpu.CPUBackend]())
	assert.Nil(t, plain.KLDivergence())
}

func TestSequential_Parameters(t *testing.T) {
	model, conv, fc := newCNN(t, 4)

	params := model.Parameters()
	assert.Len(t, params, 8)
	assert.Same(t, conv.WeightMu(), params[0])
	assert.Same(t, fc.BiasRho(), params[7])

	want := 2*(2*1*3*3) + 2*2 + 2*(3*32) + 2*3
	assert.Equal(t, want, CountParameters[*cpu.CPUBackend](model))
}

func TestSequential_SetMode(t *testing.T) {
	model, conv, fc := newCNN(t, 5)
	model.SetMode(MeanOnly)
	assert.Equal(t, MeanOnly, conv.Mode())
	assert.Equal(t, MeanOnly, fc.Mode())

	input := random.StandardNormal[float32](random.New(6), tensor.Shape{2, 1, 4, 4}, cpu.New())
	assert.Equal(t, model.Forward(input).Data(), model.Forward(input).Data())
}

func TestSequential_StateDict(t *testing.T) {
	src, _, _ := newCNN(t, 7)
	dst, _, _ := newCNN(t, 8)

	state := src.StateDict()
	assert.Len(t, state, 8)
	assert.Contains(t, state, "0.weight_mu")
	assert.Contains(t, state, "3.bias_rho")

	require.NoError(t, dst.LoadStateDict(state))
	src.SetMode(MeanOnly)
	dst.SetMode(MeanOnly)
	input := random.StandardNormal[float32](random.New(9), tensor.Shape{1, 1, 4, 4}, cpu.New())
	assert.Equal(t, src.Forward(input).Data(), dst.Forward(input).Data())

	delete(state, "3.weight_rho")
	err := dst.LoadStateDict(state)
	assert.ErrorIs(t, err, ErrMissingParameter)
	assert.Contains(t, err.Error(), "module 3")
}

func TestFlatten(t *testing.T) {
	flatten := NewFlatten[*cpu.CPUBackend]()
	out := flatten.Forward(tensor.Zeros[float32](tensor.Shape{2, 3, 4, 5}, cpu.New()))
	assert.Equal(t, tensor.Shape{2, 60}, out.Shape())
	assert.Nil(t, flatten.Parameters())
}

func TestSoftplusModule(t *testing.T) {
	backend := cpu.New()
	input, err := tensor.FromSlice([]float32{-50, 0, 50}, tensor.Shape{3}, backend)
	require.NoError(t, err)

	out := NewSoftplus[*cpu.CPUBackend]().Forward(input).Data()
	assert.Greater(t, out[0], float32(0))
	assert.InDelta(t, 0.6931472, out[1], 1e-6)
	assert.InDelta(t, 50, out[2], 1e-5)
}
