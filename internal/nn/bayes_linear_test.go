package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/bayes/internal/backend/cpu"
	"github.com/born-ml/bayes/internal/random"
	"github.com/born-ml/bayes/internal/tensor"
)

func TestBayesLinear_Creation(t *testing.T) {
	fc, err := NewBayesLinear(DefaultBayesLinearConfig(4, 3), cpu.New(), random.New(1))
	require.NoError(t, err)

	assert.Equal(t, 4, fc.InFeatures())
	assert.Equal(t, 3, fc.OutFeatures())
	assert.Equal(t, tensor.Shape{3, 4}, fc.WeightMu().Tensor().Shape())
	assert.Equal(t, tensor.Shape{3, 4}, fc.WeightRho().Tensor().Shape())
	assert.Equal(t, tensor.Shape{3}, fc.BiasMu().Tensor().Shape())
	assert.Len(t, fc.Parameters(), 4)
	assert.Equal(t, "BayesLinear(in_features=4, out_features=3, bias=true)", fc.String())
}

func TestBayesLinear_MeanOnlyKnownValues(t *testing.T) {
	backend := cpu.New()
	fc, err := NewBayesLinear(DefaultBayesLinearConfig(2, 2), backend, random.New(2))
	require.NoError(t, err)
	copy(fc.WeightMu().Tensor().Data(), []float32{1, 2, 3, 4})
	copy(fc.BiasMu().Tensor().Data(), []float32{0.5, -0.5})
	fc.SetMode(MeanOnly)

	input, err := tensor.FromSlice([]float32{1, 1, 2, 0}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	out := fc.Forward(input)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{3.5, 6.5, 2.5, 5.5}, out.Data())
}

func TestBayesLinear_SampleMoments(t *testing.T) {
	backend := cpu.New()
	fc, err := NewBayesLinear(DefaultBayesLinearConfig(3, 2), backend, random.New(3))
	require.NoError(t, err)
	input := random.StandardNormal[float32](random.New(4), tensor.Shape{2, 3}, backend)

	mean, std, err := Predictive[*cpu.CPUBackend](fc, input, 10000)
	require.NoError(t, err)

	fc.SetMode(MeanOnly)
	actMu := fc.Forward(input)
	actStd := input.Square().MatMul(fc.WeightStd().Square().Transpose()).Add(fc.BiasStd().Square()).Sqrt()

	for i := range actMu.Data() {
		assert.InDelta(t, actMu.Data()[i], mean.Data()[i], 0.01)
		assert.InEpsilon(t, actStd.Data()[i], std.Data()[i], 0.05)
	}
}

func TestBayesLinear_KLZeroAtPrior(t *testing.T) {
	fc, err := NewBayesLinear(DefaultBayesLinearConfig(5, 4), cpu.New(), random.New(5))
	require.NoError(t, err)
	fill(fc.WeightMu(), 0)
	fill(fc.BiasMu(), 0)
	fill(fc.WeightRho(), priorRho)
	fill(fc.BiasRho(), priorRho)

	assert.InDelta(t, 0.0, float64(fc.KLDivergence().Item()), 1e-4)
}

func TestBayesLinear_NoBias(t *testing.T) {
	cfg := DefaultBayesLinearConfig(3, 2)
	cfg.UseBias = false
	fc, err := NewBayesLinear(cfg, cpu.New(), random.New(6))
	require.NoError(t, err)

	assert.Len(t, fc.Parameters(), 2)
	out := fc.Forward(tensor.Ones[float32](tensor.Shape{4, 3}, cpu.New()))
	assert.Equal(t, tensor.Shape{4, 2}, out.Shape())
}

func TestBayesLinear_InvalidInput(t *testing.T) {
	fc, err := NewBayesLinear(DefaultBayesLinearConfig(3, 2), cpu.New(), random.New(7))
	require.NoError(t, err)

	assert.Panics(t, func() { fc.Forward(tensor.Zeros[float32](tensor.Shape{2, 4}, cpu.New())) })
	assert.Panics(t, func() { fc.Forward(tensor.Zeros[float32](tensor.Shape{3}, cpu.New())) })
}

func TestBayesLinear_InvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  BayesLinearConfig
	}{
		{"zero in", DefaultBayesLinearConfig(0, 2)},
		{"zero out", DefaultBayesLinearConfig(2, 0)},
		{"bad prior", BayesLinearConfig{InFeatures: 2, OutFeatures: 2, PosteriorInit: DefaultPosteriorInit()}},
		{"bad init", BayesLinearConfig{InFeatures: 2, OutFeatures: 2, Prior: DefaultPrior()}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewBayesLinear(tt.cfg, cpu.New(), random.New(1))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}
