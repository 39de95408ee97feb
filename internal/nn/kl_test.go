package nn

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/bayes/internal/backend/cpu"
	"github.com/born-ml/bayes/internal/tensor"
)

func TestGaussianKL(t *testing.T) {
	backend := cpu.New()
	tests := []struct {
		name      string
		priorMean float64
		priorStd  float64
		mu, sigma []float32
		want      float64
	}{
		{"equal to prior", 0, 0.1, []float32{0, 0}, []float32{0.1, 0.1}, 0},
		{"wider posterior", 0, 0.1, []float32{0.1}, []float32{0.2}, math.Log(0.5) + (0.04+0.01)/0.02 - 0.5},
		{"shifted prior", 1, 2, []float32{1}, []float32{1}, math.Log(2) + 1.0/8 - 0.5},
		{
			"sum over elements", 0, 1,
			[]float32{1, -1}, []float32{1, 1},
			2 * (0 + 1.0/2),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			shape := tensor.Shape{len(tt.mu)}
			mu, err := tensor.FromSlice(tt.mu, shape, backend)
			require.NoError(t, err)
			sigma, err := tensor.FromSlice(tt.sigma, shape, backend)
			require.NoError(t, err)

			kl := GaussianKL(tt.priorMean, tt.priorStd, mu, sigma)
			assert.InDelta(t, tt.want, float64(kl.Item()), 1e-5)
		})
	}
}

func TestGaussianKL_NonNegative(t *testing.T) {
	backend := cpu.New()
	mu, err := tensor.FromSlice([]float32{-0.3, 0, 0.05, 0.2}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)
	sigma, err := tensor.FromSlice([]float32{0.01, 0.049, 0.1, 0.5}, tensor.Shape{2, 2}, backend)
	require.NoError(t, err)

	assert.Positive(t, GaussianKL(0, 0.1, mu, sigma).Item())
}

func TestGaussianKL_ShapeMismatch(t *testing.T) {
	backend := cpu.New()
	mu := tensor.Zeros[float32](tensor.Shape{2}, backend)
	sigma := tensor.Ones[float32](tensor.Shape{3}, backend)
	assert.Panics(t, func() { GaussianKL(0, 0.1, mu, sigma) })
}

func TestGaussian_Validate(t *testing.T) {
	assert.NoError(t, DefaultPrior().Validate())
	assert.NoError(t, DefaultPosteriorInit().Validate())

	assert.Error(t, Gaussian{Mean: 0, Std: 0}.Validate())
	assert.Error(t, Gaussian{Mean: 0, Std: math.Inf(1)}.Validate())
	assert.Error(t, Gaussian{Mean: math.NaN(), Std: 1}.Validate())
	assert.Error(t, PosteriorInit{Mu: DefaultPrior()}.Validate())
}

func TestMode_String(t *testing.T) {
	assert.Equal(t, "sample", Sample.String())
	assert.Equal(t, "mean", MeanOnly.String())
	assert.Equal(t, "unknown", Mode(7).String())
}
