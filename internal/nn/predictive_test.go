package nn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/bayes/internal/backend/cpu"
	"github.com/born-ml/bayes/internal/random"
	"github.com/born-ml/bayes/internal/tensor"
)

func TestPredictive_InvalidSamples(t *testing.T) {
	conv := newConv(t, DefaultBayesConv2DConfig(1, 1, 1), 1)
	input := tensor.Ones[float32](tensor.Shape{1, 1, 2, 2}, cpu.New())

	for _, n := range []int{-1, 0, 1} {
		_, _, err := Predictive[*cpu.CPUBackend](conv, input, n)
		assert.ErrorIs(t, err, ErrInvalidSamples)
	}
}

func TestPredictive_MeanOnlyHasZeroSpread(t *testing.T) {
	conv := newConv(t, DefaultBayesConv2DConfig(2, 3, 3), 2)
	conv.SetMode(MeanOnly)
	input := random.StandardNormal[float32](random.New(3), tensor.Shape{1, 2, 5, 5}, cpu.New())

	mean, std, err := Predictive[*cpu.CPUBackend](conv, input, 4)
	require.NoError(t, err)

	assert.Equal(t, tensor.Shape{1, 3, 3, 3}, mean.Shape())
	assert.InDeltaSlice(t, conv.Forward(input).Data(), mean.Data(), 1e-6)
	for _, v := range std.Data() {
		assert.Zero(t, v)
	}
}

func TestPredictive_SampleSpreadIsPositive(t *testing.T) {
	conv := newConv(t, DefaultBayesConv2DConfig(1, 2, 2), 4)
	input := tensor.Ones[float32](tensor.Shape{1, 1, 3, 3}, cpu.New())

	_, std, err := Predictive[*cpu.CPUBackend](conv, input, 50)
	require.NoError(t, err)
	for _, v := range std.Data() {
		assert.Positive(t, v)
	}
}
