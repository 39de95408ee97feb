package nn

import (
	"fmt"

	"gonum.org/v1/gonum/stat"

	"github.com/born-ml/bayes/internal/tensor"
)

// Predictive runs samples stochastic forward passes of module on input and
// returns the elementwise Monte-Carlo mean and standard deviation of the
// outputs. The standard deviation is the unbiased sample estimate.
//
// samples must be at least 2.
func Predictive[B tensor.Backend](module Module[B], input *tensor.Tensor[float32, B], samples int) (mean, std *tensor.Tensor[float32, B], err error) {
	if samples < 2 {
		return nil, nil, fmt.Errorf("%w: need at least 2 samples, got %d", ErrInvalidSamples, samples)
	}

	var shape tensor.Shape
	var draws [][]float64 // [element][sample]
	for s := range samples {
		output := module.Forward(input)
		if s == 0 {
			shape = output.Shape().Clone()
			draws = make([][]float64, output.NumElements())
			for i := range draws {
				draws[i] = make([]float64, samples)
			}
		}
		for i, v := range output.Data() {
			draws[i][s] = float64(v)
		}
	}

	backend := input.Backend()
	mean = tensor.Zeros[float32](shape, backend)
	std = tensor.Zeros[float32](shape, backend)
	meanData, stdData := mean.Data(), std.Data()
	for i, column := range draws {
		m, sd := stat.MeanStdDev(column, nil)
		meanData[i] = float32(m)
		stdData[i] = float32(sd)
	}
	return mean, std, nil
}

// CountParameters returns the number of scalar values held by module's
// trainable parameters.
func CountParameters[B tensor.Backend](module Module[B]) int {
	total := 0
	for _, p := range module.Parameters() {
		total += p.Tensor().NumElements()
	}
	return total
}
