package nn

import (
	"github.com/born-ml/bayes/internal/random"
	"github.com/born-ml/bayes/internal/tensor"
)

// Normal creates a tensor with values drawn from N(mean, std²) using gen.
//
// Example:
//
//	mu := nn.Normal(gen, tensor.Shape{8, 3, 3, 3}, 0, 0.1, backend)
func Normal[B tensor.Backend](gen *random.Generator, shape tensor.Shape, mean, std float64, backend B) *tensor.Tensor[float32, B] {
	return random.Normal[float32](gen, shape, mean, std, backend)
}
