package nn

import (
	"fmt"

	"github.com/born-ml/bayes/internal/tensor"
)

// Softplus is a softplus activation module.
//
// Applies the element-wise function: f(x) = log(1 + exp(x))
//
// Example:
//
//	act := nn.NewSoftplus[Backend]()
//	output := act.Forward(input) // all values > 0
type Softplus[B tensor.Backend] struct{}

// NewSoftplus creates a new Softplus activation module.
func NewSoftplus[B tensor.Backend]() *Softplus[B] {
	return &Softplus[B]{}
}

// Forward applies softplus.
func (s *Softplus[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Softplus()
}

// Parameters returns an empty slice (Softplus has no trainable parameters).
func (s *Softplus[B]) Parameters() []*Parameter[B] {
	return nil
}

// Flatten reshapes [batch, d1, d2, ...] into [batch, d1*d2*...].
type Flatten[B tensor.Backend] struct{}

// NewFlatten creates a new Flatten module.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return &Flatten[B]{}
}

// Forward flattens all dimensions after the first.
func (f *Flatten[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) < 1 {
		panic(fmt.Sprintf("flatten: expected at least 1D input, got %v", shape))
	}
	batch := shape[0]
	features := 1
	for _, d := range shape[1:] {
		features *= d
	}
	return input.Reshape(batch, features)
}

// Parameters returns an empty slice (Flatten has no trainable parameters).
func (f *Flatten[B]) Parameters() []*Parameter[B] {
	return nil
}
