package nn

import (
	"github.com/born-ml/bayes/internal/tensor"
)

// Parameter represents a trainable parameter in a neural network.
//
// Bayesian layers never change their parameters; an external optimizer reads
// Grad and updates Tensor in place.
//
// Example:
//
//	mu := nn.NewParameter("weight_mu", weightTensor)
//	grad := mu.Grad() // nil until AttachGrads runs
type Parameter[B tensor.Backend] struct {
	name   string                     // Parameter name (e.g., "weight_mu", "bias_rho")
	tensor *tensor.Tensor[float32, B] // The parameter tensor
	grad   *tensor.Tensor[float32, B] // Gradient tensor (set after a backward pass)
}

// NewParameter creates a new trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{
		name:   name,
		tensor: t,
	}
}

// Name returns the parameter name.
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor.
//
// Returns nil if no gradient has been attached yet.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient tensor.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// AttachGrads copies the gradients of a backward pass onto the parameters'
// gradient slots.
//
// grads is the map returned by autodiff.Backward. Parameters that did not
// take part in the computation get a nil gradient.
//
// Example:
//
//	loss := layer.KLDivergence()
//	grads := autodiff.Backward(loss, backend)
//	nn.AttachGrads(layer.Parameters(), grads)
func AttachGrads[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range params {
		raw, ok := grads[p.tensor.Raw()]
		if !ok {
			p.grad = nil
			continue
		}
		p.grad = tensor.New[float32, B](raw, p.tensor.Backend())
	}
}
