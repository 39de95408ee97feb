// Package nn implements the Bayesian neural network modules.
//
// This package provides:
//   - Module, Stateful and Bayesian capability interfaces
//   - Parameter: trainable tensors with a gradient slot
//   - BayesConv2D and BayesLinear: mean-field Gaussian layers sampled with
//     the local reparameterization trick
//   - Sequential, Softplus and Flatten for composing small networks
//   - GaussianKL and Predictive for the variational objective and
//     Monte-Carlo prediction
//
// Design inspired by PyTorch's nn.Module but adapted for Go generics.
package nn

import (
	"github.com/born-ml/bayes/internal/tensor"
)

// Module is the base interface for all neural network components.
//
// Every NN module must implement:
//   - Forward: Compute output from input
//   - Parameters: Return all trainable parameters
//
// Type parameter B must satisfy the tensor.Backend interface.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns all trainable parameters of this module.
	//
	// Returns an empty slice for modules without trainable parameters
	// (e.g., activation functions).
	Parameters() []*Parameter[B]
}

// Stateful is implemented by modules that can export and restore their
// parameters by name.
//
// The map holds the parameters' own raw tensors, not copies.
type Stateful interface {
	StateDict() map[string]*tensor.RawTensor
	LoadStateDict(state map[string]*tensor.RawTensor) error
}

// Bayesian is implemented by modules whose parameters define a posterior
// distribution over weights.
type Bayesian[B tensor.Backend] interface {
	Module[B]

	// KLDivergence returns the scalar KL divergence between the module's
	// posterior and its prior. The result is differentiable when B records
	// operations.
	KLDivergence() *tensor.Tensor[float32, B]
}

// Moded is implemented by modules whose forward pass can switch between
// sampling and returning the mean activation.
type Moded interface {
	Mode() Mode
	SetMode(mode Mode)
}

// Mode selects how a Bayesian layer produces its output.
type Mode int

const (
	// Sample draws fresh noise on every forward call.
	Sample Mode = iota
	// MeanOnly returns the mean activation without noise.
	MeanOnly
)

// String returns the mode name.
func (m Mode) String() string {
	switch m {
	case Sample:
		return "sample"
	case MeanOnly:
		return "mean"
	default:
		return "unknown"
	}
}
