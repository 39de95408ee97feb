// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides Bayesian neural network layers.
//
// BayesConv2D and BayesLinear keep a mean-field Gaussian posterior over their
// weights and sample pre-activations with the local reparameterization trick.
// Their KLDivergence against a fixed Gaussian prior is the complexity term of
// a variational objective.
//
// Example:
//
//	backend := cpu.New()
//	conv, err := nn.NewBayesConv2D(nn.DefaultBayesConv2DConfig(3, 8, 3), backend, random.New(42))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	out := conv.Forward(x)     // [N, 8, H-2, W-2], stochastic
//	kl := conv.KLDivergence()  // scalar
package nn

import (
	"github.com/born-ml/bayes/internal/nn"
	"github.com/born-ml/bayes/internal/random"
	"github.com/born-ml/bayes/internal/tensor"
)

// Module is the base interface for all neural network components.
type Module[B tensor.Backend] = nn.Module[B]

// Bayesian is a module with a posterior over its weights.
type Bayesian[B tensor.Backend] = nn.Bayesian[B]

// Stateful is a module that exports and restores named parameters.
type Stateful = nn.Stateful

// Moded is a module whose forward pass can be switched to the mean.
type Moded = nn.Moded

// Parameter is a trainable tensor with a gradient slot.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// Mode selects sampling or mean-only forward passes.
type Mode = nn.Mode

// Forward modes.
const (
	Sample   Mode = nn.Sample
	MeanOnly Mode = nn.MeanOnly
)

// Gaussian describes a normal distribution by mean and standard deviation.
type Gaussian = nn.Gaussian

// PosteriorInit holds the initial distributions of mu and rho.
type PosteriorInit = nn.PosteriorInit

// Errors returned by layer constructors and LoadStateDict.
var (
	ErrInvalidConfig    = nn.ErrInvalidConfig
	ErrMissingParameter = nn.ErrMissingParameter
	ErrShapeMismatch    = nn.ErrShapeMismatch
	ErrInvalidSamples   = nn.ErrInvalidSamples
)

// BayesConv2D is a Bayesian 2D convolution.
type BayesConv2D[B tensor.Backend] = nn.BayesConv2D[B]

// BayesConv2DConfig configures a BayesConv2D.
type BayesConv2DConfig = nn.BayesConv2DConfig

// BayesLinear is a Bayesian fully connected layer.
type BayesLinear[B tensor.Backend] = nn.BayesLinear[B]

// BayesLinearConfig configures a BayesLinear.
type BayesLinearConfig = nn.BayesLinearConfig

// Sequential chains modules and sums their KL divergences.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// Softplus is the log(1 + exp(x)) activation.
type Softplus[B tensor.Backend] = nn.Softplus[B]

// Flatten reshapes [batch, ...] to [batch, features].
type Flatten[B tensor.Backend] = nn.Flatten[B]

// DefaultPrior returns the N(0, 0.1²) weight prior.
func DefaultPrior() Gaussian {
	return nn.DefaultPrior()
}

// DefaultPosteriorInit returns mu ~ N(0, 0.1²), rho ~ N(-3, 0.1²).
func DefaultPosteriorInit() PosteriorInit {
	return nn.DefaultPosteriorInit()
}

// DefaultBayesConv2DConfig returns stride 1, padding 0, dilation 1 with a bias.
func DefaultBayesConv2DConfig(inChannels, outChannels, kernelSize int) BayesConv2DConfig {
	return nn.DefaultBayesConv2DConfig(inChannels, outChannels, kernelSize)
}

// NewBayesConv2D creates a Bayesian convolution. A nil gen means an
// entropy-seeded generator.
func NewBayesConv2D[B tensor.Backend](cfg BayesConv2DConfig, backend B, gen *random.Generator) (*BayesConv2D[B], error) {
	return nn.NewBayesConv2D(cfg, backend, gen)
}

// DefaultBayesLinearConfig returns a configuration with a bias.
func DefaultBayesLinearConfig(inFeatures, outFeatures int) BayesLinearConfig {
	return nn.DefaultBayesLinearConfig(inFeatures, outFeatures)
}

// NewBayesLinear creates a Bayesian fully connected layer.
func NewBayesLinear[B tensor.Backend](cfg BayesLinearConfig, backend B, gen *random.Generator) (*BayesLinear[B], error) {
	return nn.NewBayesLinear(cfg, backend, gen)
}

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// NewSoftplus creates a Softplus activation.
func NewSoftplus[B tensor.Backend]() *Softplus[B] {
	return nn.NewSoftplus[B]()
}

// NewFlatten creates a Flatten module.
func NewFlatten[B tensor.Backend]() *Flatten[B] {
	return nn.NewFlatten[B]()
}

// GaussianKL computes Σ KL(N(mu, sigma²) || N(priorMean, priorStd²)) as a scalar tensor.
func GaussianKL[B tensor.Backend](priorMean, priorStd float64, mu, sigma *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return nn.GaussianKL(priorMean, priorStd, mu, sigma)
}

// AttachGrads stores the gradients of a backward pass on the parameters.
func AttachGrads[B tensor.Backend](params []*Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) {
	nn.AttachGrads(params, grads)
}

// Predictive returns the Monte-Carlo mean and std of samples forward passes.
func Predictive[B tensor.Backend](module Module[B], input *tensor.Tensor[float32, B], samples int) (mean, std *tensor.Tensor[float32, B], err error) {
	return nn.Predictive(module, input, samples)
}

// CountParameters returns the number of scalar trainable values in module.
func CountParameters[B tensor.Backend](module Module[B]) int {
	return nn.CountParameters(module)
}
