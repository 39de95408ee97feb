package nn

import (
	"fmt"

	"github.com/born-ml/bayes/internal/random"
	"github.com/born-ml/bayes/internal/tensor"
)

// BayesLinearConfig configures a BayesLinear layer.
type BayesLinearConfig struct {
	InFeatures  int
	OutFeatures int
	UseBias     bool

	Prior         Gaussian
	PosteriorInit PosteriorInit
}

// DefaultBayesLinearConfig returns a configuration with a bias, the
// N(0, 0.1²) prior and the default posterior init.
func DefaultBayesLinearConfig(inFeatures, outFeatures int) BayesLinearConfig {
	return BayesLinearConfig{
		InFeatures:    inFeatures,
		OutFeatures:   outFeatures,
		UseBias:       true,
		Prior:         DefaultPrior(),
		PosteriorInit: DefaultPosteriorInit(),
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c BayesLinearConfig) Validate() error {
	if c.InFeatures <= 0 || c.OutFeatures <= 0 {
		return fmt.Errorf("%w: features must be positive, got in=%d out=%d", ErrInvalidConfig, c.InFeatures, c.OutFeatures)
	}
	return validatePriorAndInit(c.Prior, c.PosteriorInit)
}

// BayesLinear is a fully connected layer with Gaussian weights, sampled with
// the local reparameterization trick:
//
//	actMu  = x @ weight_mu^T + bias_mu
//	actVar = x² @ (softplus(weight_rho)²)^T + softplus(bias_rho)² + 1e-16
//	output = actMu + sqrt(actVar) ⊙ eps,  eps ~ N(0, 1)
//
// Input shape:  [batch, in_features]
// Weight shape: [out_features, in_features]
// Output shape: [batch, out_features]
type BayesLinear[B tensor.Backend] struct {
	variational[B]

	inFeatures  int
	outFeatures int
}

// NewBayesLinear creates a Bayesian fully connected layer on backend's device.
// A nil gen is replaced by an entropy-seeded generator.
func NewBayesLinear[B tensor.Backend](cfg BayesLinearConfig, backend B, gen *random.Generator) (*BayesLinear[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bayes linear: %w", err)
	}

	weightShape := tensor.Shape{cfg.OutFeatures, cfg.InFeatures}
	biasShape := tensor.Shape{cfg.OutFeatures}

	return &BayesLinear[B]{
		variational: newVariational(weightShape, biasShape, cfg.UseBias, cfg.Prior, cfg.PosteriorInit, gen, backend),
		inFeatures:  cfg.InFeatures,
		outFeatures: cfg.OutFeatures,
	}, nil
}

// Forward samples the layer output for input [batch, in_features].
func (l *BayesLinear[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 2 || shape[1] != l.inFeatures {
		panic(fmt.Sprintf("bayes linear: expected input [batch, %d], got %v", l.inFeatures, shape))
	}

	actMu := input.MatMul(l.weightMu.Tensor().Transpose())
	if l.biasMu != nil {
		actMu = actMu.Add(l.biasMu.Tensor())
	}

	return l.sample(actMu, func() *tensor.Tensor[float32, B] {
		wVar := l.WeightStd().Square()
		actVar := input.Square().MatMul(wVar.Transpose())
		if l.biasRho != nil {
			actVar = actVar.Add(l.BiasStd().Square())
		}
		return actVar
	})
}

// InFeatures returns the input feature count.
func (l *BayesLinear[B]) InFeatures() int {
	return l.inFeatures
}

// OutFeatures returns the output feature count.
func (l *BayesLinear[B]) OutFeatures() int {
	return l.outFeatures
}

// String returns a string representation of the layer.
func (l *BayesLinear[B]) String() string {
	return fmt.Sprintf("BayesLinear(in_features=%d, out_features=%d, bias=%v)", l.inFeatures, l.outFeatures, l.UseBias())
}
