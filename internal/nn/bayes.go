package nn

import (
	"fmt"

	"github.com/born-ml/bayes/internal/random"
	"github.com/born-ml/bayes/internal/tensor"
)

// varianceEpsilon keeps the activation variance strictly positive before sqrt.
const varianceEpsilon = 1e-16

// variational holds the mean-field Gaussian posterior shared by the Bayesian
// layers: a mean and a pre-softplus scale (rho) per weight and per bias.
//
// std = softplus(rho) = log(1 + exp(rho)), which is positive for every finite rho.
type variational[B tensor.Backend] struct {
	weightMu  *Parameter[B]
	weightRho *Parameter[B]
	biasMu    *Parameter[B] // nil without bias
	biasRho   *Parameter[B] // nil without bias

	prior   Gaussian
	mode    Mode
	gen     *random.Generator
	backend B
}

func newVariational[B tensor.Backend](
	weightShape tensor.Shape,
	biasShape tensor.Shape,
	useBias bool,
	prior Gaussian,
	init PosteriorInit,
	gen *random.Generator,
	backend B,
) variational[B] {
	if gen == nil {
		gen = random.NewFromEntropy()
	}

	v := variational[B]{
		weightMu:  NewParameter("weight_mu", Normal(gen, weightShape, init.Mu.Mean, init.Mu.Std, backend)),
		weightRho: NewParameter("weight_rho", Normal(gen, weightShape, init.Rho.Mean, init.Rho.Std, backend)),
		prior:     prior,
		mode:      Sample,
		gen:       gen,
		backend:   backend,
	}
	if useBias {
		v.biasMu = NewParameter("bias_mu", Normal(gen, biasShape, init.Mu.Mean, init.Mu.Std, backend))
		v.biasRho = NewParameter("bias_rho", Normal(gen, biasShape, init.Rho.Mean, init.Rho.Std, backend))
	}
	return v
}

// WeightMu returns the weight mean parameter.
func (v *variational[B]) WeightMu() *Parameter[B] { return v.weightMu }

// WeightRho returns the weight pre-softplus scale parameter.
func (v *variational[B]) WeightRho() *Parameter[B] { return v.weightRho }

// BiasMu returns the bias mean parameter, or nil without bias.
func (v *variational[B]) BiasMu() *Parameter[B] { return v.biasMu }

// BiasRho returns the bias pre-softplus scale parameter, or nil without bias.
func (v *variational[B]) BiasRho() *Parameter[B] { return v.biasRho }

// UseBias reports whether the layer models a bias.
func (v *variational[B]) UseBias() bool { return v.biasMu != nil }

// Prior returns the weight prior.
func (v *variational[B]) Prior() Gaussian { return v.prior }

// WeightStd returns softplus(weight_rho).
func (v *variational[B]) WeightStd() *tensor.Tensor[float32, B] {
	return v.weightRho.Tensor().Softplus()
}

// BiasStd returns softplus(bias_rho), or nil without bias.
func (v *variational[B]) BiasStd() *tensor.Tensor[float32, B] {
	if v.biasRho == nil {
		return nil
	}
	return v.biasRho.Tensor().Softplus()
}

// Mode returns the current forward mode.
func (v *variational[B]) Mode() Mode { return v.mode }

// SetMode switches between sampling and mean-only forward passes.
func (v *variational[B]) SetMode(mode Mode) { v.mode = mode }

// Generator returns the generator used for forward noise.
func (v *variational[B]) Generator() *random.Generator { return v.gen }

// SetGenerator replaces the generator used for forward noise.
func (v *variational[B]) SetGenerator(gen *random.Generator) {
	if gen == nil {
		panic("SetGenerator: nil generator")
	}
	v.gen = gen
}

// Parameters returns [weight_mu, weight_rho] followed by [bias_mu, bias_rho]
// when the layer has a bias.
func (v *variational[B]) Parameters() []*Parameter[B] {
	if v.biasMu == nil {
		return []*Parameter[B]{v.weightMu, v.weightRho}
	}
	return []*Parameter[B]{v.weightMu, v.weightRho, v.biasMu, v.biasRho}
}

// KLDivergence returns the KL divergence between the posterior and the prior,
// summed over all weight entries and, when present, all bias entries.
//
// The standard deviations are recomputed from rho on every call.
func (v *variational[B]) KLDivergence() *tensor.Tensor[float32, B] {
	kl := GaussianKL(v.prior.Mean, v.prior.Std, v.weightMu.Tensor(), v.WeightStd())
	if v.biasMu != nil {
		kl = kl.Add(GaussianKL(v.prior.Mean, v.prior.Std, v.biasMu.Tensor(), v.BiasStd()))
	}
	return kl
}

// StateDict returns the parameters keyed by name.
func (v *variational[B]) StateDict() map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor, 4)
	for _, p := range v.Parameters() {
		state[p.Name()] = p.Tensor().Raw()
	}
	return state
}

// LoadStateDict copies values from state into the parameters.
//
// Every parameter must be present with a matching shape; extra keys are ignored.
// Nothing is copied unless all parameters validate.
func (v *variational[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	params := v.Parameters()
	for _, p := range params {
		src, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("%w: %s", ErrMissingParameter, p.Name())
		}
		if !src.Shape().Equal(p.Tensor().Shape()) {
			return fmt.Errorf("%w: %s: expected %v, got %v", ErrShapeMismatch, p.Name(), p.Tensor().Shape(), src.Shape())
		}
		if src.DType() != tensor.Float32 {
			return fmt.Errorf("%w: %s: expected float32, got %s", ErrShapeMismatch, p.Name(), src.DType())
		}
	}
	for _, p := range params {
		if err := p.Tensor().Raw().CopyFrom(state[p.Name()]); err != nil {
			return fmt.Errorf("load %s: %w", p.Name(), err)
		}
	}
	return nil
}

// sample applies the local reparameterization trick: it returns
// actMu + sqrt(actVar + ε) ⊙ eps with eps ~ N(0, 1) drawn fresh on the
// layer's device. In MeanOnly mode it returns actMu and actVar is never
// evaluated.
func (v *variational[B]) sample(actMu *tensor.Tensor[float32, B], actVar func() *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if v.mode == MeanOnly {
		return actMu
	}
	actStd := actVar().AddScalar(varianceEpsilon).Sqrt()
	eps := random.StandardNormal[float32](v.gen, actMu.Shape(), v.backend)
	return actMu.Add(actStd.Mul(eps))
}

func validatePriorAndInit(prior Gaussian, init PosteriorInit) error {
	if err := prior.Validate(); err != nil {
		return fmt.Errorf("%w: prior: %w", ErrInvalidConfig, err)
	}
	if err := init.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}
