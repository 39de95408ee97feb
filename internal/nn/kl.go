package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/bayes/internal/tensor"
)

// Gaussian describes a normal distribution by its mean and standard deviation.
type Gaussian struct {
	Mean float64
	Std  float64
}

// DefaultPrior returns the fixed weight prior N(0, 0.1²).
func DefaultPrior() Gaussian {
	return Gaussian{Mean: 0, Std: 0.1}
}

// Validate checks that the distribution is usable.
func (g Gaussian) Validate() error {
	if math.IsNaN(g.Mean) || math.IsInf(g.Mean, 0) {
		return fmt.Errorf("mean must be finite, got %v", g.Mean)
	}
	if !(g.Std > 0) || math.IsInf(g.Std, 0) {
		return fmt.Errorf("std must be positive and finite, got %v", g.Std)
	}
	return nil
}

// PosteriorInit holds the distributions the variational parameters are drawn
// from at construction.
type PosteriorInit struct {
	Mu  Gaussian // initial means
	Rho Gaussian // initial pre-softplus scales
}

// DefaultPosteriorInit returns mu ~ N(0, 0.1²) and rho ~ N(-3, 0.1²), which
// puts the initial posterior std near softplus(-3) ≈ 0.049.
func DefaultPosteriorInit() PosteriorInit {
	return PosteriorInit{
		Mu:  Gaussian{Mean: 0, Std: 0.1},
		Rho: Gaussian{Mean: -3, Std: 0.1},
	}
}

// Validate checks both initialisation distributions.
func (p PosteriorInit) Validate() error {
	if err := p.Mu.Validate(); err != nil {
		return fmt.Errorf("mu init: %w", err)
	}
	if err := p.Rho.Validate(); err != nil {
		return fmt.Errorf("rho init: %w", err)
	}
	return nil
}

// GaussianKL computes KL(q || p) summed over all elements, where
// q = N(mu, sigma²) elementwise and p = N(priorMean, priorStd²):
//
//	Σ log(σp/σq) + (σq² + (μq - μp)²) / (2σp²) - 0.5
//
// mu and sigma must have the same shape and sigma must be positive.
// Returns a scalar tensor built from differentiable tensor ops.
func GaussianKL[B tensor.Backend](priorMean, priorStd float64, mu, sigma *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !mu.Shape().Equal(sigma.Shape()) {
		panic(fmt.Sprintf("GaussianKL: mu shape %v != sigma shape %v", mu.Shape(), sigma.Shape()))
	}

	// log σp - log σq
	logRatio := sigma.Log().MulScalar(-1).AddScalar(float32(math.Log(priorStd)))

	// (σq² + (μq - μp)²) / (2σp²)
	diff := mu.AddScalar(float32(-priorMean))
	quad := sigma.Square().Add(diff.Square()).MulScalar(float32(1 / (2 * priorStd * priorStd)))

	return logRatio.Add(quad).AddScalar(-0.5).Sum()
}
