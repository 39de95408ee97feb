package nn

import (
	"fmt"

	"github.com/born-ml/bayes/internal/random"
	"github.com/born-ml/bayes/internal/tensor"
)

// BayesConv2DConfig configures a BayesConv2D layer.
type BayesConv2DConfig struct {
	InChannels  int
	OutChannels int
	KernelSize  int // square kernel side

	Stride   int
	Padding  int
	Dilation int
	UseBias  bool

	Prior         Gaussian      // prior shared by weights and bias
	PosteriorInit PosteriorInit // initial distribution of mu and rho
}

// DefaultBayesConv2DConfig returns a configuration with stride 1, no padding,
// no dilation, a bias, the N(0, 0.1²) prior and the default posterior init.
func DefaultBayesConv2DConfig(inChannels, outChannels, kernelSize int) BayesConv2DConfig {
	return BayesConv2DConfig{
		InChannels:    inChannels,
		OutChannels:   outChannels,
		KernelSize:    kernelSize,
		Stride:        1,
		Padding:       0,
		Dilation:      1,
		UseBias:       true,
		Prior:         DefaultPrior(),
		PosteriorInit: DefaultPosteriorInit(),
	}
}

// Validate checks the configuration. Errors wrap ErrInvalidConfig.
func (c BayesConv2DConfig) Validate() error {
	if c.InChannels <= 0 || c.OutChannels <= 0 {
		return fmt.Errorf("%w: channels must be positive, got in=%d out=%d", ErrInvalidConfig, c.InChannels, c.OutChannels)
	}
	if c.KernelSize <= 0 {
		return fmt.Errorf("%w: kernel size must be positive, got %d", ErrInvalidConfig, c.KernelSize)
	}
	if err := c.options().Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return validatePriorAndInit(c.Prior, c.PosteriorInit)
}

func (c BayesConv2DConfig) options() tensor.Conv2DOptions {
	return tensor.Conv2DOptions{Stride: c.Stride, Padding: c.Padding, Dilation: c.Dilation}
}

// BayesConv2D is a 2D convolution whose weights and bias are independent
// Gaussians N(mu, softplus(rho)²).
//
// Forward uses the local reparameterization trick: instead of sampling
// weights it samples the pre-activations from their exact Gaussian,
//
//	actMu  = conv2d(x, weight_mu) + bias_mu
//	actVar = conv2d(x², softplus(weight_rho)²) + softplus(bias_rho)² + 1e-16
//	output = actMu + sqrt(actVar) ⊙ eps,  eps ~ N(0, 1)
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, kernel, kernel]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*padding - dilation*(kernel-1) - 1) / stride + 1
//
// Example:
//
//	cfg := nn.DefaultBayesConv2DConfig(3, 8, 3)
//	conv, err := nn.NewBayesConv2D(cfg, backend, random.New(42))
//	output := conv.Forward(input) // stochastic
//	kl := conv.KLDivergence()     // scalar
type BayesConv2D[B tensor.Backend] struct {
	variational[B]

	inChannels  int
	outChannels int
	kernelSize  int
	opts        tensor.Conv2DOptions
}

// NewBayesConv2D creates a Bayesian convolution on backend's device.
//
// Means are drawn from cfg.PosteriorInit.Mu and rhos from
// cfg.PosteriorInit.Rho, in the order weight_mu, weight_rho, bias_mu,
// bias_rho. A nil gen is replaced by an entropy-seeded generator; the same
// generator supplies the forward noise.
func NewBayesConv2D[B tensor.Backend](cfg BayesConv2DConfig, backend B, gen *random.Generator) (*BayesConv2D[B], error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("bayes conv2d: %w", err)
	}

	weightShape := tensor.Shape{cfg.OutChannels, cfg.InChannels, cfg.KernelSize, cfg.KernelSize}
	biasShape := tensor.Shape{cfg.OutChannels}

	return &BayesConv2D[B]{
		variational: newVariational(weightShape, biasShape, cfg.UseBias, cfg.Prior, cfg.PosteriorInit, gen, backend),
		inChannels:  cfg.InChannels,
		outChannels: cfg.OutChannels,
		kernelSize:  cfg.KernelSize,
		opts:        cfg.options(),
	}, nil
}

// Forward samples the layer output for input [N, in_channels, H, W].
//
// Every call draws new noise, so two calls on the same input differ unless
// the mode is MeanOnly. Shape mismatches panic in the convolution.
func (c *BayesConv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	actMu := input.Conv2D(c.weightMu.Tensor(), c.opts)
	if c.biasMu != nil {
		actMu = actMu.Add(c.biasMu.Tensor().Reshape(1, c.outChannels, 1, 1))
	}

	return c.sample(actMu, func() *tensor.Tensor[float32, B] {
		wVar := c.WeightStd().Square()
		actVar := input.Square().Conv2D(wVar, c.opts)
		if c.biasRho != nil {
			bVar := c.BiasStd().Square()
			actVar = actVar.Add(bVar.Reshape(1, c.outChannels, 1, 1))
		}
		return actVar
	})
}

// InChannels returns the number of input channels.
func (c *BayesConv2D[B]) InChannels() int {
	return c.inChannels
}

// OutChannels returns the number of output channels.
func (c *BayesConv2D[B]) OutChannels() int {
	return c.outChannels
}

// KernelSize returns the side of the square kernel.
func (c *BayesConv2D[B]) KernelSize() int {
	return c.kernelSize
}

// Options returns the stride, padding and dilation.
func (c *BayesConv2D[B]) Options() tensor.Conv2DOptions {
	return c.opts
}

// ComputeOutputSize computes output spatial dimensions for given input size.
//
// Returns: [out_height, out_width].
func (c *BayesConv2D[B]) ComputeOutputSize(inputH, inputW int) [2]int {
	return [2]int{
		c.opts.OutputSize(inputH, c.kernelSize),
		c.opts.OutputSize(inputW, c.kernelSize),
	}
}

// String returns a string representation of the layer.
func (c *BayesConv2D[B]) String() string {
	return fmt.Sprintf("BayesConv2D(in_channels=%d, out_channels=%d, kernel_size=%d, stride=%d, padding=%d, dilation=%d, bias=%v)",
		c.inChannels, c.outChannels, c.kernelSize,
		c.opts.Stride, c.opts.Padding, c.opts.Dilation, c.UseBias())
}
