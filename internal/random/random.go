// Package random provides the seeded Gaussian sampling used to initialise
// Bayesian parameters and to draw the per-call forward noise.
package random

import (
	"fmt"
	"math/rand/v2"

	"github.com/seehuhn/mt19937"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/born-ml/bayes/internal/tensor"
)

// pcgStream is the fixed PCG stream selector; the seed picks the state.
const pcgStream = 0x9e3779b97f4a7c15

// Engine selects the pseudo-random bit generator behind a Generator.
type Engine int

const (
	// PCG is the permuted congruential generator from math/rand/v2.
	PCG Engine = iota
	// MT19937 is the 64-bit Mersenne Twister, the engine PyTorch uses on CPU.
	MT19937
)

// String returns the engine name.
func (e Engine) String() string {
	switch e {
	case PCG:
		return "pcg"
	case MT19937:
		return "mt19937"
	default:
		return "unknown"
	}
}

// Generator is a seeded source of Gaussian samples.
//
// Two generators built with the same engine and seed produce the same
// sequence. A Generator is not safe for concurrent use.
type Generator struct {
	engine Engine
	seed   uint64
	src    rand.Source
}

// New returns a PCG generator seeded with seed.
func New(seed uint64) *Generator {
	return NewWithEngine(PCG, seed)
}

// NewWithEngine returns a generator using engine, seeded with seed.
func NewWithEngine(engine Engine, seed uint64) *Generator {
	g := &Generator{engine: engine}
	g.Reset(seed)
	return g
}

// NewFromEntropy returns a PCG generator seeded from the runtime's entropy source.
func NewFromEntropy() *Generator {
	return New(rand.Uint64())
}

// Engine returns the generator's engine.
func (g *Generator) Engine() Engine {
	return g.engine
}

// Seed returns the seed the generator was created or last reset with.
func (g *Generator) Seed() uint64 {
	return g.seed
}

// Reset rewinds the generator to the start of seed's sequence.
func (g *Generator) Reset(seed uint64) {
	g.seed = seed
	switch g.engine {
	case PCG:
		g.src = rand.NewPCG(seed, pcgStream)
	case MT19937:
		mt := mt19937.New()
		mt.Seed(int64(seed))
		g.src = mt
	default:
		panic(fmt.Sprintf("random: unknown engine %d", g.engine))
	}
}

// Uint64 returns the next raw 64-bit value of the engine.
func (g *Generator) Uint64() uint64 {
	return g.src.Uint64()
}

// Normal draws one sample from N(mu, sigma²).
func (g *Generator) Normal(mu, sigma float64) float64 {
	return g.dist(mu, sigma).Rand()
}

// FillNormal overwrites every element of raw with independent N(mu, sigma²)
// draws, in row-major order.
func (g *Generator) FillNormal(raw *tensor.RawTensor, mu, sigma float64) {
	dist := g.dist(mu, sigma)
	switch raw.DType() {
	case tensor.Float32:
		data := raw.AsFloat32()
		for i := range data {
			data[i] = float32(dist.Rand())
		}
	case tensor.Float64:
		data := raw.AsFloat64()
		for i := range data {
			data[i] = dist.Rand()
		}
	default:
		panic(fmt.Sprintf("FillNormal: unsupported dtype %s", raw.DType()))
	}
}

// Normal returns a tensor of the given shape filled with N(mu, sigma²) draws
// from g, allocated on b's device.
func Normal[T tensor.DType, B tensor.Backend](g *Generator, shape tensor.Shape, mu, sigma float64, b B) *tensor.Tensor[T, B] {
	t := tensor.Zeros[T](shape, b)
	g.FillNormal(t.Raw(), mu, sigma)
	return t
}

// StandardNormal returns a tensor of N(0, 1) draws shaped like shape.
func StandardNormal[T tensor.DType, B tensor.Backend](g *Generator, shape tensor.Shape, b B) *tensor.Tensor[T, B] {
	return Normal[T](g, shape, 0, 1, b)
}

func (g *Generator) dist(mu, sigma float64) distuv.Normal {
	if sigma <= 0 {
		panic(fmt.Sprintf("random: standard deviation must be positive, got %v", sigma))
	}
	return distuv.Normal{Mu: mu, Sigma: sigma, Src: g.src}
}
