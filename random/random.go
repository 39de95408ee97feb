// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package random provides seeded Gaussian sampling.
//
// Layers take a *Generator at construction; the same generator supplies the
// per-call forward noise, so reseeding reproduces a forward pass bit for bit.
//
// Example:
//
//	gen := random.New(42)
//	conv, _ := nn.NewBayesConv2D(nn.DefaultBayesConv2DConfig(3, 8, 3), backend, gen)
package random

import (
	"github.com/born-ml/bayes/internal/random"
	"github.com/born-ml/bayes/internal/tensor"
)

// Generator is a seeded source of Gaussian samples.
type Generator = random.Generator

// Engine selects the bit generator behind a Generator.
type Engine = random.Engine

// Available engines.
const (
	PCG     Engine = random.PCG
	MT19937 Engine = random.MT19937
)

// NewWithEngine returns a generator using engine, seeded with seed.
func NewWithEngine(engine Engine, seed uint64) *Generator {
	return random.NewWithEngine(engine, seed)
}

// New returns a PCG generator seeded with seed.
func New(seed uint64) *Generator {
	return random.New(seed)
}

// NewFromEntropy returns a generator seeded from the runtime's entropy source.
func NewFromEntropy() *Generator {
	return random.NewFromEntropy()
}

// Normal returns a tensor filled with N(mu, sigma²) draws.
func Normal[T tensor.DType, B tensor.Backend](g *Generator, shape tensor.Shape, mu, sigma float64, b B) *tensor.Tensor[T, B] {
	return random.Normal[T](g, shape, mu, sigma, b)
}

// StandardNormal returns a tensor filled with N(0, 1) draws.
func StandardNormal[T tensor.DType, B tensor.Backend](g *Generator, shape tensor.Shape, b B) *tensor.Tensor[T, B] {
	return random.StandardNormal[T](g, shape, b)
}
