// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the CPU compute backend.
//
// Convolutions and matrix products run as GEMM calls through gonum's BLAS;
// element-wise math uses float32 kernels for float32 tensors.
package cpu

import (
	internalcpu "github.com/born-ml/bayes/internal/backend/cpu"
	"github.com/born-ml/bayes/internal/parallel"
	"github.com/born-ml/bayes/tensor"
)

// Backend represents the CPU backend implementation.
type Backend = internalcpu.CPUBackend

// Compile-time check that Backend implements tensor.Backend.
var _ tensor.Backend = (*Backend)(nil)

// New creates a new CPU backend.
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
func New() *Backend {
	return internalcpu.New()
}

// NewWithWorkers creates a CPU backend whose convolution kernels use at most
// workers goroutines. workers <= 1 runs every kernel on the calling goroutine.
func NewWithWorkers(workers int) *Backend {
	cfg := parallel.DefaultConfig()
	cfg.Workers = workers
	return internalcpu.NewWithParallel(cfg)
}
