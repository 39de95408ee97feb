// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the public tensor API used by the Bayesian layers.
//
// The package exposes:
//   - Tensor[T, B]: generic tensor bound to a compute backend
//   - RawTensor: untyped storage that backends operate on
//   - Backend: interface for device-specific compute implementations
//   - Shape, DataType, Device, Conv2DOptions: core type definitions
//
// Example:
//
//	backend := cpu.New()
//	x := tensor.Zeros[float32](tensor.Shape{2, 3}, backend)
//	y := tensor.Ones[float32](tensor.Shape{2, 3}, backend)
//	z := x.Add(y)  // Element-wise addition
package tensor

import (
	"github.com/born-ml/bayes/internal/tensor"
)

// DType is a constraint for tensor data types (float32, float64).
type DType = tensor.DType

// DataType represents the underlying data type of a tensor.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
)

// Device represents the device where tensor data resides.
type Device = tensor.Device

// Device constants.
const (
	CPU    Device = tensor.CPU
	CUDA   Device = tensor.CUDA
	WebGPU Device = tensor.WebGPU
)

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// Backend is the interface every compute backend implements.
type Backend = tensor.Backend

// Conv2DOptions configures stride, padding and dilation of a 2D convolution.
type Conv2DOptions = tensor.Conv2DOptions

// RawTensor is the low-level tensor representation.
type RawTensor = tensor.RawTensor

// Tensor is a generic type-safe tensor.
//
// T is the data type (float32, float64).
// B is the backend implementation; wrapping a backend with autodiff.New
// records operations for gradient computation.
type Tensor[T DType, B Backend] = tensor.Tensor[T, B]

// DefaultConv2DOptions returns stride 1, padding 0, dilation 1.
func DefaultConv2DOptions() Conv2DOptions {
	return tensor.DefaultConv2DOptions()
}

// NewRaw allocates a zero-filled RawTensor.
func NewRaw(shape Shape, dtype DataType, device Device) (*RawTensor, error) {
	return tensor.NewRaw(shape, dtype, device)
}

// New wraps a RawTensor in a typed Tensor.
func New[T DType, B Backend](raw *RawTensor, b B) *Tensor[T, B] {
	return tensor.New[T](raw, b)
}

// FromSlice creates a tensor from a slice of values.
func FromSlice[T DType, B Backend](data []T, shape Shape, b B) (*Tensor[T, B], error) {
	return tensor.FromSlice(data, shape, b)
}

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Zeros[T](shape, b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return tensor.Ones[T](shape, b)
}

// Full creates a tensor filled with value.
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	return tensor.Full(shape, value, b)
}

// Scalar creates a 0-D tensor holding value.
func Scalar[T DType, B Backend](value T, b B) *Tensor[T, B] {
	return tensor.Scalar(value, b)
}
