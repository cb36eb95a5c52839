// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package tensor

import (
	"math/rand"

	"github.com/born-ml/links/internal/tensor"
)

// Tensor is a dense row-major tensor.
//
// Example:
//
//	x := tensor.Ones(tensor.Shape{2, 3}, tensor.Float32)
//	y := x.MulScalar(2).Sum(1) // [6, 6]
type Tensor = tensor.Tensor

// Shape represents the dimensions of a tensor.
// Example: Shape{2, 3, 4} represents a 3D tensor with dimensions 2×3×4.
type Shape = tensor.Shape

// DataType is the precision a tensor's values are rounded to.
type DataType = tensor.DataType

// Data type constants.
const (
	Float32 DataType = tensor.Float32
	Float64 DataType = tensor.Float64
	Float16 DataType = tensor.Float16
)

// Wire is the persisted form of a tensor.
type Wire = tensor.Wire

// ErrUnknownDType is returned for a dtype name other than "float32", "float64"
// or "float16".
var ErrUnknownDType = tensor.ErrUnknownDType

// ParseDType translates a dtype name into a DataType.
func ParseDType(name string) (DataType, error) {
	return tensor.ParseDType(name)
}

// Creation functions

// FromSlice creates a tensor from row-major data.
//
// Example:
//
//	x, err := tensor.FromSlice([]float64{1, 2, 3, 4}, tensor.Shape{2, 2}, tensor.Float32)
func FromSlice(data []float64, shape Shape, dtype DataType) (*Tensor, error) {
	return tensor.FromSlice(data, shape, dtype)
}

// FromFloat32 creates a Float32 tensor from a float32 slice.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	return tensor.FromFloat32(data, shape)
}

// Zeros creates a tensor filled with zeros.
func Zeros(shape Shape, dtype DataType) *Tensor {
	return tensor.Zeros(shape, dtype)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) *Tensor {
	return tensor.Ones(shape, dtype)
}

// Full creates a tensor filled with value.
func Full(shape Shape, dtype DataType, value float64) *Tensor {
	return tensor.Full(shape, dtype, value)
}

// Eye creates an n×n identity matrix.
func Eye(n int, dtype DataType) *Tensor {
	return tensor.Eye(n, dtype)
}

// Randn draws from N(0, std²). A nil rng uses the global source.
func Randn(shape Shape, dtype DataType, std float64, rng *rand.Rand) *Tensor {
	return tensor.Randn(shape, dtype, std, rng)
}

// Concat joins tensors along axis.
func Concat(axis int, tensors ...*Tensor) *Tensor {
	return tensor.Concat(axis, tensors...)
}

// FromWire decodes a persisted tensor.
func FromWire(w Wire) (*Tensor, error) {
	return tensor.FromWire(w)
}
