package tensor

import (
	"fmt"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
//
// Example:
//
//	t := tensor.Zeros(Shape{3, 4}, Float32)
func Zeros(shape Shape, dtype DataType) *Tensor {
	if err := shape.Validate(); err != nil {
		panic(fmt.Sprintf("tensor.Zeros: %v", err))
	}
	return newTensor(shape, dtype)
}

// Ones creates a tensor filled with ones.
func Ones(shape Shape, dtype DataType) *Tensor {
	return Full(shape, dtype, 1)
}

// Full creates a tensor filled with a specific value.
//
// Example:
//
//	t := tensor.Full(Shape{3, 3}, Float32, 3.14)
func Full(shape Shape, dtype DataType, value float64) *Tensor {
	t := Zeros(shape, dtype)
	v := dtype.Round(value)
	for i := range t.data {
		t.data[i] = v
	}
	return t
}

// Scalar creates a rank-0 tensor.
func Scalar(value float64, dtype DataType) *Tensor {
	return Full(Shape{}, dtype, value)
}

// Eye creates an n×n identity matrix.
func Eye(n int, dtype DataType) *Tensor {
	t := Zeros(Shape{n, n}, dtype)
	for i := 0; i < n; i++ {
		t.data[i*n+i] = 1
	}
	return t
}

// Randn creates a tensor with values drawn from N(0, std²).
// A nil rng uses the global math/rand source.
func Randn(shape Shape, dtype DataType, std float64, rng *rand.Rand) *Tensor {
	t := Zeros(shape, dtype)
	for i := range t.data {
		t.data[i] = dtype.Round(normFloat64(rng) * std)
	}
	return t
}

// Uniform creates a tensor with values drawn from U[low, high).
// A nil rng uses the global math/rand source.
func Uniform(shape Shape, dtype DataType, low, high float64, rng *rand.Rand) *Tensor {
	t := Zeros(shape, dtype)
	for i := range t.data {
		t.data[i] = dtype.Round(low + (high-low)*float64Rand(rng))
	}
	return t
}

func normFloat64(rng *rand.Rand) float64 {
	if rng == nil {
		//nolint:gosec // not security-critical
		return rand.NormFloat64()
	}
	return rng.NormFloat64()
}

func float64Rand(rng *rand.Rand) float64 {
	if rng == nil {
		//nolint:gosec // not security-critical
		return rand.Float64()
	}
	return rng.Float64()
}
