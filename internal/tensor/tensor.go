package tensor

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Tensor is a dense, row-major, CPU-resident multi-dimensional array.
//
// Elements are stored as float64 and rounded to the tensor's DataType on every
// write, so a Float32 tensor never carries more precision than a float32 would.
//
// Example:
//
//	t := tensor.Zeros(tensor.Shape{3, 4}, tensor.Float32)
//	u := t.AddScalar(1).MulScalar(2)
type Tensor struct {
	shape Shape
	dtype DataType
	data  []float64
}

// FromSlice creates a tensor from a Go slice.
// The slice is copied into the tensor's memory.
func FromSlice(data []float64, shape Shape, dtype DataType) (*Tensor, error) {
	if err := shape.Validate(); err != nil {
		return nil, errors.Wrap(err, "invalid shape")
	}
	if shape.NumElements() != len(data) {
		return nil, errors.Errorf("shape %v requires %d elements, but got %d", shape, shape.NumElements(), len(data))
	}
	t := newTensor(shape, dtype)
	for i, v := range data {
		t.data[i] = dtype.Round(v)
	}
	return t, nil
}

// FromFloat32 creates a Float32 tensor from a float32 slice.
func FromFloat32(data []float32, shape Shape) (*Tensor, error) {
	values := make([]float64, len(data))
	for i, v := range data {
		values[i] = float64(v)
	}
	return FromSlice(values, shape, Float32)
}

// newTensor allocates a zero tensor without validating the shape.
func newTensor(shape Shape, dtype DataType) *Tensor {
	return &Tensor{
		shape: shape.Clone(),
		dtype: dtype,
		data:  make([]float64, shape.NumElements()),
	}
}

// Shape returns the tensor's shape.
func (t *Tensor) Shape() Shape {
	return t.shape
}

// DType returns the tensor's data type.
func (t *Tensor) DType() DataType {
	return t.dtype
}

// Rank returns the number of dimensions.
func (t *Tensor) Rank() int {
	return len(t.shape)
}

// Len returns the number of elements.
func (t *Tensor) Len() int {
	return len(t.data)
}

// Data returns the underlying element storage. Writes through the returned
// slice bypass dtype rounding; use Set for rounded writes.
func (t *Tensor) Data() []float64 {
	return t.data
}

// Float32s returns a copy of the elements as float32.
func (t *Tensor) Float32s() []float32 {
	out := make([]float32, len(t.data))
	for i, v := range t.data {
		out[i] = float32(v)
	}
	return out
}

// offset converts a multi-index into a flat position.
func (t *Tensor) offset(index []int) int {
	if len(index) != len(t.shape) {
		panic(fmt.Sprintf("tensor: index %v has rank %d, tensor has rank %d", index, len(index), len(t.shape)))
	}
	pos := 0
	for i, idx := range index {
		if idx < 0 || idx >= t.shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of bounds for shape %v", index, t.shape))
		}
		pos = pos*t.shape[i] + idx
	}
	return pos
}

// At returns the element at the given multi-index.
func (t *Tensor) At(index ...int) float64 {
	return t.data[t.offset(index)]
}

// Set writes v (rounded to the tensor's dtype) at the given multi-index.
func (t *Tensor) Set(v float64, index ...int) {
	t.data[t.offset(index)] = t.dtype.Round(v)
}

// Item returns the single element of a one-element tensor.
func (t *Tensor) Item() float64 {
	if len(t.data) != 1 {
		panic(fmt.Sprintf("tensor: Item on tensor with %d elements", len(t.data)))
	}
	return t.data[0]
}

// Clone returns a deep copy.
func (t *Tensor) Clone() *Tensor {
	c := newTensor(t.shape, t.dtype)
	copy(c.data, t.data)
	return c
}

// AsType returns a copy converted to dtype.
func (t *Tensor) AsType(dtype DataType) *Tensor {
	c := newTensor(t.shape, dtype)
	for i, v := range t.data {
		c.data[i] = dtype.Round(v)
	}
	return c
}

// Equal reports whether both tensors have the same shape, dtype and elements.
func (t *Tensor) Equal(other *Tensor) bool {
	if t == nil || other == nil {
		return t == other
	}
	if t.dtype != other.dtype || !t.shape.Equal(other.shape) {
		return false
	}
	for i := range t.data {
		if t.data[i] != other.data[i] {
			return false
		}
	}
	return true
}

// String returns a short description, printing values only for small tensors.
func (t *Tensor) String() string {
	if len(t.data) > 16 {
		return fmt.Sprintf("Tensor[%s]%v", t.dtype, t.shape)
	}
	parts := make([]string, len(t.data))
	for i, v := range t.data {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return fmt.Sprintf("Tensor[%s]%v{%s}", t.dtype, t.shape, strings.Join(parts, ", "))
}
