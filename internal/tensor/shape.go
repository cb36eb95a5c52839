package tensor

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	if len(s) == 0 {
		return 1 // Scalar has 1 element
	}
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Validate checks if the shape is valid (all dimensions > 0).
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return errors.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	clone := make(Shape, len(s))
	copy(clone, s)
	return clone
}

// String renders the shape as "(2, 3, 4)".
func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, d := range s {
		parts[i] = fmt.Sprint(d)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// ComputeStrides calculates row-major strides for the shape.
// Strides define memory layout: stride[i] = product of all dimensions after i.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	if len(s) == 0 {
		return strides
	}

	strides[len(s)-1] = 1
	for i := len(s) - 2; i >= 0; i-- {
		strides[i] = strides[i+1] * s[i+1]
	}
	return strides
}

// normalizeAxis maps a negative axis onto [0, rank).
func (s Shape) normalizeAxis(axis int) int {
	if axis < 0 {
		axis += len(s)
	}
	if axis < 0 || axis >= len(s) {
		panic(fmt.Sprintf("axis %d out of range for shape %v", axis, s))
	}
	return axis
}

// inferReshape resolves a single -1 entry in dims against numElements.
func inferReshape(dims []int, numElements int) (Shape, error) {
	out := make(Shape, len(dims))
	unknown := -1
	known := 1
	for i, d := range dims {
		switch {
		case d == -1:
			if unknown >= 0 {
				return nil, errors.Errorf("reshape: more than one -1 in %v", dims)
			}
			unknown = i
		case d <= 0:
			return nil, errors.Errorf("reshape: invalid dimension %d in %v", d, dims)
		default:
			known *= d
		}
		out[i] = d
	}
	if unknown >= 0 {
		if known == 0 || numElements%known != 0 {
			return nil, errors.Errorf("reshape: cannot infer -1 in %v for %d elements", dims, numElements)
		}
		out[unknown] = numElements / known
	}
	if out.NumElements() != numElements {
		return nil, errors.Errorf("reshape: %v has %d elements, tensor has %d", out, out.NumElements(), numElements)
	}
	return out, nil
}

// BroadcastShapes implements NumPy-style broadcasting rules.
//
// Rules:
// 1. Compare shapes element-wise from right to left
// 2. Dimensions are compatible if:
//   - They are equal, OR
//   - One of them is 1
//
// 3. Missing dimensions are treated as 1
//
// Returns the broadcasted shape, a flag indicating if broadcasting is needed, and an error if incompatible.
//
// Examples:
//
//	(3, 1) + (3, 5) → (3, 5), true, nil
//	(1, 5) + (3, 5) → (3, 5), true, nil
//	(3, 5) + (3, 5) → (3, 5), false, nil
//	(3, 4) + (3, 5) → nil, false, Error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	maxLen := max(len(a), len(b))
	result := make(Shape, maxLen)
	needsBroadcast := len(a) != len(b)

	for i := 0; i < maxLen; i++ {
		aIdx := len(a) - 1 - i
		bIdx := len(b) - 1 - i

		aDim := 1
		if aIdx >= 0 {
			aDim = a[aIdx]
		}

		bDim := 1
		if bIdx >= 0 {
			bDim = b[bIdx]
		}

		switch {
		case aDim == bDim:
			result[maxLen-1-i] = aDim
		case aDim == 1:
			result[maxLen-1-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[maxLen-1-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, errors.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, maxLen-1-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}

// broadcastStrides returns the strides to read a tensor of shape src as if it
// had shape dst: broadcast dimensions get stride 0.
func broadcastStrides(src, dst Shape) []int {
	srcStrides := src.ComputeStrides()
	out := make([]int, len(dst))
	offset := len(dst) - len(src)
	for i := range dst {
		j := i - offset
		if j < 0 || src[j] == 1 {
			continue
		}
		out[i] = srcStrides[j]
	}
	return out
}
