package tensor

import (
	"fmt"
)

// Reshape returns a tensor with the same elements and a new shape.
// One dimension may be -1 and is inferred from the element count.
func (t *Tensor) Reshape(dims ...int) *Tensor {
	shape, err := inferReshape(dims, len(t.data))
	if err != nil {
		panic(fmt.Sprintf("Reshape %v: %v", t.shape, err))
	}
	out := &Tensor{shape: shape, dtype: t.dtype, data: make([]float64, len(t.data))}
	copy(out.data, t.data)
	return out
}

// ExpandDims inserts a dimension of size 1 at axis (which may equal the rank).
func (t *Tensor) ExpandDims(axis int) *Tensor {
	if axis < 0 {
		axis += len(t.shape) + 1
	}
	if axis < 0 || axis > len(t.shape) {
		panic(fmt.Sprintf("ExpandDims: axis %d out of range for shape %v", axis, t.shape))
	}
	dims := make([]int, 0, len(t.shape)+1)
	dims = append(dims, t.shape[:axis]...)
	dims = append(dims, 1)
	dims = append(dims, t.shape[axis:]...)
	return t.Reshape(dims...)
}

// Transpose swaps the two axes of a 2D tensor.
func (t *Tensor) Transpose() *Tensor {
	if t.Rank() != 2 {
		panic(fmt.Sprintf("Transpose: expected 2D tensor, got %v", t.shape))
	}
	return t.Permute(1, 0)
}

// Permute reorders axes: output axis i is input axis axes[i].
func (t *Tensor) Permute(axes ...int) *Tensor {
	if len(axes) != len(t.shape) {
		panic(fmt.Sprintf("Permute: %d axes given for shape %v", len(axes), t.shape))
	}
	seen := make([]bool, len(axes))
	outShape := make(Shape, len(axes))
	for i, a := range axes {
		if a < 0 || a >= len(axes) || seen[a] {
			panic(fmt.Sprintf("Permute: invalid axes %v", axes))
		}
		seen[a] = true
		outShape[i] = t.shape[a]
	}

	inStrides := t.shape.ComputeStrides()
	strides := make([]int, len(axes))
	for i, a := range axes {
		strides[i] = inStrides[a]
	}

	out := newTensor(outShape, t.dtype)
	index := make([]int, len(outShape))
	for i := range out.data {
		off := 0
		for d, idx := range index {
			off += idx * strides[d]
		}
		out.data[i] = t.data[off]
		for d := len(index) - 1; d >= 0; d-- {
			index[d]++
			if index[d] < outShape[d] {
				break
			}
			index[d] = 0
		}
	}
	return out
}

// BroadcastTo materializes t broadcast to shape.
func (t *Tensor) BroadcastTo(shape Shape) *Tensor {
	target, _, err := BroadcastShapes(t.shape, shape)
	if err != nil || !target.Equal(shape) {
		panic(fmt.Sprintf("BroadcastTo: cannot broadcast %v to %v", t.shape, shape))
	}
	return elementwise("BroadcastTo", t, newTensor(shape, t.dtype), func(x, _ float64) float64 { return x })
}

// Concat joins tensors along axis. All other dimensions must match.
func Concat(axis int, tensors ...*Tensor) *Tensor {
	if len(tensors) == 0 {
		panic("Concat: no tensors")
	}
	first := tensors[0]
	axis = first.shape.normalizeAxis(axis)

	outShape := first.shape.Clone()
	outShape[axis] = 0
	dtype := first.dtype
	for _, t := range tensors {
		if t.Rank() != first.Rank() {
			panic(fmt.Sprintf("Concat: rank mismatch %v vs %v", first.shape, t.shape))
		}
		for d := range t.shape {
			if d != axis && t.shape[d] != first.shape[d] {
				panic(fmt.Sprintf("Concat: shape mismatch %v vs %v on axis %d", first.shape, t.shape, d))
			}
		}
		outShape[axis] += t.shape[axis]
		dtype = promote(dtype, t.dtype)
	}

	outer := 1
	for _, d := range outShape[:axis] {
		outer *= d
	}
	inner := 1
	for _, d := range outShape[axis+1:] {
		inner *= d
	}

	out := newTensor(outShape, dtype)
	pos := 0
	for o := 0; o < outer; o++ {
		for _, t := range tensors {
			chunk := t.shape[axis] * inner
			src := t.data[o*chunk : (o+1)*chunk]
			for i, v := range src {
				out.data[pos+i] = dtype.Round(v)
			}
			pos += chunk
		}
	}
	return out
}

// Slice returns elements [start, end) along axis.
func (t *Tensor) Slice(axis, start, end int) *Tensor {
	axis = t.shape.normalizeAxis(axis)
	if start < 0 || end > t.shape[axis] || start >= end {
		panic(fmt.Sprintf("Slice: invalid range [%d, %d) for axis %d of %v", start, end, axis, t.shape))
	}
	outer := 1
	for _, d := range t.shape[:axis] {
		outer *= d
	}
	inner := 1
	for _, d := range t.shape[axis+1:] {
		inner *= d
	}

	outShape := t.shape.Clone()
	outShape[axis] = end - start
	out := newTensor(outShape, t.dtype)
	n := t.shape[axis]
	width := (end - start) * inner
	for o := 0; o < outer; o++ {
		copy(out.data[o*width:(o+1)*width], t.data[(o*n+start)*inner:(o*n+end)*inner])
	}
	return out
}

// Split cuts axis into n equal parts.
func (t *Tensor) Split(axis, n int) []*Tensor {
	axis = t.shape.normalizeAxis(axis)
	if n <= 0 || t.shape[axis]%n != 0 {
		panic(fmt.Sprintf("Split: cannot split axis %d of %v into %d parts", axis, t.shape, n))
	}
	size := t.shape[axis] / n
	parts := make([]*Tensor, n)
	for i := range parts {
		parts[i] = t.Slice(axis, i*size, (i+1)*size)
	}
	return parts
}
