package tensor

import (
	"fmt"
	"math"
)

// elementwise applies f element-wise with NumPy broadcasting. The result dtype is the
// wider of the two operand dtypes.
func elementwise(name string, a, b *Tensor, f func(x, y float64) float64) *Tensor {
	outShape, needsBroadcast, err := BroadcastShapes(a.shape, b.shape)
	if err != nil {
		panic(fmt.Sprintf("%s: %v", name, err))
	}
	dtype := promote(a.dtype, b.dtype)
	out := newTensor(outShape, dtype)

	if !needsBroadcast {
		for i := range out.data {
			out.data[i] = dtype.Round(f(a.data[i], b.data[i]))
		}
		return out
	}

	aStrides := broadcastStrides(a.shape, outShape)
	bStrides := broadcastStrides(b.shape, outShape)
	index := make([]int, len(outShape))
	for i := range out.data {
		aOff, bOff := 0, 0
		for d, idx := range index {
			aOff += idx * aStrides[d]
			bOff += idx * bStrides[d]
		}
		out.data[i] = dtype.Round(f(a.data[aOff], b.data[bOff]))

		// Increment the multi-index, last axis fastest.
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

// unary applies f element-wise.
func (t *Tensor) unary(f func(x float64) float64) *Tensor {
	out := newTensor(t.shape, t.dtype)
	for i, v := range t.data {
		out.data[i] = t.dtype.Round(f(v))
	}
	return out
}

// Add returns t + other with broadcasting.
func (t *Tensor) Add(other *Tensor) *Tensor {
	return elementwise("Add", t, other, func(x, y float64) float64 { return x + y })
}

// Sub returns t - other with broadcasting.
func (t *Tensor) Sub(other *Tensor) *Tensor {
	return elementwise("Sub", t, other, func(x, y float64) float64 { return x - y })
}

// Mul returns t * other (element-wise) with broadcasting.
func (t *Tensor) Mul(other *Tensor) *Tensor {
	return elementwise("Mul", t, other, func(x, y float64) float64 { return x * y })
}

// Div returns t / other (element-wise) with broadcasting.
func (t *Tensor) Div(other *Tensor) *Tensor {
	return elementwise("Div", t, other, func(x, y float64) float64 { return x / y })
}

// AddScalar returns t + s.
func (t *Tensor) AddScalar(s float64) *Tensor {
	return t.unary(func(x float64) float64 { return x + s })
}

// MulScalar returns t * s.
func (t *Tensor) MulScalar(s float64) *Tensor {
	return t.unary(func(x float64) float64 { return x * s })
}

// Neg returns -t.
func (t *Tensor) Neg() *Tensor {
	return t.unary(func(x float64) float64 { return -x })
}

// Abs returns |t|.
func (t *Tensor) Abs() *Tensor {
	return t.unary(math.Abs)
}

// Exp returns e^t.
func (t *Tensor) Exp() *Tensor {
	return t.unary(math.Exp)
}

// Sqrt returns √t.
func (t *Tensor) Sqrt() *Tensor {
	return t.unary(math.Sqrt)
}

// Tanh returns tanh(t).
func (t *Tensor) Tanh() *Tensor {
	return t.unary(math.Tanh)
}

// Sigmoid returns 1 / (1 + e^-t).
func (t *Tensor) Sigmoid() *Tensor {
	return t.unary(func(x float64) float64 { return 1 / (1 + math.Exp(-x)) })
}

// ReLU returns max(0, t).
func (t *Tensor) ReLU() *Tensor {
	return t.unary(func(x float64) float64 { return math.Max(0, x) })
}

// Map applies f to every element.
func (t *Tensor) Map(f func(x float64) float64) *Tensor {
	return t.unary(f)
}

// MatMul performs 2D matrix multiplication: [m, k] @ [k, n] -> [m, n].
func (t *Tensor) MatMul(other *Tensor) *Tensor {
	if t.Rank() != 2 || other.Rank() != 2 {
		panic(fmt.Sprintf("MatMul: expected 2D operands, got %v and %v", t.shape, other.shape))
	}
	m, k := t.shape[0], t.shape[1]
	k2, n := other.shape[0], other.shape[1]
	if k != k2 {
		panic(fmt.Sprintf("MatMul: inner dimensions differ: %v @ %v", t.shape, other.shape))
	}
	dtype := promote(t.dtype, other.dtype)
	out := newTensor(Shape{m, n}, dtype)
	for i := 0; i < m; i++ {
		row := t.data[i*k : (i+1)*k]
		for p, a := range row {
			if a == 0 {
				continue
			}
			col := other.data[p*n : (p+1)*n]
			dst := out.data[i*n : (i+1)*n]
			for j, b := range col {
				dst[j] += a * b
			}
		}
	}
	for i, v := range out.data {
		out.data[i] = dtype.Round(v)
	}
	return out
}

// Sum reduces along axis, removing it from the shape.
func (t *Tensor) Sum(axis int) *Tensor {
	axis = t.shape.normalizeAxis(axis)
	outer := 1
	for _, d := range t.shape[:axis] {
		outer *= d
	}
	inner := 1
	for _, d := range t.shape[axis+1:] {
		inner *= d
	}
	n := t.shape[axis]

	outShape := make(Shape, 0, len(t.shape)-1)
	outShape = append(outShape, t.shape[:axis]...)
	outShape = append(outShape, t.shape[axis+1:]...)
	out := newTensor(outShape, t.dtype)
	for o := 0; o < outer; o++ {
		for k := 0; k < n; k++ {
			src := t.data[(o*n+k)*inner : (o*n+k+1)*inner]
			dst := out.data[o*inner : (o+1)*inner]
			for i, v := range src {
				dst[i] += v
			}
		}
	}
	for i, v := range out.data {
		out.data[i] = t.dtype.Round(v)
	}
	return out
}

// Mean reduces along axis by averaging.
func (t *Tensor) Mean(axis int) *Tensor {
	n := t.shape[t.shape.normalizeAxis(axis)]
	return t.Sum(axis).MulScalar(1 / float64(n))
}

// SumAll returns the sum of all elements.
func (t *Tensor) SumAll() float64 {
	total := 0.0
	for _, v := range t.data {
		total += v
	}
	return total
}
