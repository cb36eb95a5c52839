package tensor

import (
	"math"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddBroadcast(t *testing.T) {
	a := must.M1(FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Float32))
	b := must.M1(FromSlice([]float64{10, 20, 30}, Shape{3}, Float32))

	c := a.Add(b)
	assert.Equal(t, Shape{2, 3}, c.Shape())
	assert.Equal(t, []float64{11, 22, 33, 14, 25, 36}, c.Data())

	col := must.M1(FromSlice([]float64{100, 200}, Shape{2, 1}, Float32))
	assert.Equal(t, []float64{101, 102, 103, 204, 205, 206}, a.Add(col).Data())
}

func TestElementwiseIncompatiblePanics(t *testing.T) {
	a := Zeros(Shape{2, 3}, Float32)
	b := Zeros(Shape{2, 4}, Float32)
	assert.Panics(t, func() { a.Mul(b) })
}

func TestDTypePromotion(t *testing.T) {
	a := Ones(Shape{2}, Float16)
	b := Ones(Shape{2}, Float64)
	assert.Equal(t, Float64, a.Add(b).DType())
	assert.Equal(t, Float32, a.Add(Ones(Shape{2}, Float32)).DType())
}

func TestMatMul(t *testing.T) {
	a := must.M1(FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Float64))
	b := must.M1(FromSlice([]float64{7, 8, 9, 10, 11, 12}, Shape{3, 2}, Float64))

	c := a.MatMul(b)
	assert.Equal(t, Shape{2, 2}, c.Shape())
	assert.Equal(t, []float64{58, 64, 139, 154}, c.Data())

	assert.Panics(t, func() { a.MatMul(a) })
}

func TestSumAndMean(t *testing.T) {
	x := must.M1(FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Float64))

	assert.Equal(t, []float64{5, 7, 9}, x.Sum(0).Data())
	assert.Equal(t, []float64{6, 15}, x.Sum(-1).Data())
	assert.Equal(t, []float64{2, 5}, x.Mean(1).Data())
	assert.Equal(t, 21.0, x.SumAll())

	cube := Ones(Shape{2, 3, 4}, Float32)
	s := cube.Sum(1)
	assert.Equal(t, Shape{2, 4}, s.Shape())
	for _, v := range s.Data() {
		assert.Equal(t, 3.0, v)
	}
}

func TestUnaryOps(t *testing.T) {
	x := must.M1(FromSlice([]float64{-1, 0, 2}, Shape{3}, Float64))

	assert.Equal(t, []float64{1, 0, 2}, x.Abs().Data())
	assert.Equal(t, []float64{0, 0, 2}, x.ReLU().Data())
	assert.Equal(t, []float64{1, 0, -2}, x.Neg().Data())
	assert.InDelta(t, math.Exp(2), x.Exp().At(2), 1e-12)
	assert.InDelta(t, 0.5, x.Sigmoid().At(1), 1e-12)
	assert.InDelta(t, math.Tanh(-1), x.Tanh().At(0), 1e-12)
}

func TestFloat16Rounding(t *testing.T) {
	x := must.M1(FromSlice([]float64{1.0 / 3.0}, Shape{1}, Float16))
	// float16 keeps 10 mantissa bits.
	assert.InDelta(t, 0.33325195, x.At(0), 1e-8)
	assert.NotEqual(t, 1.0/3.0, x.At(0))

	y := must.M1(FromSlice([]float64{1.0 / 3.0}, Shape{1}, Float32))
	assert.Equal(t, float64(float32(1.0/3.0)), y.At(0))
}

func TestParseDType(t *testing.T) {
	for name, want := range map[string]DataType{"float32": Float32, "float64": Float64, "float16": Float16} {
		got, err := ParseDType(name)
		require.NoError(t, err)
		assert.Equal(t, want, got)
		assert.Equal(t, name, got.String())
	}

	_, err := ParseDType("int8")
	require.ErrorIs(t, err, ErrUnknownDType)
}
