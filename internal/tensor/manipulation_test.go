package tensor

import (
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
)

func TestReshapeInfer(t *testing.T) {
	x := Zeros(Shape{4, 6}, Float32)
	assert.Equal(t, Shape{2, 3, 4}, x.Reshape(-1, 3, 4).Shape())
	assert.Equal(t, Shape{24}, x.Reshape(-1).Shape())
	assert.Panics(t, func() { x.Reshape(5, -1) })
	assert.Panics(t, func() { x.Reshape(-1, -1) })
}

func TestPermute(t *testing.T) {
	x := must.M1(FromSlice([]float64{1, 2, 3, 4, 5, 6}, Shape{2, 3}, Float64))
	assert.Equal(t, []float64{1, 4, 2, 5, 3, 6}, x.Transpose().Data())

	cube := must.M1(FromSlice([]float64{0, 1, 2, 3, 4, 5, 6, 7}, Shape{2, 2, 2}, Float64))
	p := cube.Permute(2, 0, 1)
	assert.Equal(t, Shape{2, 2, 2}, p.Shape())
	assert.Equal(t, cube.At(1, 0, 1), p.At(1, 1, 0))
	assert.Equal(t, cube.At(0, 1, 0), p.At(0, 0, 1))
}

func TestExpandDimsAndBroadcastTo(t *testing.T) {
	x := must.M1(FromSlice([]float64{1, 2}, Shape{2}, Float32))
	e := x.ExpandDims(0)
	assert.Equal(t, Shape{1, 2}, e.Shape())
	assert.Equal(t, Shape{2, 1}, x.ExpandDims(-1).Shape())

	b := e.BroadcastTo(Shape{3, 2})
	assert.Equal(t, []float64{1, 2, 1, 2, 1, 2}, b.Data())
	assert.Panics(t, func() { x.BroadcastTo(Shape{3}) })
}

func TestConcat(t *testing.T) {
	a := must.M1(FromSlice([]float64{1, 2, 3, 4}, Shape{2, 2}, Float32))
	b := must.M1(FromSlice([]float64{5, 6}, Shape{2, 1}, Float32))

	c := Concat(1, a, b)
	assert.Equal(t, Shape{2, 3}, c.Shape())
	assert.Equal(t, []float64{1, 2, 5, 3, 4, 6}, c.Data())

	r := Concat(0, a, a)
	assert.Equal(t, Shape{4, 2}, r.Shape())
	assert.Panics(t, func() { Concat(0, a, b) })
}

func TestSliceAndSplit(t *testing.T) {
	x := must.M1(FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8}, Shape{2, 4}, Float32))

	s := x.Slice(1, 1, 3)
	assert.Equal(t, Shape{2, 2}, s.Shape())
	assert.Equal(t, []float64{2, 3, 6, 7}, s.Data())

	parts := x.Split(1, 2)
	assert.Len(t, parts, 2)
	assert.Equal(t, []float64{3, 4, 7, 8}, parts[1].Data())
	assert.Panics(t, func() { x.Split(1, 3) })
}
