package nn_test

import (
	"testing"

	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/parallel"
	"github.com/born-ml/links/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSequential_Forward(t *testing.T) {
	w1 := mustTensor([]float64{1, -1, -1, 1}, 2, 2)
	w2 := mustTensor([]float64{1, 1}, 1, 2)
	opts := nn.DefaultOptions()
	l1 := must.M1(nn.NewLinear(nn.LinearConfig{InSize: 2, OutSize: 2, InitialW: w1}, opts))
	l2 := must.M1(nn.NewLinear(nn.LinearConfig{InSize: 2, OutSize: 1, InitialW: w2}, opts))

	model := nn.NewSequential(l1, nn.NewReLU())
	model.Add(l2)
	require.Equal(t, 3, model.Len())
	assert.Same(t, l2, model.Module(2))
	assert.Panics(t, func() { model.Module(3) })

	// relu([3-1, 1-3]) = [2, 0] -> 2
	out := model.Forward(mustTensor([]float64{3, 1}, 1, 2))
	assert.Equal(t, []float64{2}, out.Data())
	assert.Len(t, model.Parameters(), 4)
}

func TestSequential_StateDict(t *testing.T) {
	fw := nn.NewCPU(nn.WithSeed(5), nn.WithParallel(parallel.Sequential()))
	build := func() *nn.Sequential {
		l1 := must.M1(fw.Linear(nn.LinearConfig{InSize: 3, OutSize: 2}))
		l2 := must.M1(fw.Linear(nn.LinearConfig{InSize: 2, OutSize: 1}))
		return nn.NewSequential(l1, nn.NewTanh(), l2)
	}
	src, dst := build(), build()

	state := src.StateDict()
	assert.Len(t, state, 4)
	assert.Contains(t, state, "0.W")
	assert.Contains(t, state, "2.b")

	require.NoError(t, dst.LoadStateDict(state))
	x := tensor.Ones(tensor.Shape{2, 3}, tensor.Float32)
	assert.Equal(t, src.Forward(x).Data(), dst.Forward(x).Data())

	state["0.W"] = tensor.Ones(tensor.Shape{3, 3}, tensor.Float32)
	assert.Error(t, dst.LoadStateDict(state))
}

func TestSequential_ResetState(t *testing.T) {
	gru := must.M1(nn.NewStatefulGRU(nn.StatefulGRUConfig{InSize: 2, OutSize: 2}, nn.DefaultOptions()))
	model := nn.NewSequential(gru, nn.NewSigmoid())

	model.Forward(tensor.Ones(tensor.Shape{1, 2}, tensor.Float32))
	require.NotNil(t, gru.State())
	model.ResetState()
	assert.Nil(t, gru.State())
}
