package nn_test

import (
	"math"
	"testing"

	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestActivations(t *testing.T) {
	x := mustTensor([]float64{-2, -0.5, 0, 1.5}, 1, 4)

	tests := []struct {
		name string
		want []float64
	}{
		{"relu", []float64{0, 0, 0, 1.5}},
		{"leaky_relu", []float64{-0.4, -0.1, 0, 1.5}},
		{"elu", []float64{math.Expm1(-2), math.Expm1(-0.5), 0, 1.5}},
		{"tanh", []float64{math.Tanh(-2), math.Tanh(-0.5), 0, math.Tanh(1.5)}},
		{"sigmoid", []float64{sigmoid(-2), sigmoid(-0.5), 0.5, sigmoid(1.5)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			act, err := nn.Activation(tt.name)
			require.NoError(t, err)
			assert.Nil(t, act.Parameters())
			assert.InDeltaSlice(t, tt.want, act.Forward(x).Data(), 1e-6)
		})
	}
}

func TestSoftmax(t *testing.T) {
	x := mustTensor([]float64{1, 2, 3, 1000, 1000, 1000}, 2, 3)
	out := nn.NewSoftmax().Forward(x)

	e := []float64{math.Exp(-2), math.Exp(-1), 1}
	total := e[0] + e[1] + e[2]
	assert.InDeltaSlice(t, []float64{e[0] / total, e[1] / total, e[2] / total}, out.Data()[:3], 1e-6)
	// Large inputs do not overflow.
	assert.InDeltaSlice(t, []float64{1.0 / 3, 1.0 / 3, 1.0 / 3}, out.Data()[3:], 1e-6)
}

func TestSoftmax_ChannelAxis(t *testing.T) {
	// [1, 2, 2]: softmax runs over axis 1 for each trailing position.
	out := nn.NewSoftmax().Forward(mustTensor([]float64{0, 5, 0, 5}, 1, 2, 2))
	assert.InDeltaSlice(t, []float64{0.5, 0.5, 0.5, 0.5}, out.Data(), 1e-6)
	assert.Panics(t, func() { nn.NewSoftmax().Forward(tensor.Ones(tensor.Shape{3}, tensor.Float32)) })
}

func TestActivation_Unknown(t *testing.T) {
	_, err := nn.Activation("swish")
	assert.Error(t, err)
	assert.Contains(t, nn.ActivationNames(), "softmax")
}
