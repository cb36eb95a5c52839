package nn_test

import (
	"testing"

	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbedID_Forward_Basic(t *testing.T) {
	w := mustTensor([]float64{
		1, 2, // embedding 0
		3, 4, // embedding 1
		5, 6, // embedding 2
	}, 3, 2)
	embed, err := nn.NewEmbedID(nn.EmbedIDConfig{InSize: 3, OutSize: 2, InitialW: w}, nn.DefaultOptions())
	require.NoError(t, err)

	out := embed.Forward(mustTensor([]float64{0, 2, 1, 1}, 2, 2))
	assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
	assert.Equal(t, []float64{1, 2, 5, 6, 3, 4, 3, 4}, out.Data())
}

func TestEmbedID_IgnoreLabel(t *testing.T) {
	ignore := -1
	w := mustTensor([]float64{1, 2, 3, 4}, 2, 2)
	embed, err := nn.NewEmbedID(nn.EmbedIDConfig{InSize: 2, OutSize: 2, IgnoreLabel: &ignore, InitialW: w}, nn.DefaultOptions())
	require.NoError(t, err)

	out := embed.Forward(mustTensor([]float64{-1, 1}, 2))
	assert.Equal(t, []float64{0, 0, 3, 4}, out.Data())
}

func TestEmbedID_InvalidIDs(t *testing.T) {
	embed, err := nn.NewEmbedID(nn.EmbedIDConfig{InSize: 4, OutSize: 3}, nn.NewCPU(nn.WithSeed(7)).Options())
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 3}, embed.Weight().Tensor().Shape())

	assert.Panics(t, func() { embed.Forward(mustTensor([]float64{4}, 1)) }, "out of range")
	assert.Panics(t, func() { embed.Forward(mustTensor([]float64{-1}, 1)) }, "negative without ignore label")
	assert.Panics(t, func() { embed.Forward(mustTensor([]float64{0.5}, 1)) }, "not an integer")
}

func TestEmbedID_Errors(t *testing.T) {
	_, err := nn.NewEmbedID(nn.EmbedIDConfig{InSize: 0, OutSize: 3}, nn.DefaultOptions())
	assert.Error(t, err)

	_, err = nn.NewEmbedID(nn.EmbedIDConfig{InSize: 2, OutSize: 3, InitialW: tensor.Ones(tensor.Shape{3, 2}, tensor.Float32)}, nn.DefaultOptions())
	assert.Error(t, err)
}
