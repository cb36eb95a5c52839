package nn_test

import (
	"math"
	"testing"

	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultBN(size int) nn.BatchNormalizationConfig {
	return nn.BatchNormalizationConfig{
		Size: size, Decay: 0.9, Eps: 2e-5, DType: tensor.Float32, UseGamma: true, UseBeta: true,
	}
}

func TestBatchNormalization_TrainingAndTest(t *testing.T) {
	bn, err := nn.NewBatchNormalization(defaultBN(1))
	require.NoError(t, err)
	assert.True(t, bn.Training())

	x := mustTensor([]float64{1, 3}, 2, 1)
	out := bn.Forward(x)
	want := 1 / math.Sqrt(1+2e-5)
	assert.InDeltaSlice(t, []float64{-want, want}, out.Data(), 1e-5)

	// Unbiased variance 2 enters the running average.
	assert.InDeltaSlice(t, []float64{0.2}, bn.RunningMean().Data(), 1e-6)
	assert.InDeltaSlice(t, []float64{1.1}, bn.RunningVar().Data(), 1e-6)

	bn.SetTraining(false)
	out = bn.Forward(mustTensor([]float64{1}, 1, 1))
	assert.InDelta(t, 0.8/math.Sqrt(1.1+2e-5), out.Item(), 1e-5)
	assert.InDeltaSlice(t, []float64{0.2}, bn.RunningMean().Data(), 1e-6, "test mode leaves the averages alone")
}

func TestBatchNormalization_PerChannel4D(t *testing.T) {
	bn := must.M1(nn.NewBatchNormalization(defaultBN(2)))

	// Channel 0 holds 0..3, channel 1 holds 10*(0..3).
	data := []float64{0, 1, 2, 3, 0, 10, 20, 30}
	out := bn.Forward(mustTensor(data, 1, 2, 2, 2))
	require.Equal(t, tensor.Shape{1, 2, 2, 2}, out.Shape())

	for c := 0; c < 2; c++ {
		sum := 0.0
		for i := 0; i < 4; i++ {
			sum += out.At(0, c, i/2, i%2)
		}
		assert.InDelta(t, 0, sum, 1e-5, "channel %d is centered", c)
	}
	// Both channels normalize to the same values.
	assert.InDelta(t, out.At(0, 0, 1, 1), out.At(0, 1, 1, 1), 1e-4)
	assert.InDeltaSlice(t, []float64{0.15, 1.5}, bn.RunningMean().Data(), 1e-5)
}

func TestBatchNormalization_Options(t *testing.T) {
	cfg := defaultBN(3)
	cfg.UseGamma = false
	cfg.DType = tensor.Float16
	bn := must.M1(nn.NewBatchNormalization(cfg))

	params := bn.Parameters()
	require.Len(t, params, 1)
	assert.Equal(t, "beta", params[0].Name())
	assert.Equal(t, tensor.Float16, bn.DType())
	assert.Equal(t, tensor.Float16, bn.RunningVar().DType())
}

func TestBatchNormalization_Errors(t *testing.T) {
	for _, mutate := range []func(*nn.BatchNormalizationConfig){
		func(c *nn.BatchNormalizationConfig) { c.Size = 0 },
		func(c *nn.BatchNormalizationConfig) { c.Decay = 1 },
		func(c *nn.BatchNormalizationConfig) { c.Eps = 0 },
	} {
		cfg := defaultBN(2)
		mutate(&cfg)
		_, err := nn.NewBatchNormalization(cfg)
		assert.Error(t, err)
	}

	bn := must.M1(nn.NewBatchNormalization(defaultBN(2)))
	assert.Panics(t, func() { bn.Forward(tensor.Ones(tensor.Shape{4, 3}, tensor.Float32)) })
}
