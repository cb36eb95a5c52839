package nn

import (
	"fmt"

	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// BatchNormalizationConfig holds the constructor arguments of a batch
// normalization layer.
type BatchNormalizationConfig struct {
	Size     int     // number of channels (axis 1 of the input)
	Decay    float64 // running-average decay, in [0, 1)
	Eps      float64 // added to the variance
	DType    tensor.DataType
	UseGamma bool
	UseBeta  bool
	UseCudnn bool
}

// BatchNormalization normalizes its input per channel.
//
// Formula: y = gamma * (x - mean) / sqrt(var + eps) + beta
//
// In training mode mean and var are the statistics of the current batch and the
// running averages are updated:
//
//	avg_mean = decay*avg_mean + (1-decay)*mean
//	avg_var  = decay*avg_var  + (1-decay)*var*m/(m-1)
//
// where m is the number of values reduced per channel. In test mode the running
// averages are used instead.
//
// Input shape: [batch, size, ...]; every axis except 1 is reduced.
type BatchNormalization struct {
	size  int
	decay float64
	eps   float64
	dtype tensor.DataType

	gamma *Parameter // [size] or nil
	beta  *Parameter // [size] or nil

	avgMean  *tensor.Tensor
	avgVar   *tensor.Tensor
	training bool
}

// NewBatchNormalization creates a batch normalization layer in training mode.
// gamma starts at ones, beta at zeros, the running mean at zeros and the
// running variance at ones.
func NewBatchNormalization(cfg BatchNormalizationConfig) (*BatchNormalization, error) {
	if cfg.Size <= 0 {
		return nil, errors.Errorf("batch_normalization: invalid size %d", cfg.Size)
	}
	if cfg.Decay < 0 || cfg.Decay >= 1 {
		return nil, errors.Errorf("batch_normalization: decay must be in [0, 1), got %g", cfg.Decay)
	}
	if cfg.Eps <= 0 {
		return nil, errors.Errorf("batch_normalization: eps must be positive, got %g", cfg.Eps)
	}
	shape := tensor.Shape{cfg.Size}
	bn := &BatchNormalization{
		size:     cfg.Size,
		decay:    cfg.Decay,
		eps:      cfg.Eps,
		dtype:    cfg.DType,
		avgMean:  tensor.Zeros(shape, cfg.DType),
		avgVar:   tensor.Ones(shape, cfg.DType),
		training: true,
	}
	if cfg.UseGamma {
		bn.gamma = NewParameter("gamma", tensor.Ones(shape, cfg.DType))
	}
	if cfg.UseBeta {
		bn.beta = NewParameter("beta", tensor.Zeros(shape, cfg.DType))
	}
	return bn, nil
}

// SetTraining switches between batch statistics (true) and running averages (false).
func (bn *BatchNormalization) SetTraining(training bool) {
	bn.training = training
}

// Training reports whether batch statistics are used.
func (bn *BatchNormalization) Training() bool {
	return bn.training
}

// Forward normalizes input per channel.
func (bn *BatchNormalization) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) < 2 || shape[1] != bn.size {
		panic(fmt.Sprintf("BatchNormalization.Forward: expected input [batch, %d, ...], got %v", bn.size, shape))
	}

	// Move channels last and flatten the rest: [m, size].
	rank := len(shape)
	toLast := make([]int, 0, rank)
	toLast = append(toLast, 0)
	for i := 2; i < rank; i++ {
		toLast = append(toLast, i)
	}
	toLast = append(toLast, 1)
	moved := input.Permute(toLast...)
	x := moved.Reshape(-1, bn.size)

	mean, variance := bn.avgMean, bn.avgVar
	if bn.training {
		m := x.Shape()[0]
		mean = x.Mean(0)
		centered := x.Sub(mean.Reshape(1, -1))
		variance = centered.Mul(centered).Mean(0)
		adjust := 1.0
		if m > 1 {
			adjust = float64(m) / float64(m-1)
		}
		bn.avgMean = bn.avgMean.MulScalar(bn.decay).Add(mean.MulScalar(1 - bn.decay)).AsType(bn.dtype)
		bn.avgVar = bn.avgVar.MulScalar(bn.decay).Add(variance.MulScalar((1 - bn.decay) * adjust)).AsType(bn.dtype)
	}

	y := x.Sub(mean.Reshape(1, -1)).Div(variance.AddScalar(bn.eps).Sqrt().Reshape(1, -1))
	if bn.gamma != nil {
		y = y.Mul(bn.gamma.Tensor().Reshape(1, -1))
	}
	if bn.beta != nil {
		y = y.Add(bn.beta.Tensor().Reshape(1, -1))
	}

	// Restore the original layout.
	back := make([]int, rank)
	for i, axis := range toLast {
		back[axis] = i
	}
	return y.Reshape(moved.Shape()...).Permute(back...)
}

// Parameters returns [gamma, beta], omitting disabled ones.
func (bn *BatchNormalization) Parameters() []*Parameter {
	var params []*Parameter
	if bn.gamma != nil {
		params = append(params, bn.gamma)
	}
	if bn.beta != nil {
		params = append(params, bn.beta)
	}
	return params
}

// RunningMean returns the running mean.
func (bn *BatchNormalization) RunningMean() *tensor.Tensor {
	return bn.avgMean
}

// RunningVar returns the running variance.
func (bn *BatchNormalization) RunningVar() *tensor.Tensor {
	return bn.avgVar
}

// DType returns the dtype of the parameters and running statistics.
func (bn *BatchNormalization) DType() tensor.DataType {
	return bn.dtype
}
