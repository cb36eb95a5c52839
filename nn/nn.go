// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/links/internal/nn"
)

// Layer configs

// LinearConfig holds the constructor arguments of a Linear layer.
type LinearConfig = nn.LinearConfig

// WeightNormLinearConfig holds the constructor arguments of a weight-normalized
// Linear layer.
type WeightNormLinearConfig = nn.WeightNormLinearConfig

// Convolution2DConfig holds the constructor arguments of a 2D convolution.
type Convolution2DConfig = nn.Convolution2DConfig

// WeightNormConvolution2DConfig holds the constructor arguments of a
// weight-normalized 2D convolution.
type WeightNormConvolution2DConfig = nn.WeightNormConvolution2DConfig

// Deconvolution2DConfig holds the constructor arguments of a transposed convolution.
type Deconvolution2DConfig = nn.Deconvolution2DConfig

// WeightNormDeconvolution2DConfig holds the constructor arguments of a
// weight-normalized transposed convolution.
type WeightNormDeconvolution2DConfig = nn.WeightNormDeconvolution2DConfig

// DilatedConvolution2DConfig holds the constructor arguments of a dilated convolution.
type DilatedConvolution2DConfig = nn.DilatedConvolution2DConfig

// EmbedIDConfig holds the constructor arguments of an embedding lookup.
type EmbedIDConfig = nn.EmbedIDConfig

// GRUConfig holds the constructor arguments of a stateless GRU cell.
type GRUConfig = nn.GRUConfig

// StatefulGRUConfig holds the constructor arguments of a stateful GRU.
type StatefulGRUConfig = nn.StatefulGRUConfig

// LSTMConfig holds the constructor arguments of a stateful LSTM.
type LSTMConfig = nn.LSTMConfig

// StatelessLSTMConfig holds the constructor arguments of a stateless LSTM cell.
type StatelessLSTMConfig = nn.StatelessLSTMConfig

// StatefulPeepholeLSTMConfig holds the constructor arguments of a peephole LSTM.
type StatefulPeepholeLSTMConfig = nn.StatefulPeepholeLSTMConfig

// BatchNormalizationConfig holds the constructor arguments of batch normalization.
type BatchNormalizationConfig = nn.BatchNormalizationConfig

// Layers

// Linear is a fully connected layer: y = x·Wᵀ + b.
type Linear = nn.Linear

// WeightNormLinear is a Linear layer with weight W = g·V/‖V‖.
type WeightNormLinear = nn.WeightNormLinear

// Conv2D is a 2D convolution, optionally dilated.
type Conv2D = nn.Conv2D

// WeightNormConv2D is a weight-normalized 2D convolution.
type WeightNormConv2D = nn.WeightNormConv2D

// Deconv2D is a 2D transposed convolution.
type Deconv2D = nn.Deconv2D

// WeightNormDeconv2D is a weight-normalized transposed convolution.
type WeightNormDeconv2D = nn.WeightNormDeconv2D

// EmbedID maps integer ids to dense vectors.
type EmbedID = nn.EmbedID

// GRU is a stateless GRU cell driven by Step.
type GRU = nn.GRU

// StatefulGRU is a GRU that carries its hidden state across Forward calls.
type StatefulGRU = nn.StatefulGRU

// LSTM is a stateful LSTM.
type LSTM = nn.LSTM

// StatelessLSTM is an LSTM cell whose caller owns the (c, h) state.
type StatelessLSTM = nn.StatelessLSTM

// StatefulPeepholeLSTM is a stateful LSTM with peephole connections.
type StatefulPeepholeLSTM = nn.StatefulPeepholeLSTM

// BatchNormalization normalizes its input per channel.
type BatchNormalization = nn.BatchNormalization

// Sequential chains modules.
type Sequential = nn.Sequential

// NewSequential creates a Sequential container.
//
// Example:
//
//	model := nn.NewSequential(hidden, nn.NewReLU(), out)
func NewSequential(modules ...Module) *Sequential {
	return nn.NewSequential(modules...)
}

// Activations

// ReLU represents the Rectified Linear Unit activation function.
type ReLU = nn.ReLU

// NewReLU creates a new ReLU activation layer.
func NewReLU() *ReLU {
	return nn.NewReLU()
}

// Sigmoid represents the logistic activation function.
type Sigmoid = nn.Sigmoid

// NewSigmoid creates a new Sigmoid activation layer.
func NewSigmoid() *Sigmoid {
	return nn.NewSigmoid()
}

// Tanh represents the hyperbolic tangent activation function.
type Tanh = nn.Tanh

// NewTanh creates a new Tanh activation layer.
func NewTanh() *Tanh {
	return nn.NewTanh()
}

// LeakyReLU represents max(x, slope·x).
type LeakyReLU = nn.LeakyReLU

// NewLeakyReLU creates a new LeakyReLU activation layer.
func NewLeakyReLU(slope float64) *LeakyReLU {
	return nn.NewLeakyReLU(slope)
}

// ELU represents the exponential linear unit.
type ELU = nn.ELU

// NewELU creates a new ELU activation layer.
func NewELU(alpha float64) *ELU {
	return nn.NewELU(alpha)
}

// Softmax normalizes over axis 1.
type Softmax = nn.Softmax

// NewSoftmax creates a new Softmax activation layer.
func NewSoftmax() *Softmax {
	return nn.NewSoftmax()
}

// Activation returns the activation registered under name
// ("relu", "sigmoid", "tanh", "softmax", "leaky_relu", "elu").
func Activation(name string) (Module, error) {
	return nn.Activation(name)
}

// Initializers

// Initializer produces initial parameter values.
type Initializer = nn.Initializer

// Constant fills the parameter with Value.
type Constant = nn.Constant

// Normal draws from N(0, Scale²).
type Normal = nn.Normal

// Uniform draws from U(-Scale, Scale).
type Uniform = nn.Uniform

// GlorotNormal draws from a Glorot (Xavier) normal distribution.
type GlorotNormal = nn.GlorotNormal

// GlorotUniform draws from a Glorot (Xavier) uniform distribution.
type GlorotUniform = nn.GlorotUniform

// HeNormal draws from a He normal distribution.
type HeNormal = nn.HeNormal

// Array copies a fixed tensor.
type Array = nn.Array

// InitializerByName returns a scaled initializer by kind name, e.g. "GlorotNormal".
func InitializerByName(name string, scale float64) (Initializer, error) {
	return nn.InitializerByName(name, scale)
}
