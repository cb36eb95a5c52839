// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the neural network units that link descriptors
// materialize into.
//
// # Overview
//
// This package contains:
//   - Units: Unit, Module, Stateful, Parameter
//   - Layers: Linear, Conv2D, Deconv2D and their weight-normalized forms, EmbedID
//   - Recurrent cells: GRU, StatefulGRU, LSTM, StatelessLSTM, StatefulPeepholeLSTM
//   - Normalization: BatchNormalization
//   - Activations: ReLU, Sigmoid, Tanh, LeakyReLU, ELU, Softmax
//   - Utilities: Sequential, CountParameters
//   - Initialization: Constant, Normal, Uniform, GlorotNormal, GlorotUniform, HeNormal, Array
//
// Layers are normally built by a framework (see backend/cpu) rather than by
// hand:
//
//	fw := cpu.New(cpu.WithSeed(1))
//	layer, err := fw.Linear(nn.LinearConfig{InSize: 784, OutSize: 128})
//	if err != nil {
//	    return err
//	}
//	y := layer.Forward(x)
//
// # Weight Injection
//
// Every layer config carries an optional initial weight. Plain layers take it
// as InitialW; weight-normalized layers take it as InitialV, the direction of
// the reparameterized weight W = g·V/‖V‖.
//
// # Errors
//
// Constructors return an error for invalid hyperparameters. Forward panics on
// inputs of the wrong shape.
package nn
