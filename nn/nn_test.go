// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn_test

import (
	"testing"

	"github.com/born-ml/links/backend/cpu"
	"github.com/born-ml/links/nn"
	"github.com/born-ml/links/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestModuleInterface verifies that framework-built layers compose through the
// public aliases.
func TestModuleInterface(t *testing.T) {
	fw := cpu.New(cpu.WithSeed(1))

	hidden, err := fw.Linear(nn.LinearConfig{InSize: 10, OutSize: 5})
	require.NoError(t, err)
	out, err := fw.Linear(nn.LinearConfig{InSize: 5, OutSize: 2, NoBias: true})
	require.NoError(t, err)

	tests := []struct {
		name   string
		module nn.Module
		params int
	}{
		{"Linear", hidden, 10*5 + 5},
		{"Sequential", nn.NewSequential(hidden, nn.NewReLU(), out), 10*5 + 5 + 5*2},
		{"Activation", nn.NewTanh(), 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			y := tt.module.Forward(tensor.Ones(tensor.Shape{2, 10}, tensor.Float32))
			assert.Equal(t, 2, y.Shape()[0])
			assert.Equal(t, tt.params, nn.CountParameters(tt.module))
		})
	}
}

func TestInitializerByName(t *testing.T) {
	init, err := nn.InitializerByName("Normal", 0.02)
	require.NoError(t, err)
	assert.Equal(t, &nn.Normal{Scale: 0.02}, init)

	_, err = nn.InitializerByName("Orthogonal", 1)
	require.Error(t, err)
}

func TestActivationByName(t *testing.T) {
	relu, err := nn.Activation("relu")
	require.NoError(t, err)
	x, err := tensor.FromSlice([]float64{-1, 2}, tensor.Shape{1, 2}, tensor.Float32)
	require.NoError(t, err)
	assert.Equal(t, []float64{0, 2}, relu.Forward(x).Data())
}
