// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu_test

import (
	"testing"

	"github.com/born-ml/links/backend/cpu"
	"github.com/born-ml/links/link"
	"github.com/born-ml/links/nn"
	"github.com/born-ml/links/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Options(t *testing.T) {
	fw := cpu.New(cpu.WithDType(tensor.Float64), cpu.WithWeightInit(&nn.Constant{Value: 0.5}), cpu.WithWorkers(1))
	assert.Equal(t, "cpu", fw.Name())
	assert.Equal(t, tensor.Float64, fw.Options().DType)
	assert.False(t, fw.Options().Parallel.Enabled)

	unit, err := link.Materialize(link.NewLinear(2, 2), fw)
	require.NoError(t, err)
	lin := unit.(*nn.Linear)
	assert.Equal(t, []float64{0.5, 0.5, 0.5, 0.5}, lin.Weight().Tensor().Data())
	assert.Equal(t, tensor.Float64, lin.Weight().Tensor().DType())
}

func TestWithWorkers_ConvolutionMatchesSequential(t *testing.T) {
	conv := link.NewConvolution2D(2, 3, 3)
	conv.Pad = 1
	x := tensor.Randn(tensor.Shape{2, 2, 5, 5}, tensor.Float32, 1, nil)

	var outs []*tensor.Tensor
	for _, workers := range []int{1, 4} {
		unit, err := link.Materialize(conv, cpu.New(cpu.WithSeed(9), cpu.WithWorkers(workers)))
		require.NoError(t, err)
		outs = append(outs, unit.(nn.Module).Forward(x))
	}
	assert.Equal(t, tensor.Shape{2, 3, 5, 5}, outs[0].Shape())
	assert.True(t, outs[0].Equal(outs[1]))
}
