// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package link_test

import (
	"testing"

	"github.com/born-ml/links/backend/cpu"
	"github.com/born-ml/links/link"
	"github.com/born-ml/links/nn"
	"github.com/born-ml/links/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPersistAndMaterialize(t *testing.T) {
	d := link.NewConvolution2D(1, 4, 3)
	d.Pad = 1
	d.UseWeightNorm = true
	d.InitialW = tensor.Ones(tensor.Shape{4, 1, 3, 3}, tensor.Float32)

	b, err := link.Encode(d)
	require.NoError(t, err)
	restored, err := link.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, link.KindConvolution2D, restored.Kind())

	unit, err := link.Materialize(restored, cpu.New())
	require.NoError(t, err)
	conv, ok := unit.(*nn.WeightNormConv2D)
	require.True(t, ok, "got %T", unit)
	assert.InDeltaSlice(t, d.InitialW.Data(), conv.W().Data(), 1e-6)

	y := conv.Forward(tensor.Ones(tensor.Shape{1, 1, 6, 6}, tensor.Float32))
	assert.Equal(t, tensor.Shape{1, 4, 6, 6}, y.Shape())
	assert.InDelta(t, 9.0, y.At(0, 0, 3, 3), 1e-5)
}

func TestComposites(t *testing.T) {
	fw := cpu.New(cpu.WithSeed(3))

	merge, err := link.Materialize(link.NewMerge(2, 3), fw)
	require.NoError(t, err)
	_, err = merge.(*link.MergeUnit).Forward(tensor.Ones(tensor.Shape{1, 2}, tensor.Float32))
	require.ErrorIs(t, err, link.ErrArity)

	gauss, err := link.Materialize(link.NewGaussian(4, 2), fw)
	require.NoError(t, err)
	mean, lnVar := gauss.(*link.GaussianUnit).Forward(tensor.Ones(tensor.Shape{3, 4}, tensor.Float32))
	assert.Equal(t, tensor.Shape{3, 2}, mean.Shape())
	assert.Equal(t, tensor.Shape{3, 2}, lnVar.Shape())
}

func TestKindsAndSlots(t *testing.T) {
	for _, k := range link.Kinds() {
		d, err := link.New(k)
		require.NoError(t, err)
		for _, name := range link.WeightSlots(d) {
			assert.Equal(t, "_", name[:1])
		}
	}
	_, err := link.ParseKind("Bilinear")
	require.ErrorIs(t, err, link.ErrUnknownKind)
}
