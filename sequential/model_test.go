// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sequential_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/born-ml/links/backend/cpu"
	"github.com/born-ml/links/link"
	"github.com/born-ml/links/nn"
	"github.com/born-ml/links/sequential"
	"github.com/born-ml/links/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mlp(t *testing.T) *sequential.Model {
	t.Helper()
	m := sequential.New("mlp")
	m.Add(link.NewLinear(4, 3))
	require.NoError(t, m.AddActivation("relu"))
	m.Add(link.NewLinear(3, 2))
	return m
}

func TestBuild_Forward(t *testing.T) {
	m := mlp(t)
	net, err := m.Build(cpu.New(cpu.WithSeed(1)))
	require.NoError(t, err)

	y := net.Forward(tensor.Ones(tensor.Shape{5, 4}, tensor.Float32))
	assert.Equal(t, tensor.Shape{5, 2}, y.Shape())
	assert.Equal(t, 4*3+3+3*2+2, nn.CountParameters(net))
	assert.Len(t, net.StateDict(), 4)
}

func TestBuild_DefaultInitializer(t *testing.T) {
	m := mlp(t)
	m.WeightInitializer, m.WeightInitStd = "Constant", 0.5

	net, err := m.Build(cpu.New())
	require.NoError(t, err)

	// h = relu(4·0.5) = 2 per unit, y = 3·2·0.5 = 3.
	y := net.Forward(tensor.Ones(tensor.Shape{1, 4}, tensor.Float32))
	assert.Equal(t, []float64{3, 3}, y.Data())

	// Stages keep their empty slots.
	assert.Nil(t, m.Stages()[0].Link.(*link.Linear).InitialW)
}

func TestBuild_DefaultInitializerKeepsInjectedWeights(t *testing.T) {
	lin := link.NewLinear(2, 1)
	lin.NoBias = true
	lin.InitialW = must.M1(tensor.FromSlice([]float64{1, -1}, tensor.Shape{1, 2}, tensor.Float32))

	m := sequential.New("injected").Add(lin)
	m.WeightInitializer = "Normal"

	net, err := m.Build(cpu.New())
	require.NoError(t, err)
	y := net.Forward(must.M1(tensor.FromSlice([]float64{3, 1}, tensor.Shape{1, 2}, tensor.Float32)))
	assert.Equal(t, []float64{2}, y.Data())
}

func TestBuild_SeedIsDeterministic(t *testing.T) {
	build := func() map[string]*tensor.Tensor {
		m := mlp(t)
		m.WeightInitializer, m.WeightInitStd, m.Seed = "GlorotNormal", 0.05, 7
		net, err := m.Build(cpu.New())
		require.NoError(t, err)
		return net.StateDict()
	}
	a, b := build(), build()
	for name, w := range a {
		assert.True(t, w.Equal(b[name]), name)
	}
}

func TestBuild_LazyLinearStaysLazy(t *testing.T) {
	m := sequential.New("lazy").Add(link.NewLinear(0, 2))
	m.WeightInitializer = "GlorotNormal"
	net, err := m.Build(cpu.New())
	require.NoError(t, err)
	assert.Equal(t, 2, nn.CountParameters(net))

	y := net.Forward(tensor.Ones(tensor.Shape{3, 6}, tensor.Float32))
	assert.Equal(t, tensor.Shape{3, 2}, y.Shape())
	assert.Equal(t, 6*2+2, nn.CountParameters(net))
}

func TestBuild_ReshapeAndConvolution(t *testing.T) {
	conv := link.NewConvolution2D(1, 1, 2)
	conv.NoBias = true
	conv.InitialW = tensor.Ones(tensor.Shape{1, 1, 2, 2}, tensor.Float32)

	m := sequential.New("conv").AddReshape(-1, 1, 2, 2).Add(conv).AddReshape(-1, 1)
	net, err := m.Build(cpu.New())
	require.NoError(t, err)

	x := must.M1(tensor.FromSlice([]float64{1, 2, 3, 4, 5, 6, 7, 8}, tensor.Shape{2, 4}, tensor.Float32))
	y := net.Forward(x)
	assert.Equal(t, tensor.Shape{2, 1}, y.Shape())
	assert.Equal(t, []float64{10, 26}, y.Data())
}

func TestBuild_Errors(t *testing.T) {
	_, err := sequential.New("empty").Build(cpu.New())
	require.Error(t, err)

	_, err = sequential.New("merge").Add(link.NewMerge(2, 3)).Build(cpu.New())
	require.ErrorIs(t, err, sequential.ErrNotModule)
	assert.Contains(t, err.Error(), "stage 0 (Merge)")

	_, err = sequential.New("bad").Add(link.NewLinear(2, 0)).Build(cpu.New())
	require.Error(t, err)

	m := sequential.New("init")
	m.WeightInitializer = "Orthogonal"
	_, err = m.Add(link.NewLinear(1, 1)).Build(cpu.New())
	require.Error(t, err)

	require.Error(t, sequential.New("act").AddActivation("crelu"))

	_, err = sequential.New("reshape").AddReshape(-1, -1).Build(cpu.New())
	require.Error(t, err)
}

func TestNetwork_Summary(t *testing.T) {
	net, err := mlp(t).Build(cpu.New())
	require.NoError(t, err)

	rows := net.Summary()
	require.Len(t, rows, 3)
	assert.Equal(t, sequential.SummaryRow{Index: 1, Stage: "relu", Unit: "*nn.ReLU", Params: 0}, rows[1])
	assert.Equal(t, "Linear", rows[2].Stage)
	assert.Equal(t, 8, rows[2].Params)

	out := net.String()
	assert.True(t, strings.HasPrefix(out, `Model "mlp"`))
	assert.Contains(t, out, "Total parameters: 23\n")
}

func TestStage_String(t *testing.T) {
	assert.Equal(t, "reshape(-1, 64, 4, 4)", sequential.Stage{Reshape: []int{-1, 64, 4, 4}}.String())
	assert.Equal(t, "elu", sequential.Stage{Activation: "elu"}.String())
	assert.Equal(t, "GRU", sequential.Stage{Link: link.NewGRU(3)}.String())
}

func TestSaveLoad(t *testing.T) {
	lin := link.NewLinear(2, 3)
	lin.UseWeightNorm = true
	lin.InitialW = tensor.Ones(tensor.Shape{3, 2}, tensor.Float32)
	gru := link.NewStatefulGRU(3, 3)
	gru.Init = &nn.Normal{Scale: 0.1}

	m := sequential.New("roundtrip").Add(lin, link.NewBatchNormalization(3))
	require.NoError(t, m.AddActivation("tanh"))
	m.Add(gru).AddReshape(-1, 3)
	m.WeightInitializer, m.WeightInitStd, m.Seed = "GlorotNormal", 0.05, 11

	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			var buf bytes.Buffer
			var loaded *sequential.Model
			var err error
			if format == "json" {
				require.NoError(t, m.Save(&buf))
				loaded, err = sequential.Load(&buf)
			} else {
				require.NoError(t, m.SaveYAML(&buf))
				loaded, err = sequential.LoadYAML(&buf)
			}
			require.NoError(t, err)
			assert.Equal(t, m.ID, loaded.ID)
			assert.Equal(t, m.Name, loaded.Name)
			assert.Equal(t, m.WeightInitializer, loaded.WeightInitializer)
			assert.Equal(t, m.WeightInitStd, loaded.WeightInitStd)
			assert.Equal(t, m.Seed, loaded.Seed)
			assert.Equal(t, m.Stages(), loaded.Stages())

			_, err = loaded.Build(cpu.New())
			require.NoError(t, err)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := sequential.Load(strings.NewReader(`{"version": 2, "id": "` + sequential.New("").ID.String() + `"}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "version")

	_, err = sequential.Load(strings.NewReader(`{"version": 1, "id": "not-a-uuid"}`))
	require.Error(t, err)

	_, err = sequential.LoadYAML(strings.NewReader("version: 1\nid: " + sequential.New("").ID.String() + "\nstages:\n  - {}\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty")

	_, err = sequential.Load(strings.NewReader(`{"version": 1, "id": "` + sequential.New("").ID.String() + `", "stages": [{"link": {"_link": "Linear", "depth": 2}}]}`))
	require.ErrorIs(t, err, link.ErrUnknownAttribute)
}
