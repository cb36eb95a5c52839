package link_test

import (
	"encoding/json"
	"testing"

	"github.com/born-ml/links/internal/link"
	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustTensor(data []float64, shape ...int) *tensor.Tensor {
	return must.M1(tensor.FromSlice(data, shape, tensor.Float32))
}

func intPtr(v int) *int { return &v }

// populated returns one descriptor per kind with non-default values and, where
// the kind has them, set hidden slots.
func populated() []link.Descriptor {
	w := mustTensor([]float64{1, 2, 3, 4, 5, 6}, 2, 3)

	lin := link.NewLinear(3, 2)
	lin.Bias, lin.UseWeightNorm, lin.InitialW = 0.5, true, w

	conv := link.NewConvolution2D(1, 2, 3)
	conv.Stride, conv.Pad, conv.NoBias = 2, 1, true
	conv.InitialW = tensor.Ones(tensor.Shape{2, 1, 3, 3}, tensor.Float32)

	deconv := link.NewDeconvolution2D(2, 1, 4)
	deconv.Stride, deconv.Outsize, deconv.UseCudnn = 2, []int{8, 8}, false

	dilated := link.NewDilatedConvolution2D(3, 4, 3)
	dilated.Dilate, dilated.Pad = 2, 2

	embed := link.NewEmbedID(10, 4)
	embed.IgnoreLabel = intPtr(-1)

	gru := link.NewGRU(8)
	gru.NInputs = intPtr(5)
	gru.Init, gru.InnerInit = &nn.Normal{Scale: 0.1}, &nn.Constant{Value: 0.5}

	sgru := link.NewStatefulGRU(4, 6)
	sgru.BiasInit = 0.25
	sgru.Init = &nn.GlorotNormal{Scale: 1}

	lstm := link.NewLSTM(4, 3)
	lstm.ForgetBiasInit = &nn.Constant{Value: 2}

	slstm := link.NewStatelessLSTM(4, 3)
	slstm.UpwardInit = &nn.Uniform{Scale: 0.05}

	bn := link.NewBatchNormalization(16)
	bn.Decay, bn.DType, bn.UseBeta = 0.99, "float64", false

	merge := link.NewMerge(2, 3)
	merge.UseWeightNorm = true
	merge.SetInitialW(1, mustTensor([]float64{1, 0, 0, 1, 1, 1}, 3, 2))

	gauss := link.NewGaussian(5, 2)
	gauss.InitialWLnVar = tensor.Zeros(tensor.Shape{2, 5}, tensor.Float32)

	mbd := link.NewMinibatchDiscrimination(6, 4)
	mbd.NDimKernel = 3

	return []link.Descriptor{
		lin, conv, deconv, dilated, embed, gru, sgru, lstm, slstm,
		link.NewStatefulPeepholeLSTM(2, 2), bn, merge, gauss, mbd,
	}
}

func TestPopulated_CoversEveryKind(t *testing.T) {
	var kinds []link.Kind
	for _, d := range populated() {
		kinds = append(kinds, d.Kind())
	}
	assert.Equal(t, link.Kinds(), kinds)
}

func TestExportImport_RoundTrip(t *testing.T) {
	for _, d := range populated() {
		t.Run(d.Kind().String(), func(t *testing.T) {
			attrs := link.Export(d)
			assert.Equal(t, d.Kind().String(), attrs[link.KindKey])

			fresh := must.M1(link.New(d.Kind()))
			require.NoError(t, link.Import(fresh, attrs))
			assert.Equal(t, attrs, link.Export(fresh))
			assert.Equal(t, d, fresh)
		})
	}
}

func TestImport_IsIdempotent(t *testing.T) {
	d := populated()[0]
	attrs := link.Export(d)
	require.NoError(t, link.Import(d, attrs))
	require.NoError(t, link.Import(d, attrs))
	assert.Equal(t, attrs, link.Export(d))
}

func TestArgs_DropsHiddenAttributes(t *testing.T) {
	lin := link.NewLinear(3, 2)
	lin.InitialW = tensor.Ones(tensor.Shape{2, 3}, tensor.Float32)

	args := link.Args(lin)
	assert.Equal(t, link.Attrs{
		"in_size":        3,
		"out_size":       2,
		"bias":           0.0,
		"nobias":         false,
		"use_weightnorm": false,
	}, args)

	exported := link.Export(lin)
	assert.Contains(t, exported, "_initialW")
	assert.Contains(t, exported, link.KindKey)
}

func TestExport_OmitsUnsetSlotsAndKeepsUnsetOptionals(t *testing.T) {
	embed := link.NewEmbedID(10, 4)
	attrs := link.Export(embed)
	assert.NotContains(t, attrs, "_initialW")
	require.Contains(t, attrs, "ignore_label")
	assert.Nil(t, attrs["ignore_label"])
}

func TestExport_Defaults(t *testing.T) {
	conv := link.Args(link.NewConvolution2D(1, 8, 3))
	assert.Equal(t, 1, conv["stride"])
	assert.Equal(t, 0, conv["pad"])
	assert.Equal(t, true, conv["use_cudnn"])
	assert.Equal(t, false, conv["use_weightnorm"])

	bn := link.Args(link.NewBatchNormalization(4))
	assert.Equal(t, 0.9, bn["decay"])
	assert.Equal(t, 2e-5, bn["eps"])
	assert.Equal(t, "float32", bn["dtype"])

	assert.Equal(t, 5, link.Args(link.NewMinibatchDiscrimination(3, 2))["ndim_kernel"])
	assert.Equal(t, 1, link.Args(link.NewDilatedConvolution2D(1, 1, 3))["dilate"])
}

func TestImport_UnknownAttribute(t *testing.T) {
	err := link.Import(link.NewLinear(1, 1), link.Attrs{"out_sise": 3})
	require.ErrorIs(t, err, link.ErrUnknownAttribute)
	assert.Contains(t, err.Error(), "out_sise")

	err = link.Import(link.NewLinear(1, 1), link.Attrs{"_initialV": tensor.Ones(tensor.Shape{1, 1}, tensor.Float32)})
	require.ErrorIs(t, err, link.ErrUnknownAttribute)
}

func TestImport_DilatedRejectsWeightNorm(t *testing.T) {
	d := link.NewDilatedConvolution2D(1, 1, 3)
	err := link.Import(d, link.Attrs{"use_weightnorm": true})
	require.ErrorIs(t, err, link.ErrUnknownAttribute)
	assert.NotContains(t, link.Export(d), "use_weightnorm")
}

func TestImport_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		d     link.Descriptor
		attrs link.Attrs
	}{
		{"string for int", link.NewLinear(1, 1), link.Attrs{"out_size": "3"}},
		{"fractional int", link.NewLinear(1, 1), link.Attrs{"out_size": 2.5}},
		{"float beyond int range", link.NewLinear(1, 1), link.Attrs{"out_size": 1e20}},
		{"uint beyond int range", link.NewLinear(1, 1), link.Attrs{"out_size": uint64(1) << 63}},
		{"json number beyond int range", link.NewLinear(1, 1), link.Attrs{"out_size": json.Number("99999999999999999999")}},
		{"int for bool", link.NewLinear(1, 1), link.Attrs{"nobias": 1}},
		{"bad outsize", link.NewDeconvolution2D(1, 1, 2), link.Attrs{"outsize": []any{"a"}}},
		{"bad tensor", link.NewLinear(1, 1), link.Attrs{"_initialW": 3}},
		{"bad initializer", link.NewGRU(2), link.Attrs{"_init": map[string]any{"kind": "Nope", "interface": "Initializer"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.ErrorIs(t, link.Import(tt.d, tt.attrs), link.ErrInvalidAttribute)
		})
	}
}

func TestImport_CoercesDecodedNumbers(t *testing.T) {
	d := link.NewDeconvolution2D(1, 1, 2)
	require.NoError(t, link.Import(d, link.Attrs{
		"out_channels": 4.0,
		"bias":         1,
		"outsize":      []any{6.0, 6},
	}))
	assert.Equal(t, 4, d.OutChannels)
	assert.Equal(t, 1.0, d.Bias)
	assert.Equal(t, []int{6, 6}, d.Outsize)

	embed := link.NewEmbedID(3, 2)
	require.NoError(t, link.Import(embed, link.Attrs{"ignore_label": 7.0}))
	require.NotNil(t, embed.IgnoreLabel)
	assert.Equal(t, 7, *embed.IgnoreLabel)
	require.NoError(t, link.Import(embed, link.Attrs{"ignore_label": nil}))
	assert.Nil(t, embed.IgnoreLabel)
}

func TestImport_KindTagMismatch(t *testing.T) {
	err := link.Import(link.NewLinear(1, 1), link.Attrs{link.KindKey: "Gaussian"})
	require.ErrorIs(t, err, link.ErrUnknownKind)
}

func TestImport_UnknownDType(t *testing.T) {
	err := link.Import(link.NewBatchNormalization(3), link.Attrs{"dtype": "int8"})
	require.ErrorIs(t, err, tensor.ErrUnknownDType)
}

func TestMerge_Slots(t *testing.T) {
	m := link.NewMerge(3, 2)
	assert.Equal(t, []string{"_initialW_0", "_initialW_1", "_initialW_2"}, link.WeightSlots(m))

	w := tensor.Ones(tensor.Shape{2, 4}, tensor.Float32)
	require.NoError(t, link.Import(m, link.Attrs{"_initialW_2": w, "_initialW_0": w}))
	require.Len(t, m.InitialW, 3)
	assert.Same(t, w, m.InitialW[0])
	assert.Nil(t, m.InitialW[1])
	assert.Same(t, w, m.InitialW[2])

	attrs := link.Export(m)
	assert.Contains(t, attrs, "_initialW_0")
	assert.NotContains(t, attrs, "_initialW_1")
	assert.Contains(t, attrs, "_initialW_2")

	for _, name := range []string{"_initialW_x", "_initialW_01", "_initialW_-1", "_initialW"} {
		err := link.Import(link.NewMerge(1, 1), link.Attrs{name: w})
		require.ErrorIs(t, err, link.ErrUnknownAttribute, name)
	}
	err := link.Import(link.NewMerge(1, 1), link.Attrs{"_initialW_100000": w})
	require.ErrorIs(t, err, link.ErrInvalidAttribute)
}

func TestWeightSlots(t *testing.T) {
	assert.Equal(t, []string{"_initialW"}, link.WeightSlots(link.NewLinear(1, 1)))
	assert.Equal(t, []string{"_init", "_inner_init"}, link.WeightSlots(link.NewGRU(1)))
	assert.Equal(t, []string{"_lateral_init", "_upward_init", "_bias_init", "_forget_bias_init"}, link.WeightSlots(link.NewLSTM(1, 1)))
	assert.Equal(t, []string{"_initialW_mean", "_initialW_ln_var"}, link.WeightSlots(link.NewGaussian(1, 1)))
	assert.Empty(t, link.WeightSlots(link.NewBatchNormalization(1)))
	assert.Empty(t, link.WeightSlots(link.NewStatefulPeepholeLSTM(1, 1)))
}

func TestDescribe(t *testing.T) {
	lin := link.NewLinear(3, 2)
	lin.InitialW = tensor.Ones(tensor.Shape{2, 3}, tensor.Float32)

	want := "Link: Linear\n" +
		"\t_initialW: tensor float32 (2, 3) (6 elements)\n" +
		"\tbias: 0\n" +
		"\tin_size: 3\n" +
		"\tnobias: false\n" +
		"\tout_size: 2\n" +
		"\tuse_weightnorm: false\n"
	assert.Equal(t, want, link.Describe(lin))

	gru := link.NewGRU(4)
	gru.Init = &nn.Constant{Value: 1}
	out := link.Describe(gru)
	assert.Contains(t, out, "Link: GRU\n")
	assert.Contains(t, out, "\tn_inputs: None\n")
	assert.Contains(t, out, "\t_init: Constant{\"value\":1}\n")
}

func TestKinds(t *testing.T) {
	kinds := link.Kinds()
	require.Len(t, kinds, 14)
	for _, k := range kinds {
		parsed, err := link.ParseKind(k.String())
		require.NoError(t, err)
		assert.Equal(t, k, parsed)

		d, err := link.New(k)
		require.NoError(t, err)
		assert.Equal(t, k, d.Kind())
	}

	_, err := link.ParseKind("Highway")
	require.ErrorIs(t, err, link.ErrUnknownKind)
	_, err = link.New(link.Kind(99))
	require.ErrorIs(t, err, link.ErrUnknownKind)
	assert.Equal(t, "Kind(99)", link.Kind(99).String())
}
