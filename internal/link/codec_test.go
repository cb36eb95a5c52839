package link_test

import (
	"encoding/json"
	"testing"

	"github.com/born-ml/links/internal/link"
	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCodec_JSONRoundTrip(t *testing.T) {
	for _, d := range populated() {
		t.Run(d.Kind().String(), func(t *testing.T) {
			b, err := link.Encode(d)
			require.NoError(t, err)

			decoded, err := link.Decode(b)
			require.NoError(t, err)
			assert.Equal(t, d, decoded)
		})
	}
}

func TestCodec_YAMLRoundTrip(t *testing.T) {
	for _, d := range populated() {
		t.Run(d.Kind().String(), func(t *testing.T) {
			b, err := link.EncodeYAML(d)
			require.NoError(t, err)

			decoded, err := link.DecodeYAML(b)
			require.NoError(t, err)
			assert.Equal(t, d, decoded)
		})
	}
}

func TestCodec_WireForm(t *testing.T) {
	gru := link.NewGRU(4)
	gru.Init = &nn.HeNormal{Scale: 2}

	b, err := link.Encode(gru)
	require.NoError(t, err)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(b, &raw))
	assert.Equal(t, "GRU", raw[link.KindKey])
	assert.Equal(t, map[string]any{"kind": "HeNormal", "interface": "Initializer", "scale": 2.0}, raw["_init"])
	assert.Nil(t, raw["n_inputs"])
	assert.NotContains(t, raw, "_inner_init")

	lin := link.NewLinear(2, 1)
	lin.InitialW = mustTensor([]float64{0.5, -1}, 1, 2)
	attrs, err := link.WireAttrs(lin)
	require.NoError(t, err)
	wire, ok := attrs["_initialW"].(tensor.Wire)
	require.True(t, ok)
	assert.Equal(t, "float32", wire.DType)
	assert.Equal(t, []int{1, 2}, wire.Shape)
}

func TestCodec_ArrayInitializerCarriesTensor(t *testing.T) {
	lstm := link.NewLSTM(2, 1)
	lstm.UpwardInit = &nn.Array{Value: tensor.Ones(tensor.Shape{4, 2}, tensor.Float64)}

	b, err := link.Encode(lstm)
	require.NoError(t, err)
	decoded, err := link.Decode(b)
	require.NoError(t, err)
	assert.Equal(t, lstm, decoded)
}

func TestCodec_DecodeErrors(t *testing.T) {
	_, err := link.Decode([]byte(`{"in_size": 3}`))
	require.ErrorIs(t, err, link.ErrUnknownKind)

	_, err = link.Decode([]byte(`{"_link": "Highway"}`))
	require.ErrorIs(t, err, link.ErrUnknownKind)

	_, err = link.Decode([]byte(`{"_link": "Linear", "width": 3}`))
	require.ErrorIs(t, err, link.ErrUnknownAttribute)

	_, err = link.Decode([]byte(`{"_link": "Linear"`))
	require.Error(t, err)

	_, err = link.DecodeYAML([]byte("_link: BatchNormalization\ndtype: int8\n"))
	require.ErrorIs(t, err, tensor.ErrUnknownDType)
}

func TestCodec_DecodeYAMLByHand(t *testing.T) {
	src := `
_link: Deconvolution2D
in_channels: 3
out_channels: 8
ksize: 4
stride: 2
pad: 1
outsize: [16, 16]
use_weightnorm: true
`
	d, err := link.DecodeYAML([]byte(src))
	require.NoError(t, err)
	deconv, ok := d.(*link.Deconvolution2D)
	require.True(t, ok)
	assert.Equal(t, []int{16, 16}, deconv.Outsize)
	assert.True(t, deconv.UseWeightNorm)
	// Unlisted attributes keep their defaults.
	assert.True(t, deconv.UseCudnn)
	assert.Equal(t, 0.0, deconv.Bias)
}

func TestFromAttrs_NestedAttrsValues(t *testing.T) {
	lin := link.NewLinear(2, 1)
	lin.InitialW = mustTensor([]float64{0.5, -1}, 1, 2)
	gru := link.NewStatefulGRU(2, 2)
	gru.Init = &nn.Normal{Scale: 0.1}

	for _, d := range []link.Descriptor{lin, gru} {
		t.Run(d.Kind().String(), func(t *testing.T) {
			b, err := link.Encode(d)
			require.NoError(t, err)
			var raw map[string]any
			require.NoError(t, json.Unmarshal(b, &raw))

			// YAML decoding into Attrs yields nested Attrs rather than map[string]any.
			attrs := link.Attrs{}
			for k, v := range raw {
				if m, ok := v.(map[string]any); ok {
					v = link.Attrs(m)
				}
				attrs[k] = v
			}
			decoded, err := link.FromAttrs(attrs)
			require.NoError(t, err)
			assert.Equal(t, d, decoded)
		})
	}
}
