package tensor

import (
	"encoding/json"
	"testing"

	"github.com/janpfeifer/must"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestFromSliceValidation(t *testing.T) {
	_, err := FromSlice([]float64{1, 2, 3}, Shape{2, 2}, Float32)
	require.Error(t, err)

	_, err = FromSlice(nil, Shape{0, 2}, Float32)
	require.Error(t, err)
}

func TestEye(t *testing.T) {
	e := Eye(3, Float32)
	assert.Equal(t, 1.0, e.At(1, 1))
	assert.Equal(t, 0.0, e.At(0, 2))
	assert.Equal(t, 3.0, e.SumAll())
}

func TestAtSetBounds(t *testing.T) {
	x := Zeros(Shape{2, 2}, Float32)
	x.Set(0.1, 1, 0)
	assert.Equal(t, float64(float32(0.1)), x.At(1, 0))
	assert.Panics(t, func() { x.At(2, 0) })
	assert.Panics(t, func() { x.At(0) })
}

func TestWireRoundTrip(t *testing.T) {
	for _, dtype := range []DataType{Float16, Float32, Float64} {
		t.Run(dtype.String(), func(t *testing.T) {
			x := must.M1(FromSlice([]float64{0.5, -1.25, 3, 1e-3}, Shape{2, 2}, dtype))

			b, err := json.Marshal(x)
			require.NoError(t, err)
			var fromJSON Tensor
			require.NoError(t, json.Unmarshal(b, &fromJSON))
			assert.True(t, x.Equal(&fromJSON), "json: %v != %v", x, &fromJSON)

			y, err := yaml.Marshal(x)
			require.NoError(t, err)
			var fromYAML Tensor
			require.NoError(t, yaml.Unmarshal(y, &fromYAML))
			assert.True(t, x.Equal(&fromYAML), "yaml: %v != %v", x, &fromYAML)
		})
	}
}

func TestFromWireErrors(t *testing.T) {
	w := Ones(Shape{2}, Float32).ToWire()

	bad := w
	bad.Format = "raw"
	_, err := FromWire(bad)
	require.Error(t, err)

	bad = w
	bad.Shape = []int{3}
	_, err = FromWire(bad)
	require.Error(t, err)

	bad = w
	bad.DType = "int4"
	_, err = FromWire(bad)
	require.ErrorIs(t, err, ErrUnknownDType)
}
