package tensor

import (
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"math"

	"github.com/pkg/errors"
	"github.com/x448/float16"
	"gopkg.in/yaml.v3"
)

// wireFormat names the payload encoding: little-endian values of the tensor's
// dtype width, base64 encoded.
const wireFormat = "le-base64"

// Wire is the persisted form of a tensor.
type Wire struct {
	DType  string `json:"dtype" yaml:"dtype"`
	Shape  []int  `json:"shape" yaml:"shape,flow"`
	Format string `json:"fmt" yaml:"fmt"`
	Data   string `json:"data" yaml:"data"`
}

// ToWire encodes t.
func (t *Tensor) ToWire() Wire {
	width := t.dtype.Size()
	buf := make([]byte, len(t.data)*width)
	for i, v := range t.data {
		dst := buf[i*width : (i+1)*width]
		switch t.dtype {
		case Float64:
			binary.LittleEndian.PutUint64(dst, math.Float64bits(v))
		case Float32:
			binary.LittleEndian.PutUint32(dst, math.Float32bits(float32(v)))
		case Float16:
			binary.LittleEndian.PutUint16(dst, float16.Fromfloat32(float32(v)).Bits())
		}
	}
	return Wire{
		DType:  t.dtype.String(),
		Shape:  t.shape.Clone(),
		Format: wireFormat,
		Data:   base64.StdEncoding.EncodeToString(buf),
	}
}

// FromWire decodes a persisted tensor.
func FromWire(w Wire) (*Tensor, error) {
	if w.Format != wireFormat {
		return nil, errors.Errorf("tensor: unsupported wire format %q", w.Format)
	}
	dtype, err := ParseDType(w.DType)
	if err != nil {
		return nil, err
	}
	buf, err := base64.StdEncoding.DecodeString(w.Data)
	if err != nil {
		return nil, errors.Wrap(err, "tensor: decoding payload")
	}
	shape := Shape(w.Shape)
	width := dtype.Size()
	if len(buf) != shape.NumElements()*width {
		return nil, errors.Errorf("tensor: payload has %d bytes, shape %v of %s needs %d",
			len(buf), shape, dtype, shape.NumElements()*width)
	}
	values := make([]float64, shape.NumElements())
	for i := range values {
		src := buf[i*width : (i+1)*width]
		switch dtype {
		case Float64:
			values[i] = math.Float64frombits(binary.LittleEndian.Uint64(src))
		case Float32:
			values[i] = float64(math.Float32frombits(binary.LittleEndian.Uint32(src)))
		case Float16:
			values[i] = float64(float16.Frombits(binary.LittleEndian.Uint16(src)).Float32())
		}
	}
	return FromSlice(values, shape, dtype)
}

// MarshalJSON implements json.Marshaler.
func (t *Tensor) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.ToWire())
}

// UnmarshalJSON implements json.Unmarshaler.
func (t *Tensor) UnmarshalJSON(b []byte) error {
	var w Wire
	if err := json.Unmarshal(b, &w); err != nil {
		return errors.Wrap(err, "tensor: reading wire form")
	}
	decoded, err := FromWire(w)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (t *Tensor) MarshalYAML() (any, error) {
	return t.ToWire(), nil
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (t *Tensor) UnmarshalYAML(node *yaml.Node) error {
	var w Wire
	if err := node.Decode(&w); err != nil {
		return errors.Wrap(err, "tensor: reading wire form")
	}
	decoded, err := FromWire(w)
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}
