package link

import (
	"encoding/json"

	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// WireAttrs returns Export(d) with every hidden value in a plain serializable
// form: tensors as tensor.Wire and initializers as their tagged JSON object.
func WireAttrs(d Descriptor) (Attrs, error) {
	attrs := Export(d)
	for name, v := range attrs {
		switch v := v.(type) {
		case *tensor.Tensor:
			attrs[name] = v.ToWire()
		case nn.Initializer:
			b, err := nn.MarshalInitializer(v)
			if err != nil {
				return nil, errors.Wrapf(err, "%s.%s", d.Kind(), name)
			}
			var obj map[string]any
			if err := json.Unmarshal(b, &obj); err != nil {
				return nil, errors.Wrapf(err, "%s.%s", d.Kind(), name)
			}
			attrs[name] = obj
		}
	}
	return attrs, nil
}

// FromAttrs builds a descriptor from its exported form. The kind is read from
// KindKey.
func FromAttrs(attrs Attrs) (Descriptor, error) {
	tag, ok := attrs[KindKey].(string)
	if !ok {
		return nil, errors.Wrapf(ErrUnknownKind, "missing %s tag", KindKey)
	}
	kind, err := ParseKind(tag)
	if err != nil {
		return nil, err
	}
	d, err := New(kind)
	if err != nil {
		return nil, err
	}
	if err := Import(d, attrs); err != nil {
		return nil, err
	}
	return d, nil
}

// Encode returns the JSON form of d.
func Encode(d Descriptor) ([]byte, error) {
	attrs, err := WireAttrs(d)
	if err != nil {
		return nil, err
	}
	return json.Marshal(attrs)
}

// Decode parses a descriptor from its JSON form.
func Decode(b []byte) (Descriptor, error) {
	var attrs Attrs
	if err := json.Unmarshal(b, &attrs); err != nil {
		return nil, errors.Wrap(err, "link: decoding JSON")
	}
	return FromAttrs(attrs)
}

// EncodeYAML returns the YAML form of d.
func EncodeYAML(d Descriptor) ([]byte, error) {
	attrs, err := WireAttrs(d)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(map[string]any(attrs))
}

// DecodeYAML parses a descriptor from its YAML form.
func DecodeYAML(b []byte) (Descriptor, error) {
	var attrs map[string]any
	if err := yaml.Unmarshal(b, &attrs); err != nil {
		return nil, errors.Wrap(err, "link: decoding YAML")
	}
	return FromAttrs(attrs)
}
