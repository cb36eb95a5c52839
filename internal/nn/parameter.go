package nn

import (
	"github.com/born-ml/links/internal/tensor"
)

// Parameter is a named weight tensor owned by a unit.
//
// The tensor of a lazily initialized parameter is nil until the owning unit
// sees its first input.
type Parameter struct {
	name   string
	tensor *tensor.Tensor
}

// NewParameter creates a parameter.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return &Parameter{name: name, tensor: t}
}

// Name returns the parameter name (e.g., "W", "b", "gamma").
func (p *Parameter) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter) Tensor() *tensor.Tensor {
	return p.tensor
}

// SetTensor replaces the parameter tensor.
func (p *Parameter) SetTensor(t *tensor.Tensor) {
	p.tensor = t
}
