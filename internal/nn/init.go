package nn

import (
	"math"
	"math/rand"

	"github.com/born-ml/links/internal/polyjson"
	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// initializerInterface is the polyjson family name of all initializers.
const initializerInterface = "Initializer"

// Initializer produces the initial value of a parameter.
//
// Initializers are plain values so they can be stored in a descriptor's hidden
// attributes and persisted with it.
type Initializer interface {
	polyjson.Identifiable

	// Initialize returns a tensor of the given shape. fanIn and fanOut are the
	// number of input and output units the parameter connects.
	Initialize(shape tensor.Shape, dtype tensor.DataType, fanIn, fanOut int, rng *rand.Rand) (*tensor.Tensor, error)
}

// Constant fills the parameter with Value.
type Constant struct {
	Value float64 `json:"value"`
}

// JSONTags implements polyjson.Identifiable.
func (c *Constant) JSONTags() (string, string) { return "Constant", initializerInterface }

// Initialize implements Initializer.
func (c *Constant) Initialize(shape tensor.Shape, dtype tensor.DataType, _, _ int, _ *rand.Rand) (*tensor.Tensor, error) {
	return tensor.Full(shape, dtype, c.Value), nil
}

// Normal draws from N(0, Scale²).
type Normal struct {
	Scale float64 `json:"scale"`
}

// JSONTags implements polyjson.Identifiable.
func (n *Normal) JSONTags() (string, string) { return "Normal", initializerInterface }

// Initialize implements Initializer.
func (n *Normal) Initialize(shape tensor.Shape, dtype tensor.DataType, _, _ int, rng *rand.Rand) (*tensor.Tensor, error) {
	return tensor.Randn(shape, dtype, n.Scale, rng), nil
}

// Uniform draws from U(-Scale, Scale).
type Uniform struct {
	Scale float64 `json:"scale"`
}

// JSONTags implements polyjson.Identifiable.
func (u *Uniform) JSONTags() (string, string) { return "Uniform", initializerInterface }

// Initialize implements Initializer.
func (u *Uniform) Initialize(shape tensor.Shape, dtype tensor.DataType, _, _ int, rng *rand.Rand) (*tensor.Tensor, error) {
	return tensor.Uniform(shape, dtype, -u.Scale, u.Scale, rng), nil
}

// GlorotNormal draws from N(0, Scale² · 2/(fan_in + fan_out)).
type GlorotNormal struct {
	Scale float64 `json:"scale"`
}

// JSONTags implements polyjson.Identifiable.
func (g *GlorotNormal) JSONTags() (string, string) { return "GlorotNormal", initializerInterface }

// Initialize implements Initializer.
func (g *GlorotNormal) Initialize(shape tensor.Shape, dtype tensor.DataType, fanIn, fanOut int, rng *rand.Rand) (*tensor.Tensor, error) {
	std := g.Scale * math.Sqrt(2.0/float64(fanIn+fanOut))
	return tensor.Randn(shape, dtype, std, rng), nil
}

// GlorotUniform (Xavier) draws from U(-b, b) with b = Scale · sqrt(6/(fan_in + fan_out)).
//
// This helps maintain variance of activations across layers and is the
// framework's default weight initializer.
type GlorotUniform struct {
	Scale float64 `json:"scale"`
}

// JSONTags implements polyjson.Identifiable.
func (g *GlorotUniform) JSONTags() (string, string) { return "GlorotUniform", initializerInterface }

// Initialize implements Initializer.
func (g *GlorotUniform) Initialize(shape tensor.Shape, dtype tensor.DataType, fanIn, fanOut int, rng *rand.Rand) (*tensor.Tensor, error) {
	bound := g.Scale * math.Sqrt(6.0/float64(fanIn+fanOut))
	return tensor.Uniform(shape, dtype, -bound, bound, rng), nil
}

// HeNormal draws from N(0, Scale² · 2/fan_in).
type HeNormal struct {
	Scale float64 `json:"scale"`
}

// JSONTags implements polyjson.Identifiable.
func (h *HeNormal) JSONTags() (string, string) { return "HeNormal", initializerInterface }

// Initialize implements Initializer.
func (h *HeNormal) Initialize(shape tensor.Shape, dtype tensor.DataType, fanIn, _ int, rng *rand.Rand) (*tensor.Tensor, error) {
	return tensor.Randn(shape, dtype, h.Scale*math.Sqrt(2.0/float64(fanIn)), rng), nil
}

// Array uses a fixed tensor, which must have exactly the requested shape.
type Array struct {
	Value *tensor.Tensor `json:"value"`
}

// JSONTags implements polyjson.Identifiable.
func (a *Array) JSONTags() (string, string) { return "Array", initializerInterface }

// Initialize implements Initializer.
func (a *Array) Initialize(shape tensor.Shape, dtype tensor.DataType, _, _ int, _ *rand.Rand) (*tensor.Tensor, error) {
	if a.Value == nil {
		return nil, errors.New("array initializer has no value")
	}
	if !a.Value.Shape().Equal(shape) {
		return nil, errors.Errorf("array initializer shape %v does not match parameter shape %v", a.Value.Shape(), shape)
	}
	return a.Value.AsType(dtype), nil
}

func init() {
	polyjson.Register(func() Initializer { return &Constant{} })
	polyjson.Register(func() Initializer { return &Normal{} })
	polyjson.Register(func() Initializer { return &Uniform{} })
	polyjson.Register(func() Initializer { return &GlorotNormal{} })
	polyjson.Register(func() Initializer { return &GlorotUniform{} })
	polyjson.Register(func() Initializer { return &HeNormal{} })
	polyjson.Register(func() Initializer { return &Array{} })
}

// InitializerByName returns a scaled initializer by its registered kind name,
// as used by sequential model options ("GlorotNormal", "Normal", ...).
func InitializerByName(name string, scale float64) (Initializer, error) {
	switch name {
	case "Normal":
		return &Normal{Scale: scale}, nil
	case "Uniform":
		return &Uniform{Scale: scale}, nil
	case "GlorotNormal":
		return &GlorotNormal{Scale: scale}, nil
	case "GlorotUniform":
		return &GlorotUniform{Scale: scale}, nil
	case "HeNormal":
		return &HeNormal{Scale: scale}, nil
	case "Constant":
		return &Constant{Value: scale}, nil
	}
	return nil, errors.Errorf("unknown initializer %q", name)
}

// MarshalInitializer encodes an initializer with its kind discriminator.
func MarshalInitializer(init Initializer) ([]byte, error) {
	return polyjson.Marshal(init)
}

// UnmarshalInitializer decodes an initializer written by MarshalInitializer.
func UnmarshalInitializer(b []byte) (Initializer, error) {
	var init Initializer
	if err := polyjson.Unmarshal(b, &init); err != nil {
		return nil, err
	}
	return init, nil
}

// fromSlot returns the injected tensor if present, otherwise the initializer's output.
// An injected tensor must match shape exactly.
func fromSlot(name string, injected *tensor.Tensor, init Initializer, shape tensor.Shape, fanIn, fanOut int, opts *Options) (*tensor.Tensor, error) {
	if injected != nil {
		if !injected.Shape().Equal(shape) {
			return nil, errors.Errorf("%s: injected shape %v does not match %v", name, injected.Shape(), shape)
		}
		return injected.AsType(opts.DType), nil
	}
	if init == nil {
		init = opts.WeightInit
	}
	t, err := init.Initialize(shape, opts.DType, fanIn, fanOut, opts.Rng)
	if err != nil {
		return nil, errors.Wrapf(err, "%s", name)
	}
	return t, nil
}
