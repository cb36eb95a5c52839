package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// ReLU is a Rectified Linear Unit activation module.
//
// Applies the element-wise function: f(x) = max(0, x)
//
// Example:
//
//	relu := nn.NewReLU()
//	output := relu.Forward(input)  // All negative values become 0
type ReLU struct{}

// NewReLU creates a new ReLU activation module.
func NewReLU() *ReLU {
	return &ReLU{}
}

// Forward applies ReLU activation: f(x) = max(0, x).
func (r *ReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.ReLU()
}

// Parameters returns nil (ReLU has no trainable parameters).
func (r *ReLU) Parameters() []*Parameter {
	return nil
}

// Sigmoid is a sigmoid activation module.
//
// Applies the element-wise function: σ(x) = 1 / (1 + exp(-x))
type Sigmoid struct{}

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid() *Sigmoid {
	return &Sigmoid{}
}

// Forward applies Sigmoid activation.
func (s *Sigmoid) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Sigmoid()
}

// Parameters returns nil.
func (s *Sigmoid) Parameters() []*Parameter {
	return nil
}

// Tanh is a hyperbolic tangent activation module.
type Tanh struct{}

// NewTanh creates a new Tanh activation module.
func NewTanh() *Tanh {
	return &Tanh{}
}

// Forward applies Tanh activation.
func (t *Tanh) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Tanh()
}

// Parameters returns nil.
func (t *Tanh) Parameters() []*Parameter {
	return nil
}

// LeakyReLU applies f(x) = x for x >= 0 and slope*x otherwise.
type LeakyReLU struct {
	slope float64
}

// NewLeakyReLU creates a leaky ReLU with the given negative slope.
func NewLeakyReLU(slope float64) *LeakyReLU {
	return &LeakyReLU{slope: slope}
}

// Forward applies the leaky ReLU.
func (l *LeakyReLU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Map(func(x float64) float64 {
		if x < 0 {
			return l.slope * x
		}
		return x
	})
}

// Parameters returns nil.
func (l *LeakyReLU) Parameters() []*Parameter {
	return nil
}

// ELU applies f(x) = x for x >= 0 and alpha*(exp(x)-1) otherwise.
type ELU struct {
	alpha float64
}

// NewELU creates an exponential linear unit.
func NewELU(alpha float64) *ELU {
	return &ELU{alpha: alpha}
}

// Forward applies the ELU.
func (e *ELU) Forward(input *tensor.Tensor) *tensor.Tensor {
	return input.Map(func(x float64) float64 {
		if x < 0 {
			return e.alpha * math.Expm1(x)
		}
		return x
	})
}

// Parameters returns nil.
func (e *ELU) Parameters() []*Parameter {
	return nil
}

// Softmax normalizes along axis 1: y = exp(x - max) / sum(exp(x - max)).
type Softmax struct{}

// NewSoftmax creates a softmax module.
func NewSoftmax() *Softmax {
	return &Softmax{}
}

// Forward applies softmax over the channel axis of a [batch, channels, ...] input.
func (s *Softmax) Forward(input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	if len(shape) < 2 {
		panic(fmt.Sprintf("Softmax.Forward: expected input [batch, channels, ...], got %v", shape))
	}
	inner := 1
	for _, d := range shape[2:] {
		inner *= d
	}
	n := shape[1]
	out := input.Clone()
	data := out.Data()
	for b := 0; b < shape[0]; b++ {
		for i := 0; i < inner; i++ {
			base := b*n*inner + i
			peak := math.Inf(-1)
			for k := 0; k < n; k++ {
				peak = math.Max(peak, data[base+k*inner])
			}
			total := 0.0
			for k := 0; k < n; k++ {
				e := math.Exp(data[base+k*inner] - peak)
				data[base+k*inner] = e
				total += e
			}
			for k := 0; k < n; k++ {
				data[base+k*inner] = input.DType().Round(data[base+k*inner] / total)
			}
		}
	}
	return out
}

// Parameters returns nil.
func (s *Softmax) Parameters() []*Parameter {
	return nil
}

// Activation returns the parameter-free module registered under name:
// "relu", "sigmoid", "tanh", "softmax", "leaky_relu" (slope 0.2) or "elu" (alpha 1).
func Activation(name string) (Module, error) {
	switch name {
	case "relu":
		return NewReLU(), nil
	case "sigmoid":
		return NewSigmoid(), nil
	case "tanh":
		return NewTanh(), nil
	case "softmax":
		return NewSoftmax(), nil
	case "leaky_relu":
		return NewLeakyReLU(0.2), nil
	case "elu":
		return NewELU(1), nil
	}
	return nil, errors.Errorf("unknown activation %q", name)
}

// ActivationNames lists the names accepted by Activation.
func ActivationNames() []string {
	return []string{"relu", "sigmoid", "tanh", "softmax", "leaky_relu", "elu"}
}
