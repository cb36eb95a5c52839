package nn

import (
	"fmt"

	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// LinearConfig holds the constructor arguments of a plain Linear layer.
type LinearConfig struct {
	InSize   int     // 0 infers the input size from the first Forward call
	OutSize  int     // number of output units
	Bias     float64 // initial value of every bias element
	NoBias   bool    // omit the bias term
	InitialW *tensor.Tensor
}

// Linear implements a fully connected (dense) layer.
//
// Performs the transformation: y = x @ W.T + b
// where:
//   - x is the input tensor with shape [batch_size, in_size]; trailing
//     dimensions beyond the first are flattened
//   - W is the weight matrix with shape [out_size, in_size]
//   - b is the bias vector with shape [out_size]
//   - y is the output tensor with shape [batch_size, out_size]
//
// Example:
//
//	fw := nn.NewCPU()
//	layer, err := nn.NewLinear(nn.LinearConfig{InSize: 784, OutSize: 128}, fw.Options())
//	output := layer.Forward(input) // shape: [32, 128]
type Linear struct {
	inSize  int
	outSize int
	weight  *Parameter // [out_size, in_size], nil tensor until lazily initialized
	bias    *Parameter // [out_size] or nil

	opts Options
}

// NewLinear creates a new Linear layer.
//
// Weights come from cfg.InitialW when set, otherwise from the framework's
// weight initializer. Biases are filled with cfg.Bias.
func NewLinear(cfg LinearConfig, opts Options) (*Linear, error) {
	if cfg.OutSize <= 0 {
		return nil, errors.Errorf("linear: invalid out_size %d", cfg.OutSize)
	}
	if cfg.InSize < 0 {
		return nil, errors.Errorf("linear: invalid in_size %d", cfg.InSize)
	}
	inSize := cfg.InSize
	if inSize == 0 && cfg.InitialW != nil {
		if cfg.InitialW.Rank() != 2 {
			return nil, errors.Errorf("linear: initialW must be 2D, got %v", cfg.InitialW.Shape())
		}
		inSize = cfg.InitialW.Shape()[1]
	}

	l := &Linear{
		inSize:  inSize,
		outSize: cfg.OutSize,
		weight:  NewParameter("W", nil),
		opts:    opts,
	}
	if !cfg.NoBias {
		l.bias = NewParameter("b", tensor.Full(tensor.Shape{cfg.OutSize}, opts.DType, cfg.Bias))
	}
	if inSize > 0 {
		w, err := fromSlot("linear.W", cfg.InitialW, nil, tensor.Shape{cfg.OutSize, inSize}, inSize, cfg.OutSize, &opts)
		if err != nil {
			return nil, err
		}
		l.weight.SetTensor(w)
	}
	return l, nil
}

// initialize allocates W once the input size is known.
func (l *Linear) initialize(inSize int) {
	w, err := fromSlot("linear.W", nil, nil, tensor.Shape{l.outSize, inSize}, inSize, l.outSize, &l.opts)
	if err != nil {
		panic(fmt.Sprintf("Linear.Forward: %v", err))
	}
	klog.V(2).Infof("linear: inferred in_size=%d (out_size=%d)", inSize, l.outSize)
	l.inSize = inSize
	l.weight.SetTensor(w)
}

// Forward computes the output of the linear layer.
//
// Input shape: [batch_size, ...] flattened to [batch_size, in_size]
// Output shape: [batch_size, out_size]
func (l *Linear) Forward(input *tensor.Tensor) *tensor.Tensor {
	x := flattenBatch("Linear.Forward", input)
	if l.weight.Tensor() == nil {
		l.initialize(x.Shape()[1])
	}
	if x.Shape()[1] != l.inSize {
		panic(fmt.Sprintf("Linear.Forward: expected input with %d features, got %d", l.inSize, x.Shape()[1]))
	}
	return affine(x, l.weight.Tensor(), l.bias)
}

// Parameters returns [W, b] if bias is present, otherwise [W].
func (l *Linear) Parameters() []*Parameter {
	if l.bias != nil {
		return []*Parameter{l.weight, l.bias}
	}
	return []*Parameter{l.weight}
}

// Weight returns the weight parameter.
func (l *Linear) Weight() *Parameter {
	return l.weight
}

// Bias returns the bias parameter, or nil.
func (l *Linear) Bias() *Parameter {
	return l.bias
}

// InSize returns the number of input features (0 until inferred).
func (l *Linear) InSize() int {
	return l.inSize
}

// OutSize returns the number of output features.
func (l *Linear) OutSize() int {
	return l.outSize
}

// flattenBatch reshapes [batch, ...] into [batch, features].
func flattenBatch(op string, input *tensor.Tensor) *tensor.Tensor {
	shape := input.Shape()
	switch {
	case len(shape) < 2:
		panic(fmt.Sprintf("%s: expected input [batch, features...], got shape %v", op, shape))
	case len(shape) == 2:
		return input
	default:
		return input.Reshape(shape[0], -1)
	}
}

// affine computes x @ W.T + b.
func affine(x, w *tensor.Tensor, bias *Parameter) *tensor.Tensor {
	out := x.MatMul(w.Transpose())
	if bias != nil {
		out = out.Add(bias.Tensor().Reshape(1, -1))
	}
	return out
}
