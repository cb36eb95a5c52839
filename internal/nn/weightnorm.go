package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// Weight normalization reparameterizes a weight tensor W as
//
//	W = g · V / ‖V‖
//
// where the norm is taken per output unit, V carries the direction and g the
// magnitude. g is initialized to ‖V‖ so the initial W equals V.
//
// Reference: Salimans & Kingma, "Weight Normalization" (2016).

// WeightNormLinearConfig holds the constructor arguments of a weight-normalized
// Linear layer. The primary weight slot is V rather than W.
type WeightNormLinearConfig struct {
	InSize   int // 0 infers the input size from the first Forward call
	OutSize  int
	Bias     float64
	NoBias   bool
	InitialV *tensor.Tensor // [out_size, in_size]
}

// WeightNormLinear is a Linear layer whose weight is stored as direction V and
// per-row magnitude g.
type WeightNormLinear struct {
	inSize  int
	outSize int
	v       *Parameter // [out_size, in_size]
	g       *Parameter // [out_size]
	bias    *Parameter

	opts Options
}

// NewWeightNormLinear creates a weight-normalized Linear layer.
func NewWeightNormLinear(cfg WeightNormLinearConfig, opts Options) (*WeightNormLinear, error) {
	if cfg.OutSize <= 0 {
		return nil, errors.Errorf("weightnorm linear: invalid out_size %d", cfg.OutSize)
	}
	if cfg.InSize < 0 {
		return nil, errors.Errorf("weightnorm linear: invalid in_size %d", cfg.InSize)
	}
	inSize := cfg.InSize
	if inSize == 0 && cfg.InitialV != nil {
		if cfg.InitialV.Rank() != 2 {
			return nil, errors.Errorf("weightnorm linear: initialV must be 2D, got %v", cfg.InitialV.Shape())
		}
		inSize = cfg.InitialV.Shape()[1]
	}

	l := &WeightNormLinear{
		inSize:  inSize,
		outSize: cfg.OutSize,
		v:       NewParameter("V", nil),
		g:       NewParameter("g", nil),
		opts:    opts,
	}
	if !cfg.NoBias {
		l.bias = NewParameter("b", tensor.Full(tensor.Shape{cfg.OutSize}, opts.DType, cfg.Bias))
	}
	if inSize > 0 {
		if err := l.initialize(inSize, cfg.InitialV); err != nil {
			return nil, err
		}
	}
	return l, nil
}

func (l *WeightNormLinear) initialize(inSize int, injected *tensor.Tensor) error {
	v, err := fromSlot("weightnorm linear.V", injected, nil, tensor.Shape{l.outSize, inSize}, inSize, l.outSize, &l.opts)
	if err != nil {
		return err
	}
	g, err := directionNorms("weightnorm linear.V", v)
	if err != nil {
		return err
	}
	l.inSize = inSize
	l.v.SetTensor(v)
	l.g.SetTensor(g)
	return nil
}

// Forward computes x @ (g · V/‖V‖).T + b.
func (l *WeightNormLinear) Forward(input *tensor.Tensor) *tensor.Tensor {
	x := flattenBatch("WeightNormLinear.Forward", input)
	if l.v.Tensor() == nil {
		if err := l.initialize(x.Shape()[1], nil); err != nil {
			panic(fmt.Sprintf("WeightNormLinear.Forward: %v", err))
		}
	}
	if x.Shape()[1] != l.inSize {
		panic(fmt.Sprintf("WeightNormLinear.Forward: expected input with %d features, got %d", l.inSize, x.Shape()[1]))
	}
	return affine(x, l.W(), l.bias)
}

// W returns the effective weight g · V/‖V‖.
func (l *WeightNormLinear) W() *tensor.Tensor {
	return normalizeRows(l.v.Tensor(), l.g.Tensor())
}

// Parameters returns [V, g, b] (b omitted when disabled).
func (l *WeightNormLinear) Parameters() []*Parameter {
	params := []*Parameter{l.v, l.g}
	if l.bias != nil {
		params = append(params, l.bias)
	}
	return params
}

// V returns the direction parameter.
func (l *WeightNormLinear) V() *Parameter {
	return l.v
}

// OutSize returns the number of output features.
func (l *WeightNormLinear) OutSize() int {
	return l.outSize
}

// rowNorms returns the L2 norm of every slice along axis 0, as a [rows] tensor.
func rowNorms(v *tensor.Tensor) *tensor.Tensor {
	rows := v.Shape()[0]
	flat := v.Reshape(rows, -1).Data()
	width := v.Len() / rows
	norms := tensor.Zeros(tensor.Shape{rows}, v.DType())
	for r := 0; r < rows; r++ {
		sum := 0.0
		for _, x := range flat[r*width : (r+1)*width] {
			sum += x * x
		}
		norms.Set(math.Sqrt(sum), r)
	}
	return norms
}

// directionNorms returns rowNorms(v), failing when a row of v is all zeros and
// so has no direction.
func directionNorms(name string, v *tensor.Tensor) (*tensor.Tensor, error) {
	norms := rowNorms(v)
	for r, n := range norms.Data() {
		if n == 0 {
			return nil, errors.Errorf("%s: row %d has zero norm", name, r)
		}
	}
	return norms, nil
}

// normalizeRows returns g[r] · v[r] / ‖v[r]‖ for every slice r along axis 0.
// Rows with zero norm stay zero.
func normalizeRows(v, g *tensor.Tensor) *tensor.Tensor {
	rows := v.Shape()[0]
	norms := rowNorms(v).Data()
	gs := g.Data()
	scale := tensor.Zeros(tensor.Shape{rows, 1}, v.DType())
	for r, n := range norms {
		if n != 0 {
			scale.Set(gs[r]/n, r, 0)
		}
	}
	return v.Reshape(rows, -1).Mul(scale).Reshape(v.Shape()...)
}
