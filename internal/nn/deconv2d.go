package nn

import (
	"fmt"

	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// Deconvolution2DConfig holds the constructor arguments of a plain 2D transposed
// convolution.
type Deconvolution2DConfig struct {
	InChannels  int
	OutChannels int
	KSize       int
	Stride      int
	Pad         int
	Bias        float64
	NoBias      bool
	Outsize     []int // optional explicit [out_h, out_w]
	UseCudnn    bool
	InitialW    *tensor.Tensor // [in_channels, out_channels, ksize, ksize]
}

// Deconv2D is a 2D transposed convolution ("deconvolution").
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [in_channels, out_channels, ksize, ksize]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where, unless an explicit outsize is configured:
//
//	out_h = stride*(height-1) + ksize - 2*pad
type Deconv2D struct {
	geom    convGeometry
	outsize []int

	weight *Parameter
	bias   *Parameter

	opts Options
}

// NewDeconv2D creates a transposed 2D convolution.
func NewDeconv2D(cfg Deconvolution2DConfig, opts Options) (*Deconv2D, error) {
	g := convGeometry{
		inChannels: cfg.InChannels, outChannels: cfg.OutChannels,
		ksize: cfg.KSize, stride: cfg.Stride, pad: cfg.Pad, dilate: 1,
	}
	if err := validateDeconv("deconv2d", g, cfg.Outsize); err != nil {
		return nil, err
	}
	area := g.ksize * g.ksize
	w, err := fromSlot("deconv2d.W", cfg.InitialW, nil,
		tensor.Shape{g.inChannels, g.outChannels, g.ksize, g.ksize},
		g.inChannels*area, g.outChannels*area, &opts)
	if err != nil {
		return nil, err
	}

	d := &Deconv2D{
		geom:    g,
		outsize: cfg.Outsize,
		weight:  NewParameter("W", w),
		opts:    opts,
	}
	if !cfg.NoBias {
		d.bias = NewParameter("b", tensor.Full(tensor.Shape{g.outChannels}, opts.DType, cfg.Bias))
	}
	return d, nil
}

func validateDeconv(op string, g convGeometry, outsize []int) error {
	if err := g.validate(op); err != nil {
		return err
	}
	if outsize != nil && (len(outsize) != 2 || outsize[0] <= 0 || outsize[1] <= 0) {
		return errors.Errorf("%s: outsize must be two positive sizes, got %v", op, outsize)
	}
	return nil
}

// deconvTarget resolves the output size of a transposed convolution for input,
// checking that an explicit outsize is consistent with the input extent.
func deconvTarget(op string, g convGeometry, outsize []int, input *tensor.Tensor) (int, int) {
	shape := input.Shape()
	if len(shape) != 4 {
		panic(fmt.Sprintf("%s: expected 4D input [N,C,H,W], got %v", op, shape))
	}
	h, w := shape[2], shape[3]
	if outsize == nil {
		return deconvOutSize(h, g.ksize, g.stride, g.pad), deconvOutSize(w, g.ksize, g.stride, g.pad)
	}
	if convOutSize(outsize[0], g.ksize, g.stride, g.pad, 1) != h || convOutSize(outsize[1], g.ksize, g.stride, g.pad, 1) != w {
		panic(fmt.Sprintf("%s: outsize %v is inconsistent with input %dx%d", op, outsize, h, w))
	}
	return outsize[0], outsize[1]
}

// Forward performs the transposed convolution.
func (d *Deconv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	outH, outW := deconvTarget("Deconv2D.Forward", d.geom, d.outsize, input)
	out := deconv2d("Deconv2D.Forward", input, d.weight.Tensor(), d.geom.stride, d.geom.pad, outH, outW, d.opts.Parallel)
	return addChannelBias(out, d.bias)
}

// Parameters returns [W, b] or [W].
func (d *Deconv2D) Parameters() []*Parameter {
	if d.bias != nil {
		return []*Parameter{d.weight, d.bias}
	}
	return []*Parameter{d.weight}
}

// Weight returns the kernel parameter.
func (d *Deconv2D) Weight() *Parameter {
	return d.weight
}
