package nn

import (
	"github.com/born-ml/links/internal/tensor"
)

// WeightNormConvolution2DConfig holds the constructor arguments of a
// weight-normalized 2D convolution.
type WeightNormConvolution2DConfig struct {
	InChannels  int
	OutChannels int
	KSize       int
	Stride      int
	Pad         int
	Bias        float64
	NoBias      bool
	UseCudnn    bool
	InitialV    *tensor.Tensor // [out_channels, in_channels, ksize, ksize]
}

// WeightNormConv2D is a 2D convolution with kernel g · V/‖V‖, normalized per
// output channel.
type WeightNormConv2D struct {
	geom convGeometry
	v    *Parameter
	g    *Parameter // [out_channels]
	bias *Parameter

	opts Options
}

// NewWeightNormConv2D creates a weight-normalized 2D convolution.
func NewWeightNormConv2D(cfg WeightNormConvolution2DConfig, opts Options) (*WeightNormConv2D, error) {
	g := convGeometry{
		inChannels: cfg.InChannels, outChannels: cfg.OutChannels,
		ksize: cfg.KSize, stride: cfg.Stride, pad: cfg.Pad, dilate: 1,
	}
	if err := g.validate("weightnorm conv2d"); err != nil {
		return nil, err
	}
	area := g.ksize * g.ksize
	v, err := fromSlot("weightnorm conv2d.V", cfg.InitialV, nil,
		tensor.Shape{g.outChannels, g.inChannels, g.ksize, g.ksize},
		g.inChannels*area, g.outChannels*area, &opts)
	if err != nil {
		return nil, err
	}
	norms, err := directionNorms("weightnorm conv2d.V", v)
	if err != nil {
		return nil, err
	}
	c := &WeightNormConv2D{
		geom: g,
		v:    NewParameter("V", v),
		g:    NewParameter("g", norms),
		opts: opts,
	}
	if !cfg.NoBias {
		c.bias = NewParameter("b", tensor.Full(tensor.Shape{g.outChannels}, opts.DType, cfg.Bias))
	}
	return c, nil
}

// W returns the effective kernel.
func (c *WeightNormConv2D) W() *tensor.Tensor {
	return normalizeRows(c.v.Tensor(), c.g.Tensor())
}

// Forward performs the convolution with the normalized kernel.
func (c *WeightNormConv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := conv2d("WeightNormConv2D.Forward", input, c.W(), c.geom.stride, c.geom.pad, 1, c.opts.Parallel)
	return addChannelBias(out, c.bias)
}

// Parameters returns [V, g, b] (b omitted when disabled).
func (c *WeightNormConv2D) Parameters() []*Parameter {
	params := []*Parameter{c.v, c.g}
	if c.bias != nil {
		params = append(params, c.bias)
	}
	return params
}

// V returns the direction parameter.
func (c *WeightNormConv2D) V() *Parameter {
	return c.v
}

// WeightNormDeconvolution2DConfig holds the constructor arguments of a
// weight-normalized transposed convolution.
type WeightNormDeconvolution2DConfig struct {
	InChannels  int
	OutChannels int
	KSize       int
	Stride      int
	Pad         int
	Bias        float64
	NoBias      bool
	Outsize     []int
	UseCudnn    bool
	InitialV    *tensor.Tensor // [in_channels, out_channels, ksize, ksize]
}

// WeightNormDeconv2D is a transposed convolution whose kernel is normalized per
// output channel (axis 1 of the [in, out, k, k] kernel).
type WeightNormDeconv2D struct {
	geom    convGeometry
	outsize []int
	v       *Parameter
	g       *Parameter // [out_channels]
	bias    *Parameter

	opts Options
}

// NewWeightNormDeconv2D creates a weight-normalized transposed convolution.
func NewWeightNormDeconv2D(cfg WeightNormDeconvolution2DConfig, opts Options) (*WeightNormDeconv2D, error) {
	g := convGeometry{
		inChannels: cfg.InChannels, outChannels: cfg.OutChannels,
		ksize: cfg.KSize, stride: cfg.Stride, pad: cfg.Pad, dilate: 1,
	}
	if err := validateDeconv("weightnorm deconv2d", g, cfg.Outsize); err != nil {
		return nil, err
	}
	area := g.ksize * g.ksize
	v, err := fromSlot("weightnorm deconv2d.V", cfg.InitialV, nil,
		tensor.Shape{g.inChannels, g.outChannels, g.ksize, g.ksize},
		g.inChannels*area, g.outChannels*area, &opts)
	if err != nil {
		return nil, err
	}
	norms, err := directionNorms("weightnorm deconv2d.V", v.Permute(1, 0, 2, 3))
	if err != nil {
		return nil, err
	}
	d := &WeightNormDeconv2D{
		geom:    g,
		outsize: cfg.Outsize,
		v:       NewParameter("V", v),
		g:       NewParameter("g", norms),
		opts:    opts,
	}
	if !cfg.NoBias {
		d.bias = NewParameter("b", tensor.Full(tensor.Shape{g.outChannels}, opts.DType, cfg.Bias))
	}
	return d, nil
}

// W returns the effective kernel in [in, out, k, k] layout.
func (d *WeightNormDeconv2D) W() *tensor.Tensor {
	return normalizeRows(d.v.Tensor().Permute(1, 0, 2, 3), d.g.Tensor()).Permute(1, 0, 2, 3)
}

// Forward performs the transposed convolution with the normalized kernel.
func (d *WeightNormDeconv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	outH, outW := deconvTarget("WeightNormDeconv2D.Forward", d.geom, d.outsize, input)
	out := deconv2d("WeightNormDeconv2D.Forward", input, d.W(), d.geom.stride, d.geom.pad, outH, outW, d.opts.Parallel)
	return addChannelBias(out, d.bias)
}

// Parameters returns [V, g, b] (b omitted when disabled).
func (d *WeightNormDeconv2D) Parameters() []*Parameter {
	params := []*Parameter{d.v, d.g}
	if d.bias != nil {
		params = append(params, d.bias)
	}
	return params
}

// V returns the direction parameter.
func (d *WeightNormDeconv2D) V() *Parameter {
	return d.v
}
