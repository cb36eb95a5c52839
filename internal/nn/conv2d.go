package nn

import (
	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// Convolution2DConfig holds the constructor arguments of a plain 2D convolution.
type Convolution2DConfig struct {
	InChannels  int
	OutChannels int
	KSize       int // square kernel size
	Stride      int
	Pad         int
	Bias        float64
	NoBias      bool
	UseCudnn    bool           // backend hint; the CPU framework ignores it
	InitialW    *tensor.Tensor // [out_channels, in_channels, ksize, ksize]
}

// DilatedConvolution2DConfig holds the constructor arguments of a dilated 2D convolution.
type DilatedConvolution2DConfig struct {
	InChannels  int
	OutChannels int
	KSize       int
	Stride      int
	Pad         int
	Dilate      int // spacing between kernel taps; 1 is a plain convolution
	Bias        float64
	NoBias      bool
	UseCudnn    bool
	InitialW    *tensor.Tensor // [out_channels, in_channels, ksize, ksize]
}

// Conv2D is a 2D convolutional layer, optionally dilated.
//
// Input shape:  [batch, in_channels, height, width]
// Weight shape: [out_channels, in_channels, ksize, ksize]
// Bias shape:   [out_channels]
// Output shape: [batch, out_channels, out_h, out_w]
//
// Where:
//
//	out_h = (height + 2*pad - dilate*(ksize-1) - 1) / stride + 1
//
// Example:
//
//	conv, err := nn.NewConv2D(nn.Convolution2DConfig{InChannels: 1, OutChannels: 6, KSize: 5, Stride: 1}, opts)
//	output := conv.Forward(input) // [32, 1, 28, 28] -> [32, 6, 24, 24]
type Conv2D struct {
	inChannels  int
	outChannels int
	ksize       int
	stride      int
	pad         int
	dilate      int

	weight *Parameter // [out_channels, in_channels, ksize, ksize]
	bias   *Parameter // [out_channels] or nil

	opts Options
}

// NewConv2D creates a 2D convolution.
func NewConv2D(cfg Convolution2DConfig, opts Options) (*Conv2D, error) {
	return newConv2D("conv2d", convGeometry{
		inChannels: cfg.InChannels, outChannels: cfg.OutChannels,
		ksize: cfg.KSize, stride: cfg.Stride, pad: cfg.Pad, dilate: 1,
	}, cfg.Bias, cfg.NoBias, cfg.InitialW, opts)
}

// NewDilatedConv2D creates a dilated 2D convolution.
func NewDilatedConv2D(cfg DilatedConvolution2DConfig, opts Options) (*Conv2D, error) {
	return newConv2D("dilated conv2d", convGeometry{
		inChannels: cfg.InChannels, outChannels: cfg.OutChannels,
		ksize: cfg.KSize, stride: cfg.Stride, pad: cfg.Pad, dilate: cfg.Dilate,
	}, cfg.Bias, cfg.NoBias, cfg.InitialW, opts)
}

// convGeometry groups the shape hyperparameters shared by every convolution.
type convGeometry struct {
	inChannels, outChannels int
	ksize, stride, pad      int
	dilate                  int
}

func (g convGeometry) validate(op string) error {
	if g.inChannels <= 0 || g.outChannels <= 0 {
		return errors.Errorf("%s: invalid channels in=%d, out=%d", op, g.inChannels, g.outChannels)
	}
	if g.ksize <= 0 {
		return errors.Errorf("%s: invalid ksize %d", op, g.ksize)
	}
	if g.stride <= 0 {
		return errors.Errorf("%s: invalid stride %d", op, g.stride)
	}
	if g.pad < 0 {
		return errors.Errorf("%s: invalid pad %d", op, g.pad)
	}
	if g.dilate <= 0 {
		return errors.Errorf("%s: invalid dilate %d", op, g.dilate)
	}
	return nil
}

func newConv2D(op string, g convGeometry, bias float64, noBias bool, initialW *tensor.Tensor, opts Options) (*Conv2D, error) {
	if err := g.validate(op); err != nil {
		return nil, err
	}
	// fan_in = in_channels * k * k, fan_out = out_channels * k * k
	area := g.ksize * g.ksize
	w, err := fromSlot(op+".W", initialW, nil,
		tensor.Shape{g.outChannels, g.inChannels, g.ksize, g.ksize},
		g.inChannels*area, g.outChannels*area, &opts)
	if err != nil {
		return nil, err
	}

	c := &Conv2D{
		inChannels:  g.inChannels,
		outChannels: g.outChannels,
		ksize:       g.ksize,
		stride:      g.stride,
		pad:         g.pad,
		dilate:      g.dilate,
		weight:      NewParameter("W", w),
		opts:        opts,
	}
	if !noBias {
		c.bias = NewParameter("b", tensor.Full(tensor.Shape{g.outChannels}, opts.DType, bias))
	}
	return c, nil
}

// Forward performs the convolution.
//
// Input: [batch, in_channels, height, width]
// Output: [batch, out_channels, out_h, out_w].
func (c *Conv2D) Forward(input *tensor.Tensor) *tensor.Tensor {
	out := conv2d("Conv2D.Forward", input, c.weight.Tensor(), c.stride, c.pad, c.dilate, c.opts.Parallel)
	return addChannelBias(out, c.bias)
}

// Parameters returns [W, b] or [W].
func (c *Conv2D) Parameters() []*Parameter {
	if c.bias != nil {
		return []*Parameter{c.weight, c.bias}
	}
	return []*Parameter{c.weight}
}

// Weight returns the kernel parameter.
func (c *Conv2D) Weight() *Parameter {
	return c.weight
}

// InChannels returns the number of input channels.
func (c *Conv2D) InChannels() int {
	return c.inChannels
}

// OutChannels returns the number of output channels.
func (c *Conv2D) OutChannels() int {
	return c.outChannels
}

// Dilate returns the kernel dilation (1 for plain convolutions).
func (c *Conv2D) Dilate() int {
	return c.dilate
}
