package link

import (
	"strconv"
	"strings"

	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// Descriptor is a serializable layer configuration.
//
// The set of descriptors is closed: the concrete types are the pointer types of
// this package, one per Kind. Descriptors are plain data and never touch a
// framework until Materialize.
type Descriptor interface {
	// Kind returns the descriptor's variant tag.
	Kind() Kind

	table() table
}

// Linear describes a fully connected layer. InSize 0 infers the input size on the
// first call.
type Linear struct {
	InSize        int
	OutSize       int
	Bias          float64
	NoBias        bool
	UseWeightNorm bool

	InitialW *tensor.Tensor // hidden "_initialW": [out_size, in_size]
}

// NewLinear returns a Linear descriptor with default options.
func NewLinear(inSize, outSize int) *Linear {
	return &Linear{InSize: inSize, OutSize: outSize}
}

// Kind implements Descriptor.
func (d *Linear) Kind() Kind { return KindLinear }

func (d *Linear) table() table {
	return table{
		attrs: []attr{
			{"in_size", &d.InSize},
			{"out_size", &d.OutSize},
			{"bias", &d.Bias},
			{"nobias", &d.NoBias},
			{"use_weightnorm", &d.UseWeightNorm},
		},
		slots: []slot{tensorSlot("_initialW", &d.InitialW)},
	}
}

// Convolution2D describes a 2D convolution with a square kernel.
type Convolution2D struct {
	InChannels    int
	OutChannels   int
	KSize         int
	Stride        int
	Pad           int
	Bias          float64
	NoBias        bool
	UseCudnn      bool
	UseWeightNorm bool

	InitialW *tensor.Tensor // hidden "_initialW": [out, in, ksize, ksize]
}

// NewConvolution2D returns a Convolution2D descriptor with stride 1 and no padding.
func NewConvolution2D(inChannels, outChannels, ksize int) *Convolution2D {
	return &Convolution2D{InChannels: inChannels, OutChannels: outChannels, KSize: ksize, Stride: 1, UseCudnn: true}
}

// Kind implements Descriptor.
func (d *Convolution2D) Kind() Kind { return KindConvolution2D }

func (d *Convolution2D) table() table {
	return table{
		attrs: []attr{
			{"in_channels", &d.InChannels},
			{"out_channels", &d.OutChannels},
			{"ksize", &d.KSize},
			{"stride", &d.Stride},
			{"pad", &d.Pad},
			{"bias", &d.Bias},
			{"nobias", &d.NoBias},
			{"use_cudnn", &d.UseCudnn},
			{"use_weightnorm", &d.UseWeightNorm},
		},
		slots: []slot{tensorSlot("_initialW", &d.InitialW)},
	}
}

// Deconvolution2D describes a 2D transposed convolution. Outsize, when set, is
// the explicit [height, width] of the output.
type Deconvolution2D struct {
	InChannels    int
	OutChannels   int
	KSize         int
	Stride        int
	Pad           int
	Bias          float64
	NoBias        bool
	Outsize       []int
	UseCudnn      bool
	UseWeightNorm bool

	InitialW *tensor.Tensor // hidden "_initialW": [in, out, ksize, ksize]
}

// NewDeconvolution2D returns a Deconvolution2D descriptor with stride 1 and no padding.
func NewDeconvolution2D(inChannels, outChannels, ksize int) *Deconvolution2D {
	return &Deconvolution2D{InChannels: inChannels, OutChannels: outChannels, KSize: ksize, Stride: 1, UseCudnn: true}
}

// Kind implements Descriptor.
func (d *Deconvolution2D) Kind() Kind { return KindDeconvolution2D }

func (d *Deconvolution2D) table() table {
	return table{
		attrs: []attr{
			{"in_channels", &d.InChannels},
			{"out_channels", &d.OutChannels},
			{"ksize", &d.KSize},
			{"stride", &d.Stride},
			{"pad", &d.Pad},
			{"bias", &d.Bias},
			{"nobias", &d.NoBias},
			{"outsize", &d.Outsize},
			{"use_cudnn", &d.UseCudnn},
			{"use_weightnorm", &d.UseWeightNorm},
		},
		slots: []slot{tensorSlot("_initialW", &d.InitialW)},
	}
}

// DilatedConvolution2D describes a dilated 2D convolution. It has no
// weight-normalized form.
type DilatedConvolution2D struct {
	InChannels  int
	OutChannels int
	KSize       int
	Stride      int
	Pad         int
	Dilate      int
	Bias        float64
	NoBias      bool
	UseCudnn    bool

	InitialW *tensor.Tensor // hidden "_initialW": [out, in, ksize, ksize]
}

// NewDilatedConvolution2D returns a DilatedConvolution2D descriptor with stride 1,
// no padding and dilation 1.
func NewDilatedConvolution2D(inChannels, outChannels, ksize int) *DilatedConvolution2D {
	return &DilatedConvolution2D{
		InChannels: inChannels, OutChannels: outChannels, KSize: ksize,
		Stride: 1, Dilate: 1, UseCudnn: true,
	}
}

// Kind implements Descriptor.
func (d *DilatedConvolution2D) Kind() Kind { return KindDilatedConvolution2D }

func (d *DilatedConvolution2D) table() table {
	return table{
		attrs: []attr{
			{"in_channels", &d.InChannels},
			{"out_channels", &d.OutChannels},
			{"ksize", &d.KSize},
			{"stride", &d.Stride},
			{"pad", &d.Pad},
			{"dilate", &d.Dilate},
			{"bias", &d.Bias},
			{"nobias", &d.NoBias},
			{"use_cudnn", &d.UseCudnn},
		},
		slots: []slot{tensorSlot("_initialW", &d.InitialW)},
	}
}

// EmbedID describes an embedding lookup. Ids equal to IgnoreLabel, when set,
// embed to zeros.
type EmbedID struct {
	InSize      int
	OutSize     int
	IgnoreLabel *int

	InitialW *tensor.Tensor // hidden "_initialW": [in_size, out_size]
}

// NewEmbedID returns an EmbedID descriptor without an ignore label.
func NewEmbedID(inSize, outSize int) *EmbedID {
	return &EmbedID{InSize: inSize, OutSize: outSize}
}

// Kind implements Descriptor.
func (d *EmbedID) Kind() Kind { return KindEmbedID }

func (d *EmbedID) table() table {
	return table{
		attrs: []attr{
			{"in_size", &d.InSize},
			{"out_size", &d.OutSize},
			{"ignore_label", &d.IgnoreLabel},
		},
		slots: []slot{tensorSlot("_initialW", &d.InitialW)},
	}
}

// GRU describes a stateless GRU cell. NInputs defaults to NUnits when unset.
type GRU struct {
	NUnits  int
	NInputs *int

	Init      nn.Initializer // hidden "_init"
	InnerInit nn.Initializer // hidden "_inner_init"
}

// NewGRU returns a GRU descriptor whose input size equals nUnits.
func NewGRU(nUnits int) *GRU {
	return &GRU{NUnits: nUnits}
}

// Kind implements Descriptor.
func (d *GRU) Kind() Kind { return KindGRU }

func (d *GRU) table() table {
	return table{
		attrs: []attr{
			{"n_units", &d.NUnits},
			{"n_inputs", &d.NInputs},
		},
		slots: []slot{
			initSlot("_init", &d.Init),
			initSlot("_inner_init", &d.InnerInit),
		},
	}
}

// StatefulGRU describes a GRU that carries its hidden state.
type StatefulGRU struct {
	InSize   int
	OutSize  int
	BiasInit float64

	Init      nn.Initializer // hidden "_init"
	InnerInit nn.Initializer // hidden "_inner_init"
}

// NewStatefulGRU returns a StatefulGRU descriptor with zero initial biases.
func NewStatefulGRU(inSize, outSize int) *StatefulGRU {
	return &StatefulGRU{InSize: inSize, OutSize: outSize}
}

// Kind implements Descriptor.
func (d *StatefulGRU) Kind() Kind { return KindStatefulGRU }

func (d *StatefulGRU) table() table {
	return table{
		attrs: []attr{
			{"in_size", &d.InSize},
			{"out_size", &d.OutSize},
			{"bias_init", &d.BiasInit},
		},
		slots: []slot{
			initSlot("_init", &d.Init),
			initSlot("_inner_init", &d.InnerInit),
		},
	}
}

// LSTM describes a stateful fully-connected LSTM.
type LSTM struct {
	InSize  int
	OutSize int

	LateralInit    nn.Initializer // hidden "_lateral_init"
	UpwardInit     nn.Initializer // hidden "_upward_init"
	BiasInit       nn.Initializer // hidden "_bias_init"
	ForgetBiasInit nn.Initializer // hidden "_forget_bias_init"
}

// NewLSTM returns an LSTM descriptor.
func NewLSTM(inSize, outSize int) *LSTM {
	return &LSTM{InSize: inSize, OutSize: outSize}
}

// Kind implements Descriptor.
func (d *LSTM) Kind() Kind { return KindLSTM }

func (d *LSTM) table() table {
	return table{
		attrs: []attr{
			{"in_size", &d.InSize},
			{"out_size", &d.OutSize},
		},
		slots: []slot{
			initSlot("_lateral_init", &d.LateralInit),
			initSlot("_upward_init", &d.UpwardInit),
			initSlot("_bias_init", &d.BiasInit),
			initSlot("_forget_bias_init", &d.ForgetBiasInit),
		},
	}
}

// StatelessLSTM describes an LSTM cell whose caller owns the state.
type StatelessLSTM struct {
	InSize  int
	OutSize int

	LateralInit nn.Initializer // hidden "_lateral_init"
	UpwardInit  nn.Initializer // hidden "_upward_init"
}

// NewStatelessLSTM returns a StatelessLSTM descriptor.
func NewStatelessLSTM(inSize, outSize int) *StatelessLSTM {
	return &StatelessLSTM{InSize: inSize, OutSize: outSize}
}

// Kind implements Descriptor.
func (d *StatelessLSTM) Kind() Kind { return KindStatelessLSTM }

func (d *StatelessLSTM) table() table {
	return table{
		attrs: []attr{
			{"in_size", &d.InSize},
			{"out_size", &d.OutSize},
		},
		slots: []slot{
			initSlot("_lateral_init", &d.LateralInit),
			initSlot("_upward_init", &d.UpwardInit),
		},
	}
}

// StatefulPeepholeLSTM describes a stateful LSTM with peephole connections. It has
// no hidden slots.
type StatefulPeepholeLSTM struct {
	InSize  int
	OutSize int
}

// NewStatefulPeepholeLSTM returns a StatefulPeepholeLSTM descriptor.
func NewStatefulPeepholeLSTM(inSize, outSize int) *StatefulPeepholeLSTM {
	return &StatefulPeepholeLSTM{InSize: inSize, OutSize: outSize}
}

// Kind implements Descriptor.
func (d *StatefulPeepholeLSTM) Kind() Kind { return KindStatefulPeepholeLSTM }

func (d *StatefulPeepholeLSTM) table() table {
	return table{
		attrs: []attr{
			{"in_size", &d.InSize},
			{"out_size", &d.OutSize},
		},
	}
}

// BatchNormalization describes per-channel batch normalization. DType is one of
// "float32", "float64" or "float16".
type BatchNormalization struct {
	Size     int
	Decay    float64
	Eps      float64
	DType    string
	UseGamma bool
	UseBeta  bool
	UseCudnn bool
}

// NewBatchNormalization returns a BatchNormalization descriptor with decay 0.9,
// eps 2e-5, float32 parameters and both gamma and beta.
func NewBatchNormalization(size int) *BatchNormalization {
	return &BatchNormalization{
		Size: size, Decay: 0.9, Eps: 2e-5, DType: tensor.Float32.String(),
		UseGamma: true, UseBeta: true, UseCudnn: true,
	}
}

// Kind implements Descriptor.
func (d *BatchNormalization) Kind() Kind { return KindBatchNormalization }

func (d *BatchNormalization) table() table {
	return table{
		attrs: []attr{
			{"size", &d.Size},
			{"decay", &d.Decay},
			{"eps", &d.Eps},
			{"dtype", &d.DType},
			{"use_gamma", &d.UseGamma},
			{"use_beta", &d.UseBeta},
			{"use_cudnn", &d.UseCudnn},
		},
		validate: func() error {
			_, err := tensor.ParseDType(d.DType)
			return err
		},
	}
}

// Merge describes the sum of NumInputs dense heads, one per input. InitialW[i]
// is the injected weight of head i.
type Merge struct {
	NumInputs     int
	OutSize       int
	Bias          float64
	NoBias        bool
	UseWeightNorm bool

	InitialW []*tensor.Tensor // hidden "_initialW_<i>"
}

// NewMerge returns a Merge descriptor.
func NewMerge(numInputs, outSize int) *Merge {
	return &Merge{NumInputs: numInputs, OutSize: outSize}
}

// Kind implements Descriptor.
func (d *Merge) Kind() Kind { return KindMerge }

// SetInitialW injects the weight of head i.
func (d *Merge) SetInitialW(i int, w *tensor.Tensor) {
	for len(d.InitialW) <= i {
		d.InitialW = append(d.InitialW, nil)
	}
	d.InitialW[i] = w
}

// maxMergeSlot bounds the head index accepted from a persisted form.
const maxMergeSlot = 1 << 12

const mergeSlotPrefix = "_initialW_"

func mergeSlotName(i int) string {
	return mergeSlotPrefix + strconv.Itoa(i)
}

func (d *Merge) table() table {
	t := table{
		attrs: []attr{
			{"num_inputs", &d.NumInputs},
			{"out_size", &d.OutSize},
			{"bias", &d.Bias},
			{"nobias", &d.NoBias},
			{"use_weightnorm", &d.UseWeightNorm},
		},
	}
	for i := range d.InitialW {
		t.slots = append(t.slots, tensorSlot(mergeSlotName(i), &d.InitialW[i]))
	}
	t.resolve = func(name string) (slot, error) {
		index, ok := strings.CutPrefix(name, mergeSlotPrefix)
		if !ok {
			return slot{}, nil
		}
		i, err := strconv.Atoi(index)
		if err != nil || i < 0 || mergeSlotName(i) != name {
			return slot{}, nil
		}
		if i >= maxMergeSlot {
			return slot{}, errors.Wrapf(ErrInvalidAttribute, "head index %d exceeds %d", i, maxMergeSlot)
		}
		for len(d.InitialW) <= i {
			d.InitialW = append(d.InitialW, nil)
		}
		return tensorSlot(name, &d.InitialW[i]), nil
	}
	return t
}

// Gaussian describes a dual dense head producing a mean and a log-variance.
type Gaussian struct {
	InSize        int
	OutSize       int
	Bias          float64
	NoBias        bool
	UseWeightNorm bool

	InitialWMean  *tensor.Tensor // hidden "_initialW_mean"
	InitialWLnVar *tensor.Tensor // hidden "_initialW_ln_var"
}

// NewGaussian returns a Gaussian descriptor.
func NewGaussian(inSize, outSize int) *Gaussian {
	return &Gaussian{InSize: inSize, OutSize: outSize}
}

// Kind implements Descriptor.
func (d *Gaussian) Kind() Kind { return KindGaussian }

func (d *Gaussian) table() table {
	return table{
		attrs: []attr{
			{"in_size", &d.InSize},
			{"out_size", &d.OutSize},
			{"bias", &d.Bias},
			{"nobias", &d.NoBias},
			{"use_weightnorm", &d.UseWeightNorm},
		},
		slots: []slot{
			tensorSlot("_initialW_mean", &d.InitialWMean),
			tensorSlot("_initialW_ln_var", &d.InitialWLnVar),
		},
	}
}

// MinibatchDiscrimination describes the minibatch-discrimination feature block:
// NumKernels similarity features of dimension NDimKernel appended to the input.
type MinibatchDiscrimination struct {
	InSize     int
	NumKernels int
	NDimKernel int

	InitialW *tensor.Tensor // hidden "_initialW": [num_kernels*ndim_kernel, in_size]
}

// NewMinibatchDiscrimination returns a MinibatchDiscrimination descriptor with
// kernel dimension 5.
func NewMinibatchDiscrimination(inSize, numKernels int) *MinibatchDiscrimination {
	return &MinibatchDiscrimination{InSize: inSize, NumKernels: numKernels, NDimKernel: 5}
}

// Kind implements Descriptor.
func (d *MinibatchDiscrimination) Kind() Kind { return KindMinibatchDiscrimination }

func (d *MinibatchDiscrimination) table() table {
	return table{
		attrs: []attr{
			{"in_size", &d.InSize},
			{"num_kernels", &d.NumKernels},
			{"ndim_kernel", &d.NDimKernel},
		},
		slots: []slot{tensorSlot("_initialW", &d.InitialW)},
	}
}
