package link

import (
	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
	"github.com/dustin/go-humanize"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// Framework constructs live units from typed configs. Plain and weight-normalized
// constructors take different configs: plain ones carry the injected weight as
// InitialW, weight-normalized ones as InitialV.
//
// nn.CPU is the reference implementation.
type Framework interface {
	Linear(cfg nn.LinearConfig) (nn.Module, error)
	WeightNormLinear(cfg nn.WeightNormLinearConfig) (nn.Module, error)
	Convolution2D(cfg nn.Convolution2DConfig) (nn.Module, error)
	WeightNormConvolution2D(cfg nn.WeightNormConvolution2DConfig) (nn.Module, error)
	Deconvolution2D(cfg nn.Deconvolution2DConfig) (nn.Module, error)
	WeightNormDeconvolution2D(cfg nn.WeightNormDeconvolution2DConfig) (nn.Module, error)
	DilatedConvolution2D(cfg nn.DilatedConvolution2DConfig) (nn.Module, error)
	EmbedID(cfg nn.EmbedIDConfig) (nn.Module, error)
	GRU(cfg nn.GRUConfig) (nn.Unit, error)
	StatefulGRU(cfg nn.StatefulGRUConfig) (nn.Module, error)
	LSTM(cfg nn.LSTMConfig) (nn.Module, error)
	StatelessLSTM(cfg nn.StatelessLSTMConfig) (nn.Unit, error)
	StatefulPeepholeLSTM(cfg nn.StatefulPeepholeLSTMConfig) (nn.Module, error)
	BatchNormalization(cfg nn.BatchNormalizationConfig) (nn.Module, error)
}

// Compile-time check that the reference framework satisfies Framework.
var _ Framework = (*nn.CPU)(nil)

// Materialize builds the live unit described by d.
//
// Simple kinds return the framework primitive. Merge, Gaussian and
// MinibatchDiscrimination return a *MergeUnit, *GaussianUnit and
// *MinibatchDiscriminationUnit. d is only read; every call builds fresh
// primitives. Framework errors are returned wrapped with the kind; errors.Cause
// recovers them.
func Materialize(d Descriptor, fw Framework) (nn.Unit, error) {
	if d == nil {
		return nil, errors.Wrap(ErrNotImplemented, "materialize nil descriptor")
	}
	if fw == nil {
		return nil, errors.Errorf("materialize %s: nil framework", d.Kind())
	}
	unit, err := materialize(d, fw)
	if err != nil {
		return nil, errors.Wrapf(err, "materialize %s", d.Kind())
	}
	if klog.V(1).Enabled() {
		klog.Infof("link: materialized %s with %s parameters", d.Kind(), humanize.Comma(int64(nn.CountParameters(unit))))
	}
	return unit, nil
}

func materialize(d Descriptor, fw Framework) (nn.Unit, error) {
	switch d := d.(type) {
	case *Linear:
		return linearHead(fw, d.UseWeightNorm, d.InSize, d.OutSize, d.Bias, d.NoBias, d.InitialW)

	case *Convolution2D:
		if d.UseWeightNorm {
			return fw.WeightNormConvolution2D(nn.WeightNormConvolution2DConfig{
				InChannels: d.InChannels, OutChannels: d.OutChannels, KSize: d.KSize,
				Stride: d.Stride, Pad: d.Pad, Bias: d.Bias, NoBias: d.NoBias,
				UseCudnn: d.UseCudnn, InitialV: d.InitialW,
			})
		}
		return fw.Convolution2D(nn.Convolution2DConfig{
			InChannels: d.InChannels, OutChannels: d.OutChannels, KSize: d.KSize,
			Stride: d.Stride, Pad: d.Pad, Bias: d.Bias, NoBias: d.NoBias,
			UseCudnn: d.UseCudnn, InitialW: d.InitialW,
		})

	case *Deconvolution2D:
		if d.UseWeightNorm {
			return fw.WeightNormDeconvolution2D(nn.WeightNormDeconvolution2DConfig{
				InChannels: d.InChannels, OutChannels: d.OutChannels, KSize: d.KSize,
				Stride: d.Stride, Pad: d.Pad, Bias: d.Bias, NoBias: d.NoBias,
				Outsize: d.Outsize, UseCudnn: d.UseCudnn, InitialV: d.InitialW,
			})
		}
		return fw.Deconvolution2D(nn.Deconvolution2DConfig{
			InChannels: d.InChannels, OutChannels: d.OutChannels, KSize: d.KSize,
			Stride: d.Stride, Pad: d.Pad, Bias: d.Bias, NoBias: d.NoBias,
			Outsize: d.Outsize, UseCudnn: d.UseCudnn, InitialW: d.InitialW,
		})

	case *DilatedConvolution2D:
		return fw.DilatedConvolution2D(nn.DilatedConvolution2DConfig{
			InChannels: d.InChannels, OutChannels: d.OutChannels, KSize: d.KSize,
			Stride: d.Stride, Pad: d.Pad, Dilate: d.Dilate, Bias: d.Bias, NoBias: d.NoBias,
			UseCudnn: d.UseCudnn, InitialW: d.InitialW,
		})

	case *EmbedID:
		return fw.EmbedID(nn.EmbedIDConfig{
			InSize: d.InSize, OutSize: d.OutSize, IgnoreLabel: d.IgnoreLabel, InitialW: d.InitialW,
		})

	case *GRU:
		cfg := nn.GRUConfig{NUnits: d.NUnits, Init: d.Init, InnerInit: d.InnerInit}
		if d.NInputs != nil {
			cfg.NInputs = *d.NInputs
		}
		return fw.GRU(cfg)

	case *StatefulGRU:
		return fw.StatefulGRU(nn.StatefulGRUConfig{
			InSize: d.InSize, OutSize: d.OutSize, BiasInit: d.BiasInit, Init: d.Init, InnerInit: d.InnerInit,
		})

	case *LSTM:
		return fw.LSTM(nn.LSTMConfig{
			InSize: d.InSize, OutSize: d.OutSize,
			LateralInit: d.LateralInit, UpwardInit: d.UpwardInit,
			BiasInit: d.BiasInit, ForgetBiasInit: d.ForgetBiasInit,
		})

	case *StatelessLSTM:
		return fw.StatelessLSTM(nn.StatelessLSTMConfig{
			InSize: d.InSize, OutSize: d.OutSize, LateralInit: d.LateralInit, UpwardInit: d.UpwardInit,
		})

	case *StatefulPeepholeLSTM:
		return fw.StatefulPeepholeLSTM(nn.StatefulPeepholeLSTMConfig{InSize: d.InSize, OutSize: d.OutSize})

	case *BatchNormalization:
		dtype, err := tensor.ParseDType(d.DType)
		if err != nil {
			return nil, err
		}
		return fw.BatchNormalization(nn.BatchNormalizationConfig{
			Size: d.Size, Decay: d.Decay, Eps: d.Eps, DType: dtype,
			UseGamma: d.UseGamma, UseBeta: d.UseBeta, UseCudnn: d.UseCudnn,
		})

	case *Merge:
		return materializeMerge(d, fw)

	case *Gaussian:
		mean, err := linearHead(fw, d.UseWeightNorm, d.InSize, d.OutSize, d.Bias, d.NoBias, d.InitialWMean)
		if err != nil {
			return nil, errors.Wrap(err, "mean head")
		}
		lnVar, err := linearHead(fw, d.UseWeightNorm, d.InSize, d.OutSize, d.Bias, d.NoBias, d.InitialWLnVar)
		if err != nil {
			return nil, errors.Wrap(err, "ln_var head")
		}
		return &GaussianUnit{mean: mean, lnVar: lnVar}, nil

	case *MinibatchDiscrimination:
		if d.NumKernels <= 0 || d.NDimKernel <= 0 {
			return nil, errors.Wrapf(ErrInvalidAttribute, "num_kernels=%d, ndim_kernel=%d", d.NumKernels, d.NDimKernel)
		}
		t, err := fw.Linear(nn.LinearConfig{InSize: d.InSize, OutSize: d.NumKernels * d.NDimKernel, InitialW: d.InitialW})
		if err != nil {
			return nil, err
		}
		return &MinibatchDiscriminationUnit{t: t, numKernels: d.NumKernels, ndimKernel: d.NDimKernel}, nil
	}
	return nil, errors.Wrapf(ErrNotImplemented, "descriptor %T", d)
}

func materializeMerge(d *Merge, fw Framework) (nn.Unit, error) {
	if d.NumInputs <= 0 {
		return nil, errors.Wrapf(ErrInvalidAttribute, "num_inputs=%d", d.NumInputs)
	}
	for i := d.NumInputs; i < len(d.InitialW); i++ {
		if d.InitialW[i] != nil {
			return nil, errors.Wrapf(ErrUnknownAttribute, "%s has no input (num_inputs=%d)", mergeSlotName(i), d.NumInputs)
		}
	}
	heads := make([]nn.Module, d.NumInputs)
	for i := range heads {
		var w *tensor.Tensor
		if i < len(d.InitialW) {
			w = d.InitialW[i]
		}
		head, err := linearHead(fw, d.UseWeightNorm, 0, d.OutSize, d.Bias, d.NoBias, w)
		if err != nil {
			return nil, errors.Wrapf(err, "head %d", i)
		}
		heads[i] = head
	}
	return &MergeUnit{heads: heads}, nil
}

// linearHead dispatches a dense layer on the weight-norm toggle, routing the
// injected weight to InitialW or InitialV.
func linearHead(fw Framework, weightNorm bool, inSize, outSize int, bias float64, noBias bool, w *tensor.Tensor) (nn.Module, error) {
	if weightNorm {
		return fw.WeightNormLinear(nn.WeightNormLinearConfig{
			InSize: inSize, OutSize: outSize, Bias: bias, NoBias: noBias, InitialV: w,
		})
	}
	return fw.Linear(nn.LinearConfig{
		InSize: inSize, OutSize: outSize, Bias: bias, NoBias: noBias, InitialW: w,
	})
}
