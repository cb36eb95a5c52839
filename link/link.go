// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package link

import (
	"github.com/born-ml/links/internal/link"
	"github.com/born-ml/links/nn"
)

// Descriptor is a serializable layer configuration. The concrete types are the
// pointer types of this package.
type Descriptor = link.Descriptor

// Kind identifies a descriptor variant.
type Kind = link.Kind

// Descriptor kinds.
const (
	KindLinear                  Kind = link.KindLinear
	KindConvolution2D           Kind = link.KindConvolution2D
	KindDeconvolution2D         Kind = link.KindDeconvolution2D
	KindDilatedConvolution2D    Kind = link.KindDilatedConvolution2D
	KindEmbedID                 Kind = link.KindEmbedID
	KindGRU                     Kind = link.KindGRU
	KindStatefulGRU             Kind = link.KindStatefulGRU
	KindLSTM                    Kind = link.KindLSTM
	KindStatelessLSTM           Kind = link.KindStatelessLSTM
	KindStatefulPeepholeLSTM    Kind = link.KindStatefulPeepholeLSTM
	KindBatchNormalization      Kind = link.KindBatchNormalization
	KindMerge                   Kind = link.KindMerge
	KindGaussian                Kind = link.KindGaussian
	KindMinibatchDiscrimination Kind = link.KindMinibatchDiscrimination
)

// KindKey is the attribute carrying the kind tag in the exported form.
const KindKey = link.KindKey

// Attrs is the flat exported form of a descriptor.
type Attrs = link.Attrs

// Framework constructs live units from layer configs.
type Framework = link.Framework

// Errors
var (
	ErrNotImplemented   = link.ErrNotImplemented
	ErrUnknownKind      = link.ErrUnknownKind
	ErrUnknownAttribute = link.ErrUnknownAttribute
	ErrInvalidAttribute = link.ErrInvalidAttribute
	ErrArity            = link.ErrArity
)

// ArityError reports a composite unit called with the wrong number of inputs.
type ArityError = link.ArityError

// Descriptors

// Linear describes a fully connected layer.
type Linear = link.Linear

// NewLinear returns a Linear descriptor. inSize 0 infers the input size on the
// first call.
func NewLinear(inSize, outSize int) *Linear { return link.NewLinear(inSize, outSize) }

// Convolution2D describes a 2D convolution.
type Convolution2D = link.Convolution2D

// NewConvolution2D returns a Convolution2D descriptor with stride 1 and no padding.
func NewConvolution2D(inChannels, outChannels, ksize int) *Convolution2D {
	return link.NewConvolution2D(inChannels, outChannels, ksize)
}

// Deconvolution2D describes a 2D transposed convolution.
type Deconvolution2D = link.Deconvolution2D

// NewDeconvolution2D returns a Deconvolution2D descriptor with stride 1 and no padding.
func NewDeconvolution2D(inChannels, outChannels, ksize int) *Deconvolution2D {
	return link.NewDeconvolution2D(inChannels, outChannels, ksize)
}

// DilatedConvolution2D describes a dilated 2D convolution.
type DilatedConvolution2D = link.DilatedConvolution2D

// NewDilatedConvolution2D returns a DilatedConvolution2D descriptor with dilation 1.
func NewDilatedConvolution2D(inChannels, outChannels, ksize int) *DilatedConvolution2D {
	return link.NewDilatedConvolution2D(inChannels, outChannels, ksize)
}

// EmbedID describes an embedding lookup.
type EmbedID = link.EmbedID

// NewEmbedID returns an EmbedID descriptor.
func NewEmbedID(inSize, outSize int) *EmbedID { return link.NewEmbedID(inSize, outSize) }

// GRU describes a stateless GRU cell.
type GRU = link.GRU

// NewGRU returns a GRU descriptor.
func NewGRU(nUnits int) *GRU { return link.NewGRU(nUnits) }

// StatefulGRU describes a stateful GRU.
type StatefulGRU = link.StatefulGRU

// NewStatefulGRU returns a StatefulGRU descriptor.
func NewStatefulGRU(inSize, outSize int) *StatefulGRU { return link.NewStatefulGRU(inSize, outSize) }

// LSTM describes a stateful LSTM.
type LSTM = link.LSTM

// NewLSTM returns an LSTM descriptor.
func NewLSTM(inSize, outSize int) *LSTM { return link.NewLSTM(inSize, outSize) }

// StatelessLSTM describes an LSTM cell whose caller owns the state.
type StatelessLSTM = link.StatelessLSTM

// NewStatelessLSTM returns a StatelessLSTM descriptor.
func NewStatelessLSTM(inSize, outSize int) *StatelessLSTM {
	return link.NewStatelessLSTM(inSize, outSize)
}

// StatefulPeepholeLSTM describes a stateful peephole LSTM.
type StatefulPeepholeLSTM = link.StatefulPeepholeLSTM

// NewStatefulPeepholeLSTM returns a StatefulPeepholeLSTM descriptor.
func NewStatefulPeepholeLSTM(inSize, outSize int) *StatefulPeepholeLSTM {
	return link.NewStatefulPeepholeLSTM(inSize, outSize)
}

// BatchNormalization describes batch normalization.
type BatchNormalization = link.BatchNormalization

// NewBatchNormalization returns a BatchNormalization descriptor.
func NewBatchNormalization(size int) *BatchNormalization { return link.NewBatchNormalization(size) }

// Merge describes the sum of one dense head per input.
type Merge = link.Merge

// NewMerge returns a Merge descriptor.
func NewMerge(numInputs, outSize int) *Merge { return link.NewMerge(numInputs, outSize) }

// Gaussian describes a mean and log-variance head pair.
type Gaussian = link.Gaussian

// NewGaussian returns a Gaussian descriptor.
func NewGaussian(inSize, outSize int) *Gaussian { return link.NewGaussian(inSize, outSize) }

// MinibatchDiscrimination describes the minibatch-discrimination feature block.
type MinibatchDiscrimination = link.MinibatchDiscrimination

// NewMinibatchDiscrimination returns a MinibatchDiscrimination descriptor.
func NewMinibatchDiscrimination(inSize, numKernels int) *MinibatchDiscrimination {
	return link.NewMinibatchDiscrimination(inSize, numKernels)
}

// Composite units

// MergeUnit is the materialized Merge.
type MergeUnit = link.MergeUnit

// GaussianUnit is the materialized Gaussian.
type GaussianUnit = link.GaussianUnit

// MinibatchDiscriminationUnit is the materialized MinibatchDiscrimination.
type MinibatchDiscriminationUnit = link.MinibatchDiscriminationUnit

// Operations

// New returns a descriptor of the given kind with default hyperparameters.
func New(kind Kind) (Descriptor, error) { return link.New(kind) }

// ParseKind returns the kind with the given tag.
func ParseKind(name string) (Kind, error) { return link.ParseKind(name) }

// Kinds returns every kind in declaration order.
func Kinds() []Kind { return link.Kinds() }

// Export returns every set attribute of d plus its kind tag.
func Export(d Descriptor) Attrs { return link.Export(d) }

// Import sets the attributes of attrs on d.
func Import(d Descriptor, attrs Attrs) error { return link.Import(d, attrs) }

// Args returns the constructor view of d.
func Args(d Descriptor) Attrs { return link.Args(d) }

// Describe returns a human-readable dump of d.
func Describe(d Descriptor) string { return link.Describe(d) }

// WeightSlots returns the hidden slot names d accepts.
func WeightSlots(d Descriptor) []string { return link.WeightSlots(d) }

// Materialize builds the live unit described by d.
func Materialize(d Descriptor, fw Framework) (nn.Unit, error) { return link.Materialize(d, fw) }

// Encode returns the JSON form of d.
func Encode(d Descriptor) ([]byte, error) { return link.Encode(d) }

// Decode parses a descriptor from its JSON form.
func Decode(b []byte) (Descriptor, error) { return link.Decode(b) }

// EncodeYAML returns the YAML form of d.
func EncodeYAML(d Descriptor) ([]byte, error) { return link.EncodeYAML(d) }

// DecodeYAML parses a descriptor from its YAML form.
func DecodeYAML(b []byte) (Descriptor, error) { return link.DecodeYAML(b) }

// WireAttrs returns Export(d) with hidden values in plain serializable form.
func WireAttrs(d Descriptor) (Attrs, error) { return link.WireAttrs(d) }

// FromAttrs builds a descriptor from its exported form.
func FromAttrs(attrs Attrs) (Descriptor, error) { return link.FromAttrs(attrs) }
