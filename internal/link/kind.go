package link

import (
	"strconv"

	"github.com/pkg/errors"
)

// Kind identifies a descriptor variant. Its string form is the value of the
// "_link" tag in the persisted form.
type Kind int

// Descriptor kinds.
const (
	KindLinear Kind = iota
	KindConvolution2D
	KindDeconvolution2D
	KindDilatedConvolution2D
	KindEmbedID
	KindGRU
	KindStatefulGRU
	KindLSTM
	KindStatelessLSTM
	KindStatefulPeepholeLSTM
	KindBatchNormalization
	KindMerge
	KindGaussian
	KindMinibatchDiscrimination
	numKinds
)

var kindNames = [numKinds]string{
	KindLinear:                  "Linear",
	KindConvolution2D:           "Convolution2D",
	KindDeconvolution2D:         "Deconvolution2D",
	KindDilatedConvolution2D:    "DilatedConvolution2D",
	KindEmbedID:                 "EmbedID",
	KindGRU:                     "GRU",
	KindStatefulGRU:             "StatefulGRU",
	KindLSTM:                    "LSTM",
	KindStatelessLSTM:           "StatelessLSTM",
	KindStatefulPeepholeLSTM:    "StatefulPeepholeLSTM",
	KindBatchNormalization:      "BatchNormalization",
	KindMerge:                   "Merge",
	KindGaussian:                "Gaussian",
	KindMinibatchDiscrimination: "MinibatchDiscrimination",
}

// String returns the kind tag, e.g. "Convolution2D".
func (k Kind) String() string {
	if k < 0 || k >= numKinds {
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
	return kindNames[k]
}

// ParseKind returns the kind with the given tag.
func ParseKind(name string) (Kind, error) {
	for k, n := range kindNames {
		if n == name {
			return Kind(k), nil
		}
	}
	return 0, errors.Wrapf(ErrUnknownKind, "%q", name)
}

// Kinds returns every kind in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, numKinds)
	for i := range kinds {
		kinds[i] = Kind(i)
	}
	return kinds
}

// New returns a descriptor of the given kind with every optional
// hyperparameter at its default and every required one at zero.
func New(kind Kind) (Descriptor, error) {
	switch kind {
	case KindLinear:
		return NewLinear(0, 0), nil
	case KindConvolution2D:
		return NewConvolution2D(0, 0, 0), nil
	case KindDeconvolution2D:
		return NewDeconvolution2D(0, 0, 0), nil
	case KindDilatedConvolution2D:
		return NewDilatedConvolution2D(0, 0, 0), nil
	case KindEmbedID:
		return NewEmbedID(0, 0), nil
	case KindGRU:
		return NewGRU(0), nil
	case KindStatefulGRU:
		return NewStatefulGRU(0, 0), nil
	case KindLSTM:
		return NewLSTM(0, 0), nil
	case KindStatelessLSTM:
		return NewStatelessLSTM(0, 0), nil
	case KindStatefulPeepholeLSTM:
		return NewStatefulPeepholeLSTM(0, 0), nil
	case KindBatchNormalization:
		return NewBatchNormalization(0), nil
	case KindMerge:
		return NewMerge(0, 0), nil
	case KindGaussian:
		return NewGaussian(0, 0), nil
	case KindMinibatchDiscrimination:
		return NewMinibatchDiscrimination(0, 0), nil
	}
	return nil, errors.Wrapf(ErrUnknownKind, "%v", kind)
}
