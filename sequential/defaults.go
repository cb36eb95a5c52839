// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sequential

import (
	"math/rand"

	"github.com/born-ml/links/link"
	"github.com/born-ml/links/nn"
	"github.com/born-ml/links/tensor"
	"github.com/pkg/errors"
)

// weightDefaults fills empty weight slots of a descriptor copy from a default
// initializer. A nil *weightDefaults leaves descriptors untouched.
type weightDefaults struct {
	init  nn.Initializer
	dtype tensor.DataType
	rng   *rand.Rand
}

// apply returns d, or a copy of d with its empty slots filled. Slots whose shape
// is only known after the first Forward (lazy in-size, Merge heads) stay empty.
func (w *weightDefaults) apply(d link.Descriptor) (link.Descriptor, error) {
	if w == nil {
		return d, nil
	}
	c, err := link.FromAttrs(link.Export(d))
	if err != nil {
		return nil, err
	}

	switch c := c.(type) {
	case *link.Linear:
		if c.InSize > 0 {
			return c, w.fill(&c.InitialW, tensor.Shape{c.OutSize, c.InSize}, c.InSize, c.OutSize)
		}
	case *link.Convolution2D:
		return c, w.fillKernel(&c.InitialW, c.OutChannels, c.InChannels, c.KSize)
	case *link.DilatedConvolution2D:
		return c, w.fillKernel(&c.InitialW, c.OutChannels, c.InChannels, c.KSize)
	case *link.Deconvolution2D:
		return c, w.fillKernel(&c.InitialW, c.InChannels, c.OutChannels, c.KSize)
	case *link.EmbedID:
		return c, w.fill(&c.InitialW, tensor.Shape{c.InSize, c.OutSize}, c.InSize, c.OutSize)
	case *link.Gaussian:
		shape := tensor.Shape{c.OutSize, c.InSize}
		if err := w.fill(&c.InitialWMean, shape, c.InSize, c.OutSize); err != nil {
			return nil, err
		}
		return c, w.fill(&c.InitialWLnVar, shape, c.InSize, c.OutSize)
	case *link.MinibatchDiscrimination:
		out := c.NumKernels * c.NDimKernel
		return c, w.fill(&c.InitialW, tensor.Shape{out, c.InSize}, c.InSize, out)
	case *link.GRU:
		w.use(&c.Init)
		w.use(&c.InnerInit)
	case *link.StatefulGRU:
		w.use(&c.Init)
		w.use(&c.InnerInit)
	case *link.LSTM:
		w.use(&c.LateralInit)
		w.use(&c.UpwardInit)
	case *link.StatelessLSTM:
		w.use(&c.LateralInit)
		w.use(&c.UpwardInit)
	}
	return c, nil
}

func (w *weightDefaults) use(slot *nn.Initializer) {
	if *slot == nil {
		*slot = w.init
	}
}

// fillKernel fills a [rows, cols, k, k] kernel; fans follow the first two axes.
func (w *weightDefaults) fillKernel(slot **tensor.Tensor, rows, cols, ksize int) error {
	area := ksize * ksize
	return w.fill(slot, tensor.Shape{rows, cols, ksize, ksize}, cols*area, rows*area)
}

func (w *weightDefaults) fill(slot **tensor.Tensor, shape tensor.Shape, fanIn, fanOut int) error {
	if *slot != nil {
		return nil
	}
	for _, d := range shape {
		if d <= 0 {
			// Invalid geometry is reported by the framework.
			return nil
		}
	}
	t, err := w.init.Initialize(shape, w.dtype, fanIn, fanOut, w.rng)
	if err != nil {
		return errors.Wrap(err, "default weights")
	}
	*slot = t
	return nil
}
