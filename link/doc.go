// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package link provides declarative, serializable layer descriptors.
//
// # Overview
//
// A descriptor records the hyperparameters of one layer as plain data. It can
// be exported to a flat attribute map, persisted as JSON or YAML, restored,
// and later materialized into a live unit by a framework:
//
//	d := link.NewConvolution2D(3, 64, 3)
//	d.Pad = 1
//	d.UseWeightNorm = true
//
//	b, err := link.Encode(d)        // {"_link": "Convolution2D", "in_channels": 3, ...}
//	d2, err := link.Decode(b)
//	unit, err := link.Materialize(d2, cpu.New())
//
// # Descriptor Kinds
//
// Linear, Convolution2D, Deconvolution2D, DilatedConvolution2D, EmbedID, GRU,
// StatefulGRU, LSTM, StatelessLSTM, StatefulPeepholeLSTM and
// BatchNormalization materialize into a single framework primitive. Merge,
// Gaussian and MinibatchDiscrimination materialize into composites built from
// dense layers.
//
// # Attributes
//
// Visible attributes are the constructor hyperparameters returned by Args.
// Hidden attributes start with "_" and hold injected weights ("_initialW")
// or initializers ("_init"). Export returns both, plus the "_link" kind tag.
//
// # Weight Normalization
//
// Linear, Convolution2D, Deconvolution2D, Merge and Gaussian carry a
// UseWeightNorm toggle. When set, the injected weight becomes the direction V
// of the weight-normalized primitive instead of its weight W.
package link
