// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/tensor"
)

// Parameter is a named weight tensor owned by a unit.
//
// Methods:
//
//	Name() string
//	    Returns the parameter name (e.g., "W", "b", "V", "g").
//
//	Tensor() *tensor.Tensor
//	    Returns the parameter tensor, nil for a lazily-sized layer that has not
//	    run yet.
//
//	SetTensor(t *tensor.Tensor)
//	    Replaces the parameter tensor.
type Parameter = nn.Parameter

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter(name string, t *tensor.Tensor) *Parameter {
	return nn.NewParameter(name, t)
}
