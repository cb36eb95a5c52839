// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/links/internal/nn"
)

// Unit is the result of materializing a link descriptor.
//
// Every unit owns its parameters. Units with a single input and output also
// implement Module.
type Unit = nn.Unit

// Module is a single-input, single-output unit.
//
// Modules can be composed with Sequential:
//
//	model := nn.NewSequential(hidden, nn.NewReLU(), out)
//	y := model.Forward(x)
type Module = nn.Module

// Stateful is implemented by recurrent units that carry state across Forward
// calls.
type Stateful = nn.Stateful

// CountParameters returns the number of scalar weights owned by u.
// Lazily-sized layers count nothing until their first Forward.
func CountParameters(u Unit) int {
	return nn.CountParameters(u)
}
