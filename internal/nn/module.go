// Package nn implements the reference CPU framework that link descriptors
// materialize into.
//
// This package provides the building blocks a descriptor can become:
//   - Unit / Module: the materialized callable interfaces
//   - Parameter: named weight tensors
//   - Initializer: serializable weight initializers
//   - Linear, Conv2D, Deconv2D, DilatedConv2D and their weight-normalized forms
//   - EmbedID, GRU, StatefulGRU, LSTM, StatelessLSTM, StatefulPeepholeLSTM
//   - BatchNormalization, activations and Sequential
//
// Constructors validate hyperparameters and return errors; Forward panics on shape
// misuse, which is a programming error in the calling pipeline.
package nn

import (
	"github.com/born-ml/links/internal/tensor"
)

// Unit is the result of materializing a descriptor.
//
// Every unit owns its parameters. Units with a single input and output also
// implement Module; recurrent cells with explicit state and composites expose
// their own call methods.
type Unit interface {
	// Parameters returns all parameters of this unit, including nested ones.
	Parameters() []*Parameter
}

// Module is a single-input, single-output unit.
//
// Modules can be chained by Sequential:
//
//	model := nn.NewSequential(linear, nn.NewReLU(), out)
//	y := model.Forward(x)
type Module interface {
	Unit

	// Forward computes the output of the module given an input tensor.
	Forward(input *tensor.Tensor) *tensor.Tensor
}

// Stateful is implemented by units that carry state across Forward calls.
type Stateful interface {
	// ResetState drops the carried state.
	ResetState()
}

// CountParameters returns the number of scalar weights owned by u.
func CountParameters(u Unit) int {
	n := 0
	for _, p := range u.Parameters() {
		if p.Tensor() != nil {
			n += p.Tensor().Len()
		}
	}
	return n
}
