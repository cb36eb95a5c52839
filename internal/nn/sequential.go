package nn

import (
	"fmt"

	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// Sequential is a container module that chains multiple modules together.
//
// Each module's output becomes the next module's input.
//
// Example:
//
//	model := nn.NewSequential(linear1, nn.NewReLU(), linear2)
//	output := model.Forward(input)
//
// This is equivalent to:
//
//	h1 := linear1.Forward(input)
//	h2 := relu.Forward(h1)
//	output := linear2.Forward(h2)
type Sequential struct {
	modules []Module
}

// NewSequential creates a new Sequential container.
func NewSequential(modules ...Module) *Sequential {
	return &Sequential{modules: modules}
}

// Forward applies all modules in sequence.
func (s *Sequential) Forward(input *tensor.Tensor) *tensor.Tensor {
	output := input
	for _, module := range s.modules {
		output = module.Forward(output)
	}
	return output
}

// Parameters returns all trainable parameters from all modules.
func (s *Sequential) Parameters() []*Parameter {
	var params []*Parameter
	for _, module := range s.modules {
		params = append(params, module.Parameters()...)
	}
	return params
}

// Add appends a module to the sequence.
func (s *Sequential) Add(module Module) {
	s.modules = append(s.modules, module)
}

// Len returns the number of modules in the sequence.
func (s *Sequential) Len() int {
	return len(s.modules)
}

// Module returns the module at the given index.
//
// Panics if index is out of bounds.
func (s *Sequential) Module(index int) Module {
	if index < 0 || index >= len(s.modules) {
		panic("Sequential.Module: index out of bounds")
	}
	return s.modules[index]
}

// ResetState resets every stateful module in the sequence.
func (s *Sequential) ResetState() {
	for _, module := range s.modules {
		if st, ok := module.(Stateful); ok {
			st.ResetState()
		}
	}
}

// StateDict returns a map of parameter names to tensors.
//
// Parameters are prefixed with their module index (e.g., "0.W", "0.b", "2.W")
// to avoid name collisions.
func (s *Sequential) StateDict() map[string]*tensor.Tensor {
	stateDict := make(map[string]*tensor.Tensor)
	for i, module := range s.modules {
		for _, p := range module.Parameters() {
			stateDict[fmt.Sprintf("%d.%s", i, p.Name())] = p.Tensor()
		}
	}
	return stateDict
}

// LoadStateDict loads parameters from a state dictionary written by StateDict.
// Missing entries keep their current value; shape mismatches are errors.
func (s *Sequential) LoadStateDict(stateDict map[string]*tensor.Tensor) error {
	for i, module := range s.modules {
		for _, p := range module.Parameters() {
			key := fmt.Sprintf("%d.%s", i, p.Name())
			t, ok := stateDict[key]
			if !ok {
				continue
			}
			if p.Tensor() != nil && !p.Tensor().Shape().Equal(t.Shape()) {
				return errors.Errorf("failed to load module %d: %s has shape %v, want %v", i, key, t.Shape(), p.Tensor().Shape())
			}
			p.SetTensor(t.Clone())
		}
	}
	return nil
}
