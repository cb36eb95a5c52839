// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sequential

import (
	"fmt"
	"math/rand"
	"strings"

	"github.com/born-ml/links/link"
	"github.com/born-ml/links/nn"
	"github.com/born-ml/links/tensor"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"k8s.io/klog/v2"
)

// ErrNotModule is returned by Build for a descriptor whose unit is not a
// single-input module, such as Merge or a stateless recurrent cell.
var ErrNotModule = errors.New("sequential: stage is not a single-input module")

// Stage is one step of a Model. Exactly one field is set.
type Stage struct {
	Link       link.Descriptor
	Activation string
	Reshape    []int
}

// String names the stage, e.g. "Linear", "relu" or "reshape(-1, 64)".
func (s Stage) String() string {
	switch {
	case s.Link != nil:
		return s.Link.Kind().String()
	case s.Activation != "":
		return s.Activation
	}
	dims := make([]string, len(s.Reshape))
	for i, d := range s.Reshape {
		dims[i] = fmt.Sprint(d)
	}
	return "reshape(" + strings.Join(dims, ", ") + ")"
}

// Model is an ordered, serializable list of stages.
type Model struct {
	ID   uuid.UUID
	Name string

	// WeightInitializer names the default initializer ("GlorotNormal", "Normal",
	// ...) for empty weight slots. Empty leaves them to the framework.
	WeightInitializer string
	WeightInitStd     float64

	// Seed makes default weights deterministic. 0 uses the global source.
	Seed int64

	stages []Stage
}

// New returns an empty model with a fresh ID.
func New(name string) *Model {
	return &Model{ID: uuid.New(), Name: name, WeightInitStd: 1}
}

// Add appends descriptor stages.
func (m *Model) Add(ds ...link.Descriptor) *Model {
	for _, d := range ds {
		m.stages = append(m.stages, Stage{Link: d})
	}
	return m
}

// AddActivation appends an activation stage. See nn.Activation for the names.
func (m *Model) AddActivation(name string) error {
	if _, err := nn.Activation(name); err != nil {
		return errors.Wrap(err, "sequential")
	}
	m.stages = append(m.stages, Stage{Activation: name})
	return nil
}

// AddReshape appends a reshape stage. One dimension may be -1.
func (m *Model) AddReshape(dims ...int) *Model {
	m.stages = append(m.stages, Stage{Reshape: append([]int(nil), dims...)})
	return m
}

// Stages returns the stages in order.
func (m *Model) Stages() []Stage {
	return m.stages
}

// Len returns the number of stages.
func (m *Model) Len() int {
	return len(m.stages)
}

// Build materializes every stage with fw and chains the results.
func (m *Model) Build(fw link.Framework) (*Network, error) {
	if len(m.stages) == 0 {
		return nil, errors.Errorf("sequential: model %q has no stages", m.Name)
	}
	defaults, err := m.defaults()
	if err != nil {
		return nil, err
	}

	net := &Network{model: m, seq: nn.NewSequential()}
	for i, stage := range m.stages {
		module, err := m.buildStage(stage, fw, defaults)
		if err != nil {
			return nil, errors.Wrapf(err, "sequential: stage %d (%s)", i, stage)
		}
		net.seq.Add(module)
	}
	klog.V(1).Infof("sequential: built %q with %d stages", m.Name, len(m.stages))
	return net, nil
}

func (m *Model) buildStage(stage Stage, fw link.Framework, defaults *weightDefaults) (nn.Module, error) {
	switch {
	case stage.Link != nil:
		d, err := defaults.apply(stage.Link)
		if err != nil {
			return nil, err
		}
		unit, err := link.Materialize(d, fw)
		if err != nil {
			return nil, err
		}
		module, ok := unit.(nn.Module)
		if !ok {
			return nil, errors.Wrapf(ErrNotModule, "%T", unit)
		}
		return module, nil
	case stage.Activation != "":
		return nn.Activation(stage.Activation)
	case stage.Reshape != nil:
		return newReshape(stage.Reshape)
	}
	return nil, errors.New("empty stage")
}

func (m *Model) defaults() (*weightDefaults, error) {
	if m.WeightInitializer == "" {
		return nil, nil
	}
	init, err := nn.InitializerByName(m.WeightInitializer, m.WeightInitStd)
	if err != nil {
		return nil, errors.Wrap(err, "sequential")
	}
	var rng *rand.Rand
	if m.Seed != 0 {
		rng = rand.New(rand.NewSource(m.Seed)) //nolint:gosec // weight init, not crypto
	}
	return &weightDefaults{init: init, dtype: tensor.Float32, rng: rng}, nil
}

// Network is a built Model.
type Network struct {
	model *Model
	seq   *nn.Sequential
}

// Forward runs x through every stage.
func (n *Network) Forward(x *tensor.Tensor) *tensor.Tensor {
	return n.seq.Forward(x)
}

// Parameters returns the parameters of every stage in order.
func (n *Network) Parameters() []*nn.Parameter {
	return n.seq.Parameters()
}

// Stage returns the built module of stage i.
func (n *Network) Stage(i int) nn.Module {
	return n.seq.Module(i)
}

// ResetState resets every stateful stage.
func (n *Network) ResetState() {
	n.seq.ResetState()
}

// StateDict returns the parameters keyed by "<stage>.<name>".
func (n *Network) StateDict() map[string]*tensor.Tensor {
	return n.seq.StateDict()
}

// LoadStateDict replaces parameters from a StateDict.
func (n *Network) LoadStateDict(state map[string]*tensor.Tensor) error {
	return n.seq.LoadStateDict(state)
}

// reshape is the module behind a reshape stage.
type reshape struct {
	dims []int
}

func newReshape(dims []int) (*reshape, error) {
	inferred := 0
	for _, d := range dims {
		switch {
		case d == -1:
			inferred++
		case d <= 0:
			return nil, errors.Errorf("reshape: invalid dimension %d in %v", d, dims)
		}
	}
	if len(dims) == 0 || inferred > 1 {
		return nil, errors.Errorf("reshape: invalid dimensions %v", dims)
	}
	return &reshape{dims: dims}, nil
}

func (r *reshape) Forward(x *tensor.Tensor) *tensor.Tensor {
	return x.Reshape(r.dims...)
}

func (r *reshape) Parameters() []*nn.Parameter {
	return nil
}
