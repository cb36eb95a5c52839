// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package sequential

import (
	"encoding/json"
	"io"

	"github.com/born-ml/links/link"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
	"k8s.io/klog/v2"
)

// bundleVersion is written to every saved model.
const bundleVersion = 1

// bundle is the persisted form of a Model.
type bundle struct {
	Version           int           `json:"version" yaml:"version"`
	ID                string        `json:"id" yaml:"id"`
	Name              string        `json:"name,omitempty" yaml:"name,omitempty"`
	WeightInitializer string        `json:"weight_initializer,omitempty" yaml:"weight_initializer,omitempty"`
	WeightInitStd     float64       `json:"weight_init_std" yaml:"weight_init_std"`
	Seed              int64         `json:"seed,omitempty" yaml:"seed,omitempty"`
	Stages            []bundleStage `json:"stages" yaml:"stages"`
}

type bundleStage struct {
	Link       link.Attrs `json:"link,omitempty" yaml:"link,omitempty"`
	Activation string     `json:"activation,omitempty" yaml:"activation,omitempty"`
	Reshape    []int      `json:"reshape,omitempty" yaml:"reshape,omitempty,flow"`
}

func (m *Model) bundle() (*bundle, error) {
	b := &bundle{
		Version:           bundleVersion,
		ID:                m.ID.String(),
		Name:              m.Name,
		WeightInitializer: m.WeightInitializer,
		WeightInitStd:     m.WeightInitStd,
		Seed:              m.Seed,
		Stages:            make([]bundleStage, len(m.stages)),
	}
	for i, s := range m.stages {
		if s.Link != nil {
			attrs, err := link.WireAttrs(s.Link)
			if err != nil {
				return nil, errors.Wrapf(err, "sequential: stage %d", i)
			}
			b.Stages[i].Link = attrs
			continue
		}
		b.Stages[i].Activation = s.Activation
		b.Stages[i].Reshape = s.Reshape
	}
	return b, nil
}

func fromBundle(b *bundle) (*Model, error) {
	if b.Version != bundleVersion {
		return nil, errors.Errorf("sequential: unsupported bundle version %d", b.Version)
	}
	id, err := uuid.Parse(b.ID)
	if err != nil {
		return nil, errors.Wrap(err, "sequential: bad model id")
	}
	m := &Model{
		ID:                id,
		Name:              b.Name,
		WeightInitializer: b.WeightInitializer,
		WeightInitStd:     b.WeightInitStd,
		Seed:              b.Seed,
	}
	for i, s := range b.Stages {
		switch {
		case s.Link != nil:
			d, err := link.FromAttrs(s.Link)
			if err != nil {
				return nil, errors.Wrapf(err, "sequential: stage %d", i)
			}
			m.Add(d)
		case s.Activation != "":
			if err := m.AddActivation(s.Activation); err != nil {
				return nil, errors.Wrapf(err, "stage %d", i)
			}
		case s.Reshape != nil:
			m.AddReshape(s.Reshape...)
		default:
			return nil, errors.Errorf("sequential: stage %d is empty", i)
		}
	}
	klog.V(2).Infof("sequential: loaded %q (%s) with %d stages", m.Name, m.ID, len(m.stages))
	return m, nil
}

// Save writes m as indented JSON.
func (m *Model) Save(w io.Writer) error {
	b, err := m.bundle()
	if err != nil {
		return err
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return errors.Wrap(enc.Encode(b), "sequential: writing JSON")
}

// Load reads a model written by Save.
func Load(r io.Reader) (*Model, error) {
	var b bundle
	if err := json.NewDecoder(r).Decode(&b); err != nil {
		return nil, errors.Wrap(err, "sequential: reading JSON")
	}
	return fromBundle(&b)
}

// SaveYAML writes m as YAML.
func (m *Model) SaveYAML(w io.Writer) error {
	b, err := m.bundle()
	if err != nil {
		return err
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(b); err != nil {
		return errors.Wrap(err, "sequential: writing YAML")
	}
	return errors.Wrap(enc.Close(), "sequential: writing YAML")
}

// LoadYAML reads a model written by SaveYAML.
func LoadYAML(r io.Reader) (*Model, error) {
	var b bundle
	if err := yaml.NewDecoder(r).Decode(&b); err != nil {
		return nil, errors.Wrap(err, "sequential: reading YAML")
	}
	return fromBundle(&b)
}
