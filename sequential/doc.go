// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package sequential assembles link descriptors into a persisted, buildable
// model.
//
// A Model is an ordered list of stages. A stage is a link descriptor, a named
// activation or a reshape. The model is plain data: it can be saved as JSON or
// YAML and built into a Network with any link.Framework.
//
//	m := sequential.New("mlp")
//	m.WeightInitializer, m.WeightInitStd = "GlorotNormal", 0.05
//	m.Add(link.NewLinear(784, 500))
//	m.AddActivation("relu")
//	m.Add(link.NewLinear(500, 10))
//
//	net, err := m.Build(cpu.New())
//	y := net.Forward(x)
//
// Descriptors whose weight slots are empty receive weights drawn from the
// model's default initializer, when one is set. Stages are never mutated by
// Build.
package sequential
