// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package cpu provides the pure Go framework that link descriptors
// materialize into.
//
// # Overview
//
// This package implements a CPU framework with:
//   - Pure Go implementation (no CGO)
//   - Im2col algorithm for convolutions, parallelized across output rows
//   - Float32, Float64 and Float16 parameters
//   - Weight injection and weight-normalized layer variants
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/links/backend/cpu"
//	    "github.com/born-ml/links/link"
//	    "github.com/born-ml/links/nn"
//	)
//
//	func main() {
//	    fw := cpu.New(cpu.WithSeed(1))
//
//	    // Build a layer directly
//	    layer, err := fw.Linear(nn.LinearConfig{InSize: 784, OutSize: 10})
//
//	    // Or from a descriptor
//	    unit, err := link.Materialize(link.NewConvolution2D(1, 32, 3), fw)
//	}
//
// # Thread Safety
//
// Constructing units is safe for concurrent use when no shared *rand.Rand is
// configured. Units themselves are not safe for concurrent Forward calls:
// stateful units mutate their state and lazily-sized layers allocate weights
// on first use.
package cpu
