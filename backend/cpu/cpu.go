// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package cpu

import (
	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/parallel"
	"github.com/born-ml/links/link"
	"github.com/born-ml/links/tensor"
)

// Framework is the pure Go CPU framework.
//
// It builds one unit per layer config and implements link.Framework, so any
// descriptor can be materialized with it.
type Framework = nn.CPU

// Compile-time check that Framework implements link.Framework.
var _ link.Framework = (*Framework)(nil)

// Option configures a Framework.
type Option = nn.Option

// New creates a new CPU framework.
//
// Example:
//
//	import (
//	    "github.com/born-ml/links/backend/cpu"
//	    "github.com/born-ml/links/link"
//	)
//
//	func main() {
//	    fw := cpu.New(cpu.WithSeed(42))
//	    unit, err := link.Materialize(link.NewLinear(784, 10), fw)
//	}
func New(opts ...Option) *Framework {
	return nn.NewCPU(opts...)
}

// WithSeed makes weight initialization deterministic.
func WithSeed(seed int64) Option {
	return nn.WithSeed(seed)
}

// WithWeightInit sets the initializer of weights without an injected value.
func WithWeightInit(init nn.Initializer) Option {
	return nn.WithWeightInit(init)
}

// WithDType sets the dtype of allocated parameters.
func WithDType(dtype tensor.DataType) Option {
	return nn.WithDType(dtype)
}

// WithWorkers sets the number of goroutines used by convolution kernels.
// n <= 1 runs them sequentially.
func WithWorkers(n int) Option {
	cfg := parallel.DefaultConfig()
	if n <= 1 {
		cfg = parallel.Sequential()
	} else {
		cfg.Enabled, cfg.NumWorkers = true, n
	}
	return nn.WithParallel(cfg)
}
