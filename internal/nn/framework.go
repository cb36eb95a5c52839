package nn

import (
	"math/rand"

	"github.com/born-ml/links/internal/parallel"
	"github.com/born-ml/links/internal/tensor"
)

// Options configures how a framework allocates parameters and runs kernels.
type Options struct {
	// DType is the dtype of every allocated parameter.
	DType tensor.DataType

	// WeightInit initializes weights whose constructor has no explicit slot.
	WeightInit Initializer

	// Rng is the random source of all initializers. Nil uses the global source.
	Rng *rand.Rand

	// Parallel configures the convolution kernels.
	Parallel parallel.Config
}

// Option configures a CPU framework.
type Option func(*Options)

// DefaultOptions returns float32 parameters, GlorotUniform weights, the global
// random source and parallel kernels.
func DefaultOptions() Options {
	return Options{
		DType:      tensor.Float32,
		WeightInit: &GlorotUniform{Scale: 1},
		Parallel:   parallel.DefaultConfig(),
	}
}

// WithSeed makes initialization deterministic.
func WithSeed(seed int64) Option {
	return func(o *Options) {
		o.Rng = rand.New(rand.NewSource(seed)) //nolint:gosec // weight init, not crypto
	}
}

// WithWeightInit sets the default weight initializer.
func WithWeightInit(init Initializer) Option {
	return func(o *Options) {
		o.WeightInit = init
	}
}

// WithDType sets the dtype of allocated parameters.
func WithDType(dtype tensor.DataType) Option {
	return func(o *Options) {
		o.DType = dtype
	}
}

// WithParallel sets the kernel parallelism.
func WithParallel(cfg parallel.Config) Option {
	return func(o *Options) {
		o.Parallel = cfg
	}
}

// CPU is the reference framework: one constructor per primitive, each taking a
// typed config and returning a live unit.
//
// Example:
//
//	fw := nn.NewCPU(nn.WithSeed(1))
//	layer, err := fw.Linear(nn.LinearConfig{InSize: 3, OutSize: 2})
type CPU struct {
	opts Options
}

// NewCPU creates a CPU framework.
func NewCPU(opts ...Option) *CPU {
	o := DefaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	return &CPU{opts: o}
}

// Options returns the framework options.
func (c *CPU) Options() Options {
	return c.opts
}

// Name returns "cpu".
func (c *CPU) Name() string {
	return "cpu"
}

// Linear builds a plain Linear layer.
func (c *CPU) Linear(cfg LinearConfig) (Module, error) {
	m, err := NewLinear(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// WeightNormLinear builds a weight-normalized Linear layer.
func (c *CPU) WeightNormLinear(cfg WeightNormLinearConfig) (Module, error) {
	m, err := NewWeightNormLinear(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Convolution2D builds a plain 2D convolution.
func (c *CPU) Convolution2D(cfg Convolution2DConfig) (Module, error) {
	m, err := NewConv2D(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// WeightNormConvolution2D builds a weight-normalized 2D convolution.
func (c *CPU) WeightNormConvolution2D(cfg WeightNormConvolution2DConfig) (Module, error) {
	m, err := NewWeightNormConv2D(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Deconvolution2D builds a plain transposed convolution.
func (c *CPU) Deconvolution2D(cfg Deconvolution2DConfig) (Module, error) {
	m, err := NewDeconv2D(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// WeightNormDeconvolution2D builds a weight-normalized transposed convolution.
func (c *CPU) WeightNormDeconvolution2D(cfg WeightNormDeconvolution2DConfig) (Module, error) {
	m, err := NewWeightNormDeconv2D(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// DilatedConvolution2D builds a dilated 2D convolution.
func (c *CPU) DilatedConvolution2D(cfg DilatedConvolution2DConfig) (Module, error) {
	m, err := NewDilatedConv2D(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// EmbedID builds an embedding lookup.
func (c *CPU) EmbedID(cfg EmbedIDConfig) (Module, error) {
	m, err := NewEmbedID(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// GRU builds a stateless GRU cell.
func (c *CPU) GRU(cfg GRUConfig) (Unit, error) {
	g, err := NewGRU(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return g, nil
}

// StatefulGRU builds a stateful GRU.
func (c *CPU) StatefulGRU(cfg StatefulGRUConfig) (Module, error) {
	m, err := NewStatefulGRU(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// LSTM builds a stateful LSTM.
func (c *CPU) LSTM(cfg LSTMConfig) (Module, error) {
	m, err := NewLSTM(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// StatelessLSTM builds a stateless LSTM cell.
func (c *CPU) StatelessLSTM(cfg StatelessLSTMConfig) (Unit, error) {
	l, err := NewStatelessLSTM(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return l, nil
}

// StatefulPeepholeLSTM builds a stateful peephole LSTM.
func (c *CPU) StatefulPeepholeLSTM(cfg StatefulPeepholeLSTMConfig) (Module, error) {
	m, err := NewStatefulPeepholeLSTM(cfg, c.opts)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// BatchNormalization builds a batch normalization layer. Its dtype comes from
// cfg, not from the framework options.
func (c *CPU) BatchNormalization(cfg BatchNormalizationConfig) (Module, error) {
	m, err := NewBatchNormalization(cfg)
	if err != nil {
		return nil, err
	}
	return m, nil
}
