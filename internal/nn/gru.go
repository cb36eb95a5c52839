package nn

import (
	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// GRUConfig holds the constructor arguments of a stateless GRU cell.
type GRUConfig struct {
	NUnits    int         // hidden size
	NInputs   int         // input size; 0 means NUnits
	Init      Initializer // input-to-hidden weights; nil uses the framework default
	InnerInit Initializer // hidden-to-hidden weights; nil uses the framework default
}

// StatefulGRUConfig holds the constructor arguments of a stateful GRU.
type StatefulGRUConfig struct {
	InSize    int
	OutSize   int
	BiasInit  float64 // initial value of the input-to-hidden biases
	Init      Initializer
	InnerInit Initializer
}

// gruCell holds the six affine maps of a gated recurrent unit:
//
//	r  = σ(W_r x + U_r h)
//	z  = σ(W_z x + U_z h)
//	h̄  = tanh(W x + U (r ⊙ h))
//	h' = (1 - z) ⊙ h + z ⊙ h̄
type gruCell struct {
	wr, wz, w *Linear // [out, in] with bias
	ur, uz, u *Linear // [out, out] without bias
}

func newGRUCell(in, out int, biasInit float64, init, innerInit Initializer, opts *Options) (*gruCell, error) {
	if in <= 0 || out <= 0 {
		return nil, errors.Errorf("gru: invalid sizes in=%d, out=%d", in, out)
	}
	c := &gruCell{}
	var err error
	for _, g := range []struct {
		name   string
		dst    **Linear
		in     int
		init   Initializer
		noBias bool
	}{
		{"W_r", &c.wr, in, init, false},
		{"W_z", &c.wz, in, init, false},
		{"W", &c.w, in, init, false},
		{"U_r", &c.ur, out, innerInit, true},
		{"U_z", &c.uz, out, innerInit, true},
		{"U", &c.u, out, innerInit, true},
	} {
		if *g.dst, err = newGate(g.name, g.in, out, g.init, g.noBias, biasInit, opts); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// step advances the cell. A nil h is the zero state.
func (c *gruCell) step(h, x *tensor.Tensor) *tensor.Tensor {
	if h == nil {
		z := c.wz.Forward(x).Sigmoid()
		hBar := c.w.Forward(x).Tanh()
		return z.Mul(hBar)
	}
	r := c.wr.Forward(x).Add(c.ur.Forward(h)).Sigmoid()
	z := c.wz.Forward(x).Add(c.uz.Forward(h)).Sigmoid()
	hBar := c.w.Forward(x).Add(c.u.Forward(r.Mul(h))).Tanh()
	// (1 - z) ⊙ h + z ⊙ h̄ == h + z ⊙ (h̄ - h)
	return h.Add(z.Mul(hBar.Sub(h)))
}

func (c *gruCell) parameters() []*Parameter {
	var params []*Parameter
	for _, l := range []*Linear{c.wr, c.wz, c.w, c.ur, c.uz, c.u} {
		params = append(params, l.Parameters()...)
	}
	return params
}

// GRU is a stateless gated recurrent unit: the caller owns the hidden state.
type GRU struct {
	nUnits  int
	nInputs int
	cell    *gruCell
}

// NewGRU creates a stateless GRU cell.
func NewGRU(cfg GRUConfig, opts Options) (*GRU, error) {
	nInputs := cfg.NInputs
	if nInputs == 0 {
		nInputs = cfg.NUnits
	}
	cell, err := newGRUCell(nInputs, cfg.NUnits, 0, cfg.Init, cfg.InnerInit, &opts)
	if err != nil {
		return nil, err
	}
	return &GRU{nUnits: cfg.NUnits, nInputs: nInputs, cell: cell}, nil
}

// Step computes the next hidden state from h [batch, n_units] and x [batch, n_inputs].
func (g *GRU) Step(h, x *tensor.Tensor) *tensor.Tensor {
	return g.cell.step(h, x)
}

// Parameters returns the weights of all six affine maps.
func (g *GRU) Parameters() []*Parameter {
	return g.cell.parameters()
}

// StatefulGRU is a GRU that keeps its hidden state between Forward calls.
type StatefulGRU struct {
	inSize  int
	outSize int
	cell    *gruCell
	h       *tensor.Tensor
}

// NewStatefulGRU creates a stateful GRU.
func NewStatefulGRU(cfg StatefulGRUConfig, opts Options) (*StatefulGRU, error) {
	cell, err := newGRUCell(cfg.InSize, cfg.OutSize, cfg.BiasInit, cfg.Init, cfg.InnerInit, &opts)
	if err != nil {
		return nil, err
	}
	return &StatefulGRU{inSize: cfg.InSize, outSize: cfg.OutSize, cell: cell}, nil
}

// Forward advances the carried state with x [batch, in_size] and returns it.
func (g *StatefulGRU) Forward(x *tensor.Tensor) *tensor.Tensor {
	g.h = g.cell.step(g.h, x)
	return g.h
}

// ResetState drops the carried hidden state.
func (g *StatefulGRU) ResetState() {
	g.h = nil
}

// SetState replaces the carried hidden state.
func (g *StatefulGRU) SetState(h *tensor.Tensor) {
	g.h = h
}

// State returns the carried hidden state, or nil.
func (g *StatefulGRU) State() *tensor.Tensor {
	return g.h
}

// Parameters returns the weights of all six affine maps.
func (g *StatefulGRU) Parameters() []*Parameter {
	return g.cell.parameters()
}

// newGate builds a named affine map with weights from init.
func newGate(name string, in, out int, init Initializer, noBias bool, bias float64, opts *Options) (*Linear, error) {
	w, err := fromSlot(name, nil, init, tensor.Shape{out, in}, in, out, opts)
	if err != nil {
		return nil, err
	}
	l, err := NewLinear(LinearConfig{InSize: in, OutSize: out, NoBias: noBias, Bias: bias, InitialW: w}, *opts)
	if err != nil {
		return nil, err
	}
	l.weight.name = name
	if l.bias != nil {
		l.bias.name = "b_" + name
	}
	return l, nil
}
