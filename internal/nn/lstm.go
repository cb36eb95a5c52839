package nn

import (
	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// LSTMConfig holds the constructor arguments of a stateful LSTM.
//
// Every initializer is optional: weights fall back to the framework default,
// biases to 0 and the forget-gate bias to 1.
type LSTMConfig struct {
	InSize         int
	OutSize        int
	LateralInit    Initializer // hidden-to-gates weights [4*out, out]
	UpwardInit     Initializer // input-to-gates weights [4*out, in]
	BiasInit       Initializer // gate biases [4*out]
	ForgetBiasInit Initializer // forget-gate slice of the biases [out]
}

// StatelessLSTMConfig holds the constructor arguments of a stateless LSTM.
type StatelessLSTMConfig struct {
	InSize      int
	OutSize     int
	LateralInit Initializer
	UpwardInit  Initializer
}

// StatefulPeepholeLSTMConfig holds the constructor arguments of a stateful
// peephole LSTM. It has no initializer slots.
type StatefulPeepholeLSTMConfig struct {
	InSize  int
	OutSize int
}

// lstmCell computes the four gate pre-activations [a, i, f, o] as
// upward(x) + lateral(h) and combines them:
//
//	c' = tanh(a) ⊙ σ(i) + σ(f) ⊙ c
//	h' = σ(o) ⊙ tanh(c')
type lstmCell struct {
	outSize int
	upward  *Linear // [4*out, in]
	lateral *Linear // [4*out, out], no bias
}

func newLSTMCell(in, out int, upwardInit, lateralInit, biasInit, forgetBiasInit Initializer, opts *Options) (*lstmCell, error) {
	if in <= 0 || out <= 0 {
		return nil, errors.Errorf("lstm: invalid sizes in=%d, out=%d", in, out)
	}
	upward, err := newGate("upward", in, 4*out, upwardInit, false, 0, opts)
	if err != nil {
		return nil, err
	}
	lateral, err := newGate("lateral", out, 4*out, lateralInit, true, 0, opts)
	if err != nil {
		return nil, err
	}

	if biasInit == nil {
		biasInit = &Constant{Value: 0}
	}
	if forgetBiasInit == nil {
		forgetBiasInit = &Constant{Value: 1}
	}
	bias, err := biasInit.Initialize(tensor.Shape{4 * out}, opts.DType, in, 4*out, opts.Rng)
	if err != nil {
		return nil, errors.Wrap(err, "lstm bias")
	}
	forget, err := forgetBiasInit.Initialize(tensor.Shape{out}, opts.DType, in, out, opts.Rng)
	if err != nil {
		return nil, errors.Wrap(err, "lstm forget bias")
	}
	gates := bias.Split(0, 4)
	upward.bias.SetTensor(tensor.Concat(0, gates[0], gates[1], forget, gates[3]))

	return &lstmCell{outSize: out, upward: upward, lateral: lateral}, nil
}

// gates returns the pre-activations split into [a, i, f, o]. A nil h is the zero state.
func (c *lstmCell) gates(h, x *tensor.Tensor) []*tensor.Tensor {
	pre := c.upward.Forward(x)
	if h != nil {
		pre = pre.Add(c.lateral.Forward(h))
	}
	return pre.Split(1, 4)
}

// step returns (c', h'). A nil c is the zero cell state.
func (c *lstmCell) step(cPrev, h, x *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	g := c.gates(h, x)
	cNew := g[0].Tanh().Mul(g[1].Sigmoid())
	if cPrev != nil {
		cNew = cNew.Add(g[2].Sigmoid().Mul(cPrev))
	}
	hNew := g[3].Sigmoid().Mul(cNew.Tanh())
	return cNew, hNew
}

func (c *lstmCell) parameters() []*Parameter {
	return append(c.upward.Parameters(), c.lateral.Parameters()...)
}

// LSTM is a fully-connected LSTM layer that keeps (c, h) between Forward calls.
type LSTM struct {
	cell *lstmCell
	c, h *tensor.Tensor
}

// NewLSTM creates a stateful LSTM.
func NewLSTM(cfg LSTMConfig, opts Options) (*LSTM, error) {
	cell, err := newLSTMCell(cfg.InSize, cfg.OutSize, cfg.UpwardInit, cfg.LateralInit, cfg.BiasInit, cfg.ForgetBiasInit, &opts)
	if err != nil {
		return nil, err
	}
	return &LSTM{cell: cell}, nil
}

// Forward advances the carried state with x [batch, in_size] and returns h.
func (l *LSTM) Forward(x *tensor.Tensor) *tensor.Tensor {
	l.c, l.h = l.cell.step(l.c, l.h, x)
	return l.h
}

// ResetState drops the carried cell and hidden state.
func (l *LSTM) ResetState() {
	l.c, l.h = nil, nil
}

// State returns the carried (c, h), or nils.
func (l *LSTM) State() (*tensor.Tensor, *tensor.Tensor) {
	return l.c, l.h
}

// Parameters returns the upward and lateral weights.
func (l *LSTM) Parameters() []*Parameter {
	return l.cell.parameters()
}

// StatelessLSTM is an LSTM cell whose caller owns (c, h).
type StatelessLSTM struct {
	cell *lstmCell
}

// NewStatelessLSTM creates a stateless LSTM cell.
func NewStatelessLSTM(cfg StatelessLSTMConfig, opts Options) (*StatelessLSTM, error) {
	cell, err := newLSTMCell(cfg.InSize, cfg.OutSize, cfg.UpwardInit, cfg.LateralInit, nil, nil, &opts)
	if err != nil {
		return nil, err
	}
	return &StatelessLSTM{cell: cell}, nil
}

// Step returns the next (c, h) from the previous state and x. c and h may be nil.
func (l *StatelessLSTM) Step(c, h, x *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor) {
	return l.cell.step(c, h, x)
}

// Parameters returns the upward and lateral weights.
func (l *StatelessLSTM) Parameters() []*Parameter {
	return l.cell.parameters()
}

// StatefulPeepholeLSTM is a stateful LSTM whose input, forget and output gates
// also see the cell state:
//
//	i = σ(i + P_i c), f = σ(f + P_f c)
//	c' = tanh(a) ⊙ i + f ⊙ c
//	o = σ(o + P_o c')
//	h' = o ⊙ tanh(c')
type StatefulPeepholeLSTM struct {
	cell                *lstmCell
	peepI, peepF, peepO *Linear // [out, out], no bias
	c, h                *tensor.Tensor
}

// NewStatefulPeepholeLSTM creates a stateful peephole LSTM.
func NewStatefulPeepholeLSTM(cfg StatefulPeepholeLSTMConfig, opts Options) (*StatefulPeepholeLSTM, error) {
	cell, err := newLSTMCell(cfg.InSize, cfg.OutSize, nil, nil, &Constant{}, &Constant{}, &opts)
	if err != nil {
		return nil, err
	}
	l := &StatefulPeepholeLSTM{cell: cell}
	for _, p := range []struct {
		name string
		dst  **Linear
	}{{"peep_i", &l.peepI}, {"peep_f", &l.peepF}, {"peep_o", &l.peepO}} {
		if *p.dst, err = newGate(p.name, cfg.OutSize, cfg.OutSize, nil, true, 0, &opts); err != nil {
			return nil, err
		}
	}
	return l, nil
}

// Forward advances the carried state with x and returns h.
func (l *StatefulPeepholeLSTM) Forward(x *tensor.Tensor) *tensor.Tensor {
	g := l.cell.gates(l.h, x)
	a, i, f, o := g[0].Tanh(), g[1], g[2], g[3]
	if l.c == nil {
		l.c = tensor.Zeros(a.Shape(), a.DType())
	}
	i = i.Add(l.peepI.Forward(l.c)).Sigmoid()
	f = f.Add(l.peepF.Forward(l.c)).Sigmoid()
	l.c = a.Mul(i).Add(f.Mul(l.c))
	o = o.Add(l.peepO.Forward(l.c)).Sigmoid()
	l.h = o.Mul(l.c.Tanh())
	return l.h
}

// ResetState drops the carried cell and hidden state.
func (l *StatefulPeepholeLSTM) ResetState() {
	l.c, l.h = nil, nil
}

// Parameters returns the gate and peephole weights.
func (l *StatefulPeepholeLSTM) Parameters() []*Parameter {
	params := l.cell.parameters()
	for _, p := range []*Linear{l.peepI, l.peepF, l.peepO} {
		params = append(params, p.Parameters()...)
	}
	return params
}
