package link

import (
	"fmt"

	"github.com/born-ml/links/internal/nn"
	"github.com/born-ml/links/internal/tensor"
)

// MergeUnit sums one dense head per input: y = Σ heads[i](xs[i]).
//
// Every head infers its input size on the first call, so the inputs may have
// different feature counts.
type MergeUnit struct {
	heads []nn.Module
}

// Forward applies head i to xs[i] and returns the sum. Passing a number of inputs
// other than the configured one returns an *ArityError.
func (m *MergeUnit) Forward(xs ...*tensor.Tensor) (*tensor.Tensor, error) {
	if len(xs) != len(m.heads) {
		return nil, &ArityError{Unit: KindMerge.String(), Want: len(m.heads), Got: len(xs)}
	}
	y := m.heads[0].Forward(xs[0])
	for i := 1; i < len(xs); i++ {
		y = y.Add(m.heads[i].Forward(xs[i]))
	}
	return y, nil
}

// Heads returns the dense heads in input order.
func (m *MergeUnit) Heads() []nn.Module {
	return m.heads
}

// Parameters returns the parameters of every head in order.
func (m *MergeUnit) Parameters() []*nn.Parameter {
	var params []*nn.Parameter
	for _, h := range m.heads {
		params = append(params, h.Parameters()...)
	}
	return params
}

// GaussianUnit maps an input to the mean and log-variance of a diagonal Gaussian.
type GaussianUnit struct {
	mean  nn.Module
	lnVar nn.Module
}

// Forward returns (mean(x), ln_var(x)).
func (g *GaussianUnit) Forward(x *tensor.Tensor) (mean, lnVar *tensor.Tensor) {
	return g.mean.Forward(x), g.lnVar.Forward(x)
}

// Mean returns the mean head.
func (g *GaussianUnit) Mean() nn.Module { return g.mean }

// LnVar returns the log-variance head.
func (g *GaussianUnit) LnVar() nn.Module { return g.lnVar }

// Parameters returns the mean head's parameters followed by the ln_var head's.
func (g *GaussianUnit) Parameters() []*nn.Parameter {
	return append(append([]*nn.Parameter(nil), g.mean.Parameters()...), g.lnVar.Parameters()...)
}

// minibatchSelfDistance is added to the distance of every sample to itself so
// that it contributes exp(-minibatchSelfDistance) ≈ 0 to its own features.
const minibatchSelfDistance = 1e6

// MinibatchDiscriminationUnit appends minibatch similarity features to its input.
//
// For a batch x of shape [B, F] and a projection T to K kernels of dimension D:
//
//	M[b]    = reshape(T(x[b]), K, D)
//	o[b, k] = Σ_{c≠b} exp(-‖M[b, k] - M[c, k]‖₁)
//	y       = concat(x, o)                        [B, F+K]
//
// Inputs of rank > 2 are flattened to [B, F] first.
type MinibatchDiscriminationUnit struct {
	t          nn.Module
	numKernels int
	ndimKernel int
}

// Forward implements nn.Module.
func (u *MinibatchDiscriminationUnit) Forward(input *tensor.Tensor) *tensor.Tensor {
	if input.Rank() < 2 {
		panic(fmt.Sprintf("MinibatchDiscrimination.Forward: expected batched input, got shape %v", input.Shape()))
	}
	batch := input.Shape()[0]
	x := input.Reshape(batch, -1)

	k, d := u.numKernels, u.ndimKernel
	m := u.t.Forward(x).Reshape(batch, k, d).ExpandDims(3) // [B, K, D, 1]
	mt := m.Permute(3, 1, 2, 0)                               // [1, K, D, B]

	dist := m.Sub(mt).Abs().Sum(2) // [B, K, B]
	self := tensor.Eye(batch, dist.DType()).Reshape(batch, 1, batch).MulScalar(minibatchSelfDistance)
	o := dist.Add(self).Neg().Exp().Sum(2) // [B, K]

	return tensor.Concat(1, x, o.AsType(x.DType()))
}

// T returns the projection layer.
func (u *MinibatchDiscriminationUnit) T() nn.Module {
	return u.t
}

// Parameters returns the projection's parameters.
func (u *MinibatchDiscriminationUnit) Parameters() []*nn.Parameter {
	return u.t.Parameters()
}
