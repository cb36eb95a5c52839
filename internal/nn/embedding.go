package nn

import (
	"fmt"
	"math"

	"github.com/born-ml/links/internal/tensor"
	"github.com/pkg/errors"
)

// EmbedIDConfig holds the constructor arguments of an embedding lookup.
type EmbedIDConfig struct {
	InSize      int  // vocabulary size
	OutSize     int  // embedding dimension
	IgnoreLabel *int // ids equal to this label embed to zeros
	InitialW    *tensor.Tensor
}

// EmbedID is a lookup table that maps discrete ids to dense vectors.
//
// Architecture:
//   - W: [in_size, out_size] parameter
//   - Forward: ids [...] -> embeddings [..., out_size]
//
// Ids are carried in a float tensor and must hold integral values in
// [0, in_size), or the configured ignore label.
//
// Example:
//
//	embed, err := nn.NewEmbedID(nn.EmbedIDConfig{InSize: 10000, OutSize: 256}, opts)
//	embeddings := embed.Forward(ids) // [2, 5] -> [2, 5, 256]
type EmbedID struct {
	inSize      int
	outSize     int
	ignoreLabel *int
	weight      *Parameter
}

// NewEmbedID creates an embedding lookup. Weights default to N(0, 1) like a
// plain embedding table; an injected W must be [in_size, out_size].
func NewEmbedID(cfg EmbedIDConfig, opts Options) (*EmbedID, error) {
	if cfg.InSize <= 0 || cfg.OutSize <= 0 {
		return nil, errors.Errorf("embed_id: invalid sizes in=%d, out=%d", cfg.InSize, cfg.OutSize)
	}
	w, err := fromSlot("embed_id.W", cfg.InitialW, &Normal{Scale: 1},
		tensor.Shape{cfg.InSize, cfg.OutSize}, cfg.InSize, cfg.OutSize, &opts)
	if err != nil {
		return nil, err
	}
	return &EmbedID{
		inSize:      cfg.InSize,
		outSize:     cfg.OutSize,
		ignoreLabel: cfg.IgnoreLabel,
		weight:      NewParameter("W", w),
	}, nil
}

// Forward looks up every id of input.
func (e *EmbedID) Forward(input *tensor.Tensor) *tensor.Tensor {
	outShape := append(input.Shape().Clone(), e.outSize)
	out := tensor.Zeros(outShape, e.weight.Tensor().DType())
	w := e.weight.Tensor().Data()
	dst := out.Data()
	for i, v := range input.Data() {
		id := int(v)
		if float64(id) != v || math.IsNaN(v) {
			panic(fmt.Sprintf("EmbedID.Forward: id %v is not an integer", v))
		}
		if e.ignoreLabel != nil && id == *e.ignoreLabel {
			continue
		}
		if id < 0 || id >= e.inSize {
			panic(fmt.Sprintf("EmbedID.Forward: id %d out of range [0, %d)", id, e.inSize))
		}
		copy(dst[i*e.outSize:(i+1)*e.outSize], w[id*e.outSize:(id+1)*e.outSize])
	}
	return out
}

// Parameters returns [W].
func (e *EmbedID) Parameters() []*Parameter {
	return []*Parameter{e.weight}
}

// Weight returns the embedding table.
func (e *EmbedID) Weight() *Parameter {
	return e.weight
}
