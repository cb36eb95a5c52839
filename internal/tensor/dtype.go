// Package tensor provides the dense tensor type used by the links reference framework.
package tensor

import (
	"github.com/pkg/errors"
	"github.com/x448/float16"
)

// ErrUnknownDType is returned when a dtype name is not one of the supported ones.
var ErrUnknownDType = errors.New("unknown dtype")

// DataType represents runtime type information for tensors.
//
// Values are always held as float64 internally and rounded to the precision of
// the tensor's DataType whenever they are written.
type DataType int

// Supported data types for tensors.
const (
	Float32 DataType = iota
	Float64
	Float16
)

// Size returns the byte size of the data type.
func (dt DataType) Size() int {
	switch dt {
	case Float32:
		return 4
	case Float64:
		return 8
	case Float16:
		return 2
	default:
		panic("unknown data type")
	}
}

// String returns a human-readable name for the data type.
func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Float64:
		return "float64"
	case Float16:
		return "float16"
	default:
		return "unknown"
	}
}

// ParseDType translates a dtype name ("float32", "float64", "float16") into a DataType.
func ParseDType(name string) (DataType, error) {
	switch name {
	case "float32":
		return Float32, nil
	case "float64":
		return Float64, nil
	case "float16":
		return Float16, nil
	}
	return Float32, errors.Wrapf(ErrUnknownDType, "%q", name)
}

// Round returns v at the precision of dt.
func (dt DataType) Round(v float64) float64 {
	switch dt {
	case Float32:
		return float64(float32(v))
	case Float16:
		return float64(float16.Fromfloat32(float32(v)).Float32())
	default:
		return v
	}
}

// promote returns the wider of two data types.
func promote(a, b DataType) DataType {
	if a == Float64 || b == Float64 {
		return Float64
	}
	if a == Float32 || b == Float32 {
		return Float32
	}
	return Float16
}
