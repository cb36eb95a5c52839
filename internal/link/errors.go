package link

import (
	"fmt"

	"github.com/pkg/errors"
)

// Sentinel errors. Returned errors wrap them with context; match with errors.Is.
var (
	// ErrNotImplemented is returned for an operation the descriptor does not support,
	// such as materializing a nil descriptor.
	ErrNotImplemented = errors.New("link: not implemented")

	// ErrUnknownKind is returned for a kind tag that names no descriptor.
	ErrUnknownKind = errors.New("link: unknown kind")

	// ErrUnknownAttribute is returned when an attribute name is not defined by the
	// descriptor's kind, including unrecognized hidden weight slots.
	ErrUnknownAttribute = errors.New("link: unknown attribute")

	// ErrInvalidAttribute is returned when an attribute value has the wrong type or
	// is out of range for its kind.
	ErrInvalidAttribute = errors.New("link: invalid attribute value")

	// ErrArity is matched by every *ArityError.
	ErrArity = errors.New("link: arity mismatch")
)

// ArityError reports a composite unit called with the wrong number of inputs.
type ArityError struct {
	Unit string
	Want int
	Got  int
}

// Error implements error.
func (e *ArityError) Error() string {
	return fmt.Sprintf("link: %s expects %d inputs, got %d", e.Unit, e.Want, e.Got)
}

// Is makes errors.Is(err, ErrArity) hold.
func (e *ArityError) Is(target error) bool {
	return target == ErrArity
}
