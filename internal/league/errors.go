package league

import "errors"

var (
	// ErrInvalidInput marks malformed or missing input fields.
	ErrInvalidInput = errors.New("invalid input")

	// ErrConstraintConflict marks input that contradicts itself, such as a
	// buddy unit with two coaches or two slots sharing an id.
	ErrConstraintConflict = errors.New("constraint conflict")
)
