package credits

import "errors"

var (
	// Index does not address an existing workload
	ErrOutOfRange = errors.New("index out of range")

	// Field value outside its domain, or unknown field
	ErrInvalidValue = errors.New("invalid value")

	// Workload size is not a rate table key
	ErrInvalidSize = errors.New("invalid warehouse size")
)
