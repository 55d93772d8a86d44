package shared

import "errors"

// Error kinds surfaced to API clients. Domain packages wrap these with
// fmt.Errorf("%w: ...") so the transport layer can pick a code.
var (
	// ErrStructural marks an upload rejected before any row was processed.
	ErrStructural = errors.New("structural error")
	// ErrValidation indicates invalid input.
	ErrValidation = errors.New("validation failed")
	// ErrConflict indicates a business-rule conflict.
	ErrConflict = errors.New("conflict")
	// ErrNotFound indicates resource not found.
	ErrNotFound = errors.New("not found")
)
