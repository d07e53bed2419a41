package domain

import "errors"

// Validation sentinels raised by constructors and patch application.
// Boundary adapters translate these into their own taxonomies.
var (
	ErrInvalidID       = errors.New("id must not be empty")
	ErrInvalidName     = errors.New("name must not be empty")
	ErrInvalidTitle    = errors.New("title must not be empty")
	ErrInvalidStatus   = errors.New("unknown status")
	ErrInvalidPriority = errors.New("unknown priority")
	ErrInvalidDate     = errors.New("date must be YYYY-MM-DD")
	ErrInvalidPosition = errors.New("position out of range")
)
