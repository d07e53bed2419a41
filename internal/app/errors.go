package app

import "errors"

// ErrNotFound and related errors classify repository and store
// failures. Domain validation sentinels count as validation failures
// at the transport boundary; ErrValidation itself wraps failures that
// arrive without a more specific sentinel, such as a rejected payload
// reported by a remote backend.
var (
	ErrNotFound        = errors.New("not found")
	ErrValidation      = errors.New("validation failed")
	ErrTransport       = errors.New("transport failure")
	ErrUnknownAssignee = errors.New("unknown assignee")
)
