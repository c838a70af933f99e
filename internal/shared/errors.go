package shared

import "errors"

// ErrNotFound is wrapped by every domain's "record does not exist" error so
// guards and job handlers can test for it without importing each domain.
var ErrNotFound = errors.New("not found")

// ErrForbidden marks an action the current user may not perform.
var ErrForbidden = errors.New("forbidden")
