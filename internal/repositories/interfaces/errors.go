package interfaces

import "errors"

var (
	ErrNotFound = errors.New("document not found")
	// ErrNotModified means a conditional update found no document in the
	// expected prior state.
	ErrNotModified = errors.New("document not in expected state")
	ErrDuplicate   = errors.New("document already exists")
)
