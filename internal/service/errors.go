package service

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when no item matches a lookup or claim.
	ErrNotFound = errors.New("item not found")

	// ErrConflict is returned when a caller-supplied unique_id is taken.
	ErrConflict = errors.New("unique_id already exists")
)

// ValidationError reports a missing or malformed input field.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// StorageError wraps a failure of the item database.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// UpstreamError wraps a failure of a collaborator such as QR rendering or
// file storage.
type UpstreamError struct {
	Service string
	Err     error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}
