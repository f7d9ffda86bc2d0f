package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when an operation targets a note id that is not in the store.
	ErrNotFound = errors.New("note not found")

	// ErrUnsupportedCapability is returned when speech recognition cannot run
	// in the current environment or for the requested locale.
	ErrUnsupportedCapability = errors.New("capability not supported")
)

// ValidationError reports malformed input at an operation boundary.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// IsValidation reports whether err wraps a *ValidationError.
func IsValidation(err error) bool {
	var v *ValidationError
	return errors.As(err, &v)
}

// ServiceError wraps a failure of an external collaborator (AI provider, blob store).
// It never carries note state; callers may retry the same operation.
type ServiceError struct {
	Op  string
	Err error
}

func (e *ServiceError) Error() string {
	return fmt.Sprintf("%s: service unavailable: %v", e.Op, e.Err)
}

func (e *ServiceError) Unwrap() error { return e.Err }

// IsService reports whether err wraps a *ServiceError.
func IsService(err error) bool {
	var s *ServiceError
	return errors.As(err, &s)
}
