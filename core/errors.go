package core

import (
	"errors"
	"fmt"
)

// ErrNotFound is returned for direct lookups by id that miss.
// Catalog misses are not errors: they fall back to defaults instead.
var ErrNotFound = errors.New("not found")

// ConfigurationError indicates a fatal startup problem, such as a missing
// or malformed core identity. It aborts startup and is never recovered.
type ConfigurationError struct {
	Component string
	Err       error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error in %s: %v", e.Component, e.Err)
}

func (e *ConfigurationError) Unwrap() error { return e.Err }

// ValidationError rejects an operation without any state change, e.g.
// deleting the last remaining Person or one bound to an active session.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// PersistenceError indicates a durable write failed after the in-memory
// mutation was applied. Callers must treat the operation as maybe-applied:
// memory holds the post-mutation value until a later write succeeds.
type PersistenceError struct {
	Collection string
	Err        error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persist %s: %v", e.Collection, e.Err)
}

func (e *PersistenceError) Unwrap() error { return e.Err }

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// IsPersistence reports whether err is a PersistenceError.
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return errors.As(err, &pe)
}
