package services

import (
	"errors"
	"fmt"
)

var (
	// ErrValidation matches every *ValidationError.
	ErrValidation = errors.New("validation failed")
	// ErrAuthentication covers bad credentials and missing or invalid sessions.
	ErrAuthentication = errors.New("authentication failed")
	// ErrForbidden means the caller is authenticated but does not own the resource.
	ErrForbidden = errors.New("not authorized")
	// ErrNotFound means the requested resource does not exist.
	ErrNotFound = errors.New("not found")
	// ErrEmailTaken means sign-up hit an existing account.
	ErrEmailTaken = errors.New("email already registered")
	// ErrStore matches every *StoreError.
	ErrStore = errors.New("store failure")
)

// ValidationError describes bad client input. Message is safe to show to users.
type ValidationError struct {
	Message string
	Fields  map[string]string
}

func (e *ValidationError) Error() string {
	return e.Message
}

// Is lets errors.Is(err, ErrValidation) match.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(message string) error {
	return &ValidationError{Message: message}
}

// StoreError wraps a persistence failure. Its text must not reach clients.
type StoreError struct {
	Op  string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// Is lets errors.Is(err, ErrStore) match.
func (e *StoreError) Is(target error) bool {
	return target == ErrStore
}

func storeError(op string, err error) error {
	return &StoreError{Op: op, Err: err}
}
