package core

import (
	"errors"
	"fmt"
)

// Error kinds. Typed errors below match them through errors.Is.
var (
	ErrValidation            = errors.New("validation error")
	ErrRetrievalUnavailable  = errors.New("retrieval unavailable")
	ErrCompletionUnavailable = errors.New("completion unavailable")
	ErrInitialization        = errors.New("retrieval initialization failed")
)

// RetrievalError reports a failed embedding or index call.
type RetrievalError struct {
	Op  string
	Err error
}

func (e *RetrievalError) Error() string {
	return fmt.Sprintf("retrieval %s: %v", e.Op, e.Err)
}

func (e *RetrievalError) Unwrap() error { return e.Err }

func (e *RetrievalError) Is(target error) bool { return target == ErrRetrievalUnavailable }

// CompletionError reports a failed model provider call.
type CompletionError struct {
	Provider string
	Err      error
}

func (e *CompletionError) Error() string {
	return fmt.Sprintf("completion via %s: %v", e.Provider, e.Err)
}

func (e *CompletionError) Unwrap() error { return e.Err }

func (e *CompletionError) Is(target error) bool { return target == ErrCompletionUnavailable }

// InitializationError reports that the retrieval clients could not be constructed.
// It signals misconfiguration rather than a transient outage.
type InitializationError struct {
	Component string
	Err       error
}

func (e *InitializationError) Error() string {
	return fmt.Sprintf("initialize %s: %v", e.Component, e.Err)
}

func (e *InitializationError) Unwrap() error { return e.Err }

func (e *InitializationError) Is(target error) bool { return target == ErrInitialization }
