package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors. Callers match with errors.Is; the HTTP layer maps each
// to a status code.
var (
	// ErrConsentDenied means the user has not granted (or has revoked)
	// consent. Generation must stop before any external call or write.
	ErrConsentDenied = errors.New("user has not granted consent")

	// ErrPersonaNotAssigned means no persona assignment exists for the
	// requested (user, window) pair.
	ErrPersonaNotAssigned = errors.New("no persona assigned for window")

	// ErrNotFound means the requested entity does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidTransition means a recommendation is not in a state that
	// permits the requested transition.
	ErrInvalidTransition = errors.New("invalid status transition")
)

// GenerationError wraps a failure in the LLM call or response parsing.
// The pipeline aborts with zero writes when one occurs; callers may retry.
type GenerationError struct {
	Stage string // "generate", "parse"
	Err   error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("content generation failed at %s: %v", e.Stage, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}
