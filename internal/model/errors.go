package model

import (
	"errors"
	"fmt"
)

// Common errors used across the application
var (
	ErrPlayerNotFound  = errors.New("player not found")
	ErrPlayerExists    = errors.New("player already exists")
	ErrAmbiguousResult = errors.New("more than one player matches a unique identifier")

	ErrInvalidFilter    = errors.New("invalid player filter")
	ErrInvalidPlayer    = errors.New("invalid player")
	ErrMalformedPayload = errors.New("malformed player payload")
)

// FilterValidationError reports every violation found in a list filter
type FilterValidationError struct {
	Violations Violations
}

func (e *FilterValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidFilter, e.Violations)
}

func (e *FilterValidationError) Unwrap() error { return ErrInvalidFilter }

// EntityValidationError reports every violation found in a player
type EntityValidationError struct {
	Violations Violations
}

func (e *EntityValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrInvalidPlayer, e.Violations)
}

func (e *EntityValidationError) Unwrap() error { return ErrInvalidPlayer }

// MalformedPayloadError is returned when a payload cannot be decoded into a player
type MalformedPayloadError struct {
	Reason string
	Err    error
}

func (e *MalformedPayloadError) Error() string {
	if e.Reason == "" {
		return ErrMalformedPayload.Error()
	}
	return fmt.Sprintf("%s: %s", ErrMalformedPayload, e.Reason)
}

// Is lets errors.Is match ErrMalformedPayload as well as the underlying cause
func (e *MalformedPayloadError) Is(target error) bool {
	return target == ErrMalformedPayload
}

func (e *MalformedPayloadError) Unwrap() error { return e.Err }
