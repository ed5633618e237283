package argmask

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel errors for definition, wrapping and call operations.
// All use prefix "argmask:" for identification. Callers should use errors.Is/errors.As.
var (
	ErrSignatureUnavailable = errors.New("argmask: function exposes no introspectable signature")
	ErrAdaptation           = errors.New("argmask: one or more arguments failed adaptation")
	ErrDefinitionConflict   = errors.New("argmask: external key maps to more than one internal value")
	ErrInvalidDefinition    = errors.New("argmask: definition is malformed")
	ErrUnexpectedArgument   = errors.New("argmask: argument does not match any parameter")
	ErrInvalidArgument      = errors.New("argmask: argument cannot be assigned to parameter")
	ErrDefinitionNotFound   = errors.New("argmask: definition not found in registry")
	ErrInvalidManifest      = errors.New("argmask: manifest file is malformed")
	ErrInvalidName          = errors.New("argmask: invalid definition name")
)

// SignatureError reports why a target could not be introspected.
// Use errors.Is(err, ErrSignatureUnavailable) and errors.As(err, &sigErr) to inspect.
type SignatureError struct {
	Func   string
	Reason string
}

// Error implements error.
func (e *SignatureError) Error() string {
	if e.Func == "" {
		return fmt.Sprintf("%v: %s", ErrSignatureUnavailable, e.Reason)
	}
	return fmt.Sprintf("%v: %s: %s", ErrSignatureUnavailable, e.Func, e.Reason)
}

// Unwrap returns ErrSignatureUnavailable for errors.Is.
func (e *SignatureError) Unwrap() error { return ErrSignatureUnavailable }

// ConflictError reports an external key declared with two different internal values.
type ConflictError struct {
	Param  string
	Key    string
	First  any
	Second any
}

// Error implements error.
func (e *ConflictError) Error() string {
	return fmt.Sprintf("%v: parameter %q key %q maps to both %v and %v", ErrDefinitionConflict, e.Param, e.Key, e.First, e.Second)
}

// Unwrap returns ErrDefinitionConflict for errors.Is.
func (e *ConflictError) Unwrap() error { return ErrDefinitionConflict }

// Failure is the validation failure of one argument of one call.
// A sequence argument with several unknown entries yields a single Failure.
type Failure struct {
	Param   string
	Invalid []string // offending values as reported in Message
	Choices []string
	Message string
}

// AdaptationError aggregates every Failure of a single call, in processing order.
// Error returns the failure messages joined by newlines.
type AdaptationError struct {
	Func     string
	Failures []Failure
}

// Error implements error.
func (e *AdaptationError) Error() string {
	msgs := make([]string, len(e.Failures))
	for i, f := range e.Failures {
		msgs[i] = f.Message
	}
	return strings.Join(msgs, "\n")
}

// Unwrap returns ErrAdaptation for errors.Is.
func (e *AdaptationError) Unwrap() error { return ErrAdaptation }

// Compile-time checks that the typed errors implement error.
var (
	_ error = (*SignatureError)(nil)
	_ error = (*ConflictError)(nil)
	_ error = (*AdaptationError)(nil)
)
