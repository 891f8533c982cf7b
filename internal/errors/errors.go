// Package errors provides the domain error type shared by the resource
// server's authentication packages.
package errors

import (
	"errors"
	"fmt"
)

// Error categories. A DomainError's Kind is one of these.
var (
	// ErrNotFound indicates a requested resource was not found.
	ErrNotFound = errors.New("not found")

	// ErrUnauthorized indicates the caller could not be authenticated.
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden indicates the caller is authenticated but lacks permission.
	ErrForbidden = errors.New("forbidden")

	// ErrBadRequest indicates invalid request parameters or format.
	ErrBadRequest = errors.New("bad request")

	// ErrInternal indicates a failure that is not the caller's fault, such as
	// an unreachable key set endpoint.
	ErrInternal = errors.New("internal error")
)

// DomainError carries the subsystem, operation and category of a failure
// together with the underlying cause and free-form diagnostic context.
//
// Context values are meant for logs. They must never be copied into a
// response sent to the client.
type DomainError struct {
	// Domain identifies the subsystem, e.g. "oauth" or "jwks".
	Domain string

	// Op identifies the operation that failed, e.g. "ValidateJWT".
	Op string

	// Kind is the category sentinel.
	Kind error

	// Err is the wrapped cause, if any.
	Err error

	// Context holds diagnostic key-value pairs.
	Context map[string]any
}

// New creates a DomainError. err may be nil.
func New(domain, op string, kind, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Err:     err,
		Context: make(map[string]any),
	}
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %v: %v", e.Domain, e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s.%s: %v", e.Domain, e.Op, e.Kind)
}

// Unwrap returns the wrapped cause so errors.Is and errors.As can walk it.
func (e *DomainError) Unwrap() error {
	return e.Err
}

// Is reports whether target matches either the Kind or the wrapped chain.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// WithContext records a key-value pair and returns e for chaining.
func (e *DomainError) WithContext(key string, value any) *DomainError {
	if e.Context == nil {
		e.Context = make(map[string]any)
	}
	e.Context[key] = value
	return e
}

// ContextValue returns the first context value stored under key anywhere in
// err's chain of DomainErrors.
func ContextValue(err error, key string) (any, bool) {
	for err != nil {
		var de *DomainError
		if !errors.As(err, &de) {
			return nil, false
		}
		if v, ok := de.Context[key]; ok {
			return v, true
		}
		err = de.Err
	}
	return nil, false
}
