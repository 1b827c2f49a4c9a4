// Package apperr classifies pipeline failures and maps each class onto a handling policy.
package apperr

import (
	"errors"
	"fmt"
)

// Kind identifies a class of failure.
type Kind string

const (
	KindFetch      Kind = "fetch"
	KindExtraction Kind = "extraction"
	KindCache      Kind = "cache"
	KindStore      Kind = "store"
	KindValidation Kind = "validation"
	KindInternal   Kind = "internal"
)

// Policy is what a caller does with an error of a given kind.
type Policy string

const (
	// PolicySkipItem drops the failing item and carries on with the batch.
	PolicySkipItem Policy = "skip-item"
	// PolicyFallback switches to the cached or degraded path.
	PolicyFallback Policy = "fallback"
	// PolicyIgnore logs the error and behaves as if the operation was a miss or no-op.
	PolicyIgnore Policy = "ignore"
	// PolicySurface returns the error to the client.
	PolicySurface Policy = "surface"
)

var policies = map[Kind]Policy{
	KindFetch:      PolicyFallback,
	KindExtraction: PolicySkipItem,
	KindCache:      PolicyIgnore,
	KindStore:      PolicyFallback,
	KindValidation: PolicySurface,
	KindInternal:   PolicySurface,
}

// PolicyFor returns the handling policy for kind. Unknown kinds are surfaced.
func PolicyFor(kind Kind) Policy {
	if p, ok := policies[kind]; ok {
		return p
	}
	return PolicySurface
}

// Error is a classified error. Op names the operation that failed.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	if e.Op == "" {
		return e.Err.Error()
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// New wraps err with a kind and operation. A nil err yields nil.
func New(kind Kind, op string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Op: op, Err: err}
}

// Newf builds a classified error from a format string.
func Newf(kind Kind, op, format string, args ...any) error {
	return &Error{Kind: kind, Op: op, Err: fmt.Errorf(format, args...)}
}

// KindOf walks the chain of err and returns the first classified kind, or KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// Is reports whether err carries the given kind.
func Is(err error, kind Kind) bool {
	return err != nil && KindOf(err) == kind
}
