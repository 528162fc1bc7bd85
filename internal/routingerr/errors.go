// Package routingerr defines the typed error kinds the routing core
// surfaces to callers (§7 of the specification), wrapped with
// github.com/pkg/errors so the InternalInvariant path keeps a stack
// trace through the log+abort boundary.
package routingerr

import (
	"errors"
	"fmt"

	pkgerrors "github.com/pkg/errors"
)

// Kind is one of the error kinds a caller must branch on.
type Kind string

const (
	KindInvalidSnapshot   Kind = "invalid_snapshot"
	KindUnknownStation    Kind = "unknown_station"
	KindSameStation       Kind = "same_station"
	KindNoPath            Kind = "no_path"
	KindCancelled         Kind = "cancelled"
	KindInternalInvariant Kind = "internal_invariant"
)

// Error is the concrete type carried by every error this package
// produces. Use errors.As to recover it and Kind to branch on the
// condition.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// New builds a stack-annotated error of the given kind.
func New(kind Kind, message string) error {
	return pkgerrors.WithStack(&Error{Kind: kind, Message: message})
}

// Newf is New with fmt.Sprintf-style formatting.
func Newf(kind Kind, format string, args ...any) error {
	return New(kind, fmt.Sprintf(format, args...))
}

// Wrap annotates cause with kind and message, keeping cause reachable
// through errors.Unwrap/errors.As.
func Wrap(kind Kind, cause error, message string) error {
	return pkgerrors.WithStack(&Error{Kind: kind, Message: message, Cause: cause})
}

// Is reports whether the outermost *Error in err's chain has the given
// Kind (the same Kind that KindOf returns); a Kind carried only by an
// *Error nested deeper in the chain does not match.
func Is(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}

// KindOf extracts the Kind of err, if any, and whether one was found.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return "", false
}
