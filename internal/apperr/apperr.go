// Package apperr defines the error taxonomy shared by every layer:
// precondition failures, validation failures, missing rows, conflicts,
// and backend faults propagated from collaborators.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an Error for transport mapping.
type Kind int

const (
	// KindPrecondition marks a data call issued with no authenticated owner.
	KindPrecondition Kind = iota
	// KindValidation marks input rejected before reaching the store.
	KindValidation
	// KindNotFound marks a row that does not exist for the calling owner.
	KindNotFound
	// KindConflict marks a uniqueness or state collision.
	KindConflict
	// KindBackend marks a failure returned by the database, session
	// store, or blob store, carried unmodified.
	KindBackend
	// KindUnknown marks an error no layer classified, such as an internal
	// fault mid-operation.
	KindUnknown
)

// Error is the typed error carried across layer boundaries.
type Error struct {
	Kind Kind
	Msg  string
	// Fields holds per-field messages for validation errors.
	Fields map[string]string
	// Err is the wrapped cause, if any.
	Err error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error { return e.Err }

// Precondition reports a data operation attempted without an owner.
func Precondition(msg string) error {
	return &Error{Kind: KindPrecondition, Msg: msg}
}

// Validation reports rejected input with a per-field message map.
func Validation(fields map[string]string) error {
	return &Error{Kind: KindValidation, Msg: "validation failed", Fields: fields}
}

// NotFound reports a missing or foreign-owned row without distinguishing
// the two cases.
func NotFound(msg string) error {
	return &Error{Kind: KindNotFound, Msg: msg}
}

// Conflict reports a uniqueness collision.
func Conflict(msg string) error {
	return &Error{Kind: KindConflict, Msg: msg}
}

// Backend wraps a collaborator failure.
func Backend(msg string, err error) error {
	return &Error{Kind: KindBackend, Msg: msg, Err: err}
}

// KindOf extracts the Kind of err, or KindUnknown when err is untyped.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

// FieldsOf returns the validation field map of err, or nil.
func FieldsOf(err error) map[string]string {
	var e *Error
	if errors.As(err, &e) {
		return e.Fields
	}
	return nil
}

// IsKind reports whether err carries the given Kind.
func IsKind(err error, k Kind) bool {
	var e *Error
	return errors.As(err, &e) && e.Kind == k
}
