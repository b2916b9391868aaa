// Package errors defines the user-visible error taxonomy surfaced by the
// binder, predicate rewriter and execution operators (spec §6, §7).
//
// Errors are built the way the teacher's auth package builds its own:
// a package-level errors.Kind created once with errors.NewKind, then
// instantiated per-occurrence with .New(args...). Kinds are comparable
// with errors.Is so callers (and tests) can assert on error class
// without string matching.
package errors

import (
	goerrors "gopkg.in/src-d/go-errors.v1"
)

var (
	// ErrColumnNotFound is raised when an identifier cannot be resolved
	// against any candidate schema.
	ErrColumnNotFound = goerrors.NewKind("column not found: %s (did you mean %q?)")

	// ErrAmbiguousIdentifier is raised when an identifier resolves to more
	// than one column across the candidate schemas.
	ErrAmbiguousIdentifier = goerrors.NewKind("ambiguous identifier: %s")

	// ErrUnexpectedDatasetReference is raised when an identifier names a
	// source relation that isn't present in the binding context's schema
	// environment.
	ErrUnexpectedDatasetReference = goerrors.NewKind("unexpected dataset reference: %s")

	// ErrFunctionNotFound is raised when a FUNCTION/AGGREGATOR node's name
	// is missing from the combined function registry.
	ErrFunctionNotFound = goerrors.NewKind("function not found: %s (did you mean %q?)")

	// ErrData covers decode failures and schema drift detected while
	// reading a blob.
	ErrData = goerrors.NewKind("data error: %s")

	// ErrInvalidInternalState covers invariant violations that should be
	// unreachable in correct code (e.g. schema-merge given a non-schema
	// value). Kept distinct from ErrData so tests can assert on it.
	ErrInvalidInternalState = goerrors.NewKind("invalid internal state: %s")
)

// ColumnNotFound builds a ColumnNotFoundError carrying the offending column
// name and a nearest-name suggestion (empty string if none was found).
func ColumnNotFound(column, suggestion string) error {
	return ErrColumnNotFound.New(column, suggestion)
}

// AmbiguousIdentifier builds an AmbiguousIdentifierError for the given
// identifier text.
func AmbiguousIdentifier(identifier string) error {
	return ErrAmbiguousIdentifier.New(identifier)
}

// UnexpectedDatasetReference builds an UnexpectedDatasetReferenceError for
// the given dataset/relation name.
func UnexpectedDatasetReference(dataset string) error {
	return ErrUnexpectedDatasetReference.New(dataset)
}

// FunctionNotFound builds a FunctionNotFoundError carrying the requested
// function name and a nearest-name suggestion.
func FunctionNotFound(function, suggestion string) error {
	return ErrFunctionNotFound.New(function, suggestion)
}

// Data builds a DataError with a free-form message.
func Data(message string) error {
	return ErrData.New(message)
}

// InvalidInternalState builds an InvalidInternalStateError with a free-form
// message.
func InvalidInternalState(message string) error {
	return ErrInvalidInternalState.New(message)
}
