package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound signals a missing collection.
	ErrNotFound = errors.New("collection not found")
	// ErrInvalidSchema signals a malformed field definition.
	ErrInvalidSchema = errors.New("invalid schema")
	// ErrConnectionFailed signals an engine connection failure.
	ErrConnectionFailed = errors.New("connection failed")
	// ErrRemoteOp signals an opaque failure reported by the engine.
	ErrRemoteOp = errors.New("engine operation failed")
	// ErrMalformedResult signals a returned hit or row missing expected parts.
	ErrMalformedResult = errors.New("malformed result")
	// ErrSchemaMismatch signals a live schema diverging from the expected one.
	ErrSchemaMismatch = errors.New("schema mismatch")
)

// MismatchKind classifies a single schema divergence for diagnostics.
type MismatchKind string

// Mismatch sub-kinds reported by the schema consistency checker.
const (
	MismatchMissingField MismatchKind = "missing-field"
	MismatchType         MismatchKind = "type-mismatch"
	MismatchLength       MismatchKind = "length-mismatch"
	MismatchDim          MismatchKind = "dim-mismatch"
	MismatchExtraField   MismatchKind = "extra-field"
)

// SchemaMismatchError wraps ErrSchemaMismatch with the field and kind of
// the first divergence found.
type SchemaMismatchError struct {
	Field string
	Kind  MismatchKind
}

func (e *SchemaMismatchError) Error() string {
	return fmt.Sprintf("%s: field %q: %s", ErrSchemaMismatch.Error(), e.Field, e.Kind)
}

func (e *SchemaMismatchError) Unwrap() error { return ErrSchemaMismatch }

// NewSchemaMismatch creates a schema mismatch error for one field.
func NewSchemaMismatch(field string, kind MismatchKind) error {
	return &SchemaMismatchError{Field: field, Kind: kind}
}
