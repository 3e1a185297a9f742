package catalog

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound        = errors.New("batch not found")
	ErrNotConfirmed    = errors.New("deletion requires confirmation")
	ErrSessionNotFound = errors.New("editing session not found")
)

// ParseError marks a tabular file that could not be decoded. It is isolated
// to that file during ingestion.
type ParseError struct {
	File string
	Err  error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.File, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// IOError marks a failed byte read of an input file.
type IOError struct {
	File string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("read %s: %v", e.File, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation failed: " + e.Reason
	}
	return fmt.Sprintf("validation failed: %s: %s", e.Field, e.Reason)
}

// StructuralError reports a path that does not resolve to a node of the tree.
// It indicates a caller defect and is not absorbed by the edit engine.
type StructuralError struct {
	Path   string
	Reason string
}

func (e *StructuralError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

func IsStructural(err error) bool {
	var se *StructuralError
	return errors.As(err, &se)
}
